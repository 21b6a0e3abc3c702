package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	UpdateProfile(ctx context.Context, args service.UpdateProfileArgs) (*domain.User, error)
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	Accounts(ctx context.Context, userID int64) ([]domain.Account, error)
	AccountByNumber(ctx context.Context, userID int64, accountNumber string) (*domain.Account, error)
}

type MoneyServicer interface {
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Withdraw(ctx context.Context, userID int64, amount decimal.Decimal, description string) (*domain.Transaction, error)
	Transfer(ctx context.Context, senderID int64, recipientUsername string, amount decimal.Decimal, note string) error
}

type StatementServicer interface {
	Recent(ctx context.Context, userID int64) ([]domain.Transaction, error)
	Latest(ctx context.Context, userID int64) (*domain.Transaction, error)
	History(ctx context.Context, userID int64, typeFilter string) ([]domain.Transaction, error)
	MonthlySummary(ctx context.Context, userID int64, month time.Time) (*service.MonthlySummary, error)
}
