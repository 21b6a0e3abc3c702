package domain

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=repository.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	CreateUser(ctx context.Context, user repoargs.CreateUser) (*User, error)
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindUserByID(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, args repoargs.UpdateProfile) (*User, error)
	// LockBalance берет эксклюзивную блокировку строки юзера и возвращает его баланс.
	// Блокировка держится до конца объемлющей транзакции.
	LockBalance(ctx context.Context, userID int64) (decimal.Decimal, error)
	UpdateBalance(ctx context.Context, userID int64, balance decimal.Decimal) error
}

type AccountRepository interface {
	CreateAccount(ctx context.Context, args repoargs.CreateAccount) (*Account, error)
	// AccountsForUser возвращает счета юзера отсортированные по id по возрастанию.
	AccountsForUser(ctx context.Context, userID int64) ([]Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*Account, error)
	// LockBalance аналогичен UserRepository.LockBalance, но для строки счета.
	LockBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error
}

type TransactionRepository interface {
	Create(ctx context.Context, args repoargs.TransactionCreate) (*Transaction, error)
	RecentByUser(ctx context.Context, userID int64, limit uint) ([]Transaction, error)
	Latest(ctx context.Context, userID int64) (*Transaction, error)
	// HistoryByUser возвращает историю по убыванию даты создания. typeFilter
	// регистронезависимый, значения "all" или пустая строка отключают фильтр.
	HistoryByUser(ctx context.Context, userID int64, typeFilter string) ([]Transaction, error)
	SumBetween(ctx context.Context, userID int64, start, end time.Time) (decimal.Decimal, error)
	SumByTypeBetween(
		ctx context.Context,
		userID int64,
		transactionType TransactionType,
		start, end time.Time,
	) (decimal.Decimal, error)
}
