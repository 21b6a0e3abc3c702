package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string
	// Password хранит bcrypt хэш, никогда - открытый пароль.
	Password string
	FullName string
	Email    string
	Phone    string
	Address  string
	Photo    string
	Role     RoleType
	// Balance - операционный баланс юзера. Мутируется только внутри unit of work
	// под блокировкой строки.
	Balance decimal.Decimal
}

type Account struct {
	ID            int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        int64
	AccountNumber string
	AccountType   string
	Balance       decimal.Decimal
}

// Transaction - неизменяемая запись о движении средств. Знак Amount определяет
// направление: положительный - приход, отрицательный - расход.
type Transaction struct {
	ID          int64
	CreatedAt   time.Time
	UserID      int64
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
}
