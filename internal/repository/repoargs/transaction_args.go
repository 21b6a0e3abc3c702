package repoargs

import "github.com/shopspring/decimal"

type TransactionCreate struct {
	UserID int64
	Type   string
	// Amount знаковый: положительный - приход, отрицательный - расход.
	Amount      decimal.Decimal
	Description string
}
