package repoargs

import "github.com/shopspring/decimal"

type CreateAccount struct {
	UserID         int64
	AccountNumber  string
	AccountType    string
	InitialBalance decimal.Decimal
}
