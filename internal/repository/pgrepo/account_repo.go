package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, created_at, updated_at, user_id, account_number, account_type, balance`

type AccountRepository struct {
	conn uow.DBTX
}

func NewAccountRepository(conn uow.DBTX) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// CreateAccount создает счет. Номер счета уникален глобально, конфликт вернется
// как domain.ErrDuplicateKey.
func (a *AccountRepository) CreateAccount(
	ctx context.Context,
	args repoargs.CreateAccount,
) (*domain.Account, error) {
	query := `INSERT INTO accounts (user_id, account_number, account_type, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + accountColumns

	row := a.conn.QueryRow(ctx, query, args.UserID, args.AccountNumber, args.AccountType, args.InitialBalance)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "creating account %s", args.AccountNumber)
	}
	return account, nil
}

// AccountsForUser возвращает счета юзера по возрастанию account_id. Порядок важен:
// движок денежных операций зеркалирует баланс в счет с наименьшим id.
func (a *AccountRepository) AccountsForUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 ORDER BY account_id ASC`

	rows, err := a.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, convertErr(err, "accounts for user %d", userID)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "accounts for user %d", userID)
		}
		accounts = append(accounts, *account)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "accounts for user %d", userID)
	}
	return accounts, nil
}

func (a *AccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`

	account, err := scanAccount(a.conn.QueryRow(ctx, query, accountNumber))
	if err != nil {
		return nil, convertErr(err, "finding account by number %s", accountNumber)
	}
	return account, nil
}

// LockBalance читает баланс счета с блокировкой строки (FOR UPDATE) до конца
// объемлющей транзакции.
func (a *AccountRepository) LockBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	query := `SELECT balance FROM accounts WHERE account_id = $1 FOR UPDATE`

	var balance decimal.Decimal
	if err := a.conn.QueryRow(ctx, query, accountID).Scan(&balance); err != nil {
		return decimal.Decimal{}, convertErr(err, "locking balance of account %d", accountID)
	}
	return balance, nil
}

func (a *AccountRepository) SetBalance(ctx context.Context, accountID int64, balance decimal.Decimal) error {
	query := `UPDATE accounts SET balance = $1, updated_at = now() WHERE account_id = $2`

	tag, err := a.conn.Exec(ctx, query, balance, accountID)
	if err != nil {
		return convertErr(err, "setting balance of account %d", accountID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "setting balance of account %d", accountID)
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.UserID,
		&account.AccountNumber,
		&account.AccountType,
		&account.Balance,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &account, nil
}
