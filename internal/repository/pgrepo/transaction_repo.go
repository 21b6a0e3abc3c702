package pgrepo

import (
	"context"
	"strings"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, created_at, user_id, type, amount, description`

// TypeFilterAll - значение фильтра, отключающее фильтрацию по типу транзакции.
const TypeFilterAll = "all"

type TransactionRepository struct {
	conn uow.DBTX
}

func NewTransactionRepository(conn uow.DBTX) *TransactionRepository {
	return &TransactionRepository{conn: conn}
}

// Create добавляет запись о транзакции. Таймстемп created_at выставляет база в момент
// вставки. Записи неизменяемы: никаких UPDATE/DELETE по этой таблице в коде нет.
func (t *TransactionRepository) Create(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	query := `INSERT INTO transactions (user_id, type, amount, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + transactionColumns

	row := t.conn.QueryRow(ctx, query, args.UserID, args.Type, args.Amount, args.Description)

	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating %s transaction for user %d", args.Type, args.UserID)
	}
	return transaction, nil
}

// RecentByUser возвращает limit последних транзакций юзера по убыванию даты создания.
func (t *TransactionRepository) RecentByUser(
	ctx context.Context,
	userID int64,
	limit uint,
) ([]domain.Transaction, error) {
	limit32, convErr := safeConvertUintToInt32(limit)
	if convErr != nil {
		return nil, convertErr(convErr, "recent transactions for user %d", userID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT $2`

	rows, err := t.conn.Query(ctx, query, userID, limit32)
	if err != nil {
		return nil, convertErr(err, "recent transactions for user %d", userID)
	}
	return collectTransactions(rows, userID)
}

// Latest возвращает самую свежую транзакцию юзера либо domain.ErrRecordNotFound.
func (t *TransactionRepository) Latest(ctx context.Context, userID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, transaction_id DESC
		LIMIT 1`

	transaction, err := scanTransaction(t.conn.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, convertErr(err, "latest transaction for user %d", userID)
	}
	return transaction, nil
}

// HistoryByUser возвращает историю транзакций по убыванию даты создания. Фильтр по типу
// регистронезависимый; пустая строка или "all" означают отсутствие фильтра.
func (t *TransactionRepository) HistoryByUser(
	ctx context.Context,
	userID int64,
	typeFilter string,
) ([]domain.Transaction, error) {
	filter := strings.ToLower(strings.TrimSpace(typeFilter))

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	queryArgs := []any{userID}

	if filter != "" && filter != TypeFilterAll {
		query += ` AND type = $2`
		queryArgs = append(queryArgs, filter)
	}
	query += ` ORDER BY created_at DESC, transaction_id DESC`

	rows, err := t.conn.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, convertErr(err, "transaction history for user %d", userID)
	}
	return collectTransactions(rows, userID)
}

// SumBetween суммирует знаковые суммы транзакций юзера в полуинтервале [start, end).
// Отсутствие строк - это ноль, не ошибка.
func (t *TransactionRepository) SumBetween(
	ctx context.Context,
	userID int64,
	start, end time.Time,
) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`

	var sum decimal.Decimal
	if err := t.conn.QueryRow(ctx, query, userID, start, end).Scan(&sum); err != nil {
		return decimal.Decimal{}, convertErr(err, "sum of transactions for user %d", userID)
	}
	return sum, nil
}

// SumByTypeBetween - как SumBetween, но только для транзакций указанного типа.
func (t *TransactionRepository) SumByTypeBetween(
	ctx context.Context,
	userID int64,
	transactionType domain.TransactionType,
	start, end time.Time,
) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE user_id = $1 AND type = $2 AND created_at >= $3 AND created_at < $4`

	var sum decimal.Decimal
	if err := t.conn.QueryRow(ctx, query, userID, string(transactionType), start, end).Scan(&sum); err != nil {
		return decimal.Decimal{}, convertErr(err, "sum of %s transactions for user %d", transactionType, userID)
	}
	return sum, nil
}

func collectTransactions(rows pgx.Rows, userID int64) ([]domain.Transaction, error) {
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "transactions for user %d", userID)
		}
		transactions = append(transactions, *transaction)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "transactions for user %d", userID)
	}
	return transactions, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var transactionType string
	err := row.Scan(
		&transaction.ID,
		&transaction.CreatedAt,
		&transaction.UserID,
		&transactionType,
		&transaction.Amount,
		&transaction.Description,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	transaction.Type = domain.TransactionType(transactionType)
	return &transaction, nil
}
