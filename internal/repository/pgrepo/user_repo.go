package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `user_id, created_at, updated_at, username, credential_hash,
	full_name, email, phone, address, photo, role, balance`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// CreateUser создает юзера в базе данных. В случае конфликта юзернейма возвращает ошибку domain.ErrDuplicateKey,
// во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	query := `INSERT INTO users (username, credential_hash, full_name, email, phone, address, photo, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns

	row := u.conn.QueryRow(ctx, query,
		user.Username,
		user.Password,
		user.FullName,
		user.Email,
		user.Phone,
		user.Address,
		user.Photo,
		normalizeRole(user.Role),
	)

	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return dbUser, nil
}

// FindUserByUsername ищет юзера по его юзернейму. Возвращает ошибку domain.ErrRecordNotFound если запись не найдена,
// во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	dbUser, err := scanUser(u.conn.QueryRow(ctx, query, username))
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return dbUser, nil
}

func (u *UserRepository) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	dbUser, err := scanUser(u.conn.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", userID)
	}
	return dbUser, nil
}

func (u *UserRepository) UpdateProfile(ctx context.Context, args repoargs.UpdateProfile) (*domain.User, error) {
	query := `UPDATE users
		SET full_name = $1, email = $2, phone = $3, address = $4, photo = $5, updated_at = now()
		WHERE user_id = $6
		RETURNING ` + userColumns

	row := u.conn.QueryRow(ctx, query,
		args.FullName, args.Email, args.Phone, args.Address, args.Photo, args.UserID)

	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating profile for user %d", args.UserID)
	}
	return dbUser, nil
}

// LockBalance читает баланс юзера c блокировкой строки (FOR UPDATE). Должен вызываться
// только внутри транзакции, блокировка снимается при commit/rollback.
func (u *UserRepository) LockBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `SELECT balance FROM users WHERE user_id = $1 FOR UPDATE`

	var balance decimal.Decimal
	if err := u.conn.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return decimal.Decimal{}, convertErr(err, "locking balance of user %d", userID)
	}
	return balance, nil
}

func (u *UserRepository) UpdateBalance(ctx context.Context, userID int64, balance decimal.Decimal) error {
	query := `UPDATE users SET balance = $1, updated_at = now() WHERE user_id = $2`

	tag, err := u.conn.Exec(ctx, query, balance, userID)
	if err != nil {
		return convertErr(err, "updating balance of user %d", userID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "updating balance of user %d", userID)
	}
	return nil
}

// normalizeRole приводит роль к значениям enum из схемы. Всё невалидное становится RoleUser.
func normalizeRole(role string) string {
	if role == string(domain.RoleAdmin) {
		return role
	}
	return string(domain.RoleUser)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.Password,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.Address,
		&user.Photo,
		&role,
		&user.Balance,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	user.Role = domain.RoleType(role)
	return &user, nil
}
