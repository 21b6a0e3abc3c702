package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/internal/service/tokens"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/shopspring/decimal"
)

const JWTTokenExpire = 1 * time.Hour

const initialAccountType = "Savings"

type UserService struct {
	uow            uow.UOW
	userRepo       domain.UserRepository
	accountRepo    domain.AccountRepository
	hasher         PasswordHasher
	jwtTokenSecret []byte
}

func NewUserService(u uow.UOW, jwtTokenSecret []byte, hasher PasswordHasher) (*UserService, error) {
	userRepo, userRepoErr :=
		uow.GetRepositoryAs[domain.UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr //nolint:wrapcheck
	}
	accountRepo, accountRepoErr :=
		uow.GetRepositoryAs[domain.AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr //nolint:wrapcheck
	}
	return &UserService{
		uow:            u,
		userRepo:       userRepo,
		accountRepo:    accountRepo,
		hasher:         hasher,
		jwtTokenSecret: jwtTokenSecret,
	}, nil
}

type RegisterUserArgs struct {
	Username       string
	Password       string
	FullName       string
	Email          string
	Phone          string
	Address        string
	Photo          string
	InitialDeposit decimal.Decimal
}

// Register создает юзера вместе с его первым счетом и, при положительном начальном
// взносе, транзакцией типа deposit - всё в одном unit of work. После успешного
// создания генерирует jwt token. Возвращает 3 значения: созданный юзер, токен и ошибку.
//
// Ошибки: domain.ErrInvalidAmount при отрицательном начальном взносе,
// domain.ErrDuplicateKey при конфликте юзернейма или номера счета.
func (s *UserService) Register(ctx context.Context, args RegisterUserArgs) (*domain.User, string, error) {
	if args.InitialDeposit.IsNegative() {
		return nil, "", fmt.Errorf("registering user: %w", domain.ErrInvalidAmount)
	}

	password, hashErr := s.hasher.HashPassword(args.Password)
	if hashErr != nil {
		return nil, "", fmt.Errorf("registering user: %s", hashErr.Error())
	}

	var user *domain.User
	var token string
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[domain.UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		var userErr error
		user, userErr = userRepo.CreateUser(c, repoargs.CreateUser{
			Username: args.Username,
			Password: password,
			FullName: args.FullName,
			Email:    args.Email,
			Phone:    args.Phone,
			Address:  args.Address,
			Photo:    args.Photo,
			Role:     string(domain.RoleUser),
		})
		if userErr != nil {
			return userErr //nolint:wrapcheck
		}

		accountRepo, accountRepoErr :=
			uow.GetAs[domain.AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
		if accountRepoErr != nil {
			return accountRepoErr //nolint:wrapcheck
		}

		account, accountErr := accountRepo.CreateAccount(c, repoargs.CreateAccount{
			UserID:         user.ID,
			AccountNumber:  generateAccountNumber(),
			AccountType:    initialAccountType,
			InitialBalance: args.InitialDeposit,
		})
		if accountErr != nil {
			return accountErr //nolint:wrapcheck
		}

		if args.InitialDeposit.IsPositive() {
			if updErr := userRepo.UpdateBalance(c, user.ID, args.InitialDeposit); updErr != nil {
				return updErr //nolint:wrapcheck
			}
			user.Balance = args.InitialDeposit

			transactionRepo, transactionRepoErr :=
				uow.GetAs[domain.TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
			if transactionRepoErr != nil {
				return transactionRepoErr //nolint:wrapcheck
			}
			if _, createErr := transactionRepo.Create(c, repoargs.TransactionCreate{
				UserID:      user.ID,
				Type:        string(domain.TransactionDeposit),
				Amount:      args.InitialDeposit,
				Description: "Initial deposit into account " + account.AccountNumber,
			}); createErr != nil {
				return createErr //nolint:wrapcheck
			}
		}

		var tokenErr error
		token, tokenErr = tokens.GenerateUserJWT(user.ID, JWTTokenExpire, s.jwtTokenSecret)
		if tokenErr != nil {
			return tokenErr //nolint:wrapcheck
		}
		return nil
	})

	if txErr != nil {
		return nil, "", fmt.Errorf("registering user: %w", txErr)
	}
	return user, token, nil
}

type LoginUserArgs struct {
	Username string
	Password string
}

// Login аутентифицирует юзера по паре юзернейм/пароль. Возвращает юзера, jwt токен
// и ошибку. При неверном пароле вернется domain.ErrPasswordMissMatch, при неизвестном
// юзернейме - domain.ErrRecordNotFound.
func (s *UserService) Login(ctx context.Context, args LoginUserArgs) (*domain.User, string, error) {
	user, userErr := s.userRepo.FindUserByUsername(ctx, args.Username)
	if userErr != nil {
		return nil, "", userErr //nolint:wrapcheck
	}

	if !s.hasher.ComparePassword(args.Password, user.Password) {
		return nil, "", domain.ErrPasswordMissMatch
	}

	token, tokenErr := tokens.GenerateUserJWT(user.ID, JWTTokenExpire, s.jwtTokenSecret)
	if tokenErr != nil {
		return nil, "", fmt.Errorf("logging in user: %s", tokenErr.Error())
	}
	return user, token, nil
}

type UpdateProfileArgs struct {
	UserID   int64
	FullName string
	Email    string
	Phone    string
	Address  string
	Photo    string
}

func (s *UserService) UpdateProfile(ctx context.Context, args UpdateProfileArgs) (*domain.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, repoargs.UpdateProfile{
		UserID:   args.UserID,
		FullName: args.FullName,
		Email:    args.Email,
		Phone:    args.Phone,
		Address:  args.Address,
		Photo:    args.Photo,
	})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return user, nil
}

// Accounts возвращает счета юзера по возрастанию id.
func (s *UserService) Accounts(ctx context.Context, userID int64) ([]domain.Account, error) {
	accounts, err := s.accountRepo.AccountsForUser(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return accounts, nil
}

// AccountByNumber возвращает счет по его внешнему номеру. Чужой счет не раскрывается:
// если счет принадлежит другому юзеру, вернется domain.ErrRecordNotFound, как будто
// счета нет вовсе.
func (s *UserService) AccountByNumber(
	ctx context.Context,
	userID int64,
	accountNumber string,
) (*domain.Account, error) {
	account, err := s.accountRepo.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if account.UserID != userID {
		return nil, domain.ErrRecordNotFound
	}
	return account, nil
}
