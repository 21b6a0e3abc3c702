package service

import (
	"context"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/domain/mocks"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	servicemocks "github.com/fsdevblog/groph-bank/internal/service/mocks"
	"github.com/fsdevblog/groph-bank/internal/service/tokens"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-bank/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockCtrl            *gomock.Controller
	mockUOW             *uowmocks.MockUOW
	mockTX              *uowmocks.MockTX
	mockUserRepo        *mocks.MockUserRepository
	mockAccountRepo     *mocks.MockAccountRepository
	mockTransactionRepo *mocks.MockTransactionRepository
	mockHasher          *servicemocks.MockPasswordHasher
	jwtSecret           []byte
	userService         *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockAccountRepository(s.mockCtrl)
	s.mockTransactionRepo = mocks.NewMockTransactionRepository(s.mockCtrl)
	s.mockHasher = servicemocks.NewMockPasswordHasher(s.mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()

	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.TransactionRepoName)).
		Return(s.mockTransactionRepo, nil).AnyTimes()

	userService, servErr := NewUserService(s.mockUOW, s.jwtSecret, s.mockHasher)
	s.Require().NoError(servErr)
	s.userService = userService
}

func (s *UserServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *UserServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(context.Background(), s.mockTX)
		},
	)
}

func (s *UserServiceTestSuite) TestRegister() {
	args := RegisterUserArgs{
		Username:       gofakeit.Username(),
		Password:       gofakeit.Password(true, true, true, false, false, 12),
		FullName:       gofakeit.Name(),
		Email:          gofakeit.Email(),
		InitialDeposit: decimal.NewFromInt(1000),
	}
	hashed := "hashed:" + args.Password

	s.expectDo()
	s.mockHasher.EXPECT().HashPassword(args.Password).Return(hashed, nil)

	createdUser := &domain.User{ID: 1, Username: args.Username, Role: domain.RoleUser}
	s.mockUserRepo.EXPECT().CreateUser(gomock.Any(), repoargs.CreateUser{
		Username: args.Username,
		Password: hashed,
		FullName: args.FullName,
		Email:    args.Email,
		Role:     string(domain.RoleUser),
	}).Return(createdUser, nil)

	// Номер счета генерируется случайно, проверяем формат через DoAndReturn.
	var accountNumber string
	s.mockAccountRepo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cArgs repoargs.CreateAccount) (*domain.Account, error) {
			s.Equal(createdUser.ID, cArgs.UserID)
			s.Equal("Savings", cArgs.AccountType)
			s.True(strings.HasPrefix(cArgs.AccountNumber, "ACC"))
			s.True(cArgs.InitialBalance.Equal(args.InitialDeposit))
			accountNumber = cArgs.AccountNumber
			return &domain.Account{
				ID:            10,
				UserID:        cArgs.UserID,
				AccountNumber: cArgs.AccountNumber,
				AccountType:   cArgs.AccountType,
				Balance:       cArgs.InitialBalance,
			}, nil
		},
	)

	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), createdUser.ID, args.InitialDeposit).Return(nil)
	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tArgs repoargs.TransactionCreate) (*domain.Transaction, error) {
			s.Equal(createdUser.ID, tArgs.UserID)
			s.Equal(string(domain.TransactionDeposit), tArgs.Type)
			s.True(tArgs.Amount.Equal(args.InitialDeposit))
			s.Equal("Initial deposit into account "+accountNumber, tArgs.Description)
			return &domain.Transaction{ID: 1}, nil
		},
	)

	user, token, err := s.userService.Register(context.Background(), args)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.True(user.Balance.Equal(args.InitialDeposit))

	// Токен должен валидироваться тем же секретом.
	_, validateErr := tokens.ValidateUserJWT(token, s.jwtSecret)
	s.Require().NoError(validateErr)
}

func (s *UserServiceTestSuite) TestRegisterWithoutInitialDeposit() {
	args := RegisterUserArgs{
		Username: gofakeit.Username(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}

	s.expectDo()
	s.mockHasher.EXPECT().HashPassword(args.Password).Return("hash", nil)

	s.mockUserRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: 2, Username: args.Username}, nil)
	s.mockAccountRepo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).
		Return(&domain.Account{ID: 20, UserID: 2}, nil)

	// Нулевой взнос: ни изменения баланса, ни транзакции.
	s.mockUserRepo.EXPECT().UpdateBalance(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockTransactionRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	user, token, err := s.userService.Register(context.Background(), args)
	s.Require().NoError(err)
	s.NotNil(user)
	s.NotEmpty(token)
}

func (s *UserServiceTestSuite) TestRegisterNegativeInitialDeposit() {
	args := RegisterUserArgs{
		Username:       gofakeit.Username(),
		Password:       gofakeit.Password(true, true, true, false, false, 12),
		InitialDeposit: decimal.NewFromInt(-1),
	}

	_, _, err := s.userService.Register(context.Background(), args)
	s.Require().ErrorIs(err, domain.ErrInvalidAmount)
}

func (s *UserServiceTestSuite) TestRegisterDuplicateUsername() {
	args := RegisterUserArgs{
		Username: gofakeit.Username(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
	}

	s.expectDo()
	s.mockHasher.EXPECT().HashPassword(args.Password).Return("hash", nil)
	s.mockUserRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	_, _, err := s.userService.Register(context.Background(), args)
	s.Require().ErrorIs(err, domain.ErrDuplicateKey)
}

func (s *UserServiceTestSuite) TestLogin() {
	username := gofakeit.Username()
	password := gofakeit.Password(true, true, true, false, false, 12)
	user := &domain.User{ID: 1, Username: username, Password: "hash"}

	s.mockUserRepo.EXPECT().FindUserByUsername(gomock.Any(), username).Return(user, nil)
	s.mockHasher.EXPECT().ComparePassword(password, user.Password).Return(true)

	loggedIn, token, err := s.userService.Login(context.Background(), LoginUserArgs{
		Username: username,
		Password: password,
	})
	s.Require().NoError(err)
	s.Equal(user.ID, loggedIn.ID)

	_, validateErr := tokens.ValidateUserJWT(token, s.jwtSecret)
	s.Require().NoError(validateErr)
}

func (s *UserServiceTestSuite) TestLoginWrongPassword() {
	username := gofakeit.Username()
	user := &domain.User{ID: 1, Username: username, Password: "hash"}

	s.mockUserRepo.EXPECT().FindUserByUsername(gomock.Any(), username).Return(user, nil)
	s.mockHasher.EXPECT().ComparePassword("wrong", user.Password).Return(false)

	_, _, err := s.userService.Login(context.Background(), LoginUserArgs{
		Username: username,
		Password: "wrong",
	})
	s.Require().ErrorIs(err, domain.ErrPasswordMissMatch)
}

func (s *UserServiceTestSuite) TestLoginUnknownUser() {
	s.mockUserRepo.EXPECT().FindUserByUsername(gomock.Any(), "ghost").
		Return(nil, domain.ErrRecordNotFound)

	_, _, err := s.userService.Login(context.Background(), LoginUserArgs{
		Username: "ghost",
		Password: "whatever",
	})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *UserServiceTestSuite) TestAccountByNumber() {
	var userID int64 = 1
	account := &domain.Account{
		ID:            10,
		UserID:        userID,
		AccountNumber: "ACC1A2B3C4D5",
		AccountType:   "Savings",
		Balance:       decimal.NewFromInt(250),
	}

	s.mockAccountRepo.EXPECT().FindByAccountNumber(gomock.Any(), account.AccountNumber).
		Return(account, nil)

	got, err := s.userService.AccountByNumber(context.Background(), userID, account.AccountNumber)
	s.Require().NoError(err)
	s.Equal(account.ID, got.ID)
}

func (s *UserServiceTestSuite) TestAccountByNumberForeignAccount() {
	// Чужой счет неотличим от несуществующего.
	account := &domain.Account{ID: 10, UserID: 2, AccountNumber: "ACC1A2B3C4D5"}

	s.mockAccountRepo.EXPECT().FindByAccountNumber(gomock.Any(), account.AccountNumber).
		Return(account, nil)

	_, err := s.userService.AccountByNumber(context.Background(), 1, account.AccountNumber)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *UserServiceTestSuite) TestAccountByNumberUnknown() {
	s.mockAccountRepo.EXPECT().FindByAccountNumber(gomock.Any(), "ACCMISSING").
		Return(nil, domain.ErrRecordNotFound)

	_, err := s.userService.AccountByNumber(context.Background(), 1, "ACCMISSING")
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *UserServiceTestSuite) TestUpdateProfile() {
	args := UpdateProfileArgs{
		UserID:   1,
		FullName: gofakeit.Name(),
		Email:    gofakeit.Email(),
		Phone:    gofakeit.Phone(),
	}

	s.mockUserRepo.EXPECT().UpdateProfile(gomock.Any(), repoargs.UpdateProfile{
		UserID:   args.UserID,
		FullName: args.FullName,
		Email:    args.Email,
		Phone:    args.Phone,
	}).Return(&domain.User{ID: 1, FullName: args.FullName}, nil)

	user, err := s.userService.UpdateProfile(context.Background(), args)
	s.Require().NoError(err)
	s.Equal(args.FullName, user.FullName)
}
