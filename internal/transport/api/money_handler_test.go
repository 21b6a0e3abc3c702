package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/logger"
	"github.com/fsdevblog/groph-bank/internal/service/tokens"
	"github.com/fsdevblog/groph-bank/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-bank/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MoneyHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockUserService  *mocks.MockUserServicer
	mockMoneyService *mocks.MockMoneyServicer
	jwtSecret        []byte
	jwtToken         string
	userID           int64
}

func TestMoneyHandlerSuite(t *testing.T) {
	suite.Run(t, new(MoneyHandlerTestSuite))
}

func (s *MoneyHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.mockMoneyService = mocks.NewMockMoneyServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")
	s.userID = 1

	jwtToken, jwtErr := tokens.GenerateUserJWT(s.userID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)
	s.jwtToken = jwtToken

	s.router = New(RouterArgs{
		Logger:           logger.New(os.Stdout),
		UserService:      s.mockUserService,
		MoneyService:     s.mockMoneyService,
		StatementService: mocks.NewMockStatementServicer(mockCtrl),
		JWTSecretKey:     s.jwtSecret,
	})
}

func (s *MoneyHandlerTestSuite) postJSON(route string, payload any, token string) *http.Response {
	body, marshalErr := json.Marshal(payload)
	s.Require().NoError(marshalErr)

	args := testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + route,
		Body:   bytes.NewReader(body),
	}
	opts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Content-Type", "application/json"),
	}
	if token != "" {
		opts = append(opts, testutils.WithBearerToken(token))
	}

	res, err := testutils.MakeRequest(args, opts...)
	s.Require().NoError(err)
	return res
}

func (s *MoneyHandlerTestSuite) TestDeposit() {
	amount := decimal.NewFromInt(100)
	transaction := &domain.Transaction{
		ID:        1,
		CreatedAt: time.Now(),
		UserID:    s.userID,
		Type:      domain.TransactionDeposit,
		Amount:    amount,
	}

	s.mockMoneyService.EXPECT().
		Deposit(gomock.Any(), s.userID, amount, "Cash").
		Return(transaction, nil)
	s.mockUserService.EXPECT().
		GetByID(gomock.Any(), s.userID).
		Return(&domain.User{ID: s.userID, Balance: decimal.NewFromInt(100)}, nil)

	res := s.postJSON(DepositRoute, gin.H{"amount": 100, "source": "Cash"}, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var response MoneyOperationResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.InDelta(100, response.Balance, 0.0001)
	s.Equal("deposit", response.Transaction.Type)
}

func (s *MoneyHandlerTestSuite) TestDepositErrors() {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "invalid amount",
			serviceErr: domain.ErrInvalidAmount,
			wantStatus: http.StatusUnprocessableEntity,
		}, {
			name:       "operation in progress",
			serviceErr: domain.ErrOperationInProgress,
			wantStatus: http.StatusConflict,
		}, {
			name:       "storage failure",
			serviceErr: errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockMoneyService.EXPECT().
				Deposit(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).
				Return(nil, t.serviceErr)

			res := s.postJSON(DepositRoute, gin.H{"amount": 10}, s.jwtToken)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}

func (s *MoneyHandlerTestSuite) TestDepositUnauthorized() {
	res := s.postJSON(DepositRoute, gin.H{"amount": 10}, "")
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *MoneyHandlerTestSuite) TestDepositBadPayload() {
	res := s.postJSON(DepositRoute, gin.H{"source": "Cash"}, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *MoneyHandlerTestSuite) TestWithdrawNotEnoughBalance() {
	s.mockMoneyService.EXPECT().
		Withdraw(gomock.Any(), s.userID, gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrNotEnoughBalance)

	res := s.postJSON(WithdrawRoute, gin.H{"amount": 9000}, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusPaymentRequired, res.StatusCode)
}

func (s *MoneyHandlerTestSuite) TestWithdraw() {
	amount := decimal.NewFromInt(50)
	transaction := &domain.Transaction{
		ID:        2,
		CreatedAt: time.Now(),
		UserID:    s.userID,
		Type:      domain.TransactionWithdraw,
		Amount:    amount.Neg(),
	}

	s.mockMoneyService.EXPECT().
		Withdraw(gomock.Any(), s.userID, amount, "rent").
		Return(transaction, nil)
	s.mockUserService.EXPECT().
		GetByID(gomock.Any(), s.userID).
		Return(&domain.User{ID: s.userID, Balance: decimal.NewFromInt(150)}, nil)

	res := s.postJSON(WithdrawRoute, gin.H{"amount": 50, "note": "rent"}, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var response MoneyOperationResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	// В ответе знаковая сумма из записи транзакции.
	s.InDelta(-50, response.Transaction.Amount, 0.0001)
}

func (s *MoneyHandlerTestSuite) TestTransfer() {
	amount := decimal.NewFromInt(40)

	s.mockMoneyService.EXPECT().
		Transfer(gomock.Any(), s.userID, "bob", amount, "debt").
		Return(nil)
	s.mockUserService.EXPECT().
		GetByID(gomock.Any(), s.userID).
		Return(&domain.User{ID: s.userID, Balance: decimal.NewFromInt(60)}, nil)

	res := s.postJSON(TransferRoute, gin.H{"to": "bob", "amount": 40, "note": "debt"}, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *MoneyHandlerTestSuite) TestTransferErrors() {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{
			name:       "recipient not found",
			serviceErr: domain.ErrRecipientNotFound,
			wantStatus: http.StatusNotFound,
		}, {
			name:       "transfer to self",
			serviceErr: domain.ErrSelfTransfer,
			wantStatus: http.StatusConflict,
		}, {
			name:       "not enough balance",
			serviceErr: domain.ErrNotEnoughBalance,
			wantStatus: http.StatusPaymentRequired,
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockMoneyService.EXPECT().
				Transfer(gomock.Any(), s.userID, gomock.Any(), gomock.Any(), gomock.Any()).
				Return(t.serviceErr)

			res := s.postJSON(TransferRoute, gin.H{"to": "bob", "amount": 10}, s.jwtToken)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(t.wantStatus, res.StatusCode)
		})
	}
}
