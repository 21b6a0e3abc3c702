package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/logger"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/fsdevblog/groph-bank/internal/service/tokens"
	"github.com/fsdevblog/groph-bank/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-bank/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StatementHandlerTestSuite struct {
	suite.Suite
	router               *gin.Engine
	mockStatementService *mocks.MockStatementServicer
	jwtSecret            []byte
	jwtToken             string
	userID               int64
}

func TestStatementHandlerSuite(t *testing.T) {
	suite.Run(t, new(StatementHandlerTestSuite))
}

func (s *StatementHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockStatementService = mocks.NewMockStatementServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")
	s.userID = 1

	jwtToken, jwtErr := tokens.GenerateUserJWT(s.userID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)
	s.jwtToken = jwtToken

	s.router = New(RouterArgs{
		Logger:           logger.New(os.Stdout),
		UserService:      mocks.NewMockUserServicer(mockCtrl),
		MoneyService:     mocks.NewMockMoneyServicer(mockCtrl),
		StatementService: s.mockStatementService,
		JWTSecretKey:     s.jwtSecret,
	})
}

func (s *StatementHandlerTestSuite) getJSON(url string, token string) *http.Response {
	args := testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    url,
	}
	var opts []func(*testutils.RequestOptions)
	if token != "" {
		opts = append(opts, testutils.WithBearerToken(token))
	}

	res, err := testutils.MakeRequest(args, opts...)
	s.Require().NoError(err)
	return res
}

func (s *StatementHandlerTestSuite) TestHistory() {
	transactions := []domain.Transaction{
		{
			ID:        2,
			CreatedAt: time.Now(),
			UserID:    s.userID,
			Type:      domain.TransactionTransfer,
			Amount:    decimal.NewFromInt(-40),
		}, {
			ID:        1,
			CreatedAt: time.Now().Add(-time.Hour),
			UserID:    s.userID,
			Type:      domain.TransactionDeposit,
			Amount:    decimal.NewFromInt(100),
		},
	}

	s.mockStatementService.EXPECT().
		History(gomock.Any(), s.userID, "").
		Return(transactions, nil)

	res := s.getJSON(RouteGroup+TransactionsRoute, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var response []TransactionResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Require().Len(response, 2)
	s.Equal("transfer", response[0].Type)
	s.InDelta(-40, response[0].Amount, 0.0001)
}

func (s *StatementHandlerTestSuite) TestHistoryWithTypeFilter() {
	s.mockStatementService.EXPECT().
		History(gomock.Any(), s.userID, "withdraw").
		Return([]domain.Transaction{}, nil)

	res := s.getJSON(RouteGroup+TransactionsRoute+"?type=withdraw", s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *StatementHandlerTestSuite) TestHistoryUnauthorized() {
	res := s.getJSON(RouteGroup+TransactionsRoute, "")
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusUnauthorized, res.StatusCode)
}

func (s *StatementHandlerTestSuite) TestRecent() {
	s.mockStatementService.EXPECT().
		Recent(gomock.Any(), s.userID).
		Return([]domain.Transaction{{ID: 1, UserID: s.userID}}, nil)

	res := s.getJSON(RouteGroup+RecentRoute, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusOK, res.StatusCode)
}

func (s *StatementHandlerTestSuite) TestSummary() {
	s.mockStatementService.EXPECT().
		MonthlySummary(gomock.Any(), s.userID, gomock.Any()).
		DoAndReturn(func(_ any, _ int64, month time.Time) (*service.MonthlySummary, error) {
			s.Equal(2025, month.Year())
			s.Equal(time.July, month.Month())
			return &service.MonthlySummary{
				Inflow:  decimal.NewFromInt(300),
				Outflow: decimal.NewFromInt(150),
				Net:     decimal.NewFromInt(150),
			}, nil
		})
	s.mockStatementService.EXPECT().
		Latest(gomock.Any(), s.userID).
		Return(&domain.Transaction{
			ID:        5,
			CreatedAt: time.Now(),
			UserID:    s.userID,
			Type:      domain.TransactionDeposit,
			Amount:    decimal.NewFromInt(300),
		}, nil)

	res := s.getJSON(RouteGroup+SummaryRoute+"?month=2025-07", s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var response SummaryResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.InDelta(300, response.Inflow, 0.0001)
	s.InDelta(150, response.Outflow, 0.0001)
	s.Require().NotNil(response.Latest)
	s.Equal(int64(5), response.Latest.TransactionID)
}

func (s *StatementHandlerTestSuite) TestSummaryNoTransactionsYet() {
	s.mockStatementService.EXPECT().
		MonthlySummary(gomock.Any(), s.userID, gomock.Any()).
		Return(&service.MonthlySummary{
			Inflow:  decimal.Zero,
			Outflow: decimal.Zero,
			Net:     decimal.Zero,
		}, nil)
	s.mockStatementService.EXPECT().
		Latest(gomock.Any(), s.userID).
		Return(nil, domain.ErrRecordNotFound)

	res := s.getJSON(RouteGroup+SummaryRoute, s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)

	var response SummaryResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Nil(response.Latest)
}

func (s *StatementHandlerTestSuite) TestSummaryBadMonth() {
	res := s.getJSON(RouteGroup+SummaryRoute+"?month=July", s.jwtToken)
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}
