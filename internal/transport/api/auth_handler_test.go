package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/logger"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/fsdevblog/groph-bank/internal/transport/api/mocks"
	"github.com/fsdevblog/groph-bank/internal/transport/api/testutils"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	router          *gin.Engine
	mockUserService *mocks.MockUserServicer
	jwtSecret       []byte
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	defer mockCtrl.Finish()

	s.mockUserService = mocks.NewMockUserServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	s.router = New(RouterArgs{
		Logger:           logger.New(os.Stdout),
		UserService:      s.mockUserService,
		MoneyService:     mocks.NewMockMoneyServicer(mockCtrl),
		StatementService: mocks.NewMockStatementServicer(mockCtrl),
		JWTSecretKey:     s.jwtSecret,
	})
}

func (s *AuthHandlerTestSuite) postJSON(route string, payload any) *http.Response {
	body, marshalErr := json.Marshal(payload)
	s.Require().NoError(marshalErr)

	res, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + route,
		Body:   bytes.NewReader(body),
	}, testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	return res
}

func (s *AuthHandlerTestSuite) TestRegister() {
	username := gofakeit.Username()
	password := gofakeit.Password(true, true, true, false, false, 12)

	s.mockUserService.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, args service.RegisterUserArgs) (*domain.User, string, error) {
			s.Equal(username, args.Username)
			s.Equal(password, args.Password)
			s.True(args.InitialDeposit.Equal(decimal.NewFromInt(500)))
			return &domain.User{ID: 1, Username: username}, "jwt-token", nil
		})

	res := s.postJSON(RegisterRoute, gin.H{
		"login":           username,
		"password":        password,
		"initial_deposit": 500,
	})
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("Bearer jwt-token", res.Header.Get("Authorization"))

	var response AuthResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&response))
	s.Equal(username, response.Username)
	s.Equal("jwt-token", response.Token)
}

func (s *AuthHandlerTestSuite) TestRegisterValidation() {
	cases := []struct {
		name    string
		payload gin.H
	}{
		{
			name:    "missing password",
			payload: gin.H{"login": gofakeit.Username()},
		}, {
			name:    "short password",
			payload: gin.H{"login": gofakeit.Username(), "password": "123"},
		}, {
			name:    "bad email",
			payload: gin.H{"login": gofakeit.Username(), "password": "password123", "email": "not-an-email"},
		},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			res := s.postJSON(RegisterRoute, t.payload)
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
		})
	}
}

func (s *AuthHandlerTestSuite) TestRegisterDuplicate() {
	s.mockUserService.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(nil, "", domain.ErrDuplicateKey)

	res := s.postJSON(RegisterRoute, gin.H{
		"login":    gofakeit.Username(),
		"password": "password123",
	})
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusConflict, res.StatusCode)
}

func (s *AuthHandlerTestSuite) TestRegisterNegativeInitialDeposit() {
	s.mockUserService.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		Return(nil, "", domain.ErrInvalidAmount)

	res := s.postJSON(RegisterRoute, gin.H{
		"login":           gofakeit.Username(),
		"password":        "password123",
		"initial_deposit": -10,
	})
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Equal(http.StatusUnprocessableEntity, res.StatusCode)
}

func (s *AuthHandlerTestSuite) TestLogin() {
	username := gofakeit.Username()

	s.mockUserService.EXPECT().
		Login(gomock.Any(), service.LoginUserArgs{Username: username, Password: "password123"}).
		Return(&domain.User{ID: 1, Username: username}, "jwt-token", nil)

	res := s.postJSON(LoginRoute, gin.H{"login": username, "password": "password123"})
	defer func() {
		s.Require().NoError(res.Body.Close())
	}()

	s.Require().Equal(http.StatusOK, res.StatusCode)
	s.Equal("Bearer jwt-token", res.Header.Get("Authorization"))
}

func (s *AuthHandlerTestSuite) TestLoginInvalidCredentials() {
	// Неизвестный логин и неверный пароль дают одинаковый ответ.
	cases := []struct {
		name       string
		serviceErr error
	}{
		{name: "unknown user", serviceErr: domain.ErrRecordNotFound},
		{name: "wrong password", serviceErr: domain.ErrPasswordMissMatch},
	}
	for _, t := range cases {
		s.Run(t.name, func() {
			s.mockUserService.EXPECT().
				Login(gomock.Any(), gomock.Any()).
				Return(nil, "", t.serviceErr)

			res := s.postJSON(LoginRoute, gin.H{"login": "someone", "password": "password123"})
			defer func() {
				s.Require().NoError(res.Body.Close())
			}()

			s.Equal(http.StatusUnauthorized, res.StatusCode)
		})
	}
}
