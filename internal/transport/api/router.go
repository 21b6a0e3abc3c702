package api

import (
	"time"

	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup        = "/api"
	RegisterRoute     = "/user/register"
	LoginRoute        = "/user/login"
	ProfileRoute      = "/user/profile"
	AccountRoute      = "/user/accounts/:number"
	DepositRoute      = "/user/deposit"
	WithdrawRoute     = "/user/withdraw"
	TransferRoute     = "/user/transfer"
	TransactionsRoute = "/user/transactions"
	RecentRoute       = "/user/transactions/recent"
	SummaryRoute      = "/user/summary"
)

type RouterArgs struct {
	Logger           *logrus.Logger
	UserService      UserServicer
	MoneyService     MoneyServicer
	StatementService StatementServicer
	JWTSecretKey     []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	authHandler := NewAuthHandler(args.UserService)
	profileHandler := NewProfileHandler(args.UserService)
	moneyHandler := NewMoneyHandler(args.MoneyService, args.UserService)
	statementHandler := NewStatementHandler(args.StatementService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(ProfileRoute, profileHandler.Show)
	api.PUT(ProfileRoute, profileHandler.Update)
	api.GET(AccountRoute, profileHandler.ShowAccount)

	api.POST(DepositRoute, moneyHandler.Deposit)
	api.POST(WithdrawRoute, moneyHandler.Withdraw)
	api.POST(TransferRoute, moneyHandler.Transfer)

	api.GET(TransactionsRoute, statementHandler.History)
	api.GET(RecentRoute, statementHandler.Recent)
	api.GET(SummaryRoute, statementHandler.Summary)
	return r
}
