package service

import (
	"fmt"

	"github.com/fsdevblog/groph-bank/pkg/uow"
)

type AppServices struct {
	UserService      *UserService
	MoneyService     *MoneyService
	StatementService *StatementService
}

func Factory(unitOfWork uow.UOW, jwtSecret []byte, hasher PasswordHasher) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, jwtSecret, hasher)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	moneyService, moneyServiceErr := NewMoneyService(unitOfWork)
	if moneyServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", moneyServiceErr.Error())
	}

	statementService, statementServiceErr := NewStatementService(unitOfWork)
	if statementServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", statementServiceErr.Error())
	}

	return &AppServices{
		UserService:      userService,
		MoneyService:     moneyService,
		StatementService: statementService,
	}, nil
}
