package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	userService UserServicer
}

func NewProfileHandler(userService UserServicer) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

type AccountResponse struct {
	AccountNumber string  `json:"account_number"`
	AccountType   string  `json:"account_type"`
	Balance       float64 `json:"balance"`
}

type ProfileResponse struct {
	Username string            `json:"login"`
	FullName string            `json:"full_name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	Address  string            `json:"address"`
	Photo    string            `json:"photo"`
	Role     string            `json:"role"`
	Balance  float64           `json:"balance"`
	Accounts []AccountResponse `json:"accounts"`
}

// Show GET RouteGroup + ProfileRoute. Возвращает профиль текущего юзера вместе
// с его счетами.
func (h *ProfileHandler) Show(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, userErr := h.userService.GetByID(ctx, currentUserID)
	if userErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, userErr).SetType(gin.ErrorTypePrivate)
		return
	}

	accounts, accountsErr := h.userService.Accounts(ctx, currentUserID)
	if accountsErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, accountsErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, convertProfile(user, accounts))
}

// ShowAccount GET RouteGroup + AccountRoute. Возвращает один счет текущего юзера
// по номеру. Для несуществующего или чужого счета ответ одинаковый: 404.
func (h *ProfileHandler) ShowAccount(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)
	accountNumber := c.Param("number")

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.userService.AccountByNumber(ctx, currentUserID, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{
		AccountNumber: account.AccountNumber,
		AccountType:   account.AccountType,
		Balance:       account.Balance.InexactFloat64(),
	})
}

type UpdateProfileParams struct {
	FullName string `binding:"max=255"         json:"full_name"`
	Email    string `binding:"omitempty,email" json:"email"`
	Phone    string `binding:"max=64"          json:"phone"`
	Address  string `binding:"max=512"         json:"address"`
	Photo    string `binding:"max=512"         json:"photo"`
}

// Update PUT RouteGroup + ProfileRoute. Обновляет контактные поля профиля.
func (h *ProfileHandler) Update(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params UpdateProfileParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, updErr := h.userService.UpdateProfile(ctx, service.UpdateProfileArgs{
		UserID:   currentUserID,
		FullName: params.FullName,
		Email:    params.Email,
		Phone:    params.Phone,
		Address:  params.Address,
		Photo:    params.Photo,
	})
	if updErr != nil {
		if errors.Is(updErr, domain.ErrRecordNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, updErr).SetType(gin.ErrorTypePrivate)
		return
	}

	accounts, accountsErr := h.userService.Accounts(ctx, currentUserID)
	if accountsErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, accountsErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, convertProfile(user, accounts))
}

func convertProfile(user *domain.User, accounts []domain.Account) *ProfileResponse {
	accountItems := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		accountItems[i] = AccountResponse{
			AccountNumber: account.AccountNumber,
			AccountType:   account.AccountType,
			Balance:       account.Balance.InexactFloat64(),
		}
	}
	return &ProfileResponse{
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		Address:  user.Address,
		Photo:    user.Photo,
		Role:     string(user.Role),
		Balance:  user.Balance.InexactFloat64(),
		Accounts: accountItems,
	}
}
