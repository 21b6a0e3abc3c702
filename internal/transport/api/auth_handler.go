package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type AuthHandler struct {
	userService UserServicer
}

func NewAuthHandler(userService UserServicer) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

type UserRegisterParams struct {
	Username       string          `binding:"required,min=1,max=30"  json:"login"`
	Password       string          `binding:"required,min=6,max=255" json:"password"`
	FullName       string          `binding:"max=255"                json:"full_name"`
	Email          string          `binding:"omitempty,email"        json:"email"`
	Phone          string          `binding:"max=64"                 json:"phone"`
	Address        string          `binding:"max=512"                json:"address"`
	Photo          string          `binding:"max=512"                json:"photo"`
	InitialDeposit decimal.Decimal `json:"initial_deposit"`
}

type AuthResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"login"`
	Token    string `json:"token"`
}

// Register POST RouteGroup + RegisterRoute. Регистрирует пользователя вместе с его
// первым счетом и аутентифицирует его.
func (h *AuthHandler) Register(c *gin.Context) {
	var params UserRegisterParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, jwtToken, createErr := h.userService.Register(ctx, service.RegisterUserArgs{
		Username:       params.Username,
		Password:       params.Password,
		FullName:       params.FullName,
		Email:          params.Email,
		Phone:          params.Phone,
		Address:        params.Address,
		Photo:          params.Photo,
		InitialDeposit: params.InitialDeposit,
	})
	if createErr != nil {
		switch {
		case errors.Is(createErr, domain.ErrDuplicateKey):
			_ = c.AbortWithError(http.StatusConflict, errors.New("user with this login already exists")).
				SetType(gin.ErrorTypePublic)
		case errors.Is(createErr, domain.ErrInvalidAmount):
			_ = c.AbortWithError(http.StatusUnprocessableEntity, errors.New("initial deposit must not be negative")).
				SetType(gin.ErrorTypePublic)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, createErr).
				SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.Header("Authorization", "Bearer "+jwtToken)
	c.JSON(http.StatusOK, &AuthResponse{
		UserID:   user.ID,
		Username: user.Username,
		Token:    jwtToken,
	})
}

type UserLoginParams struct {
	Username string `binding:"required" json:"login"`
	Password string `binding:"required" json:"password"`
}

// Login POST RouteGroup + LoginRoute. Аутентифицирует пользователя по паре логин/пароль.
func (h *AuthHandler) Login(c *gin.Context) {
	var params UserLoginParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, jwtToken, loginErr := h.userService.Login(ctx, service.LoginUserArgs{
		Username: params.Username,
		Password: params.Password,
	})
	if loginErr != nil {
		// Не раскрываем, что именно не так: логин или пароль.
		if errors.Is(loginErr, domain.ErrRecordNotFound) || errors.Is(loginErr, domain.ErrPasswordMissMatch) {
			_ = c.AbortWithError(http.StatusUnauthorized, errors.New("invalid credentials")).
				SetType(gin.ErrorTypePublic)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, loginErr).
			SetType(gin.ErrorTypePrivate)
		return
	}

	c.Header("Authorization", "Bearer "+jwtToken)
	c.JSON(http.StatusOK, &AuthResponse{
		UserID:   user.ID,
		Username: user.Username,
		Token:    jwtToken,
	})
}
