package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MoneyHandler struct {
	moneyService MoneyServicer
	userService  UserServicer
}

func NewMoneyHandler(moneyService MoneyServicer, userService UserServicer) *MoneyHandler {
	return &MoneyHandler{
		moneyService: moneyService,
		userService:  userService,
	}
}

type DepositParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
	Source string          `binding:"max=255"  json:"source"`
	Note   string          `binding:"max=512"  json:"note"`
}

type TransactionResponse struct {
	TransactionID int64   `json:"transaction_id"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	Description   string  `json:"description"`
	CreatedAt     string  `json:"created_at"`
}

type MoneyOperationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Balance     float64             `json:"balance"`
}

// Deposit POST RouteGroup + DepositRoute.
func (h *MoneyHandler) Deposit(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params DepositParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.moneyService.Deposit(ctx, currentUserID, params.Amount, buildDescription(params.Source, params.Note))
	if err != nil {
		abortMoneyOperation(c, err)
		return
	}

	h.respondWithBalance(ctx, c, currentUserID, transaction)
}

type WithdrawParams struct {
	Amount decimal.Decimal `binding:"required" json:"amount"`
	Note   string          `binding:"max=512"  json:"note"`
}

// Withdraw POST RouteGroup + WithdrawRoute.
func (h *MoneyHandler) Withdraw(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params WithdrawParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transaction, err := h.moneyService.Withdraw(ctx, currentUserID, params.Amount, params.Note)
	if err != nil {
		abortMoneyOperation(c, err)
		return
	}

	h.respondWithBalance(ctx, c, currentUserID, transaction)
}

type TransferParams struct {
	To     string          `binding:"required" json:"to"`
	Amount decimal.Decimal `binding:"required" json:"amount"`
	Note   string          `binding:"max=512"  json:"note"`
}

// Transfer POST RouteGroup + TransferRoute. Переводит средства юзеру с юзернеймом To.
func (h *MoneyHandler) Transfer(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	var params TransferParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.moneyService.Transfer(ctx, currentUserID, params.To, params.Amount, params.Note); err != nil {
		abortMoneyOperation(c, err)
		return
	}

	user, userErr := h.userService.GetByID(ctx, currentUserID)
	if userErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, userErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": user.Balance.InexactFloat64()})
}

// abortMoneyOperation мапит ошибки движка на http статусы. Бизнес-ошибки уходят
// клиенту как публичные, ошибки хранилища остаются приватными и попадают в лог.
func abortMoneyOperation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		_ = c.AbortWithError(http.StatusUnprocessableEntity, errors.New("amount must be positive")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrNotEnoughBalance):
		_ = c.AbortWithError(http.StatusPaymentRequired, errors.New("not enough balance")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecipientNotFound):
		_ = c.AbortWithError(http.StatusNotFound, errors.New("recipient not found")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrSelfTransfer):
		_ = c.AbortWithError(http.StatusConflict, errors.New("transfer to self is not allowed")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrOperationInProgress):
		_ = c.AbortWithError(http.StatusConflict, errors.New("previous operation is still in progress")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}

func (h *MoneyHandler) respondWithBalance(
	ctx context.Context,
	c *gin.Context,
	userID int64,
	transaction *domain.Transaction,
) {
	user, userErr := h.userService.GetByID(ctx, userID)
	if userErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, userErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &MoneyOperationResponse{
		Transaction: convertTransaction(transaction),
		Balance:     user.Balance.InexactFloat64(),
	})
}

func convertTransaction(transaction *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: transaction.ID,
		Type:          string(transaction.Type),
		Amount:        transaction.Amount.InexactFloat64(),
		Description:   transaction.Description,
		CreatedAt:     transaction.CreatedAt.Format(time.RFC3339),
	}
}

// buildDescription собирает описание в формате оригинальной формы пополнения:
// источник средств и опциональная заметка через дефис.
func buildDescription(source, note string) string {
	switch {
	case source == "":
		return note
	case note == "":
		return source
	default:
		return source + " - " + note
	}
}
