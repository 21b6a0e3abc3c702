package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/gin-gonic/gin"
)

type StatementHandler struct {
	statementService StatementServicer
}

func NewStatementHandler(statementService StatementServicer) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
	}
}

// History GET RouteGroup + TransactionsRoute. Опциональный query параметр type
// фильтрует по типу транзакции ("all" или отсутствие параметра - без фильтра).
func (h *StatementHandler) History(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)
	typeFilter := c.Query("type")

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.statementService.History(ctx, currentUserID, typeFilter)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, convertTransactions(transactions))
}

// Recent GET RouteGroup + RecentRoute. Последние 5 транзакций для дашборда.
func (h *StatementHandler) Recent(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	transactions, err := h.statementService.Recent(ctx, currentUserID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, convertTransactions(transactions))
}

type SummaryResponse struct {
	Inflow  float64              `json:"inflow"`
	Outflow float64              `json:"outflow"`
	Net     float64              `json:"net"`
	Latest  *TransactionResponse `json:"latest,omitempty"`
}

// Summary GET RouteGroup + SummaryRoute. Месячные агрегаты и последняя транзакция.
// Опциональный query параметр month в формате 2006-01, по умолчанию - текущий месяц.
func (h *StatementHandler) Summary(c *gin.Context) {
	currentUserID := getUserIDFromContext(c)

	month := time.Now()
	if monthParam := c.Query("month"); monthParam != "" {
		parsed, parseErr := time.Parse("2006-01", monthParam)
		if parseErr != nil {
			_ = c.AbortWithError(http.StatusBadRequest, parseErr).SetType(gin.ErrorTypeBind)
			return
		}
		month = parsed
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	summary, summaryErr := h.statementService.MonthlySummary(ctx, currentUserID, month)
	if summaryErr != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, summaryErr).SetType(gin.ErrorTypePrivate)
		return
	}

	response := SummaryResponse{
		Inflow:  summary.Inflow.InexactFloat64(),
		Outflow: summary.Outflow.InexactFloat64(),
		Net:     summary.Net.InexactFloat64(),
	}

	latest, latestErr := h.statementService.Latest(ctx, currentUserID)
	switch {
	case latestErr == nil:
		item := convertTransaction(latest)
		response.Latest = &item
	case errors.Is(latestErr, domain.ErrRecordNotFound):
		// транзакций еще нет, Latest остается пустым.
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, latestErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &response)
}

func convertTransactions(transactions []domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		response[i] = convertTransaction(&transaction)
	}
	return response
}
