package service

import (
	"context"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/shopspring/decimal"
)

// RecentTransactionsLimit - сколько транзакций показывает дашборд.
const RecentTransactionsLimit = 5

// StatementService - read-only сторона: выписки, последние операции и месячные
// агрегаты для дашборда. Балансы не мутирует.
type StatementService struct {
	uow             uow.UOW
	transactionRepo domain.TransactionRepository
}

func NewStatementService(u uow.UOW) (*StatementService, error) {
	rName := uow.RepositoryName(repoargs.TransactionRepoName)
	transactionRepo, repoErr := uow.GetRepositoryAs[domain.TransactionRepository](u, rName)
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	return &StatementService{
		uow:             u,
		transactionRepo: transactionRepo,
	}, nil
}

func (s *StatementService) Recent(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	transactions, err := s.transactionRepo.RecentByUser(ctx, userID, RecentTransactionsLimit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

// Latest возвращает самую свежую транзакцию юзера либо domain.ErrRecordNotFound,
// если транзакций еще нет.
func (s *StatementService) Latest(ctx context.Context, userID int64) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.Latest(ctx, userID)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transaction, nil
}

// History возвращает историю транзакций по убыванию даты. typeFilter
// регистронезависимый; "all" и пустая строка отключают фильтр.
func (s *StatementService) History(
	ctx context.Context,
	userID int64,
	typeFilter string,
) ([]domain.Transaction, error) {
	transactions, err := s.transactionRepo.HistoryByUser(ctx, userID, typeFilter)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return transactions, nil
}

type MonthlySummary struct {
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
	Net     decimal.Decimal
}

// MonthlySummary считает приход/расход/сальдо за календарный месяц, в который попадает
// month. Суммы знаковые: чистая сумма переводов раскладывается на входящую и исходящую
// части, снятия берутся по модулю.
func (s *StatementService) MonthlySummary(
	ctx context.Context,
	userID int64,
	month time.Time,
) (*MonthlySummary, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, 0)

	depositSum, depositErr := s.transactionRepo.SumByTypeBetween(ctx, userID, domain.TransactionDeposit, start, end)
	if depositErr != nil {
		return nil, depositErr //nolint:wrapcheck
	}
	withdrawSum, withdrawErr := s.transactionRepo.SumByTypeBetween(ctx, userID, domain.TransactionWithdraw, start, end)
	if withdrawErr != nil {
		return nil, withdrawErr //nolint:wrapcheck
	}
	transferNet, transferErr := s.transactionRepo.SumByTypeBetween(ctx, userID, domain.TransactionTransfer, start, end)
	if transferErr != nil {
		return nil, transferErr //nolint:wrapcheck
	}

	transferIn := decimal.Max(transferNet, decimal.Zero)
	transferOut := decimal.Min(transferNet, decimal.Zero).Abs()

	inflow := depositSum.Add(transferIn)
	outflow := withdrawSum.Abs().Add(transferOut)

	return &MonthlySummary{
		Inflow:  inflow,
		Outflow: outflow,
		Net:     inflow.Sub(outflow),
	}, nil
}
