package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/shopspring/decimal"
)

// MoneyService - движок денежных операций. Каждая операция (пополнение, снятие,
// перевод) выполняется целиком внутри одного unit of work: либо фиксируются все
// изменения балансов вместе с записями транзакций, либо ничего.
//
// Проверки баланса выполняются только по значениям, прочитанным под блокировкой
// строки внутри транзакции. Значения, закэшированные до начала операции,
// для проверок не используются.
type MoneyService struct {
	uow      uow.UOW
	inflight *inflightGuard
}

func NewMoneyService(u uow.UOW) (*MoneyService, error) {
	// Фейлимся на старте, если какой-то из репозиториев не зарегистрирован.
	names := []repoargs.RepositoryName{
		repoargs.UserRepoName,
		repoargs.AccountRepoName,
		repoargs.TransactionRepoName,
	}
	for _, name := range names {
		if _, err := u.GetRepository(uow.RepositoryName(name)); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}
	return &MoneyService{
		uow:      u,
		inflight: newInflightGuard(),
	}, nil
}

// Deposit увеличивает баланс юзера на amount, зеркалирует изменение в основной счет
// (счет с наименьшим id, если есть) и пишет транзакцию типа deposit с положительной
// суммой. Возвращает созданную транзакцию.
//
// Ошибки: domain.ErrInvalidAmount (amount <= 0, до обращения к базе),
// domain.ErrOperationInProgress, ошибки хранилища.
func (m *MoneyService) Deposit(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	description string,
) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("processing deposit: %w", domain.ErrInvalidAmount)
	}
	if !m.inflight.tryAcquire(userID) {
		return nil, fmt.Errorf("processing deposit: %w", domain.ErrOperationInProgress)
	}
	defer m.inflight.release(userID)

	var created *domain.Transaction
	txErr := m.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[domain.UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		balance, lockErr := userRepo.LockBalance(c, userID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if updErr := userRepo.UpdateBalance(c, userID, balance.Add(amount)); updErr != nil {
			return updErr //nolint:wrapcheck
		}

		if mirrorErr := m.mirrorPrimaryAccount(c, tx, userID, amount); mirrorErr != nil {
			return mirrorErr
		}

		var createErr error
		created, createErr = m.appendTransaction(c, tx, repoargs.TransactionCreate{
			UserID:      userID,
			Type:        string(domain.TransactionDeposit),
			Amount:      amount,
			Description: description,
		})
		return createErr
	})

	if txErr != nil {
		return nil, fmt.Errorf("processing deposit: %w", txErr)
	}
	return created, nil
}

// Withdraw уменьшает баланс юзера на amount и пишет транзакцию типа withdraw
// с отрицательной суммой. Баланс проверяется после взятия блокировки.
//
// Ошибки: domain.ErrInvalidAmount, domain.ErrNotEnoughBalance,
// domain.ErrOperationInProgress, ошибки хранилища.
func (m *MoneyService) Withdraw(
	ctx context.Context,
	userID int64,
	amount decimal.Decimal,
	description string,
) (*domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("processing withdrawal: %w", domain.ErrInvalidAmount)
	}
	if !m.inflight.tryAcquire(userID) {
		return nil, fmt.Errorf("processing withdrawal: %w", domain.ErrOperationInProgress)
	}
	defer m.inflight.release(userID)

	var created *domain.Transaction
	txErr := m.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[domain.UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		balance, lockErr := userRepo.LockBalance(c, userID)
		if lockErr != nil {
			return lockErr //nolint:wrapcheck
		}
		if balance.LessThan(amount) {
			return domain.ErrNotEnoughBalance
		}
		if updErr := userRepo.UpdateBalance(c, userID, balance.Sub(amount)); updErr != nil {
			return updErr //nolint:wrapcheck
		}

		if mirrorErr := m.mirrorPrimaryAccount(c, tx, userID, amount.Neg()); mirrorErr != nil {
			return mirrorErr
		}

		var createErr error
		created, createErr = m.appendTransaction(c, tx, repoargs.TransactionCreate{
			UserID:      userID,
			Type:        string(domain.TransactionWithdraw),
			Amount:      amount.Neg(),
			Description: description,
		})
		return createErr
	})

	if txErr != nil {
		return nil, fmt.Errorf("processing withdrawal: %w", txErr)
	}
	return created, nil
}

// Transfer переводит amount от юзера senderID юзеру с юзернеймом recipientUsername.
// Внутри одной транзакции: получатель резолвится по юзернейму, строки обоих юзеров
// блокируются строго по возрастанию user_id (иначе два встречных перевода могут
// взаимно заблокироваться), баланс отправителя перепроверяется под блокировкой,
// пишутся ровно две записи: -amount отправителю и +amount получателю.
//
// Ошибки: domain.ErrInvalidAmount, domain.ErrRecipientNotFound,
// domain.ErrSelfTransfer, domain.ErrNotEnoughBalance,
// domain.ErrOperationInProgress, ошибки хранилища.
func (m *MoneyService) Transfer(
	ctx context.Context,
	senderID int64,
	recipientUsername string,
	amount decimal.Decimal,
	note string,
) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("processing transfer: %w", domain.ErrInvalidAmount)
	}
	if !m.inflight.tryAcquire(senderID) {
		return fmt.Errorf("processing transfer: %w", domain.ErrOperationInProgress)
	}
	defer m.inflight.release(senderID)

	txErr := m.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, userRepoErr := uow.GetAs[domain.UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
		if userRepoErr != nil {
			return userRepoErr //nolint:wrapcheck
		}

		sender, senderErr := userRepo.FindUserByID(c, senderID)
		if senderErr != nil {
			return senderErr //nolint:wrapcheck
		}

		recipient, recipientErr := userRepo.FindUserByUsername(c, recipientUsername)
		if recipientErr != nil {
			if errors.Is(recipientErr, domain.ErrRecordNotFound) {
				return domain.ErrRecipientNotFound
			}
			return recipientErr //nolint:wrapcheck
		}
		if recipient.ID == sender.ID {
			return domain.ErrSelfTransfer
		}

		senderBalance, recipientBalance, lockErr := lockPairOrdered(c, userRepo, sender.ID, recipient.ID)
		if lockErr != nil {
			return lockErr
		}
		if senderBalance.LessThan(amount) {
			return domain.ErrNotEnoughBalance
		}

		if updErr := userRepo.UpdateBalance(c, sender.ID, senderBalance.Sub(amount)); updErr != nil {
			return updErr //nolint:wrapcheck
		}
		if updErr := userRepo.UpdateBalance(c, recipient.ID, recipientBalance.Add(amount)); updErr != nil {
			return updErr //nolint:wrapcheck
		}

		if mirrorErr := m.mirrorPrimaryAccount(c, tx, sender.ID, amount.Neg()); mirrorErr != nil {
			return mirrorErr
		}
		if mirrorErr := m.mirrorPrimaryAccount(c, tx, recipient.ID, amount); mirrorErr != nil {
			return mirrorErr
		}

		if _, createErr := m.appendTransaction(c, tx, repoargs.TransactionCreate{
			UserID:      sender.ID,
			Type:        string(domain.TransactionTransfer),
			Amount:      amount.Neg(),
			Description: transferDescription("To", recipient.Username, note),
		}); createErr != nil {
			return createErr
		}
		_, createErr := m.appendTransaction(c, tx, repoargs.TransactionCreate{
			UserID:      recipient.ID,
			Type:        string(domain.TransactionTransfer),
			Amount:      amount,
			Description: transferDescription("From", sender.Username, note),
		})
		return createErr
	})

	if txErr != nil {
		return fmt.Errorf("processing transfer: %w", txErr)
	}
	return nil
}

// lockPairOrdered блокирует строки двух юзеров в детерминированном глобальном порядке
// (по возрастанию id) и возвращает их балансы в исходном порядке аргументов.
func lockPairOrdered(
	ctx context.Context,
	userRepo domain.UserRepository,
	firstID, secondID int64,
) (decimal.Decimal, decimal.Decimal, error) {
	lowID, highID := firstID, secondID
	if highID < lowID {
		lowID, highID = highID, lowID
	}

	lowBalance, lowErr := userRepo.LockBalance(ctx, lowID)
	if lowErr != nil {
		return decimal.Decimal{}, decimal.Decimal{}, lowErr //nolint:wrapcheck
	}
	highBalance, highErr := userRepo.LockBalance(ctx, highID)
	if highErr != nil {
		return decimal.Decimal{}, decimal.Decimal{}, highErr //nolint:wrapcheck
	}

	if firstID == lowID {
		return lowBalance, highBalance, nil
	}
	return highBalance, lowBalance, nil
}

// mirrorPrimaryAccount применяет знаковую дельту к счету юзера с наименьшим id.
// Отсутствие счетов не ошибка: баланс юзера остается единственным носителем суммы.
func (m *MoneyService) mirrorPrimaryAccount(
	ctx context.Context,
	tx uow.TX,
	userID int64,
	delta decimal.Decimal,
) error {
	accountRepo, accountRepoErr := uow.GetAs[domain.AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return accountRepoErr //nolint:wrapcheck
	}

	accounts, accountsErr := accountRepo.AccountsForUser(ctx, userID)
	if accountsErr != nil {
		return accountsErr //nolint:wrapcheck
	}
	if len(accounts) == 0 {
		return nil
	}

	primary := accounts[0]
	balance, lockErr := accountRepo.LockBalance(ctx, primary.ID)
	if lockErr != nil {
		return lockErr //nolint:wrapcheck
	}
	return accountRepo.SetBalance(ctx, primary.ID, balance.Add(delta)) //nolint:wrapcheck
}

func (m *MoneyService) appendTransaction(
	ctx context.Context,
	tx uow.TX,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	transactionRepo, repoErr :=
		uow.GetAs[domain.TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	return transactionRepo.Create(ctx, args) //nolint:wrapcheck
}

func transferDescription(direction, username, note string) string {
	if note == "" {
		return fmt.Sprintf("%s: %s", direction, username)
	}
	return fmt.Sprintf("%s: %s - %s", direction, username, note)
}
