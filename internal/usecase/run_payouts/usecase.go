package run_payouts

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// UseCase сводит невыплаченные комиссии в выплаты по владельцам
type UseCase struct {
	commissionRepo CommissionRepository
	payoutRepo     PayoutRepository
	txManager      TransactionManager
	metrics        MetricsRecorder
	timeProvider   TimeProvider
	newRunID       func() uuid.UUID
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	commissionRepo CommissionRepository,
	payoutRepo PayoutRepository,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		commissionRepo: commissionRepo,
		payoutRepo:     payoutRepo,
		txManager:      txManager,
		metrics:        metrics,
		timeProvider:   &RealTimeProvider{},
		newRunID:       uuid.New,
		logger:         logger,
	}
}

// Execute выполняет запуск. Комиссии каждого владельца обрабатываются в отдельной
// транзакции: выплата создается и комиссии помечаются вместе или не происходит ничего.
// Ошибка по одному владельцу не останавливает остальных.
func (uc *UseCase) Execute(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:   uc.newRunID(),
		Payouts: make([]*domain.Payout, 0),
		Failed:  make([]OwnerFailure, 0),
	}

	owners, err := uc.commissionRepo.ListOwnersWithUnprocessed(ctx)
	if err != nil {
		uc.logger.Error("RunPayouts: run=%s failed to list owners: %v", result.RunID, err)
		return nil, fmt.Errorf("%w: %v", ErrListOwners, err)
	}

	uc.logger.Info("RunPayouts: run=%s started, owners=%d", result.RunID, len(owners))

	for _, ownerID := range owners {
		payout, err := uc.payOwner(ctx, result.RunID, ownerID)
		if err != nil {
			uc.metrics.RecordPayoutFailure()
			uc.logger.Error("RunPayouts: run=%s owner=%d failed: %v", result.RunID, ownerID, err)
			result.Failed = append(result.Failed, OwnerFailure{OwnerID: ownerID, Error: err.Error()})
			continue
		}
		if payout == nil {
			continue
		}

		uc.metrics.RecordPayout(payout.TotalNetCents)
		result.Payouts = append(result.Payouts, payout)
		result.TotalNetCents += payout.TotalNetCents
	}

	uc.logger.Info("RunPayouts: run=%s finished, payouts=%d, failed=%d, net=%d",
		result.RunID, len(result.Payouts), len(result.Failed), result.TotalNetCents)

	return result, nil
}

// payOwner блокирует невыплаченные комиссии владельца, создает выплату и помечает их.
// Если комиссии успел забрать параллельный запуск, возвращает nil.
func (uc *UseCase) payOwner(ctx context.Context, runID uuid.UUID, ownerID int64) (*domain.Payout, error) {
	var created *domain.Payout

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		commissions, err := uc.commissionRepo.ListUnprocessedByOwner(txCtx, ownerID)
		if err != nil {
			return fmt.Errorf("%w: list commissions: %v", ErrInternal, err)
		}
		if len(commissions) == 0 {
			return nil
		}

		now := uc.timeProvider.Now()
		payout := &domain.Payout{
			RunID:         runID,
			OwnerID:       ownerID,
			CommissionIDs: make([]int64, 0, len(commissions)),
			CreatedAt:     now,
		}
		for _, c := range commissions {
			payout.TotalNetCents += c.NetCents
			payout.CommissionIDs = append(payout.CommissionIDs, c.ID)
		}

		payout, err = uc.payoutRepo.Create(txCtx, payout)
		if err != nil {
			return fmt.Errorf("%w: create payout: %v", ErrInternal, err)
		}

		if err := uc.commissionRepo.MarkProcessed(txCtx, payout.CommissionIDs, payout.ID, now); err != nil {
			return fmt.Errorf("%w: mark processed: %v", ErrInternal, err)
		}

		created = payout
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}
