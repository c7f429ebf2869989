package commissions

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	commissionRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/commission"
)

// Service учет комиссии платформы по подтвержденным бронированиям.
// Методы рассчитаны на вызов внутри транзакции изменения бронирования.
type Service struct {
	repo         CommissionRepository
	rateBps      int64
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает сервис комиссий со ставкой rateBps (1500 = 15%)
func NewService(repo CommissionRepository, rateBps int64, logger Logger) (*Service, error) {
	if rateBps < 0 || rateBps > 10000 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRate, rateBps)
	}

	return &Service{
		repo:         repo,
		rateBps:      rateBps,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}, nil
}

// RateBps текущая ставка в базисных пунктах
func (s *Service) RateBps() int64 {
	return s.rateBps
}

// OnConfirmed создает или пересчитывает комиссию по текущей цене бронирования.
// Выплаченная комиссия возвращается без изменений.
// При нулевой цене записи нет: невыплаченная удаляется, новая не создается.
func (s *Service) OnConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Commission, error) {
	existing, err := s.repo.GetByBookingID(ctx, booking.ID)
	if err != nil && !errors.Is(err, commissionRepo.ErrCommissionNotFound) {
		s.logger.Error("OnConfirmed: failed to get commission for booking id=%d: %v", booking.ID, err)
		return nil, fmt.Errorf("%w: OnConfirmed - get commission: %v", ErrInternal, err)
	}

	if existing != nil && existing.Processed {
		s.logger.Info("OnConfirmed: commission id=%d for booking id=%d already paid out, keeping it", existing.ID, booking.ID)
		return existing, nil
	}

	if booking.TotalPriceCents <= 0 {
		if existing != nil {
			if err := s.repo.DeleteUnprocessed(ctx, booking.ID); err != nil {
				s.logger.Error("OnConfirmed: failed to drop commission for zero-priced booking id=%d: %v", booking.ID, err)
				return nil, fmt.Errorf("%w: OnConfirmed - delete commission: %v", ErrInternal, err)
			}
		}
		s.logger.Info("OnConfirmed: booking id=%d has zero total, no commission", booking.ID)
		return nil, nil
	}

	commission, net := domain.SplitCommission(booking.TotalPriceCents, s.rateBps)

	if existing == nil {
		created, err := s.repo.Create(ctx, &domain.Commission{
			BookingID:       booking.ID,
			OwnerID:         booking.OwnerID,
			TotalCents:      booking.TotalPriceCents,
			CommissionCents: commission,
			NetCents:        net,
			CreatedAt:       s.timeProvider.Now(),
		})
		if err != nil {
			s.logger.Error("OnConfirmed: failed to create commission for booking id=%d: %v", booking.ID, err)
			return nil, fmt.Errorf("%w: OnConfirmed - create commission: %v", ErrInternal, err)
		}

		s.logger.Info("OnConfirmed: created commission id=%d for booking id=%d total=%d commission=%d net=%d",
			created.ID, booking.ID, created.TotalCents, created.CommissionCents, created.NetCents)
		return created, nil
	}

	if existing.TotalCents == booking.TotalPriceCents && existing.CommissionCents == commission {
		return existing, nil
	}

	existing.TotalCents = booking.TotalPriceCents
	existing.CommissionCents = commission
	existing.NetCents = net
	if err := s.repo.UpdateAmounts(ctx, existing); err != nil {
		if errors.Is(err, commissionRepo.ErrAlreadyProcessed) {
			return nil, domain.ErrAlreadyConsolidated
		}
		s.logger.Error("OnConfirmed: failed to update commission id=%d: %v", existing.ID, err)
		return nil, fmt.Errorf("%w: OnConfirmed - update commission: %v", ErrInternal, err)
	}

	s.logger.Info("OnConfirmed: updated commission id=%d for booking id=%d total=%d commission=%d net=%d",
		existing.ID, booking.ID, existing.TotalCents, existing.CommissionCents, existing.NetCents)
	return existing, nil
}

// OnCanceled аннулирует невыплаченную комиссию бронирования.
// Выплаченную комиссию аннулировать нельзя: domain.ErrAlreadyConsolidated.
func (s *Service) OnCanceled(ctx context.Context, bookingID int64) error {
	existing, err := s.repo.GetByBookingID(ctx, bookingID)
	if errors.Is(err, commissionRepo.ErrCommissionNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("OnCanceled: failed to get commission for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: OnCanceled - get commission: %v", ErrInternal, err)
	}

	if existing.Processed {
		s.logger.Warn("OnCanceled: commission id=%d for booking id=%d is already paid out", existing.ID, bookingID)
		return domain.ErrAlreadyConsolidated
	}

	if err := s.repo.DeleteUnprocessed(ctx, bookingID); err != nil {
		if errors.Is(err, commissionRepo.ErrCommissionNotFound) {
			return domain.ErrAlreadyConsolidated
		}
		s.logger.Error("OnCanceled: failed to void commission for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: OnCanceled - delete commission: %v", ErrInternal, err)
	}

	s.logger.Info("OnCanceled: voided commission id=%d for booking id=%d", existing.ID, bookingID)
	return nil
}

// IsConsolidated проверяет, вошла ли комиссия бронирования в выплату
func (s *Service) IsConsolidated(ctx context.Context, bookingID int64) (bool, error) {
	existing, err := s.repo.GetByBookingID(ctx, bookingID)
	if errors.Is(err, commissionRepo.ErrCommissionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: IsConsolidated - get commission: %v", ErrInternal, err)
	}
	return existing.Processed, nil
}
