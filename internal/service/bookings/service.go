package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-ParkingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	"github.com/m04kA/SMC-ParkingService/internal/service/bookings/models"
)

// accessRule кто может выполнять операцию над бронированием
type accessRule int

const (
	ownerOnly accessRule = iota
	renterOrOwner
)

// Service сервис жизненного цикла бронирований: подтверждение, отклонение,
// отмена, продление и досрочное завершение
type Service struct {
	bookingRepo  BookingRepository
	detector     ConflictDetector
	calculator   PriceCalculator
	commissions  CommissionAccountant
	txManager    TransactionManager
	metrics      MetricsRecorder
	pricingMode  pricing.Mode
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	detector ConflictDetector,
	calculator PriceCalculator,
	commissions CommissionAccountant,
	txManager TransactionManager,
	metrics MetricsRecorder,
	pricingMode pricing.Mode,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		detector:     detector,
		calculator:   calculator,
		commissions:  commissions,
		txManager:    txManager,
		metrics:      metrics,
		pricingMode:  pricingMode,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// GetByID получает бронирование с журналом событий.
// Видеть бронирование могут арендатор и владелец места.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := checkAccess(booking, userID, renterOrOwner); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// ListForRenter бронирования арендатора. Свой список видит только сам арендатор.
func (s *Service) ListForRenter(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	return s.list(ctx, "ListForRenter", req, func(f *bookingRepo.ListFilter, id int64) { f.RenterID = &id })
}

// ListForOwner бронирования мест владельца
func (s *Service) ListForOwner(ctx context.Context, req *models.ListBookingsRequest) (*models.BookingListResponse, error) {
	return s.list(ctx, "ListForOwner", req, func(f *bookingRepo.ListFilter, id int64) { f.OwnerID = &id })
}

func (s *Service) list(
	ctx context.Context,
	op string,
	req *models.ListBookingsRequest,
	bySubject func(f *bookingRepo.ListFilter, id int64),
) (*models.BookingListResponse, error) {
	if req.UserID != req.SubjectID {
		s.logger.Warn("%s: access denied for user=%d to subject=%d", op, req.UserID, req.SubjectID)
		return nil, ErrAccessDenied
	}

	var filter bookingRepo.ListFilter
	bySubject(&filter, req.SubjectID)
	if req.Status != nil {
		status := domain.BookingStatus(*req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *req.Status)
		}
		filter.Status = &status
	}

	list, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("%s: repository error for subject=%d: %v", op, req.SubjectID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	resp := &models.BookingListResponse{Bookings: make([]*models.BookingResponse, 0, len(list))}
	for _, b := range list {
		resp.Bookings = append(resp.Bookings, models.FromDomainBooking(b))
	}
	return resp, nil
}

// Approve ручное подтверждение владельцем. Создает комиссию.
func (s *Service) Approve(ctx context.Context, bookingID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("Approve: booking id=%d by user=%d", bookingID, userID)

	return s.mutate(ctx, "Approve", bookingID, userID, ownerOnly, false,
		func(txCtx context.Context, b *domain.Booking, now time.Time) error {
			if err := b.Approve(now); err != nil {
				return err
			}
			return s.confirmCommission(txCtx, b)
		})
}

// Reject ручное отклонение владельцем
func (s *Service) Reject(ctx context.Context, bookingID int64, req *models.RejectBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Reject: booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.Reason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return s.mutate(ctx, "Reject", bookingID, req.UserID, ownerOnly, false,
		func(_ context.Context, b *domain.Booking, now time.Time) error {
			return b.Reject(req.Reason, now)
		})
}

// Cancel отмена до начала аренды. Невыплаченная комиссия аннулируется в той же транзакции.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	if len(req.CancellationReason) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellation reason is longer than %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return s.mutate(ctx, "Cancel", bookingID, req.UserID, renterOrOwner, false,
		func(txCtx context.Context, b *domain.Booking, now time.Time) error {
			if err := b.Cancel(req.CancellationReason, now); err != nil {
				return err
			}
			if err := s.commissions.OnCanceled(txCtx, b.ID); err != nil {
				if errors.Is(err, domain.ErrAlreadyConsolidated) {
					return err
				}
				return fmt.Errorf("%w: Cancel - void commission: %v", ErrInternal, err)
			}
			return nil
		})
}

// Extend переносит окончание на newEnd с полным пересчетом цены за [start, newEnd).
// Продление не должно пересекаться с другими бронированиями того же транспортного средства.
func (s *Service) Extend(ctx context.Context, bookingID int64, req *models.ExtendBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Extend: booking id=%d to %s by user=%d", bookingID, req.NewEnd.Format(time.RFC3339), req.UserID)

	if req.NewEnd.IsZero() {
		return nil, fmt.Errorf("%w: newEnd is required", ErrInvalidInput)
	}

	return s.mutate(ctx, "Extend", bookingID, req.UserID, renterOrOwner, true,
		func(txCtx context.Context, b *domain.Booking, now time.Time) error {
			if req.NewEnd.Sub(b.StartTime) > domain.MaxBookingDurationHours*time.Hour {
				return fmt.Errorf("%w: booking cannot be longer than %d hours", ErrInvalidInput, domain.MaxBookingDurationHours)
			}

			consolidated, err := s.commissions.IsConsolidated(txCtx, b.ID)
			if err != nil {
				return fmt.Errorf("%w: Extend - commission state: %v", ErrInternal, err)
			}
			if consolidated {
				return domain.ErrAlreadyConsolidated
			}

			price := s.price(b, req.NewEnd.Sub(b.StartTime))
			if err := b.Extend(req.NewEnd, price, now); err != nil {
				return err
			}

			res, err := s.detector.CheckExcluding(txCtx, b.ID, b.VehicleID, b.StartTime, b.EndTime)
			if err != nil {
				return fmt.Errorf("%w: Extend - conflict check: %v", ErrInternal, err)
			}
			if err := res.Err(); err != nil {
				s.logger.Warn("Extend: booking id=%d conflicts with %d bookings", b.ID, len(res.Conflicts))
				return err
			}

			if b.Status.IsConfirmed() {
				return s.confirmCommission(txCtx, b)
			}
			return nil
		})
}

// FinishNow досрочно завершает активное бронирование текущим моментом.
// Если комиссия уже выплачена, цена остается прежней.
func (s *Service) FinishNow(ctx context.Context, bookingID, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("FinishNow: booking id=%d by user=%d", bookingID, userID)

	return s.mutate(ctx, "FinishNow", bookingID, userID, renterOrOwner, false,
		func(txCtx context.Context, b *domain.Booking, now time.Time) error {
			consolidated, err := s.commissions.IsConsolidated(txCtx, b.ID)
			if err != nil {
				return fmt.Errorf("%w: FinishNow - commission state: %v", ErrInternal, err)
			}

			if consolidated {
				s.logger.Warn("FinishNow: booking id=%d commission already paid out, price is locked", b.ID)
				return b.FinishNow(nil, now)
			}

			price := s.price(b, b.FinishEnd(now).Sub(b.StartTime))
			if err := b.FinishNow(&price, now); err != nil {
				return err
			}
			return s.confirmCommission(txCtx, b)
		})
}

// mutate загружает бронирование с блокировкой строки, применяет fn и сохраняет результат.
// Ошибки домена (переход, пересечение, выплаченная комиссия) возвращаются как есть.
func (s *Service) mutate(
	ctx context.Context,
	op string,
	bookingID, userID int64,
	rule accessRule,
	serializable bool,
	fn func(txCtx context.Context, b *domain.Booking, now time.Time) error,
) (*models.BookingResponse, error) {
	var (
		result *domain.Booking
		from   domain.BookingStatus
	)

	run := s.txManager.Do
	if serializable {
		run = s.txManager.DoSerializable
	}

	err := run(ctx, func(txCtx context.Context) error {
		booking, err := s.bookingRepo.GetByID(txCtx, bookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}

		if err := checkAccess(booking, userID, rule); err != nil {
			return err
		}

		from = booking.Status
		if err := fn(txCtx, booking, s.timeProvider.Now()); err != nil {
			return err
		}

		if err := s.bookingRepo.Update(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrVersionConflict) {
				return ErrConcurrentModification
			}
			return fmt.Errorf("%w: %s - update booking: %v", ErrInternal, op, err)
		}

		result = booking
		return nil
	})
	if err != nil {
		s.logFailure(op, bookingID, err)
		return nil, err
	}

	if from != result.Status {
		s.metrics.RecordTransition(string(from), string(result.Status))
	}

	s.logger.Info("%s: booking id=%d status=%s total=%d version=%d", op, result.ID, result.Status, result.TotalPriceCents, result.Version)
	return models.FromDomainBooking(result), nil
}

func (s *Service) confirmCommission(ctx context.Context, b *domain.Booking) error {
	if _, err := s.commissions.OnConfirmed(ctx, b); err != nil {
		if errors.Is(err, domain.ErrAlreadyConsolidated) {
			return err
		}
		return fmt.Errorf("%w: commission for booking id=%d: %v", ErrInternal, b.ID, err)
	}
	return nil
}

// price считает стоимость по снимку тарифов, сохраненному в бронировании
func (s *Service) price(b *domain.Booking, duration time.Duration) domain.Price {
	res := s.calculator.Calculate(duration, b.TieredPricing, b.HourlyRate, s.pricingMode)
	return domain.Price{TotalCents: res.TotalCents, Method: res.Method}
}

func (s *Service) logFailure(op string, bookingID int64, err error) {
	switch {
	case errors.Is(err, ErrInternal):
		s.logger.Error("%s: booking id=%d failed: %v", op, bookingID, err)
	default:
		s.logger.Warn("%s: booking id=%d rejected: %v", op, bookingID, err)
	}
}

// checkAccess проверяет, что пользователь участвует в бронировании
func checkAccess(b *domain.Booking, userID int64, rule accessRule) error {
	if userID == b.OwnerID {
		return nil
	}
	if rule == renterOrOwner && userID == b.RenterID {
		return nil
	}
	return ErrAccessDenied
}
