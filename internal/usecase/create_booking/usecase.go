package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	listingClient "github.com/m04kA/SMC-ParkingService/internal/integrations/listingservice"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	listingClient ListingClient
	detector      ConflictDetector
	calculator    PriceCalculator
	commissions   CommissionAccountant
	txManager     TransactionManager
	metrics       MetricsRecorder
	pricingMode   pricing.Mode
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	listingClient ListingClient,
	detector ConflictDetector,
	calculator PriceCalculator,
	commissions CommissionAccountant,
	txManager TransactionManager,
	metrics MetricsRecorder,
	pricingMode pricing.Mode,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		listingClient: listingClient,
		detector:      detector,
		calculator:    calculator,
		commissions:   commissions,
		txManager:     txManager,
		metrics:       metrics,
		pricingMode:   pricingMode,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка пересечений и вставка идут в одной сериализуемой транзакции,
// поэтому два параллельных запроса на одно транспортное средство не пройдут оба.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: renter=%d, vehicle=%d, listing=%d, window=[%s, %s)",
		req.RenterID, req.VehicleID, req.ListingID, req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	if err := validateWindow(req.EndTime, now); err != nil {
		uc.logger.Warn("CreateBooking: %v", err)
		return nil, err
	}

	// 2. Политика объявления: владелец, режим подтверждения, тарифы
	policy, err := uc.listingClient.GetPolicy(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, listingClient.ErrListingNotFound) {
			uc.logger.Warn("CreateBooking: listing id=%d not found", req.ListingID)
			return nil, ErrListingNotFound
		}
		uc.logger.Error("CreateBooking: failed to get listing id=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
	}

	if policy.OwnerID == req.RenterID {
		uc.logger.Warn("CreateBooking: user=%d tried to book own listing id=%d", req.RenterID, req.ListingID)
		return nil, ErrOwnListing
	}

	// 3. Цена считается по запрошенному окну один раз, до транзакции
	price := uc.calculator.Calculate(req.EndTime.Sub(req.StartTime), policy.TieredPricing, policy.HourlyRate, uc.pricingMode)

	var (
		result     *domain.Booking
		commission *domain.Commission
	)

	// 4. Проверка пересечений и сохранение в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		res, err := uc.detector.Check(txCtx, req.VehicleID, req.StartTime, req.EndTime)
		if err != nil {
			uc.logger.Error("CreateBooking: conflict check failed: %v", err)
			return fmt.Errorf("%w: conflict check: %v", ErrInternal, err)
		}
		if err := res.Err(); err != nil {
			uc.logger.Warn("CreateBooking: vehicle=%d has %d overlapping bookings", req.VehicleID, len(res.Conflicts))
			return err
		}

		booking, err := domain.NewBooking(domain.NewBookingParams{
			ListingID:     policy.ListingID,
			OwnerID:       policy.OwnerID,
			RenterID:      req.RenterID,
			VehicleID:     req.VehicleID,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			HourlyRate:    policy.HourlyRate,
			TieredPricing: policy.TieredPricing,
			Status:        policy.ApprovalMode.InitialStatus(),
			Price:         domain.Price{TotalCents: price.TotalCents, Method: price.Method},
		}, now)
		if err != nil {
			return err
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		// Автоподтвержденное бронирование сразу получает комиссию
		if created.Status.IsConfirmed() {
			commission, err = uc.commissions.OnConfirmed(txCtx, created)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to create commission for booking id=%d: %v", created.ID, err)
				return fmt.Errorf("%w: failed to create commission: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordTransition("new", string(result.Status))
	uc.logger.Info("CreateBooking: successfully created booking id=%d status=%s total=%s (%s)",
		result.ID, result.Status, price.Total, price.Method)

	resp := &Response{
		ID:              result.ID,
		ListingID:       result.ListingID,
		OwnerID:         result.OwnerID,
		RenterID:        result.RenterID,
		VehicleID:       result.VehicleID,
		StartTime:       result.StartTime,
		EndTime:         result.EndTime,
		Status:          string(result.Status),
		TotalPriceCents: result.TotalPriceCents,
		TotalPrice:      pricing.FormatCents(result.TotalPriceCents),
		PricingMethod:   result.PricingMethod,
		CreatedAt:       result.CreatedAt,
	}
	if commission != nil {
		resp.CommissionCents = &commission.CommissionCents
	}

	return resp, nil
}
