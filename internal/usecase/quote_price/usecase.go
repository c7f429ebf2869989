package quote_price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	listingClient "github.com/m04kA/SMC-ParkingService/internal/integrations/listingservice"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// UseCase расчет стоимости парковки без создания бронирования
type UseCase struct {
	listingClient ListingClient
	calculator    PriceCalculator
	pricingMode   pricing.Mode
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(listingClient ListingClient, calculator PriceCalculator, pricingMode pricing.Mode, logger Logger) *UseCase {
	return &UseCase{
		listingClient: listingClient,
		calculator:    calculator,
		pricingMode:   pricingMode,
		logger:        logger,
	}
}

// Execute считает стоимость. Некорректная таблица тарифов не ошибка:
// расчет уходит в fallback, а проблема возвращается в Warnings.
// Нулевая и отрицательная длительность оплачиваются как минимальная.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.Duration > domain.MaxBookingDurationHours*time.Hour {
		return nil, fmt.Errorf("%w: duration cannot be longer than %d hours", ErrInvalidInput, domain.MaxBookingDurationHours)
	}

	table, rate := req.TieredPricing, req.HourlyRate
	if req.ListingID != nil {
		policy, err := uc.listingClient.GetPolicy(ctx, *req.ListingID)
		if err != nil {
			if errors.Is(err, listingClient.ErrListingNotFound) {
				uc.logger.Warn("QuotePrice: listing id=%d not found", *req.ListingID)
				return nil, ErrListingNotFound
			}
			uc.logger.Error("QuotePrice: failed to get listing id=%d: %v", *req.ListingID, err)
			return nil, fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
		}
		table, rate = policy.TieredPricing, policy.HourlyRate
	}

	warnings := make([]string, 0)
	if table != nil {
		if err := pricing.ValidateTable(table); err != nil {
			uc.logger.Warn("QuotePrice: %v", err)
			warnings = append(warnings, err.Error())
		}
	}

	res := uc.calculator.Calculate(req.Duration, table, rate, uc.pricingMode)
	uc.logger.Info("QuotePrice: duration=%s total=%s method=%s", req.Duration.Round(time.Second), res.Total, res.Method)

	return toResponse(res, warnings), nil
}

func toResponse(res *pricing.Result, warnings []string) *Response {
	lines := make([]Line, len(res.Breakdown))
	for i, l := range res.Breakdown {
		lines[i] = Line{
			Hour:         l.Hour,
			Cents:        l.Cents,
			Price:        l.Price,
			IsFractional: l.IsFractional,
			Fraction:     l.Fraction,
		}
	}

	return &Response{
		TotalCents:      res.TotalCents,
		Total:           res.Total,
		ExactHours:      res.ExactHours,
		WholeHours:      res.WholeHours,
		FractionalHours: res.FractionalHours,
		BilledHours:     res.BilledHours,
		Method:          res.Method,
		Breakdown:       lines,
		Warnings:        warnings,
	}
}
