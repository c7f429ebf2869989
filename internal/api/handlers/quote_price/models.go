package quote_price

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
	quotePrice "github.com/m04kA/SMC-ParkingService/internal/usecase/quote_price"
)

// QuoteRequest HTTP request model
type QuoteRequest struct {
	DurationMs    int64         `json:"durationMs"`
	ListingID     *int64        `json:"listingId,omitempty"`
	TieredPricing pricing.Table `json:"tieredPricing,omitempty"`
	HourlyRate    float64       `json:"hourlyRate,omitempty"`
}

// maxDurationMs верхняя граница durationMs; больше нее перевод в time.Duration переполняется
const maxDurationMs = int64(domain.MaxBookingDurationHours) * 60 * 60 * 1000

var errDurationTooLong = errors.New("durationMs exceeds maximum booking duration")

// Validate проверяет durationMs до перевода в time.Duration
func (r *QuoteRequest) Validate() error {
	if r.DurationMs > maxDurationMs {
		return errDurationTooLong
	}
	return nil
}

func (r *QuoteRequest) ToUseCaseRequest() *quotePrice.Request {
	return &quotePrice.Request{
		Duration:      time.Duration(r.DurationMs) * time.Millisecond,
		ListingID:     r.ListingID,
		TieredPricing: r.TieredPricing,
		HourlyRate:    r.HourlyRate,
	}
}

// BreakdownLine строка детализации
type BreakdownLine struct {
	Hour         int     `json:"hour"`
	Cents        int64   `json:"cents"`
	Price        string  `json:"price"`
	IsFractional bool    `json:"isFractional,omitempty"`
	Fraction     float64 `json:"fraction,omitempty"`
}

// QuoteResponse HTTP response model
type QuoteResponse struct {
	TotalCents      int64           `json:"totalCents"`
	Total           string          `json:"total"`
	ExactHours      float64         `json:"exactHours"`
	WholeHours      int             `json:"wholeHours"`
	FractionalHours float64         `json:"fractionalHours"`
	BilledHours     float64         `json:"billedHours"`
	Method          string          `json:"method"`
	Breakdown       []BreakdownLine `json:"breakdown"`
	Warnings        []string        `json:"warnings,omitempty"`
}

func FromUseCaseResponse(r *quotePrice.Response) *QuoteResponse {
	resp := &QuoteResponse{
		TotalCents:      r.TotalCents,
		Total:           r.Total,
		ExactHours:      r.ExactHours,
		WholeHours:      r.WholeHours,
		FractionalHours: r.FractionalHours,
		BilledHours:     r.BilledHours,
		Method:          r.Method,
		Breakdown:       make([]BreakdownLine, 0, len(r.Breakdown)),
		Warnings:        r.Warnings,
	}
	for _, l := range r.Breakdown {
		resp.Breakdown = append(resp.Breakdown, BreakdownLine{
			Hour:         l.Hour,
			Cents:        l.Cents,
			Price:        l.Price,
			IsFractional: l.IsFractional,
			Fraction:     l.Fraction,
		})
	}
	return resp
}
