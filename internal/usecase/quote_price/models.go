package quote_price

import (
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// Request запрос расчета стоимости до бронирования.
// Тарифы берутся из объявления, если указан ListingID, иначе из запроса.
type Request struct {
	Duration      time.Duration
	ListingID     *int64
	TieredPricing pricing.Table
	HourlyRate    float64
}

// Line строка детализации
type Line struct {
	Hour         int
	Cents        int64
	Price        string
	IsFractional bool
	Fraction     float64
}

// Response результат расчета
type Response struct {
	TotalCents      int64
	Total           string
	ExactHours      float64
	WholeHours      int
	FractionalHours float64
	BilledHours     float64
	Method          string
	Breakdown       []Line
	Warnings        []string // замечания к таблице тарифов, на расчет не влияют
}
