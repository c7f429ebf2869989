package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	RenterID  int64     // ID арендатора (из заголовка X-User-ID)
	VehicleID int64     // ID транспортного средства, по нему проверяются пересечения
	ListingID int64     // ID объявления
	StartTime time.Time // Начало аренды
	EndTime   time.Time // Окончание аренды
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	ListingID       int64
	OwnerID         int64
	RenterID        int64
	VehicleID       int64
	StartTime       time.Time
	EndTime         time.Time
	Status          string
	TotalPriceCents int64
	TotalPrice      string // "21.00"
	PricingMethod   string
	CreatedAt       time.Time

	// Комиссия, если бронирование подтверждено автоматически
	CommissionCents *int64
}
