package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.RenterID <= 0 {
		return fmt.Errorf("%w: renterID must be positive", ErrInvalidInput)
	}

	if req.VehicleID <= 0 {
		return fmt.Errorf("%w: vehicleID must be positive", ErrInvalidInput)
	}

	if req.ListingID <= 0 {
		return fmt.Errorf("%w: listingID must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("%w: startTime and endTime are required", ErrInvalidInput)
	}

	if !req.EndTime.After(req.StartTime) {
		return fmt.Errorf("%w: endTime must be after startTime", domain.ErrInvalidTimeRange)
	}

	if req.EndTime.Sub(req.StartTime) > domain.MaxBookingDurationHours*time.Hour {
		return fmt.Errorf("%w: booking cannot be longer than %d hours", ErrInvalidInput, domain.MaxBookingDurationHours)
	}

	return nil
}

// validateWindow проверяет, что окно еще не закончилось.
// Начало в прошлом допустимо: такое бронирование активирует ближайший sweep.
func validateWindow(end, now time.Time) error {
	if !end.After(now) {
		return fmt.Errorf("%w: endTime %s", ErrBookingInPast, end.Format(time.RFC3339))
	}
	return nil
}
