package conflict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

// ErrLoadBookings не удалось загрузить бронирования транспортного средства
var ErrLoadBookings = errors.New("conflict: failed to load bookings")

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы, которые только касаются концами, не пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FindConflicts возвращает все нетерминальные бронирования, пересекающиеся с [start, end).
// Порядок existing сохраняется.
func FindConflicts(start, end time.Time, existing []*domain.Booking) []*domain.Booking {
	conflicts := make([]*domain.Booking, 0)
	for _, b := range existing {
		if b == nil || b.Status.IsTerminal() {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, start, end) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}

// Result результат проверки
type Result struct {
	VehicleID int64
	Conflicts []*domain.Booking
}

// HasConflict есть ли хотя бы одно пересечение
func (r *Result) HasConflict() bool {
	return len(r.Conflicts) > 0
}

// Err возвращает *domain.ConflictError при наличии пересечений, иначе nil
func (r *Result) Err() error {
	if !r.HasConflict() {
		return nil
	}
	return &domain.ConflictError{VehicleID: r.VehicleID, Conflicts: r.Conflicts}
}

// Detector проверяет, что у транспортного средства нет пересекающихся бронирований
type Detector struct {
	bookings BookingReader
}

// NewDetector создает новый детектор
func NewDetector(bookings BookingReader) *Detector {
	return &Detector{bookings: bookings}
}

// Check проверяет окно [start, end) для vehicleID
func (d *Detector) Check(ctx context.Context, vehicleID int64, start, end time.Time) (*Result, error) {
	return d.CheckExcluding(ctx, 0, vehicleID, start, end)
}

// CheckExcluding то же, что Check, но не учитывает бронирование excludeID
// (при продлении бронирование не должно конфликтовать само с собой)
func (d *Detector) CheckExcluding(ctx context.Context, excludeID, vehicleID int64, start, end time.Time) (*Result, error) {
	existing, err := d.bookings.GetActiveByVehicle(ctx, vehicleID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: vehicle=%d: %v", ErrLoadBookings, vehicleID, err)
	}

	if excludeID != 0 {
		filtered := existing[:0:0]
		for _, b := range existing {
			if b.ID != excludeID {
				filtered = append(filtered, b)
			}
		}
		existing = filtered
	}

	return &Result{
		VehicleID: vehicleID,
		Conflicts: FindConflicts(start, end, existing),
	}, nil
}
