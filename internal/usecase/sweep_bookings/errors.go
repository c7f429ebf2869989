package sweep_bookings

import "errors"

var (
	// ErrListDue возвращается, когда не удалось получить список бронирований для обработки
	ErrListDue = errors.New("sweep_bookings: failed to list due bookings")

	// ErrInternal возвращается при ошибке обработки отдельного бронирования
	ErrInternal = errors.New("sweep_bookings: internal error")
)
