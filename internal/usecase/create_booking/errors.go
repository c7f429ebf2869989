package create_booking

import "errors"

var (
	// ErrListingNotFound возвращается, когда объявление не найдено
	ErrListingNotFound = errors.New("create_booking: listing not found")

	// ErrOwnListing возвращается, когда владелец пытается забронировать свое место
	ErrOwnListing = errors.New("create_booking: cannot book own listing")

	// ErrBookingInPast возвращается, когда окно бронирования уже закончилось
	ErrBookingInPast = errors.New("create_booking: booking window is in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
