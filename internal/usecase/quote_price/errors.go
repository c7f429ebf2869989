package quote_price

import "errors"

var (
	// ErrListingNotFound возвращается, когда объявление не найдено
	ErrListingNotFound = errors.New("quote_price: listing not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("quote_price: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("quote_price: internal error")
)
