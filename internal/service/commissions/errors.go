package commissions

import "errors"

var (
	// ErrInvalidRate возвращается при ставке вне диапазона [0, 10000] б.п.
	ErrInvalidRate = errors.New("commissions: rate must be between 0 and 10000 basis points")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("commissions: internal error")
)
