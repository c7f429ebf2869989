package payouts

import "errors"

var (
	// ErrAccessDenied возвращается, когда пользователь запрашивает чужие выплаты
	ErrAccessDenied = errors.New("payouts.service: access denied")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("payouts.service: internal error")
)
