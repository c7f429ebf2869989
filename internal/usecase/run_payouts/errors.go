package run_payouts

import "errors"

var (
	// ErrListOwners возвращается, когда не удалось получить владельцев с невыплаченными комиссиями
	ErrListOwners = errors.New("run_payouts: failed to list owners")

	// ErrInternal возвращается при ошибке обработки комиссий владельца
	ErrInternal = errors.New("run_payouts: internal error")
)
