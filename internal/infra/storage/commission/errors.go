package commission

import "errors"

var (
	// ErrCommissionNotFound возвращается, когда комиссия не найдена
	ErrCommissionNotFound = errors.New("commission.repository: commission not found")

	// ErrAlreadyProcessed возвращается при попытке изменить уже выплаченную комиссию
	ErrAlreadyProcessed = errors.New("commission.repository: commission already processed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("commission.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("commission.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("commission.repository: failed to scan row")
)
