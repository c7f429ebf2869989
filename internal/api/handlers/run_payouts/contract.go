package run_payouts

import (
	"context"

	runPayouts "github.com/m04kA/SMC-ParkingService/internal/usecase/run_payouts"
)

type PayoutScheduler interface {
	RunNow(ctx context.Context) (*runPayouts.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
