package run_sweep

import (
	"context"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/sweep_bookings"
)

type Sweeper interface {
	Sweep(ctx context.Context) (*sweep_bookings.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
