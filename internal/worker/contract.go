package worker

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/run_payouts"
	"github.com/m04kA/SMC-ParkingService/internal/usecase/sweep_bookings"
)

// SweepUseCase интерфейс прохода по бронированиям
type SweepUseCase interface {
	Execute(ctx context.Context, now time.Time) (*sweep_bookings.Result, error)
}

// PayoutUseCase интерфейс запуска выплат
type PayoutUseCase interface {
	Execute(ctx context.Context) (*run_payouts.Result, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
