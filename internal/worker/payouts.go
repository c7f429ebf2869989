package worker

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/run_payouts"
)

const payoutsKey = "payouts"

// PayoutScheduler запускает сведение выплат по расписанию и по запросу
type PayoutScheduler struct {
	uc       PayoutUseCase
	interval time.Duration
	group    singleflight.Group
	logger   Logger
}

// NewPayoutScheduler создает новый планировщик выплат
func NewPayoutScheduler(uc PayoutUseCase, interval time.Duration, logger Logger) *PayoutScheduler {
	return &PayoutScheduler{
		uc:       uc,
		interval: interval,
		logger:   logger,
	}
}

// RunNow выполняет запуск сейчас; параллельные вызовы получают результат одного запуска
func (p *PayoutScheduler) RunNow(ctx context.Context) (*run_payouts.Result, error) {
	v, err, shared := p.group.Do(payoutsKey, func() (interface{}, error) {
		return p.uc.Execute(context.WithoutCancel(ctx))
	})
	if shared {
		p.logger.Info("PayoutScheduler: joined run already in progress")
	}
	if err != nil {
		return nil, err
	}
	return v.(*run_payouts.Result), nil
}

// Run выполняет запуски по интервалу до отмены ctx
func (p *PayoutScheduler) Run(ctx context.Context) {
	p.logger.Info("PayoutScheduler: started, interval=%s", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("PayoutScheduler: stopped")
			return
		case <-ticker.C:
			res, err := p.RunNow(ctx)
			if err != nil {
				p.logger.Error("PayoutScheduler: run failed: %v", err)
				continue
			}
			if len(res.Failed) > 0 {
				p.logger.Warn("PayoutScheduler: run=%s finished with %d failed owners", res.RunID, len(res.Failed))
			}
		}
	}
}
