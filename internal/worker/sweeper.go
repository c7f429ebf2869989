package worker

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-ParkingService/internal/usecase/sweep_bookings"
)

const sweepKey = "sweep"

// Sweeper запускает sweep по таймеру, по сигналу возобновления и по запросу.
// Одновременные запуски объединяются в один через singleflight.
type Sweeper struct {
	uc           SweepUseCase
	interval     time.Duration
	timeProvider TimeProvider
	group        singleflight.Group
	resume       chan struct{}
	logger       Logger
}

// NewSweeper создает новый sweeper
func NewSweeper(uc SweepUseCase, interval time.Duration, logger Logger) *Sweeper {
	return &Sweeper{
		uc:           uc,
		interval:     interval,
		timeProvider: &RealTimeProvider{},
		resume:       make(chan struct{}, 1),
		logger:       logger,
	}
}

// Sweep выполняет проход сейчас. Если проход уже идет, ждет его и возвращает его результат.
func (s *Sweeper) Sweep(ctx context.Context) (*sweep_bookings.Result, error) {
	v, err, shared := s.group.Do(sweepKey, func() (interface{}, error) {
		return s.uc.Execute(context.WithoutCancel(ctx), s.timeProvider.Now())
	})
	if shared {
		s.logger.Info("Sweeper: joined sweep already in progress")
	}
	if err != nil {
		return nil, err
	}
	return v.(*sweep_bookings.Result), nil
}

// Resume просит Run выполнить внеочередной проход. Не блокирует.
func (s *Sweeper) Resume() {
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// Run выполняет проход сразу и затем по интервалу до отмены ctx
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Sweeper: started, interval=%s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx, "startup")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweeper: stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, "timer")
		case <-s.resume:
			s.runOnce(ctx, "resume")
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context, reason string) {
	res, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("Sweeper: %s sweep failed: %v", reason, err)
		return
	}
	if res.Changed() > 0 || res.Failed > 0 {
		s.logger.Info("Sweeper: %s sweep changed=%d failed=%d", reason, res.Changed(), res.Failed)
	}
}
