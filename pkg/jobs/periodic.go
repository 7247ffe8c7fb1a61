package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is invoked once per tick with the tick's wall-clock time.
type Task func(ctx context.Context, now time.Time) error

// PeriodicConfig configures a Periodic runner.
type PeriodicConfig struct {
	Interval   time.Duration
	RunOnStart bool
	Clock      func() time.Time
	Logger     *zap.Logger
}

// Periodic runs a task at a fixed interval on a single goroutine, so ticks never overlap.
// A tick in progress is not cancelled by Stop; Stop waits for it to finish.
type Periodic struct {
	name       string
	task       Task
	interval   time.Duration
	runOnStart bool
	clock      func() time.Time
	logger     *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPeriodic builds a runner for task.
func NewPeriodic(name string, task Task, cfg PeriodicConfig) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Periodic{
		name:       name,
		task:       task,
		interval:   cfg.Interval,
		runOnStart: cfg.RunOnStart,
		clock:      cfg.Clock,
		logger:     cfg.Logger,
	}
}

// Start launches the ticking goroutine. Safe to call once.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.started = true

	p.wg.Add(1)
	go p.loop()
	p.logger.Sugar().Infow("periodic task started", "task", p.name, "interval", p.interval.String())
}

// Stop cancels the schedule and waits for a running tick to complete.
func (p *Periodic) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("periodic task stopped", "task", p.name)
}

// RunOnce executes a single tick synchronously.
func (p *Periodic) RunOnce(ctx context.Context) error {
	tickCtx := context.WithoutCancel(ctx)
	start := p.clock()
	err := p.task(tickCtx, start)
	elapsed := p.clock().Sub(start)
	if err != nil {
		p.logger.Sugar().Errorw("periodic task failed", "task", p.name, "error", err, "elapsed", elapsed.String())
	}
	if elapsed > p.interval {
		p.logger.Sugar().Errorw("periodic task overran its interval", "task", p.name, "elapsed", elapsed.String(), "interval", p.interval.String())
	}
	return err
}

func (p *Periodic) loop() {
	defer p.wg.Done()
	if p.runOnStart {
		_ = p.RunOnce(p.ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			_ = p.RunOnce(p.ctx)
		}
	}
}
