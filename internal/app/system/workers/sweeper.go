// Package workers runs periodic maintenance alongside the HTTP server.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/liderplan/internal/app/system/metrics"
	"github.com/dalemusser/liderplan/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// SweepFunc does one pass of work and reports how many records it touched.
type SweepFunc func(ctx context.Context) (int64, error)

// Sweeper calls a SweepFunc on a fixed interval until stopped.
type Sweeper struct {
	name  string
	every time.Duration
	sweep SweepFunc
	log   *zap.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewSweeper returns a stopped Sweeper. name labels logs and metrics.
func NewSweeper(name string, every time.Duration, sweep SweepFunc, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		name:  name,
		every: every,
		sweep: sweep,
		log:   logger.With(zap.String("worker", name)),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// InactiveCloser ends sessions idle for longer than a threshold.
// *sessions.Store satisfies it.
type InactiveCloser interface {
	CloseInactive(ctx context.Context, threshold time.Duration) (int64, error)
}

// NewSessionSweeper closes sessions with no request for longer than idle.
func NewSessionSweeper(sessions InactiveCloser, idle, every time.Duration, logger *zap.Logger) *Sweeper {
	return NewSweeper("session_sweeper", every, func(ctx context.Context) (int64, error) {
		return sessions.CloseInactive(ctx, idle)
	}, logger)
}

// Start launches the loop. Calling it more than once has no effect.
func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		go s.loop()
		s.log.Info("worker started", zap.Duration("interval", s.every))
	})
}

// Stop ends the loop and waits for an in-flight pass to finish. It is safe
// to call on a Sweeper that was never started.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		started := true
		s.startOnce.Do(func() { started = false })
		if started {
			<-s.done
		}
		s.log.Info("worker stopped")
	})
}

// RunOnce performs a single pass immediately.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	n, err := s.sweep(ctx)
	metrics.Sweeps.WithLabelValues(s.name, metrics.Result(err)).Inc()
	if err != nil {
		s.log.Error("sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		metrics.SweptRecords.WithLabelValues(s.name).Add(float64(n))
		s.log.Info("sweep done", zap.Int64("count", n))
	}
	return n, nil
}

func (s *Sweeper) loop() {
	defer close(s.done)

	t := time.NewTicker(s.every)
	defer t.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
			_, _ = s.RunOnce(ctx)
			cancel()
		}
	}
}
