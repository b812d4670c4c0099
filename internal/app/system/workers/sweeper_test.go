package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/liderplan/internal/app/system/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessions struct {
	calls atomic.Int32
	idle  atomic.Int64
	err   error
}

func (f *fakeSessions) CloseInactive(_ context.Context, idle time.Duration) (int64, error) {
	f.calls.Add(1)
	f.idle.Store(int64(idle))
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func waitCalls(f *fakeSessions, n int32) {
	deadline := time.Now().Add(2 * time.Second)
	for f.calls.Load() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionSweeper_Loop(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"closes idle sessions", nil},
		{"keeps going after a store error", errors.New("mongo down")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &fakeSessions{err: tc.err}
			w := workers.NewSessionSweeper(fs, 3*time.Hour, 10*time.Millisecond, zap.NewNop())
			w.Start()
			waitCalls(fs, 2)
			w.Stop()

			assert.GreaterOrEqual(t, fs.calls.Load(), int32(2))
			assert.Equal(t, 3*time.Hour, time.Duration(fs.idle.Load()))
		})
	}
}

func TestSweeper_StopEndsLoop(t *testing.T) {
	fs := &fakeSessions{}
	w := workers.NewSessionSweeper(fs, time.Hour, 5*time.Millisecond, zap.NewNop())
	w.Start()
	waitCalls(fs, 1)
	w.Stop()
	w.Stop()

	after := fs.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, fs.calls.Load())
}

func TestSweeper_StopWithoutStart(t *testing.T) {
	fs := &fakeSessions{}
	w := workers.NewSessionSweeper(fs, time.Hour, time.Millisecond, zap.NewNop())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a sweeper that never started")
	}
	assert.Zero(t, fs.calls.Load())
}

func TestSweeper_RunOnce(t *testing.T) {
	var got int
	w := workers.NewSweeper("test", time.Hour, func(context.Context) (int64, error) {
		got++
		return 5, nil
	}, zap.NewNop())

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, 1, got)

	failing := workers.NewSweeper("test", time.Hour, func(context.Context) (int64, error) {
		return 3, errors.New("nope")
	}, zap.NewNop())
	n, err = failing.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, n)
}
