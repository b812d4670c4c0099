package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	got := Current()
	if got.Short != 7*time.Second {
		t.Errorf("Short = %v, want 7s", got.Short)
	}
	if got.Medium != DefaultMedium || got.Long != DefaultLong || got.Ping != DefaultPing {
		t.Errorf("zero values should keep defaults, got %+v", got)
	}
}

func TestReset(t *testing.T) {
	Configure(Config{Long: time.Minute})
	Reset()
	if Long() != DefaultLong {
		t.Errorf("Long = %v after Reset, want %v", Long(), DefaultLong)
	}
}

func TestWithTimeout_Expires(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	defer cancel()
	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
