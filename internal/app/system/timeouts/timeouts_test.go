package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithDefaults(t *testing.T) {
	got := Config{Short: 7 * time.Second, Long: -1}.WithDefaults()
	want := Config{Ping: DefaultPing, Short: 7 * time.Second, Medium: DefaultMedium, Long: DefaultLong}
	if got != want {
		t.Errorf("WithDefaults() = %+v, want %+v", got, want)
	}
	if Defaults() != (Config{}).WithDefaults() {
		t.Error("zero Config should fill to Defaults()")
	}
}

func TestWithTimeout_LogsOnDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.New(core), "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if op := logs.All()[0].ContextMap()["operation"]; op != "slow op" {
		t.Errorf("operation field = %v", op)
	}
}

func TestWithTimeout_QuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "fast op")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
