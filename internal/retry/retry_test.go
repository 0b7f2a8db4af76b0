package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	result, err := DoDefault(context.Background(),
		func(error) bool { return true },
		func() (string, error) {
			calls++
			return "success", nil
		},
	)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if result != "success" {
		t.Errorf("Do() = %q, want %q", result, "success")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesRetryableError(t *testing.T) {
	calls := 0
	result, err := DoDefault(context.Background(),
		func(error) bool { return true },
		func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("temporary")
			}
			return "success", nil
		},
	)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if result != "success" {
		t.Errorf("Do() = %q, want %q", result, "success")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnNonRetryableError(t *testing.T) {
	calls := 0
	sentinel := errors.New("permanent")
	_, err := DoDefault(context.Background(),
		func(error) bool { return false },
		func() (string, error) {
			calls++
			return "", sentinel
		},
	)
	if !errors.Is(err, sentinel) {
		t.Errorf("Do() error = %v, want %v", err, sentinel)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_ExhaustsMaxAttempts(t *testing.T) {
	calls := 0
	cfg := Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}
	_, err := Do(context.Background(), cfg,
		func(error) bool { return true },
		func() (string, error) {
			calls++
			return "", errors.New("always fails")
		},
	)
	if err == nil {
		t.Fatal("Do() error = nil, want max-attempts error")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := DoDefault(ctx,
		func(error) bool { return true },
		func() (string, error) {
			calls++
			return "", errors.New("boom")
		},
	)
	if err == nil {
		t.Fatal("Do() error = nil, want context cancellation error")
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}
