package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/quizarena/internal/clock"
)

func noWait() RetryConfig {
	return RetryConfig{MaxAttempts: 3, Multiplier: 2}
}

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func ok() MockResponse {
	return MockResponse{Content: json.RawMessage(`{"ok":true}`)}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{ok()}, false, 1},
		{"transient then success", []MockResponse{unavailable(), ok()}, false, 2},
		{"exhausted", []MockResponse{unavailable(), unavailable(), unavailable(), ok()}, true, 3},
		{"rate limit retried", []MockResponse{{Err: &ErrRateLimit{}}, ok()}, false, 2},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, ok()}, true, 1},
		{"invalid retried once", []MockResponse{{Err: &ErrInvalidResponse{Err: errors.New("x")}}, ok()}, false, 2},
		{"invalid twice gives up", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("x")}},
			{Err: &ErrInvalidResponse{Err: errors.New("y")}},
			ok(),
		}, true, 2},
		{"canceled not retried", []MockResponse{{Err: context.Canceled}, ok()}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			_, err := WithRetry(mock, noWait()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got := len(mock.Calls()); got != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestRetry_SingleAttemptWhenUnset(t *testing.T) {
	mock := NewMockProvider(unavailable(), ok())
	if _, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if len(mock.Calls()) != 1 {
		t.Fatalf("calls = %d, want 1", len(mock.Calls()))
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	fake := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	mock := NewMockProvider(unavailable(), ok())
	r := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Minute, MaxWait: time.Minute, Multiplier: 2})
	r.clock = fake

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := r.Generate(ctx, Request{})
		done <- err
	}()

	// The fake clock never advances, so only cancellation can end the wait.
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Generate did not return after cancel")
	}
}

func TestRetry_Backoff(t *testing.T) {
	r := WithRetry(NewMockProvider(), RetryConfig{
		MaxAttempts: 5,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     300 * time.Millisecond,
		Multiplier:  2,
	})

	tests := []struct {
		attempt  int
		err      error
		min, max time.Duration
	}{
		{0, errors.New("x"), 80 * time.Millisecond, 120 * time.Millisecond},
		{1, errors.New("x"), 160 * time.Millisecond, 240 * time.Millisecond},
		{4, errors.New("x"), 240 * time.Millisecond, 360 * time.Millisecond},
		{0, &ErrRateLimit{RetryAfter: 7 * time.Second}, 7 * time.Second, 7 * time.Second},
	}
	for _, tt := range tests {
		got := r.backoff(tt.attempt, tt.err)
		if got < tt.min || got > tt.max {
			t.Errorf("backoff(%d, %v) = %s, want within [%s, %s]", tt.attempt, tt.err, got, tt.min, tt.max)
		}
	}
}
