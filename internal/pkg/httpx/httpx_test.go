package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"net timeout", fmt.Errorf("dial: %w", timeoutErr{}), true},
		{"429", &StatusError{Code: http.StatusTooManyRequests}, true},
		{"503 wrapped", fmt.Errorf("export house: %w", &StatusError{Code: 503}), true},
		{"400", &StatusError{Code: http.StatusBadRequest, Body: "bad account"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryableError(tc.err); got != tc.want {
				t.Fatalf("IsRetryableError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for attempt, w := range want {
		if got := b.Delay(attempt, nil); got != w {
			t.Fatalf("attempt %d: got %v want %v", attempt, got, w)
		}
	}
}

func TestBackoffHonorsRetryAfter(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "3")
	if got := (Backoff{Base: time.Second, Max: time.Minute}).Delay(0, resp); got != 3*time.Second {
		t.Fatalf("got %v", got)
	}
	if got := (Backoff{Base: time.Second, Max: 2 * time.Second}).Delay(0, resp); got != 2*time.Second {
		t.Fatalf("max not applied: %v", got)
	}
	resp.Header.Set("Retry-After", "soon")
	if got := (Backoff{Base: time.Second}).Delay(0, resp); got != time.Second {
		t.Fatalf("unparseable header should fall back: %v", got)
	}
}

func TestBackoffJitterStaysInSpread(t *testing.T) {
	b := Backoff{Base: time.Second, Jitter: 0.2}
	for i := 0; i < 50; i++ {
		d := b.Delay(0, nil)
		if d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("jitter out of range: %v", d)
		}
	}
}
