package mailer

import (
	"errors"
	"time"
)

// RetryPolicy — политика повторной доставки.
type RetryPolicy struct {
	// MaxAttempts — всего попыток, включая первую.
	MaxAttempts int

	// Backoff — "exponential" или "fixed".
	Backoff string

	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy — 3 попытки, 1m → 2m, не больше 30m.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  3,
		Backoff:      "exponential",
		InitialDelay: time.Minute,
		MaxDelay:     30 * time.Minute,
	}
}

// ShouldRetry решает, планировать ли ещё одну попытку.
// attempt — номер только что завершившейся попытки (с 1).
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if errors.Is(err, ErrRejected) {
		return false
	}
	return attempt < p.MaxAttempts
}

// Delay вычисляет паузу перед следующей попыткой.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	initial := p.InitialDelay
	if initial <= 0 {
		initial = time.Minute
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 30 * time.Minute
	}

	delay := initial
	if p.Backoff == "exponential" {
		// delay = initial * 2^(attempt-1)
		for i := 1; i < attempt; i++ {
			delay *= 2
			if delay > maxDelay {
				break
			}
		}
	}

	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}
