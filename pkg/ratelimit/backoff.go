package ratelimit

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy decides how long to wait after a quota-exceeded failure and
// drives the retry loop around a call. Interactive callers bound MaxAttempts
// and cap the per-attempt wait; batch callers leave both unbounded and rely
// on context cancellation.
type RetryPolicy struct {
	MaxAttempts int           // 0 means retry until the context is done
	BaseDelay   time.Duration // used when the error suggests no delay
	Margin      time.Duration // safety margin added to each wait
	MaxDelay    time.Duration // per-attempt cap; 0 means uncapped
}

var retryDelayPattern = regexp.MustCompile(`(?i)retry in (\d+(?:\.\d+)?)`)

// SuggestedDelay extracts a "retry in N" hint from a failure message.
func SuggestedDelay(message string) (time.Duration, bool) {
	match := retryDelayPattern.FindStringSubmatch(message)
	if match == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// IsQuotaExceeded reports whether the error looks like a quota or rate
// limit rejection from the external service.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "429") ||
		strings.Contains(message, "quota") ||
		strings.Contains(message, "rate")
}

// Delay computes the wait before the given retry attempt (0-based),
// honoring a suggested delay from the failure message when present.
func (p RetryPolicy) Delay(attempt int, message string) time.Duration {
	delay, ok := SuggestedDelay(message)
	if !ok {
		delay = p.BaseDelay
	}

	// Exponential multiplier, shift capped so large attempt counts on the
	// unbounded path don't overflow.
	shift := attempt
	if shift > 16 {
		shift = 16
	}
	delay = delay*time.Duration(1<<uint(shift)) + p.Margin

	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Wait sleeps for the given duration in one-minute chunks, reporting
// progress and honoring cancellation between chunks.
func (p RetryPolicy) Wait(ctx context.Context, delay time.Duration) error {
	const chunk = time.Minute
	remaining := delay
	for remaining > 0 {
		step := remaining
		if step > chunk {
			step = chunk
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		remaining -= step
		if remaining > 0 {
			slog.Info("waiting for quota reset", "remaining", remaining)
		}
	}
	return nil
}

// Do runs call, retrying quota-exceeded failures per the policy. Any other
// failure is returned as-is.
func (p RetryPolicy) Do(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; p.MaxAttempts <= 0 || attempt < p.MaxAttempts; attempt++ {
		err = call()
		if err == nil {
			return nil
		}
		if !IsQuotaExceeded(err) {
			return err
		}

		delay := p.Delay(attempt, err.Error())
		slog.Info("quota exceeded, backing off", "attempt", attempt+1, "delay", delay)
		if waitErr := p.Wait(ctx, delay); waitErr != nil {
			return waitErr
		}
	}
	return err
}
