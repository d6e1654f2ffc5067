package httpclient

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// RetryState is a state of the per-request retry machine
type RetryState int

const (
	StateAttempting RetryState = iota
	StateSuccess
	StateRetryableFailure
	StateTerminalFailure
)

func (s RetryState) String() string {
	switch s {
	case StateAttempting:
		return "attempting"
	case StateSuccess:
		return "success"
	case StateRetryableFailure:
		return "retryable_failure"
	case StateTerminalFailure:
		return "terminal_failure"
	default:
		return "unknown"
	}
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the production SleepFunc
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AttemptFunc performs one request attempt
type AttemptFunc func(ctx context.Context) (*HTTPResponse, error)

// RetryHandlerConfig configuration for retry handler
type RetryHandlerConfig struct {
	MaxAttempts int           `json:"max_attempts"`
	Backoff     time.Duration `json:"backoff"`
}

// RetryResult is the terminal outcome of DoWithRetry
type RetryResult struct {
	Response *HTTPResponse
	Err      error
	Attempts int
	State    RetryState
}

// RetryHandler retries transport failures with a fixed backoff.
// Any response, whatever its status code, is terminal.
type RetryHandler struct {
	maxAttempts int
	backoff     time.Duration
	sleep       SleepFunc
	logger      zerolog.Logger
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	maxAttempts := config.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryHandler{
		maxAttempts: maxAttempts,
		backoff:     config.Backoff,
		sleep:       ContextSleep,
		logger:      logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// WithSleep replaces the backoff sleep, mainly for tests
func (rh *RetryHandler) WithSleep(sleep SleepFunc) *RetryHandler {
	if sleep != nil {
		rh.sleep = sleep
	}
	return rh
}

// MaxAttempts returns the total number of attempts allowed
func (rh *RetryHandler) MaxAttempts() int {
	return rh.maxAttempts
}

// next decides the transition after an attempt
func (rh *RetryHandler) next(attempt int, err error) RetryState {
	if err == nil {
		return StateSuccess
	}
	if errors.Is(err, context.Canceled) || attempt >= rh.maxAttempts {
		return StateTerminalFailure
	}
	return StateRetryableFailure
}

// DoWithRetry drives the machine until a terminal state. Attempts run sequentially.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, url string, do AttemptFunc) RetryResult {
	result := RetryResult{State: StateAttempting}

	for result.State == StateAttempting {
		if err := ctx.Err(); err != nil {
			result.Err = err
			result.State = StateTerminalFailure
			break
		}

		result.Attempts++
		resp, err := do(ctx)
		result.Response, result.Err = resp, err

		switch rh.next(result.Attempts, err) {
		case StateSuccess:
			result.State = StateSuccess
		case StateTerminalFailure:
			result.Response = nil
			result.State = StateTerminalFailure
		case StateRetryableFailure:
			rh.logger.Debug().
				Str("url", url).
				Int("attempt", result.Attempts).
				Int("max_attempts", rh.maxAttempts).
				Dur("backoff", rh.backoff).
				Err(err).
				Msg("Transport error, retrying")
			if sleepErr := rh.sleep(ctx, rh.backoff); sleepErr != nil {
				result.Err = sleepErr
				result.Response = nil
				result.State = StateTerminalFailure
			}
		}
	}

	return result
}
