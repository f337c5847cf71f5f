package outreach

import (
	"context"
	"fmt"
	"time"

	"resume-builder-backend/internal/shared/metrics"
	"resume-builder-backend/internal/shared/telemetry"
)

// Status classifies one target's dispatch outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the outcome of acting on one target.
type Result struct {
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completedAt"`
}

// Summary aggregates a batch. Successful + Failed always equals Total.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// Report is the full output of one batch dispatch.
type Report struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// Action performs the work for a single target. A nil error marks the target
// successful with the returned message; a non-nil error marks it failed.
type Action[T any] func(ctx context.Context, target T) (string, error)

// ProgressFunc receives (completed, total) after each target finishes.
type ProgressFunc func(completed, total int)

// Options tunes a dispatch run. The zero value gives a sensible default pool
// size and no per-target deadline.
type Options struct {
	// Concurrency caps how many targets are in flight at once. Values below
	// 1 fall back to defaultConcurrency.
	Concurrency int
	// TargetTimeout bounds each target's action. Zero means no deadline.
	TargetTimeout time.Duration
	// OnProgress, when set, is called exactly once per completed target with
	// a strictly increasing completed count.
	OnProgress ProgressFunc
}

const defaultConcurrency = 4

// Dispatch runs action once per target through a bounded worker pool and
// collects per-target results in input order. Per-target failures, including
// panics and timeouts, are recorded in the result list and never abort the
// batch; the only call-level error is an empty target list.
func Dispatch[T any](ctx context.Context, targets []T, action Action[T], opts Options) (Report, error) {
	if len(targets) == 0 {
		return Report{}, ErrNoTargets
	}

	metrics.IncDispatchStarted()

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(targets) {
		concurrency = len(targets)
	}

	results := make([]Result, len(targets))
	jobs := make(chan int)
	completions := make(chan int)

	for w := 0; w < concurrency; w++ {
		go func() {
			for idx := range jobs {
				results[idx] = runTarget(ctx, targets[idx], action, opts.TargetTimeout)
				completions <- idx
			}
		}()
	}

	go func() {
		defer close(jobs)
		for idx := range targets {
			jobs <- idx
		}
	}()

	// Completions drain on this goroutine, so the progress callback fires
	// once per target with a monotonic count.
	for done := 0; done < len(targets); {
		<-completions
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(targets))
		}
	}

	summary := Summary{Total: len(targets)}
	for _, res := range results {
		if res.Status == StatusSuccess {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	return Report{Results: results, Summary: summary}, nil
}

// runTarget executes one action under an optional deadline and converts every
// failure mode, error, panic or timeout, into a failure result.
func runTarget[T any](ctx context.Context, target T, action Action[T], timeout time.Duration) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	started := time.Now()
	type outcome struct {
		message string
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("action panic: %v", r)}
			}
		}()
		message, err := action(ctx, target)
		done <- outcome{message: message, err: err}
	}()

	var res Result
	select {
	case out := <-done:
		if out.err != nil {
			res = Result{Status: StatusFailure, Message: out.err.Error()}
		} else {
			res = Result{Status: StatusSuccess, Message: out.message}
		}
	case <-ctx.Done():
		// The action goroutine may still be running; it is abandoned so one
		// hung target cannot stall the rest of the batch.
		telemetry.Warn("dispatch.target_timeout", map[string]any{
			"timeout_ms": timeout.Milliseconds(),
		})
		res = Result{Status: StatusFailure, Message: fmt.Sprintf("target timed out: %v", ctx.Err())}
	}
	res.CompletedAt = time.Now().UTC()

	if res.Status == StatusSuccess {
		metrics.IncTargetSucceeded()
	} else {
		metrics.IncTargetFailed()
	}
	metrics.ObserveTargetDurationMs(float64(time.Since(started).Milliseconds()))
	return res
}
