package processor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fjurado/filerep/internal/types"
)

// maxBackoff caps the exponential retry delay.
const maxBackoff = 5 * time.Second

// retryableFragments mark transient failures: IO, timeouts, worker death.
var retryableFragments = []string{
	"failed to read",
	"timeout",
	"timed out",
	"processing timeout",
	"worker process crashed",
	"killed",
	"exit:",
}

// permanentFragments override the transient match: schema and validation
// failures will fail identically on every attempt.
var permanentFragments = []string{
	"validation",
	"invalid",
	"invalid json",
	"csv validation",
}

// Retrier re-runs the single-file pipeline on transient failures with
// exponential backoff. Retries for a file are serialized with respect to
// that file only.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration
	log         *zap.Logger
}

// NewRetrier creates a retrier. MaxAttempts counts the first attempt.
func NewRetrier(maxAttempts int, baseDelay time.Duration, log *zap.Logger) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrier{MaxAttempts: maxAttempts, BaseDelay: baseDelay, log: log}
}

// Run invokes attempt until it succeeds, fails permanently, or attempts are
// exhausted. The final result is returned as-is.
func (r *Retrier) Run(ctx context.Context, file types.ClassifiedFile, attempt func(context.Context, types.ClassifiedFile) types.FileResult) types.FileResult {
	var result types.FileResult
	for n := 1; ; n++ {
		result = attempt(ctx, file)
		if result.Status != types.StatusError || n >= r.MaxAttempts || !Retryable(result.Errors) {
			return result
		}

		delay := r.backoff(n)
		r.log.Debug("retrying after transient failure",
			zap.String("path", file.Path),
			zap.Int("attempt", n),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return result
		case <-time.After(delay):
		}
	}
}

// backoff returns min(base × 2^(attempt−1), 5 s).
func (r *Retrier) backoff(attempt int) time.Duration {
	delay := r.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

// Retryable reports whether an error list describes a transient failure.
// A message qualifies when it matches a transient fragment and none of the
// permanent ones, case-insensitively.
func Retryable(errs []types.FileError) bool {
	for _, e := range errs {
		msg := strings.ToLower(e.Message)
		if matchesAny(msg, permanentFragments) {
			continue
		}
		if matchesAny(msg, retryableFragments) {
			return true
		}
	}
	return false
}

func matchesAny(msg string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}
