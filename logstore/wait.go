package logstore

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/oots-bridge/evidence-contract-tests/framework"
)

// Source is the read surface the runner needs from the log store. The
// concrete Client satisfies it; tests substitute an in-memory fake.
type Source interface {
	QueryByCorrelationID(ctx context.Context, id string, size int, ascending bool) ([]LogRecord, error)
	QueryByEventAction(ctx context.Context, action string, since time.Time, limit int) ([]LogRecord, error)
}

// RetryPolicy makes the eventual-consistency wait an explicit, testable
// value instead of an ad hoc timed loop.
type RetryPolicy struct {
	Interval   time.Duration // delay between poll attempts
	MaxElapsed time.Duration // wall-clock budget for the whole wait
	QuerySize  int
}

var errNoRecordsYet = errors.New("no records yet")

// WaitForLogs polls the correlation-id query until it returns something or
// the policy budget runs out. This is a best-effort wait: the empty slice
// on exhaustion is a normal give-up value, not an error. Individual query
// failures during polling count as "try again next interval".
func WaitForLogs(ctx context.Context, src Source, correlationID string, policy RetryPolicy, logger framework.Logger) []LogRecord {
	if logger == nil {
		logger = framework.NullLogger()
	}

	waitCtx, cancel := context.WithTimeout(ctx, policy.MaxElapsed)
	defer cancel()

	var records []LogRecord
	attempt := 0
	operation := func() error {
		attempt++
		found, err := src.QueryByCorrelationID(waitCtx, correlationID, policy.QuerySize, true)
		if err != nil {
			logger.Printf("poll attempt %d: query error (will retry): %s", attempt, err)
			return err
		}
		if len(found) == 0 {
			return errNoRecordsYet
		}
		records = found
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(policy.Interval), waitCtx)
	if err := backoff.Retry(operation, b); err != nil {
		logger.Printf("gave up waiting for logs with correlation id %s after %d attempts", correlationID, attempt)
		return nil
	}
	logger.Printf("found %d records for correlation id %s on attempt %d", len(records), correlationID, attempt)
	return records
}
