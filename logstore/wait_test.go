package logstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// scriptedSource returns one scripted answer per poll attempt, then keeps
// repeating the last one.
type scriptedSource struct {
	answers []scriptedAnswer
	calls   int
}

type scriptedAnswer struct {
	records []LogRecord
	err     error
}

func (s *scriptedSource) QueryByCorrelationID(ctx context.Context, id string, size int, ascending bool) ([]LogRecord, error) {
	i := s.calls
	if i >= len(s.answers) {
		i = len(s.answers) - 1
	}
	s.calls++
	return s.answers[i].records, s.answers[i].err
}

func (s *scriptedSource) QueryByEventAction(ctx context.Context, action string, since time.Time, limit int) ([]LogRecord, error) {
	return nil, nil
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{Interval: 5 * time.Millisecond, MaxElapsed: 200 * time.Millisecond, QuerySize: 10}
}

func TestWaitForLogsReturnsFirstNonEmptyResult(t *testing.T) {
	record := NewRecord("1", []byte(`{"event":{"action":"evidence_request_received"}}`))
	src := &scriptedSource{answers: []scriptedAnswer{
		{records: nil},
		{records: nil},
		{records: []LogRecord{record}},
	}}

	found := WaitForLogs(context.Background(), src, "conv-1", fastPolicy(), nil)
	assert.Len(t, found, 1)
	assert.Equal(t, 3, src.calls)
}

func TestWaitForLogsGivesUpWithEmptySliceAfterBudget(t *testing.T) {
	src := &scriptedSource{answers: []scriptedAnswer{{records: nil}}}

	start := time.Now()
	found := WaitForLogs(context.Background(), src, "conv-1", fastPolicy(), nil)
	assert.Empty(t, found)
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Greater(t, src.calls, 1, "should have polled repeatedly")
}

func TestWaitForLogsTreatsQueryErrorsAsRetry(t *testing.T) {
	record := NewRecord("1", []byte(`{}`))
	src := &scriptedSource{answers: []scriptedAnswer{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{records: []LogRecord{record}},
	}}

	found := WaitForLogs(context.Background(), src, "conv-1", fastPolicy(), nil)
	assert.Len(t, found, 1)
}

func TestWaitForLogsHonorsCallerCancellation(t *testing.T) {
	src := &scriptedSource{answers: []scriptedAnswer{{records: nil}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	found := WaitForLogs(ctx, src, "conv-1", RetryPolicy{
		Interval:   time.Second,
		MaxElapsed: time.Hour,
		QuerySize:  10,
	}, nil)
	assert.Empty(t, found)
}
