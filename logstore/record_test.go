package logstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestGetNestedValueResolvesNestedObjects(t *testing.T) {
	r := NewRecord("1", []byte(`{"a":{"b":{"c":1}}}`))
	v, ok := r.GetNestedValue("a.b.c")
	require.True(t, ok)
	assert.Equal(t, 1, v.IntValue())
}

func TestGetNestedValueMissingSegmentIsAbsentNotError(t *testing.T) {
	r := NewRecord("1", []byte(`{"a":{}}`))
	_, ok := r.GetNestedValue("a.b.c")
	assert.False(t, ok)

	_, ok = r.GetNestedValue("nope")
	assert.False(t, ok)
}

func TestGetNestedValueTraversalThroughNonObjectIsAbsent(t *testing.T) {
	r := NewRecord("1", []byte(`{"a":{"b":42}}`))
	_, ok := r.GetNestedValue("a.b.c")
	assert.False(t, ok)
}

func TestGetNestedValueSupportsLiteralDottedKeys(t *testing.T) {
	r := NewRecord("1", []byte(`{"event.action":"evidence_response_sent","event":{"outcome":"success"}}`))
	v, ok := r.GetNestedValue("event.action")
	require.True(t, ok)
	assert.Equal(t, "evidence_response_sent", v.StringValue())

	v, ok = r.GetNestedValue("event.outcome")
	require.True(t, ok)
	assert.Equal(t, "success", v.StringValue())
}

func TestGetNestedValueExplicitNullCountsAsPresent(t *testing.T) {
	r := NewRecord("1", []byte(`{"a":{"b":null}}`))
	v, ok := r.GetNestedValue("a.b")
	require.True(t, ok)
	assert.Equal(t, ldvalue.Null(), v)
}

func TestNewRecordParsesTimestamp(t *testing.T) {
	r := NewRecord("1", []byte(`{"@timestamp":"2026-03-02T10:20:30.123Z"}`))
	expected := time.Date(2026, 3, 2, 10, 20, 30, 123000000, time.UTC)
	assert.True(t, r.Timestamp.Equal(expected))
}

func TestNewRecordToleratesMissingOrBadTimestamp(t *testing.T) {
	assert.True(t, NewRecord("1", []byte(`{}`)).Timestamp.IsZero())
	assert.True(t, NewRecord("1", []byte(`{"@timestamp":"yesterday"}`)).Timestamp.IsZero())
}

func TestConvenienceAccessors(t *testing.T) {
	r := NewRecord("1", []byte(`{
		"event":{"action":"evidence_request_received","outcome":"success"},
		"log":{"logger":"app"}
	}`))
	assert.Equal(t, "evidence_request_received", r.EventAction())
	assert.Equal(t, "success", r.EventOutcome())
	assert.Equal(t, "app", r.LoggerName())

	empty := NewRecord("2", []byte(`{}`))
	assert.Equal(t, "", empty.EventAction())
}
