// Package logstore is a thin query layer over the document index that the
// evidence-exchange participants ship their structured logs to. The harness
// only ever reads from the index; the records themselves are produced by
// out-of-process collaborators.
package logstore

import (
	"strings"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const timestampField = "@timestamp"

// Field names shared by every log producer in the deployment. The
// conversation id is the primary join key for retrieving the record trail
// of one logical transaction.
const (
	FieldEventAction    = "event.action"
	FieldEventOutcome   = "event.outcome"
	FieldLogLogger      = "log.logger"
	FieldConversationID = "bridge.conversation.id"
)

// LogRecord is one immutable structured log document retrieved from the
// index. The document body is held as a JSON value so that nested fields
// can be resolved without committing to a schema.
type LogRecord struct {
	ID        string
	Timestamp time.Time
	Source    ldvalue.Value
}

// NewRecord builds a LogRecord from a raw JSON document body, extracting
// the timestamp field if present.
func NewRecord(id string, source []byte) LogRecord {
	r := LogRecord{ID: id, Source: ldvalue.Parse(source)}
	if ts, ok := r.GetNestedValue(timestampField); ok && ts.IsString() {
		if parsed, err := time.Parse(time.RFC3339Nano, ts.StringValue()); err == nil {
			r.Timestamp = parsed
		}
	}
	return r
}

// GetNestedValue resolves a dotted path such as "event.action" against the
// record body. Shippers are inconsistent about whether dotted keys are
// stored as nested objects or as literal flat keys, so at each level the
// whole remaining path is tried as a literal key before descending one
// segment. The second return value is false when any segment is absent;
// an explicit JSON null at the end of the path still counts as present.
func (r LogRecord) GetNestedValue(path string) (ldvalue.Value, bool) {
	return getNested(r.Source, path)
}

func getNested(v ldvalue.Value, path string) (ldvalue.Value, bool) {
	if next, ok := v.TryGetByKey(path); ok {
		return next, true
	}
	i := strings.Index(path, ".")
	if i < 0 {
		return ldvalue.Null(), false
	}
	next, ok := v.TryGetByKey(path[:i])
	if !ok {
		return ldvalue.Null(), false
	}
	return getNested(next, path[i+1:])
}

func (r LogRecord) stringField(path string) string {
	v, ok := r.GetNestedValue(path)
	if !ok || !v.IsString() {
		return ""
	}
	return v.StringValue()
}

// EventAction returns the record's event.action field, or "" if absent.
func (r LogRecord) EventAction() string { return r.stringField(FieldEventAction) }

// EventOutcome returns the record's event.outcome field, or "" if absent.
func (r LogRecord) EventOutcome() string { return r.stringField(FieldEventOutcome) }

// LoggerName returns the record's log.logger field, or "" if absent.
func (r LogRecord) LoggerName() string { return r.stringField(FieldLogLogger) }
