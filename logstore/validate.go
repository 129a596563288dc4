package logstore

import (
	"fmt"
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// FieldExpectation describes what a single dotted-path field of a record
// should look like: either a concrete value, or explicit absence.
type FieldExpectation struct {
	value  ldvalue.Value
	absent bool
}

// ExpectValue expects the field to be present and deeply equal to v,
// compared by canonical JSON equality.
func ExpectValue(v ldvalue.Value) FieldExpectation {
	return FieldExpectation{value: v}
}

// ExpectString is shorthand for ExpectValue of a string.
func ExpectString(s string) FieldExpectation {
	return FieldExpectation{value: ldvalue.String(s)}
}

// ExpectAbsent expects the field to not exist at all.
func ExpectAbsent() FieldExpectation {
	return FieldExpectation{absent: true}
}

// ValidateFields checks a record against a map of dotted-path expectations
// and returns one message per violation. It is a pure function: an empty
// result means the record fully satisfies the expectation map.
func ValidateFields(record LogRecord, expected map[string]FieldExpectation) []string {
	if len(expected) == 0 {
		return nil
	}

	paths := make([]string, 0, len(expected))
	for p := range expected {
		paths = append(paths, p)
	}
	sort.Strings(paths) // deterministic message order

	var violations []string
	for _, path := range paths {
		exp := expected[path]
		actual, present := record.GetNestedValue(path)
		switch {
		case exp.absent && present:
			violations = append(violations,
				fmt.Sprintf("field %q: expected absent, got %s", path, actual.JSONString()))
		case !exp.absent && !present:
			violations = append(violations,
				fmt.Sprintf("field %q: missing, expected %s", path, exp.value.JSONString()))
		case !exp.absent && !actual.Equal(exp.value):
			violations = append(violations,
				fmt.Sprintf("field %q: expected %s, got %s", path, exp.value.JSONString(), actual.JSONString()))
		}
	}
	return violations
}
