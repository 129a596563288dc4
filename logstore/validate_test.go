package logstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestValidateFieldsEmptyExpectationIsVacuouslyTrue(t *testing.T) {
	r := NewRecord("1", []byte(`{"anything":"at all"}`))
	assert.Empty(t, ValidateFields(r, nil))
	assert.Empty(t, ValidateFields(r, map[string]FieldExpectation{}))
}

func TestValidateFieldsAbsenceLaw(t *testing.T) {
	present := NewRecord("1", []byte(`{"a":{"b":"x"}}`))
	absent := NewRecord("2", []byte(`{"a":{}}`))

	expected := map[string]FieldExpectation{"a.b": ExpectAbsent()}
	assert.Empty(t, ValidateFields(absent, expected))

	violations := ValidateFields(present, expected)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "expected absent")
}

func TestValidateFieldsMissingField(t *testing.T) {
	r := NewRecord("1", []byte(`{}`))
	violations := ValidateFields(r, map[string]FieldExpectation{
		"response.result": ExpectString("preview_requested"),
	})
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "missing")
	assert.Contains(t, violations[0], `"preview_requested"`)
}

func TestValidateFieldsMismatchIncludesBothSides(t *testing.T) {
	r := NewRecord("1", []byte(`{"response":{"result":"evidence_delivered"}}`))
	violations := ValidateFields(r, map[string]FieldExpectation{
		"response.result": ExpectString("preview_requested"),
	})
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "preview_requested")
	assert.Contains(t, violations[0], "evidence_delivered")
}

func TestValidateFieldsDeepEquality(t *testing.T) {
	r := NewRecord("1", []byte(`{"response":{"preview":{"location":"https://x","method":"GET"}}}`))

	matching := ldvalue.ObjectBuild().
		Set("location", ldvalue.String("https://x")).
		Set("method", ldvalue.String("GET")).
		Build()
	assert.Empty(t, ValidateFields(r, map[string]FieldExpectation{
		"response.preview": ExpectValue(matching),
	}))

	differing := ldvalue.ObjectBuild().
		Set("location", ldvalue.String("https://y")).
		Set("method", ldvalue.String("GET")).
		Build()
	assert.Len(t, ValidateFields(r, map[string]FieldExpectation{
		"response.preview": ExpectValue(differing),
	}), 1)
}

func TestValidateFieldsReportsEveryViolation(t *testing.T) {
	r := NewRecord("1", []byte(`{"a":1}`))
	violations := ValidateFields(r, map[string]FieldExpectation{
		"a": ExpectAbsent(),
		"b": ExpectString("x"),
		"c": ExpectValue(ldvalue.Int(3)),
	})
	assert.Len(t, violations, 3)
}
