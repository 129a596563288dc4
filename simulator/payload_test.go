package simulator

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSubject = "999990011"

func gunzip(t *testing.T, data []byte) []byte {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	out, err := io.ReadAll(zr)
	require.NoError(t, err)
	return out
}

func TestSuccessResultIsCompressedWellFormedEvidence(t *testing.T) {
	result, err := SynthesizeResult(BehaviorSuccess, testSubject)
	require.NoError(t, err)
	assert.Equal(t, ReturnCodeOK, result.Code)
	assert.Empty(t, result.Message)

	var doc evidenceDocument
	require.NoError(t, xml.Unmarshal(gunzip(t, result.Payload), &doc))
	assert.Equal(t, testSubject, doc.SubjectID)
}

func TestAdvisoryModesCarryMessageAndNoPayload(t *testing.T) {
	for behavior, code := range map[Behavior]ReturnCode{
		BehaviorError:     ReturnCodeError,
		BehaviorNoRecords: ReturnCodeNoResults,
		BehaviorCancel:    ReturnCodeCancel,
	} {
		result, err := SynthesizeResult(behavior, testSubject)
		require.NoError(t, err, "behavior %s", behavior)
		assert.Equal(t, code, result.Code, "behavior %s", behavior)
		assert.Empty(t, result.Payload, "behavior %s", behavior)
		assert.NotEmpty(t, result.Message, "behavior %s", behavior)
	}
}

func TestInvalidGzipResultIsNotActuallyCompressed(t *testing.T) {
	result, err := SynthesizeResult(BehaviorInvalidGzip, testSubject)
	require.NoError(t, err)
	assert.Equal(t, ReturnCodeOK, result.Code)

	_, err = gzip.NewReader(bytes.NewReader(result.Payload))
	assert.Error(t, err, "payload must not be valid gzip")

	// the uncompressed bytes themselves are a perfectly good document
	var doc evidenceDocument
	assert.NoError(t, xml.Unmarshal(result.Payload, &doc))
}

func TestInvalidXMLResultDecompressesToBrokenDocument(t *testing.T) {
	result, err := SynthesizeResult(BehaviorInvalidXML, testSubject)
	require.NoError(t, err)
	assert.Equal(t, ReturnCodeOK, result.Code)

	raw := gunzip(t, result.Payload)
	var doc evidenceDocument
	assert.Error(t, xml.Unmarshal(raw, &doc), "decompressed bytes must fail parsing")
}

func TestIdentityMismatchResultDescribesSomeoneElse(t *testing.T) {
	result, err := SynthesizeResult(BehaviorIdentityMismatch, testSubject)
	require.NoError(t, err)
	assert.Equal(t, ReturnCodeOK, result.Code)

	var doc evidenceDocument
	require.NoError(t, xml.Unmarshal(gunzip(t, result.Payload), &doc))
	assert.NotEqual(t, testSubject, doc.SubjectID)
	assert.NotEmpty(t, doc.SubjectID)
}

func TestNoResultDefinedForTimeout(t *testing.T) {
	_, err := SynthesizeResult(BehaviorTimeout, testSubject)
	assert.Error(t, err)
}
