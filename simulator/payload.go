package simulator

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"time"
)

// ReturnCode is the coarse result indicator carried in the callback.
type ReturnCode string

const (
	ReturnCodeOK        ReturnCode = "OK"
	ReturnCodeError     ReturnCode = "ERROR"
	ReturnCodeNoResults ReturnCode = "NO_RESULTS"
	ReturnCodeCancel    ReturnCode = "CANCEL"
)

// Result is what one invocation synthesizes before the callback is sent.
// Payload holds the bytes exactly as they will be transmitted; for the
// corruption modes they are deliberately not what the return code claims.
type Result struct {
	Code    ReturnCode
	Payload []byte
	Message string
}

// mismatchedSubjectID is returned by the identity_mismatch mode: a valid
// identifier that is guaranteed not to be the one the request asked about.
const mismatchedSubjectID = "999993653"

type evidenceDocument struct {
	XMLName      xml.Name `xml:"EvidenceResponse"`
	SubjectID    string   `xml:"Subject>Identifier"`
	EvidenceType string   `xml:"EvidenceType"`
	IssuedAt     string   `xml:"IssuedAt"`
	Content      string   `xml:"Content"`
}

// SynthesizeResult builds the callback result for the given behavior mode
// and requested subject. BehaviorTimeout has no result; callers must never
// ask for one.
func SynthesizeResult(behavior Behavior, subjectID string) (Result, error) {
	switch behavior {
	case BehaviorSuccess:
		payload, err := gzipBytes(marshalEvidence(subjectID))
		if err != nil {
			return Result{}, err
		}
		return Result{Code: ReturnCodeOK, Payload: payload}, nil

	case BehaviorError:
		return Result{Code: ReturnCodeError, Message: "internal error at data provider"}, nil

	case BehaviorNoRecords:
		return Result{Code: ReturnCodeNoResults, Message: "no records found for subject"}, nil

	case BehaviorCancel:
		return Result{Code: ReturnCodeCancel, Message: "user cancelled at data provider"}, nil

	case BehaviorInvalidGzip:
		// Plain bytes mislabeled as compressed; the decode failure happens
		// downstream, never here.
		return Result{Code: ReturnCodeOK, Payload: marshalEvidence(subjectID)}, nil

	case BehaviorInvalidXML:
		payload, err := gzipBytes([]byte("<EvidenceResponse><Malformed>"))
		if err != nil {
			return Result{}, err
		}
		return Result{Code: ReturnCodeOK, Payload: payload}, nil

	case BehaviorIdentityMismatch:
		payload, err := gzipBytes(marshalEvidence(mismatchedSubjectID))
		if err != nil {
			return Result{}, err
		}
		return Result{Code: ReturnCodeOK, Payload: payload}, nil

	default:
		return Result{}, fmt.Errorf("no result defined for behavior %q", behavior)
	}
}

func marshalEvidence(subjectID string) []byte {
	doc := evidenceDocument{
		SubjectID:    subjectID,
		EvidenceType: "BirthCertificate",
		IssuedAt:     time.Now().UTC().Format(time.RFC3339),
		Content:      "simulated evidence content",
	}
	data, err := xml.Marshal(doc)
	if err != nil {
		// The document is built from constants and a string; this cannot
		// fail at runtime.
		panic(err)
	}
	return data
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
