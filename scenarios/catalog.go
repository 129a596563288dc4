package scenarios

import (
	"context"
	"time"

	"github.com/oots-bridge/evidence-contract-tests/logstore"
	"github.com/oots-bridge/evidence-contract-tests/simulator"
)

// Event actions produced by the bridge along the evidence flow.
const (
	ActionRequestReceived    = "evidence_request_received"
	ActionIdentityMatched    = "identity_matching_completed"
	ActionPreviewRedirect    = "preview_redirect_issued"
	ActionRetrievalCompleted = "evidence_retrieval_completed"
	ActionResponseSent       = "evidence_response_sent"
)

// LoggerName narrows an expected log entry to one producer category.
type LoggerName string

const (
	LoggerAny    LoggerName = ""
	LoggerApp    LoggerName = "app"
	LoggerExt    LoggerName = "ext"
	LoggerDomain LoggerName = "domain"
)

type Outcome string

const (
	OutcomeAny     Outcome = ""
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// ExpectedLog is a predicate over the existence and shape of one log
// record. Matching is set-membership over the retrieved trail; the order
// of entries in a path carries no temporal meaning unless the path sets
// StrictOrder.
type ExpectedLog struct {
	EventAction    string
	Logger         LoggerName
	Outcome        Outcome
	RequiredFields []string
	FieldValues    map[string]logstore.FieldExpectation
	Optional       bool
}

// TriggerFunc drives the protocol far enough that the path's expected log
// trail should appear. It runs under the path's step deadline.
type TriggerFunc func(ctx context.Context, t *T) error

// Path is one catalog entry: defined at startup, read many times, never
// mutated.
type Path struct {
	ID          int
	Name        string
	Description string
	Behavior    simulator.Behavior
	// BehaviorDelay is the artificial delay the simulator applies before
	// calling back.
	BehaviorDelay time.Duration
	Trigger       TriggerFunc
	ExpectedLogs  []ExpectedLog
	// WaitBudget bounds the log-store polling phase. Zero means the
	// run-level default.
	WaitBudget time.Duration
	// StepTimeout bounds the trigger phase. Zero means the run-level
	// default.
	StepTimeout time.Duration
	// StrictOrder additionally requires the matched records to appear in
	// timestamp order matching the expected list.
	StrictOrder bool
}

var requestReceived = ExpectedLog{
	EventAction:    ActionRequestReceived,
	Logger:         LoggerApp,
	Outcome:        OutcomeSuccess,
	RequiredFields: []string{logstore.FieldConversationID},
}

// Catalog returns the full path table. IDs are stable across releases so
// that `run --path N` means the same thing in CI history.
func Catalog() []Path {
	return []Path{
		{
			ID:          1,
			Name:        "preview requested",
			Description: "previewable request without a preview location makes the bridge answer with a preview offer",
			Behavior:    simulator.BehaviorSuccess,
			Trigger:     triggerPreviewRequest,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionIdentityMatched, Logger: LoggerDomain, Outcome: OutcomeSuccess, Optional: true},
				{
					EventAction: ActionResponseSent,
					Logger:      LoggerApp,
					Outcome:     OutcomeSuccess,
					FieldValues: map[string]logstore.FieldExpectation{
						"response.result":           logstore.ExpectString("preview_requested"),
						"response.preview.location": logstore.ExpectAbsent(),
					},
				},
			},
		},
		{
			ID:          2,
			Name:        "direct exchange without preview",
			Description: "preview disallowed; evidence fetched and returned without user involvement",
			Behavior:    simulator.BehaviorSuccess,
			Trigger:     triggerDirectExchange,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionRetrievalCompleted, Logger: LoggerExt, Outcome: OutcomeSuccess},
				{
					EventAction: ActionResponseSent,
					Logger:      LoggerApp,
					Outcome:     OutcomeSuccess,
					FieldValues: map[string]logstore.FieldExpectation{
						"response.result": logstore.ExpectString("evidence_delivered"),
					},
				},
			},
			StrictOrder: true,
		},
		{
			ID:          3,
			Name:        "completed preview flow",
			Description: "citizen completes the provider flow; evidence is delivered after the callback",
			Behavior:    simulator.BehaviorSuccess,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionPreviewRedirect, Logger: LoggerApp, Outcome: OutcomeSuccess},
				{EventAction: ActionRetrievalCompleted, Logger: LoggerExt, Outcome: OutcomeSuccess},
				{
					EventAction: ActionResponseSent,
					Logger:      LoggerApp,
					Outcome:     OutcomeSuccess,
					FieldValues: map[string]logstore.FieldExpectation{
						"response.result": logstore.ExpectString("evidence_delivered"),
					},
				},
			},
		},
		{
			ID:          4,
			Name:        "provider reports error",
			Description: "provider callback carries ERROR; bridge answers with a failure response",
			Behavior:    simulator.BehaviorError,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionRetrievalCompleted, Logger: LoggerExt, Outcome: OutcomeFailure},
				{EventAction: ActionResponseSent, Logger: LoggerApp, Outcome: OutcomeFailure},
			},
		},
		{
			ID:          5,
			Name:        "provider has no records",
			Description: "provider callback carries NO_RESULTS; bridge answers with an empty-result response",
			Behavior:    simulator.BehaviorNoRecords,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{
					EventAction: ActionResponseSent,
					Logger:      LoggerApp,
					FieldValues: map[string]logstore.FieldExpectation{
						"response.result": logstore.ExpectString("no_records"),
					},
				},
			},
		},
		{
			ID:          6,
			Name:        "user cancels at provider",
			Description: "provider callback carries CANCEL; bridge reports the cancellation",
			Behavior:    simulator.BehaviorCancel,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{
					EventAction: ActionResponseSent,
					Logger:      LoggerApp,
					FieldValues: map[string]logstore.FieldExpectation{
						"response.result": logstore.ExpectString("cancelled"),
					},
				},
			},
		},
		{
			ID:          7,
			Name:        "identity mismatch detected",
			Description: "provider answers about a different subject; identity matching must fail downstream",
			Behavior:    simulator.BehaviorIdentityMismatch,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionIdentityMatched, Logger: LoggerDomain, Outcome: OutcomeFailure},
				{EventAction: ActionResponseSent, Logger: LoggerApp, Outcome: OutcomeFailure},
			},
		},
		{
			ID:          8,
			Name:        "corrupted payload compression",
			Description: "provider reports OK but the payload is not gzip; the decode failure is caught downstream",
			Behavior:    simulator.BehaviorInvalidGzip,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionResponseSent, Logger: LoggerApp, Outcome: OutcomeFailure},
			},
		},
		{
			ID:          9,
			Name:        "schema-invalid payload",
			Description: "provider reports OK but the payload fails schema validation downstream",
			Behavior:    simulator.BehaviorInvalidXML,
			Trigger:     triggerCompletedFlow,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionResponseSent, Logger: LoggerApp, Outcome: OutcomeFailure},
			},
		},
		{
			ID:          10,
			Name:        "provider never responds",
			Description: "provider goes silent; the step deadline abandons the flow and the bridge times the session out",
			Behavior:    simulator.BehaviorTimeout,
			Trigger:     triggerUnresponsiveProvider,
			ExpectedLogs: []ExpectedLog{
				requestReceived,
				{EventAction: ActionResponseSent, Logger: LoggerApp, Outcome: OutcomeFailure, Optional: true},
			},
			WaitBudget:  45 * time.Second,
			StepTimeout: 15 * time.Second,
		},
	}
}

// FindPath looks a catalog entry up by id.
func FindPath(id int) (Path, bool) {
	for _, p := range Catalog() {
		if p.ID == id {
			return p, true
		}
	}
	return Path{}, false
}
