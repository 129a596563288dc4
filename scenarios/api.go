// Package scenarios contains the declarative path catalog for the
// evidence-exchange flow and the runner that executes it against a live
// deployment.
package scenarios

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/oots-bridge/evidence-contract-tests/framework"
	"github.com/oots-bridge/evidence-contract-tests/simulator"
)

// CorrelationIDs are the identifiers generated fresh for each path
// execution. The conversation id joins the log trail; the session id names
// the preview session at the simulator.
type CorrelationIDs struct {
	ConversationID string
	SessionID      string
}

func newCorrelationIDs() CorrelationIDs {
	return CorrelationIDs{
		ConversationID: uuid.NewString(),
		SessionID:      uuid.NewString(),
	}
}

// T is the scope handed to a path's trigger procedure. It bundles the
// collaborator clients with the identifiers of the current execution, so
// triggers stay declarative one-liners.
type T struct {
	ids       CorrelationIDs
	gateway   *GatewayClient
	sim       *simulator.ControlClient
	returnURL string
	simBase   string
	logger    framework.Logger
}

// RequestOpts are the per-path knobs of an evidence request; identifiers
// and the subject are filled in by the scope.
type RequestOpts struct {
	PossibilityForPreview bool
	PreviewLocation       string
	EvidenceType          string
}

// IDs returns the identifiers generated for this execution.
func (t *T) IDs() CorrelationIDs { return t.ids }

// Debug records a message in the path's captured debug output.
func (t *T) Debug(format string, args ...interface{}) {
	t.logger.Printf(format, args...)
}

// SubmitEvidenceRequest builds and submits the protocol request embedding
// this execution's identifiers.
func (t *T) SubmitEvidenceRequest(ctx context.Context, opts RequestOpts) error {
	evidenceType := opts.EvidenceType
	if evidenceType == "" {
		evidenceType = "BirthCertificate"
	}
	return t.gateway.Submit(ctx, EvidenceRequest{
		ConversationID:        t.ids.ConversationID,
		EvidenceType:          evidenceType,
		SubjectID:             requestedSubjectID,
		PossibilityForPreview: opts.PossibilityForPreview,
		PreviewLocation:       opts.PreviewLocation,
	})
}

// CompleteExternalFlow emulates the citizen finishing at the data
// provider: it invokes the simulator's redirect endpoint, which calls the
// bridge back according to the armed behavior.
func (t *T) CompleteExternalFlow(ctx context.Context) error {
	return t.sim.InvokeRedirect(ctx, t.ids.SessionID, t.returnURL)
}

// SimulatorRedirectURL is the preview location to advertise in requests
// whose paths route the citizen through the simulator.
func (t *T) SimulatorRedirectURL() string {
	q := url.Values{}
	q.Set("sessionId", t.ids.SessionID)
	return fmt.Sprintf("%s/redirect-entry?%s", t.simBase, q.Encode())
}

// Sleep pauses the trigger without outliving the step deadline.
func (t *T) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
