package scenarios

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oots-bridge/evidence-contract-tests/framework"
)

// requestedSubjectID is the citizen identity every scenario asks evidence
// about. The identity_mismatch mode makes the simulator answer about
// someone else.
const requestedSubjectID = "999990011"

// EvidenceRequest is the payload submitted to the protocol entry point.
// The gateway answers accept/reject synchronously; everything that happens
// afterwards is observed through the log store only.
type EvidenceRequest struct {
	ConversationID        string `json:"conversationId"`
	EvidenceType          string `json:"evidenceType"`
	SubjectID             string `json:"subjectId"`
	PossibilityForPreview bool   `json:"possibilityForPreview"`
	PreviewLocation       string `json:"previewLocation,omitempty"`
}

// GatewayClient submits evidence requests to the Evidence Requester
// gateway.
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
	logger     framework.Logger
}

func NewGatewayClient(baseURL string, logger framework.Logger) *GatewayClient {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &GatewayClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Health checks the gateway's health endpoint (prerequisite stage).
func (g *GatewayClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway health returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Submit posts an evidence request. A non-2xx response is a synchronous
// reject and surfaces as an error.
func (g *GatewayClient) Submit(ctx context.Context, request EvidenceRequest) error {
	body, err := json.Marshal(request)
	if err != nil {
		return err
	}
	g.logger.Printf("submitting evidence request: %s", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/evidence-requests", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submitting evidence request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway rejected request: HTTP %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}

// Trigger procedures referenced by the catalog. Each one drives the
// protocol far enough that the expected log trail should appear.

// triggerPreviewRequest submits a request that allows preview but supplies
// no preview location, so the bridge must answer with a preview offer
// instead of evidence.
func triggerPreviewRequest(ctx context.Context, t *T) error {
	return t.SubmitEvidenceRequest(ctx, RequestOpts{PossibilityForPreview: true})
}

// triggerDirectExchange submits a request with preview disallowed; the
// bridge must fetch and return evidence without user involvement.
func triggerDirectExchange(ctx context.Context, t *T) error {
	return t.SubmitEvidenceRequest(ctx, RequestOpts{PossibilityForPreview: false})
}

// triggerCompletedFlow submits a previewable request and then plays the
// citizen: it gives the bridge a moment to set the preview session up and
// invokes the simulator's redirect endpoint, which calls back to the
// bridge with whatever the armed behavior dictates.
func triggerCompletedFlow(ctx context.Context, t *T) error {
	if err := t.SubmitEvidenceRequest(ctx, RequestOpts{
		PossibilityForPreview: true,
		PreviewLocation:       t.SimulatorRedirectURL(),
	}); err != nil {
		return err
	}
	if err := t.Sleep(ctx, 2*time.Second); err != nil {
		return err
	}
	return t.CompleteExternalFlow(ctx)
}

// triggerUnresponsiveProvider is triggerCompletedFlow for the timeout
// mode: the redirect invocation is expected to hang until the step
// deadline abandons it, and that abandonment is not a trigger failure.
func triggerUnresponsiveProvider(ctx context.Context, t *T) error {
	if err := t.SubmitEvidenceRequest(ctx, RequestOpts{
		PossibilityForPreview: true,
		PreviewLocation:       t.SimulatorRedirectURL(),
	}); err != nil {
		return err
	}
	if err := t.Sleep(ctx, 2*time.Second); err != nil {
		return err
	}
	if err := t.CompleteExternalFlow(ctx); err != nil {
		if ctx.Err() != nil {
			t.Debug("provider never answered, abandoned after step deadline: %s", err)
			return nil
		}
		return err
	}
	return fmt.Errorf("expected the provider redirect to hang, but it completed")
}
