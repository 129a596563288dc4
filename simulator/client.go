package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oots-bridge/evidence-contract-tests/framework"
)

// ControlClient is the runner's view of a simulator instance: arming the
// behavior for a path, health checking, and directly invoking the redirect
// endpoint to emulate "user completed the external flow".
type ControlClient struct {
	baseURL    string
	httpClient *http.Client
	// redirectClient carries no fixed timeout: a timeout-mode session
	// hangs deliberately, and the caller's context decides when to give
	// up on it.
	redirectClient *http.Client
	logger         framework.Logger
}

func NewControlClient(baseURL string, logger framework.Logger) *ControlClient {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &ControlClient{
		baseURL:        baseURL,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		redirectClient: &http.Client{},
		logger:         logger,
	}
}

// SetBehavior arms the simulator. An empty sessionID sets the process-wide
// default, matching how the runner serializes paths.
func (c *ControlClient) SetBehavior(ctx context.Context, behavior Behavior, delay time.Duration, sessionID string) error {
	body, _ := json.Marshal(behaviorRequest{
		Behavior:        string(behavior),
		ResponseDelayMS: int(delay / time.Millisecond),
		SessionID:       sessionID,
	})
	c.logger.Printf("arming simulator: %s", string(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/test/behavior", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("simulator control request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("simulator rejected behavior %q: HTTP %d: %s", behavior, resp.StatusCode, string(detail))
	}
	return nil
}

// Health queries the simulator's health endpoint.
func (c *ControlClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("simulator unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("simulator health returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// InvokeRedirect hits the participant endpoint the way the citizen's
// browser would, triggering the simulator's callback to returnURL.
func (c *ControlClient) InvokeRedirect(ctx context.Context, sessionID, returnURL string) error {
	q := url.Values{}
	q.Set("sessionId", sessionID)
	q.Set("returnUrl", returnURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/redirect-entry?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.redirectClient.Do(req)
	if err != nil {
		return fmt.Errorf("redirect invocation failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("redirect invocation returned HTTP %d: %s", resp.StatusCode, string(detail))
	}
	c.logger.Printf("redirect invoked for session %s", sessionID)
	return nil
}
