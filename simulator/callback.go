package simulator

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Form field names of the callback, fixed by the bridge's return endpoint.
const (
	formFieldSessionID     = "sessionId"
	formFieldReturnCode    = "returnCode"
	formFieldPayload       = "payload"
	formFieldReturnMessage = "returnMessage"
)

// deliverCallback performs the single outbound POST to the caller-supplied
// return address. Payload bytes travel base64-encoded in a form field.
// Success is judged purely by the HTTP status class of the target's
// response.
func (s *Server) deliverCallback(ctx context.Context, returnURL, sessionID string, result Result) error {
	form := url.Values{}
	form.Set(formFieldSessionID, sessionID)
	form.Set(formFieldReturnCode, string(result.Code))
	if len(result.Payload) > 0 {
		form.Set(formFieldPayload, base64.StdEncoding.EncodeToString(result.Payload))
	}
	if result.Message != "" {
		form.Set(formFieldReturnMessage, result.Message)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, returnURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback target returned HTTP %d", resp.StatusCode)
	}
	s.logger.Printf("callback delivered to %s (returnCode=%s)", returnURL, result.Code)
	return nil
}
