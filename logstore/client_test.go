package logstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is a minimal stand-in for the search endpoint. The product
// header is required or the client refuses to talk to it.
func fakeIndex(t *testing.T, handler func(body []byte) string) (*Client, *[]string) {
	var bodies []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		data, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(data))
		io.WriteString(w, handler(data))
	}))
	t.Cleanup(ts.Close)

	client, err := NewClient(Config{
		Addresses: []string{ts.URL},
		Index:     "logs-bridge-test",
	}, nil)
	require.NoError(t, err)
	return client, &bodies
}

const twoHitResponse = `{
	"hits": {"hits": [
		{"_id": "r1", "_source": {"@timestamp": "2026-03-02T10:00:00Z", "event": {"action": "evidence_request_received"}}},
		{"_id": "r2", "_source": {"@timestamp": "2026-03-02T10:00:05Z", "event": {"action": "evidence_response_sent"}}}
	]}
}`

func TestQueryByCorrelationIDParsesHits(t *testing.T) {
	client, bodies := fakeIndex(t, func([]byte) string { return twoHitResponse })

	records, err := client.QueryByCorrelationID(context.Background(), "conv-1", 50, true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "evidence_request_received", records[0].EventAction())
	assert.False(t, records[1].Timestamp.IsZero())

	require.Len(t, *bodies, 1)
	var query map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte((*bodies)[0]), &query))
	term := query["query"].(map[string]interface{})["term"].(map[string]interface{})
	assert.Equal(t, "conv-1", term[FieldConversationID])
}

func TestQueryByCorrelationIDEmptyResultIsNotAnError(t *testing.T) {
	client, _ := fakeIndex(t, func([]byte) string { return `{"hits":{"hits":[]}}` })
	records, err := client.QueryByCorrelationID(context.Background(), "conv-none", 50, true)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryByEventActionScopesToTimestamp(t *testing.T) {
	client, bodies := fakeIndex(t, func([]byte) string { return `{"hits":{"hits":[]}}` })

	since := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := client.QueryByEventAction(context.Background(), "evidence_response_sent", since, 20)
	require.NoError(t, err)

	require.Len(t, *bodies, 1)
	body := (*bodies)[0]
	assert.Contains(t, body, `"evidence_response_sent"`)
	assert.Contains(t, body, `"gte"`)
	assert.Contains(t, body, "2026-03-02T09:00:00Z")
}

func TestSearchErrorStatusSurfacesAsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	client, err := NewClient(Config{Addresses: []string{ts.URL}, Index: "x"}, nil)
	require.NoError(t, err)
	_, err = client.QueryByCorrelationID(context.Background(), "conv-1", 10, true)
	assert.Error(t, err)
}
