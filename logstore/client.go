package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/oots-bridge/evidence-contract-tests/framework"
)

// Config identifies the document index to query.
type Config struct {
	Addresses        []string
	Index            string
	CorrelationField string
	Username         string
	Password         string
}

// Client issues term/range searches against the index. It never writes.
type Client struct {
	es               *elasticsearch.Client
	index            string
	correlationField string
	logger           framework.Logger
}

func NewClient(cfg Config, logger framework.Logger) (*Client, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("creating log store client: %w", err)
	}
	correlationField := cfg.CorrelationField
	if correlationField == "" {
		correlationField = FieldConversationID
	}
	return &Client{
		es:               es,
		index:            cfg.Index,
		correlationField: correlationField,
		logger:           logger,
	}, nil
}

// Ping verifies that the index endpoint is reachable. Used by the
// prerequisite check before any scenario runs.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("log store unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("log store ping returned %s", res.Status())
	}
	return nil
}

// QueryByCorrelationID returns every record whose correlation field exactly
// matches id. An empty result is not an error; it usually just means the
// indexing pipeline has not caught up yet.
func (c *Client) QueryByCorrelationID(ctx context.Context, id string, size int, ascending bool) ([]LogRecord, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				c.correlationField: id,
			},
		},
	}
	return c.search(ctx, query, size, ascending)
}

// QueryByEventAction is the fallback retrieval path: it matches on
// event.action with a timestamp lower bound so that records from unrelated
// historical runs cannot leak in.
func (c *Client) QueryByEventAction(ctx context.Context, action string, since time.Time, limit int) ([]LogRecord, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{FieldEventAction: action},
					},
					map[string]interface{}{
						"range": map[string]interface{}{
							timestampField: map[string]interface{}{
								"gte": since.UTC().Format(time.RFC3339Nano),
							},
						},
					},
				},
			},
		},
	}
	return c.search(ctx, query, limit, true)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) search(ctx context.Context, query map[string]interface{}, size int, ascending bool) ([]LogRecord, error) {
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(query); err != nil {
		return nil, err
	}

	sortOrder := timestampField + ":desc"
	if ascending {
		sortOrder = timestampField + ":asc"
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&body),
		c.es.Search.WithSize(size),
		c.es.Search.WithSort(sortOrder),
	)
	if err != nil {
		return nil, fmt.Errorf("log store query failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("log store query returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("malformed log store response: %w", err)
	}

	records := make([]LogRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		records = append(records, NewRecord(hit.ID, hit.Source))
	}
	c.logger.Printf("log store query returned %d records", len(records))
	return records, nil
}
