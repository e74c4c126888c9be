// -----------------------------------------------------------------------
// Qdrant Client - Vector index backed by the Qdrant REST API
// -----------------------------------------------------------------------

package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultDistance = "Cosine"
)

// Client talks to a Qdrant instance over its REST API and implements the
// VectorIndex interface. Records carry a monotonic sequence number in their
// payload so that equal-score search hits can be ordered by insertion.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
	sequence   atomic.Int64
}

// Compile-time interface assertion
var _ interfaces.VectorIndex = (*Client)(nil)

// Option configures the client
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outbound requests per second
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient creates a Qdrant client from configuration
func NewClient(config *common.QdrantConfig, logger arbor.ILogger, opts ...Option) *Client {
	timeout := defaultTimeout
	if config.Timeout != "" {
		if parsed, err := time.ParseDuration(config.Timeout); err == nil {
			timeout = parsed
		}
	}

	client := &Client{
		baseURL: strings.TrimRight(config.URL, "/"),
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(100), 100),
		logger:  logger,
	}
	// Seed so sequences stay monotonic across restarts.
	client.sequence.Store(time.Now().UnixNano())

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// collectionInfoResponse mirrors GET /collections/{name}
type collectionInfoResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
	Status string `json:"status"`
}

// pointPayload is the metadata stored alongside each vector
type pointPayload struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
	PageNumber int    `json:"page_number"`
	Sequence   int64  `json:"sequence"`
}

type upsertPoint struct {
	ID      string       `json:"id"`
	Vector  []float32    `json:"vector"`
	Payload pointPayload `json:"payload"`
}

type upsertRequest struct {
	Points []upsertPoint `json:"points"`
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		ID      string       `json:"id"`
		Score   float64      `json:"score"`
		Payload pointPayload `json:"payload"`
	} `json:"result"`
	Status string `json:"status"`
}

// EnsureCollection resolves a collection name to a handle. It never creates
// the collection: provisioning is a separate administrative step.
func (c *Client) EnsureCollection(ctx context.Context, name string) (*interfaces.Collection, error) {
	if name == "" {
		return nil, models.NewPipelineError(models.ErrKindCollectionNotFound, "collection name is empty", nil)
	}

	resp, err := c.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.NewPipelineError(models.ErrKindCollectionNotFound,
			fmt.Sprintf("collection %s does not exist", name), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d querying collection %s", resp.StatusCode, name)
	}

	var info collectionInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode collection info: %w", err)
	}

	collection := &interfaces.Collection{
		Name:      name,
		Dimension: info.Result.Config.Params.Vectors.Size,
		Distance:  info.Result.Config.Params.Vectors.Distance,
	}

	c.logger.Debug().
		Str("collection", name).
		Int("dimension", collection.Dimension).
		Str("distance", collection.Distance).
		Msg("Resolved collection")

	return collection, nil
}

// Upsert writes records as one atomic batch. Every record is validated
// before any bytes go on the wire: a malformed batch writes nothing.
func (c *Client) Upsert(ctx context.Context, collection *interfaces.Collection, records []models.IndexRecord) error {
	if collection == nil {
		return models.NewPipelineError(models.ErrKindUpsert, "collection handle is nil", nil)
	}
	if len(records) == 0 {
		return models.NewPipelineError(models.ErrKindUpsert, "no records to upsert", nil)
	}

	for i, record := range records {
		if record.ID == "" {
			return models.NewPipelineError(models.ErrKindUpsert,
				fmt.Sprintf("record %d has no id", i), nil)
		}
		if strings.TrimSpace(record.Segment.Text) == "" {
			return models.NewPipelineError(models.ErrKindUpsert,
				fmt.Sprintf("record %d has empty text", i), nil)
		}
		if len(record.Vector) != collection.Dimension {
			return models.NewPipelineError(models.ErrKindUpsert,
				fmt.Sprintf("record %d has dimension %d, collection expects %d",
					i, len(record.Vector), collection.Dimension), nil)
		}
	}

	points := make([]upsertPoint, len(records))
	for i, record := range records {
		points[i] = upsertPoint{
			ID:     record.ID,
			Vector: record.Vector,
			Payload: pointPayload{
				Text:       record.Segment.Text,
				DocumentID: record.Segment.DocumentID,
				Source:     record.Segment.Source,
				PageNumber: record.Segment.PageNumber,
				Sequence:   c.sequence.Add(1),
			},
		}
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodPut,
		"/collections/"+collection.Name+"/points?wait=true",
		upsertRequest{Points: points})
	if err != nil {
		return models.NewPipelineError(models.ErrKindUpsert, "upsert request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.NewPipelineError(models.ErrKindUpsert,
			fmt.Sprintf("upsert returned status %d: %s", resp.StatusCode, readBody(resp.Body)), nil)
	}

	c.logger.Info().
		Str("collection", collection.Name).
		Int("records", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Batch upserted")

	return nil
}

// Search returns the k nearest records to queryVector ordered by descending
// similarity. Equal scores are broken by insertion sequence, earliest first.
func (c *Client) Search(ctx context.Context, collection *interfaces.Collection, queryVector []float32, k int) (*models.RetrievalResult, error) {
	if collection == nil {
		return nil, models.NewPipelineError(models.ErrKindSearch, "collection handle is nil", nil)
	}
	if k <= 0 {
		return nil, models.NewPipelineError(models.ErrKindSearch,
			fmt.Sprintf("k must be positive, got %d", k), nil)
	}
	if len(queryVector) != collection.Dimension {
		return nil, models.NewPipelineError(models.ErrKindSearch,
			fmt.Sprintf("query vector has dimension %d, collection expects %d",
				len(queryVector), collection.Dimension), nil)
	}

	resp, err := c.do(ctx, http.MethodPost,
		"/collections/"+collection.Name+"/points/search",
		searchRequest{Vector: queryVector, Limit: k, WithPayload: true})
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindSearch, "search request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, models.NewPipelineError(models.ErrKindSearch,
			fmt.Sprintf("collection %s vanished", collection.Name), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, models.NewPipelineError(models.ErrKindSearch,
			fmt.Sprintf("search returned status %d: %s", resp.StatusCode, readBody(resp.Body)), nil)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, models.NewPipelineError(models.ErrKindSearch, "failed to decode search response", err)
	}

	records := make([]scoredHit, len(result.Result))
	for i, hit := range result.Result {
		records[i] = scoredHit{
			record: models.ScoredRecord{
				Record: models.IndexRecord{
					ID: hit.ID,
					Segment: models.Segment{
						Text:       hit.Payload.Text,
						DocumentID: hit.Payload.DocumentID,
						Source:     hit.Payload.Source,
						PageNumber: hit.Payload.PageNumber,
					},
				},
				Score: hit.Score,
			},
			sequence: hit.Payload.Sequence,
		}
	}
	ordered := orderHits(records)

	c.logger.Debug().
		Str("collection", collection.Name).
		Int("k", k).
		Int("hits", len(ordered)).
		Msg("Search completed")

	return &models.RetrievalResult{Records: ordered}, nil
}

// CreateCollection provisions a collection with the given dimensionality.
// Administrative operation, used by the provisioning command only.
func (c *Client) CreateCollection(ctx context.Context, name string, dimension int) error {
	if name == "" || dimension <= 0 {
		return fmt.Errorf("collection name and a positive dimension are required")
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": defaultDistance,
		},
	}
	resp, err := c.do(ctx, http.MethodPut, "/collections/"+name, body)
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create collection %s returned status %d: %s",
			name, resp.StatusCode, readBody(resp.Body))
	}

	c.logger.Info().
		Str("collection", name).
		Int("dimension", dimension).
		Msg("Collection created")

	return nil
}

// DeleteCollection removes a collection and all of its records.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/collections/"+name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete collection %s returned status %d", name, resp.StatusCode)
	}
	return nil
}

// do executes one request against the Qdrant API
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	return c.httpClient.Do(req)
}

func readBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
