package anki

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultURL is the address AnkiConnect listens on by default
const DefaultURL = "http://127.0.0.1:8765"

// apiVersion is the AnkiConnect protocol version sent with every request
const apiVersion = 6

const requestTimeout = 60 * time.Second

// consecutiveFailureLimit trips the circuit breaker. Once open, the endpoint
// is considered gone for the rest of the run.
const consecutiveFailureLimit = 5

// Client is an AnkiConnect RPC client. All calls go through a circuit
// breaker so that a dead endpoint fails the run fast instead of timing out
// once per remaining record.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for the AnkiConnect endpoint at the given URL
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ankiconnect",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= consecutiveFailureLimit
		},
	})

	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: requestTimeout},
		breaker:    breaker,
	}
}

// IsCircuitOpen reports whether err means the circuit breaker gave up on the
// endpoint. Callers treat this as fatal for the whole run.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// rpcRequest is the AnkiConnect request envelope
type rpcRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse is the AnkiConnect response envelope
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Invoke performs a single AnkiConnect action and returns the raw result
func (c *Client) Invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		return c.invoke(ctx, action, params)
	})
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func (c *Client) invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AnkiConnect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("AnkiConnect returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode AnkiConnect response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("AnkiConnect error: %s", *rpcResp.Error)
	}

	return rpcResp.Result, nil
}

// Ping checks that the AnkiConnect endpoint is reachable at all
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Invoke(ctx, "version", nil); err != nil {
		return fmt.Errorf("AnkiConnect is not reachable at %s: %w", c.url, err)
	}
	return nil
}

// StoreMediaFile uploads media bytes into Anki's media collection under the
// given filename, replacing any existing file with that name.
func (c *Client) StoreMediaFile(ctx context.Context, filename string, data []byte) error {
	params := map[string]any{
		"filename": filename,
		"data":     base64.StdEncoding.EncodeToString(data),
	}
	if _, err := c.Invoke(ctx, "storeMediaFile", params); err != nil {
		return fmt.Errorf("failed to store media %s: %w", filename, err)
	}
	return nil
}

// FindNotes returns the note IDs matching an Anki search query
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	result, err := c.Invoke(ctx, "findNotes", map[string]any{"query": query})
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal(result, &ids); err != nil {
		return nil, fmt.Errorf("unexpected findNotes result: %w", err)
	}
	return ids, nil
}

// Note is the payload for creating a new note
type Note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
}

// AddNote creates a new note and returns its ID
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	if note.Tags == nil {
		note.Tags = []string{}
	}

	result, err := c.Invoke(ctx, "addNote", map[string]any{"note": note})
	if err != nil {
		return 0, err
	}

	var id int64
	if err := json.Unmarshal(result, &id); err != nil {
		return 0, fmt.Errorf("unexpected addNote result: %w", err)
	}
	return id, nil
}

// UpdateNote replaces the fields and tags of an existing note
func (c *Client) UpdateNote(ctx context.Context, id int64, fields map[string]string, tags []string) error {
	if tags == nil {
		tags = []string{}
	}

	params := map[string]any{
		"note": map[string]any{
			"id":     id,
			"fields": fields,
			"tags":   tags,
		},
	}
	if _, err := c.Invoke(ctx, "updateNote", params); err != nil {
		return fmt.Errorf("failed to update note %d: %w", id, err)
	}
	return nil
}
