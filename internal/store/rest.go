package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/partyload/internal/core"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// REST inserts records through a PostgREST endpoint (Supabase /rest/v1).
type REST struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewREST creates a REST backend. A nil client uses http.DefaultClient;
// per-insert deadlines come from the caller's context.
func NewREST(baseURL, key string, client *http.Client) *REST {
	if client == nil {
		client = http.DefaultClient
	}
	return &REST{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  client,
	}
}

// APIError is a non-2xx response from the endpoint.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Code != "" {
		return fmt.Sprintf("store: status %d: %s (code %s)", e.Status, msg, e.Code)
	}
	return fmt.Sprintf("store: status %d: %s", e.Status, msg)
}

// Insert posts rec as a single JSON object.
func (r *REST) Insert(ctx context.Context, table string, rec *core.PartyRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	endpoint := r.baseURL + "/rest/v1/" + url.PathEscape(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", r.key)
	req.Header.Set("Authorization", "Bearer "+r.key)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, apiErr); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}

// Close is a no-op; the HTTP client has nothing to release.
func (r *REST) Close() error {
	return nil
}
