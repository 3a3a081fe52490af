// Package rest persists routines and profiles through a PostgREST-compatible
// table API, authenticated with the datastore's public key.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"routinetracker/internal/model"
	"routinetracker/internal/repository"
)

const (
	routinesTable = "routines"
	profilesTable = "user_profiles"
)

// Client talks to <baseURL>/rest/v1/<table>.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the two datastore credentials.
func NewClient(baseURL, key string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("datastore url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid datastore url: %w", err)
	}
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("datastore key is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, key: key, httpClient: httpClient, logger: logger}, nil
}

type routineRow struct {
	ID            string       `json:"id"`
	Content       string       `json:"content"`
	IsCompleted   bool         `json:"is_completed"`
	Category      string       `json:"category"`
	DayOfWeek     model.DaySet `json:"day_of_week"`
	CompletedDays model.DaySet `json:"completed_days"`
	CreatedAt     *time.Time   `json:"created_at,omitempty"`
}

func toRow(r model.Routine) routineRow {
	row := routineRow{
		ID:            r.ID,
		Content:       r.Content,
		IsCompleted:   r.Completed,
		Category:      string(r.Category),
		DayOfWeek:     r.Days,
		CompletedDays: r.CompletedDays,
	}
	if !r.CreatedAt.IsZero() {
		t := r.CreatedAt.UTC()
		row.CreatedAt = &t
	}
	return row
}

func (row routineRow) toModel() model.Routine {
	r := model.Routine{
		ID:            row.ID,
		Content:       row.Content,
		Category:      model.Category(row.Category),
		Completed:     row.IsCompleted,
		Days:          row.DayOfWeek,
		CompletedDays: row.CompletedDays,
	}
	if row.CreatedAt != nil {
		r.CreatedAt = row.CreatedAt.UTC()
	}
	return r
}

func (c *Client) Insert(ctx context.Context, r model.Routine) error {
	return c.do(ctx, http.MethodPost, routinesTable, nil, toRow(r), "return=minimal", nil)
}

func (c *Client) Update(ctx context.Context, r model.Routine) error {
	row := toRow(r)
	row.CreatedAt = nil

	var updated []routineRow
	q := url.Values{"id": {"eq." + r.ID}}
	if err := c.do(ctx, http.MethodPatch, routinesTable, q, row, "return=representation", &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return fmt.Errorf("routine %s: %w", r.ID, repository.ErrRowNotFound)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	q := url.Values{"id": {"eq." + id}}
	return c.do(ctx, http.MethodDelete, routinesTable, q, nil, "return=minimal", nil)
}

// ListAll returns every routine, oldest first.
func (c *Client) ListAll(ctx context.Context) ([]model.Routine, error) {
	q := url.Values{
		"select": {"*"},
		"order":  {"created_at.asc,id.asc"},
	}
	var rows []routineRow
	if err := c.do(ctx, http.MethodGet, routinesTable, q, nil, "", &rows); err != nil {
		return nil, err
	}
	routines := make([]model.Routine, 0, len(rows))
	for _, row := range rows {
		routines = append(routines, row.toModel())
	}
	return routines, nil
}

type profileRow struct {
	ID           string `json:"id"`
	CurrentTheme string `json:"current_theme"`
}

func (c *Client) GetTheme(ctx context.Context, profileID string) (model.Theme, bool, error) {
	q := url.Values{
		"select": {"id,current_theme"},
		"id":     {"eq." + profileID},
		"limit":  {"1"},
	}
	var rows []profileRow
	if err := c.do(ctx, http.MethodGet, profilesTable, q, nil, "", &rows); err != nil {
		return "", false, err
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return model.Theme(rows[0].CurrentTheme), true, nil
}

// SetTheme upserts the profile row.
func (c *Client) SetTheme(ctx context.Context, profileID string, theme model.Theme) error {
	q := url.Values{"on_conflict": {"id"}}
	body := profileRow{ID: profileID, CurrentTheme: string(theme)}
	return c.do(ctx, http.MethodPost, profilesTable, q, body, "resolution=merge-duplicates,return=minimal", nil)
}

// Ping reads one routine id to check connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{"select": {"id"}, "limit": {"1"}}
	var rows []json.RawMessage
	return c.do(ctx, http.MethodGet, routinesTable, q, nil, "", &rows)
}

// StatusError is a non-2xx datastore response.
type StatusError struct {
	Method string
	Table  string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("datastore %s %s: status %d: %s", e.Method, e.Table, e.Status, e.Body)
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string, out any) error {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", table, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Datastore request failed",
			zap.String("method", method),
			zap.String("table", table),
			zap.Error(err),
		)
		return fmt.Errorf("datastore %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		statusErr := &StatusError{Method: method, Table: table, Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		c.logger.Error("Datastore returned error status",
			zap.String("method", method),
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
		)
		return statusErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", table, err)
	}
	return nil
}
