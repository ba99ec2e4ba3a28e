package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pythia-cli/internal/model"
	"pythia-cli/internal/session"
)

// Client talks to the Pythia backend: event persistence, chart computation
// and the interpretation endpoint. Every call takes the session explicitly;
// callers obtain a fresh one per request (see session.Provider).
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// Interpretations take a while to generate; leave room before the
		// transport gives up.
		HTTP: &http.Client{Timeout: 3 * time.Minute},
	}
}

// StatusError is a non-2xx reply with the server-reported reason, when the
// body carried one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API error: %d", e.Code)
}

// ListEvents fetches the user's saved events. The result replaces any prior
// in-memory list wholesale.
func (c *Client) ListEvents(ctx context.Context, sess model.Session, userID string) ([]model.Event, error) {
	var events []model.Event
	if err := c.do(ctx, sess, http.MethodGet, "/events/"+userID, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent submits raw birth data to the chart-computation backend, which
// returns the created event with its computed chart attributes.
func (c *Client) CreateEvent(ctx context.Context, sess model.Session, fields model.ChartFields) (model.Event, error) {
	var ev model.Event
	if err := c.do(ctx, sess, http.MethodPost, "/natal-chart", withUserID(fields, sess.UserID), &ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// UpdateEvent recomputes and replaces an existing event's chart.
func (c *Client) UpdateEvent(ctx context.Context, sess model.Session, eventID int, fields model.ChartFields) (model.Event, error) {
	var ev model.Event
	if err := c.do(ctx, sess, http.MethodPut, "/astro-event/"+strconv.Itoa(eventID), withUserID(fields, sess.UserID), &ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// DeleteEvent removes a saved event. No body on success.
func (c *Client) DeleteEvent(ctx context.Context, sess model.Session, eventID int) error {
	return c.do(ctx, sess, http.MethodDelete, "/astro-event/"+strconv.Itoa(eventID), nil, nil)
}

// Ask submits a composed query and returns the interpretation prose.
func (c *Client) Ask(ctx context.Context, sess model.Session, req model.QueryRequest) (string, error) {
	var qr model.QueryResponse
	if err := c.do(ctx, sess, http.MethodPost, "/query", req, &qr); err != nil {
		return "", err
	}
	if strings.TrimSpace(qr.Response) == "" {
		return "", &StatusError{Code: http.StatusOK, Message: "The response from the service was empty or malformed."}
	}
	return qr.Response, nil
}

func withUserID(fields model.ChartFields, userID string) map[string]any {
	return map[string]any{
		"label":    fields.Label,
		"year":     fields.Year,
		"month":    fields.Month,
		"day":      fields.Day,
		"time":     fields.Time,
		"location": fields.Location,
		"userId":   userID,
	}
}

func (c *Client) do(ctx context.Context, sess model.Session, method, path string, in, out any) error {
	// Short-circuit before any network traffic when the token is missing.
	if sess.Token == "" {
		return session.ErrUnauthenticated
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return session.ErrUnauthenticated
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: serverMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// serverMessage pulls the {"error": "..."} field out of a failure body.
func serverMessage(raw []byte) string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Error
}
