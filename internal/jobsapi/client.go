// Package jobsapi is an HTTP client for the job tracker API. It
// implements board.JobsClient so a board can run against a remote server.
package jobsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/justsurfingit/Agentic-Job-Tracker/internal/board"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/dtos"
	"github.com/justsurfingit/Agentic-Job-Tracker/internal/models"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("jobs api: %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("jobs api: %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ board.JobsClient = (*Client)(nil)

func (c *Client) ListJobs(ctx context.Context) ([]board.RawRecord, error) {
	var jobs []dtos.JobApplication
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	out := make([]board.RawRecord, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, board.RawRecord{
			ID:            j.ID,
			PositionTitle: j.PositionTitle,
			Company:       j.Company,
			Location:      j.Location,
			JobPostingURL: j.JobPostingURL,
			Notes:         j.Notes,
			Status:        string(j.ApplicationStatus),
			CreatedAt:     j.CreatedAt,
		})
	}
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	body := dtos.StatusUpdateRequest{Status: string(status)}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/jobs/%d/status", id), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr)
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
