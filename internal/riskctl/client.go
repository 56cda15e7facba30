package riskctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/internal/domain/types"
)

// ErrServer is returned for non-2xx answers.
var ErrServer = errors.New("server error")

// Client talks to a running climarisk server.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type submitRequest struct {
	RequestID    string              `json:"request_id,omitempty"`
	Company      string              `json:"company"`
	Profile      string              `json:"profile,omitempty"`
	Items        []model.ScoredItem  `json:"items"`
	Observations []model.Observation `json:"observations,omitempty"`
	Metrics      []string            `json:"metrics,omitempty"`
}

// Submit posts in as an assessment.
func (c *Client) Submit(ctx context.Context, in Input) (types.Submission, error) {
	body := submitRequest{
		RequestID:    in.RequestID,
		Company:      in.Company,
		Profile:      in.Profile,
		Items:        in.Items,
		Observations: in.Observations,
		Metrics:      in.Metrics,
	}
	var sub types.Submission
	if _, err := c.do(ctx, http.MethodPost, "/v1/assessments", body, &sub); err != nil {
		return types.Submission{}, err
	}
	return sub, nil
}

// Assessment fetches the state of an assessment.
func (c *Client) Assessment(ctx context.Context, id string) (types.AssessmentState, error) {
	var st types.AssessmentState
	if _, err := c.do(ctx, http.MethodGet, "/v1/assessments/"+id, nil, &st); err != nil {
		return types.AssessmentState{}, err
	}
	return st, nil
}

// Wait polls until the assessment is no longer pending or ctx ends.
func (c *Client) Wait(ctx context.Context, id string, interval time.Duration) (types.AssessmentState, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := c.Assessment(ctx, id)
		if err != nil {
			return types.AssessmentState{}, err
		}
		if st.Status != types.StatusPending {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) == nil && e.Code != "" {
			return resp.StatusCode, fmt.Errorf("%w: %d %s: %s", ErrServer, resp.StatusCode, e.Code, e.Message)
		}
		return resp.StatusCode, fmt.Errorf("%w: %d", ErrServer, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
