package hass

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

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 5 * time.Second
	bodySnippetLen = 200
)

// OutcomeKind classifies one hub call.
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeRejected  OutcomeKind = "rejected"
	OutcomeTransport OutcomeKind = "transport_error"
)

// Outcome is the classified result of one hub call.
type Outcome struct {
	Kind       OutcomeKind   `json:"kind"`
	StatusCode int           `json:"status_code,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Duration   time.Duration `json:"duration"`
}

func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Err returns a *ServiceError for failed outcomes and nil on success.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return &ServiceError{Kind: o.Kind, StatusCode: o.StatusCode, Detail: o.Detail}
}

// ClientConfig binds a Client to one hub.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client performs one-shot service calls against the hub REST API.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:   cfg.Token,
		timeout: timeout,
		http:    hc,
	}
}

// URL returns the absolute endpoint for a call.
func (c *Client) URL(call ServiceCall) string {
	return c.baseURL + call.Path()
}

// Call posts the payload to /api/services/<domain>/<service>.
// Hub rejections and transport failures come back as a failed Outcome;
// the error return is reserved for failures to build the request at all.
func (c *Client) Call(ctx context.Context, call ServiceCall) (Outcome, error) {
	body, err := json.Marshal(call.Payload)
	if err != nil {
		return Outcome{}, fmt.Errorf("hass: encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.URL(call)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("hass: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	zerolog.Ctx(ctx).Debug().Str("url", url).RawJSON("payload", body).Msg("hub call")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Outcome{
			Kind:     OutcomeTransport,
			Detail:   transportDetail(err),
			Duration: time.Since(start),
		}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, bodySnippetLen*4))
		return Outcome{
			Kind:       OutcomeRejected,
			StatusCode: resp.StatusCode,
			Detail:     fmt.Sprintf("hub service error %d: %s", resp.StatusCode, truncate(string(snippet), bodySnippetLen)),
			Duration:   time.Since(start),
		}, nil
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	return Outcome{
		Kind:       OutcomeSuccess,
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
	}, nil
}

func transportDetail(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("timeout: %v", err)
	}
	return err.Error()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
