// Package upstream adapts validated screenshot requests to the external
// rendering service. The renderer is an opaque HTTP collaborator; this
// package only translates parameters out and status codes back.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/simonw/screenshot-worker/internal/config"
	"github.com/simonw/screenshot-worker/internal/shot"
)

// Result is a successful render: raw artifact bytes plus content type.
type Result struct {
	Data        []byte
	ContentType string
}

// StatusError is a non-2xx upstream response, surfaced unmodified so the
// caller can log it. It is never sent back to the requester.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Renderer produces a screenshot for a validated descriptor.
type Renderer interface {
	Render(ctx context.Context, d *shot.Descriptor) (*Result, error)
}

// Client calls a browserless-style rendering API over HTTP.
type Client struct {
	endpoint          string
	token             string
	navigationTimeout time.Duration
	httpClient        *http.Client
}

func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		endpoint:          cfg.Endpoint,
		token:             cfg.Token,
		navigationTimeout: cfg.NavigationTimeout,
		httpClient: &http.Client{
			// Navigation timeout plus headroom for transfer of the
			// rendered image.
			Timeout: cfg.NavigationTimeout + 15*time.Second,
		},
	}
}

type viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type gotoOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int64  `json:"timeout"`
}

type tag struct {
	Content string `json:"content"`
}

type renderRequest struct {
	URL          string      `json:"url"`
	Viewport     viewport    `json:"viewport"`
	FullPage     bool        `json:"fullPage"`
	GotoOptions  gotoOptions `json:"gotoOptions"`
	AddScriptTag []tag       `json:"addScriptTag,omitempty"`
	AddStyleTag  []tag       `json:"addStyleTag,omitempty"`
}

// Render requests a screenshot from the upstream service. The viewport
// height for full-page captures uses the default height; the fullPage
// flag tells the renderer to extend the capture past it.
func (c *Client) Render(ctx context.Context, d *shot.Descriptor) (*Result, error) {
	payload := renderRequest{
		URL: d.TargetURL,
		Viewport: viewport{
			Width:  d.WidthPixels(),
			Height: d.HeightPixels(),
		},
		FullPage: d.FullPage(),
		GotoOptions: gotoOptions{
			WaitUntil: "networkidle0",
			Timeout:   c.navigationTimeout.Milliseconds(),
		},
	}
	if d.JS != "" {
		payload.AddScriptTag = []tag{{Content: d.JS}}
	}
	if d.CSS != "" {
		payload.AddStyleTag = []tag{{Content: d.CSS}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/screenshot", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	return &Result{Data: data, ContentType: contentType}, nil
}

var _ Renderer = (*Client)(nil)
