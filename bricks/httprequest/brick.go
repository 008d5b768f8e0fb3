// Package httprequest provides an effect brick that performs an HTTP call,
// typically against an integration's base URL, and exposes the response to
// subsequent steps.
package httprequest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{Client: &http.Client{Timeout: 30 * time.Second}})
}

// Brick performs a single HTTP request.
type Brick struct {
	// Client is the HTTP client requests go through. Tests inject their
	// own; the default carries a conservative timeout.
	Client *http.Client
}

func (b *Brick) ID() string { return "http-request" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"url": {"type": "string", "format": "uri"},
			"method": {"type": "string", "enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"]},
			"headers": {"type": "object", "additionalProperties": {"type": "string"}},
			"data": {}
		},
		"required": ["url"]
	}`
}

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	url, _ := args["url"].(string)
	method := http.MethodGet
	if m, ok := args["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}

	var body io.Reader
	contentType := ""
	switch data := args["data"].(type) {
	case nil:
	case string:
		body = strings.NewReader(data)
	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fault.Businessf("request data is not serializable: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fault.Businessf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if headers, ok := args["headers"].(map[string]any); ok {
		for name, value := range headers {
			if s, ok := value.(string); ok {
				req.Header.Set(name, s)
			}
		}
	}

	opts.Logger.Info("Making HTTP request.", "method", method, "url", url)
	resp, err := b.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fault.Cancelled(ctx.Err())
		}
		return nil, fault.Businessf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Businessf("failed to read response body: %w", err)
	}
	opts.Logger.Info("Received HTTP response.", "status", resp.Status)

	output := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(raw),
	}

	// A JSON response is additionally exposed parsed, which is what most
	// downstream variable references want.
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			output["json"] = parsed
		}
	}

	headers := make(map[string]any, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}
	output["headers"] = headers

	return output, nil
}
