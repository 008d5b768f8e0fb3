// Package socketio provides an effect brick that emits a socket.io event
// and optionally waits for a reply event. It connects per invocation; a
// pipeline step is too short-lived to justify a managed connection pool.
package socketio

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/modkit/brickflow/internal/fault"
	"github.com/modkit/brickflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{})
}

// Brick emits one socket.io event.
type Brick struct{}

func (b *Brick) ID() string { return "socketio-emit" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"url": {"type": "string", "format": "uri"},
			"namespace": {"type": "string"},
			"emit_event": {"type": "string"},
			"on_event": {"type": "string"},
			"data": {},
			"timeout": {"type": "string"},
			"insecure_skip_verify": {"type": "boolean"}
		},
		"required": ["url", "emit_event"]
	}`
}

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	rawURL, _ := args["url"].(string)
	emitEvent, _ := args["emit_event"].(string)
	onEvent, _ := args["on_event"].(string)
	namespace, _ := args["namespace"].(string)

	timeout := 15 * time.Second
	if raw, ok := args["timeout"].(string); ok && raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fault.Businessf("invalid timeout %q: %w", raw, err)
		}
		timeout = parsed
	}

	client, err := b.connect(ctx, rawURL, namespace, args["insecure_skip_verify"] == true, timeout, opts)
	if err != nil {
		return nil, err
	}
	defer client.Disconnect()

	logger := opts.Logger.With("sid", client.Id())
	logger.Info("Emitting socket.io event.", "event", emitEvent)

	if onEvent == "" {
		// Fire-and-forget.
		client.Emit(emitEvent, args["data"])
		return map[string]any{"sid": string(client.Id())}, nil
	}

	reply := make(chan any, 1)
	client.Once(types.EventName(onEvent), func(data ...any) {
		logger.Debug("Reply event received.", "event", onEvent)
		if len(data) > 0 {
			reply <- data[0]
		} else {
			reply <- nil
		}
	})

	client.Emit(emitEvent, args["data"])

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case response := <-reply:
		return map[string]any{
			"sid":      string(client.Id()),
			"response": response,
		}, nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return nil, fault.Cancelled(ctx.Err())
		}
		return nil, fault.Businessf("timed out after %s waiting for %q", timeout, onEvent)
	}
}

// connect dials the socket.io endpoint and waits for the session to come up.
func (b *Brick) connect(ctx context.Context, rawURL, namespace string, insecure bool, timeout time.Duration, opts *registry.BrickOptions) (*socket.Socket, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fault.Businessf("invalid socket.io url: %w", err)
	}

	sopts := socket.DefaultOptions()
	sopts.SetPath(parsed.Path)
	sopts.SetTransports(types.NewSet(transports.WebSocket))
	if insecure {
		opts.Logger.Warn("Skipping TLS certificate verification.")
		sopts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	manager := socket.NewManager(baseURL, sopts)
	client := manager.Socket(namespace, sopts)

	connected := make(chan error, 1)
	client.Once(types.EventName("connect"), func(...any) {
		connected <- nil
	})
	client.Once(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				connected <- e
				return
			}
		}
		connected <- fmt.Errorf("connect_error")
	})

	client.Connect()

	select {
	case err := <-connected:
		if err != nil {
			client.Disconnect()
			return nil, fault.Businessf("socket.io connection failed: %w", err)
		}
		return client, nil
	case <-ctx.Done():
		client.Disconnect()
		return nil, fault.Cancelled(ctx.Err())
	case <-time.After(timeout):
		client.Disconnect()
		return nil, fault.Businessf("timed out after %s waiting for socket.io connection", timeout)
	}
}
