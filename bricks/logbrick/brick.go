// Package logbrick provides a brick that writes a structured log line
// through the run's logger.
package logbrick

import (
	"context"
	"log/slog"
	"strings"

	"github.com/modkit/brickflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the brick with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&Brick{})
}

// Brick logs a message at the requested level. It always returns nil so
// it can be dropped into a pipeline without disturbing the output carry.
type Brick struct{}

func (b *Brick) ID() string { return "log" }

func (b *Brick) InputSchema() string {
	return `{
		"type": "object",
		"properties": {
			"message": {"type": "string"},
			"level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
			"data": {}
		},
		"required": ["message"]
	}`
}

func (b *Brick) Run(ctx context.Context, args map[string]any, opts *registry.BrickOptions) (any, error) {
	message, _ := args["message"].(string)

	level := slog.LevelInfo
	if raw, ok := args["level"].(string); ok {
		switch strings.ToLower(raw) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	attrs := []any{}
	if data, ok := args["data"]; ok && data != nil {
		attrs = append(attrs, "data", data)
	}
	opts.Logger.Log(ctx, level, message, attrs...)

	return nil, nil
}
