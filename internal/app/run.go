package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/executor"
	"github.com/modkit/brickflow/internal/fault"
)

// Run executes the loaded mod's pipeline and writes the result to the
// application's output writer as JSON.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	input := map[string]any{}
	if appConfig.InputJSON != "" {
		if err := json.Unmarshal([]byte(appConfig.InputJSON), &input); err != nil {
			return fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	serviceContext := map[string]any{}
	for _, integration := range a.mod.Integrations {
		serviceContext[integration.OutputKey] = integration.Config
	}

	runID := uuid.New()
	interp := executor.New(a.registry, a.recorder)

	a.logger.Info("🚀 Starting pipeline run...", "mod", a.mod.ID, "runId", runID)
	result, err := interp.Run(ctx, a.mod.Pipeline, executor.InitialValues{
		Input:          input,
		OptionsArgs:    a.mod.OptionDefaults,
		ServiceContext: serviceContext,
	}, executor.Options{
		Logger:      a.logger,
		RunID:       &runID,
		ComponentID: a.mod.ID,
		Headless:    appConfig.Headless,
		LogValues:   appConfig.LogValues,
		Version:     a.mod.APIVersion.Options(),
	})
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}
	a.logger.Info("🏁 Pipeline run finished.", "traceRecords", len(a.recorder.Snapshot(runID)))

	// A headless run resolves to the renderer payload rather than plain
	// step output.
	if signal, ok := result.(*fault.HeadlessSignal); ok {
		result = signal.Payload
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(a.outW, string(encoded))

	a.logger.Debug("App.Run method finished.")
	return nil
}
