// Package llm defines the single-prompt completion contract used by the AI client.
package llm

import (
	"context"
	"errors"
	"time"

	"job-selector/internal/shared/metrics"
	"job-selector/internal/shared/telemetry"
)

// Completer sends one prompt and returns the raw completion text.
// Implementations use deterministic sampling (temperature 0) where the model allows it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrEmptyCompletion is returned when the provider answers without content.
var ErrEmptyCompletion = errors.New("llm returned empty content")

type stepKey struct{}

// WithStep labels completions issued under ctx for logs.
func WithStep(ctx context.Context, step string) context.Context {
	return context.WithValue(ctx, stepKey{}, step)
}

// StepFromContext returns the step label set by WithStep.
func StepFromContext(ctx context.Context) string {
	step, _ := ctx.Value(stepKey{}).(string)
	return step
}

// Instrumented wraps a Completer with request metrics and structured logs.
type Instrumented struct {
	Next     Completer
	Provider string
	Model    string
}

// Complete forwards to Next, recording latency and failures.
func (i Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	metrics.IncLLMRequest()
	start := time.Now()
	out, err := i.Next.Complete(ctx, prompt)
	elapsed := time.Since(start)
	metrics.ObserveLLMDuration(elapsed)

	fields := map[string]any{
		"provider":    i.Provider,
		"model":       i.Model,
		"step":        StepFromContext(ctx),
		"duration_ms": elapsed.Milliseconds(),
		"prompt_len":  len(prompt),
	}
	if err != nil {
		metrics.IncLLMFailure()
		fields["error"] = err
		telemetry.Error("llm.complete_failed", fields)
		return "", err
	}
	fields["response_len"] = len(out)
	telemetry.Info("llm.complete", fields)
	return out, nil
}
