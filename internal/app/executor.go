package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

// A staged write turns an uploaded document into a change to the collection:
//
//	check -> parse -> normalize -> commit
//
// Only commit touches the store, so a document rejected by any earlier step
// leaves the collection as it was. A failure is wrapped in an ExecutionError
// naming the step; it still unwraps to the domain error underneath.

// ExecutionStep names a step of a staged write.
type ExecutionStep string

const (
	StepCheck     ExecutionStep = "check"
	StepParse     ExecutionStep = "parse"
	StepNormalize ExecutionStep = "normalize"
	StepCommit    ExecutionStep = "commit"
)

// ExecutionError wraps errors with the step where they occurred.
type ExecutionError struct {
	Step  ExecutionStep
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// StagedWrite is a document-to-collection change. Nil steps are skipped,
// except Parse.
type StagedWrite[T any] struct {
	// Name identifies the write in logs.
	Name string

	// Check inspects the raw document, such as against a schema.
	Check func(ctx context.Context, doc []byte) error

	// Parse decodes the document.
	Parse func(ctx context.Context, doc []byte) (T, error)

	// Normalize validates and canonicalizes the decoded value.
	Normalize func(ctx context.Context, parsed T) (T, error)

	// Commit applies the normalized value.
	Commit func(ctx context.Context, normalized T) error
}

// Run executes the steps in order, stopping at the first failure.
func (w StagedWrite[T]) Run(ctx context.Context, logger *slog.Logger, doc []byte) (T, error) {
	var value T

	if l, ok := logging.FromContextOK(ctx); ok {
		logger = l
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("operation", w.Name))
	start := time.Now()

	steps := []struct {
		name ExecutionStep
		run  func() error
	}{
		{StepCheck, func() error {
			if w.Check == nil {
				return nil
			}

			return w.Check(ctx, doc)
		}},
		{StepParse, func() (err error) {
			value, err = w.Parse(ctx, doc)
			return err
		}},
		{StepNormalize, func() (err error) {
			if w.Normalize == nil {
				return nil
			}

			value, err = w.Normalize(ctx, value)

			return err
		}},
		{StepCommit, func() error {
			if w.Commit == nil {
				return nil
			}

			return w.Commit(ctx, value)
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			logger.WarnContext(ctx, "staged write rejected",
				slog.String("step", string(step.name)),
				slog.Any("error", err),
			)

			var zero T

			return zero, &ExecutionError{Step: step.name, Cause: err}
		}

		logger.Log(ctx, logging.LevelTrace, "step done", slog.String("step", string(step.name)))
	}

	logger.InfoContext(ctx, "staged write committed", slog.Duration("duration", time.Since(start)))

	return value, nil
}

// GetExecutionStep extracts the failing step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
