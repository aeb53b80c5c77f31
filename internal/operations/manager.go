package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spicongress/internal/infrastructure"
)

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a manager over registry. A nil registry starts empty;
// a nil logger uses the global logger.
func NewManager(registry *Registry, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Manager{
		registry: registry,
		tracer:   tracer,
		logger:   infrastructure.WithComponent(logger, "operations"),
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step in order. The first failure skips the
// remaining steps and is returned with the step attached.
func (m *Manager) Execute(ctx context.Context, operationID string) (*OperationState, error) {
	if operationID == "" {
		operationID = infrastructure.GenerateTraceID()
	}

	state := NewOperationState(operationID)
	steps := m.registry.List()
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, operationID)
	defer span.End()

	m.logOperationStart(ctx, operationID, len(steps))
	state.Start()

	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(span, state.Duration(), state.Status)
	if err != nil {
		m.logOperationError(ctx, operationID, err)
		return state, err
	}
	m.logOperationComplete(ctx, operationID, state.Duration(), string(state.Status))
	return state, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.DebugContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs a single Step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewInvalidStateError(step.ID(), "step state not found")
	}

	ctx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	if err := step.Validate(state); err != nil {
		wrapped := WrapError(err, step.ID(), "step validation failed")
		stepState.Fail(wrapped)
		m.tracer.RecordStageError(ctx, step.ID(), wrapped)
		m.tracer.RecordStageCompletion(ctx, span, step.ID(), 0, StepStatusFailed, 0)
		m.logStageError(ctx, state.ID, step.ID(), wrapped)
		return wrapped
	}

	m.logStageStart(ctx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(start)

	if err != nil {
		wrapped := WrapError(err, step.ID(), "step execution failed")
		stepState.Fail(wrapped)
		m.tracer.RecordStageError(ctx, step.ID(), wrapped)
		m.tracer.RecordStageCompletion(ctx, span, step.ID(), duration, StepStatusFailed, 0)
		m.logStageError(ctx, state.ID, step.ID(), wrapped)
		return wrapped
	}

	// A step may mark itself skipped when it has nothing to do
	status, rows := stepState.Snapshot()
	if status == StepStatusActive {
		stepState.Complete()
		status = StepStatusCompleted
	}
	m.tracer.RecordStageCompletion(ctx, span, step.ID(), duration, status, rows)
	m.logStageComplete(ctx, state.ID, step.ID(), duration, status, rows)
	return nil
}

// skipRemaining marks steps that will not run as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil {
			s.Skip(reason)
		}
	}
}
