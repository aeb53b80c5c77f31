package operations

import (
	"context"
	"time"
)

// Step is one unit of the report pipeline. Validate runs first and checks
// that earlier steps left what Execute needs in the OperationState.
type Step interface {
	ID() string
	Name() string
	Execute(ctx context.Context, state *OperationState) error
	Validate(state *OperationState) error
}

// StepStatus is where a step is in its lifecycle
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState records one step's outcome within a run. Steps run one at a
// time, so it is not safe for concurrent use.
type StepState struct {
	ID      string
	Name    string
	Status  StepStatus
	Started time.Time
	Ended   time.Time
	// Message explains a skip.
	Message string
	Error   error
	// Rows is the table size the step produced or consumed.
	Rows int
}

// NewStepState returns a pending step
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step active
func (s *StepState) Start() {
	s.Started = time.Now()
	s.Status = StepStatusActive
}

// Complete marks the step completed
func (s *StepState) Complete() {
	s.finish(StepStatusCompleted)
}

// Fail marks the step failed with err
func (s *StepState) Fail(err error) {
	s.finish(StepStatusFailed)
	s.Error = err
}

// Skip marks the step skipped, either by itself or after an earlier failure
func (s *StepState) Skip(reason string) {
	s.finish(StepStatusSkipped)
	s.Message = reason
}

func (s *StepState) finish(status StepStatus) {
	s.Ended = time.Now()
	s.Status = status
}

// SetRows records the step's row count
func (s *StepState) SetRows(rows int) {
	s.Rows = rows
}

// Snapshot returns the status and row count
func (s *StepState) Snapshot() (StepStatus, int) {
	return s.Status, s.Rows
}

// Duration is zero for a step that never started
func (s *StepState) Duration() time.Duration {
	switch {
	case s.Started.IsZero():
		return 0
	case s.Ended.IsZero():
		return time.Since(s.Started)
	}
	return s.Ended.Sub(s.Started)
}

// BaseStage carries a step's identity. Embedders get ID, Name and a Validate
// that accepts any state.
type BaseStage struct {
	id   string
	name string
}

func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

func (b *BaseStage) ID() string   { return b.id }
func (b *BaseStage) Name() string { return b.name }

func (b *BaseStage) Validate(*OperationState) error { return nil }
