package operations

import (
	"time"

	"spicongress/internal/cache"
	"spicongress/internal/dataprocessing"
	"spicongress/internal/report"
)

// OperationStatus is the overall status of a run
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// OperationState is one pipeline run: per-step outcomes plus the values
// steps hand to each other through Context.
type OperationState struct {
	ID      string
	Status  OperationStatus
	Started time.Time
	Ended   time.Time
	Error   error

	Steps   map[string]*StepState
	order   []string
	Context map[string]interface{}
}

// NewOperationState returns a pending run
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:      id,
		Status:  OperationStatusPending,
		Started: time.Now(),
		Steps:   make(map[string]*StepState),
		Context: make(map[string]interface{}),
	}
}

func (p *OperationState) Start() {
	p.Status = OperationStatusRunning
	p.Started = time.Now()
}

func (p *OperationState) Complete() {
	p.finish(OperationStatusCompleted, nil)
}

func (p *OperationState) Fail(err error) {
	p.finish(OperationStatusFailed, err)
}

// Cancel records a run stopped by its context
func (p *OperationState) Cancel(err error) {
	p.finish(OperationStatusCancelled, err)
}

func (p *OperationState) finish(status OperationStatus, err error) {
	p.Ended = time.Now()
	p.Status = status
	p.Error = err
}

// GetStage returns the step's state, or nil for an unknown step
func (p *OperationState) GetStage(stepID string) *StepState {
	return p.Steps[stepID]
}

// SetStage stores a step's state, remembering first-seen order
func (p *OperationState) SetStage(stepID string, state *StepState) {
	if _, seen := p.Steps[stepID]; !seen {
		p.order = append(p.order, stepID)
	}
	p.Steps[stepID] = state
}

// StageOrder returns step IDs in the order they were added
func (p *OperationState) StageOrder() []string {
	return append([]string(nil), p.order...)
}

func (p *OperationState) SetContext(key string, value interface{}) {
	p.Context[key] = value
}

// JoinedTable returns the table left by the joined_table step
func (p *OperationState) JoinedTable() (*dataprocessing.Table, bool) {
	table, ok := p.Context[ContextKeyJoinedTable].(*dataprocessing.Table)
	return table, ok && table != nil
}

// CacheOutcome reports whether the joined table came from the cache
func (p *OperationState) CacheOutcome() (cache.Outcome, bool) {
	outcome, ok := p.Context[ContextKeyCacheOutcome].(cache.Outcome)
	return outcome, ok
}

// Report returns the report step's charts and fit
func (p *OperationState) Report() (*report.Result, bool) {
	result, ok := p.Context[ContextKeyReport].(*report.Result)
	return result, ok && result != nil
}

// Duration is measured to now while the run is in progress
func (p *OperationState) Duration() time.Duration {
	if p.Ended.IsZero() {
		return time.Since(p.Started)
	}
	return p.Ended.Sub(p.Started)
}

// HasFailures reports whether any step failed
func (p *OperationState) HasFailures() bool {
	for _, step := range p.Steps {
		if step.Status == StepStatusFailed {
			return true
		}
	}
	return false
}
