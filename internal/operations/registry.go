package operations

import (
	"fmt"
)

// Registry holds the pipeline's steps in the order they run
type Registry struct {
	steps []Step
	index map[string]int
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends step. IDs must be non-empty and unique.
func (r *Registry) Register(step Step) error {
	switch {
	case step == nil:
		return fmt.Errorf("cannot register a nil step")
	case step.ID() == "":
		return fmt.Errorf("step %q has an empty ID", step.Name())
	}
	if _, dup := r.index[step.ID()]; dup {
		return fmt.Errorf("step %s is already registered", step.ID())
	}

	r.index[step.ID()] = len(r.steps)
	r.steps = append(r.steps, step)
	return nil
}

// Get returns the step registered under id
func (r *Registry) Get(id string) (Step, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("step %s is not registered", id)
	}
	return r.steps[i], nil
}

// List returns the steps in run order
func (r *Registry) List() []Step {
	return append([]Step(nil), r.steps...)
}

// ListIDs returns the step IDs in run order
func (r *Registry) ListIDs() []string {
	ids := make([]string, len(r.steps))
	for i, step := range r.steps {
		ids[i] = step.ID()
	}
	return ids
}

func (r *Registry) Count() int {
	return len(r.steps)
}
