package progress

import (
	"fmt"
	"sync"
)

type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusLoading   StepStatus = "loading"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

func (s StepStatus) IsTerminal() bool {
	return s == StepStatusCompleted || s == StepStatusSkipped || s == StepStatusFailed
}

type Stage string

const (
	StageSource      Stage = "source"
	StageDestination Stage = "destination"
)

type BridgeStep struct {
	ID          string
	Title       string
	Description string
	Stage       Stage
	Status      StepStatus
	TxHash      string
	Error       string
}

type StepDefinition struct {
	ID          string
	Title       string
	Description string
	Stage       Stage
}

type Listener func(steps []BridgeStep)

// Tracker holds the ordered steps of one execution attempt.
type Tracker struct {
	lock      sync.Mutex
	steps     []BridgeStep
	index     map[string]int
	listeners []Listener
}

func NewTracker(definitions ...StepDefinition) *Tracker {
	t := &Tracker{
		steps: make([]BridgeStep, len(definitions)),
		index: make(map[string]int, len(definitions)),
	}

	for i, def := range definitions {
		t.steps[i] = BridgeStep{
			ID:          def.ID,
			Title:       def.Title,
			Description: def.Description,
			Stage:       def.Stage,
			Status:      StepStatusPending,
		}
		t.index[def.ID] = i
	}

	return t
}

func (t *Tracker) OnUpdate(listener Listener) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.listeners = append(t.listeners, listener)
}

func (t *Tracker) Start(id string) error {
	return t.Update(id, StepStatusLoading, "", nil)
}

func (t *Tracker) Complete(id string, txHash string) error {
	return t.Update(id, StepStatusCompleted, txHash, nil)
}

func (t *Tracker) Skip(id string) error {
	return t.Update(id, StepStatusSkipped, "", nil)
}

func (t *Tracker) Fail(id string, err error) error {
	return t.Update(id, StepStatusFailed, "", err)
}

// Describe changes the informational description of a running step.
func (t *Tracker) Describe(id string, description string) error {
	t.lock.Lock()

	i, exists := t.index[id]
	if !exists {
		t.lock.Unlock()

		return fmt.Errorf("unknown step: %s", id)
	}

	t.steps[i].Description = description
	snapshot := t.snapshot()
	listeners := t.listeners

	t.lock.Unlock()

	notify(listeners, snapshot)

	return nil
}

func (t *Tracker) Update(id string, status StepStatus, txHash string, stepErr error) error {
	t.lock.Lock()

	i, exists := t.index[id]
	if !exists {
		t.lock.Unlock()

		return fmt.Errorf("unknown step: %s", id)
	}

	step := &t.steps[i]

	if err := IsTransitionPossible(step.Status, status); err != nil {
		t.lock.Unlock()

		return fmt.Errorf("step %s: %w", id, err)
	}

	step.Status = status
	if txHash != "" {
		step.TxHash = txHash
	}

	if stepErr != nil {
		step.Error = stepErr.Error()
	}

	snapshot := t.snapshot()
	listeners := t.listeners

	t.lock.Unlock()

	notify(listeners, snapshot)

	return nil
}

// Retry moves a failed step back to pending so it can be attempted again.
// Statuses of all other steps are kept.
func (t *Tracker) Retry(id string) error {
	t.lock.Lock()

	i, exists := t.index[id]
	if !exists {
		t.lock.Unlock()

		return fmt.Errorf("unknown step: %s", id)
	}

	if t.steps[i].Status != StepStatusFailed {
		t.lock.Unlock()

		return fmt.Errorf("step %s is %s, only failed steps can be retried", id, t.steps[i].Status)
	}

	t.steps[i].Status = StepStatusPending
	t.steps[i].Error = ""
	snapshot := t.snapshot()
	listeners := t.listeners

	t.lock.Unlock()

	notify(listeners, snapshot)

	return nil
}

func (t *Tracker) Step(id string) (BridgeStep, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	i, exists := t.index[id]
	if !exists {
		return BridgeStep{}, false
	}

	return t.steps[i], true
}

// FirstFailed returns the id of the first failed step.
func (t *Tracker) FirstFailed() (string, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, s := range t.steps {
		if s.Status == StepStatusFailed {
			return s.ID, true
		}
	}

	return "", false
}

func (t *Tracker) Snapshot() []BridgeStep {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.snapshot()
}

func (t *Tracker) snapshot() []BridgeStep {
	result := make([]BridgeStep, len(t.steps))
	copy(result, t.steps)

	return result
}

func notify(listeners []Listener, snapshot []BridgeStep) {
	for _, l := range listeners {
		l(snapshot)
	}
}

func IsTransitionPossible(current, next StepStatus) error {
	isValidTransition := false

	switch current {
	case StepStatusPending:
		isValidTransition = next == StepStatusLoading || next == StepStatusSkipped || next == StepStatusFailed
	case StepStatusLoading:
		isValidTransition = next == StepStatusCompleted || next == StepStatusFailed || next == StepStatusSkipped
	case StepStatusCompleted, StepStatusSkipped, StepStatusFailed:
		isValidTransition = false
	}

	if !isValidTransition {
		return fmt.Errorf("invalid transition %s -> %s", current, next)
	}

	return nil
}
