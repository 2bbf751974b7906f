package wizard

import (
	"errors"
	"fmt"
)

type WizardStep int

const (
	StepConnect WizardStep = iota
	StepSelectAsset
	StepReviewCosts
	StepExecute
	StepComplete
)

func (s WizardStep) String() string {
	switch s {
	case StepConnect:
		return "Connect"
	case StepSelectAsset:
		return "SelectAsset"
	case StepReviewCosts:
		return "ReviewCosts"
	case StepExecute:
		return "Execute"
	case StepComplete:
		return "Complete"
	default:
		return fmt.Sprintf("WizardStep(%d)", int(s))
	}
}

type Action int

const (
	ActionNext Action = iota
	ActionBack
	ActionFinish
	ActionRestart
	ActionRetry
)

func (a Action) String() string {
	switch a {
	case ActionNext:
		return "next"
	case ActionBack:
		return "back"
	case ActionFinish:
		return "finish"
	case ActionRestart:
		return "restart"
	case ActionRetry:
		return "retry"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

var (
	ErrExecuting         = errors.New("bridge execution in progress")
	ErrInvalidTransition = errors.New("invalid wizard transition")
)

// transition is the wizard's state graph. Guards on wallet, asset, costs and
// allowance are checked by the Wizard before calling it.
func transition(current WizardStep, action Action) (WizardStep, error) {
	switch action {
	case ActionNext:
		switch current {
		case StepConnect, StepSelectAsset, StepReviewCosts:
			return current + 1, nil
		}
	case ActionBack:
		switch current {
		case StepSelectAsset, StepReviewCosts, StepExecute:
			return current - 1, nil
		}
	case ActionFinish:
		if current == StepExecute {
			return StepComplete, nil
		}
	case ActionRestart:
		if current == StepComplete {
			return StepConnect, nil
		}
	case ActionRetry:
		if current == StepComplete {
			return StepExecute, nil
		}
	}

	return current, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, current)
}
