package wizard

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name    string
		current WizardStep
		action  Action
		next    WizardStep
		valid   bool
	}{
		{"connect next", StepConnect, ActionNext, StepSelectAsset, true},
		{"select next", StepSelectAsset, ActionNext, StepReviewCosts, true},
		{"review next", StepReviewCosts, ActionNext, StepExecute, true},
		{"execute next", StepExecute, ActionNext, StepExecute, false},
		{"complete next", StepComplete, ActionNext, StepComplete, false},
		{"connect back", StepConnect, ActionBack, StepConnect, false},
		{"review back", StepReviewCosts, ActionBack, StepSelectAsset, true},
		{"execute back", StepExecute, ActionBack, StepReviewCosts, true},
		{"complete back", StepComplete, ActionBack, StepComplete, false},
		{"execute finish", StepExecute, ActionFinish, StepComplete, true},
		{"review finish", StepReviewCosts, ActionFinish, StepReviewCosts, false},
		{"complete restart", StepComplete, ActionRestart, StepConnect, true},
		{"execute restart", StepExecute, ActionRestart, StepExecute, false},
		{"complete retry", StepComplete, ActionRetry, StepExecute, true},
		{"review retry", StepReviewCosts, ActionRetry, StepReviewCosts, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			next, err := transition(c.current, c.action)
			if c.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition)
			}

			require.Equal(t, c.next, next)
		})
	}

	require.Equal(t, "ReviewCosts", StepReviewCosts.String())
}
