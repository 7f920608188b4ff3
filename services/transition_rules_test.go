package services

import (
	"testing"

	"agro-app/models"

	"github.com/stretchr/testify/assert"
)

func TestTransitionTableClosure(t *testing.T) {
	// Every source and target in the table must be a known state.
	for from, targets := range validTransitions {
		assert.True(t, from.Valid(), "unknown source state %s", from)
		for _, to := range targets {
			assert.True(t, to.Valid(), "unknown target state %s from %s", to, from)
			assert.NotEqual(t, from, to, "self-transition listed for %s", from)
		}
	}

	// Every known state must have an entry, even if empty.
	for _, state := range models.AllLifecycleStates {
		_, ok := validTransitions[state]
		assert.True(t, ok, "state %s missing from the transition table", state)
	}
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.LifecycleState
		to      models.LifecycleState
		allowed bool
	}{
		{"available to sown", models.StateAvailable, models.StateSown, true},
		{"available to prepared", models.StateAvailable, models.StatePrepared, true},
		{"available to harvested skips the cycle", models.StateAvailable, models.StateHarvested, false},
		{"sown to growing", models.StateSown, models.StateGrowing, true},
		{"sown to flowering skips growth", models.StateSown, models.StateFlowering, false},
		{"any cultivation stage to diseased", models.StateFruiting, models.StateDiseased, true},
		{"diseased recovery to growing", models.StateDiseased, models.StateGrowing, true},
		{"abandoned back to preparation", models.StateAbandoned, models.StateInPreparation, true},
		{"abandoned directly to sown", models.StateAbandoned, models.StateSown, false},
		{"unknown source", models.LifecycleState("BOGUS"), models.StateSown, false},
		{"unknown target", models.StateAvailable, models.LifecycleState("BOGUS"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, IsValidTransition(tc.from, tc.to))
		})
	}
}

func TestValidTargetsReturnsCopy(t *testing.T) {
	targets := ValidTargets(models.StateAvailable)
	assert.NotEmpty(t, targets)

	targets[0] = models.StateAbandoned
	assert.NotContains(t, ValidTargets(models.StateAvailable), models.StateAbandoned)
}

func TestNoTerminalStates(t *testing.T) {
	// Every state must offer a way out; abandonment is recoverable.
	for _, state := range models.AllLifecycleStates {
		assert.False(t, IsTerminalState(state), "state %s has no exit", state)
	}
}

func TestTransitionErrorMessageListsTargets(t *testing.T) {
	msg := TransitionErrorMessage(models.StateAvailable, models.StateHarvested)
	assert.Contains(t, msg, models.StateAvailable.Description())
	assert.Contains(t, msg, models.StateHarvested.Description())
	for _, target := range ValidTargets(models.StateAvailable) {
		assert.Contains(t, msg, target.Description())
	}
}
