package services

import (
	"fmt"
	"strings"

	"agro-app/models"

	"golang.org/x/exp/slices"
)

// validTransitions is the single source of truth for which lifecycle moves
// are structurally possible. Both the propose/confirm flow and the automatic
// evaluator go through it; any move not listed here is rejected.
var validTransitions = map[models.LifecycleState][]models.LifecycleState{
	models.StateAvailable: {
		models.StatePrepared,
		models.StateSown,
		models.StateInPreparation,
	},
	models.StatePrepared: {
		models.StateSown,
		models.StateAvailable,
	},
	models.StateSown: {
		models.StateGrowing,
		models.StateDiseased,
	},
	models.StateGrowing: {
		models.StateFlowering,
		models.StateDiseased,
	},
	models.StateFlowering: {
		models.StateFruiting,
		models.StateDiseased,
	},
	models.StateFruiting: {
		models.StateReadyForHarvest,
		models.StateDiseased,
	},
	models.StateReadyForHarvest: {
		models.StateHarvesting,
		models.StateDiseased,
	},
	models.StateHarvesting: {
		models.StateHarvested,
		models.StateDiseased,
	},
	models.StateHarvested: {
		models.StateResting,
		models.StateInPreparation,
	},
	models.StateResting: {
		models.StateInPreparation,
		models.StateAvailable,
	},
	models.StateInPreparation: {
		models.StateAvailable,
		models.StatePrepared,
	},
	// Recovery from disease lands on the growth stage implied by crop age,
	// so every cultivation stage is reachable here.
	models.StateDiseased: {
		models.StateAbandoned,
		models.StateSown,
		models.StateGrowing,
		models.StateFlowering,
		models.StateFruiting,
		models.StateReadyForHarvest,
	},
	models.StateAbandoned: {
		models.StateInPreparation,
	},
}

// IsValidTransition reports whether moving from current to target is
// structurally possible.
func IsValidTransition(current, target models.LifecycleState) bool {
	if !current.Valid() || !target.Valid() {
		return false
	}
	return slices.Contains(validTransitions[current], target)
}

// ValidTargets returns the states reachable from current.
func ValidTargets(current models.LifecycleState) []models.LifecycleState {
	targets, ok := validTransitions[current]
	if !ok {
		return nil
	}
	return slices.Clone(targets)
}

// IsTerminalState reports whether no transition leaves the given state.
func IsTerminalState(state models.LifecycleState) bool {
	return len(validTransitions[state]) == 0
}

// TransitionErrorMessage builds the user-facing explanation for an invalid
// transition, listing the valid targets from the current state.
func TransitionErrorMessage(current, target models.LifecycleState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cannot change state from '%s' to '%s'.", current.Description(), target.Description())

	targets := ValidTargets(current)
	if len(targets) == 0 {
		b.WriteString(" There are no valid transitions from this state.")
		return b.String()
	}

	fmt.Fprintf(&b, " Valid states from '%s': ", current.Description())
	for i, t := range targets {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.Description())
	}
	return b.String()
}
