package services

import (
	"errors"
	"fmt"
	"time"

	"agro-app/models"

	"gorm.io/gorm"
)

// TransitionProposal is the outcome of proposing a state change. A rejected
// proposal is an expected result, not an error: RequiresConfirmation is false
// and Message explains what is missing.
type TransitionProposal struct {
	ParcelID       uint                    `json:"parcel_id"`
	ParcelName     string                  `json:"parcel_name"`
	CurrentState   models.LifecycleState   `json:"current_state"`
	ProposedState  models.LifecycleState   `json:"proposed_state"`
	Reason         string                  `json:"reason"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	Message        string                  `json:"message"`
	Consequences   []string                `json:"consequences,omitempty"`
	ValidTargets   []models.LifecycleState `json:"valid_targets,omitempty"`
	CanCancel      bool                    `json:"can_cancel"`
	ActionRequired string                  `json:"action_required,omitempty"`
}

// TransitionConfirmation is the caller's answer to a proposal.
type TransitionConfirmation struct {
	ParcelID    uint                  `json:"parcel_id" validate:"required"`
	TargetState models.LifecycleState `json:"target_state" validate:"required"`
	Reason      string                `json:"reason"`
	Confirmed   bool                  `json:"confirmed"`
}

// LifecycleService drives the user-facing propose/confirm state machine for
// parcel transitions.
type LifecycleService struct {
	db    *gorm.DB
	perms *PermissionService
}

func NewLifecycleService(db *gorm.DB, perms *PermissionService) *LifecycleService {
	return &LifecycleService{db: db, perms: perms}
}

// Propose validates permission and transition validity and builds the impact
// summary the operator must confirm. Permission or validity failures come
// back as non-confirmable proposals, never as errors.
func (s *LifecycleService) Propose(parcelID uint, target models.LifecycleState, reason string, actor *models.User) (*TransitionProposal, error) {
	var parcel models.Parcel
	if err := s.db.First(&parcel, parcelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "parcel", ID: parcelID}
		}
		return nil, err
	}

	proposal := &TransitionProposal{
		ParcelID:      parcel.ID,
		ParcelName:    parcel.Name,
		CurrentState:  parcel.State,
		ProposedState: target,
		Reason:        reason,
	}

	if !s.perms.CanRequestTransition(actor, &parcel, target) {
		proposal.RequiresConfirmation = false
		proposal.Message = fmt.Sprintf(
			"You do not have permission to change parcel '%s' from '%s' to '%s'. Required roles: %s.",
			parcel.Name, parcel.State.Description(), target.Description(),
			RequiredRolesDescription(target))
		return proposal, nil
	}

	if !IsValidTransition(parcel.State, target) {
		proposal.RequiresConfirmation = false
		proposal.Message = TransitionErrorMessage(parcel.State, target)
		proposal.ValidTargets = ValidTargets(parcel.State)
		return proposal, nil
	}

	proposal.RequiresConfirmation = true
	proposal.CanCancel = true
	proposal.Message = fmt.Sprintf(
		"Parcel '%s' will change from '%s' to '%s'. Reason: %s",
		parcel.Name, parcel.State.Description(), target.Description(), reason)
	proposal.Consequences = transitionConsequences(target)
	proposal.ActionRequired = "Do you want to confirm this state change?"

	return proposal, nil
}

// Confirm applies a previously proposed change. Permission and validity are
// re-validated inside the write transaction; a failure here is a hard
// StaleConfirmationError because the proposal already represented the move as
// valid. Returns false without error when the caller declined.
func (s *LifecycleService) Confirm(conf TransitionConfirmation, actor *models.User) (bool, error) {
	if !conf.Confirmed {
		return false, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var parcel models.Parcel
		if err := tx.First(&parcel, conf.ParcelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "parcel", ID: conf.ParcelID}
			}
			return err
		}

		if !s.perms.CanRequestTransition(actor, &parcel, conf.TargetState) {
			return &StaleConfirmationError{Reason: "permission to change this parcel's state was revoked"}
		}
		if !IsValidTransition(parcel.State, conf.TargetState) {
			return &StaleConfirmationError{
				Reason: fmt.Sprintf("transition from '%s' to '%s' is no longer valid",
					parcel.State.Description(), conf.TargetState.Description()),
			}
		}

		return applyTransition(tx, &parcel, conf.TargetState, conf.Reason, actor.ID, false, nil)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// applyTransition is the only place parcel state is written. It stamps the
// audit fields, keeps the crop dates in sync and appends a TransitionRecord.
func applyTransition(tx *gorm.DB, parcel *models.Parcel, target models.LifecycleState, reason string, actorID uint, automatic bool, workOrderID *uint) error {
	from := parcel.State
	now := time.Now()

	parcel.State = target
	parcel.LastStateChangeAt = &now
	parcel.StateChangeReason = reason

	switch target {
	case models.StateSown:
		if parcel.PlantingDate == nil {
			parcel.PlantingDate = &now
		}
	case models.StateHarvested:
		if parcel.ActualHarvestDate == nil {
			parcel.ActualHarvestDate = &now
		}
	}

	if err := tx.Save(parcel).Error; err != nil {
		return err
	}

	record := models.TransitionRecord{
		ParcelID:    parcel.ID,
		FromState:   from,
		ToState:     target,
		Reason:      reason,
		Automatic:   automatic,
		WorkOrderID: workOrderID,
		UserID:      actorID,
	}
	return tx.Create(&record).Error
}

// transitionConsequences lists the user-visible effects of entering a state.
func transitionConsequences(target models.LifecycleState) []string {
	switch target {
	case models.StateSown:
		return []string{
			"The crop cycle will start",
			"The sowing date will be recorded",
			"Maintenance work orders can be scheduled",
		}
	case models.StateGrowing:
		return []string{
			"Crop development will be monitored",
			"Fertilization work orders can be scheduled",
		}
	case models.StateFlowering:
		return []string{
			"Flowering will be monitored",
			"Pollination work orders can be scheduled",
		}
	case models.StateFruiting:
		return []string{
			"Fruit development will be monitored",
			"Protection work orders can be scheduled",
		}
	case models.StateReadyForHarvest:
		return []string{
			"The harvest work order can be scheduled",
			"The expected yield will be calculated",
		}
	case models.StateHarvesting:
		return []string{
			"Harvest work orders will be recorded",
			"The actual yield will be calculated",
		}
	case models.StateHarvested:
		return []string{
			"The current crop cycle will be closed",
			"The actual harvest date will be recorded",
			"The parcel becomes eligible for a rest period",
		}
	case models.StatePrepared:
		return []string{
			"The parcel is ready for sowing",
		}
	case models.StateInPreparation:
		return []string{
			"Preparation work is in progress",
			"The soil will be prepared for sowing",
		}
	case models.StateAvailable:
		return []string{
			"The parcel is available for a new crop cycle",
		}
	case models.StateResting:
		return []string{
			"No new work orders should be recorded",
			"Soil rest time is recommended",
		}
	case models.StateDiseased:
		return []string{
			"The crop problem will be recorded",
			"A treatment plan is recommended",
		}
	case models.StateAbandoned:
		return []string{
			"The parcel will not be used temporarily",
			"A review is required before reuse",
		}
	default:
		return nil
	}
}
