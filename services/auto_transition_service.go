package services

import (
	"fmt"
	"time"

	"agro-app/models"

	"gorm.io/gorm"
)

// AutoTransitionService evaluates system-inferred state changes after each
// completed work order. Automatic moves skip the propose/confirm flow, but
// never the transition rule table: a rule whose target the table rejects is
// skipped.
type AutoTransitionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAutoTransitionService(db *gorm.DB) *AutoTransitionService {
	return &AutoTransitionService{db: db, now: time.Now}
}

// autoEval carries everything a guard predicate may look at.
type autoEval struct {
	tx     *gorm.DB
	parcel *models.Parcel
	order  *models.WorkOrder
	now    time.Time
}

// daysSincePlanting returns -1 when no planting date is set.
func (e *autoEval) daysSincePlanting() int {
	if e.parcel.PlantingDate == nil {
		return -1
	}
	return int(e.now.Sub(*e.parcel.PlantingDate).Hours() / 24)
}

func (e *autoEval) daysSinceHarvest() int {
	if e.parcel.ActualHarvestDate == nil {
		return -1
	}
	return int(e.now.Sub(*e.parcel.ActualHarvestDate).Hours() / 24)
}

func (e *autoEval) completedCount(kinds ...models.WorkOrderKind) (int64, error) {
	var count int64
	err := e.tx.Model(&models.WorkOrder{}).
		Where("parcel_id = ? AND status = ? AND is_active = ?", e.parcel.ID, models.WorkOrderCompleted, true).
		Where("kind IN ?", kinds).
		Count(&count).Error
	return count, err
}

// autoRules holds one guarded predicate per state that can transition
// automatically. States absent from the map never move on their own.
var autoRules = map[models.LifecycleState]func(*autoEval) (models.LifecycleState, bool, error){
	// A first maintenance or fertilization pass starts preparation.
	models.StateAvailable: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.order.Kind == models.WorkMaintenance || e.order.Kind == models.WorkFertilizing {
			return models.StateInPreparation, true, nil
		}
		return "", false, nil
	},

	// Two maintenance passes, or one maintenance plus one fertilization,
	// complete the preparation.
	models.StateInPreparation: func(e *autoEval) (models.LifecycleState, bool, error) {
		maintenance, err := e.completedCount(models.WorkMaintenance)
		if err != nil {
			return "", false, err
		}
		if maintenance >= 2 {
			return models.StatePrepared, true, nil
		}
		fertilization, err := e.completedCount(models.WorkFertilizing)
		if err != nil {
			return "", false, err
		}
		if maintenance >= 1 && fertilization >= 1 {
			return models.StatePrepared, true, nil
		}
		return "", false, nil
	},

	models.StateSown: func(e *autoEval) (models.LifecycleState, bool, error) {
		days := e.daysSincePlanting()
		if days >= 15 {
			return models.StateGrowing, true, nil
		}
		if days >= 7 && (e.order.Kind == models.WorkIrrigation || e.order.Kind == models.WorkFertilizing) {
			return models.StateGrowing, true, nil
		}
		return "", false, nil
	},

	models.StateGrowing: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.daysSincePlanting() >= 45 {
			return models.StateFlowering, true, nil
		}
		return "", false, nil
	},

	models.StateFlowering: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.daysSincePlanting() >= 65 {
			return models.StateFruiting, true, nil
		}
		return "", false, nil
	},

	models.StateFruiting: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.daysSincePlanting() >= 100 {
			return models.StateReadyForHarvest, true, nil
		}
		return "", false, nil
	},

	models.StateHarvested: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.order.Kind == models.WorkMaintenance {
			return models.StateInPreparation, true, nil
		}
		return "", false, nil
	},

	models.StateResting: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.daysSinceHarvest() >= 30 && e.order.Kind == models.WorkMaintenance {
			return models.StateInPreparation, true, nil
		}
		return "", false, nil
	},

	// Two completed treatments count as recovery; the landing stage follows
	// the crop age.
	models.StateDiseased: func(e *autoEval) (models.LifecycleState, bool, error) {
		treatments, err := e.completedCount(models.WorkPestControl, models.WorkWeedControl)
		if err != nil {
			return "", false, err
		}
		if treatments < 2 {
			return "", false, nil
		}
		days := e.daysSincePlanting()
		if days < 0 {
			return "", false, nil
		}
		switch {
		case days < 30:
			return models.StateSown, true, nil
		case days < 60:
			return models.StateGrowing, true, nil
		case days < 80:
			return models.StateFlowering, true, nil
		case days < 110:
			return models.StateFruiting, true, nil
		default:
			return models.StateReadyForHarvest, true, nil
		}
	},

	models.StateAbandoned: func(e *autoEval) (models.LifecycleState, bool, error) {
		if e.order.Kind == models.WorkMaintenance {
			return models.StateInPreparation, true, nil
		}
		return "", false, nil
	},
}

// Evaluate decides whether the completed work order justifies an automatic
// state change. It never proposes a move the rule table rejects.
func (s *AutoTransitionService) Evaluate(tx *gorm.DB, parcel *models.Parcel, order *models.WorkOrder) (models.LifecycleState, bool, error) {
	if parcel == nil || order == nil || order.Status != models.WorkOrderCompleted {
		return "", false, nil
	}

	rule, ok := autoRules[parcel.State]
	if !ok {
		return "", false, nil
	}

	eval := &autoEval{tx: tx, parcel: parcel, order: order, now: s.now()}
	target, ok, err := rule(eval)
	if err != nil || !ok {
		return "", false, err
	}
	if target == parcel.State {
		return "", false, nil
	}
	// The table is the source of truth; skip anything it rejects.
	if !IsValidTransition(parcel.State, target) {
		return "", false, nil
	}
	return target, true, nil
}

// EvaluateAndApply runs Evaluate and, when a target is produced, applies it
// directly (no confirmation step) inside the caller's transaction.
func (s *AutoTransitionService) EvaluateAndApply(tx *gorm.DB, parcel *models.Parcel, order *models.WorkOrder) (bool, error) {
	if tx == nil {
		tx = s.db
	}

	target, ok, err := s.Evaluate(tx, parcel, order)
	if err != nil || !ok {
		return false, err
	}

	from := parcel.State
	reason := fmt.Sprintf("automatic transition from work order %d", order.ID)
	orderID := order.ID
	if err := applyTransition(tx, parcel, target, reason, order.UserID, true, &orderID); err != nil {
		return false, err
	}

	fmt.Printf("🔄 Parcel '%s' moved %s → %s by work order %d\n", parcel.Name, from, target, order.ID)
	return true, nil
}
