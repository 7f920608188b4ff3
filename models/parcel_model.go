package models

import (
	"time"

	"agro-app/controllers/idgen"
	"agro-app/types"

	"gorm.io/gorm"
)

// LifecycleState is the agronomic state of a parcel. Wire values match the
// legacy database enum.
type LifecycleState string

const (
	StateAvailable       LifecycleState = "DISPONIBLE"
	StatePrepared        LifecycleState = "PREPARADO"
	StateSown            LifecycleState = "SEMBRADO"
	StateGrowing         LifecycleState = "EN_CRECIMIENTO"
	StateFlowering       LifecycleState = "EN_FLORACION"
	StateFruiting        LifecycleState = "EN_FRUTIFICACION"
	StateReadyForHarvest LifecycleState = "LISTO_PARA_COSECHA"
	StateHarvesting      LifecycleState = "EN_COSECHA"
	StateHarvested       LifecycleState = "COSECHADO"
	StateResting         LifecycleState = "EN_DESCANSO"
	StateInPreparation   LifecycleState = "EN_PREPARACION"
	StateDiseased        LifecycleState = "ENFERMO"
	StateAbandoned       LifecycleState = "ABANDONADO"
)

// AllLifecycleStates lists every state the system knows, in lifecycle order.
var AllLifecycleStates = []LifecycleState{
	StateAvailable,
	StatePrepared,
	StateSown,
	StateGrowing,
	StateFlowering,
	StateFruiting,
	StateReadyForHarvest,
	StateHarvesting,
	StateHarvested,
	StateResting,
	StateInPreparation,
	StateDiseased,
	StateAbandoned,
}

var stateDescriptions = map[LifecycleState]string{
	StateAvailable:       "Available for a new crop cycle",
	StatePrepared:        "Prepared, ready for sowing",
	StateSown:            "Sown, crop in early development",
	StateGrowing:         "Crop in vegetative growth",
	StateFlowering:       "Crop in flowering",
	StateFruiting:        "Crop in fruiting",
	StateReadyForHarvest: "Ready to be harvested",
	StateHarvesting:      "Harvest in progress",
	StateHarvested:       "Harvest completed",
	StateResting:         "Resting after harvest",
	StateInPreparation:   "Being prepared for a new cycle",
	StateDiseased:        "Crop with health or pest problems",
	StateAbandoned:       "Temporarily abandoned",
}

func (s LifecycleState) Valid() bool {
	_, ok := stateDescriptions[s]
	return ok
}

func (s LifecycleState) Description() string {
	if d, ok := stateDescriptions[s]; ok {
		return d
	}
	return string(s)
}

// Parcel is a land unit tracked through the lifecycle state machine. Its
// State, LastStateChangeAt and StateChangeReason fields are mutated only by
// the lifecycle and automatic transition services so the audit trail stays
// consistent.
type Parcel struct {
	gorm.Model
	Name                string         `json:"name" gorm:"not null" validate:"required"`
	Description         string         `json:"description"`
	AreaHectares        float64        `json:"area_hectares" gorm:"default:0"`
	State               LifecycleState `json:"state" gorm:"default:'DISPONIBLE'"`
	CurrentCrop         string         `json:"current_crop"`
	PlantingDate        *time.Time     `json:"planting_date" gorm:"default:null"`
	ExpectedHarvestDate *time.Time     `json:"expected_harvest_date" gorm:"default:null"`
	ActualHarvestDate   *time.Time     `json:"actual_harvest_date" gorm:"default:null"`
	ExpectedYield       float64        `json:"expected_yield" gorm:"default:0"`
	ActualYield         float64        `json:"actual_yield" gorm:"default:0"`
	LastStateChangeAt   *time.Time     `json:"last_state_change_at" gorm:"default:null"`
	StateChangeReason   string         `json:"state_change_reason"`
	UserID              uint           `json:"user_id" gorm:"index"`
	CompanyID           *uint          `json:"company_id" gorm:"index"`
	IsActive            bool           `json:"is_active" gorm:"default:true"`
	CreatedBy           int
	UpdatedBy           int
	DeletedBy           int
}

// TransitionRecord is the append-only history of parcel state changes, one
// row per confirmed or automatic transition. Never updated or deleted.
type TransitionRecord struct {
	ID          types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	ParcelID    uint              `json:"parcel_id" gorm:"index"`
	FromState   LifecycleState    `json:"from_state"`
	ToState     LifecycleState    `json:"to_state"`
	Reason      string            `json:"reason"`
	Automatic   bool              `json:"automatic" gorm:"default:false"`
	WorkOrderID *uint             `json:"work_order_id" gorm:"default:null"`
	UserID      uint              `json:"user_id"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (t *TransitionRecord) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
