package models

import (
	"time"

	"gorm.io/gorm"
)

type WorkOrderKind string

const (
	WorkSowing      WorkOrderKind = "SIEMBRA"
	WorkFertilizing WorkOrderKind = "FERTILIZACION"
	WorkIrrigation  WorkOrderKind = "RIEGO"
	WorkHarvest     WorkOrderKind = "COSECHA"
	WorkMaintenance WorkOrderKind = "MANTENIMIENTO"
	WorkPruning     WorkOrderKind = "PODA"
	WorkPestControl WorkOrderKind = "CONTROL_PLAGAS"
	WorkWeedControl WorkOrderKind = "CONTROL_MALEZAS"
	WorkSoilTest    WorkOrderKind = "ANALISIS_SUELO"
	WorkOther       WorkOrderKind = "OTROS"
)

type WorkOrderStatus string

const (
	WorkOrderPlanned    WorkOrderStatus = "PLANIFICADA"
	WorkOrderInProgress WorkOrderStatus = "EN_PROGRESO"
	WorkOrderCompleted  WorkOrderStatus = "COMPLETADA"
	WorkOrderCancelled  WorkOrderStatus = "CANCELADA" // cancelled before execution, supplies restored
	WorkOrderAnnulled   WorkOrderStatus = "ANULADA"   // annulled after execution, requires justification
)

// WorkOrder is a recorded field-work event on a parcel. Line items are
// attached at creation; any later change to supply line items must go through
// the inventory reconcile flow so the stock ledger stays consistent.
type WorkOrder struct {
	gorm.Model
	Kind            WorkOrderKind   `json:"kind" gorm:"not null" validate:"required"`
	Description     string          `json:"description"`
	StartDate       *time.Time      `json:"start_date" gorm:"default:null"`
	EndDate         *time.Time      `json:"end_date" gorm:"default:null"`
	Status          WorkOrderStatus `json:"status" gorm:"default:'PLANIFICADA'"`
	TotalCost       float64         `json:"total_cost" gorm:"default:0"`
	Responsible     string          `json:"responsible"`
	Notes           string          `json:"notes"`
	ParcelID        uint            `json:"parcel_id" gorm:"index"`
	UserID          uint            `json:"user_id"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	AnnulReason     string          `json:"annul_reason"`
	AnnulledAt      *time.Time      `json:"annulled_at" gorm:"default:null"`
	AnnulledBy      *uint           `json:"annulled_by" gorm:"default:null"`
	Supplies        []WorkOrderSupply    `json:"supplies" gorm:"foreignKey:WorkOrderID"`
	Machinery       []WorkOrderMachinery `json:"machinery" gorm:"foreignKey:WorkOrderID"`
	ManualLabor     []WorkOrderLabor     `json:"manual_labor" gorm:"foreignKey:WorkOrderID"`
	CreatedBy       int
	UpdatedBy       int
	DeletedBy       int
}

func (w *WorkOrder) IsCompleted() bool {
	return w.Status == WorkOrderCompleted
}

func (w *WorkOrder) IsPlanned() bool {
	return w.Status == WorkOrderPlanned
}

// RequiresFormalAnnulment reports whether the order already affected the
// field and can no longer be silently cancelled.
func (w *WorkOrder) RequiresFormalAnnulment() bool {
	return w.Status == WorkOrderInProgress || w.Status == WorkOrderCompleted
}

// WorkOrderSupply is a consumed-supply line item.
type WorkOrderSupply struct {
	gorm.Model
	WorkOrderID  uint    `json:"work_order_id" gorm:"index"`
	SupplyItemID uint    `json:"supply_item_id" gorm:"index"`
	QuantityUsed float64 `json:"quantity_used" gorm:"not null"`
	UnitCost     float64 `json:"unit_cost" gorm:"default:0"`
	TotalCost    float64 `json:"total_cost" gorm:"default:0"`
	Notes        string  `json:"notes"`
}

type MachineryKind string

const (
	MachineryOwned  MachineryKind = "PROPIA"
	MachineryRented MachineryKind = "ALQUILADA"
)

type WorkOrderMachinery struct {
	gorm.Model
	WorkOrderID uint          `json:"work_order_id" gorm:"index"`
	Description string        `json:"description"`
	Kind        MachineryKind `json:"kind" gorm:"default:'PROPIA'"`
	Provider    string        `json:"provider"`
	Cost        float64       `json:"cost" gorm:"default:0"`
	Notes       string        `json:"notes"`
}

type WorkOrderLabor struct {
	gorm.Model
	WorkOrderID uint    `json:"work_order_id" gorm:"index"`
	Description string  `json:"description"`
	Workers     int     `json:"workers" gorm:"default:1"`
	Hours       float64 `json:"hours" gorm:"default:0"`
	Provider    string  `json:"provider"`
	TotalCost   float64 `json:"total_cost" gorm:"default:0"`
	Notes       string  `json:"notes"`
}
