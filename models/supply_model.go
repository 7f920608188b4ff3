package models

import (
	"time"

	"agro-app/controllers/idgen"
	"agro-app/types"

	"gorm.io/gorm"
)

type SupplyType string

const (
	SupplyFertilizer  SupplyType = "FERTILIZANTE"
	SupplyHerbicide   SupplyType = "HERBICIDA"
	SupplyFungicide   SupplyType = "FUNGICIDA"
	SupplyInsecticide SupplyType = "INSECTICIDA"
	SupplySeed        SupplyType = "SEMILLA"
	SupplyFuel        SupplyType = "COMBUSTIBLE"
	SupplyLubricant   SupplyType = "LUBRICANTE"
	SupplySparePart   SupplyType = "REPUESTO"
	SupplyTool        SupplyType = "HERRAMIENTA"
	SupplyOther       SupplyType = "OTROS"
)

// SupplyItem is a consumable inventory unit. QuantityOnHand is never written
// directly by handlers; every change goes through the inventory service so an
// OUT/IN StockMovement is appended alongside it.
type SupplyItem struct {
	gorm.Model
	Name           string     `json:"name" gorm:"not null" validate:"required"`
	Description    string     `json:"description"`
	Type           SupplyType `json:"type" gorm:"default:'OTROS'"`
	Unit           string     `json:"unit" gorm:"not null" validate:"required"`
	UnitPrice      float64    `json:"unit_price" gorm:"default:0"`
	QuantityOnHand float64    `json:"quantity_on_hand" gorm:"default:0"`
	MinimumStock   float64    `json:"minimum_stock" gorm:"default:0"`
	Supplier       string     `json:"supplier"`
	UserID         uint       `json:"user_id" gorm:"index"`
	CompanyID      *uint      `json:"company_id" gorm:"index"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	CreatedBy      int
	UpdatedBy      int
	DeletedBy      int
}

func (s *SupplyItem) BelowMinimum() bool {
	return s.MinimumStock > 0 && s.QuantityOnHand < s.MinimumStock
}

type MovementKind string

const (
	MovementIn  MovementKind = "ENTRADA"
	MovementOut MovementKind = "SALIDA"
)

// StockMovement is the append-only audit trail of every quantity change to a
// SupplyItem. Rows are created by the inventory service and never touched
// again.
type StockMovement struct {
	ID           types.SnowflakeID `json:"ID" gorm:"primaryKey"`
	SupplyItemID uint              `json:"supply_item_id" gorm:"index"`
	WorkOrderID  *uint             `json:"work_order_id" gorm:"index;default:null"`
	Kind         MovementKind      `json:"kind" gorm:"not null"`
	Quantity     float64           `json:"quantity" gorm:"not null"`
	Reason       string            `json:"reason"`
	UserID       uint              `json:"user_id"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
