package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType is a priced admission category of one event (VIP, General, ...).
// QuantitySold is mutated only by the purchase and cancel workflows, always
// under a row lock.
type TicketType struct {
	BaseModel
	EventID     uint   `gorm:"not null;index:idx_ticket_types_event_active" json:"event_id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	QuantityAvailable uint            `gorm:"not null" json:"quantity_available"`
	QuantitySold      uint            `gorm:"not null;default:0" json:"quantity_sold"`
	MaxPerOrder       uint            `gorm:"not null;default:10" json:"max_per_order"`

	SaleStart time.Time `gorm:"not null" json:"sale_start"`
	SaleEnd   time.Time `gorm:"not null" json:"sale_end"`
	IsActive  bool      `gorm:"default:true;index:idx_ticket_types_event_active" json:"is_active"`

	IncludesFood        bool   `gorm:"default:false" json:"includes_food"`
	IncludesDrink       bool   `gorm:"default:false" json:"includes_drink"`
	IncludesParking     bool   `gorm:"default:false" json:"includes_parking"`
	IncludesMerchandise bool   `gorm:"default:false" json:"includes_merchandise"`
	BenefitsDescription string `gorm:"type:text" json:"benefits_description"`

	DisplayOrder uint `gorm:"default:0" json:"display_order"`

	Event Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"event,omitempty"`
}

// QuantityRemaining is derived on read, never persisted.
func (t *TicketType) QuantityRemaining() uint {
	if t.QuantitySold >= t.QuantityAvailable {
		return 0
	}
	return t.QuantityAvailable - t.QuantitySold
}

// IsSoldOut reports whether no inventory remains.
func (t *TicketType) IsSoldOut() bool {
	return t.QuantityRemaining() == 0
}

// IsOnSale reports whether purchases are currently allowed.
func (t *TicketType) IsOnSale(now time.Time) bool {
	return t.IsActive &&
		!now.Before(t.SaleStart) && !now.After(t.SaleEnd) &&
		!t.IsSoldOut()
}
