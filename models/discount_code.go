package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType selects the discount math.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// DiscountCode is a promotional code. TimesUsed is a monotonic counter bumped
// once per successful order, never once per ticket.
type DiscountCode struct {
	BaseModel
	Code        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description string `gorm:"type:varchar(200)" json:"description"`

	DiscountType  DiscountType    `gorm:"type:varchar(20);default:'percentage';not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_value"`

	// Empty scope means the code applies everywhere.
	EventID               *uint        `gorm:"index" json:"event_id,omitempty"`
	ApplicableTicketTypes []TicketType `gorm:"many2many:discount_code_ticket_types;" json:"applicable_ticket_types,omitempty"`

	MaxUses           *uint           `json:"max_uses,omitempty"`
	TimesUsed         uint            `gorm:"not null;default:0" json:"times_used"`
	MaxUsesPerUser    uint            `gorm:"not null;default:1" json:"max_uses_per_user"`
	MinPurchaseAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"min_purchase_amount"`

	ValidFrom  time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil time.Time `gorm:"not null" json:"valid_until"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
}

func (d *DiscountCode) BeforeCreate(tx *gorm.DB) error {
	if err := d.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	return nil
}

// IsValid reports whether the code can be redeemed at the given instant:
// active, inside its window and under its usage cap.
func (d *DiscountCode) IsValid(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.ValidFrom) || now.After(d.ValidUntil) {
		return false
	}
	if d.MaxUses != nil && d.TimesUsed >= *d.MaxUses {
		return false
	}
	return true
}

// RemainingUses returns the redemption budget left, nil for unlimited codes.
func (d *DiscountCode) RemainingUses() *uint {
	if d.MaxUses == nil {
		return nil
	}
	var remaining uint
	if *d.MaxUses > d.TimesUsed {
		remaining = *d.MaxUses - d.TimesUsed
	}
	return &remaining
}
