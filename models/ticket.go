package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TicketStatus is the lifecycle state of one purchased ticket.
type TicketStatus string

const (
	TicketStatusReserved  TicketStatus = "reserved"
	TicketStatusPaid      TicketStatus = "paid"
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusRefunded  TicketStatus = "refunded"
)

// Ticket is a single purchased admission. Price fields are computed at
// creation and immutable afterwards: FinalPrice = OriginalPrice - DiscountApplied.
type Ticket struct {
	BaseModel
	TicketCode string `gorm:"type:varchar(36);uniqueIndex;not null" json:"ticket_code"`
	QRCode     string `gorm:"type:varchar(255)" json:"qr_code"`

	TicketTypeID uint  `gorm:"not null;index:idx_tickets_type_status" json:"ticket_type_id"`
	BuyerID      uint  `gorm:"not null;index:idx_tickets_buyer_status" json:"buyer_id"`
	AttendeeID   *uint `gorm:"uniqueIndex" json:"attendee_id,omitempty"`

	PurchaseDate  time.Time `gorm:"not null" json:"purchase_date"`
	PaymentMethod string    `gorm:"type:varchar(50)" json:"payment_method"`
	TransactionID string    `gorm:"type:varchar(200)" json:"transaction_id"`

	OriginalPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"original_price"`
	DiscountApplied decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_applied"`
	FinalPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_price"`

	Status             TicketStatus `gorm:"type:varchar(20);default:'reserved';index:idx_tickets_type_status;index:idx_tickets_buyer_status" json:"status"`
	IsActive           bool         `gorm:"default:true" json:"is_active"`
	UsedAt             *time.Time   `json:"used_at,omitempty"`
	CancelledAt        *time.Time   `json:"cancelled_at,omitempty"`
	CancellationReason string       `gorm:"type:text" json:"cancellation_reason,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	TicketType TicketType `gorm:"foreignKey:TicketTypeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"ticket_type,omitempty"`
	Buyer      User       `gorm:"foreignKey:BuyerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"buyer,omitempty"`
	Attendee   *Attendee  `gorm:"foreignKey:AttendeeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"attendee,omitempty"`
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if err := t.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if t.TicketCode == "" {
		t.TicketCode = uuid.NewString()
	}
	if t.QRCode == "" {
		t.QRCode = "QR-" + t.TicketCode
	}
	if t.PurchaseDate.IsZero() {
		t.PurchaseDate = time.Now().UTC()
	}
	if t.FinalPrice.IsZero() && !t.OriginalPrice.IsZero() {
		t.FinalPrice = t.OriginalPrice.Sub(t.DiscountApplied)
	}
	return nil
}
