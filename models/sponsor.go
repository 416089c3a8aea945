package models

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SponsorTier is a named sponsorship level (Platinum, Gold, ...) defining the
// contribution range and the benefit template new sponsorships are seeded from.
type SponsorTier struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	MinContribution decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"min_contribution"`
	MaxContribution *decimal.Decimal `gorm:"type:decimal(12,2)" json:"max_contribution,omitempty"`

	// Benefits is a newline-delimited template; each non-blank line becomes
	// one SponsorBenefit row at sponsorship creation.
	Benefits      string `gorm:"type:text;not null" json:"benefits"`
	PriorityLevel uint   `gorm:"default:0" json:"priority_level"`

	LogoSize            string `gorm:"type:varchar(50);default:'medium'" json:"logo_size"`
	HomepageFeatured    bool   `gorm:"default:false" json:"homepage_featured"`
	SpeakingOpportunity bool   `gorm:"default:false" json:"speaking_opportunity"`
	BoothSpace          bool   `gorm:"default:false" json:"booth_space"`

	ComplimentaryTickets uint `gorm:"default:0" json:"complimentary_tickets"`
	VIPTickets           uint `gorm:"default:0" json:"vip_tickets"`

	Color        string `gorm:"type:varchar(7);default:'#CCCCCC'" json:"color"`
	Icon         string `gorm:"type:varchar(50)" json:"icon"`
	DisplayOrder uint   `gorm:"default:0" json:"display_order"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

// SponsorStatus is the commercial relationship state of a sponsor company.
type SponsorStatus string

const (
	SponsorStatusProspective SponsorStatus = "prospective"
	SponsorStatusNegotiating SponsorStatus = "negotiating"
	SponsorStatusConfirmed   SponsorStatus = "confirmed"
	SponsorStatusActive      SponsorStatus = "active"
	SponsorStatusCompleted   SponsorStatus = "completed"
	SponsorStatusCancelled   SponsorStatus = "cancelled"
)

// Sponsor is a sponsoring company.
type Sponsor struct {
	BaseModel
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string `gorm:"type:varchar(220);uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Industry    string `gorm:"type:varchar(100)" json:"industry"`

	ContactPerson string `gorm:"type:varchar(200);not null" json:"contact_person"`
	ContactEmail  string `gorm:"type:varchar(255);not null" json:"contact_email"`
	ContactPhone  string `gorm:"type:varchar(20)" json:"contact_phone"`

	Website     string `gorm:"type:varchar(500)" json:"website"`
	LinkedInURL string `gorm:"type:varchar(500)" json:"linkedin_url"`
	TwitterURL  string `gorm:"type:varchar(500)" json:"twitter_url"`

	TierID *uint `gorm:"index" json:"tier_id,omitempty"`

	Status           SponsorStatus `gorm:"type:varchar(20);default:'prospective';index" json:"status"`
	IsActive         bool          `gorm:"default:true" json:"is_active"`
	AccountManagerID *uint         `json:"account_manager_id,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	Tier           *SponsorTier `gorm:"foreignKey:TierID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"tier,omitempty"`
	AccountManager *User        `gorm:"foreignKey:AccountManagerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

func (s *Sponsor) BeforeCreate(tx *gorm.DB) error {
	if err := s.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if s.Slug == "" {
		s.Slug = slug.Make(s.Name)
	}
	return nil
}

// PaymentStatus is derived from AmountPaid vs ContributionAmount; refunded is
// a manual-only transition.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Sponsorship ties one sponsor to one event under a tier. AmountPaid grows
// monotonically through payment registrations and never exceeds
// ContributionAmount.
type Sponsorship struct {
	BaseModel
	SponsorID uint `gorm:"not null;uniqueIndex:idx_sponsorships_sponsor_event" json:"sponsor_id"`
	EventID   uint `gorm:"not null;uniqueIndex:idx_sponsorships_sponsor_event;index" json:"event_id"`
	TierID    uint `gorm:"not null;index" json:"tier_id"`

	ContributionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"contribution_amount"`
	AmountPaid         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_paid"`
	PaymentStatus      PaymentStatus   `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`

	ContractSignedDate *time.Time `json:"contract_signed_date,omitempty"`
	PaymentDueDate     *time.Time `json:"payment_due_date,omitempty"`

	CustomBenefits string     `gorm:"type:text" json:"custom_benefits"`
	BoothNumber    string     `gorm:"type:varchar(20)" json:"booth_number"`
	SpeakingSlot   *time.Time `json:"speaking_slot,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	IsPublic bool `gorm:"default:true;index" json:"is_public"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	Sponsor  Sponsor          `gorm:"foreignKey:SponsorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"sponsor,omitempty"`
	Event    Event            `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Tier     SponsorTier      `gorm:"foreignKey:TierID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"tier,omitempty"`
	Benefits []SponsorBenefit `gorm:"foreignKey:SponsorshipID" json:"benefits,omitempty"`
}

// RemainingBalance is the amount still owed, derived on read.
func (s *Sponsorship) RemainingBalance() decimal.Decimal {
	return s.ContributionAmount.Sub(s.AmountPaid)
}

// PaymentProgress is the paid percentage, 0 for a zero contribution.
func (s *Sponsorship) PaymentProgress() decimal.Decimal {
	if s.ContributionAmount.IsZero() {
		return decimal.Zero
	}
	return s.AmountPaid.Div(s.ContributionAmount).Mul(decimal.NewFromInt(100))
}

// SponsorBenefit is one deliverable owed to a sponsorship, expanded from the
// tier's benefit template at creation.
type SponsorBenefit struct {
	BaseModel
	SponsorshipID uint   `gorm:"not null;index" json:"sponsorship_id"`
	BenefitName   string `gorm:"type:varchar(200);not null" json:"benefit_name"`
	Description   string `gorm:"type:text" json:"description"`

	IsDelivered   bool       `gorm:"default:false;index" json:"is_delivered"`
	DeliveredDate *time.Time `json:"delivered_date,omitempty"`
	DeliveredByID *uint      `json:"delivered_by,omitempty"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	Sponsorship Sponsorship `gorm:"foreignKey:SponsorshipID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	DeliveredBy *User       `gorm:"foreignKey:DeliveredByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}
