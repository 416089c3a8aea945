package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is the central aggregate. Invariants enforced by the service layer:
// registration_end <= start_date and start_date < end_date.
type Event struct {
	BaseModel
	Title            string `gorm:"type:varchar(300);not null" json:"title"`
	Slug             string `gorm:"type:varchar(350);uniqueIndex" json:"slug"`
	Description      string `gorm:"type:text;not null" json:"description"`
	ShortDescription string `gorm:"type:varchar(500)" json:"short_description"`

	CategoryID  uint `gorm:"not null;index" json:"category_id"`
	VenueID     uint `gorm:"not null;index" json:"venue_id"`
	OrganizerID uint `gorm:"not null;index" json:"organizer_id"`

	StartDate         time.Time `gorm:"not null;index" json:"start_date"`
	EndDate           time.Time `gorm:"not null" json:"end_date"`
	RegistrationStart time.Time `gorm:"not null" json:"registration_start"`
	RegistrationEnd   time.Time `gorm:"not null" json:"registration_end"`

	IsFree       bool  `gorm:"default:false" json:"is_free"`
	MaxAttendees *uint `json:"max_attendees,omitempty"`

	Status      EventStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	IsFeatured  bool        `gorm:"default:false" json:"is_featured"`
	IsPublished bool        `gorm:"default:false;index" json:"is_published"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`

	ViewsCount uint   `gorm:"default:0" json:"views_count"`
	Tags       string `gorm:"type:varchar(500)" json:"tags"`

	Category  Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category,omitempty"`
	Venue     Venue    `gorm:"foreignKey:VenueID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"venue,omitempty"`
	Organizer User     `gorm:"foreignKey:OrganizerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"organizer,omitempty"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if err := e.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if e.Slug == "" {
		e.Slug = slug.Make(e.Title)
	}
	return nil
}

// IsUpcoming reports whether a published event has not started yet.
func (e *Event) IsUpcoming(now time.Time) bool {
	return e.Status == EventStatusPublished && e.StartDate.After(now)
}

// HasEnded reports whether the event is over.
func (e *Event) HasEnded(now time.Time) bool {
	return e.EndDate.Before(now)
}
