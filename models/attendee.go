package models

import "time"

// AttendeeStatus is the registration state of one person for one event.
type AttendeeStatus string

const (
	AttendeeStatusPending   AttendeeStatus = "pending"
	AttendeeStatusConfirmed AttendeeStatus = "confirmed"
	AttendeeStatusCheckedIn AttendeeStatus = "checked_in"
	AttendeeStatusCancelled AttendeeStatus = "cancelled"
	AttendeeStatusNoShow    AttendeeStatus = "no_show"
)

// Attendee is a person's registration for one event, distinct from any
// purchased ticket. One registration per (user, event) pair.
type Attendee struct {
	BaseModel
	UserID  uint `gorm:"not null;uniqueIndex:idx_attendees_user_event" json:"user_id"`
	EventID uint `gorm:"not null;uniqueIndex:idx_attendees_user_event;index:idx_attendees_event_status" json:"event_id"`

	FirstName string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone     string `gorm:"type:varchar(17)" json:"phone"`

	Company             string `gorm:"type:varchar(200)" json:"company"`
	JobTitle            string `gorm:"type:varchar(150)" json:"job_title"`
	DietaryRestrictions string `gorm:"type:text" json:"dietary_restrictions"`
	SpecialRequirements string `gorm:"type:text" json:"special_requirements"`

	Status           AttendeeStatus `gorm:"type:varchar(20);default:'pending';index:idx_attendees_event_status" json:"status"`
	RegistrationDate time.Time      `gorm:"not null" json:"registration_date"`
	ConfirmationDate *time.Time     `json:"confirmation_date,omitempty"`

	// Set only by the check-in workflow.
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CheckedInByID *uint      `json:"checked_in_by,omitempty"`

	ReceiveReminders bool `gorm:"default:true" json:"receive_reminders"`
	ReceiveUpdates   bool `gorm:"default:true" json:"receive_updates"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	User        User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	Event       Event `gorm:"foreignKey:EventID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"event,omitempty"`
	CheckedInBy *User `gorm:"foreignKey:CheckedInByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}

// FullName joins first and last name for display.
func (a *Attendee) FullName() string {
	return a.FirstName + " " + a.LastName
}
