package models

import "time"

// CheckInLog is the append-only audit trail of check-ins. Rows are written
// once by the check-in workflow and never updated or deleted, so it does not
// embed BaseModel.
type CheckInLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	AttendeeID    uint      `gorm:"not null;index" json:"attendee_id"`
	CheckedInByID *uint     `json:"checked_in_by,omitempty"`
	CheckedInAt   time.Time `gorm:"not null;index" json:"checked_in_at"`
	Location      string    `gorm:"type:varchar(200)" json:"location"`
	DeviceInfo    string    `gorm:"type:varchar(300)" json:"device_info"`
	Notes         string    `gorm:"type:text" json:"notes"`

	Attendee    Attendee `gorm:"foreignKey:AttendeeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CheckedInBy *User    `gorm:"foreignKey:CheckedInByID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}
