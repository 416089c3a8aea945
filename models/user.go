package models

// User is the acting principal: buyers, organizers and door staff alike.
// Token issuance lives at the gateway; this table backs authorization checks.
type User struct {
	BaseModel
	Name         string `gorm:"type:varchar(150);not null" json:"name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	IsStaff      bool   `gorm:"default:false;index" json:"is_staff"`
	IsSystem     bool   `gorm:"default:false" json:"-"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
}

// CanOperateEvent reports whether the user may run staff actions (check-in,
// marking tickets used) for an event owned by organizerID.
func (u *User) CanOperateEvent(organizerID uint) bool {
	return u.IsStaff || u.ID == organizerID
}
