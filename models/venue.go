package models

// Venue is a physical location events take place at.
type Venue struct {
	BaseModel
	Name         string   `gorm:"type:varchar(200);not null" json:"name"`
	Address      string   `gorm:"type:varchar(300);not null" json:"address"`
	City         string   `gorm:"type:varchar(100);not null;index:idx_venues_city_active" json:"city"`
	State        string   `gorm:"type:varchar(100)" json:"state"`
	Country      string   `gorm:"type:varchar(100);default:'Colombia'" json:"country"`
	PostalCode   string   `gorm:"type:varchar(20)" json:"postal_code"`
	Capacity     uint     `gorm:"not null" json:"capacity"`
	Latitude     *float64 `gorm:"type:decimal(9,6)" json:"latitude,omitempty"`
	Longitude    *float64 `gorm:"type:decimal(9,6)" json:"longitude,omitempty"`
	Facilities   string   `gorm:"type:text" json:"facilities"`
	ContactPhone string   `gorm:"type:varchar(20)" json:"contact_phone"`
	ContactEmail string   `gorm:"type:varchar(255)" json:"contact_email"`
	IsActive     bool     `gorm:"default:true;index:idx_venues_city_active" json:"is_active"`
}
