package models

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Category groups events (music, sports, technology, ...).
type Category struct {
	BaseModel
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"type:varchar(120);uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"type:varchar(50)" json:"icon"`
	Color       string `gorm:"type:varchar(7);default:'#6B7280'" json:"color"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if err := c.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return nil
}
