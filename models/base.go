package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type contextKey string

// ContextUserIDKey carries the acting user's ID through a context so the
// audit hooks can stamp created_by/updated_by.
const ContextUserIDKey contextKey = "user_id"

// ContextWithUserID attaches the acting user to the context.
func ContextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

// UserIDFromContext extracts the acting user, if any.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(uint)
	return id, ok && id != 0
}

// BaseModel is embedded by every mutable entity: surrogate key, timestamps,
// soft delete and audit columns filled from the request context.
type BaseModel struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedBy *uint          `json:"-"`
	UpdatedBy *uint          `json:"-"`
	DeletedBy *uint          `gorm:"index" json:"-"`
}

// BeforeCreate stamps the audit columns from the statement context.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if uid, ok := UserIDFromContext(tx.Statement.Context); ok {
		b.CreatedBy = &uid
		b.UpdatedBy = &uid
	}
	return nil
}

// BeforeUpdate stamps updated_by from the statement context.
func (b *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if uid, ok := UserIDFromContext(tx.Statement.Context); ok {
		b.UpdatedBy = &uid
	}
	return nil
}
