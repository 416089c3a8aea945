package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is the repository-level missing-record error; services translate
// it into their own not-found errors.
var ErrNotFound = errors.New("record not found")

// IBaseRepository is the generic CRUD surface entity repositories build on.
type IBaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context) (int64, error)
	SetAllowedSortColumns(columns []string)
	AllowedSortColumn(column string) bool
}

// BaseRepository implements IBaseRepository over a gorm connection.
type BaseRepository[T any] struct {
	db          *gorm.DB
	sortColumns map[string]struct{}
}

// NewBaseRepository builds a BaseRepository bound to the given connection,
// which may be a transaction.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db, sortColumns: map[string]struct{}{}}
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error
	return count, err
}

// SetAllowedSortColumns whitelists sortable columns for list queries.
func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	r.sortColumns = make(map[string]struct{}, len(columns))
	for _, c := range columns {
		r.sortColumns[c] = struct{}{}
	}
}

// AllowedSortColumn reports whether the column was whitelisted.
func (r *BaseRepository[T]) AllowedSortColumn(column string) bool {
	_, ok := r.sortColumns[column]
	return ok
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)

// getTxDB returns the transaction stored in the context, if any; repositories
// use it so a service transaction spans every repo call inside the closure.
func getTxDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}

type txContextKey struct{}

// ContextWithTx stores a transaction in the context for getTxDB.
func ContextWithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// lockForUpdate takes a row-level exclusive lock on the query. SQLite has no
// FOR UPDATE syntax and serializes writers at the connection level, so the
// clause is only added on other dialects.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
