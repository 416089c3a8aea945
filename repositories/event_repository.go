package repositories

import (
	"context"
	"errors"
	"strings"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IEventRepository is the persistence surface for events, categories and venues.
type IEventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Event, error)
	FindBySlug(ctx context.Context, slug string) (*models.Event, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error)
	FindAllByOrganizerPaginated(ctx context.Context, organizerID uint, params queryparams.ListParams) ([]models.Event, int64, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, event *models.Event, deletedByUserID uint) error

	CreateCategory(ctx context.Context, category *models.Category) error
	FindCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateVenue(ctx context.Context, venue *models.Venue) error
	FindVenueByID(ctx context.Context, id uint) (*models.Venue, error)
	ListVenues(ctx context.Context, city string) ([]models.Venue, error)
}

// EventRepository implements IEventRepository.
type EventRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Event]
}

// NewEventRepository builds an EventRepository on the shared connection.
func NewEventRepository() IEventRepository {
	db := configs.GetDB()
	base := NewBaseRepository[models.Event](db)
	base.SetAllowedSortColumns([]string{"id", "created_at", "start_date", "title", "status"})
	return &EventRepository{db: db, base: base}
}

// NewEventRepositoryTx binds the repository to a transaction.
func NewEventRepositoryTx(tx *gorm.DB) IEventRepository {
	base := NewBaseRepository[models.Event](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "start_date", "title", "status"})
	return &EventRepository{db: tx, base: base}
}

func (r *EventRepository) getDB(ctx context.Context) *gorm.DB {
	return getTxDB(ctx, r.db)
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event == nil || event.CategoryID == 0 || event.VenueID == 0 || event.OrganizerID == 0 {
		return errors.New("an event needs a category, a venue and an organizer")
	}
	return r.getDB(ctx).Create(event).Error
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	if id == 0 {
		return nil, errors.New("invalid event ID")
	}
	var event models.Event
	err := r.getDB(ctx).Preload("Category").Preload("Venue").Preload("Organizer").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate loads the event under a row lock so capacity checks made
// against it hold until the surrounding transaction commits. No associations
// are preloaded; a locking read must stay a single-table query.
func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Event, error) {
	if id == 0 {
		return nil, errors.New("invalid event ID")
	}
	var event models.Event
	err := lockForUpdate(r.getDB(ctx)).First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindByIDForUpdate: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var event models.Event
	err := r.getDB(ctx).Preload("Category").Preload("Venue").Where("slug = ?", slug).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("EventRepository.FindBySlug: DB error", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &event, nil
}

// applyEventFilters applies the shared filter and ordering logic.
func (r *EventRepository) applyEventFilters(query *gorm.DB, params queryparams.ListParams) *gorm.DB {
	if params.Name != "" {
		query = query.Where("LOWER(events.title) LIKE ?", "%"+strings.ToLower(params.Name)+"%")
	}
	if params.Status != "" {
		query = query.Where("events.status = ?", params.Status)
	}

	orderColumn := "events.created_at"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = "events." + params.SortBy
	} else if params.SortBy != "" {
		configslog.SLog.Warnf("Unknown event sort column %q requested, using default.", params.SortBy)
	}
	return query.Order(orderColumn + " " + params.OrderBy)
}

func (r *EventRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Event, int64, error) {
	var events []models.Event
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Event{})
	query = r.applyEventFilters(query, params)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("EventRepository.Count: DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return events, 0, nil
	}

	err := query.Preload("Category").Preload("Venue").
		Limit(params.PerPage).Offset(params.CalculateOffset()).
		Find(&events).Error
	if err != nil {
		configslog.Log.Error("EventRepository.Find (paginated): DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return events, totalCount, nil
}

func (r *EventRepository) FindAllByOrganizerPaginated(ctx context.Context, organizerID uint, params queryparams.ListParams) ([]models.Event, int64, error) {
	if organizerID == 0 {
		return nil, 0, errors.New("invalid organizer ID")
	}
	var events []models.Event
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Event{}).Where("events.organizer_id = ?", organizerID)
	query = r.applyEventFilters(query, params)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("EventRepository.Count (by organizer): DB error", zap.Uint("organizerID", organizerID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return events, 0, nil
	}

	err := query.Preload("Category").Preload("Venue").
		Limit(params.PerPage).Offset(params.CalculateOffset()).
		Find(&events).Error
	if err != nil {
		configslog.Log.Error("EventRepository.Find (by organizer): DB error", zap.Uint("organizerID", organizerID), zap.Error(err))
		return nil, totalCount, err
	}
	return events, totalCount, nil
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	if event == nil || event.ID == 0 {
		return errors.New("event to update is not valid")
	}
	return r.getDB(ctx).Save(event).Error
}

// Delete soft-deletes the event and records who deleted it.
func (r *EventRepository) Delete(ctx context.Context, event *models.Event, deletedByUserID uint) error {
	if event == nil || event.ID == 0 {
		return errors.New("event to delete is not valid")
	}
	db := r.getDB(ctx)
	result := db.Model(event).Where("id = ? AND deleted_at IS NULL", event.ID).
		Updates(map[string]interface{}{"deleted_at": db.NowFunc(), "deleted_by": &deletedByUserID})
	if result.Error != nil {
		configslog.Log.Error("EventRepository.Delete: DB error", zap.Uint("id", event.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category == nil || category.Name == "" {
		return errors.New("a category needs a name")
	}
	return r.getDB(ctx).Create(category).Error
}

func (r *EventRepository) FindCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := r.getDB(ctx).First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *EventRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.getDB(ctx).Where("is_active = ?", true).Order("name asc").Find(&categories).Error
	return categories, err
}

func (r *EventRepository) CreateVenue(ctx context.Context, venue *models.Venue) error {
	if venue == nil || venue.Name == "" || venue.Capacity == 0 {
		return errors.New("a venue needs a name and a capacity")
	}
	return r.getDB(ctx).Create(venue).Error
}

func (r *EventRepository) FindVenueByID(ctx context.Context, id uint) (*models.Venue, error) {
	var venue models.Venue
	err := r.getDB(ctx).First(&venue, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &venue, nil
}

func (r *EventRepository) ListVenues(ctx context.Context, city string) ([]models.Venue, error) {
	var venues []models.Venue
	query := r.getDB(ctx).Where("is_active = ?", true)
	if city != "" {
		query = query.Where("city = ?", city)
	}
	err := query.Order("name asc").Find(&venues).Error
	return venues, err
}

var _ IEventRepository = (*EventRepository)(nil)
