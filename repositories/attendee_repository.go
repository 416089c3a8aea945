package repositories

import (
	"context"
	"errors"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/queryparams"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IAttendeeRepository is the persistence surface for attendees and their
// append-only check-in log.
type IAttendeeRepository interface {
	Create(ctx context.Context, attendee *models.Attendee) error
	FindByID(ctx context.Context, id uint) (*models.Attendee, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Attendee, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID uint) (*models.Attendee, error)
	FindAllByEventPaginated(ctx context.Context, eventID uint, params queryparams.ListParams) ([]models.Attendee, int64, error)
	ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error)
	CountByEventAndStatuses(ctx context.Context, eventID uint, statuses []models.AttendeeStatus) (int64, error)
	StatusCounts(ctx context.Context, eventID uint) (map[models.AttendeeStatus]int64, error)
	Update(ctx context.Context, attendee *models.Attendee) error

	CreateCheckInLog(ctx context.Context, entry *models.CheckInLog) error
	FindCheckInLogsByAttendee(ctx context.Context, attendeeID uint) ([]models.CheckInLog, error)
}

// AttendeeRepository implements IAttendeeRepository.
type AttendeeRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Attendee]
}

// NewAttendeeRepository builds an AttendeeRepository on the shared connection.
func NewAttendeeRepository() IAttendeeRepository {
	db := configs.GetDB()
	base := NewBaseRepository[models.Attendee](db)
	base.SetAllowedSortColumns([]string{"id", "registration_date", "last_name", "status", "checked_in_at"})
	return &AttendeeRepository{db: db, base: base}
}

// NewAttendeeRepositoryTx binds the repository to a transaction.
func NewAttendeeRepositoryTx(tx *gorm.DB) IAttendeeRepository {
	base := NewBaseRepository[models.Attendee](tx)
	base.SetAllowedSortColumns([]string{"id", "registration_date", "last_name", "status", "checked_in_at"})
	return &AttendeeRepository{db: tx, base: base}
}

func (r *AttendeeRepository) getDB(ctx context.Context) *gorm.DB {
	return getTxDB(ctx, r.db)
}

func (r *AttendeeRepository) Create(ctx context.Context, attendee *models.Attendee) error {
	if attendee == nil || attendee.UserID == 0 || attendee.EventID == 0 {
		return errors.New("an attendee needs a user and an event")
	}
	return r.getDB(ctx).Create(attendee).Error
}

func (r *AttendeeRepository) FindByID(ctx context.Context, id uint) (*models.Attendee, error) {
	if id == 0 {
		return nil, errors.New("invalid attendee ID")
	}
	var attendee models.Attendee
	err := r.getDB(ctx).Preload("Event").Preload("User").First(&attendee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("AttendeeRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &attendee, nil
}

// FindByIDForUpdate locks the attendee row so concurrent check-in attempts
// serialize on it.
func (r *AttendeeRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Attendee, error) {
	if id == 0 {
		return nil, errors.New("invalid attendee ID")
	}
	var attendee models.Attendee
	err := lockForUpdate(r.getDB(ctx)).First(&attendee, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("AttendeeRepository.FindByIDForUpdate: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &attendee, nil
}

func (r *AttendeeRepository) FindByUserAndEvent(ctx context.Context, userID, eventID uint) (*models.Attendee, error) {
	if userID == 0 || eventID == 0 {
		return nil, ErrNotFound
	}
	var attendee models.Attendee
	err := r.getDB(ctx).Where("user_id = ? AND event_id = ?", userID, eventID).First(&attendee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &attendee, nil
}

func (r *AttendeeRepository) FindAllByEventPaginated(ctx context.Context, eventID uint, params queryparams.ListParams) ([]models.Attendee, int64, error) {
	if eventID == 0 {
		return nil, 0, errors.New("invalid event ID")
	}
	var attendees []models.Attendee
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Attendee{}).Where("event_id = ?", eventID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Name != "" {
		like := "%" + params.Name + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	orderColumn := "registration_date"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = params.SortBy
	}
	query = query.Order(orderColumn + " " + params.OrderBy)

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("AttendeeRepository.Count (by event): DB error", zap.Uint("eventID", eventID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return attendees, 0, nil
	}

	err := query.Limit(params.PerPage).Offset(params.CalculateOffset()).Find(&attendees).Error
	if err != nil {
		configslog.Log.Error("AttendeeRepository.Find (by event): DB error", zap.Uint("eventID", eventID), zap.Error(err))
		return nil, totalCount, err
	}
	return attendees, totalCount, nil
}

// ListByEvent returns every attendee of the event, used by the CSV export.
func (r *AttendeeRepository) ListByEvent(ctx context.Context, eventID uint) ([]models.Attendee, error) {
	if eventID == 0 {
		return nil, errors.New("invalid event ID")
	}
	var attendees []models.Attendee
	err := r.getDB(ctx).Where("event_id = ?", eventID).Order("last_name asc, first_name asc").Find(&attendees).Error
	return attendees, err
}

// CountByEventAndStatuses counts registrations that occupy capacity.
func (r *AttendeeRepository) CountByEventAndStatuses(ctx context.Context, eventID uint, statuses []models.AttendeeStatus) (int64, error) {
	if eventID == 0 {
		return 0, errors.New("invalid event ID")
	}
	var count int64
	query := r.getDB(ctx).Model(&models.Attendee{}).Where("event_id = ?", eventID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Count(&count).Error
	return count, err
}

// StatusCounts groups the event's attendees by status.
func (r *AttendeeRepository) StatusCounts(ctx context.Context, eventID uint) (map[models.AttendeeStatus]int64, error) {
	if eventID == 0 {
		return nil, errors.New("invalid event ID")
	}
	type row struct {
		Status models.AttendeeStatus
		Total  int64
	}
	var rows []row
	err := r.getDB(ctx).Model(&models.Attendee{}).
		Select("status, COUNT(*) as total").
		Where("event_id = ?", eventID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		configslog.Log.Error("AttendeeRepository.StatusCounts: DB error", zap.Uint("eventID", eventID), zap.Error(err))
		return nil, err
	}
	counts := make(map[models.AttendeeStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func (r *AttendeeRepository) Update(ctx context.Context, attendee *models.Attendee) error {
	if attendee == nil || attendee.ID == 0 {
		return errors.New("attendee to update is not valid")
	}
	return r.getDB(ctx).Save(attendee).Error
}

// CreateCheckInLog appends one audit entry. There is no update or delete path.
func (r *AttendeeRepository) CreateCheckInLog(ctx context.Context, entry *models.CheckInLog) error {
	if entry == nil || entry.AttendeeID == 0 {
		return errors.New("a check-in log entry needs an attendee")
	}
	return r.getDB(ctx).Create(entry).Error
}

func (r *AttendeeRepository) FindCheckInLogsByAttendee(ctx context.Context, attendeeID uint) ([]models.CheckInLog, error) {
	if attendeeID == 0 {
		return nil, errors.New("invalid attendee ID")
	}
	var logs []models.CheckInLog
	err := r.getDB(ctx).Where("attendee_id = ?", attendeeID).Order("checked_in_at desc").Find(&logs).Error
	return logs, err
}

var _ IAttendeeRepository = (*AttendeeRepository)(nil)
