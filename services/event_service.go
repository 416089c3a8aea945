package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/queryparams"
	"festgo.app/repositories"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EventServiceError is the typed error set of the event service.
type EventServiceError string

func (e EventServiceError) Error() string { return string(e) }

const (
	ErrEventNotFound       EventServiceError = "event not found"
	ErrEventCreationFailed EventServiceError = "event could not be created"
	ErrEventUpdateFailed   EventServiceError = "event could not be updated"
	ErrEventDeletionFailed EventServiceError = "event could not be deleted"
	ErrEventForbidden      EventServiceError = "you are not allowed to manage this event"
	ErrEventInvalidInput   EventServiceError = "invalid event data"
	ErrEventInvalidDates   EventServiceError = "event dates are inconsistent"
	ErrEventNotDraft       EventServiceError = "only draft events can be published"
	ErrCategoryNotFound    EventServiceError = "category not found"
	ErrVenueNotFound       EventServiceError = "venue not found"
)

// IEventService is the event, category and venue surface.
type IEventService interface {
	CreateEvent(ctx context.Context, organizerID uint, event models.Event) (*models.Event, error)
	GetEventByID(ctx context.Context, id uint) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	GetEventsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	GetEventsForOrganizer(ctx context.Context, organizerID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateEvent(ctx context.Context, id uint, actingUserID uint, updated models.Event) (*models.Event, error)
	PublishEvent(ctx context.Context, id uint, actingUserID uint) (*models.Event, error)
	CancelEvent(ctx context.Context, id uint, actingUserID uint) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uint, actingUserID uint) error

	CreateCategory(ctx context.Context, actingUserID uint, category models.Category) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateVenue(ctx context.Context, actingUserID uint, venue models.Venue) (*models.Venue, error)
	ListVenues(ctx context.Context, city string) ([]models.Venue, error)
}

// EventService implements IEventService.
type EventService struct {
	repo        repositories.IEventRepository
	userService IUserService
	db          *gorm.DB
	clock       clockwork.Clock
}

// NewEventService builds the service on the shared connection.
func NewEventService() IEventService {
	return &EventService{
		repo:        repositories.NewEventRepository(),
		userService: NewUserService(),
		db:          configs.GetDB(),
		clock:       clockwork.NewRealClock(),
	}
}

// NewEventServiceWith builds the service with injected dependencies.
func NewEventServiceWith(db *gorm.DB, clock clockwork.Clock) IEventService {
	return &EventService{
		repo:        repositories.NewEventRepositoryTx(db),
		userService: NewUserServiceWith(repositories.NewUserRepositoryTx(db)),
		db:          db,
		clock:       clock,
	}
}

// validateEventDates enforces the date ordering every event must satisfy:
// registration closes no later than the event starts, and the event starts
// strictly before it ends.
func validateEventDates(event *models.Event) error {
	if event.StartDate.IsZero() || event.EndDate.IsZero() ||
		event.RegistrationStart.IsZero() || event.RegistrationEnd.IsZero() {
		return fmt.Errorf("%w: all four dates are required", ErrEventInvalidDates)
	}
	if !event.StartDate.Before(event.EndDate) {
		return fmt.Errorf("%w: start date must be before end date", ErrEventInvalidDates)
	}
	if event.RegistrationEnd.After(event.StartDate) {
		return fmt.Errorf("%w: registration must close before the event starts", ErrEventInvalidDates)
	}
	if event.RegistrationStart.After(event.RegistrationEnd) {
		return fmt.Errorf("%w: registration window is inverted", ErrEventInvalidDates)
	}
	return nil
}

func (s *EventService) CreateEvent(ctx context.Context, organizerID uint, event models.Event) (*models.Event, error) {
	if organizerID == 0 {
		return nil, ErrEventInvalidInput
	}
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" || event.Description == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrEventInvalidInput)
	}
	if err := validateEventDates(&event); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCategoryByID(ctx, event.CategoryID); err != nil {
		return nil, ErrCategoryNotFound
	}
	if _, err := s.repo.FindVenueByID(ctx, event.VenueID); err != nil {
		return nil, ErrVenueNotFound
	}

	event.OrganizerID = organizerID
	event.Status = models.EventStatusDraft
	event.IsPublished = false
	event.Slug = ""

	createCtx := models.ContextWithUserID(ctx, organizerID)
	if err := s.repo.Create(createCtx, &event); err != nil {
		configslog.Log.Error("EventService.CreateEvent: DB error", zap.String("title", event.Title), zap.Error(err))
		return nil, ErrEventCreationFailed
	}
	configslog.SLog.Infof("Event created: %d (%s) by user %d", event.ID, event.Slug, organizerID)
	return &event, nil
}

func (s *EventService) GetEventByID(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	event, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) GetEventsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate()
	events, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(events, totalCount, params), nil
}

func (s *EventService) GetEventsForOrganizer(ctx context.Context, organizerID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if organizerID == 0 {
		return nil, ErrEventInvalidInput
	}
	params.Validate()
	events, totalCount, err := s.repo.FindAllByOrganizerPaginated(ctx, organizerID, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(events, totalCount, params), nil
}

// authorizeEventManager loads the acting user and checks staff-or-organizer.
func (s *EventService) authorizeEventManager(ctx context.Context, event *models.Event, actingUserID uint) error {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return ErrEventForbidden
	}
	if !user.CanOperateEvent(event.OrganizerID) {
		return ErrEventForbidden
	}
	return nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id uint, actingUserID uint, updated models.Event) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if err := s.authorizeEventManager(ctx, event, actingUserID); err != nil {
		return nil, err
	}

	event.Title = strings.TrimSpace(updated.Title)
	event.Description = updated.Description
	event.ShortDescription = updated.ShortDescription
	event.StartDate = updated.StartDate
	event.EndDate = updated.EndDate
	event.RegistrationStart = updated.RegistrationStart
	event.RegistrationEnd = updated.RegistrationEnd
	event.IsFree = updated.IsFree
	event.MaxAttendees = updated.MaxAttendees
	event.Tags = updated.Tags
	if updated.CategoryID != 0 {
		event.CategoryID = updated.CategoryID
	}
	if updated.VenueID != 0 {
		event.VenueID = updated.VenueID
	}
	if event.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrEventInvalidInput)
	}
	if err := validateEventDates(event); err != nil {
		return nil, err
	}

	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.Update(updateCtx, event); err != nil {
		configslog.Log.Error("EventService.UpdateEvent: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, ErrEventUpdateFailed
	}
	return event, nil
}

// PublishEvent moves a draft to published and stamps PublishedAt.
func (s *EventService) PublishEvent(ctx context.Context, id uint, actingUserID uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if err := s.authorizeEventManager(ctx, event, actingUserID); err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusDraft {
		return nil, ErrEventNotDraft
	}

	now := s.clock.Now().UTC()
	event.Status = models.EventStatusPublished
	event.IsPublished = true
	event.PublishedAt = &now

	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.Update(updateCtx, event); err != nil {
		configslog.Log.Error("EventService.PublishEvent: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, ErrEventUpdateFailed
	}
	configslog.SLog.Infof("Event published: %d by user %d", id, actingUserID)
	return event, nil
}

func (s *EventService) CancelEvent(ctx context.Context, id uint, actingUserID uint) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if err := s.authorizeEventManager(ctx, event, actingUserID); err != nil {
		return nil, err
	}
	if event.Status == models.EventStatusCompleted || event.Status == models.EventStatusCancelled {
		return nil, fmt.Errorf("%w: event is already %s", ErrEventInvalidInput, event.Status)
	}

	event.Status = models.EventStatusCancelled
	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.Update(updateCtx, event); err != nil {
		configslog.Log.Error("EventService.CancelEvent: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, ErrEventUpdateFailed
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id uint, actingUserID uint) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrEventNotFound
	}
	if err := s.authorizeEventManager(ctx, event, actingUserID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, event, actingUserID); err != nil {
		configslog.Log.Error("EventService.DeleteEvent: DB error", zap.Uint("id", id), zap.Error(err))
		return ErrEventDeletionFailed
	}
	configslog.SLog.Infof("Event deleted: %d by user %d", id, actingUserID)
	return nil
}

// requireStaff gates the shared catalog tables; any organizer can read them
// but only staff may extend them.
func (s *EventService) requireStaff(ctx context.Context, actingUserID uint) error {
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.IsStaff {
		return ErrEventForbidden
	}
	return nil
}

func (s *EventService) CreateCategory(ctx context.Context, actingUserID uint, category models.Category) (*models.Category, error) {
	if err := s.requireStaff(ctx, actingUserID); err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrEventInvalidInput)
	}
	category.IsActive = true
	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateCategory(createCtx, &category); err != nil {
		configslog.Log.Error("EventService.CreateCategory: DB error", zap.Error(err))
		return nil, ErrEventCreationFailed
	}
	return &category, nil
}

func (s *EventService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *EventService) CreateVenue(ctx context.Context, actingUserID uint, venue models.Venue) (*models.Venue, error) {
	if err := s.requireStaff(ctx, actingUserID); err != nil {
		return nil, err
	}
	venue.Name = strings.TrimSpace(venue.Name)
	if venue.Name == "" || venue.Capacity == 0 {
		return nil, fmt.Errorf("%w: venue name and capacity are required", ErrEventInvalidInput)
	}
	venue.IsActive = true
	createCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.CreateVenue(createCtx, &venue); err != nil {
		configslog.Log.Error("EventService.CreateVenue: DB error", zap.Error(err))
		return nil, ErrEventCreationFailed
	}
	return &venue, nil
}

func (s *EventService) ListVenues(ctx context.Context, city string) ([]models.Venue, error) {
	return s.repo.ListVenues(ctx, city)
}

// eventWindowContains is a small helper used by registration-time checks.
func eventWindowContains(event *models.Event, now time.Time) bool {
	return !now.Before(event.RegistrationStart) && !now.After(event.RegistrationEnd)
}

var _ IEventService = (*EventService)(nil)
