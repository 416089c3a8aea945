package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/pkg/mailer"
	"festgo.app/pkg/queryparams"
	"festgo.app/repositories"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttendeeServiceError is the typed error set of the attendee service.
type AttendeeServiceError string

func (e AttendeeServiceError) Error() string { return string(e) }

const (
	ErrAttendeeNotFound          AttendeeServiceError = "attendee not found"
	ErrAttendeeAlreadyRegistered AttendeeServiceError = "user is already registered for this event"
	ErrAttendeeEventFull         AttendeeServiceError = "event has reached its attendee limit"
	ErrAttendeeRegistrationOver  AttendeeServiceError = "registration window is closed"
	ErrAttendeeEventNotOpen      AttendeeServiceError = "event is not open for registration"
	ErrAttendeeInvalidInput      AttendeeServiceError = "invalid attendee data"
	ErrAttendeeInvalidTransition AttendeeServiceError = "registration state does not allow this change"
	ErrAttendeeForbidden         AttendeeServiceError = "you are not allowed to manage this registration"
	ErrAttendeeFailed            AttendeeServiceError = "registration could not be completed"
)

// AttendeeStatistics summarizes one event's registrations.
type AttendeeStatistics struct {
	EventID        uint                            `json:"event_id"`
	Total          int64                           `json:"total"`
	ByStatus       map[models.AttendeeStatus]int64 `json:"by_status"`
	CheckedInRate  float64                         `json:"checked_in_rate"`
	Capacity       *uint                           `json:"capacity,omitempty"`
	RemainingSeats *int64                          `json:"remaining_seats,omitempty"`
}

// IAttendeeService is the registration surface.
type IAttendeeService interface {
	Register(ctx context.Context, userID uint, eventID uint, attendee models.Attendee) (*models.Attendee, error)
	GetAttendeeByID(ctx context.Context, id uint) (*models.Attendee, error)
	GetAttendeesForEvent(ctx context.Context, eventID uint, actingUserID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	ConfirmAttendee(ctx context.Context, id uint, actingUserID uint) (*models.Attendee, error)
	CancelRegistration(ctx context.Context, id uint, actingUserID uint) (*models.Attendee, error)
	MarkNoShows(ctx context.Context, eventID uint, actingUserID uint) (int, error)
	Statistics(ctx context.Context, eventID uint, actingUserID uint) (*AttendeeStatistics, error)
	ExportCSV(ctx context.Context, eventID uint, actingUserID uint) ([]byte, error)
}

// AttendeeService implements IAttendeeService.
type AttendeeService struct {
	repo        repositories.IAttendeeRepository
	eventRepo   repositories.IEventRepository
	userService IUserService
	mail        mailer.Sender
	db          *gorm.DB
	clock       clockwork.Clock
}

// NewAttendeeService builds the service on the shared connection.
func NewAttendeeService() IAttendeeService {
	return &AttendeeService{
		repo:        repositories.NewAttendeeRepository(),
		eventRepo:   repositories.NewEventRepository(),
		userService: NewUserService(),
		mail:        mailer.New(),
		db:          configs.GetDB(),
		clock:       clockwork.NewRealClock(),
	}
}

// NewAttendeeServiceWith builds the service with injected dependencies.
func NewAttendeeServiceWith(db *gorm.DB, clock clockwork.Clock, mail mailer.Sender) IAttendeeService {
	return &AttendeeService{
		repo:        repositories.NewAttendeeRepositoryTx(db),
		eventRepo:   repositories.NewEventRepositoryTx(db),
		userService: NewUserServiceWith(repositories.NewUserRepositoryTx(db)),
		mail:        mail,
		db:          db,
		clock:       clock,
	}
}

// capacityStatuses are the registration states that occupy a seat.
var capacityStatuses = []models.AttendeeStatus{
	models.AttendeeStatusPending,
	models.AttendeeStatusConfirmed,
	models.AttendeeStatusCheckedIn,
}

// Register creates one registration per (user, event) pair. The uniqueness and
// capacity checks run inside one transaction so two concurrent registrations
// cannot both slip past the limit.
func (s *AttendeeService) Register(ctx context.Context, userID uint, eventID uint, attendee models.Attendee) (*models.Attendee, error) {
	if userID == 0 || eventID == 0 {
		return nil, ErrAttendeeInvalidInput
	}
	attendee.FirstName = strings.TrimSpace(attendee.FirstName)
	attendee.LastName = strings.TrimSpace(attendee.LastName)
	attendee.Email = strings.ToLower(strings.TrimSpace(attendee.Email))
	if attendee.FirstName == "" || attendee.LastName == "" || attendee.Email == "" {
		return nil, fmt.Errorf("%w: first name, last name and email are required", ErrAttendeeInvalidInput)
	}

	now := s.clock.Now().UTC()
	var created *models.Attendee
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, userID), tx)
		repo := repositories.NewAttendeeRepositoryTx(tx)
		eventRepo := repositories.NewEventRepositoryTx(tx)

		// The event row is locked so the count below cannot race another
		// registration for the same event past the capacity limit.
		event, err := eventRepo.FindByIDForUpdate(txCtx, eventID)
		if err != nil {
			return ErrEventNotFound
		}
		if event.Status != models.EventStatusPublished && event.Status != models.EventStatusOngoing {
			return ErrAttendeeEventNotOpen
		}
		if !eventWindowContains(event, now) {
			return ErrAttendeeRegistrationOver
		}
		if _, err := repo.FindByUserAndEvent(txCtx, userID, eventID); err == nil {
			return ErrAttendeeAlreadyRegistered
		}
		if event.MaxAttendees != nil {
			occupied, err := repo.CountByEventAndStatuses(txCtx, eventID, capacityStatuses)
			if err != nil {
				return ErrAttendeeFailed
			}
			if occupied >= int64(*event.MaxAttendees) {
				return ErrAttendeeEventFull
			}
		}

		attendee.UserID = userID
		attendee.EventID = eventID
		attendee.Status = models.AttendeeStatusPending
		attendee.RegistrationDate = now
		attendee.CheckedInAt = nil
		attendee.CheckedInByID = nil
		if err := repo.Create(txCtx, &attendee); err != nil {
			configslog.Log.Error("AttendeeService.Register: DB error",
				zap.Uint("userID", userID), zap.Uint("eventID", eventID), zap.Error(err))
			return ErrAttendeeFailed
		}
		created = &attendee
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Registration created: attendee %d for event %d", created.ID, eventID)
	return created, nil
}

func (s *AttendeeService) GetAttendeeByID(ctx context.Context, id uint) (*models.Attendee, error) {
	attendee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrAttendeeNotFound
	}
	return attendee, nil
}

func (s *AttendeeService) authorizeEventManager(ctx context.Context, eventID uint, actingUserID uint) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.CanOperateEvent(event.OrganizerID) {
		return nil, ErrAttendeeForbidden
	}
	return event, nil
}

func (s *AttendeeService) GetAttendeesForEvent(ctx context.Context, eventID uint, actingUserID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if _, err := s.authorizeEventManager(ctx, eventID, actingUserID); err != nil {
		return nil, err
	}
	params.Validate()
	attendees, totalCount, err := s.repo.FindAllByEventPaginated(ctx, eventID, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(attendees, totalCount, params), nil
}

// ConfirmAttendee moves a pending registration to confirmed.
func (s *AttendeeService) ConfirmAttendee(ctx context.Context, id uint, actingUserID uint) (*models.Attendee, error) {
	attendee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrAttendeeNotFound
	}
	if _, err := s.authorizeEventManager(ctx, attendee.EventID, actingUserID); err != nil {
		return nil, err
	}
	if attendee.Status != models.AttendeeStatusPending {
		return nil, fmt.Errorf("%w: cannot confirm a %s registration", ErrAttendeeInvalidTransition, attendee.Status)
	}

	now := s.clock.Now().UTC()
	attendee.Status = models.AttendeeStatusConfirmed
	attendee.ConfirmationDate = &now
	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.Update(updateCtx, attendee); err != nil {
		return nil, ErrAttendeeFailed
	}

	// Best effort; a mail failure never fails the confirmation.
	if attendee.Email != "" {
		body := fmt.Sprintf("Hi %s,\n\nYour registration is confirmed. See you at the event!\n", attendee.FullName())
		if err := s.mail.Send(attendee.Email, "Registration confirmed", body); err != nil {
			configslog.Log.Warn("AttendeeService: confirmation email failed",
				zap.String("to", attendee.Email), zap.Error(err))
		}
	}
	return attendee, nil
}

// CancelRegistration cancels a registration that has not been checked in.
// Attendees can cancel their own; event managers can cancel any.
func (s *AttendeeService) CancelRegistration(ctx context.Context, id uint, actingUserID uint) (*models.Attendee, error) {
	attendee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrAttendeeNotFound
	}
	if attendee.UserID != actingUserID {
		if _, err := s.authorizeEventManager(ctx, attendee.EventID, actingUserID); err != nil {
			return nil, err
		}
	}
	switch attendee.Status {
	case models.AttendeeStatusCheckedIn:
		return nil, fmt.Errorf("%w: attendee is already checked in", ErrAttendeeInvalidTransition)
	case models.AttendeeStatusCancelled:
		return nil, fmt.Errorf("%w: registration is already cancelled", ErrAttendeeInvalidTransition)
	}

	attendee.Status = models.AttendeeStatusCancelled
	updateCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.repo.Update(updateCtx, attendee); err != nil {
		return nil, ErrAttendeeFailed
	}
	configslog.SLog.Infof("Registration cancelled: attendee %d by user %d", id, actingUserID)
	return attendee, nil
}

// MarkNoShows flips every pending or confirmed registration of an ended event
// to no_show and returns how many were flipped.
func (s *AttendeeService) MarkNoShows(ctx context.Context, eventID uint, actingUserID uint) (int, error) {
	event, err := s.authorizeEventManager(ctx, eventID, actingUserID)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now().UTC()
	if !event.HasEnded(now) {
		return 0, fmt.Errorf("%w: event has not ended yet", ErrAttendeeInvalidTransition)
	}

	flipped := 0
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)
		repo := repositories.NewAttendeeRepositoryTx(tx)

		attendees, err := repo.ListByEvent(txCtx, eventID)
		if err != nil {
			return err
		}
		for i := range attendees {
			a := &attendees[i]
			if a.Status != models.AttendeeStatusPending && a.Status != models.AttendeeStatusConfirmed {
				continue
			}
			a.Status = models.AttendeeStatusNoShow
			if err := repo.Update(txCtx, a); err != nil {
				return err
			}
			flipped++
		}
		return nil
	})
	if txErr != nil {
		return 0, ErrAttendeeFailed
	}
	return flipped, nil
}

// Statistics aggregates registration counts for an event manager.
func (s *AttendeeService) Statistics(ctx context.Context, eventID uint, actingUserID uint) (*AttendeeStatistics, error) {
	event, err := s.authorizeEventManager(ctx, eventID, actingUserID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.StatusCounts(ctx, eventID)
	if err != nil {
		return nil, err
	}

	stats := &AttendeeStatistics{EventID: eventID, ByStatus: counts, Capacity: event.MaxAttendees}
	var active int64
	for status, n := range counts {
		stats.Total += n
		switch status {
		case models.AttendeeStatusPending, models.AttendeeStatusConfirmed, models.AttendeeStatusCheckedIn:
			active += n
		}
	}
	if stats.Total > 0 {
		stats.CheckedInRate = float64(counts[models.AttendeeStatusCheckedIn]) / float64(stats.Total)
	}
	if event.MaxAttendees != nil {
		remaining := int64(*event.MaxAttendees) - active
		if remaining < 0 {
			remaining = 0
		}
		stats.RemainingSeats = &remaining
	}
	return stats, nil
}

// ExportCSV renders the event's registration list as CSV for an event manager.
func (s *AttendeeService) ExportCSV(ctx context.Context, eventID uint, actingUserID uint) ([]byte, error) {
	if _, err := s.authorizeEventManager(ctx, eventID, actingUserID); err != nil {
		return nil, err
	}
	attendees, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "first_name", "last_name", "email", "company", "status", "registration_date", "checked_in_at"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, a := range attendees {
		checkedIn := ""
		if a.CheckedInAt != nil {
			checkedIn = a.CheckedInAt.UTC().Format("2006-01-02 15:04:05")
		}
		row := []string{
			strconv.FormatUint(uint64(a.ID), 10),
			a.FirstName, a.LastName, a.Email, a.Company,
			string(a.Status),
			a.RegistrationDate.UTC().Format("2006-01-02 15:04:05"),
			checkedIn,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var _ IAttendeeService = (*AttendeeService)(nil)
