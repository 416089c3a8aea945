package services

import (
	"context"
	"fmt"

	"festgo.app/configs"
	"festgo.app/configs/configslog"
	"festgo.app/models"
	"festgo.app/repositories"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// CheckInServiceError is the typed error set of the check-in service.
type CheckInServiceError string

func (e CheckInServiceError) Error() string { return string(e) }

const (
	ErrCheckInAttendeeNotFound  CheckInServiceError = "attendee not found"
	ErrCheckInTicketNotFound    CheckInServiceError = "ticket not found"
	ErrCheckInAmbiguousLookup   CheckInServiceError = "provide either an attendee ID or a ticket code, not both"
	ErrCheckInMissingLookup     CheckInServiceError = "an attendee ID or a ticket code is required"
	ErrCheckInCancelled         CheckInServiceError = "registration is cancelled and cannot be checked in"
	ErrCheckInAlreadyCheckedIn  CheckInServiceError = "attendee is already checked in"
	ErrCheckInForbidden         CheckInServiceError = "only staff or the event organizer can perform check-in"
	ErrCheckInTicketNotAssigned CheckInServiceError = "ticket is not assigned to an attendee"
	ErrCheckInFailed            CheckInServiceError = "check-in could not be completed"
)

// CheckInRequest identifies who is entering, by registration or by ticket.
// Exactly one of AttendeeID and TicketCode must be set.
type CheckInRequest struct {
	AttendeeID uint   `json:"attendee_id,omitempty"`
	TicketCode string `json:"ticket_code,omitempty"`
	Location   string `json:"location,omitempty"`
	DeviceInfo string `json:"device_info,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// CheckInResult reports the completed check-in.
type CheckInResult struct {
	Attendee *models.Attendee   `json:"attendee"`
	Log      *models.CheckInLog `json:"log"`
	Ticket   *models.Ticket     `json:"ticket,omitempty"`
}

// ICheckInService is the door-entry surface.
type ICheckInService interface {
	CheckIn(ctx context.Context, actingUserID uint, req CheckInRequest) (*CheckInResult, error)
	CheckInHistory(ctx context.Context, attendeeID uint, actingUserID uint) ([]models.CheckInLog, error)
}

// CheckInService implements ICheckInService.
type CheckInService struct {
	attendeeRepo repositories.IAttendeeRepository
	ticketRepo   repositories.ITicketRepository
	eventRepo    repositories.IEventRepository
	userService  IUserService
	db           *gorm.DB
	clock        clockwork.Clock
}

// NewCheckInService builds the service on the shared connection.
func NewCheckInService() ICheckInService {
	return &CheckInService{
		attendeeRepo: repositories.NewAttendeeRepository(),
		ticketRepo:   repositories.NewTicketRepository(),
		eventRepo:    repositories.NewEventRepository(),
		userService:  NewUserService(),
		db:           configs.GetDB(),
		clock:        clockwork.NewRealClock(),
	}
}

// NewCheckInServiceWith builds the service with injected dependencies.
func NewCheckInServiceWith(db *gorm.DB, clock clockwork.Clock) ICheckInService {
	return &CheckInService{
		attendeeRepo: repositories.NewAttendeeRepositoryTx(db),
		ticketRepo:   repositories.NewTicketRepositoryTx(db),
		eventRepo:    repositories.NewEventRepositoryTx(db),
		userService:  NewUserServiceWith(repositories.NewUserRepositoryTx(db)),
		db:           db,
		clock:        clock,
	}
}

// CheckIn atomically marks the attendee checked in, appends one audit log
// entry and consumes the linked ticket if there is one. Repeating the call
// returns a conflict carrying the original check-in time.
func (s *CheckInService) CheckIn(ctx context.Context, actingUserID uint, req CheckInRequest) (*CheckInResult, error) {
	if req.AttendeeID != 0 && req.TicketCode != "" {
		return nil, ErrCheckInAmbiguousLookup
	}
	if req.AttendeeID == 0 && req.TicketCode == "" {
		return nil, ErrCheckInMissingLookup
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil {
		return nil, ErrCheckInForbidden
	}

	var result CheckInResult
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := repositories.ContextWithTx(models.ContextWithUserID(ctx, actingUserID), tx)
		attendeeRepo := repositories.NewAttendeeRepositoryTx(tx)
		ticketRepo := repositories.NewTicketRepositoryTx(tx)
		eventRepo := repositories.NewEventRepositoryTx(tx)

		// Resolve the registration, via ticket code when given.
		attendeeID := req.AttendeeID
		var ticket *models.Ticket
		if req.TicketCode != "" {
			t, err := ticketRepo.FindTicketByCode(txCtx, req.TicketCode)
			if err != nil {
				return ErrCheckInTicketNotFound
			}
			if t.AttendeeID == nil {
				return ErrCheckInTicketNotAssigned
			}
			attendeeID = *t.AttendeeID
			ticket = t
		}

		attendee, err := attendeeRepo.FindByIDForUpdate(txCtx, attendeeID)
		if err != nil {
			return ErrCheckInAttendeeNotFound
		}

		event, err := eventRepo.FindByID(txCtx, attendee.EventID)
		if err != nil {
			return ErrEventNotFound
		}
		if !user.CanOperateEvent(event.OrganizerID) {
			return ErrCheckInForbidden
		}

		switch attendee.Status {
		case models.AttendeeStatusCancelled:
			return ErrCheckInCancelled
		case models.AttendeeStatusCheckedIn:
			if attendee.CheckedInAt != nil {
				return fmt.Errorf("%w (at %s)", ErrCheckInAlreadyCheckedIn,
					attendee.CheckedInAt.UTC().Format("2006-01-02 15:04:05"))
			}
			return ErrCheckInAlreadyCheckedIn
		}

		now := s.clock.Now().UTC()
		attendee.Status = models.AttendeeStatusCheckedIn
		attendee.CheckedInAt = &now
		attendee.CheckedInByID = &actingUserID
		if err := attendeeRepo.Update(txCtx, attendee); err != nil {
			return ErrCheckInFailed
		}

		entry := models.CheckInLog{
			AttendeeID:    attendee.ID,
			CheckedInByID: &actingUserID,
			CheckedInAt:   now,
			Location:      req.Location,
			DeviceInfo:    req.DeviceInfo,
			Notes:         req.Notes,
		}
		if err := attendeeRepo.CreateCheckInLog(txCtx, &entry); err != nil {
			return ErrCheckInFailed
		}

		// Consume the attendee's ticket. When entry came in by attendee ID the
		// linked ticket still needs to be looked up.
		if ticket == nil {
			if t, err := ticketRepo.FindTicketByAttendeeID(txCtx, attendee.ID); err == nil {
				ticket = t
			}
		}
		if ticket != nil && (ticket.Status == models.TicketStatusPaid || ticket.Status == models.TicketStatusConfirmed) {
			ticket.Status = models.TicketStatusUsed
			ticket.UsedAt = &now
			if err := ticketRepo.UpdateTicket(txCtx, ticket); err != nil {
				return ErrCheckInFailed
			}
			result.Ticket = ticket
		}

		result.Attendee = attendee
		result.Log = &entry
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Check-in: attendee %d by user %d", result.Attendee.ID, actingUserID)
	return &result, nil
}

// CheckInHistory returns the audit trail for one attendee, newest first.
func (s *CheckInService) CheckInHistory(ctx context.Context, attendeeID uint, actingUserID uint) ([]models.CheckInLog, error) {
	attendee, err := s.attendeeRepo.FindByID(ctx, attendeeID)
	if err != nil {
		return nil, ErrCheckInAttendeeNotFound
	}
	event, err := s.eventRepo.FindByID(ctx, attendee.EventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	user, err := s.userService.GetUserByID(ctx, actingUserID)
	if err != nil || !user.CanOperateEvent(event.OrganizerID) {
		return nil, ErrCheckInForbidden
	}
	return s.attendeeRepo.FindCheckInLogsByAttendee(ctx, attendeeID)
}

var _ ICheckInService = (*CheckInService)(nil)
