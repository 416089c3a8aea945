package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"festgo.app/models"
	"festgo.app/pkg/mailer"

	"gorm.io/gorm"
)

func newCheckInFixture(t *testing.T) (*gorm.DB, ICheckInService, *models.User, *models.Event, *models.Attendee) {
	t.Helper()
	db := newTestDB(t)
	service := NewCheckInServiceWith(db, newTestClock())
	organizer := createUser(t, db, "organizer", false)
	guest := createUser(t, db, "guest", false)
	event := createEvent(t, db, organizer, nil)
	attendee := createAttendee(t, db, guest, event, models.AttendeeStatusConfirmed)
	return db, service, organizer, event, attendee
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("by attendee ID marks the registration and logs the entry", func(t *testing.T) {
		db, service, organizer, _, attendee := newCheckInFixture(t)

		result, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{
			AttendeeID: attendee.ID,
			Location:   "main gate",
			DeviceInfo: "scanner-3",
		})
		if err != nil {
			t.Fatalf("CheckIn failed: %v", err)
		}
		if result.Attendee.Status != models.AttendeeStatusCheckedIn {
			t.Errorf("status = %s, want checked_in", result.Attendee.Status)
		}
		if result.Attendee.CheckedInAt == nil || !result.Attendee.CheckedInAt.Equal(testNow) {
			t.Errorf("checked in at = %v, want %v", result.Attendee.CheckedInAt, testNow)
		}
		if result.Attendee.CheckedInByID == nil || *result.Attendee.CheckedInByID != organizer.ID {
			t.Errorf("checked in by = %v, want %d", result.Attendee.CheckedInByID, organizer.ID)
		}
		if result.Log == nil || result.Log.Location != "main gate" {
			t.Errorf("log entry = %+v, want location main gate", result.Log)
		}

		var logCount int64
		db.Model(&models.CheckInLog{}).Where("attendee_id = ?", attendee.ID).Count(&logCount)
		if logCount != 1 {
			t.Errorf("log rows = %d, want 1", logCount)
		}
	})

	t.Run("repeat check-in reports the original timestamp", func(t *testing.T) {
		db, service, organizer, _, attendee := newCheckInFixture(t)

		if _, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{AttendeeID: attendee.ID}); err != nil {
			t.Fatalf("first check-in: %v", err)
		}
		_, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{AttendeeID: attendee.ID})
		if !errors.Is(err, ErrCheckInAlreadyCheckedIn) {
			t.Fatalf("expected ErrCheckInAlreadyCheckedIn, got %v", err)
		}
		if !strings.Contains(err.Error(), "2026-06-01 12:00:00") {
			t.Errorf("conflict error %q does not carry the original check-in time", err)
		}

		var logCount int64
		db.Model(&models.CheckInLog{}).Where("attendee_id = ?", attendee.ID).Count(&logCount)
		if logCount != 1 {
			t.Errorf("repeat attempt appended a log row: %d", logCount)
		}
	})

	t.Run("by ticket code consumes the linked ticket", func(t *testing.T) {
		db, service, organizer, event, attendee := newCheckInFixture(t)
		ticketService := NewTicketServiceWith(db, newTestClock(), mailer.Discard)
		tt := createTicketType(t, db, event, 100, 10, 5)
		tickets, err := ticketService.PurchaseTickets(ctx, attendee.UserID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}
		if _, err := ticketService.AssignTicket(ctx, tickets[0].ID, attendee.ID, attendee.UserID); err != nil {
			t.Fatalf("assign: %v", err)
		}

		result, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{TicketCode: tickets[0].TicketCode})
		if err != nil {
			t.Fatalf("CheckIn by code failed: %v", err)
		}
		if result.Attendee.ID != attendee.ID {
			t.Errorf("resolved attendee %d, want %d", result.Attendee.ID, attendee.ID)
		}
		if result.Ticket == nil || result.Ticket.Status != models.TicketStatusUsed {
			t.Errorf("linked ticket was not consumed: %+v", result.Ticket)
		}
	})

	t.Run("unassigned ticket cannot check anyone in", func(t *testing.T) {
		db, service, organizer, event, attendee := newCheckInFixture(t)
		ticketService := NewTicketServiceWith(db, newTestClock(), mailer.Discard)
		tt := createTicketType(t, db, event, 100, 10, 5)
		tickets, err := ticketService.PurchaseTickets(ctx, attendee.UserID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		if _, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{TicketCode: tickets[0].TicketCode}); !errors.Is(err, ErrCheckInTicketNotAssigned) {
			t.Fatalf("expected ErrCheckInTicketNotAssigned, got %v", err)
		}
	})

	t.Run("cancelled registration is rejected", func(t *testing.T) {
		db, service, organizer, event, _ := newCheckInFixture(t)
		other := createUser(t, db, "late-cancel", false)
		cancelled := createAttendee(t, db, other, event, models.AttendeeStatusCancelled)

		if _, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{AttendeeID: cancelled.ID}); !errors.Is(err, ErrCheckInCancelled) {
			t.Fatalf("expected ErrCheckInCancelled, got %v", err)
		}
	})

	t.Run("only staff or the organizer may check in", func(t *testing.T) {
		db, service, _, _, attendee := newCheckInFixture(t)
		stranger := createUser(t, db, "stranger", false)
		staff := createUser(t, db, "staff", true)

		if _, err := service.CheckIn(ctx, stranger.ID, CheckInRequest{AttendeeID: attendee.ID}); !errors.Is(err, ErrCheckInForbidden) {
			t.Fatalf("expected ErrCheckInForbidden, got %v", err)
		}
		if _, err := service.CheckIn(ctx, staff.ID, CheckInRequest{AttendeeID: attendee.ID}); err != nil {
			t.Fatalf("staff check-in failed: %v", err)
		}
	})

	t.Run("lookup must name exactly one of attendee and ticket", func(t *testing.T) {
		_, service, organizer, _, attendee := newCheckInFixture(t)

		if _, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{AttendeeID: attendee.ID, TicketCode: "abc"}); !errors.Is(err, ErrCheckInAmbiguousLookup) {
			t.Fatalf("expected ErrCheckInAmbiguousLookup, got %v", err)
		}
		if _, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{}); !errors.Is(err, ErrCheckInMissingLookup) {
			t.Fatalf("expected ErrCheckInMissingLookup, got %v", err)
		}
	})
}

func TestCheckInHistory(t *testing.T) {
	ctx := context.Background()
	db, service, organizer, _, attendee := newCheckInFixture(t)

	if _, err := service.CheckIn(ctx, organizer.ID, CheckInRequest{AttendeeID: attendee.ID, Location: "east door"}); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	history, err := service.CheckInHistory(ctx, attendee.ID, organizer.ID)
	if err != nil {
		t.Fatalf("CheckInHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Location != "east door" {
		t.Errorf("history = %+v, want one east door entry", history)
	}

	stranger := createUser(t, db, "nosy", false)
	if _, err := service.CheckInHistory(ctx, attendee.ID, stranger.ID); !errors.Is(err, ErrCheckInForbidden) {
		t.Fatalf("expected ErrCheckInForbidden, got %v", err)
	}
}
