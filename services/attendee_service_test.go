package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"testing"
	"time"

	"festgo.app/models"
	"festgo.app/pkg/mailer"

	"gorm.io/gorm"
)

func newAttendeeFixture(t *testing.T, maxAttendees *uint) (*gorm.DB, IAttendeeService, *models.User, *models.Event) {
	t.Helper()
	db := newTestDB(t)
	service := NewAttendeeServiceWith(db, newTestClock(), mailer.Discard)
	organizer := createUser(t, db, "organizer", false)
	event := createEvent(t, db, organizer, maxAttendees)
	return db, service, organizer, event
}

func registration(user *models.User) models.Attendee {
	return models.Attendee{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     user.Email,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a pending registration", func(t *testing.T) {
		db, service, _, event := newAttendeeFixture(t, nil)
		guest := createUser(t, db, "guest", false)

		attendee, err := service.Register(ctx, guest.ID, event.ID, registration(guest))
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if attendee.Status != models.AttendeeStatusPending {
			t.Errorf("status = %s, want pending", attendee.Status)
		}
		if !attendee.RegistrationDate.Equal(testNow) {
			t.Errorf("registration date = %v, want %v", attendee.RegistrationDate, testNow)
		}
	})

	t.Run("one registration per user and event", func(t *testing.T) {
		db, service, _, event := newAttendeeFixture(t, nil)
		guest := createUser(t, db, "guest", false)

		if _, err := service.Register(ctx, guest.ID, event.ID, registration(guest)); err != nil {
			t.Fatalf("first registration: %v", err)
		}
		if _, err := service.Register(ctx, guest.ID, event.ID, registration(guest)); !errors.Is(err, ErrAttendeeAlreadyRegistered) {
			t.Fatalf("expected ErrAttendeeAlreadyRegistered, got %v", err)
		}
	})

	t.Run("unpublished events do not accept registrations", func(t *testing.T) {
		db, service, _, event := newAttendeeFixture(t, nil)
		guest := createUser(t, db, "guest", false)
		if err := db.Model(event).Updates(map[string]interface{}{"status": models.EventStatusDraft, "is_published": false}).Error; err != nil {
			t.Fatalf("draft event: %v", err)
		}

		if _, err := service.Register(ctx, guest.ID, event.ID, registration(guest)); !errors.Is(err, ErrAttendeeEventNotOpen) {
			t.Fatalf("expected ErrAttendeeEventNotOpen, got %v", err)
		}
	})

	t.Run("closed registration window is rejected", func(t *testing.T) {
		db, _, _, event := newAttendeeFixture(t, nil)
		guest := createUser(t, db, "guest", false)
		clock := newTestClock()
		clock.Advance(12 * 24 * time.Hour) // past RegistrationEnd, before the event starts
		service := NewAttendeeServiceWith(db, clock, mailer.Discard)

		if _, err := service.Register(ctx, guest.ID, event.ID, registration(guest)); !errors.Is(err, ErrAttendeeRegistrationOver) {
			t.Fatalf("expected ErrAttendeeRegistrationOver, got %v", err)
		}
	})

	t.Run("capacity is enforced, cancellations free seats", func(t *testing.T) {
		db, service, _, event := newAttendeeFixture(t, uintPtr(2))
		first := createUser(t, db, "first", false)
		second := createUser(t, db, "second", false)
		third := createUser(t, db, "third", false)

		a1, err := service.Register(ctx, first.ID, event.ID, registration(first))
		if err != nil {
			t.Fatalf("first: %v", err)
		}
		if _, err := service.Register(ctx, second.ID, event.ID, registration(second)); err != nil {
			t.Fatalf("second: %v", err)
		}
		if _, err := service.Register(ctx, third.ID, event.ID, registration(third)); !errors.Is(err, ErrAttendeeEventFull) {
			t.Fatalf("expected ErrAttendeeEventFull, got %v", err)
		}

		if _, err := service.CancelRegistration(ctx, a1.ID, first.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, err := service.Register(ctx, third.ID, event.ID, registration(third)); err != nil {
			t.Fatalf("seat freed by cancellation was not reusable: %v", err)
		}
	})

	t.Run("concurrent registrations never exceed capacity", func(t *testing.T) {
		db, service, _, event := newAttendeeFixture(t, uintPtr(3))
		users := make([]*models.User, 8)
		for i := range users {
			users[i] = createUser(t, db, "crowd"+string(rune('a'+i)), false)
		}

		var wg sync.WaitGroup
		results := make(chan error, len(users))
		for _, u := range users {
			wg.Add(1)
			go func(userID uint, reg models.Attendee) {
				defer wg.Done()
				_, err := service.Register(ctx, userID, event.ID, reg)
				results <- err
			}(u.ID, registration(u))
		}
		wg.Wait()
		close(results)

		var succeeded int
		for err := range results {
			if err == nil {
				succeeded++
			} else if !errors.Is(err, ErrAttendeeEventFull) {
				t.Errorf("unexpected registration error: %v", err)
			}
		}
		if succeeded != 3 {
			t.Errorf("succeeded = %d, want 3", succeeded)
		}
	})
}

func TestConfirmAttendee(t *testing.T) {
	ctx := context.Background()

	t.Run("pending moves to confirmed and emails the attendee", func(t *testing.T) {
		db := newTestDB(t)
		var sent []string
		recorder := mailer.SenderFunc(func(to, subject, body string) error {
			sent = append(sent, to)
			return nil
		})
		service := NewAttendeeServiceWith(db, newTestClock(), recorder)
		organizer := createUser(t, db, "organizer", false)
		guest := createUser(t, db, "guest", false)
		event := createEvent(t, db, organizer, nil)

		attendee, err := service.Register(ctx, guest.ID, event.ID, registration(guest))
		if err != nil {
			t.Fatalf("register: %v", err)
		}

		confirmed, err := service.ConfirmAttendee(ctx, attendee.ID, organizer.ID)
		if err != nil {
			t.Fatalf("ConfirmAttendee failed: %v", err)
		}
		if confirmed.Status != models.AttendeeStatusConfirmed || confirmed.ConfirmationDate == nil {
			t.Errorf("confirmed = %s at %v", confirmed.Status, confirmed.ConfirmationDate)
		}
		if len(sent) != 1 || sent[0] != guest.Email {
			t.Errorf("confirmation mails = %v, want one to %s", sent, guest.Email)
		}
	})

	t.Run("only pending registrations can be confirmed", func(t *testing.T) {
		db, service, organizer, event := newAttendeeFixture(t, nil)
		guest := createUser(t, db, "guest", false)
		attendee := createAttendee(t, db, guest, event, models.AttendeeStatusCancelled)

		if _, err := service.ConfirmAttendee(ctx, attendee.ID, organizer.ID); !errors.Is(err, ErrAttendeeInvalidTransition) {
			t.Fatalf("expected ErrAttendeeInvalidTransition, got %v", err)
		}
	})

	t.Run("strangers cannot confirm", func(t *testing.T) {
		db, service, _, event := newAttendeeFixture(t, nil)
		guest := createUser(t, db, "guest", false)
		stranger := createUser(t, db, "stranger", false)
		attendee := createAttendee(t, db, guest, event, models.AttendeeStatusPending)

		if _, err := service.ConfirmAttendee(ctx, attendee.ID, stranger.ID); !errors.Is(err, ErrAttendeeForbidden) {
			t.Fatalf("expected ErrAttendeeForbidden, got %v", err)
		}
	})
}

func TestCancelRegistration(t *testing.T) {
	ctx := context.Background()
	db, service, organizer, event := newAttendeeFixture(t, nil)
	guest := createUser(t, db, "guest", false)

	t.Run("attendees cancel their own", func(t *testing.T) {
		attendee := createAttendee(t, db, guest, event, models.AttendeeStatusPending)
		cancelled, err := service.CancelRegistration(ctx, attendee.ID, guest.ID)
		if err != nil {
			t.Fatalf("CancelRegistration failed: %v", err)
		}
		if cancelled.Status != models.AttendeeStatusCancelled {
			t.Errorf("status = %s, want cancelled", cancelled.Status)
		}
	})

	t.Run("checked-in registrations cannot be cancelled", func(t *testing.T) {
		other := createUser(t, db, "arrived", false)
		attendee := createAttendee(t, db, other, event, models.AttendeeStatusCheckedIn)
		if _, err := service.CancelRegistration(ctx, attendee.ID, organizer.ID); !errors.Is(err, ErrAttendeeInvalidTransition) {
			t.Fatalf("expected ErrAttendeeInvalidTransition, got %v", err)
		}
	})
}

func TestMarkNoShows(t *testing.T) {
	ctx := context.Background()
	db, _, organizer, event := newAttendeeFixture(t, nil)
	pending := createUser(t, db, "pending", false)
	confirmed := createUser(t, db, "confirmed", false)
	arrived := createUser(t, db, "arrived", false)
	createAttendee(t, db, pending, event, models.AttendeeStatusPending)
	createAttendee(t, db, confirmed, event, models.AttendeeStatusConfirmed)
	checkedIn := createAttendee(t, db, arrived, event, models.AttendeeStatusCheckedIn)

	earlyService := NewAttendeeServiceWith(db, newTestClock(), mailer.Discard)
	if _, err := earlyService.MarkNoShows(ctx, event.ID, organizer.ID); !errors.Is(err, ErrAttendeeInvalidTransition) {
		t.Fatalf("expected ErrAttendeeInvalidTransition before the event ends, got %v", err)
	}

	clock := newTestClock()
	clock.Advance(20 * 24 * time.Hour)
	service := NewAttendeeServiceWith(db, clock, mailer.Discard)

	flipped, err := service.MarkNoShows(ctx, event.ID, organizer.ID)
	if err != nil {
		t.Fatalf("MarkNoShows failed: %v", err)
	}
	if flipped != 2 {
		t.Errorf("flipped = %d, want 2", flipped)
	}

	var reloaded models.Attendee
	if err := db.First(&reloaded, checkedIn.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != models.AttendeeStatusCheckedIn {
		t.Errorf("checked-in attendee was flipped to %s", reloaded.Status)
	}
}

func TestAttendeeStatistics(t *testing.T) {
	ctx := context.Background()
	db, service, organizer, event := newAttendeeFixture(t, uintPtr(10))
	for i, status := range []models.AttendeeStatus{
		models.AttendeeStatusPending,
		models.AttendeeStatusConfirmed,
		models.AttendeeStatusCheckedIn,
		models.AttendeeStatusCancelled,
	} {
		u := createUser(t, db, "stats"+string(rune('a'+i)), false)
		createAttendee(t, db, u, event, status)
	}

	stats, err := service.Statistics(ctx, event.ID, organizer.ID)
	if err != nil {
		t.Fatalf("Statistics failed: %v", err)
	}
	if stats.Total != 4 {
		t.Errorf("total = %d, want 4", stats.Total)
	}
	if stats.ByStatus[models.AttendeeStatusCheckedIn] != 1 {
		t.Errorf("checked_in count = %d, want 1", stats.ByStatus[models.AttendeeStatusCheckedIn])
	}
	if stats.CheckedInRate != 0.25 {
		t.Errorf("checked-in rate = %f, want 0.25", stats.CheckedInRate)
	}
	if stats.RemainingSeats == nil || *stats.RemainingSeats != 7 {
		t.Errorf("remaining seats = %v, want 7 (cancelled frees a seat)", stats.RemainingSeats)
	}
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	db, service, organizer, event := newAttendeeFixture(t, nil)
	guest := createUser(t, db, "guest", false)
	createAttendee(t, db, guest, event, models.AttendeeStatusConfirmed)

	out, err := service.ExportCSV(ctx, event.ID, organizer.ID)
	if err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(records))
	}
	if records[0][1] != "first_name" || records[1][1] != "Ada" {
		t.Errorf("unexpected export content: %v", records)
	}

	stranger := createUser(t, db, "nosy", false)
	if _, err := service.ExportCSV(ctx, event.ID, stranger.ID); !errors.Is(err, ErrAttendeeForbidden) {
		t.Fatalf("expected ErrAttendeeForbidden, got %v", err)
	}
}
