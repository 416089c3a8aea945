package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"festgo.app/models"
	"festgo.app/pkg/mailer"

	"gorm.io/gorm"
)

func newTicketFixture(t *testing.T) (*gorm.DB, ITicketService, *models.User, *models.Event, *models.TicketType) {
	t.Helper()
	db := newTestDB(t)
	service := NewTicketServiceWith(db, newTestClock(), mailer.Discard)
	organizer := createUser(t, db, "organizer", false)
	buyer := createUser(t, db, "buyer", false)
	event := createEvent(t, db, organizer, nil)
	tt := createTicketType(t, db, event, 100, 50, 5)
	return db, service, buyer, event, tt
}

func TestPurchaseTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("creates one ticket per seat at the same price", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)

		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 3})
		if err != nil {
			t.Fatalf("PurchaseTickets failed: %v", err)
		}
		if len(tickets) != 3 {
			t.Fatalf("expected 3 tickets, got %d", len(tickets))
		}
		for _, ticket := range tickets {
			if ticket.Status != models.TicketStatusPaid {
				t.Errorf("ticket %d status = %s, want paid", ticket.ID, ticket.Status)
			}
			if ticket.TicketCode == "" {
				t.Errorf("ticket %d has no code", ticket.ID)
			}
			if !ticket.FinalPrice.Equal(decFromInt(100)) {
				t.Errorf("ticket %d final price = %s, want 100", ticket.ID, ticket.FinalPrice)
			}
		}

		var reloaded models.TicketType
		if err := db.First(&reloaded, tt.ID).Error; err != nil {
			t.Fatalf("reload ticket type: %v", err)
		}
		if reloaded.QuantitySold != 3 {
			t.Errorf("quantity sold = %d, want 3", reloaded.QuantitySold)
		}
	})

	t.Run("rejects orders beyond remaining stock", func(t *testing.T) {
		db, service, buyer, event, _ := newTicketFixture(t)
		small := createTicketType(t, db, event, 50, 2, 10)

		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: small.ID, Quantity: 3}); !errors.Is(err, ErrTicketInsufficientStock) {
			t.Fatalf("expected ErrTicketInsufficientStock, got %v", err)
		}

		var reloaded models.TicketType
		if err := db.First(&reloaded, small.ID).Error; err != nil {
			t.Fatalf("reload ticket type: %v", err)
		}
		if reloaded.QuantitySold != 0 {
			t.Errorf("failed order must not consume stock, sold = %d", reloaded.QuantitySold)
		}
	})

	t.Run("rejects orders beyond the per-order limit", func(t *testing.T) {
		_, service, buyer, _, tt := newTicketFixture(t)
		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 6}); !errors.Is(err, ErrTicketMaxPerOrder) {
			t.Fatalf("expected ErrTicketMaxPerOrder, got %v", err)
		}
	})

	t.Run("rejects a type outside its sale window", func(t *testing.T) {
		db, service, buyer, event, _ := newTicketFixture(t)
		expired := &models.TicketType{
			EventID:           event.ID,
			Name:              "Early bird",
			Price:             decFromInt(60),
			QuantityAvailable: 10,
			MaxPerOrder:       5,
			SaleStart:         testNow.Add(-48 * time.Hour),
			SaleEnd:           testNow.Add(-24 * time.Hour),
			IsActive:          true,
		}
		mustCreate(t, db, expired)

		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: expired.ID, Quantity: 1}); !errors.Is(err, ErrTicketTypeNotOnSale) {
			t.Fatalf("expected ErrTicketTypeNotOnSale, got %v", err)
		}
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		_, service, buyer, _, tt := newTicketFixture(t)
		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID}); !errors.Is(err, ErrTicketInvalidQuantity) {
			t.Fatalf("expected ErrTicketInvalidQuantity, got %v", err)
		}
	})

	t.Run("concurrent orders never oversell", func(t *testing.T) {
		db, service, _, event, _ := newTicketFixture(t)
		scarce := createTicketType(t, db, event, 80, 5, 1)

		buyers := make([]*models.User, 10)
		for i := range buyers {
			buyers[i] = createUser(t, db, "rival"+string(rune('a'+i)), false)
		}

		var wg sync.WaitGroup
		results := make(chan error, len(buyers))
		for _, b := range buyers {
			wg.Add(1)
			go func(buyerID uint) {
				defer wg.Done()
				_, err := service.PurchaseTickets(ctx, buyerID, PurchaseRequest{TicketTypeID: scarce.ID, Quantity: 1})
				results <- err
			}(b.ID)
		}
		wg.Wait()
		close(results)

		var succeeded, rejected int
		for err := range results {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrTicketInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected purchase error: %v", err)
			}
		}
		if succeeded != 5 || rejected != 5 {
			t.Errorf("succeeded=%d rejected=%d, want 5/5", succeeded, rejected)
		}

		var reloaded models.TicketType
		if err := db.First(&reloaded, scarce.ID).Error; err != nil {
			t.Fatalf("reload ticket type: %v", err)
		}
		if reloaded.QuantitySold != 5 {
			t.Errorf("quantity sold = %d, want 5", reloaded.QuantitySold)
		}
	})
}

func TestPurchaseTicketsWithDiscount(t *testing.T) {
	ctx := context.Background()

	newCode := func(t *testing.T, db *gorm.DB, code string, kind models.DiscountType, value int64, maxUses *uint) *models.DiscountCode {
		t.Helper()
		dc := &models.DiscountCode{
			Code:          code,
			DiscountType:  kind,
			DiscountValue: decFromInt(value),
			MaxUses:       maxUses,
			ValidFrom:     testNow.Add(-time.Hour),
			ValidUntil:    testNow.Add(time.Hour),
			IsActive:      true,
		}
		mustCreate(t, db, dc)
		return dc
	}

	t.Run("percentage discount applies per ticket and redeems once per order", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		newCode(t, db, "SAVE20", models.DiscountTypePercentage, 20, nil)

		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{
			TicketTypeID: tt.ID, Quantity: 2, DiscountCode: "SAVE20",
		})
		if err != nil {
			t.Fatalf("PurchaseTickets failed: %v", err)
		}
		for _, ticket := range tickets {
			if !ticket.DiscountApplied.Equal(decFromInt(20)) {
				t.Errorf("discount applied = %s, want 20", ticket.DiscountApplied)
			}
			if !ticket.FinalPrice.Equal(decFromInt(80)) {
				t.Errorf("final price = %s, want 80", ticket.FinalPrice)
			}
		}

		var reloaded models.DiscountCode
		if err := db.Where("code = ?", "SAVE20").First(&reloaded).Error; err != nil {
			t.Fatalf("reload code: %v", err)
		}
		if reloaded.TimesUsed != 1 {
			t.Errorf("times used = %d, want 1 per order", reloaded.TimesUsed)
		}
	})

	t.Run("fixed discount larger than the price clamps to free", func(t *testing.T) {
		db, service, buyer, event, _ := newTicketFixture(t)
		cheap := createTicketType(t, db, event, 30, 10, 5)
		newCode(t, db, "BIGFIX", models.DiscountTypeFixed, 50, nil)

		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{
			TicketTypeID: cheap.ID, Quantity: 1, DiscountCode: "BIGFIX",
		})
		if err != nil {
			t.Fatalf("PurchaseTickets failed: %v", err)
		}
		if !tickets[0].FinalPrice.IsZero() {
			t.Errorf("final price = %s, want 0", tickets[0].FinalPrice)
		}
		if !tickets[0].DiscountApplied.Equal(decFromInt(30)) {
			t.Errorf("discount applied = %s, want clamped to 30", tickets[0].DiscountApplied)
		}
	})

	t.Run("exhausted code is rejected even inside its window", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		code := newCode(t, db, "USEDUP", models.DiscountTypePercentage, 10, uintPtr(3))
		if err := db.Model(code).Update("times_used", 3).Error; err != nil {
			t.Fatalf("set usage: %v", err)
		}

		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{
			TicketTypeID: tt.ID, Quantity: 1, DiscountCode: "USEDUP",
		}); !errors.Is(err, ErrDiscountNotValid) {
			t.Fatalf("expected ErrDiscountNotValid, got %v", err)
		}
	})

	t.Run("code scoped to another event is not applicable", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		otherOrganizer := createUser(t, db, "other-org", false)
		otherEvent := createEvent(t, db, otherOrganizer, nil)
		dc := newCode(t, db, "ELSEWHERE", models.DiscountTypePercentage, 15, nil)
		if err := db.Model(dc).Update("event_id", otherEvent.ID).Error; err != nil {
			t.Fatalf("scope code: %v", err)
		}

		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{
			TicketTypeID: tt.ID, Quantity: 1, DiscountCode: "ELSEWHERE",
		}); !errors.Is(err, ErrDiscountNotApplicable) {
			t.Fatalf("expected ErrDiscountNotApplicable, got %v", err)
		}
	})

	t.Run("unknown code is rejected", func(t *testing.T) {
		_, service, buyer, _, tt := newTicketFixture(t)
		if _, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{
			TicketTypeID: tt.ID, Quantity: 1, DiscountCode: "NOPE",
		}); !errors.Is(err, ErrDiscountNotFound) {
			t.Fatalf("expected ErrDiscountNotFound, got %v", err)
		}
	})
}

func TestVerifyDiscount(t *testing.T) {
	ctx := context.Background()
	db, service, _, _, tt := newTicketFixture(t)

	dc := &models.DiscountCode{
		Code:          "QUOTE25",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: decFromInt(25),
		ValidFrom:     testNow.Add(-time.Hour),
		ValidUntil:    testNow.Add(time.Hour),
		IsActive:      true,
	}
	mustCreate(t, db, dc)

	quote, err := service.VerifyDiscount(ctx, "QUOTE25", tt.ID)
	if err != nil {
		t.Fatalf("VerifyDiscount failed: %v", err)
	}
	if !quote.DiscountApplied.Equal(decFromInt(25)) || !quote.FinalPrice.Equal(decFromInt(75)) {
		t.Errorf("quote = %s off, final %s; want 25 off, final 75", quote.DiscountApplied, quote.FinalPrice)
	}

	// Quoting must not redeem.
	var reloaded models.DiscountCode
	if err := db.First(&reloaded, dc.ID).Error; err != nil {
		t.Fatalf("reload code: %v", err)
	}
	if reloaded.TimesUsed != 0 {
		t.Errorf("VerifyDiscount consumed a use: times_used = %d", reloaded.TimesUsed)
	}
}

func TestCancelTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the seat to inventory", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 2})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		cancelled, err := service.CancelTicket(ctx, tickets[0].ID, buyer.ID, "cannot attend")
		if err != nil {
			t.Fatalf("CancelTicket failed: %v", err)
		}
		if cancelled.Status != models.TicketStatusCancelled || cancelled.CancelledAt == nil {
			t.Errorf("cancelled ticket status = %s, at = %v", cancelled.Status, cancelled.CancelledAt)
		}

		var reloaded models.TicketType
		if err := db.First(&reloaded, tt.ID).Error; err != nil {
			t.Fatalf("reload ticket type: %v", err)
		}
		if reloaded.QuantitySold != 1 {
			t.Errorf("quantity sold = %d after cancel, want 1", reloaded.QuantitySold)
		}
	})

	t.Run("double cancel is a conflict", func(t *testing.T) {
		_, service, buyer, _, tt := newTicketFixture(t)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}
		if _, err := service.CancelTicket(ctx, tickets[0].ID, buyer.ID, ""); err != nil {
			t.Fatalf("first cancel: %v", err)
		}
		if _, err := service.CancelTicket(ctx, tickets[0].ID, buyer.ID, ""); !errors.Is(err, ErrTicketAlreadyCancelled) {
			t.Fatalf("expected ErrTicketAlreadyCancelled, got %v", err)
		}
	})

	t.Run("strangers cannot cancel, staff can", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		stranger := createUser(t, db, "stranger", false)
		staff := createUser(t, db, "staff", true)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		if _, err := service.CancelTicket(ctx, tickets[0].ID, stranger.ID, ""); !errors.Is(err, ErrTicketForbidden) {
			t.Fatalf("expected ErrTicketForbidden, got %v", err)
		}
		if _, err := service.CancelTicket(ctx, tickets[0].ID, staff.ID, "refund requested"); err != nil {
			t.Fatalf("staff cancel failed: %v", err)
		}
	})
}

func TestValidateAndUseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("paid ticket validates and can be consumed by the organizer", func(t *testing.T) {
		db, service, buyer, event, tt := newTicketFixture(t)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		if _, err := service.ValidateTicket(ctx, tickets[0].TicketCode); err != nil {
			t.Fatalf("ValidateTicket failed: %v", err)
		}

		used, err := service.MarkTicketUsed(ctx, tickets[0].ID, event.OrganizerID)
		if err != nil {
			t.Fatalf("MarkTicketUsed failed: %v", err)
		}
		if used.Status != models.TicketStatusUsed || used.UsedAt == nil {
			t.Errorf("used ticket status = %s, at = %v", used.Status, used.UsedAt)
		}

		if _, err := service.ValidateTicket(ctx, tickets[0].TicketCode); !errors.Is(err, ErrTicketAlreadyUsed) {
			t.Errorf("expected ErrTicketAlreadyUsed after use, got %v", err)
		}
		var count int64
		db.Model(&models.Ticket{}).Where("status = ?", models.TicketStatusUsed).Count(&count)
		if count != 1 {
			t.Errorf("used ticket rows = %d, want 1", count)
		}
	})

	t.Run("non-organizer cannot consume tickets", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		stranger := createUser(t, db, "door-crasher", false)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}
		if _, err := service.MarkTicketUsed(ctx, tickets[0].ID, stranger.ID); !errors.Is(err, ErrTicketForbidden) {
			t.Fatalf("expected ErrTicketForbidden, got %v", err)
		}
	})

	t.Run("ticket for an ended event does not grant entry", func(t *testing.T) {
		db, _, buyer, _, tt := newTicketFixture(t)
		clock := newTestClock()
		service := NewTicketServiceWith(db, clock, mailer.Discard)
		tickets, err := service.PurchaseTickets(context.Background(), buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		clock.Advance(20 * 24 * time.Hour)
		if _, err := service.ValidateTicket(context.Background(), tickets[0].TicketCode); !errors.Is(err, ErrTicketEventEnded) {
			t.Fatalf("expected ErrTicketEventEnded, got %v", err)
		}
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, service, _, _, _ := newTicketFixture(t)
		if _, err := service.ValidateTicket(ctx, "no-such-code"); !errors.Is(err, ErrTicketNotFound) {
			t.Fatalf("expected ErrTicketNotFound, got %v", err)
		}
	})
}

func TestAssignTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("links the ticket to the buyer's registration", func(t *testing.T) {
		db, service, buyer, event, tt := newTicketFixture(t)
		attendee := createAttendee(t, db, buyer, event, models.AttendeeStatusConfirmed)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		assigned, err := service.AssignTicket(ctx, tickets[0].ID, attendee.ID, buyer.ID)
		if err != nil {
			t.Fatalf("AssignTicket failed: %v", err)
		}
		if assigned.AttendeeID == nil || *assigned.AttendeeID != attendee.ID {
			t.Errorf("attendee link = %v, want %d", assigned.AttendeeID, attendee.ID)
		}
	})

	t.Run("rejects a registration for a different event", func(t *testing.T) {
		db, service, buyer, _, tt := newTicketFixture(t)
		otherOrganizer := createUser(t, db, "other-organizer", false)
		otherEvent := createEvent(t, db, otherOrganizer, nil)
		attendee := createAttendee(t, db, buyer, otherEvent, models.AttendeeStatusConfirmed)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}
		if _, err := service.AssignTicket(ctx, tickets[0].ID, attendee.ID, buyer.ID); !errors.Is(err, ErrTicketInvalidInput) {
			t.Fatalf("expected ErrTicketInvalidInput, got %v", err)
		}
	})

	t.Run("does not silently reassign", func(t *testing.T) {
		db, service, buyer, event, tt := newTicketFixture(t)
		first := createAttendee(t, db, buyer, event, models.AttendeeStatusConfirmed)
		other := createUser(t, db, "plus-one", false)
		second := createAttendee(t, db, other, event, models.AttendeeStatusConfirmed)
		tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 1})
		if err != nil {
			t.Fatalf("purchase: %v", err)
		}

		if _, err := service.AssignTicket(ctx, tickets[0].ID, first.ID, buyer.ID); err != nil {
			t.Fatalf("first assignment: %v", err)
		}
		if _, err := service.AssignTicket(ctx, tickets[0].ID, second.ID, buyer.ID); !errors.Is(err, ErrTicketInvalidInput) {
			t.Fatalf("expected ErrTicketInvalidInput on reassign, got %v", err)
		}
	})
}

func TestSalesStats(t *testing.T) {
	ctx := context.Background()
	db, service, buyer, event, tt := newTicketFixture(t)

	tickets, err := service.PurchaseTickets(ctx, buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := service.CancelTicket(ctx, tickets[2].ID, buyer.ID, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := service.MarkTicketUsed(ctx, tickets[0].ID, event.OrganizerID); err != nil {
		t.Fatalf("use: %v", err)
	}

	stats, err := service.SalesStats(ctx, event.ID, event.OrganizerID)
	if err != nil {
		t.Fatalf("SalesStats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected stats for 1 type, got %d", len(stats))
	}
	st := stats[0]
	if st.TicketsIssued != 2 || st.TicketsUsed != 1 || st.TicketsCancelled != 1 {
		t.Errorf("issued/used/cancelled = %d/%d/%d, want 2/1/1", st.TicketsIssued, st.TicketsUsed, st.TicketsCancelled)
	}
	if !st.GrossRevenue.Equal(decFromInt(200)) {
		t.Errorf("gross revenue = %s, want 200", st.GrossRevenue)
	}

	stranger := createUser(t, db, "nosy", false)
	if _, err := service.SalesStats(ctx, event.ID, stranger.ID); !errors.Is(err, ErrEventForbidden) {
		t.Fatalf("expected ErrEventForbidden, got %v", err)
	}
}

func TestCreateDiscountCode(t *testing.T) {
	ctx := context.Background()
	db, service, buyer, event, _ := newTicketFixture(t)
	staff := createUser(t, db, "admin", true)

	t.Run("organizer can scope a code to their event", func(t *testing.T) {
		code, err := service.CreateDiscountCode(ctx, event.OrganizerID, models.DiscountCode{
			Code:          "  promo10  ",
			DiscountType:  models.DiscountTypePercentage,
			DiscountValue: decFromInt(10),
			EventID:       &event.ID,
			ValidFrom:     testNow,
			ValidUntil:    testNow.Add(24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("CreateDiscountCode failed: %v", err)
		}
		if code.Code != "PROMO10" {
			t.Errorf("code normalized to %q, want PROMO10", code.Code)
		}
	})

	t.Run("global codes are staff only", func(t *testing.T) {
		template := models.DiscountCode{
			Code:          "GLOBAL5",
			DiscountType:  models.DiscountTypeFixed,
			DiscountValue: decFromInt(5),
			ValidFrom:     testNow,
			ValidUntil:    testNow.Add(24 * time.Hour),
		}
		if _, err := service.CreateDiscountCode(ctx, buyer.ID, template); !errors.Is(err, ErrEventForbidden) {
			t.Fatalf("expected ErrEventForbidden, got %v", err)
		}
		if _, err := service.CreateDiscountCode(ctx, staff.ID, template); err != nil {
			t.Fatalf("staff create failed: %v", err)
		}
	})

	t.Run("percentage over 100 is rejected", func(t *testing.T) {
		if _, err := service.CreateDiscountCode(ctx, staff.ID, models.DiscountCode{
			Code:          "TOOMUCH",
			DiscountType:  models.DiscountTypePercentage,
			DiscountValue: decFromInt(150),
			ValidFrom:     testNow,
			ValidUntil:    testNow.Add(24 * time.Hour),
		}); !errors.Is(err, ErrTicketInvalidInput) {
			t.Fatalf("expected ErrTicketInvalidInput, got %v", err)
		}
	})
}

func TestPurchaseSendsConfirmation(t *testing.T) {
	db := newTestDB(t)
	var sent []string
	recorder := mailer.SenderFunc(func(to, subject, body string) error {
		sent = append(sent, to)
		return nil
	})
	service := NewTicketServiceWith(db, newTestClock(), recorder)

	organizer := createUser(t, db, "organizer", false)
	buyer := createUser(t, db, "buyer", false)
	event := createEvent(t, db, organizer, nil)
	tt := createTicketType(t, db, event, 100, 10, 5)

	if _, err := service.PurchaseTickets(context.Background(), buyer.ID, PurchaseRequest{TicketTypeID: tt.ID, Quantity: 2}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if len(sent) != 1 || sent[0] != buyer.Email {
		t.Errorf("confirmation emails = %v, want one to %s", sent, buyer.Email)
	}
}
