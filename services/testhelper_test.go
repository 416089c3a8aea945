package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"festgo.app/models"

	"github.com/glebarez/sqlite"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testNow is the frozen instant every test clock starts at.
var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestDB opens a fresh sqlite database in the test's temp dir with the
// full schema. A single connection makes concurrent transactions queue the
// way Postgres row locks do.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{}, &models.Venue{}, &models.Event{},
		&models.TicketType{}, &models.DiscountCode{}, &models.Ticket{},
		&models.Attendee{}, &models.CheckInLog{},
		&models.Survey{}, &models.SurveyQuestion{}, &models.SurveyResponse{},
		&models.SponsorTier{}, &models.Sponsor{}, &models.Sponsorship{}, &models.SponsorBenefit{},
	)
	if err != nil {
		t.Fatalf("migrate test schema: %v", err)
	}
	return db
}

func newTestClock() clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testNow)
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.WithContext(context.Background()).Create(value).Error; err != nil {
		t.Fatalf("create fixture %T: %v", value, err)
	}
}

func createUser(t *testing.T, db *gorm.DB, name string, isStaff bool) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		IsStaff:      isStaff,
		IsActive:     true,
	}
	mustCreate(t, db, user)
	return user
}

// fixtureSeq distinguishes fixtures created more than once within a test,
// since category, venue and event names carry unique indexes.
var fixtureSeq atomic.Int64

func fixtureName(t *testing.T, prefix string) string {
	return fmt.Sprintf("%s %s %d", prefix, t.Name(), fixtureSeq.Add(1))
}

// createEvent builds a published event with open registration around testNow.
func createEvent(t *testing.T, db *gorm.DB, organizer *models.User, maxAttendees *uint) *models.Event {
	t.Helper()
	category := &models.Category{Name: fixtureName(t, "Conference"), IsActive: true}
	mustCreate(t, db, category)
	venue := &models.Venue{Name: fixtureName(t, "Hall"), Capacity: 5000, City: "Madrid", IsActive: true}
	mustCreate(t, db, venue)

	event := &models.Event{
		Title:             fixtureName(t, "Event"),
		Description:       "test event",
		CategoryID:        category.ID,
		VenueID:           venue.ID,
		OrganizerID:       organizer.ID,
		StartDate:         testNow.Add(15 * 24 * time.Hour),
		EndDate:           testNow.Add(16 * 24 * time.Hour),
		RegistrationStart: testNow.Add(-30 * 24 * time.Hour),
		RegistrationEnd:   testNow.Add(10 * 24 * time.Hour),
		MaxAttendees:      maxAttendees,
		Status:            models.EventStatusPublished,
		IsPublished:       true,
	}
	mustCreate(t, db, event)
	return event
}

// createTicketType builds an on-sale type with the given capacity.
func createTicketType(t *testing.T, db *gorm.DB, event *models.Event, price int64, available uint, maxPerOrder uint) *models.TicketType {
	t.Helper()
	tt := &models.TicketType{
		EventID:           event.ID,
		Name:              fixtureName(t, "General"),
		Price:             decimal.NewFromInt(price),
		QuantityAvailable: available,
		MaxPerOrder:       maxPerOrder,
		SaleStart:         testNow.Add(-10 * 24 * time.Hour),
		SaleEnd:           testNow.Add(10 * 24 * time.Hour),
		IsActive:          true,
	}
	mustCreate(t, db, tt)
	return tt
}

func createAttendee(t *testing.T, db *gorm.DB, user *models.User, event *models.Event, status models.AttendeeStatus) *models.Attendee {
	t.Helper()
	attendee := &models.Attendee{
		UserID:           user.ID,
		EventID:          event.ID,
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Email:            user.Email,
		Status:           status,
		RegistrationDate: testNow.Add(-24 * time.Hour),
	}
	mustCreate(t, db, attendee)
	return attendee
}

func uintPtr(v uint) *uint { return &v }

func decFromInt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
