package models

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openModelDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "models.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&User{}, &Category{}, &Venue{}, &Event{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Time columns must survive a store/load cycle on every supported dialect;
// sqlite in particular returns them as typed values only when the schema
// leaves the column type to the driver.
func TestEventTimeColumnsRoundTrip(t *testing.T) {
	db := openModelDB(t)

	organizer := &User{Name: "Org", Email: "org@example.com", PasswordHash: "x", IsActive: true}
	category := &Category{Name: "Conference", IsActive: true}
	venue := &Venue{Name: "Main Hall", Capacity: 100, City: "Madrid", IsActive: true}
	for _, fixture := range []interface{}{organizer, category, venue} {
		if err := db.Create(fixture).Error; err != nil {
			t.Fatalf("create fixture %T: %v", fixture, err)
		}
	}

	start := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	published := start.Add(-20 * 24 * time.Hour)
	event := &Event{
		Title:             "GopherFest",
		Description:       "talks",
		CategoryID:        category.ID,
		VenueID:           venue.ID,
		OrganizerID:       organizer.ID,
		StartDate:         start,
		EndDate:           start.Add(8 * time.Hour),
		RegistrationStart: start.Add(-30 * 24 * time.Hour),
		RegistrationEnd:   start.Add(-24 * time.Hour),
		Status:            EventStatusPublished,
		IsPublished:       true,
		PublishedAt:       &published,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("create event: %v", err)
	}

	var loaded Event
	if err := db.First(&loaded, event.ID).Error; err != nil {
		t.Fatalf("reload event: %v", err)
	}
	if !loaded.StartDate.Equal(start) {
		t.Errorf("start date = %v, want %v", loaded.StartDate, start)
	}
	if !loaded.RegistrationEnd.Equal(event.RegistrationEnd) {
		t.Errorf("registration end = %v, want %v", loaded.RegistrationEnd, event.RegistrationEnd)
	}
	if loaded.PublishedAt == nil || !loaded.PublishedAt.Equal(published) {
		t.Errorf("published at = %v, want %v", loaded.PublishedAt, published)
	}
}

func TestCategoryColor(t *testing.T) {
	db := openModelDB(t)

	category := &Category{Name: "Concert", Icon: "music", Color: "#DB2777", IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	var loaded Category
	if err := db.First(&loaded, category.ID).Error; err != nil {
		t.Fatalf("reload category: %v", err)
	}
	if loaded.Color != "#DB2777" {
		t.Errorf("color = %q, want %q", loaded.Color, "#DB2777")
	}
	if loaded.Slug != "concert" {
		t.Errorf("slug = %q, want %q", loaded.Slug, "concert")
	}
}
