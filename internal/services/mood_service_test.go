package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/auralys/auralys-api/internal/models"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }

// TestCreateMoodEntry tests entry creation, the one-per-date rule and
// the consent gate
func TestCreateMoodEntry(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "mood@example.com", true)

	entry, err := CreateMoodEntry(db, user.ID, MoodEntryInput{
		Date:        "2026-08-01",
		Mood:        4,
		Notes:       "good day",
		Activity:    "running",
		SleepHours:  ptrFloat(7.5),
		StressLevel: ptrInt(2),
	})
	if err != nil {
		t.Fatalf("Failed to create mood entry: %v", err)
	}
	if entry.ID == "" {
		t.Error("Expected generated entry ID")
	}
	if !entry.Collected {
		t.Error("Expected collected flag to be set")
	}

	// Second entry for the same date
	_, err = CreateMoodEntry(db, user.ID, MoodEntryInput{Date: "2026-08-01", Mood: 2})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}

	// Another date is fine
	if _, err := CreateMoodEntry(db, user.ID, MoodEntryInput{Date: "2026-08-02", Mood: 3}); err != nil {
		t.Errorf("Expected second date to succeed, got %v", err)
	}

	// Withdrawn consent blocks creation
	noConsent := createTestUser(t, db, "noconsent@example.com", false)
	_, err = CreateMoodEntry(db, noConsent.ID, MoodEntryInput{Date: "2026-08-01", Mood: 3})
	if !errors.Is(err, ErrConsentRequired) {
		t.Errorf("Expected ErrConsentRequired, got %v", err)
	}
}

// TestListMoodEntries tests pagination and ordering
func TestListMoodEntries(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "list@example.com", true)

	for day := 1; day <= 5; day++ {
		_, err := CreateMoodEntry(db, user.ID, MoodEntryInput{
			Date: fmt.Sprintf("2026-08-%02d", day),
			Mood: day,
		})
		if err != nil {
			t.Fatalf("Failed to create entry %d: %v", day, err)
		}
	}

	entries, err := ListMoodEntries(db, user.ID, 0, 3)
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Date != "2026-08-05" {
		t.Errorf("Expected newest entry first, got %s", entries[0].Date)
	}

	entries, err = ListMoodEntries(db, user.ID, 3, 3)
	if err != nil {
		t.Fatalf("Failed to list second page: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries on second page, got %d", len(entries))
	}
}

// TestListMoodEntriesByDateRange tests the inclusive date window
func TestListMoodEntriesByDateRange(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "range@example.com", true)

	for day := 1; day <= 10; day++ {
		CreateMoodEntry(db, user.ID, MoodEntryInput{
			Date: fmt.Sprintf("2026-08-%02d", day),
			Mood: 3,
		})
	}

	entries, err := ListMoodEntriesByDateRange(db, user.ID, "2026-08-03", "2026-08-06")
	if err != nil {
		t.Fatalf("Failed to list by range: %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Expected 4 entries in range, got %d", len(entries))
	}
}

// TestGetMoodEntry tests ownership enforcement
func TestGetMoodEntry(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com", true)
	other := createTestUser(t, db, "other@example.com", true)

	entry, err := CreateMoodEntry(db, owner.ID, MoodEntryInput{Date: "2026-08-01", Mood: 4})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	got, err := GetMoodEntry(db, entry.ID, owner.ID)
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if got.ID != entry.ID {
		t.Errorf("Expected entry %s, got %s", entry.ID, got.ID)
	}

	if _, err := GetMoodEntry(db, entry.ID, other.ID); !errors.Is(err, ErrForeignEntry) {
		t.Errorf("Expected ErrForeignEntry, got %v", err)
	}
	if _, err := GetMoodEntry(db, "missing-id", owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestUpdateMoodEntry tests partial updates
func TestUpdateMoodEntry(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "update@example.com", true)

	entry, err := CreateMoodEntry(db, user.ID, MoodEntryInput{
		Date:  "2026-08-01",
		Mood:  2,
		Notes: "rough start",
	})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	updated, err := UpdateMoodEntry(db, entry.ID, user.ID, map[string]interface{}{
		"mood":  4,
		"notes": "improved",
	})
	if err != nil {
		t.Fatalf("Failed to update entry: %v", err)
	}
	if updated.Mood != 4 {
		t.Errorf("Expected mood 4, got %d", updated.Mood)
	}
	if updated.Notes != "improved" {
		t.Errorf("Expected updated notes, got %q", updated.Notes)
	}
	if updated.Date != "2026-08-01" {
		t.Errorf("Untouched field changed: %s", updated.Date)
	}
}

// TestDeleteMoodEntry tests deletion with ownership check
func TestDeleteMoodEntry(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "delete@example.com", true)

	entry, err := CreateMoodEntry(db, user.ID, MoodEntryInput{Date: "2026-08-01", Mood: 3})
	if err != nil {
		t.Fatalf("Failed to create entry: %v", err)
	}

	if err := DeleteMoodEntry(db, entry.ID, user.ID); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}

	var count int64
	db.Model(&models.MoodEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected 0 entries after delete, got %d", count)
	}

	if err := DeleteMoodEntry(db, entry.ID, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

// TestGetMoodStats tests windowed averages with nil-aware fields
func TestGetMoodStats(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "stats@example.com", true)

	today := time.Now().UTC()
	moods := []int{2, 4, 5}
	for i, mood := range moods {
		in := MoodEntryInput{
			Date: today.AddDate(0, 0, -i).Format("2006-01-02"),
			Mood: mood,
		}
		if i < 2 {
			in.SleepHours = ptrFloat(7)
			in.StressLevel = ptrInt(3)
		}
		if _, err := CreateMoodEntry(db, user.ID, in); err != nil {
			t.Fatalf("Failed to create entry: %v", err)
		}
	}

	stats, err := GetMoodStats(db, user.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get mood stats: %v", err)
	}
	if stats.TotalEntries != 3 {
		t.Errorf("Expected 3 entries, got %d", stats.TotalEntries)
	}
	if stats.AverageMood != 3.67 {
		t.Errorf("Expected average mood 3.67, got %v", stats.AverageMood)
	}
	if stats.AverageSleep == nil || *stats.AverageSleep != 7 {
		t.Errorf("Expected average sleep 7, got %v", stats.AverageSleep)
	}
	if stats.AverageStress == nil || *stats.AverageStress != 3 {
		t.Errorf("Expected average stress 3, got %v", stats.AverageStress)
	}

	// Empty window for a fresh user
	fresh := createTestUser(t, db, "fresh@example.com", true)
	stats, err = GetMoodStats(db, fresh.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get empty stats: %v", err)
	}
	if stats.TotalEntries != 0 || stats.AverageMood != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
	if stats.AverageSleep != nil || stats.AverageStress != nil {
		t.Error("Expected nil sleep and stress averages for empty window")
	}
}

// TestValidDate tests the date format guard
func TestValidDate(t *testing.T) {
	valid := []string{"2026-08-01", "2000-01-31"}
	invalid := []string{"2026-8-1", "01-08-2026", "2026-13-01", "not-a-date", ""}

	for _, s := range valid {
		if !ValidDate(s) {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if ValidDate(s) {
			t.Errorf("Expected %q to be invalid", s)
		}
	}
}
