package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/models"
)

// seedMoodDays inserts one entry per mood value, one day apart counting
// back from today (moods[0] is today)
func seedMoodDays(t *testing.T, db *gorm.DB, userID string, moods []int) {
	today := time.Now().UTC()
	for i, mood := range moods {
		entry := models.MoodEntry{
			ID:        uuid.NewString(),
			UserID:    userID,
			Date:      today.AddDate(0, 0, -i).Format("2006-01-02"),
			Mood:      mood,
			Collected: true,
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("Failed to seed mood entry: %v", err)
		}
	}
}

// TestWellnessScore tests the composite score factors
func TestWellnessScore(t *testing.T) {
	// No data at all keeps the base score
	base := wellnessScore(&MoodStats{}, &ChatStats{}, &RecommendationStats{})
	if base != 50 {
		t.Errorf("Expected base score 50, got %v", base)
	}

	// Perfect mood, heavy tracking, chatting and helpful recommendations
	top := wellnessScore(
		&MoodStats{AverageMood: 5, TotalEntries: 25},
		&ChatStats{MessagesUser: 12},
		&RecommendationStats{HelpfulnessRate: 0.8},
	)
	// 50 + 20 + 15 + 7 + 8 = 100
	if top != 100 {
		t.Errorf("Expected top score 100, got %v", top)
	}

	// Low mood drags the score below base
	low := wellnessScore(
		&MoodStats{AverageMood: 1, TotalEntries: 3},
		&ChatStats{},
		&RecommendationStats{},
	)
	// 50 + (0 - 20) = 30
	if low != 30 {
		t.Errorf("Expected low score 30, got %v", low)
	}

	// Middle tiers
	mid := wellnessScore(
		&MoodStats{AverageMood: 3, TotalEntries: 10},
		&ChatStats{MessagesUser: 5},
		&RecommendationStats{HelpfulnessRate: 0.5},
	)
	// 50 + 0 + 10 + 5 + 5 = 70
	if mid != 70 {
		t.Errorf("Expected mid score 70, got %v", mid)
	}
}

// TestMoodTrend tests slope classification
func TestMoodTrend(t *testing.T) {
	cases := []struct {
		moods []int
		want  string
	}{
		{[]int{1, 2, 3, 4, 5}, "improving"},
		{[]int{5, 4, 3, 2, 1}, "declining"},
		{[]int{3, 3, 3, 3, 3}, "stable"},
		{[]int{3, 4, 3, 4, 3}, "stable"},
		{[]int{4}, "stable"},
		{nil, "stable"},
	}
	for _, tc := range cases {
		if got := moodTrend(tc.moods); got != tc.want {
			t.Errorf("moodTrend(%v) = %q, want %q", tc.moods, got, tc.want)
		}
	}
}

// TestGetOverallStats tests composition and the no-data insight
func TestGetOverallStats(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "overall@example.com", true)
	seedMoodDays(t, db, user.ID, []int{4, 4, 4, 4, 4})
	seedChatMessages(t, db, user.ID, 4, "happy")

	stats, err := GetOverallStats(db, user.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get overall stats: %v", err)
	}
	if stats.MoodEntriesCount != 5 {
		t.Errorf("Expected 5 mood entries, got %d", stats.MoodEntriesCount)
	}
	if stats.AverageMood != 4 {
		t.Errorf("Expected average mood 4, got %v", stats.AverageMood)
	}
	if stats.ChatMessagesCount != 2 {
		t.Errorf("Expected 2 user messages, got %d", stats.ChatMessagesCount)
	}
	// 50 + (4-1)/4*40-20 + 5 + 3 = 68
	if stats.WellnessScore != 68 {
		t.Errorf("Expected wellness score 68, got %v", stats.WellnessScore)
	}
	if len(stats.Insights) == 0 {
		t.Error("Expected insights")
	}

	// A fresh user gets the onboarding insight
	fresh := createTestUser(t, db, "freshoverall@example.com", true)
	stats, err = GetOverallStats(db, fresh.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get fresh stats: %v", err)
	}
	if len(stats.Insights) != 1 || stats.Insights[0] != "Start logging your mood daily to receive personalized insights." {
		t.Errorf("Expected onboarding insight, got %v", stats.Insights)
	}
}

// TestGetWeeklyMoodTrends tests window aggregation and ordering
func TestGetWeeklyMoodTrends(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "weekly@example.com", true)
	// Improving mood over the current week
	seedMoodDays(t, db, user.ID, []int{5, 4, 3, 2, 1})

	trends, err := GetWeeklyMoodTrends(db, user.ID, 3)
	if err != nil {
		t.Fatalf("Failed to get weekly trends: %v", err)
	}
	if len(trends) != 3 {
		t.Fatalf("Expected 3 weeks, got %d", len(trends))
	}

	// Oldest week first: the last element is the current week
	current := trends[2]
	if current.EntriesCount != 5 {
		t.Errorf("Expected 5 entries in current week, got %d", current.EntriesCount)
	}
	if current.AverageMood != 3 {
		t.Errorf("Expected average mood 3, got %v", current.AverageMood)
	}
	if current.MoodTrend != "improving" {
		t.Errorf("Expected improving trend, got %q", current.MoodTrend)
	}

	// Older weeks are empty but still listed
	if trends[0].EntriesCount != 0 || trends[0].MoodTrend != "stable" {
		t.Errorf("Expected empty older week, got %+v", trends[0])
	}
	if trends[0].WeekStart >= trends[2].WeekStart {
		t.Error("Expected chronological week ordering")
	}
}

// TestGetMoodDistribution tests counts, percentages and the dominant level
func TestGetMoodDistribution(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "dist@example.com", true)
	seedMoodDays(t, db, user.ID, []int{3, 3, 3, 4, 5, 1})

	dist, err := GetMoodDistribution(db, user.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get distribution: %v", err)
	}
	if dist.TotalEntries != 6 {
		t.Errorf("Expected 6 entries, got %d", dist.TotalEntries)
	}
	if dist.Mood3Count != 3 || dist.Mood1Count != 1 || dist.Mood2Count != 0 {
		t.Errorf("Unexpected counts: %+v", dist)
	}
	if dist.Mood3Percentage != 50 {
		t.Errorf("Expected 50%% for mood 3, got %v", dist.Mood3Percentage)
	}
	if dist.Mood4Percentage != 16.7 {
		t.Errorf("Expected 16.7%% for mood 4, got %v", dist.Mood4Percentage)
	}
	if dist.MostCommonMood == nil || *dist.MostCommonMood != 3 {
		t.Errorf("Expected most common mood 3, got %v", dist.MostCommonMood)
	}

	// Empty window
	fresh := createTestUser(t, db, "freshdist@example.com", true)
	dist, err = GetMoodDistribution(db, fresh.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get empty distribution: %v", err)
	}
	if dist.TotalEntries != 0 || dist.MostCommonMood != nil {
		t.Errorf("Expected empty distribution, got %+v", dist)
	}
}

// seedFeedback inserts recommendation rows carrying feedback for one
// activity
func seedFeedback(t *testing.T, db *gorm.DB, userID, activity string, helpful []bool) {
	now := time.Now().UTC()
	for i := range helpful {
		wasHelpful := helpful[i]
		rec := models.Recommendation{
			ID:                 uuid.NewString(),
			UserID:             userID,
			SuggestedActivity:  activity,
			Timestamp:          now,
			WasHelpful:         &wasHelpful,
			RecommendationType: "mood_based",
		}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("Failed to seed feedback: %v", err)
		}
	}
}

// TestGetActivityEffectiveness tests the feedback threshold and ranking
func TestGetActivityEffectiveness(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "activities@example.com", true)

	seedFeedback(t, db, user.ID, "Take a short walk", []bool{true, true, true, false})
	seedFeedback(t, db, user.ID, "Meditate for 10 minutes", []bool{true, true, true})
	// Below the 3-feedback threshold, excluded from the ranking
	seedFeedback(t, db, user.ID, "Read a few pages of a book", []bool{true, true})

	result, err := GetActivityEffectiveness(db, user.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get activity effectiveness: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 ranked activities, got %d", len(result))
	}
	// Highest rate first
	if result[0].Activity != "Meditate for 10 minutes" {
		t.Errorf("Expected meditation ranked first, got %q", result[0].Activity)
	}
	if result[0].EffectivenessRate != 100 {
		t.Errorf("Expected 100%% effectiveness, got %v", result[0].EffectivenessRate)
	}
	if result[1].TimesRecommended != 4 || result[1].TimesHelpful != 3 {
		t.Errorf("Unexpected tally: %+v", result[1])
	}
	if result[1].EffectivenessRate != 75 {
		t.Errorf("Expected 75%% effectiveness, got %v", result[1].EffectivenessRate)
	}
}

// TestGetDailyMoodEntries tests the one-row-per-day series
func TestGetDailyMoodEntries(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "daily@example.com", true)
	seedMoodDays(t, db, user.ID, []int{4, 2})

	daily, err := GetDailyMoodEntries(db, user.ID, 7)
	if err != nil {
		t.Fatalf("Failed to get daily entries: %v", err)
	}
	if len(daily) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(daily))
	}

	// Last row is today
	today := daily[len(daily)-1]
	if today.Mood == nil || *today.Mood != 4 {
		t.Errorf("Expected mood 4 today, got %v", today.Mood)
	}
	yesterday := daily[len(daily)-2]
	if yesterday.Mood == nil || *yesterday.Mood != 2 {
		t.Errorf("Expected mood 2 yesterday, got %v", yesterday.Mood)
	}

	// Days without entries carry nil fields
	if daily[0].Mood != nil || daily[0].Stress != nil || daily[0].Sleep != nil {
		t.Errorf("Expected empty day, got %+v", daily[0])
	}
	if daily[0].Date >= daily[1].Date {
		t.Error("Expected chronological day ordering")
	}
}

// TestGetPeriodComparison tests adjacent window comparison and trends
func TestGetPeriodComparison(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "compare@example.com", true)

	// Current window (last 14 days): mood 4; previous window: mood 3
	moods := make([]int, 28)
	for i := range moods {
		if i < 14 {
			moods[i] = 4
		} else {
			moods[i] = 3
		}
	}
	seedMoodDays(t, db, user.ID, moods)

	cmp, err := GetPeriodComparison(db, user.ID, 14)
	if err != nil {
		t.Fatalf("Failed to get comparison: %v", err)
	}
	if cmp.CurrentAverageMood != 4 || cmp.PreviousAverageMood != 3 {
		t.Errorf("Unexpected averages: %+v", cmp)
	}
	if cmp.MoodChange != 1 {
		t.Errorf("Expected change 1, got %v", cmp.MoodChange)
	}
	if cmp.MoodChangePercentage != 33.3 {
		t.Errorf("Expected 33.3%% change, got %v", cmp.MoodChangePercentage)
	}
	if cmp.Trend != "much_better" {
		t.Errorf("Expected trend 'much_better', got %q", cmp.Trend)
	}

	// Either window empty yields ErrNotFound
	fresh := createTestUser(t, db, "freshcompare@example.com", true)
	if _, err := GetPeriodComparison(db, fresh.ID, 14); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// TestGetStatsOverview tests the dashboard composition
func TestGetStatsOverview(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "overview@example.com", true)
	seedMoodDays(t, db, user.ID, []int{4, 3, 5, 4})

	overview, err := GetStatsOverview(db, user.ID, 30)
	if err != nil {
		t.Fatalf("Failed to get overview: %v", err)
	}
	if overview.UserStats == nil || overview.MoodDistribution == nil {
		t.Fatal("Expected user stats and distribution")
	}
	if len(overview.WeeklyTrends) != 4 {
		t.Errorf("Expected 4 weekly trends, got %d", len(overview.WeeklyTrends))
	}
	if len(overview.DailyEntries) != 30 {
		t.Errorf("Expected 30 daily entries, got %d", len(overview.DailyEntries))
	}
	// No entries in the previous window: the comparison is omitted, not an
	// error
	if overview.PeriodComparison != nil {
		t.Error("Expected nil comparison without previous-window data")
	}
}
