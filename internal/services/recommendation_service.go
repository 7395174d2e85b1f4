package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/models"
)

// recentRecommendationWindow is how long an activity stays excluded from
// new recommendations after being suggested
const recentRecommendationWindow = 6 * time.Hour

// ActivitySuggestion is a catalog entry describing one recommendable
// activity
type ActivitySuggestion struct {
	Activity      string `json:"activity"`
	Description   string `json:"description"`
	EstimatedTime int    `json:"estimated_time"` // minutes
	MoodImpact    string `json:"mood_impact"`    // calming, positive, energizing
	Difficulty    string `json:"difficulty"`     // easy, medium, hard
	Category      string `json:"category"`       // mental, physical, social, creative
}

// activityCatalog holds activities keyed by mood level 1..5, split into
// quick wins and longer sessions
var activityCatalog = map[int]map[string][]ActivitySuggestion{
	1: {
		"immediate": {
			{"Breathe deeply for 5 minutes", "Breathing exercise to calm anxiety", 5, "calming", "easy", "mental"},
			{"Listen to gentle music", "Soothing music for comfort", 15, "calming", "easy", "mental"},
			{"Take a warm shower", "Warm water can help you relax", 15, "calming", "easy", "physical"},
		},
		"longer": {
			{"Call someone you trust", "Talking with someone can help", 30, "positive", "medium", "social"},
			{"Watch a comforting movie", "Positive distraction with familiar content", 90, "positive", "easy", "mental"},
		},
	},
	2: {
		"immediate": {
			{"Take a short walk", "Walking helps change your surroundings", 15, "positive", "easy", "physical"},
			{"Keep a gratitude journal", "Write down 3 positive things from the day", 10, "positive", "easy", "mental"},
			{"Drink a hot herbal tea", "A moment of comfort and warmth", 10, "calming", "easy", "physical"},
		},
		"longer": {
			{"Practice gentle yoga", "Stretching and relaxation for body and mind", 30, "calming", "medium", "physical"},
			{"Cook a comforting meal", "A creative and nourishing activity", 45, "positive", "medium", "creative"},
		},
	},
	3: {
		"immediate": {
			{"Meditate for 10 minutes", "A moment of centering and clarity", 10, "calming", "medium", "mental"},
			{"Organize your workspace", "A productive activity that gives a sense of control", 20, "positive", "easy", "mental"},
			{"Read a few pages of a book", "Gentle mental stimulation", 20, "positive", "easy", "mental"},
		},
		"longer": {
			{"Learn something new online", "A course or tutorial on a topic of interest", 60, "positive", "medium", "mental"},
			{"Plan a future activity", "Something to look forward to", 30, "positive", "medium", "mental"},
		},
	},
	4: {
		"immediate": {
			{"Share your joy with a friend", "A message or call to share good news", 15, "positive", "easy", "social"},
			{"Dance to your favorite music", "Express your joy through movement", 10, "energizing", "easy", "physical"},
			{"Give someone a compliment", "Spread positivity around you", 5, "positive", "easy", "social"},
		},
		"longer": {
			{"Start a creative project", "Channel positive energy into creation", 60, "positive", "medium", "creative"},
			{"Plan an outing with friends", "Organize an enjoyable social moment", 30, "positive", "medium", "social"},
		},
	},
	5: {
		"immediate": {
			{"Do some energetic exercise", "Channel positive energy into sport", 30, "energizing", "medium", "physical"},
			{"Help someone in need", "Use your positivity to help others", 30, "positive", "medium", "social"},
			{"Take photos of happy moments", "Capture and preserve these good moments", 15, "positive", "easy", "creative"},
		},
		"longer": {
			{"Organize a surprise for someone", "Share your joy by creating happiness for others", 120, "positive", "hard", "social"},
			{"Start a new hobby", "Use positive energy to explore new interests", 90, "positive", "medium", "creative"},
		},
	},
}

// RecommendationRequest carries the inputs of a generate call. Either
// MoodID or MoodLevel must be set.
type RecommendationRequest struct {
	MoodID        *string `json:"mood_id"`
	MoodLevel     *int    `json:"mood_level"`
	TimeAvailable int     `json:"time_available"` // minutes, default 30
}

// ErrMissingMoodInput is returned when neither mood_id nor mood_level is
// given
var ErrMissingMoodInput = errors.New("either mood_id or mood_level must be provided")

// GenerateRecommendations picks up to 3 diverse activities for a user's
// mood and persists one recommendation row per pick
func GenerateRecommendations(db *gorm.DB, userID string, req RecommendationRequest) ([]models.Recommendation, error) {
	if err := RequireConsent(db, userID); err != nil {
		return nil, err
	}

	var moodLevel int
	switch {
	case req.MoodID != nil && *req.MoodID != "":
		var entry models.MoodEntry
		if err := db.First(&entry, "id = ?", *req.MoodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if entry.UserID != userID {
			return nil, ErrNotFound
		}
		moodLevel = entry.Mood
	case req.MoodLevel != nil:
		moodLevel = *req.MoodLevel
	default:
		return nil, ErrMissingMoodInput
	}

	timeAvailable := req.TimeAvailable
	if timeAvailable <= 0 {
		timeAvailable = 30
	}

	// Exclude activities already suggested within the dedup window
	cutoff := time.Now().UTC().Add(-recentRecommendationWindow)
	var recent []models.Recommendation
	if err := db.Where("user_id = ? AND timestamp >= ?", userID, cutoff).Find(&recent).Error; err != nil {
		return nil, err
	}
	recentActivities := map[string]bool{}
	for _, r := range recent {
		recentActivities[r.SuggestedActivity] = true
	}

	activities := activitiesForMood(moodLevel, timeAvailable)

	available := make([]ActivitySuggestion, 0, len(activities))
	for _, a := range activities {
		if !recentActivities[a.Activity] {
			available = append(available, a)
		}
	}
	if len(available) == 0 {
		if len(activities) > 2 {
			available = activities[:2]
		} else {
			available = activities
		}
	}

	count := 3
	if len(available) < count {
		count = len(available)
	}
	selected := selectDiverseActivities(available, count)

	recommendations := make([]models.Recommendation, 0, len(selected))
	now := time.Now().UTC()
	for _, activity := range selected {
		rec := models.Recommendation{
			ID:                 uuid.NewString(),
			UserID:             userID,
			MoodID:             req.MoodID,
			SuggestedActivity:  activity.Activity,
			Timestamp:          now,
			RecommendationType: "mood_based",
			ConfidenceScore:    confidenceScore(moodLevel, activity),
		}
		if err := db.Create(&rec).Error; err != nil {
			return nil, err
		}
		recommendations = append(recommendations, rec)
	}
	return recommendations, nil
}

// activitiesForMood returns the catalog slice matching a mood level and
// available time. Short windows stay within the immediate bucket.
func activitiesForMood(moodLevel, timeAvailable int) []ActivitySuggestion {
	buckets, ok := activityCatalog[moodLevel]
	if !ok {
		buckets = activityCatalog[3]
	}

	var activities []ActivitySuggestion
	if timeAvailable <= 20 {
		activities = append(activities, buckets["immediate"]...)
	} else {
		activities = append(activities, buckets["immediate"]...)
		activities = append(activities, buckets["longer"]...)
	}

	suitable := make([]ActivitySuggestion, 0, len(activities))
	for _, a := range activities {
		if a.EstimatedTime <= timeAvailable {
			suitable = append(suitable, a)
		}
	}
	if len(suitable) == 0 {
		if len(activities) > 2 {
			return activities[:2]
		}
		return activities
	}
	return suitable
}

// selectDiverseActivities prefers one activity per category before filling
// the remainder in catalog order
func selectDiverseActivities(activities []ActivitySuggestion, count int) []ActivitySuggestion {
	if len(activities) <= count {
		return activities
	}

	selected := make([]ActivitySuggestion, 0, count)
	used := map[string]bool{}
	picked := map[string]bool{}

	for _, a := range activities {
		if !used[a.Category] && len(selected) < count {
			selected = append(selected, a)
			used[a.Category] = true
			picked[a.Activity] = true
		}
	}
	for _, a := range activities {
		if len(selected) >= count {
			break
		}
		if !picked[a.Activity] {
			selected = append(selected, a)
			picked[a.Activity] = true
		}
	}
	return selected
}

// confidenceScore starts at 0.7 and rewards mood/impact fit and easy
// activities, capped at 1.0
func confidenceScore(moodLevel int, activity ActivitySuggestion) float64 {
	score := 0.7
	if moodLevel <= 2 {
		if activity.MoodImpact == "calming" {
			score += 0.2
		}
	} else if moodLevel >= 4 {
		if activity.MoodImpact == "positive" || activity.MoodImpact == "energizing" {
			score += 0.2
		}
	}
	if activity.Difficulty == "easy" {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return round2(score)
}

// ListRecommendations returns a user's recommendations newest-first
func ListRecommendations(db *gorm.DB, userID string, skip, limit int) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	err := db.Where("user_id = ?", userID).
		Order("timestamp desc").
		Offset(skip).Limit(limit).
		Find(&recs).Error
	return recs, err
}

// GetRecommendation fetches one recommendation with an ownership check
func GetRecommendation(db *gorm.DB, recID, userID string) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := db.First(&rec, "id = ?", recID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrForeignEntry
	}
	return &rec, nil
}

// UpdateRecommendationFeedback records whether a recommendation helped
func UpdateRecommendationFeedback(db *gorm.DB, recID, userID string, wasHelpful bool) (*models.Recommendation, error) {
	rec, err := GetRecommendation(db, recID, userID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(rec).Update("was_helpful", wasHelpful).Error; err != nil {
		return nil, err
	}
	return GetRecommendation(db, recID, userID)
}

// RecommendationStats aggregates recommendation feedback over a window
type RecommendationStats struct {
	TotalRecommendations    int     `json:"total_recommendations"`
	HelpfulCount            int     `json:"helpful_count"`
	NotHelpfulCount         int     `json:"not_helpful_count"`
	PendingFeedback         int     `json:"pending_feedback"`
	HelpfulnessRate         float64 `json:"helpfulness_rate"`
	MostRecommendedActivity *string `json:"most_recommended_activity"`
	PeriodStart             string  `json:"period_start"`
	PeriodEnd               string  `json:"period_end"`
}

// GetRecommendationStats computes feedback counts and the helpfulness rate
// over rows that received feedback
func GetRecommendationStats(db *gorm.DB, userID string, days int) (*RecommendationStats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var recs []models.Recommendation
	err := db.Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start, end).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	stats := &RecommendationStats{
		PeriodStart: end.AddDate(0, 0, -(days - 1)).Format(dateLayout),
		PeriodEnd:   end.Format(dateLayout),
	}

	activityCounts := map[string]int{}
	for _, rec := range recs {
		stats.TotalRecommendations++
		activityCounts[rec.SuggestedActivity]++
		switch {
		case rec.WasHelpful == nil:
			stats.PendingFeedback++
		case *rec.WasHelpful:
			stats.HelpfulCount++
		default:
			stats.NotHelpfulCount++
		}
	}

	if withFeedback := stats.HelpfulCount + stats.NotHelpfulCount; withFeedback > 0 {
		stats.HelpfulnessRate = round2(float64(stats.HelpfulCount) / float64(withFeedback))
	}

	best, bestCount := "", 0
	for activity, count := range activityCounts {
		if count > bestCount || (count == bestCount && activity < best) {
			best, bestCount = activity, count
		}
	}
	if best != "" {
		stats.MostRecommendedActivity = &best
	}
	return stats, nil
}
