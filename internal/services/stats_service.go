package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/models"
)

// OverallStats is the composite wellness report for one user over a window
type OverallStats struct {
	PeriodStart             string   `json:"period_start"`
	PeriodEnd               string   `json:"period_end"`
	MoodEntriesCount        int      `json:"mood_entries_count"`
	AverageMood             float64  `json:"average_mood"`
	AverageSleep            *float64 `json:"average_sleep"`
	AverageStress           *float64 `json:"average_stress"`
	ChatMessagesCount       int      `json:"chat_messages_count"`
	RecommendationsReceived int      `json:"recommendations_received"`
	RecommendationsHelpful  int      `json:"recommendations_helpful"`
	WellnessScore           float64  `json:"wellness_score"`
	Insights                []string `json:"insights"`
}

// GetOverallStats combines mood, chat, and recommendation aggregates into
// one report with a wellness score and insights
func GetOverallStats(db *gorm.DB, userID string, days int) (*OverallStats, error) {
	moodStats, err := GetMoodStats(db, userID, days)
	if err != nil {
		return nil, err
	}
	chatStats, err := GetChatStats(db, userID, days)
	if err != nil {
		return nil, err
	}
	recoStats, err := GetRecommendationStats(db, userID, days)
	if err != nil {
		return nil, err
	}
	insights, err := wellnessInsights(db, userID, days)
	if err != nil {
		return nil, err
	}

	return &OverallStats{
		PeriodStart:             moodStats.PeriodStart,
		PeriodEnd:               moodStats.PeriodEnd,
		MoodEntriesCount:        moodStats.TotalEntries,
		AverageMood:             moodStats.AverageMood,
		AverageSleep:            moodStats.AverageSleep,
		AverageStress:           moodStats.AverageStress,
		ChatMessagesCount:       chatStats.MessagesUser,
		RecommendationsReceived: recoStats.TotalRecommendations,
		RecommendationsHelpful:  recoStats.HelpfulCount,
		WellnessScore:           wellnessScore(moodStats, chatStats, recoStats),
		Insights:                insights,
	}, nil
}

// wellnessScore computes the 0..100 composite score: base 50, mood factor,
// tracking regularity, chat engagement, and recommendation helpfulness
func wellnessScore(mood *MoodStats, chat *ChatStats, reco *RecommendationStats) float64 {
	score := 50.0

	if mood.AverageMood > 0 {
		moodScore := (mood.AverageMood - 1) / 4 * 40
		score += moodScore - 20
	}

	switch {
	case mood.TotalEntries >= 20:
		score += 15
	case mood.TotalEntries >= 10:
		score += 10
	case mood.TotalEntries >= 5:
		score += 5
	}

	switch {
	case chat.MessagesUser >= 10:
		score += 7
	case chat.MessagesUser >= 5:
		score += 5
	case chat.MessagesUser >= 1:
		score += 3
	}

	switch {
	case reco.HelpfulnessRate >= 0.7:
		score += 8
	case reco.HelpfulnessRate >= 0.5:
		score += 5
	case reco.HelpfulnessRate >= 0.3:
		score += 3
	}

	score = math.Round(score*10) / 10
	return math.Max(0, math.Min(100, score))
}

// wellnessInsights builds up to 3 observations about tracking regularity,
// the sleep-mood relation, and stress levels
func wellnessInsights(db *gorm.DB, userID string, days int) ([]string, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	entries, err := ListMoodEntriesByDateRange(db, userID,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	var insights []string

	if len(entries) == 0 {
		return []string{"Start logging your mood daily to receive personalized insights."}, nil
	}

	switch {
	case float64(len(entries)) >= float64(days)*0.8:
		insights = append(insights, "Excellent consistency in tracking your mood! Keep it up.")
	case float64(len(entries)) >= float64(days)*0.5:
		insights = append(insights, "Good mood tracking. Try to be even more regular for better insights.")
	default:
		insights = append(insights, "Try logging your mood more regularly to identify patterns.")
	}

	var withSleep []models.MoodEntry
	for _, e := range entries {
		if e.SleepHours != nil {
			withSleep = append(withSleep, e)
		}
	}
	if len(withSleep) >= 5 {
		var goodSum, poorSum float64
		var goodCount, poorCount int
		for _, e := range withSleep {
			if *e.SleepHours >= 7 {
				goodSum += float64(e.Mood)
				goodCount++
			} else if *e.SleepHours < 6 {
				poorSum += float64(e.Mood)
				poorCount++
			}
		}
		if goodCount > 0 && poorCount > 0 {
			if goodSum/float64(goodCount)-poorSum/float64(poorCount) > 0.5 {
				insights = append(insights, "Your mood seems better when you sleep well (7h+). Prioritize good sleep.")
			}
		}
	}

	var stressSum float64
	var stressCount int
	for _, e := range entries {
		if e.StressLevel != nil {
			stressSum += float64(*e.StressLevel)
			stressCount++
		}
	}
	if stressCount > 0 {
		avg := stressSum / float64(stressCount)
		if avg >= 4 {
			insights = append(insights, "Your stress level seems high. Consider adding relaxing activities to your routine.")
		} else if avg <= 2 {
			insights = append(insights, "Your stress management seems effective. Keep up the good habits.")
		}
	}

	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights, nil
}

// WeeklyMoodTrend summarizes one 7-day window of mood entries
type WeeklyMoodTrend struct {
	WeekStart     string   `json:"week_start"`
	WeekEnd       string   `json:"week_end"`
	EntriesCount  int      `json:"entries_count"`
	AverageMood   float64  `json:"average_mood"`
	AverageStress *float64 `json:"average_stress"`
	AverageSleep  *float64 `json:"average_sleep"`
	MoodTrend     string   `json:"mood_trend"` // improving, declining, stable
}

// GetWeeklyMoodTrends returns per-week aggregates for the trailing weeks,
// oldest week first
func GetWeeklyMoodTrends(db *gorm.DB, userID string, weeks int) ([]WeeklyMoodTrend, error) {
	trends := make([]WeeklyMoodTrend, 0, weeks)
	end := time.Now().UTC()

	for week := 0; week < weeks; week++ {
		weekEnd := end.AddDate(0, 0, -7*week)
		weekStart := weekEnd.AddDate(0, 0, -6)

		entries, err := ListMoodEntriesByDateRange(db, userID,
			weekStart.Format(dateLayout), weekEnd.Format(dateLayout))
		if err != nil {
			return nil, err
		}

		trend := WeeklyMoodTrend{
			WeekStart: weekStart.Format(dateLayout),
			WeekEnd:   weekEnd.Format(dateLayout),
			MoodTrend: "stable",
		}

		if len(entries) > 0 {
			trend.EntriesCount = len(entries)

			moods := make([]int, 0, len(entries))
			var moodSum, stressSum, sleepSum float64
			var stressCount, sleepCount int
			// Entries come newest-first; reverse into chronological order
			// so the slope points the right way
			for i := len(entries) - 1; i >= 0; i-- {
				e := entries[i]
				moods = append(moods, e.Mood)
				moodSum += float64(e.Mood)
				if e.StressLevel != nil {
					stressSum += float64(*e.StressLevel)
					stressCount++
				}
				if e.SleepHours != nil {
					sleepSum += *e.SleepHours
					sleepCount++
				}
			}

			trend.AverageMood = round2(moodSum / float64(len(entries)))
			if stressCount > 0 {
				avg := round2(stressSum / float64(stressCount))
				trend.AverageStress = &avg
			}
			if sleepCount > 0 {
				avg := round2(sleepSum / float64(sleepCount))
				trend.AverageSleep = &avg
			}
			trend.MoodTrend = moodTrend(moods)
		}

		trends = append(trends, trend)
	}

	// Oldest week first
	for i, j := 0, len(trends)-1; i < j; i, j = i+1, j-1 {
		trends[i], trends[j] = trends[j], trends[i]
	}
	return trends, nil
}

// moodTrend classifies a chronological mood series by its least-squares
// slope
func moodTrend(moods []int) string {
	n := len(moods)
	if n < 2 {
		return "stable"
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, m := range moods {
		x, y := float64(i), float64(m)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	slope := (float64(n)*sumXY - sumX*sumY) / (float64(n)*sumX2 - sumX*sumX)

	switch {
	case slope > 0.1:
		return "improving"
	case slope < -0.1:
		return "declining"
	default:
		return "stable"
	}
}

// MoodDistribution counts entries per mood level over a window
type MoodDistribution struct {
	TotalEntries     int     `json:"total_entries"`
	Mood1Count       int     `json:"mood_1_count"`
	Mood2Count       int     `json:"mood_2_count"`
	Mood3Count       int     `json:"mood_3_count"`
	Mood4Count       int     `json:"mood_4_count"`
	Mood5Count       int     `json:"mood_5_count"`
	Mood1Percentage  float64 `json:"mood_1_percentage"`
	Mood2Percentage  float64 `json:"mood_2_percentage"`
	Mood3Percentage  float64 `json:"mood_3_percentage"`
	Mood4Percentage  float64 `json:"mood_4_percentage"`
	Mood5Percentage  float64 `json:"mood_5_percentage"`
	MostCommonMood   *int    `json:"most_common_mood"`
}

// GetMoodDistribution computes per-level counts and 1dp percentages
func GetMoodDistribution(db *gorm.DB, userID string, days int) (*MoodDistribution, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)
	entries, err := ListMoodEntriesByDateRange(db, userID,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	counts := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, e := range entries {
		if e.Mood >= 1 && e.Mood <= 5 {
			counts[e.Mood]++
		}
	}

	dist := &MoodDistribution{
		TotalEntries: len(entries),
		Mood1Count:   counts[1],
		Mood2Count:   counts[2],
		Mood3Count:   counts[3],
		Mood4Count:   counts[4],
		Mood5Count:   counts[5],
	}
	if len(entries) == 0 {
		return dist, nil
	}

	total := float64(len(entries))
	dist.Mood1Percentage = round1(float64(counts[1]) / total * 100)
	dist.Mood2Percentage = round1(float64(counts[2]) / total * 100)
	dist.Mood3Percentage = round1(float64(counts[3]) / total * 100)
	dist.Mood4Percentage = round1(float64(counts[4]) / total * 100)
	dist.Mood5Percentage = round1(float64(counts[5]) / total * 100)

	best, bestCount := 0, -1
	for level := 1; level <= 5; level++ {
		if counts[level] > bestCount {
			best, bestCount = level, counts[level]
		}
	}
	dist.MostCommonMood = &best
	return dist, nil
}

// ActivityEffectiveness reports how often a recommended activity helped
type ActivityEffectiveness struct {
	Activity          string  `json:"activity"`
	TimesRecommended  int     `json:"times_recommended"`
	TimesHelpful      int     `json:"times_helpful"`
	EffectivenessRate float64 `json:"effectiveness_rate"`
}

// GetActivityEffectiveness ranks activities with at least 3 feedback rows
// by their helpfulness percentage
func GetActivityEffectiveness(db *gorm.DB, userID string, days int) ([]ActivityEffectiveness, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var recs []models.Recommendation
	err := db.Where("user_id = ? AND timestamp >= ? AND was_helpful IS NOT NULL", userID, start).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	type tally struct{ helpful, total int }
	stats := map[string]*tally{}
	order := []string{}
	for _, rec := range recs {
		t, ok := stats[rec.SuggestedActivity]
		if !ok {
			t = &tally{}
			stats[rec.SuggestedActivity] = t
			order = append(order, rec.SuggestedActivity)
		}
		t.total++
		if rec.WasHelpful != nil && *rec.WasHelpful {
			t.helpful++
		}
	}

	result := make([]ActivityEffectiveness, 0, len(stats))
	for _, activity := range order {
		t := stats[activity]
		if t.total < 3 {
			continue
		}
		result = append(result, ActivityEffectiveness{
			Activity:          activity,
			TimesRecommended:  t.total,
			TimesHelpful:      t.helpful,
			EffectivenessRate: round1(float64(t.helpful) / float64(t.total) * 100),
		})
	}

	// Sort descending by rate (stable for ties)
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].EffectivenessRate > result[j-1].EffectivenessRate; j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}
	return result, nil
}

// DailyMoodEntry is one calendar day of a charting series. Fields are nil
// on days without an entry.
type DailyMoodEntry struct {
	Date   string   `json:"date"`
	Mood   *int     `json:"mood"`
	Stress *int     `json:"stress"`
	Sleep  *float64 `json:"sleep"`
}

// GetDailyMoodEntries returns one row per day of the window, including
// days with no entry
func GetDailyMoodEntries(db *gorm.DB, userID string, days int) ([]DailyMoodEntry, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	entries, err := ListMoodEntriesByDateRange(db, userID,
		start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}

	byDate := map[string]models.MoodEntry{}
	for _, e := range entries {
		byDate[e.Date] = e
	}

	daily := make([]DailyMoodEntry, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(dateLayout)
		row := DailyMoodEntry{Date: dateStr}
		if e, ok := byDate[dateStr]; ok {
			mood := e.Mood
			row.Mood = &mood
			row.Stress = e.StressLevel
			row.Sleep = e.SleepHours
		}
		daily = append(daily, row)
	}
	return daily, nil
}

// PeriodComparison contrasts the current window with the one before it
type PeriodComparison struct {
	CurrentPeriod         string  `json:"current_period"`
	PreviousPeriod        string  `json:"previous_period"`
	CurrentAverageMood    float64 `json:"current_average_mood"`
	PreviousAverageMood   float64 `json:"previous_average_mood"`
	MoodChange            float64 `json:"mood_change"`
	MoodChangePercentage  float64 `json:"mood_change_percentage"`
	Trend                 string  `json:"trend"`
}

// GetPeriodComparison compares mood averages of adjacent windows. It
// returns ErrNotFound when either window has no entries.
func GetPeriodComparison(db *gorm.DB, userID string, days int) (*PeriodComparison, error) {
	end := time.Now().UTC()
	currentStart := end.AddDate(0, 0, -(days - 1))
	previousEnd := currentStart.AddDate(0, 0, -1)
	previousStart := previousEnd.AddDate(0, 0, -(days - 1))

	current, err := ListMoodEntriesByDateRange(db, userID,
		currentStart.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	previous, err := ListMoodEntriesByDateRange(db, userID,
		previousStart.Format(dateLayout), previousEnd.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	if len(current) == 0 || len(previous) == 0 {
		return nil, ErrNotFound
	}

	var currentSum, previousSum float64
	for _, e := range current {
		currentSum += float64(e.Mood)
	}
	for _, e := range previous {
		previousSum += float64(e.Mood)
	}
	currentAvg := currentSum / float64(len(current))
	previousAvg := previousSum / float64(len(previous))

	change := currentAvg - previousAvg
	var changePct float64
	if previousAvg > 0 {
		changePct = change / previousAvg * 100
	}

	var trend string
	switch {
	case change >= 0.5:
		trend = "much_better"
	case change >= 0.2:
		trend = "better"
	case change <= -0.5:
		trend = "much_worse"
	case change <= -0.2:
		trend = "worse"
	default:
		trend = "stable"
	}

	return &PeriodComparison{
		CurrentPeriod:        fmt.Sprintf("%s - %s", currentStart.Format(dateLayout), end.Format(dateLayout)),
		PreviousPeriod:       fmt.Sprintf("%s - %s", previousStart.Format(dateLayout), previousEnd.Format(dateLayout)),
		CurrentAverageMood:   round2(currentAvg),
		PreviousAverageMood:  round2(previousAvg),
		MoodChange:           round2(change),
		MoodChangePercentage: round1(changePct),
		Trend:                trend,
	}, nil
}

// StatsOverview bundles every stats view into a single payload
type StatsOverview struct {
	UserStats        *OverallStats           `json:"user_stats"`
	WeeklyTrends     []WeeklyMoodTrend       `json:"weekly_trends"`
	MoodDistribution *MoodDistribution       `json:"mood_distribution"`
	PeriodComparison *PeriodComparison       `json:"period_comparison"`
	TopActivities    []ActivityEffectiveness `json:"top_activities"`
	DailyEntries     []DailyMoodEntry        `json:"daily_entries"`
}

// GetStatsOverview composes the dashboard payload. The period comparison
// is included only when the window is long enough to split.
func GetStatsOverview(db *gorm.DB, userID string, days int) (*StatsOverview, error) {
	userStats, err := GetOverallStats(db, userID, days)
	if err != nil {
		return nil, err
	}
	weekly, err := GetWeeklyMoodTrends(db, userID, 4)
	if err != nil {
		return nil, err
	}
	distribution, err := GetMoodDistribution(db, userID, days)
	if err != nil {
		return nil, err
	}
	activities, err := GetActivityEffectiveness(db, userID, days)
	if err != nil {
		return nil, err
	}
	if len(activities) > 5 {
		activities = activities[:5]
	}
	daily, err := GetDailyMoodEntries(db, userID, days)
	if err != nil {
		return nil, err
	}

	var comparison *PeriodComparison
	if days >= 14 {
		comparison, err = GetPeriodComparison(db, userID, days)
		if err != nil && err != ErrNotFound {
			return nil, err
		}
	}

	return &StatsOverview{
		UserStats:        userStats,
		WeeklyTrends:     weekly,
		MoodDistribution: distribution,
		PeriodComparison: comparison,
		TopActivities:    activities,
		DailyEntries:     daily,
	}, nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
