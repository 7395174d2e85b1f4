package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/services"
	"github.com/auralys/auralys-api/internal/utils"
)

// StatsHandler handles wellness statistics routes
type StatsHandler struct {
	DB *gorm.DB
}

// Overall handles GET /api/stats/overall
// @Summary Overall wellness statistics
// @Description Mood, chat, and recommendation aggregates plus a wellness score
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365)" default(30)
// @Success 200 {object} services.OverallStats
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /stats/overall [get]
func (h *StatsHandler) Overall(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 1, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 1 and 365", fiber.StatusBadRequest, "stats.overall")
	}

	stats, err := services.GetOverallStats(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.overall")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// Weekly handles GET /api/stats/weekly
// @Summary Weekly mood trends
// @Description Per-week aggregates with a least-squares trend, oldest first
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param weeks query int false "Number of weeks (1-12)" default(4)
// @Success 200 {array} services.WeeklyMoodTrend
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /stats/weekly [get]
func (h *StatsHandler) Weekly(c *fiber.Ctx) error {
	weeks, ok := queryIntStrict(c, "weeks", 4, 1, 12)
	if !ok {
		return utils.ErrorResponse(c, "weeks must be between 1 and 12", fiber.StatusBadRequest, "stats.weekly")
	}

	trends, err := services.GetWeeklyMoodTrends(h.DB, middleware.UserID(c), weeks)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.weekly")
	}
	return c.Status(fiber.StatusOK).JSON(trends)
}

// MoodDistribution handles GET /api/stats/mood-distribution
// @Summary Mood level distribution
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (7-365)" default(30)
// @Success 200 {object} services.MoodDistribution
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /stats/mood-distribution [get]
func (h *StatsHandler) MoodDistribution(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 7, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 7 and 365", fiber.StatusBadRequest, "stats.moodDistribution")
	}

	dist, err := services.GetMoodDistribution(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.moodDistribution")
	}
	return c.Status(fiber.StatusOK).JSON(dist)
}

// Activities handles GET /api/stats/activities
// @Summary Activity effectiveness
// @Description Helpfulness ranking of activities with enough feedback
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (7-365)" default(30)
// @Success 200 {array} services.ActivityEffectiveness
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /stats/activities [get]
func (h *StatsHandler) Activities(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 7, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 7 and 365", fiber.StatusBadRequest, "stats.activities")
	}

	list, err := services.GetActivityEffectiveness(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.activities")
	}
	return c.Status(fiber.StatusOK).JSON(list)
}

// Daily handles GET /api/stats/daily
// @Summary Daily mood series
// @Description One row per calendar day of the window, nulls on empty days
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (7-90)" default(30)
// @Success 200 {array} services.DailyMoodEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /stats/daily [get]
func (h *StatsHandler) Daily(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 7, 90)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 7 and 90", fiber.StatusBadRequest, "stats.daily")
	}

	daily, err := services.GetDailyMoodEntries(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.daily")
	}
	return c.Status(fiber.StatusOK).JSON(daily)
}

// Comparison handles GET /api/stats/comparison
// @Summary Period comparison
// @Description Compare the current window's mood average against the previous one
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (14-365)" default(30)
// @Success 200 {object} services.PeriodComparison
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /stats/comparison [get]
func (h *StatsHandler) Comparison(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 14, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 14 and 365", fiber.StatusBadRequest, "stats.comparison")
	}

	comparison, err := services.GetPeriodComparison(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.comparison")
	}
	return c.Status(fiber.StatusOK).JSON(comparison)
}

// Overview handles GET /api/stats/overview
// @Summary Dashboard overview
// @Description Composite of overall stats, trends, distribution, activities, and daily series
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (7-365)" default(30)
// @Success 200 {object} services.StatsOverview
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 7, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 7 and 365", fiber.StatusBadRequest, "stats.overview")
	}

	overview, err := services.GetStatsOverview(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "stats.overview")
	}
	return c.Status(fiber.StatusOK).JSON(overview)
}
