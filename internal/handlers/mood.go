package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/services"
	"github.com/auralys/auralys-api/internal/utils"
	"github.com/auralys/auralys-api/internal/validation"
)

// MoodHandler handles mood entry routes
type MoodHandler struct {
	DB *gorm.DB
}

// CreateMoodRequest is the payload of POST /api/moods
type CreateMoodRequest struct {
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	Mood        int      `json:"mood" validate:"required,min=1,max=5"`
	Notes       string   `json:"notes" validate:"omitempty,max=500"`
	Activity    string   `json:"activity" validate:"omitempty,max=100"`
	SleepHours  *float64 `json:"sleep_hours" validate:"omitempty,min=0,max=24"`
	StressLevel *int     `json:"stress_level" validate:"omitempty,min=1,max=5"`
}

func (r *CreateMoodRequest) Validate() error { return validation.Struct(r) }

// UpdateMoodRequest is the payload of PUT /api/moods/:id
type UpdateMoodRequest struct {
	Mood        *int     `json:"mood" validate:"omitempty,min=1,max=5"`
	Notes       *string  `json:"notes" validate:"omitempty,max=500"`
	Activity    *string  `json:"activity" validate:"omitempty,max=100"`
	SleepHours  *float64 `json:"sleep_hours" validate:"omitempty,min=0,max=24"`
	StressLevel *int     `json:"stress_level" validate:"omitempty,min=1,max=5"`
}

func (r *UpdateMoodRequest) Validate() error { return validation.Struct(r) }

// Create handles POST /api/moods
// @Summary Log a mood entry
// @Description Create the day's mood entry; one entry per user per date
// @Tags Moods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMoodRequest true "Mood entry"
// @Success 201 {object} models.MoodEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /moods [post]
func (h *MoodHandler) Create(c *fiber.Ctx) error {
	var req CreateMoodRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "moods.create")
	}

	entry, err := services.CreateMoodEntry(h.DB, middleware.UserID(c), services.MoodEntryInput{
		Date:        req.Date,
		Mood:        req.Mood,
		Notes:       req.Notes,
		Activity:    req.Activity,
		SleepHours:  req.SleepHours,
		StressLevel: req.StressLevel,
	})
	if err != nil {
		return serviceErrorResponse(c, err, "moods.create")
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// List handles GET /api/moods
// @Summary List mood entries
// @Description Paged listing, or a date range when start_date and end_date are given
// @Tags Moods
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Entries to skip" default(0)
// @Param limit query int false "Page size" default(100)
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {array} models.MoodEntry
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /moods [get]
func (h *MoodHandler) List(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate != "" && endDate != "" {
		if !services.ValidDate(startDate) || !services.ValidDate(endDate) {
			return utils.ErrorResponse(c, "Invalid date format. Use YYYY-MM-DD", fiber.StatusBadRequest, "moods.list")
		}
		entries, err := services.ListMoodEntriesByDateRange(h.DB, userID, startDate, endDate)
		if err != nil {
			return serviceErrorResponse(c, err, "moods.list")
		}
		return c.Status(fiber.StatusOK).JSON(entries)
	}

	skip := queryInt(c, "skip", 0, 0, 1<<30)
	limit := queryInt(c, "limit", 100, 1, 100)
	entries, err := services.ListMoodEntries(h.DB, userID, skip, limit)
	if err != nil {
		return serviceErrorResponse(c, err, "moods.list")
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}

// Stats handles GET /api/moods/stats
// @Summary Mood statistics
// @Description Averages over a trailing window of days
// @Tags Moods
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365)" default(7)
// @Success 200 {object} services.MoodStats
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /moods/stats [get]
func (h *MoodHandler) Stats(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 7, 1, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 1 and 365", fiber.StatusBadRequest, "moods.stats")
	}

	stats, err := services.GetMoodStats(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "moods.stats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// Get handles GET /api/moods/:id
// @Summary Get one mood entry
// @Tags Moods
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} models.MoodEntry
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /moods/{id} [get]
func (h *MoodHandler) Get(c *fiber.Ctx) error {
	entry, err := services.GetMoodEntry(h.DB, c.Params("id"), middleware.UserID(c))
	if err != nil {
		return serviceErrorResponse(c, err, "moods.get")
	}
	return c.Status(fiber.StatusOK).JSON(entry)
}

// Update handles PUT /api/moods/:id
// @Summary Update a mood entry
// @Tags Moods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param body body UpdateMoodRequest true "Fields to change"
// @Success 200 {object} models.MoodEntry
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /moods/{id} [put]
func (h *MoodHandler) Update(c *fiber.Ctx) error {
	var req UpdateMoodRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "moods.update")
	}

	changes := map[string]interface{}{}
	if req.Mood != nil {
		changes["mood"] = *req.Mood
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}
	if req.Activity != nil {
		changes["activity"] = *req.Activity
	}
	if req.SleepHours != nil {
		changes["sleep_hours"] = *req.SleepHours
	}
	if req.StressLevel != nil {
		changes["stress_level"] = *req.StressLevel
	}

	entry, err := services.UpdateMoodEntry(h.DB, c.Params("id"), middleware.UserID(c), changes)
	if err != nil {
		return serviceErrorResponse(c, err, "moods.update")
	}
	return c.Status(fiber.StatusOK).JSON(entry)
}

// Delete handles DELETE /api/moods/:id
// @Summary Delete a mood entry
// @Tags Moods
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /moods/{id} [delete]
func (h *MoodHandler) Delete(c *fiber.Ctx) error {
	if err := services.DeleteMoodEntry(h.DB, c.Params("id"), middleware.UserID(c)); err != nil {
		return serviceErrorResponse(c, err, "moods.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
