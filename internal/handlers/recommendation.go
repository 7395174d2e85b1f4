package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/services"
	"github.com/auralys/auralys-api/internal/utils"
	"github.com/auralys/auralys-api/internal/validation"
)

// RecommendationHandler handles activity recommendation routes
type RecommendationHandler struct {
	DB *gorm.DB
}

// GenerateRequest is the payload of POST /api/recommendations/generate
type GenerateRequest struct {
	MoodID        *string `json:"mood_id" validate:"omitempty,uuid"`
	MoodLevel     *int    `json:"mood_level" validate:"omitempty,min=1,max=5"`
	TimeAvailable int     `json:"time_available" validate:"omitempty,min=5,max=480"`
}

func (r *GenerateRequest) Validate() error { return validation.Struct(r) }

// FeedbackRequest is the payload of PUT /api/recommendations/:id/feedback
type FeedbackRequest struct {
	WasHelpful *bool `json:"was_helpful" validate:"required"`
}

func (r *FeedbackRequest) Validate() error { return validation.Struct(r) }

// Generate handles POST /api/recommendations/generate
// @Summary Generate recommendations
// @Description Pick up to 3 diverse activities for a mood entry or level
// @Tags Recommendations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body GenerateRequest true "Mood source and available time"
// @Success 201 {array} models.Recommendation
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recommendations/generate [post]
func (h *RecommendationHandler) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "recommendations.generate")
	}

	recs, err := services.GenerateRecommendations(h.DB, middleware.UserID(c), services.RecommendationRequest{
		MoodID:        req.MoodID,
		MoodLevel:     req.MoodLevel,
		TimeAvailable: req.TimeAvailable,
	})
	if err != nil {
		return serviceErrorResponse(c, err, "recommendations.generate")
	}

	return c.Status(fiber.StatusCreated).JSON(recs)
}

// List handles GET /api/recommendations
// @Summary List recommendations
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Entries to skip" default(0)
// @Param limit query int false "Page size" default(50)
// @Success 200 {array} models.Recommendation
// @Router /recommendations [get]
func (h *RecommendationHandler) List(c *fiber.Ctx) error {
	skip := queryInt(c, "skip", 0, 0, 1<<30)
	limit := queryInt(c, "limit", 50, 1, 100)

	recs, err := services.ListRecommendations(h.DB, middleware.UserID(c), skip, limit)
	if err != nil {
		return serviceErrorResponse(c, err, "recommendations.list")
	}
	return c.Status(fiber.StatusOK).JSON(recs)
}

// Stats handles GET /api/recommendations/stats
// @Summary Recommendation statistics
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365)" default(30)
// @Success 200 {object} services.RecommendationStats
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /recommendations/stats [get]
func (h *RecommendationHandler) Stats(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 30, 1, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 1 and 365", fiber.StatusBadRequest, "recommendations.stats")
	}

	stats, err := services.GetRecommendationStats(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "recommendations.stats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// Get handles GET /api/recommendations/:id
// @Summary Get one recommendation
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recommendation ID"
// @Success 200 {object} models.Recommendation
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recommendations/{id} [get]
func (h *RecommendationHandler) Get(c *fiber.Ctx) error {
	rec, err := services.GetRecommendation(h.DB, c.Params("id"), middleware.UserID(c))
	if err != nil {
		return serviceErrorResponse(c, err, "recommendations.get")
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// Feedback handles PUT /api/recommendations/:id/feedback
// @Summary Record recommendation feedback
// @Tags Recommendations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recommendation ID"
// @Param body body FeedbackRequest true "Feedback"
// @Success 200 {object} models.Recommendation
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recommendations/{id}/feedback [put]
func (h *RecommendationHandler) Feedback(c *fiber.Ctx) error {
	var req FeedbackRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "recommendations.feedback")
	}

	rec, err := services.UpdateRecommendationFeedback(h.DB, c.Params("id"), middleware.UserID(c), *req.WasHelpful)
	if err != nil {
		return serviceErrorResponse(c, err, "recommendations.feedback")
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}
