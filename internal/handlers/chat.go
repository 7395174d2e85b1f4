package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/services"
	"github.com/auralys/auralys-api/internal/utils"
	"github.com/auralys/auralys-api/internal/validation"
)

// ChatHandler handles chatbot conversation routes
type ChatHandler struct {
	DB  *gorm.DB
	NLP *services.NLPClient
}

// SendMessageRequest is the payload of POST /api/chat/send
type SendMessageRequest struct {
	Message  string `json:"message" validate:"required,min=1,max=2000"`
	Language string `json:"language" validate:"omitempty,max=10"`
}

func (r *SendMessageRequest) Validate() error { return validation.Struct(r) }

// AnalyzeRequest is the payload of POST /api/chat/nlp/analyze
type AnalyzeRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=2000"`
	Language string `json:"language" validate:"omitempty,max=10"`
}

func (r *AnalyzeRequest) Validate() error { return validation.Struct(r) }

// Send handles POST /api/chat/send
// @Summary Send a chat message
// @Description Analyze the message, store the exchange, and return the bot reply
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} services.BotResponse
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /chat/send [post]
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "chat.send")
	}

	response, err := services.SendChatMessage(h.DB, h.NLP, middleware.UserID(c), req.Message, req.Language)
	if err != nil {
		return serviceErrorResponse(c, err, "chat.send")
	}

	return c.Status(fiber.StatusCreated).JSON(response)
}

// History handles GET /api/chat/history
// @Summary Get conversation history
// @Description Paged listing newest-first, or a timestamp range
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Messages to skip" default(0)
// @Param limit query int false "Page size" default(50)
// @Param start_date query string false "Range start (RFC3339)"
// @Param end_date query string false "Range end (RFC3339)"
// @Success 200 {object} services.Conversation
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /chat/history [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	startRaw := c.Query("start_date")
	endRaw := c.Query("end_date")
	if startRaw != "" && endRaw != "" {
		start, err1 := time.Parse(time.RFC3339, startRaw)
		end, err2 := time.Parse(time.RFC3339, endRaw)
		if err1 != nil || err2 != nil {
			return utils.ErrorResponse(c, "Invalid timestamp format. Use RFC3339", fiber.StatusBadRequest, "chat.history")
		}
		conv, err := services.GetChatHistoryByDateRange(h.DB, userID, start, end)
		if err != nil {
			return serviceErrorResponse(c, err, "chat.history")
		}
		return c.Status(fiber.StatusOK).JSON(conv)
	}

	skip := queryInt(c, "skip", 0, 0, 1<<30)
	limit := queryInt(c, "limit", 50, 1, 200)
	conv, err := services.GetChatHistory(h.DB, userID, skip, limit)
	if err != nil {
		return serviceErrorResponse(c, err, "chat.history")
	}
	return c.Status(fiber.StatusOK).JSON(conv)
}

// Stats handles GET /api/chat/stats
// @Summary Chat statistics
// @Tags Chat
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window in days (1-365)" default(7)
// @Success 200 {object} services.ChatStats
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /chat/stats [get]
func (h *ChatHandler) Stats(c *fiber.Ctx) error {
	days, ok := queryIntStrict(c, "days", 7, 1, 365)
	if !ok {
		return utils.ErrorResponse(c, "days must be between 1 and 365", fiber.StatusBadRequest, "chat.stats")
	}

	stats, err := services.GetChatStats(h.DB, middleware.UserID(c), days)
	if err != nil {
		return serviceErrorResponse(c, err, "chat.stats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// DeleteHistory handles DELETE /api/chat/history
// @Summary Delete conversation history
// @Tags Chat
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /chat/history [delete]
func (h *ChatHandler) DeleteHistory(c *fiber.Ctx) error {
	if err := services.DeleteChatHistory(h.DB, middleware.UserID(c)); err != nil {
		return serviceErrorResponse(c, err, "chat.deleteHistory")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// NLPInfo handles GET /api/chat/nlp/info
// @Summary Sentiment setup info
// @Description Model name, endpoint state, and label-to-mood mapping
// @Tags Chat
// @Produce json
// @Success 200 {object} services.NLPInfo
// @Router /chat/nlp/info [get]
func (h *ChatHandler) NLPInfo(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.NLP.GetNLPInfo())
}

// Analyze handles POST /api/chat/nlp/analyze
// @Summary Ad-hoc sentiment analysis
// @Description Analyze arbitrary text without storing anything
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AnalyzeRequest true "Text to analyze"
// @Success 200 {object} services.MoodAnalysis
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /chat/nlp/analyze [post]
func (h *ChatHandler) Analyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return serviceErrorResponse(c, err, "chat.analyze")
	}

	analysis := h.NLP.AnalyzeMood(c.Context(), req.Text, req.Language)
	return c.Status(fiber.StatusOK).JSON(analysis)
}
