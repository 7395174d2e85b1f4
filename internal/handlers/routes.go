package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
	"github.com/auralys/auralys-api/internal/middleware"
	"github.com/auralys/auralys-api/internal/services"
)

// RegisterRoutes mounts the full API surface on the app
func RegisterRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, nlp *services.NLPClient) {
	healthHandler := &HealthHandler{DB: db, Cfg: cfg}
	authHandler := &AuthHandler{DB: db, Cfg: cfg}
	moodHandler := &MoodHandler{DB: db}
	chatHandler := &ChatHandler{DB: db, NLP: nlp}
	recHandler := &RecommendationHandler{DB: db}
	statsHandler := &StatsHandler{DB: db}

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	requireAuth := middleware.RequireAuth(cfg.SecretKey)

	// Auth and account routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/token", authHandler.Token)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Put("/edit", requireAuth, authHandler.Edit)
	auth.Delete("/remove", requireAuth, authHandler.Remove)
	auth.Get("/export-data", requireAuth, authHandler.ExportData)
	auth.Get("/export-data/download", requireAuth, authHandler.DownloadExport)
	auth.Delete("/delete-account", requireAuth, authHandler.DeleteAccount)
	auth.Post("/anonymize-account", requireAuth, authHandler.AnonymizeAccount)
	auth.Get("/data-summary", requireAuth, authHandler.DataSummary)

	// Mood routes. Static paths are registered before the :id parameter.
	moods := api.Group("/moods", requireAuth)
	moods.Post("/", moodHandler.Create)
	moods.Get("/", moodHandler.List)
	moods.Get("/stats", moodHandler.Stats)
	moods.Get("/:id", moodHandler.Get)
	moods.Put("/:id", moodHandler.Update)
	moods.Delete("/:id", moodHandler.Delete)

	// Chat routes
	chat := api.Group("/chat")
	chat.Get("/nlp/info", chatHandler.NLPInfo)
	chat.Post("/send", requireAuth, chatHandler.Send)
	chat.Get("/history", requireAuth, chatHandler.History)
	chat.Get("/stats", requireAuth, chatHandler.Stats)
	chat.Delete("/history", requireAuth, chatHandler.DeleteHistory)
	chat.Post("/nlp/analyze", requireAuth, chatHandler.Analyze)

	// Recommendation routes
	recs := api.Group("/recommendations", requireAuth)
	recs.Post("/generate", recHandler.Generate)
	recs.Get("/", recHandler.List)
	recs.Get("/stats", recHandler.Stats)
	recs.Get("/:id", recHandler.Get)
	recs.Put("/:id/feedback", recHandler.Feedback)

	// Statistics routes
	stats := api.Group("/stats", requireAuth)
	stats.Get("/overall", statsHandler.Overall)
	stats.Get("/weekly", statsHandler.Weekly)
	stats.Get("/mood-distribution", statsHandler.MoodDistribution)
	stats.Get("/activities", statsHandler.Activities)
	stats.Get("/daily", statsHandler.Daily)
	stats.Get("/comparison", statsHandler.Comparison)
	stats.Get("/overview", statsHandler.Overview)
}
