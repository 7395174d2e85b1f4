package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/config"
)

func newRecommendationApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	db := setupTestDB(t)
	cfg := testConfig()
	handler := &RecommendationHandler{DB: db}

	app := fiber.New()
	recs := app.Group("/api/recommendations", requireAuth(cfg))
	recs.Post("/generate", handler.Generate)
	recs.Get("/", handler.List)
	recs.Get("/stats", handler.Stats)
	recs.Get("/:id", handler.Get)
	recs.Put("/:id/feedback", handler.Feedback)
	return app, db, cfg
}

// TestGenerateEndpoint tests POST /api/recommendations/generate
func TestGenerateEndpoint(t *testing.T) {
	app, db, cfg := newRecommendationApp(t)
	_, token := registerAndLogin(t, db, cfg, "rec@example.com")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_level":     2,
		"time_available": 30,
	}, token))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	recs := decodeList(t, resp)
	if len(recs) < 1 || len(recs) > 3 {
		t.Fatalf("Expected 1-3 recommendations, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec["suggested_activity"] == nil || rec["suggested_activity"] == "" {
			t.Error("Expected a suggested activity")
		}
		if rec["recommendation_type"] != "mood_based" {
			t.Errorf("Expected type mood_based, got %v", rec["recommendation_type"])
		}
		score := rec["confidence_score"].(float64)
		if score < 0.7 || score > 1.0 {
			t.Errorf("Confidence score out of range: %v", score)
		}
	}

	// Neither mood source given
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"time_available": 30,
	}, token))
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 without mood input, got %d", resp.StatusCode)
	}

	// Mood level outside the scale
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_level": 7,
	}, token))
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for invalid level, got %d", resp.StatusCode)
	}
}

// TestGenerateFromMoodEntry ties recommendations to a logged mood
func TestGenerateFromMoodEntry(t *testing.T) {
	app, db, cfg := newRecommendationApp(t)
	_, token := registerAndLogin(t, db, cfg, "moodrec@example.com")

	moodHandler := &MoodHandler{DB: db}
	app.Post("/api/moods", requireAuth(cfg), moodHandler.Create)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/moods", map[string]interface{}{
		"date": "2026-03-01",
		"mood": 2,
	}, token))
	if err != nil {
		t.Fatalf("Failed to create mood entry: %v", err)
	}
	moodID := decodeBody(t, resp)["id"].(string)

	resp, err = app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_id": moodID,
	}, token))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected status 201, got %d", resp.StatusCode)
	}
	recs := decodeList(t, resp)
	for _, rec := range recs {
		if rec["mood_id"] != moodID {
			t.Errorf("Expected recommendation linked to mood %s, got %v", moodID, rec["mood_id"])
		}
	}

	// Unknown mood entry
	resp, _ = app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_id": "11111111-2222-3333-4444-555555555555",
	}, token))
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 for unknown mood, got %d", resp.StatusCode)
	}
}

// TestRecommendationListAndGet tests listing and per-item access
func TestRecommendationListAndGet(t *testing.T) {
	app, db, cfg := newRecommendationApp(t)
	_, token := registerAndLogin(t, db, cfg, "reclist@example.com")
	_, otherToken := registerAndLogin(t, db, cfg, "recother@example.com")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_level": 3,
	}, token))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	generated := decodeList(t, resp)
	recID := generated[0]["id"].(string)

	resp, err = app.Test(jsonRequest(t, "GET", "/api/recommendations/", nil, token))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	listed := decodeList(t, resp)
	if len(listed) != len(generated) {
		t.Errorf("Expected %d listed recommendations, got %d", len(generated), len(listed))
	}

	resp, _ = app.Test(jsonRequest(t, "GET", "/api/recommendations/"+recID, nil, token))
	if resp.StatusCode != 200 {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(jsonRequest(t, "GET", "/api/recommendations/"+recID, nil, otherToken))
	if resp.StatusCode != 403 {
		t.Errorf("Expected status 403 for foreign recommendation, got %d", resp.StatusCode)
	}
}

// TestFeedbackEndpoint tests PUT /api/recommendations/:id/feedback
func TestFeedbackEndpoint(t *testing.T) {
	app, db, cfg := newRecommendationApp(t)
	_, token := registerAndLogin(t, db, cfg, "feedback@example.com")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_level": 2,
	}, token))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	recID := decodeList(t, resp)[0]["id"].(string)

	resp, err = app.Test(jsonRequest(t, "PUT", "/api/recommendations/"+recID+"/feedback", map[string]interface{}{
		"was_helpful": true,
	}, token))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeBody(t, resp)
	if result["was_helpful"] != true {
		t.Errorf("Expected recorded feedback, got %v", result["was_helpful"])
	}

	// Feedback requires the flag
	resp, _ = app.Test(jsonRequest(t, "PUT", "/api/recommendations/"+recID+"/feedback", map[string]interface{}{}, token))
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 without was_helpful, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(jsonRequest(t, "PUT", "/api/recommendations/missing/feedback", map[string]interface{}{
		"was_helpful": false,
	}, token))
	if resp.StatusCode != 404 {
		t.Errorf("Expected status 404 for unknown recommendation, got %d", resp.StatusCode)
	}
}

// TestRecommendationStatsEndpoint tests GET /api/recommendations/stats
func TestRecommendationStatsEndpoint(t *testing.T) {
	app, db, cfg := newRecommendationApp(t)
	_, token := registerAndLogin(t, db, cfg, "recstats@example.com")

	resp, err := app.Test(jsonRequest(t, "POST", "/api/recommendations/generate", map[string]interface{}{
		"mood_level": 2,
	}, token))
	if err != nil {
		t.Fatalf("Failed to generate: %v", err)
	}
	recs := decodeList(t, resp)
	for _, rec := range recs {
		recID := rec["id"].(string)
		resp, err = app.Test(jsonRequest(t, "PUT", "/api/recommendations/"+recID+"/feedback", map[string]interface{}{
			"was_helpful": true,
		}, token))
		if err != nil {
			t.Fatalf("Failed to record feedback: %v", err)
		}
	}

	resp, err = app.Test(jsonRequest(t, "GET", "/api/recommendations/stats", nil, token))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	result := decodeBody(t, resp)
	if result["total_recommendations"] != float64(len(recs)) {
		t.Errorf("Expected %d recommendations, got %v", len(recs), result["total_recommendations"])
	}
	if result["helpful_count"] != float64(len(recs)) {
		t.Errorf("Expected %d helpful, got %v", len(recs), result["helpful_count"])
	}

	resp, _ = app.Test(jsonRequest(t, "GET", "/api/recommendations/stats?days=9999", nil, token))
	if resp.StatusCode != 400 {
		t.Errorf("Expected status 400 for out-of-range days, got %d", resp.StatusCode)
	}
}
