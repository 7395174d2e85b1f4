package services

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralys/auralys-api/internal/models"
)

// botResponses lists reply variants per detected mood. The first variant of
// each mood is the most empathetic and is used for long messages.
var botResponses = map[string][]string{
	"happy": {
		"It's wonderful to see you so positive! What's making you so happy today?",
		"Your joy is contagious! Keep cultivating these moments of happiness.",
		"I love your positive energy! How about sharing that joy with someone?",
	},
	"sad": {
		"I understand you're going through a difficult moment. Would you like to tell me what's on your mind?",
		"It's normal to feel sad sometimes. Take the time you need to feel better.",
		"Your feelings are valid. What can I do to help you feel a little better?",
	},
	"anxious": {
		"I sense you're feeling a bit stressed. Have you tried some breathing exercises?",
		"Anxiety can be hard to manage. Let's talk about what's worrying you.",
		"Let's take a moment to focus on the present. Breathe deeply with me.",
	},
	"angry": {
		"I understand your frustration. Sometimes expressing these feelings can help.",
		"Anger is a normal emotion. What has made you angry?",
		"Let's take a moment to channel that energy in a constructive way.",
	},
	"neutral": {
		"How are you feeling today? I'm here to listen.",
		"Thank you for sharing with me. Would you like to tell me about your day?",
		"I'm here for you. What would you like to explore together?",
	},
}

const (
	thanksReply   = "You're welcome! I'm here to help. Is there anything else you'd like to talk about?"
	fallbackReply = "I'm sorry, I'm having trouble analyzing your message right now. How are you feeling?"
)

var fallbackSuggestions = []string{
	"Take a break",
	"Take a walk",
	"Drink a glass of water",
}

// BotResponse is the payload returned after processing a chat message
type BotResponse struct {
	BotMessage       string             `json:"bot_message"`
	MoodDetected     string             `json:"mood_detected"`
	Suggestions      []string           `json:"suggestions"`
	EmotionAnalysis  map[string]float64 `json:"emotion_analysis,omitempty"`
	LanguageDetected string             `json:"language_detected,omitempty"`
	ModelUsed        string             `json:"model_used,omitempty"`
}

// SendChatMessage analyzes a user message, stores both sides of the
// exchange, and returns the bot reply with activity suggestions. An
// analysis failure still persists the user message and answers with a
// fallback reply.
func SendChatMessage(db *gorm.DB, nlp *NLPClient, userID, message, language string) (*BotResponse, error) {
	if err := RequireConsent(db, userID); err != nil {
		return nil, err
	}

	analysis := nlp.AnalyzeMood(context.Background(), message, language)

	if analysis.Error != "" {
		// Analysis failed. Keep the conversation alive with the fallback
		// reply but still record the user message.
		now := time.Now().UTC()
		userMsg := models.ChatHistory{
			ID:        uuid.NewString(),
			UserID:    userID,
			Timestamp: now,
			Message:   message,
			Sender:    "user",
			Collected: true,
			Language:  language,
		}
		if err := db.Create(&userMsg).Error; err != nil {
			return nil, err
		}
		botMsg := models.ChatHistory{
			ID:        uuid.NewString(),
			UserID:    userID,
			Timestamp: now.Add(time.Millisecond),
			Message:   fallbackReply,
			Sender:    "bot",
			Collected: true,
			Language:  language,
		}
		if err := db.Create(&botMsg).Error; err != nil {
			return nil, err
		}
		return &BotResponse{
			BotMessage:   fallbackReply,
			MoodDetected: "neutral",
			Suggestions:  fallbackSuggestions,
		}, nil
	}

	now := time.Now().UTC()
	userMsg := models.ChatHistory{
		ID:           uuid.NewString(),
		UserID:       userID,
		Timestamp:    now,
		Message:      message,
		Sender:       "user",
		MoodDetected: analysis.MoodDetected,
		Collected:    true,
		Language:     analysis.Language,
		ModelUsed:    analysis.ModelUsed,
		Emotions:     models.NewJSON(analysis.Emotions),
	}
	if err := db.Create(&userMsg).Error; err != nil {
		return nil, err
	}

	reply := generateBotReply(analysis.MoodDetected, message)

	botMsg := models.ChatHistory{
		ID:           uuid.NewString(),
		UserID:       userID,
		Timestamp:    now.Add(time.Millisecond),
		Message:      reply,
		Sender:       "bot",
		MoodDetected: analysis.MoodDetected,
		Collected:    true,
		Language:     analysis.Language,
		ModelUsed:    analysis.ModelUsed,
	}
	if err := db.Create(&botMsg).Error; err != nil {
		return nil, err
	}

	suggestions := MoodSuggestions(analysis.MoodDetected)
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}

	return &BotResponse{
		BotMessage:       reply,
		MoodDetected:     analysis.MoodDetected,
		Suggestions:      suggestions,
		EmotionAnalysis:  analysis.Emotions,
		LanguageDetected: analysis.Language,
		ModelUsed:        analysis.ModelUsed,
	}, nil
}

// generateBotReply picks a reply variant for the detected mood. Long
// messages get the empathetic first variant, thanks get a fixed
// acknowledgement, and everything else a per-message deterministic pick.
func generateBotReply(mood, original string) string {
	variants, ok := botResponses[mood]
	if !ok {
		variants = botResponses["neutral"]
	}

	if len(original) > 100 {
		return variants[0]
	}

	lower := strings.ToLower(original)
	for _, word := range []string{"thanks", "thank you", "merci"} {
		if strings.Contains(lower, word) {
			return thanksReply
		}
	}

	h := fnv.New32a()
	h.Write([]byte(original))
	return variants[int(h.Sum32())%len(variants)]
}

// Conversation is a page of chat history plus its time bounds
type Conversation struct {
	Messages      []models.ChatHistory `json:"messages"`
	TotalMessages int                  `json:"total_messages"`
	StartDate     *time.Time           `json:"start_date"`
	EndDate       *time.Time           `json:"end_date"`
}

// GetChatHistory returns a user's messages newest-first
func GetChatHistory(db *gorm.DB, userID string, skip, limit int) (*Conversation, error) {
	var messages []models.ChatHistory
	err := db.Where("user_id = ?", userID).
		Order("timestamp desc").
		Offset(skip).Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return buildConversation(messages), nil
}

// GetChatHistoryByDateRange returns a user's messages between two instants
func GetChatHistoryByDateRange(db *gorm.DB, userID string, start, end time.Time) (*Conversation, error) {
	var messages []models.ChatHistory
	err := db.Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start, end).
		Order("timestamp desc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return buildConversation(messages), nil
}

func buildConversation(messages []models.ChatHistory) *Conversation {
	conv := &Conversation{
		Messages:      messages,
		TotalMessages: len(messages),
	}
	if len(messages) > 0 {
		// Newest-first ordering: last element is the oldest
		conv.StartDate = &messages[len(messages)-1].Timestamp
		conv.EndDate = &messages[0].Timestamp
	}
	return conv
}

// ChatStats aggregates a user's chat activity over a trailing window
type ChatStats struct {
	TotalMessages         int     `json:"total_messages"`
	MessagesUser          int     `json:"messages_user"`
	MessagesBot           int     `json:"messages_bot"`
	MostDetectedMood      *string `json:"most_detected_mood"`
	AverageMessagesPerDay float64 `json:"average_messages_per_day"`
	PeriodStart           string  `json:"period_start"`
	PeriodEnd             string  `json:"period_end"`
}

// GetChatStats computes message counts and the most frequently detected
// mood over the window
func GetChatStats(db *gorm.DB, userID string, days int) (*ChatStats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	var messages []models.ChatHistory
	err := db.Where("user_id = ? AND timestamp >= ? AND timestamp <= ?", userID, start, end).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	stats := &ChatStats{
		PeriodStart: end.AddDate(0, 0, -(days - 1)).Format(dateLayout),
		PeriodEnd:   end.Format(dateLayout),
	}
	if len(messages) == 0 {
		return stats, nil
	}

	moodCounts := map[string]int{}
	for _, msg := range messages {
		stats.TotalMessages++
		switch msg.Sender {
		case "user":
			stats.MessagesUser++
		case "bot":
			stats.MessagesBot++
		}
		if msg.MoodDetected != "" {
			moodCounts[msg.MoodDetected]++
		}
	}

	best, bestCount := "", 0
	for mood, count := range moodCounts {
		if count > bestCount || (count == bestCount && mood < best) {
			best, bestCount = mood, count
		}
	}
	if best != "" {
		stats.MostDetectedMood = &best
	}

	stats.AverageMessagesPerDay = round2(float64(stats.TotalMessages) / float64(days))
	return stats, nil
}

// DeleteChatHistory purges a user's conversation. ErrNotFound is returned
// when there was nothing to delete.
func DeleteChatHistory(db *gorm.DB, userID string) error {
	res := db.Where("user_id = ?", userID).Delete(&models.ChatHistory{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
