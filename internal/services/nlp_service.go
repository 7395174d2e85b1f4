package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/auralys/auralys-api/internal/cache"
	"github.com/auralys/auralys-api/internal/config"
)

const maxAnalysisChars = 512

// MoodAnalysis is the result of running a chat message through the
// sentiment inference service
type MoodAnalysis struct {
	MoodDetected string             `json:"mood_detected"`
	Confidence   float64            `json:"confidence"`
	Emotions     map[string]float64 `json:"emotions"`
	ModelUsed    string             `json:"model_used"`
	Language     string             `json:"language,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// emotionToMood maps classifier labels to the app's simple mood vocabulary
var emotionToMood = map[string]string{
	"joy":            "happy",
	"happiness":      "happy",
	"love":           "happy",
	"excitement":     "happy",
	"optimism":       "good",
	"approval":       "good",
	"gratitude":      "good",
	"pride":          "good",
	"relief":         "neutral",
	"neutral":        "neutral",
	"realization":    "neutral",
	"surprise":       "neutral",
	"confusion":      "neutral",
	"curiosity":      "neutral",
	"sadness":        "sad",
	"disappointment": "sad",
	"grief":          "sad",
	"remorse":        "sad",
	"embarrassment":  "sad",
	"fear":           "anxious",
	"nervousness":    "anxious",
	"anxiety":        "anxious",
	"anger":          "angry",
	"annoyance":      "angry",
	"frustration":    "angry",
	"disgust":        "angry",
}

// NLPClient calls a HuggingFace-inference-style emotion classification
// endpoint. Results are optionally cached in Redis keyed by text digest.
type NLPClient struct {
	cfg   *config.Config
	http  *http.Client
	cache *cache.SentimentCache
}

// NewNLPClient builds a client for the configured inference endpoint.
// sc may be nil when no Redis cache is configured.
func NewNLPClient(cfg *config.Config, sc *cache.SentimentCache) *NLPClient {
	return &NLPClient{
		cfg:   cfg,
		http:  &http.Client{Timeout: 10 * time.Second},
		cache: sc,
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// AnalyzeMood classifies the emotional content of text. The service never
// fails the caller: an unreachable or erroring endpoint yields a neutral
// result carrying the error string.
func (n *NLPClient) AnalyzeMood(ctx context.Context, text, language string) MoodAnalysis {
	if language == "" {
		language = "en"
	}

	processed := strings.TrimSpace(text)
	if utf8.RuneCountInString(processed) > maxAnalysisChars {
		runes := []rune(processed)
		processed = string(runes[:maxAnalysisChars])
	}

	if n.cfg.NLPAPIURL == "" {
		return MoodAnalysis{
			MoodDetected: "neutral",
			Emotions:     map[string]float64{},
			ModelUsed:    "none",
			Error:        "sentiment endpoint not configured",
		}
	}

	if cached := n.cache.Get(ctx, n.cfg.NLPModel, processed); cached != "" {
		var result MoodAnalysis
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			result.Language = language
			return result
		}
	}

	scores, err := n.classify(ctx, processed)
	if err != nil {
		log.Printf("Sentiment analysis failed: %v", err)
		return MoodAnalysis{
			MoodDetected: "neutral",
			Emotions:     map[string]float64{},
			ModelUsed:    n.cfg.NLPModel,
			Language:     language,
			Error:        err.Error(),
		}
	}

	result := MoodAnalysis{
		MoodDetected: "neutral",
		Emotions:     map[string]float64{},
		ModelUsed:    n.cfg.NLPModel,
		Language:     language,
	}
	if len(scores) > 0 {
		result.Confidence = scores[0].Score
		if mood, ok := emotionToMood[strings.ToLower(scores[0].Label)]; ok {
			result.MoodDetected = mood
		}
		for i, s := range scores {
			if i >= 3 {
				break
			}
			result.Emotions[s.Label] = s.Score
		}
	}

	if serialized, err := json.Marshal(result); err == nil {
		n.cache.Set(ctx, n.cfg.NLPModel, processed, string(serialized))
	}
	return result
}

// classify posts the text to the inference endpoint and returns the label
// scores sorted descending
func (n *NLPClient) classify(ctx context.Context, text string) ([]labelScore, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(n.cfg.NLPAPIURL, "/") + "/" + n.cfg.NLPModel
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.NLPAPIToken != "" {
		req.Header.Set("Authorization", "Bearer "+n.cfg.NLPAPIToken)
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNLPUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrNLPUnavailable, resp.StatusCode)
	}

	// Inference API shape: [[{"label": ..., "score": ...}, ...]]
	var nested [][]labelScore
	if err := json.NewDecoder(resp.Body).Decode(&nested); err != nil {
		return nil, fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(nested) == 0 {
		return nil, nil
	}

	scores := nested[0]
	sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores, nil
}

// moodSuggestions lists activity ideas per detected mood
var moodSuggestions = map[string][]string{
	"sad": {
		"Take a few minutes to meditate",
		"Listen to soothing music",
		"Take a walk in nature",
		"Call someone close to you",
		"Keep a gratitude journal",
	},
	"anxious": {
		"Practice breathing exercises",
		"Do some yoga or stretching",
		"Try a guided meditation",
		"Tidy up your workspace",
		"Take a relaxing bath",
	},
	"angry": {
		"Get some physical exercise",
		"Write your thoughts in a journal",
		"Practice deep breathing",
		"Listen to energetic music",
		"Do something creative",
	},
	"happy": {
		"Share your joy with someone",
		"Do an activity you love",
		"Play a sport or dance",
		"Plan something fun",
		"Help someone else",
	},
	"neutral": {
		"Try a new activity",
		"Read an interesting book",
		"Take a walk",
		"Learn something new",
		"Practice mindfulness",
	},
}

// MoodSuggestions returns activity ideas for a detected mood, falling back
// to the neutral list for unknown moods
func MoodSuggestions(mood string) []string {
	if s, ok := moodSuggestions[mood]; ok {
		return s
	}
	return moodSuggestions["neutral"]
}

// NLPInfo describes the configured sentiment setup for clients
type NLPInfo struct {
	Model         string            `json:"model"`
	Endpoint      string            `json:"endpoint_configured"`
	MoodMapping   map[string]string `json:"mood_mapping"`
	MaxTextLength int               `json:"max_text_length"`
}

// GetNLPInfo reports the model, endpoint state, and label mapping
func (n *NLPClient) GetNLPInfo() NLPInfo {
	state := "configured"
	if n.cfg.NLPAPIURL == "" {
		state = "not configured"
	}
	mapping := make(map[string]string, len(emotionToMood))
	for k, v := range emotionToMood {
		mapping[k] = v
	}
	return NLPInfo{
		Model:         n.cfg.NLPModel,
		Endpoint:      state,
		MoodMapping:   mapping,
		MaxTextLength: maxAnalysisChars,
	}
}
