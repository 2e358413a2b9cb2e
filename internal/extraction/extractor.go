package extraction

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultConfidenceThreshold is the minimum confidence for import when none
// is configured.
const DefaultConfidenceThreshold = 0.6

// OpenAIConfig holds configuration for the extraction model.
type OpenAIConfig struct {
	APIKey              string
	Model               string
	Temperature         float32
	MaxTokens           int
	Timeout             time.Duration
	ConfidenceThreshold float64
}

// DefaultOpenAIConfig returns sensible defaults for caption classification.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:               openai.GPT4oMini,
		Temperature:         0.2, // low temperature for deterministic classification
		MaxTokens:           1024,
		Timeout:             30 * time.Second,
		ConfidenceThreshold: DefaultConfidenceThreshold,
	}
}

// OpenAIExtractor classifies Instagram captions with a chat-completion call.
// One outbound call per post, no retries: a transient failure degrades to
// NotEvent for that post instead of aborting the run.
type OpenAIExtractor struct {
	client *openai.Client
	config OpenAIConfig
	logger *slog.Logger
}

// NewOpenAIExtractor creates an extractor backed by the OpenAI API.
func NewOpenAIExtractor(config OpenAIConfig, logger *slog.Logger) *OpenAIExtractor {
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = DefaultConfidenceThreshold
	}

	return &OpenAIExtractor{
		client: openai.NewClient(config.APIKey),
		config: config,
		logger: logger,
	}
}

// ConfidenceThreshold returns the minimum confidence for import.
func (x *OpenAIExtractor) ConfidenceThreshold() float64 {
	return x.config.ConfidenceThreshold
}

// Extract classifies a caption. Any failure — missing credential, transport
// error, malformed model output — returns NotEvent(0) rather than an error.
func (x *OpenAIExtractor) Extract(ctx context.Context, caption string, tenant TenantContext) Extraction {
	if x.config.APIKey == "" {
		x.logger.Warn("extraction skipped: api key not configured")
		return NotEvent(0)
	}

	prompt := BuildPrompt(caption, tenant)

	apiCtx, cancel := context.WithTimeout(ctx, x.config.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := x.client.CreateChatCompletion(apiCtx, openai.ChatCompletionRequest{
		Model:               x.config.Model,
		Temperature:         x.config.Temperature,
		MaxCompletionTokens: x.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		x.logger.Warn("extraction call failed, treating as not-event",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return NotEvent(0)
	}

	if len(resp.Choices) == 0 {
		x.logger.Warn("extraction returned no choices", "model", x.config.Model)
		return NotEvent(0)
	}

	extraction := ParseResponse(resp.Choices[0].Message.Content)

	x.logger.Debug("extraction complete",
		"is_event", extraction.IsEvent(),
		"confidence", extraction.Confidence,
		"duration_ms", time.Since(start).Milliseconds())

	return extraction
}

// extractionPayload mirrors the JSON shape requested from the model.
type extractionPayload struct {
	IsEvent           bool    `json:"is_event"`
	Confidence        float64 `json:"confidence"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	StartDate         string  `json:"start_date"`
	StartTime         string  `json:"start_time"`
	EndDate           string  `json:"end_date"`
	EndTime           string  `json:"end_time"`
	Location          string  `json:"location"`
	SuggestedCategory string  `json:"suggested_category"`
}

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.+\\})\\s*```")

// ParseResponse converts raw model output into an Extraction, fail-closed:
// output that cannot be parsed as the expected JSON object yields
// NotEvent(0). Individual date/time fields that fail to parse are dropped
// rather than failing the whole extraction.
func ParseResponse(raw string) Extraction {
	jsonStr := raw
	if matches := codeFenceRe.FindStringSubmatch(raw); len(matches) > 1 {
		jsonStr = matches[1]
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return NotEvent(0)
	}

	confidence := clamp01(payload.Confidence)
	if !payload.IsEvent {
		return NotEvent(confidence)
	}

	return Extraction{
		Confidence: confidence,
		Details: &EventDetails{
			Title:             payload.Title,
			Description:       payload.Description,
			StartDate:         parseDate(payload.StartDate),
			StartTime:         parseClock(payload.StartTime),
			EndDate:           parseDate(payload.EndDate),
			EndTime:           parseClock(payload.EndTime),
			Location:          payload.Location,
			SuggestedCategory: payload.SuggestedCategory,
		},
	}
}

// parseDate parses YYYY-MM-DD, returning nil for empty or malformed input.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &d
}

// parseClock parses HH:MM, returning nil for empty or malformed input.
func parseClock(s string) *ClockTime {
	if s == "" {
		return nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return nil
	}
	return &ClockTime{Hour: t.Hour(), Minute: t.Minute()}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
