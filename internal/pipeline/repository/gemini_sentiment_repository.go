package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inversebias/internal/pipeline/config"
	"inversebias/internal/pipeline/dto"
	"inversebias/pkg/logger"
	"inversebias/pkg/ratelimit"
	"inversebias/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

const maxClassifyTextLength = 6000

// geminiSentimentRepository implements SentimentRepository against the
// Google Gemini API.
type geminiSentimentRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiSentimentRepository creates a Gemini-backed sentiment capability.
func NewGeminiSentimentRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (SentimentRepository, error) {
	if cfg.Gemini.MaxRequestPerMinute <= 0 {
		return nil, fmt.Errorf("gemini max_request_per_minute must be positive")
	}
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiSentimentRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		tokenLimiter:   tokenLimiter,
		requestLimiter: requestLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ModelID returns the configured model identifier.
func (r *geminiSentimentRepository) ModelID() string {
	return r.cfg.Gemini.Model
}

// Classify asks the model how the article portrays the subject and parses
// the strict-JSON answer.
func (r *geminiSentimentRepository) Classify(ctx context.Context, text, subject string) (*dto.SentimentResult, error) {
	prompt := BuildClassifyPrompt(utils.Truncate(text, maxClassifyTextLength), subject)

	geminiResp, err := r.executeGeminiRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseClassifyResponse(geminiResp)
	if err != nil {
		return nil, err
	}
	result.ModelID = r.cfg.Gemini.Model
	return result, nil
}

func (r *geminiSentimentRepository) executeGeminiRequest(ctx context.Context, prompt string) (*dto.GeminiAPIResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, dto.Transient(fmt.Errorf("failed to count tokens: %w", err))
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return nil, dto.Transient(fmt.Errorf("failed to send request to Gemini API: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))
		r.logger.Error("Gemini API request failed", logger.IntField("status_code", resp.StatusCode))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, dto.Transient(err)
		}
		return nil, err
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return &geminiResp, nil
}

// BuildClassifyPrompt renders the sentiment-classification prompt.
func BuildClassifyPrompt(text, subject string) string {
	var b strings.Builder
	b.WriteString("You are a media analyst. In the following news article, classify how the author portrays ")
	b.WriteString(subject)
	b.WriteString(".\n")
	b.WriteString("Classify the sentiment as one of: positive, neutral, negative. ")
	b.WriteString("If it is not clearly positive or negative, classify it as neutral.\n")
	b.WriteString("Answer with strict JSON only, no markdown, matching this schema:\n")
	b.WriteString(`{"sentiment": "positive|neutral|negative", "confidence": 0.0, "explanation": "one sentence"}`)
	b.WriteString("\n\nArticle:\n")
	b.WriteString(text)
	return b.String()
}

func parseClassifyResponse(resp *dto.GeminiAPIResponse) (*dto.SentimentResult, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	jsonString := resp.Candidates[0].Content.Parts[0].Text
	jsonString = strings.TrimSpace(strings.Trim(jsonString, "`json\n`"))

	var result dto.SentimentResult
	if err := json.Unmarshal([]byte(jsonString), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sentiment result from Gemini response: %w", err)
	}
	if !result.Label.Valid() {
		return nil, fmt.Errorf("model returned unknown sentiment %q", result.Label)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("model returned confidence %v outside [0,1]", result.Confidence)
	}
	return &result, nil
}
