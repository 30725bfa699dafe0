package dto

import "inversebias/internal/entity"

// SentimentResult is the outcome of one sentiment capability call, scoped
// to a single subject.
type SentimentResult struct {
	Label       entity.Sentiment `json:"sentiment"`
	Confidence  float64          `json:"confidence"`
	Explanation string           `json:"explanation"`
	ModelID     string           `json:"model_id"`
}

// GeminiAPIRequest is the request payload for the Gemini generateContent
// endpoint.
type GeminiAPIRequest struct {
	Contents []Content `json:"contents"`
}

// Content represents the content of a request or response.
type Content struct {
	Parts []Part `json:"parts"`
}

// Part is a part of the content.
type Part struct {
	Text string `json:"text"`
}

// GeminiAPIResponse is the response from the Gemini API.
type GeminiAPIResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// GeminiCandidate is a candidate response from the Gemini API.
type GeminiCandidate struct {
	Content Content `json:"content"`
}
