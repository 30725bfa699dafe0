package service

import (
	"testing"

	"inversebias/internal/entity"

	"github.com/stretchr/testify/assert"
)

func testDirectionTable() DirectionTable {
	return DirectionTable{
		entity.LeaningRight: {
			"trump": entity.SentimentPositive,
			"biden": entity.SentimentNegative,
		},
		entity.LeaningLeft: {
			"trump": entity.SentimentNegative,
			"biden": entity.SentimentPositive,
		},
	}
}

func TestBiasEngine_Verdict(t *testing.T) {
	engine := NewBiasEngine(testDirectionTable(), 0.75)

	tests := []struct {
		name       string
		sentiment  entity.Sentiment
		confidence float64
		leaning    entity.Leaning
		subject    string
		wantBias   bool
	}{
		{
			name:       "right source negative on expected-positive subject",
			sentiment:  entity.SentimentNegative,
			confidence: 0.9,
			leaning:    entity.LeaningRight,
			subject:    "trump",
			wantBias:   true,
		},
		{
			name:       "sentiment matches expectation",
			sentiment:  entity.SentimentPositive,
			confidence: 0.9,
			leaning:    entity.LeaningRight,
			subject:    "trump",
			wantBias:   false,
		},
		{
			name:       "neutral sentiment never inverse",
			sentiment:  entity.SentimentNeutral,
			confidence: 0.99,
			leaning:    entity.LeaningRight,
			subject:    "trump",
			wantBias:   false,
		},
		{
			name:       "confidence below threshold",
			sentiment:  entity.SentimentNegative,
			confidence: 0.74,
			leaning:    entity.LeaningRight,
			subject:    "trump",
			wantBias:   false,
		},
		{
			name:       "confidence exactly at threshold counts",
			sentiment:  entity.SentimentNegative,
			confidence: 0.75,
			leaning:    entity.LeaningRight,
			subject:    "trump",
			wantBias:   true,
		},
		{
			name:       "unknown subject has no expectation",
			sentiment:  entity.SentimentNegative,
			confidence: 0.9,
			leaning:    entity.LeaningRight,
			subject:    "ukraine",
			wantBias:   false,
		},
		{
			name:       "unknown leaning has no expectation",
			sentiment:  entity.SentimentNegative,
			confidence: 0.9,
			leaning:    entity.LeaningCenter,
			subject:    "trump",
			wantBias:   false,
		},
		{
			name:       "left source positive on expected-negative subject",
			sentiment:  entity.SentimentPositive,
			confidence: 0.8,
			leaning:    entity.LeaningLeft,
			subject:    "trump",
			wantBias:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := engine.Verdict(tt.sentiment, tt.confidence, tt.leaning, tt.subject)
			assert.Equal(t, tt.wantBias, verdict.IsInverseBiased)
			assert.Equal(t, tt.subject, verdict.Subject)
			assert.Equal(t, 0.75, verdict.Threshold)
			if tt.wantBias {
				assert.Equal(t, tt.confidence, verdict.BiasScore)
			} else {
				assert.Zero(t, verdict.BiasScore)
			}
		})
	}
}

func TestBiasEngine_Deterministic(t *testing.T) {
	engine := NewBiasEngine(testDirectionTable(), 0.75)

	first := engine.Verdict(entity.SentimentNegative, 0.9, entity.LeaningRight, "trump")
	for i := 0; i < 100; i++ {
		again := engine.Verdict(entity.SentimentNegative, 0.9, entity.LeaningRight, "trump")
		assert.Equal(t, first, again)
	}
}

func TestBiasEngine_ExpectedSentimentRecorded(t *testing.T) {
	engine := NewBiasEngine(testDirectionTable(), 0.75)

	verdict := engine.Verdict(entity.SentimentNegative, 0.5, entity.LeaningRight, "trump")
	assert.Equal(t, entity.SentimentPositive, verdict.ExpectedSentiment)
	assert.False(t, verdict.IsInverseBiased)

	verdict = engine.Verdict(entity.SentimentNegative, 0.5, entity.LeaningRight, "unknown")
	assert.Empty(t, verdict.ExpectedSentiment)
}
