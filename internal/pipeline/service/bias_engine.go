package service

import (
	"inversebias/internal/entity"
)

// DirectionTable maps a source leaning to the sentiment each subject is
// expected to receive from sources of that leaning. It is configuration
// data, not code: new leanings and subjects are added without touching the
// engine.
type DirectionTable map[entity.Leaning]map[string]entity.Sentiment

// Expected looks up the expected sentiment for (leaning, subject).
func (t DirectionTable) Expected(leaning entity.Leaning, subject string) (entity.Sentiment, bool) {
	subjects, ok := t[leaning]
	if !ok {
		return "", false
	}
	expected, ok := subjects[subject]
	return expected, ok
}

// BiasEngine computes bias verdicts. Verdict is deterministic and
// side-effect-free: identical inputs always produce identical verdicts.
type BiasEngine struct {
	table     DirectionTable
	threshold float64
}

// NewBiasEngine creates an engine with the given direction table and
// confidence threshold.
func NewBiasEngine(table DirectionTable, threshold float64) *BiasEngine {
	return &BiasEngine{table: table, threshold: threshold}
}

// Verdict decides whether the detected sentiment contradicts the source's
// expected direction for the subject. An inverse verdict is raised only
// when confidence meets the threshold (equality counts) AND the sentiment
// is the opposite polarity of the expected one. Neutral sentiment, missing
// table entries, and below-threshold confidence all yield a non-verdict.
func (e *BiasEngine) Verdict(sentiment entity.Sentiment, confidence float64, leaning entity.Leaning, subject string) entity.BiasVerdict {
	verdict := entity.BiasVerdict{
		Subject:   subject,
		Threshold: e.threshold,
	}

	expected, ok := e.table.Expected(leaning, subject)
	if !ok {
		return verdict
	}
	verdict.ExpectedSentiment = expected

	if confidence < e.threshold {
		return verdict
	}
	opposite, ok := expected.Opposite()
	if !ok {
		return verdict
	}
	if sentiment != opposite {
		return verdict
	}

	verdict.IsInverseBiased = true
	verdict.BiasScore = confidence
	return verdict
}
