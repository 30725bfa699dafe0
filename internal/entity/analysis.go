package entity

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Sentiment is a label from the fixed category set.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether the sentiment is one of the known labels.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Opposite returns the opposing polarity. Neutral has none.
func (s Sentiment) Opposite() (Sentiment, bool) {
	switch s {
	case SentimentPositive:
		return SentimentNegative, true
	case SentimentNegative:
		return SentimentPositive, true
	}
	return "", false
}

// AnalysisResult is one sentiment judgement for an (article, subject)
// pair. The ID is derived from that pair, so re-analysis upserts are
// no-ops.
type AnalysisResult struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ArticleID   string    `gorm:"uniqueIndex:idx_results_article_subject;not null" json:"article_id"`
	Subject     string    `gorm:"uniqueIndex:idx_results_article_subject;not null" json:"subject"`
	Sentiment   Sentiment `gorm:"not null" json:"sentiment"`
	Confidence  float64   `gorm:"not null" json:"confidence"`
	ModelID     string    `json:"model_id"`
	Explanation string    `json:"explanation"`
	AnalyzedAt  time.Time `json:"analyzed_at"`

	Verdict *BiasVerdict `gorm:"foreignKey:AnalysisResultID" json:"verdict,omitempty"`
}

// TableName specifies the table name for the AnalysisResult model.
func (AnalysisResult) TableName() string {
	return "analysis_results"
}

// ResultID derives the stable analysis-result identifier.
func ResultID(articleID, subject string) string {
	sum := md5.Sum([]byte(articleID + "|" + subject))
	return hex.EncodeToString(sum[:])
}

// BiasVerdict is the deterministic bias decision for one analysis result.
type BiasVerdict struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	AnalysisResultID  string    `gorm:"uniqueIndex;not null" json:"analysis_result_id"`
	ArticleID         string    `gorm:"index;not null" json:"article_id"`
	Subject           string    `gorm:"not null" json:"subject"`
	IsInverseBiased   bool      `json:"is_inverse_biased"`
	BiasScore         float64   `json:"bias_score"`
	Threshold         float64   `json:"threshold"`
	ExpectedSentiment Sentiment `json:"expected_sentiment"`
	ComputedAt        time.Time `json:"computed_at"`
}

// TableName specifies the table name for the BiasVerdict model.
func (BiasVerdict) TableName() string {
	return "bias_verdicts"
}
