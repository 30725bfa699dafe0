package entity

import (
	"crypto/md5"
	"encoding/hex"
	"time"

	"github.com/lib/pq"
)

// Article is a fetched news article. Created once per unique
// (source, canonical URL); analysis results attach to it later but the row
// itself is never rewritten.
type Article struct {
	ID              string         `gorm:"primaryKey" json:"id"`
	SourceID        string         `gorm:"uniqueIndex:idx_articles_source_url;not null" json:"source_id"`
	URL             string         `gorm:"uniqueIndex:idx_articles_source_url;not null" json:"url"`
	Title           string         `json:"title"`
	Body            string         `json:"body"`
	Language        string         `json:"language"`
	PublicationDate *time.Time     `json:"publication_date,omitempty"`
	DiscoveredAt    time.Time      `json:"discovered_at"`
	FetchedAt       time.Time      `json:"fetched_at"`
	ContentHash     string         `gorm:"index" json:"content_hash"`
	Partial         bool           `json:"partial"`
	MatchedSubjects pq.StringArray `gorm:"type:text[]" json:"matched_subjects"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`

	AnalysisResults []AnalysisResult `gorm:"foreignKey:ArticleID" json:"analysis_results,omitempty"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// ArticleID derives the stable article identifier from the source and the
// canonical URL. The same URL always maps to the same ID across runs.
func ArticleID(sourceID, canonicalURL string) string {
	sum := md5.Sum([]byte(sourceID + "|" + canonicalURL))
	return hex.EncodeToString(sum[:])
}

// ContentFingerprint hashes the extracted title and body. Used to catch
// URL rewrites of identical content.
func ContentFingerprint(title, body string) string {
	sum := md5.Sum([]byte(title + "|" + body))
	return hex.EncodeToString(sum[:])
}

// ArticleVariant links a rewritten URL to the article that already carries
// its content. Kept for audit; variants are never analyzed.
type ArticleVariant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ArticleID   string    `gorm:"index;not null" json:"article_id"`
	VariantURL  string    `gorm:"uniqueIndex;not null" json:"variant_url"`
	ContentHash string    `json:"content_hash"`
	SeenAt      time.Time `json:"seen_at"`
}

// TableName specifies the table name for the ArticleVariant model.
func (ArticleVariant) TableName() string {
	return "article_variants"
}
