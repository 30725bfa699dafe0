package entity

import "time"

// Leaning is the known political leaning of a news source.
type Leaning string

const (
	LeaningLeft   Leaning = "left"
	LeaningCenter Leaning = "center"
	LeaningRight  Leaning = "right"
)

// Valid reports whether the leaning is one of the known values.
func (l Leaning) Valid() bool {
	switch l {
	case LeaningLeft, LeaningCenter, LeaningRight:
		return true
	}
	return false
}

// Source is a configured news source. Rows are immutable after
// configuration load; upserts from later cycles are no-ops.
type Source struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	BaseURL    string    `json:"base_url"`
	SitemapURL string    `json:"sitemap_url"`
	FeedURL    string    `json:"feed_url,omitempty"`
	Leaning    Leaning   `gorm:"not null" json:"leaning"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Source model.
func (Source) TableName() string {
	return "sources"
}
