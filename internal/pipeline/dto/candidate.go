package dto

import "time"

// CandidateURL is one article URL discovered from a source's sitemap or
// feed, before fetching.
type CandidateURL struct {
	SourceID        string
	URL             string
	Title           string
	Language        string
	PublicationDate *time.Time
	DiscoveredAt    time.Time
}

// ExtractedArticle is the cleaned content of a fetched candidate. Partial
// marks extractions that yielded suspiciously little body text (paywalls,
// teaser pages); partial articles are persisted but flagged.
type ExtractedArticle struct {
	Title   string
	Body    string
	Partial bool
}
