package dto

import "time"

// ListArticlesRequest carries the query parameters for the article listing
// endpoint.
type ListArticlesRequest struct {
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
	Source      string `query:"source"`
	Subject     string `query:"subject"`
	Sentiment   string `query:"sentiment"`
	InverseOnly bool   `query:"inverse_only"`
}

// ArticleResponse is one analyzed article row as served by the API. An
// article without analysis results appears once with empty analysis fields;
// an article analyzed for several subjects appears once per subject.
type ArticleResponse struct {
	ArticleID       string     `json:"article_id"`
	Source          string     `json:"source"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Subject         string     `json:"subject,omitempty"`
	Sentiment       string     `json:"sentiment,omitempty"`
	Confidence      float64    `json:"confidence,omitempty"`
	Explanation     string     `json:"explanation,omitempty"`
	IsInverseBiased bool       `json:"is_inverse_biased"`
	BiasScore       float64    `json:"bias_score,omitempty"`
}

// ListArticlesResponse wraps the article rows with paging metadata.
type ListArticlesResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Count    int               `json:"count"`
}

// ErrorResponse is the error payload returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}
