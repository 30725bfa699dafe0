package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"inversebias/internal/pipeline/config"
	"inversebias/internal/pipeline/dto"
	"inversebias/pkg/logger"
	"inversebias/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Bodies shorter than this after extraction are flagged as partial
// (paywall teasers, cookie walls).
const minBodyLength = 300

// ArticleFetcher retrieves a candidate URL and extracts clean headline and
// body text.
type ArticleFetcher struct {
	client  *http.Client
	cfg     *config.Crawler
	logger  *logger.Logger
	seen    *cache.Cache
	mu      sync.Mutex
	limiter map[string]*rate.Limiter
}

// NewArticleFetcher creates a new instance of ArticleFetcher.
func NewArticleFetcher(cfg *config.Crawler, log *logger.Logger) *ArticleFetcher {
	return &ArticleFetcher{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		cfg:     cfg,
		logger:  log,
		seen:    cache.New(30*time.Minute, 10*time.Minute),
		limiter: make(map[string]*rate.Limiter),
	}
}

// Fetch downloads and extracts one candidate. Fetches for independent URLs
// may run concurrently; a per-source rate limiter keeps each origin polite.
func (f *ArticleFetcher) Fetch(ctx context.Context, candidate dto.CandidateURL) (*dto.ExtractedArticle, error) {
	if _, dup := f.seen.Get(candidate.URL); dup {
		return nil, fmt.Errorf("%w: url already fetched this run", dto.ErrFetchFailed)
	}

	if err := f.sourceLimiter(candidate.SourceID).Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrFetchFailed, err)
	}

	body, err := f.download(ctx, candidate.URL)
	if err != nil {
		return nil, err
	}
	f.seen.Set(candidate.URL, struct{}{}, cache.DefaultExpiration)

	extracted, err := f.extract(body)
	if err != nil {
		return nil, err
	}
	if extracted.Title == "" {
		extracted.Title = candidate.Title
	}

	if extracted.Partial {
		f.logger.Warn("Partial extraction",
			logger.StringField("url", candidate.URL),
			logger.IntField("body_length", len(extracted.Body)),
		)
	}
	return extracted, nil
}

func (f *ArticleFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, dto.Transient(fmt.Errorf("%w: %v", dto.ErrFetchFailed, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("%w: status %d", dto.ErrFetchFailed, resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, dto.Transient(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dto.Transient(fmt.Errorf("%w: %v", dto.ErrFetchFailed, err))
	}
	return body, nil
}

// extract pulls the main content out of the page. readability isolates the
// article block; goquery flattens it to text. Malformed HTML degrades to
// partial extraction rather than failure where possible.
func (f *ArticleFetcher) extract(body []byte) (*dto.ExtractedArticle, error) {
	raw := string(body)

	doc, err := readability.NewDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrExtractionFailed, err)
	}
	content := doc.Content()

	contentDoc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dto.ErrExtractionFailed, err)
	}
	text := utils.CollapseWhitespace(contentDoc.Text())
	text = utils.CleanToValidUTF8(text)

	title := extractTitle(raw)

	return &dto.ExtractedArticle{
		Title:   title,
		Body:    text,
		Partial: len(text) < minBodyLength,
	}, nil
}

func extractTitle(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return utils.CleanToValidUTF8(strings.TrimSpace(og))
	}
	return utils.CleanToValidUTF8(strings.TrimSpace(doc.Find("title").First().Text()))
}

func (f *ArticleFetcher) sourceLimiter(sourceID string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.limiter[sourceID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.cfg.PerSourceRPS), 1)
		f.limiter[sourceID] = l
	}
	return l
}

func (f *ArticleFetcher) userAgent() string {
	if f.cfg.UserAgent != "" {
		return f.cfg.UserAgent
	}
	return "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
}
