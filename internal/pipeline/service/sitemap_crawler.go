package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"inversebias/internal/entity"
	"inversebias/internal/pipeline/config"
	"inversebias/internal/pipeline/dto"
	"inversebias/pkg/logger"

	"github.com/mmcdole/gofeed"
)

// SitemapCrawler discovers candidate article URLs from a source's news
// sitemap, or from its RSS feed when the source publishes one instead.
type SitemapCrawler struct {
	client     *http.Client
	feedParser *gofeed.Parser
	cfg        *config.Crawler
	logger     *logger.Logger
}

// NewSitemapCrawler creates a new instance of SitemapCrawler.
func NewSitemapCrawler(cfg *config.Crawler, log *logger.Logger) *SitemapCrawler {
	return &SitemapCrawler{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		feedParser: gofeed.NewParser(),
		cfg:        cfg,
		logger:     log,
	}
}

// Crawl re-reads the source's whole sitemap or feed and returns the
// candidates it lists. A candidate's DiscoveredAt is the crawl time.
func (c *SitemapCrawler) Crawl(ctx context.Context, source entity.Source) ([]dto.CandidateURL, error) {
	if source.FeedURL != "" {
		return c.crawlFeed(ctx, source)
	}
	return c.crawlSitemap(ctx, source, source.SitemapURL, true)
}

func (c *SitemapCrawler) crawlSitemap(ctx context.Context, source entity.Source, sitemapURL string, followIndex bool) ([]dto.CandidateURL, error) {
	body, err := c.fetchWithRetry(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap for %s: %w", source.ID, err)
	}

	now := time.Now().UTC()

	var urlset dto.URLSet
	if err := xml.Unmarshal(body, &urlset); err == nil && len(urlset.URLs) > 0 {
		return c.candidatesFromURLSet(source, urlset, now), nil
	}

	// Some sources publish a sitemap index pointing at per-day sitemaps.
	// Follow one level, never deeper.
	var index dto.SitemapIndex
	if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
		if !followIndex {
			return nil, fmt.Errorf("nested sitemap index at %s", sitemapURL)
		}
		var candidates []dto.CandidateURL
		for _, ref := range index.Sitemaps {
			select {
			case <-ctx.Done():
				return candidates, ctx.Err()
			default:
			}
			children, err := c.crawlSitemap(ctx, source, ref.Loc, false)
			if err != nil {
				c.logger.Warn("Failed to crawl child sitemap",
					logger.StringField("source", source.ID),
					logger.StringField("url", ref.Loc),
					logger.ErrorField(err),
				)
				continue
			}
			candidates = append(candidates, children...)
		}
		return candidates, nil
	}

	return nil, fmt.Errorf("failed to parse sitemap for %s: not a urlset or sitemapindex", source.ID)
}

func (c *SitemapCrawler) candidatesFromURLSet(source entity.Source, urlset dto.URLSet, now time.Time) []dto.CandidateURL {
	candidates := make([]dto.CandidateURL, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		loc := strings.TrimSpace(u.Loc)
		if loc == "" {
			continue
		}
		cand := dto.CandidateURL{
			SourceID:     source.ID,
			URL:          loc,
			DiscoveredAt: now,
		}
		if u.News != nil {
			cand.Title = strings.TrimSpace(u.News.Title)
			cand.Language = strings.TrimSpace(u.News.Publication.Language)
			cand.PublicationDate = parseSitemapTime(u.News.PublicationDate)
		}
		if cand.PublicationDate == nil {
			cand.PublicationDate = parseSitemapTime(u.LastMod)
		}
		candidates = append(candidates, cand)
	}
	return candidates
}

func (c *SitemapCrawler) crawlFeed(ctx context.Context, source entity.Source) ([]dto.CandidateURL, error) {
	feed, err := c.feedParser.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed for %s: %w", source.ID, err)
	}

	now := time.Now().UTC()
	candidates := make([]dto.CandidateURL, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		candidates = append(candidates, dto.CandidateURL{
			SourceID:        source.ID,
			URL:             item.Link,
			Title:           strings.TrimSpace(item.Title),
			Language:        feed.Language,
			PublicationDate: item.PublishedParsed,
			DiscoveredAt:    now,
		})
	}
	return candidates, nil
}

// fetchWithRetry GETs the URL with bounded exponential backoff on transient
// failures. Responses are transparently gunzipped whether the server sets
// Content-Encoding or serves a raw .gz payload.
func (c *SitemapCrawler) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	backoff := c.cfg.RetryBackoff

	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		body, err := c.fetchOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !dto.IsTransient(err) {
			return nil, err
		}
		c.logger.Warn("Transient sitemap fetch failure",
			logger.StringField("url", rawURL),
			logger.IntField("attempt", attempt),
			logger.ErrorField(err),
		)
		if attempt == c.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, lastErr
}

func (c *SitemapCrawler) fetchOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, dto.Transient(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, dto.Transient(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dto.Transient(fmt.Errorf("failed to read response body: %w", err))
	}
	return maybeGunzip(body)
}

// maybeGunzip decompresses the payload when it carries the gzip magic
// bytes, and passes it through otherwise.
func maybeGunzip(body []byte) ([]byte, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body, nil
	}
	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip payload: %w", err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress payload: %w", err)
	}
	return out, nil
}

func parseSitemapTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
