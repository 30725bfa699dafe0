package service

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"inversebias/internal/entity"
	"inversebias/internal/pipeline/config"
	"inversebias/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const newsSitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:news="http://www.google.com/schemas/sitemap-news/0.9">
  <url>
    <loc>https://example.com/politics/story-one</loc>
    <news:news>
      <news:publication>
        <news:name>Example News</news:name>
        <news:language>en</news:language>
      </news:publication>
      <news:publication_date>2026-08-27T10:30:00Z</news:publication_date>
      <news:title>Story One</news:title>
    </news:news>
  </url>
  <url>
    <loc>https://example.com/politics/story-two</loc>
    <lastmod>2026-08-26</lastmod>
  </url>
  <url>
    <loc></loc>
  </url>
</urlset>`

func crawlerConfig() *config.Crawler {
	return &config.Crawler{
		RequestTimeout: 5 * time.Second,
		MaxRetries:     3,
		RetryBackoff:   10 * time.Millisecond,
	}
}

func testSource(sitemapURL, feedURL string) entity.Source {
	return entity.Source{
		ID:         "example",
		Name:       "Example News",
		SitemapURL: sitemapURL,
		FeedURL:    feedURL,
		Leaning:    entity.LeaningCenter,
	}
}

func TestSitemapCrawler_NewsSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(newsSitemapXML))
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	candidates, err := crawler.Crawl(context.Background(), testSource(srv.URL, ""))
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "https://example.com/politics/story-one", candidates[0].URL)
	assert.Equal(t, "Story One", candidates[0].Title)
	assert.Equal(t, "en", candidates[0].Language)
	require.NotNil(t, candidates[0].PublicationDate)
	assert.Equal(t, 2026, candidates[0].PublicationDate.Year())
	assert.Equal(t, "example", candidates[0].SourceID)
	assert.False(t, candidates[0].DiscoveredAt.IsZero())

	assert.Equal(t, "https://example.com/politics/story-two", candidates[1].URL)
	assert.Empty(t, candidates[1].Title)
	require.NotNil(t, candidates[1].PublicationDate)
}

func TestSitemapCrawler_GzippedSitemap(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(newsSitemapXML))
	gz.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	candidates, err := crawler.Crawl(context.Background(), testSource(srv.URL, ""))
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestSitemapCrawler_SitemapIndex(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/child.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(newsSitemapXML))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/index.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>` + srv.URL + `/child.xml</loc></sitemap>
  <sitemap><loc>` + srv.URL + `/broken.xml</loc></sitemap>
</sitemapindex>`))
	})

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	candidates, err := crawler.Crawl(context.Background(), testSource(srv.URL+"/index.xml", ""))
	require.NoError(t, err)
	// The broken child is skipped, the good one still contributes.
	assert.Len(t, candidates, 2)
}

func TestSitemapCrawler_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(newsSitemapXML))
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	candidates, err := crawler.Crawl(context.Background(), testSource(srv.URL, ""))
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestSitemapCrawler_PermanentFailureNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	_, err := crawler.Crawl(context.Background(), testSource(srv.URL, ""))
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestSitemapCrawler_ExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	_, err := crawler.Crawl(context.Background(), testSource(srv.URL, ""))
	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestSitemapCrawler_RSSFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Feed</title>
    <language>en-us</language>
    <item>
      <title>Feed Story</title>
      <link>https://example.com/feed-story</link>
      <pubDate>Wed, 27 Aug 2026 09:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`))
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	candidates, err := crawler.Crawl(context.Background(), testSource("", srv.URL))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "https://example.com/feed-story", candidates[0].URL)
	assert.Equal(t, "Feed Story", candidates[0].Title)
	require.NotNil(t, candidates[0].PublicationDate)
}

func TestSitemapCrawler_UnparseablePayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml at all"))
	}))
	defer srv.Close()

	crawler := NewSitemapCrawler(crawlerConfig(), logger.NewNop())
	_, err := crawler.Crawl(context.Background(), testSource(srv.URL, ""))
	assert.Error(t, err)
}
