package service

import (
	"context"
	"testing"
	"time"

	"inversebias/internal/entity"
	"inversebias/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeduplicator_SeenURL(t *testing.T) {
	repo := newMemArticleRepo()
	dedup := NewDeduplicator(repo, 72*time.Hour, logger.NewNop())

	id := entity.ArticleID("example", "https://example.com/story")
	seen, err := dedup.SeenURL(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = repo.Upsert(context.Background(), &entity.Article{ID: id, SourceID: "example", URL: "https://example.com/story"})
	require.NoError(t, err)

	seen, err = dedup.SeenURL(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestDeduplicator_SeenContentLinksVariant(t *testing.T) {
	repo := newMemArticleRepo()
	dedup := NewDeduplicator(repo, 72*time.Hour, logger.NewNop())

	now := time.Now().UTC()
	hash := entity.ContentFingerprint("Title", "Body")
	original := &entity.Article{
		ID:           entity.ArticleID("example", "https://example.com/story"),
		SourceID:     "example",
		URL:          "https://example.com/story",
		ContentHash:  hash,
		DiscoveredAt: now.Add(-time.Hour),
	}
	_, err := repo.Upsert(context.Background(), original)
	require.NoError(t, err)

	existing, err := dedup.SeenContent(context.Background(), "example", "https://example.com/story-rewritten", hash, now)
	require.NoError(t, err)
	require.NotNil(t, existing)
	assert.Equal(t, original.ID, existing.ID)

	variants, err := repo.FindAllVariants(context.Background())
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, original.ID, variants[0].ArticleID)
	assert.Equal(t, "https://example.com/story-rewritten", variants[0].VariantURL)
	assert.Equal(t, hash, variants[0].ContentHash)
}

func TestDeduplicator_SeenContentSameURLNoVariant(t *testing.T) {
	repo := newMemArticleRepo()
	dedup := NewDeduplicator(repo, 72*time.Hour, logger.NewNop())

	now := time.Now().UTC()
	hash := entity.ContentFingerprint("Title", "Body")
	original := &entity.Article{
		ID:           entity.ArticleID("example", "https://example.com/story"),
		SourceID:     "example",
		URL:          "https://example.com/story",
		ContentHash:  hash,
		DiscoveredAt: now.Add(-time.Hour),
	}
	_, err := repo.Upsert(context.Background(), original)
	require.NoError(t, err)

	existing, err := dedup.SeenContent(context.Background(), "example", "https://example.com/story", hash, now)
	require.NoError(t, err)
	require.NotNil(t, existing)

	variants, err := repo.FindAllVariants(context.Background())
	require.NoError(t, err)
	assert.Empty(t, variants)
}

func TestDeduplicator_SeenContentOutsideWindow(t *testing.T) {
	repo := newMemArticleRepo()
	dedup := NewDeduplicator(repo, 72*time.Hour, logger.NewNop())

	now := time.Now().UTC()
	hash := entity.ContentFingerprint("Old Title", "Old Body")
	stale := &entity.Article{
		ID:           entity.ArticleID("example", "https://example.com/old"),
		SourceID:     "example",
		URL:          "https://example.com/old",
		ContentHash:  hash,
		DiscoveredAt: now.Add(-100 * time.Hour),
	}
	_, err := repo.Upsert(context.Background(), stale)
	require.NoError(t, err)

	existing, err := dedup.SeenContent(context.Background(), "example", "https://example.com/new", hash, now)
	require.NoError(t, err)
	assert.Nil(t, existing)
}

func TestDeduplicator_SeenContentScopedToSource(t *testing.T) {
	repo := newMemArticleRepo()
	dedup := NewDeduplicator(repo, 72*time.Hour, logger.NewNop())

	now := time.Now().UTC()
	hash := entity.ContentFingerprint("Wire Story", "Syndicated body")
	other := &entity.Article{
		ID:           entity.ArticleID("other", "https://other.com/wire"),
		SourceID:     "other",
		URL:          "https://other.com/wire",
		ContentHash:  hash,
		DiscoveredAt: now.Add(-time.Hour),
	}
	_, err := repo.Upsert(context.Background(), other)
	require.NoError(t, err)

	// Syndicated content on a different source is a distinct article.
	existing, err := dedup.SeenContent(context.Background(), "example", "https://example.com/wire", hash, now)
	require.NoError(t, err)
	assert.Nil(t, existing)
}
