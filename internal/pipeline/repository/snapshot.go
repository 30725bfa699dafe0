package repository

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"inversebias/internal/entity"
)

// snapshotSchemaVersion guards against decoding snapshots written by an
// incompatible build.
const snapshotSchemaVersion = 1

// Snapshot is a complete serialized copy of the repository's data, the unit
// of transfer for storage synchronization.
type Snapshot struct {
	SchemaVersion int                     `json:"schema_version"`
	ExportedAt    time.Time               `json:"exported_at"`
	Sources       []entity.Source         `json:"sources"`
	Articles      []entity.Article        `json:"articles"`
	Variants      []entity.ArticleVariant `json:"variants"`
	Results       []entity.AnalysisResult `json:"results"`
	Verdicts      []entity.BiasVerdict    `json:"verdicts"`
}

// Encode serializes the snapshot as gzip-compressed JSON.
func (s *Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot parses a gzip-compressed JSON snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	defer gz.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(gz).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snapshot.SchemaVersion != snapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}
	return &snapshot, nil
}

// NewSnapshotRepository creates a SnapshotRepository over the given
// repositories.
func NewSnapshotRepository(sources SourceRepository, articles ArticleRepository, analyses AnalysisRepository) SnapshotRepository {
	return &snapshotRepository{
		sources:  sources,
		articles: articles,
		analyses: analyses,
	}
}

type snapshotRepository struct {
	sources  SourceRepository
	articles ArticleRepository
	analyses AnalysisRepository
}

// Export reads the whole dataset into a snapshot.
func (r *snapshotRepository) Export(ctx context.Context) (*Snapshot, error) {
	sources, err := r.sources.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export sources: %w", err)
	}
	articles, err := r.articles.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export articles: %w", err)
	}
	variants, err := r.articles.FindAllVariants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export variants: %w", err)
	}
	results, err := r.analyses.FindAllResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export results: %w", err)
	}
	verdicts, err := r.analyses.FindAllVerdicts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export verdicts: %w", err)
	}

	return &Snapshot{
		SchemaVersion: snapshotSchemaVersion,
		ExportedAt:    time.Now().UTC(),
		Sources:       sources,
		Articles:      articles,
		Variants:      variants,
		Results:       results,
		Verdicts:      verdicts,
	}, nil
}

// Import upserts every snapshot row into the local store. All upserts are
// keyed on natural identifiers, so importing on top of existing local data
// merges instead of duplicating.
func (r *snapshotRepository) Import(ctx context.Context, snapshot *Snapshot) error {
	for i := range snapshot.Sources {
		if err := r.sources.Upsert(ctx, &snapshot.Sources[i]); err != nil {
			return fmt.Errorf("failed to import source %s: %w", snapshot.Sources[i].ID, err)
		}
	}
	for i := range snapshot.Articles {
		// Detach associations; results are imported explicitly below.
		article := snapshot.Articles[i]
		article.AnalysisResults = nil
		if _, err := r.articles.Upsert(ctx, &article); err != nil {
			return fmt.Errorf("failed to import article %s: %w", article.ID, err)
		}
	}
	for i := range snapshot.Variants {
		variant := snapshot.Variants[i]
		variant.ID = 0
		if err := r.articles.CreateVariant(ctx, &variant); err != nil {
			return fmt.Errorf("failed to import variant %s: %w", variant.VariantURL, err)
		}
	}
	for i := range snapshot.Results {
		result := snapshot.Results[i]
		result.Verdict = nil
		if err := r.analyses.UpsertResult(ctx, &result); err != nil {
			return fmt.Errorf("failed to import result %s: %w", result.ID, err)
		}
	}
	for i := range snapshot.Verdicts {
		if err := r.analyses.UpsertVerdict(ctx, &snapshot.Verdicts[i]); err != nil {
			return fmt.Errorf("failed to import verdict %s: %w", snapshot.Verdicts[i].ID, err)
		}
	}
	return nil
}
