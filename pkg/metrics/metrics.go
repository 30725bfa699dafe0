// Package metrics registers the Prometheus collectors shared by the
// pipeline and API services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed pipeline cycles by final status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "pipeline_runs_total",
		Help:      "Completed pipeline cycles by status.",
	}, []string{"status"})

	// ArticlesDiscovered counts candidate URLs produced by crawls.
	ArticlesDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "articles_discovered_total",
		Help:      "Candidate article URLs discovered from sitemaps and feeds.",
	})

	// ArticlesFetched counts successfully fetched and extracted articles.
	ArticlesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "articles_fetched_total",
		Help:      "Articles fetched and extracted.",
	})

	// ArticlesDuplicate counts candidates skipped by deduplication.
	ArticlesDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "articles_duplicate_total",
		Help:      "Candidates skipped as already processed.",
	})

	// SentimentCalls counts sentiment capability calls by outcome.
	SentimentCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "sentiment_calls_total",
		Help:      "Sentiment capability calls by outcome.",
	}, []string{"outcome"})

	// InverseVerdicts counts inverse-bias verdicts raised.
	InverseVerdicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "inverse_verdicts_total",
		Help:      "Inverse-bias verdicts raised.",
	})

	// ItemErrors counts per-article errors that were isolated.
	ItemErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "item_errors_total",
		Help:      "Per-article errors recorded in run summaries.",
	})

	// SourceErrors counts per-source crawl failures.
	SourceErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "inversebias",
		Name:      "source_errors_total",
		Help:      "Per-source crawl failures recorded in run summaries.",
	})
)
