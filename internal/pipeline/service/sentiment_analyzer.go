package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inversebias/internal/pipeline/dto"
	"inversebias/internal/pipeline/repository"
	"inversebias/pkg/breaker"
	"inversebias/pkg/logger"
	"inversebias/pkg/metrics"
)

// SentimentAnalyzer orchestrates calls to the external sentiment
// capability: per-call timeout, one retry on transient failure, and a
// circuit breaker that skips further calls for the remainder of the run
// when the capability is persistently unavailable. Fail-open: articles are
// persisted without a result rather than blocking the pipeline.
type SentimentAnalyzer struct {
	capability repository.SentimentRepository
	breaker    *breaker.Breaker
	timeout    time.Duration
	logger     *logger.Logger
}

// NewSentimentAnalyzer creates a new instance of SentimentAnalyzer.
func NewSentimentAnalyzer(capability repository.SentimentRepository, timeout time.Duration, breakerThreshold int, log *logger.Logger) *SentimentAnalyzer {
	return &SentimentAnalyzer{
		capability: capability,
		breaker:    breaker.New(breakerThreshold),
		timeout:    timeout,
		logger:     log,
	}
}

// Analyze scores the article text for one subject.
func (a *SentimentAnalyzer) Analyze(ctx context.Context, text, subject string) (*dto.SentimentResult, error) {
	if err := a.breaker.Allow(); err != nil {
		metrics.SentimentCalls.WithLabelValues("skipped").Inc()
		return nil, fmt.Errorf("%w: %v", dto.ErrCapabilityUnavailable, err)
	}

	result, err := a.classifyOnce(ctx, text, subject)
	if err != nil && dto.IsTransient(err) && ctx.Err() == nil {
		a.logger.Warn("Transient sentiment failure, retrying once",
			logger.StringField("subject", subject),
			logger.ErrorField(err),
		)
		result, err = a.classifyOnce(ctx, text, subject)
	}

	if err != nil {
		a.breaker.Failure()
		metrics.SentimentCalls.WithLabelValues("error").Inc()
		if a.breaker.IsOpen() {
			a.logger.Error("Sentiment capability circuit breaker opened, skipping analysis for remainder of run")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dto.Transient(fmt.Errorf("sentiment call timed out: %w", err))
		}
		return nil, err
	}

	a.breaker.Success()
	metrics.SentimentCalls.WithLabelValues("ok").Inc()
	return result, nil
}

func (a *SentimentAnalyzer) classifyOnce(ctx context.Context, text, subject string) (*dto.SentimentResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.capability.Classify(callCtx, text, subject)
}

// Degraded reports whether the breaker has opened and the run is in
// skip-analysis mode.
func (a *SentimentAnalyzer) Degraded() bool {
	return a.breaker.IsOpen()
}
