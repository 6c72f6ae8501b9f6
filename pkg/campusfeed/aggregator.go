package campusfeed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Aggregator merges the three source streams into one ranked public feed.
type Aggregator struct {
	sources []Source
	logger  *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithFeedSource registers a source with the aggregator.
func WithFeedSource(src Source) AggregatorOption {
	return func(a *Aggregator) { a.sources = append(a.sources, src) }
}

// WithAggregatorLogger sets the logger used for degradation notices.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) { a.logger = logger }
}

// NewAggregator creates an aggregator over the registered sources.
func NewAggregator(opts ...AggregatorOption) (*Aggregator, error) {
	a := &Aggregator{logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	return a, nil
}

// FeedOption narrows a feed query.
type FeedOption func(*feedQuery)

type feedQuery struct {
	limit int
}

// WithFeedLimit caps the number of returned items.
func WithFeedLimit(limit int) FeedOption {
	return func(q *feedQuery) { q.limit = limit }
}

// UnifiedFeed fans out to every source concurrently, drops hidden
// records, normalizes the rest and returns one merged, ordered feed.
// A source that fails to respond contributes an empty list instead of
// failing the whole call; the degradation is logged.
func (a *Aggregator) UnifiedFeed(ctx context.Context, opts ...FeedOption) ([]FeedItem, error) {
	var q feedQuery
	for _, opt := range opts {
		opt(&q)
	}

	contributions := make([][]FeedItem, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()

			recs, err := src.List(ctx)
			if err != nil {
				a.logger.Warn("source degraded to empty feed contribution",
					"source", src.Type(), "error", err)
				return
			}
			contributions[i] = normalizeVisible(recs)
		}(i, src)
	}
	wg.Wait()

	var merged []FeedItem
	for _, items := range contributions {
		merged = append(merged, items...)
	}
	sortFeed(merged)

	if q.limit > 0 && q.limit < len(merged) {
		merged = merged[:q.limit]
	}
	return merged, nil
}

// ByCategory runs the same pipeline restricted to one source. Unlike
// UnifiedFeed there is nothing to degrade to, so a source failure is
// surfaced.
func (a *Aggregator) ByCategory(ctx context.Context, category SourceType, opts ...FeedOption) ([]FeedItem, error) {
	var q feedQuery
	for _, opt := range opts {
		opt(&q)
	}

	for _, src := range a.sources {
		if src.Type() != category {
			continue
		}

		recs, err := src.List(ctx)
		if err != nil {
			return nil, err
		}

		items := normalizeVisible(recs)
		sortFeed(items)
		if q.limit > 0 && q.limit < len(items) {
			items = items[:q.limit]
		}
		return items, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, category)
}
