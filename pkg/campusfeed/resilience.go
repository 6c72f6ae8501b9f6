package campusfeed

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
)

// FallbackStore decorates a DocStore with a sticky primary/fallback
// policy. Every operation first tries the primary store; on failure the
// wrapper flips to degraded mode, replays the call against the in-memory
// substitute, and stays on the substitute for the remainder of the
// process lifetime. No automatic recovery is attempted: flapping back to
// a half-healthy primary would interleave two divergent datasets.
//
// One wrapper instance is created per adapter, so a failing institute
// store never degrades the recruiter or staff paths. The substitute is
// non-persistent; its data is lost on restart.
type FallbackStore struct {
	primary  DocStore
	fallback DocStore
	degraded atomic.Bool
	logger   *slog.Logger
}

// FallbackOption configures a FallbackStore.
type FallbackOption func(*FallbackStore)

// WithFallbackLogger sets the logger used for degradation notices.
func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(s *FallbackStore) { s.logger = logger }
}

// NewFallbackStore wraps primary with a sticky fallback to substitute.
func NewFallbackStore(primary, substitute DocStore, opts ...FallbackOption) *FallbackStore {
	s := &FallbackStore{
		primary:  primary,
		fallback: substitute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Degraded reports whether the wrapper has switched to the substitute.
func (s *FallbackStore) Degraded() bool {
	return s.degraded.Load()
}

func (s *FallbackStore) Put(ctx context.Context, collection, key string, doc []byte) error {
	return s.run(ctx, "put", collection, key, func(st DocStore) error {
		return st.Put(ctx, collection, key, doc)
	})
}

func (s *FallbackStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var doc []byte
	err := s.run(ctx, "get", collection, key, func(st DocStore) error {
		var innerErr error
		doc, innerErr = st.Get(ctx, collection, key)
		return innerErr
	})
	return doc, err
}

func (s *FallbackStore) Delete(ctx context.Context, collection, key string) error {
	return s.run(ctx, "delete", collection, key, func(st DocStore) error {
		return st.Delete(ctx, collection, key)
	})
}

func (s *FallbackStore) Scan(ctx context.Context, collection string, conds ...Cond) ([][]byte, error) {
	var docs [][]byte
	err := s.run(ctx, "scan", collection, "", func(st DocStore) error {
		var innerErr error
		docs, innerErr = st.Scan(ctx, collection, conds...)
		return innerErr
	})
	return docs, err
}

func (s *FallbackStore) run(ctx context.Context, op, collection, key string, call func(DocStore) error) error {
	if s.degraded.Load() {
		if err := call(s.fallback); err != nil {
			return s.wrap(op, collection, key, err)
		}
		return nil
	}

	err := call(s.primary)
	if err == nil {
		return nil
	}
	// A missing key is a logical outcome, not a store outage.
	if errors.Is(err, ErrKeyNotFound) {
		return err
	}

	s.degraded.Store(true)
	s.logger.Warn("primary store failed, switching to in-memory substitute for process lifetime",
		"collection", collection, "op", op, "error", err)

	if err := call(s.fallback); err != nil {
		return s.wrap(op, collection, key, err)
	}
	return nil
}

func (s *FallbackStore) wrap(op, collection, key string, err error) error {
	if errors.Is(err, ErrKeyNotFound) {
		return err
	}
	return &StoreError{Collection: collection, Key: key, Op: op, Err: err}
}
