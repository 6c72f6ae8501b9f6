package campusfeed

import (
	"context"
	"io"
)

// Cond is an equality filter on a top-level document attribute.
type Cond struct {
	Attr  string
	Value string
}

// DocStore defines the key-value/document store contract the adapters
// are built on. Documents are JSON-encoded records grouped into named
// collections; Scan supports equality filtering on top-level attributes,
// which is sufficient for owner and visibility listings.
//
// Get and Delete return ErrKeyNotFound (possibly wrapped) for missing
// keys. Scan of an empty or missing collection returns an empty slice.
type DocStore interface {
	Put(ctx context.Context, collection, key string, doc []byte) error
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Delete(ctx context.Context, collection, key string) error
	Scan(ctx context.Context, collection string, conds ...Cond) ([][]byte, error)
}

// BlobStore defines the object-storage contract for binary attachments.
type BlobStore interface {
	// Put writes the object under the given key.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Delete removes the object.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is stored under the key.
	Exists(ctx context.Context, key string) (bool, error)
}

// Publisher delivers change events to subscribed admin sessions.
// Implementations must never block the caller.
type Publisher interface {
	Publish(event Event)
}

// Source is the uniform, non-generic view of one adapter. The moderation
// gateway and the aggregator work exclusively through this interface, so
// the physical key shape and the concrete record type stay internal to
// each adapter.
type Source interface {
	Type() SourceType
	List(ctx context.Context) ([]Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	Resolve(ctx context.Context, id string) (Record, error)
	Create(ctx context.Context, rec Record) (Record, error)
	Update(ctx context.Context, id string, mutate func(Record) error) (Record, error)
	SetVisibility(ctx context.Context, id string, visible bool) (Record, error)
	ToggleVisibility(ctx context.Context, id string) (Record, error)
	Remove(ctx context.Context, id string) error
}
