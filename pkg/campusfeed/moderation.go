package campusfeed

import (
	"context"
	"fmt"
	"log/slog"
)

// Gateway is the single administrative surface for mutations across all
// source types. Every create, update, visibility change and deletion
// flows through it, so each mutation produces exactly one fanout event
// regardless of which caller originated it.
//
// Visibility changes use the adapter's explicit SetVisibility rather than
// the raw toggle: the desired end state makes concurrent admin actions
// commutative instead of racing on a double flip.
type Gateway struct {
	sources map[SourceType]Source
	assets  *AssetManager
	bus     Publisher
	logger  *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithSource registers a source with the gateway.
func WithSource(src Source) GatewayOption {
	return func(g *Gateway) { g.sources[src.Type()] = src }
}

// WithAssetManager wires asset release into record deletion.
func WithAssetManager(assets *AssetManager) GatewayOption {
	return func(g *Gateway) { g.assets = assets }
}

// WithPublisher sets the fanout bus (default: discard).
func WithPublisher(bus Publisher) GatewayOption {
	return func(g *Gateway) { g.bus = bus }
}

// WithGatewayLogger sets the logger used for asset-orphan warnings.
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway creates a moderation gateway over the registered sources.
func NewGateway(opts ...GatewayOption) (*Gateway, error) {
	g := &Gateway{
		sources: make(map[SourceType]Source),
		bus:     NewNoopPublisher(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if len(g.sources) == 0 {
		return nil, fmt.Errorf("at least one source is required")
	}
	return g, nil
}

func (g *Gateway) source(t SourceType) (Source, error) {
	src, ok := g.sources[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, t)
	}
	return src, nil
}

// ListAll returns every record of one source, hidden ones included.
// Admins see the full collection; the visibility filter applies only to
// the public feed.
func (g *Gateway) ListAll(ctx context.Context, t SourceType) ([]Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}
	return src.List(ctx)
}

// ListByOwner returns one owner's records from one source.
func (g *Gateway) ListByOwner(ctx context.Context, t SourceType, ownerID string) ([]Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}
	return src.ListByOwner(ctx, ownerID)
}

// Resolve returns one record of one source by logical id.
func (g *Gateway) Resolve(ctx context.Context, t SourceType, id string) (Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}
	return src.Resolve(ctx, id)
}

// Create persists a new record and publishes {source}Created.
func (g *Gateway) Create(ctx context.Context, t SourceType, rec Record) (Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}

	created, err := src.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	g.bus.Publish(Event{Name: EventName(t, ActionCreated), Payload: created})
	return created, nil
}

// Update applies a partial mutation and publishes {source}Updated.
func (g *Gateway) Update(ctx context.Context, t SourceType, id string, mutate func(Record) error) (Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}

	updated, err := src.Update(ctx, id, mutate)
	if err != nil {
		return nil, err
	}
	g.bus.Publish(Event{Name: EventName(t, ActionUpdated), Payload: updated})
	return updated, nil
}

// SetVisibility writes the desired visibility state and publishes
// {source}VisibilityChanged. The write happens unconditionally, so
// setting an already-hidden record hidden again re-stamps UpdatedAt and
// republishes the event; the end state is identical either way.
func (g *Gateway) SetVisibility(ctx context.Context, t SourceType, id string, visible bool) (Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}

	rec, err := src.SetVisibility(ctx, id, visible)
	if err != nil {
		return nil, err
	}
	g.bus.Publish(Event{Name: EventName(t, ActionVisibilityChanged), Payload: rec})
	return rec, nil
}

// ToggleVisibility flips the record's visibility through the direct
// per-source contract and publishes {source}VisibilityChanged. Prefer
// SetVisibility: the toggle is a read-modify-write that can race under
// concurrent admin action.
func (g *Gateway) ToggleVisibility(ctx context.Context, t SourceType, id string) (Record, error) {
	src, err := g.source(t)
	if err != nil {
		return nil, err
	}

	rec, err := src.ToggleVisibility(ctx, id)
	if err != nil {
		return nil, err
	}
	g.bus.Publish(Event{Name: EventName(t, ActionVisibilityChanged), Payload: rec})
	return rec, nil
}

// Remove deletes a record and publishes {source}Deleted. If the record
// references an attachment, the asset is released first on a best-effort
// basis: a failed asset delete leaves an orphaned blob behind but never
// blocks the record deletion.
func (g *Gateway) Remove(ctx context.Context, t SourceType, id string) error {
	src, err := g.source(t)
	if err != nil {
		return err
	}

	rec, err := src.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if url := rec.Meta().AttachmentURL; url != "" && g.assets != nil {
		if err := g.assets.Delete(ctx, url); err != nil {
			g.logger.Warn("asset release failed, blob orphaned",
				"source", t, "id", id, "url", url, "error", err)
		}
	}

	if err := src.Remove(ctx, id); err != nil {
		return err
	}
	g.bus.Publish(Event{Name: EventName(t, ActionDeleted), Payload: DeletedPayload{ID: id}})
	return nil
}
