package campusfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// recordPtr constrains PT to a pointer to a record struct that satisfies
// the Record interface.
type recordPtr[T any] interface {
	*T
	Record
}

// Adapter owns CRUD and visibility state for one content type against one
// document-store collection. It is parameterized over the record shape;
// the store is injected, never a package global.
type Adapter[T any, PT recordPtr[T]] struct {
	source     SourceType
	store      DocStore
	collection string
	composite  bool
	newID      func() string
	now        func() time.Time
}

// AdapterOption configures an Adapter.
type AdapterOption func(*adapterSettings)

type adapterSettings struct {
	composite bool
	newID     func() string
	now       func() time.Time
}

// WithCompositeKeys makes the adapter store records under "{owner}#{id}"
// physical keys. The key shape never escapes the adapter: every operation
// accepts and returns the logical id only.
func WithCompositeKeys() AdapterOption {
	return func(s *adapterSettings) { s.composite = true }
}

// WithIDGenerator overrides the record id generator (default: uuid).
func WithIDGenerator(fn func() string) AdapterOption {
	return func(s *adapterSettings) { s.newID = fn }
}

// WithClock overrides the timestamp source (default: time.Now UTC).
func WithClock(fn func() time.Time) AdapterOption {
	return func(s *adapterSettings) { s.now = fn }
}

// NewAdapter creates an adapter for one record shape over one collection.
func NewAdapter[T any, PT recordPtr[T]](source SourceType, store DocStore, collection string, opts ...AdapterOption) *Adapter[T, PT] {
	settings := adapterSettings{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return &Adapter[T, PT]{
		source:     source,
		store:      store,
		collection: collection,
		composite:  settings.composite,
		newID:      settings.newID,
		now:        settings.now,
	}
}

// NewInstituteAdapter creates the institute-events adapter. Institute
// records use composite physical keys.
func NewInstituteAdapter(store DocStore, opts ...AdapterOption) *Adapter[InstituteEvent, *InstituteEvent] {
	opts = append([]AdapterOption{WithCompositeKeys()}, opts...)
	return NewAdapter[InstituteEvent, *InstituteEvent](SourceInstitute, store, "institute_events", opts...)
}

// NewRecruiterAdapter creates the recruiter-news adapter.
func NewRecruiterAdapter(store DocStore, opts ...AdapterOption) *Adapter[RecruiterNews, *RecruiterNews] {
	return NewAdapter[RecruiterNews, *RecruiterNews](SourceRecruiter, store, "recruiter_news", opts...)
}

// NewStaffAdapter creates the staff-posts adapter.
func NewStaffAdapter(store DocStore, opts ...AdapterOption) *Adapter[StaffPost, *StaffPost] {
	return NewAdapter[StaffPost, *StaffPost](SourceStaff, store, "staff_posts", opts...)
}

// Type returns the source type this adapter owns.
func (a *Adapter[T, PT]) Type() SourceType { return a.source }

// Create assigns a fresh id, marks the record visible, stamps both
// timestamps and persists it.
func (a *Adapter[T, PT]) Create(ctx context.Context, rec PT) (PT, error) {
	m := rec.Meta()
	if m.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if a.composite && m.OwnerID == "" {
		return nil, &ValidationError{Field: "owner_id", Reason: "required"}
	}

	now := a.now()
	m.ID = a.newID()
	m.Visible = true
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := a.put(ctx, rec); err != nil {
		return nil, a.wrap("create", m.ID, err)
	}
	return rec, nil
}

// Get resolves a record by its logical id.
func (a *Adapter[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}

	if !a.composite {
		doc, err := a.store.Get(ctx, a.collection, id)
		if err != nil {
			if errors.Is(err, ErrKeyNotFound) {
				return nil, a.wrap("get", id, ErrRecordNotFound)
			}
			return nil, a.wrap("get", id, err)
		}
		return a.decode(doc)
	}

	// Composite-key collections cannot be addressed by logical id alone;
	// resolve through an attribute scan instead.
	docs, err := a.store.Scan(ctx, a.collection, Cond{Attr: "id", Value: id})
	if err != nil {
		return nil, a.wrap("get", id, err)
	}
	if len(docs) == 0 {
		return nil, a.wrap("get", id, ErrRecordNotFound)
	}
	return a.decode(docs[0])
}

// ListByOwner returns every record owned by ownerID.
func (a *Adapter[T, PT]) ListByOwner(ctx context.Context, ownerID string) ([]PT, error) {
	docs, err := a.store.Scan(ctx, a.collection, Cond{Attr: "owner_id", Value: ownerID})
	if err != nil {
		return nil, a.wrap("list_by_owner", "", err)
	}
	return a.decodeAll(docs)
}

// ListAll returns every record in the collection, hidden ones included.
func (a *Adapter[T, PT]) ListAll(ctx context.Context) ([]PT, error) {
	docs, err := a.store.Scan(ctx, a.collection)
	if err != nil {
		return nil, a.wrap("list_all", "", err)
	}
	return a.decodeAll(docs)
}

// Update applies a partial mutation: mutate receives the current record
// and changes only the fields it cares about. Identity fields and
// CreatedAt are preserved regardless of what the mutator does, and
// UpdatedAt is always re-stamped.
func (a *Adapter[T, PT]) Update(ctx context.Context, id string, mutate func(PT) error) (PT, error) {
	rec, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	kept := *rec.Meta()
	if err := mutate(rec); err != nil {
		return nil, err
	}

	m := rec.Meta()
	m.ID = kept.ID
	m.OwnerID = kept.OwnerID
	m.CreatedAt = kept.CreatedAt
	m.UpdatedAt = a.now()

	if err := a.put(ctx, rec); err != nil {
		return nil, a.wrap("update", id, err)
	}
	return rec, nil
}

// SetVisibility writes an explicit visibility state. Unlike
// ToggleVisibility this is commutative and therefore safe under
// concurrent invocation.
func (a *Adapter[T, PT]) SetVisibility(ctx context.Context, id string, visible bool) (PT, error) {
	return a.Update(ctx, id, func(rec PT) error {
		rec.Meta().Visible = visible
		return nil
	})
}

// ToggleVisibility flips the visibility flag and re-stamps UpdatedAt.
// This is a read-modify-write with no compare-and-swap guard: two
// concurrent toggles on the same record may cancel each other out.
// Retained for the direct per-source contract; the moderation gateway
// uses SetVisibility instead.
func (a *Adapter[T, PT]) ToggleVisibility(ctx context.Context, id string) (PT, error) {
	rec, err := a.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	m := rec.Meta()
	m.Visible = !m.Visible
	m.UpdatedAt = a.now()

	if err := a.put(ctx, rec); err != nil {
		return nil, a.wrap("toggle_visibility", id, err)
	}
	return rec, nil
}

// Delete removes the record permanently. Releasing any attached asset
// first is the caller's responsibility.
func (a *Adapter[T, PT]) Delete(ctx context.Context, id string) error {
	rec, err := a.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := a.store.Delete(ctx, a.collection, a.key(rec.Meta())); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return a.wrap("delete", id, ErrRecordNotFound)
		}
		return a.wrap("delete", id, err)
	}
	return nil
}

// AsSource returns the uniform non-generic view used by the moderation
// gateway and the aggregator.
func (a *Adapter[T, PT]) AsSource() Source {
	return sourceView[T, PT]{a}
}

func (a *Adapter[T, PT]) key(m *RecordMeta) string {
	if a.composite {
		return m.OwnerID + "#" + m.ID
	}
	return m.ID
}

func (a *Adapter[T, PT]) put(ctx context.Context, rec PT) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return a.store.Put(ctx, a.collection, a.key(rec.Meta()), doc)
}

func (a *Adapter[T, PT]) decode(doc []byte) (PT, error) {
	var rec T
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, a.wrap("decode", "", err)
	}
	return PT(&rec), nil
}

func (a *Adapter[T, PT]) decodeAll(docs [][]byte) ([]PT, error) {
	out := make([]PT, 0, len(docs))
	for _, doc := range docs {
		rec, err := a.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (a *Adapter[T, PT]) wrap(op, id string, err error) error {
	return &RecordError{Source: a.source, ID: id, Op: op, Err: err}
}

// sourceView adapts a generic Adapter to the Source interface.
type sourceView[T any, PT recordPtr[T]] struct {
	a *Adapter[T, PT]
}

func (s sourceView[T, PT]) Type() SourceType { return s.a.source }

func (s sourceView[T, PT]) List(ctx context.Context) ([]Record, error) {
	recs, err := s.a.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(recs, func(rec PT, _ int) Record { return rec }), nil
}

func (s sourceView[T, PT]) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	recs, err := s.a.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return lo.Map(recs, func(rec PT, _ int) Record { return rec }), nil
}

func (s sourceView[T, PT]) Resolve(ctx context.Context, id string) (Record, error) {
	return s.a.Get(ctx, id)
}

func (s sourceView[T, PT]) Create(ctx context.Context, rec Record) (Record, error) {
	typed, ok := rec.(PT)
	if !ok {
		return nil, fmt.Errorf("%w: record type %T does not belong to source %s", ErrUnknownSource, rec, s.a.source)
	}
	return s.a.Create(ctx, typed)
}

func (s sourceView[T, PT]) Update(ctx context.Context, id string, mutate func(Record) error) (Record, error) {
	return s.a.Update(ctx, id, func(rec PT) error { return mutate(rec) })
}

func (s sourceView[T, PT]) SetVisibility(ctx context.Context, id string, visible bool) (Record, error) {
	return s.a.SetVisibility(ctx, id, visible)
}

func (s sourceView[T, PT]) ToggleVisibility(ctx context.Context, id string) (Record, error) {
	return s.a.ToggleVisibility(ctx, id)
}

func (s sourceView[T, PT]) Remove(ctx context.Context, id string) error {
	return s.a.Delete(ctx, id)
}
