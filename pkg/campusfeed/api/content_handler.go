package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

// RecordPayload is the request body for creating and partially updating
// records. Pointer fields distinguish "not provided" from zero values so
// updates only touch what the caller sent.
type RecordPayload struct {
	OwnerID              string  `json:"owner_id,omitempty"`
	Title                *string `json:"title,omitempty"`
	EffectiveDate        *string `json:"effective_date,omitempty"`
	Details              *string `json:"details,omitempty"`
	AttachmentURL        *string `json:"attachment_url,omitempty"`
	Company              *string `json:"company,omitempty"`
	Venue                *string `json:"venue,omitempty"`
	ExpectedParticipants *int    `json:"expected_participants,omitempty"`
}

// newRecord builds a fresh record of the source's variant from the
// payload.
func (p RecordPayload) newRecord(t campusfeed.SourceType) campusfeed.Record {
	var rec campusfeed.Record
	switch t {
	case campusfeed.SourceInstitute:
		rec = &campusfeed.InstituteEvent{}
	case campusfeed.SourceRecruiter:
		rec = &campusfeed.RecruiterNews{}
	default:
		rec = &campusfeed.StaffPost{}
	}

	rec.Meta().OwnerID = p.OwnerID
	p.apply(rec)
	return rec
}

// apply copies the provided fields onto an existing record, leaving the
// rest untouched.
func (p RecordPayload) apply(rec campusfeed.Record) {
	m := rec.Meta()
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.EffectiveDate != nil {
		m.EffectiveDate = *p.EffectiveDate
	}
	if p.Details != nil {
		m.Details = *p.Details
	}
	if p.AttachmentURL != nil {
		m.AttachmentURL = *p.AttachmentURL
	}

	switch r := rec.(type) {
	case *campusfeed.InstituteEvent:
		if p.Company != nil {
			r.Company = *p.Company
		}
		if p.Venue != nil {
			r.Venue = *p.Venue
		}
		if p.ExpectedParticipants != nil {
			r.ExpectedParticipants = *p.ExpectedParticipants
		}
	case *campusfeed.RecruiterNews:
		if p.Company != nil {
			r.Company = *p.Company
		}
		if p.Venue != nil {
			r.Venue = *p.Venue
		}
		if p.ExpectedParticipants != nil {
			r.ExpectedParticipants = *p.ExpectedParticipants
		}
	}
}

// ContentHandler serves the per-source write/read surface and the public
// feed. All mutations go through the moderation gateway so each one
// produces exactly one fanout event.
type ContentHandler struct {
	gateway    *campusfeed.Gateway
	aggregator *campusfeed.Aggregator
}

// NewContentHandler creates a content handler.
func NewContentHandler(gateway *campusfeed.Gateway, aggregator *campusfeed.Aggregator) *ContentHandler {
	return &ContentHandler{gateway: gateway, aggregator: aggregator}
}

// Routes returns the public content routes.
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/feed", h.UnifiedFeed)
	r.Get("/feed/{category}", h.FeedByCategory)

	r.Route("/sources/{source}", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.ListByOwner)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/toggle", h.ToggleVisibility)
	})

	return r
}

func sourceParam(r *http.Request) (campusfeed.SourceType, bool) {
	t := campusfeed.SourceType(chi.URLParam(r, "source"))
	return t, t.IsValid()
}

// UnifiedFeed returns the merged, ordered public feed.
func (h *ContentHandler) UnifiedFeed(w http.ResponseWriter, r *http.Request) {
	items, err := h.aggregator.UnifiedFeed(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

// FeedByCategory returns the feed restricted to one source.
func (h *ContentHandler) FeedByCategory(w http.ResponseWriter, r *http.Request) {
	category := campusfeed.SourceType(chi.URLParam(r, "category"))
	items, err := h.aggregator.ByCategory(r.Context(), category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, items)
}

// Create creates a new record for one source.
func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	var payload RecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, &campusfeed.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	rec, err := h.gateway.Create(r.Context(), t, payload.newRecord(t))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, rec)
}

// ListByOwner lists the caller's own records.
func (h *ContentHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	// Stored documents drop an empty owner_id attribute, so scanning for
	// "" can only ever match nothing. Reject it instead of answering with
	// a misleading empty list.
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		respondError(w, r, &campusfeed.ValidationError{Field: "owner_id", Reason: "required"})
		return
	}

	recs, err := h.gateway.ListByOwner(r.Context(), t, ownerID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, recs)
}

// Get resolves one record by id.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	rec, err := h.gateway.Resolve(r.Context(), t, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, rec)
}

// Update applies a partial update to one record.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	var payload RecordPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, &campusfeed.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	rec, err := h.gateway.Update(r.Context(), t, chi.URLParam(r, "id"), func(rec campusfeed.Record) error {
		payload.apply(rec)
		return nil
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, rec)
}

// Delete removes one record, releasing its attachment first.
func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	if err := h.gateway.Remove(r.Context(), t, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, nil)
}

// ToggleVisibility flips one record's visibility.
func (h *ContentHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	rec, err := h.gateway.ToggleVisibility(r.Context(), t, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, rec)
}
