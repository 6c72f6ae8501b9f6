package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

// AdminHandler serves the moderation surface: full listings with hidden
// records included, visibility control, deletion, and a live event
// stream over websocket.
type AdminHandler struct {
	gateway  *campusfeed.Gateway
	hub      *campusfeed.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(gateway *campusfeed.Gateway, hub *campusfeed.Hub, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		gateway: gateway,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Routes returns the admin routes.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/events", h.Events)

	r.Route("/{source}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Patch("/{id}/visibility", h.SetVisibility)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// List returns every record of one source, hidden ones included.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	recs, err := h.gateway.ListAll(r.Context(), t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, recs)
}

type visibilityPayload struct {
	Visible bool `json:"visible"`
}

// SetVisibility sets one record's visibility to an explicit state.
func (h *AdminHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	t, ok := sourceParam(r)
	if !ok {
		respondError(w, r, campusfeed.ErrUnknownSource)
		return
	}

	var payload visibilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, &campusfeed.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	rec, err := h.gateway.SetVisibility(r.Context(), t, chi.URLParam(r, "id"), payload.Visible)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, rec)
}

// Delete removes one record on behalf of a moderator.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

const writeWait = 10 * time.Second

// Events upgrades the connection to a websocket and streams fanout
// events until the client disconnects. Events published while the
// client is slow are dropped by the hub rather than blocking writers.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	defer sub.Close()

	// Reader goroutine: we never expect client messages, but reading is
	// required to detect the close handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(evt); err != nil {
				h.logger.Debug("event stream write failed", "error", err)
				return
			}
		}
	}
}
