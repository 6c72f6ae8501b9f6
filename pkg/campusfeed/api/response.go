package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/campushub/campus-feed/pkg/campusfeed"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var validation *campusfeed.ValidationError
	var storage *campusfeed.StorageError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, campusfeed.ErrRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, campusfeed.ErrUnknownSource):
		status = http.StatusNotFound
	case errors.As(err, &storage):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, Response{Success: false, Message: err.Error()})
}
