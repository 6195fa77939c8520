// Package guildhandlers is the HTTP surface of the configuration API. The
// router itself is owned by the process; handlers are mounted onto whatever
// chi router they are given.
package guildhandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	guildservice "github.com/parlor-gg/guildboard/app/modules/guildconfig/application"
)

// Handlers carries the dependencies every endpoint shares.
type Handlers struct {
	service guildservice.Service
	logger  *slog.Logger
}

// New creates the handler set.
func New(service guildservice.Service, logger *slog.Logger) *Handlers {
	return &Handlers{service: service, logger: logger}
}

// apiError is the error envelope: a machine-readable kind plus a
// human-readable message. Raw backend error text never leaves the process.
type apiError struct {
	Kind    guildservice.Kind `json:"kind"`
	Message string            `json:"message"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("encode response", slog.Any("error", err))
		}
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := guildservice.KindOf(err)

	var status int
	var msg string
	switch kind {
	case guildservice.KindValidation:
		status = http.StatusBadRequest
		msg = err.Error()
	case guildservice.KindNotAuthorized:
		status = http.StatusForbidden
		msg = "you do not have access to this resource"
	case guildservice.KindNotFound:
		status = http.StatusNotFound
		msg = "not found"
	default:
		status = http.StatusBadGateway
		msg = "storage backend unavailable"
		h.logger.ErrorContext(r.Context(), "request failed on storage",
			slog.String("path", r.URL.Path), slog.Any("error", err))
	}

	h.respondJSON(w, status, errorResponse{Error: apiError{Kind: kind, Message: msg}})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &guildservice.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}
