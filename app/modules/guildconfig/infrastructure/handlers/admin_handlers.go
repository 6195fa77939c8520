package guildhandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	guildservice "github.com/parlor-gg/guildboard/app/modules/guildconfig/application"
)

// HandleListAdministrators returns the global administrator list.
func (h *Handlers) HandleListAdministrators(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdministrators(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, admins)
}

// HandleAddAdministrator grants global administrator status. The service
// enforces that the actor is already an administrator.
func (h *Handlers) HandleAddAdministrator(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.AddAdministrator(r.Context(), UserID(r.Context()), body.UserID, body.Role); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// HandleRemoveAdministrator revokes global administrator status.
func (h *Handlers) HandleRemoveAdministrator(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.respondError(w, r, &guildservice.ValidationError{Field: "userID", Reason: "must not be empty"})
		return
	}
	if err := h.service.RemoveAdministrator(r.Context(), UserID(r.Context()), userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// HandleListPermissions returns who may configure the guild.
func (h *Handlers) HandleListPermissions(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	perms, err := h.service.ListPermissions(r.Context(), guildID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, perms)
}

// HandleGrantPermission adds a per-guild configuration permission.
func (h *Handlers) HandleGrantPermission(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	var body struct {
		UserID string `json:"userId"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.service.GrantPermission(r.Context(), UserID(r.Context()), guildID, body.UserID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// HandleRevokePermission removes a per-guild configuration permission.
func (h *Handlers) HandleRevokePermission(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")
	userID := chi.URLParam(r, "userID")
	if err := h.service.RevokePermission(r.Context(), UserID(r.Context()), guildID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}
