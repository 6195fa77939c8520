package guildhandlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	guildservice "github.com/parlor-gg/guildboard/app/modules/guildconfig/application"
	guilddomain "github.com/parlor-gg/guildboard/app/modules/guildconfig/domain"
	"github.com/parlor-gg/guildboard/app/modules/guildconfig/infrastructure/render"
)

// requireGuildAccess resolves the guild id and checks the caller may configure
// it. Returns "" after writing the error response when access is denied.
func (h *Handlers) requireGuildAccess(w http.ResponseWriter, r *http.Request) string {
	guildID := chi.URLParam(r, "guildID")
	if guildID == "" {
		h.respondError(w, r, &guildservice.ValidationError{Field: "guildID", Reason: "must not be empty"})
		return ""
	}
	userID := UserID(r.Context())
	ok, err := h.service.Authorize(r.Context(), guildID, userID)
	if err != nil {
		h.respondError(w, r, err)
		return ""
	}
	if !ok {
		h.respondError(w, r, &guildservice.NotAuthorizedError{UserID: userID, Reason: "no configuration access to this guild"})
		return ""
	}
	return guildID
}

// HandleGetConfig returns the guild's configuration, creating defaults on
// first access.
func (h *Handlers) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	cfg, err := h.service.GetConfig(r.Context(), guildID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

// HandleSetPrefix updates the command prefix.
func (h *Handlers) HandleSetPrefix(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	var body struct {
		Prefix string `json:"prefix"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	cfg, err := h.service.SetPrefix(r.Context(), guildID, body.Prefix)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

// HandleSetNickname updates or clears the bot nickname.
func (h *Handlers) HandleSetNickname(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	var body struct {
		Nickname string `json:"nickname"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	cfg, err := h.service.SetNickname(r.Context(), guildID, body.Nickname)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

// HandleSetModule toggles one module.
func (h *Handlers) HandleSetModule(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	var body struct {
		Module  string `json:"module"`
		Enabled bool   `json:"enabled"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	cfg, err := h.service.SetModuleEnabled(r.Context(), guildID, body.Module, body.Enabled)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

// HandleSetNotification replaces a join or leave notification template.
func (h *Handlers) HandleSetNotification(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	var body struct {
		Kind     guilddomain.NotificationKind      `json:"kind"`
		Template *guilddomain.NotificationTemplate `json:"template"`
	}
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}
	cfg, err := h.service.SetNotification(r.Context(), guildID, body.Kind, body.Template)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cfg)
}

// previewRequest is a dashboard preview: a template (stored or draft) plus the
// sample context the UI wants it rendered against.
type previewRequest struct {
	Kind     guilddomain.NotificationKind      `json:"kind,omitempty"`
	Template *guilddomain.NotificationTemplate `json:"template,omitempty"`

	User struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		AvatarURL   string `json:"avatarUrl"`
	} `json:"user"`
	Server struct {
		Name        string `json:"name"`
		IconURL     string `json:"iconUrl"`
		MemberCount int    `json:"memberCount"`
	} `json:"server"`
	Channels map[string]string `json:"channels,omitempty"`
	Roles    map[string]string `json:"roles,omitempty"`
}

type previewResponse struct {
	Content string        `json:"content,omitempty"`
	Embed   *render.Embed `json:"embed,omitempty"`
	Empty   bool          `json:"empty"`
}

// HandlePreviewNotification renders a template without storing anything. The
// same renderer backs the bot's dispatch path, so the preview is exact. A
// draft template in the body wins; otherwise the stored template for the
// requested kind is rendered.
func (h *Handlers) HandlePreviewNotification(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	var body previewRequest
	if err := decodeBody(r, &body); err != nil {
		h.respondError(w, r, err)
		return
	}

	tpl := body.Template
	if tpl == nil {
		if !guilddomain.KnownKind(body.Kind) {
			h.respondError(w, r, &guildservice.ValidationError{Field: "kind", Reason: "unknown notification kind"})
			return
		}
		cfg, err := h.service.GetConfig(r.Context(), guildID)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		tpl = cfg.Notifications[body.Kind]
	}

	rc := render.Context{
		Channels: body.Channels,
		Roles:    body.Roles,
		Now:      time.Now(),
	}
	rc.User.ID = body.User.ID
	rc.User.DisplayName = body.User.DisplayName
	rc.User.AvatarURL = body.User.AvatarURL
	rc.Server.Name = body.Server.Name
	rc.Server.IconURL = body.Server.IconURL
	rc.Server.MemberCount = body.Server.MemberCount

	msg := render.Render(tpl, rc)
	h.respondJSON(w, http.StatusOK, previewResponse{
		Content: msg.Content,
		Embed:   msg.Embed,
		Empty:   msg.Empty(),
	})
}

// HandleGetStats returns the guild's usage statistics with the unique-user
// count derived from the set.
func (h *Handlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	stats, err := h.service.GetStats(r.Context(), guildID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, struct {
		*guilddomain.UsageStats
		UniqueUserCount int `json:"uniqueUserCount"`
	}{stats, stats.UniqueUsers.Len()})
}

// HandleGetPresence reports whether the bot is in the guild.
func (h *Handlers) HandleGetPresence(w http.ResponseWriter, r *http.Request) {
	guildID := h.requireGuildAccess(w, r)
	if guildID == "" {
		return
	}
	presence, err := h.service.CheckPresence(r.Context(), guildID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, presence)
}
