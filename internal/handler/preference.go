package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/liste/internal/catalog"
	"github.com/dukerupert/liste/internal/identity"
	"github.com/dukerupert/liste/internal/model"
	"github.com/dukerupert/liste/internal/store"
)

type PreferenceHandler struct {
	prefStore *store.PreferenceStore
	catalog   catalog.Catalog
	logger    *slog.Logger
}

func NewPreferenceHandler(ps *store.PreferenceStore, cat catalog.Catalog, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{prefStore: ps, catalog: cat, logger: logger}
}

// Catalog handles GET /api/catalog
func (h *PreferenceHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog)
}

// Me handles GET /api/me
func (h *PreferenceHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := identity.User(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"known": user != "" && h.catalog.HasUser(user),
	})
}

// SetMe handles PUT /api/me. It remembers the chosen display name in a
// cookie; the name is not checked against the known users.
func (h *PreferenceHandler) SetMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}

	http.SetCookie(w, identity.Cookie(req.User))
	writeJSON(w, http.StatusOK, map[string]any{
		"user":  req.User,
		"known": h.catalog.HasUser(req.User),
	})
}

// Get handles GET /api/preferences
func (h *PreferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := identity.User(r.Context())

	prefs, err := h.prefStore.GetAll(user)
	if err != nil {
		h.logger.Error("get preferences", "user", user, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// Update handles PUT /api/preferences with a JSON object of key/value pairs.
func (h *PreferenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := identity.User(r.Context())

	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "no preference to update")
		return
	}

	for key, value := range req {
		if !store.IsPreferenceKey(key) {
			writeError(w, http.StatusBadRequest, "unknown preference "+key)
			return
		}
		if key == model.PrefDarkMode && value != "true" && value != "false" {
			writeError(w, http.StatusBadRequest, "dark_mode must be true or false")
			return
		}
	}

	for key, value := range req {
		if key == model.PrefCollapsedStores {
			value = strings.Join(splitCSV(value), ",")
		}
		if err := h.prefStore.Set(user, key, value); err != nil {
			h.logger.Error("set preference", "user", user, "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update preferences")
			return
		}
	}

	h.Get(w, r)
}
