package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/liste/internal/backup"
	"github.com/dukerupert/liste/internal/catalog"
	"github.com/dukerupert/liste/internal/grocery"
	"github.com/dukerupert/liste/internal/identity"
	"github.com/dukerupert/liste/internal/model"
	"github.com/dukerupert/liste/internal/projection"
	"github.com/dukerupert/liste/internal/store"
)

type ShoppingHandler struct {
	shoppingStore *store.ShoppingStore
	prefStore     *store.PreferenceStore
	feed          Feed
	changes       *Changes
	catalog       catalog.Catalog
	view          projection.Config
	archiver      Archiver
	archiveClear  bool
	clearMu       sync.Mutex
	logger        *slog.Logger
	now           func() time.Time
}

// ShoppingOptions groups the collaborators of ShoppingHandler.
type ShoppingOptions struct {
	Catalog catalog.Catalog
	View    projection.Config
	// Archiver, when enabled and ArchiveOnClear is set, saves the list
	// before DeleteAll empties it.
	Archiver       Archiver
	ArchiveOnClear bool
}

func NewShoppingHandler(ss *store.ShoppingStore, ps *store.PreferenceStore, feed Feed, changes *Changes, opts ShoppingOptions, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{
		shoppingStore: ss,
		prefStore:     ps,
		feed:          feed,
		changes:       changes,
		catalog:       opts.Catalog,
		view:          opts.View,
		archiver:      opts.Archiver,
		archiveClear:  opts.ArchiveOnClear,
		logger:        logger,
		now:           time.Now,
	}
}

type shoppingRequest struct {
	Label    string `json:"label"`
	Store    string `json:"store"`
	Category string `json:"category"`
	Urgent   bool   `json:"urgent"`
}

// List handles GET /api/shopping
func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.feed.Current(r.Context(), model.CollectionShopping)
	if err != nil {
		h.logger.Error("load shopping snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(snap))
}

// Create handles POST /api/shopping
func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	if req.Store == "" {
		req.Store = h.catalog.DefaultStore()
	}
	if !h.catalog.HasStore(req.Store) {
		writeError(w, http.StatusBadRequest, "unknown store")
		return
	}

	// Auto-categorize if no category provided
	if req.Category == "" {
		req.Category = grocery.CategorizeIn(req.Label, h.catalog.Categories, h.catalog.FallbackCategory())
	}
	if !h.catalog.HasCategory(req.Category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	item, err := h.shoppingStore.Create(req.Label, identity.User(r.Context()), req.Store, req.Category, req.Urgent)
	if err != nil {
		h.logger.Error("create shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionShopping)
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PATCH /api/shopping/{id}
func (h *ShoppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.ShoppingPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var ok bool
	if patch.Label, ok = trimmed(patch.Label); !ok {
		writeError(w, http.StatusBadRequest, "label must not be empty")
		return
	}
	if patch.Store != nil && !h.catalog.HasStore(*patch.Store) {
		writeError(w, http.StatusBadRequest, "unknown store")
		return
	}
	if patch.Category != nil && !h.catalog.HasCategory(*patch.Category) {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	item, err := h.shoppingStore.Update(r.PathValue("id"), patch)
	if errors.Is(err, store.ErrInvalidPatch) {
		writeError(w, http.StatusBadRequest, "no field to update")
		return
	}
	if err != nil {
		h.logger.Error("update shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionShopping)
	writeJSON(w, http.StatusOK, item)
}

// Toggle handles POST /api/shopping/{id}/toggle. A body of
// {"complete": bool} sets the state instead of flipping it.
func (h *ShoppingHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Complete *bool `json:"complete"`
	}
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	by := identity.User(r.Context())

	var (
		item *model.ShoppingItem
		err  error
	)
	if req.Complete != nil {
		item, err = h.shoppingStore.SetComplete(id, *req.Complete, by)
	} else {
		item, err = h.shoppingStore.Toggle(id, by)
	}
	if err != nil {
		h.logger.Error("toggle shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionShopping)
	writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/shopping/{id}
func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	found, err := h.shoppingStore.Delete(r.PathValue("id"))
	if err != nil {
		h.logger.Error("delete shopping item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionShopping)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/shopping. When archiving on clear is
// enabled, the list is only emptied once its archive is uploaded.
func (h *ShoppingHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.clearMu.Lock()
	defer h.clearMu.Unlock()

	if !h.archiveClear || h.archiver == nil || !h.archiver.Enabled() {
		count, err := h.shoppingStore.DeleteAll()
		if err != nil {
			h.logger.Error("clear shopping list", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to clear list")
			return
		}
		h.changes.Changed(r.Context(), model.CollectionShopping)
		writeJSON(w, http.StatusOK, map[string]any{"cleared": count})
		return
	}

	// The archive reads the list after through is taken, so every entry
	// up to through is in it. Entries added meanwhile stay on the list.
	through, err := h.shoppingStore.LastSeq()
	if err != nil {
		h.logger.Error("clear shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear list")
		return
	}
	archive, err := h.archiver.Archive(r.Context(), backup.ReasonClear, model.CollectionShopping)
	if err != nil {
		h.logger.Error("archive before clear", "error", err)
		writeError(w, http.StatusBadGateway, "archive failed, list not cleared")
		return
	}
	count, err := h.shoppingStore.DeleteThrough(through)
	if err != nil {
		h.logger.Error("clear shopping list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear list")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionShopping)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": count, "archive_id": archive.ID})
}

type shoppingViewResponse struct {
	projection.ShoppingView
	Version uint64            `json:"version"`
	Ages    map[string]string `json:"ages"`
}

// View handles GET /api/shopping/view?q=&sort=
func (h *ShoppingHandler) View(w http.ResponseWriter, r *http.Request) {
	snap, err := h.feed.Current(r.Context(), model.CollectionShopping)
	if err != nil {
		h.logger.Error("load shopping snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build view")
		return
	}

	q := projection.ShoppingQuery{
		Search: r.URL.Query().Get("q"),
		Sort:   r.URL.Query().Get("sort"),
	}
	if user := identity.User(r.Context()); user != "" {
		collapsed, err := h.prefStore.Get(user, model.PrefCollapsedStores)
		if err != nil {
			h.logger.Warn("load collapsed stores", "user", user, "error", err)
		}
		q.Collapsed = splitCSV(collapsed)
	}

	now := h.now()
	ages := make(map[string]string, len(snap.Shopping))
	for _, it := range snap.Shopping {
		ages[it.ID] = projection.Age(now, it.CreatedAt)
	}

	writeJSON(w, http.StatusOK, shoppingViewResponse{
		ShoppingView: projection.BuildShoppingView(snap.Shopping, q, h.view),
		Version:      snap.Version,
		Ages:         ages,
	})
}

// Share handles GET /api/shopping/share?q=&sort=
func (h *ShoppingHandler) Share(w http.ResponseWriter, r *http.Request) {
	snap, err := h.feed.Current(r.Context(), model.CollectionShopping)
	if err != nil {
		h.logger.Error("load shopping snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build share text")
		return
	}

	query := r.URL.Query()
	items := projection.FilterShopping(snap.Shopping, query.Get("q"))
	items = projection.SortShopping(items, projection.NormalizeShoppingSort(query.Get("sort")), h.view.Language)
	pending := projection.PartitionByCompletion(items).Pending

	writeJSON(w, http.StatusOK, map[string]any{
		"text":  projection.ShareText(pending),
		"count": len(pending),
	})
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
