package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/dukerupert/liste/internal/backup"
	"github.com/dukerupert/liste/internal/catalog"
	"github.com/dukerupert/liste/internal/identity"
	"github.com/dukerupert/liste/internal/model"
	"github.com/dukerupert/liste/internal/projection"
	"github.com/dukerupert/liste/internal/store"
)

type GiftHandler struct {
	giftStore    *store.GiftStore
	feed         Feed
	changes      *Changes
	catalog      catalog.Catalog
	view         projection.Config
	archiver     Archiver
	archiveClear bool
	clearMu      sync.Mutex
	logger       *slog.Logger
}

// GiftOptions groups the collaborators of GiftHandler.
type GiftOptions struct {
	Catalog        catalog.Catalog
	View           projection.Config
	Archiver       Archiver
	ArchiveOnClear bool
}

func NewGiftHandler(gs *store.GiftStore, feed Feed, changes *Changes, opts GiftOptions, logger *slog.Logger) *GiftHandler {
	return &GiftHandler{
		giftStore:    gs,
		feed:         feed,
		changes:      changes,
		catalog:      opts.Catalog,
		view:         opts.View,
		archiver:     opts.Archiver,
		archiveClear: opts.ArchiveOnClear,
		logger:       logger,
	}
}

type giftRequest struct {
	Label          string          `json:"label"`
	Recipient      string          `json:"recipient"`
	Occasion       string          `json:"occasion"`
	EstimatedPrice model.PriceText `json:"estimated_price"`
}

// List handles GET /api/gifts
func (h *GiftHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.feed.Current(r.Context(), model.CollectionGifts)
	if err != nil {
		h.logger.Error("load gifts snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list gifts")
		return
	}
	writeJSON(w, http.StatusOK, newSnapshotResponse(snap))
}

// Create handles POST /api/gifts
func (h *GiftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req giftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Label = strings.TrimSpace(req.Label)
	req.Recipient = strings.TrimSpace(req.Recipient)
	if req.Label == "" || req.Recipient == "" {
		writeError(w, http.StatusBadRequest, "label and recipient are required")
		return
	}

	if req.Occasion == "" {
		req.Occasion = h.catalog.FallbackOccasion()
	}
	if !h.catalog.HasOccasion(req.Occasion) {
		writeError(w, http.StatusBadRequest, "unknown occasion")
		return
	}

	gift, err := h.giftStore.Create(req.Label, req.Recipient, req.Occasion, string(req.EstimatedPrice), identity.User(r.Context()))
	if err != nil {
		h.logger.Error("create gift idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create gift")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionGifts)
	writeJSON(w, http.StatusCreated, gift)
}

// Update handles PATCH /api/gifts/{id}
func (h *GiftHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.GiftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var ok bool
	if patch.Label, ok = trimmed(patch.Label); !ok {
		writeError(w, http.StatusBadRequest, "label must not be empty")
		return
	}
	if patch.Recipient, ok = trimmed(patch.Recipient); !ok {
		writeError(w, http.StatusBadRequest, "recipient must not be empty")
		return
	}
	if patch.Occasion != nil && !h.catalog.HasOccasion(*patch.Occasion) {
		writeError(w, http.StatusBadRequest, "unknown occasion")
		return
	}

	gift, err := h.giftStore.Update(r.PathValue("id"), patch)
	if errors.Is(err, store.ErrInvalidPatch) {
		writeError(w, http.StatusBadRequest, "no field to update")
		return
	}
	if err != nil {
		h.logger.Error("update gift idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update gift")
		return
	}
	if gift == nil {
		writeError(w, http.StatusNotFound, "gift not found")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionGifts)
	writeJSON(w, http.StatusOK, gift)
}

// Toggle handles POST /api/gifts/{id}/toggle. A body of
// {"purchased": bool} sets the state instead of flipping it.
func (h *GiftHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Purchased *bool `json:"purchased"`
	}
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id := r.PathValue("id")
	by := identity.User(r.Context())

	var (
		gift *model.GiftIdea
		err  error
	)
	if req.Purchased != nil {
		gift, err = h.giftStore.SetPurchased(id, *req.Purchased, by)
	} else {
		gift, err = h.giftStore.Toggle(id, by)
	}
	if err != nil {
		h.logger.Error("toggle gift idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle gift")
		return
	}
	if gift == nil {
		writeError(w, http.StatusNotFound, "gift not found")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionGifts)
	writeJSON(w, http.StatusOK, gift)
}

// Delete handles DELETE /api/gifts/{id}
func (h *GiftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	found, err := h.giftStore.Delete(r.PathValue("id"))
	if err != nil {
		h.logger.Error("delete gift idea", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete gift")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "gift not found")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionGifts)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/gifts
func (h *GiftHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.clearMu.Lock()
	defer h.clearMu.Unlock()

	if !h.archiveClear || h.archiver == nil || !h.archiver.Enabled() {
		count, err := h.giftStore.DeleteAll()
		if err != nil {
			h.logger.Error("clear gift list", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to clear list")
			return
		}
		h.changes.Changed(r.Context(), model.CollectionGifts)
		writeJSON(w, http.StatusOK, map[string]any{"cleared": count})
		return
	}

	// The archive reads the list after through is taken, so every entry
	// up to through is in it. Entries added meanwhile stay on the list.
	through, err := h.giftStore.LastSeq()
	if err != nil {
		h.logger.Error("clear gift list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear list")
		return
	}
	archive, err := h.archiver.Archive(r.Context(), backup.ReasonClear, model.CollectionGifts)
	if err != nil {
		h.logger.Error("archive before clear", "error", err)
		writeError(w, http.StatusBadGateway, "archive failed, list not cleared")
		return
	}
	count, err := h.giftStore.DeleteThrough(through)
	if err != nil {
		h.logger.Error("clear gift list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear list")
		return
	}

	h.changes.Changed(r.Context(), model.CollectionGifts)
	writeJSON(w, http.StatusOK, map[string]any{"cleared": count, "archive_id": archive.ID})
}

type giftViewResponse struct {
	projection.GiftView
	Version   uint64   `json:"version"`
	Occasions []string `json:"occasions"`
}

// View handles GET /api/gifts/view?q=&sort=&occasion=
func (h *GiftHandler) View(w http.ResponseWriter, r *http.Request) {
	snap, err := h.feed.Current(r.Context(), model.CollectionGifts)
	if err != nil {
		h.logger.Error("load gifts snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build view")
		return
	}

	query := r.URL.Query()
	q := projection.GiftQuery{
		Search:   query.Get("q"),
		Sort:     query.Get("sort"),
		Occasion: query.Get("occasion"),
	}

	writeJSON(w, http.StatusOK, giftViewResponse{
		GiftView:  projection.BuildGiftView(snap.Gifts, q, h.view),
		Version:   snap.Version,
		Occasions: append([]string{catalog.AllOccasions}, h.catalog.Occasions...),
	})
}
