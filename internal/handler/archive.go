package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/liste/internal/backup"
	"github.com/dukerupert/liste/internal/model"
)

// Archiver saves collections before they are cleared.
type Archiver interface {
	Enabled() bool
	Archive(ctx context.Context, reason string, collections ...string) (*model.Archive, error)
}

// Archives is the full archive manager surface.
type Archives interface {
	Archiver
	List(limit int) ([]model.Archive, error)
	Fetch(ctx context.Context, id int64) (*backup.Document, error)
	Status() backup.Status
}

const defaultArchiveLimit = 20

type ArchiveHandler struct {
	archives Archives
	logger   *slog.Logger
}

func NewArchiveHandler(archives Archives, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{archives: archives, logger: logger}
}

// Create handles POST /api/archive
func (h *ArchiveHandler) Create(w http.ResponseWriter, r *http.Request) {
	archive, err := h.archives.Archive(r.Context(), backup.ReasonManual)
	if errors.Is(err, backup.ErrDisabled) {
		writeError(w, http.StatusServiceUnavailable, "archives are not configured")
		return
	}
	if err != nil {
		h.logger.Error("manual archive", "error", err)
		writeError(w, http.StatusBadGateway, "archive failed")
		return
	}
	writeJSON(w, http.StatusCreated, archive)
}

// Status handles GET /api/archive/status
func (h *ArchiveHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.archives.Status())
}

// List handles GET /api/archives?limit=
func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultArchiveLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	archives, err := h.archives.List(limit)
	if err != nil {
		h.logger.Error("list archives", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}
	if archives == nil {
		archives = []model.Archive{}
	}
	writeJSON(w, http.StatusOK, archives)
}

// Get handles GET /api/archives/{id}: the decrypted archive content.
func (h *ArchiveHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	doc, err := h.archives.Fetch(r.Context(), id)
	switch {
	case errors.Is(err, backup.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "archives are not configured")
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, "archive not found")
	case err != nil:
		h.logger.Error("fetch archive", "archive_id", id, "error", err)
		writeError(w, http.StatusBadGateway, "failed to read archive")
	default:
		writeJSON(w, http.StatusOK, doc)
	}
}
