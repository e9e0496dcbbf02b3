package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/clinicsync/internal/server/storage"
	"github.com/iudanet/clinicsync/pkg/api"
)

// GuideHandler справочник образовательных памяток
type GuideHandler struct {
	responder
	guides storage.GuideStorage
}

// NewGuideHandler создает handler памяток
func NewGuideHandler(logger *slog.Logger, guides storage.GuideStorage) *GuideHandler {
	return &GuideHandler{responder: responder{logger: logger}, guides: guides}
}

// List обрабатывает GET /api/v1/guides
func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.guides.ListGuides(r.Context())
	if err != nil {
		h.internalError(w, r, "failed to list guides", err)
		return
	}

	resp := api.GuidesResponse{Guides: make([]api.Guide, 0, len(list))}
	for _, g := range list {
		resp.Guides = append(resp.Guides, toAPIGuide(g))
	}
	h.sendJSON(w, resp, http.StatusOK)
}

// Create обрабатывает POST /api/v1/guides
func (h *GuideHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req api.Guide
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.sendError(w, "title is required", http.StatusBadRequest)
		return
	}
	for _, tr := range req.Translations {
		if tr.Language == "" {
			h.sendError(w, "translation language is required", http.StatusBadRequest)
			return
		}
	}

	guide := fromAPIGuide(req)
	if err := h.guides.CreateGuide(r.Context(), guide); err != nil {
		h.internalError(w, r, "failed to create guide", err)
		return
	}

	h.logger.InfoContext(r.Context(), "guide created",
		slog.Int64("guide_id", guide.ID),
		slog.String("title", guide.Title))

	h.sendJSON(w, toAPIGuide(guide), http.StatusCreated)
}
