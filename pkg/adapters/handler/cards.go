package handler

import (
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	"go.uber.org/zap"
)

type CardHandler struct {
	service ports.CatalogService
	log     *zap.Logger
}

func NewCardHandler(service ports.CatalogService, log *zap.Logger) *CardHandler {
	return &CardHandler{service: service, log: log}
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	cards, total, err := h.service.ListCards(r.Context(), page, limit, r.URL.Query().Get("search"))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cards": cards,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.service.GetCard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
