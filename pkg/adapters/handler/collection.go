package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	"go.uber.org/zap"
)

type CollectionHandler struct {
	service ports.InventoryService
	log     *zap.Logger
}

func NewCollectionHandler(service ports.InventoryService, log *zap.Logger) *CollectionHandler {
	return &CollectionHandler{service: service, log: log}
}

// entryRequest omits quantity to mean a single copy.
type entryRequest struct {
	CardID    string `json:"card_id"`
	Quantity  *int   `json:"quantity"`
	Condition string `json:"condition"`
}

func (req entryRequest) quantity() int {
	if req.Quantity == nil {
		return 1
	}
	return *req.Quantity
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.service.ListEntries(r.Context(), userID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"collections": entries})
}

func (h *CollectionHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}

	entry, err := h.service.AddEntry(r.Context(), userID, req.CardID, req.quantity(), req.Condition)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), userID, id, req.quantity(), req.Condition)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *CollectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}

	if err := h.service.RemoveEntry(r.Context(), userID, id); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
