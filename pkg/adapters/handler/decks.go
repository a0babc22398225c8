package handler

import (
	"net/http"
	"strconv"

	"github.com/skip2/go-qrcode"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	"go.uber.org/zap"
)

const (
	qrDefaultSize = 256
	qrMaxSize     = 1024
)

type DeckHandler struct {
	decks ports.DeckService
	alloc ports.AllocationService
	log   *zap.Logger
}

func NewDeckHandler(decks ports.DeckService, alloc ports.AllocationService, log *zap.Logger) *DeckHandler {
	return &DeckHandler{decks: decks, alloc: alloc, log: log}
}

type deckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type allocateRequest struct {
	CardID   string `json:"card_id"`
	Quantity *int   `json:"quantity"`
}

func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	decks, err := h.decks.ListDecks(r.Context(), userID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req deckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}

	deck, err := h.decks.CreateDeck(r.Context(), userID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := h.deckParams(w, r)
	if !ok {
		return
	}
	deck, err := h.decks.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := h.deckParams(w, r)
	if !ok {
		return
	}
	var req deckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}

	deck, err := h.decks.UpdateDeck(r.Context(), userID, deckID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := h.deckParams(w, r)
	if !ok {
		return
	}
	removed, err := h.decks.DeleteDeck(r.Context(), userID, deckID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted_allocations": removed})
}

// Allocate commits copies of an owned card to the deck. Quantity defaults
// to one.
func (h *DeckHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := h.deckParams(w, r)
	if !ok {
		return
	}
	var req allocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.log, w, r, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	a, err := h.alloc.Allocate(r.Context(), userID, deckID, req.CardID, quantity)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *DeckHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := h.deckParams(w, r)
	if !ok {
		return
	}
	text, err := h.decks.ExportDeck(r.Context(), userID, deckID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text + "\n"))
}

// QR renders the deck export as a PNG QR code.
func (h *DeckHandler) QR(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := h.deckParams(w, r)
	if !ok {
		return
	}
	size := qrDefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > qrMaxSize {
			writeError(h.log, w, r, domain.Validation("size must be between 64 and %d", qrMaxSize))
			return
		}
		size = n
	}

	text, err := h.decks.ExportDeck(r.Context(), userID, deckID)
	if err != nil {
		writeError(h.log, w, r, err)
		return
	}
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		// content too large for a QR symbol
		writeError(h.log, w, r, domain.Validation("deck is too large for a QR code"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *DeckHandler) deckParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := currentUser(w, r)
	if !ok {
		return 0, 0, false
	}
	deckID, err := pathID(r)
	if err != nil {
		writeError(h.log, w, r, err)
		return 0, 0, false
	}
	return userID, deckID, true
}
