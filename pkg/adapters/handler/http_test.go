package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantError  string
		logged     bool
	}{
		{"validation", domain.Validation("quantity must be at least 1"), http.StatusBadRequest, "validation", "quantity must be at least 1", false},
		{"not found", domain.NotFound("deck not found"), http.StatusNotFound, "not_found", "deck not found", false},
		{"conflict", domain.Conflict(domain.ReasonInsufficientQuantity), http.StatusConflict, "conflict", domain.ReasonInsufficientQuantity, false},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized", domain.ErrInvalidCredentials.Error(), false},
		{"server", domain.Internal(errors.New("database is locked")), http.StatusInternalServerError, "server", "internal server error", true},
		{"unclassified", fmt.Errorf("boom"), http.StatusInternalServerError, "server", "internal server error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			rr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/v1/decks/1/cards", nil)

			writeError(zap.New(core), rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body errorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, domain.Kind(tt.wantKind), body.Kind)
			assert.Equal(t, tt.wantError, body.Error)
			assert.NotContains(t, rr.Body.String(), "database is locked")
			assert.Equal(t, tt.logged, logs.Len() == 1)
		})
	}
}

func TestPathID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest("GET", "/api/v1/decks/"+raw, nil)
		req.SetPathValue("id", raw)
		_, err := pathID(req)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err), raw)
	}

	req := httptest.NewRequest("GET", "/api/v1/decks/7", nil)
	req.SetPathValue("id", "7")
	id, err := pathID(req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}
