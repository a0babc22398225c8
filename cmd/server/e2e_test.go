package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-card-collection/pkg/config"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"go.uber.org/zap"
)

type apiClient struct {
	t      *testing.T
	base   string
	client *http.Client
	token  string
}

func (c *apiClient) do(method, path string, payload any) (int, []byte) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, out
}

func (c *apiClient) login(username, password string) {
	c.t.Helper()
	status, body := c.do("POST", "/auth/register", map[string]string{
		"username": username, "email": username + "@example.com", "password": password,
	})
	require.Equal(c.t, http.StatusCreated, status, string(body))

	status, body = c.do("POST", "/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(c.t, http.StatusOK, status, string(body))
	var session struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(c.t, json.Unmarshal(body, &session))
	require.NotEmpty(c.t, session.AccessToken)
	c.token = session.AccessToken
}

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestIntegration(t *testing.T) {
	repo, err := sqlite.NewSQLiteRepository("file:" + filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	svc := newServices(repo, domain.PerDeckPolicy)
	_, err = svc.Catalog.ImportCards(context.Background(), []domain.Card{
		{ID: "base-4", Name: "Charizard", SetName: "Base", CardType: "Pokemon", HP: 120},
		{ID: "base-2", Name: "Blastoise", SetName: "Base", CardType: "Pokemon", HP: 100},
	})
	require.NoError(t, err)

	cfg := &config.Config{JWTSecret: "e2e-secret", TokenTTL: time.Hour}
	server := httptest.NewServer(handler.NewRouter(cfg, zap.NewNop(), svc))
	defer server.Close()

	anon := &apiClient{t: t, base: server.URL, client: server.Client()}
	status, _ := anon.do("GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = anon.do("GET", "/api/v1/decks", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	ash := &apiClient{t: t, base: server.URL, client: server.Client()}
	ash.login("ash", "pikachu")

	// own two Charizards in two entries
	for i := 0; i < 2; i++ {
		status, body := ash.do("POST", "/api/v1/collection", map[string]any{"card_id": "base-4"})
		require.Equal(t, http.StatusCreated, status, string(body))
	}
	status, body := ash.do("POST", "/api/v1/collection", map[string]any{"card_id": "base-4", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", decodeBody[map[string]string](t, body)["kind"])

	status, body = ash.do("POST", "/api/v1/decks", map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, body = ash.do("POST", "/api/v1/decks", map[string]any{"name": "Starter Deck"})
	require.Equal(t, http.StatusCreated, status, string(body))
	deck := decodeBody[domain.Deck](t, body)
	deckPath := "/api/v1/decks/" + itoa(deck.ID)

	status, body = ash.do("POST", deckPath+"/cards", map[string]any{"card_id": "base-4", "quantity": 2})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = ash.do("POST", deckPath+"/cards", map[string]any{"card_id": "base-4"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, domain.ReasonInsufficientQuantity, decodeBody[map[string]string](t, body)["error"])

	status, body = ash.do("POST", deckPath+"/cards", map[string]any{"card_id": "base-2"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, domain.ReasonCardNotInCollection, decodeBody[map[string]string](t, body)["error"])

	status, body = ash.do("GET", deckPath, nil)
	require.Equal(t, http.StatusOK, status)
	detail := decodeBody[domain.DeckDetail](t, body)
	assert.Equal(t, 2, detail.CardCount)
	require.Len(t, detail.Cards, 1)
	assert.Equal(t, "Charizard", detail.Cards[0].CardName)

	status, body = ash.do("GET", deckPath+"/export", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "# Starter Deck\n2xbase-4\n", string(body))

	status, body = ash.do("GET", deckPath+"/qr", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	// another user cannot see or use the deck
	misty := &apiClient{t: t, base: server.URL, client: server.Client()}
	misty.login("misty", "starmie")
	status, _ = misty.do("GET", deckPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = misty.do("DELETE", deckPath, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// entries backing the allocation cannot both go
	status, body = ash.do("GET", "/api/v1/collection", nil)
	require.Equal(t, http.StatusOK, status)
	entries := decodeBody[struct {
		Collections []domain.CollectionEntryView `json:"collections"`
	}](t, body).Collections
	require.Len(t, entries, 2)
	status, _ = ash.do("DELETE", "/api/v1/collection/"+itoa(entries[0].ID), nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = ash.do("DELETE", deckPath, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"deleted_allocations": 1}`, string(body))

	status, body = ash.do("GET", "/api/v1/me", nil)
	require.Equal(t, http.StatusOK, status)
	profile := decodeBody[domain.Profile](t, body)
	assert.Empty(t, profile.Decks)
	assert.Len(t, profile.Entries, 2)
	assert.NotContains(t, string(body), "password")

	status, _ = ash.do("DELETE", "/api/v1/collection/"+itoa(entries[0].ID), nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, body = anon.do("POST", "/auth/login", map[string]string{"username": "ash", "password": "wrong-one"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.True(t, strings.Contains(string(body), "invalid"))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
