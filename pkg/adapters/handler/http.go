package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Kind  domain.Kind `json:"kind"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a core error to its HTTP status.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return http.StatusUnauthorized
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"kind", "error"}. Only server errors are logged;
// their cause never reaches the client.
func writeError(log *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Kind: domain.KindOf(err), Error: domain.ReasonOf(err)}

	switch status {
	case http.StatusUnauthorized:
		resp = errorResponse{Kind: "unauthorized", Error: err.Error()}
	case http.StatusInternalServerError:
		log.Error("request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		resp = errorResponse{Kind: domain.KindServer, Error: "internal server error"}
	}
	writeJSON(w, status, resp)
}

func unauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Kind: "unauthorized", Error: "Unauthorized"})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Validation("invalid request body")
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, domain.Validation("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// currentUser returns the id resolved by AuthMiddleware.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := UserIDFrom(r.Context())
	if !ok {
		unauthorized(w)
	}
	return id, ok
}
