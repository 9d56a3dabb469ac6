package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"solosphere/logging"
	"solosphere/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto status codes. Anything unrecognised is
// a store failure and surfaces as a 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrDuplicateBid):
		http.Error(w, models.DuplicateBidMessage, http.StatusBadRequest)
	case errors.Is(err, models.ErrInvalidID), errors.Is(err, models.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logging.With(r.Context(), logger).Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

// decodeDocument reads a JSON object body. Arrays, scalars and null are rejected.
func decodeDocument(r *http.Request) (models.Document, error) {
	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return doc, nil
}

// pathParam returns the unescaped value of a route parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
