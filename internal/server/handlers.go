package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vaultn8n/vaultn8n/internal/models"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to VaultN8N"})
}

// handleUpsertSingle creates or updates one secret and echoes it back,
// decrypted, as a one-element list.
func (s *Server) handleUpsertSingle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var secret models.Secret
	if err := json.NewDecoder(r.Body).Decode(&secret); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored, err := s.service.Set(secret)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, []models.Secret{stored})
}

// handleUpsertBulk creates or updates a list of secrets.
func (s *Server) handleUpsertBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var batch []models.Secret
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	processed, err := s.service.SetBulk(batch)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ensureList(processed))
}

// handleSecrets serves GET (fetch) and DELETE over the same ?keys= contract:
// a comma-separated list of literal keys and/or '*' glob patterns.
func (s *Server) handleSecrets(w http.ResponseWriter, r *http.Request) {
	items, ok := parseKeysParam(w, r)
	if !ok {
		return
	}

	var (
		result []models.Secret
		err    error
	)

	switch r.Method {
	case http.MethodGet:
		result, err = s.service.Get(items)
	case http.MethodDelete:
		result, err = s.service.Delete(items)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ensureList(result))
}

// parseKeysParam extracts the comma-separated keys query parameter. Blank
// entries are dropped; an effectively empty list is a client error.
func parseKeysParam(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	raw := r.URL.Query().Get("keys")

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	if len(items) == 0 {
		writeError(w, http.StatusBadRequest, "keys query parameter is required")
		return nil, false
	}

	return items, true
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrInvalidSecret) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Decryption and storage failures: log the cause, never echo it.
	s.logger.WithError(err).Error("Secret operation failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// ensureList maps a nil slice to an empty one so responses are always JSON
// arrays, never null.
func ensureList(secrets []models.Secret) []models.Secret {
	if secrets == nil {
		return []models.Secret{}
	}
	return secrets
}
