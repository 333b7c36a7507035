// Package http provides the JSON API server and its handlers.
//
// This file implements the helpers shared by handlers for reading request
// bodies, path ids and list view parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"finance/internal/services"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

var (
	errEmptyBody = errors.New("request body is empty")
	errInvalidID = errors.New("invalid id")
)

// decodeJSON reads one JSON object from r into dst. Unknown fields are
// rejected.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, then trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w %q", errInvalidID, raw)
	}
	return id, nil
}

// viewFromQuery reads ?q=&sort=&dir= into a view state.
func viewFromQuery(r *http.Request) (services.ViewState, error) {
	q := r.URL.Query()
	return services.ParseViewState(sanitizeInput(q.Get("q")), q.Get("sort"), q.Get("dir"))
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
