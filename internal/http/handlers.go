package http

import (
	"context"
	"errors"
	"net/http"

	"finance/internal/core"
	applog "finance/internal/log"
	"finance/internal/records"
	"finance/internal/services"
)

type contextKey string

const userIDKey contextKey = "user_id"

// requireAuth resolves the bearer token to a user id and rejects the request
// with 401 otherwise.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := s.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			if !errors.Is(err, services.ErrUnauthenticated) {
				applog.FromContext(r.Context()).ErrorContext(r.Context(), "Session lookup failed",
					applog.FieldComponent, applog.ComponentSession,
					applog.FieldError, err)
				InternalServerError("session lookup failed").Write(w)
				return
			}
			UnauthorizedError(err.Error()).Write(w)
			return
		}
		logger := applog.FromContext(r.Context()).With(applog.FieldUserID, uid)
		ctx := context.WithValue(r.Context(), userIDKey, uid)
		ctx = context.WithValue(ctx, applog.LoggerContextKey, logger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) int64 {
	uid, _ := r.Context().Value(userIDKey).(int64)
	return uid
}

// writeError maps a service error to a status code. Anything unrecognised
// is logged and reported as 500 without its message.
func writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case services.IsValidation(err), errors.Is(err, errInvalidID), errors.Is(err, errEmptyBody):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, records.ErrNotFound):
		NotFoundError("not found").Write(w)
	case errors.Is(err, services.ErrUsernameTaken):
		ConflictError(err.Error()).Write(w)
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthenticated):
		UnauthorizedError(err.Error()).Write(w)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing to write to.
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		InternalServerError("internal error").Write(w)
	}
}

// writeDecodeError reports a malformed body as 400 and an empty one as 422.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errEmptyBody) {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	BadRequestError("malformed JSON body").Write(w)
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name}
}
