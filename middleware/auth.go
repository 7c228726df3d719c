package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dosada05/swiss-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TokenParser validates an editor token and returns its tournament.
type TokenParser interface {
	ParseEditorToken(tokenString string) (uuid.UUID, error)
}

// Authenticate requires a valid editor bearer token and stores the
// tournament it grants in the request context.
func Authenticate(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				writeError(w, http.StatusUnauthorized, "missing or malformed bearer token")
				return
			}

			tournamentID, err := parser.ParseEditorToken(strings.TrimSpace(tokenString))
			if err != nil {
				writeError(w, http.StatusUnauthorized, services.ErrAuthenticationFailed.Error())
				return
			}

			ctx := context.WithValue(r.Context(), editorContextKey, tournamentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireEditor rejects tokens issued for a tournament other than the one in
// the URL parameter.
func RequireEditor(urlParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			editorOf, err := GetEditorTournamentFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			target, err := uuid.Parse(chi.URLParam(r, urlParam))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+urlParam+" in URL")
				return
			}
			if editorOf != target {
				writeError(w, http.StatusForbidden, services.ErrForbiddenOperation.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
