package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const editorContextKey contextKey = "editor_tournament"

func GetEditorTournamentFromContext(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(editorContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, errors.New("editor claims not found in context")
	}
	return id, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
