package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTournamentService struct {
	services.TournamentService
	known uuid.UUID
}

func (f *fakeTournamentService) GetTournamentByID(_ context.Context, id uuid.UUID) (*models.Tournament, error) {
	if id != f.known {
		return nil, services.ErrTournamentNotFound
	}
	return &models.Tournament{ID: id, Status: models.StatusActive}, nil
}

func TestWebSocketHandler_ReceivesTournamentEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := brackets.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	tid := uuid.New()
	h := NewWebSocketHandler(hub, &fakeTournamentService{known: tid}, nil, logger)
	router := chi.NewRouter()
	router.Get("/ws/tournaments/{tournamentID}", h.ServeWs)
	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tournaments/"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+uuid.NewString(), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+tid.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	room := brackets.RoomForTournament(tid)
	require.Eventually(t, func() bool { return hub.ClientCount(room) == 1 }, time.Second, 10*time.Millisecond)

	payload, err := json.Marshal(brackets.TournamentEvent{Type: brackets.EventResultRecorded, TournamentID: tid, RoundNumber: 1})
	require.NoError(t, err)
	require.NoError(t, hub.Dispatch(payload))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got brackets.TournamentEvent
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, brackets.EventResultRecorded, got.Type)
	assert.Equal(t, tid, got.TournamentID)
}
