package brackets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func joinRoom(t *testing.T, hub *Hub, room string) *Client {
	t.Helper()
	client := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	before := hub.ClientCount(room)
	require.True(t, hub.Join(client))
	require.Eventually(t, func() bool { return hub.ClientCount(room) == before+1 }, time.Second, 5*time.Millisecond)
	return client
}

func TestHub_DispatchRoutesByTournament(t *testing.T) {
	hub, _ := newTestHub(t)
	tid, other := uuid.New(), uuid.New()

	watcher := joinRoom(t, hub, RoomForTournament(tid))
	bystander := joinRoom(t, hub, RoomForTournament(other))

	payload, err := json.Marshal(TournamentEvent{Type: EventRoundGenerated, TournamentID: tid, RoundNumber: 2})
	require.NoError(t, err)
	require.NoError(t, hub.Dispatch(payload))

	select {
	case msg := <-watcher.Send:
		assert.JSONEq(t, string(payload), string(msg))
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, bystander.Send)
}

func TestHub_DispatchRejectsBadPayload(t *testing.T) {
	hub, _ := newTestHub(t)

	assert.Error(t, hub.Dispatch([]byte("not json")))
	assert.Error(t, hub.Dispatch([]byte(`{"type":"ROUND_FINISHED"}`)))
}

func TestHub_LeaveAndShutdown(t *testing.T) {
	hub, cancel := newTestHub(t)
	room := RoomForTournament(uuid.New())

	first := joinRoom(t, hub, room)
	second := joinRoom(t, hub, room)

	hub.leave(first)
	assert.Eventually(t, func() bool { return hub.ClientCount(room) == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-first.Send
	assert.False(t, open)

	cancel()
	assert.Eventually(t, func() bool { return hub.ClientCount(room) == 0 }, time.Second, 5*time.Millisecond)
	_, open = <-second.Send
	assert.False(t, open)
	assert.False(t, hub.Join(&Client{Hub: hub, Send: make(chan []byte), Room: room}))
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub, _ := newTestHub(t)
	room := RoomForTournament(uuid.New())
	client := joinRoom(t, hub, room)

	for i := 0; i < cap(client.Send)+3; i++ {
		hub.BroadcastToRoom(room, map[string]int{"n": i})
	}
	assert.Len(t, client.Send, cap(client.Send))
}
