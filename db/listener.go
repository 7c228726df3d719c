package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// EventsChannel is the Postgres NOTIFY channel carrying tournament change
// events between service instances.
const EventsChannel = "tournament_events"

const listenerPingInterval = 90 * time.Second

// ListenTournamentEvents subscribes to EventsChannel and hands every payload
// to dispatch until ctx is cancelled. The pq.Listener reconnects on its own;
// notifications sent while disconnected are lost.
func ListenTournamentEvents(ctx context.Context, dsn string, logger *slog.Logger, dispatch func(payload []byte) error) error {
	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			logger.Info("event listener connected", slog.String("channel", EventsChannel))
		case pq.ListenerEventDisconnected:
			logger.Warn("event listener disconnected", slog.Any("error", err))
		case pq.ListenerEventReconnected:
			logger.Info("event listener reconnected", slog.String("channel", EventsChannel))
		case pq.ListenerEventConnectionAttemptFailed:
			logger.Error("event listener connection attempt failed", slog.Any("error", err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(EventsChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", EventsChannel, err)
	}

	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				// Соединение было переустановлено.
				continue
			}
			if err := dispatch([]byte(n.Extra)); err != nil {
				logger.Warn("failed to dispatch tournament event", slog.String("payload", n.Extra), slog.Any("error", err))
			}
		case <-ticker.C:
			if err := listener.Ping(); err != nil {
				logger.Warn("event listener ping failed", slog.Any("error", err))
			}
		}
	}
}
