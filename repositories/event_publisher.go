package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/db"
)

// PostgresEventPublisher sends tournament events through NOTIFY. Inside a
// transaction Postgres delivers the notification only on commit, so a rolled
// back transition never reaches spectators.
type PostgresEventPublisher struct {
	exec SQLExecutor
}

func NewPostgresEventPublisher(exec SQLExecutor) *PostgresEventPublisher {
	return &PostgresEventPublisher{exec: exec}
}

func (p *PostgresEventPublisher) Publish(ctx context.Context, exec SQLExecutor, event brackets.TournamentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	if exec == nil {
		exec = p.exec
	}
	if _, err := exec.ExecContext(ctx, `SELECT pg_notify($1, $2)`, db.EventsChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
