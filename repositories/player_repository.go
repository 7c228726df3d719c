package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
)

var (
	ErrPlayerNotFound          = errors.New("player not found")
	ErrPlayerTournamentInvalid = errors.New("player tournament reference is invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Player, error)
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	query := `
		INSERT INTO players (id, tournament_id, name, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, p.ID, p.TournamentID, p.Name, p.Rating).Scan(&p.CreatedAt)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
			return ErrPlayerTournamentInvalid
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

// ListByTournament returns players in registration order.
func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Player, error) {
	query := `
		SELECT id, tournament_id, name, rating, created_at
		FROM players
		WHERE tournament_id = $1
		ORDER BY created_at, id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.Rating, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player rows: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM players WHERE id = $1 AND tournament_id = $2`, playerID, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
