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
	ErrRoundNotFound = errors.New("round not found")
	ErrRoundConflict = errors.New("round number already exists for this tournament")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, number int) (*models.Round, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Round, error)
	MarkFinished(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	query := `
		INSERT INTO rounds (id, tournament_id, round_number, is_finished)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		round.ID, round.TournamentID, round.Number, round.Finished,
	).Scan(&round.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == pqUniqueViolation && constraint == "rounds_tournament_number_key" {
			return ErrRoundConflict
		}
		return fmt.Errorf("failed to create round %d: %w", round.Number, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, number int) (*models.Round, error) {
	query := `
		SELECT id, tournament_id, round_number, is_finished, created_at
		FROM rounds
		WHERE tournament_id = $1 AND round_number = $2`

	var round models.Round
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, number).Scan(
		&round.ID, &round.TournamentID, &round.Number, &round.Finished, &round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", number, err)
	}
	return &round, nil
}

// ListByTournament returns rounds ordered by number.
func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Round, error) {
	query := `
		SELECT id, tournament_id, round_number, is_finished, created_at
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY round_number`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var round models.Round
		if err := rows.Scan(&round.ID, &round.TournamentID, &round.Number, &round.Finished, &round.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) MarkFinished(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE rounds SET is_finished = TRUE WHERE id = $1`, roundID)
	if err != nil {
		return fmt.Errorf("failed to finish round %s: %w", roundID, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
