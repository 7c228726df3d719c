package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrPairingNotFound = errors.New("pairing not found")
	ErrPairingConflict = errors.New("pairing violates round constraints")
)

type PairingRepository interface {
	// CreateBatch inserts a whole round in one statement. Results start unset.
	CreateBatch(ctx context.Context, exec SQLExecutor, pairings []models.Pairing) error
	GetByID(ctx context.Context, exec SQLExecutor, tournamentID, pairingID uuid.UUID) (*models.Pairing, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Pairing, error)
	ListByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]models.Pairing, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, pairingID uuid.UUID, result models.Result) error
}

type postgresPairingRepository struct {
	db *sql.DB
}

func NewPostgresPairingRepository(db *sql.DB) PairingRepository {
	return &postgresPairingRepository{db: db}
}

func (r *postgresPairingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const pairingColumns = `id, round_id, tournament_id, white_player_id, black_player_id, result, table_number`

func (r *postgresPairingRepository) CreateBatch(ctx context.Context, exec SQLExecutor, pairings []models.Pairing) error {
	if len(pairings) == 0 {
		return nil
	}

	n := len(pairings)
	ids := make([]string, n)
	roundIDs := make([]string, n)
	tournamentIDs := make([]string, n)
	whites := make([]string, n)
	blacks := make([]string, n)
	tables := make([]int64, n)
	for i, p := range pairings {
		ids[i] = p.ID.String()
		roundIDs[i] = p.RoundID.String()
		tournamentIDs[i] = p.TournamentID.String()
		whites[i] = p.WhiteID.String()
		blacks[i] = p.BlackID.String()
		tables[i] = int64(p.TableNumber)
	}

	query := `
		INSERT INTO pairings (id, round_id, tournament_id, white_player_id, black_player_id, table_number)
		SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::uuid[], $5::uuid[], $6::int[])`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		pq.Array(ids), pq.Array(roundIDs), pq.Array(tournamentIDs),
		pq.Array(whites), pq.Array(blacks), pq.Array(tables),
	)
	if err != nil {
		if code, _, ok := pqErrorCode(err); ok {
			switch code {
			case pqUniqueViolation, pqCheckViolation, pqForeignKeyViolation:
				return fmt.Errorf("%w: %v", ErrPairingConflict, err)
			}
		}
		return fmt.Errorf("failed to insert %d pairings: %w", n, err)
	}
	return nil
}

func (r *postgresPairingRepository) GetByID(ctx context.Context, exec SQLExecutor, tournamentID, pairingID uuid.UUID) (*models.Pairing, error) {
	query := `SELECT ` + pairingColumns + ` FROM pairings WHERE id = $1 AND tournament_id = $2`

	var p models.Pairing
	err := r.getExecutor(exec).QueryRowContext(ctx, query, pairingID, tournamentID).Scan(
		&p.ID, &p.RoundID, &p.TournamentID, &p.WhiteID, &p.BlackID, &p.Result, &p.TableNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairingNotFound
		}
		return nil, fmt.Errorf("failed to get pairing %s: %w", pairingID, err)
	}
	return &p, nil
}

func (r *postgresPairingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID) ([]models.Pairing, error) {
	query := `
		SELECT p.id, p.round_id, p.tournament_id, p.white_player_id, p.black_player_id, p.result, p.table_number
		FROM pairings p
		JOIN rounds r ON r.id = p.round_id
		WHERE p.tournament_id = $1
		ORDER BY r.round_number, p.table_number`
	return r.list(ctx, exec, query, tournamentID)
}

func (r *postgresPairingRepository) ListByRound(ctx context.Context, exec SQLExecutor, roundID uuid.UUID) ([]models.Pairing, error) {
	query := `SELECT ` + pairingColumns + ` FROM pairings WHERE round_id = $1 ORDER BY table_number`
	return r.list(ctx, exec, query, roundID)
}

func (r *postgresPairingRepository) list(ctx context.Context, exec SQLExecutor, query string, arg uuid.UUID) ([]models.Pairing, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairings: %w", err)
	}
	defer rows.Close()

	pairings := make([]models.Pairing, 0)
	for rows.Next() {
		var p models.Pairing
		if err := rows.Scan(&p.ID, &p.RoundID, &p.TournamentID, &p.WhiteID, &p.BlackID, &p.Result, &p.TableNumber); err != nil {
			return nil, fmt.Errorf("failed to scan pairing: %w", err)
		}
		pairings = append(pairings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pairing rows: %w", err)
	}
	return pairings, nil
}

func (r *postgresPairingRepository) UpdateResult(ctx context.Context, exec SQLExecutor, pairingID uuid.UUID, result models.Result) error {
	res, err := r.getExecutor(exec).ExecContext(ctx, `UPDATE pairings SET result = $1 WHERE id = $2`, result, pairingID)
	if err != nil {
		return fmt.Errorf("failed to update result of pairing %s: %w", pairingID, err)
	}
	return checkAffectedRows(res, ErrPairingNotFound)
}
