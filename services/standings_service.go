package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/google/uuid"
)

// TournamentSnapshot is everything the engines need for one tournament,
// read in one repeatable-read transaction.
type TournamentSnapshot struct {
	Tournament *models.Tournament
	Players    []models.Player
	Rounds     []models.Round
	Pairings   []models.Pairing
}

type StandingsService interface {
	Snapshot(ctx context.Context, tournamentID uuid.UUID) (*TournamentSnapshot, error)
	Standings(ctx context.Context, tournamentID uuid.UUID) ([]models.PlayerStat, error)
	Progress(ctx context.Context, tournamentID uuid.UUID) ([]models.ProgressRow, error)
}

type standingsService struct {
	txRunner       TxRunner
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	pairingRepo    repositories.PairingRepository
}

func NewStandingsService(
	txRunner TxRunner,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	pairingRepo repositories.PairingRepository,
) StandingsService {
	return &standingsService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		pairingRepo:    pairingRepo,
	}
}

// Snapshot reads the tournament and its data under one snapshot, so a round
// committed concurrently is seen either with all of its pairings or not at all.
func (s *standingsService) Snapshot(ctx context.Context, tournamentID uuid.UUID) (*TournamentSnapshot, error) {
	snap := &TournamentSnapshot{}
	err := s.txRunner.InTx(ctx, readSnapshotTx, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "get tournament")
		}
		snap.Tournament = t

		if snap.Players, err = s.playerRepo.ListByTournament(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to load players: %w", err)
		}
		if snap.Rounds, err = s.roundRepo.ListByTournament(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to load rounds: %w", err)
		}
		if snap.Pairings, err = s.pairingRepo.ListByTournament(ctx, tx, tournamentID); err != nil {
			return fmt.Errorf("failed to load pairings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *standingsService) Standings(ctx context.Context, tournamentID uuid.UUID) ([]models.PlayerStat, error) {
	snap, err := s.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return computeStandings(snap), nil
}

func (s *standingsService) Progress(ctx context.Context, tournamentID uuid.UUID) ([]models.ProgressRow, error) {
	snap, err := s.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return computeProgress(snap), nil
}

func computeStandings(snap *TournamentSnapshot) []models.PlayerStat {
	return brackets.ComputeStandings(snap.Players, snap.Pairings, snap.Rounds)
}

func computeProgress(snap *TournamentSnapshot) []models.ProgressRow {
	return brackets.ComputeProgress(snap.Players, snap.Pairings, snap.Rounds)
}

// attachPairings groups pairings under their rounds, in table order as loaded.
func attachPairings(rounds []models.Round, pairings []models.Pairing) []models.Round {
	byRound := make(map[uuid.UUID][]models.Pairing, len(rounds))
	for _, p := range pairings {
		byRound[p.RoundID] = append(byRound[p.RoundID], p)
	}
	out := make([]models.Round, len(rounds))
	for i, r := range rounds {
		r.Pairings = byRound[r.ID]
		if r.Pairings == nil {
			r.Pairings = []models.Pairing{}
		}
		out[i] = r
	}
	return out
}
