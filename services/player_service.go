package services

import (
	"context"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/google/uuid"
)

type AddPlayerInput struct {
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}

type PlayerService interface {
	AddPlayer(ctx context.Context, tournamentID uuid.UUID, input AddPlayerInput) (*models.Player, error)
	RemovePlayer(ctx context.Context, tournamentID, playerID uuid.UUID) error
	ListPlayers(ctx context.Context, tournamentID uuid.UUID) ([]models.Player, error)
}

type playerService struct {
	txRunner       TxRunner
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	events         EventPublisher
	logger         *slog.Logger
}

func NewPlayerService(
	txRunner TxRunner,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	events EventPublisher,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		events:         events,
		logger:         logger,
	}
}

func validatePlayerInput(input AddPlayerInput) (AddPlayerInput, error) {
	input.Name = normalizeName(input.Name)
	if input.Name == "" {
		return input, ErrPlayerNameRequired
	}
	if input.Rating < 0 {
		return input, ErrPlayerRatingInvalid
	}
	return input, nil
}

func (s *playerService) AddPlayer(ctx context.Context, tournamentID uuid.UUID, input AddPlayerInput) (*models.Player, error) {
	input, err := validatePlayerInput(input)
	if err != nil {
		return nil, err
	}

	player := &models.Player{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Name:         input.Name,
		Rating:       input.Rating,
	}
	err = s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "lock tournament")
		}
		if err := checkRosterEditable(t); err != nil {
			return err
		}
		if err := s.playerRepo.Create(ctx, tx, player); err != nil {
			return handleRepositoryError(err, "create player")
		}
		return s.events.Publish(ctx, tx, newEvent(brackets.EventPlayersChanged, tournamentID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player added",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("player_id", player.ID.String()),
		slog.Int("rating", player.Rating))
	return player, nil
}

func (s *playerService) RemovePlayer(ctx context.Context, tournamentID, playerID uuid.UUID) error {
	err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "lock tournament")
		}
		if err := checkRosterEditable(t); err != nil {
			return err
		}
		if err := s.playerRepo.Delete(ctx, tx, tournamentID, playerID); err != nil {
			return handleRepositoryError(err, "delete player")
		}
		return s.events.Publish(ctx, tx, newEvent(brackets.EventPlayersChanged, tournamentID))
	})
	if err != nil {
		return err
	}

	s.logger.Info("player removed", slog.String("tournament_id", tournamentID.String()), slog.String("player_id", playerID.String()))
	return nil
}

func (s *playerService) ListPlayers(ctx context.Context, tournamentID uuid.UUID) ([]models.Player, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err, "get tournament")
	}
	players, err := s.playerRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	return players, nil
}
