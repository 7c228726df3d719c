package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/google/uuid"
)

type CreateTournamentInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	DeleteTournament(ctx context.Context, id uuid.UUID) error
}

type tournamentService struct {
	txRunner       TxRunner
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	events         EventPublisher
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	txRunner TxRunner,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	events EventPublisher,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		events:         events,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := normalizeName(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	t := &models.Tournament{
		ID:           uuid.New(),
		Name:         name,
		Status:       models.StatusCreated,
		PasswordHash: hash,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err, "create tournament")
	}

	s.logger.Info("tournament created", slog.String("tournament_id", t.ID.String()), slog.String("name", t.Name))
	return t, nil
}

// GetTournamentByID returns the tournament together with its roster.
func (s *tournamentService) GetTournamentByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get tournament")
	}
	players, err := s.playerRepo.ListByTournament(ctx, nil, id)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	t.Players = players
	populateArchiveURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *filter.Status)
	}
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, handleRepositoryError(err, "list tournaments")
	}
	for i := range tournaments {
		populateArchiveURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

// DeleteTournament removes the tournament with all of its data. A stored
// standings archive is removed from object storage afterwards.
func (s *tournamentService) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	var archiveKey *string
	err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return handleRepositoryError(err, "lock tournament")
		}
		archiveKey = t.ArchiveKey
		if err := s.tournamentRepo.Delete(ctx, tx, id); err != nil {
			return handleRepositoryError(err, "delete tournament")
		}
		return s.events.Publish(ctx, tx, newEvent(brackets.EventTournamentDeleted, id))
	})
	if err != nil {
		return err
	}

	s.logger.Info("tournament deleted", slog.String("tournament_id", id.String()))

	if archiveKey != nil && *archiveKey != "" && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *archiveKey); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn("failed to delete standings archive", slog.String("tournament_id", id.String()), slog.String("key", *archiveKey), slog.Any("error", err))
		}
	}
	return nil
}
