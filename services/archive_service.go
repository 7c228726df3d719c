package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/google/uuid"
)

// FinalStandingsArchive is the document stored in object storage when a
// tournament finishes.
type FinalStandingsArchive struct {
	Tournament *models.Tournament   `json:"tournament"`
	Rounds     []models.Round       `json:"rounds"`
	Standings  []models.PlayerStat  `json:"standings"`
	Progress   []models.ProgressRow `json:"progress"`
	ArchivedAt time.Time            `json:"archived_at"`
}

type ArchiveService interface {
	// ArchiveFinalStandings uploads the final table and records its key.
	// Returns nil key when object storage is not configured.
	ArchiveFinalStandings(ctx context.Context, tournamentID uuid.UUID) (*string, error)
}

type archiveService struct {
	standings      StandingsService
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewArchiveService(
	standings StandingsService,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) ArchiveService {
	return &archiveService{
		standings:      standings,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func archiveKey(tournamentID uuid.UUID) string {
	return fmt.Sprintf("tournaments/%s/final-standings.json", tournamentID)
}

func (s *archiveService) ArchiveFinalStandings(ctx context.Context, tournamentID uuid.UUID) (*string, error) {
	if s.uploader == nil {
		return nil, nil
	}

	snap, err := s.standings.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	doc := FinalStandingsArchive{
		Tournament: snap.Tournament,
		Rounds:     attachPairings(snap.Rounds, snap.Pairings),
		Standings:  computeStandings(snap),
		Progress:   computeProgress(snap),
		ArchivedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings archive: %w", err)
	}

	key := archiveKey(tournamentID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if err := s.tournamentRepo.UpdateArchiveKey(ctx, tournamentID, &result.Key); err != nil {
		return nil, handleRepositoryError(err, "save archive key")
	}

	s.logger.Info("final standings archived",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return &result.Key, nil
}
