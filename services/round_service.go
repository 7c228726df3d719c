package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// RoundService drives the tournament through its rounds. Each transition
// runs in one transaction holding the tournament row lock, so concurrent
// requests on any instance are serialized and state is re-checked under the
// lock.
type RoundService interface {
	StartTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Round, error)
	RecordResult(ctx context.Context, tournamentID, pairingID uuid.UUID, result models.Result) (*models.Pairing, error)
	FinishRound(ctx context.Context, tournamentID uuid.UUID) (*models.Round, error)
	NextRound(ctx context.Context, tournamentID uuid.UUID) (*models.Round, error)
	FinishTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error)
	ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]models.Round, error)
}

type roundService struct {
	txRunner       TxRunner
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	pairingRepo    repositories.PairingRepository
	engine         brackets.PairingEngine
	standings      StandingsService
	archive        ArchiveService
	events         EventPublisher
	logger         *slog.Logger

	flight singleflight.Group
}

func NewRoundService(
	txRunner TxRunner,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	pairingRepo repositories.PairingRepository,
	engine brackets.PairingEngine,
	standings StandingsService,
	archive ArchiveService,
	events EventPublisher,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		txRunner:       txRunner,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		pairingRepo:    pairingRepo,
		engine:         engine,
		standings:      standings,
		archive:        archive,
		events:         events,
		logger:         logger,
	}
}

// transitionTimeout bounds a shared transition once it no longer follows the
// first caller's context.
const transitionTimeout = 30 * time.Second

// collapse merges identical in-flight transitions of one tournament. The
// shared call runs detached from the caller that started it; every caller
// still stops waiting when its own ctx ends.
func (s *roundService) collapse(ctx context.Context, op string, tournamentID uuid.UUID, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := s.flight.DoChan(op+":"+tournamentID.String(), func() (interface{}, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), transitionTimeout)
		defer cancel()
		return fn(runCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("duplicate transition collapsed", slog.String("op", op), slog.String("tournament_id", tournamentID.String()))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *roundService) StartTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Round, error) {
	v, err := s.collapse(ctx, "start", tournamentID, func(ctx context.Context) (interface{}, error) {
		var round *models.Round
		err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
			t, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "lock tournament")
			}
			players, err := s.playerRepo.ListByTournament(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "list players")
			}
			if err := checkStart(t, len(players)); err != nil {
				return err
			}

			round, err = s.generateAndSave(ctx, tx, t, players, 1, nil)
			if err != nil {
				return err
			}

			t.Status = models.StatusActive
			t.CurrentRound = 1
			t.TotalRounds = brackets.TotalRounds(len(players))
			if err := s.tournamentRepo.UpdateState(ctx, tx, t); err != nil {
				return handleRepositoryError(err, "update tournament state")
			}

			ev := newEvent(brackets.EventRoundGenerated, tournamentID)
			ev.RoundNumber = 1
			return s.events.Publish(ctx, tx, ev)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("tournament started",
			slog.String("tournament_id", tournamentID.String()),
			slog.Int("round", round.Number),
			slog.Int("pairings", len(round.Pairings)))
		return round, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Round), nil
}

// generateAndSave runs the pairing engine and stores the round. The engine
// output carries no identities; they are assigned here.
func (s *roundService) generateAndSave(ctx context.Context, tx repositories.SQLExecutor, t *models.Tournament, players []models.Player, number int, history []models.Pairing) (*models.Round, error) {
	round, pairings, err := s.engine.GenerateRound(brackets.GenerateRoundParams{
		Players:     players,
		RoundNumber: number,
		History:     history,
	})
	if err != nil {
		return nil, fmt.Errorf("%s pairing failed: %w", s.engine.GetName(), err)
	}

	round.ID = uuid.New()
	round.TournamentID = t.ID
	for i := range pairings {
		pairings[i].ID = uuid.New()
		pairings[i].RoundID = round.ID
		pairings[i].TournamentID = t.ID
		pairings[i].Result = models.ResultUnset
	}

	if err := s.roundRepo.Create(ctx, tx, &round); err != nil {
		return nil, handleRepositoryError(err, "create round")
	}
	if err := s.pairingRepo.CreateBatch(ctx, tx, pairings); err != nil {
		return nil, handleRepositoryError(err, "create pairings")
	}
	round.Pairings = pairings
	return &round, nil
}

func (s *roundService) currentRound(ctx context.Context, tx repositories.SQLExecutor, t *models.Tournament) (*models.Round, error) {
	round, err := s.roundRepo.GetByNumber(ctx, tx, t.ID, t.CurrentRound)
	if err != nil {
		return nil, handleRepositoryError(err, fmt.Sprintf("get round %d", t.CurrentRound))
	}
	return round, nil
}

// RecordResult sets or clears (ResultUnset) the result of a game in the
// current round.
func (s *roundService) RecordResult(ctx context.Context, tournamentID, pairingID uuid.UUID, result models.Result) (*models.Pairing, error) {
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidResult, string(result))
	}

	var pairing *models.Pairing
	var roundNumber int
	err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err, "lock tournament")
		}
		if err := checkActive(t); err != nil {
			return err
		}
		pairing, err = s.pairingRepo.GetByID(ctx, tx, tournamentID, pairingID)
		if err != nil {
			return handleRepositoryError(err, "get pairing")
		}
		round, err := s.currentRound(ctx, tx, t)
		if err != nil {
			return err
		}
		if err := checkRecordResult(t, round, pairing); err != nil {
			return err
		}
		if err := s.pairingRepo.UpdateResult(ctx, tx, pairingID, result); err != nil {
			return handleRepositoryError(err, "update result")
		}
		pairing.Result = result
		roundNumber = round.Number

		ev := newEvent(brackets.EventResultRecorded, tournamentID)
		ev.RoundNumber = round.Number
		ev.PairingID = &pairing.ID
		return s.events.Publish(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("result recorded",
		slog.String("tournament_id", tournamentID.String()),
		slog.Int("round", roundNumber),
		slog.Int("table", pairing.TableNumber),
		slog.String("result", string(result)))
	return pairing, nil
}

func (s *roundService) FinishRound(ctx context.Context, tournamentID uuid.UUID) (*models.Round, error) {
	v, err := s.collapse(ctx, "finish-round", tournamentID, func(ctx context.Context) (interface{}, error) {
		var round *models.Round
		err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
			t, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "lock tournament")
			}
			if err := checkActive(t); err != nil {
				return err
			}
			round, err = s.currentRound(ctx, tx, t)
			if err != nil {
				return err
			}
			pairings, err := s.pairingRepo.ListByRound(ctx, tx, round.ID)
			if err != nil {
				return handleRepositoryError(err, "list pairings")
			}
			if err := checkFinishRound(t, round, pairings); err != nil {
				return err
			}
			if err := s.roundRepo.MarkFinished(ctx, tx, round.ID); err != nil {
				return handleRepositoryError(err, "finish round")
			}
			round.Finished = true
			round.Pairings = pairings

			ev := newEvent(brackets.EventRoundFinished, tournamentID)
			ev.RoundNumber = round.Number
			return s.events.Publish(ctx, tx, ev)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("round finished", slog.String("tournament_id", tournamentID.String()), slog.Int("round", round.Number))
		return round, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Round), nil
}

// NextRound pairs round current+1 against the full history of the
// tournament.
func (s *roundService) NextRound(ctx context.Context, tournamentID uuid.UUID) (*models.Round, error) {
	v, err := s.collapse(ctx, "next-round", tournamentID, func(ctx context.Context) (interface{}, error) {
		var next *models.Round
		err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
			t, err := s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "lock tournament")
			}
			if err := checkActive(t); err != nil {
				return err
			}
			current, err := s.currentRound(ctx, tx, t)
			if err != nil {
				return err
			}
			if err := checkAdvance(t, current); err != nil {
				return err
			}

			players, err := s.playerRepo.ListByTournament(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "list players")
			}
			history, err := s.pairingRepo.ListByTournament(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "list pairings")
			}

			next, err = s.generateAndSave(ctx, tx, t, players, t.CurrentRound+1, history)
			if err != nil {
				return err
			}
			t.CurrentRound = next.Number
			if err := s.tournamentRepo.UpdateState(ctx, tx, t); err != nil {
				return handleRepositoryError(err, "update tournament state")
			}

			ev := newEvent(brackets.EventRoundGenerated, tournamentID)
			ev.RoundNumber = next.Number
			return s.events.Publish(ctx, tx, ev)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("round generated",
			slog.String("tournament_id", tournamentID.String()),
			slog.Int("round", next.Number),
			slog.Int("pairings", len(next.Pairings)))
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Round), nil
}

// FinishTournament ends an active tournament, possibly before all rounds
// were played. Unplayed games keep their unset result.
func (s *roundService) FinishTournament(ctx context.Context, tournamentID uuid.UUID) (*models.Tournament, error) {
	v, err := s.collapse(ctx, "finish", tournamentID, func(ctx context.Context) (interface{}, error) {
		var t *models.Tournament
		err := s.txRunner.InTx(ctx, nil, func(tx repositories.SQLExecutor) error {
			var err error
			t, err = s.tournamentRepo.GetForUpdate(ctx, tx, tournamentID)
			if err != nil {
				return handleRepositoryError(err, "lock tournament")
			}
			if err := checkFinishTournament(t); err != nil {
				return err
			}
			t.Status = models.StatusFinished
			if err := s.tournamentRepo.UpdateState(ctx, tx, t); err != nil {
				return handleRepositoryError(err, "update tournament state")
			}
			ev := newEvent(brackets.EventTournamentEnded, tournamentID)
			ev.RoundNumber = t.CurrentRound
			return s.events.Publish(ctx, tx, ev)
		})
		if err != nil {
			return nil, err
		}
		s.logger.Info("tournament finished",
			slog.String("tournament_id", tournamentID.String()),
			slog.Int("rounds_played", t.CurrentRound),
			slog.Int("rounds_planned", t.TotalRounds))

		// Архив не критичен: турнир уже завершён.
		key, err := s.archive.ArchiveFinalStandings(ctx, tournamentID)
		if err != nil {
			s.logger.Error("failed to archive final standings", slog.String("tournament_id", tournamentID.String()), slog.Any("error", err))
		} else if key != nil {
			t.ArchiveKey = key
			if err := s.events.Publish(ctx, nil, newEvent(brackets.EventTournamentUpdated, tournamentID)); err != nil {
				s.logger.Warn("failed to publish archive event", slog.Any("error", err))
			}
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Tournament), nil
}

func (s *roundService) ListRounds(ctx context.Context, tournamentID uuid.UUID) ([]models.Round, error) {
	snap, err := s.standings.Snapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return attachPairings(snap.Rounds, snap.Pairings), nil
}
