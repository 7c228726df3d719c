package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/google/uuid"
)

// EventPublisher delivers change notifications to spectators. With a non-nil
// exec the event is bound to that transaction.
type EventPublisher interface {
	Publish(ctx context.Context, exec repositories.SQLExecutor, event brackets.TournamentEvent) error
}

// TxRunner runs fn inside one database transaction. opts nil means the
// driver defaults (read committed, read-write).
type TxRunner interface {
	InTx(ctx context.Context, opts *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error
}

// readSnapshotTx gives every query of a read the same view of the database.
var readSnapshotTx = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

type sqlTxRunner struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLTxRunner(db *sql.DB, logger *slog.Logger) TxRunner {
	return &sqlTxRunner{db: db, logger: logger}
}

func (r *sqlTxRunner) InTx(ctx context.Context, opts *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error {
	return withTx(ctx, r.db, opts, r.logger, func(tx *sql.Tx) error {
		return fn(tx)
	})
}

// withTx runs fn in a transaction, committing on success and rolling back on
// error or panic.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	txErr = fn(tx)
	return txErr
}

func newEvent(eventType string, tournamentID uuid.UUID) brackets.TournamentEvent {
	return brackets.TournamentEvent{
		Type:         eventType,
		TournamentID: tournamentID,
		At:           time.Now().UTC(),
	}
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPairingNotFound):
		return ErrPairingNotFound
	case errors.Is(err, repositories.ErrRoundNotFound),
		errors.Is(err, repositories.ErrPlayerTournamentInvalid):
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func populateArchiveURL(t *models.Tournament, uploader storage.FileUploader) {
	if t == nil || uploader == nil || t.ArchiveKey == nil || *t.ArchiveKey == "" {
		return
	}
	if url := uploader.GetPublicURL(*t.ArchiveKey); url != "" {
		t.ArchiveURL = &url
	}
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
