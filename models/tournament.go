package models

import (
	"time"

	"github.com/google/uuid"
)

// TournamentStatus представляет статусы турнира, соответствующие CHECK в БД.
type TournamentStatus string

const (
	StatusCreated  TournamentStatus = "created"
	StatusActive   TournamentStatus = "active"
	StatusFinished TournamentStatus = "finished"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusCreated, StatusActive, StatusFinished:
		return true
	}
	return false
}

// Tournament представляет турнир по швейцарской системе.
type Tournament struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	TotalRounds  int              `json:"total_rounds" db:"total_rounds"`
	PasswordHash string           `json:"-" db:"password_hash"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	ArchiveKey   *string          `json:"-" db:"archive_key"`
	ArchiveURL   *string          `json:"archive_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Players  []Player  `json:"players,omitempty" db:"-"`
	Rounds   []Round   `json:"rounds,omitempty" db:"-"`
	Pairings []Pairing `json:"pairings,omitempty" db:"-"`
}

// Round is one round of a tournament. Numbers start at 1 with no gaps.
type Round struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Number       int       `json:"round_number" db:"round_number"`
	Finished     bool      `json:"is_finished" db:"is_finished"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Pairings []Pairing `json:"pairings,omitempty" db:"-"`
}
