package models

import (
	"time"

	"github.com/google/uuid"
)

// Player is a registered tournament entrant. Rating is only used for
// seeding and tie-breaks and is never updated by results.
type Player struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Rating       int       `json:"rating" db:"rating"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
