package brackets

import (
	"github.com/Dosada05/swiss-tournament/models"
)

type GenerateRoundParams struct {
	Players     []models.Player
	RoundNumber int
	History     []models.Pairing
}

// PairingEngine produces the pairings of one round. Implementations must be
// pure: identical params give identical output, and a failed call returns no
// pairings at all.
type PairingEngine interface {
	GenerateRound(params GenerateRoundParams) (models.Round, []models.Pairing, error)

	GetName() string
}
