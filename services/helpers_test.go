package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHandleRepositoryError(t *testing.T) {
	assert.NoError(t, handleRepositoryError(nil, "op"))
	assert.ErrorIs(t, handleRepositoryError(fmt.Errorf("wrap: %w", repositories.ErrTournamentNotFound), "op"), ErrTournamentNotFound)
	assert.ErrorIs(t, handleRepositoryError(repositories.ErrPlayerNotFound, "op"), ErrPlayerNotFound)
	assert.ErrorIs(t, handleRepositoryError(repositories.ErrPairingNotFound, "op"), ErrPairingNotFound)
	assert.ErrorIs(t, handleRepositoryError(repositories.ErrRoundNotFound, "op"), ErrNotFound)

	raw := errors.New("connection reset")
	err := handleRepositoryError(raw, "load rounds")
	assert.ErrorIs(t, err, raw)
	assert.ErrorContains(t, err, "load rounds")
}

func TestAttachPairings(t *testing.T) {
	r1, r2 := models.Round{ID: uuid.New(), Number: 1}, models.Round{ID: uuid.New(), Number: 2}
	pairings := []models.Pairing{
		{RoundID: r1.ID, TableNumber: 1},
		{RoundID: r1.ID, TableNumber: 2},
	}

	out := attachPairings([]models.Round{r1, r2}, pairings)
	assert.Len(t, out[0].Pairings, 2)
	assert.NotNil(t, out[1].Pairings)
	assert.Empty(t, out[1].Pairings)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Spring Open", normalizeName("  Spring \t Open "))
	assert.Equal(t, "", normalizeName("   "))
}

func TestValidatePlayerInput(t *testing.T) {
	in, err := validatePlayerInput(AddPlayerInput{Name: "  Magnus   Carlsen ", Rating: 2830})
	assert.NoError(t, err)
	assert.Equal(t, "Magnus Carlsen", in.Name)

	_, err = validatePlayerInput(AddPlayerInput{Name: " ", Rating: 1500})
	assert.ErrorIs(t, err, ErrPlayerNameRequired)

	_, err = validatePlayerInput(AddPlayerInput{Name: "A", Rating: -1})
	assert.ErrorIs(t, err, ErrPlayerRatingInvalid)

	_, err = validatePlayerInput(AddPlayerInput{Name: "Unrated"})
	assert.NoError(t, err)
}
