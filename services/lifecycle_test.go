package services

import (
	"testing"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func activeTournament(current, total int) *models.Tournament {
	return &models.Tournament{ID: uuid.New(), Status: models.StatusActive, CurrentRound: current, TotalRounds: total}
}

func TestCheckRosterEditable(t *testing.T) {
	assert.NoError(t, checkRosterEditable(&models.Tournament{Status: models.StatusCreated}))
	assert.ErrorIs(t, checkRosterEditable(activeTournament(1, 2)), ErrRosterLocked)
	assert.ErrorIs(t, checkRosterEditable(&models.Tournament{Status: models.StatusFinished}), ErrRosterLocked)
}

func TestCheckStart(t *testing.T) {
	created := &models.Tournament{Status: models.StatusCreated}

	assert.NoError(t, checkStart(created, 4))
	assert.NoError(t, checkStart(created, 10))
	assert.ErrorIs(t, checkStart(created, 5), brackets.ErrInvalidRoster)
	assert.ErrorIs(t, checkStart(created, 2), brackets.ErrInvalidRoster)
	assert.ErrorIs(t, checkStart(created, 0), brackets.ErrInvalidRoster)
	assert.ErrorIs(t, checkStart(activeTournament(1, 2), 4), ErrInvalidTransition)
}

func TestCheckRecordResult(t *testing.T) {
	tour := activeTournament(2, 3)
	current := &models.Round{ID: uuid.New(), Number: 2}
	previous := &models.Round{ID: uuid.New(), Number: 1, Finished: true}

	assert.NoError(t, checkRecordResult(tour, current, &models.Pairing{RoundID: current.ID}))
	assert.ErrorIs(t, checkRecordResult(tour, previous, &models.Pairing{RoundID: previous.ID}), ErrPairingNotInCurrentRound)
	assert.ErrorIs(t, checkRecordResult(tour, current, &models.Pairing{RoundID: previous.ID}), ErrPairingNotInCurrentRound)

	closed := &models.Round{ID: current.ID, Number: 2, Finished: true}
	assert.ErrorIs(t, checkRecordResult(tour, closed, &models.Pairing{RoundID: closed.ID}), ErrRoundAlreadyFinished)

	finished := &models.Tournament{Status: models.StatusFinished, CurrentRound: 2}
	assert.ErrorIs(t, checkRecordResult(finished, current, &models.Pairing{RoundID: current.ID}), ErrInvalidTransition)
}

func TestCheckFinishRound(t *testing.T) {
	tour := activeTournament(1, 2)
	round := &models.Round{ID: uuid.New(), Number: 1}
	done := []models.Pairing{{Result: models.ResultWhiteWin}, {Result: models.ResultNoContest}}
	partial := []models.Pairing{{Result: models.ResultDraw}, {Result: models.ResultUnset}}

	assert.NoError(t, checkFinishRound(tour, round, done))

	err := checkFinishRound(tour, round, partial)
	assert.ErrorIs(t, err, ErrRoundNotComplete)
	assert.ErrorContains(t, err, "1 of 2")

	assert.ErrorIs(t, checkFinishRound(tour, &models.Round{Finished: true}, done), ErrRoundAlreadyFinished)
	assert.ErrorIs(t, checkFinishRound(&models.Tournament{Status: models.StatusCreated}, round, done), ErrInvalidTransition)
}

func TestCheckAdvance(t *testing.T) {
	open := &models.Round{Number: 1}
	closed := &models.Round{Number: 1, Finished: true}

	assert.NoError(t, checkAdvance(activeTournament(1, 2), closed))
	assert.ErrorIs(t, checkAdvance(activeTournament(1, 2), open), ErrRoundNotFinished)
	assert.ErrorIs(t, checkAdvance(activeTournament(2, 2), &models.Round{Number: 2, Finished: true}), ErrNoMoreRounds)
	assert.ErrorIs(t, checkAdvance(&models.Tournament{Status: models.StatusFinished}, closed), ErrInvalidTransition)
}

func TestCheckFinishTournament(t *testing.T) {
	assert.NoError(t, checkFinishTournament(activeTournament(1, 2)))
	assert.ErrorIs(t, checkFinishTournament(&models.Tournament{Status: models.StatusCreated}), ErrInvalidTransition)
	assert.ErrorIs(t, checkFinishTournament(&models.Tournament{Status: models.StatusFinished}), ErrInvalidTransition)
}
