package services

import (
	"fmt"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
)

// Проверки переходов состояния турнира. Все функции чистые: сервисы вызывают
// их повторно под блокировкой строки турнира.
//
//	created --Start--> active(1) --FinishRound--> active(1, finished)
//	        --Advance--> active(2) ... --FinishTournament--> finished

func checkRosterEditable(t *models.Tournament) error {
	if t.Status != models.StatusCreated {
		return fmt.Errorf("%w: tournament is %s", ErrRosterLocked, t.Status)
	}
	return nil
}

func checkStart(t *models.Tournament, playerCount int) error {
	if t.Status != models.StatusCreated {
		return fmt.Errorf("%w: cannot start a tournament that is %s", ErrInvalidTransition, t.Status)
	}
	if playerCount < brackets.MinPlayers || playerCount%2 != 0 {
		return fmt.Errorf("%w: %d players, need an even count of at least %d", brackets.ErrInvalidRoster, playerCount, brackets.MinPlayers)
	}
	return nil
}

func checkActive(t *models.Tournament) error {
	if t.Status != models.StatusActive {
		return fmt.Errorf("%w: tournament is %s", ErrInvalidTransition, t.Status)
	}
	return nil
}

// checkRecordResult allows results, including clearing one, only on the
// current round while it is still open.
func checkRecordResult(t *models.Tournament, round *models.Round, pairing *models.Pairing) error {
	if err := checkActive(t); err != nil {
		return err
	}
	if pairing.RoundID != round.ID || round.Number != t.CurrentRound {
		return ErrPairingNotInCurrentRound
	}
	if round.Finished {
		return ErrRoundAlreadyFinished
	}
	return nil
}

func checkFinishRound(t *models.Tournament, round *models.Round, pairings []models.Pairing) error {
	if err := checkActive(t); err != nil {
		return err
	}
	if round.Finished {
		return ErrRoundAlreadyFinished
	}
	missing := 0
	for _, p := range pairings {
		if !p.Result.Played() {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d of %d games", ErrRoundNotComplete, missing, len(pairings))
	}
	return nil
}

func checkAdvance(t *models.Tournament, round *models.Round) error {
	if err := checkActive(t); err != nil {
		return err
	}
	if !round.Finished {
		return ErrRoundNotFinished
	}
	if t.CurrentRound >= t.TotalRounds {
		return fmt.Errorf("%w: round %d of %d", ErrNoMoreRounds, t.CurrentRound, t.TotalRounds)
	}
	return nil
}

func checkFinishTournament(t *models.Tournament) error {
	return checkActive(t)
}
