package brackets

import (
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
)

func playerID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func roundID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("10000000-0000-0000-0000-%012d", n))
}

func newPlayer(n int, name string, rating int) models.Player {
	return models.Player{ID: playerID(n), Name: name, Rating: rating}
}

// fourPlayers returns A..D rated 1900 down to 1600.
func fourPlayers() []models.Player {
	return []models.Player{
		newPlayer(1, "A", 1900),
		newPlayer(2, "B", 1800),
		newPlayer(3, "C", 1700),
		newPlayer(4, "D", 1600),
	}
}

func game(round int, white, black models.Player, result models.Result, table int) models.Pairing {
	return models.Pairing{
		RoundID:     roundID(round),
		WhiteID:     white.ID,
		BlackID:     black.ID,
		Result:      result,
		TableNumber: table,
	}
}

func rounds(n int) []models.Round {
	out := make([]models.Round, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Round{ID: roundID(i), Number: i, Finished: true})
	}
	return out
}

// threeRoundFixture is a complete round robin of fourPlayers:
//
//	R1: A-B 1-0, C-D 1-0
//	R2: A-C 0-1, B-D 1-0
//	R3: D-A draw, B-C draw
func threeRoundFixture() ([]models.Player, []models.Pairing, []models.Round) {
	ps := fourPlayers()
	a, b, c, d := ps[0], ps[1], ps[2], ps[3]
	games := []models.Pairing{
		game(1, a, b, models.ResultWhiteWin, 1),
		game(1, c, d, models.ResultWhiteWin, 2),
		game(2, a, c, models.ResultBlackWin, 1),
		game(2, b, d, models.ResultWhiteWin, 2),
		game(3, d, a, models.ResultDraw, 1),
		game(3, b, c, models.ResultDraw, 2),
	}
	return ps, games, rounds(3)
}
