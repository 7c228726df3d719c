package brackets

import (
	"bytes"
	"sort"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
)

// ComputeStandings scores every player over the full pairing history and
// returns them in final-table order with Rank filled in. It never fails;
// players without games get zero metrics.
//
// Personal meetings count only decisive wins against players on the same
// total score. Draws between tied players contribute nothing.
func ComputeStandings(players []models.Player, pairings []models.Pairing, rounds []models.Round) []models.PlayerStat {
	if len(players) == 0 {
		return []models.PlayerStat{}
	}

	points := make(map[uuid.UUID]float64, len(players))
	for _, p := range players {
		points[p.ID] = playerPoints(p.ID, pairings, nil)
	}

	chrono := make([]models.Round, len(rounds))
	copy(chrono, rounds)
	sort.SliceStable(chrono, func(i, j int) bool {
		return chrono[i].Number < chrono[j].Number
	})

	stats := make([]models.PlayerStat, 0, len(players))
	for _, p := range players {
		stats = append(stats, models.PlayerStat{
			Player:          p,
			Score:           points[p.ID],
			Buchholz:        buchholz(p.ID, pairings, points),
			BuchholzCut1:    buchholzCut1(p.ID, pairings, points),
			Progressive:     progressive(p.ID, pairings, chrono),
			SonnebornBerger: sonnebornBerger(p.ID, pairings, points),
			Wins:            decisiveWins(p.ID, pairings),
		})
	}

	groups := make(map[float64][]uuid.UUID)
	for _, s := range stats {
		groups[s.Score] = append(groups[s.Score], s.Player.ID)
	}
	for i := range stats {
		group := groups[stats[i].Score]
		if len(group) > 1 {
			stats[i].PersonalMeetings = personalMeetings(stats[i].Player.ID, group, pairings)
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		return rankBefore(stats[i], stats[j])
	})
	for i := range stats {
		stats[i].Rank = i + 1
	}
	return stats
}

// rankBefore is the tie-break chain. All keys are descending except the
// final player ID, which only separates players identical on every metric.
func rankBefore(a, b models.PlayerStat) bool {
	switch {
	case a.Score != b.Score:
		return a.Score > b.Score
	case a.PersonalMeetings != b.PersonalMeetings:
		return a.PersonalMeetings > b.PersonalMeetings
	case a.Buchholz != b.Buchholz:
		return a.Buchholz > b.Buchholz
	case a.BuchholzCut1 != b.BuchholzCut1:
		return a.BuchholzCut1 > b.BuchholzCut1
	case a.Progressive != b.Progressive:
		return a.Progressive > b.Progressive
	case a.SonnebornBerger != b.SonnebornBerger:
		return a.SonnebornBerger > b.SonnebornBerger
	case a.Wins != b.Wins:
		return a.Wins > b.Wins
	case a.Player.Rating != b.Player.Rating:
		return a.Player.Rating > b.Player.Rating
	}
	return bytes.Compare(a.Player.ID[:], b.Player.ID[:]) < 0
}

// playerPoints sums the player's score, optionally restricted to one round.
func playerPoints(id uuid.UUID, pairings []models.Pairing, roundID *uuid.UUID) float64 {
	total := 0.0
	for _, g := range pairings {
		if roundID != nil && g.RoundID != *roundID {
			continue
		}
		if color, ok := g.ColorOf(id); ok {
			total += g.Result.PointsFor(color)
		}
	}
	return total
}

// opponents lists every opponent the player was paired with, played or not.
func opponents(id uuid.UUID, pairings []models.Pairing) []uuid.UUID {
	var out []uuid.UUID
	for _, g := range pairings {
		if opp, ok := g.Opponent(id); ok {
			out = append(out, opp)
		}
	}
	return out
}

func buchholz(id uuid.UUID, pairings []models.Pairing, points map[uuid.UUID]float64) float64 {
	total := 0.0
	for _, opp := range opponents(id, pairings) {
		total += points[opp]
	}
	return total
}

func buchholzCut1(id uuid.UUID, pairings []models.Pairing, points map[uuid.UUID]float64) float64 {
	opps := opponents(id, pairings)
	if len(opps) == 0 {
		return 0
	}
	scores := make([]float64, 0, len(opps))
	for _, opp := range opps {
		scores = append(scores, points[opp])
	}
	sort.Float64s(scores)
	total := 0.0
	for _, s := range scores[1:] {
		total += s
	}
	return total
}

// progressive sums the running total after each round.
func progressive(id uuid.UUID, pairings []models.Pairing, chrono []models.Round) float64 {
	running, total := 0.0, 0.0
	for _, r := range chrono {
		roundID := r.ID
		running += playerPoints(id, pairings, &roundID)
		total += running
	}
	return total
}

func sonnebornBerger(id uuid.UUID, pairings []models.Pairing, points map[uuid.UUID]float64) float64 {
	total := 0.0
	for _, g := range pairings {
		if !g.Result.Played() {
			continue
		}
		color, ok := g.ColorOf(id)
		if !ok {
			continue
		}
		opp, _ := g.Opponent(id)
		total += g.Result.PointsFor(color) * points[opp]
	}
	return total
}

func decisiveWins(id uuid.UUID, pairings []models.Pairing) int {
	wins := 0
	for _, g := range pairings {
		if color, ok := g.ColorOf(id); ok && g.Result.IsDecisiveWinFor(color) {
			wins++
		}
	}
	return wins
}

func personalMeetings(id uuid.UUID, group []uuid.UUID, pairings []models.Pairing) float64 {
	members := make(map[uuid.UUID]struct{}, len(group))
	for _, m := range group {
		if m != id {
			members[m] = struct{}{}
		}
	}
	total := 0.0
	for _, g := range pairings {
		color, ok := g.ColorOf(id)
		if !ok {
			continue
		}
		opp, _ := g.Opponent(id)
		if _, inGroup := members[opp]; inGroup && g.Result.IsDecisiveWinFor(color) {
			total++
		}
	}
	return total
}
