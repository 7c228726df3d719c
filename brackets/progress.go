package brackets

import (
	"bytes"
	"sort"

	"github.com/Dosada05/swiss-tournament/models"
)

// ComputeProgress builds the round-by-round results grid, ordered by total
// points and then rating.
func ComputeProgress(players []models.Player, pairings []models.Pairing, rounds []models.Round) []models.ProgressRow {
	chrono := make([]models.Round, len(rounds))
	copy(chrono, rounds)
	sort.SliceStable(chrono, func(i, j int) bool {
		return chrono[i].Number < chrono[j].Number
	})

	rows := make([]models.ProgressRow, 0, len(players))
	for _, p := range players {
		row := models.ProgressRow{
			Player:      p,
			RoundPoints: make([]*float64, len(chrono)),
		}
		for i, r := range chrono {
			for _, g := range pairings {
				if g.RoundID != r.ID || !g.Result.Played() {
					continue
				}
				if color, ok := g.ColorOf(p.ID); ok {
					pts := g.Result.PointsFor(color)
					row.RoundPoints[i] = &pts
					row.Total += pts
					break
				}
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		if rows[i].Player.Rating != rows[j].Player.Rating {
			return rows[i].Player.Rating > rows[j].Player.Rating
		}
		return bytes.Compare(rows[i].Player.ID[:], rows[j].Player.ID[:]) < 0
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
