package models

// PlayerStat is one row of the final table.
type PlayerStat struct {
	Rank             int     `json:"rank"`
	Player           Player  `json:"player"`
	Score            float64 `json:"score"`
	PersonalMeetings float64 `json:"personal_meetings"`
	Buchholz         float64 `json:"buchholz"`
	BuchholzCut1     float64 `json:"buchholz_cut1"`
	Progressive      float64 `json:"progressive"`
	SonnebornBerger  float64 `json:"sonneborn_berger"`
	Wins             int     `json:"wins"`
}

// ProgressRow holds a player's points round by round. A nil entry means the
// player has no recorded result in that round.
type ProgressRow struct {
	Position    int        `json:"position"`
	Player      Player     `json:"player"`
	Total       float64    `json:"total"`
	RoundPoints []*float64 `json:"round_points"`
}
