package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Color int

const (
	White Color = iota
	Black
)

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Result is the outcome of a single game. The zero value means the game
// has not been played yet.
type Result string

const (
	ResultUnset     Result = ""
	ResultWhiteWin  Result = "1-0"
	ResultBlackWin  Result = "0-1"
	ResultDraw      Result = "0.5-0.5"
	ResultNoContest Result = "0-0"
)

// ParseResult accepts the four outcome codes and the empty string for unset.
func ParseResult(s string) (Result, error) {
	r := Result(s)
	if !r.Valid() {
		return ResultUnset, fmt.Errorf("unknown result code %q", s)
	}
	return r, nil
}

func (r Result) Valid() bool {
	switch r {
	case ResultUnset, ResultWhiteWin, ResultBlackWin, ResultDraw, ResultNoContest:
		return true
	}
	return false
}

// Played reports whether a result has been recorded.
func (r Result) Played() bool {
	return r != ResultUnset
}

// PointsFor returns the score earned by the side playing color c.
// Win = 1, draw = 0.5, loss / no-contest / unset = 0.
func (r Result) PointsFor(c Color) float64 {
	switch r {
	case ResultWhiteWin:
		if c == White {
			return 1
		}
		return 0
	case ResultBlackWin:
		if c == Black {
			return 1
		}
		return 0
	case ResultDraw:
		return 0.5
	case ResultNoContest, ResultUnset:
		return 0
	}
	return 0
}

// IsDecisiveWinFor reports a non-draw win for color c.
func (r Result) IsDecisiveWinFor(c Color) bool {
	return (r == ResultWhiteWin && c == White) || (r == ResultBlackWin && c == Black)
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r == ResultUnset {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Result) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ResultUnset
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("result must be a string or null: %w", err)
	}
	parsed, err := ParseResult(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores unset as NULL.
func (r Result) Value() (driver.Value, error) {
	if r == ResultUnset {
		return nil, nil
	}
	return string(r), nil
}

func (r *Result) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = ResultUnset
		return nil
	case string:
		parsed, err := ParseResult(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		parsed, err := ParseResult(string(v))
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Result", src)
	}
}

// Pairing is one board of a round. WhiteID and BlackID are always distinct.
type Pairing struct {
	ID           uuid.UUID `json:"id" db:"id"`
	RoundID      uuid.UUID `json:"round_id" db:"round_id"`
	TournamentID uuid.UUID `json:"tournament_id" db:"tournament_id"`
	WhiteID      uuid.UUID `json:"white_player_id" db:"white_player_id"`
	BlackID      uuid.UUID `json:"black_player_id" db:"black_player_id"`
	Result       Result    `json:"result" db:"result"`
	TableNumber  int       `json:"table_number" db:"table_number"`
}

// ColorOf returns the color playerID holds in this pairing, or false when
// the player is not part of it.
func (p Pairing) ColorOf(playerID uuid.UUID) (Color, bool) {
	switch playerID {
	case p.WhiteID:
		return White, true
	case p.BlackID:
		return Black, true
	}
	return White, false
}

// Opponent returns the other player of the pairing.
func (p Pairing) Opponent(playerID uuid.UUID) (uuid.UUID, bool) {
	switch playerID {
	case p.WhiteID:
		return p.BlackID, true
	case p.BlackID:
		return p.WhiteID, true
	}
	return uuid.Nil, false
}
