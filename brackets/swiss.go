package brackets

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
)

// MinPlayers is the smallest roster a tournament can be started with.
const MinPlayers = 4

var (
	ErrInvalidRoster    = errors.New("invalid roster")
	ErrPairingExhausted = errors.New("no legal opponent left to pair")
)

// Policy holds the tunable parts of the Swiss heuristic.
type Policy struct {
	// RematchPenalty is added to the cost of a pair that has already met.
	RematchPenalty int
	// ScoreWeight multiplies the absolute score difference.
	ScoreWeight int
	// AllowRematches lets a player be paired with a previous opponent when
	// every remaining candidate has already been faced. When false such a
	// situation fails with ErrPairingExhausted.
	AllowRematches bool
}

func DefaultPolicy() Policy {
	return Policy{
		RematchPenalty: 1_000_000,
		ScoreWeight:    1000,
		AllowRematches: true,
	}
}

// SwissGenerator is a greedy single-pass Swiss pairer. It does not
// backtrack and does not search for a globally minimal matching, so it can
// produce a rematch even when a rematch-free round exists.
type SwissGenerator struct {
	policy Policy
}

var _ PairingEngine = (*SwissGenerator)(nil)

func NewSwissGenerator(policy Policy) *SwissGenerator {
	return &SwissGenerator{policy: policy}
}

func (g *SwissGenerator) GetName() string {
	return "Swiss"
}

// TotalRounds returns ceil(log2(playerCount)), the number of rounds planned
// when a tournament starts.
func TotalRounds(playerCount int) int {
	if playerCount < 2 {
		return 0
	}
	return bits.Len(uint(playerCount - 1))
}

// GenerateFirstRound seeds round 1 with the default policy.
func GenerateFirstRound(players []models.Player) ([]models.Pairing, error) {
	if err := validateRoster(players); err != nil {
		return nil, err
	}
	return firstRound(players), nil
}

// GenerateRound pairs roundNumber with the default policy.
func GenerateRound(players []models.Player, roundNumber int, history []models.Pairing) (models.Round, []models.Pairing, error) {
	return NewSwissGenerator(DefaultPolicy()).GenerateRound(GenerateRoundParams{
		Players:     players,
		RoundNumber: roundNumber,
		History:     history,
	})
}

func (g *SwissGenerator) GenerateRound(params GenerateRoundParams) (models.Round, []models.Pairing, error) {
	if params.RoundNumber < 1 {
		return models.Round{}, nil, fmt.Errorf("%w: round number must be positive, got %d", ErrInvalidRoster, params.RoundNumber)
	}
	if err := validateRoster(params.Players); err != nil {
		return models.Round{}, nil, err
	}

	round := models.Round{Number: params.RoundNumber}
	if params.RoundNumber == 1 {
		return round, firstRound(params.Players), nil
	}

	b := newRoundBuilder(g.policy, params.Players, params.History)
	pairings, err := b.pair()
	if err != nil {
		return models.Round{}, nil, fmt.Errorf("round %d: %w", params.RoundNumber, err)
	}
	return round, pairings, nil
}

func validateRoster(players []models.Player) error {
	n := len(players)
	if n < MinPlayers || n%2 != 0 {
		return fmt.Errorf("%w: %d players, need an even count of at least %d", ErrInvalidRoster, n, MinPlayers)
	}
	seen := make(map[uuid.UUID]struct{}, n)
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: player %s listed twice", ErrInvalidRoster, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// firstRound pairs the top half of the rating list against the bottom half,
// position by position. The stronger player always takes white.
func firstRound(players []models.Player) []models.Pairing {
	sorted := make([]models.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})

	half := len(sorted) / 2
	pairings := make([]models.Pairing, 0, half)
	for i := 0; i < half; i++ {
		pairings = append(pairings, models.Pairing{
			WhiteID:     sorted[i].ID,
			BlackID:     sorted[i+half].ID,
			Result:      models.ResultUnset,
			TableNumber: i + 1,
		})
	}
	return pairings
}

// pairKey is an unordered pair of players; lo always sorts before hi.
type pairKey struct {
	lo, hi uuid.UUID
}

func newPairKey(a, b uuid.UUID) pairKey {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

type playerRecord struct {
	score  float64
	whites int
	blacks int
}

// snapshot is derived once per call from the full pairing history and is
// not modified afterwards.
type snapshot struct {
	records map[uuid.UUID]playerRecord
	met     map[pairKey]struct{}
}

func buildSnapshot(players []models.Player, history []models.Pairing) snapshot {
	s := snapshot{
		records: make(map[uuid.UUID]playerRecord, len(players)),
		met:     make(map[pairKey]struct{}, len(history)),
	}
	for _, p := range players {
		s.records[p.ID] = playerRecord{}
	}
	for _, g := range history {
		w, okW := s.records[g.WhiteID]
		b, okB := s.records[g.BlackID]
		if !okW || !okB || g.WhiteID == g.BlackID {
			continue
		}
		w.whites++
		b.blacks++
		w.score += g.Result.PointsFor(models.White)
		b.score += g.Result.PointsFor(models.Black)
		s.records[g.WhiteID] = w
		s.records[g.BlackID] = b
		s.met[newPairKey(g.WhiteID, g.BlackID)] = struct{}{}
	}
	return s
}

type roundBuilder struct {
	policy  Policy
	players map[uuid.UUID]models.Player
	snap    snapshot

	// working state, local to one call
	balance  map[uuid.UUID]int
	met      map[pairKey]struct{}
	unpaired map[uuid.UUID]bool
	order    []uuid.UUID
	groups   map[float64][]uuid.UUID
	scores   []float64
	pairings []models.Pairing
}

func newRoundBuilder(policy Policy, players []models.Player, history []models.Pairing) *roundBuilder {
	snap := buildSnapshot(players, history)
	b := &roundBuilder{
		policy:   policy,
		players:  make(map[uuid.UUID]models.Player, len(players)),
		snap:     snap,
		balance:  make(map[uuid.UUID]int, len(players)),
		met:      make(map[pairKey]struct{}, len(snap.met)),
		unpaired: make(map[uuid.UUID]bool, len(players)),
		groups:   make(map[float64][]uuid.UUID),
		pairings: make([]models.Pairing, 0, len(players)/2),
	}
	for k := range snap.met {
		b.met[k] = struct{}{}
	}

	ordered := make([]models.Player, len(players))
	copy(ordered, players)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := snap.records[ordered[i].ID].score, snap.records[ordered[j].ID].score
		if si != sj {
			return si > sj
		}
		return ordered[i].Rating > ordered[j].Rating
	})

	for _, p := range ordered {
		rec := snap.records[p.ID]
		b.players[p.ID] = p
		b.balance[p.ID] = rec.whites - rec.blacks
		b.unpaired[p.ID] = true
		b.order = append(b.order, p.ID)
		if _, ok := b.groups[rec.score]; !ok {
			b.scores = append(b.scores, rec.score)
		}
		b.groups[rec.score] = append(b.groups[rec.score], p.ID)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(b.scores)))
	return b
}

func (b *roundBuilder) pair() ([]models.Pairing, error) {
	for _, id := range b.order {
		if !b.unpaired[id] {
			continue
		}
		opponent, err := b.pickOpponent(id)
		if err != nil {
			return nil, err
		}
		b.makePair(id, opponent)
	}
	return b.pairings, nil
}

// candidates lists unpaired players, own score group first, then the other
// groups by distance from the player's score (closer first, higher score on
// a tie).
func (b *roundBuilder) candidates(id uuid.UUID) []uuid.UUID {
	own := b.snap.records[id].score
	others := make([]float64, 0, len(b.scores))
	for _, s := range b.scores {
		if s != own {
			others = append(others, s)
		}
	}
	sort.SliceStable(others, func(i, j int) bool {
		di, dj := math.Abs(others[i]-own), math.Abs(others[j]-own)
		if di != dj {
			return di < dj
		}
		return others[i] > others[j]
	})

	var out []uuid.UUID
	for _, s := range append([]float64{own}, others...) {
		for _, cand := range b.groups[s] {
			if cand == id || !b.unpaired[cand] {
				continue
			}
			out = append(out, cand)
		}
	}
	return out
}

func (b *roundBuilder) pickOpponent(id uuid.UUID) (uuid.UUID, error) {
	cands := b.candidates(id)

	fresh := make([]uuid.UUID, 0, len(cands))
	for _, c := range cands {
		if !b.hasMet(id, c) {
			fresh = append(fresh, c)
		}
	}
	pool := fresh
	if len(pool) == 0 {
		if len(cands) > 0 && !b.policy.AllowRematches {
			return uuid.Nil, fmt.Errorf("%w: player %s has met every remaining player and rematches are disabled", ErrPairingExhausted, id)
		}
		pool = cands
	}

	if len(pool) == 0 {
		for _, other := range b.order {
			if other != id && b.unpaired[other] {
				return other, nil
			}
		}
		return uuid.Nil, fmt.Errorf("%w: player %s", ErrPairingExhausted, id)
	}

	best, bestCost := pool[0], b.cost(id, pool[0])
	for _, c := range pool[1:] {
		if cost := b.cost(id, c); cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best, nil
}

// cost ranks a candidate: rematches first, then score spread, then rating
// proximity, then color balance.
func (b *roundBuilder) cost(a, c uuid.UUID) int {
	total := 0
	if b.hasMet(a, c) {
		total += b.policy.RematchPenalty
	}
	scoreDiff := math.Abs(b.snap.records[a].score - b.snap.records[c].score)
	total += int(math.Round(scoreDiff * float64(b.policy.ScoreWeight)))
	total += absInt(b.players[a].Rating - b.players[c].Rating)
	total += absInt(b.balance[a] - b.balance[c])
	return total
}

func (b *roundBuilder) hasMet(x, y uuid.UUID) bool {
	_, ok := b.met[newPairKey(x, y)]
	return ok
}

// makePair gives white to the player with the lower color balance, or to
// the higher rated one when the balances are equal.
func (b *roundBuilder) makePair(a, c uuid.UUID) {
	white, black := a, c
	balA, balC := b.balance[a], b.balance[c]
	switch {
	case balA > balC:
		white, black = c, a
	case balA == balC && b.players[c].Rating > b.players[a].Rating:
		white, black = c, a
	}

	b.balance[white]++
	b.balance[black]--
	b.met[newPairKey(white, black)] = struct{}{}
	delete(b.unpaired, white)
	delete(b.unpaired, black)

	b.pairings = append(b.pairings, models.Pairing{
		WhiteID:     white,
		BlackID:     black,
		Result:      models.ResultUnset,
		TableNumber: len(b.pairings) + 1,
	})
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
