package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/google/uuid"
)

// memState is the whole database of the in-memory store.
type memState struct {
	tournaments map[uuid.UUID]models.Tournament
	players     []models.Player
	rounds      []models.Round
	pairings    []models.Pairing
	events      []brackets.TournamentEvent
}

func (st memState) clone() memState {
	out := memState{
		tournaments: make(map[uuid.UUID]models.Tournament, len(st.tournaments)),
		players:     append([]models.Player(nil), st.players...),
		rounds:      append([]models.Round(nil), st.rounds...),
		pairings:    append([]models.Pairing(nil), st.pairings...),
		events:      append([]brackets.TournamentEvent(nil), st.events...),
	}
	for id, t := range st.tournaments {
		out.tournaments[id] = t
	}
	return out
}

// memStore backs every repository fake. Transactions are serialized and a
// failed one restores the state it started from.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   memState

	opts []*sql.TxOptions
}

func newMemStore() *memStore {
	return &memStore{st: memState{tournaments: make(map[uuid.UUID]models.Tournament)}}
}

func (m *memStore) InTx(ctx context.Context, opts *sql.TxOptions, fn func(exec repositories.SQLExecutor) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.opts = append(m.opts, opts)
	saved := m.st.clone()
	m.mu.Unlock()

	err := fn(nil)
	if err == nil {
		// коммит с отменённым контекстом не проходит
		err = ctx.Err()
	}
	if err != nil {
		m.mu.Lock()
		m.st = saved
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memStore) state() memState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.clone()
}

func (m *memStore) txOptions() []*sql.TxOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*sql.TxOptions(nil), m.opts...)
}

func (m *memStore) addTournament(t models.Tournament) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.tournaments[t.ID] = t
}

func (m *memStore) addPlayers(tournamentID uuid.UUID, ratings ...int) []models.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Player, 0, len(ratings))
	for _, r := range ratings {
		p := models.Player{ID: uuid.New(), TournamentID: tournamentID, Name: "P", Rating: r}
		m.st.players = append(m.st.players, p)
		out = append(out, p)
	}
	return out
}

type memTournamentRepo struct {
	repositories.TournamentRepository
	m *memStore
}

func (r memTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.st.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r memTournamentRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memTournamentRepo) UpdateState(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.st.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	stored.Status = t.Status
	stored.CurrentRound = t.CurrentRound
	stored.TotalRounds = t.TotalRounds
	r.m.st.tournaments[t.ID] = stored
	return nil
}

func (r memTournamentRepo) UpdateArchiveKey(_ context.Context, id uuid.UUID, key *string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.st.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	stored.ArchiveKey = key
	r.m.st.tournaments[id] = stored
	return nil
}

type memPlayerRepo struct {
	repositories.PlayerRepository
	m *memStore
}

func (r memPlayerRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID) ([]models.Player, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Player, 0)
	for _, p := range r.m.st.players {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memRoundRepo struct {
	m *memStore
}

func (r memRoundRepo) Create(_ context.Context, _ repositories.SQLExecutor, round *models.Round) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.st.rounds {
		if existing.TournamentID == round.TournamentID && existing.Number == round.Number {
			return repositories.ErrRoundConflict
		}
	}
	stored := *round
	stored.Pairings = nil
	r.m.st.rounds = append(r.m.st.rounds, stored)
	return nil
}

func (r memRoundRepo) GetByNumber(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID, number int) (*models.Round, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, round := range r.m.st.rounds {
		if round.TournamentID == tournamentID && round.Number == number {
			return &round, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

func (r memRoundRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID) ([]models.Round, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Round, 0)
	for _, round := range r.m.st.rounds {
		if round.TournamentID == tournamentID {
			out = append(out, round)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r memRoundRepo) MarkFinished(_ context.Context, _ repositories.SQLExecutor, roundID uuid.UUID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.st.rounds {
		if r.m.st.rounds[i].ID == roundID {
			r.m.st.rounds[i].Finished = true
			return nil
		}
	}
	return repositories.ErrRoundNotFound
}

type memPairingRepo struct {
	m *memStore
}

func (r memPairingRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, pairings []models.Pairing) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.st.pairings = append(r.m.st.pairings, pairings...)
	return nil
}

func (r memPairingRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, tournamentID, pairingID uuid.UUID) (*models.Pairing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.st.pairings {
		if p.ID == pairingID && p.TournamentID == tournamentID {
			return &p, nil
		}
	}
	return nil, repositories.ErrPairingNotFound
}

// ListByTournament orders by round number, then table, like the SQL query.
func (r memPairingRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID uuid.UUID) ([]models.Pairing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	number := make(map[uuid.UUID]int, len(r.m.st.rounds))
	for _, round := range r.m.st.rounds {
		number[round.ID] = round.Number
	}
	out := make([]models.Pairing, 0)
	for _, p := range r.m.st.pairings {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if number[out[i].RoundID] != number[out[j].RoundID] {
			return number[out[i].RoundID] < number[out[j].RoundID]
		}
		return out[i].TableNumber < out[j].TableNumber
	})
	return out, nil
}

func (r memPairingRepo) ListByRound(_ context.Context, _ repositories.SQLExecutor, roundID uuid.UUID) ([]models.Pairing, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]models.Pairing, 0)
	for _, p := range r.m.st.pairings {
		if p.RoundID == roundID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out, nil
}

func (r memPairingRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, pairingID uuid.UUID, result models.Result) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.st.pairings {
		if r.m.st.pairings[i].ID == pairingID {
			r.m.st.pairings[i].Result = result
			return nil
		}
	}
	return repositories.ErrPairingNotFound
}

// memEvents records published events in the store, so a rolled back
// transaction drops its events like NOTIFY does.
type memEvents struct {
	m *memStore
}

func (e memEvents) Publish(_ context.Context, _ repositories.SQLExecutor, event brackets.TournamentEvent) error {
	e.m.mu.Lock()
	defer e.m.mu.Unlock()
	e.m.st.events = append(e.m.st.events, event)
	return nil
}

// recordingEngine wraps a real engine, counts calls and keeps the history of
// the last one. With gate set, each call waits on it after signalling entered.
type recordingEngine struct {
	inner   brackets.PairingEngine
	err     error
	calls   atomic.Int32
	entered chan struct{}
	gate    chan struct{}

	mu          sync.Mutex
	lastHistory []models.Pairing
}

func (e *recordingEngine) GenerateRound(params brackets.GenerateRoundParams) (models.Round, []models.Pairing, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.lastHistory = append([]models.Pairing(nil), params.History...)
	e.mu.Unlock()
	if e.gate != nil {
		e.entered <- struct{}{}
		<-e.gate
	}
	if e.err != nil {
		return models.Round{}, nil, e.err
	}
	return e.inner.GenerateRound(params)
}

func (e *recordingEngine) GetName() string { return "recording" }

func (e *recordingEngine) history() []models.Pairing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastHistory
}
