package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/swiss-tournament/brackets"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoundService(m *memStore, engine brackets.PairingEngine, uploader storage.FileUploader) RoundService {
	tournaments := memTournamentRepo{m: m}
	players := memPlayerRepo{m: m}
	rounds := memRoundRepo{m: m}
	pairings := memPairingRepo{m: m}
	standings := NewStandingsService(m, tournaments, players, rounds, pairings)
	archive := NewArchiveService(standings, tournaments, uploader, discardLogger())
	return NewRoundService(m, tournaments, players, rounds, pairings, engine, standings, archive, memEvents{m: m}, discardLogger())
}

func newSwissRecorder() *recordingEngine {
	return &recordingEngine{inner: brackets.NewSwissGenerator(brackets.DefaultPolicy())}
}

func seedTournament(m *memStore, ratings ...int) uuid.UUID {
	id := uuid.New()
	m.addTournament(models.Tournament{ID: id, Name: "Open", Status: models.StatusCreated})
	m.addPlayers(id, ratings...)
	return id
}

func pairingIDs(ps []models.Pairing) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func eventTypes(events []brackets.TournamentEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestRoundService_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tid := seedTournament(store, 2400, 2300, 2200, 2100, 2000, 1900, 1800, 1700)
	engine := newSwissRecorder()
	uploader := newFakeUploader()
	svc := newTestRoundService(store, engine, uploader)

	round, err := svc.StartTournament(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, 1, round.Number)
	require.Len(t, round.Pairings, 4)
	assert.Empty(t, engine.history(), "first round has no history")

	st := store.state()
	tour := st.tournaments[tid]
	assert.Equal(t, models.StatusActive, tour.Status)
	assert.Equal(t, 1, tour.CurrentRound)
	assert.Equal(t, brackets.TotalRounds(8), tour.TotalRounds)
	require.Equal(t, 3, tour.TotalRounds)

	_, err = svc.FinishRound(ctx, tid)
	require.ErrorIs(t, err, ErrRoundNotComplete)

	var previous []models.Pairing
	for n := 1; n <= tour.TotalRounds; n++ {
		if n > 1 {
			played := pairingIDs(store.state().pairings)

			round, err = svc.NextRound(ctx, tid)
			require.NoError(t, err)
			assert.Equal(t, n, round.Number)
			require.Len(t, round.Pairings, 4)
			assert.ElementsMatch(t, played, pairingIDs(engine.history()), "round %d is paired against the full history", n)
			assert.Equal(t, n, store.state().tournaments[tid].CurrentRound)

			_, err = svc.RecordResult(ctx, tid, previous[0].ID, models.ResultDraw)
			require.ErrorIs(t, err, ErrPairingNotInCurrentRound)
		}

		for _, p := range round.Pairings {
			got, err := svc.RecordResult(ctx, tid, p.ID, models.ResultWhiteWin)
			require.NoError(t, err)
			assert.Equal(t, models.ResultWhiteWin, got.Result)
		}

		finished, err := svc.FinishRound(ctx, tid)
		require.NoError(t, err)
		assert.True(t, finished.Finished)
		assert.Equal(t, n, finished.Number)
		previous = round.Pairings
	}

	_, err = svc.NextRound(ctx, tid)
	require.ErrorIs(t, err, ErrNoMoreRounds)

	final, err := svc.FinishTournament(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, final.Status)
	require.NotNil(t, final.ArchiveKey)
	assert.Contains(t, uploader.objects, *final.ArchiveKey)

	st = store.state()
	assert.Equal(t, models.StatusFinished, st.tournaments[tid].Status)
	assert.Equal(t, 3, st.tournaments[tid].CurrentRound)
	assert.Len(t, st.rounds, 3)
	assert.Len(t, st.pairings, 12)
	assert.Equal(t, 3, int(engine.calls.Load()))
	assert.Contains(t, store.txOptions(), readSnapshotTx, "archive reads standings in a snapshot transaction")

	types := eventTypes(st.events)
	require.Len(t, types, 20)
	assert.Equal(t, brackets.EventRoundGenerated, types[0])
	assert.Equal(t, []string{brackets.EventTournamentEnded, brackets.EventTournamentUpdated}, types[len(types)-2:])

	_, err = svc.FinishTournament(ctx, tid)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRoundService_StartEngineFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tid := seedTournament(store, 2000, 1900, 1800, 1700)
	engine := newSwissRecorder()
	engine.err = brackets.ErrPairingExhausted
	svc := newTestRoundService(store, engine, nil)

	round, err := svc.StartTournament(ctx, tid)
	require.ErrorIs(t, err, brackets.ErrPairingExhausted)
	assert.Nil(t, round)
	assert.Equal(t, 1, int(engine.calls.Load()))

	st := store.state()
	assert.Empty(t, st.rounds)
	assert.Empty(t, st.pairings)
	assert.Empty(t, st.events)
	assert.Equal(t, models.StatusCreated, st.tournaments[tid].Status)
	assert.Zero(t, st.tournaments[tid].CurrentRound)
	assert.Zero(t, st.tournaments[tid].TotalRounds)
}

func TestRoundService_NextRoundEngineFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	tid := seedTournament(store, 2000, 1900, 1800, 1700)
	engine := newSwissRecorder()
	svc := newTestRoundService(store, engine, nil)

	round, err := svc.StartTournament(ctx, tid)
	require.NoError(t, err)
	for _, p := range round.Pairings {
		_, err := svc.RecordResult(ctx, tid, p.ID, models.ResultBlackWin)
		require.NoError(t, err)
	}
	_, err = svc.FinishRound(ctx, tid)
	require.NoError(t, err)
	before := store.state()

	engine.err = brackets.ErrPairingExhausted
	next, err := svc.NextRound(ctx, tid)
	require.ErrorIs(t, err, brackets.ErrPairingExhausted)
	assert.Nil(t, next)

	after := store.state()
	assert.Equal(t, before.rounds, after.rounds)
	assert.Equal(t, before.pairings, after.pairings)
	assert.Equal(t, before.events, after.events)
	assert.Equal(t, before.tournaments[tid], after.tournaments[tid])
	assert.Equal(t, 1, after.tournaments[tid].CurrentRound)
}

func TestRoundService_StartCollapsesConcurrentCalls(t *testing.T) {
	store := newMemStore()
	tid := seedTournament(store, 2000, 1900, 1800, 1700)
	engine := newSwissRecorder()
	engine.entered = make(chan struct{}, 2)
	engine.gate = make(chan struct{})
	svc := newTestRoundService(store, engine, nil)

	type outcome struct {
		round *models.Round
		err   error
	}
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	first := make(chan outcome, 1)
	go func() {
		r, err := svc.StartTournament(firstCtx, tid)
		first <- outcome{r, err}
	}()
	select {
	case <-engine.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("engine was not called")
	}

	second := make(chan outcome, 1)
	go func() {
		r, err := svc.StartTournament(context.Background(), tid)
		second <- outcome{r, err}
	}()
	// второй вызов должен успеть присоединиться к первому
	time.Sleep(100 * time.Millisecond)

	cancelFirst()
	select {
	case res := <-first:
		require.ErrorIs(t, res.err, context.Canceled)
		assert.Nil(t, res.round)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(engine.gate)
	var res outcome
	select {
	case res = <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("shared start did not finish")
	}
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.round.Number)

	assert.Equal(t, 1, int(engine.calls.Load()), "duplicate start ran the engine twice")
	st := store.state()
	assert.Len(t, st.rounds, 1)
	assert.Len(t, st.pairings, 2)
	assert.Equal(t, models.StatusActive, st.tournaments[tid].Status)
}

func TestRoundService_StartRejectsOddRoster(t *testing.T) {
	store := newMemStore()
	tid := seedTournament(store, 2000, 1900, 1800, 1700, 1600)
	engine := newSwissRecorder()
	svc := newTestRoundService(store, engine, nil)

	_, err := svc.StartTournament(context.Background(), tid)
	require.ErrorIs(t, err, brackets.ErrInvalidRoster)
	assert.Zero(t, engine.calls.Load())
	assert.Empty(t, store.state().rounds)
}
