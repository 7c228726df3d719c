package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/storage"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTournamentRepo keeps tournaments in memory. Methods the tests never
// reach panic through the embedded nil interface.
type fakeTournamentRepo struct {
	repositories.TournamentRepository

	mu          sync.Mutex
	tournaments map[uuid.UUID]*models.Tournament
}

func newFakeTournamentRepo(ts ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[uuid.UUID]*models.Tournament)}
	for _, t := range ts {
		r.tournaments[t.ID] = t
	}
	return r
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id uuid.UUID) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) UpdateArchiveKey(_ context.Context, id uuid.UUID, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.ArchiveKey = key
	return nil
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

var _ storage.FileUploader = (*fakeUploader)(nil)

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	u.objects[key] = body
	u.mu.Unlock()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	delete(u.objects, key)
	u.mu.Unlock()
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example/" + key
}

type fakeStandings struct {
	StandingsService
	snap *TournamentSnapshot
	err  error
}

func (f *fakeStandings) Snapshot(context.Context, uuid.UUID) (*TournamentSnapshot, error) {
	return f.snap, f.err
}
