package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/google/uuid"
)

// snapshot is the file format read by every subcommand.
type snapshot struct {
	Players  []models.Player  `json:"players"`
	Rounds   []models.Round   `json:"rounds"`
	Pairings []models.Pairing `json:"pairings"`
}

func loadSnapshot(path string) (*snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return parseSnapshot(raw)
}

func parseSnapshot(raw []byte) (*snapshot, error) {
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for i, p := range snap.Players {
		if p.ID == uuid.Nil {
			return nil, fmt.Errorf("player %d (%q) has no id", i, p.Name)
		}
	}
	for i, g := range snap.Pairings {
		if !g.Result.Valid() {
			return nil, fmt.Errorf("pairing %d: invalid result %q", i, string(g.Result))
		}
	}
	return &snap, nil
}

func (s *snapshot) nextRoundNumber() int {
	last := 0
	for _, r := range s.Rounds {
		if r.Number > last {
			last = r.Number
		}
	}
	return last + 1
}

func (s *snapshot) playerIndex() map[uuid.UUID]models.Player {
	idx := make(map[uuid.UUID]models.Player, len(s.Players))
	for _, p := range s.Players {
		idx[p.ID] = p
	}
	return idx
}
