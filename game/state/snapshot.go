// Package state persists the full world state: every dog with its identity
// and progress, and the loot lying in every session. Writes are atomic
// (temp file + rename) so a crash never leaves a half-written snapshot.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"lootdogs/game/engine"
)

// ErrCorruptSnapshot is wrapped by every error describing an unreadable
// snapshot. It is fatal at startup: better to refuse than to silently lose
// player progress.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

type dogState struct {
	Name      string            `json:"name"`
	Token     string            `json:"token"`
	MapID     string            `json:"mapId"`
	Score     int               `json:"score"`
	IdleTime  float64           `json:"idleTime"`
	TotalTime float64           `json:"totalTime"`
	Pos       engine.Position   `json:"pos"`
	Speed     engine.Speed      `json:"speed"`
	Dir       string            `json:"dir"`
	Bag       []engine.LootItem `json:"bag"`
}

type sessionState struct {
	MapID string                       `json:"mapId"`
	Loot  map[int64]engine.DroppedLoot `json:"loot"`
}

type snapshot struct {
	Players  map[int]dogState     `json:"players"`
	Sessions map[int]sessionState `json:"sessions"`
}

// Encode writes the world state to w.
func Encode(w io.Writer, world *engine.World) error {
	snap := snapshot{
		Players:  make(map[int]dogState),
		Sessions: make(map[int]sessionState),
	}
	for id, dog := range world.Dogs() {
		snap.Players[id] = dogState{
			Name:      dog.Name(),
			Token:     dog.Token(),
			MapID:     dog.MapID(),
			Score:     dog.Score(),
			IdleTime:  dog.IdleTime(),
			TotalTime: dog.TotalTime(),
			Pos:       dog.Position(),
			Speed:     dog.Velocity(),
			Dir:       dog.Facing().Letter(),
			Bag:       dog.Bag(),
		}
	}
	for _, session := range world.Sessions() {
		snap.Sessions[session.ID()] = sessionState{
			MapID: session.Map().ID,
			Loot:  session.Loot(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Decode reads a snapshot from r and installs it into world, which must be
// freshly built from the same world configuration.
func Decode(r io.Reader, world *engine.World) error {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	sessionIDs := make([]int, 0, len(snap.Sessions))
	for id := range snap.Sessions {
		sessionIDs = append(sessionIDs, id)
	}
	sort.Ints(sessionIDs)
	for _, id := range sessionIDs {
		if err := world.RestoreSessionForMap(id, snap.Sessions[id].MapID); err != nil {
			return fmt.Errorf("%w: session %d: %v", ErrCorruptSnapshot, id, err)
		}
	}

	dogIDs := make([]int, 0, len(snap.Players))
	for id := range snap.Players {
		dogIDs = append(dogIDs, id)
	}
	sort.Ints(dogIDs)
	for _, id := range dogIDs {
		ds := snap.Players[id]
		dir, err := engine.DirectionFromLetter(ds.Dir)
		if err != nil {
			return fmt.Errorf("%w: player %d: %v", ErrCorruptSnapshot, id, err)
		}
		dog, err := world.RestoreDog(id, ds.Name, ds.Token, ds.MapID)
		if err != nil {
			return fmt.Errorf("%w: player %d: %v", ErrCorruptSnapshot, id, err)
		}
		dog.RestoreState(ds.Pos, ds.Speed, dir, ds.Bag, ds.Score, ds.IdleTime, ds.TotalTime)
	}

	loot := make(map[int]map[int64]engine.DroppedLoot, len(snap.Sessions))
	for id, ss := range snap.Sessions {
		loot[id] = ss.Loot
	}
	world.RestoreLootBySession(loot)
	return nil
}

// Save atomically writes the world state to path.
func Save(path string, world *engine.World) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, world); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Restore loads the snapshot at path into world. A missing file is not an
// error: the server simply starts with a fresh world.
func Restore(path string, world *engine.World) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()
	return Decode(f, world)
}
