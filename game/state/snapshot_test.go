package state

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lootdogs/game/config"
	"lootdogs/game/engine"
)

const testWorld = `{
  "lootGeneratorConfig": {"period": 5.0, "probability": 0},
  "maps": [{
    "id": "map1",
    "name": "Town",
    "roads": [{"x0": 0, "y0": 0, "x1": 10}],
    "offices": [{"id": "o0", "x": 10, "y": 0, "offsetX": 0, "offsetY": 0}],
    "lootTypes": [{"value": 5}]
  }]
}`

func buildWorld(t *testing.T) *engine.World {
	t.Helper()
	world, err := config.ParseWorld([]byte(testWorld))
	if err != nil {
		t.Fatal(err)
	}
	return world
}

// playedWorld returns a world where a dog has picked up loot and stopped
// mid-road, with one item still on the ground.
func playedWorld(t *testing.T) *engine.World {
	t.Helper()
	world := buildWorld(t)
	m := world.FindMap("map1")
	dog, err := world.Join("A", m)
	if err != nil {
		t.Fatal(err)
	}
	session := world.SessionOf(dog)
	session.RestoreLoot(map[int64]engine.DroppedLoot{
		0: {Item: engine.LootItem{ID: 0, Type: 0, Value: 5}, Position: engine.Position{X: 2, Y: 0}},
		1: {Item: engine.LootItem{ID: 1, Type: 0, Value: 5}, Position: engine.Position{X: 9, Y: 0}},
	})
	dog.SetDirection(engine.East, m.Speed)
	world.Advance(5000)
	return world
}

func TestSnapshotRoundTrip(t *testing.T) {
	world := playedWorld(t)

	var buf bytes.Buffer
	if err := Encode(&buf, world); err != nil {
		t.Fatal(err)
	}

	restored := buildWorld(t)
	if err := Decode(bytes.NewReader(buf.Bytes()), restored); err != nil {
		t.Fatal(err)
	}

	want := world.Dogs()
	got := restored.Dogs()
	if len(got) != len(want) {
		t.Fatalf("expected %d dogs, got %d", len(want), len(got))
	}
	for id, w := range want {
		g, ok := got[id]
		if !ok {
			t.Fatalf("dog %d missing after restore", id)
		}
		if g.Name() != w.Name() || g.Token() != w.Token() || g.MapID() != w.MapID() {
			t.Errorf("dog %d identity changed: %s/%s/%s", id, g.Name(), g.Token(), g.MapID())
		}
		if g.Position() != w.Position() || g.Velocity() != w.Velocity() || g.Facing() != w.Facing() {
			t.Errorf("dog %d kinematics changed", id)
		}
		if g.Score() != w.Score() || g.IdleTime() != w.IdleTime() || g.TotalTime() != w.TotalTime() {
			t.Errorf("dog %d progress changed", id)
		}
		if len(g.Bag()) != len(w.Bag()) {
			t.Errorf("dog %d bag changed: %v vs %v", id, g.Bag(), w.Bag())
		}
	}

	wantSessions := world.Sessions()
	gotSessions := restored.Sessions()
	if len(gotSessions) != len(wantSessions) {
		t.Fatalf("expected %d sessions, got %d", len(wantSessions), len(gotSessions))
	}
	for i, ws := range wantSessions {
		gs := gotSessions[i]
		if gs.ID() != ws.ID() || gs.Map().ID != ws.Map().ID {
			t.Errorf("session identity changed: %d/%s", gs.ID(), gs.Map().ID)
		}
		wantLoot := ws.Loot()
		gotLoot := gs.Loot()
		if len(gotLoot) != len(wantLoot) {
			t.Fatalf("loot count changed: %d vs %d", len(gotLoot), len(wantLoot))
		}
		for id, wl := range wantLoot {
			if gl, ok := gotLoot[id]; !ok || gl != wl {
				t.Errorf("loot %d changed: %+v vs %+v", id, gl, wl)
			}
		}
	}
}

func TestSnapshotRestoredWorldKeepsPlaying(t *testing.T) {
	world := playedWorld(t)
	token := ""
	for _, dog := range world.Dogs() {
		token = dog.Token()
	}

	var buf bytes.Buffer
	if err := Encode(&buf, world); err != nil {
		t.Fatal(err)
	}
	restored := buildWorld(t)
	if err := Decode(bytes.NewReader(buf.Bytes()), restored); err != nil {
		t.Fatal(err)
	}

	dog, err := restored.DogByToken(token)
	if err != nil {
		t.Fatalf("restored world must honor old tokens: %v", err)
	}
	dog.SetDirection(engine.East, restored.FindMap("map1").Speed)
	restored.Advance(1000)

	// new joins must not collide with restored ids
	other, err := restored.Join("B", restored.FindMap("map1"))
	if err != nil {
		t.Fatal(err)
	}
	if other.ID() == dog.ID() {
		t.Error("restored and new dog share an id")
	}
}

func TestSaveAndRestoreFile(t *testing.T) {
	world := playedWorld(t)
	path := filepath.Join(t.TempDir(), "state.json")

	if err := Save(path, world); err != nil {
		t.Fatal(err)
	}

	restored := buildWorld(t)
	if err := Restore(path, restored); err != nil {
		t.Fatal(err)
	}
	if len(restored.Dogs()) != 1 {
		t.Errorf("expected 1 restored dog, got %d", len(restored.Dogs()))
	}
}

func TestRestoreMissingFileIsNoOp(t *testing.T) {
	world := buildWorld(t)
	if err := Restore(filepath.Join(t.TempDir(), "absent.json"), world); err != nil {
		t.Errorf("missing snapshot must not be an error, got %v", err)
	}
	if len(world.Dogs()) != 0 {
		t.Error("world must stay empty")
	}
}

func TestRestoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Restore(path, buildWorld(t))
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestDecodeRejectsUnknownMap(t *testing.T) {
	snap := strings.NewReader(`{
	  "players": {"1": {"name":"A","token":"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa","mapId":"nope",
	    "score":0,"idleTime":0,"totalTime":0,"pos":{"x":0,"y":0},"speed":{"x":0,"y":0},"dir":"U","bag":[]}},
	  "sessions": {}
	}`)
	err := Decode(snap, buildWorld(t))
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Errorf("expected ErrCorruptSnapshot for unknown map, got %v", err)
	}
}
