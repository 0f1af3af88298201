package engine

import (
	"errors"
	"math/rand"
	"testing"
)

func TestGameMapRejectsDuplicateOffice(t *testing.T) {
	m := testMap()
	if err := m.AddOffice(Office{ID: "o1", Position: Point{X: 0, Y: 0}}); err != nil {
		t.Fatal(err)
	}
	err := m.AddOffice(Office{ID: "o1", Position: Point{X: 5, Y: 0}})
	if !errors.Is(err, ErrDuplicateOffice) {
		t.Errorf("expected ErrDuplicateOffice, got %v", err)
	}
}

func TestGameMapDefaults(t *testing.T) {
	m := NewGameMap("m", "m")
	if m.Speed != 0.001 {
		t.Errorf("default speed must be 0.001 units/ms, got %v", m.Speed)
	}
	if m.BagCapacity != 3 {
		t.Errorf("default bag capacity must be 3, got %d", m.BagCapacity)
	}
}

func TestGameMapSpawnPoints(t *testing.T) {
	m := testMap()
	if m.DefaultSpawnPoint() != (Position{X: 0, Y: 0}) {
		t.Errorf("default spawn must be the first road start, got %v", m.DefaultSpawnPoint())
	}

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		p := m.RandomPoint(rnd)
		if p.Y != 0 || p.X < 0 || p.X >= 10 {
			t.Fatalf("random point off the road: %v", p)
		}
	}
}
