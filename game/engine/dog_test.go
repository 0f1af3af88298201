package engine

import "testing"

func stationaryMove(pos Position) MoveResult {
	return MoveResult{Position: pos}
}

func TestDogSetDirection(t *testing.T) {
	tests := []struct {
		dir  Direction
		want Speed
	}{
		{North, Speed{X: 0, Y: -0.001}},
		{South, Speed{X: 0, Y: 0.001}},
		{West, Speed{X: -0.001, Y: 0}},
		{East, Speed{X: 0.001, Y: 0}},
	}
	for _, tt := range tests {
		dog := NewDog(1, "A", "t", "map1", Position{})
		dog.SetDirection(tt.dir, 0.001)
		if dog.Velocity() != tt.want {
			t.Errorf("%s: expected velocity %v, got %v", tt.dir.Letter(), tt.want, dog.Velocity())
		}
		if dog.Facing() != tt.dir {
			t.Errorf("%s: facing not updated", tt.dir.Letter())
		}
	}
}

func TestDogSetDirectionResetsIdle(t *testing.T) {
	dog := NewDog(1, "A", "t", "map1", Position{})
	dog.Advance(500, stationaryMove(dog.Position()), 60000)
	if dog.IdleTime() != 500 {
		t.Fatalf("expected 500 ms idle, got %v", dog.IdleTime())
	}
	dog.SetDirection(East, 0.001)
	if dog.IdleTime() != 0 {
		t.Errorf("movement command must reset the idle clock, got %v", dog.IdleTime())
	}
}

func TestDogStopKeepsFacingAndIdle(t *testing.T) {
	dog := NewDog(1, "A", "t", "map1", Position{})
	dog.SetDirection(East, 0.001)
	dog.Advance(500, MoveResult{Position: Position{X: 0.5}, Duration: 500}, 60000)

	dog.Stop()
	if !dog.Velocity().IsZero() {
		t.Error("stop must zero the velocity")
	}
	if dog.Facing() != East {
		t.Error("stop must keep the facing")
	}

	dog.Advance(500, stationaryMove(dog.Position()), 60000)
	dog.Advance(300, stationaryMove(dog.Position()), 60000)
	if dog.IdleTime() != 800 {
		t.Errorf("idle clock must keep running after a stop, got %v", dog.IdleTime())
	}
}

func TestDogAdvanceStopsAtBoundary(t *testing.T) {
	dog := NewDog(1, "A", "t", "map1", Position{X: 9})
	dog.SetDirection(East, 0.001)

	retired := dog.Advance(5000, MoveResult{Position: Position{X: 10.4}, Duration: 1400, ReachedBoundary: true}, 60000)
	if retired {
		t.Fatal("dog must not retire here")
	}
	if !dog.Velocity().IsZero() {
		t.Error("hitting the boundary must stop the dog")
	}
	if dog.Position() != (Position{X: 10.4}) {
		t.Errorf("expected position (10.4,0), got %v", dog.Position())
	}
	if dog.IdleTime() != 3600 {
		t.Errorf("time stuck at the wall counts as idle, got %v", dog.IdleTime())
	}
}

func TestDogRetiresAtIdleLimit(t *testing.T) {
	dog := NewDog(1, "A", "t", "map1", Position{})

	if dog.Advance(700, stationaryMove(dog.Position()), 1000) {
		t.Fatal("700 ms idle must not retire with a 1000 ms limit")
	}
	if dog.TotalTime() != 700 {
		t.Fatalf("expected 700 ms total, got %v", dog.TotalTime())
	}

	if !dog.Advance(700, stationaryMove(dog.Position()), 1000) {
		t.Fatal("1400 ms idle must retire")
	}
	// play time ends exactly when the idle limit was reached
	if dog.TotalTime() != 1000 {
		t.Errorf("expected 1000 ms total at retirement, got %v", dog.TotalTime())
	}
}

func TestDogCollectRespectsCapacity(t *testing.T) {
	dog := NewDog(1, "A", "t", "map1", Position{})
	if !dog.Collect(LootItem{ID: 0, Type: 0, Value: 5}, 1) {
		t.Fatal("first item must fit")
	}
	if dog.Collect(LootItem{ID: 1, Type: 0, Value: 5}, 1) {
		t.Error("second item must not fit into a bag of capacity 1")
	}
	if len(dog.Bag()) != 1 {
		t.Errorf("expected 1 item in the bag, got %d", len(dog.Bag()))
	}
}

func TestDogEmptyBagCreditsScore(t *testing.T) {
	dog := NewDog(1, "A", "t", "map1", Position{})
	dog.Collect(LootItem{ID: 0, Type: 0, Value: 5}, 3)
	dog.Collect(LootItem{ID: 1, Type: 1, Value: 7}, 3)

	if credited := dog.EmptyBag(); credited != 12 {
		t.Errorf("expected 12 credited, got %d", credited)
	}
	if dog.Score() != 12 {
		t.Errorf("expected score 12, got %d", dog.Score())
	}
	if len(dog.Bag()) != 0 {
		t.Error("bag must be empty after drop-off")
	}

	dog.EmptyBag()
	if dog.Score() != 12 {
		t.Error("emptying an empty bag must not change the score")
	}
}
