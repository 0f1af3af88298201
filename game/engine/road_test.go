package engine

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClampToRoadInsideZone(t *testing.T) {
	road := NewHorizontalRoad(Point{X: 0, Y: 0}, 10)

	move := clampToRoad(road, Position{X: 2, Y: 0}, Speed{X: 0.001}, 2000)
	if move.ReachedBoundary {
		t.Error("movement inside the zone must not hit the boundary")
	}
	if !almostEqual(move.Position.X, 4) || !almostEqual(move.Position.Y, 0) {
		t.Errorf("expected position (4,0), got (%v,%v)", move.Position.X, move.Position.Y)
	}
	if !almostEqual(move.Duration, 2000) {
		t.Errorf("expected full duration 2000, got %v", move.Duration)
	}
}

func TestClampToRoadAtBoundary(t *testing.T) {
	road := NewHorizontalRoad(Point{X: 0, Y: 0}, 10)

	move := clampToRoad(road, Position{X: 9, Y: 0}, Speed{X: 0.001}, 5000)
	if !move.ReachedBoundary {
		t.Fatal("expected the road end to be hit")
	}
	if !almostEqual(move.Position.X, 10.4) {
		t.Errorf("expected clamp to the inflated boundary 10.4, got %v", move.Position.X)
	}
	if !almostEqual(move.Duration, 1400) {
		t.Errorf("expected 1400 ms of travel, got %v", move.Duration)
	}
}

func TestClampToRoadAcrossWidth(t *testing.T) {
	road := NewHorizontalRoad(Point{X: 0, Y: 0}, 10)

	move := clampToRoad(road, Position{X: 5, Y: 0}, Speed{Y: -0.001}, 1000)
	if !move.ReachedBoundary {
		t.Fatal("expected the zone edge to be hit")
	}
	if !almostEqual(move.Position.Y, -0.4) {
		t.Errorf("expected clamp to y=-0.4, got %v", move.Position.Y)
	}
	if !almostEqual(move.Duration, 400) {
		t.Errorf("expected 400 ms of travel, got %v", move.Duration)
	}
}

func TestClampToRoadStationary(t *testing.T) {
	road := NewHorizontalRoad(Point{X: 0, Y: 0}, 10)

	move := clampToRoad(road, Position{X: 5, Y: 0}, Speed{}, 1000)
	if move.ReachedBoundary {
		t.Error("standing still must not hit the boundary")
	}
	if move.Position != (Position{X: 5, Y: 0}) {
		t.Errorf("standing still must keep the position, got %v", move.Position)
	}
	if move.Duration != 0 {
		t.Errorf("standing still must have zero movement duration, got %v", move.Duration)
	}
}

func TestRoadsAtFindsRoadsByCell(t *testing.T) {
	m := NewGameMap("m", "m")
	m.AddRoad(NewHorizontalRoad(Point{X: 0, Y: 0}, 10))
	m.AddRoad(NewVerticalRoad(Point{X: 5, Y: 0}, 5))

	roads := m.RoadsAt(Position{X: 5, Y: 0.2})
	if roads.Horizontal == nil {
		t.Error("expected the horizontal road")
	}
	if roads.Vertical == nil {
		t.Error("expected the vertical road")
	}

	roads = m.RoadsAt(Position{X: 2, Y: 0})
	if roads.Horizontal == nil {
		t.Error("expected the horizontal road at (2,0)")
	}
	if roads.Vertical != nil {
		t.Error("no vertical road passes through x=2")
	}
}

func TestRoadsAtSuppressesPerpendicularMidCell(t *testing.T) {
	m := NewGameMap("m", "m")
	m.AddRoad(NewHorizontalRoad(Point{X: 0, Y: 0}, 10))
	m.AddRoad(NewVerticalRoad(Point{X: 5, Y: 0}, 5))

	// crossing between cells on x: the vertical road is not under the dog
	roads := m.RoadsAt(Position{X: 4.5, Y: 0})
	if roads.Vertical != nil {
		t.Error("vertical road must be suppressed while crossing cells on x")
	}
	if roads.Horizontal == nil {
		t.Error("horizontal road must still be found")
	}

	// crossing between cells on y: the horizontal road is not under the dog
	roads = m.RoadsAt(Position{X: 5, Y: 2.5})
	if roads.Horizontal != nil {
		t.Error("horizontal road lookup must be suppressed while crossing cells on y")
	}
	if roads.Vertical == nil {
		t.Error("vertical road must still be found")
	}
}

func TestRoadBounds(t *testing.T) {
	road := NewVerticalRoad(Point{X: 3, Y: 8}, 2)
	minX, maxX, minY, maxY := road.Bounds()
	if !almostEqual(minX, 2.6) || !almostEqual(maxX, 3.4) {
		t.Errorf("unexpected x bounds: %v..%v", minX, maxX)
	}
	if !almostEqual(minY, 1.6) || !almostEqual(maxY, 8.4) {
		t.Errorf("unexpected y bounds: %v..%v", minY, maxY)
	}
}
