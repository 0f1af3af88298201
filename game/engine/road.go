package engine

import "math"

const (
	// roadHalfWidth is half the drivable width of a road.
	roadHalfWidth = 0.4

	// epsilon bounds all floating-point comparisons in the engine.
	epsilon = 1e-6
)

// Road is a horizontal or vertical segment of the road graph.
type Road struct {
	Start Point
	End   Point
}

// NewHorizontalRoad builds a road running along the X axis at start.Y.
func NewHorizontalRoad(start Point, endX int) Road {
	return Road{Start: start, End: Point{X: endX, Y: start.Y}}
}

// NewVerticalRoad builds a road running along the Y axis at start.X.
func NewVerticalRoad(start Point, endY int) Road {
	return Road{Start: start, End: Point{X: start.X, Y: endY}}
}

// IsHorizontal reports whether the road runs along the X axis.
// A single-point road counts as both horizontal and vertical.
func (r Road) IsHorizontal() bool {
	return r.Start.Y == r.End.Y
}

// IsVertical reports whether the road runs along the Y axis.
func (r Road) IsVertical() bool {
	return r.Start.X == r.End.X
}

// Length returns the road length in map units.
func (r Road) Length() float64 {
	return math.Abs(float64(r.End.X-r.Start.X)) + math.Abs(float64(r.End.Y-r.Start.Y))
}

// Bounds returns the drivable zone of the road: the segment box expanded by
// roadHalfWidth on every side.
func (r Road) Bounds() (minX, maxX, minY, maxY float64) {
	minX = float64(min(r.Start.X, r.End.X)) - roadHalfWidth
	maxX = float64(max(r.Start.X, r.End.X)) + roadHalfWidth
	minY = float64(min(r.Start.Y, r.End.Y)) - roadHalfWidth
	maxY = float64(max(r.Start.Y, r.End.Y)) + roadHalfWidth
	return
}

// Contains reports whether pos lies inside the drivable zone.
func (r Road) Contains(pos Position) bool {
	minX, maxX, minY, maxY := r.Bounds()
	return pos.X >= minX && pos.X <= maxX && pos.Y >= minY && pos.Y <= maxY
}

// PointAt returns the position at parameter t in [0,1] along the segment.
func (r Road) PointAt(t float64) Position {
	return Position{
		X: float64(r.Start.X) + t*float64(r.End.X-r.Start.X),
		Y: float64(r.Start.Y) + t*float64(r.End.Y-r.Start.Y),
	}
}

// RoadsAtPoint holds the roads a position belongs to, one per axis.
// Either field may be nil.
type RoadsAtPoint struct {
	Horizontal *Road
	Vertical   *Road
}

// midCell reports whether the fractional part of v is strictly inside the
// (0.4, 0.6) band, i.e. the dog is crossing between cells on that axis.
// When it is, only the road aligned with the crossing axis is relevant.
func midCell(v float64) bool {
	_, frac := math.Modf(v)
	return frac > roadHalfWidth+epsilon && frac < 1-roadHalfWidth-epsilon
}

// MoveResult describes a movement clamped to a single road.
type MoveResult struct {
	Position        Position
	Duration        float64
	ReachedBoundary bool
}

// clampToRoad moves from start with velocity v for delta milliseconds, keeping
// the endpoint inside the drivable zone of road. Duration is how long the dog
// actually travelled before hitting the zone boundary.
func clampToRoad(road Road, start Position, v Speed, delta float64) MoveResult {
	naive := Position{X: start.X + v.X*delta, Y: start.Y + v.Y*delta}
	minX, maxX, minY, maxY := road.Bounds()

	clamped := Position{
		X: math.Min(math.Max(naive.X, minX), maxX),
		Y: math.Min(math.Max(naive.Y, minY), maxY),
	}

	reached := math.Abs(clamped.X-naive.X) > epsilon || math.Abs(clamped.Y-naive.Y) > epsilon

	var duration float64
	switch {
	case reached:
		speed := math.Hypot(v.X, v.Y)
		if speed > 0 {
			duration = math.Hypot(clamped.X-start.X, clamped.Y-start.Y) / speed
		}
	case v.IsZero():
		duration = 0
	default:
		duration = delta
	}

	return MoveResult{Position: clamped, Duration: duration, ReachedBoundary: reached}
}
