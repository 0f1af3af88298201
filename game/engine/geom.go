package engine

import "fmt"

// Point represents integer grid coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size represents integer width and height.
type Size struct {
	Width  int `json:"w"`
	Height int `json:"h"`
}

// Rectangle is an axis-aligned box anchored at Position.
type Rectangle struct {
	Position Point
	Size     Size
}

// Offset is an integer displacement, used for office door positions.
type Offset struct {
	DX int `json:"offsetX"`
	DY int `json:"offsetY"`
}

// Position represents continuous map coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Speed is a velocity vector in map units per millisecond.
type Speed struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero reports whether the dog is standing still.
func (s Speed) IsZero() bool {
	return s.X == 0 && s.Y == 0
}

// Direction is the compass facing of a dog.
type Direction uint8

const (
	North Direction = iota
	South
	West
	East
)

// Letter returns the single-letter wire form of the direction
// (U, D, L, R for north, south, west, east).
func (d Direction) Letter() string {
	switch d {
	case North:
		return "U"
	case South:
		return "D"
	case West:
		return "L"
	case East:
		return "R"
	}
	return ""
}

// DirectionFromLetter parses the single-letter wire form of a direction.
func DirectionFromLetter(s string) (Direction, error) {
	switch s {
	case "U":
		return North, nil
	case "D":
		return South, nil
	case "L":
		return West, nil
	case "R":
		return East, nil
	}
	return North, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}
