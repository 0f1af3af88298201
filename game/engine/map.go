package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
)

// Building is an impassable decoration; it does not affect movement.
type Building struct {
	Bounds Rectangle
}

// Office is a loot drop-off point on a map.
type Office struct {
	ID       string
	Position Point
	Offset   Offset
}

/// GameMap describes one map of the world: its road graph, buildings, offices
// and the per-map gameplay settings.
type GameMap struct {
	ID           string
	Name         string
	Roads        []Road
	Buildings    []Building
	Offices      []Office
	Speed        float64 // units per millisecond
	BagCapacity  int
	LootValues   []int           // value of each loot type, indexed by type
	RawLootTypes json.RawMessage // lootTypes array exactly as written in the world file

	// road indices by cell coordinate; values are indices into Roads
	horizontalByY map[int][]int
	verticalByX   map[int][]int

	officeIDs map[string]struct{}
}

// NewGameMap creates an empty map with the given identity and default
// settings. Roads, buildings and offices are added afterwards.
func NewGameMap(id, name string) *GameMap {
	return &GameMap{
		ID:            id,
		Name:          name,
		Speed:         0.001, // 1 unit per second
		BagCapacity:   3,
		horizontalByY: make(map[int][]int),
		verticalByX:   make(map[int][]int),
		officeIDs:     make(map[string]struct{}),
	}
}

// AddRoad appends a road and indexes it by its cell coordinate.
// A single-point road lands in both indices.
func (m *GameMap) AddRoad(r Road) {
	idx := len(m.Roads)
	m.Roads = append(m.Roads, r)
	if r.IsHorizontal() {
		m.horizontalByY[r.Start.Y] = append(m.horizontalByY[r.Start.Y], idx)
	}
	if r.IsVertical() {
		m.verticalByX[r.Start.X] = append(m.verticalByX[r.Start.X], idx)
	}
}

// AddBuilding appends a building.
func (m *GameMap) AddBuilding(b Building) {
	m.Buildings = append(m.Buildings, b)
}

// AddOffice appends an office, rejecting duplicate ids.
func (m *GameMap) AddOffice(o Office) error {
	if _, ok := m.officeIDs[o.ID]; ok {
		return fmt.Errorf("%w: %q on map %q", ErrDuplicateOffice, o.ID, m.ID)
	}
	m.officeIDs[o.ID] = struct{}{}
	m.Offices = append(m.Offices, o)
	return nil
}

// RoadsAt returns the roads whose drivable zone contains pos, looked up by the
// rounded cell coordinates. While the position is crossing between cells on
// one axis, the perpendicular road at that coordinate is not under the dog and
// is skipped.
func (m *GameMap) RoadsAt(pos Position) RoadsAtPoint {
	cellX := int(math.Round(pos.X))
	cellY := int(math.Round(pos.Y))

	var found RoadsAtPoint
	if !midCell(pos.Y) {
		for _, idx := range m.horizontalByY[cellY] {
			minX, maxX, _, _ := m.Roads[idx].Bounds()
			if float64(cellX) >= minX && float64(cellX) <= maxX {
				found.Horizontal = &m.Roads[idx]
				break
			}
		}
	}
	if !midCell(pos.X) {
		for _, idx := range m.verticalByX[cellX] {
			_, _, minY, maxY := m.Roads[idx].Bounds()
			if float64(cellY) >= minY && float64(cellY) <= maxY {
				found.Vertical = &m.Roads[idx]
				break
			}
		}
	}
	return found
}

// LootTypeCount returns the number of loot types declared by the map.
func (m *GameMap) LootTypeCount() int {
	return len(m.LootValues)
}

// LootValue returns the score value of the given loot type.
func (m *GameMap) LootValue(lootType int) int {
	return m.LootValues[lootType]
}

// DefaultSpawnPoint is where dogs appear unless random spawning is enabled:
// the start of the first road.
func (m *GameMap) DefaultSpawnPoint() Position {
	start := m.Roads[0].Start
	return Position{X: float64(start.X), Y: float64(start.Y)}
}

// RandomPoint picks a uniformly random road and a uniform position along it.
func (m *GameMap) RandomPoint(rnd *rand.Rand) Position {
	road := m.Roads[rnd.Intn(len(m.Roads))]
	return road.PointAt(rnd.Float64())
}
