package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"lootdogs/game/engine"
)

// ErrInvalidConfig is wrapped by every error describing a malformed world file.
var ErrInvalidConfig = errors.New("invalid world configuration")

const (
	defaultDogSpeed         = 0.001 // units per ms
	defaultBagCapacity      = 3
	defaultRetirementTimeMs = 60000.0
)

type worldFile struct {
	DefaultDogSpeed    *float64 `json:"defaultDogSpeed"`
	DefaultBagCapacity *int     `json:"defaultBagCapacity"`
	DogRetirementTime  *float64 `json:"dogRetirementTime"` // seconds
	LootGenerator      *struct {
		Period      *float64 `json:"period"` // seconds
		Probability *float64 `json:"probability"`
	} `json:"lootGeneratorConfig"`
	Maps []mapFile `json:"maps"`
}

type mapFile struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Roads       []roadFile      `json:"roads"`
	Buildings   []buildingFile  `json:"buildings"`
	Offices     []officeFile    `json:"offices"`
	LootTypes   json.RawMessage `json:"lootTypes"`
	DogSpeed    *float64        `json:"dogSpeed"`
	BagCapacity *int            `json:"bagCapacity"`
}

type roadFile struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
}

type buildingFile struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type officeFile struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

// LoadWorld reads and parses the world file at path.
func LoadWorld(path string) (*engine.World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	return ParseWorld(data)
}

// ParseWorld builds a world from the JSON world-file contents.
func ParseWorld(data []byte) (*engine.World, error) {
	var file worldFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if file.LootGenerator == nil || file.LootGenerator.Period == nil || file.LootGenerator.Probability == nil {
		return nil, fmt.Errorf("%w: lootGeneratorConfig with period and probability is required", ErrInvalidConfig)
	}
	period := *file.LootGenerator.Period
	probability := *file.LootGenerator.Probability
	if period <= 0 {
		return nil, fmt.Errorf("%w: loot generator period must be positive", ErrInvalidConfig)
	}
	if probability < 0 || probability > 1 {
		return nil, fmt.Errorf("%w: loot generator probability must be in [0,1]", ErrInvalidConfig)
	}

	speed := defaultDogSpeed
	if file.DefaultDogSpeed != nil {
		speed = *file.DefaultDogSpeed / 1000
	}
	capacity := defaultBagCapacity
	if file.DefaultBagCapacity != nil {
		capacity = *file.DefaultBagCapacity
	}
	retirementMs := defaultRetirementTimeMs
	if file.DogRetirementTime != nil {
		retirementMs = *file.DogRetirementTime * 1000
	}

	if len(file.Maps) == 0 {
		return nil, fmt.Errorf("%w: no maps declared", ErrInvalidConfig)
	}

	maps := make([]*engine.GameMap, 0, len(file.Maps))
	for _, mf := range file.Maps {
		m, err := buildMap(mf, speed, capacity)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}

	gen := engine.LootGeneratorSettings{
		PeriodMs:    period * 1000,
		Probability: probability,
	}
	return engine.NewWorld(maps, gen, retirementMs), nil
}

func buildMap(mf mapFile, defaultSpeed float64, defaultCapacity int) (*engine.GameMap, error) {
	if mf.ID == "" {
		return nil, fmt.Errorf("%w: map without id", ErrInvalidConfig)
	}
	if len(mf.Roads) == 0 {
		return nil, fmt.Errorf("%w: map %q has no roads", ErrInvalidConfig, mf.ID)
	}

	m := engine.NewGameMap(mf.ID, mf.Name)
	for _, rf := range mf.Roads {
		switch {
		case rf.X1 != nil:
			m.AddRoad(engine.NewHorizontalRoad(engine.Point{X: rf.X0, Y: rf.Y0}, *rf.X1))
		case rf.Y1 != nil:
			m.AddRoad(engine.NewVerticalRoad(engine.Point{X: rf.X0, Y: rf.Y0}, *rf.Y1))
		default:
			return nil, fmt.Errorf("%w: road on map %q has neither x1 nor y1", ErrInvalidConfig, mf.ID)
		}
	}
	for _, bf := range mf.Buildings {
		m.AddBuilding(engine.Building{Bounds: engine.Rectangle{
			Position: engine.Point{X: bf.X, Y: bf.Y},
			Size:     engine.Size{Width: bf.W, Height: bf.H},
		}})
	}
	for _, of := range mf.Offices {
		office := engine.Office{
			ID:       of.ID,
			Position: engine.Point{X: of.X, Y: of.Y},
			Offset:   engine.Offset{DX: of.OffsetX, DY: of.OffsetY},
		}
		if err := m.AddOffice(office); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	values, err := parseLootValues(mf.LootTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: map %q: %v", ErrInvalidConfig, mf.ID, err)
	}
	m.LootValues = values
	m.RawLootTypes = mf.LootTypes

	m.Speed = defaultSpeed
	if mf.DogSpeed != nil {
		m.Speed = *mf.DogSpeed / 1000
	}
	m.BagCapacity = defaultCapacity
	if mf.BagCapacity != nil {
		m.BagCapacity = *mf.BagCapacity
	}
	return m, nil
}

// parseLootValues extracts the value of each loot type; the rest of the loot
// type object is opaque and preserved verbatim for the map API.
func parseLootValues(raw json.RawMessage) ([]int, error) {
	if len(raw) == 0 {
		return nil, errors.New("lootTypes is required")
	}
	var types []struct {
		Value *int `json:"value"`
	}
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, fmt.Errorf("lootTypes: %v", err)
	}
	if len(types) == 0 {
		return nil, errors.New("lootTypes is empty")
	}
	values := make([]int, len(types))
	for i, t := range types {
		if t.Value == nil {
			return nil, fmt.Errorf("lootTypes[%d] has no value", i)
		}
		values[i] = *t.Value
	}
	return values, nil
}
