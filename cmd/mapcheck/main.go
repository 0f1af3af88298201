// Command mapcheck prints quick, human-readable statistics about world
// description files. It summarizes road networks, buildings, offices and
// loot types per map, and highlights offices standing off the road network,
// which dogs could never reach to drop loot.
package main

import (
	"fmt"
	"os"

	"lootdogs/game/config"
	"lootdogs/game/engine"
)

// mapReport is the per-map summary printed by the tool.
type mapReport struct {
	ID              string
	Name            string
	Roads           int
	RoadLength      float64
	Buildings       int
	Offices         int
	LootTypes       int
	DetachedOffices []string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <world-file> [<world-file>...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, path := range os.Args[1:] {
		fmt.Printf("\n=== Analyzing %s ===\n", path)
		world, err := config.LoadWorld(path)
		if err != nil {
			fmt.Printf("Error loading world: %v\n", err)
			failed = true
			continue
		}
		for _, report := range reportWorld(world) {
			printReport(report)
			if len(report.DetachedOffices) > 0 {
				failed = true
			}
		}
	}

	if failed {
		os.Exit(1)
	}
}

func reportWorld(world *engine.World) []mapReport {
	reports := make([]mapReport, 0, len(world.Maps()))
	for _, m := range world.Maps() {
		report := mapReport{
			ID:        m.ID,
			Name:      m.Name,
			Roads:     len(m.Roads),
			Buildings: len(m.Buildings),
			Offices:   len(m.Offices),
			LootTypes: m.LootTypeCount(),
		}
		for _, road := range m.Roads {
			report.RoadLength += road.Length()
		}
		for _, office := range m.Offices {
			pos := engine.Position{X: float64(office.Position.X), Y: float64(office.Position.Y)}
			roads := m.RoadsAt(pos)
			if roads.Horizontal == nil && roads.Vertical == nil {
				report.DetachedOffices = append(report.DetachedOffices, office.ID)
			}
		}
		reports = append(reports, report)
	}
	return reports
}

func printReport(r mapReport) {
	fmt.Printf("Map: %s (%s)\n", r.ID, r.Name)
	fmt.Printf("Roads: %d (total length %.0f)\n", r.Roads, r.RoadLength)
	fmt.Printf("Buildings: %d\n", r.Buildings)
	fmt.Printf("Offices: %d\n", r.Offices)
	fmt.Printf("Loot types: %d\n", r.LootTypes)

	if len(r.DetachedOffices) > 0 {
		fmt.Printf("WARNING: %d office(s) stand off the road network:\n", len(r.DetachedOffices))
		for _, id := range r.DetachedOffices {
			fmt.Printf("   unreachable office: %s\n", id)
		}
	} else if r.Offices > 0 {
		fmt.Printf("All offices are reachable from the road network\n")
	} else {
		fmt.Printf("WARNING: no offices, loot on this map can never be scored\n")
	}
}
