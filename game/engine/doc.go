// Package engine provides the core game logic for the loot-dogs game.
//
// The engine package implements the game mechanics including:
//   - Road-graph movement with drivable-zone clamping
//   - Collision-based loot pickup and office drop-off
//   - Stochastic loot generation
//   - Idle-based dog retirement
//   - Per-map game sessions and the world that owns them
//
// Core Types:
//
// GameMap describes a single map (roads, buildings, offices, loot settings).
// Dog is a player avatar; Session advances all dogs on one map through a tick;
// World owns maps, sessions and player identity (tokens, ids, counters).
//
// Usage:
//
//	world := engine.NewWorld(maps, engine.LootGeneratorSettings{
//		PeriodMs:    5000,
//		Probability: 0.5,
//	}, 60000)
//	m := world.FindMap("map1")
//	dog, err := world.Join("Pluto", m)
//	if err != nil {
//		log.Fatal(err)
//	}
//	dog.SetDirection(engine.East, m.Speed)
//	world.Advance(100) // milliseconds of game time
//
// The package is pure: it performs no I/O and never touches the clock. Time
// enters exclusively through Advance deltas, and randomness through injectable
// sources, so every rule is deterministic under test.
package engine
