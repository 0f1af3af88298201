package engine

import "math"

// RandomGenerator yields a value in [0, 1] used to scale loot generation.
type RandomGenerator func() float64

// LootGenerator decides how many loot items to spawn each tick. The longer a
// session goes without new loot, the higher the spawn probability.
type LootGenerator struct {
	basePeriod      float64 // ms
	probability     float64
	timeWithoutLoot float64 // ms
	random          RandomGenerator
}

// NewLootGenerator creates a generator with the deterministic unit random
// source, so spawn counts depend only on elapsed time and object counts.
func NewLootGenerator(basePeriodMs, probability float64) *LootGenerator {
	return NewLootGeneratorWithRandom(basePeriodMs, probability, func() float64 { return 1.0 })
}

// NewLootGeneratorWithRandom creates a generator with a custom random source.
func NewLootGeneratorWithRandom(basePeriodMs, probability float64, random RandomGenerator) *LootGenerator {
	return &LootGenerator{
		basePeriod:  basePeriodMs,
		probability: probability,
		random:      random,
	}
}

// Generate returns how many items to spawn after deltaMs of game time, given
// the current loot and looter counts. Never more than looterCount minus
// lootCount, never negative.
func (g *LootGenerator) Generate(deltaMs float64, lootCount, looterCount int) int {
	g.timeWithoutLoot += deltaMs

	lack := looterCount - lootCount
	if lack < 0 {
		lack = 0
	}

	ratio := 1 - math.Pow(1-g.probability, g.timeWithoutLoot/g.basePeriod)
	ratio = math.Min(math.Max(ratio, 0), 1)

	n := int(math.Round(float64(lack) * ratio * g.random()))
	if n > 0 {
		g.timeWithoutLoot = 0
	}
	return n
}
