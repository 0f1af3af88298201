package engine

import (
	"math/rand"
	"sort"
)

const (
	dogGatherWidth  = 0.3
	lootItemWidth   = 0.0
	officeItemWidth = 0.25
)

// Session runs the game on one map: it moves dogs, detects pickups and
// drop-offs, retires idle dogs and spawns loot.
type Session struct {
	id      int
	gameMap *GameMap
	dogs    []*Dog
	loot    map[int64]DroppedLoot

	gen         *LootGenerator
	idleLimitMs float64

	randomSpawn bool
	rnd         *rand.Rand
	nextLootID  func() int64
}

func newSession(id int, m *GameMap, gen *LootGenerator, idleLimitMs float64, randomSpawn bool, rnd *rand.Rand, nextLootID func() int64) *Session {
	return &Session{
		id:          id,
		gameMap:     m,
		loot:        make(map[int64]DroppedLoot),
		gen:         gen,
		idleLimitMs: idleLimitMs,
		randomSpawn: randomSpawn,
		rnd:         rnd,
		nextLootID:  nextLootID,
	}
}

// ID returns the session id.
func (s *Session) ID() int { return s.id }

// Map returns the map this session runs on.
func (s *Session) Map() *GameMap { return s.gameMap }

// Dogs returns the dogs in join order.
func (s *Session) Dogs() []*Dog {
	out := make([]*Dog, len(s.dogs))
	copy(out, s.dogs)
	return out
}

// Loot returns a copy of the loot currently lying on the map.
func (s *Session) Loot() map[int64]DroppedLoot {
	out := make(map[int64]DroppedLoot, len(s.loot))
	for id, l := range s.loot {
		out[id] = l
	}
	return out
}

// RestoreLoot replaces the dropped loot, used when loading a snapshot.
func (s *Session) RestoreLoot(loot map[int64]DroppedLoot) {
	s.loot = make(map[int64]DroppedLoot, len(loot))
	for id, l := range loot {
		s.loot[id] = l
	}
}

// SpawnPosition picks where a joining dog appears.
func (s *Session) SpawnPosition() Position {
	if s.randomSpawn {
		return s.gameMap.RandomPoint(s.rnd)
	}
	return s.gameMap.DefaultSpawnPoint()
}

func (s *Session) addDog(d *Dog) {
	s.dogs = append(s.dogs, d)
}

func (s *Session) removeDog(token string) {
	for i, d := range s.dogs {
		if d.Token() == token {
			s.dogs = append(s.dogs[:i], s.dogs[i+1:]...)
			return
		}
	}
}

// roadFor picks the road to clamp a dog's movement to: the road aligned with
// its facing, falling back to the perpendicular one.
func (s *Session) roadFor(d *Dog) *Road {
	roads := s.gameMap.RoadsAt(d.Position())
	if d.Facing() == West || d.Facing() == East {
		if roads.Horizontal != nil {
			return roads.Horizontal
		}
		return roads.Vertical
	}
	if roads.Vertical != nil {
		return roads.Vertical
	}
	return roads.Horizontal
}

// Advance runs one tick of deltaMs game time and returns the dogs that
// retired during it. Retired dogs still gather loot on their final movement;
// loot generation sees the player count after their removal.
func (s *Session) Advance(deltaMs float64) []*Dog {
	moves := make([]dogMove, 0, len(s.dogs))
	var retired []*Dog
	for _, d := range s.dogs {
		start := d.Position()
		move := MoveResult{Position: start}
		if road := s.roadFor(d); road != nil {
			move = clampToRoad(*road, start, d.Velocity(), deltaMs)
		}
		if d.Advance(deltaMs, move, s.idleLimitMs) {
			retired = append(retired, d)
		}
		moves = append(moves, dogMove{dog: d, start: start, end: d.Position()})
	}

	s.gatherLoot(moves)

	for _, d := range retired {
		s.removeDog(d.Token())
	}

	s.generateLoot(deltaMs)
	return retired
}

// dogMove is one dog's displacement during a tick.
type dogMove struct {
	dog   *Dog
	start Position
	end   Position
}

// gatherLoot resolves pickups and drop-offs for one tick's movements.
func (s *Session) gatherLoot(moves []dogMove) {
	lootIDs := make([]int64, 0, len(s.loot))
	for id := range s.loot {
		lootIDs = append(lootIDs, id)
	}
	sort.Slice(lootIDs, func(a, b int) bool { return lootIDs[a] < lootIDs[b] })

	provider := &GatherProvider{}
	for _, id := range lootIDs {
		provider.AddItem(Item{Position: s.loot[id].Position, Width: lootItemWidth})
	}
	for _, office := range s.gameMap.Offices {
		pos := Position{X: float64(office.Position.X), Y: float64(office.Position.Y)}
		provider.AddItem(Item{Position: pos, Width: officeItemWidth})
	}
	for _, m := range moves {
		provider.AddGatherer(Gatherer{Start: m.start, End: m.end, Width: dogGatherWidth})
	}

	for _, event := range FindGatherEvents(provider) {
		dog := moves[event.GathererIndex].dog
		if event.ItemIndex >= len(lootIDs) {
			dog.EmptyBag()
			continue
		}
		id := lootIDs[event.ItemIndex]
		dropped, ok := s.loot[id]
		if !ok {
			continue
		}
		if dog.Collect(dropped.Item, s.gameMap.BagCapacity) {
			delete(s.loot, id)
		}
	}
}

// generateLoot spawns new loot at random road points.
func (s *Session) generateLoot(deltaMs float64) {
	n := s.gen.Generate(deltaMs, len(s.loot), len(s.dogs))
	for i := 0; i < n; i++ {
		id := s.nextLootID()
		lootType := s.rnd.Intn(s.gameMap.LootTypeCount())
		s.loot[id] = DroppedLoot{
			Item: LootItem{
				ID:    id,
				Type:  lootType,
				Value: s.gameMap.LootValue(lootType),
			},
			Position: s.gameMap.RandomPoint(s.rnd),
		}
	}
}
