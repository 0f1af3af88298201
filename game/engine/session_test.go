package engine

import (
	"math/rand"
	"testing"
)

// testMap is one horizontal road from (0,0) to (10,0) with a single loot type
// worth 5 points.
func testMap() *GameMap {
	m := NewGameMap("map1", "Test Town")
	m.AddRoad(NewHorizontalRoad(Point{X: 0, Y: 0}, 10))
	m.LootValues = []int{5}
	return m
}

// quietWorld never spawns loot on its own, so tests control the loot exactly.
func quietWorld(maps []*GameMap, idleLimitMs float64) *World {
	w := NewWorld(maps, LootGeneratorSettings{PeriodMs: 5000, Probability: 0}, idleLimitMs)
	w.SetRandSource(rand.New(rand.NewSource(42)))
	return w
}

func dropLoot(s *Session, items ...DroppedLoot) {
	loot := make(map[int64]DroppedLoot, len(items))
	for _, item := range items {
		loot[item.Item.ID] = item
	}
	s.RestoreLoot(loot)
}

func TestSessionSinglePickup(t *testing.T) {
	m := testMap()
	w := quietWorld([]*GameMap{m}, 60000)
	dog, err := w.Join("A", m)
	if err != nil {
		t.Fatal(err)
	}
	session := w.SessionOf(dog)
	dropLoot(session, DroppedLoot{
		Item:     LootItem{ID: 0, Type: 0, Value: 5},
		Position: Position{X: 5, Y: 0},
	})

	dog.SetDirection(East, m.Speed)
	w.Advance(6000)

	if !almostEqual(dog.Position().X, 6) || !almostEqual(dog.Position().Y, 0) {
		t.Errorf("expected position (6,0), got %v", dog.Position())
	}
	bag := dog.Bag()
	if len(bag) != 1 || bag[0].ID != 0 {
		t.Fatalf("expected bag [loot#0], got %v", bag)
	}
	if len(session.Loot()) != 0 {
		t.Errorf("picked-up loot must leave the map, got %v", session.Loot())
	}
}

func TestSessionOfficeDropOff(t *testing.T) {
	m := testMap()
	if err := m.AddOffice(Office{ID: "o1", Position: Point{X: 10, Y: 0}}); err != nil {
		t.Fatal(err)
	}
	w := quietWorld([]*GameMap{m}, 60000)
	dog, _ := w.Join("A", m)
	session := w.SessionOf(dog)
	dropLoot(session, DroppedLoot{
		Item:     LootItem{ID: 0, Type: 0, Value: 5},
		Position: Position{X: 5, Y: 0},
	})

	dog.SetDirection(East, m.Speed)
	w.Advance(6000)
	w.Advance(5000)

	if !dog.Velocity().IsZero() {
		t.Error("dog must stop at the road end")
	}
	if !almostEqual(dog.Position().X, 10.4) {
		t.Errorf("expected clamp to the inflated road end 10.4, got %v", dog.Position().X)
	}
	if len(dog.Bag()) != 0 {
		t.Errorf("office must empty the bag, got %v", dog.Bag())
	}
	if dog.Score() != 5 {
		t.Errorf("expected score 5 after drop-off, got %d", dog.Score())
	}
}

func TestSessionCollisionOrdering(t *testing.T) {
	m := testMap()
	w := quietWorld([]*GameMap{m}, 60000)
	dog, _ := w.Join("A", m)
	session := w.SessionOf(dog)
	dropLoot(session,
		DroppedLoot{Item: LootItem{ID: 0, Type: 0, Value: 5}, Position: Position{X: 3, Y: 0}},
		DroppedLoot{Item: LootItem{ID: 1, Type: 0, Value: 5}, Position: Position{X: 7, Y: 0}},
	)

	dog.SetDirection(East, m.Speed)
	w.Advance(8000)

	bag := dog.Bag()
	if len(bag) != 2 {
		t.Fatalf("expected both items picked up, got %v", bag)
	}
	if bag[0].ID != 0 || bag[1].ID != 1 {
		t.Errorf("expected pickup order [#0 #1], got [%d %d]", bag[0].ID, bag[1].ID)
	}
}

func TestSessionCapacitySaturation(t *testing.T) {
	m := testMap()
	m.BagCapacity = 1
	w := quietWorld([]*GameMap{m}, 60000)
	dog, _ := w.Join("A", m)
	session := w.SessionOf(dog)
	dropLoot(session,
		DroppedLoot{Item: LootItem{ID: 0, Type: 0, Value: 5}, Position: Position{X: 3, Y: 0}},
		DroppedLoot{Item: LootItem{ID: 1, Type: 0, Value: 5}, Position: Position{X: 7, Y: 0}},
	)

	dog.SetDirection(East, m.Speed)
	w.Advance(8000)

	bag := dog.Bag()
	if len(bag) != 1 || bag[0].ID != 0 {
		t.Fatalf("expected bag [#0], got %v", bag)
	}
	loot := session.Loot()
	if _, ok := loot[1]; !ok || len(loot) != 1 {
		t.Errorf("item #1 must remain on the ground, got %v", loot)
	}
}

func TestSessionContestedPickup(t *testing.T) {
	m := testMap()
	w := quietWorld([]*GameMap{m}, 60000)
	first, _ := w.Join("A", m)
	second, _ := w.Join("B", m)
	session := w.SessionOf(first)
	dropLoot(session, DroppedLoot{
		Item:     LootItem{ID: 0, Type: 0, Value: 5},
		Position: Position{X: 5, Y: 0},
	})

	first.SetDirection(East, m.Speed)
	second.SetDirection(East, m.Speed)
	w.Advance(6000)

	carried := len(first.Bag()) + len(second.Bag())
	if carried != 1 {
		t.Errorf("exactly one dog may take the item, carried %d", carried)
	}
	if len(session.Loot()) != 0 {
		t.Error("contested item must leave the map")
	}
}

func TestSessionGeneratesLoot(t *testing.T) {
	m := testMap()
	w := NewWorld([]*GameMap{m}, LootGeneratorSettings{PeriodMs: 5000, Probability: 1}, 60000)
	w.SetRandSource(rand.New(rand.NewSource(7)))
	dog, _ := w.Join("A", m)
	session := w.SessionOf(dog)

	// keep the dog busy so it does not retire into the measurement
	dog.SetDirection(East, m.Speed)
	w.Advance(100)

	loot := session.Loot()
	if len(loot) != 1 {
		t.Fatalf("probability 1 must spawn one item per empty-handed dog, got %d", len(loot))
	}
	for id, l := range loot {
		if id != 0 || l.Item.ID != 0 {
			t.Errorf("first spawned loot must have id 0, got %d", id)
		}
		if l.Item.Type != 0 {
			t.Errorf("only loot type 0 exists, got %d", l.Item.Type)
		}
		if l.Item.Value != 5 {
			t.Errorf("value must come from the map, got %d", l.Item.Value)
		}
		roads := m.RoadsAt(l.Position)
		if roads.Horizontal == nil && roads.Vertical == nil {
			t.Errorf("loot must spawn on a road, got %v", l.Position)
		}
	}
}

func TestSessionLootConserved(t *testing.T) {
	m := testMap()
	if err := m.AddOffice(Office{ID: "o1", Position: Point{X: 10, Y: 0}}); err != nil {
		t.Fatal(err)
	}
	w := quietWorld([]*GameMap{m}, 60000)
	dog, _ := w.Join("A", m)
	session := w.SessionOf(dog)
	dropLoot(session,
		DroppedLoot{Item: LootItem{ID: 0, Type: 0, Value: 5}, Position: Position{X: 2, Y: 0}},
		DroppedLoot{Item: LootItem{ID: 1, Type: 0, Value: 5}, Position: Position{X: 4, Y: 0}},
		DroppedLoot{Item: LootItem{ID: 2, Type: 0, Value: 5}, Position: Position{X: 9, Y: 0}},
	)

	dog.SetDirection(East, m.Speed)
	for i := 0; i < 12; i++ {
		w.Advance(1000)
	}

	// every item is on the ground, in the bag, or scored; nothing duplicated
	total := len(session.Loot())*5 + len(dog.Bag())*5 + dog.Score()
	if total != 15 {
		t.Errorf("loot mass not conserved: ground=%d bag=%d score=%d",
			len(session.Loot()), len(dog.Bag()), dog.Score())
	}
}
