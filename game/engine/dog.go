package engine

// LootItem is one piece of loot, either lying on a map or carried in a bag.
type LootItem struct {
	ID    int64 `json:"id"`
	Type  int   `json:"type"`
	Value int   `json:"value"`
}

// DroppedLoot is a loot item lying on a map.
type DroppedLoot struct {
	Item     LootItem `json:"item"`
	Position Position `json:"pos"`
}

// Dog is a player avatar on a map.
type Dog struct {
	id    int
	name  string
	token string
	mapID string

	pos    Position
	speed  Speed
	facing Direction

	bag   []LootItem
	score int

	idleTime  float64 // ms since the last movement command
	totalTime float64 // ms in the game
}

// NewDog creates a dog standing still at pos, facing north.
func NewDog(id int, name, token, mapID string, pos Position) *Dog {
	return &Dog{id: id, name: name, token: token, mapID: mapID, pos: pos}
}

func (d *Dog) ID() int            { return d.id }
func (d *Dog) Name() string       { return d.name }
func (d *Dog) Token() string      { return d.token }
func (d *Dog) MapID() string      { return d.mapID }
func (d *Dog) Position() Position { return d.pos }
func (d *Dog) Velocity() Speed    { return d.speed }
func (d *Dog) Facing() Direction  { return d.facing }
func (d *Dog) Score() int         { return d.score }

// IdleTime returns milliseconds since the dog last received a movement command.
func (d *Dog) IdleTime() float64 { return d.idleTime }

// TotalTime returns milliseconds the dog has spent in the game.
func (d *Dog) TotalTime() float64 { return d.totalTime }

// Bag returns a copy of the carried loot.
func (d *Dog) Bag() []LootItem {
	out := make([]LootItem, len(d.bag))
	copy(out, d.bag)
	return out
}

// SetDirection points the dog and starts it moving at the map speed.
// Any movement command resets the idle clock.
func (d *Dog) SetDirection(dir Direction, speed float64) {
	d.facing = dir
	switch dir {
	case North:
		d.speed = Speed{X: 0, Y: -speed}
	case South:
		d.speed = Speed{X: 0, Y: speed}
	case West:
		d.speed = Speed{X: -speed, Y: 0}
	case East:
		d.speed = Speed{X: speed, Y: 0}
	}
	d.idleTime = 0
}

// Stop zeroes the velocity, keeping the facing. Stopping is not a movement
// command, so the idle clock keeps running.
func (d *Dog) Stop() {
	d.speed = Speed{}
}

// Advance applies one tick's clamped movement and time accounting. It returns
// true when the dog has been idle for idleLimitMs and must retire.
func (d *Dog) Advance(deltaMs float64, move MoveResult, idleLimitMs float64) (retired bool) {
	idleBefore := d.idleTime
	d.idleTime += deltaMs - move.Duration

	if move.ReachedBoundary {
		d.Stop()
	}
	d.pos = move.Position

	if d.idleTime >= idleLimitMs {
		d.totalTime += idleLimitMs - idleBefore
		return true
	}
	d.totalTime += deltaMs
	return false
}

// Collect puts item into the bag unless the bag already holds capacity items.
func (d *Dog) Collect(item LootItem, capacity int) bool {
	if len(d.bag) >= capacity {
		return false
	}
	d.bag = append(d.bag, item)
	return true
}

// EmptyBag credits the value of every carried item to the score and clears
// the bag, returning the credited total.
func (d *Dog) EmptyBag() int {
	credited := 0
	for _, item := range d.bag {
		credited += item.Value
	}
	d.score += credited
	d.bag = d.bag[:0]
	return credited
}

// RestoreState overwrites the dog's mutable state, used when loading a
// snapshot.
func (d *Dog) RestoreState(pos Position, speed Speed, facing Direction, bag []LootItem, score int, idleMs, totalMs float64) {
	d.pos = pos
	d.speed = speed
	d.facing = facing
	d.bag = append(d.bag[:0], bag...)
	d.score = score
	d.idleTime = idleMs
	d.totalTime = totalMs
}
