package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LootGeneratorSettings configures loot generation for every session.
type LootGeneratorSettings struct {
	PeriodMs    float64
	Probability float64
	Random      RandomGenerator // nil means the deterministic unit source
}

func (s LootGeneratorSettings) build() *LootGenerator {
	if s.Random != nil {
		return NewLootGeneratorWithRandom(s.PeriodMs, s.Probability, s.Random)
	}
	return NewLootGenerator(s.PeriodMs, s.Probability)
}

// RetiredDog is the record of a dog leaving the game.
type RetiredDog struct {
	Name       string
	Score      int
	PlayTimeMs float64
}

// RetireFunc receives retirement records as they happen, inside the tick.
type RetireFunc func(RetiredDog)

// TickObserver is notified after the world finishes a tick.
type TickObserver func(deltaMs float64)

// World owns the maps, the sessions running on them and player identity:
// tokens, dog ids and the monotonic counters behind them.
type World struct {
	maps     []*GameMap
	mapIndex map[string]*GameMap

	sessions     map[int]*Session
	sessionByMap map[string]int

	dogsByToken map[string]*Dog
	dogsByID    map[int]*Dog

	nextDogID     int
	nextSessionID int
	nextLootID    int64

	gen         *LootGenerator
	idleLimitMs float64
	randomSpawn bool
	rnd         *rand.Rand

	onRetire  RetireFunc
	observers []TickObserver
}

// NewWorld creates a world over the given maps. idleLimitMs is how long a dog
// may go without a movement command before it retires.
func NewWorld(maps []*GameMap, gen LootGeneratorSettings, idleLimitMs float64) *World {
	w := &World{
		maps:         maps,
		mapIndex:     make(map[string]*GameMap, len(maps)),
		sessions:     make(map[int]*Session),
		sessionByMap: make(map[string]int),
		dogsByToken:  make(map[string]*Dog),
		dogsByID:     make(map[int]*Dog),
		gen:          gen.build(),
		idleLimitMs:  idleLimitMs,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, m := range maps {
		w.mapIndex[m.ID] = m
	}
	return w
}

// SetRandomSpawn makes joining dogs appear at random road points instead of
// the first road's start.
func (w *World) SetRandomSpawn(enabled bool) { w.randomSpawn = enabled }

// SetRandSource replaces the world's randomness, for deterministic tests.
func (w *World) SetRandSource(rnd *rand.Rand) { w.rnd = rnd }

// SetOnRetire installs the handler invoked for every retiring dog.
func (w *World) SetOnRetire(fn RetireFunc) { w.onRetire = fn }

// OnTick registers an observer called after each completed tick.
func (w *World) OnTick(obs TickObserver) { w.observers = append(w.observers, obs) }

// IdleLimitMs returns the retirement threshold.
func (w *World) IdleLimitMs() float64 { return w.idleLimitMs }

// Maps returns all maps in world-file order.
func (w *World) Maps() []*GameMap { return w.maps }

// FindMap returns the map with the given id, or nil.
func (w *World) FindMap(id string) *GameMap { return w.mapIndex[id] }

// newToken mints a 32-character lowercase hex token.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Join creates a dog for userName on m, placing it in the map's session
// (created on first join) and registering its token and id.
func (w *World) Join(userName string, m *GameMap) (*Dog, error) {
	if userName == "" {
		return nil, ErrEmptyPlayerName
	}
	if m == nil || w.mapIndex[m.ID] == nil {
		return nil, ErrMapNotFound
	}

	session := w.sessionFor(m)
	dog := NewDog(w.allocDogID(), userName, newToken(), m.ID, session.SpawnPosition())
	session.addDog(dog)
	w.dogsByToken[dog.Token()] = dog
	w.dogsByID[dog.ID()] = dog
	return dog, nil
}

// RestoreDog recreates a dog from persisted identity, bumping the id counter
// past it. The caller restores the mutable state afterwards.
func (w *World) RestoreDog(id int, userName, token, mapID string) (*Dog, error) {
	m := w.mapIndex[mapID]
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMapNotFound, mapID)
	}
	session := w.sessionFor(m)
	dog := NewDog(id, userName, token, mapID, session.SpawnPosition())
	session.addDog(dog)
	w.dogsByToken[token] = dog
	w.dogsByID[id] = dog
	if id > w.nextDogID {
		w.nextDogID = id
	}
	return dog, nil
}

// DogByToken resolves an auth token to its dog.
func (w *World) DogByToken(token string) (*Dog, error) {
	dog, ok := w.dogsByToken[token]
	if !ok {
		return nil, ErrUnknownToken
	}
	return dog, nil
}

// Dogs returns all registered dogs keyed by id.
func (w *World) Dogs() map[int]*Dog {
	out := make(map[int]*Dog, len(w.dogsByID))
	for id, d := range w.dogsByID {
		out[id] = d
	}
	return out
}

// SessionOf returns the session the dog plays in.
func (w *World) SessionOf(d *Dog) *Session {
	id, ok := w.sessionByMap[d.MapID()]
	if !ok {
		return nil
	}
	return w.sessions[id]
}

// Sessions returns all sessions in ascending id order.
func (w *World) Sessions() []*Session {
	ids := make([]int, 0, len(w.sessions))
	for id := range w.sessions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, w.sessions[id])
	}
	return out
}

// Advance runs one tick of deltaMs game time on every session, retires idle
// dogs and notifies tick observers.
func (w *World) Advance(deltaMs float64) {
	for _, session := range w.Sessions() {
		for _, dog := range session.Advance(deltaMs) {
			delete(w.dogsByToken, dog.Token())
			delete(w.dogsByID, dog.ID())
			if w.onRetire != nil {
				w.onRetire(RetiredDog{
					Name:       dog.Name(),
					Score:      dog.Score(),
					PlayTimeMs: dog.TotalTime(),
				})
			}
		}
	}
	for _, obs := range w.observers {
		obs(deltaMs)
	}
}

// LootBySession returns the dropped loot of every session, keyed by session
// id, for persistence.
func (w *World) LootBySession() map[int]map[int64]DroppedLoot {
	out := make(map[int]map[int64]DroppedLoot, len(w.sessions))
	for id, session := range w.sessions {
		out[id] = session.Loot()
	}
	return out
}

// RestoreLootBySession installs persisted loot into the matching sessions and
// bumps the loot counter past every restored id. Loot recorded for a session
// id that no longer exists is dropped.
func (w *World) RestoreLootBySession(loot map[int]map[int64]DroppedLoot) {
	for sessionID, items := range loot {
		session, ok := w.sessions[sessionID]
		if !ok {
			continue
		}
		session.RestoreLoot(items)
		for id := range items {
			if id >= w.nextLootID {
				w.nextLootID = id + 1
			}
		}
	}
}

// RestoreSessionForMap ensures the session for mapID exists with the given id,
// bumping the session counter past it. Used when loading a snapshot so that
// loot keyed by session id finds its session.
func (w *World) RestoreSessionForMap(sessionID int, mapID string) error {
	m := w.mapIndex[mapID]
	if m == nil {
		return fmt.Errorf("%w: %q", ErrMapNotFound, mapID)
	}
	if _, ok := w.sessionByMap[mapID]; ok {
		return nil
	}
	session := newSession(sessionID, m, w.gen, w.idleLimitMs, w.randomSpawn, w.rnd, w.allocLootID)
	w.sessions[sessionID] = session
	w.sessionByMap[mapID] = sessionID
	if sessionID > w.nextSessionID {
		w.nextSessionID = sessionID
	}
	return nil
}

// sessionFor returns the session running m, creating it on first use.
// Each map has at most one session.
func (w *World) sessionFor(m *GameMap) *Session {
	if id, ok := w.sessionByMap[m.ID]; ok {
		return w.sessions[id]
	}
	w.nextSessionID++
	session := newSession(w.nextSessionID, m, w.gen, w.idleLimitMs, w.randomSpawn, w.rnd, w.allocLootID)
	w.sessions[session.ID()] = session
	w.sessionByMap[m.ID] = session.ID()
	return session
}

func (w *World) allocDogID() int {
	w.nextDogID++
	return w.nextDogID
}

func (w *World) allocLootID() int64 {
	id := w.nextLootID
	w.nextLootID++
	return id
}
