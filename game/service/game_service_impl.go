package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"lootdogs/game/engine"
)

type gameServiceImpl struct {
	mu      sync.Mutex
	world   *engine.World
	records RecordStore

	broadcaster StateBroadcaster
	log         zerolog.Logger
}

// NewGameService wraps a world and a record store into the transport-facing
// service. broadcaster receives per-session state after every tick; nil
// disables the fan-out.
func NewGameService(world *engine.World, records RecordStore, broadcaster StateBroadcaster, log zerolog.Logger) GameService {
	return &gameServiceImpl{
		world:       world,
		records:     records,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (s *gameServiceImpl) ListMaps(ctx context.Context) ([]*engine.GameMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Maps(), nil
}

func (s *gameServiceImpl) FindMap(ctx context.Context, mapID string) (*engine.GameMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.world.FindMap(mapID)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrMapNotFound, mapID)
	}
	return m, nil
}

func (s *gameServiceImpl) Join(ctx context.Context, userName, mapID string) (JoinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.world.FindMap(mapID)
	if m == nil {
		return JoinResult{}, fmt.Errorf("%w: %q", engine.ErrMapNotFound, mapID)
	}
	dog, err := s.world.Join(userName, m)
	if err != nil {
		return JoinResult{}, fmt.Errorf("join %q: %w", mapID, err)
	}

	s.log.Info().
		Str("player", userName).
		Str("map", mapID).
		Int("player_id", dog.ID()).
		Msg("player joined")
	return JoinResult{Token: dog.Token(), PlayerID: dog.ID()}, nil
}

func (s *gameServiceImpl) Players(ctx context.Context, token string) (map[int]PlayerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dog, err := s.world.DogByToken(token)
	if err != nil {
		return nil, err
	}
	players := make(map[int]PlayerInfo)
	for _, other := range s.world.SessionOf(dog).Dogs() {
		players[other.ID()] = PlayerInfo{Name: other.Name()}
	}
	return players, nil
}

func (s *gameServiceImpl) State(ctx context.Context, token string) (GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dog, err := s.world.DogByToken(token)
	if err != nil {
		return GameState{}, err
	}
	return sessionState(s.world.SessionOf(dog)), nil
}

func (s *gameServiceImpl) Move(ctx context.Context, token, move string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dog, err := s.world.DogByToken(token)
	if err != nil {
		return err
	}
	if move == "" {
		dog.Stop()
		return nil
	}
	dir, err := engine.DirectionFromLetter(move)
	if err != nil {
		return err
	}
	dog.SetDirection(dir, s.world.FindMap(dog.MapID()).Speed)
	return nil
}

func (s *gameServiceImpl) Tick(ctx context.Context, deltaMs float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.world.Advance(deltaMs)

	if s.broadcaster != nil {
		for _, session := range s.world.Sessions() {
			s.broadcaster.BroadcastMapState(session.Map().ID, sessionState(session))
		}
	}
	return nil
}

func (s *gameServiceImpl) Records(ctx context.Context, start, maxItems int) ([]RecordInfo, error) {
	records, err := s.records.Records(ctx, start, maxItems)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}
	out := make([]RecordInfo, 0, len(records))
	for _, r := range records {
		out = append(out, RecordInfo{Name: r.Name, Score: r.Score, PlayTime: r.PlayTime})
	}
	return out, nil
}

// sessionState projects a session into its wire form. Speeds leave the
// engine in units/ms and are reported in units/s.
func sessionState(session *engine.Session) GameState {
	state := GameState{
		Players:     make(map[int]PlayerState),
		LostObjects: make(map[int64]LostObject),
	}
	if session == nil {
		return state
	}
	for _, dog := range session.Dogs() {
		bag := make([]BagItem, 0, len(dog.Bag()))
		for _, item := range dog.Bag() {
			bag = append(bag, BagItem{ID: item.ID, Type: item.Type})
		}
		pos := dog.Position()
		speed := dog.Velocity()
		state.Players[dog.ID()] = PlayerState{
			Pos:   [2]float64{pos.X, pos.Y},
			Speed: [2]float64{speed.X * 1000, speed.Y * 1000},
			Dir:   dog.Facing().Letter(),
			Bag:   bag,
			Score: dog.Score(),
		}
	}
	for id, loot := range session.Loot() {
		state.LostObjects[id] = LostObject{
			Type: loot.Item.Type,
			Pos:  [2]float64{loot.Position.X, loot.Position.Y},
		}
	}
	return state
}
