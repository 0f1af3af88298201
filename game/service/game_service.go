package service

import (
	"context"

	"lootdogs/game/engine"
	"lootdogs/storage"
)

// GameService is the contract between the game and its transports. All
// errors are engine sentinels (engine.ErrMapNotFound and friends) so
// transports can map them to their own status codes.
type GameService interface {
	// ListMaps returns all maps in world-file order.
	ListMaps(ctx context.Context) ([]*engine.GameMap, error)

	// FindMap returns the map with the given id.
	FindMap(ctx context.Context, mapID string) (*engine.GameMap, error)

	// Join puts a new dog named userName on the map and returns its
	// credentials.
	Join(ctx context.Context, userName, mapID string) (JoinResult, error)

	// Players lists the dogs sharing a session with the token's owner.
	Players(ctx context.Context, token string) (map[int]PlayerInfo, error)

	// State reports the session state visible to the token's owner.
	State(ctx context.Context, token string) (GameState, error)

	// Move applies a movement command: one of "U", "D", "L", "R", or ""
	// to stop.
	Move(ctx context.Context, token, move string) error

	// Tick advances game time by deltaMs milliseconds.
	Tick(ctx context.Context, deltaMs float64) error

	// Records returns the leaderboard page starting at start, at most
	// maxItems rows. Negative values select the defaults.
	Records(ctx context.Context, start, maxItems int) ([]RecordInfo, error)
}

// StateBroadcaster receives the state of every session after each tick.
type StateBroadcaster interface {
	BroadcastMapState(mapID string, state GameState)
}

// RecordStore serves leaderboard queries; *storage.Leaderboard in production.
type RecordStore interface {
	Records(ctx context.Context, start, maxItems int) ([]storage.Record, error)
}
