package service

// JoinResult is the response to a successful join.
type JoinResult struct {
	Token    string `json:"authToken"`
	PlayerID int    `json:"playerId"`
}

// PlayerInfo is one entry of the player roster.
type PlayerInfo struct {
	Name string `json:"name"`
}

// BagItem is one carried loot item as reported to clients.
type BagItem struct {
	ID   int64 `json:"id"`
	Type int   `json:"type"`
}

// PlayerState is one dog's state as reported to clients. Speed is in units
// per second on the wire.
type PlayerState struct {
	Pos   [2]float64 `json:"pos"`
	Speed [2]float64 `json:"speed"`
	Dir   string     `json:"dir"`
	Bag   []BagItem  `json:"bag"`
	Score int        `json:"score"`
}

// LostObject is one loot item lying on the map.
type LostObject struct {
	Type int        `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

// GameState is the full observable state of one session.
type GameState struct {
	Players     map[int]PlayerState  `json:"players"`
	LostObjects map[int64]LostObject `json:"lostObjects"`
}

// RecordInfo is one leaderboard row. PlayTime is in seconds.
type RecordInfo struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	PlayTime float64 `json:"playTime"`
}
