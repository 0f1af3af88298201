// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// The package is a thin client: every tool call is proxied to the REST API
// of a running game server, so agents and browsers always act on the same
// world.
//
// Tools:
//   - list_maps: list the playable maps
//   - get_map: full description of one map (roads, buildings, offices, loot)
//   - join_game: join a map, returns the auth token and player id
//   - list_players: roster of the joined player's session
//   - game_state: positions, bags and scores of the session
//   - player_action: point the dog in a direction, or stop it
//   - tick: advance game time (manual-tick servers only)
//   - records: the retired-player leaderboard
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
