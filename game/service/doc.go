// Package service exposes the game to transports.
//
// GameService is the single entry point for everything the HTTP API, the
// websocket hub and the MCP proxy need: joining, movement commands, ticks,
// state queries and the leaderboard. The implementation serializes every
// mutation behind one mutex, so the engine below it never needs locks and
// tick processing is strictly ordered with player commands.
package service
