// Package websocket pushes live game state to browser clients.
//
// A central Hub keeps the connected clients grouped by map id. Clients
// connect to /ws?map=<mapId> and from then on receive one JSON frame per
// server tick with the full observable state of that map's session. The
// protocol is one-way: incoming messages are read only to keep the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub(log)
//	go hub.Run(ctx)
//	// hub satisfies both http.Handler (the upgrade endpoint) and
//	// service.StateBroadcaster (the tick-time state fan-out).
package websocket
