// Package api implements the REST surface of the game server.
//
// All endpoints live under /api/v1 and speak JSON. Game endpoints
// authenticate with "Authorization: Bearer <token>", where the token is the
// 32-hex string issued by join. Errors are reported as {"code", "message"}
// bodies with the appropriate HTTP status, and every API response carries
// Cache-Control: no-cache. Non-API paths serve the static frontend from the
// configured www root.
package api
