package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Loot Dogs Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Loot Dogs Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Your dog runs along the roads of a town, picks up lost items and delivers
them to lost-and-found offices to score points. A dog that stands still for
too long retires and its result goes to the leaderboard.

AVAILABLE TOOLS:
- list_maps: List the playable maps
- get_map: Get the full description of one map
- join_game: Join a map with a player name (returns your auth token)
- list_players: List the players in your session
- game_state: Get positions, bags and scores of your session
- player_action: Set your movement direction (U/D/L/R) or stop
- tick: Advance game time by N milliseconds (manual-tick servers only)
- records: Get the retired-player leaderboard

RULES OF MOVEMENT:
Dogs run along roads only. A road is 0.8 units wide; a dog that reaches
the edge of the road network stops there. Directions are U (up/north),
D (down/south), L (left/west), R (right/east). Send an empty direction
to stop.

Keep the auth token returned by join_game and pass it to the other tools.`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List the playable maps",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_map",
		Description: "Get the full description of one map: roads, buildings, offices and loot types",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map_id": map[string]interface{}{
					"type":        "string",
					"description": "Map ID from list_maps",
				},
			},
			Required: []string{"map_id"},
		},
	}, c.handleGetMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a map with a player name. Returns the auth token to use with the other tools.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the dog",
				},
				"map_id": map[string]interface{}{
					"type":        "string",
					"description": "Map ID from list_maps",
				},
			},
			Required: []string{"user_name", "map_id"},
		},
	}, c.handleJoinGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_players",
		Description: "List the players in your session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token from join_game",
				},
			},
			Required: []string{"token"},
		},
	}, c.handleListPlayers)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get positions, speeds, bags and scores of everyone in your session, plus the loot lying on the map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token from join_game",
				},
			},
			Required: []string{"token"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "player_action",
		Description: "Set your movement direction, or stop",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Auth token from join_game",
				},
				"move": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"U", "D", "L", "R", ""},
					"description": "Direction to run, empty string to stop",
				},
			},
			Required: []string{"token", "move"},
		},
	}, c.handlePlayerAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance game time by time_delta milliseconds. Only works against servers started without an automatic tick period.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"time_delta": map[string]interface{}{
					"type":        "integer",
					"description": "Milliseconds of game time to advance",
				},
			},
			Required: []string{"time_delta"},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "records",
		Description: "Get the retired-player leaderboard, best scores first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"start": map[string]interface{}{
					"type":        "integer",
					"description": "Offset into the leaderboard (default 0)",
				},
				"max_items": map[string]interface{}{
					"type":        "integer",
					"description": "Number of rows to return, at most 100 (default 100)",
				},
			},
		},
	}, c.handleRecords)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path, token string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message != "" {
			return fmt.Errorf("%s: %s", errResp.Code, errResp.Message)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Wire types mirroring the REST responses

type mapSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type roadView struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
}

type officeView struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

type mapView struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Roads     []roadView               `json:"roads"`
	Buildings []map[string]int         `json:"buildings"`
	Offices   []officeView             `json:"offices"`
	LootTypes []map[string]interface{} `json:"lootTypes"`
}

type joinResult struct {
	AuthToken string `json:"authToken"`
	PlayerID  int    `json:"playerId"`
}

type playerState struct {
	Pos   [2]float64 `json:"pos"`
	Speed [2]float64 `json:"speed"`
	Dir   string     `json:"dir"`
	Bag   []struct {
		ID   int64 `json:"id"`
		Type int   `json:"type"`
	} `json:"bag"`
	Score int `json:"score"`
}

type lostObject struct {
	Type int        `json:"type"`
	Pos  [2]float64 `json:"pos"`
}

type gameState struct {
	Players     map[string]playerState `json:"players"`
	LostObjects map[string]lostObject  `json:"lostObjects"`
}

type recordRow struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	PlayTime float64 `json:"playTime"`
}

// Tool handlers

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var maps []mapSummary
	if err := c.apiCall("GET", "/api/v1/maps", "", nil, &maps); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Maps (%d):\n", len(maps))
	for _, m := range maps {
		fmt.Fprintf(&sb, "- %s: %s\n", m.ID, m.Name)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGetMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	mapID, _ := args["map_id"].(string)

	var view mapView
	if err := c.apiCall("GET", "/api/v1/maps/"+url.PathEscape(mapID), "", nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMap(&view)), nil
}

func (c *Client) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	userName, _ := args["user_name"].(string)
	mapID, _ := args["map_id"].(string)

	body := map[string]string{"userName": userName, "mapId": mapID}
	var result joinResult
	if err := c.apiCall("POST", "/api/v1/game/join", "", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Joined map %s as player %d.\nAuth token: %s\nPass this token to the other tools.",
		mapID, result.PlayerID, result.AuthToken)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleListPlayers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	token, _ := args["token"].(string)

	var players map[string]struct {
		Name string `json:"name"`
	}
	if err := c.apiCall("GET", "/api/v1/game/players", token, nil, &players); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Players (%d):\n", len(players))
	for id, p := range players {
		fmt.Fprintf(&sb, "- #%s %s\n", id, p.Name)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	token, _ := args["token"].(string)

	var state gameState
	if err := c.apiCall("GET", "/api/v1/game/state", token, nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handlePlayerAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	token, _ := args["token"].(string)
	move, _ := args["move"].(string)

	body := map[string]string{"move": move}
	if err := c.apiCall("POST", "/api/v1/game/player/action", token, body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if move == "" {
		return mcp.NewToolResultText("Stopped."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moving %s.", move)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	delta, ok := args["time_delta"].(float64)
	if !ok {
		return mcp.NewToolResultError("time_delta is required"), nil
	}

	body := map[string]int64{"timeDelta": int64(delta)}
	if err := c.apiCall("POST", "/api/v1/game/tick", "", body, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Advanced game time by %d ms.", int64(delta))), nil
}

func (c *Client) handleRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})

	params := url.Values{}
	if start, ok := args["start"].(float64); ok {
		params.Set("start", fmt.Sprintf("%d", int(start)))
	}
	if maxItems, ok := args["max_items"].(float64); ok {
		params.Set("maxItems", fmt.Sprintf("%d", int(maxItems)))
	}
	path := "/api/v1/game/records"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var records []recordRow
	if err := c.apiCall("GET", path, "", nil, &records); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Leaderboard (%d rows):\n", len(records))
	for i, r := range records {
		fmt.Fprintf(&sb, "%d. %s - %d points in %.1f s\n", i+1, r.Name, r.Score, r.PlayTime)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// Formatters

func formatMap(m *mapView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Map %s: %s\n\n", m.ID, m.Name)

	fmt.Fprintf(&sb, "Roads (%d):\n", len(m.Roads))
	for _, r := range m.Roads {
		if r.X1 != nil {
			fmt.Fprintf(&sb, "- horizontal from (%d,%d) to (%d,%d)\n", r.X0, r.Y0, *r.X1, r.Y0)
		} else if r.Y1 != nil {
			fmt.Fprintf(&sb, "- vertical from (%d,%d) to (%d,%d)\n", r.X0, r.Y0, r.X0, *r.Y1)
		}
	}

	fmt.Fprintf(&sb, "\nOffices (%d):\n", len(m.Offices))
	for _, o := range m.Offices {
		fmt.Fprintf(&sb, "- %s at (%d,%d)\n", o.ID, o.X, o.Y)
	}

	fmt.Fprintf(&sb, "\nBuildings: %d\nLoot types: %d\n", len(m.Buildings), len(m.LootTypes))
	return sb.String()
}

func formatGameState(state *gameState) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Players (%d):\n", len(state.Players))
	for id, p := range state.Players {
		status := "standing"
		if p.Speed[0] != 0 || p.Speed[1] != 0 {
			status = "moving " + p.Dir
		}
		fmt.Fprintf(&sb, "- #%s at (%.1f,%.1f), %s, bag %d item(s), score %d\n",
			id, p.Pos[0], p.Pos[1], status, len(p.Bag), p.Score)
	}

	fmt.Fprintf(&sb, "\nLoot on the ground (%d):\n", len(state.LostObjects))
	for id, lost := range state.LostObjects {
		fmt.Fprintf(&sb, "- #%s type %d at (%.1f,%.1f)\n", id, lost.Type, lost.Pos[0], lost.Pos[1])
	}

	return sb.String()
}
