package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/match3/game/config"
	"github.com/wricardo/match3/game/engine"
	"github.com/wricardo/match3/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string, version string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer(version)
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer(version string) {
	c.mcpServer = server.NewMCPServer(
		"Match-3 Board",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Match-3 Board - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Swap two tiles in the same row or column so that three or more equal tiles line up.
Matched tiles are cleared, the tiles above fall down and new tiles drop in from the top.
Falling tiles can form new matches, which resolve the same way.

AVAILABLE TOOLS:
- new_game: Start a new board from a preset
- board_state: Show the board with row/column indices
- tile: Read a single tile
- can_move: Check whether a swap would create a match, without changing the board
- move: Swap two tiles and resolve the board - requires intent explanation
- move_history: View past moves
- list_presets: List available presets
- game_instructions: Rules and coordinate conventions

Positions are zero-based; row 0 is the top row and column 0 the leftmost column.`),
	)

	// Register all tools
	c.registerTools()
}

func positionProperties() map[string]interface{} {
	props := map[string]interface{}{}
	for _, name := range []string{"from_row", "from_col", "to_row", "to_col"} {
		props[name] = map[string]interface{}{
			"type":        "integer",
			"minimum":     0,
			"description": "Zero-based " + strings.Replace(name, "_", " ", 1),
		}
	}
	return props
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_game",
		Description: "Start a new game, replacing the current board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset id from list_presets (optional, the default preset is used when empty)",
				},
			},
		},
	}, c.handleNewGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board and move count",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tile",
		Description: "Get the value of one tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based row, 0 is the top",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based column, 0 is the left",
				},
			},
			Required: []string{"row", "col"},
		},
	}, c.handleTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "can_move",
		Description: "Check whether swapping two tiles would create a match. The board is not changed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"from_row", "from_col", "to_row", "to_col"},
		},
	}, c.handleCanMove)

	moveProps := positionProperties()
	moveProps["intent"] = map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
	}
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Swap two tiles in the same row or column and resolve all resulting matches",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: moveProps,
			Required:   []string{"from_row", "from_col", "to_row", "to_col"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the move history with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Moves per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Sort order (default desc, most recent first)",
				},
			},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and the coordinate conventions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok && msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// intArg reads an integer argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

// swapArgs reads from_row, from_col, to_row and to_col
func swapArgs(args map[string]interface{}) (engine.Position, engine.Position, error) {
	var values [4]int
	for i, name := range []string{"from_row", "from_col", "to_row", "to_col"} {
		v, ok := intArg(args, name)
		if !ok {
			return engine.Position{}, engine.Position{}, fmt.Errorf("%s is required and must be an integer", name)
		}
		values[i] = v
	}
	return engine.Position{Row: values[0], Col: values[1]}, engine.Position{Row: values[2], Col: values[3]}, nil
}

// Tool handlers

func (c *Client) handleNewGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	preset, _ := args["preset"].(string)

	var info service.GameInfo
	err := c.apiCall(ctx, "POST", "/api/board", map[string]string{"preset": preset}, &info)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("New game started.\n\n" + formatGameInfo(&info)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.GameInfo
	if err := c.apiCall(ctx, "GET", "/api/board", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameInfo(&info)), nil
}

func (c *Client) handleTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required and must be integers"), nil
	}

	var tile service.TileInfo
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/board/tile?row=%d&col=%d", row, col), nil, &tile)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Tile at %s: %s", tile.Position, tile.Value)), nil
}

func (c *Client) handleCanMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, to, err := swapArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var resp struct {
		Legal bool `json:"legal"`
	}
	err = c.apiCall(ctx, "POST", "/api/board/can-move", map[string]engine.Position{"from": from, "to": to}, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Legal {
		return mcp.NewToolResultText(fmt.Sprintf("✅ Swapping %s and %s creates a match.", from, to)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("❌ Swapping %s and %s does not create a match.", from, to)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	from, to, err := swapArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	intent, _ := args["intent"].(string)
	_ = intent

	var result service.MoveResult
	err = c.apiCall(ctx, "POST", "/api/board/move", map[string]engine.Position{"from": from, "to": to}, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", strconv.Itoa(limit))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := "/api/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []config.PresetInfo
	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(presets) == 0 {
		return mcp.NewToolResultText("No presets available. new_game will use the built-in default board."), nil
	}

	var sb strings.Builder
	sb.WriteString("Available Presets:\n\n")
	for _, p := range presets {
		fmt.Fprintf(&sb, "• %s (id: %s)\n  %s\n  Board: %dx%d, Tiles: %s\n\n",
			p.Name, p.PresetID, p.Description, p.Width, p.Height, strings.Join(p.Tiles, " "))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `# Match-3 Rules

## Board
- The board is a grid of single-character tiles.
- Positions are (row,col), zero-based. Row 0 is the top, column 0 is the left.

## Moves
- A move swaps two tiles that share a row or a column. They do not need to be neighbours.
- A move is legal only if the swap creates at least one run of 3 or more equal tiles
  in a row or a column. Illegal moves leave the board unchanged.
- Use can_move to test a swap without changing the board.

## Resolution
1. All row runs are found, then all column runs.
2. Every tile in a run is cleared. A tile in both a row and a column run is cleared once.
3. Tiles fall down into the cleared cells, keeping their order.
4. Empty cells are filled with new tiles, column by column, top to bottom.
5. If the new board has runs, the process repeats (a cascade).

## Strategy Tips
- Look for two equal tiles in a line with a gap, and a third equal tile in the gap's row or column.
- Moves near the bottom shift more tiles and are more likely to cascade.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatBoard(board [][]string) string {
	if len(board) == 0 {
		return "(empty board)\n"
	}

	var sb strings.Builder
	sb.WriteString("    ")
	for col := range board[0] {
		fmt.Fprintf(&sb, "%-3d", col)
	}
	sb.WriteString("\n")

	for row, values := range board {
		fmt.Fprintf(&sb, "%-4d", row)
		for _, v := range values {
			if v == "" {
				v = "."
			}
			fmt.Fprintf(&sb, "%-3s", v)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatGameInfo(info *service.GameInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Preset: %s (%s)\n", info.Name, info.Preset)
	fmt.Fprintf(&sb, "Board: %dx%d\n", info.Width, info.Height)
	fmt.Fprintf(&sb, "Moves: %d\n\n", info.Moves)
	sb.WriteString(formatBoard(info.Board))
	if len(info.Matches) > 0 {
		fmt.Fprintf(&sb, "\nUnresolved runs on the board: %d (they clear on the next legal move)\n", len(info.Matches))
	}
	return sb.String()
}

func formatEffect(e engine.Effect[string]) string {
	switch e.Kind {
	case engine.MatchEffect:
		positions := make([]string, len(e.Positions))
		for i, p := range e.Positions {
			positions[i] = p.String()
		}
		return fmt.Sprintf("match %s %s x%d at %s", e.Axis, e.Value, len(e.Positions), strings.Join(positions, " "))
	case engine.RefillEffect:
		return "refill"
	default:
		return string(e.Kind)
	}
}

func formatMoveResult(result *service.MoveResult) string {
	var sb strings.Builder

	if !result.Legal {
		fmt.Fprintf(&sb, "❌ Swapping %s and %s creates no match. The board is unchanged.\n\n", result.From, result.To)
		sb.WriteString(formatBoard(result.Board))
		return sb.String()
	}

	fmt.Fprintf(&sb, "✅ Swapped %s and %s\n", result.From, result.To)
	fmt.Fprintf(&sb, "Passes: %d, Cleared: %d\n", result.Passes, result.Cleared)
	if result.Error != "" {
		fmt.Fprintf(&sb, "⚠️ Resolution stopped early: %s\n", result.Error)
	}

	sb.WriteString("\nEffects:\n")
	for i, e := range result.Effects {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, formatEffect(e))
	}

	sb.WriteString("\n")
	sb.WriteString(formatBoard(result.Board))
	return sb.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Move History (Page %d/%d, Total: %d)\n\n", history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		sb.WriteString("No moves yet.\n")
		return sb.String()
	}

	for _, m := range history.Moves {
		status := "illegal"
		if m.Legal {
			status = fmt.Sprintf("%d pass(es), %d cleared", m.Passes, m.Cleared)
		}
		fmt.Fprintf(&sb, "#%d %s <-> %s: %s\n", m.Number, m.From, m.To, status)
	}
	return sb.String()
}
