// Package mcp exposes the match-3 board to AI agents over the Model Context Protocol.
//
// Client is a thin MCP server whose tools proxy to the REST API, so an agent
// and a browser watching /ws share the same board.
//
// MCP Tools:
//   - new_game: Start a new board from a preset
//   - board_state: Board with row/column indices and move count
//   - tile: Value at one position
//   - can_move: Whether a swap would match, without changing the board
//   - move: Swap two tiles and report every match and refill step
//   - move_history: Paginated move history
//   - list_presets: Available presets
//   - game_instructions: Rules and coordinate conventions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST JSON-RPC messages to /mcp on the serve command
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
