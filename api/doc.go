// Package api provides HTTP REST API handlers for the match-3 server.
//
// Endpoints:
//
// Board:
//   - GET /api/board - Current board, preset and move count
//   - POST /api/board - Start a new game, body {"preset": "classic"} (empty uses the default)
//   - GET /api/board/tile?row=&col= - Value at one position
//   - POST /api/board/can-move - Whether a swap would match, body {"from":{...},"to":{...}}
//   - POST /api/board/move - Apply a swap and resolve the board
//   - GET /api/history?page=&limit=&order= - Move history with pagination
//
// Presets:
//   - GET /api/presets - List available presets
//   - GET /api/presets/{name} - Get one preset
//
// Other:
//   - GET /api/health - Liveness check
//   - GET /ws - WebSocket stream of effects and boards
//
// Positions are sent as {"row": 0, "col": 1}.
//
// Error Handling:
//
// Errors are returned as JSON with an "error" key. Status codes:
//
//	400  malformed body, missing fields, off-board position, invalid preset
//	404  unknown preset
//	409  no game has been started
//	500  anything else, including a move that failed mid-cascade; that
//	     response is the partial move result with its "error" field set
package api
