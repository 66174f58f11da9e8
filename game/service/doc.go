// Package service provides the business logic layer for the match-3 server.
//
// The service owns a single active board built from a preset and serializes
// every operation on it behind one mutex, so the HTTP, WebSocket and MCP
// transports can share it safely.
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// PresetStore supplies presets; *config.Manager satisfies it.
//
// Usage:
//
//	presets, err := config.NewManager("presets")
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc := service.NewGameService(presets, logger)
//
//	// Start a game and play a move
//	info, err := svc.NewGame(ctx, "classic")
//	result, err := svc.Move(ctx, engine.Position{Row: 0, Col: 1}, engine.Position{Row: 2, Col: 1})
//
// Every move gets a UUID. Effects are forwarded to subscribers tagged with
// that ID as they happen, followed by one board event once the move settles.
package service
