// Package websocket streams board activity to browser clients.
//
// A central Hub owns the set of connections. Each client gets a read pump,
// which only exists to keep pongs flowing, and a write pump that sends one
// JSON frame per message and pings on a timer.
//
// Message Protocol:
//
// Every frame is a Message:
//   - {"event":"effect","move_id":"...","effect":{...}} for each match or refill step
//   - {"event":"board","move_id":"...","board":[[...]]} once a move has settled
//   - {"event":"new_game","board":[[...]]} when a new game replaces the board
//
// Clients registered with WithSnapshot also receive a board frame on connect.
//
// Usage:
//
//	hub := websocket.NewHub(logger, websocket.WithSnapshot(current))
//	go hub.Run(ctx)
//	unsubscribe := svc.Subscribe(hub.HandleEvent)
//	router.HandleFunc("/ws", hub.ServeWS)
package websocket
