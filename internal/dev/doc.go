// Package dev keeps a live route snapshot while a project is being edited.
//
// This package implements:
//   - File watching for label sources and page files
//   - Rebuilding the route tree off to the side and swapping it atomically
//   - Touching page sources whose label sources changed
//   - WebSocket notifications to connected preview clients
//
// # Architecture
//
//   - Watcher: polls the pages directory for changes
//   - Coordinator: owns the current snapshot and rebuilds on change
//   - Hub: notifies preview clients via WebSocket
//
// # Usage
//
//	coord, err := dev.NewCoordinator(ctx, cfg, dev.CoordinatorOptions{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	go coord.Run(ctx)
//
//	r := chi.NewRouter()
//	r.Use(middleware.Rewrites(coord))
//
// # Notification Protocol
//
// Clients connect to /_polyroute/events via WebSocket. Messages are
// JSON-encoded:
//
//	{"type": "hello", "client": "…", "version": 1}
//	{"type": "rebuild", "version": 2}                      // rules unchanged
//	{"type": "stale", "version": 3, "files": ["…"]}        // restart required
//	{"type": "error", "error": "…"}                        // build failed
package dev
