// Package app provides the orchestration layer for iqama.
//
// # Overview
//
// This package wires together configuration, logging, local storage, the
// remote client, the session and the UI. It is the composition root: every
// command in internal/cli calls exactly one function here.
//
// # Entry Points
//
//   - Run: the interactive editor
//   - Sync: one headless bootstrap against the remote
//   - Show: print the locally stored times and next prayers
//   - Serve: run the bundled remote store
//   - Logs: print the tail of the log file
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config.toml + environment
//	       ├─────> logging.Setup()      zerolog to the log file
//	       ├─────> localstore.Open()    file, cookie and sqlite tiers
//	       ├─────> remote.NewClient()   nil when sync is not configured
//	       ├─────> state.Open()         Session over store + coordinator
//	       ├─────> StartPoller()        Retry failed pushes
//	       ├─────> ui.Run()             Start TUI (blocks)
//	       └─────> Session.Close()      Final save + bounded push
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file unreadable or invalid
//   - Log file cannot be opened
//   - Remote URL cannot be parsed
//
// Everything after startup is recoverable. Storage tier failures are logged
// at debug level, remote failures mark sync unavailable and are retried by
// the poller, and the editor keeps working on local data.
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{}); err != nil {
//		log.Fatalf("iqama failed: %v", err)
//	}
package app
