// Package app provides the orchestration layer for shelf.
//
// # Overview
//
// This package wires together configuration, logging, the session store, the
// API client and the UI. It is the composition root where all dependencies
// are initialized and connected; the CLI subcommands reuse the same Env.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Setup()    │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config.toml + env overrides
//	       ├─────> NewLogger()          zap, to log_file or stderr
//	       ├─────> prefs.Load()         Theme and last email
//	       ├─────> session.NewStore()   Restore persisted token
//	       └─────> library.NewClient()  Bearer token from the store
//
//	Run() then hands the Env to ui.Run(), which blocks until the user quits.
//
// # Error Handling
//
// Fatal errors (returned from Setup/Run):
//   - Configuration file unreadable or invalid
//   - Invalid log level or unwritable log directory
//   - Unparseable api_url
//
// Everything else (request failures, a corrupt session file, prefs that
// cannot be saved) is logged and handled by the view that triggered it.
package app
