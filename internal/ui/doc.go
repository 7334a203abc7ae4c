// Package ui provides the interactive terminal interface for shelf.
//
// # Architecture Overview
//
// The interface is a Bubble Tea program. The root Model owns the session
// store, the API client and a small router; every routed screen is a page
// built fresh on navigation and torn down when the user leaves it.
//
// # Package Structure
//
//   - app.go: Root model, key handling, navigation and the Run entry point
//   - router.go: Route table, path resolution and access gating
//   - page.go: The page interface, shared page deps and page-scoped messages
//   - header.go, help.go, modal.go, box.go: Chrome around the current page
//   - catalog.go, detail.go, bookform.go, recommendations.go: Book screens
//   - documents.go, chat.go: Document upload, ingestion and Q&A
//   - admin.go: User management for superusers
//   - login.go: Sign in and sign up
//
// # Routing
//
// Navigation goes through navigateMsg. The root resolves the path, applies
// gateRoute (no session → /login, non-superuser on /admin/users → /), closes
// the current page and builds the target. Unknown paths land on the catalog.
//
// # Page-scoped Messages
//
// Async results embed scoped, which carries the id of the page instance
// that started the call. The root drops results whose page has been
// replaced, so a slow response never lands on the wrong screen.
//
// # Document Polling
//
// The documents page owns a poll.Loop. After every list fetch the loop is
// reset: active while any document is processing, idle otherwise. Ticks
// reach the program through the dispatcher and are ignored once the page is
// closed.
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		API:     client,
//		Session: store,
//		Logger:  logger,
//	})
//
// # Key Bindings
//
//   - 1-5: Books, Picks, Documents, Q&A, Users
//   - j/k, g/G: Move through lists
//   - enter: Open, n: New, e: Edit, d: Delete
//   - T: Cycle theme, L: Log out, ?: Help, Q: Quit
package ui
