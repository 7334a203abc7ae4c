// Package config loads shelf's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/shelf/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. SHELF_API_URL and SHELF_LOG_LEVEL override whatever was loaded
//
// # Default Values
//
//   - api_url: http://127.0.0.1:8000/api/v1
//   - log_file: ~/.local/state/shelf/shelf.log
//   - log_level: info
//   - remember_session: true
//   - session_file: ~/.config/shelf/session.toml
//   - watch_extensions: .pdf,.txt,.md,.epub
//
// # TOML Format
//
//	api_url = "https://books.example.com/api/v1"
//	log_level = "debug"
//	remember_session = false
//	watch_extensions = ".pdf,.epub"
//
// Paths starting with ~ are expanded to the user's home directory. There is
// no request timeout setting; the HTTP transport default applies.
package config
