// Package session holds the signed-in user's token and profile.
//
// # Overview
//
// Store is the single piece of state shared across views. Views receive the
// same *Store, read it through Snapshot, and change it only through Login,
// SetUser and Logout. The API client reads the token through the
// library.TokenSource interface.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. Writes happen on login and logout;
// every outgoing request takes a read lock to fetch the token.
//
// # Persistence
//
// When constructed with a File the Store mirrors every change to disk as TOML
// with mode 0600, so the next process can Restore the session. Logout removes
// the file. Persistence failures are logged and never block the in-memory
// session.
//
// # Expiry
//
// There is no refresh or expiry handling. A stale token surfaces as an
// ordinary request failure from the API.
package session
