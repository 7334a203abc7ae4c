// Package library provides an HTTP client for the book library REST API.
//
// # Overview
//
// The client is the single entry point to the backend. It covers
// authentication, the book catalog, reviews, documents and ingestion, the
// question-answering endpoint, AI summary generation and user administration.
// Each method maps to exactly one HTTP call; there is no caching, retrying or
// request deduplication.
//
// # Client Usage
//
//	client, err := library.NewClient("http://127.0.0.1:8000/api/v1", store, logger)
//	if err != nil {
//		return err
//	}
//	books, err := client.ListBooks(ctx)
//
// store is any TokenSource; *session.Store satisfies it. When the source
// yields a token it is attached as "Authorization: Bearer <token>".
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation
//   - Set Accept: application/json and User-Agent: shelf/<version>
//   - Carry a fresh X-Request-ID so client and server logs can be joined
//   - Use the transport default timeout
//
// The base URL keeps its path prefix, so "http://host/api/v1" plus "books/"
// resolves to "http://host/api/v1/books/". Trailing slashes are preserved
// because the backend distinguishes "/books/" from "/books".
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError. The backend reports failures
// as {"detail": "..."} or, for validation errors, {"detail": [{"msg": ...}]};
// both shapes are flattened into APIError.Detail. Use Message to pick the
// server detail with a caller-provided fallback and IsNotFound to detect 404s.
//
// Transport and decoding failures are wrapped with fmt.Errorf:
//   - "execute request: dial tcp: connection refused"
//   - "decode response: unexpected EOF"
//
// # Thread Safety
//
// The Client is safe for concurrent use.
package library
