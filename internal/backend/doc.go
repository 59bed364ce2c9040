// Package backend is the HTTP client for the remote chat session service.
//
// The service exposes three endpoints:
//   - POST /create_session           -> { session_id }
//   - POST /chat                     -> { bot_message, product_id } or { detail }
//   - GET  /history/{session_id}    -> [ { role, message } ]
//
// Chat and session creation are never retried; a failed exchange surfaces
// to the caller exactly once. History is an idempotent best-effort read and
// goes through a retrying transport.
package backend
