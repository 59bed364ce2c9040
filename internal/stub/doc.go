// Package stub is a local development stand-in for the remote chat
// session service. It implements the same three endpoints with in-memory
// sessions and canned product-aware replies, so the client can be exercised
// end to end without the real backend.
package stub
