// Package types defines the chat data model shared across the client:
// transcript messages, roles, and the persisted session snapshot.
package types
