// Package controller owns the client-side chat session lifecycle: session
// identity, the ordered transcript, in-flight request guards, and
// reconciliation of local optimistic state with the remote service.
//
// The controller is the single writer of session state. User intents and
// network resolutions mutate it under one lock; every committed mutation
// while a session is active is written through to the snapshot store, and
// the presentation layer re-renders from State() after each change
// notification.
//
// Requests are tagged with the session identifier active at dispatch time.
// A resolution whose tag no longer matches the current session is
// discarded, so a send outliving its session can never append into a newer
// session's transcript.
package controller
