// Package session persists the append-only log of tool calls.
//
// The pipeline appends one [toolgate.CallRecord] per settled call; the
// conversation layer reads records back when reconstructing a session.
// Two backends are provided: [MemoryStore] for tests and ephemeral runs,
// and [FileStore] which appends JSON lines to one file per session.
package session
