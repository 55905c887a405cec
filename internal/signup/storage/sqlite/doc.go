// Package sqlite provides a SQLite-backed signup storage implementation.
//
// The single database file is the durable state for a deployment; its schema
// is the contract for any tool inspecting stored signups directly. Queries
// hydrate scalar columns only; relationship fields resolve lazily through the
// storage.Loader the store binds to every record it returns. Mutating
// operations write and then re-fetch the affected record so callers never see
// state stale relative to what was just written.
package sqlite
