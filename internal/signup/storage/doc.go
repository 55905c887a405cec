// Package storage defines persistence contracts for game-night signup state.
//
// Signup code uses these records and interfaces so command handlers stay
// testable and never depend on a concrete backend: the same contract is
// implemented by an in-memory store and by a single-file SQLite store.
// Relationship-valued fields on records resolve through explicit accessor
// methods backed by a Loader, so every point that can trigger a query is a
// visible call rather than hidden field magic.
package storage
