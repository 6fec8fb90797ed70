// Package store persists discovered videos, extracted clips, and the durable
// publishing state in SQLite. Video lifecycle changes go through conditional
// status transitions so concurrent runs cannot double-process an item, and
// the publishing state is saved with compare-and-swap semantics.
package store
