// Package board holds the application tracker board: an in-memory store
// of job records grouped by status, the drag session state machine that
// turns a gesture into a status move, and the engine that applies moves
// optimistically and rolls them back when persistence fails.
//
// A Store is created per board view and shared by reference between the
// Controller, the Engine and whatever renders it. Only Store.Load and the
// Engine mutate records.
package board
