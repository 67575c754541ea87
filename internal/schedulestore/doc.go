// Package schedulestore provides storage backends for pipeline schedules:
// an in-memory store for tests and single runs, and a SQLite store for
// state that survives restarts.
package schedulestore
