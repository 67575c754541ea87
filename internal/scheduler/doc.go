// Package scheduler manages cron-driven pipeline schedules. Schedule
// definitions declared in code are the source of truth; Handle.Up reconciles
// them against a Storage backend so that persisted state always mirrors
// what is declared.
package scheduler
