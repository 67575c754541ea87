// Package cli parses command-line arguments into an app configuration and a
// command to run.
package cli
