// Package daemon runs the long-lived archiver process: it watches the game
// cache directory, funnels new payloads into the ingestion pipeline, and
// keeps a lock file so only one instance runs at a time.
package daemon
