// Package watcher observes the game cache directory for new payloads.
//
// The game writes downloaded worlds as files literally named "__data" in
// nested per-asset directories. The watcher monitors the cache tree
// recursively, registering subdirectories as they appear, and emits one
// event per created payload file. Redirecting the watch to a new path fully
// stops and joins the previous watch first, so no events are delivered
// twice and no background work leaks.
package watcher
