// Package notifications delivers archive events to observers.
//
// Two channels exist. The Bus is the in-process feed the presentation layer
// subscribes to: finalized records and coarse status strings, fire-and-forget.
// The Service optionally mirrors milestones to ntfy for push delivery and
// degrades to a no-op when no topic is configured. Core code never depends
// on delivery confirmation from either.
package notifications
