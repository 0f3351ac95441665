// Package archive orchestrates payload ingestion end to end.
//
// The Manager wires the extractor, the metadata lookup, disambiguation, the
// catalog store, and asset copying into one pipeline: a discovered payload
// is scanned for identifiers, each candidate is resolved against the
// metadata service, the winner (or, when disambiguation fails outright,
// every candidate flagged for review) is persisted and its payload copied
// into per-world storage, and observers are told about the finalized record.
//
// The exists-check-then-add sequence runs under a single manager-level mutex
// so concurrent workers (watcher deliveries, bulk discovery) cannot both
// store the same world. All other failures are converted to results or
// warnings at the pipeline boundary; nothing in here may kill the watcher.
package archive
