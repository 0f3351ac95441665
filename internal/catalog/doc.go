// Package catalog persists the archive's world records in a JSON document.
//
// The Store manages a single records.json file mapping category keys to
// either an ordered sequence of world records (the "Worlds" key) or scalar
// settings such as the VRChat executable and cache paths. Every mutation is
// flushed to disk synchronously before returning; the in-memory state stays
// authoritative if a flush fails. Unknown scalar keys are round-tripped
// untouched so older or newer tools can share the same file.
//
// The store deliberately does not deduplicate world records. Callers that
// need at-most-one-entry semantics (the ingestion pipeline) check Exists
// before Add under their own serialization.
package catalog
