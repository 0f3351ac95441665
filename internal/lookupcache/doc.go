// Package lookupcache persists world metadata lookups in SQLite.
//
// Bulk discovery re-reads the same cache payloads across runs; caching the
// metadata keyed by world id keeps re-discovery offline and spares the
// metadata service. The cache is an optimization only: corruption or absence
// is never fatal, callers fall through to the live lookup.
package lookupcache
