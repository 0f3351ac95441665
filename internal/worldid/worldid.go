// Package worldid recovers world identifiers from opaque cache payloads.
//
// A world identifier is the literal prefix "wrld_" followed by a canonical
// hyphenated UUID. Extraction scans raw bytes, so it tolerates any payload
// content including binary garbage; failure to find anything is an empty
// result, never an error.
package worldid

import (
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Prefix is the literal marker every world identifier starts with.
const Prefix = "wrld_"

// MaxCandidates bounds extraction so corrupted payloads cannot produce
// pathological candidate sets.
const MaxCandidates = 10

var pattern = regexp.MustCompile(`wrld_[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// ErrInvalid is returned by FromURL when no identifier can be derived.
var ErrInvalid = errors.New("no world identifier in input")

// Extract scans payload for embedded world identifiers and returns them in
// order of first occurrence. Values repeat when they occur multiple times;
// callers deduplicate if they need identity. At most MaxCandidates matches
// are returned.
func Extract(payload []byte) []string {
	matches := pattern.FindAll(payload, MaxCandidates)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		id := string(m)
		if !Valid(id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Distinct returns candidates with duplicates removed, preserving
// first-seen order.
func Distinct(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Valid reports whether id is a well-formed world identifier.
func Valid(id string) bool {
	if !strings.HasPrefix(id, Prefix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(id, Prefix))
	return err == nil
}

// FromURL derives a world identifier from a world page URL or a bare id
// string, mirroring how operators paste links during manual import.
func FromURL(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	idx := strings.Index(trimmed, Prefix)
	if idx < 0 {
		return "", ErrInvalid
	}
	candidate := trimmed[idx:]
	// Trim anything past the UUID (query strings, trailing slashes).
	if match := pattern.FindString(candidate); match != "" && Valid(match) {
		return match, nil
	}
	return "", ErrInvalid
}
