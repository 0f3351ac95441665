package catalog

import "strings"

// WorldsKey is the category under which world records are sequenced.
const WorldsKey = "Worlds"

// Scalar settings the surrounding application stores alongside the records.
const (
	KeyVRChatExec  = "vrchat_exec"
	KeyVRChatCache = "vrchat_cache"
)

// WorldRecord is the unit of the catalog. JSON field names match the
// document format of the original records file.
type WorldRecord struct {
	ID            string `json:"World ID"`
	Name          string `json:"World Name"`
	Author        string `json:"World Author"`
	Description   string `json:"World Description,omitempty"`
	ThumbnailPath string `json:"Thumbnail Path,omitempty"`
	Ambiguous     bool   `json:"Ambiguous,omitempty"`
}

// Valid reports whether the record carries the fields the archive depends
// on. Records failing this check are pruned during integrity verification.
func (r WorldRecord) Valid() bool {
	return strings.TrimSpace(r.ID) != "" && strings.TrimSpace(r.Name) != ""
}
