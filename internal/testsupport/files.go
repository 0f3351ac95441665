package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WritePayload writes a binary payload embedding the given world identifiers
// between runs of filler bytes, approximating a cached asset bundle.
func WritePayload(t testing.TB, path string, ids ...string) {
	t.Helper()

	var buf bytes.Buffer
	filler := bytes.Repeat([]byte{0x00, 0x7f, 0x42, 0x13}, 64)
	buf.Write(filler)
	for _, id := range ids {
		buf.WriteString(id)
		buf.Write(filler)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
