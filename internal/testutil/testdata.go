package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// LoadCodes returns a trimmed {bits}hex fixture from testdata relative path.
func LoadCodes(t *testing.T, rel string) string {
	t.Helper()
	data := readTestdata(t, rel)
	return strings.TrimSpace(string(data))
}

// TestdataDir returns the repository testdata directory as seen from the
// calling package.
func TestdataDir(t *testing.T) string {
	t.Helper()
	for _, dir := range candidates("") {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	t.Fatalf("unable to locate testdata directory")
	return ""
}

func readTestdata(t *testing.T, rel string) []byte {
	t.Helper()
	for _, path := range candidates(rel) {
		if data, err := os.ReadFile(path); err == nil {
			return data
		}
	}
	t.Fatalf("unable to locate testdata file %s", rel)
	return nil
}

func candidates(rel string) []string {
	return []string{
		filepath.Join("testdata", rel),
		filepath.Join("..", "testdata", rel),
		filepath.Join("..", "..", "testdata", rel),
		filepath.Join("..", "..", "..", "testdata", rel),
	}
}
