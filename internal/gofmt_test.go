package internal

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestGofmt walks every Go source file in the module and checks it
// against go/format. Run gofmt -w ./internal/ main.go to fix findings.
func TestGofmt(t *testing.T) {
	root := repoRoot(t)

	var stale []string
	checkFile := func(path string) error {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		formatted, err := format.Source(src)
		if err != nil {
			// Leave unparsable files to the compiler.
			return nil
		}
		if !bytes.Equal(src, formatted) {
			rel, _ := filepath.Rel(root, path)
			stale = append(stale, rel)
		}
		return nil
	}

	if err := checkFile(filepath.Join(root, "main.go")); err != nil {
		t.Fatalf("failed to check main.go: %v", err)
	}
	err := filepath.Walk(filepath.Join(root, "internal"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") || strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		return checkFile(path)
	})
	if err != nil {
		t.Fatalf("failed to walk internal/: %v", err)
	}

	for _, f := range stale {
		t.Errorf("not gofmt formatted: %s", f)
	}
}
