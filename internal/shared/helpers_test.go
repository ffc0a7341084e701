package shared

import (
	"os"
	"testing"
)

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file does not exist: %s (%v)", path, err)
	}
}
