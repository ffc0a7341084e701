package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestPadID(t *testing.T) {
	tc := []struct {
		name string
		id   string
		want string
	}{
		{name: "single digit", id: "3", want: "03"},
		{name: "two digits", id: "12", want: "12"},
		{name: "three digits", id: "123", want: "123"},
		{name: "non numeric", id: "abc", want: "abc"},
		{name: "empty", id: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := PadID(tt.id); got != tt.want {
				t.Errorf("PadID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestLastSegment(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain filename", in: "point_01.jpg", want: "point_01.jpg"},
		{name: "relative path", in: "static/img/point_01.jpg", want: "point_01.jpg"},
		{name: "url with query", in: "http://host/static/img/a.jpg?t=123", want: "a.jpg"},
		{name: "trailing slash", in: "/images/dir/", want: "dir"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastSegment(tt.in); got != tt.want {
				t.Errorf("LastSegment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters lower levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("ParseLogLevel", func(t *testing.T) {
		if got := ParseLogLevel("DEBUG"); got != log.DebugLevel {
			t.Errorf("expected debug level, got %v", got)
		}
		if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
			t.Errorf("expected info fallback, got %v", got)
		}
	})

	t.Run("NewFileLogger creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("written")
		assertFileExists(t, path)
	})

	t.Run("NewFileLogger rejects empty path", func(t *testing.T) {
		if _, err := NewFileLogger(""); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %d", len(a))
	}
}
