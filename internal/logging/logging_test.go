package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, log.WarnLevel)

	logger.Debug("hidden")
	logger.Warn("shown", "name", "gut")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "name=gut") {
		t.Errorf("output = %q, want warning with fields", out)
	}
}

func TestWithLogger(t *testing.T) {
	logger := Discard()
	ctx := WithLogger(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the stored logger")
	}
	if got := FromContext(context.Background()); got != log.Default() {
		t.Error("FromContext should fall back to the default logger")
	}
}
