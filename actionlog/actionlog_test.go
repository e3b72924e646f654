package actionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestOpenAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	for _, action := range []string{"REGISTER", "LOGIN"} {
		logger, err := Open(dir, "actions.log")
		if err != nil {
			t.Fatalf("Open() unexpected error: %v", err)
		}
		logger.Info("FINISH "+action, zap.String("result", "OK"))
		logger.Sync()
	}

	data, err := os.ReadFile(filepath.Join(dir, "actions.log"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), data)
	}
	for i, action := range []string{"FINISH REGISTER", "FINISH LOGIN"} {
		if !strings.Contains(lines[i], action) || !strings.Contains(lines[i], `"result": "OK"`) {
			t.Errorf("line %d = %q, want %q with result OK", i, lines[i], action)
		}
		if strings.HasPrefix(lines[i], "{") {
			t.Errorf("line %d is JSON, want console encoding: %q", i, lines[i])
		}
	}
}
