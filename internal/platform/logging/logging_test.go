package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ogurasousui/hrms-attendance/internal/platform/config"
)

func TestNew_JSONHandlerRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("ignored")
	logger.Warn("slow request", "path", "/api/v1/attendance")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "slow request" || entry["path"] != "/api/v1/attendance" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNew_TextHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	logger.Debug("resolved employee", "employee_id", "EMP001")

	if !strings.Contains(buf.String(), "employee_id=EMP001") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}
}
