package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogMsg_LevelsAndFormatting(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	LogMsg(LogWarning, "provider %s failed: %d", "jikan", 503)
	LogMsg(LogError, "boom")
	LogMsg(LogInfo, "ok")

	out := buf.String()
	for _, want := range []string{
		"level=WARN",
		`msg="provider jikan failed: 503"`,
		"level=ERROR",
		"msg=boom",
		"level=INFO",
		"app=amsvault",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestInitLogger_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := InitLogger(dir); err != nil {
		t.Fatalf("InitLogger(): %v", err)
	}
	t.Cleanup(func() { SetOutput(os.Stderr) })

	data, err := os.ReadFile(filepath.Join(dir, "logs", AppName+".log"))
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}
	if !strings.Contains(string(data), "Application started") {
		t.Fatalf("log file = %q, want startup line", data)
	}
}
