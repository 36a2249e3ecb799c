package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTextOnly(t *testing.T) {
	var buf bytes.Buffer

	log, closer, err := New(&buf, Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer closer()

	log.Debug("hidden")
	log.Info("shown", "node", 3)

	have := buf.String()
	if strings.Contains(have, "hidden") {
		t.Fatalf("debug record written without debug mode:\n%s", have)
	}
	if !strings.Contains(have, "msg=shown") || !strings.Contains(have, "node=3") {
		t.Fatalf("unexpected log output:\n%s", have)
	}
}

func TestFanout(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "logs", "intcode.json")

	log, closer, err := New(&buf, Config{Debug: true, File: file})
	if err != nil {
		t.Fatal(err)
	}

	log.Debug("halted", "cycles", 42)

	if err := closer(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "cycles=42") {
		t.Fatalf("text handler missed the record:\n%s", buf.String())
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	var rec map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("invalid JSON record %q: %v", data, err)
	}
	if rec["msg"] != "halted" || rec["cycles"] != float64(42) {
		t.Fatalf("unexpected JSON record: %v", rec)
	}
}
