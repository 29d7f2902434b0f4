package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSink_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "decision.json")
	s := NewFileSink(path)

	values := map[string]string{
		"requires_human": "true",
		"intent_type":    "correction",
	}
	if err := s.Export(context.Background(), values); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read decision file: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decision file is not valid JSON: %v", err)
	}
	if got["requires_human"] != "true" {
		t.Errorf("expected requires_human=true, got %q", got["requires_human"])
	}
}

func TestFileSink_ExportReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decision.json")
	s := NewFileSink(path)
	ctx := context.Background()

	if err := s.Export(ctx, map[string]string{"requires_human": "false"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if err := s.Export(ctx, map[string]string{"requires_human": "true"}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read decision file: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["requires_human"] != "true" {
		t.Error("expected the later export to win")
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be renamed away")
	}
}

func TestFileSink_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decision.json")
	s := NewFileSink(path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Export(ctx, map[string]string{"a": "b"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be written")
	}
}
