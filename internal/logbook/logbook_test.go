package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestLevelsAndPrintf(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", "session.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Printf("plan %s", "requested")
	book.Warn("slow planner")
	book.Error("planner down: %v", "refused")
	lines, total := book.Tail(10)
	if total != 3 {
		t.Fatalf("total lines = %d, want 3", total)
	}
	for idx, want := range []string{"INFO  plan requested", "WARN  slow planner", "ERROR planner down: refused"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %q", idx, lines[idx], want)
		}
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Printf("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil logbook tail = %v, %d", lines, total)
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook path = %q", book.Path())
	}
}
