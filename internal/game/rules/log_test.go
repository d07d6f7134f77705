package rules

import (
	"fmt"
	"testing"
)

func TestGameLogAppendAndSnapshot(t *testing.T) {
	log := NewGameLog(10)

	log.Append(Entry{Type: "azione", Message: "Alba pesca una carta"})
	log.Append(Entry{Type: "fase", Message: "tocca a Bruno"})

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "Alba pesca una carta" {
		t.Fatalf("unexpected first entry: %q", entries[0].Message)
	}
	if entries[0].Time.IsZero() {
		t.Fatal("expected append to stamp a time")
	}
}

func TestGameLogEvictsOldest(t *testing.T) {
	log := NewGameLog(3)

	for i := 0; i < 5; i++ {
		log.Append(Entry{Message: fmt.Sprintf("entry %d", i)})
	}

	if log.Len() != 3 {
		t.Fatalf("expected 3 retained entries, got %d", log.Len())
	}
	entries := log.Entries()
	if entries[0].Message != "entry 2" {
		t.Fatalf("expected oldest retained to be entry 2, got %q", entries[0].Message)
	}
	if entries[2].Message != "entry 4" {
		t.Fatalf("expected newest to be entry 4, got %q", entries[2].Message)
	}
}

func TestGameLogSnapshotIsCopy(t *testing.T) {
	log := NewGameLog(10)
	log.Append(Entry{Message: "prima"})

	snapshot := log.Entries()
	snapshot[0].Message = "mutated"

	if log.Entries()[0].Message != "prima" {
		t.Fatal("expected snapshot mutation not to affect the log")
	}
}

func TestGameLogDefaultCap(t *testing.T) {
	log := NewGameLog(0)
	for i := 0; i < DefaultLogCap+20; i++ {
		log.Append(Entry{Message: "x"})
	}
	if log.Len() != DefaultLogCap {
		t.Fatalf("expected %d retained entries, got %d", DefaultLogCap, log.Len())
	}
}
