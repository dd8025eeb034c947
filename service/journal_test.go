package service

import (
	"context"
	"fmt"
	"testing"

	"tvbridge/config"
	"tvbridge/models"
)

func newTestJournal(t *testing.T, size int) *Journal {
	t.Helper()
	db, err := config.InitDatabase()
	if err != nil {
		t.Fatalf("InitDatabase() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewJournal(db, size)
}

func TestJournalRecordAndRecent(t *testing.T) {
	j := newTestJournal(t, 10)

	for i := 0; i < 3; i++ {
		err := j.Record(models.HistoryEntry{
			ID:        fmt.Sprintf("id-%d", i),
			Source:    "http",
			Command:   models.Command{Type: "key", Code: fmt.Sprintf("KEY_%d", i)},
			Success:   i%2 == 0,
			Target:    "emulator-5556",
			Timestamp: int64(1000 + i),
		})
		if err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	entries, err := j.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(entries))
	}
	if entries[0].ID != "id-2" || entries[1].ID != "id-1" {
		t.Errorf("unexpected order: %s, %s", entries[0].ID, entries[1].ID)
	}
	if !entries[0].Success || entries[1].Success {
		t.Errorf("success flags not round-tripped: %+v", entries)
	}
	if entries[0].Command.Code != "KEY_2" || entries[0].Target != "emulator-5556" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestJournalTrimsToSize(t *testing.T) {
	j := newTestJournal(t, 3)

	for i := 0; i < 5; i++ {
		if err := j.Record(models.HistoryEntry{ID: fmt.Sprintf("id-%d", i), Source: "ws",
			Command: models.Command{Type: "text", Text: "x"}}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := j.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after trim, got %d", len(entries))
	}
	if entries[2].ID != "id-2" {
		t.Errorf("oldest kept entry = %s, want id-2", entries[2].ID)
	}
}

func TestJournalRecentZeroLimit(t *testing.T) {
	j := newTestJournal(t, 3)
	entries, err := j.Recent(0)
	if err != nil || len(entries) != 0 {
		t.Errorf("Recent(0) = %v, %v", entries, err)
	}
}

func TestDispatchRecordsToJournal(t *testing.T) {
	j := newTestJournal(t, 10)
	d := newTestDispatcher(nil, &fakeController{}).WithJournal(j)

	d.Dispatch(context.Background(), "ws", models.Command{Type: "launch", Package: "com.example.app"})

	entries, err := j.Recent(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Success || e.Source != "ws" || e.Command.Package != "com.example.app" || e.Detail == "" {
		t.Errorf("unexpected entry: %+v", e)
	}
}
