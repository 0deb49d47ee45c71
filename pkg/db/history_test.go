package db

import (
	"path/filepath"
	"testing"

	"github.com/actual-spliit/syncd/pkg/syncer"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRecordMirrorAndStats(t *testing.T) {
	history := NewMirrorHistory(openTestDB(t))

	records := []syncer.MirrorRecord{
		{MirrorType: syncer.MirrorTypeDeposit, SourceID: "t1", Title: "Dinner", Amount: 3000, Notes: "Dinner #auto", EntryDate: "2024-03-01"},
		{MirrorType: syncer.MirrorTypeSpliitPush, SourceID: "t1", Title: "Dinner", Amount: 6000, EntryDate: "2024-03-01"},
		{MirrorType: syncer.MirrorTypeSpliitMirror, SourceID: "e1", Title: "Groceries", Amount: -4000, Notes: "Groceries (paid by Sam) #spliit", EntryDate: "2024-03-02"},
	}
	for _, rec := range records {
		if err := history.RecordMirror(rec); err != nil {
			t.Fatalf("RecordMirror(%s) error: %v", rec.SourceID, err)
		}
	}

	stats, err := history.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error: %v", err)
	}
	if stats.TotalDeposits != 1 || stats.TotalSpliitPushes != 1 || stats.TotalSpliitMirrors != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if !stats.LastMirror.Valid {
		t.Error("LastMirror not set")
	}

	deposits, err := history.GetRecordsByType(syncer.MirrorTypeDeposit)
	if err != nil {
		t.Fatalf("GetRecordsByType() error: %v", err)
	}
	if len(deposits) != 1 || deposits[0].Notes != "Dinner #auto" {
		t.Errorf("unexpected deposit records: %+v", deposits)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	history := NewMirrorHistory(openTestDB(t))

	if value, err := history.GetMetadata("last_run"); err != nil || value != "" {
		t.Fatalf("GetMetadata(missing) = %q, %v", value, err)
	}

	if err := history.SetMetadata("last_run", "2024-03-01T00:00:00Z"); err != nil {
		t.Fatalf("SetMetadata() error: %v", err)
	}
	if err := history.SetMetadata("last_run", "2024-03-02T00:00:00Z"); err != nil {
		t.Fatalf("SetMetadata(update) error: %v", err)
	}

	value, err := history.GetMetadata("last_run")
	if err != nil {
		t.Fatalf("GetMetadata() error: %v", err)
	}
	if value != "2024-03-02T00:00:00Z" {
		t.Errorf("value = %q", value)
	}
}
