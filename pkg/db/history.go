package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/actual-spliit/syncd/pkg/syncer"
)

// HistoryRecord represents a stored mirror history row.
type HistoryRecord struct {
	ID         int64
	MirrorType string
	SourceID   string
	Title      string
	Amount     int64
	Notes      string
	EntryDate  string
	CreatedAt  time.Time
}

// MirrorHistory manages mirror history operations. It implements
// syncer.HistoryRecorder.
type MirrorHistory struct {
	conn *Connection
}

// NewMirrorHistory creates a new MirrorHistory instance.
func NewMirrorHistory(conn *Connection) *MirrorHistory {
	return &MirrorHistory{conn: conn}
}

// RecordMirror stores one created mirror entry.
func (h *MirrorHistory) RecordMirror(record syncer.MirrorRecord) error {
	query := `
		INSERT INTO mirror_history (mirror_type, source_id, title, amount, notes, entry_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := h.conn.Exec(query,
		record.MirrorType,
		record.SourceID,
		record.Title,
		record.Amount,
		record.Notes,
		record.EntryDate,
	)

	if err != nil {
		return fmt.Errorf("failed to record mirror: %w", err)
	}

	return nil
}

// GetRecordsByType retrieves all mirror records of a given type,
// newest entry date first.
func (h *MirrorHistory) GetRecordsByType(mirrorType string) ([]HistoryRecord, error) {
	query := `
		SELECT id, mirror_type, source_id, title, amount, notes, entry_date, created_at
		FROM mirror_history
		WHERE mirror_type = ?
		ORDER BY entry_date DESC
	`

	rows, err := h.conn.Query(query, mirrorType)
	if err != nil {
		return nil, fmt.Errorf("failed to get mirror records: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var record HistoryRecord
		if err := rows.Scan(
			&record.ID,
			&record.MirrorType,
			&record.SourceID,
			&record.Title,
			&record.Amount,
			&record.Notes,
			&record.EntryDate,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan mirror record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Stats represents mirror history statistics.
type Stats struct {
	TotalDeposits      int
	TotalSpliitPushes  int
	TotalSpliitMirrors int
	LastMirror         sql.NullString
}

// GetStats retrieves mirror statistics.
func (h *MirrorHistory) GetStats() (*Stats, error) {
	var stats Stats

	counts := []struct {
		mirrorType string
		dest       *int
	}{
		{syncer.MirrorTypeDeposit, &stats.TotalDeposits},
		{syncer.MirrorTypeSpliitPush, &stats.TotalSpliitPushes},
		{syncer.MirrorTypeSpliitMirror, &stats.TotalSpliitMirrors},
	}
	for _, c := range counts {
		err := h.conn.QueryRow(`SELECT COUNT(*) FROM mirror_history WHERE mirror_type = ?`, c.mirrorType).Scan(c.dest)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s mirrors: %w", c.mirrorType, err)
		}
	}

	err := h.conn.QueryRow(`SELECT MAX(created_at) FROM mirror_history`).Scan(&stats.LastMirror)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last mirror time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value. Returns an empty string when the
// key does not exist.
func (h *MirrorHistory) GetMetadata(key string) (string, error) {
	var value string
	err := h.conn.QueryRow(`SELECT value FROM sync_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata stores a metadata value.
func (h *MirrorHistory) SetMetadata(key, value string) error {
	query := `
		INSERT INTO sync_metadata (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := h.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}
