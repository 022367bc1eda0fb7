package database

import (
	"fmt"
	"time"

	"connectivity-monitor/internal/downtime"
	"connectivity-monitor/internal/models"
)

var _ models.Database = (*DB)(nil)

// SaveDowntime stores a closed downtime window
func (db *DB) SaveDowntime(w downtime.Window) error {
	start, end, err := w.Epochs()
	if err != nil {
		return err
	}
	return db.InsertDowntime(start, end)
}

// InsertDowntime stores a closed window given as unix seconds
func (db *DB) InsertDowntime(start, end int64) error {
	query := `INSERT INTO current_downtime ("start", "end") VALUES (?, ?)`
	if _, err := db.Exec(query, start, end); err != nil {
		return fmt.Errorf("insert downtime: %w", err)
	}
	return nil
}

// GetDowntimes retrieves the most recent closed windows, newest first
func (db *DB) GetDowntimes(limit int) ([]models.Downtime, error) {
	query := `
        SELECT id, "start", "end"
        FROM current_downtime
        ORDER BY "start" DESC, id DESC
        LIMIT ?
    `

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downtimes []models.Downtime
	for rows.Next() {
		var id, start, end int64
		if err := rows.Scan(&id, &start, &end); err != nil {
			continue
		}
		d := models.Downtime{
			ID:    id,
			Start: time.Unix(start, 0),
			End:   time.Unix(end, 0),
		}
		d.Duration = downtime.FormatDuration(d.End.Sub(d.Start))
		downtimes = append(downtimes, d)
	}

	return downtimes, rows.Err()
}
