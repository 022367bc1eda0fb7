package database

import (
	"time"
)

// PruneDowntimes deletes windows that ended before olderThan
func (db *DB) PruneDowntimes(olderThan time.Time) (int64, error) {
	res, err := db.Exec(`DELETE FROM current_downtime WHERE "end" < ?`, olderThan.Unix())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	// Vacuum to reclaim space (run occasionally)
	if n > 0 && time.Now().Day() == 1 { // Run on first day of month
		_, err = db.Exec("VACUUM")
	}
	return n, err
}
