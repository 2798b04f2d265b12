// package repositories provides the persistence layer for snapshots and
// scheduled tasks.
//
// Every query is filtered by the owning user id: records are a strict
// multi-tenant partition and no cross-owner read or write path exists.
// Snapshots are immutable once written (create, read, delete only); tasks
// support the full lifecycle.
package repositories

import (
	"database/sql"
	"time"
)

// nullableTime converts a *time.Time into a driver-friendly value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// timePtr converts a scanned [sql.NullTime] back into a *time.Time.
func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}
