// ABOUTME: Small conversion helpers shared by the SQLite stores
// ABOUTME: Maps empty strings and zero times to SQL NULL and back
package sqlite

import (
	"database/sql"
	"time"
)

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
