// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation represents a single row-level action taken while cleaning a batch
type CleaningOperation struct {
	RunID         string    `db:"run_id"`         // Training run that produced the operation
	Source        string    `db:"source"`         // File path or qualified table name
	Line          int       `db:"line"`           // 1-based data line in the source
	ColumnName    string    `db:"column_name"`    // Column that triggered the action
	OriginalValue string    `db:"original_value"` // Raw text of the offending value
	Operation     string    `db:"operation"`      // e.g. "row_dropped"
	Reason        string    `db:"reason"`         // e.g. "sentinel_country"
	CleanedAt     time.Time `db:"cleaned_at"`
}
