package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one row of the append-only audit log. Entries are
// written by a trigger in the store whenever a task field changes;
// this service only ever reads them.
type HistoryEntry struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TaskID       uuid.UUID `json:"task_id" db:"task_id"`
	FieldChanged string    `json:"field_changed" db:"field_changed"`
	OldValue     *string   `json:"old_value,omitempty" db:"old_value"`
	NewValue     *string   `json:"new_value,omitempty" db:"new_value"`
	ChangedBy    uuid.UUID `json:"changed_by" db:"changed_by"`
	ChangedAt    time.Time `json:"changed_at" db:"changed_at"`
}
