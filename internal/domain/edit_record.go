package domain

import "time"

// EditRecord is an immutable audit trail entry for a transfer field edit.
// Records are append-only; no update or delete path exists.
type EditRecord struct {
	ID         int64
	TransferID int64
	EditedAt   time.Time
	EditorID   int64
	Field      EditableField
	OldValue   string
	NewValue   string
}
