package repository

import (
	"context"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// EditEntry is an edit record with the editor name joined in.
type EditEntry struct {
	domain.EditRecord
	EditorName string
}

// EditHistoryRepository stores append-only audit entries.
type EditHistoryRepository interface {
	Append(ctx context.Context, record *domain.EditRecord) error
	ListByTransfer(ctx context.Context, transferID int64) ([]EditEntry, error)
}

type editHistoryRepository struct {
	db DBTX
}

// NewEditHistoryRepository builds the repository.
func NewEditHistoryRepository(db DBTX) EditHistoryRepository {
	return &editHistoryRepository{db: db}
}

func (r *editHistoryRepository) Append(ctx context.Context, record *domain.EditRecord) error {
	const query = `
        INSERT INTO edit_history (transfer_id, edited_at, editor_id, field_name, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		record.TransferID,
		record.EditedAt,
		record.EditorID,
		record.Field,
		record.OldValue,
		record.NewValue,
	).Scan(&record.ID)
}

func (r *editHistoryRepository) ListByTransfer(ctx context.Context, transferID int64) ([]EditEntry, error) {
	const query = `
        SELECT h.id, h.transfer_id, h.edited_at, h.editor_id, h.field_name, h.old_value, h.new_value, e.name
        FROM edit_history h
        JOIN employees e ON h.editor_id = e.id
        WHERE h.transfer_id=$1
        ORDER BY h.edited_at DESC`
	rows, err := r.db.Query(ctx, query, transferID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []EditEntry
	for rows.Next() {
		var entry EditEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TransferID,
			&entry.EditedAt,
			&entry.EditorID,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.EditorName,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
