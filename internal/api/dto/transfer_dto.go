package dto

import (
	"time"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// CreateTransferRequest payload.
type CreateTransferRequest struct {
	SenderName     string  `json:"sender_name"`
	RecipientName  string  `json:"recipient_name"`
	RecipientPhone string  `json:"recipient_phone"`
	Amount         float64 `json:"amount"`
}

// EditTransferRequest payload for field edits.
type EditTransferRequest struct {
	Field    domain.EditableField `json:"field"`
	NewValue string               `json:"new_value"`
}

// TransferResponse representation with participant names joined in.
type TransferResponse struct {
	ID             int64                 `json:"id"`
	RequestedAt    time.Time             `json:"requested_at"`
	SenderName     string                `json:"sender_name"`
	RecipientName  string                `json:"recipient_name"`
	RecipientPhone string                `json:"recipient_phone"`
	Amount         float64               `json:"amount"`
	ConfirmedAt    *time.Time            `json:"confirmed_at"`
	RegistrarID    int64                 `json:"registrar_id"`
	RegistrarName  string                `json:"registrar_name,omitempty"`
	ConfirmerID    *int64                `json:"confirmer_id"`
	ConfirmerName  *string               `json:"confirmer_name,omitempty"`
	Status         domain.TransferStatus `json:"status"`
}

// EditRecordResponse is one audit trail entry.
type EditRecordResponse struct {
	ID         int64                `json:"id"`
	TransferID int64                `json:"transfer_id"`
	EditedAt   time.Time            `json:"edited_at"`
	EditorID   int64                `json:"editor_id"`
	EditorName string               `json:"editor_name,omitempty"`
	Field      domain.EditableField `json:"field"`
	OldValue   string               `json:"old_value"`
	NewValue   string               `json:"new_value"`
}
