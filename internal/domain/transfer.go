package domain

import "time"

// TransferStatus enumerates lifecycle states for transfers.
type TransferStatus string

const (
	TransferStatusRequested TransferStatus = "requested"
	TransferStatusConfirmed TransferStatus = "confirmed"
	TransferStatusDelivered TransferStatus = "delivered"
)

// EditableField names a transfer field that may be edited after creation.
type EditableField string

const (
	FieldSenderName     EditableField = "sender_name"
	FieldRecipientName  EditableField = "recipient_name"
	FieldRecipientPhone EditableField = "recipient_phone"
	FieldAmount         EditableField = "amount"
)

// EditableFields is the allow-list consulted before any edit.
var EditableFields = map[EditableField]struct{}{
	FieldSenderName:     {},
	FieldRecipientName:  {},
	FieldRecipientPhone: {},
	FieldAmount:         {},
}

// IsEditableField reports whether the field may be edited.
func IsEditableField(field EditableField) bool {
	_, ok := EditableFields[field]
	return ok
}

// Transfer is the aggregate for money-transfer requests.
type Transfer struct {
	ID             int64
	RequestedAt    time.Time
	SenderName     string
	RecipientName  string
	RecipientPhone string
	Amount         float64
	ConfirmedAt    *time.Time
	ConfirmerID    *int64
	RegistrarID    int64
	Status         TransferStatus
}
