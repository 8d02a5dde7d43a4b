package events

import (
	"time"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTransferCreated   EventType = "transfer_created"
	EventTransferDelivered EventType = "transfer_delivered"
	EventTransferEdited    EventType = "transfer_edited"
	EventProfitDistributed EventType = "profit_distributed"
)

// Actor encapsulates the employee acting on a transfer.
type Actor struct {
	EmployeeID int64               `json:"employee_id"`
	Role       domain.EmployeeRole `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	TransferID int64       `json:"transfer_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// TransferCreatedPayload payload.
type TransferCreatedPayload struct {
	SenderName    string  `json:"sender_name"`
	RecipientName string  `json:"recipient_name"`
	Amount        float64 `json:"amount"`
}

// TransferDeliveredPayload payload.
type TransferDeliveredPayload struct {
	ConfirmerID int64     `json:"confirmer_id"`
	DeliveredAt time.Time `json:"delivered_at"`
	RequestedAt time.Time `json:"requested_at"`
}

// TransferEditedPayload payload.
type TransferEditedPayload struct {
	Field    domain.EditableField `json:"field"`
	OldValue string               `json:"old_value"`
	NewValue string               `json:"new_value"`
}

// ProfitShare is one beneficiary line of a distribution.
type ProfitShare struct {
	EmployeeID int64   `json:"employee_id"`
	Share      float64 `json:"share"`
}

// ProfitDistributedPayload payload.
type ProfitDistributedPayload struct {
	GeneralProfit float64       `json:"general_profit"`
	Month         int           `json:"month"`
	Year          int           `json:"year"`
	Shares        []ProfitShare `json:"shares"`
}
