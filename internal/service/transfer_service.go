package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/events"
	"github.com/spec-kit/transfer-service/internal/repository"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

// TransferService coordinates the transfer lifecycle: creation, delivery
// with profit distribution, and audited field edits.
type TransferService struct {
	uow         repository.UnitOfWork
	transfers   repository.TransferRepository
	editHistory repository.EditHistoryRepository
	distributor *ProfitDistributor
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// TransferDependencies bundles collaborators for the transfer service.
type TransferDependencies struct {
	UnitOfWork      repository.UnitOfWork
	TransferRepo    repository.TransferRepository
	EditHistoryRepo repository.EditHistoryRepository
	Distributor     *ProfitDistributor
	Dispatcher      events.Dispatcher
	Now             func() time.Time
}

// TransferCreateInput describes transfer creation payload.
type TransferCreateInput struct {
	SenderName     string
	RecipientName  string
	RecipientPhone string
	Amount         float64
}

// NewTransferService constructs the service.
func NewTransferService(deps TransferDependencies) *TransferService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TransferService{
		uow:         deps.UnitOfWork,
		transfers:   deps.TransferRepo,
		editHistory: deps.EditHistoryRepo,
		distributor: deps.Distributor,
		dispatcher:  deps.Dispatcher,
		now:         now,
	}
}

// CreateTransfer registers a new transfer request for a registrar.
func (s *TransferService) CreateTransfer(ctx context.Context, registrar *domain.Employee, input TransferCreateInput) (*domain.Transfer, error) {
	if registrar == nil {
		return nil, apperrors.NewUnauthorized("registrar required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewValidationError("amount must be greater than zero", nil)
	}
	sender := strings.TrimSpace(input.SenderName)
	recipient := strings.TrimSpace(input.RecipientName)
	phone := strings.TrimSpace(input.RecipientPhone)
	if sender == "" || recipient == "" || phone == "" {
		return nil, apperrors.NewValidationError("sender_name, recipient_name, recipient_phone required", nil)
	}

	transfer := &domain.Transfer{
		RequestedAt:    s.now(),
		SenderName:     sender,
		RecipientName:  recipient,
		RecipientPhone: phone,
		Amount:         input.Amount,
		RegistrarID:    registrar.ID,
		Status:         domain.TransferStatusRequested,
	}
	if err := s.transfers.Create(ctx, transfer); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventTransferCreated,
		TransferID: transfer.ID,
		Actor:      employeeActor(registrar),
		Payload: events.TransferCreatedPayload{
			SenderName:    transfer.SenderName,
			RecipientName: transfer.RecipientName,
			Amount:        transfer.Amount,
		},
	})
	return transfer, nil
}

// MarkDelivered transitions a requested transfer to delivered and
// distributes profit in the same transaction. Delivery of a transfer not in
// requested status is rejected without mutation.
func (s *TransferService) MarkDelivered(ctx context.Context, confirmer *domain.Employee, transferID int64) (*domain.Transfer, error) {
	if confirmer == nil {
		return nil, apperrors.NewUnauthorized("confirmer required")
	}

	var (
		delivered     *domain.Transfer
		profitPayload *events.ProfitDistributedPayload
	)
	deliveredAt := s.now()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, r repository.TxRepositories) error {
		transfer, err := r.Transfers.GetByID(ctx, transferID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("transfer", map[string]any{"transfer_id": transferID})
			}
			return err
		}
		if transfer.Status != domain.TransferStatusRequested {
			return apperrors.NewConflict("transfer is not in requested status", map[string]any{
				"transfer_id": transferID,
				"status":      transfer.Status,
			})
		}

		ok, err := r.Transfers.MarkDelivered(ctx, transferID, confirmer.ID, deliveredAt)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewConflict("transfer is not in requested status", map[string]any{
				"transfer_id": transferID,
			})
		}

		profitPayload, err = s.distributor.Distribute(ctx, r, transferID, deliveredAt)
		if err != nil {
			return err
		}

		transfer.Status = domain.TransferStatusDelivered
		transfer.ConfirmedAt = &deliveredAt
		transfer.ConfirmerID = &confirmer.ID
		delivered = transfer
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventTransferDelivered,
		TransferID: transferID,
		Actor:      employeeActor(confirmer),
		Payload: events.TransferDeliveredPayload{
			ConfirmerID: confirmer.ID,
			DeliveredAt: deliveredAt,
			RequestedAt: delivered.RequestedAt,
		},
	})
	if profitPayload != nil {
		s.publishEvent(ctx, events.Event{
			Type:       events.EventProfitDistributed,
			TransferID: transferID,
			Actor:      employeeActor(confirmer),
			Payload:    *profitPayload,
		})
	}
	return delivered, nil
}

// EditField updates one editable transfer field and appends an audit record
// with the before/after values, committed as a single transaction.
func (s *TransferService) EditField(ctx context.Context, editor *domain.Employee, transferID int64, field domain.EditableField, newValue string) (*domain.EditRecord, error) {
	if editor == nil {
		return nil, apperrors.NewUnauthorized("editor required")
	}
	if !domain.IsEditableField(field) {
		return nil, apperrors.NewValidationError("unsupported field", map[string]any{"field": field})
	}

	value, newText, err := coerceFieldValue(field, newValue)
	if err != nil {
		return nil, err
	}

	record := &domain.EditRecord{
		TransferID: transferID,
		EditedAt:   s.now(),
		EditorID:   editor.ID,
		Field:      field,
		NewValue:   newText,
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, r repository.TxRepositories) error {
		oldValue, err := r.Transfers.FieldValue(ctx, transferID, field)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("transfer", map[string]any{"transfer_id": transferID})
			}
			return err
		}

		ok, err := r.Transfers.UpdateField(ctx, transferID, field, value)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.NewNotFound("transfer", map[string]any{"transfer_id": transferID})
		}

		record.OldValue = oldValue
		return r.EditHistory.Append(ctx, record)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventTransferEdited,
		TransferID: transferID,
		Actor:      employeeActor(editor),
		Payload: events.TransferEditedPayload{
			Field:    field,
			OldValue: record.OldValue,
			NewValue: record.NewValue,
		},
	})
	return record, nil
}

// ListTransfers returns transfers scoped by the employee's role: all for
// administrators, own registrations for registrars, and every transfer
// still in requested status for confirmers.
func (s *TransferService) ListTransfers(ctx context.Context, employee *domain.Employee) ([]repository.TransferListing, error) {
	if employee == nil {
		return nil, apperrors.NewUnauthorized("employee required")
	}
	switch employee.Role {
	case domain.RoleAdministrator:
		listings, err := s.transfers.ListAll(ctx)
		return listings, apperrors.MapError(err)
	case domain.RoleRegistrar:
		listings, err := s.transfers.ListByRegistrar(ctx, employee.ID)
		return listings, apperrors.MapError(err)
	case domain.RoleConfirmer:
		// Pending transfers are a shared queue: every confirmer sees all of
		// them, the caller's id does not narrow the listing.
		listings, err := s.transfers.ListRequested(ctx)
		return listings, apperrors.MapError(err)
	}
	return nil, apperrors.NewForbidden("role cannot list transfers")
}

// EditHistory returns a transfer's edit records, newest first.
func (s *TransferService) EditHistory(ctx context.Context, transferID int64) ([]repository.EditEntry, error) {
	entries, err := s.editHistory.ListByTransfer(ctx, transferID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func coerceFieldValue(field domain.EditableField, newValue string) (any, string, error) {
	if field == domain.FieldAmount {
		amount, err := strconv.ParseFloat(strings.TrimSpace(newValue), 64)
		if err != nil || amount <= 0 {
			return nil, "", apperrors.NewValidationError("amount must be a number greater than zero", nil)
		}
		return amount, strconv.FormatFloat(amount, 'f', -1, 64), nil
	}
	trimmed := strings.TrimSpace(newValue)
	if trimmed == "" {
		return nil, "", apperrors.NewValidationError("value required", map[string]any{"field": field})
	}
	return trimmed, trimmed, nil
}

func (s *TransferService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func employeeActor(employee *domain.Employee) events.Actor {
	return events.Actor{
		EmployeeID: employee.ID,
		Role:       employee.Role,
	}
}
