package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/events"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

var (
	testAdmin     = domain.Employee{ID: 1, Name: "Marta", Role: domain.RoleAdministrator, ProfitPercentage: 30}
	testRegistrar = domain.Employee{ID: 2, Name: "Pedro", Role: domain.RoleRegistrar, ProfitPercentage: 20}
	testConfirmer = domain.Employee{ID: 3, Name: "Sofia", Role: domain.RoleConfirmer, ProfitPercentage: 10}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("error code = %s, want %s (%v)", domainErr.Code, code, err)
	}
}

func TestCreateTransfer(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(fixedClock(now))

	transfer, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName:     "Ana",
		RecipientName:  "Luis",
		RecipientPhone: "555-0100",
		Amount:         1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	if transfer.ID == 0 {
		t.Error("transfer id not assigned")
	}
	if transfer.Status != domain.TransferStatusRequested {
		t.Errorf("status = %s, want requested", transfer.Status)
	}
	if !transfer.RequestedAt.Equal(now) {
		t.Errorf("requested_at = %v, want %v", transfer.RequestedAt, now)
	}
	if transfer.ConfirmedAt != nil || transfer.ConfirmerID != nil {
		t.Error("confirmation fields must be null at creation")
	}
	if got := len(f.dispatcher.byType(events.EventTransferCreated)); got != 1 {
		t.Errorf("transfer_created events = %d, want 1", got)
	}
}

func TestCreateTransferRejectsInvalidInput(t *testing.T) {
	f := newLedgerFixture(testRegistrar)
	svc := f.transferService(nil)

	tests := []struct {
		name  string
		input TransferCreateInput
	}{
		{"zero amount", TransferCreateInput{SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555", Amount: 0}},
		{"negative amount", TransferCreateInput{SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555", Amount: -10}},
		{"empty sender", TransferCreateInput{RecipientName: "Luis", RecipientPhone: "555", Amount: 100}},
		{"empty recipient", TransferCreateInput{SenderName: "Ana", RecipientPhone: "555", Amount: 100}},
		{"empty phone", TransferCreateInput{SenderName: "Ana", RecipientName: "Luis", Amount: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransfer(context.Background(), &testRegistrar, tt.input)
			assertErrCode(t, err, "VALIDATION_FAILED")
		})
	}
	if len(f.transfers.transfers) != 0 {
		t.Errorf("transfers persisted = %d, want 0", len(f.transfers.transfers))
	}
}

func TestMarkDelivered(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(fixedClock(now))

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	delivered, err := svc.MarkDelivered(context.Background(), &testConfirmer, created.ID)
	if err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}
	if delivered.Status != domain.TransferStatusDelivered {
		t.Errorf("status = %s, want delivered", delivered.Status)
	}
	if delivered.ConfirmedAt == nil || !delivered.ConfirmedAt.Equal(now) {
		t.Errorf("confirmed_at = %v, want %v", delivered.ConfirmedAt, now)
	}
	if delivered.ConfirmerID == nil || *delivered.ConfirmerID != testConfirmer.ID {
		t.Errorf("confirmer_id = %v, want %d", delivered.ConfirmerID, testConfirmer.ID)
	}

	// Distribution ran in the same operation.
	if row := f.accruals.rows[accrualKey{testRegistrar.ID, 3, 2025}]; row == nil {
		t.Error("registrar accrual missing after delivery")
	}
	if got := len(f.dispatcher.byType(events.EventProfitDistributed)); got != 1 {
		t.Errorf("profit_distributed events = %d, want 1", got)
	}
}

func TestMarkDeliveredTwiceAccruesOnce(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(fixedClock(now))

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	if _, err := svc.MarkDelivered(context.Background(), &testConfirmer, created.ID); err != nil {
		t.Fatalf("first MarkDelivered() error = %v", err)
	}

	_, err = svc.MarkDelivered(context.Background(), &testConfirmer, created.ID)
	assertErrCode(t, err, "CONFLICT")

	row := f.accruals.rows[accrualKey{testRegistrar.ID, 3, 2025}]
	if row == nil {
		t.Fatal("registrar accrual missing")
	}
	if !almostEqual(row.Personal, 20) {
		t.Errorf("registrar personal = %v, want 20 (accrued once)", row.Personal)
	}
}

func TestMarkDeliveredAbortsWhenAccrualFails(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(fixedClock(now))

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	f.accruals.accrueErr = errors.New("connection reset")

	if _, err := svc.MarkDelivered(context.Background(), &testConfirmer, created.ID); err == nil {
		t.Fatal("MarkDelivered() error = nil, want accrual failure surfaced")
	}
	if len(f.accruals.rows) != 0 {
		t.Errorf("accrual rows = %d, want 0", len(f.accruals.rows))
	}
	if got := len(f.dispatcher.byType(events.EventTransferDelivered)); got != 0 {
		t.Errorf("transfer_delivered events = %d, want 0 after failed delivery", got)
	}
	if got := len(f.dispatcher.byType(events.EventProfitDistributed)); got != 0 {
		t.Errorf("profit_distributed events = %d, want 0 after failed delivery", got)
	}
}

func TestMarkDeliveredAbortsWhenPercentageLookupFails(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(fixedClock(now))

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	f.employees.getErr = errors.New("connection reset")

	if _, err := svc.MarkDelivered(context.Background(), &testConfirmer, created.ID); err == nil {
		t.Fatal("MarkDelivered() error = nil, want lookup failure surfaced")
	}
	if len(f.accruals.rows) != 0 {
		t.Errorf("accrual rows = %d, want 0 (no zeroed shares committed)", len(f.accruals.rows))
	}
	if got := len(f.dispatcher.byType(events.EventTransferDelivered)); got != 0 {
		t.Errorf("transfer_delivered events = %d, want 0 after failed delivery", got)
	}
}

func TestMarkDeliveredUnknownTransfer(t *testing.T) {
	f := newLedgerFixture(testConfirmer)
	svc := f.transferService(nil)

	_, err := svc.MarkDelivered(context.Background(), &testConfirmer, 42)
	assertErrCode(t, err, "NOT_FOUND")
}

func TestEditFieldRecordsOldValue(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(fixedClock(now))

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	record, err := svc.EditField(context.Background(), &testRegistrar, created.ID, domain.FieldSenderName, "Ana Maria")
	if err != nil {
		t.Fatalf("EditField() error = %v", err)
	}
	if record.OldValue != "Ana" {
		t.Errorf("old_value = %q, want %q", record.OldValue, "Ana")
	}
	if record.NewValue != "Ana Maria" {
		t.Errorf("new_value = %q, want %q", record.NewValue, "Ana Maria")
	}
	if len(f.editHistory.records) != 1 {
		t.Fatalf("edit records = %d, want 1", len(f.editHistory.records))
	}
	if got := f.transfers.transfers[created.ID].SenderName; got != "Ana Maria" {
		t.Errorf("stored sender = %q, want %q", got, "Ana Maria")
	}
}

func TestEditFieldAmountParsed(t *testing.T) {
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer)
	svc := f.transferService(nil)

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	record, err := svc.EditField(context.Background(), &testRegistrar, created.ID, domain.FieldAmount, "250.5")
	if err != nil {
		t.Fatalf("EditField() error = %v", err)
	}
	if record.OldValue != "1000" {
		t.Errorf("old_value = %q, want %q", record.OldValue, "1000")
	}
	if got := f.transfers.transfers[created.ID].Amount; !almostEqual(got, 250.5) {
		t.Errorf("stored amount = %v, want 250.5", got)
	}

	for _, bad := range []string{"abc", "-5", "0"} {
		if _, err := svc.EditField(context.Background(), &testRegistrar, created.ID, domain.FieldAmount, bad); err == nil {
			t.Errorf("EditField(amount=%q) succeeded, want validation failure", bad)
		}
	}
}

func TestEditFieldUnsupportedField(t *testing.T) {
	f := newLedgerFixture(testRegistrar)
	svc := f.transferService(nil)

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	_, err = svc.EditField(context.Background(), &testRegistrar, created.ID, "status", "delivered")
	assertErrCode(t, err, "VALIDATION_FAILED")
	if len(f.editHistory.records) != 0 {
		t.Errorf("edit records = %d, want 0", len(f.editHistory.records))
	}
}

func TestEditFieldUnknownTransfer(t *testing.T) {
	f := newLedgerFixture(testRegistrar)
	svc := f.transferService(nil)

	_, err := svc.EditField(context.Background(), &testRegistrar, 42, domain.FieldSenderName, "Ana")
	assertErrCode(t, err, "NOT_FOUND")
	if len(f.editHistory.records) != 0 {
		t.Errorf("edit records = %d, want 0", len(f.editHistory.records))
	}
}

func TestListTransfersByRole(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	otherRegistrar := domain.Employee{ID: 4, Name: "Julia", Role: domain.RoleRegistrar}
	otherConfirmer := domain.Employee{ID: 5, Name: "Raul", Role: domain.RoleConfirmer}
	f := newLedgerFixture(testAdmin, testRegistrar, testConfirmer, otherRegistrar, otherConfirmer)
	svc := f.transferService(fixedClock(now))

	mine, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 100,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	theirs, err := svc.CreateTransfer(context.Background(), &otherRegistrar, TransferCreateInput{
		SenderName: "Bea", RecipientName: "Caro", RecipientPhone: "555-0200", Amount: 200,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	if _, err := svc.MarkDelivered(context.Background(), &testConfirmer, theirs.ID); err != nil {
		t.Fatalf("MarkDelivered() error = %v", err)
	}

	adminView, err := svc.ListTransfers(context.Background(), &testAdmin)
	if err != nil {
		t.Fatalf("ListTransfers(admin) error = %v", err)
	}
	if len(adminView) != 2 {
		t.Errorf("admin listing = %d transfers, want 2", len(adminView))
	}

	registrarView, err := svc.ListTransfers(context.Background(), &testRegistrar)
	if err != nil {
		t.Fatalf("ListTransfers(registrar) error = %v", err)
	}
	if len(registrarView) != 1 || registrarView[0].ID != mine.ID {
		t.Errorf("registrar listing = %+v, want only own transfer %d", registrarView, mine.ID)
	}

	// Every confirmer sees the same pending queue, whichever confirmer asks.
	for _, confirmer := range []*domain.Employee{&testConfirmer, &otherConfirmer} {
		view, err := svc.ListTransfers(context.Background(), confirmer)
		if err != nil {
			t.Fatalf("ListTransfers(confirmer %d) error = %v", confirmer.ID, err)
		}
		if len(view) != 1 || view[0].ID != mine.ID {
			t.Errorf("confirmer %d listing = %+v, want the single requested transfer", confirmer.ID, view)
		}
		if view[0].Status != domain.TransferStatusRequested {
			t.Errorf("confirmer listing status = %s, want requested", view[0].Status)
		}
	}
}

func TestEditHistoryNewestFirst(t *testing.T) {
	base := time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)
	f := newLedgerFixture(testRegistrar)
	clockCalls := 0
	svc := f.transferService(func() time.Time {
		clockCalls++
		return base.Add(time.Duration(clockCalls) * time.Minute)
	})

	created, err := svc.CreateTransfer(context.Background(), &testRegistrar, TransferCreateInput{
		SenderName: "Ana", RecipientName: "Luis", RecipientPhone: "555-0100", Amount: 1000,
	})
	if err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}
	if _, err := svc.EditField(context.Background(), &testRegistrar, created.ID, domain.FieldSenderName, "Anna"); err != nil {
		t.Fatalf("first edit error = %v", err)
	}
	if _, err := svc.EditField(context.Background(), &testRegistrar, created.ID, domain.FieldSenderName, "Annie"); err != nil {
		t.Fatalf("second edit error = %v", err)
	}

	history, err := svc.EditHistory(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("EditHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history entries = %d, want 2", len(history))
	}
	if history[0].NewValue != "Annie" || history[1].NewValue != "Anna" {
		t.Errorf("history order = [%s, %s], want newest first", history[0].NewValue, history[1].NewValue)
	}
	if history[0].OldValue != "Anna" {
		t.Errorf("latest old_value = %q, want %q", history[0].OldValue, "Anna")
	}
}
