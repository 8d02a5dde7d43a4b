package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/transfer-service/internal/domain"
)

// TransferListing is a transfer row with registrar/confirmer names joined in.
type TransferListing struct {
	domain.Transfer
	RegistrarName string
	ConfirmerName *string
}

// TransferRepository encapsulates transfer persistence.
type TransferRepository interface {
	Create(ctx context.Context, transfer *domain.Transfer) error
	GetByID(ctx context.Context, id int64) (*domain.Transfer, error)
	MarkDelivered(ctx context.Context, id, confirmerID int64, confirmedAt time.Time) (bool, error)
	FieldValue(ctx context.Context, id int64, field domain.EditableField) (string, error)
	UpdateField(ctx context.Context, id int64, field domain.EditableField, value any) (bool, error)
	ListAll(ctx context.Context) ([]TransferListing, error)
	ListByRegistrar(ctx context.Context, registrarID int64) ([]TransferListing, error)
	ListRequested(ctx context.Context) ([]TransferListing, error)
	SumDeliveredByRequestPeriod(ctx context.Context, from, to time.Time) (float64, error)
}

type transferRepository struct {
	db DBTX
}

// NewTransferRepository instantiates the repository.
func NewTransferRepository(db DBTX) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	const query = `
        INSERT INTO transfers (requested_at, sender_name, recipient_name, recipient_phone, amount, registrar_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		transfer.RequestedAt,
		transfer.SenderName,
		transfer.RecipientName,
		transfer.RecipientPhone,
		transfer.Amount,
		transfer.RegistrarID,
		transfer.Status,
	).Scan(&transfer.ID)
}

func (r *transferRepository) GetByID(ctx context.Context, id int64) (*domain.Transfer, error) {
	const query = `
        SELECT id, requested_at, sender_name, recipient_name, recipient_phone,
               amount, confirmed_at, confirmer_id, registrar_id, status
        FROM transfers WHERE id=$1`

	var transfer domain.Transfer
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&transfer.ID,
		&transfer.RequestedAt,
		&transfer.SenderName,
		&transfer.RecipientName,
		&transfer.RecipientPhone,
		&transfer.Amount,
		&transfer.ConfirmedAt,
		&transfer.ConfirmerID,
		&transfer.RegistrarID,
		&transfer.Status,
	); err != nil {
		return nil, err
	}
	return &transfer, nil
}

// MarkDelivered transitions the transfer to delivered only while its status
// is still requested. Returns false when no row matched the guard.
func (r *transferRepository) MarkDelivered(ctx context.Context, id, confirmerID int64, confirmedAt time.Time) (bool, error) {
	const query = `
        UPDATE transfers
        SET status=$1, confirmed_at=$2, confirmer_id=$3
        WHERE id=$4 AND status=$5`
	cmd, err := r.db.Exec(ctx, query,
		domain.TransferStatusDelivered,
		confirmedAt,
		confirmerID,
		id,
		domain.TransferStatusRequested,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *transferRepository) FieldValue(ctx context.Context, id int64, field domain.EditableField) (string, error) {
	column, err := columnFor(field)
	if err != nil {
		return "", err
	}
	query := fmt.Sprintf(`SELECT %s::text FROM transfers WHERE id=$1`, column)
	var value string
	if err := r.db.QueryRow(ctx, query, id).Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

func (r *transferRepository) UpdateField(ctx context.Context, id int64, field domain.EditableField, value any) (bool, error) {
	column, err := columnFor(field)
	if err != nil {
		return false, err
	}
	query := fmt.Sprintf(`UPDATE transfers SET %s=$1 WHERE id=$2`, column)
	cmd, err := r.db.Exec(ctx, query, value, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const listingSelect = `
        SELECT t.id, t.requested_at, t.sender_name, t.recipient_name, t.recipient_phone,
               t.amount, t.confirmed_at, t.confirmer_id, t.registrar_id, t.status,
               reg.name, conf.name
        FROM transfers t
        JOIN employees reg ON t.registrar_id = reg.id
        LEFT JOIN employees conf ON t.confirmer_id = conf.id`

func (r *transferRepository) ListAll(ctx context.Context) ([]TransferListing, error) {
	query := listingSelect + ` ORDER BY t.requested_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *transferRepository) ListByRegistrar(ctx context.Context, registrarID int64) ([]TransferListing, error) {
	query := listingSelect + ` WHERE t.registrar_id=$1 ORDER BY t.requested_at DESC`
	rows, err := r.db.Query(ctx, query, registrarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *transferRepository) ListRequested(ctx context.Context) ([]TransferListing, error) {
	query := listingSelect + ` WHERE t.status=$1 ORDER BY t.requested_at DESC`
	rows, err := r.db.Query(ctx, query, domain.TransferStatusRequested)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

// SumDeliveredByRequestPeriod totals the principal of delivered transfers
// whose request timestamp falls in [from, to].
func (r *transferRepository) SumDeliveredByRequestPeriod(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `
        SELECT COALESCE(SUM(amount), 0)
        FROM transfers
        WHERE status=$1 AND requested_at BETWEEN $2 AND $3`
	var total float64
	if err := r.db.QueryRow(ctx, query, domain.TransferStatusDelivered, from, to).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanListings(rows pgx.Rows) ([]TransferListing, error) {
	var result []TransferListing
	for rows.Next() {
		var listing TransferListing
		if err := rows.Scan(
			&listing.ID,
			&listing.RequestedAt,
			&listing.SenderName,
			&listing.RecipientName,
			&listing.RecipientPhone,
			&listing.Amount,
			&listing.ConfirmedAt,
			&listing.ConfirmerID,
			&listing.RegistrarID,
			&listing.Status,
			&listing.RegistrarName,
			&listing.ConfirmerName,
		); err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}

func columnFor(field domain.EditableField) (string, error) {
	switch field {
	case domain.FieldSenderName:
		return "sender_name", nil
	case domain.FieldRecipientName:
		return "recipient_name", nil
	case domain.FieldRecipientPhone:
		return "recipient_phone", nil
	case domain.FieldAmount:
		return "amount", nil
	}
	return "", fmt.Errorf("field %q is not editable", field)
}
