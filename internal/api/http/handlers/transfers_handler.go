package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transfer-service/internal/api/dto"
	"github.com/spec-kit/transfer-service/internal/auth"
	"github.com/spec-kit/transfer-service/internal/domain"
	"github.com/spec-kit/transfer-service/internal/repository"
	"github.com/spec-kit/transfer-service/internal/service"
	apperrors "github.com/spec-kit/transfer-service/pkg/util"
)

// TransfersHandler manages transfer lifecycle endpoints.
type TransfersHandler struct {
	service *service.TransferService
}

// NewTransfersHandler constructs handler.
func NewTransfersHandler(transferService *service.TransferService) *TransfersHandler {
	return &TransfersHandler{service: transferService}
}

// Create POST /transfers.
func (h *TransfersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return apperrors.NewUnauthorized("employee required")
	}
	var req dto.CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	transfer, err := h.service.CreateTransfer(c.Context(), principal.Employee, service.TransferCreateInput{
		SenderName:     req.SenderName,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Amount:         req.Amount,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transferResponse(transfer)})
}

// List GET /transfers.
func (h *TransfersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return apperrors.NewUnauthorized("employee required")
	}

	listings, err := h.service.ListTransfers(c.Context(), principal.Employee)
	if err != nil {
		return err
	}
	items := make([]dto.TransferResponse, 0, len(listings))
	for i := range listings {
		items = append(items, listingResponse(&listings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Deliver POST /transfers/:id/deliver.
func (h *TransfersHandler) Deliver(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return apperrors.NewUnauthorized("employee required")
	}
	transferID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	transfer, err := h.service.MarkDelivered(c.Context(), principal.Employee, transferID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transferResponse(transfer)})
}

// Edit POST /transfers/:id/edits.
func (h *TransfersHandler) Edit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Employee == nil {
		return apperrors.NewUnauthorized("employee required")
	}
	transferID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.EditTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record, err := h.service.EditField(c.Context(), principal.Employee, transferID, req.Field, req.NewValue)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": editRecordResponse(record, "")})
}

// History GET /transfers/:id/history.
func (h *TransfersHandler) History(c *fiber.Ctx) error {
	transferID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	entries, err := h.service.EditHistory(c.Context(), transferID)
	if err != nil {
		return err
	}
	items := make([]dto.EditRecordResponse, 0, len(entries))
	for i := range entries {
		items = append(items, editRecordResponse(&entries[i].EditRecord, entries[i].EditorName))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid transfer id", map[string]any{"id": raw})
	}
	return id, nil
}

func transferResponse(transfer *domain.Transfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:             transfer.ID,
		RequestedAt:    transfer.RequestedAt,
		SenderName:     transfer.SenderName,
		RecipientName:  transfer.RecipientName,
		RecipientPhone: transfer.RecipientPhone,
		Amount:         transfer.Amount,
		ConfirmedAt:    transfer.ConfirmedAt,
		RegistrarID:    transfer.RegistrarID,
		ConfirmerID:    transfer.ConfirmerID,
		Status:         transfer.Status,
	}
}

func listingResponse(listing *repository.TransferListing) dto.TransferResponse {
	resp := transferResponse(&listing.Transfer)
	resp.RegistrarName = listing.RegistrarName
	resp.ConfirmerName = listing.ConfirmerName
	return resp
}

func editRecordResponse(record *domain.EditRecord, editorName string) dto.EditRecordResponse {
	return dto.EditRecordResponse{
		ID:         record.ID,
		TransferID: record.TransferID,
		EditedAt:   record.EditedAt,
		EditorID:   record.EditorID,
		EditorName: editorName,
		Field:      record.Field,
		OldValue:   record.OldValue,
		NewValue:   record.NewValue,
	}
}
