package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/transfer-service/internal/config"
	"github.com/spec-kit/transfer-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTransferCreated, n.handleTransferCreated)
	n.dispatcher.Subscribe(events.EventTransferDelivered, n.handleTransferDelivered)
	n.dispatcher.Subscribe(events.EventTransferEdited, n.handleTransferEdited)
	n.dispatcher.Subscribe(events.EventProfitDistributed, n.handleProfitDistributed)
}

func (n *NotificationService) handleTransferCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TransferCreated", zap.Int64("transfer_id", event.TransferID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTransferDelivered(ctx context.Context, event events.Event) error {
	n.logger.Info("TransferDelivered", zap.Int64("transfer_id", event.TransferID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTransferEdited(ctx context.Context, event events.Event) error {
	n.logger.Info("TransferEdited", zap.Int64("transfer_id", event.TransferID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProfitDistributed(ctx context.Context, event events.Event) error {
	n.logger.Info("ProfitDistributed", zap.Int64("transfer_id", event.TransferID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("transfer_id", event.TransferID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("transfer_id", event.TransferID),
		zap.String("event_type", string(event.Type)))
}
