package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/config"
	"github.com/spec-kit/rewear-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventSwapProposed, n.handleSwapProposed)
	n.dispatcher.Subscribe(events.EventSwapDecided, n.handleSwapSettled)
	n.dispatcher.Subscribe(events.EventSwapExpired, n.handleSwapSettled)
	n.dispatcher.Subscribe(events.EventItemModerated, n.handleItemModerated)
	n.dispatcher.Subscribe(events.EventItemRedeemed, n.handleItemRedeemed)
}

func (n *NotificationService) handleSwapProposed(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SwapPayload)
	n.logger.Info("SwapProposed", zap.String("swap_id", payload.SwapID), zap.String("notify_user_id", payload.CounterpartyID))
	n.sendEmailNotificationStub(ctx, event, payload.CounterpartyID)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSwapSettled(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.SwapPayload)
	n.logger.Info("SwapSettled",
		zap.String("swap_id", payload.SwapID),
		zap.String("status", string(payload.Status)),
		zap.String("notify_user_id", payload.InitiatorID))
	n.sendEmailNotificationStub(ctx, event, payload.InitiatorID)
	if event.Type == events.EventSwapExpired {
		n.sendEmailNotificationStub(ctx, event, payload.CounterpartyID)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleItemModerated(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ItemModeratedPayload)
	n.logger.Info("ItemModerated",
		zap.String("item_id", payload.ItemID),
		zap.String("new_status", string(payload.NewStatus)))
	n.sendEmailNotificationStub(ctx, event, payload.OwnerID)
	return nil
}

func (n *NotificationService) handleItemRedeemed(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ItemRedeemedPayload)
	n.logger.Info("ItemRedeemed", zap.String("item_id", payload.ItemID), zap.Int("cost", payload.Cost))
	n.sendEmailNotificationStub(ctx, event, payload.SellerID)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, userID string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || userID == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("user_id", userID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
