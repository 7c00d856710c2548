package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/repository"
)

// recordStatusChange appends an audit entry. The status change itself has
// already committed, so a failed audit write is logged rather than returned.
func recordStatusChange(ctx context.Context, history repository.ItemHistoryRepository, logger *zap.Logger, itemID string, from, to domain.ItemStatus, actorID *string, reason string) {
	if history == nil {
		return
	}
	entry := &domain.ItemStatusChange{
		ItemID:    itemID,
		OldStatus: from,
		NewStatus: to,
		ActorID:   actorID,
		Reason:    reason,
	}
	if err := history.Create(ctx, entry); err != nil {
		logger.Warn("record item status change",
			zap.String("item_id", itemID),
			zap.String("new_status", string(to)),
			zap.Error(err))
	}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
