package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/rewear-service/internal/config"
	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
)

func TestNotificationsFollowSwapEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	notifier := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/rewear",
	})
	notifier.RegisterHandlers()

	swap := &domain.Swap{
		ID:              "swap-1",
		InitiatorID:     "alice",
		CounterpartyID:  "bob",
		ItemOfferedID:   "coat",
		ItemRequestedID: "boots",
		Status:          domain.SwapStatusPending,
	}
	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventSwapProposed,
		Payload: events.NewSwapPayload(swap),
	})
	require.NoError(t, err)

	emails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "bob", emails[0].ContextMap()["user_id"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())

	swap.Status = domain.SwapStatusExpired
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventSwapExpired,
		Payload: events.NewSwapPayload(swap),
	}))
	assert.Equal(t, 3, logs.FilterMessage("sendEmailNotificationStub").Len())
}
