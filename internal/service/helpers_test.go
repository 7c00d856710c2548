package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/repository/memory"
	"github.com/spec-kit/rewear-service/internal/storage"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

type testEnv struct {
	store       *memory.Store
	dispatcher  events.Dispatcher
	published   []events.Event
	catalog     *CatalogService
	members     *MembershipService
	swaps       *SwapService
	moderation  *ModerationService
	redemptions *RedemptionService
	media       *storage.MediaStore

	mu          sync.Mutex
	transitions map[string]int
}

func (e *testEnv) RecordSwapTransition(status string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitions[status]++
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	env := &testEnv{
		store:       store,
		dispatcher:  events.NewInMemoryDispatcher(),
		transitions: map[string]int{},
	}
	for _, et := range []events.EventType{
		events.EventItemCreated, events.EventItemModerated, events.EventItemDeleted, events.EventItemRedeemed,
		events.EventSwapProposed, events.EventSwapDecided, events.EventSwapExpired,
	} {
		env.dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.published = append(env.published, e)
			return nil
		})
	}

	logger := zap.NewNop()
	env.catalog = NewCatalogService(CatalogDependencies{
		ItemRepo:    store.Items(),
		UserRepo:    store.Users(),
		HistoryRepo: store.History(),
		Dispatcher:  env.dispatcher,
		Logger:      logger,
	})
	env.members = NewMembershipService(store.Users(), store.Items(), logger)
	env.swaps = NewSwapService(SwapDependencies{
		SwapRepo:    store.Swaps(),
		ItemRepo:    store.Items(),
		UserRepo:    store.Users(),
		HistoryRepo: store.History(),
		Dispatcher:  env.dispatcher,
		Recorder:    env,
		Logger:      logger,
	})
	media, err := storage.NewMediaStore(t.TempDir(), "http://media.test/media")
	require.NoError(t, err)
	env.media = media
	env.moderation = NewModerationService(store.Items(), store.History(), media, env.dispatcher, logger)
	env.redemptions = NewRedemptionService(RedemptionDependencies{
		RedemptionRepo: store.Redemptions(),
		ItemRepo:       store.Items(),
		UserRepo:       store.Users(),
		HistoryRepo:    store.History(),
		Dispatcher:     env.dispatcher,
		Logger:         logger,
	})
	return env
}

func (e *testEnv) user(t *testing.T, name string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:     name,
		Email:    name + "@example.com",
		UserType: domain.UserTypeCustomer,
		Points:   domain.DefaultPoints,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

func (e *testEnv) admin(t *testing.T) *domain.User {
	t.Helper()
	user := &domain.User{Name: "mod", Email: "mod@example.com", UserType: domain.UserTypeAdmin, Points: domain.DefaultPoints}
	require.NoError(t, e.store.Users().Create(context.Background(), user))
	return user
}

// listed stores an item directly in the given status, skipping moderation.
func (e *testEnv) listed(t *testing.T, owner *domain.User, name string, status domain.ItemStatus) *domain.Item {
	t.Helper()
	item := &domain.Item{
		OwnerID:     owner.ID,
		Name:        name,
		Description: name + " in good shape",
		Cost:        30,
		Images:      []string{"https://media.test/" + name + ".jpg"},
		Condition:   domain.ConditionGood,
		Tags:        []string{"coat"},
		Category:    domain.CategoryUnisex,
		Status:      status,
	}
	require.NoError(t, e.store.Items().Create(context.Background(), item))
	return item
}

func (e *testEnv) itemStatus(t *testing.T, id string) domain.ItemStatus {
	t.Helper()
	item, err := e.store.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	return item.Status
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, code, de.Code, "error: %v", err)
	return de
}

func intPtr(v int) *int {
	return &v
}
