package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

type swapFixture struct {
	*testEnv
	alice, bob *domain.User
	coat, boots *domain.Item
}

func newSwapFixture(t *testing.T) *swapFixture {
	env := newTestEnv(t)
	f := &swapFixture{testEnv: env}
	f.alice = env.user(t, "alice")
	f.bob = env.user(t, "bob")
	f.coat = env.listed(t, f.alice, "coat", domain.ItemStatusAvailable)
	f.boots = env.listed(t, f.bob, "boots", domain.ItemStatusAvailable)
	return f
}

func (f *swapFixture) propose(t *testing.T) *domain.SwapDetail {
	t.Helper()
	detail, err := f.swaps.ProposeSwap(context.Background(), f.alice.ID, f.coat.ID, f.boots.ID)
	require.NoError(t, err)
	return detail
}

func TestProposeSwapLocksBothItems(t *testing.T) {
	f := newSwapFixture(t)

	detail := f.propose(t)

	assert.Equal(t, domain.SwapStatusPending, detail.Swap.Status)
	assert.Equal(t, f.alice.ID, detail.Swap.InitiatorID)
	assert.Equal(t, f.bob.ID, detail.Swap.CounterpartyID)
	assert.Equal(t, domain.ItemStatusInSwapProcess, detail.ItemOffered.Status)
	assert.Equal(t, domain.ItemStatusInSwapProcess, detail.ItemRequested.Status)
	assert.Equal(t, domain.ItemStatusInSwapProcess, f.itemStatus(t, f.coat.ID))
	assert.Equal(t, domain.ItemStatusInSwapProcess, f.itemStatus(t, f.boots.ID))
	assert.Equal(t, 1, f.transitions[string(domain.SwapStatusPending)])
	require.NotEmpty(t, f.published)
	assert.Equal(t, events.EventSwapProposed, f.published[len(f.published)-1].Type)
}

func TestDecideSwapSettlesItems(t *testing.T) {
	cases := []struct {
		decision string
		want     domain.ItemStatus
	}{
		{decision: "accepted", want: domain.ItemStatusRedeemed},
		{decision: "rejected", want: domain.ItemStatusAvailable},
	}
	for _, tc := range cases {
		t.Run(tc.decision, func(t *testing.T) {
			f := newSwapFixture(t)
			proposed := f.propose(t)

			decided, err := f.swaps.DecideSwap(context.Background(), proposed.Swap.ID, f.bob.ID, tc.decision)
			require.NoError(t, err)
			assert.Equal(t, domain.SwapStatus(tc.decision), decided.Swap.Status)
			assert.Equal(t, tc.want, f.itemStatus(t, f.coat.ID))
			assert.Equal(t, tc.want, f.itemStatus(t, f.boots.ID))

			history, err := f.moderation.History(context.Background(), f.coat.ID)
			require.NoError(t, err)
			require.Len(t, history, 2)
			assert.Equal(t, domain.ItemStatusInSwapProcess, history[0].NewStatus)
			assert.Equal(t, tc.want, history[1].NewStatus)

			_, err = f.swaps.DecideSwap(context.Background(), proposed.Swap.ID, f.bob.ID, tc.decision)
			requireCode(t, err, apperrors.CodeConflict)
		})
	}
}

func TestDecideSwapOnlyCounterparty(t *testing.T) {
	f := newSwapFixture(t)
	proposed := f.propose(t)
	carol := f.user(t, "carol")

	_, err := f.swaps.DecideSwap(context.Background(), proposed.Swap.ID, f.alice.ID, "accepted")
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.swaps.DecideSwap(context.Background(), proposed.Swap.ID, carol.ID, "accepted")
	requireCode(t, err, apperrors.CodeForbidden)

	assert.Equal(t, domain.ItemStatusInSwapProcess, f.itemStatus(t, f.coat.ID))
}

func TestDecideSwapValidation(t *testing.T) {
	f := newSwapFixture(t)
	proposed := f.propose(t)

	_, err := f.swaps.DecideSwap(context.Background(), proposed.Swap.ID, f.bob.ID, "maybe")
	requireCode(t, err, apperrors.CodeValidationFailed)
	_, err = f.swaps.DecideSwap(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427", f.bob.ID, "accepted")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestProposeSwapRejectsLockedItems(t *testing.T) {
	f := newSwapFixture(t)
	f.propose(t)
	carol := f.user(t, "carol")
	scarf := f.listed(t, carol, "scarf", domain.ItemStatusAvailable)

	_, err := f.swaps.ProposeSwap(context.Background(), carol.ID, scarf.ID, f.boots.ID)
	requireCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, domain.ItemStatusAvailable, f.itemStatus(t, scarf.ID))
}

func TestProposeSwapRejectsUnavailableItems(t *testing.T) {
	f := newSwapFixture(t)
	pending := f.listed(t, f.bob, "pending", domain.ItemStatusPending)

	// Availability is checked before ownership.
	carol := f.user(t, "carol")
	_, err := f.swaps.ProposeSwap(context.Background(), carol.ID, f.coat.ID, pending.ID)
	requireCode(t, err, apperrors.CodeConflict)
}

func TestProposeSwapOwnershipRules(t *testing.T) {
	f := newSwapFixture(t)
	carol := f.user(t, "carol")

	_, err := f.swaps.ProposeSwap(context.Background(), carol.ID, f.coat.ID, f.boots.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	hat := f.listed(t, f.alice, "hat", domain.ItemStatusAvailable)
	_, err = f.swaps.ProposeSwap(context.Background(), f.alice.ID, f.coat.ID, hat.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.swaps.ProposeSwap(context.Background(), f.alice.ID, f.coat.ID, f.coat.ID)
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.swaps.ProposeSwap(context.Background(), f.alice.ID, "x", f.boots.ID)
	requireCode(t, err, apperrors.CodeValidationFailed)

	assert.Equal(t, domain.ItemStatusAvailable, f.itemStatus(t, f.coat.ID))
	assert.Equal(t, domain.ItemStatusAvailable, f.itemStatus(t, f.boots.ID))
}

func TestProposeSwapConcurrentSingleWinner(t *testing.T) {
	f := newSwapFixture(t)
	carol := f.user(t, "carol")
	scarf := f.listed(t, carol, "scarf", domain.ItemStatusAvailable)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	proposers := []struct {
		initiator, offered string
	}{
		{f.alice.ID, f.coat.ID},
		{carol.ID, scarf.ID},
	}
	for i, p := range proposers {
		wg.Add(1)
		go func(i int, initiator, offered string) {
			defer wg.Done()
			_, errs[i] = f.swaps.ProposeSwap(context.Background(), initiator, offered, f.boots.ID)
		}(i, p.initiator, p.offered)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	swaps, err := f.swaps.ListSwapsForUser(context.Background(), f.bob.ID, "received")
	require.NoError(t, err)
	assert.Len(t, swaps, 1)
}

func TestGetSwapVisibility(t *testing.T) {
	f := newSwapFixture(t)
	proposed := f.propose(t)
	carol := f.user(t, "carol")
	admin := f.admin(t)

	for _, viewer := range []*domain.User{f.alice, f.bob, admin} {
		detail, err := f.swaps.GetSwap(context.Background(), proposed.Swap.ID, viewer)
		require.NoError(t, err)
		assert.Equal(t, proposed.Swap.ID, detail.Swap.ID)
		assert.Equal(t, "coat", detail.ItemOffered.Name)
		assert.Equal(t, "bob", detail.Counterparty.Name)
	}

	_, err := f.swaps.GetSwap(context.Background(), proposed.Swap.ID, carol)
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestListSwapsForUserDirections(t *testing.T) {
	f := newSwapFixture(t)
	f.propose(t)

	initiated, err := f.swaps.ListSwapsForUser(context.Background(), f.alice.ID, "initiated")
	require.NoError(t, err)
	assert.Len(t, initiated, 1)

	received, err := f.swaps.ListSwapsForUser(context.Background(), f.alice.ID, "received")
	require.NoError(t, err)
	assert.Empty(t, received)

	both, err := f.swaps.ListSwapsForUser(context.Background(), f.bob.ID, "")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.NotNil(t, both[0].ItemRequested)

	_, err = f.swaps.ListSwapsForUser(context.Background(), f.bob.ID, "sideways")
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestExpireStaleReleasesItems(t *testing.T) {
	f := newSwapFixture(t)
	proposed := f.propose(t)

	expired, err := f.swaps.ExpireStale(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, expired)

	f.swaps.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	expired, err = f.swaps.ExpireStale(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	detail, err := f.swaps.GetSwap(context.Background(), proposed.Swap.ID, f.alice)
	require.NoError(t, err)
	assert.Equal(t, domain.SwapStatusExpired, detail.Swap.Status)
	assert.Equal(t, domain.ItemStatusAvailable, f.itemStatus(t, f.coat.ID))
	assert.Equal(t, domain.ItemStatusAvailable, f.itemStatus(t, f.boots.ID))

	_, err = f.swaps.DecideSwap(context.Background(), proposed.Swap.ID, f.bob.ID, "accepted")
	requireCode(t, err, apperrors.CodeConflict)
}
