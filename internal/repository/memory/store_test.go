package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/repository"
)

type fixture struct {
	store *Store
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: NewStore(), clock: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	f.store.SetClock(func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	})
	return f
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: email, Email: email, UserType: domain.UserTypeCustomer, Points: domain.DefaultPoints}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) item(t *testing.T, ownerID string, status domain.ItemStatus, tags ...string) *domain.Item {
	t.Helper()
	item := &domain.Item{
		OwnerID:   ownerID,
		Name:      "Denim jacket",
		Cost:      40,
		Images:    []string{"http://media.test/a.jpg"},
		Condition: domain.ConditionGood,
		Tags:      tags,
		Category:  domain.CategoryUnisex,
		Status:    status,
	}
	require.NoError(t, f.store.Items().Create(context.Background(), item))
	return item
}

func TestUsersCreateRejectsDuplicateEmailIgnoringCase(t *testing.T) {
	f := newFixture(t)
	f.user(t, "ana@example.com")

	err := f.store.Users().Create(context.Background(), &domain.User{Email: "ANA@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	found, err := f.store.Users().GetByEmail(context.Background(), " Ana@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", found.Email)
}

func TestUserItemsAreDerivedFromOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	first := f.item(t, owner.ID, domain.ItemStatusPending, "coat")
	second := f.item(t, owner.ID, domain.ItemStatusAvailable, "hat")

	got, err := f.store.Users().GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, got.Items)

	require.NoError(t, f.store.Items().Delete(context.Background(), first.ID))
	got, err = f.store.Users().GetByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, got.Items)
}

func TestAdjustPointsRefusesNegativeBalance(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "a@example.com")

	_, err := f.store.Users().AdjustPoints(context.Background(), user.ID, -101)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	updated, err := f.store.Users().AdjustPoints(context.Background(), user.ID, -100)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Points)

	_, err = f.store.Users().AdjustPoints(context.Background(), "missing", 5)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListFiltersAndOrdersNewestFirst(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "o@example.com")
	older := f.item(t, owner.ID, domain.ItemStatusAvailable, "jeans")
	newer := f.item(t, owner.ID, domain.ItemStatusAvailable, "sneakers")
	f.item(t, owner.ID, domain.ItemStatusPending, "jeans")

	items, err := f.store.Items().List(context.Background(), repository.ItemFilter{
		Statuses: []domain.ItemStatus{domain.ItemStatusAvailable},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Equal(t, older.ID, items[1].ID)

	term := "SNEAK"
	items, err = f.store.Items().List(context.Background(), repository.ItemFilter{
		Statuses:   []domain.ItemStatus{domain.ItemStatusAvailable},
		SearchTerm: &term,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, newer.ID, items[0].ID)

	items, err = f.store.Items().List(context.Background(), repository.ItemFilter{Tags: []string{"jeans", "boots"}})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCreatePendingLocksBothItems(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	offered := f.item(t, a.ID, domain.ItemStatusAvailable, "coat")
	requested := f.item(t, b.ID, domain.ItemStatusAvailable, "boots")

	swap := &domain.Swap{InitiatorID: a.ID, CounterpartyID: b.ID, ItemOfferedID: offered.ID, ItemRequestedID: requested.ID}
	require.NoError(t, f.store.Swaps().CreatePending(context.Background(), swap))
	assert.Equal(t, domain.SwapStatusPending, swap.Status)

	for _, id := range []string{offered.ID, requested.ID} {
		item, err := f.store.Items().GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.ItemStatusInSwapProcess, item.Status)
	}

	again := &domain.Swap{InitiatorID: a.ID, CounterpartyID: b.ID, ItemOfferedID: offered.ID, ItemRequestedID: requested.ID}
	assert.ErrorIs(t, f.store.Swaps().CreatePending(context.Background(), again), repository.ErrStatusConflict)
	assert.ErrorIs(t, f.store.Items().Delete(context.Background(), offered.ID), repository.ErrStatusConflict)
}

func TestConcurrentCreatePendingHasOneWinner(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	c := f.user(t, "c@example.com")
	target := f.item(t, a.ID, domain.ItemStatusAvailable, "dress")
	fromB := f.item(t, b.ID, domain.ItemStatusAvailable, "skirt")
	fromC := f.item(t, c.ID, domain.ItemStatusAvailable, "scarf")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, offer := range []*domain.Item{fromB, fromC} {
		wg.Add(1)
		go func(i int, offer *domain.Item) {
			defer wg.Done()
			errs[i] = f.store.Swaps().CreatePending(context.Background(), &domain.Swap{
				InitiatorID:     offer.OwnerID,
				CounterpartyID:  a.ID,
				ItemOfferedID:   offer.ID,
				ItemRequestedID: target.ID,
			})
		}(i, offer)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrStatusConflict)
		}
	}
	assert.Equal(t, 1, succeeded)

	pending, err := f.store.Swaps().FindPendingByItems(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSettleReleasesOrRedeemsItems(t *testing.T) {
	cases := []struct {
		status domain.SwapStatus
		want   domain.ItemStatus
	}{
		{domain.SwapStatusAccepted, domain.ItemStatusRedeemed},
		{domain.SwapStatusRejected, domain.ItemStatusAvailable},
		{domain.SwapStatusExpired, domain.ItemStatusAvailable},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			f := newFixture(t)
			a := f.user(t, "a@example.com")
			b := f.user(t, "b@example.com")
			offered := f.item(t, a.ID, domain.ItemStatusAvailable, "coat")
			requested := f.item(t, b.ID, domain.ItemStatusAvailable, "boots")
			swap := &domain.Swap{InitiatorID: a.ID, CounterpartyID: b.ID, ItemOfferedID: offered.ID, ItemRequestedID: requested.ID}
			require.NoError(t, f.store.Swaps().CreatePending(context.Background(), swap))

			settled, err := f.store.Swaps().Settle(context.Background(), swap.ID, tc.status)
			require.NoError(t, err)
			assert.Equal(t, tc.status, settled.Status)
			assert.NotNil(t, settled.DecidedAt)

			for _, id := range []string{offered.ID, requested.ID} {
				item, err := f.store.Items().GetByID(context.Background(), id)
				require.NoError(t, err)
				assert.Equal(t, tc.want, item.Status)
			}

			_, err = f.store.Swaps().Settle(context.Background(), swap.ID, tc.status)
			assert.ErrorIs(t, err, repository.ErrStatusConflict)
		})
	}
}

func TestListPendingBeforeReturnsOldestFirst(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	var swaps []*domain.Swap
	for i := 0; i < 2; i++ {
		swap := &domain.Swap{
			InitiatorID:     a.ID,
			CounterpartyID:  b.ID,
			ItemOfferedID:   f.item(t, a.ID, domain.ItemStatusAvailable, "hat").ID,
			ItemRequestedID: f.item(t, b.ID, domain.ItemStatusAvailable, "cap").ID,
		}
		require.NoError(t, f.store.Swaps().CreatePending(context.Background(), swap))
		swaps = append(swaps, swap)
	}

	found, err := f.store.Swaps().ListPendingBefore(context.Background(), swaps[1].CreatedAt, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, swaps[0].ID, found[0].ID)

	received, err := f.store.Swaps().ListForUser(context.Background(), b.ID, domain.SwapDirectionReceived)
	require.NoError(t, err)
	require.Len(t, received, 2)
	assert.Equal(t, swaps[1].ID, received[0].ID)

	initiated, err := f.store.Swaps().ListForUser(context.Background(), b.ID, domain.SwapDirectionInitiated)
	require.NoError(t, err)
	assert.Empty(t, initiated)
}

func TestRedeemMovesPointsAtomically(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")
	buyer := f.user(t, "buyer@example.com")
	item := f.item(t, seller.ID, domain.ItemStatusAvailable, "bag")

	updated, err := f.store.Redemptions().Redeem(context.Background(), &domain.Redemption{
		ItemID: item.ID, BuyerID: buyer.ID, SellerID: seller.ID, Cost: item.Cost,
	})
	require.NoError(t, err)
	assert.Equal(t, 60, updated.Points)

	gotSeller, err := f.store.Users().GetByID(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 140, gotSeller.Points)

	_, err = f.store.Redemptions().Redeem(context.Background(), &domain.Redemption{
		ItemID: item.ID, BuyerID: buyer.ID, SellerID: seller.ID, Cost: item.Cost,
	})
	assert.ErrorIs(t, err, repository.ErrStatusConflict)
}

func TestRedeemWithShortBalanceChangesNothing(t *testing.T) {
	f := newFixture(t)
	seller := f.user(t, "seller@example.com")
	buyer := f.user(t, "buyer@example.com")
	item := f.item(t, seller.ID, domain.ItemStatusAvailable, "watch")

	_, err := f.store.Redemptions().Redeem(context.Background(), &domain.Redemption{
		ItemID: item.ID, BuyerID: buyer.ID, SellerID: seller.ID, Cost: 500,
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	gotItem, err := f.store.Items().GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemStatusAvailable, gotItem.Status)
	gotBuyer, err := f.store.Users().GetByID(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPoints, gotBuyer.Points)

	list, err := f.store.Redemptions().ListByUser(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
