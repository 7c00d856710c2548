package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rewear-service/internal/domain"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

func TestRedeemTransfersPoints(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam")
	buyer := env.user(t, "bea")
	item := env.listed(t, seller, "jacket", domain.ItemStatusAvailable)

	redemption, updated, err := env.redemptions.Redeem(context.Background(), buyer.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Cost, redemption.Cost)
	assert.Equal(t, seller.ID, redemption.SellerID)
	assert.Equal(t, domain.DefaultPoints-item.Cost, updated.Points)
	assert.Equal(t, domain.ItemStatusRedeemed, env.itemStatus(t, item.ID))

	sellerNow, err := env.members.GetProfile(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPoints+item.Cost, sellerNow.Points)

	list, err := env.redemptions.ListForUser(context.Background(), seller.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, redemption.ID, list[0].ID)

	_, _, err = env.redemptions.Redeem(context.Background(), buyer.ID, item.ID)
	requireCode(t, err, apperrors.CodeConflict)
}

func TestRedeemShortBalanceChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam")
	buyer := env.user(t, "bea")
	item := env.listed(t, seller, "jacket", domain.ItemStatusAvailable)
	_, err := env.members.AdjustPoints(context.Background(), buyer.ID, -(domain.DefaultPoints - 5))
	require.NoError(t, err)

	_, _, err = env.redemptions.Redeem(context.Background(), buyer.ID, item.ID)
	de := requireCode(t, err, apperrors.CodeInsufficientBalance)
	assert.Equal(t, 5, de.Details["balance"])

	assert.Equal(t, domain.ItemStatusAvailable, env.itemStatus(t, item.ID))
	sellerNow, err := env.members.GetProfile(context.Background(), seller.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPoints, sellerNow.Points)
}

func TestRedeemRules(t *testing.T) {
	env := newTestEnv(t)
	seller := env.user(t, "sam")
	buyer := env.user(t, "bea")
	own := env.listed(t, seller, "own", domain.ItemStatusAvailable)
	pending := env.listed(t, seller, "pending", domain.ItemStatusPending)

	_, _, err := env.redemptions.Redeem(context.Background(), seller.ID, own.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	_, _, err = env.redemptions.Redeem(context.Background(), buyer.ID, pending.ID)
	requireCode(t, err, apperrors.CodeConflict)

	_, _, err = env.redemptions.Redeem(context.Background(), buyer.ID, "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	requireCode(t, err, apperrors.CodeNotFound)
}
