package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/rewear-service/internal/domain"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

func validInput() CreateItemInput {
	size := "M"
	return CreateItemInput{
		Name:        "  Wool coat ",
		Description: "Warm winter coat",
		Cost:        intPtr(45),
		Images:      []string{"https://media.test/coat.jpg"},
		Condition:   "like-new",
		Tags:        []string{"coat", "jacket"},
		Size:        &size,
		Category:    "women",
	}
}

func TestCreateItemRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")

	created, err := env.catalog.CreateItem(context.Background(), owner.ID, validInput())
	require.NoError(t, err)

	got, err := env.catalog.GetItem(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wool coat", got.Name)
	assert.Equal(t, "Warm winter coat", got.Description)
	assert.Equal(t, 45, got.Cost)
	assert.Equal(t, []string{"https://media.test/coat.jpg"}, got.Images)
	assert.Equal(t, domain.ConditionLikeNew, got.Condition)
	assert.Equal(t, []string{"coat", "jacket"}, got.Tags)
	require.NotNil(t, got.Size)
	assert.Equal(t, domain.SizeM, *got.Size)
	assert.Equal(t, domain.CategoryWomen, got.Category)
	assert.Equal(t, domain.ItemStatusPending, got.Status)
	assert.Equal(t, owner.ID, got.OwnerID)

	profile, err := env.members.GetProfile(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Contains(t, profile.Items, created.ID)
}

func TestCreateItemWithoutTagsMentionsTag(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")
	input := validInput()
	input.Tags = []string{}

	_, err := env.catalog.CreateItem(context.Background(), owner.ID, input)
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Contains(t, de.Message, "tag")
	assert.Contains(t, de.Details, "tags")
}

func TestCreateItemListsEveryViolation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")
	bad := "XXS"

	_, err := env.catalog.CreateItem(context.Background(), owner.ID, CreateItemInput{
		Cost:      intPtr(-1),
		Images:    []string{"not a url"},
		Condition: "mint",
		Tags:      []string{"spaceship"},
		Size:      &bad,
		Category:  "pets",
	})
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	for _, field := range []string{"name", "description", "cost", "images", "condition", "tags", "size", "category"} {
		assert.Contains(t, de.Details, field)
	}
}

func TestCreateItemStripsMarkup(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")
	input := validInput()
	input.Description = `<b>Soft</b> & cosy<script>alert(1)</script>`

	item, err := env.catalog.CreateItem(context.Background(), owner.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Soft & cosy", item.Description)
}

func TestCreateItemStripsEscapedMarkup(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")
	input := validInput()
	input.Name = `<b>Wool</b> coat<img src=x onerror=alert(1)>`
	input.Description = `Warm &lt;b&gt;wool&lt;/b&gt; coat&lt;script&gt;alert(1)&lt;/script&gt; &amp;lt;i&amp;gt;lined`

	item, err := env.catalog.CreateItem(context.Background(), owner.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Wool coat", item.Name)
	assert.Equal(t, "Warm wool coat lined", item.Description)

	stored, err := env.catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Name, "<")
	assert.NotContains(t, stored.Description, "<")
}

func TestCreateItemRejectsMarkupOnlyName(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")
	input := validInput()
	input.Name = `<img src=x onerror=alert(1)>`
	input.Description = `&lt;script&gt;alert(1)&lt;/script&gt;`

	_, err := env.catalog.CreateItem(context.Background(), owner.ID, input)
	de := requireCode(t, err, apperrors.CodeValidationFailed)
	assert.Contains(t, de.Details, "name")
	assert.Contains(t, de.Details, "description")
}

func TestCreateItemUnknownOwner(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateItem(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427", validInput())
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestListItemsShowsOnlyAvailable(t *testing.T) {
	env := newTestEnv(t)
	owner := env.user(t, "ana")
	visible := env.listed(t, owner, "visible", domain.ItemStatusAvailable)
	env.listed(t, owner, "waiting", domain.ItemStatusPending)
	env.listed(t, owner, "gone", domain.ItemStatusRedeemed)

	items, err := env.catalog.ListItems(context.Background(), ItemQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, visible.ID, items[0].ID)

	items, err = env.catalog.ListItems(context.Background(), ItemQuery{Search: "VISI"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = env.catalog.ListItems(context.Background(), ItemQuery{MaxCost: intPtr(10)})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListItemsRejectsBadFilters(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.ListItems(context.Background(), ItemQuery{Category: "pets"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = env.catalog.ListItems(context.Background(), ItemQuery{MinCost: intPtr(50), MaxCost: intPtr(10)})
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestGetItemErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.GetItem(context.Background(), "nope")
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = env.catalog.GetItem(context.Background(), "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	requireCode(t, err, apperrors.CodeNotFound)
}
