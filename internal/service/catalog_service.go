package service

import (
	"context"
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/spec-kit/rewear-service/internal/domain"
	"github.com/spec-kit/rewear-service/internal/events"
	"github.com/spec-kit/rewear-service/internal/repository"
	apperrors "github.com/spec-kit/rewear-service/pkg/util"
)

// CatalogService owns item creation and public browsing.
type CatalogService struct {
	items      repository.ItemRepository
	users      repository.UserRepository
	history    repository.ItemHistoryRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	policy     *bluemonday.Policy
}

// CatalogDependencies bundles repositories for the catalog.
type CatalogDependencies struct {
	ItemRepo    repository.ItemRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.ItemHistoryRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		items:      deps.ItemRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		policy:     bluemonday.StrictPolicy(),
	}
}

// CreateItemInput is the client-supplied part of a listing.
type CreateItemInput struct {
	Name        string
	Description string
	Cost        *int
	Images      []string
	Condition   string
	Tags        []string
	Size        *string
	Category    string
}

// ItemQuery holds public listing filters as received from the client.
type ItemQuery struct {
	Category  string
	Condition string
	Tags      []string
	MinCost   *int
	MaxCost   *int
	Search    string
	Limit     int
}

// CreateItem validates input and stores a pending listing owned by ownerID.
func (s *CatalogService) CreateItem(ctx context.Context, ownerID string, input CreateItemInput) (*domain.Item, error) {
	ownerID, err := parseID("ownerId", ownerID)
	if err != nil {
		return nil, err
	}
	item, err := s.buildItem(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, notFoundOr(err, "owner", ownerID)
	}

	item.OwnerID = ownerID
	item.Status = domain.ItemStatusPending
	if err := s.items.Create(ctx, item); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.recordHistory(ctx, item.ID, "", domain.ItemStatusPending, &ownerID, "listed")
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventItemCreated,
		ActorID: &ownerID,
		Payload: events.ItemCreatedPayload{ItemID: item.ID, OwnerID: ownerID, Name: item.Name},
	})
	return item, nil
}

// ListItems returns available items matching query, newest first.
func (s *CatalogService) ListItems(ctx context.Context, query ItemQuery) ([]domain.Item, error) {
	filter, err := query.toFilter()
	if err != nil {
		return nil, err
	}
	filter.Statuses = []domain.ItemStatus{domain.ItemStatusAvailable}
	items, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return nonNil(items), nil
}

// GetItem loads one item regardless of status.
func (s *CatalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	id, err := parseID("itemId", id)
	if err != nil {
		return nil, err
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "item", id)
	}
	return item, nil
}

func (s *CatalogService) buildItem(input CreateItemInput) (*domain.Item, error) {
	problems := fieldErrors{}

	name := s.plainText(input.Name)
	switch {
	case name == "":
		problems.add("name", "required")
	case utf8.RuneCountInString(name) > domain.MaxItemNameLength:
		problems.add("name", "must be at most 100 characters")
	}

	description := s.plainText(input.Description)
	switch {
	case description == "":
		problems.add("description", "required")
	case utf8.RuneCountInString(description) > domain.MaxItemDescriptionLength:
		problems.add("description", "must be at most 1000 characters")
	}

	cost := 0
	switch {
	case input.Cost == nil:
		problems.add("cost", "required")
	case *input.Cost < 0:
		problems.add("cost", "must be zero or greater")
	default:
		cost = *input.Cost
	}

	images := make([]string, 0, len(input.Images))
	for _, raw := range input.Images {
		image := strings.TrimSpace(raw)
		if !isHTTPURL(image) {
			problems.add("images", "each image must be an http(s) URL")
			continue
		}
		images = append(images, image)
	}
	if len(input.Images) == 0 {
		problems.add("images", "at least one image is required")
	}

	condition := domain.ItemCondition(strings.TrimSpace(input.Condition))
	if !condition.Valid() {
		problems.add("condition", "must be one of new, like-new, excellent, good, fair, poor")
	}

	tags := make([]string, 0, len(input.Tags))
	seen := map[string]struct{}{}
	for _, raw := range input.Tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if !domain.IsGarmentTag(tag) {
			problems.add("tags", "unknown tag "+raw)
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(input.Tags) == 0 {
		problems.add("tags", "at least one tag from the garment vocabulary is required")
	}

	category := domain.ItemCategory(strings.TrimSpace(input.Category))
	if !category.Valid() {
		problems.add("category", "must be one of men, women, unisex, kids")
	}

	var size *domain.ItemSize
	if input.Size != nil && strings.TrimSpace(*input.Size) != "" {
		candidate := domain.ItemSize(strings.TrimSpace(*input.Size))
		if candidate.Valid() {
			size = &candidate
		} else {
			problems.add("size", "must be one of XS, S, M, L, XL, XXL, XXXL, one-size")
		}
	}

	if err := problems.err(); err != nil {
		return nil, err
	}
	return &domain.Item{
		Name:        name,
		Description: description,
		Cost:        cost,
		Images:      images,
		Condition:   condition,
		Tags:        tags,
		Size:        size,
		Category:    category,
	}, nil
}

// maxSanitizePasses bounds how many entity layers plainText decodes.
const maxSanitizePasses = 4

// plainText strips markup from user text and trims it. Entities are decoded
// and the result sanitized again until it stops changing, so escaped markup
// cannot come back to life.
func (s *CatalogService) plainText(in string) string {
	text := in
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			return strings.TrimSpace(text)
		}
		text = next
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}

func (s *CatalogService) recordHistory(ctx context.Context, itemID string, from, to domain.ItemStatus, actorID *string, reason string) {
	recordStatusChange(ctx, s.history, s.logger, itemID, from, to, actorID, reason)
}

func (q ItemQuery) toFilter() (repository.ItemFilter, error) {
	problems := fieldErrors{}
	filter := repository.ItemFilter{Limit: q.Limit}

	if c := strings.TrimSpace(q.Category); c != "" {
		category := domain.ItemCategory(c)
		if category.Valid() {
			filter.Category = &category
		} else {
			problems.add("category", "unknown category")
		}
	}
	if c := strings.TrimSpace(q.Condition); c != "" {
		condition := domain.ItemCondition(c)
		if condition.Valid() {
			filter.Condition = &condition
		} else {
			problems.add("condition", "unknown condition")
		}
	}
	for _, raw := range q.Tags {
		if tag := strings.ToLower(strings.TrimSpace(raw)); tag != "" {
			filter.Tags = append(filter.Tags, tag)
		}
	}
	if q.MinCost != nil && *q.MinCost < 0 {
		problems.add("minCost", "must be zero or greater")
	}
	if q.MaxCost != nil && *q.MaxCost < 0 {
		problems.add("maxCost", "must be zero or greater")
	}
	if q.MinCost != nil && q.MaxCost != nil && *q.MinCost > *q.MaxCost {
		problems.add("maxCost", "must not be below minCost")
	}
	if q.Limit < 0 {
		problems.add("limit", "must be positive")
	}
	filter.MinCost = q.MinCost
	filter.MaxCost = q.MaxCost
	if search := strings.TrimSpace(q.Search); search != "" {
		filter.SearchTerm = &search
	}
	return filter, problems.err()
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
