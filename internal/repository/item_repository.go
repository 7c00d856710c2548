package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rewear-service/internal/domain"
)

// DefaultListLimit caps listings when the caller gives no limit.
const DefaultListLimit = 50

// MaxListLimit is the hard upper bound on a single listing page.
const MaxListLimit = 100

// ItemFilter captures catalog search parameters.
type ItemFilter struct {
	Statuses   []domain.ItemStatus
	OwnerID    *string
	Category   *domain.ItemCategory
	Condition  *domain.ItemCondition
	Tags       []string
	MinCost    *int
	MaxCost    *int
	SearchTerm *string
	Limit      int
}

// EffectiveLimit clamps Limit into (0, MaxListLimit].
func (f ItemFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}

// ItemRepository encapsulates item persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]domain.Item, error)
	// TransitionStatus moves the item to `to` only if its current status is one of `from`.
	TransitionStatus(ctx context.Context, id string, from []domain.ItemStatus, to domain.ItemStatus) (*domain.Item, error)
	// Delete removes the item unless it is locked by a pending swap.
	Delete(ctx context.Context, id string) error
}

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository instantiates repository.
func NewItemRepository(pool *pgxpool.Pool) ItemRepository {
	return &itemRepository{pool: pool}
}

const itemColumns = `id, owner_id, name, description, cost, images, condition, tags, size, category, status, created_at, updated_at`

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	const query = `
        INSERT INTO items (owner_id, name, description, cost, images, condition, tags, size, category, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	var size *string
	if item.Size != nil {
		s := string(*item.Size)
		size = &s
	}
	err := r.pool.QueryRow(ctx, query,
		item.OwnerID,
		item.Name,
		item.Description,
		item.Cost,
		item.Images,
		string(item.Condition),
		item.Tags,
		size,
		string(item.Category),
		string(item.Status),
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return translate(err)
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id=$1`
	item, err := scanItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, filter ItemFilter) ([]domain.Item, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		args = append(args, statusStrings(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Condition != nil {
		args = append(args, string(*filter.Condition))
		clauses = append(clauses, fmt.Sprintf("condition=$%d", len(args)))
	}
	if len(filter.Tags) > 0 {
		args = append(args, filter.Tags)
		clauses = append(clauses, fmt.Sprintf("tags && $%d::text[]", len(args)))
	}
	if filter.MinCost != nil {
		args = append(args, *filter.MinCost)
		clauses = append(clauses, fmt.Sprintf("cost >= $%d", len(args)))
	}
	if filter.MaxCost != nil {
		args = append(args, *filter.MaxCost)
		clauses = append(clauses, fmt.Sprintf("cost <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, likePattern(*filter.SearchTerm))
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(name) LIKE %[1]s OR LOWER(description) LIKE %[1]s OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE LOWER(t) LIKE %[1]s))", p))
	}

	query := fmt.Sprintf(`SELECT %s FROM items WHERE %s ORDER BY created_at DESC, id ASC LIMIT %d`,
		itemColumns, strings.Join(clauses, " AND "), filter.EffectiveLimit())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, rows.Err()
}

func (r *itemRepository) TransitionStatus(ctx context.Context, id string, from []domain.ItemStatus, to domain.ItemStatus) (*domain.Item, error) {
	query := `UPDATE items SET status=$1, updated_at=NOW() WHERE id=$2 AND status = ANY($3) RETURNING ` + itemColumns
	item, err := scanItem(r.pool.QueryRow(ctx, query, string(to), id, statusStrings(from)))
	if err == nil {
		return item, nil
	}
	if translate(err) != ErrNotFound {
		return nil, err
	}
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusConflict
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id=$1 AND status <> $2`, id, string(domain.ItemStatusInSwapProcess))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrStatusConflict
}

// setItemStatuses conditionally moves every id from `from` to `to` inside tx.
func setItemStatuses(ctx context.Context, tx pgx.Tx, ids []string, from, to domain.ItemStatus) error {
	cmd, err := tx.Exec(ctx,
		`UPDATE items SET status=$1, updated_at=NOW() WHERE id = ANY($2::uuid[]) AND status=$3`,
		string(to), ids, string(from))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != int64(len(ids)) {
		return ErrStatusConflict
	}
	return nil
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item domain.Item
		size *string
	)
	if err := row.Scan(
		&item.ID,
		&item.OwnerID,
		&item.Name,
		&item.Description,
		&item.Cost,
		&item.Images,
		&item.Condition,
		&item.Tags,
		&size,
		&item.Category,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if size != nil {
		s := domain.ItemSize(*size)
		item.Size = &s
	}
	return &item, nil
}

func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(term) + "%"
}
