package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rewear-service/internal/domain"
)

// ItemHistoryRepository stores item status audit entries.
type ItemHistoryRepository interface {
	Create(ctx context.Context, change *domain.ItemStatusChange) error
	ListByItem(ctx context.Context, itemID string) ([]domain.ItemStatusChange, error)
}

type itemHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewItemHistoryRepository builds repository.
func NewItemHistoryRepository(pool *pgxpool.Pool) ItemHistoryRepository {
	return &itemHistoryRepository{pool: pool}
}

func (r *itemHistoryRepository) Create(ctx context.Context, change *domain.ItemStatusChange) error {
	const query = `
        INSERT INTO item_status_changes (item_id, old_status, new_status, actor_id, reason)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		change.ItemID,
		string(change.OldStatus),
		string(change.NewStatus),
		change.ActorID,
		change.Reason,
	).Scan(&change.ID, &change.CreatedAt)
}

func (r *itemHistoryRepository) ListByItem(ctx context.Context, itemID string) ([]domain.ItemStatusChange, error) {
	const query = `
        SELECT id, item_id, old_status, new_status, actor_id, reason, created_at
        FROM item_status_changes WHERE item_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ItemStatusChange
	for rows.Next() {
		var change domain.ItemStatusChange
		if err := rows.Scan(
			&change.ID,
			&change.ItemID,
			&change.OldStatus,
			&change.NewStatus,
			&change.ActorID,
			&change.Reason,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
