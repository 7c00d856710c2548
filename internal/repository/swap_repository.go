package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rewear-service/internal/domain"
)

// SwapRepository persists swaps and the item locks they hold.
type SwapRepository interface {
	// CreatePending locks both items (available -> in-swap-process) and inserts
	// the swap in one transaction. ErrStatusConflict means another proposal won.
	CreatePending(ctx context.Context, swap *domain.Swap) error
	GetByID(ctx context.Context, id string) (*domain.Swap, error)
	// FindPendingByItems returns pending swaps naming any of the ids on either side.
	FindPendingByItems(ctx context.Context, itemIDs ...string) ([]domain.Swap, error)
	// Settle moves a pending swap to status and releases or redeems both items.
	Settle(ctx context.Context, id string, status domain.SwapStatus) (*domain.Swap, error)
	ListForUser(ctx context.Context, userID string, direction domain.SwapDirection) ([]domain.Swap, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Swap, error)
}

type swapRepository struct {
	pool *pgxpool.Pool
}

// NewSwapRepository builds repository.
func NewSwapRepository(pool *pgxpool.Pool) SwapRepository {
	return &swapRepository{pool: pool}
}

const swapColumns = `id, initiator_id, counterparty_id, item_offered_id, item_requested_id, status, created_at, updated_at, decided_at`

func (r *swapRepository) CreatePending(ctx context.Context, swap *domain.Swap) error {
	return translate(pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ids := []string{swap.ItemOfferedID, swap.ItemRequestedID}
		if err := setItemStatuses(ctx, tx, ids, domain.ItemStatusAvailable, domain.ItemStatusInSwapProcess); err != nil {
			return err
		}
		var clash bool
		if err := tx.QueryRow(ctx, `
            SELECT EXISTS(
                SELECT 1 FROM swaps
                WHERE status=$1 AND (item_offered_id = ANY($2::uuid[]) OR item_requested_id = ANY($2::uuid[])))`,
			string(domain.SwapStatusPending), ids,
		).Scan(&clash); err != nil {
			return err
		}
		if clash {
			return ErrStatusConflict
		}
		const insert = `
            INSERT INTO swaps (initiator_id, counterparty_id, item_offered_id, item_requested_id, status)
            VALUES ($1,$2,$3,$4,$5)
            RETURNING id, created_at, updated_at`
		swap.Status = domain.SwapStatusPending
		return tx.QueryRow(ctx, insert,
			swap.InitiatorID,
			swap.CounterpartyID,
			swap.ItemOfferedID,
			swap.ItemRequestedID,
			string(swap.Status),
		).Scan(&swap.ID, &swap.CreatedAt, &swap.UpdatedAt)
	}))
}

func (r *swapRepository) GetByID(ctx context.Context, id string) (*domain.Swap, error) {
	query := `SELECT ` + swapColumns + ` FROM swaps WHERE id=$1`
	swap, err := scanSwap(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return swap, nil
}

func (r *swapRepository) FindPendingByItems(ctx context.Context, itemIDs ...string) ([]domain.Swap, error) {
	query := `SELECT ` + swapColumns + ` FROM swaps
        WHERE status=$1 AND (item_offered_id = ANY($2::uuid[]) OR item_requested_id = ANY($2::uuid[]))
        ORDER BY created_at DESC, id ASC`
	return r.query(ctx, query, string(domain.SwapStatusPending), itemIDs)
}

func (r *swapRepository) Settle(ctx context.Context, id string, status domain.SwapStatus) (*domain.Swap, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("settle swap %s: %q is not terminal", id, status)
	}
	var settled *domain.Swap
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `UPDATE swaps SET status=$1, decided_at=NOW(), updated_at=NOW()
            WHERE id=$2 AND status=$3 RETURNING ` + swapColumns
		swap, err := scanSwap(tx.QueryRow(ctx, query, string(status), id, string(domain.SwapStatusPending)))
		if err != nil {
			if translate(err) != ErrNotFound {
				return err
			}
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM swaps WHERE id=$1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return ErrNotFound
			}
			return ErrStatusConflict
		}
		// Items locked by a pending swap cannot be deleted, so both rows match.
		ids := []string{swap.ItemOfferedID, swap.ItemRequestedID}
		if err := setItemStatuses(ctx, tx, ids, domain.ItemStatusInSwapProcess, status.SettledItemStatus()); err != nil {
			return err
		}
		settled = swap
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return settled, nil
}

func (r *swapRepository) ListForUser(ctx context.Context, userID string, direction domain.SwapDirection) ([]domain.Swap, error) {
	var where string
	switch direction {
	case domain.SwapDirectionInitiated:
		where = "initiator_id=$1"
	case domain.SwapDirectionReceived:
		where = "counterparty_id=$1"
	default:
		where = "(initiator_id=$1 OR counterparty_id=$1)"
	}
	query := `SELECT ` + swapColumns + ` FROM swaps WHERE ` + where + ` ORDER BY created_at DESC, id ASC`
	return r.query(ctx, query, userID)
}

func (r *swapRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Swap, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := `SELECT ` + swapColumns + ` FROM swaps WHERE status=$1 AND created_at < $2
        ORDER BY created_at ASC, id ASC LIMIT $3`
	return r.query(ctx, query, string(domain.SwapStatusPending), cutoff, limit)
}

func (r *swapRepository) query(ctx context.Context, query string, args ...any) ([]domain.Swap, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Swap
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *swap)
	}
	return result, rows.Err()
}

func scanSwap(row pgx.Row) (*domain.Swap, error) {
	var swap domain.Swap
	if err := row.Scan(
		&swap.ID,
		&swap.InitiatorID,
		&swap.CounterpartyID,
		&swap.ItemOfferedID,
		&swap.ItemRequestedID,
		&swap.Status,
		&swap.CreatedAt,
		&swap.UpdatedAt,
		&swap.DecidedAt,
	); err != nil {
		return nil, err
	}
	return &swap, nil
}
