package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rewear-service/internal/domain"
)

// RedemptionRepository records point purchases.
type RedemptionRepository interface {
	// Redeem marks the item redeemed, moves points from buyer to seller and
	// stores the redemption in one transaction. It returns the updated buyer.
	Redeem(ctx context.Context, redemption *domain.Redemption) (*domain.User, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Redemption, error)
}

type redemptionRepository struct {
	pool *pgxpool.Pool
}

// NewRedemptionRepository builds repository.
func NewRedemptionRepository(pool *pgxpool.Pool) RedemptionRepository {
	return &redemptionRepository{pool: pool}
}

func (r *redemptionRepository) Redeem(ctx context.Context, redemption *domain.Redemption) (*domain.User, error) {
	var buyer *domain.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		ids := []string{redemption.ItemID}
		if err := setItemStatuses(ctx, tx, ids, domain.ItemStatusAvailable, domain.ItemStatusRedeemed); err != nil {
			return err
		}
		if err := adjustPointsTx(ctx, tx, redemption.BuyerID, -redemption.Cost); err != nil {
			return err
		}
		if err := adjustPointsTx(ctx, tx, redemption.SellerID, redemption.Cost); err != nil {
			return err
		}
		const insert = `
            INSERT INTO redemptions (item_id, buyer_id, seller_id, cost)
            VALUES ($1,$2,$3,$4)
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insert,
			redemption.ItemID,
			redemption.BuyerID,
			redemption.SellerID,
			redemption.Cost,
		).Scan(&redemption.ID, &redemption.CreatedAt); err != nil {
			return err
		}
		user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id=$1`, redemption.BuyerID))
		if err != nil {
			return err
		}
		buyer = user
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return buyer, nil
}

func (r *redemptionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Redemption, error) {
	const query = `
        SELECT id, item_id, buyer_id, seller_id, cost, created_at
        FROM redemptions WHERE buyer_id=$1 OR seller_id=$1
        ORDER BY created_at DESC, id ASC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Redemption
	for rows.Next() {
		var redemption domain.Redemption
		if err := rows.Scan(
			&redemption.ID,
			&redemption.ItemID,
			&redemption.BuyerID,
			&redemption.SellerID,
			&redemption.Cost,
			&redemption.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, redemption)
	}
	return result, rows.Err()
}
