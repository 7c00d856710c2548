package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rewear-service/internal/domain"
)

// UserRepository defines persistence access for members.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// AdjustPoints adds delta to the balance, refusing to go below zero.
	AdjustPoints(ctx context.Context, id string, delta int) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `u.id, u.name, u.email, COALESCE(u.password_hash, ''), u.avatar_url, u.user_type, u.points,
        COALESCE(ARRAY(SELECT i.id::text FROM items i WHERE i.owner_id = u.id ORDER BY i.created_at, i.id), '{}'),
        u.rating, u.created_at, u.updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, avatar_url, user_type, points)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		normalizeEmail(user.Email),
		user.PasswordHash,
		user.AvatarURL,
		string(user.UserType),
		user.Points,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	user.Email = normalizeEmail(user.Email)
	user.Items = []string{}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email=$1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func (r *userRepository) AdjustPoints(ctx context.Context, id string, delta int) (*domain.User, error) {
	var updated *domain.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := adjustPointsTx(ctx, tx, id, delta); err != nil {
			return err
		}
		query := `SELECT ` + userColumns + ` FROM users u WHERE u.id=$1`
		user, err := scanUser(tx.QueryRow(ctx, query, id))
		if err != nil {
			return translate(err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// adjustPointsTx applies delta inside tx, telling a missing user apart from a short balance.
func adjustPointsTx(ctx context.Context, tx pgx.Tx, id string, delta int) error {
	cmd, err := tx.Exec(ctx,
		`UPDATE users SET points = points + $1, updated_at=NOW() WHERE id=$2 AND points + $1 >= 0`,
		delta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInsufficientBalance
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.UserType,
		&user.Points,
		&user.Items,
		&user.Rating,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
