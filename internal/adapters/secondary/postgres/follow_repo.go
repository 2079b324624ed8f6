package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

type followRepo struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) ports.FollowRepository {
	return &followRepo{pool: pool}
}

func (r *followRepo) Follow(ctx context.Context, followerID, followingID int64) (bool, error) {
	result, err := r.pool.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`, followerID, followingID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("follow user: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *followRepo) Unfollow(ctx context.Context, followerID, followingID int64) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM user_follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID); err != nil {
		return fmt.Errorf("unfollow user: %w", err)
	}
	return nil
}

func (r *followRepo) ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]*domain.User, int, error) {
	return r.list(ctx, "following_id", "follower_id", userID, limit, offset)
}

func (r *followRepo) ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*domain.User, int, error) {
	return r.list(ctx, "follower_id", "following_id", userID, limit, offset)
}

// list returns the users on the other side of the relation, newest first.
func (r *followRepo) list(ctx context.Context, matchCol, userCol string, userID int64, limit, offset int) ([]*domain.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM user_follows WHERE %s = $1`, matchCol), userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count follows: %w", err)
	}

	query := userSelect + fmt.Sprintf(`
		JOIN user_follows uf ON uf.%s = u.id
		WHERE uf.%s = $1
		ORDER BY uf.created_at DESC, u.id DESC
		LIMIT $2 OFFSET $3
	`, userCol, matchCol)

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list follows: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		u.Password = ""
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate follows: %w", err)
	}
	return users, total, nil
}
