package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

const userSelect = `
	SELECT
		u.id, u.hub_id, u.name, u.email, u.password, u.email_verified_at,
		u.about, u.profile_photo_path, u.cover_photo_path, u.role,
		u.created_at, u.updated_at,
		(SELECT COUNT(*) FROM user_follows f WHERE f.following_id = u.id) AS follower_count,
		(SELECT COUNT(*) FROM user_follows f WHERE f.follower_id = u.id) AS following_count,
		EXISTS (
			SELECT 1 FROM bans b
			WHERE b.user_id = u.id AND (b.expired_at IS NULL OR b.expired_at > NOW())
		) AS banned
	FROM users u
`

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users
			(hub_id, name, email, password, email_verified_at, about,
			 profile_photo_path, cover_photo_path, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		user.HubID, user.Name, user.Email, user.Password, user.EmailVerifiedAt,
		user.About, user.ProfilePhoto, user.CoverPhoto, string(user.Role),
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, `WHERE u.id = $1`, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `WHERE LOWER(u.email) = LOWER($1)`, email)
}

func (r *userRepo) get(ctx context.Context, where string, arg interface{}) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, userSelect+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(
		&u.ID, &u.HubID, &u.Name, &u.Email, &u.Password, &u.EmailVerifiedAt,
		&u.About, &u.ProfilePhoto, &u.CoverPhoto, &role,
		&u.CreatedAt, &u.UpdatedAt, &u.FollowerCount, &u.FollowingCount, &u.Banned,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
