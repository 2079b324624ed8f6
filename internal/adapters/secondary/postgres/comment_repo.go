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

const commentSelect = `
	SELECT
		c.id, c.user_id, c.commentable_type, c.commentable_id, c.parent_id,
		c.root_id, c.body, c.edited_at, c.pinned_at, c.deleted_at,
		c.created_at, c.updated_at, COALESCE(u.name, '') AS user_name
	FROM comments c
	LEFT JOIN users u ON u.id = c.user_id
`

type commentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) ports.CommentRepository {
	return &commentRepo{pool: pool}
}

func (r *commentRepo) Create(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments
			(user_id, commentable_type, commentable_id, parent_id, root_id, body,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		c.UserID, string(c.CommentableType), c.CommentableID, c.ParentID, c.RootID,
		c.Body, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCommentNotFound
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("get comment by id: %w", err)
	}
	return c, nil
}

func (r *commentRepo) Update(ctx context.Context, c *domain.Comment) error {
	query := `
		UPDATE comments
		SET body=$1, edited_at=$2, pinned_at=$3, deleted_at=$4, updated_at=NOW()
		WHERE id=$5
	`
	result, err := r.pool.Exec(ctx, query, c.Body, c.EditedAt, c.PinnedAt, c.DeletedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepo) ListByCommentable(ctx context.Context, typ domain.CommentableType, id int64) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		commentSelect+` WHERE c.commentable_type = $1 AND c.commentable_id = $2 ORDER BY c.created_at, c.id`,
		string(typ), id)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var (
		c   domain.Comment
		typ string
	)
	err := row.Scan(
		&c.ID, &c.UserID, &typ, &c.CommentableID, &c.ParentID, &c.RootID,
		&c.Body, &c.EditedAt, &c.PinnedAt, &c.DeletedAt, &c.CreatedAt,
		&c.UpdatedAt, &c.UserName,
	)
	if err != nil {
		return nil, err
	}
	c.CommentableType = domain.CommentableType(typ)
	return &c, nil
}
