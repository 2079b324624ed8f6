package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"forge-service/internal/core/domain"
	ports "forge-service/internal/core/ports/output"
)

const conversationColumns = `c.id, c.user1_id, c.user2_id, c.last_message_at, c.created_at, c.updated_at`

type conversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) ports.ConversationRepository {
	return &conversationRepo{pool: pool}
}

func (r *conversationRepo) FindByParticipants(ctx context.Context, user1ID, user2ID int64) (*domain.Conversation, error) {
	return r.get(ctx, `WHERE c.user1_id = $1 AND c.user2_id = $2`, user1ID, user2ID)
}

func (r *conversationRepo) GetByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	return r.get(ctx, `WHERE c.id = $1`, id)
}

func (r *conversationRepo) get(ctx context.Context, where string, args ...interface{}) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations c `+where, args...).
		Scan(&c.ID, &c.User1ID, &c.User2ID, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// Create returns the existing row when the pair already has a conversation.
func (r *conversationRepo) Create(ctx context.Context, c *domain.Conversation) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO conversations (user1_id, user2_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO UPDATE SET user1_id = EXCLUDED.user1_id
		RETURNING id, last_message_at, created_at, updated_at
	`, c.User1ID, c.User2ID, c.CreatedAt, c.UpdatedAt).Scan(&c.ID, &c.LastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("create conversation: %w", err)
	}
	return nil
}

func (r *conversationRepo) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Conversation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE user1_id = $1 OR user2_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	query := `
		SELECT ` + conversationColumns + `,
			(SELECT COUNT(*) FROM messages m
			 WHERE m.conversation_id = c.id AND m.user_id <> $1 AND m.read_at IS NULL) AS unread
		FROM conversations c
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.last_message_at DESC NULLS LAST, c.id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	convs := []*domain.Conversation{}
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.User1ID, &c.User2ID, &c.LastMessageAt,
			&c.CreatedAt, &c.UpdatedAt, &c.UnreadCount); err != nil {
			return nil, 0, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate conversations: %w", err)
	}
	return convs, total, nil
}

func (r *conversationRepo) CreateMessage(ctx context.Context, msg *domain.Message) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO messages (conversation_id, user_id, content, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, msg.ConversationID, msg.UserID, msg.Content, msg.CreatedAt).Scan(&msg.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrConversationNotFound
			}
			return fmt.Errorf("insert message: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE conversations SET last_message_at = $2, updated_at = $2 WHERE id = $1`,
			msg.ConversationID, msg.CreatedAt); err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return nil
	})
}

// ListMessages pages a conversation newest first.
func (r *conversationRepo) ListMessages(ctx context.Context, conversationID int64, limit, offset int) ([]*domain.Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, user_id, content, read_at, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	msgs := []*domain.Message{}
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Content, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate messages: %w", err)
	}
	return msgs, total, nil
}

func (r *conversationRepo) MarkRead(ctx context.Context, conversationID, readerID int64, at time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE messages SET read_at = $3
		WHERE conversation_id = $1 AND user_id <> $2 AND read_at IS NULL
	`, conversationID, readerID, at)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return result.RowsAffected(), nil
}
