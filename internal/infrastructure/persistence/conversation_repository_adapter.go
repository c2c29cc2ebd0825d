package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/domain/valueobject"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
	"github.com/ignatzorin/proposal-backend/internal/pkg/pagination"
)

type ConversationRepositoryAdapter struct {
	db *sqlx.DB
}

func NewConversationRepositoryAdapter(db *sqlx.DB) *ConversationRepositoryAdapter {
	return &ConversationRepositoryAdapter{db: db}
}

var (
	_ repository.ConversationRepository = (*ConversationRepositoryAdapter)(nil)
	_ repository.MessageRepository      = (*MessageRepositoryAdapter)(nil)
)

func (r *ConversationRepositoryAdapter) Create(ctx context.Context, c *entity.Conversation) error {
	query := `
		INSERT INTO conversations (id, user_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Title, c.CreatedAt, c.UpdatedAt); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to create conversation")
	}
	return nil
}

func (r *ConversationRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var row conversationRow
	query := `SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrConversationNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get conversation")
	}
	return row.toEntity(), nil
}

func (r *ConversationRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]*entity.Conversation, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM conversations WHERE user_id = $1`, userID); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list conversations")
	}
	var rows []conversationRow
	query := `
		SELECT id, user_id, title, created_at, updated_at FROM conversations
		WHERE user_id = $1 ORDER BY updated_at DESC, id LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &rows, query, userID, page.Limit(), page.Offset()); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to list conversations")
	}
	result := make([]*entity.Conversation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, total, nil
}

func (r *ConversationRepositoryAdapter) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, id, at); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to update conversation")
	}
	return nil
}

func (r *ConversationRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to delete conversation")
	}
	return requireAffected(res, apperror.ErrConversationNotFound)
}

type conversationRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (c *conversationRow) toEntity() *entity.Conversation {
	return &entity.Conversation{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// MessageRepositoryAdapter хранит части сообщения в JSONB.
type MessageRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMessageRepositoryAdapter(db *sqlx.DB) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db}
}

func (r *MessageRepositoryAdapter) Append(ctx context.Context, messages []*entity.Message) error {
	if len(messages) == 0 {
		return nil
	}
	err := withTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		bi := newBatchInserter(tx, `INSERT INTO messages (id, conversation_id, role, content, parts, created_at)`, 6, 50)
		for _, m := range messages {
			parts, err := json.Marshal(m.Parts)
			if err != nil {
				return err
			}
			if err := bi.Add(ctx, m.ID, m.ConversationID, string(m.Role), m.Content, string(parts), m.CreatedAt); err != nil {
				return err
			}
		}
		return bi.Flush(ctx)
	})
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to save messages")
	}
	return nil
}

func (r *MessageRepositoryAdapter) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*entity.Message, error) {
	var rows []messageRow
	query := `
		SELECT id, conversation_id, role, content, parts, created_at FROM messages
		WHERE conversation_id = $1 ORDER BY created_at, id
	`
	if err := r.db.SelectContext(ctx, &rows, query, conversationID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get messages")
	}
	result := make([]*entity.Message, 0, len(rows))
	for i := range rows {
		msg, err := rows[i].toEntity()
		if err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Failed to get messages")
		}
		result = append(result, msg)
	}
	return result, nil
}

type messageRow struct {
	ID             uuid.UUID `db:"id"`
	ConversationID uuid.UUID `db:"conversation_id"`
	Role           string    `db:"role"`
	Content        string    `db:"content"`
	Parts          []byte    `db:"parts"`
	CreatedAt      time.Time `db:"created_at"`
}

func (m *messageRow) toEntity() (*entity.Message, error) {
	parts := []entity.MessagePart{}
	if len(m.Parts) > 0 {
		if err := json.Unmarshal(m.Parts, &parts); err != nil {
			return nil, err
		}
	}
	return &entity.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           valueobject.MessageRole(m.Role),
		Content:        m.Content,
		Parts:          parts,
		CreatedAt:      m.CreatedAt,
	}, nil
}
