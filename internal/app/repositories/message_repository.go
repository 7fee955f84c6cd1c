package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/dberrors"
	"github.com/yigit/skillswap/internal/pkg/logger"
)

var messageColumns = []string{
	"id", "exchange_id", "type", "text", "sender_id", "sender_name", "sender_photo",
	"meeting_link", "resource_title", "resource_url", "resource_type", "created_at",
}

// MessageRepository stores exchange threads in PostgreSQL
type MessageRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	m := &models.Message{}
	err := row.Scan(&m.ID, &m.ExchangeID, &m.Type, &m.Text, &m.SenderID, &m.SenderName, &m.SenderPhoto,
		&m.MeetingLink, &m.ResourceTitle, &m.ResourceURL, &m.ResourceType, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// prepareMessage fills the id and timestamp of a new message.
func prepareMessage(msg *models.Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
}

// Append adds a message to the thread of its exchange
func (r *MessageRepository) Append(ctx context.Context, msg *models.Message) error {
	prepareMessage(msg)
	sql, args, err := r.sb.Insert("exchange_messages").
		Columns(messageColumns...).
		Values(msg.ID, msg.ExchangeID, msg.Type, msg.Text, msg.SenderID, msg.SenderName, msg.SenderPhoto,
			msg.MeetingLink, msg.ResourceTitle, msg.ResourceURL, msg.ResourceType, msg.CreatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building append message SQL")
		return fmt.Errorf("failed to build append message query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrExchangeNotFound
		}
		logger.Error().Err(err).Str("exchangeID", msg.ExchangeID).Msg("Error executing append message query")
		return fmt.Errorf("error appending message: %w", err)
	}
	return nil
}

// ListByExchange returns the thread in storage order (oldest first).
func (r *MessageRepository) ListByExchange(ctx context.Context, exchangeID string) ([]*models.Message, error) {
	sql, args, err := r.sb.Select(messageColumns...).
		From("exchange_messages").
		Where(squirrel.Eq{"exchange_id": exchangeID}).
		OrderBy("created_at ASC", "seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list messages query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("exchangeID", exchangeID).Msg("Error executing list messages query")
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

// Last returns the newest message of a thread, or nil when the thread is empty.
func (r *MessageRepository) Last(ctx context.Context, exchangeID string) (*models.Message, error) {
	sql, args, err := r.sb.Select(messageColumns...).
		From("exchange_messages").
		Where(squirrel.Eq{"exchange_id": exchangeID}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build last message query: %w", err)
	}

	m, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving last message: %w", err)
	}
	return m, nil
}

// DeleteByExchange removes every message of the thread.
func (r *MessageRepository) DeleteByExchange(ctx context.Context, exchangeID string) (int64, error) {
	sql, args, err := r.sb.Delete("exchange_messages").
		Where(squirrel.Eq{"exchange_id": exchangeID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build clear thread query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("exchangeID", exchangeID).Msg("Error executing clear thread query")
		return 0, fmt.Errorf("error clearing thread: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
