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

var exchangeColumns = []string{
	"id", "requester_id", "requester_name", "requester_photo",
	"recipient_id", "recipient_name", "recipient_photo",
	"skill_to_teach", "skill_to_learn", "status", "message", "meeting_link",
	"session_date", "session_time", "duration_minutes", "timezone",
	"created_at", "updated_at",
}

// ExchangeRepository handles exchange database operations
type ExchangeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExchangeRepository creates a new ExchangeRepository
func NewExchangeRepository(db *pgxpool.Pool) *ExchangeRepository {
	return &ExchangeRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanExchange(row pgx.Row) (*models.Exchange, error) {
	e := &models.Exchange{}
	err := row.Scan(&e.ID, &e.RequesterID, &e.RequesterName, &e.RequesterPhoto,
		&e.RecipientID, &e.RecipientName, &e.RecipientPhoto,
		&e.SkillToTeach, &e.SkillToLearn, &e.Status, &e.Message, &e.MeetingLink,
		&e.Date, &e.Time, &e.DurationMinutes, &e.Timezone,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new exchange
func (r *ExchangeRepository) Create(ctx context.Context, ex *models.Exchange) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ex.CreatedAt, ex.UpdatedAt = now, now

	sql, args, err := r.sb.Insert("exchanges").
		Columns(exchangeColumns...).
		Values(ex.ID, ex.RequesterID, ex.RequesterName, ex.RequesterPhoto,
			ex.RecipientID, ex.RecipientName, ex.RecipientPhoto,
			ex.SkillToTeach, ex.SkillToLearn, ex.Status, ex.Message, ex.MeetingLink,
			ex.Date, ex.Time, ex.DurationMinutes, ex.Timezone,
			ex.CreatedAt, ex.UpdatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create exchange SQL")
		return fmt.Errorf("failed to build create exchange query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("requesterID", ex.RequesterID).Str("recipientID", ex.RecipientID).
			Msg("Error executing create exchange query")
		return fmt.Errorf("error creating exchange: %w", err)
	}
	return nil
}

// GetByID retrieves an exchange by ID
func (r *ExchangeRepository) GetByID(ctx context.Context, id string) (*models.Exchange, error) {
	sql, args, err := r.sb.Select(exchangeColumns...).
		From("exchanges").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exchange query: %w", err)
	}

	ex, err := scanExchange(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberrors.IsInvalidInput(err) {
			return nil, apperrors.ErrExchangeNotFound
		}
		logger.Error().Err(err).Str("exchangeID", id).Msg("Error scanning exchange row")
		return nil, fmt.Errorf("error retrieving exchange: %w", err)
	}
	return ex, nil
}

// ListByParticipant returns every exchange the user takes part in, newest first.
func (r *ExchangeRepository) ListByParticipant(ctx context.Context, userID string) ([]*models.Exchange, error) {
	sql, args, err := r.sb.Select(exchangeColumns...).
		From("exchanges").
		Where(squirrel.Or{
			squirrel.Eq{"requester_id": userID},
			squirrel.Eq{"recipient_id": userID},
		}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list exchanges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID).Msg("Error executing list exchanges query")
		return nil, fmt.Errorf("error listing exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := make([]*models.Exchange, 0)
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchanges: %w", err)
	}
	return exchanges, nil
}

// UpdateStatus writes the status field.
func (r *ExchangeRepository) UpdateStatus(ctx context.Context, ex *models.Exchange) error {
	ex.UpdatedAt = time.Now().UTC()
	return r.update(ctx, ex.ID, r.sb.Update("exchanges").
		Set("status", ex.Status).
		Set("updated_at", ex.UpdatedAt))
}

// UpdateSchedule writes the status, slot and meeting link.
func (r *ExchangeRepository) UpdateSchedule(ctx context.Context, ex *models.Exchange) error {
	ex.UpdatedAt = time.Now().UTC()
	return r.update(ctx, ex.ID, r.sb.Update("exchanges").
		Set("status", ex.Status).
		Set("session_date", ex.Date).
		Set("session_time", ex.Time).
		Set("duration_minutes", ex.DurationMinutes).
		Set("timezone", ex.Timezone).
		Set("meeting_link", ex.MeetingLink).
		Set("updated_at", ex.UpdatedAt))
}

func (r *ExchangeRepository) update(ctx context.Context, id string, q squirrel.UpdateBuilder) error {
	sql, args, err := q.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update exchange SQL")
		return fmt.Errorf("failed to build update exchange query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("exchangeID", id).Msg("Error executing update exchange query")
		return fmt.Errorf("error updating exchange: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrExchangeNotFound
	}
	return nil
}
