package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// AllSkills is the skill filter value that disables filtering.
const AllSkills = "all"

var resourceColumns = []string{
	"id", "author_id", "author_name", "author_photo", "title", "description", "url", "skill",
	"likes", "created_at",
}

// ResourceRepository handles learning resource database operations
type ResourceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	res := &models.Resource{}
	err := row.Scan(&res.ID, &res.AuthorID, &res.AuthorName, &res.AuthorPhoto, &res.Title, &res.Description,
		&res.URL, &res.Skill, &res.Likes, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	if res.Likes == nil {
		res.Likes = []string{}
	}
	return res, nil
}

// Create inserts a new resource
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res.CreatedAt = time.Now().UTC()
	res.Likes = []string{}

	sql, args, err := r.sb.Insert("resources").
		Columns("id", "author_id", "author_name", "author_photo", "title", "description", "url", "skill", "created_at").
		Values(res.ID, res.AuthorID, res.AuthorName, res.AuthorPhoto, res.Title, res.Description, res.URL,
			res.Skill, res.CreatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create resource SQL")
		return fmt.Errorf("failed to build create resource query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("authorID", res.AuthorID).Msg("Error executing create resource query")
		return fmt.Errorf("error creating resource: %w", err)
	}
	return nil
}

// GetByID retrieves a resource by ID
func (r *ResourceRepository) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	sql, args, err := r.sb.Select(resourceColumns...).
		From("resources").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get resource query: %w", err)
	}

	res, err := scanResource(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberrors.IsInvalidInput(err) {
			return nil, apperrors.ErrLearningResNotFound
		}
		logger.Error().Err(err).Str("resourceID", id).Msg("Error scanning resource row")
		return nil, fmt.Errorf("error retrieving resource: %w", err)
	}
	return res, nil
}

// List returns resources newest first, optionally for a single skill.
func (r *ResourceRepository) List(ctx context.Context, skill string) ([]*models.Resource, error) {
	q := r.sb.Select(resourceColumns...).From("resources").OrderBy("created_at DESC", "id DESC")
	if s := strings.TrimSpace(skill); s != "" && !strings.EqualFold(s, AllSkills) {
		q = q.Where(squirrel.Eq{"skill": s})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list resources query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list resources query")
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer rows.Close()

	resources := make([]*models.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}
	return resources, nil
}

// ToggleLike adds or removes the user's like and reports whether the resource is now liked.
func (r *ResourceRepository) ToggleLike(ctx context.Context, resourceID, userID string) (bool, error) {
	liked, err := toggleLike(ctx, r.db, "resources", resourceID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.ErrLearningResNotFound
	}
	return liked, err
}

// Delete removes a resource
func (r *ResourceRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("resources").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete resource query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("resourceID", id).Msg("Error executing delete resource query")
		return fmt.Errorf("error deleting resource: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLearningResNotFound
	}
	return nil
}

// Skills returns the distinct skill tags of stored resources.
func (r *ResourceRepository) Skills(ctx context.Context) ([]string, error) {
	return distinctValues(ctx, r.db, r.sb.Select("DISTINCT skill").
		From("resources").
		Where(squirrel.NotEq{"skill": ""}).
		OrderBy("skill"))
}
