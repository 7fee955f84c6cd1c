package repositories

import (
	"context"
	"encoding/json"
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

var postColumns = []string{
	"id", "author_id", "author_name", "author_photo", "content", "category",
	"likes", "comments", "created_at", "updated_at",
}

// PostRepository handles community post database operations
type PostRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		db: db,
		sb: statementBuilder(),
	}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.AuthorPhoto, &p.Content, &p.Category,
		&p.Likes, &p.Comments, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Likes == nil {
		p.Likes = []string{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	return p, nil
}

// Create inserts a new post with no likes or comments
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt, post.UpdatedAt = now, now
	post.Likes = []string{}
	post.Comments = []models.Comment{}

	sql, args, err := r.sb.Insert("community_posts").
		Columns("id", "author_id", "author_name", "author_photo", "content", "category", "created_at", "updated_at").
		Values(post.ID, post.AuthorID, post.AuthorName, post.AuthorPhoto, post.Content, post.Category,
			post.CreatedAt, post.UpdatedAt).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create post SQL")
		return fmt.Errorf("failed to build create post query: %w", err)
	}

	if _, err = r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("authorID", post.AuthorID).Msg("Error executing create post query")
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	sql, args, err := r.sb.Select(postColumns...).
		From("community_posts").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberrors.IsInvalidInput(err) {
			return nil, apperrors.ErrPostNotFound
		}
		logger.Error().Err(err).Str("postID", id).Msg("Error scanning post row")
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return post, nil
}

func postConditions(filter PostFilter) squirrel.And {
	conds := squirrel.And{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"content": pattern},
			squirrel.ILike{"author_name": pattern},
			squirrel.ILike{"category": pattern},
		})
	}
	if filter.Category != "" {
		conds = append(conds, squirrel.Eq{"category": filter.Category})
	}
	return conds
}

func postOrder(sort PostSort) []string {
	switch sort {
	case PostSortOldest:
		return []string{"created_at ASC", "id ASC"}
	case PostSortMostLiked:
		return []string{"cardinality(likes) DESC", "created_at DESC", "id DESC"}
	case PostSortMostCommented:
		return []string{"jsonb_array_length(comments) DESC", "created_at DESC", "id DESC"}
	default:
		return []string{"created_at DESC", "id DESC"}
	}
}

// List returns a page of posts matching the filter and the total match count.
func (r *PostRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error) {
	conds := postConditions(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("community_posts").Where(conds).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count posts query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting posts")
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	q := r.sb.Select(postColumns...).From("community_posts").Where(conds).OrderBy(postOrder(filter.Sort)...)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list posts query")
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, total, nil
}

// ToggleLike adds or removes the user's like and reports whether the post is now liked.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	liked, err := toggleLike(ctx, r.db, "community_posts", postID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, apperrors.ErrPostNotFound
	}
	return liked, err
}

// AddComment appends a comment to the post's embedded list.
func (r *PostRepository) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("failed to encode comment: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, `
		UPDATE community_posts
		SET comments = comments || jsonb_build_array($2::jsonb), updated_at = NOW()
		WHERE id = $1`,
		postID, string(payload))
	if err != nil {
		if dberrors.IsInvalidInput(err) {
			return apperrors.ErrPostNotFound
		}
		logger.Error().Err(err).Str("postID", postID).Msg("Error executing add comment query")
		return fmt.Errorf("error adding comment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// RemoveComment drops one comment from the post's embedded list.
func (r *PostRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE community_posts
		SET comments = COALESCE(
			(SELECT jsonb_agg(c) FROM jsonb_array_elements(comments) AS c WHERE c->>'id' <> $2::text),
			'[]'::jsonb),
			updated_at = NOW()
		WHERE id = $1
		  AND EXISTS (SELECT 1 FROM jsonb_array_elements(comments) AS c WHERE c->>'id' = $2::text)`,
		postID, commentID)
	if err != nil {
		logger.Error().Err(err).Str("postID", postID).Msg("Error executing remove comment query")
		return fmt.Errorf("error removing comment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("community_posts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete post query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("postID", id).Msg("Error executing delete post query")
		return fmt.Errorf("error deleting post: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// Categories returns the distinct non-empty categories in use.
func (r *PostRepository) Categories(ctx context.Context) ([]string, error) {
	return distinctValues(ctx, r.db, r.sb.Select("DISTINCT category").
		From("community_posts").
		Where(squirrel.NotEq{"category": ""}).
		OrderBy("category"))
}

// toggleLike flips userID's membership in the likes array of a row in table.
func toggleLike(ctx context.Context, db *pgxpool.Pool, table, id, userID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET likes = CASE
			WHEN $2::text = ANY(likes) THEN array_remove(likes, $2::text)
			ELSE array_append(likes, $2::text)
		END
		WHERE id = $1
		RETURNING $2::text = ANY(likes)`, table)

	var liked bool
	if err := db.QueryRow(ctx, query, id, userID).Scan(&liked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || dberrors.IsInvalidInput(err) {
			return false, pgx.ErrNoRows
		}
		logger.Error().Err(err).Str("table", table).Str("id", id).Msg("Error executing toggle like query")
		return false, fmt.Errorf("error toggling like: %w", err)
	}
	return liked, nil
}

func distinctValues(ctx context.Context, db *pgxpool.Pool, q squirrel.SelectBuilder) ([]string, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build distinct query: %w", err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying distinct values: %w", err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error collecting distinct values: %w", err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
