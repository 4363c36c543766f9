package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"edu-recommender/internal/domain"
)

type videoRepository struct {
	pool DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(pool DB) domain.VideoRepository {
	return &videoRepository{pool: pool}
}

type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *videoRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *videoRepository) ExistsByYoutubeID(ctx context.Context, youtubeID string) (bool, error) {
	var exists bool
	err := r.getExecutor(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE youtube_id = $1)`, youtubeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check video existence: %w", err)
	}
	return exists, nil
}

func (r *videoRepository) Insert(ctx context.Context, video *domain.Video) (bool, error) {
	query := `
		INSERT INTO videos (youtube_id, title, description, thumbnail, channel, category, upload_date, duration, view_count, like_count, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (youtube_id) DO NOTHING
	`
	tag, err := r.getExecutor(ctx).Exec(ctx, query,
		video.YoutubeID,
		video.Title,
		video.Description,
		video.Thumbnail,
		video.Channel,
		video.Category,
		video.UploadDate,
		video.Duration,
		video.ViewCount,
		video.LikeCount,
		video.Embedding,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert video: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *videoRepository) HasEmbeddings(ctx context.Context) (bool, error) {
	var exists bool
	err := r.getExecutor(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM videos WHERE embedding IS NOT NULL)`,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to probe embeddings: %w", err)
	}
	return exists, nil
}

func (r *videoRepository) CountSimilar(ctx context.Context, queryVector []float32, bucket domain.Bucket, threshold float64) (int, error) {
	query := `SELECT COUNT(*) FROM videos WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) > $2`
	args := []interface{}{pgvector.NewVector(queryVector), threshold}
	query, args = appendBucketFilter(query, args, bucket)

	var count int
	if err := r.getExecutor(ctx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count similar videos: %w", err)
	}
	return count, nil
}

func (r *videoRepository) CountMatching(ctx context.Context, query string, bucket domain.Bucket) (int, error) {
	sql := `SELECT COUNT(*) FROM videos WHERE (title ILIKE $1 OR description ILIKE $1)`
	args := []interface{}{likePattern(query)}
	sql, args = appendBucketFilter(sql, args, bucket)

	var count int
	if err := r.getExecutor(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matching videos: %w", err)
	}
	return count, nil
}

func (r *videoRepository) SearchByVector(ctx context.Context, queryVector []float32, bucket domain.Bucket, limit int) ([]domain.VideoMatch, error) {
	sql := `
		SELECT youtube_id, title, COALESCE(description, ''), COALESCE(thumbnail, ''), COALESCE(channel, ''), duration,
		       COALESCE(view_count, 0), COALESCE(like_count, 0), 1 - (embedding <=> $1) AS similarity
		FROM videos
		WHERE embedding IS NOT NULL`
	args := []interface{}{pgvector.NewVector(queryVector)}
	sql, args = appendBucketFilter(sql, args, bucket)
	sql += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.getExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer rows.Close()

	var matches []domain.VideoMatch
	for rows.Next() {
		var m domain.VideoMatch
		if err := rows.Scan(
			&m.Video.YoutubeID, &m.Video.Title, &m.Video.Description, &m.Video.Thumbnail, &m.Video.Channel,
			&m.Video.Duration, &m.Video.ViewCount, &m.Video.LikeCount, &m.Similarity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return matches, nil
}

func (r *videoRepository) SearchByKeyword(ctx context.Context, query string, bucket domain.Bucket, limit int) ([]domain.VideoMatch, error) {
	sql := `
		SELECT youtube_id, title, COALESCE(description, ''), COALESCE(thumbnail, ''), COALESCE(channel, ''), duration,
		       COALESCE(view_count, 0), COALESCE(like_count, 0)
		FROM videos
		WHERE (title ILIKE $1 OR description ILIKE $1)`
	args := []interface{}{likePattern(query)}
	sql, args = appendBucketFilter(sql, args, bucket)
	sql += fmt.Sprintf(" ORDER BY COALESCE(view_count, 0) DESC, COALESCE(like_count, 0) DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := r.getExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run keyword search: %w", err)
	}
	defer rows.Close()

	var matches []domain.VideoMatch
	for rows.Next() {
		var m domain.VideoMatch
		if err := rows.Scan(
			&m.Video.YoutubeID, &m.Video.Title, &m.Video.Description, &m.Video.Thumbnail, &m.Video.Channel,
			&m.Video.Duration, &m.Video.ViewCount, &m.Video.LikeCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan keyword match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return matches, nil
}

func (r *videoRepository) ListMissingEmbeddings(ctx context.Context, limit int) ([]domain.Video, error) {
	query := `
		SELECT youtube_id, title, COALESCE(description, '')
		FROM videos
		WHERE embedding IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos missing embeddings: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.YoutubeID, &v.Title, &v.Description); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return videos, nil
}

func (r *videoRepository) SetEmbedding(ctx context.Context, youtubeID string, embedding []float32) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		`UPDATE videos SET embedding = $2 WHERE youtube_id = $1`,
		youtubeID, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to set embedding for %s: %w", youtubeID, err)
	}
	return nil
}

func (r *videoRepository) ListAll(ctx context.Context) ([]domain.Video, error) {
	query := `SELECT youtube_id, title, COALESCE(description, ''), duration FROM videos`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.YoutubeID, &v.Title, &v.Description, &v.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return videos, nil
}

func (r *videoRepository) DeleteByYoutubeID(ctx context.Context, youtubeID string) error {
	_, err := r.getExecutor(ctx).Exec(ctx, `DELETE FROM videos WHERE youtube_id = $1`, youtubeID)
	if err != nil {
		return fmt.Errorf("failed to delete video %s: %w", youtubeID, err)
	}
	return nil
}

// appendBucketFilter adds the duration range predicate for the bucket.
// BucketAny adds nothing.
func appendBucketFilter(sql string, args []interface{}, bucket domain.Bucket) (string, []interface{}) {
	if bucket == domain.BucketAny {
		return sql, args
	}
	min, max := bucket.Range()
	sql += fmt.Sprintf(" AND duration >= $%d", len(args)+1)
	args = append(args, min)
	if max >= 0 {
		sql += fmt.Sprintf(" AND duration < $%d", len(args)+1)
		args = append(args, max)
	}
	return sql, args
}

// likePattern wraps the query for a substring ILIKE match, escaping any
// literal wildcard characters first.
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}
