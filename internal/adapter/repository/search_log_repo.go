package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"edu-recommender/internal/domain"
)

type searchLogRepository struct {
	pool DB
}

// NewSearchLogRepository creates a new SearchLogRepository.
func NewSearchLogRepository(pool DB) domain.SearchLogRepository {
	return &searchLogRepository{pool: pool}
}

func (r *searchLogRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *searchLogRepository) Insert(ctx context.Context, userID uuid.UUID, query string) error {
	_, err := r.getExecutor(ctx).Exec(ctx,
		`INSERT INTO user_searches (user_id, query, search_time) VALUES ($1, $2, NOW())`,
		userID, query,
	)
	if err != nil {
		return fmt.Errorf("failed to insert search log: %w", err)
	}
	return nil
}

func (r *searchLogRepository) RecentQueries(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	rows, err := r.getExecutor(ctx).Query(ctx,
		`SELECT query FROM user_searches WHERE user_id = $1 ORDER BY search_time DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer rows.Close()

	var queries []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("failed to scan search query: %w", err)
		}
		queries = append(queries, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return queries, nil
}
