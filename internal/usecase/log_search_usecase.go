package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"edu-recommender/internal/domain"
)

// LogSearchUsecase records user queries for later profile aggregation.
// Fire-and-forget: it never fails the caller.
type LogSearchUsecase interface {
	// Execute logs a query for a user. Anonymous or malformed user
	// identifiers and storage failures are silent no-ops.
	Execute(ctx context.Context, query, userID string)

	// Profile returns the mean embedding of the user's recent queries, or
	// nil when the user has no history or the embedding provider is
	// unavailable. Auxiliary; not on the ranking path.
	Profile(ctx context.Context, userID string) []float32
}

const profileQueryLimit = 10

type logSearchUsecase struct {
	searchRepo domain.SearchLogRepository
	encoder    domain.VectorEncoder
	logger     *slog.Logger
}

// NewLogSearchUsecase creates a new LogSearchUsecase.
func NewLogSearchUsecase(
	searchRepo domain.SearchLogRepository,
	encoder domain.VectorEncoder,
	logger *slog.Logger,
) LogSearchUsecase {
	return &logSearchUsecase{
		searchRepo: searchRepo,
		encoder:    encoder,
		logger:     logger,
	}
}

func (u *logSearchUsecase) Execute(ctx context.Context, query, userID string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		// Guest or malformed identity: nothing to attribute the search to.
		u.logger.Debug("search_not_logged", slog.String("user_id", userID))
		return
	}
	if err := u.searchRepo.Insert(ctx, uid, query); err != nil {
		u.logger.Warn("search_log_write_failed",
			slog.String("user_id", uid.String()),
			slog.String("error", err.Error()))
	}
}

func (u *logSearchUsecase) Profile(ctx context.Context, userID string) []float32 {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}

	queries, err := u.searchRepo.RecentQueries(ctx, uid, profileQueryLimit)
	if err != nil {
		u.logger.Warn("profile_queries_failed", slog.String("error", err.Error()))
		return nil
	}
	if len(queries) == 0 {
		return nil
	}

	embeddings, err := u.encoder.EncodeBatch(ctx, queries)
	if err != nil {
		u.logger.Warn("profile_embedding_failed", slog.String("error", err.Error()))
		return nil
	}

	return meanVector(embeddings, u.encoder.Dimensions())
}

// meanVector averages the non-nil vectors. Returns nil when none survive.
func meanVector(vectors [][]float32, dims int) []float32 {
	sum := make([]float64, dims)
	n := 0
	for _, vec := range vectors {
		if len(vec) != dims {
			continue
		}
		for i, v := range vec {
			sum[i] += float64(v)
		}
		n++
	}
	if n == 0 {
		return nil
	}
	mean := make([]float32, dims)
	for i := range sum {
		mean[i] = float32(sum[i] / float64(n))
	}
	return mean
}
