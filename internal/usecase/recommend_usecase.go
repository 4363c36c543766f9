package usecase

import (
	"context"
	"log/slog"
	"strings"

	"edu-recommender/internal/domain"
)

// similarityThreshold is the minimum cosine similarity for a catalog row to
// count as relevant during the sufficiency check.
const similarityThreshold = 0.6

// ingestOverfetch multiplies topN to size the upstream fetch, giving the
// ingestion filters room to discard candidates.
const ingestOverfetch = 2

// RecommendInput defines the parameters of a recommendation request.
type RecommendInput struct {
	Query  string
	TopN   int
	UserID string
	Bucket domain.Bucket
}

// RecommendUsecase is the ranking engine entry point. Execute never fails:
// every collaborator error degrades to a fallback path or, at worst, an
// empty result.
type RecommendUsecase interface {
	Execute(ctx context.Context, input RecommendInput) []domain.Candidate
}

type recommendUsecase struct {
	videoRepo domain.VideoRepository
	encoder   domain.VectorEncoder
	ingest    IngestCatalogUsecase
	logger    *slog.Logger
}

// NewRecommendUsecase wires the ranking engine.
func NewRecommendUsecase(
	videoRepo domain.VideoRepository,
	encoder domain.VectorEncoder,
	ingest IngestCatalogUsecase,
	logger *slog.Logger,
) RecommendUsecase {
	return &recommendUsecase{
		videoRepo: videoRepo,
		encoder:   encoder,
		ingest:    ingest,
		logger:    logger,
	}
}

func (u *recommendUsecase) Execute(ctx context.Context, input RecommendInput) (result []domain.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("recommend_panicked", slog.Any("panic", r))
			result = []domain.Candidate{}
		}
	}()

	query := strings.TrimSpace(input.Query)
	if query == "" || input.TopN <= 0 {
		return []domain.Candidate{}
	}

	// 1. Backfill the catalog if it cannot satisfy the request. Best
	// effort: the ranking query runs regardless of the ingestion outcome.
	enough, count := u.hasEnough(ctx, query, input.Bucket, input.TopN)
	if !enough {
		u.logger.Info("catalog_insufficient",
			slog.String("query", query),
			slog.Int("relevant_count", count),
			slog.Int("top_n", input.TopN))
		if _, err := u.ingest.Execute(ctx, query, input.Bucket, input.TopN*ingestOverfetch); err != nil {
			u.logger.Warn("ingestion_failed", slog.String("error", err.Error()))
		}
	}

	matches, vectorMode := u.search(ctx, query, input.Bucket, input.TopN)
	if matches == nil {
		return []domain.Candidate{}
	}

	candidates := scoreMatches(matches, vectorMode)
	candidates = dedupeCandidates(candidates)
	sortCandidates(candidates)
	if len(candidates) > input.TopN {
		candidates = candidates[:input.TopN]
	}
	return candidates
}

// hasEnough is the catalog sufficiency check: relevant-row count versus the
// requested result size. Errors are logged and treated as "not enough" so
// the pipeline proceeds to ingestion rather than aborting.
func (u *recommendUsecase) hasEnough(ctx context.Context, query string, bucket domain.Bucket, topN int) (bool, int) {
	count, err := u.relevantCount(ctx, query, bucket)
	if err != nil {
		u.logger.Warn("sufficiency_check_failed", slog.String("error", err.Error()))
		return false, 0
	}
	return count >= topN, count
}

func (u *recommendUsecase) relevantCount(ctx context.Context, query string, bucket domain.Bucket) (int, error) {
	hasEmb, err := u.videoRepo.HasEmbeddings(ctx)
	if err != nil {
		return 0, err
	}
	if hasEmb {
		if vec, encErr := u.encoder.Encode(ctx, query); encErr == nil {
			return u.videoRepo.CountSimilar(ctx, vec, bucket, similarityThreshold)
		} else {
			u.logger.Warn("query_embedding_failed", slog.String("error", encErr.Error()))
		}
	}
	return u.videoRepo.CountMatching(ctx, query, bucket)
}

// search picks vector or keyword mode and runs the catalog query. A nil
// return means the read failed and the request must answer empty; an empty
// non-nil slice means the catalog genuinely had nothing.
func (u *recommendUsecase) search(ctx context.Context, query string, bucket domain.Bucket, topN int) ([]domain.VideoMatch, bool) {
	hasEmb, err := u.videoRepo.HasEmbeddings(ctx)
	if err != nil {
		u.logger.Error("catalog_probe_failed", slog.String("error", err.Error()))
		return nil, false
	}

	if hasEmb {
		if vec, encErr := u.encoder.Encode(ctx, query); encErr == nil {
			matches, searchErr := u.videoRepo.SearchByVector(ctx, vec, bucket, topN)
			if searchErr != nil {
				u.logger.Error("vector_search_failed", slog.String("error", searchErr.Error()))
				return nil, false
			}
			if len(matches) > 0 {
				return matches, true
			}
			// All bucket matches may lack embeddings (fresh ingestion);
			// fall through to keyword mode rather than answering empty.
			u.logger.Info("vector_search_empty_falling_back", slog.String("query", query))
		} else {
			u.logger.Warn("query_embedding_failed", slog.String("error", encErr.Error()))
		}
	}

	matches, err := u.videoRepo.SearchByKeyword(ctx, query, bucket, topN)
	if err != nil {
		u.logger.Error("keyword_search_failed", slog.String("error", err.Error()))
		return nil, false
	}
	if matches == nil {
		matches = []domain.VideoMatch{}
	}
	return matches, false
}
