package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"edu-recommender/internal/domain"
)

// IngestCatalogUsecase backfills the catalog from the external video
// platform when the sufficiency check finds too little relevant material.
type IngestCatalogUsecase interface {
	// Execute fetches up to maxResults candidates for the query, filters
	// out short-form and non-educational content, and inserts the survivors
	// that are not already in the catalog. Returns the number of rows
	// actually inserted. A total gateway failure yields (0, nil); only
	// storage failures surface as errors.
	Execute(ctx context.Context, query string, bucket domain.Bucket, maxResults int) (int, error)
}

type ingestCatalogUsecase struct {
	videoRepo domain.VideoRepository
	source    domain.VideoSource
	txManager domain.TransactionManager
	logger    *slog.Logger
}

// NewIngestCatalogUsecase creates a new IngestCatalogUsecase.
func NewIngestCatalogUsecase(
	videoRepo domain.VideoRepository,
	source domain.VideoSource,
	txManager domain.TransactionManager,
	logger *slog.Logger,
) IngestCatalogUsecase {
	return &ingestCatalogUsecase{
		videoRepo: videoRepo,
		source:    source,
		txManager: txManager,
		logger:    logger,
	}
}

func (u *ingestCatalogUsecase) Execute(ctx context.Context, query string, bucket domain.Bucket, maxResults int) (int, error) {
	if maxResults <= 0 {
		return 0, nil
	}

	ids, err := u.source.Search(ctx, query, maxResults, bucket)
	if err != nil {
		u.logger.Warn("video_source_search_failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return 0, nil
	}
	if len(ids) == 0 {
		return 0, nil
	}

	details, err := u.source.Details(ctx, ids)
	if err != nil {
		u.logger.Warn("video_source_details_failed",
			slog.Int("id_count", len(ids)),
			slog.String("error", err.Error()))
		return 0, nil
	}

	// One transaction for the whole batch: a cancelled request must not
	// leave a partially committed batch behind.
	inserted := 0
	err = u.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, detail := range details {
			ok, err := u.ingestOne(txCtx, detail)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to ingest batch: %w", err)
	}

	u.logger.Info("catalog_ingested",
		slog.String("query", query),
		slog.Int("fetched", len(details)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

// ingestOne applies the per-candidate filters. A candidate failing a filter
// or detail parsing is skipped, never aborts the batch; only storage errors
// propagate.
func (u *ingestCatalogUsecase) ingestOne(ctx context.Context, detail domain.VideoDetail) (bool, error) {
	seconds, err := domain.ParseISODuration(detail.ISODuration)
	if err != nil {
		// Unparseable duration cannot be trusted for filtering.
		u.logger.Warn("skipped_unparseable_duration",
			slog.String("youtube_id", detail.YoutubeID),
			slog.String("duration", detail.ISODuration))
		return false, nil
	}

	if domain.IsShortForm(seconds, detail.Title, detail.Description) {
		u.logger.Debug("skipped_short_form", slog.String("youtube_id", detail.YoutubeID))
		return false, nil
	}

	if detail.CategoryID != domain.EducationCategoryID {
		u.logger.Debug("skipped_non_educational",
			slog.String("youtube_id", detail.YoutubeID),
			slog.String("category", detail.CategoryID))
		return false, nil
	}

	exists, err := u.videoRepo.ExistsByYoutubeID(ctx, detail.YoutubeID)
	if err != nil {
		return false, fmt.Errorf("failed to check existence of %s: %w", detail.YoutubeID, err)
	}
	if exists {
		return false, nil
	}

	video := &domain.Video{
		YoutubeID:   detail.YoutubeID,
		Title:       detail.Title,
		Description: detail.Description,
		Thumbnail:   detail.Thumbnail,
		Channel:     detail.Channel,
		Category:    detail.CategoryID,
		UploadDate:  detail.UploadDate,
		Duration:    seconds,
		ViewCount:   detail.ViewCount,
		LikeCount:   detail.LikeCount,
		// Embedding stays nil; the backfill worker fills it in later.
	}

	ok, err := u.videoRepo.Insert(ctx, video)
	if err != nil {
		return false, fmt.Errorf("failed to insert %s: %w", detail.YoutubeID, err)
	}
	return ok, nil
}
