package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"edu-recommender/internal/adapter/embedding"
	"edu-recommender/internal/adapter/repository"
	"edu-recommender/internal/adapter/youtube"
	"edu-recommender/internal/domain"
	"edu-recommender/internal/infra/config"
	"edu-recommender/internal/infra/httpclient"
	"edu-recommender/internal/infra/logger"
	"edu-recommender/internal/usecase"
	"edu-recommender/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	VideoRepo     domain.VideoRepository
	SearchLogRepo domain.SearchLogRepository

	// External clients
	Encoder domain.VectorEncoder
	Source  domain.VideoSource

	// Usecases
	IngestUsecase    usecase.IngestCatalogUsecase
	RecommendUsecase usecase.RecommendUsecase
	LogSearchUsecase usecase.LogSearchUsecase

	// Worker
	Worker *worker.EmbeddingWorker
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	videoRepo := repository.NewVideoRepository(pool)
	searchLogRepo := repository.NewSearchLogRepository(pool)
	txManager := repository.NewPostgresTransactionManager(pool)

	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(15 * time.Second)
	youtubeHTTP := httpclient.NewPooledClient(30 * time.Second)

	// External clients
	embedder := embedding.NewCloudflareEmbedder(
		embedding.DefaultBaseURL,
		cfg.Embedding.AccountID,
		cfg.Embedding.Model,
		cfg.Embedding.APIToken,
		cfg.Embedding.Dims,
		embedderHTTP,
	)
	encoder, err := embedding.NewCachedEncoder(embedder, cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	source := youtube.NewClient(youtube.DefaultBaseURL, cfg.YouTube.APIKey, youtubeHTTP, log)

	// Usecases
	ingestUsecase := usecase.NewIngestCatalogUsecase(videoRepo, source, txManager, log)
	recommendUsecase := usecase.NewRecommendUsecase(videoRepo, encoder, ingestUsecase, log)
	logSearchUsecase := usecase.NewLogSearchUsecase(searchLogRepo, encoder, log)

	// Worker
	embeddingWorker := worker.NewEmbeddingWorker(
		videoRepo,
		encoder,
		logger.NewContextLogger("edu-recommender"),
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
	)

	return &ApplicationComponents{
		VideoRepo:        videoRepo,
		SearchLogRepo:    searchLogRepo,
		Encoder:          encoder,
		Source:           source,
		IngestUsecase:    ingestUsecase,
		RecommendUsecase: recommendUsecase,
		LogSearchUsecase: logSearchUsecase,
		Worker:           embeddingWorker,
	}, nil
}
