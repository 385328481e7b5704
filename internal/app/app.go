package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	config "github.com/ikarus3d/go-backend/internal/cfg"
	v1Http "github.com/ikarus3d/go-backend/internal/delivery/v1/http"
	"github.com/ikarus3d/go-backend/internal/infrastructure/embedding"
	"github.com/ikarus3d/go-backend/internal/infrastructure/genai"
	"github.com/ikarus3d/go-backend/internal/infrastructure/kafka"
	"github.com/ikarus3d/go-backend/internal/repository/dataset"
	"github.com/ikarus3d/go-backend/internal/repository/memory"
	qdrantRepo "github.com/ikarus3d/go-backend/internal/repository/qdrant"
	redisRepo "github.com/ikarus3d/go-backend/internal/repository/redis"
	"github.com/ikarus3d/go-backend/internal/usecase"
	"github.com/ikarus3d/go-backend/pkg/clients"
	"github.com/ikarus3d/go-backend/pkg/closer"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/ikarus3d/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	closer  *closer.Closer
	indexer *usecase.CatalogIndexer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(0)

	productRepo, err := dataset.NewProductRepo(cfg.Dataset.Path, log)
	if err != nil {
		log.Errorf(err, "failed to load product dataset")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embeddingRepo, err := initEmbeddingRepo(cfg, log, cl)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), initTimeout)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(_ context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redisRepo.NewDescriptionCacheRepo(redisClient, cfg.Redis, log)

	embedder := embedding.NewEmbedderService(cfg.Embedder, log)
	genaiSvc := genai.NewGenAIService(cfg.GenAI, log)

	producer, err := initProducer(cfg, log, cl)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	recommendationUC := usecase.NewRecommendationUC(productRepo, embeddingRepo, embedder, log, cfg.Recommend)
	productUC := usecase.NewProductUC(productRepo, genaiSvc, cacheRepo, log, cfg.Dataset)
	analyticsUC := usecase.NewAnalyticsUC(productRepo, log)
	indexer := usecase.NewCatalogIndexer(productRepo, embedder, embeddingRepo, producer, log)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(cfg, recommendationUC, productUC, analyticsUC)

	return &App{
		cfg:     cfg,
		logger:  log,
		httpSrv: v1Http.NewServer(r, cfg.Http),
		closer:  cl,
		indexer: indexer,
	}, nil
}

// Run строит индекс сходства, запускает HTTP-сервер и блокируется
// до сигнала завершения или фатальной ошибки сервера.
func (a *App) Run() error {
	count, err := a.indexer.BuildIndex(context.Background())
	if err != nil {
		a.logger.Errorf(err, "failed to build similarity index")
		a.shutdown()
		return err
	}
	a.logger.Infof("similarity index ready: %d products", count)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	a.shutdown()

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// shutdown закрывает внешние подключения в порядке LIFO.
func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Warnf("close error: %v", err)
	}
}

// initEmbeddingRepo выбирает бэкенд индекса сходства.
// По умолчанию используется индекс в памяти, Qdrant включается конфигурацией.
func initEmbeddingRepo(cfg *config.Config, log logger.Logger, cl *closer.Closer) (usecase.EmbeddingRepository, error) {
	if cfg.Recommend.IndexBackend == config.IndexBackendMemory {
		return memory.NewIndexRepo(), nil
	}

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		log.Errorf(err, "failed to initialize qdrant")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := clients.EnsureCollection(ctx, qdrantClient); err != nil {
		log.Errorf(err, "failed to initialize qdrant collection")
		return nil, err
	}

	cl.Add(func(_ context.Context) error {
		return qdrantClient.Client.Close()
	})

	return qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant, log), nil
}

// initProducer создает Kafka-продюсер, если брокеры заданы.
// Без брокеров события индекса не публикуются.
func initProducer(cfg *config.Config, log logger.Logger, cl *closer.Closer) (usecase.MessageProducer, error) {
	if cfg.Kafka == nil {
		log.Infof("kafka disabled, index events will not be published")
		return nil, nil
	}

	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		log.Errorf(err, "failed to initialize kafka producer")
		return nil, err
	}

	if err := producer.EnsureTopic(initTimeout); err != nil {
		log.Errorf(err, "failed to ensure kafka topic")
		return nil, err
	}

	cl.Add(func(_ context.Context) error {
		return producer.Close()
	})

	return producer, nil
}
