package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"osero_view/internal/adapters"
	"osero_view/internal/bootstrap"
	viewerDelivery "osero_view/internal/delivery/viewer"
	"osero_view/internal/domain/board"
	"osero_view/internal/domain/evaluation"
	ownMiddleware "osero_view/internal/middleware"
	"osero_view/internal/render"
	"osero_view/internal/repository"
	gameUsecase "osero_view/internal/usecase/game"
)

type mainDeliveryHandler struct {
	viewer *viewerDelivery.ViewerHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	defer func() { _ = logger.Sync() }()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.close(context.Background())

	handlers, err := initializeDeliveryHandlers(cfg, logger, databaseAdapters)
	if err != nil {
		logger.Error("Failed to initialize handlers", zap.Error(err))
		return
	}

	r := chi.NewRouter()
	handlers.Router(r, cfg.IsLocalCors)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warnw("server shutdown failed", "error", err)
		}
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	h.viewer.Routes(r)
}

// initDatabaseAdapters connects the optional stores. An empty url keeps the
// corresponding adapter disabled.
func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	result := &dataBaseAdapters{}

	if cfg.RedisUrl != "" {
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Warnw("redis disabled", "error", err)
		} else {
			result.redisAdapter = redisAdapter
		}
	}

	if cfg.MongoUri != "" {
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Warnw("mongodb disabled", "error", err)
		} else {
			result.mongoAdapter = mongoAdapter
		}
	}

	log.Info("database adapters initialized")
	return result
}

func (d *dataBaseAdapters) close(ctx context.Context) {
	if d.mongoAdapter != nil {
		_ = d.mongoAdapter.Close(ctx)
	}
	if d.redisAdapter != nil {
		_ = d.redisAdapter.Close(ctx)
	}
}

func initializeDeliveryHandlers(
	cfg *bootstrap.Config,
	log *zap.SugaredLogger,
	databaseAdapters *dataBaseAdapters,
) (*mainDeliveryHandler, error) {
	cpuPlayer, err := evaluation.DecodeCell(cfg.CpuPlayer)
	if err != nil {
		return nil, err
	}
	if cpuPlayer == board.Empty {
		return nil, fmt.Errorf("CPU_PLAYER must be 1 or -1, got %d", cfg.CpuPlayer)
	}

	var evaluator gameUsecase.Evaluator = repository.NewEvaluatorRepository(cfg, log)
	if databaseAdapters.redisAdapter != nil {
		evaluator = repository.NewEvaluationCache(evaluator, databaseAdapters.redisAdapter.GetClient(), cfg.CacheTTL, log)
	}

	var journal gameUsecase.Journal
	if databaseAdapters.mongoAdapter != nil {
		journal = repository.NewJournalRepository(log, databaseAdapters.mongoAdapter.Database)
	}

	layout := render.Layout{
		Dimension: cfg.BoardSize,
		CellSize:  cfg.CellSize,
		Thickness: cfg.BorderThickness,
	}

	hub := viewerDelivery.NewHub(log)
	painter := render.NewRenderer(
		layout,
		hub.Sink(viewerDelivery.BlackCountID),
		hub.Sink(viewerDelivery.WhiteCountID),
		log,
	)
	// served by GET /board.png
	surface := render.NewCanvas(layout.Size(), layout.Size())

	settings := gameUsecase.Settings{
		Dimension:   cfg.BoardSize,
		CPUPlayer:   cpuPlayer,
		HumanPlayer: opponent(cpuPlayer),
		Timeout:     cfg.EvaluatorTimeout,
	}
	gameLoop := gameUsecase.NewGameLoop(settings, log, evaluator, painter, surface, journal)

	return &mainDeliveryHandler{
		viewer: viewerDelivery.NewViewerHandler(log, gameLoop, layout, hub),
	}, nil
}

func opponent(player board.Cell) board.Cell {
	if player == board.PlayerA {
		return board.PlayerB
	}
	return board.PlayerA
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
