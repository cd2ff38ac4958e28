package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docsage/docsage/api/handlers"
	"github.com/docsage/docsage/api/routes"
	"github.com/docsage/docsage/config"
	"github.com/docsage/docsage/internal/answer"
	"github.com/docsage/docsage/internal/completion"
	"github.com/docsage/docsage/internal/embedding"
	"github.com/docsage/docsage/internal/extract"
	"github.com/docsage/docsage/internal/index"
	"github.com/docsage/docsage/internal/recognize"
	"github.com/docsage/docsage/internal/service/rag"
	"github.com/docsage/docsage/internal/summarize"
	"github.com/docsage/docsage/internal/tokencount"
	"github.com/docsage/docsage/internal/vectorstore"
	"github.com/docsage/docsage/internal/vectorstore/memory"
	"github.com/docsage/docsage/internal/vectorstore/pgvector"
	"github.com/docsage/docsage/pkg/cache"
	"github.com/docsage/docsage/pkg/logger"
	"github.com/docsage/docsage/pkg/storage"
)

const embeddingDimension = 768

// spoolRetention bounds how long a spooled upload can outlive its
// ingestion; anything older at startup is leftover from a crash.
const spoolRetention = 24 * time.Hour

func main() {
	serverCfg := config.GetServerConfig()

	outputs := []string{"stdout"}
	if serverCfg.LogFile != "" {
		outputs = append(outputs, serverCfg.LogFile)
	}
	log, err := logger.NewLogger(
		logger.WithLevel(serverCfg.LogLevel),
		logger.WithEncoding("json"),
		logger.WithOutputPaths(outputs),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	ollamaCfg := config.GetOllamaConfig()

	store, err := newVectorStore(ctx)
	if err != nil {
		log.Fatal("Failed to init vector store", logger.Error(err))
	}
	defer store.Close()

	embedder := embedding.NewOllamaEmbedder(ollamaCfg.URL, ollamaCfg.EmbeddingModel, embeddingDimension, ollamaCfg.EmbedTimeout)
	idx := index.New(embedder, store, log)

	recognizer, err := newRecognizer(ctx, log)
	if err != nil {
		log.Fatal("Failed to init recognizer", logger.Error(err))
	}
	extractCfg := extract.DefaultConfig()
	ocrCfg := config.GetOCRConfig()
	extractCfg.Languages = ocrCfg.Languages
	extractCfg.RenderDPI = ocrCfg.RenderDPI
	extractor := extract.New(extract.NewPDFOpener(), recognizer, extractCfg, log)

	counter := tokencount.NewTiktokenCounter()

	answerClient := completion.NewOllamaClient(ollamaCfg.URL, ollamaCfg.Model, ollamaCfg.AnswerTimeout)
	summaryClient := completion.NewOllamaClient(ollamaCfg.URL, ollamaCfg.Model, ollamaCfg.CombineTimeout)

	summaryCache, err := newCache(log)
	if err != nil {
		log.Fatal("Failed to init summary cache", logger.Error(err))
	}

	spool, err := storage.NewStorage(storage.StorageType(config.GetStorageConfig().Backend), log)
	if err != nil {
		log.Fatal("Failed to init upload storage", logger.Error(err))
	}
	if err := spool.CleanupBefore(ctx, time.Now().Add(-spoolRetention)); err != nil {
		log.Warn("Failed to sweep stale spooled uploads", logger.Error(err))
	}

	answerer := answer.NewEngine(idx, answerClient, counter, log)
	engine := summarize.NewEngine(idx, summaryClient, counter, summaryCache, ollamaCfg.SegmentTimeout, log)
	service := rag.New(extractor, idx, answerer, summarize.NewRequestCoalescer(engine), summaryCache, spool, log)

	h := handlers.NewHandlers(service, answerClient, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, serverCfg.AllowedOrigins)

	srv := &http.Server{
		Addr:    serverCfg.Addr,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.String("addr", serverCfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}

func newVectorStore(ctx context.Context) (vectorstore.Index, error) {
	storeCfg := config.GetStoreConfig()
	switch storeCfg.Backend {
	case "pgvector":
		return pgvector.New(ctx, storeCfg.PostgresDSN, index.CollectionName, embeddingDimension)
	default:
		return memory.New(), nil
	}
}

func newRecognizer(ctx context.Context, log logger.Logger) (extract.Recognizer, error) {
	if config.GetOCRConfig().Backend == "textract" {
		awsCfg := config.GetTextractConfig()
		return recognize.NewTextractRecognizer(ctx, recognize.TextractConfig{
			Region:    awsCfg.Region,
			AccessKey: awsCfg.AccessKey,
			SecretKey: awsCfg.SecretKey,
		}, log)
	}
	return recognize.NewTesseractRecognizer(log), nil
}

func newCache(log logger.Logger) (cache.Cache, error) {
	cacheCfg := config.GetCacheConfig()
	if cacheCfg.Backend == "redis" {
		return cache.NewRedisCache(cacheCfg.RedisAddr, cacheCfg.RedisDB, "summaries:"), nil
	}
	return cache.NewFileCache(cacheCfg.Dir)
}
