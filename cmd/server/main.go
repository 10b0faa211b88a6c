package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"copytrader/internal/bot"
	"copytrader/internal/broker"
	"copytrader/internal/cache"
	"copytrader/internal/config"
	"copytrader/internal/db"
	"copytrader/internal/handler"
	"copytrader/internal/job"
	"copytrader/internal/provider"
	"copytrader/internal/repository"
	"copytrader/internal/risk"
	"copytrader/internal/service"
	"copytrader/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "copytrader/docs"
)

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initPostgresFunc    = db.InitPostgres
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newSignalRepoFunc   = repository.NewSignalRepository
	newTradeRepoFunc    = repository.NewTradeRepository
	newAccountRepoFunc  = repository.NewAccountRepository
	newCacheFunc        = cache.New
	newNewsProviderFunc = func(tracer trace.Tracer, cfg *config.Config) service.NewsProvider {
		return provider.NewNewsAPIProvider(tracer, cfg.NewsAPIURL, cfg.NewsAPIKey, 0)
	}
	newGatewayFunc = func(cfg *config.Config) broker.Gateway {
		return broker.NewSimulated(time.Duration(cfg.BrokerFillDelayMs)*time.Millisecond, nil)
	}
	newRiskEngineFunc      = risk.NewEngine
	newCopyServiceFunc     = service.NewCopyService
	newNewsServiceFunc     = service.NewNewsService
	newNewsPollerFunc      = job.NewNewsPoller
	newCacheJobFunc        = job.NewCacheMaintenance
	startNewsPollerFunc    = func(p *job.NewsPoller, ctx context.Context) { go p.Start(ctx) }
	startCacheJobFunc      = func(j *job.CacheMaintenance, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newTradeStreamFunc     = handler.NewTradeStream
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Copytrader API
// @version         1.0
// @description     Forex signal copying service with risk-based position sizing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repositories and run migrations
	signalRepo := newSignalRepoFunc(db.Pool, tracer)
	tradeRepo := newTradeRepoFunc(db.Pool, tracer)
	accountRepo := newAccountRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		if err := signalRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run signal migrations: %v", err)
		}
		if err := tradeRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run trade migrations: %v", err)
		}
		if err := accountRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run account migrations: %v", err)
		}
	}

	// Create the news cache, providers and services
	newsCache := newCacheFunc(cache.NewRedisStore(cache.Client), cache.Options{
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTLSecs) * time.Second,
		MaxSize:    cfg.CacheMaxBytes,
	})
	newsProvider := newNewsProviderFunc(tracer, cfg)
	newsService := newNewsServiceFunc(tracer, newsCache, newsProvider)

	gateway := newGatewayFunc(cfg)
	engine := newRiskEngineFunc(gateway, nil, nil, nil)
	copyService := newCopyServiceFunc(tracer, signalRepo, accountRepo, tradeRepo, engine)

	// Start Telegram bot; its dispatcher announces opened trades
	alerts := startTelegramBotFunc(cfg.TelegramBotToken, copyService, newsService)
	if alerts != nil {
		engine.SetMonitor(alerts)
	}

	// Start background jobs (stopped by ctx cancel)
	var newsFetcher job.NewsFetcher
	if cfg.NewsAPIURL != "" {
		newsFetcher = newsService
	}
	newsPoller := newNewsPollerFunc(tracer, newsFetcher, time.Duration(cfg.NewsPollSecs)*time.Second)
	startNewsPollerFunc(newsPoller, ctx)
	cacheJob := newCacheJobFunc(tracer, newsCache, time.Duration(cfg.CacheSweepSecs)*time.Second)
	startCacheJobFunc(cacheJob, ctx)

	// Create handlers and routes
	tradeStream := newTradeStreamFunc()
	h := newHandlerFunc(tracer, copyService, newsService, tradeStream)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("copytrader"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
