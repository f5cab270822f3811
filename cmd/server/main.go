package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ypacademy/answer_engine/cache"
	"github.com/ypacademy/answer_engine/embed"
	"github.com/ypacademy/answer_engine/internal/analytics"
	"github.com/ypacademy/answer_engine/internal/api"
	"github.com/ypacademy/answer_engine/internal/health"
	"github.com/ypacademy/answer_engine/internal/retrieval"
	"github.com/ypacademy/answer_engine/internal/schema"
	"github.com/ypacademy/answer_engine/obs"
	"github.com/ypacademy/answer_engine/policy"
	"github.com/ypacademy/answer_engine/store"
)

const (
	defaultPort          = 7070
	defaultDBPath        = "answer_engine.db"
	defaultSiteURL       = "https://academy.youthperformance.com"
	defaultEmbedModel    = "text-embedding-3-small"
	defaultTimeoutMs     = 800
	defaultRetryMax      = 2
	defaultRespCacheSize = 200
	defaultRespCacheTTL  = 5 * time.Minute
	defaultEmbCacheSize  = 500
	defaultEmbCacheTTL   = time.Hour
	defaultLogBuffer     = 256
)

func main() {
	cfg := loadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	shutdownTracer, err := obs.InitTracer("answer-engine")
	if err != nil {
		logger.Warn("tracer init failed", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("store open failed", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	metrics := policy.NewMetrics()
	guards, err := policy.NewRegistry([]policy.GuardConfig{
		{
			Name:    "catalog",
			Timeout: cfg.Timeout,
			Rate: policy.RateLimitConfig{
				Capacity:     cfg.RateCapacity,
				RefillTokens: cfg.RateRefill,
				RefillEvery:  cfg.RateInterval,
			},
			Breaker: policy.BreakerConfig{
				Window:               cfg.CircuitWindow,
				FailureRateThreshold: cfg.CircuitThreshold,
				MinSamples:           cfg.CircuitMinSamples,
				Cooldown:             cfg.CircuitCooldown,
				HalfOpenMaxCalls:     cfg.CircuitHalfOpenMax,
			},
		},
		{
			Name:    "embeddings",
			Timeout: cfg.Timeout,
			Breaker: policy.BreakerConfig{
				Window:               cfg.CircuitWindow,
				FailureRateThreshold: cfg.CircuitThreshold,
				MinSamples:           cfg.CircuitMinSamples,
				Cooldown:             cfg.CircuitCooldown,
				HalfOpenMaxCalls:     cfg.CircuitHalfOpenMax,
			},
		},
	}, metrics)
	if err != nil {
		logger.Error("policy registry failed", "error", err)
		os.Exit(1)
	}
	catalogGuard, _ := guards.Guard("catalog")
	embedGuard, _ := guards.Guard("embeddings")

	responses := cache.New[retrieval.CachedResponse](cfg.RespCacheSize, cfg.RespCacheTTL)
	embeddings := cache.New[[]float32](cfg.EmbCacheSize, cfg.EmbCacheTTL)

	opts := []retrieval.Option{retrieval.WithLogger(logger)}
	if cfg.EmbedAPIKey != "" {
		embedder, err := embed.NewClient(cfg.EmbedURL, cfg.EmbedModel, cfg.EmbedAPIKey,
			newHTTPClient(cfg.Timeout), cfg.RetryMax, cfg.EmbedRPS)
		if err != nil {
			logger.Error("embed client failed", "error", err)
			os.Exit(1)
		}
		opts = append(opts, retrieval.WithEmbedder(embedder, embedGuard, embeddings))
	} else {
		logger.Info("no embedding API key, serving lexical search only")
	}

	svc := retrieval.NewService(retrieval.Config{}, st, responses, catalogGuard, opts...)

	events := analytics.NewLogger(st, cfg.LogBuffer, logger)
	defer events.Close()

	analyzer := analytics.NewAnalyzer(st)

	cacheStats := func() map[string]cache.Stats {
		return map[string]cache.Stats{
			"responses":  responses.Stats(),
			"embeddings": embeddings.Stats(),
		}
	}

	router, err := api.NewRouter(api.Config{
		Service:   svc,
		Projector: schema.NewProjector(cfg.SiteURL),
		Analyzer:  analyzer,
		Events:    events,
		Ready:     health.Readyz(st, cacheStats),
		Metrics:   metrics,
		DocsURL:   cfg.SiteURL + "/api/docs",
		Log:       logger,
	})
	if err != nil {
		logger.Error("router failed", "error", err)
		os.Exit(1)
	}
	router.Handle("/metrics", promhttp.Handler())

	go publishCacheStats(cacheStats)

	root := chi.NewRouter()
	root.Mount("/", router)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("answer engine listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("shutdown error", "error", err)
	}
}

// publishCacheStats feeds the cache gauges once a minute.
func publishCacheStats(stats func() map[string]cache.Stats) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		for name, s := range stats() {
			obs.SetCacheStats(name, s.Size, s.HitRate)
		}
	}
}

type config struct {
	Port               int
	DBPath             string
	SiteURL            string
	EmbedURL           string
	EmbedModel         string
	EmbedAPIKey        string
	EmbedRPS           float64
	Timeout            time.Duration
	RetryMax           int
	RespCacheSize      int
	RespCacheTTL       time.Duration
	EmbCacheSize       int
	EmbCacheTTL        time.Duration
	LogBuffer          int
	RateCapacity       int
	RateRefill         int
	RateInterval       time.Duration
	CircuitWindow      time.Duration
	CircuitThreshold   float64
	CircuitMinSamples  int
	CircuitCooldown    time.Duration
	CircuitHalfOpenMax int
}

func loadConfig() config {
	return config{
		Port:               getEnvInt("PORT", defaultPort),
		DBPath:             getEnvStr("DB_PATH", defaultDBPath),
		SiteURL:            getEnvStr("SITE_URL", defaultSiteURL),
		EmbedURL:           getEnvStr("EMBED_URL", "https://api.openai.com"),
		EmbedModel:         getEnvStr("EMBED_MODEL", defaultEmbedModel),
		EmbedAPIKey:        getEnvStr("EMBED_API_KEY", ""),
		EmbedRPS:           getEnvFloat("EMBED_RPS", 10),
		Timeout:            time.Duration(getEnvInt("TIMEOUT_MS", defaultTimeoutMs)) * time.Millisecond,
		RetryMax:           getEnvInt("RETRY_MAX", defaultRetryMax),
		RespCacheSize:      getEnvInt("RESPONSE_CACHE_SIZE", defaultRespCacheSize),
		RespCacheTTL:       time.Duration(getEnvInt("RESPONSE_CACHE_TTL_MS", int(defaultRespCacheTTL/time.Millisecond))) * time.Millisecond,
		EmbCacheSize:       getEnvInt("EMBEDDING_CACHE_SIZE", defaultEmbCacheSize),
		EmbCacheTTL:        time.Duration(getEnvInt("EMBEDDING_CACHE_TTL_MS", int(defaultEmbCacheTTL/time.Millisecond))) * time.Millisecond,
		LogBuffer:          getEnvInt("EVENT_LOG_BUFFER", defaultLogBuffer),
		RateCapacity:       getEnvInt("CATALOG_RATE_CAPACITY", 50),
		RateRefill:         getEnvInt("CATALOG_RATE_REFILL", 10),
		RateInterval:       time.Duration(getEnvInt("CATALOG_RATE_INTERVAL_MS", 1000)) * time.Millisecond,
		CircuitWindow:      time.Duration(getEnvInt("CIRCUIT_WINDOW_MS", 30000)) * time.Millisecond,
		CircuitThreshold:   getEnvFloat("CIRCUIT_THRESHOLD", 0.5),
		CircuitMinSamples:  getEnvInt("CIRCUIT_MIN_SAMPLES", 5),
		CircuitCooldown:    time.Duration(getEnvInt("CIRCUIT_COOLDOWN_MS", 5000)) * time.Millisecond,
		CircuitHalfOpenMax: getEnvInt("CIRCUIT_HALF_OPEN_MAX", 1),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxConnsPerHost:     128,
		MaxIdleConns:        256,
		MaxIdleConnsPerHost: 128,
		IdleConnTimeout:     90 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func getEnvStr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}
