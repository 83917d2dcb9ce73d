package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"event-analytics/analytics"
	"event-analytics/analytics/application"
	"event-analytics/analytics/domain"
	"event-analytics/analytics/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var store domain.Store
	if cfg.redisAddr == "memory" {
		// modo de desenvolvimento/teste, sem Redis
		store = infra.NewMemoryStore()
	} else {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis ping error: %v", err)
		}
		store = infra.NewRedisStore(rdb)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := &analytics.Handler{
		Limiter: application.Limiter{Store: store, LimitPerSec: cfg.rateLimitPerSec},
		Proc: application.Processor{
			Users: application.PresenceSet{
				Store:  store,
				Window: time.Duration(cfg.activeUserWindowMin) * time.Minute,
			},
			Sessions: application.PresenceSet{
				Store:  store,
				Window: time.Duration(cfg.activeSessionWindowMin) * time.Minute,
				TTL:    time.Duration(cfg.activeSessionWindowMin) * 120 * time.Minute,
			},
			Views: application.Pageviews{Store: store, WindowMinutes: cfg.pageviewWindowMin},
		},
		UserWindowMin:     cfg.activeUserWindowMin,
		SessionWindowMin:  cfg.activeSessionWindowMin,
		PageviewWindowMin: cfg.pageviewWindowMin,
		TopPagesLimit:     cfg.topPagesLimit,
	}
	// as consultas usam os mesmos casos de uso do processamento
	h.Users = h.Proc.Users
	h.Sessions = h.Proc.Sessions
	h.Views = h.Proc.Views

	handler := http.Handler(h.Routes())
	handler = analytics.ConcurrencyMiddleware(analytics.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
	})(handler)
	if cfg.clientRateRPS > 0 {
		local := infra.NewLocalStore(cfg.clientRateRPS, cfg.clientRateBurst)
		local.StartJanitor(ctx)
		handler = analytics.ClientRateMiddleware(analytics.ClientRateOptions{
			Limiter:             local,
			KeyHeader:           cfg.clientRateHeader,
			TrustXForwardedFor:  cfg.trustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			AddRateLimitHeaders: true,
		})(handler)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("analytics listening on %s (store=%s)", cfg.listenAddr, cfg.redisAddr)
	log.Printf("admission: limitPerSec=%d", cfg.rateLimitPerSec)
	log.Printf("windows: activeUser=%dmin activeSession=%dmin pageview=%dmin topN=%d",
		cfg.activeUserWindowMin, cfg.activeSessionWindowMin, cfg.pageviewWindowMin, cfg.topPagesLimit)
	log.Printf("client-rate: rps=%.3f burst=%d header=%q trustXFF=%v", cfg.clientRateRPS, cfg.clientRateBurst, cfg.clientRateHeader, cfg.trustXFF)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr    string
	redisAddr     string
	redisPassword string
	redisDB       int

	rateLimitPerSec        int
	activeUserWindowMin    int
	activeSessionWindowMin int
	pageviewWindowMin      int
	topPagesLimit          int

	clientRateRPS    float64
	clientRateBurst  int
	clientRateHeader string
	trustXFF         bool

	concurrencyMax     int
	concurrencyTimeout time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.redisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	// <= 0 desliga o rate limit de admissão
	cfg.rateLimitPerSec = getenvIntDefault("RATE_LIMIT_PER_SEC", 100)
	cfg.activeUserWindowMin = getenvIntDefault("ACTIVE_USER_WINDOW_MIN", 5)
	cfg.activeSessionWindowMin = getenvIntDefault("ACTIVE_SESSION_WINDOW_MIN", 30)
	cfg.pageviewWindowMin = getenvIntDefault("PAGEVIEW_WINDOW_MIN", 10)
	cfg.topPagesLimit = getenvIntDefault("TOP_PAGES_LIMIT", 5)

	cfg.clientRateRPS = getenvFloatDefault("CLIENT_RATE_RPS", 0)
	cfg.clientRateBurst = getenvIntDefault("CLIENT_RATE_BURST", 20)
	cfg.clientRateHeader = os.Getenv("CLIENT_RATE_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 0)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	if strings.TrimSpace(cfg.redisAddr) == "" {
		return config{}, errors.New("REDIS_ADDR is required (use \"memory\" for the in-memory store)")
	}
	if cfg.activeUserWindowMin <= 0 {
		return config{}, errors.New("ACTIVE_USER_WINDOW_MIN must be > 0")
	}
	if cfg.activeSessionWindowMin <= 0 {
		return config{}, errors.New("ACTIVE_SESSION_WINDOW_MIN must be > 0")
	}
	if cfg.pageviewWindowMin <= 0 {
		return config{}, errors.New("PAGEVIEW_WINDOW_MIN must be > 0")
	}
	if cfg.topPagesLimit <= 0 {
		return config{}, errors.New("TOP_PAGES_LIMIT must be > 0")
	}
	if cfg.clientRateRPS > 0 && cfg.clientRateBurst <= 0 {
		return config{}, errors.New("CLIENT_RATE_BURST must be > 0 when CLIENT_RATE_RPS is set")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
