package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/jsquiz/internal/api/http"
	auth "github.com/mind-engage/jsquiz/internal/auth/middleware"
	"github.com/mind-engage/jsquiz/internal/cache"
	"github.com/mind-engage/jsquiz/internal/config"
	"github.com/mind-engage/jsquiz/internal/db"
	"github.com/mind-engage/jsquiz/internal/quiz"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	driver, err := db.ParseDriver(cfg.DBDriver)
	if err != nil {
		log.Fatalf("db driver: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, driver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer dbh.Close()
	store := quiz.NewSQLStore(dbh, driver)

	// --- Catalog cache: Redis when configured, in-process otherwise ---
	var catalogCache quiz.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("redis unavailable, using in-process cache: %v", err)
		} else {
			defer rc.Close()
			catalogCache = rc
		}
	}

	svc := quiz.NewService(store,
		quiz.WithCache(catalogCache, cfg.CatalogCacheTTL),
		quiz.WithQuestionsPerSession(cfg.QuestionsPerSession),
	)

	// --- Auth (guest tokens + local admin login) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	if cfg.EnableLocalAuth && cfg.AdminPassHash == "" {
		log.Printf("ADMIN_PASS_HASH not set; admin login disabled")
	}

	r := api.NewRouter(api.RouterConfig{
		Service:        svc,
		Auth:           authSvc,
		DB:             store,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
		SecureCookies:  cfg.Mode == config.ModeOnline,
		LocalAuth:      cfg.EnableLocalAuth,
		AdminUser:      cfg.AdminUser,
		AdminPassHash:  cfg.AdminPassHash,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, driver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
}
