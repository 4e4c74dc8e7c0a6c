package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	storecfg "github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/feed"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/sessions"
)

func main() {
	cfg := storecfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	r := &repo.GormRepo{DB: db}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = r.Migrate(ctx)
	cancel()
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	statusSvc := &service.StatusService{Repo: r}
	if cfg.StatusSeedFile != "" {
		names, err := storecfg.LoadStatusSeed(cfg.StatusSeedFile)
		if err != nil {
			log.Fatalf("status seed: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		added, err := statusSvc.Seed(ctx, names)
		cancel()
		if err != nil {
			log.Fatalf("status seed: %v", err)
		}
		logger.Info("statuses_seeded", "file", cfg.StatusSeedFile, "added", added)
	}

	hub := feed.NewHub(cfg.CORSOrigins)
	publishers := events.Multi{hub}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		if producer, err = events.NewProducer(cfg.KafkaBrokers); err != nil {
			logger.Warn("kafka_unavailable", "error", err)
		} else {
			publishers = append(publishers, producer)
		}
	} else {
		logger.Warn("kafka_disabled", "reason", "KAFKA_BROKERS not set")
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			logger.Warn("elasticsearch_unavailable", "error", err)
		} else {
			index = &search.ProductIndex{ES: es, Index: cfg.ESIndex}
		}
	}

	var denylist sessions.Denylist
	var redisDenylist *sessions.RedisDenylist
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisDenylist, err = sessions.NewRedisDenylist(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			logger.Warn("redis_unavailable", "error", err)
		} else {
			denylist = redisDenylist
		}
	}

	images, err := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	resolver := &service.StatusResolver{Repo: r}

	deps := &httpserver.Deps{
		Orders: &httpserver.OrderHTTP{
			Svc: &service.OrderService{Repo: r, Statuses: resolver, Events: publishers},
			Hub: hub,
		},
		Statuses:   &httpserver.StatusHTTP{Svc: statusSvc},
		OrderItems: &httpserver.OrderItemHTTP{Svc: &service.OrderItemService{Repo: r}},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{
			Repo:   r,
			Index:  index,
			Images: images,
			Events: publishers,
		}},
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:      r,
			JWTSecret: cfg.JWTSecret,
			TokenTTL:  cfg.JWTExpiresIn,
			Denylist:  denylist,
		}},
		Users:     &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		AuthMW:    middleware.NewAuthMiddleware(cfg.JWTSecret, denylist),
		Ready:     r.Ping,
		UploadDir: cfg.UploadDir,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: len(cfg.CORSOrigins) > 0 && cfg.CORSOrigins[0] != "*",
	}))

	e.Use(csrf.Middleware(csrf.Config{SessionCookie: middleware.AccessCookie, Secure: true}))

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.Close()
	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		_ = producer.Close()
	}
	if redisDenylist != nil {
		_ = redisDenylist.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
