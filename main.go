package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	"pricewatch/apperrors"
	"pricewatch/cache"
	"pricewatch/config"
	"pricewatch/controllers"
	"pricewatch/database"
	"pricewatch/logger"
	"pricewatch/middleware"
	"pricewatch/pricing"
	"pricewatch/routes"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logger)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	var responses cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled() {
		redisCache := cache.NewRedis(cfg.Cache)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn("response cache unavailable, serving uncached", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			responses = redisCache
			log.Info("response cache enabled", "addr", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
		}
	}

	engine := pricing.NewEngine(pricing.WithLocation(cfg.Pricing.Location))
	h := controllers.New(database.NewStore(db), engine, responses, log, cfg.Pricing.StoreTimeout)

	app := fiber.New(fiber.Config{
		AppName:      "pricewatch",
		ErrorHandler: apperrors.Handler(log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Security.AllowOrigins,
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type, X-Request-ID",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency} ${respHeader:X-Request-ID}\n",
	}))
	app.Use(middleware.NewRateLimiter(cfg.Security, log).Handler())

	routes.Setup(app, h)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Address(), "env", cfg.AppEnv, "timezone", cfg.Pricing.Timezone)
		return app.Listen(cfg.Address())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
