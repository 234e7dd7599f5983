package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/nextgen-portal/client"
	"github.com/totegamma/nextgen-portal/internal/config"
	"github.com/totegamma/nextgen-portal/internal/infra/database"
	"github.com/totegamma/nextgen-portal/internal/infra/gateway"
	"github.com/totegamma/nextgen-portal/internal/infra/repository"
	"github.com/totegamma/nextgen-portal/internal/infra/tracing"
	"github.com/totegamma/nextgen-portal/internal/present/rest"
	"github.com/totegamma/nextgen-portal/internal/present/rest/middleware"
	"github.com/totegamma/nextgen-portal/internal/service"
	"github.com/totegamma/nextgen-portal/internal/usecase"
)

const serviceName = "nextgen-portal"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portal API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.Load(configPath)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, conf)
	},
}

func serve(ctx context.Context, conf config.Config) error {
	if conf.Server.EnableTrace {
		shutdown, err := tracing.Setup(ctx, serviceName, conf.Server.TraceEndpoint)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := client.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return err
	}

	var rdb *redis.Client
	if conf.Server.RedisAddr != "" {
		rdb = database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err := database.PingRedis(ctx, rdb); err != nil {
			return err
		}
		defer rdb.Close()
	}

	sessionRepo, err := newSessionRepository(conf, rdb)
	if err != nil {
		return err
	}

	signals := service.NewSignalService(rdb)
	go func() {
		if err := signals.Run(ctx); err != nil {
			slog.Error("notification relay stopped", slog.String("error", err.Error()), slog.String("module", "signal"))
		}
	}()

	cl := client.New(
		conf.ClientConfig(),
		client.WithNotifier(signals),
		client.WithMetrics(metrics),
	)
	catalog := gateway.NewCatalogGateway(cl)

	sessions := usecase.NewSessionUsecase(sessionRepo)
	handler := rest.NewHandler(
		usecase.NewSearchUsecase(catalog, usecase.SearchOptions{
			Paginate:     conf.Search.Paginate,
			DefaultLimit: conf.Search.DefaultLimit,
			Language:     conf.Client.Language,
		}),
		usecase.NewDatasetUsecase(catalog, signals, conf.Client.Language),
		usecase.NewFileUsecase(catalog, sessions),
		sessions,
		usecase.NewStatusUsecase(catalog),
		signals,
		reg,
	)
	sessionMiddleware := middleware.NewSessionMiddleware(sessions, service.NewAuthService(), conf.Server.SecureCookie)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowCredentials: true,
		ExposeHeaders:    []string{"ng-session-id"},
	}))
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(func(c echo.Context) bool {
			return c.Path() == "/metrics"
		})))
	}
	handler.RegisterRoutes(e, sessionMiddleware.IdentifySession)

	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", conf.Server.Listen), slog.String("module", "main"))
		if err := e.Start(conf.Server.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newSessionRepository(conf config.Config, rdb *redis.Client) (usecase.SessionRepository, error) {
	switch conf.Server.SessionStore {
	case "postgres":
		db, err := database.NewPostgres(conf.Server.PostgresDsn)
		if err != nil {
			return nil, errors.Wrap(err, "connect postgres")
		}
		if err := database.MigratePostgres(db); err != nil {
			return nil, errors.Wrap(err, "migrate postgres")
		}
		return repository.NewPostgresSessionRepository(db), nil
	case "redis":
		return repository.NewRedisSessionRepository(rdb, 0), nil
	case "memcached":
		return repository.NewMemcacheSessionRepository(database.NewMemcached(conf.Server.MemcachedAddr), 0), nil
	}
	return repository.NewMemorySessionRepository(0), nil
}
