package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/rizaldyaw/socmint/internal/application/recon"
	"github.com/rizaldyaw/socmint/internal/config"
	"github.com/rizaldyaw/socmint/internal/domain/index"
	"github.com/rizaldyaw/socmint/internal/domain/profile"
	"github.com/rizaldyaw/socmint/internal/infra/ai/openrouter"
	"github.com/rizaldyaw/socmint/internal/infra/casefs"
	mysqlp "github.com/rizaldyaw/socmint/internal/infra/db/mysql"
	postgresp "github.com/rizaldyaw/socmint/internal/infra/db/postgres"
	"github.com/rizaldyaw/socmint/internal/infra/httpserver"
	"github.com/rizaldyaw/socmint/internal/infra/report"
	"github.com/rizaldyaw/socmint/internal/infra/social/instagram"
	minioStore "github.com/rizaldyaw/socmint/internal/infra/storage"
	"github.com/rizaldyaw/socmint/internal/middleware"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cmd := &cli.Command{
		Name:  "socmint",
		Usage: "social media reconnaissance with forensic evidence preservation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to config file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API server",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, c.String("config"))
				},
			},
			{
				Name:  "process",
				Usage: "process one target into a case from the command line",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "case", Required: true, Usage: "case name"},
					&cli.StringFlag{Name: "target", Required: true, Usage: "target username"},
					&cli.StringSliceFlag{Name: "platform", Value: []string{"instagram"}, Usage: "platforms to collect from"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return processOnce(ctx, c.String("config"), c.String("case"), c.String("target"), c.StringSlice("platform"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// app bundles everything main wires together.
type app struct {
	cfg *config.Config
	svc *recon.Service
	db  *middleware.DatabaseHealthChecker
}

func buildApp(ctx context.Context, configPath string) (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("config load: %w", err)
	}

	store, err := casefs.NewStore(cfg.Cases.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("case store init: %w", err)
	}
	preserver := casefs.NewPreserver(store, cfg.Cases.Actor)

	// LLM gateway; missing key degrades analysis to placeholders, never fails
	credentialPresent := cfg.OpenRouter.APIKey != ""
	var llm *openrouter.Client
	if credentialPresent {
		llm = openrouter.NewClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.BaseURL, cfg.OpenRouter.Model)
	} else {
		slog.Warn("OPENROUTER_API_KEY not set, analysis will use placeholders")
	}

	var fetcher profile.Fetcher
	creds := instagram.Credentials{
		SessionID: cfg.Instagram.SessionID,
		DSUserID:  cfg.Instagram.DSUserID,
		CSRFToken: cfg.Instagram.CSRFToken,
	}
	if creds.Complete() {
		fetcher = instagram.NewClient(creds)
	} else {
		slog.Warn("instagram cookies not set, collection will be simulated")
	}

	cleanup := func() {}
	var repo index.Repository
	var dbCheck *middleware.DatabaseHealthChecker
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect: %w", err)
		}
		repo = mysqlp.NewAnalysisRepository(db)
		dbCheck = &middleware.DatabaseHealthChecker{DB: db}
		cleanup = func() { db.Close() }
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		repo = postgresp.NewAnalysisRepository(db)
		dbCheck = &middleware.DatabaseHealthChecker{DB: db}
		cleanup = func() { db.Close() }
	}

	var mirror report.Mirror
	if cfg.Minio.Enabled {
		ms, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("minio init: %w", err)
		}
		mirror = ms
	}

	orch := &recon.Orchestrator{
		Client:            llm,
		CredentialPresent: credentialPresent,
		Model:             cfg.OpenRouter.Model,
		TaskTimeout:       time.Duration(cfg.OpenRouter.TaskTimeoutSeconds) * time.Second,
		Workers:           cfg.OpenRouter.Workers,
	}

	svc := &recon.Service{
		Store:        store,
		Preserver:    preserver,
		Collector:    &recon.Collector{Fetcher: fetcher},
		Orchestrator: orch,
		Reporter:     report.NewAssembler(store, mirror),
		Index:        repo,
	}

	return &app{cfg: cfg, svc: svc, db: dbCheck}, cleanup, nil
}

func serve(ctx context.Context, configPath string) error {
	a, cleanup, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer cleanup()
	cfg := a.cfg

	checkers := map[string]middleware.HealthChecker{
		"cases": &middleware.CaseRootHealthChecker{Root: cfg.Cases.Dir},
	}
	if a.db != nil {
		checkers["database"] = a.db
	}

	mux := chi.NewRouter()
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKey))
	mux.Use(middleware.RateLimitMiddleware(cfg.Server.RateLimitCapacity, cfg.Server.RateLimitRefill))
	mux.Mount("/", httpserver.NewRouter(a.svc, middleware.HealthHandler(checkers)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // processing waits on LLM fan-out
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx2)
}

func processOnce(ctx context.Context, configPath, caseName, target string, platforms []string) error {
	a, cleanup, err := buildApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	if !a.svc.Store.Exists(caseName) {
		if _, err := a.svc.CreateCase(caseName); err != nil {
			return err
		}
	}

	result, err := a.svc.ProcessCase(ctx, recon.ProcessCommand{
		CaseName:  caseName,
		Target:    target,
		Platforms: platforms,
	})
	if err != nil {
		return err
	}
	slog.Info("case processed",
		"case", result.CaseName,
		"status", result.Status,
		"items_preserved", result.ItemsPreserved,
		"report", result.ReportFile,
	)
	return nil
}
