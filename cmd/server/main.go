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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dfryer1193/foundation-api/content/application"
	"github.com/dfryer1193/foundation-api/content/persistence"
	"github.com/dfryer1193/foundation-api/internal/assets"
	"github.com/dfryer1193/foundation-api/internal/config"
	"github.com/dfryer1193/foundation-api/internal/middleware"
	"github.com/dfryer1193/foundation-api/internal/rest"
	"github.com/dfryer1193/foundation-api/network/bird"
	"github.com/dfryer1193/foundation-api/network/lists"
	"github.com/dfryer1193/foundation-api/network/lookingglass"
	"github.com/dfryer1193/foundation-api/network/peers"
	"github.com/dfryer1193/foundation-api/network/stats"
	"github.com/dfryer1193/foundation-api/shared/cache"
	"github.com/dfryer1193/foundation-api/shared/upstream"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg)

	contentFS := os.DirFS(cfg.ContentDir)
	source := persistence.NewFileSource(contentFS)
	renderers := application.NewRenderers(cfg.BaseURL)

	library, err := application.LoadLibrary(source, renderers)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.ContentDir).Msg("Failed to load content")
	}
	snapshot := application.NewSnapshot(library)
	reloader := application.NewReloader(source, renderers, snapshot)

	client := upstream.NewHTTPClient(cfg.UserAgent)
	refresher := cache.NewRefresher(cfg.RefreshInterval, cfg.FailureDelay)
	deps := rest.Dependencies{
		Library: snapshot,
		Assets:  assets.NewHandler(contentFS).Router(),
	}

	if cfg.PrometheusURL != "" {
		statsService, err := stats.NewService(stats.Config{
			PrometheusURL: cfg.PrometheusURL,
			Client:        client,
			Push:          cfg.PushStats,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create stats service")
		}
		if cfg.PushStats {
			statsService.Register(refresher)
		}
		deps.Stats = statsService
	}

	if cfg.IXPManagerURL != "" {
		supporters, err := peers.LoadSupporters(source)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load supporters")
		}
		deps.Peers = peers.NewService(peers.NewUpdater(client, cfg.IXPManagerURL, supporters))
	}

	if cfg.LookingGlassURL != "" {
		lg := lookingglass.NewService(lookingglass.NewUpdater(client, cfg.LookingGlassURL))
		lg.Register(refresher)
		deps.LookingGlass = lg
	}

	if cfg.BirdFile != "" {
		deps.Bird = bird.NewService(bird.NewUpdater(cfg.BirdFile))
	}

	if cfg.ListmonkURL != "" {
		mailingLists, err := lists.New(client, lists.Config{
			URL:          cfg.ListmonkURL,
			User:         cfg.ListmonkUser,
			PasswordFile: cfg.ListmonkPasswordFile,
			Lists:        cfg.ListmonkLists,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up mailing lists")
		}
		deps.MailingLists = mailingLists
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	router.Use(middleware.CORS())
	rest.NewApi(router, deps)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("caches", refresher.Len()).Msg("Starting background refresh")
		return refresher.Run(ctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(signals)

		for {
			select {
			case <-ctx.Done():
				return shutdown(srv)
			case sig := <-signals:
				if sig == syscall.SIGHUP {
					if err := reloader.Reload(); err != nil {
						log.Error().Err(err).Msg("Failed to reload content, keeping previous content")
						continue
					}
					log.Info().Msg("Reloaded content")
					continue
				}
				cancel()
				return shutdown(srv)
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server stopped")
}

func shutdown(srv *http.Server) error {
	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
