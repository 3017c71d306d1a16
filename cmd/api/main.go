package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"studio/internal/compose"
	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/library"
	"studio/internal/merge"
	promptprovider "studio/internal/providers/prompt"
	"studio/internal/providers/videogen"
	"studio/internal/quota"
	"studio/internal/safety"
	"studio/internal/schedule"
	"studio/internal/script"
	"studio/internal/storage"
)

// Feature areas of the host application. Each gets an independent composer
// and scheduler; the render permit is the only thing they share.
var featureIDs = []string{"storyboard", "character"}

const (
	defaultUserID = "00000000-0000-0000-0000-000000000001"
	defaultQuota  = 50
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	generator, err := videogen.NewClient(videogen.Options{
		APIKey:  cfg.SynthAPIKey,
		BaseURL: cfg.SynthBaseURL,
		Model:   cfg.SynthModel,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure synthesis client")
	}
	if cfg.SynthAPIKey == "" {
		logger.Warn().Str("model", generator.Model()).Msg("synthesis api key missing, using synthetic clips")
	}

	rewriter := buildRewriter(cfg, logger)
	moderation := safety.NewClient(safety.ClientOptions{
		APIKey:  cfg.ModerationAPIKey,
		BaseURL: cfg.ModerationBaseURL,
	})

	usage := quota.NewPostgres(pool, defaultQuota, logger)
	scripts := library.NewPostgres(pool)
	permit := schedule.NewSharedPermit()

	features := make(map[string]*handlers.Feature, len(featureIDs))
	for _, id := range featureIDs {
		composer := compose.NewComposer(rewriter, logger)
		features[id] = &handlers.Feature{
			ID:       id,
			Composer: composer,
			Gate:     safety.NewGate(moderation, logger),
			Scheduler: schedule.NewScheduler(schedule.Options{
				FeatureID:   id,
				UserID:      defaultUserID,
				Permit:      permit,
				Generator:   generator,
				Quota:       usage,
				Logger:      logger,
				OnCompleted: autoDownloadHook(cfg, fileStore, id, logger),
			}),
			Importer: script.NewImporter(scripts, composer, cfg.VoiceID, logger),
		}
	}

	app := &handlers.App{
		Logger:     logger,
		Features:   features,
		Store:      fileStore,
		Fetcher:    merge.NewMediaFetcher(nil, fileStore),
		NewEncoder: func() merge.Encoder { return merge.NewFFmpegEncoder(cfg.FFmpegPath) },
	}

	router := httpapi.NewRouter(app, logger, cfg.RateLimitPerMin)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildRewriter(cfg *infra.Config, logger zerolog.Logger) promptprovider.Rewriter {
	if cfg.RewriteAPIKey == "" {
		logger.Warn().Msg("rewrite api key missing, using static rewriter")
		return promptprovider.NewStaticRewriter()
	}
	client, err := promptprovider.NewClient(promptprovider.ClientOptions{
		APIKey:  cfg.RewriteAPIKey,
		BaseURL: cfg.RewriteBaseURL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("rewrite client unavailable, using static rewriter")
		return promptprovider.NewStaticRewriter()
	}
	return client
}

// autoDownloadHook persists every completed clip into the local store when
// AUTO_DOWNLOAD is enabled, mirroring the front end's optional
// download-on-completion behavior.
func autoDownloadHook(cfg *infra.Config, store *storage.FileStore, feature string, logger zerolog.Logger) func(string, *videogen.Result) {
	if !cfg.AutoDownload {
		return nil
	}
	return func(jobID string, result *videogen.Result) {
		if result == nil || len(result.Data) == 0 {
			return
		}
		key := downloadKey(feature, jobID)
		if _, err := store.Write(context.Background(), key, result.Data); err != nil {
			logger.Warn().Err(err).Str("job_id", jobID).Msg("auto-download failed")
		}
	}
}

func downloadKey(feature, jobID string) string {
	return "downloads/" + feature + "/" + jobID + ".mp4"
}
