package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"inversebias/internal/pipeline/config"
	"inversebias/internal/pipeline/repository"
	"inversebias/internal/pipeline/service"
	"inversebias/pkg/blobstore"
	"inversebias/pkg/logger"
	"inversebias/pkg/postgres"
	"inversebias/pkg/redis"
	"inversebias/pkg/telegram"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pipeline cycle and exit",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce()
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run pipeline cycles on the configured cron cadence",
	Run: func(cmd *cobra.Command, args []string) {
		runScheduled()
	},
}

func runOnce() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, appLogger, cleanup := buildRunner(ctx)
	defer cleanup()

	summary, err := runner.Execute(ctx)
	if err != nil {
		appLogger.Fatal("Pipeline cycle failed", logger.ErrorField(err))
	}
	appLogger.Info("Pipeline cycle completed", logger.StringField("summary", summary.Format()))
}

func runScheduled() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, appLogger, cleanup := buildRunner(ctx)
	defer cleanup()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	spec := cfg.Schedule.Cron
	if spec == "" {
		spec = "0 * * * *"
	}

	// A cycle that outlives the cadence must not overlap the next tick.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err = c.AddFunc(spec, func() {
		summary, err := runner.Execute(ctx)
		if err != nil {
			appLogger.Error("Scheduled pipeline cycle failed", logger.ErrorField(err))
			return
		}
		appLogger.Info("Scheduled pipeline cycle completed", logger.StringField("summary", summary.Format()))
	})
	if err != nil {
		appLogger.Fatal("Invalid cron expression", logger.StringField("cron", spec), logger.ErrorField(err))
	}

	appLogger.Info("Pipeline scheduler started", logger.StringField("cron", spec))
	c.Start()

	<-ctx.Done()
	appLogger.Info("Shutting down scheduler...")
	<-c.Stop().Done()
}

// buildRunner wires the full pipeline: storage, repositories, services and
// the cycle runner. The returned cleanup closes the database and Redis
// connections.
func buildRunner(ctx context.Context) (*service.CycleRunner, *logger.Logger, func()) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	appLogger.Info("Starting Pipeline Service", logger.Field("name", cfg.App.Name))

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	var cleanups []func()
	cleanups = append(cleanups, func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			sqlDB.Close()
		}
		_ = appLogger.Sync()
	})

	// Snapshot store: Redis in deployment, a local file for development.
	var store blobstore.Store
	switch cfg.Sync.Store {
	case "file":
		store = blobstore.NewFileStore(cfg.Sync.FilePath)
	default:
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		cleanups = append(cleanups, func() { redisClient.Close() })
		store = blobstore.NewRedisStore(redisClient.Client, cfg.Sync.SnapshotKey)
	}

	sourceRepo := repository.NewSourceRepository(db.DB)
	articleRepo := repository.NewArticleRepository(db.DB)
	analysisRepo := repository.NewAnalysisRepository(db.DB)
	runRepo := repository.NewPipelineRunRepository(db.DB)
	snapshotRepo := repository.NewSnapshotRepository(sourceRepo, articleRepo, analysisRepo)

	var sentimentRepo repository.SentimentRepository
	switch cfg.Sentiment.Provider {
	case "gemini", "":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini client", logger.ErrorField(err))
		}
		sentimentRepo, err = repository.NewGeminiSentimentRepository(cfg, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini sentiment capability", logger.ErrorField(err))
		}
	default:
		appLogger.Fatal("Unknown sentiment provider", logger.StringField("provider", cfg.Sentiment.Provider))
	}

	notifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}

	pipeline := service.NewPipelineService(
		cfg,
		service.NewSitemapCrawler(&cfg.Crawler, appLogger),
		service.NewArticleFetcher(&cfg.Crawler, appLogger),
		service.NewDeduplicator(articleRepo, cfg.Crawler.RewriteWindow, appLogger),
		service.NewSubjectClassifier(cfg.Subjects),
		service.NewSentimentAnalyzer(sentimentRepo, cfg.Sentiment.Timeout, cfg.Sentiment.BreakerThreshold, appLogger),
		service.NewBiasEngine(service.DirectionTable(cfg.Analysis.ExpectedDirection), cfg.Analysis.BiasThreshold),
		sourceRepo,
		articleRepo,
		analysisRepo,
		runRepo,
		notifier,
		appLogger,
	)

	storageSync := service.NewStorageSync(store, snapshotRepo, appLogger)
	runner := service.NewCycleRunner(storageSync, pipeline, cfg.Sync.UploadGrace, appLogger)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return runner, appLogger, cleanup
}

func main() {
	rootCmd := &cobra.Command{Use: "pipeline-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-pipeline.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing pipeline-service CLI: %s\n", err)
		os.Exit(1)
	}
}
