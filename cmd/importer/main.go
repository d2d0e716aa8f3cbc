package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"match_importer/internal/alert"
	"match_importer/internal/config"
	"match_importer/internal/domain"
	"match_importer/internal/logging"
	"match_importer/internal/publisher"
	"match_importer/internal/scheduler"
	"match_importer/internal/service"
	"match_importer/internal/source/footballdata"
	"match_importer/internal/storage/memory"
	"match_importer/internal/storage/postgres"
	"match_importer/internal/transform"
)

type stores struct {
	matches     service.MatchStore
	checkpoints service.CheckpointStore
	seasons     service.SeasonStore
	addSeasons  func(ctx context.Context, codes ...string) error
	close       func() error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "import every configured feed once and exit")
	country := flag.String("country", "", "import a single results feed for this country code and exit")
	division := flag.Int("division", 1, "division of the single results feed")
	season := flag.String("season", "", "season of the single results feed, defaults to the current season")
	flag.Parse()

	logger := logging.NewJSON(logging.LevelInfo)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = logging.NewJSON(logging.ParseLevel(cfg.LogLevel))
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	st, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	if len(cfg.Seasons) > 0 {
		if err := st.addSeasons(ctx, cfg.Seasons...); err != nil {
			logger.Error("failed to register seasons", "error", err)
			os.Exit(1)
		}
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	var alerter scheduler.Alerter
	if cfg.Telegram.Enabled() {
		tg, err := alert.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn("telegram alerts disabled", "error", err)
		} else {
			alerter = tg
		}
	}

	source := footballdata.New(footballdata.Config{
		BaseURL:   cfg.Feed.BaseURL,
		Timeout:   cfg.Feed.Timeout,
		UserAgent: cfg.Feed.UserAgent,
	}, logger)

	importService := service.NewImportService(
		source,
		transform.New(),
		st.matches,
		st.checkpoints,
		st.seasons,
		pub,
		logger,
	)

	if *country != "" {
		req := domain.ResultFeedRequest{CountryCode: *country, Division: *division, Season: *season}
		if _, err := importService.ImportResults(ctx, req); err != nil {
			logger.Error("results import failed", "country", req.CountryCode, "division", req.Division, "error", err)
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewScheduler(importService, alerter, scheduler.Config{
		Cron:       cfg.Schedule.Cron,
		RunTimeout: cfg.Schedule.RunTimeout,
		Workers:    cfg.Schedule.Workers,
		Results:    cfg.Results,
	}, logger)

	if *once {
		if err := sched.RunOnce(ctx); err != nil {
			logger.Error("import pass failed", "error", err)
			os.Exit(1)
		}
		return
	}

	logger.Info("starting match importer",
		"source", source.Name(),
		"storage", cfg.Storage.Driver,
		"cron", cfg.Schedule.Cron,
		"result_feeds", len(cfg.Results),
	)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func openStores(cfg *config.Config, logger *logging.Logger) (*stores, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		seasons := memory.NewSeasonStore()
		logger.Warn("using in-memory storage, nothing survives a restart")
		return &stores{
			matches:     memory.NewMatchStore(),
			checkpoints: memory.NewCheckpointStore(),
			seasons:     seasons,
			addSeasons:  seasons.Add,
			close:       func() error { return nil },
		}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	seasons := postgres.NewSeasonStore(db)
	return &stores{
		matches:     postgres.NewMatchStore(db),
		checkpoints: postgres.NewCheckpointStore(db),
		seasons:     seasons,
		addSeasons:  seasons.Add,
		close:       db.Close,
	}, nil
}
