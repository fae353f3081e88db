package main

import (
	"context"
	"fmt"
	"time"

	"yt-channel-report/domain/repository"
	"yt-channel-report/infrastructure/cache"
	youtubeclient "yt-channel-report/infrastructure/clients/youtube"
	"yt-channel-report/infrastructure/configuration"
	"yt-channel-report/infrastructure/export"
	"yt-channel-report/infrastructure/filecsv"
	"yt-channel-report/infrastructure/logger"
	"yt-channel-report/infrastructure/persistence"
	"yt-channel-report/infrastructure/pubsub"
	"yt-channel-report/infrastructure/servicebus"
	httpHandler "yt-channel-report/interfaces/http"
	"yt-channel-report/usecase"
)

const requestTimeout = 30 * time.Second

// application holds the wired report pipeline and the optional side services
type application struct {
	report       *usecase.ReportUseCase
	healthChecks map[string]httpHandler.HealthCheck
	closers      []func()
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApplication wires the pipeline from configuration.C. Optional services that
// fail to connect are logged and left out.
func newApplication(ctx context.Context) (*application, error) {
	cfg := configuration.C
	app := &application{healthChecks: map[string]httpHandler.HealthCheck{}}

	ytConfig, err := configuration.GetYouTubeConfig()
	if err != nil {
		return nil, err
	}
	youtubeClient, err := youtubeclient.NewYouTubeClient(ctx, &youtubeclient.Config{
		APIKey:       ytConfig.APIKey,
		ClientID:     ytConfig.ClientID,
		ClientSecret: ytConfig.ClientSecret,
		RedirectURL:  ytConfig.RedirectURL,
		AccessToken:  ytConfig.AccessToken,
		RefreshToken: ytConfig.RefreshToken,
		Endpoint:     ytConfig.Endpoint,
		Timeout:      requestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("youtube client: %w", err)
	}

	channels := usecase.NewChannelUseCase(youtubeClient)
	if cfg.RedisEnabled() {
		addr := fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port)
		rdb, err := cache.NewCache(ctx, addr, cfg.RedisClient.Username, cfg.RedisClient.Password, cfg.RedisClient.DB)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without channel cache")
		} else {
			channels.WithCache(cache.NewChannelCache(rdb))
			app.healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			app.closers = append(app.closers, func() { _ = rdb.Close() })
			logger.GetLogger().Info("Redis client initialized successfully.")
		}
	}

	videos := usecase.NewVideoUseCase(youtubeClient)
	comments := usecase.NewCommentUseCase(youtubeClient).
		WithLimit(cfg.Report.MaxComments).
		WithKeepPartial(cfg.Report.KeepPartialComments)

	writers := map[string]repository.IReportWriter{
		usecase.FormatXLSX: export.NewXLSXWriter(),
		usecase.FormatCSV:  filecsv.NewWriter(),
	}
	if cfg.GoogleSheet.SpreadsheetId != "" || cfg.GoogleSheet.CredentialsFile != "" {
		service, err := export.NewSheetsService(ctx, &export.SheetsConfig{CredentialsFile: cfg.GoogleSheet.CredentialsFile})
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Google Sheets not available - gsheet format disabled")
		} else {
			writers[usecase.FormatGSheet] = export.NewGSheetWriter(service, cfg.GoogleSheet.SpreadsheetId)
		}
	}

	app.report = usecase.NewReportUseCase(channels, videos, comments, writers, usecase.ReportDefaults{
		FileName:       cfg.Report.FileName,
		Format:         cfg.Report.Format,
		MaxVideos:      cfg.Report.MaxVideos,
		MaxVideosLimit: cfg.Report.MaxVideosLimit,
		WebHost:        ytConfig.WebHost,
		OutputDir:      cfg.Report.OutputDir,
	})

	if cfg.PostgresEnabled() {
		db, err := persistence.NewPostgreSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PostgreSQL not available - reports are not archived")
		} else if err := persistence.EnsureReportSchema(db); err != nil {
			logger.GetLogger().WithField("error", err).Error("Failed to ensure report schema")
			_ = db.Close()
		} else {
			app.report.WithArchive(persistence.NewReportRepository(db))
			app.healthChecks["postgres"] = db.PingContext
			app.closers = append(app.closers, func() { _ = db.Close() })
		}
	}

	if cfg.PubsubEnabled() {
		pubSubClient, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without notifications")
		} else {
			notifier := pubsub.NewReportNotifier(pubSubClient, cfg.Pubsub.Topic)
			app.report.WithNotifier(notifier)
			app.closers = append(app.closers, func() {
				notifier.Stop()
				_ = pubSubClient.Close()
			})
		}
	}

	if cfg.ServiceBusEnabled() {
		sbClient, err := servicebus.NewServiceBus(cfg.ServiceBus.Namespace, cfg.ServiceBus.ConnectionString)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Service Bus not available - continuing without notifications")
		} else {
			app.report.WithNotifier(servicebus.NewReportNotifier(sbClient, cfg.ServiceBus.Queue))
			app.closers = append(app.closers, func() { _ = sbClient.Close(context.Background()) })
		}
	}

	return app, nil
}
