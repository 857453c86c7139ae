package main

import (
	"context"
	"log/slog"
	"time"

	"timetablebot-backend/internal/bot"
	"timetablebot-backend/internal/chrono"
	"timetablebot-backend/lib/configutil"
	"timetablebot-backend/lib/restyutil"
	"timetablebot-backend/lib/scrapers/ejournal"
	"timetablebot-backend/lib/serviceutil"
	"timetablebot-backend/lib/sqliteutil"
	"timetablebot-backend/lib/telemetry"
	"timetablebot-backend/services/timetable"
	"timetablebot-backend/services/userstore"

	storedb "timetablebot-backend/services/userstore/db"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	err := telemetry.SetupFromEnv(ctx, "server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		telemetry.InitSlog(false)
		serviceutil.Fatal("read config.json5", err)
	}
	initTelemetry(ctx, config.Verbose)

	dbPath := config.Database
	if dbPath == "" {
		dbPath = "userstore.db"
	}
	database, err := sqliteutil.OpenDB(storedb.Schema, dbPath)
	if err != nil {
		serviceutil.Fatal("open user database", err)
	}
	defer database.Close()
	store := userstore.NewStore(database)

	client := ejournal.NewClient(ejournal.ClientOptions{
		BaseUrl:          config.Journal.BaseUrl,
		ScheduleEndpoint: config.Journal.ScheduleEndpoint,
		Timeout:          time.Duration(config.Journal.TimeoutSeconds) * time.Second,
		MaxRetries:       config.Journal.MaxRetries,
	})
	if config.Verbose {
		client.SetInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/ejournal"))
	}
	service := timetable.NewService(client)

	telegramBot, err := bot.New(bot.Options{Token: config.Telegram.Token}, store, service)
	if err != nil {
		serviceutil.Fatal("initialize telegram bot", err)
	}

	notifyTime := config.Notify.Time
	if notifyTime == "" {
		notifyTime = "07:00"
	}
	spec, err := chrono.SpecFromClock(notifyTime)
	if err != nil {
		serviceutil.Fatal("parse notify time", err)
	}

	cronner := chrono.NewStandardCron()
	defer cronner.Stop()
	err = cronner.Cron(spec, func() {
		service.NotifyAll(ctx, store, telegramBot)
	})
	if err != nil {
		serviceutil.Fatal("schedule daily notification", err)
	}
	slog.InfoContext(ctx, "daily notification scheduled", "time", notifyTime)

	telegramBot.Start(ctx)
}
