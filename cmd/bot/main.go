package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/Azamat-Raximov/telegrambot/internal/app"
	"github.com/Azamat-Raximov/telegrambot/internal/domain/subscription"
	"github.com/Azamat-Raximov/telegrambot/internal/infra/config"
	idb "github.com/Azamat-Raximov/telegrambot/internal/infra/database"
	"github.com/Azamat-Raximov/telegrambot/internal/infra/logger"
	"github.com/Azamat-Raximov/telegrambot/internal/infra/scheduler"
	"github.com/Azamat-Raximov/telegrambot/internal/infra/storage"
	itelegram "github.com/Azamat-Raximov/telegrambot/internal/infra/telegram"
	"github.com/Azamat-Raximov/telegrambot/internal/infra/timetable"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"source":      cfg.TimetableBaseURL,
	}).Info("Timetable bot starting")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("FATAL: Unknown timezone %q: %v", cfg.Timezone, err)
	}

	// Subscription store: Postgres when configured, flat JSON file otherwise.
	var subs subscription.Repository
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to database: %v", err)
		}
		defer db.Close()
		subs = idb.NewPostgresSubscriptionRepository(db)
		log.Info("Using PostgreSQL subscription store")
	} else {
		subs = storage.NewFileSubscriptionRepository(cfg.UsersFile)
		log.WithField("path", cfg.UsersFile).Info("Using JSON file subscription store")
	}

	client := timetable.NewClient(cfg.TimetableBaseURL, cfg.HTTPTimeout)
	source := timetable.NewSource(client, cfg.CacheTTL, log.WithField("component", "timetable"))

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}

	notifier := app.NewNotificationService(
		subs, source, itelegram.NewTelebotAdapter(bot), loc,
		log.WithField("component", "dispatch"))

	triggers := scheduler.NewTriggerScheduler(loc, notifier.NotifyUser,
		log.WithField("component", "scheduler"))
	if err := triggers.RehydrateAll(context.Background(), subs); err != nil {
		// No triggers yet, but the bot can still serve commands and new
		// signups; surviving users re-register on their next /start.
		log.WithError(err).Error("Trigger rehydration failed")
	}

	refresh := scheduler.NewRefreshScheduler(source, loc, cfg.CronSpecRefresh,
		log.WithField("component", "refresh"))
	if err := refresh.Start(); err != nil {
		log.Fatalf("FATAL: Could not start refresh scheduler: %v", err)
	}

	handlers := itelegram.NewHandlers(subs, source, notifier, triggers,
		cfg.DefaultNotifyMode, log.WithField("component", "handlers"))
	handlers.Register(bot)

	log.Info("Application setup complete, starting bot")
	go bot.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	triggers.Stop()
	refresh.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully")
}
