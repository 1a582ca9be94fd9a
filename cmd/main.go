package main

import (
	"bytes"
	"context"
	"daily-shoutout/config"
	"daily-shoutout/internal/announce"
	"daily-shoutout/internal/database"
	"daily-shoutout/internal/metrics"
	"daily-shoutout/internal/server"
	"daily-shoutout/internal/shoutout"
	"daily-shoutout/internal/telegram"
	"daily-shoutout/internal/wiki"
	"daily-shoutout/lib/translation"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func init() {
	config.InitConfig()
	setupLogging()
}

func main() {
	translation.Configure(config.GetString("locales_path"), config.GetString("lang"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	if dbPath := config.GetString("db_path"); dbPath != "" {
		if err := database.InitDB(dbPath); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.CloseDB()

		m.LoadFromDB()
		go saveMetricsPeriodically(ctx, m)
	}

	client := wiki.NewClient(wiki.Config{
		WikipediaURL:      config.GetString("wikipedia_url"),
		WikidataURL:       config.GetString("wikidata_url"),
		UserAgent:         config.GetString("user_agent"),
		Timeout:           config.GetDuration("request_timeout"),
		RequestsPerSecond: config.GetFloat64("upstream_rps"),
		BreakerTimeout:    config.GetDuration("breaker_timeout"),
	}, m)

	selector := shoutout.NewSelector(client, shoutout.NewCache(), shoutout.Config{
		MaxAttempts: config.GetInt("max_attempts"),
		BatchSize:   config.GetInt("batch_size"),
	}, m)

	if token := config.GetString("telegram_bot_token"); token != "" {
		startTelegram(ctx, token, selector, m)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", config.GetInt("http_port")),
		Handler: server.New(selector, selector.Cache(), server.Config{
			RateLimit: config.GetInt("api_rate_limit"),
		}, m).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Failed to shut down HTTP server: %v", err)
		}
	}()

	log.Infof("Launching daily shoutout server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start HTTP server: %v", err)
	}

	if database.Enabled() {
		m.SaveToDB()
	}
	log.Println("Shutting down...")
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting daily shoutout...")
}

func saveMetricsPeriodically(ctx context.Context, m *metrics.Metrics) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SaveToDB()
		}
	}
}

func startTelegram(ctx context.Context, token string, selector *shoutout.Selector, m *metrics.Metrics) {
	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          token,
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	}, selector)
	if err != nil {
		log.Errorf("Failed to create bot, continuing without Telegram: %v", err)
		return
	}

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Errorf("Failed to get updates channel: %v", err)
		return
	}
	go handleUpdates(bot, updates)

	if chatID := config.GetInt64("telegram_chat_id"); chatID != 0 {
		var ledger announce.Ledger = announce.NewMemoryLedger()
		if database.Enabled() {
			ledger = announce.DBLedger{}
		}
		announce.NewAnnouncer(selector, bot, ledger, chatID, config.GetDuration("announce_interval"), m).Start(ctx)
	}
}

func handleUpdates(bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			log.Debug("Received non-message or non-command")
			continue
		}

		handleCommand(bot, update)
	}
}

func handleCommand(bot *telegram.Bot, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	text := bot.HandleUpdate(update)
	if text == "" {
		return
	}

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	}
}
