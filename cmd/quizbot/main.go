package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wikismart/wikismart/internal/auth"
	"github.com/wikismart/wikismart/internal/config"
	"github.com/wikismart/wikismart/internal/db"
	"github.com/wikismart/wikismart/internal/telegram"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.RequireBot(); err != nil {
		log.Fatal(err)
	}

	rdb, err := db.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal(err)
	}
	defer rdb.Close()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("failed to create bot API: %v", err)
	}
	api.Debug = os.Getenv("DEBUG") == "true"
	log.Printf("Authorized on account %s", api.Self.UserName)

	stores := func(chatID int64) auth.Store {
		return db.NewRedisSessionStore(rdb, db.ChatSessionKey(chatID))
	}
	bot := telegram.New(api, stores, telegram.Options{
		APIURL:   cfg.APIURL,
		Timeout:  cfg.Timeout,
		LangCode: cfg.LangCode,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()

	bot.Run(ctx, updates)
	log.Println("quizbot stopped")
}
