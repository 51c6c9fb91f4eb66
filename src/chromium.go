package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chromium-bot/chromium/src/api"
	"github.com/chromium-bot/chromium/src/bot"
	"github.com/chromium-bot/chromium/src/config"
	"github.com/chromium-bot/chromium/src/data"
)

func main() {
	db := data.MustMySQL(data.GetMySQLDSN())
	if err := data.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if err := data.LoadSettings(db); err != nil {
		log.Fatalf("settings: %v", err)
	}

	cfg := config.Load(db)
	if cfg.Token == "" {
		log.Fatal("discord token not configured (settings table or DISCORD_TOKEN)")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	b, err := bot.New(bot.Config{Token: cfg.Token, DB: db, Redis: rdb})
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	if err := b.Start(); err != nil {
		log.Fatalf("discord connect: %v", err)
	}
	log.Print("Chromium connected to Discord")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := api.Serve(ctx, cfg.APIAddr, api.New(cfg, db, rdb)); err != nil {
			log.Printf("api server: %v", err)
		}
	}()
	log.Printf("Operator API listening on %s", cfg.APIAddr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	cancel()
	b.Stop()
}
