package main

import (
	"TuneRelay/config"
	"TuneRelay/internal/access"
	"TuneRelay/internal/bot"
	"TuneRelay/internal/cache"
	"TuneRelay/internal/fetch"
	"TuneRelay/internal/gateway/telegram"
	"TuneRelay/internal/queue"
	"TuneRelay/internal/repo"
	"TuneRelay/internal/stats"
	"TuneRelay/internal/worker"
	"TuneRelay/router"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// main initializes services and starts the bot and the admin API.
func main() {
	config.InitConfig()
	repo.InitDB()

	gw, err := telegram.New(config.AppConfig.BotToken)
	if err != nil {
		log.Fatal("init telegram fail: ", err)
	}

	contentCache := cache.New(repo.Db)
	controller := access.NewController(access.NewGormBackend(repo.Db))
	aggregator := stats.New(repo.Db, contentCache)

	var fetcher fetch.Fetcher = fetch.NewYTDLP()
	if config.AppConfig.MinioHost != "" {
		archived, archiveErr := fetch.NewArchived(fetcher)
		if archiveErr != nil {
			log.Printf("artifact archive disabled: %v", archiveErr)
		} else {
			fetcher = archived
		}
	}
	fetcher = fetch.NewLimited(
		fetcher,
		config.AppConfig.FetchRate,
		config.AppConfig.FetchBurst,
		config.AppConfig.FetchTimeout,
	)

	pipeline := worker.NewPipeline(
		gw,
		controller,
		contentCache,
		aggregator,
		fetcher,
		config.AppConfig.PartSizeLimit,
	)
	q := queue.New(pipeline.Process)

	engine := router.InitRouter(aggregator)
	go func() {
		if err := engine.Run(config.AppConfig.HTTPAddr); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("shutting down, draining the queue...")
		q.Drain()
		os.Exit(0)
	}()

	log.Println("bot starting...")
	bot.New(gw, controller, aggregator, q, config.AppConfig.AdminID).Run()
}
