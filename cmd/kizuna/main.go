package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kizunaapp/kizuna/config"
	"github.com/kizunaapp/kizuna/internal/bot"
	"github.com/kizunaapp/kizuna/internal/clients/caldav"
	"github.com/kizunaapp/kizuna/internal/notify"
	"github.com/kizunaapp/kizuna/internal/reminder"
	"github.com/kizunaapp/kizuna/internal/scheduler"
	"github.com/kizunaapp/kizuna/internal/service"
	"github.com/kizunaapp/kizuna/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "./data/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	notifier := notify.NewStore(store)
	reminders := reminder.New(notifier, time.Now)

	var external *caldav.Client
	if cfg.CalDAV.Username != "" {
		external = caldav.NewClient(cfg.CalDAV.URL, cfg.CalDAV.Username, cfg.CalDAV.Password, cfg.CalDAV.CalendarPath)
	}

	eventSvc := service.NewEventService(store, reminders, external)
	contactSvc := service.NewContactService(store, eventSvc)
	commSvc := service.NewCommunicationService(store)
	groupSvc := service.NewGroupService(store)
	homeSvc := service.NewHomeService(eventSvc, contactSvc)

	tgBot, err := bot.New(cfg, eventSvc, contactSvc, commSvc, groupSvc, homeSvc)
	if err != nil {
		log.Fatalf("Failed to init bot: %v", err)
	}

	sched := scheduler.New(cfg, notifier, homeSvc)
	sched.SetSender(tgBot)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	go func() {
		if err := tgBot.Start(ctx); err != nil {
			log.Printf("Bot error: %v", err)
		}
	}()

	log.Println("Kizuna started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")

	cancel()
	sched.Stop()

	log.Println("Kizuna stopped")
}
