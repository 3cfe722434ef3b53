package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kizunaapp/kizuna/config"
	"github.com/kizunaapp/kizuna/internal/service"
)

// Bot is the Telegram front end. It only formats what the services
// return; all calendar math lives behind them.
type Bot struct {
	api      *tgbotapi.BotAPI
	cfg      *config.Config
	events   *service.EventService
	contacts *service.ContactService
	comms    *service.CommunicationService
	groups   *service.GroupService
	home     *service.HomeService
}

func New(cfg *config.Config, events *service.EventService, contacts *service.ContactService, comms *service.CommunicationService, groups *service.GroupService, home *service.HomeService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("Authorized as @%s", api.Self.UserName)

	b := &Bot{
		api:      api,
		cfg:      cfg,
		events:   events,
		contacts: contacts,
		comms:    comms,
		groups:   groups,
		home:     home,
	}
	b.setCommands()
	return b, nil
}

func (b *Bot) setCommands() {
	commands := []tgbotapi.BotCommand{
		{Command: "today", Description: "📅 Today's events"},
		{Command: "week", Description: "🗓 This week"},
		{Command: "month", Description: "📆 Month calendar"},
		{Command: "agenda", Description: "📋 Upcoming month"},
		{Command: "birthdays", Description: "🎂 Upcoming birthdays"},
		{Command: "digest", Description: "📋 Today at a glance"},
		{Command: "contacts", Description: "👤 Contact list"},
		{Command: "groups", Description: "👥 Group list"},
		{Command: "help", Description: "❓ Command help"},
	}

	cfg := tgbotapi.NewSetMyCommands(commands...)
	if _, err := b.api.Request(cfg); err != nil {
		log.Printf("Failed to set commands: %v", err)
	}
}

func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if update.Message.Chat.ID != b.cfg.ChatID {
		return
	}

	text := b.handleCommand(update.Message)
	if text == "" {
		return
	}
	if err := b.SendMessage(update.Message.Chat.ID, text); err != nil {
		log.Printf("Error sending reply: %v", err)
	}
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	_, err := b.api.Send(msg)
	return err
}
