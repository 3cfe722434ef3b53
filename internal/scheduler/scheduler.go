package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kizunaapp/kizuna/config"
	"github.com/kizunaapp/kizuna/internal/notify"
	"github.com/kizunaapp/kizuna/internal/service"
	"github.com/robfig/cron/v3"
)

type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// Scheduler drives the time-based side of the app: delivering due
// reminder notifications every minute and the morning digest.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	notifier notify.Service
	home     *service.HomeService
	sender   MessageSender
}

func New(cfg *config.Config, notifier notify.Service, home *service.HomeService) *Scheduler {
	c := cron.New(cron.WithLocation(cfg.Location()))

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		notifier: notifier,
		home:     home,
	}
}

func (s *Scheduler) SetSender(sender MessageSender) {
	s.sender = sender
}

func (s *Scheduler) Start(ctx context.Context) error {
	digestSpec, err := cronSpecForTime(s.cfg.DigestTime)
	if err != nil {
		return fmt.Errorf("digest time: %w", err)
	}
	if _, err := s.cron.AddFunc(digestSpec, s.morningDigest); err != nil {
		return fmt.Errorf("add morning digest: %w", err)
	}

	if _, err := s.cron.AddFunc("* * * * *", s.dispatchDueReminders); err != nil {
		return fmt.Errorf("add reminder dispatch: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (TZ: %s, digest: %s)", s.cfg.Timezone, s.cfg.DigestTime)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

// dispatchDueReminders sends every pending request whose trigger has
// passed and removes it from the pending set. Delivery is
// best-effort: a failed send stays pending for the next tick.
func (s *Scheduler) dispatchDueReminders() {
	if s.sender == nil {
		return
	}

	pending, err := s.notifier.ListPending()
	if err != nil {
		log.Printf("Error listing pending reminders: %v", err)
		return
	}

	now := time.Now().In(s.cfg.Location())
	for _, req := range pending {
		if req.TriggerAt.After(now) {
			continue
		}

		text := fmt.Sprintf("🔔 <b>%s</b>\n%s", req.Title, req.Body)
		if err := s.sender.SendMessage(s.cfg.ChatID, text); err != nil {
			log.Printf("Error sending reminder %s: %v", req.ID, err)
			continue
		}

		if err := s.notifier.Cancel(req.ID); err != nil {
			log.Printf("Error clearing reminder %s: %v", req.ID, err)
		}
	}
}

func (s *Scheduler) morningDigest() {
	if s.sender == nil {
		return
	}

	now := time.Now().In(s.cfg.Location())
	digest := s.home.BuildDigest(now)

	var sb strings.Builder
	sb.WriteString("☀️ <b>Good morning!</b>\n\n")

	if len(digest.TodayBirthdays) > 0 {
		sb.WriteString("🎂 Birthdays today:\n")
		for _, b := range digest.TodayBirthdays {
			sb.WriteString(fmt.Sprintf("• %s turns %d\n", b.Name, b.Age))
		}
		sb.WriteString("\n")
	}

	if len(digest.TodayEvents) == 0 {
		sb.WriteString("No events today.\n")
	} else {
		sb.WriteString("📅 Today:\n")
		for _, e := range digest.TodayEvents {
			if e.AllDay {
				sb.WriteString(fmt.Sprintf("• %s (all day)\n", e.Title))
			} else {
				sb.WriteString(fmt.Sprintf("• %s — %s\n", e.StartAt.In(s.cfg.Location()).Format("15:04"), e.Title))
			}
		}
	}

	if digest.WeekEventCount > len(digest.TodayEvents) {
		sb.WriteString(fmt.Sprintf("\n%d events this week.", digest.WeekEventCount))
	}

	if err := s.sender.SendMessage(s.cfg.ChatID, sb.String()); err != nil {
		log.Printf("Error sending morning digest: %v", err)
	}
}

// cronSpecForTime converts "HH:MM" to a daily cron spec
func cronSpecForTime(t string) (string, error) {
	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format: %s", t)
	}
	return fmt.Sprintf("%s %s * * *", parts[1], parts[0]), nil
}
