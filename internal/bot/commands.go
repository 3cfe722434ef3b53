package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kizunaapp/kizuna/internal/calendar"
	"github.com/kizunaapp/kizuna/internal/domain"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) string {
	now := time.Now().In(b.cfg.Location())

	switch msg.Command() {
	case "start", "help":
		return helpText
	case "today":
		return b.formatEventList("📅 Today", b.events.Upcoming(1, calendar.StartOfDay(now)))
	case "week":
		return b.formatEventList("🗓 This week", b.events.Upcoming(7, calendar.StartOfDay(now)))
	case "agenda":
		return b.formatEventList("📋 Next 30 days", b.events.Upcoming(30, calendar.StartOfDay(now)))
	case "month":
		return b.formatMonth(msg.CommandArguments(), now)
	case "birthdays":
		return b.formatBirthdays(now)
	case "digest":
		return b.formatDigest(now)
	case "contacts":
		return b.formatContacts(msg.CommandArguments())
	case "groups":
		return b.formatGroups()
	case "log":
		return b.logCommunication(msg.CommandArguments(), now)
	default:
		return "Unknown command. /help"
	}
}

const helpText = `<b>Kizuna</b> — your relationship book

/today — today's events
/week — this week's events
/month [YYYY-MM] — month calendar
/agenda — next 30 days
/birthdays — upcoming birthdays
/digest — today at a glance
/contacts [search] — contact list
/groups — group list
/log &lt;contact id&gt; &lt;call|email|meeting|message&gt; [notes] — log a touchpoint`

func (b *Bot) formatEventList(header string, events []*domain.CalendarEvent) string {
	if len(events) == 0 {
		return header + ": no events"
	}

	var sb strings.Builder
	sb.WriteString(header + ":\n")

	var currentDate string
	for _, e := range events {
		start := e.StartAt.In(b.cfg.Location())
		date := start.Format("Mon 02.01")
		if date != currentDate {
			sb.WriteString(fmt.Sprintf("\n<b>%s</b>\n", date))
			currentDate = date
		}

		var line string
		if e.AllDay {
			line = fmt.Sprintf("  🗓 %s", e.Title)
		} else {
			line = fmt.Sprintf("  %s — %s", start.Format("15:04"), e.Title)
		}
		if e.Location != "" {
			line += " 📍" + e.Location
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// formatMonth renders the 42-cell grid as monospace text. Days with
// events get a dot, birthdays a tilde, today is bracketed.
func (b *Bot) formatMonth(args string, now time.Time) string {
	anchor := now
	if args != "" {
		parsed, err := time.ParseInLocation("2006-01", strings.TrimSpace(args), b.cfg.Location())
		if err != nil {
			return "Usage: /month [YYYY-MM]"
		}
		anchor = parsed
	}

	weekStart := b.cfg.WeekStartDay()
	birthdays := b.contacts.BirthdayOccurrences(now)
	buckets := b.events.MonthBuckets(anchor, weekStart, now, now, birthdays)
	cells := calendar.BuildMonthGrid(anchor, weekStart, now, now)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n<pre>", anchor.Format("January 2006")))

	for i := 0; i < 7; i++ {
		day := (int(weekStart) + i) % 7
		sb.WriteString(time.Weekday(day).String()[:2] + "   ")
	}
	sb.WriteString("\n")

	for i, cell := range cells {
		mark := " "
		if len(buckets[i].Events) > 0 {
			mark = "."
		}
		if len(buckets[i].Birthdays) > 0 {
			mark = "~"
		}

		day := fmt.Sprintf("%2d", cell.Date.Day())
		switch {
		case cell.IsToday:
			sb.WriteString(fmt.Sprintf("[%s]%s", day, mark))
		case !cell.InMonth:
			sb.WriteString("  ·  ")
		default:
			sb.WriteString(fmt.Sprintf(" %s%s ", day, mark))
		}

		if (i+1)%7 == 0 {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("</pre>\n. event  ~ birthday")
	return sb.String()
}

func (b *Bot) formatBirthdays(now time.Time) string {
	birthdays := b.contacts.UpcomingBirthdays(now, 30)
	if len(birthdays) == 0 {
		return "🎂 No birthdays in the next 30 days"
	}

	today := calendar.StartOfDay(now)
	var sb strings.Builder
	sb.WriteString("🎂 <b>Upcoming birthdays</b>\n\n")
	for _, bd := range birthdays {
		days := int(bd.Date.Sub(today).Hours() / 24)
		sb.WriteString(fmt.Sprintf("• <b>%s</b> turns %d — %s", bd.Name, bd.Age, bd.Date.Format("02.01")))
		switch days {
		case 0:
			sb.WriteString(" — <b>TODAY!</b>")
		case 1:
			sb.WriteString(" — tomorrow")
		default:
			sb.WriteString(fmt.Sprintf(" — in %d days", days))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Bot) formatDigest(now time.Time) string {
	digest := b.home.BuildDigest(now)

	var sb strings.Builder
	sb.WriteString("📋 <b>Today at a glance</b>\n")

	for _, bd := range digest.TodayBirthdays {
		sb.WriteString(fmt.Sprintf("🎂 %s turns %d today!\n", bd.Name, bd.Age))
	}

	if len(digest.TodayEvents) == 0 {
		sb.WriteString("No events today.")
	} else {
		for _, e := range digest.TodayEvents {
			if e.AllDay {
				sb.WriteString(fmt.Sprintf("🗓 %s\n", e.Title))
			} else {
				sb.WriteString(fmt.Sprintf("%s — %s\n", e.StartAt.In(b.cfg.Location()).Format("15:04"), e.Title))
			}
		}
	}

	if digest.WeekEventCount > len(digest.TodayEvents) {
		sb.WriteString(fmt.Sprintf("\n%d events this week.", digest.WeekEventCount))
	}
	return sb.String()
}

func (b *Bot) formatGroups() string {
	groups, err := b.groups.List()
	if err != nil {
		return "Failed to load groups"
	}
	if len(groups) == 0 {
		return "No groups yet"
	}

	var sb strings.Builder
	for _, g := range groups {
		members, err := b.groups.Members(g.ID)
		if err != nil {
			return "Failed to load group members"
		}
		sb.WriteString(fmt.Sprintf("#%d <b>%s</b> — %d members\n", g.ID, g.Name, len(members)))
	}
	return sb.String()
}

func (b *Bot) formatContacts(search string) string {
	contacts, err := b.contacts.Filter("", search)
	if err != nil {
		return "Failed to load contacts"
	}
	if len(contacts) == 0 {
		return "No contacts found"
	}

	var sb strings.Builder
	for _, c := range contacts {
		badge := "🏠"
		if c.Category == domain.CategoryBusiness {
			badge = "💼"
		}
		sb.WriteString(fmt.Sprintf("%s #%d <b>%s</b>", badge, c.ID, c.FullName()))
		if c.HasBirthday() {
			sb.WriteString(" 🎂 " + c.Birthday.Format("02.01"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Bot) logCommunication(args string, now time.Time) string {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return "Usage: /log <contact id> <call|email|meeting|message> [notes]"
	}

	contactID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return "Contact id must be a number"
	}

	notes := ""
	if len(parts) > 2 {
		notes = strings.Join(parts[2:], " ")
	}

	comm, err := b.comms.Log(contactID, domain.CommunicationType(parts[1]), now, notes)
	if err != nil {
		return "Failed: " + err.Error()
	}
	return fmt.Sprintf("Logged %s #%d", comm.Type, comm.ID)
}
