// Package notify pushes incident alerts to the campus duty channel.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"sentra/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts new incidents at or above MinPriority and every
// assignment to one chat.
type Telegram struct {
	bot         Sender
	chatID      int64
	minPriority models.Priority
	log         *zap.Logger
}

func NewTelegram(bot Sender, chatID int64, minPriority models.Priority, log *zap.Logger) *Telegram {
	if !minPriority.Valid() {
		minPriority = models.PriorityHigh
	}
	return &Telegram{bot: bot, chatID: chatID, minPriority: minPriority, log: log}
}

// Wants reports whether ev is worth a message.
func (t *Telegram) Wants(ev models.IncidentEvent) bool {
	switch ev.Type {
	case models.EventIncidentCreated:
		return ev.Priority.Rank() >= t.minPriority.Rank()
	case models.EventIncidentAssigned:
		return true
	}
	return false
}

func (t *Telegram) Notify(_ context.Context, ev models.IncidentEvent, inc *models.Incident) error {
	if !t.Wants(ev) {
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, Format(ev, inc))
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := t.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("telegram send %s for %s: %w", ev.Type, ev.ReferenceID, err)
	}
	t.log.Debug("duty channel notified",
		zap.String("event", string(ev.Type)),
		zap.String("reference_id", ev.ReferenceID),
		zap.Int("message_id", sent.MessageID))
	return nil
}

// Format renders the alert text. The reporter is never included.
func Format(ev models.IncidentEvent, inc *models.Incident) string {
	var b strings.Builder
	switch ev.Type {
	case models.EventIncidentAssigned:
		b.WriteString("📌 <b>Incident assigned</b>\n")
	default:
		b.WriteString("🚨 <b>New incident</b>\n")
	}
	fmt.Fprintf(&b, "<code>%s</code> · %s · %s\n",
		html.EscapeString(ev.ReferenceID),
		html.EscapeString(string(ev.Priority)),
		html.EscapeString(string(ev.Category)))

	if inc != nil {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(inc.Title))
		if inc.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(inc.Location))
		}
		if ev.Type == models.EventIncidentAssigned && inc.Assignee != nil {
			fmt.Fprintf(&b, "👤 %s\n", html.EscapeString(inc.Assignee.Name))
		}
	}
	fmt.Fprintf(&b, "Status: %s", html.EscapeString(string(ev.Status)))
	return b.String()
}

// Nop drops every event. Used when no bot token is configured.
type Nop struct{}

func (Nop) Notify(context.Context, models.IncidentEvent, *models.Incident) error { return nil }
