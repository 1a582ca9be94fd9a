package telegram

import (
	"context"
	"daily-shoutout/internal/database"
	"daily-shoutout/internal/types"
	"daily-shoutout/lib/helpers"
	"daily-shoutout/lib/translation"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	sourceURL = "https://github\\.com/daily\\-shoutout/daily\\-shoutout"

	// photo captions are capped at 1024 characters by Telegram
	maxDescriptionLength = 700

	historyLimit = 10
)

// NewBot creates new telegram bot
func NewBot(c BotConfig, provider Provider) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	bot.Debug = c.Debug

	return &Bot{
		Bot:      bot,
		Config:   c,
		provider: provider,
	}, nil
}

// GetUpdatesChannel gets new updates updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.Bot.GetUpdatesChan(updatesConfig), nil
}

// SendMessage sends a telegram message
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	msg.ParseMode = "MarkdownV2"
	if _, err := b.Bot.Send(msg); err != nil {
		return errors.Wrapf(err, "could not send message: %v", m)
	}
	return nil
}

// SendShoutout posts a shoutout to a chat, as a photo when it has an image
func (b *Bot) SendShoutout(chatID int64, replyTo int, s types.Shoutout) error {
	if s.Image == nil || *s.Image == "" {
		return b.SendMessage(Message{ChatID: chatID, MessageID: replyTo, Text: FormatShoutout(s)})
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(*s.Image))
	photo.Caption = FormatShoutout(s)
	photo.ParseMode = "MarkdownV2"
	photo.ReplyToMessageID = replyTo
	if _, err := b.Bot.Send(photo); err != nil {
		return errors.Wrapf(err, "could not send shoutout %q to %d", s.Name, chatID)
	}
	return nil
}

// FormatShoutout renders a shoutout as a MarkdownV2 message
func FormatShoutout(s types.Shoutout) string {
	return fmt.Sprintf("🎉 *%s*\n\n*%s*\n%s\n\n[%s](%s)",
		helpers.EscapeMarkdownV2(translation.Translate("Shoutout of the Day")),
		helpers.EscapeMarkdownV2(s.Name),
		helpers.EscapeMarkdownV2(helpers.Truncate(s.Description, maxDescriptionLength)),
		helpers.EscapeMarkdownV2(translation.Translate("Learn More")),
		helpers.WikipediaURL(s.Name),
	)
}

// HandleUpdate processes Telegram updates. An empty result means the reply was already sent.
func (b *Bot) HandleUpdate(u tgbotapi.Update) string {
	text := helpers.EscapeMarkdownV2(translation.Translate("Send /shoutout to meet today's person of the day."))
	log.Debugf("received command: %s", u.Message.Command())

	switch u.Message.Command() {
	case "source":
		text = sourceURL
	case "history":
		text = HistoryText(u.Message.Chat.ID)
	case "shoutout", "today":
		s := b.provider.DailyShoutout(context.Background())
		if s.Image == nil {
			return FormatShoutout(s)
		}
		if err := b.SendShoutout(u.Message.Chat.ID, u.Message.MessageID, s); err != nil {
			log.Error(err)
			return FormatShoutout(s)
		}
		return ""
	}

	return text
}

// HistoryText lists the most recent shoutouts announced to a chat
func HistoryText(chatID int64) string {
	if !database.Enabled() {
		return helpers.EscapeMarkdownV2(translation.Translate("No announcement history is kept."))
	}

	announcements, err := database.GetAnnouncementsByChatID(chatID, historyLimit)
	if err != nil {
		log.Errorf("Failed to load history for chat %d: %v", chatID, err)
		return helpers.EscapeMarkdownV2(translation.Translate("Could not load the announcement history."))
	}
	if len(announcements) == 0 {
		return helpers.EscapeMarkdownV2(translation.Translate("Nothing has been announced here yet."))
	}

	var sb strings.Builder
	sb.WriteString("*" + helpers.EscapeMarkdownV2(translation.Translate("Recent shoutouts")) + "*\n")
	for _, a := range announcements {
		fmt.Fprintf(&sb, "\n%s  [%s](%s)",
			helpers.EscapeMarkdownV2(a.Date),
			helpers.EscapeMarkdownV2(a.Name),
			helpers.WikipediaURL(a.Name),
		)
	}
	return sb.String()
}
