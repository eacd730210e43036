// Package telegram implements domain.Channel over the Telegram Bot API
// with long polling.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/talabot/talabot/internal/domain"
	"github.com/talabot/talabot/internal/logging"
)

const pollTimeoutSeconds = 30

// Channel is the Telegram transport.
type Channel struct {
	api     *tgbotapi.BotAPI
	handler func(domain.InboundMessage)
	log     *logging.Logger
}

// New authenticates against the Bot API with the given token.
func New(token string, log *logging.Logger) (*Channel, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("authenticating telegram bot: %w", err)
	}
	c := &Channel{api: api, log: log.Sub("telegram")}
	c.log.Info().Str("username", api.Self.UserName).Msg("telegram bot authenticated")
	return c, nil
}

// ID returns the channel identifier.
func (c *Channel) ID() string { return "telegram" }

// OnMessage registers the inbound handler.
func (c *Channel) OnMessage(handler func(msg domain.InboundMessage)) {
	c.handler = handler
}

// Start long-polls for updates until the context is canceled. Events are
// delivered to the handler one at a time, in arrival order; the handler
// runs to completion before the next update is read.
func (c *Channel) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := c.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil || upd.Message.Text == "" {
				continue
			}
			if c.handler == nil {
				c.log.Warn().Msg("no message handler wired, dropping update")
				continue
			}
			c.handler(inbound(upd.Message))
		}
	}
}

// Stop shuts down the update channel.
func (c *Channel) Stop(ctx context.Context) error {
	c.api.StopReceivingUpdates()
	return nil
}

// Send delivers a text, photo, or document message. Keyboard rows become a
// resized reply keyboard.
func (c *Channel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	chatID, err := strconv.ParseInt(string(msg.Identity), 10, 64)
	if err != nil {
		return fmt.Errorf("identity %q is not a telegram chat id: %w", msg.Identity, err)
	}

	var chattable tgbotapi.Chattable
	switch {
	case msg.Photo != nil:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(msg.Photo.Path))
		photo.Caption = msg.Photo.Caption
		photo.ReplyMarkup = keyboard(msg.Keyboard)
		chattable = photo
	case msg.Document != nil:
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(msg.Document.Path))
		doc.Caption = msg.Document.Caption
		doc.ReplyMarkup = keyboard(msg.Keyboard)
		chattable = doc
	default:
		text := tgbotapi.NewMessage(chatID, msg.Text)
		text.ReplyMarkup = keyboard(msg.Keyboard)
		chattable = text
	}

	if _, err := c.api.Send(chattable); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

// keyboard converts rows of labels into a reply keyboard, or nil when
// there are no rows (which keeps the recipient's current keyboard).
func keyboard(rows [][]string) any {
	if len(rows) == 0 {
		return nil
	}
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, btns)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.ResizeKeyboard = true
	return kb
}

// inbound converts a Telegram message into the transport-neutral event.
func inbound(m *tgbotapi.Message) domain.InboundMessage {
	var name string
	if m.From != nil {
		name = m.From.FirstName
		if name == "" {
			name = m.From.UserName
		}
	}
	return domain.InboundMessage{
		ID:          strconv.Itoa(m.MessageID),
		Identity:    domain.Identity(strconv.FormatInt(m.Chat.ID, 10)),
		DisplayName: name,
		Text:        m.Text,
		Timestamp:   time.Unix(int64(m.Date), 0),
	}
}
