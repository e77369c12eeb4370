package notify

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/just-nibble/git-digest/pkg/errcodes"
	tele "gopkg.in/telebot.v4"
)

const telegramTextLimit = 4096

type telegramBot interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramSender messages the chat given by config key "chat_id".
type TelegramSender struct {
	bot telegramBot
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: token, Offline: true})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: b}, nil
}

func (s *TelegramSender) Send(ctx context.Context, content string, recipients []string, config map[string]interface{}) error {
	chatID, err := configInt64(config, "chat_id")
	if err != nil || chatID == 0 {
		return errcodes.Validation("telegram channel requires a numeric chat_id")
	}

	chat := &tele.Chat{ID: chatID}
	for _, chunk := range splitText(content, telegramTextLimit) {
		if err := ctx.Err(); err != nil {
			return errcodes.Upstream(err, "telegram send cancelled")
		}
		if _, err := s.bot.Send(chat, chunk, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
			return errcodes.Upstream(err, "failed to send telegram message to %d", chatID)
		}
	}
	return nil
}

// splitText cuts text into chunks of at most limit bytes, preferring line breaks.
func splitText(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	chunks := make([]string, 0, len(text)/limit+1)
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
