package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"mailpilot/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const telegramMaxMsgLen = 4000

// Telegram implements domain.TextSender over the Bot API. It makes a single
// send attempt per chunk and classifies failures as transient or fatal; the
// retry policy lives in bot.Courier above it.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	parseMode string
	logger    *slog.Logger
}

type TelegramConfig struct {
	Token     string
	ParseMode string
	Logger    *slog.Logger
}

func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	cfg.Logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)
	return &Telegram{
		bot:       bot,
		parseMode: cfg.ParseMode,
		logger:    cfg.Logger,
	}, nil
}

// SendText sends text to chatID, splitting at the Telegram message limit on
// newline boundaries where possible.
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > telegramMaxMsgLen {
			cutAt := strings.LastIndex(chunk[:telegramMaxMsgLen], "\n")
			if cutAt < telegramMaxMsgLen/2 {
				cutAt = telegramMaxMsgLen
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}
		if err := t.sendChunk(chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (t *Telegram) sendChunk(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if t.parseMode != "" {
		msg.ParseMode = t.parseMode
	}

	_, err := t.bot.Send(msg)
	if err == nil {
		return nil
	}

	// Malformed markup is a content problem, not a transport one: resend the
	// same chunk once as plain text before classifying.
	if msg.ParseMode != "" && strings.Contains(err.Error(), "can't parse entities") {
		t.logger.Warn("telegram parse error, resending as plain text", "chat_id", chatID, "err", err)
		plain := tgbotapi.NewMessage(chatID, text)
		_, err2 := t.bot.Send(plain)
		if err2 == nil {
			return nil
		}
		err = err2
	}

	return classifySendError(err)
}

// classifySendError wraps retryable transport failures (timeouts, network
// errors, rate limits, Telegram-side 5xx) in domain.TransientError.
func classifySendError(err error) error {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return domain.Transient(err)
	}

	s := err.Error()
	switch {
	case strings.Contains(s, "Too Many Requests"),
		strings.Contains(s, "429"),
		strings.Contains(s, "Bad Gateway"),
		strings.Contains(s, "Gateway Timeout"),
		strings.Contains(s, "Internal Server Error"),
		strings.Contains(s, "connection reset"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "unexpected EOF"),
		strings.Contains(s, "i/o timeout"):
		return domain.Transient(err)
	}
	return err
}
