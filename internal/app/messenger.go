package app

import (
	"context"
	"errors"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

var errBotNotStarted = errors.New("app: bot not started yet")

// botMessenger adapts the live telebot instance to the form and review
// outbound ports. The bot is bound once polling starts; sends before that
// fail fast instead of panicking.
type botMessenger struct {
	bot atomic.Pointer[tele.Bot]
}

func (m *botMessenger) bind(b *tele.Bot) {
	m.bot.Store(b)
}

func (m *botMessenger) SendHTML(_ context.Context, chatID int64, text string, markup ...*tele.ReplyMarkup) error {
	b := m.bot.Load()
	if b == nil {
		return errBotNotStarted
	}
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	_, err := b.Send(tele.ChatID(chatID), text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
	return err
}

func (m *botMessenger) SendPhotoHTML(_ context.Context, chatID int64, fileID, caption string) error {
	b := m.bot.Load()
	if b == nil {
		return errBotNotStarted
	}
	photo := &tele.Photo{File: tele.File{FileID: fileID}, Caption: caption}
	_, err := b.Send(tele.ChatID(chatID), photo, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}
