package review

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/core/telegram/keyboard"
	"github.com/m3rciful/anketabot/internal/form"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques for the reviewer decision buttons. The payload is the
// target chat ID in decimal, which keeps the relay stateless.
const (
	CallbackAccept  = "frm_accept"
	CallbackReject  = "frm_reject"
	CallbackContact = "frm_contact"
)

const controlText = "👇 <b>Reviewer action:</b>"

// Notifier is the outbound capability the review side needs.
type Notifier interface {
	SendHTML(ctx context.Context, chatID int64, text string, markup ...*tele.ReplyMarkup) error
	SendPhotoHTML(ctx context.Context, chatID int64, fileID, caption string) error
}

// Dispatcher delivers completed submissions to the reviewer chat.
type Dispatcher struct {
	out        Notifier
	schema     *form.Schema
	reviewChat int64
}

// NewDispatcher binds the dispatcher to the reviewer chat.
func NewDispatcher(out Notifier, schema *form.Schema, reviewChat int64) *Dispatcher {
	return &Dispatcher{out: out, schema: schema, reviewChat: reviewChat}
}

// Dispatch sends the submission (photo with the rendered summary as caption,
// or the summary alone) followed by a control message with the decision
// buttons. No retry: a failure propagates to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, sub *form.Submission) error {
	text := form.Render(d.schema, sub)

	var err error
	if sub.AttachmentID != "" {
		err = d.out.SendPhotoHTML(ctx, d.reviewChat, sub.AttachmentID, text)
	} else {
		err = d.out.SendHTML(ctx, d.reviewChat, text)
	}
	if err != nil {
		return fmt.Errorf("dispatch submission: %w", err)
	}

	target := strconv.FormatInt(sub.ChatID, 10)
	controls := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "✅ Accept", Unique: CallbackAccept, Data: target},
			{Text: "❌ Reject", Unique: CallbackReject, Data: target},
		},
		[]keyboard.InlineBtn{
			{Text: "📞 Request contact", Unique: CallbackContact, Data: target},
		},
	)
	if err := d.out.SendHTML(ctx, d.reviewChat, controlText, controls); err != nil {
		return fmt.Errorf("dispatch controls: %w", err)
	}

	logger.Review.LogAttrs(ctx, slog.LevelInfo, "review.dispatched",
		slog.Int64("target_chat_id", sub.ChatID),
		slog.Bool("with_photo", sub.AttachmentID != ""),
	)
	return nil
}
