package review

import (
	"fmt"
	"log/slog"

	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/core/telegram"
	"github.com/m3rciful/anketabot/core/telegram/callbacks"
	"github.com/m3rciful/anketabot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const (
	acceptedText = "✅ Your application has been reviewed. We will contact you soon!"
	rejectedText = "❌ Your application has been reviewed. Unfortunately it was not approved."
	contactText  = "📞 Your application has been reviewed. Please contact us for the next steps."

	ackDoneText      = "Done ✅"
	ackUndeliverable = "Could not message the user"
	ackMalformed     = "Malformed action"
)

// decision pairs the notification for the submitter with the marker that
// replaces the reviewer control message once the decision is made.
type decision struct {
	notify string
	marker string
}

var decisions = map[string]decision{
	CallbackAccept:  {notify: acceptedText, marker: "✅ <b>Accepted</b>"},
	CallbackReject:  {notify: rejectedText, marker: "❌ <b>Rejected</b>"},
	CallbackContact: {notify: contactText, marker: "📞 <b>Contact requested</b>"},
}

// Relay turns reviewer decision callbacks into notifications for the
// original submitter. Stateless: the target chat ID rides in the payload.
type Relay struct {
	out Notifier
}

// NewRelay builds a relay over the given outbound capability.
func NewRelay(out Notifier) *Relay {
	return &Relay{out: out}
}

// Register wires the decision callbacks into the registry.
func (r *Relay) Register(reg *telegram.Registry) error {
	for unique, d := range decisions {
		if err := reg.RegisterCallback(unique, r.handler(unique, d)); err != nil {
			return fmt.Errorf("register %s: %w", unique, err)
		}
	}
	return nil
}

// handler sends the decision notification and always answers the callback.
// Delivery failure is reported through the callback answer, not retried.
func (r *Relay) handler(action string, d decision) tele.HandlerFunc {
	return func(c tele.Context) error {
		target, err := callbacks.PayloadInt64(c)
		if err != nil || target == 0 {
			return c.Respond(&tele.CallbackResponse{Text: ackMalformed})
		}

		ctx := helpers.BuildContext(c)
		if err := r.out.SendHTML(ctx, target, d.notify); err != nil {
			logger.Review.LogAttrs(ctx, slog.LevelWarn, "review.relay.failed",
				slog.String("action", action),
				slog.Int64("target_chat_id", target),
				slog.String("err", err.Error()),
			)
			return c.Respond(&tele.CallbackResponse{Text: ackUndeliverable})
		}

		logger.Review.LogAttrs(ctx, slog.LevelInfo, "review.relay.sent",
			slog.String("action", action),
			slog.Int64("target_chat_id", target),
		)

		// Best effort: replace the control message with the decision so the
		// buttons disappear and a late double-tap has nothing to press.
		if err := helpers.EditOrSendHTML(c, d.marker); err != nil {
			logger.Review.LogAttrs(ctx, slog.LevelWarn, "review.relay.control_edit_failed",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
		}

		return c.Respond(&tele.CallbackResponse{Text: ackDoneText})
	}
}
