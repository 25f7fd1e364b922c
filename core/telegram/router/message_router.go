package router

import (
	"strings"

	"github.com/m3rciful/anketabot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// Conversation lets a stateful flow claim text and photo updates ahead of
// the fallback. InProgress is consulted per update; when it reports true
// the matching handler receives the update.
type Conversation struct {
	InProgress func(c tele.Context) bool
	OnText     tele.HandlerFunc
	OnPhoto    tele.HandlerFunc
}

// TextOptions configures the plain-message router.
type TextOptions struct {
	// Triggers maps exact message text (e.g. reply-keyboard button labels)
	// to handlers. Checked before the conversation so a menu button works
	// even mid-flow.
	Triggers map[string]tele.HandlerFunc

	Conversation *Conversation
}

// SetupTextRouter wires tele.OnText and tele.OnPhoto dispatch. Routing
// order for text: triggers, then command lookup in the registry, then the
// conversation. Unclaimed messages are ignored.
func SetupTextRouter(b *tele.Bot, reg *telegram.Registry, opts TextOptions, mw ...tele.MiddlewareFunc) {
	b.Handle(tele.OnText, func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())

		if opts.Triggers != nil {
			if fn, ok := opts.Triggers[text]; ok {
				return handleWithSummary(c, "trigger", text, fn)
			}
		}

		if strings.HasPrefix(text, "/") {
			name := text
			if idx := strings.IndexAny(name, " @"); idx >= 0 {
				name = name[:idx]
			}
			if key, cmd, ok := reg.LookupCommand(name); ok {
				return handleWithSummary(c, "command", key, cmd.Handler)
			}
		}

		if conv := opts.Conversation; conv != nil && conv.OnText != nil {
			if conv.InProgress == nil || conv.InProgress(c) {
				return handleWithSummary(c, "conversation", "text", conv.OnText)
			}
		}
		return nil
	}, mw...)

	if conv := opts.Conversation; conv != nil && conv.OnPhoto != nil {
		b.Handle(tele.OnPhoto, func(c tele.Context) error {
			if conv.InProgress == nil || conv.InProgress(c) {
				return handleWithSummary(c, "conversation", "photo", conv.OnPhoto)
			}
			return nil
		}, mw...)
	}
}
