package router

import (
	"github.com/m3rciful/anketabot/core/telegram"
	"github.com/m3rciful/anketabot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// SetupCallbackRouter dispatches callback queries to registered handlers.
// Handlers are responsible for answering the query themselves: the relay
// handlers reply with success or failure text, so no blanket Respond here.
func SetupCallbackRouter(b *tele.Bot, reg *telegram.Registry, mw ...tele.MiddlewareFunc) {
	b.Handle(tele.OnCallback, func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}

		unique := callbacks.CallbackKey(c)
		if h, ok := reg.GetCallback(unique); ok {
			return handleWithSummary(c, "callback", unique, h)
		}

		if notFound := reg.CallbackNotFound(); notFound != nil {
			return handleWithSummary(c, "callback", "not_found", notFound)
		}
		return c.Respond(&tele.CallbackResponse{})
	}, mw...)
}
