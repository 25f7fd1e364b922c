package router

import (
	"github.com/m3rciful/anketabot/core/telegram"
	"github.com/m3rciful/anketabot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// SetupCommandRouter registers every command from the registry as a telebot
// endpoint. Admin-only commands are wrapped with the access check; aliases
// get the same handler as their canonical command.
func SetupCommandRouter(b *tele.Bot, reg *telegram.Registry, admin middleware.AdminOptions, mw ...tele.MiddlewareFunc) {
	for name, cmd := range reg.Commands() {
		name, fn := name, cmd.Handler
		handler := func(c tele.Context) error {
			return handleWithSummary(c, "command", name, fn)
		}

		chain := mw
		if cmd.AdminOnly {
			chain = append([]tele.MiddlewareFunc{middleware.AdminOnlyMiddleware(admin)}, mw...)
		}

		b.Handle(name, handler, chain...)
		for _, alias := range cmd.Aliases {
			if alias == "" {
				continue
			}
			if alias[0] != '/' {
				alias = "/" + alias
			}
			b.Handle(alias, handler, chain...)
		}
	}
}
