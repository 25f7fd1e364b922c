package app

import (
	"fmt"
	"strings"

	"github.com/m3rciful/anketabot/core/telegram"
	"github.com/m3rciful/anketabot/core/telegram/commands"
	"github.com/m3rciful/anketabot/core/telegram/helpers"
	"github.com/m3rciful/anketabot/core/telegram/keyboard"
	"github.com/m3rciful/anketabot/core/telegram/middleware"
	"github.com/m3rciful/anketabot/core/telegram/router"
	"github.com/m3rciful/anketabot/internal/form"

	tele "gopkg.in/telebot.v4"
)

const (
	triggerFill = "📝 Fill out the form"
	triggerInfo = "ℹ️ Info"

	menuText      = "👇 Menu:"
	infoText      = "This bot collects job application forms.\nPress <b>📝 Fill out the form</b> to begin."
	cancelledText = "❌ Cancelled."
)

func mainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{triggerFill},
		[]string{triggerInfo},
	)
}

func submitterFrom(c tele.Context) form.Submitter {
	u := c.Sender()
	if u == nil {
		return form.Submitter{}
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{u.FirstName, u.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return form.Submitter{
		ID:          u.ID,
		DisplayName: strings.Join(parts, " "),
		Username:    u.Username,
	}
}

func registerCommands(reg *telegram.Registry, engine *form.Engine) {
	reg.RegisterCommand("/start", commands.Command{
		Description: "Show the main menu",
		Handler: func(c tele.Context) error {
			return helpers.SendHTML(c, menuText, mainMenu())
		},
	})

	reg.RegisterCommand("/cancel", commands.Command{
		Description: "Cancel the current form",
		Handler: func(c tele.Context) error {
			engine.Cancel(helpers.BuildContext(c), c.Chat().ID)
			if err := helpers.SendText(c, cancelledText); err != nil {
				return err
			}
			return helpers.SendHTML(c, menuText, mainMenu())
		},
	})

	reg.RegisterCommand("/chatid", commands.Command{
		Description: "Show this chat's ID",
		AdminOnly:   true,
		Hidden:      true,
		Handler: func(c tele.Context) error {
			return helpers.SendText(c, fmt.Sprintf("Chat ID: %d", c.Chat().ID))
		},
	})
}

func menuTriggers(engine *form.Engine) map[string]tele.HandlerFunc {
	return map[string]tele.HandlerFunc{
		// Starting the form always works, including mid-form: a fresh
		// session silently replaces the old one.
		triggerFill: func(c tele.Context) error {
			return engine.Start(helpers.BuildContext(c), c.Chat().ID)
		},
		triggerInfo: func(c tele.Context) error {
			return helpers.SendHTML(c, infoText)
		},
	}
}

// wireRoutes returns the bot setup hook: command, text, and callback
// routing over the shared registry.
func wireRoutes(reg *telegram.Registry, engine *form.Engine, admin middleware.AdminOptions) func(*tele.Bot, ...tele.MiddlewareFunc) {
	return func(b *tele.Bot, mws ...tele.MiddlewareFunc) {
		router.SetupCommandRouter(b, reg, admin, mws...)
		router.SetupTextRouter(b, reg, router.TextOptions{
			Triggers:     menuTriggers(engine),
			Conversation: conversation(engine),
		}, mws...)
		router.SetupCallbackRouter(b, reg, mws...)
	}
}

func conversation(engine *form.Engine) *router.Conversation {
	return &router.Conversation{
		InProgress: func(c tele.Context) bool {
			return c.Chat() != nil && engine.InProgress(c.Chat().ID)
		},
		OnText: func(c tele.Context) error {
			return engine.HandleText(helpers.BuildContext(c), c.Chat().ID, submitterFrom(c), c.Text())
		},
		OnPhoto: func(c tele.Context) error {
			var variants []form.AttachmentVariant
			if msg := c.Message(); msg != nil && msg.Photo != nil {
				variants = append(variants, form.AttachmentVariant{
					FileID: msg.Photo.FileID,
					Width:  msg.Photo.Width,
					Height: msg.Photo.Height,
				})
			}
			return engine.HandlePhoto(helpers.BuildContext(c), c.Chat().ID, submitterFrom(c), variants)
		},
	}
}
