package app

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/anketabot/core/config"
	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/core/telegram"
	"github.com/m3rciful/anketabot/core/telegram/middleware"
	"github.com/m3rciful/anketabot/internal/form"

	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "kv"},
	})
	os.Exit(m.Run())
}

type sinkMessenger struct{}

func (sinkMessenger) SendHTML(context.Context, int64, string, ...*tele.ReplyMarkup) error {
	return nil
}

type sinkDispatcher struct{}

func (sinkDispatcher) Dispatch(context.Context, *form.Submission) error { return nil }

// chatCtx implements just the tele.Context surface the route predicates use.
type chatCtx struct {
	tele.Context
	chat   *tele.Chat
	sender *tele.User
}

func (c *chatCtx) Chat() *tele.Chat   { return c.chat }
func (c *chatCtx) Sender() *tele.User { return c.sender }

func testEngine() *form.Engine {
	schema := form.DefaultSchema()
	return form.NewEngine(schema, form.NewStore(schema), sinkMessenger{}, sinkDispatcher{}, form.EngineOptions{})
}

func TestRegisterCommands(t *testing.T) {
	reg := telegram.NewRegistry()
	registerCommands(reg, testEngine())

	for _, name := range []string{"/start", "/cancel"} {
		key, cmd, ok := reg.LookupCommand(name)
		require.True(t, ok, name)
		assert.Equal(t, name, key)
		assert.False(t, cmd.AdminOnly)
		assert.False(t, cmd.Hidden)
	}

	_, chatid, ok := reg.LookupCommand("/chatid")
	require.True(t, ok)
	assert.True(t, chatid.AdminOnly)
	assert.True(t, chatid.Hidden)

	visible := reg.ListCommands(true)
	require.Len(t, visible, 2, "hidden admin command stays out of the menu")
}

func TestMenuTriggers(t *testing.T) {
	triggers := menuTriggers(testEngine())
	assert.Contains(t, triggers, triggerFill)
	assert.Contains(t, triggers, triggerInfo)
	assert.Len(t, triggers, 2)
}

func TestConversationInProgressTracksEngine(t *testing.T) {
	engine := testEngine()
	conv := conversation(engine)

	c := &chatCtx{chat: &tele.Chat{ID: 4242}}
	assert.False(t, conv.InProgress(c))
	assert.False(t, conv.InProgress(&chatCtx{}), "no chat means no session")

	require.NoError(t, engine.Start(context.Background(), 4242))
	assert.True(t, conv.InProgress(c))

	engine.Cancel(context.Background(), 4242)
	assert.False(t, conv.InProgress(c))
}

func TestSubmitterFrom(t *testing.T) {
	c := &chatCtx{sender: &tele.User{ID: 7, FirstName: "Bobur", LastName: "Aliyev", Username: "bobur"}}
	got := submitterFrom(c)
	assert.Equal(t, form.Submitter{ID: 7, DisplayName: "Bobur Aliyev", Username: "bobur"}, got)

	assert.Equal(t, form.Submitter{}, submitterFrom(&chatCtx{}), "anonymous update")
}

func TestWireRoutesSatisfiesSetupHook(t *testing.T) {
	reg := telegram.NewRegistry()
	opts := telegram.RunOptions{
		Setup: wireRoutes(reg, testEngine(), middleware.AdminOptions{AdminID: 1}),
	}
	require.NotNil(t, opts.Setup)
}
