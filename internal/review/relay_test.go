package review

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/anketabot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// fakeCtx implements just the tele.Context surface the relay touches.
// Anything else panics via the embedded nil interface, which is what we
// want in a test.
type fakeCtx struct {
	tele.Context
	cb        *tele.Callback
	kv        map[string]any
	responses []*tele.CallbackResponse
	edits     []string
	editErr   error
}

func newFakeCtx(data string) *fakeCtx {
	return &fakeCtx{
		cb: &tele.Callback{
			ID:     "cb-1",
			Data:   data,
			Sender: &tele.User{ID: 99, FirstName: "Rev"},
		},
		kv: make(map[string]any),
	}
}

func (f *fakeCtx) Callback() *tele.Callback { return f.cb }

func (f *fakeCtx) Update() tele.Update { return tele.Update{ID: 7, Callback: f.cb} }

func (f *fakeCtx) Sender() *tele.User { return f.cb.Sender }

func (f *fakeCtx) Chat() *tele.Chat { return &tele.Chat{ID: reviewChat} }

func (f *fakeCtx) Get(key string) any { return f.kv[key] }

func (f *fakeCtx) Set(key string, val any) { f.kv[key] = val }

func (f *fakeCtx) EditOrSend(what any, _ ...any) error {
	if f.editErr != nil {
		return f.editErr
	}
	if text, ok := what.(string); ok {
		f.edits = append(f.edits, text)
	}
	return nil
}

func (f *fakeCtx) Respond(resp ...*tele.CallbackResponse) error {
	r := &tele.CallbackResponse{}
	if len(resp) > 0 {
		r = resp[0]
	}
	f.responses = append(f.responses, r)
	return nil
}

func registeredRelay(t *testing.T, out Notifier) *telegram.Registry {
	t.Helper()
	reg := telegram.NewRegistry()
	require.NoError(t, NewRelay(out).Register(reg))
	return reg
}

func TestRelayDecisionTexts(t *testing.T) {
	tests := []struct {
		unique     string
		want       string
		wantMarker string
	}{
		{CallbackAccept, acceptedText, "✅ <b>Accepted</b>"},
		{CallbackReject, rejectedText, "❌ <b>Rejected</b>"},
		{CallbackContact, contactText, "📞 <b>Contact requested</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.unique, func(t *testing.T) {
			out := &fakeNotifier{}
			reg := registeredRelay(t, out)

			h, ok := reg.GetCallback(tt.unique)
			require.True(t, ok)

			c := newFakeCtx("\f" + tt.unique + "|4242")
			require.NoError(t, h(c))

			require.Len(t, out.html, 1, "exactly one notification to the target")
			assert.Equal(t, int64(4242), out.html[0].ChatID)
			assert.Equal(t, tt.want, out.html[0].Text)

			require.Len(t, c.edits, 1, "control message replaced with the decision")
			assert.Equal(t, tt.wantMarker, c.edits[0])

			require.Len(t, c.responses, 1, "callback always answered")
			assert.Equal(t, ackDoneText, c.responses[0].Text)
		})
	}
}

func TestRelayControlEditFailureStillAcks(t *testing.T) {
	out := &fakeNotifier{}
	reg := registeredRelay(t, out)

	h, _ := reg.GetCallback(CallbackReject)
	c := newFakeCtx("\f" + CallbackReject + "|4242")
	c.editErr = errors.New("message to edit not found")
	require.NoError(t, h(c))

	require.Len(t, out.html, 1, "notification still delivered")
	require.Len(t, c.responses, 1)
	assert.Equal(t, ackDoneText, c.responses[0].Text, "edit is best effort")
}

func TestRelayDeliveryFailureAck(t *testing.T) {
	out := &fakeNotifier{htmlErr: errors.New("bot was blocked by the user")}
	reg := registeredRelay(t, out)

	h, _ := reg.GetCallback(CallbackAccept)
	c := newFakeCtx("\f" + CallbackAccept + "|4242")
	require.NoError(t, h(c))

	require.Len(t, c.responses, 1)
	assert.Equal(t, ackUndeliverable, c.responses[0].Text, "failure ack is distinct from success")
	assert.Empty(t, c.edits, "control message kept when the user was not notified")
}

func TestRelayMalformedPayload(t *testing.T) {
	for _, data := range []string{
		"\f" + CallbackAccept,
		"\f" + CallbackAccept + "|",
		"\f" + CallbackAccept + "|not-a-number",
		"\f" + CallbackAccept + "|0",
	} {
		out := &fakeNotifier{}
		reg := registeredRelay(t, out)

		h, _ := reg.GetCallback(CallbackAccept)
		c := newFakeCtx(data)
		require.NoError(t, h(c))

		assert.Empty(t, out.html, "no notification for %q", data)
		require.Len(t, c.responses, 1, "interaction still acknowledged for %q", data)
		assert.Equal(t, ackMalformed, c.responses[0].Text)
	}
}

func TestRelayRegisterRejectsDuplicates(t *testing.T) {
	reg := telegram.NewRegistry()
	relay := NewRelay(&fakeNotifier{})

	require.NoError(t, relay.Register(reg))
	assert.Error(t, relay.Register(reg), "uniques are already taken")
}
