package review

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/anketabot/core/config"
	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/internal/form"

	tele "gopkg.in/telebot.v4"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(&config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "kv"},
	})
	os.Exit(m.Run())
}

const reviewChat int64 = -100500

type htmlCall struct {
	ChatID int64
	Text   string
	Markup *tele.ReplyMarkup
}

type photoCall struct {
	ChatID  int64
	FileID  string
	Caption string
}

type fakeNotifier struct {
	html     []htmlCall
	photos   []photoCall
	htmlErr  error
	photoErr error
}

func (f *fakeNotifier) SendHTML(_ context.Context, chatID int64, text string, markup ...*tele.ReplyMarkup) error {
	if f.htmlErr != nil {
		return f.htmlErr
	}
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	f.html = append(f.html, htmlCall{ChatID: chatID, Text: text, Markup: rm})
	return nil
}

func (f *fakeNotifier) SendPhotoHTML(_ context.Context, chatID int64, fileID, caption string) error {
	if f.photoErr != nil {
		return f.photoErr
	}
	f.photos = append(f.photos, photoCall{ChatID: chatID, FileID: fileID, Caption: caption})
	return nil
}

func sampleSubmission(attachment string) *form.Submission {
	schema := form.DefaultSchema()
	fields := make([]form.FieldValue, 0, 9)
	values := []string{
		"Bobur Aliyev", "2004-05-17", "+998901234567", "Tashkent",
		"Higher", "TUIT", "ABC LLC — 2 years", "English — B2", "-",
	}
	for i, v := range values {
		f, _ := schema.Field(i)
		fields = append(fields, form.FieldValue{Key: f.Key, Value: v})
	}
	return &form.Submission{
		Submitter:    form.Submitter{ID: 4242, DisplayName: "Bobur Aliyev", Username: "bobur"},
		ChatID:       4242,
		Fields:       fields,
		AttachmentID: attachment,
	}
}

func TestDispatchWithPhoto(t *testing.T) {
	out := &fakeNotifier{}
	d := NewDispatcher(out, form.DefaultSchema(), reviewChat)

	require.NoError(t, d.Dispatch(context.Background(), sampleSubmission("photo-1")))

	require.Len(t, out.photos, 1)
	assert.Equal(t, reviewChat, out.photos[0].ChatID)
	assert.Equal(t, "photo-1", out.photos[0].FileID)
	assert.Contains(t, out.photos[0].Caption, "Bobur Aliyev")
	assert.Contains(t, out.photos[0].Caption, "+998901234567")

	require.Len(t, out.html, 1, "control message follows the submission")
	control := out.html[0]
	assert.Equal(t, reviewChat, control.ChatID)
	assert.Equal(t, controlText, control.Text)

	require.NotNil(t, control.Markup)
	rows := control.Markup.InlineKeyboard
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 2)
	require.Len(t, rows[1], 1)
	assert.Equal(t, CallbackAccept, rows[0][0].Unique)
	assert.Equal(t, CallbackReject, rows[0][1].Unique)
	assert.Equal(t, CallbackContact, rows[1][0].Unique)
	for _, row := range rows {
		for _, btn := range row {
			assert.Equal(t, "4242", btn.Data, "every button carries the target chat ID")
		}
	}
}

func TestDispatchWithoutPhoto(t *testing.T) {
	out := &fakeNotifier{}
	d := NewDispatcher(out, form.DefaultSchema(), reviewChat)

	require.NoError(t, d.Dispatch(context.Background(), sampleSubmission("")))

	assert.Empty(t, out.photos)
	require.Len(t, out.html, 2, "summary text plus control message")
	assert.True(t, strings.Contains(out.html[0].Text, "Bobur Aliyev"))
	assert.Equal(t, controlText, out.html[1].Text)
}

func TestDispatchPhotoFailureStopsEarly(t *testing.T) {
	out := &fakeNotifier{photoErr: errors.New("chat not found")}
	d := NewDispatcher(out, form.DefaultSchema(), reviewChat)

	err := d.Dispatch(context.Background(), sampleSubmission("photo-1"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "dispatch submission")
	assert.Empty(t, out.html, "no control message after a failed submission send")
}

func TestDispatchControlFailurePropagates(t *testing.T) {
	out := &fakeNotifier{htmlErr: errors.New("blocked")}
	d := NewDispatcher(out, form.DefaultSchema(), reviewChat)

	err := d.Dispatch(context.Background(), sampleSubmission("photo-1"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "dispatch controls")
	require.Len(t, out.photos, 1, "submission itself was delivered")
}
