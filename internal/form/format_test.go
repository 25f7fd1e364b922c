package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSubmission() *Submission {
	fields := make([]FieldValue, 0, 9)
	for i, v := range validAnswers {
		f, _ := DefaultSchema().Field(i)
		fields = append(fields, FieldValue{Key: f.Key, Value: v})
	}
	return &Submission{
		Submitter:    submitter,
		ChatID:       submitter.ID,
		Fields:       fields,
		AttachmentID: "photo-1",
	}
}

func TestRenderContainsAllValuesInOrder(t *testing.T) {
	out := Render(DefaultSchema(), sampleSubmission())

	last := -1
	for _, v := range validAnswers {
		idx := strings.Index(out, v)
		require.GreaterOrEqual(t, idx, 0, "value %q missing", v)
		assert.Greater(t, idx, last, "value %q out of order", v)
		last = idx
	}
}

func TestRenderEscapesMarkup(t *testing.T) {
	sub := sampleSubmission()
	sub.Fields[0].Value = `<b>bold & "sneaky"</b>`
	sub.Submitter.DisplayName = "<script>x</script>"

	out := Render(DefaultSchema(), sub)

	assert.NotContains(t, out, "<b>bold")
	assert.Contains(t, out, "&lt;b&gt;bold &amp; \"sneaky\"&lt;/b&gt;")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;")
}

func TestRenderSectionSeparators(t *testing.T) {
	out := Render(DefaultSchema(), sampleSubmission())

	// Header separator, two between the three text groups, one before the
	// submitter footer.
	assert.Equal(t, 4, strings.Count(out, renderSeparator))
	assert.True(t, strings.HasPrefix(out, renderHeader))
}

func TestRenderDeepLink(t *testing.T) {
	out := Render(DefaultSchema(), sampleSubmission())

	assert.Contains(t, out, `<a href="tg://user?id=4242">Bobur Aliyev</a>`)
	assert.Contains(t, out, "@bobur")
}

func TestRenderFallbacks(t *testing.T) {
	sub := sampleSubmission()
	sub.Submitter = Submitter{}

	out := Render(DefaultSchema(), sub)

	assert.Contains(t, out, fallbackName)
	assert.Contains(t, out, "🔖 <b>Username:</b> -")
	assert.NotContains(t, out, "tg://user", "no deep link without a user ID")
}

func TestRenderMissingValuePlaceholder(t *testing.T) {
	sub := sampleSubmission()
	sub.Fields = sub.Fields[:3]

	out := Render(DefaultSchema(), sub)

	assert.Contains(t, out, "<b>📍 Address:</b> -")
}
