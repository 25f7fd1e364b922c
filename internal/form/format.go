package form

import (
	"fmt"
	"strings"

	"github.com/m3rciful/anketabot/core/telegram/format"
)

const (
	renderHeader    = "📥 <b>New application</b>"
	renderSeparator = "━━━━━━━━━━━━━━━━━━"

	fallbackName     = "Applicant"
	fallbackUsername = "-"
)

// Render produces the reviewer-facing message for a completed submission.
// Pure: field values are escaped for HTML, sections follow schema order with
// separators between groups, and the footer carries a deep link back to the
// submitter.
func Render(schema *Schema, sub *Submission) string {
	values := make(map[string]string, len(sub.Fields))
	for _, fv := range sub.Fields {
		values[fv.Key] = fv.Value
	}

	var b strings.Builder
	b.WriteString(renderHeader + "\n")
	b.WriteString(renderSeparator + "\n")

	group := -1
	for _, f := range schema.Fields() {
		if f.Kind != KindText {
			continue
		}
		if group >= 0 && f.Group != group {
			b.WriteString(renderSeparator + "\n")
		}
		group = f.Group

		value := values[f.Key]
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", f.Label, format.EscapeHTML(value))
	}

	b.WriteString(renderSeparator + "\n")

	name := strings.TrimSpace(sub.Submitter.DisplayName)
	if name == "" {
		name = fallbackName
	}
	if sub.Submitter.ID != 0 {
		fmt.Fprintf(&b, "👤 <b>Telegram:</b> <a href=\"tg://user?id=%d\">%s</a>\n",
			sub.Submitter.ID, format.EscapeHTML(name))
	} else {
		fmt.Fprintf(&b, "👤 <b>Telegram:</b> %s\n", format.EscapeHTML(name))
	}

	username := strings.TrimSpace(sub.Submitter.Username)
	if username == "" {
		username = fallbackUsername
	} else if !strings.HasPrefix(username, "@") {
		username = "@" + username
	}
	fmt.Fprintf(&b, "🔖 <b>Username:</b> %s", format.EscapeHTML(username))

	return b.String()
}
