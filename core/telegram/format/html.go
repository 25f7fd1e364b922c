package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML neutralizes characters that Telegram's HTML parse mode treats as markup,
// so untrusted input renders as literal text.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
