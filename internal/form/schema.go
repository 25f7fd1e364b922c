package form

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldKind distinguishes how the engine accepts input for a field.
type FieldKind int

const (
	// KindText fields accept a text message validated by the field predicate.
	KindText FieldKind = iota
	// KindAttachment fields accept a photo; validation is structural.
	KindAttachment
)

// FieldDefinition describes one question of the application form.
// A text field carries a validator; the attachment field carries none.
type FieldDefinition struct {
	Key       string
	Label     string
	Group     int
	Prompt    string
	Kind      FieldKind
	Validate  func(string) bool
	ErrorText string
}

// Schema is the fixed ordered field list. Immutable after construction.
type Schema struct {
	fields []FieldDefinition
}

// NewSchema validates the field list: unique keys, validators on every text
// field, and a trailing attachment field closing the form.
func NewSchema(fields []FieldDefinition) (*Schema, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("form schema: empty field list")
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if f.Key == "" {
			return nil, fmt.Errorf("form schema: field %d has empty key", i)
		}
		if _, dup := seen[f.Key]; dup {
			return nil, fmt.Errorf("form schema: duplicate key %q", f.Key)
		}
		seen[f.Key] = struct{}{}
		switch f.Kind {
		case KindText:
			if f.Validate == nil {
				return nil, fmt.Errorf("form schema: text field %q has no validator", f.Key)
			}
		case KindAttachment:
			if f.Validate != nil {
				return nil, fmt.Errorf("form schema: attachment field %q must not have a validator", f.Key)
			}
		default:
			return nil, fmt.Errorf("form schema: field %q has unknown kind %d", f.Key, f.Kind)
		}
	}
	if fields[len(fields)-1].Kind != KindAttachment {
		return nil, fmt.Errorf("form schema: final field must be attachment kind")
	}

	copied := make([]FieldDefinition, len(fields))
	copy(copied, fields)
	return &Schema{fields: copied}, nil
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Field returns the definition at index i, or false past the end.
func (s *Schema) Field(i int) (FieldDefinition, bool) {
	if i < 0 || i >= len(s.fields) {
		return FieldDefinition{}, false
	}
	return s.fields[i], true
}

// Fields returns the ordered field list.
func (s *Schema) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(s.fields))
	copy(out, s.fields)
	return out
}

// IsAttachment reports whether the field at index i is attachment kind.
func (s *Schema) IsAttachment(i int) bool {
	f, ok := s.Field(i)
	return ok && f.Kind == KindAttachment
}

var (
	birthDateRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{2}\.\d{2}\.\d{4})$`)
	phoneRe     = regexp.MustCompile(`^\+?\d[\d\s()-]{8,}$`)
)

func minLen(n int) func(string) bool {
	return func(s string) bool { return len([]rune(strings.TrimSpace(s))) >= n }
}

func matches(re *regexp.Regexp) func(string) bool {
	return func(s string) bool { return re.MatchString(strings.TrimSpace(s)) }
}

// DefaultSchema returns the ten-field application form.
func DefaultSchema() *Schema {
	s, err := NewSchema([]FieldDefinition{
		{
			Key:       "full_name",
			Label:     "👤 Full name",
			Group:     0,
			Prompt:    "1) ✅ Enter your <b>full name</b>:",
			Validate:  minLen(5),
			ErrorText: "❗️Please enter your full name (at least 5 characters).",
		},
		{
			Key:       "birth_date",
			Label:     "🎂 Birth date",
			Group:     0,
			Prompt:    "2) 🎂 <b>Birth date</b> (e.g. <code>2004-05-17</code> or <code>17.05.2004</code>):",
			Validate:  matches(birthDateRe),
			ErrorText: "❗️Invalid date format. Example: 2004-05-17 or 17.05.2004",
		},
		{
			Key:       "phone",
			Label:     "📞 Phone",
			Group:     0,
			Prompt:    "3) 📞 <b>Phone number</b> (e.g. <code>+998901234567</code>):",
			Validate:  matches(phoneRe),
			ErrorText: "❗️Invalid phone number. Example: +998901234567",
		},
		{
			Key:       "address",
			Label:     "📍 Address",
			Group:     0,
			Prompt:    "4) 📍 <b>Home address</b> (city/district):",
			Validate:  minLen(2),
			ErrorText: "❗️Please enter your address (at least 2 characters).",
		},
		{
			Key:       "education",
			Label:     "🎓 Education",
			Group:     1,
			Prompt:    "5) 🎓 <b>Education level</b> (e.g. higher / vocational / secondary):",
			Validate:  minLen(2),
			ErrorText: "❗️Please enter your education level.",
		},
		{
			Key:       "university",
			Label:     "🏛 University",
			Group:     1,
			Prompt:    "6) 🏛 <b>Which university did you graduate from?</b>\nIf you are still studying, write <code>Still studying</code>.",
			Validate:  minLen(2),
			ErrorText: "❗️Enter a university name or write <code>Still studying</code>.",
		},
		{
			Key:       "experience",
			Label:     "💼 Work experience",
			Group:     2,
			Prompt:    "7) 💼 <b>Where have you worked before?</b>\n(Company + years)\nE.g. <code>ABC LLC — 2 years</code>\nIf none, write <code>-</code>.",
			Validate:  minLen(1),
			ErrorText: "❗️Enter details or write <code>-</code>.",
		},
		{
			Key:       "languages",
			Label:     "🌍 Languages",
			Group:     2,
			Prompt:    "8) 🌍 <b>Which foreign languages do you speak, and at what level?</b>\nE.g. <code>English — B2, Russian — B1</code>\nIf none, write <code>-</code>.",
			Validate:  minLen(1),
			ErrorText: "❗️Enter details or write <code>-</code>.",
		},
		{
			Key:       "certificates",
			Label:     "🏅 Certificates",
			Group:     2,
			Prompt:    "9) 🏅 <b>Do you hold any national or international certificates?</b>\nE.g. <code>CEFR B2 (2025), IELTS 6.0</code>\nIf none, write <code>-</code>.",
			Validate:  minLen(1),
			ErrorText: "❗️Enter details or write <code>-</code>.",
		},
		{
			Key:    "photo",
			Label:  "🖼 Photo",
			Group:  3,
			Prompt: "10) 🖼 Now send your <b>photo</b> (as a photo, not a file).",
			Kind:   KindAttachment,
		},
	})
	if err != nil {
		panic(err)
	}
	return s
}
