package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchemaShape(t *testing.T) {
	s := DefaultSchema()

	require.Equal(t, 10, s.Len())

	wantKeys := []string{
		"full_name", "birth_date", "phone", "address", "education",
		"university", "experience", "languages", "certificates", "photo",
	}
	for i, key := range wantKeys {
		f, ok := s.Field(i)
		require.True(t, ok, "field %d", i)
		assert.Equal(t, key, f.Key)
	}

	assert.True(t, s.IsAttachment(s.Len()-1))
	assert.False(t, s.IsAttachment(0))

	_, ok := s.Field(s.Len())
	assert.False(t, ok, "no field past the end")
}

func TestNewSchemaRejectsInvalidShapes(t *testing.T) {
	valid := func(string) bool { return true }

	tests := []struct {
		name   string
		fields []FieldDefinition
	}{
		{"empty", nil},
		{
			"text field without validator",
			[]FieldDefinition{
				{Key: "a", Kind: KindText},
				{Key: "b", Kind: KindAttachment},
			},
		},
		{
			"duplicate keys",
			[]FieldDefinition{
				{Key: "a", Kind: KindText, Validate: valid},
				{Key: "a", Kind: KindAttachment},
			},
		},
		{
			"final field not attachment",
			[]FieldDefinition{
				{Key: "a", Kind: KindText, Validate: valid},
			},
		},
		{
			"attachment with validator",
			[]FieldDefinition{
				{Key: "a", Kind: KindAttachment, Validate: valid},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.fields)
			assert.Error(t, err)
		})
	}
}

func TestBirthDateValidator(t *testing.T) {
	s := DefaultSchema()
	f, ok := s.Field(1)
	require.True(t, ok)
	require.Equal(t, "birth_date", f.Key)

	assert.True(t, f.Validate("2004-05-17"))
	assert.True(t, f.Validate("17.05.2004"))
	assert.True(t, f.Validate("  2004-05-17  "), "surrounding whitespace is trimmed")

	assert.False(t, f.Validate("2004/05/17"))
	assert.False(t, f.Validate("17-05-2004"))
	assert.False(t, f.Validate("tomorrow"))
	assert.False(t, f.Validate(""))
}

func TestPhoneValidator(t *testing.T) {
	s := DefaultSchema()
	f, ok := s.Field(2)
	require.True(t, ok)
	require.Equal(t, "phone", f.Key)

	assert.True(t, f.Validate("+998901234567"))
	assert.True(t, f.Validate("998901234567"))
	assert.True(t, f.Validate("+1 (415) 555-0100"))

	assert.False(t, f.Validate("123"))
	assert.False(t, f.Validate("not a number"))
	assert.False(t, f.Validate("+"))
}

func TestLengthValidators(t *testing.T) {
	s := DefaultSchema()

	fullName, _ := s.Field(0)
	assert.False(t, fullName.Validate("Bob"))
	assert.False(t, fullName.Validate("    ab    "))
	assert.True(t, fullName.Validate("Bobur Aliyev"))

	address, _ := s.Field(3)
	assert.False(t, address.Validate("x"))
	assert.True(t, address.Validate("Tashkent"))

	experience, _ := s.Field(6)
	assert.False(t, experience.Validate("   "))
	assert.True(t, experience.Validate("-"))
}
