package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser int64 = 4242

func TestStoreStartReplacesExistingSession(t *testing.T) {
	st := NewStore(DefaultSchema())

	st.Start(testUser)
	require.NoError(t, st.Advance(testUser, "full_name", "Bobur Aliyev"))

	st.Start(testUser)
	s, ok := st.Get(testUser)
	require.True(t, ok)
	assert.Equal(t, 0, s.Cursor)
	assert.Empty(t, s.Values, "prior progress is discarded, not merged")
}

func TestStoreGetNeverCreates(t *testing.T) {
	st := NewStore(DefaultSchema())

	_, ok := st.Get(testUser)
	assert.False(t, ok)
	assert.False(t, st.InProgress(testUser))
}

func TestStoreAdvanceMonotonicCursor(t *testing.T) {
	schema := DefaultSchema()
	st := NewStore(schema)
	st.Start(testUser)

	values := []string{
		"Bobur Aliyev", "2004-05-17", "+998901234567", "Tashkent",
		"Higher", "TUIT", "ABC LLC — 2 years", "English — B2", "-",
	}
	for i, v := range values {
		f, ok := schema.Field(i)
		require.True(t, ok)
		require.NoError(t, st.Advance(testUser, f.Key, v))

		s, ok := st.Get(testUser)
		require.True(t, ok)
		assert.Equal(t, i+1, s.Cursor)
		assert.Len(t, s.Values, i+1)
	}

	s, _ := st.Get(testUser)
	assert.Equal(t, "Bobur Aliyev", s.Values[0].Value, "insertion order preserved")
	assert.Equal(t, "-", s.Values[8].Value)
}

func TestStoreAdvanceRejectsWrongKey(t *testing.T) {
	st := NewStore(DefaultSchema())
	st.Start(testUser)

	err := st.Advance(testUser, "phone", "+998901234567")
	require.ErrorIs(t, err, ErrCursorMismatch)

	s, _ := st.Get(testUser)
	assert.Equal(t, 0, s.Cursor, "failed advance leaves the session untouched")
	assert.Empty(t, s.Values)
}

func TestStoreAdvanceWithoutSession(t *testing.T) {
	st := NewStore(DefaultSchema())
	assert.ErrorIs(t, st.Advance(testUser, "full_name", "x"), ErrNoSession)
}

func TestStoreSetAttachmentRequiresAttachmentCursor(t *testing.T) {
	schema := DefaultSchema()
	st := NewStore(schema)
	st.Start(testUser)

	err := st.SetAttachment(testUser, "file-1")
	require.ErrorIs(t, err, ErrCursorMismatch, "cursor still on a text field")

	for i := 0; i < schema.Len()-1; i++ {
		f, _ := schema.Field(i)
		require.NoError(t, st.Advance(testUser, f.Key, "value ok"))
	}

	require.NoError(t, st.SetAttachment(testUser, "file-1"))
	s, _ := st.Get(testUser)
	assert.Equal(t, "file-1", s.AttachmentID)
	assert.Equal(t, schema.Len()-1, s.Cursor, "SetAttachment does not advance the cursor")
	assert.True(t, st.InProgress(testUser), "SetAttachment does not clear the session")
}

func TestStoreSetAttachmentWithoutSession(t *testing.T) {
	st := NewStore(DefaultSchema())
	assert.ErrorIs(t, st.SetAttachment(testUser, "file-1"), ErrNoSession)
}

func TestStoreEndIsIdempotent(t *testing.T) {
	st := NewStore(DefaultSchema())
	st.Start(testUser)

	st.End(testUser)
	assert.False(t, st.InProgress(testUser))

	st.End(testUser)
	assert.False(t, st.InProgress(testUser))
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	st := NewStore(DefaultSchema())
	st.Start(testUser)
	require.NoError(t, st.Advance(testUser, "full_name", "Bobur Aliyev"))

	s, _ := st.Get(testUser)
	s.Values[0].Value = "mutated"
	s.Cursor = 99

	fresh, _ := st.Get(testUser)
	assert.Equal(t, "Bobur Aliyev", fresh.Values[0].Value)
	assert.Equal(t, 1, fresh.Cursor)
}
