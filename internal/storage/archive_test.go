package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/anketabot/internal/form"
)

func TestRowFromSubmission(t *testing.T) {
	submitted := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	sub := &form.Submission{
		Submitter:    form.Submitter{ID: 4242, DisplayName: "Bobur Aliyev", Username: "bobur"},
		ChatID:       4242,
		AttachmentID: "photo-1",
		SubmittedAt:  submitted,
		Fields: []form.FieldValue{
			{Key: "full_name", Value: "Bobur Aliyev"},
			{Key: "birth_date", Value: "2004-05-17"},
			{Key: "phone", Value: "+998901234567"},
		},
	}

	row, err := rowFromSubmission(sub)
	require.NoError(t, err)

	assert.Equal(t, int64(4242), row.ChatID)
	assert.Equal(t, int64(4242), row.UserID)
	assert.Equal(t, "Bobur Aliyev", row.DisplayName)
	assert.Equal(t, "bobur", row.Username)
	assert.Equal(t, "photo-1", row.PhotoFileID)
	assert.Equal(t, submitted, row.SubmittedAt)

	var entries []fieldEntry
	require.NoError(t, json.Unmarshal(row.Fields, &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "full_name", entries[0].Key, "completion order preserved")
	assert.Equal(t, "phone", entries[2].Key)
	assert.Equal(t, "2004-05-17", entries[1].Value)
}

func TestRowFromSubmissionEmptyFields(t *testing.T) {
	row, err := rowFromSubmission(&form.Submission{ChatID: 1})
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(row.Fields))
}
