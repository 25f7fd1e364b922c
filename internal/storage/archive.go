package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/anketabot/core/logger"
	"github.com/m3rciful/anketabot/internal/form"
)

// Archive persists completed submissions for record keeping. Sessions are
// never stored; only the final submission lands here.
type Archive struct {
	db *sqlx.DB
}

// NewArchive wraps the given database handle.
func NewArchive(db *sqlx.DB) *Archive {
	return &Archive{db: db}
}

type submissionRow struct {
	ChatID      int64     `db:"chat_id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Username    string    `db:"username"`
	Fields      []byte    `db:"fields"`
	PhotoFileID string    `db:"photo_file_id"`
	SubmittedAt time.Time `db:"submitted_at"`
}

type fieldEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func rowFromSubmission(sub *form.Submission) (submissionRow, error) {
	entries := make([]fieldEntry, 0, len(sub.Fields))
	for _, fv := range sub.Fields {
		entries = append(entries, fieldEntry{Key: fv.Key, Value: fv.Value})
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return submissionRow{}, fmt.Errorf("marshal fields: %w", err)
	}

	return submissionRow{
		ChatID:      sub.ChatID,
		UserID:      sub.Submitter.ID,
		DisplayName: sub.Submitter.DisplayName,
		Username:    sub.Submitter.Username,
		Fields:      payload,
		PhotoFileID: sub.AttachmentID,
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

const insertSubmission = `
INSERT INTO submissions (chat_id, user_id, display_name, username, fields, photo_file_id, submitted_at)
VALUES (:chat_id, :user_id, :display_name, :username, :fields, :photo_file_id, :submitted_at)`

// Record inserts the submission. Failures are the caller's to log; the user
// flow must not depend on this succeeding.
func (a *Archive) Record(ctx context.Context, sub *form.Submission) error {
	row, err := rowFromSubmission(sub)
	if err != nil {
		return err
	}

	start := time.Now()
	if _, err := a.db.NamedExecContext(ctx, insertSubmission, row); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	logger.Archive.LogAttrs(ctx, slog.LevelDebug, "archive.recorded",
		slog.Int64("chat_id", sub.ChatID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
