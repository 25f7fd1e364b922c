package form

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/anketabot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Messenger is the outbound capability the engine needs: deliver an
// HTML-formatted message to a chat. Implemented by the transport layer.
type Messenger interface {
	SendHTML(ctx context.Context, chatID int64, text string, markup ...*tele.ReplyMarkup) error
}

// Dispatcher forwards a completed submission to the reviewing party.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub *Submission) error
}

// Archiver records a completed submission locally. Optional; failures must
// not affect the user flow.
type Archiver interface {
	Record(ctx context.Context, sub *Submission) error
}

// Submitter captures who is filling the form, taken from the inbound event.
type Submitter struct {
	ID          int64
	DisplayName string
	Username    string
}

// Submission is the completed form, built once and consumed immediately.
type Submission struct {
	Submitter    Submitter
	ChatID       int64
	Fields       []FieldValue
	AttachmentID string
	SubmittedAt  time.Time
}

// AttachmentVariant is one resolution of an inbound photo.
type AttachmentVariant struct {
	FileID string
	Width  int
	Height int
}

// bestVariant picks the highest-resolution photo variant.
func bestVariant(variants []AttachmentVariant) (string, bool) {
	best := ""
	bestArea := -1
	for _, v := range variants {
		if v.FileID == "" {
			continue
		}
		area := v.Width * v.Height
		if area > bestArea {
			best, bestArea = v.FileID, area
		}
	}
	return best, best != ""
}

const (
	introText          = "✅ <b>Form started.</b>\nAnswer the questions one by one.\nTo cancel: /cancel"
	ackText            = "✅ <b>Your application has been received!</b>\nThank you. We will contact you soon. 📞"
	deliveryFailedText = "❗️Your application was recorded but could not be delivered to the reviewers.\nPlease contact us directly."
	wantPhotoText      = "❗️Please send the image as a <b>photo</b>."
	wantTextText       = "❗️Please answer this question with text."
)

// EngineOptions carries the optional engine collaborators.
type EngineOptions struct {
	Archive Archiver
	// AfterComplete runs after a session is torn down on completion,
	// e.g. to re-show the main menu.
	AfterComplete func(ctx context.Context, chatID int64)
}

// Engine drives the per-user form conversation: question sequencing,
// validation, completion, and the handoff to the reviewer dispatch.
type Engine struct {
	schema   *Schema
	store    *Store
	out      Messenger
	dispatch Dispatcher
	opts     EngineOptions

	locks *keyedLocks
}

// NewEngine wires the engine to its collaborators.
func NewEngine(schema *Schema, store *Store, out Messenger, dispatch Dispatcher, opts EngineOptions) *Engine {
	return &Engine{
		schema:   schema,
		store:    store,
		out:      out,
		dispatch: dispatch,
		opts:     opts,
		locks:    newKeyedLocks(),
	}
}

// InProgress reports whether the user is mid-form.
func (e *Engine) InProgress(chatID int64) bool {
	return e.store.InProgress(chatID)
}

// Start begins a fresh form for the user, discarding any prior progress,
// and emits the intro plus the first prompt.
func (e *Engine) Start(ctx context.Context, chatID int64) error {
	release := e.locks.acquire(chatID)
	defer release()

	e.store.Start(chatID)
	logger.Form.LogAttrs(ctx, slog.LevelInfo, "form.start",
		slog.Int64("chat_id", chatID),
	)
	if err := e.out.SendHTML(ctx, chatID, introText); err != nil {
		return err
	}
	return e.prompt(ctx, chatID, 0)
}

// Cancel tears down the user's session if any. No-op without one.
func (e *Engine) Cancel(ctx context.Context, chatID int64) {
	release := e.locks.acquire(chatID)
	defer release()

	if e.store.InProgress(chatID) {
		logger.Form.LogAttrs(ctx, slog.LevelInfo, "form.cancel",
			slog.Int64("chat_id", chatID),
		)
	}
	e.store.End(chatID)
}

// HandleText processes a text answer for the current field. Inert when the
// user has no session.
func (e *Engine) HandleText(ctx context.Context, chatID int64, from Submitter, text string) error {
	release := e.locks.acquire(chatID)
	defer release()

	session, ok := e.store.Get(chatID)
	if !ok {
		return nil
	}

	field, ok := e.schema.Field(session.Cursor)
	if !ok {
		// Cursor past the schema: the attachment invariant should make this
		// unreachable, but a stray session must still complete, not wedge.
		return e.complete(ctx, chatID, from)
	}

	if field.Kind == KindAttachment {
		return e.out.SendHTML(ctx, chatID, wantPhotoText)
	}

	if !field.Validate(text) {
		logger.Form.LogAttrs(ctx, slog.LevelDebug, "form.field.rejected",
			slog.Int64("chat_id", chatID),
			slog.String("field", field.Key),
			slog.Int("cursor", session.Cursor),
		)
		if err := e.out.SendHTML(ctx, chatID, field.ErrorText); err != nil {
			return err
		}
		return e.prompt(ctx, chatID, session.Cursor)
	}

	value := strings.TrimSpace(text)
	if err := e.store.Advance(chatID, field.Key, value); err != nil {
		return err
	}

	next := session.Cursor + 1
	if next >= e.schema.Len() {
		return e.complete(ctx, chatID, from)
	}
	return e.prompt(ctx, chatID, next)
}

// HandlePhoto processes an inbound photo. Inert without a session; a photo
// while a text field is current gets a kind-mismatch reply.
func (e *Engine) HandlePhoto(ctx context.Context, chatID int64, from Submitter, variants []AttachmentVariant) error {
	release := e.locks.acquire(chatID)
	defer release()

	session, ok := e.store.Get(chatID)
	if !ok {
		return nil
	}

	field, ok := e.schema.Field(session.Cursor)
	if !ok {
		return e.complete(ctx, chatID, from)
	}

	if field.Kind != KindAttachment {
		return e.out.SendHTML(ctx, chatID, wantTextText)
	}

	ref, ok := bestVariant(variants)
	if !ok {
		return e.out.SendHTML(ctx, chatID, wantPhotoText)
	}

	if err := e.store.SetAttachment(chatID, ref); err != nil {
		return err
	}
	return e.complete(ctx, chatID, from)
}

func (e *Engine) prompt(ctx context.Context, chatID int64, cursor int) error {
	field, ok := e.schema.Field(cursor)
	if !ok {
		return nil
	}
	return e.out.SendHTML(ctx, chatID, field.Prompt)
}

// complete builds the submission, acknowledges the user, records and
// dispatches it, and tears the session down. The session ends regardless of
// delivery outcome; a dispatch failure is reported to the user instead of
// re-prompting.
func (e *Engine) complete(ctx context.Context, chatID int64, from Submitter) error {
	session, ok := e.store.Get(chatID)
	if !ok {
		return nil
	}

	sub := &Submission{
		Submitter:    from,
		ChatID:       chatID,
		Fields:       session.Values,
		AttachmentID: session.AttachmentID,
		SubmittedAt:  time.Now().UTC(),
	}

	if err := e.out.SendHTML(ctx, chatID, ackText); err != nil {
		logger.Form.LogAttrs(ctx, slog.LevelWarn, "form.ack.failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
	}

	if e.opts.Archive != nil {
		if err := e.opts.Archive.Record(ctx, sub); err != nil {
			logger.Archive.LogAttrs(ctx, slog.LevelError, "archive.record.failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", err.Error()),
			)
		}
	}

	if err := e.dispatch.Dispatch(ctx, sub); err != nil {
		logger.Form.LogAttrs(ctx, slog.LevelError, "form.dispatch.failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		if sendErr := e.out.SendHTML(ctx, chatID, deliveryFailedText); sendErr != nil {
			logger.Form.LogAttrs(ctx, slog.LevelWarn, "form.dispatch.notice.failed",
				slog.Int64("chat_id", chatID),
				slog.String("err", sendErr.Error()),
			)
		}
	} else {
		logger.Form.LogAttrs(ctx, slog.LevelInfo, "form.completed",
			slog.Int64("chat_id", chatID),
			slog.Int("fields", len(sub.Fields)),
		)
	}

	e.store.End(chatID)
	if e.opts.AfterComplete != nil {
		e.opts.AfterComplete(ctx, chatID)
	}
	return nil
}
