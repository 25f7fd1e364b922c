package form

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoSession signals a mutation against a user with no active session.
	ErrNoSession = errors.New("form: no active session")
	// ErrCursorMismatch signals an advance whose key does not match the field
	// at the current cursor. This is a defect, not a user error.
	ErrCursorMismatch = errors.New("form: field key does not match cursor")
)

// FieldValue is one collected answer. Slice order is completion order.
type FieldValue struct {
	Key   string
	Value string
}

// Session tracks one user's progress through the form.
type Session struct {
	Cursor       int
	Values       []FieldValue
	AttachmentID string
}

func (s *Session) clone() Session {
	out := Session{Cursor: s.Cursor, AttachmentID: s.AttachmentID}
	out.Values = make([]FieldValue, len(s.Values))
	copy(out.Values, s.Values)
	return out
}

// Store owns the user → session mapping. All methods are safe for concurrent
// use across users; per-user event ordering is the engine's concern.
type Store struct {
	schema   *Schema
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewStore creates an empty store bound to the given schema.
func NewStore(schema *Schema) *Store {
	return &Store{
		schema:   schema,
		sessions: make(map[int64]*Session),
	}
}

// Start creates a fresh session at cursor 0, silently replacing any
// existing one for the user.
func (st *Store) Start(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[userID] = &Session{}
}

// Get returns a snapshot of the user's session, or false when absent.
// It never creates a session.
func (st *Store) Get(userID int64) (Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return s.clone(), true
}

// InProgress reports whether the user has an active session.
func (st *Store) InProgress(userID int64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[userID]
	return ok
}

// Advance records a validated value for the field at the current cursor and
// moves the cursor forward. The key must match the cursor's field.
func (st *Store) Advance(userID int64, key, value string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		return fmt.Errorf("advance %q: %w", key, ErrNoSession)
	}
	field, ok := st.schema.Field(s.Cursor)
	if !ok || field.Key != key {
		return fmt.Errorf("advance %q at cursor %d: %w", key, s.Cursor, ErrCursorMismatch)
	}
	s.Values = append(s.Values, FieldValue{Key: key, Value: value})
	s.Cursor++
	return nil
}

// SetAttachment records the attachment reference. The cursor must point at
// the attachment field; the cursor is not advanced and the session is not
// cleared — completion handling belongs to the engine.
func (st *Store) SetAttachment(userID int64, ref string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		return fmt.Errorf("set attachment: %w", ErrNoSession)
	}
	if !st.schema.IsAttachment(s.Cursor) {
		return fmt.Errorf("set attachment at cursor %d: %w", s.Cursor, ErrCursorMismatch)
	}
	s.AttachmentID = ref
	return nil
}

// End removes the session unconditionally. Idempotent.
func (st *Store) End(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
