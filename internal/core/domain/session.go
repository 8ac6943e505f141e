package domain

import (
	"errors"
	"fmt"
	"time"
)

// SessionState is a state of the presentation shell.
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateLoading SessionState = "loading"
	StateSuccess SessionState = "success"
	StateError   SessionState = "error"
)

// ErrStaleResult is returned when a run finishes after a newer submission.
var ErrStaleResult = errors.New("result superseded by a newer submission")

// SessionError is the error banner content of a failed run.
type SessionError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Session is one browser's view of the shell.
//
//	idle ──Submit──▶ loading ──Succeed──▶ success
//	                    │                    │
//	                    └───Fail──▶ error ◀──┘ (via Submit → loading)
//
// Generation increases with every Submit; Succeed and Fail only apply to the
// current generation so a late result never overwrites a newer one.
type Session struct {
	ID         string        `json:"id"`
	State      SessionState  `json:"state"`
	Address    string        `json:"address,omitempty"`
	Generation uint64        `json:"generation"`
	Map        *MapDocument  `json:"map,omitempty"`
	Error      *SessionError `json:"error,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// NewSession returns a session in the idle state.
func NewSession(id string) *Session {
	return &Session{ID: id, State: StateIdle, UpdatedAt: time.Now()}
}

// Submit starts a new run and returns its generation.
func (s *Session) Submit(address string) (uint64, error) {
	if address == "" {
		return 0, ErrEmptyAddress
	}
	s.Generation++
	s.State = StateLoading
	s.Address = address
	s.Map = nil
	s.Error = nil
	s.UpdatedAt = time.Now()
	return s.Generation, nil
}

// Succeed completes run gen with a composed map.
func (s *Session) Succeed(gen uint64, m *MapDocument) error {
	if err := s.checkRun(gen); err != nil {
		return err
	}
	s.State = StateSuccess
	s.Map = m
	s.UpdatedAt = time.Now()
	return nil
}

// Fail completes run gen with an error. Every error kind, including
// unexpected ones, ends in the error state.
func (s *Session) Fail(gen uint64, err error) error {
	if cerr := s.checkRun(gen); cerr != nil {
		return cerr
	}
	kind := Classify(err)
	if kind == "" {
		kind = ErrorKindUnexpected
	}
	s.State = StateError
	s.Error = &SessionError{Kind: kind, Message: kind.UserMessage()}
	s.UpdatedAt = time.Now()
	return nil
}

func (s *Session) checkRun(gen uint64) error {
	if gen != s.Generation {
		return ErrStaleResult
	}
	if s.State != StateLoading {
		return fmt.Errorf("session %s: cannot complete run in state %s", s.ID, s.State)
	}
	return nil
}

// SessionEvent is broadcast on every state transition.
type SessionEvent struct {
	SessionID  string        `json:"session_id"`
	State      SessionState  `json:"state"`
	Address    string        `json:"address,omitempty"`
	Generation uint64        `json:"generation"`
	Error      *SessionError `json:"error,omitempty"`
	Time       time.Time     `json:"time"`
}

// Event snapshots the session as a SessionEvent.
func (s *Session) Event() *SessionEvent {
	return &SessionEvent{
		SessionID:  s.ID,
		State:      s.State,
		Address:    s.Address,
		Generation: s.Generation,
		Error:      s.Error,
		Time:       s.UpdatedAt,
	}
}
