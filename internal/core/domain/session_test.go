package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestSession_HappyPath(t *testing.T) {
	s := NewSession("s1")
	if s.State != StateIdle {
		t.Fatalf("expected idle, got %s", s.State)
	}

	gen, err := s.Submit("Plaza Moyua, Bilbao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != StateLoading {
		t.Errorf("expected loading, got %s", s.State)
	}

	m := &MapDocument{Address: "Plaza Moyua, Bilbao"}
	if err := s.Succeed(gen, m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != StateSuccess || s.Map != m {
		t.Errorf("expected success with map, got %s", s.State)
	}
}

func TestSession_EmptyAddressRejected(t *testing.T) {
	s := NewSession("s1")
	if _, err := s.Submit(""); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("expected ErrEmptyAddress, got %v", err)
	}
	if s.State != StateIdle || s.Generation != 0 {
		t.Errorf("empty submit must not change state, got %s gen %d", s.State, s.Generation)
	}
}

func TestSession_FailKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
		msg  string
	}{
		{"resolution", ErrAddressNotFound, ErrorKindResolution, "Please try another address."},
		{"retrieval", NewRetrievalError("overpass", errors.New("timeout")), ErrorKindRetrieval, "Please try another address."},
		{"unexpected", errors.New("boom"), ErrorKindUnexpected, "Something went wrong. Please try again."},
		{"nil", nil, ErrorKindUnexpected, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("s1")
			gen, _ := s.Submit("somewhere")
			if err := s.Fail(gen, tt.err); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.State != StateError {
				t.Fatalf("expected error state, got %s", s.State)
			}
			if s.Error.Kind != tt.kind || s.Error.Message != tt.msg {
				t.Errorf("got %+v", s.Error)
			}
		})
	}
}

func TestSession_ResubmitClearsPreviousOutcome(t *testing.T) {
	s := NewSession("s1")
	gen, _ := s.Submit("zzz123notarealplace")
	_ = s.Fail(gen, ErrAddressNotFound)

	if _, err := s.Submit("Bilbao"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State != StateLoading || s.Error != nil || s.Map != nil {
		t.Errorf("expected clean loading state, got %+v", s)
	}
}

func TestSession_StaleResultDiscarded(t *testing.T) {
	s := NewSession("s1")
	first, _ := s.Submit("first")
	second, _ := s.Submit("second")

	if err := s.Succeed(first, &MapDocument{Address: "first"}); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	if s.State != StateLoading || s.Address != "second" {
		t.Errorf("stale result must not apply, got %s %q", s.State, s.Address)
	}

	if err := s.Succeed(second, &MapDocument{Address: "second"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Fail(second, errors.New("late")); err == nil {
		t.Error("expected error completing an already finished run")
	}
}

func TestSession_Event(t *testing.T) {
	s := NewSession("s1")
	gen, _ := s.Submit("x")
	_ = s.Fail(gen, ErrNoNetwork)

	ev := s.Event()
	if ev.SessionID != "s1" || ev.State != StateError || ev.Generation != gen {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Error == nil || ev.Error.Kind != ErrorKindResolution {
		t.Errorf("expected resolution error in event, got %+v", ev.Error)
	}
}

func TestClassify(t *testing.T) {
	wrapped := fmt.Errorf("geocode %q: %w", "x", ErrAddressNotFound)
	if Classify(wrapped) != ErrorKindResolution {
		t.Error("wrapped resolution error should classify as resolution")
	}
	deep := fmt.Errorf("fetch: %w", NewRetrievalError("nominatim", errors.New("503")))
	if Classify(deep) != ErrorKindRetrieval {
		t.Error("wrapped retrieval error should classify as retrieval")
	}
	if Classify(nil) != "" {
		t.Error("nil should have no kind")
	}
}
