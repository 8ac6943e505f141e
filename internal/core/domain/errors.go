package domain

import (
	"errors"
	"fmt"
)

// ErrResolution is the parent of every "address not recognized" failure.
var ErrResolution = errors.New("address not recognized")

var (
	// ErrAddressNotFound means the geocoder returned no match.
	ErrAddressNotFound = fmt.Errorf("%w: geocoder returned no result", ErrResolution)
	// ErrNoNetwork means no walkable street network exists around the address.
	ErrNoNetwork = fmt.Errorf("%w: no walkable street network nearby", ErrResolution)
	// ErrEmptyAddress is returned for blank input.
	ErrEmptyAddress = errors.New("address must not be empty")
)

// RetrievalError wraps a transport or upstream service failure.
type RetrievalError struct {
	Service string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// NewRetrievalError builds a RetrievalError for service.
func NewRetrievalError(service string, err error) error {
	return &RetrievalError{Service: service, Err: err}
}

// ErrorKind classifies pipeline failures at the outermost boundary.
type ErrorKind string

const (
	ErrorKindResolution ErrorKind = "resolution"
	ErrorKindRetrieval  ErrorKind = "retrieval"
	ErrorKindUnexpected ErrorKind = "unexpected"
)

// Classify maps an error to its kind. A nil error has no kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrResolution) {
		return ErrorKindResolution
	}
	var re *RetrievalError
	if errors.As(err, &re) {
		return ErrorKindRetrieval
	}
	return ErrorKindUnexpected
}

// UserMessage is the message shown in the error banner for a given kind.
func (k ErrorKind) UserMessage() string {
	switch k {
	case ErrorKindResolution, ErrorKindRetrieval:
		return "Please try another address."
	default:
		return "Something went wrong. Please try again."
	}
}
