package model

import (
	"errors"
	"strings"
)

// Kind classifies why a model call failed.
type Kind int

const (
	KindOther Kind = iota
	// KindAuth covers rejected or missing credentials.
	KindAuth
	// KindTransient covers timeouts, throttling, 5xx and transport errors.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindTransient:
		return "transient"
	default:
		return "other"
	}
}

type Error struct {
	Kind       Kind
	StatusCode int
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "model: " + e.Msg + ": " + e.Err.Error()
	}
	return "model: " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify returns the kind of a model failure. Errors that did not come
// from this package are matched on their text, the way older callers did.
func Classify(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") {
		return KindAuth
	}
	return KindOther
}

func IsAuthError(err error) bool {
	return err != nil && Classify(err) == KindAuth
}
