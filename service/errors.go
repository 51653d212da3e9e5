package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures so callers can branch on the kind
// instead of matching message strings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindValidation
	KindIneligible
	KindUnavailable
	KindInvalidState
	KindBlockedDeletion
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindIneligible:
		return "ineligible"
	case KindUnavailable:
		return "unavailable"
	case KindInvalidState:
		return "invalid_state"
	case KindBlockedDeletion:
		return "blocked_deletion"
	}
	return "unknown"
}

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ineligiblef(format string, args ...any) *Error {
	return &Error{Kind: KindIneligible, Message: fmt.Sprintf(format, args...)}
}

func unavailablef(format string, args ...any) *Error {
	return &Error{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...)}
}

func invalidStatef(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func blockedDeletionf(format string, args ...any) *Error {
	return &Error{Kind: KindBlockedDeletion, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the error kind, or KindUnknown for untyped errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindUnknown
}
