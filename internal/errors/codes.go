// Package errors provides structured domain errors for the list store.
package errors

import "errors"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// List errors
	CodeListExists   Code = "LIST_EXISTS"
	CodeListNotFound Code = "LIST_NOT_FOUND"

	// Item errors
	CodeItemTextEmpty       Code = "ITEM_TEXT_EMPTY"
	CodeItemQuantityInvalid Code = "ITEM_QUANTITY_INVALID"
	CodeItemNotFound        Code = "ITEM_NOT_FOUND"
)

// Kind groups codes into the caller-facing error categories.
type Kind int

const (
	// KindUnknown covers unexpected failures.
	KindUnknown Kind = iota
	// KindValidation marks malformed input the caller can correct.
	KindValidation
	// KindDuplicateName marks a list name collision on create.
	KindDuplicateName
	// KindNotFound marks a missing list or item for the calling user.
	KindNotFound
)

// Kind maps a code to its caller-facing category.
func (c Code) Kind() Kind {
	switch c {
	case CodeItemTextEmpty, CodeItemQuantityInvalid:
		return KindValidation
	case CodeListExists:
		return KindDuplicateName
	case CodeListNotFound, CodeItemNotFound:
		return KindNotFound
	default:
		return KindUnknown
	}
}

// Error is a domain error with a machine-readable code.
type Error struct {
	Code    Code
	Message string
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// kindOf extracts the kind of a wrapped domain error, or KindUnknown.
func kindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code.Kind()
	}
	return KindUnknown
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsDuplicateName reports whether err is a list name collision.
func IsDuplicateName(err error) bool {
	return kindOf(err) == KindDuplicateName
}

// IsNotFound reports whether err marks a missing list or item.
func IsNotFound(err error) bool {
	return kindOf(err) == KindNotFound
}
