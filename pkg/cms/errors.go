// Package cms decodes CMS (RFC 5652) and PKCS#7 (RFC 2315) ContentInfo structures
// into typed, read-only records.
package cms

import (
	"encoding/asn1"
	"errors"
	"fmt"
)

// CMSError represents a CMS operation error with structured context.
// It supports errors.Is() and errors.As() for improved error handling.
type CMSError struct {
	Op  string // Operation: "parse", "normalize"
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *CMSError) Error() string {
	return fmt.Sprintf("cms %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *CMSError) Unwrap() error { return e.Err }

// NewCMSError creates a new CMSError with the given operation and error.
func NewCMSError(op string, err error) *CMSError {
	return &CMSError{Op: op, Err: err}
}

// Sentinel errors for CMS decoding.
// Use errors.Is() to check for these errors through the error chain.
var (
	// ErrMalformed indicates the input is not a valid ContentInfo, or a field of the
	// selected variant is missing or has the wrong ASN.1 type.
	ErrMalformed = errors.New("malformed CMS input")

	// ErrUnsupportedContentType indicates a well-formed ContentInfo whose content type
	// is not one of the supported CMS content types.
	ErrUnsupportedContentType = errors.New("unsupported CMS content type")
)

// FieldError reports the positional field of a structure that could not be read.
type FieldError struct {
	Structure string // e.g. "SignedData"
	Field     string // e.g. "digestAlgorithms"
	Index     int    // zero-based position inside the structure
	Reason    string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s field %d (%s): %s", e.Structure, e.Index, e.Field, e.Reason)
}

// Is makes every FieldError match ErrMalformed.
func (e *FieldError) Is(target error) bool { return target == ErrMalformed }

// UnsupportedContentTypeError reports the content-type OID of a well-formed
// ContentInfo that is not one of the supported CMS content types.
type UnsupportedContentTypeError struct {
	OID asn1.ObjectIdentifier
}

func (e *UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("%v: %s", ErrUnsupportedContentType, e.OID)
}

// Is makes every UnsupportedContentTypeError match ErrUnsupportedContentType.
func (e *UnsupportedContentTypeError) Is(target error) bool {
	return target == ErrUnsupportedContentType
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
