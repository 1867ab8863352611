// Package errors provides error handling and HTTP status code mapping.
package errors

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/remiblancher/cmsinfo/internal/api/dto"
	"github.com/remiblancher/cmsinfo/pkg/cms"
	"github.com/remiblancher/cmsinfo/pkg/describe"
)

// Error codes for API responses.
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeMalformedCMS           = "MALFORMED_CMS"
	CodeUnsupportedContentType = "UNSUPPORTED_CONTENT_TYPE"
	CodeBodyTooLarge           = "BODY_TOO_LARGE"
	CodeNotAcceptable          = "NOT_ACCEPTABLE"
	CodeAuditFailed            = "AUDIT_FAILED"
	CodeInternal               = "INTERNAL_ERROR"
)

// ErrAudit marks errors raised while writing the audit log.
var ErrAudit = errors.New("audit failure")

// MapError maps an internal error to an HTTP status code and APIError.
func MapError(err error) (int, *dto.APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, &dto.APIError{
			Code:    CodeBodyTooLarge,
			Message: "request body exceeds the configured limit",
			Details: map[string]string{"limit": strconv.FormatInt(tooLarge.Limit, 10)},
		}

	case errors.Is(err, ErrAudit):
		return http.StatusInternalServerError, &dto.APIError{
			Code:    CodeAuditFailed,
			Message: "audit log write failed",
		}

	case errors.Is(err, cms.ErrUnsupportedContentType):
		apiErr := &dto.APIError{
			Code:    CodeUnsupportedContentType,
			Message: "cannot interpret this data: " + err.Error(),
		}
		var ctErr *cms.UnsupportedContentTypeError
		if errors.As(err, &ctErr) {
			apiErr.Details = map[string]string{"oid": ctErr.OID.String()}
		}
		return http.StatusUnprocessableEntity, apiErr

	case errors.Is(err, cms.ErrMalformed):
		apiErr := &dto.APIError{
			Code:    CodeMalformedCMS,
			Message: "cannot interpret this data: " + err.Error(),
		}
		var fieldErr *cms.FieldError
		if errors.As(err, &fieldErr) {
			apiErr.Details = map[string]string{
				"structure": fieldErr.Structure,
				"field":     fieldErr.Field,
				"index":     strconv.Itoa(fieldErr.Index),
			}
		}
		return http.StatusBadRequest, apiErr

	case errors.Is(err, describe.ErrUnknownMode),
		errors.Is(err, describe.ErrUnknownLanguage),
		errors.Is(err, describe.ErrUnknownFormat):
		return http.StatusBadRequest, NewBadRequest(err.Error())
	}

	return http.StatusInternalServerError, &dto.APIError{
		Code:    CodeInternal,
		Message: "An internal error occurred",
	}
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}
