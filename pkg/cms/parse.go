package cms

import (
	"errors"

	"github.com/go-logr/logr"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Parse decodes a ContentInfo into one of the Content variants.
//
//	ContentInfo ::= SEQUENCE {
//	  contentType ContentType,
//	  content [0] EXPLICIT ANY DEFINED BY contentType }
//
// The input is read as DER first. When that fails it is normalised from BER
// and read again. A normalisation failure is returned as is; when the
// normalised input fails too, the DER error is returned.
//
// Errors match ErrMalformed or ErrUnsupportedContentType via errors.Is.
func Parse(data []byte) (Content, error) {
	return ParseWithLogger(data, logr.Discard())
}

// ParseWithLogger is Parse with a logger for decode diagnostics.
func ParseWithLogger(data []byte, log logr.Logger) (Content, error) {
	content, err := parseContentInfo(data)
	if err == nil || errors.Is(err, ErrUnsupportedContentType) {
		return content, wrapParseErr(err)
	}

	normalized, nerr := NormalizeBER(data)
	if nerr != nil {
		log.V(1).Info("BER normalisation failed", "derError", err.Error())
		return nil, wrapParseErr(nerr)
	}
	content, berErr := parseContentInfo(normalized)
	switch {
	case berErr == nil:
		log.V(1).Info("decoded ContentInfo after BER normalisation", "derError", err.Error())
		return content, nil
	case errors.Is(berErr, ErrUnsupportedContentType):
		return nil, wrapParseErr(berErr)
	default:
		return nil, wrapParseErr(err)
	}
}

func wrapParseErr(err error) error {
	if err == nil {
		return nil
	}
	return NewCMSError("parse", err)
}

// parseContentInfo classifies the content type before touching [0], so an
// unknown OID is reported as unsupported even when its payload is unreadable.
func parseContentInfo(data []byte) (Content, error) {
	input := cryptobyte.String(data)
	var body cryptobyte.String
	if !input.ReadASN1(&body, cbasn1.SEQUENCE) {
		return nil, malformed("ContentInfo is not a SEQUENCE")
	}
	if !input.Empty() {
		return nil, malformed("trailing data after ContentInfo")
	}

	r := newFieldReader("ContentInfo", body)
	oid, err := r.oid("contentType")
	if err != nil {
		return nil, err
	}
	ct := ContentTypeOf(oid)
	if ct == ContentTypeUnknown {
		return nil, &UnsupportedContentTypeError{OID: oid}
	}

	inner, present, err := r.optional("content", tagCtx0)
	if err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	if ct == ContentTypeData {
		if !present {
			return &Data{}, nil
		}
		return parseData(inner), nil
	}
	if !present {
		return nil, r.fail("content", "missing [0] content")
	}

	var seq cryptobyte.String
	if !inner.ReadASN1(&seq, cbasn1.SEQUENCE) || !inner.Empty() {
		return nil, r.fail("content", ct.String()+" is not a single SEQUENCE")
	}

	switch ct {
	case ContentTypeSignedData:
		return variant(parseSignedData(seq))
	case ContentTypeEnvelopedData:
		return variant(parseEnvelopedData(seq))
	case ContentTypeSignedAndEnvelopedData:
		return variant(parseSignedAndEnvelopedData(seq))
	case ContentTypeDigestedData:
		return variant(parseDigestedData(seq))
	case ContentTypeEncryptedData:
		return variant(parseEncryptedData(seq))
	case ContentTypeAuthenticatedData:
		return variant(parseAuthenticatedData(seq))
	case ContentTypeAuthEnvelopedData:
		return variant(parseAuthEnvelopedData(seq))
	case ContentTypeCompressedData:
		return variant(parseCompressedData(seq))
	}
	return nil, &UnsupportedContentTypeError{OID: oid}
}

// variant converts a typed extractor result into a Content without boxing a
// nil pointer on error.
func variant[T Content](v T, err error) (Content, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
