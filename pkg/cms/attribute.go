package cms

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// attributeSet reads an optional IMPLICIT-tagged SET OF Attribute.
func (r *fieldReader) attributeSet(field string, tag cbasn1.Tag) (AttributeSet, error) {
	body, present, err := r.optional(field, tag)
	if err != nil || !present {
		return AttributeSet{}, err
	}
	attrs, err := parseAttributes(body)
	if err != nil {
		r.index--
		return AttributeSet{}, r.wrap(field, err)
	}
	return AttributeSet{Present: true, Attributes: attrs}, nil
}

// parseAttributes reads the contents of a SET OF Attribute in encoding order.
//
//	Attribute ::= SEQUENCE {
//	  attrType OBJECT IDENTIFIER,
//	  attrValues SET OF AttributeValue }
func parseAttributes(body cryptobyte.String) ([]Attribute, error) {
	var attrs []Attribute
	for !body.Empty() {
		var seq, values cryptobyte.String
		var attr Attribute
		if !body.ReadASN1(&seq, cbasn1.SEQUENCE) ||
			!seq.ReadASN1ObjectIdentifier(&attr.Type) ||
			!seq.ReadASN1(&values, cbasn1.SET) ||
			!seq.Empty() {
			return nil, malformed("invalid Attribute at position %d", len(attrs))
		}
		vals, err := elements(values)
		if err != nil {
			return nil, err
		}
		for _, v := range vals {
			attr.Values = append(attr.Values, []byte(v))
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

// Find returns the first attribute of the given type.
func (s AttributeSet) Find(oid asn1.ObjectIdentifier) (*Attribute, bool) {
	for i := range s.Attributes {
		if s.Attributes[i].Type.Equal(oid) {
			return &s.Attributes[i], true
		}
	}
	return nil, false
}

// ContentTypeValue decodes a content-type attribute value.
func ContentTypeValue(value []byte) (asn1.ObjectIdentifier, error) {
	s := cryptobyte.String(value)
	var oid asn1.ObjectIdentifier
	if !s.ReadASN1ObjectIdentifier(&oid) || !s.Empty() {
		return nil, malformed("content-type attribute is not an OBJECT IDENTIFIER")
	}
	return oid, nil
}

// SigningTimeValue decodes a signing-time attribute value. RFC 5652 allows
// UTCTime or GeneralizedTime.
func SigningTimeValue(value []byte) (time.Time, error) {
	s := cryptobyte.String(value)
	var t time.Time
	switch {
	case s.PeekASN1Tag(cbasn1.UTCTime):
		if !s.ReadASN1UTCTime(&t) {
			return t, malformed("invalid UTCTime in signing-time attribute")
		}
	case s.PeekASN1Tag(cbasn1.GeneralizedTime):
		if !s.ReadASN1GeneralizedTime(&t) {
			return t, malformed("invalid GeneralizedTime in signing-time attribute")
		}
	default:
		return t, malformed("signing-time attribute is not a Time")
	}
	if !s.Empty() {
		return t, malformed("trailing data in signing-time attribute")
	}
	return t, nil
}

// identifier reads a SignerIdentifier / RecipientIdentifier CHOICE.
func (r *fieldReader) identifier(field string) (Identifier, error) {
	var id Identifier
	switch {
	case r.peek(cbasn1.SEQUENCE):
		body, _ := r.element(field, cbasn1.SEQUENCE)
		ias, err := parseIssuerAndSerial(body)
		if err != nil {
			r.index--
			return id, r.wrap(field, err)
		}
		id.IssuerAndSerial = ias
	case r.peek(tagCtx0Prim):
		body, _ := r.element(field, tagCtx0Prim)
		id.SubjectKeyID = body
	default:
		return id, r.fail(field, "expected IssuerAndSerialNumber or [0] SubjectKeyIdentifier")
	}
	return id, nil
}

// parseIssuerAndSerial reads the contents of an IssuerAndSerialNumber.
//
//	IssuerAndSerialNumber ::= SEQUENCE {
//	  issuer Name,
//	  serialNumber CertificateSerialNumber }
func parseIssuerAndSerial(body cryptobyte.String) (*IssuerAndSerialNumber, error) {
	var name, serial cryptobyte.String
	if !body.ReadASN1Element(&name, cbasn1.SEQUENCE) {
		return nil, malformed("IssuerAndSerialNumber without issuer Name")
	}
	if !body.ReadASN1(&serial, cbasn1.INTEGER) || !body.Empty() {
		return nil, malformed("IssuerAndSerialNumber without serialNumber")
	}
	n, ok := parseInteger(serial)
	if !ok {
		return nil, malformed("empty serialNumber")
	}
	ias := &IssuerAndSerialNumber{RawIssuer: name, SerialNumber: n}
	var rdn pkix.RDNSequence
	if rest, err := asn1.Unmarshal(name, &rdn); err == nil && len(rest) == 0 {
		if rdn == nil {
			rdn = pkix.RDNSequence{}
		}
		ias.Issuer = rdn
	}
	return ias, nil
}
