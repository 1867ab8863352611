package cms

import (
	"errors"
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// maxBERDepth bounds element nesting in NormalizeBER.
const maxBERDepth = 64

var errBERTruncated = errors.New("truncated element")

// NormalizeBER re-encodes a BER element with definite lengths and flattens
// constructed universal strings into their primitive form, so the result can be
// read by the DER field reader. Indefinite-length ContentInfo structures produced
// by streaming signers are the usual reason to call it.
//
// Only the framing is rewritten. Primitive contents are copied byte for byte and
// never interpreted, so a string the DER reader accepts is accepted here too.
func NormalizeBER(data []byte) ([]byte, error) {
	d := &berDecoder{data: data}
	pkt, err := d.element(0)
	if err == nil && pkt == nil {
		err = errors.New("unexpected end-of-contents")
	}
	if err != nil {
		return nil, malformed("BER decode at offset %d: %v", d.pos, err)
	}
	if d.pos != len(data) {
		return nil, malformed("trailing data after BER element")
	}
	return pkt.Bytes(), nil
}

// berDecoder walks BER headers over an in-memory buffer.
type berDecoder struct {
	data []byte
	pos  int
}

// element reads one element and returns it re-framed with a definite length.
// An end-of-contents marker yields a nil packet.
func (d *berDecoder) element(depth int) (*ber.Packet, error) {
	if depth > maxBERDepth {
		return nil, errors.New("nesting too deep")
	}
	class, typ, tag, err := d.identifier()
	if err != nil {
		return nil, err
	}
	length, err := d.length()
	if err != nil {
		return nil, err
	}

	if typ == ber.TypePrimitive {
		if length < 0 {
			return nil, errors.New("indefinite length on a primitive element")
		}
		content, err := d.take(length)
		if err != nil {
			return nil, err
		}
		if class == ber.ClassUniversal && tag == ber.TagEOC {
			if length != 0 {
				return nil, errors.New("end-of-contents with non-zero length")
			}
			return nil, nil
		}
		out := ber.Encode(class, ber.TypePrimitive, tag, nil, "")
		out.Data.Write(content)
		return out, nil
	}

	flatten := class == ber.ClassUniversal && isStringTag(tag)
	out := ber.Encode(class, ber.TypeConstructed, tag, nil, "")
	if flatten {
		out = ber.Encode(class, ber.TypePrimitive, tag, nil, "")
	}

	end := -1
	if length >= 0 {
		end = d.pos + length
		if end > len(d.data) {
			return nil, errBERTruncated
		}
	}
	for {
		if end >= 0 && d.pos == end {
			return out, nil
		}
		if end < 0 && d.pos >= len(d.data) {
			return nil, errors.New("missing end-of-contents")
		}
		child, err := d.element(depth + 1)
		if err != nil {
			return nil, err
		}
		if end >= 0 && d.pos > end {
			return nil, fmt.Errorf("element overruns its parent by %d bytes", d.pos-end)
		}
		if child == nil {
			if end >= 0 {
				return nil, errors.New("end-of-contents inside a definite-length element")
			}
			return out, nil
		}
		if !flatten {
			out.AppendChild(child)
			continue
		}
		if child.TagType != ber.TypePrimitive {
			return nil, errors.New("constructed string segment is not a string")
		}
		out.Data.Write(child.Data.Bytes())
	}
}

// identifier reads the class, form and tag number, including high tag numbers.
func (d *berDecoder) identifier() (ber.Class, ber.Type, ber.Tag, error) {
	if d.pos >= len(d.data) {
		return 0, 0, 0, errBERTruncated
	}
	b := d.data[d.pos]
	d.pos++
	class := ber.Class(b) & ber.ClassBitmask
	typ := ber.Type(b & 0x20)
	tag := ber.Tag(b & 0x1f)
	if tag != 0x1f {
		return class, typ, tag, nil
	}

	tag = 0
	for i := 0; ; i++ {
		if d.pos >= len(d.data) {
			return 0, 0, 0, errBERTruncated
		}
		if i == 8 {
			return 0, 0, 0, errors.New("tag number too large")
		}
		b = d.data[d.pos]
		d.pos++
		tag = tag<<7 | ber.Tag(b&0x7f)
		if b&0x80 == 0 {
			return class, typ, tag, nil
		}
	}
}

// length reads a length octet sequence. -1 means indefinite.
func (d *berDecoder) length() (int, error) {
	if d.pos >= len(d.data) {
		return 0, errBERTruncated
	}
	b := d.data[d.pos]
	d.pos++
	switch {
	case b < 0x80:
		return int(b), nil
	case b == 0x80:
		return -1, nil
	case b == 0xff:
		return 0, errors.New("reserved length octet")
	}

	n := int(b & 0x7f)
	if n > 4 {
		return 0, fmt.Errorf("length of %d octets is too large", n)
	}
	if d.pos+n > len(d.data) {
		return 0, errBERTruncated
	}
	length := 0
	for _, c := range d.data[d.pos : d.pos+n] {
		length = length<<8 | int(c)
	}
	d.pos += n
	if length > len(d.data) {
		return 0, errBERTruncated
	}
	return length, nil
}

func (d *berDecoder) take(n int) ([]byte, error) {
	if n > len(d.data)-d.pos {
		return nil, errBERTruncated
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func isStringTag(tag ber.Tag) bool {
	switch tag {
	case ber.TagOctetString, ber.TagUTF8String,
		ber.TagPrintableString, ber.TagT61String, ber.TagIA5String,
		ber.TagUTCTime, ber.TagGeneralizedTime, ber.TagVisibleString,
		ber.TagUniversalString, ber.TagBMPString:
		return true
	}
	return false
}
