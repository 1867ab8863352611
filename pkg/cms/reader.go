package cms

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Context-specific tags used by CMS structures.
var (
	tagCtx0     = cbasn1.Tag(0).ContextSpecific().Constructed()
	tagCtx0Prim = cbasn1.Tag(0).ContextSpecific()
	tagCtx1     = cbasn1.Tag(1).ContextSpecific().Constructed()
	tagCtx2     = cbasn1.Tag(2).ContextSpecific().Constructed()
	tagCtx3     = cbasn1.Tag(3).ContextSpecific().Constructed()
	tagCtx4     = cbasn1.Tag(4).ContextSpecific().Constructed()
)

// fieldReader reads the elements of one SEQUENCE in declared order.
// Each successful read advances the position used in FieldError reports.
type fieldReader struct {
	structure string
	s         cryptobyte.String
	index     int
}

func newFieldReader(structure string, body cryptobyte.String) *fieldReader {
	return &fieldReader{structure: structure, s: body}
}

func (r *fieldReader) fail(field, reason string) error {
	return &FieldError{Structure: r.structure, Field: field, Index: r.index, Reason: reason}
}

func (r *fieldReader) wrap(field string, err error) error {
	if err == nil {
		return nil
	}
	return r.fail(field, err.Error())
}

// peek reports whether the next element carries tag.
func (r *fieldReader) peek(tag cbasn1.Tag) bool {
	return r.s.PeekASN1Tag(tag)
}

// element reads the contents of the next element, which must carry tag.
func (r *fieldReader) element(field string, tag cbasn1.Tag) (cryptobyte.String, error) {
	var out cryptobyte.String
	if !r.s.ReadASN1(&out, tag) {
		return nil, r.fail(field, "missing or unexpected tag")
	}
	r.index++
	return out, nil
}

// optional reads the contents of the next element if it carries tag.
func (r *fieldReader) optional(field string, tag cbasn1.Tag) (cryptobyte.String, bool, error) {
	if !r.peek(tag) {
		return nil, false, nil
	}
	out, err := r.element(field, tag)
	return out, err == nil, err
}

// raw reads the full encoding (tag, length and contents) of the next element.
func (r *fieldReader) raw(field string) ([]byte, cbasn1.Tag, error) {
	var out cryptobyte.String
	var tag cbasn1.Tag
	if !r.s.ReadAnyASN1Element(&out, &tag) {
		return nil, 0, r.fail(field, "missing element")
	}
	r.index++
	return out, tag, nil
}

func (r *fieldReader) integer(field string) (*big.Int, error) {
	body, err := r.element(field, cbasn1.INTEGER)
	if err != nil {
		return nil, r.fail(field, "expected INTEGER")
	}
	n, ok := parseInteger(body)
	if !ok {
		r.index--
		return nil, r.fail(field, "empty INTEGER")
	}
	return n, nil
}

// version reads a CMSVersion INTEGER.
func (r *fieldReader) version() (int, error) {
	n, err := r.integer("version")
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() < -1<<31 || n.Int64() > 1<<31-1 {
		r.index--
		return 0, r.fail("version", "out of range")
	}
	return int(n.Int64()), nil
}

func (r *fieldReader) oid(field string) (asn1.ObjectIdentifier, error) {
	var oid asn1.ObjectIdentifier
	if !r.s.ReadASN1ObjectIdentifier(&oid) {
		return nil, r.fail(field, "expected OBJECT IDENTIFIER")
	}
	r.index++
	return oid, nil
}

func (r *fieldReader) octetString(field string) ([]byte, error) {
	body, err := r.element(field, cbasn1.OCTET_STRING)
	if err != nil {
		return nil, r.fail(field, "expected OCTET STRING")
	}
	return body, nil
}

func (r *fieldReader) algorithm(field string) (pkix.AlgorithmIdentifier, error) {
	body, err := r.element(field, cbasn1.SEQUENCE)
	if err != nil {
		return pkix.AlgorithmIdentifier{}, r.fail(field, "expected AlgorithmIdentifier")
	}
	alg, err := parseAlgorithmIdentifier(body)
	if err != nil {
		r.index--
		return alg, r.wrap(field, err)
	}
	return alg, nil
}

// algorithmSet reads a SET OF AlgorithmIdentifier.
func (r *fieldReader) algorithmSet(field string) ([]pkix.AlgorithmIdentifier, error) {
	body, err := r.element(field, cbasn1.SET)
	if err != nil {
		return nil, r.fail(field, "expected SET OF AlgorithmIdentifier")
	}
	var algs []pkix.AlgorithmIdentifier
	for !body.Empty() {
		var seq cryptobyte.String
		if !body.ReadASN1(&seq, cbasn1.SEQUENCE) {
			r.index--
			return nil, r.fail(field, "expected AlgorithmIdentifier")
		}
		alg, err := parseAlgorithmIdentifier(seq)
		if err != nil {
			r.index--
			return nil, r.wrap(field, err)
		}
		algs = append(algs, alg)
	}
	return algs, nil
}

// done fails if elements remain after the last declared field.
func (r *fieldReader) done() error {
	if !r.s.Empty() {
		return r.fail("end", "unexpected trailing element")
	}
	return nil
}

func parseAlgorithmIdentifier(body cryptobyte.String) (pkix.AlgorithmIdentifier, error) {
	var alg pkix.AlgorithmIdentifier
	if !body.ReadASN1ObjectIdentifier(&alg.Algorithm) {
		return alg, malformed("AlgorithmIdentifier without algorithm OID")
	}
	if !body.Empty() {
		var params cryptobyte.String
		var tag cbasn1.Tag
		if !body.ReadAnyASN1Element(&params, &tag) || !body.Empty() {
			return alg, malformed("invalid AlgorithmIdentifier parameters")
		}
		alg.Parameters = asn1.RawValue{FullBytes: params}
	}
	return alg, nil
}

// parseInteger decodes a two's complement INTEGER body without rejecting
// non-minimal encodings, which some producers emit for serial numbers.
func parseInteger(b []byte) (*big.Int, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8))
	}
	return n, true
}

// elements splits the contents of a SET or SEQUENCE into full element encodings.
func elements(body cryptobyte.String) ([]cryptobyte.String, error) {
	var out []cryptobyte.String
	for !body.Empty() {
		var el cryptobyte.String
		var tag cbasn1.Tag
		if !body.ReadAnyASN1Element(&el, &tag) {
			return nil, malformed("truncated element")
		}
		out = append(out, el)
	}
	return out, nil
}

// countElements returns the number of elements in a SET or SEQUENCE body.
func countElements(body cryptobyte.String) (int, error) {
	els, err := elements(body)
	return len(els), err
}
