package cms

import (
	"encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

func parseSignedData(body cryptobyte.String) (*SignedData, error) {
	sd := &SignedData{}
	r := newFieldReader("SignedData", body)
	var err error
	if sd.Version, err = r.version(); err != nil {
		return nil, err
	}
	if sd.DigestAlgorithms, err = r.algorithmSet("digestAlgorithms"); err != nil {
		return nil, err
	}
	if sd.EncapContentType, sd.Detached, err = r.encapContentInfo("encapContentInfo"); err != nil {
		return nil, err
	}
	if sd.Certificates, err = r.optionalCount("certificates", tagCtx0); err != nil {
		return nil, err
	}
	if sd.CRLs, err = r.optionalCount("crls", tagCtx1); err != nil {
		return nil, err
	}
	if sd.SignerInfos, err = r.signerInfos("signerInfos"); err != nil {
		return nil, err
	}
	return sd, r.done()
}

func parseSignedAndEnvelopedData(body cryptobyte.String) (*SignedAndEnvelopedData, error) {
	sed := &SignedAndEnvelopedData{}
	r := newFieldReader("SignedAndEnvelopedData", body)
	var err error
	if sed.Version, err = r.version(); err != nil {
		return nil, err
	}
	if sed.RecipientInfos, err = r.recipientInfos("recipientInfos"); err != nil {
		return nil, err
	}
	if sed.DigestAlgorithms, err = r.algorithmSet("digestAlgorithms"); err != nil {
		return nil, err
	}
	if sed.EncryptedContentInfo, err = r.encryptedContentInfo("encryptedContentInfo"); err != nil {
		return nil, err
	}
	if sed.Certificates, err = r.optionalCount("certificates", tagCtx0); err != nil {
		return nil, err
	}
	if sed.CRLs, err = r.optionalCount("crls", tagCtx1); err != nil {
		return nil, err
	}
	if sed.SignerInfos, err = r.signerInfos("signerInfos"); err != nil {
		return nil, err
	}
	return sed, r.done()
}

// encapContentInfo reads an EncapsulatedContentInfo and reports whether the
// eContent is absent.
//
//	EncapsulatedContentInfo ::= SEQUENCE {
//	  eContentType ContentType,
//	  eContent [0] EXPLICIT OCTET STRING OPTIONAL }
func (r *fieldReader) encapContentInfo(field string) (asn1.ObjectIdentifier, bool, error) {
	body, err := r.element(field, cbasn1.SEQUENCE)
	if err != nil {
		return nil, false, r.fail(field, "expected EncapsulatedContentInfo")
	}
	var oid asn1.ObjectIdentifier
	if !body.ReadASN1ObjectIdentifier(&oid) {
		r.index--
		return nil, false, r.fail(field, "EncapsulatedContentInfo without eContentType")
	}
	detached := !body.PeekASN1Tag(tagCtx0)
	if !detached {
		var content cryptobyte.String
		body.ReadASN1(&content, tagCtx0)
	}
	if !body.Empty() {
		r.index--
		return nil, false, r.fail(field, "unexpected data after eContent")
	}
	return oid, detached, nil
}

// optionalCount reads an optional IMPLICIT SET (certificates, crls) and returns
// the number of entries it holds.
func (r *fieldReader) optionalCount(field string, tag cbasn1.Tag) (int, error) {
	body, present, err := r.optional(field, tag)
	if err != nil || !present {
		return 0, err
	}
	n, err := countElements(body)
	if err != nil {
		r.index--
		return 0, r.wrap(field, err)
	}
	return n, nil
}

func (r *fieldReader) signerInfos(field string) ([]SignerInfo, error) {
	body, err := r.element(field, cbasn1.SET)
	if err != nil {
		return nil, r.fail(field, "expected SET OF SignerInfo")
	}
	var out []SignerInfo
	for !body.Empty() {
		var seq cryptobyte.String
		if !body.ReadASN1(&seq, cbasn1.SEQUENCE) {
			r.index--
			return nil, r.fail(field, "expected SignerInfo")
		}
		si, err := parseSignerInfo(seq)
		if err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, nil
}

func parseSignerInfo(body cryptobyte.String) (SignerInfo, error) {
	var si SignerInfo
	r := newFieldReader("SignerInfo", body)
	var err error
	if si.Version, err = r.version(); err != nil {
		return si, err
	}
	if si.SID, err = r.identifier("sid"); err != nil {
		return si, err
	}
	if si.DigestAlgorithm, err = r.algorithm("digestAlgorithm"); err != nil {
		return si, err
	}
	if si.SignedAttrs, err = r.attributeSet("signedAttrs", tagCtx0); err != nil {
		return si, err
	}
	if si.SignatureAlgorithm, err = r.algorithm("signatureAlgorithm"); err != nil {
		return si, err
	}
	if si.Signature, err = r.octetString("signature"); err != nil {
		return si, err
	}
	if si.UnsignedAttrs, err = r.attributeSet("unsignedAttrs", tagCtx1); err != nil {
		return si, err
	}
	return si, r.done()
}
