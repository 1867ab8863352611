package cms

import (
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

func parseEnvelopedData(body cryptobyte.String) (*EnvelopedData, error) {
	env := &EnvelopedData{}
	r := newFieldReader("EnvelopedData", body)
	var err error
	if env.Version, err = r.version(); err != nil {
		return nil, err
	}
	if _, env.HasOriginatorInfo, err = r.optional("originatorInfo", tagCtx0); err != nil {
		return nil, err
	}
	if env.RecipientInfos, err = r.recipientInfos("recipientInfos"); err != nil {
		return nil, err
	}
	if env.EncryptedContentInfo, err = r.encryptedContentInfo("encryptedContentInfo"); err != nil {
		return nil, err
	}
	if env.UnprotectedAttrs, err = r.attributeSet("unprotectedAttrs", tagCtx1); err != nil {
		return nil, err
	}
	return env, r.done()
}

func parseAuthEnvelopedData(body cryptobyte.String) (*AuthEnvelopedData, error) {
	aed := &AuthEnvelopedData{}
	r := newFieldReader("AuthEnvelopedData", body)
	var err error
	if aed.Version, err = r.version(); err != nil {
		return nil, err
	}
	if _, aed.HasOriginatorInfo, err = r.optional("originatorInfo", tagCtx0); err != nil {
		return nil, err
	}
	if aed.RecipientInfos, err = r.recipientInfos("recipientInfos"); err != nil {
		return nil, err
	}
	if aed.AuthEncryptedContentInfo, err = r.encryptedContentInfo("authEncryptedContentInfo"); err != nil {
		return nil, err
	}
	if aed.AuthAttrs, err = r.attributeSet("authAttrs", tagCtx1); err != nil {
		return nil, err
	}
	if aed.MAC, err = r.octetString("mac"); err != nil {
		return nil, err
	}
	if aed.UnauthAttrs, err = r.attributeSet("unauthAttrs", tagCtx2); err != nil {
		return nil, err
	}
	return aed, r.done()
}

// parseEncryptedData accepts the unprotected attributes either [1] IMPLICIT as
// RFC 5652 defines them or as a universal SET, which older encoders emit.
func parseEncryptedData(body cryptobyte.String) (*EncryptedData, error) {
	ed := &EncryptedData{}
	r := newFieldReader("EncryptedData", body)
	var err error
	if ed.Version, err = r.version(); err != nil {
		return nil, err
	}
	if ed.EncryptedContentInfo, err = r.encryptedContentInfo("encryptedContentInfo"); err != nil {
		return nil, err
	}
	tag := tagCtx1
	if r.peek(cbasn1.SET) {
		tag = cbasn1.SET
	}
	if ed.UnprotectedAttrs, err = r.attributeSet("unprotectedAttrs", tag); err != nil {
		return nil, err
	}
	return ed, r.done()
}

// encryptedContentInfo reads an EncryptedContentInfo. The encryptedContent
// may be primitive or, when produced by a streaming encoder, constructed.
func (r *fieldReader) encryptedContentInfo(field string) (EncryptedContentInfo, error) {
	var eci EncryptedContentInfo
	body, err := r.element(field, cbasn1.SEQUENCE)
	if err != nil {
		return eci, r.fail(field, "expected EncryptedContentInfo")
	}
	inner := newFieldReader("EncryptedContentInfo", body)
	if eci.ContentType, err = inner.oid("contentType"); err != nil {
		return eci, err
	}
	if eci.ContentEncryptionAlgorithm, err = inner.algorithm("contentEncryptionAlgorithm"); err != nil {
		return eci, err
	}
	for _, tag := range []cbasn1.Tag{tagCtx0Prim, tagCtx0} {
		content, present, err := inner.optional("encryptedContent", tag)
		if err != nil {
			return eci, err
		}
		if present {
			eci.EncryptedContentLength = len(content)
			break
		}
	}
	return eci, inner.done()
}
