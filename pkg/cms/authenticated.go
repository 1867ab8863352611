package cms

import (
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

func parseAuthenticatedData(body cryptobyte.String) (*AuthenticatedData, error) {
	ad := &AuthenticatedData{}
	r := newFieldReader("AuthenticatedData", body)
	var err error
	if ad.Version, err = r.version(); err != nil {
		return nil, err
	}
	if _, ad.HasOriginatorInfo, err = r.optional("originatorInfo", tagCtx0); err != nil {
		return nil, err
	}
	if ad.RecipientInfos, err = r.recipientInfos("recipientInfos"); err != nil {
		return nil, err
	}
	if ad.MACAlgorithm, err = r.algorithm("macAlgorithm"); err != nil {
		return nil, err
	}
	digest, present, err := r.optional("digestAlgorithm", tagCtx1)
	if err != nil {
		return nil, err
	}
	if present {
		alg, err := parseAlgorithmIdentifier(digest)
		if err != nil {
			r.index--
			return nil, r.wrap("digestAlgorithm", err)
		}
		ad.DigestAlgorithm = &alg
	}
	if ad.EncapContentType, _, err = r.encapContentInfo("encapContentInfo"); err != nil {
		return nil, err
	}
	if ad.AuthAttrs, err = r.attributeSet("authAttrs", tagCtx2); err != nil {
		return nil, err
	}
	if ad.MAC, err = r.octetString("mac"); err != nil {
		return nil, err
	}
	if ad.UnauthAttrs, err = r.attributeSet("unauthAttrs", tagCtx3); err != nil {
		return nil, err
	}
	return ad, r.done()
}

func parseDigestedData(body cryptobyte.String) (*DigestedData, error) {
	dd := &DigestedData{}
	r := newFieldReader("DigestedData", body)
	var err error
	if dd.Version, err = r.version(); err != nil {
		return nil, err
	}
	if dd.DigestAlgorithm, err = r.algorithm("digestAlgorithm"); err != nil {
		return nil, err
	}
	if dd.EncapContentType, _, err = r.encapContentInfo("encapContentInfo"); err != nil {
		return nil, err
	}
	if dd.Digest, err = r.octetString("digest"); err != nil {
		return nil, err
	}
	return dd, r.done()
}

func parseCompressedData(body cryptobyte.String) (*CompressedData, error) {
	cd := &CompressedData{}
	r := newFieldReader("CompressedData", body)
	var err error
	if cd.Version, err = r.version(); err != nil {
		return nil, err
	}
	if cd.CompressionAlgorithm, err = r.algorithm("compressionAlgorithm"); err != nil {
		return nil, err
	}
	if cd.EncapContentType, _, err = r.encapContentInfo("encapContentInfo"); err != nil {
		return nil, err
	}
	return cd, r.done()
}

// parseData measures the id-data payload. The OCTET STRING wrapper is optional
// here since the payload carries no structure.
func parseData(body cryptobyte.String) *Data {
	s := body
	var octets cryptobyte.String
	if s.ReadASN1(&octets, cbasn1.OCTET_STRING) && s.Empty() {
		return &Data{Length: len(octets)}
	}
	return &Data{Length: len(body)}
}
