package describe

import (
	"github.com/go-logr/logr"

	"github.com/remiblancher/cmsinfo/pkg/cms"
)

// SigningTimeLayout is the format of rendered signing times (always UTC).
const SigningTimeLayout = "Mon, 02 Jan 2006 15:04:05"

// Flavor distinguishes signed/authenticated attribute sets from
// unprotected/unsigned ones.
type Flavor int

const (
	// FlavorSigned covers signedAttrs and authAttrs. CAdES markers are only
	// recognized here.
	FlavorSigned Flavor = iota
	// FlavorUnsigned covers unsignedAttrs, unauthAttrs and unprotectedAttrs.
	// Counter-signatures are only recognized here.
	FlavorUnsigned
)

// ClassifyAttributes renders the recognized attributes of set in encoding order.
// Unknown attributes are skipped. Values that cannot be decoded are logged and
// their line is omitted.
func ClassifyAttributes(set cms.AttributeSet, flavor Flavor, mode Mode, log logr.Logger) []Line {
	depth := 1
	if flavor == FlavorSigned {
		depth = 2
	}

	var lines []Line
	add := func(key Key, value string) {
		lines = append(lines, Line{Section: SectionAttributes, Key: key, Value: value, Depth: depth})
	}

	for _, attr := range set.Attributes {
		switch {
		case attr.Type.Equal(cms.OIDContentType):
			if len(attr.Values) == 0 {
				log.Info("content-type attribute without value")
				continue
			}
			oid, err := cms.ContentTypeValue(attr.Values[0])
			if err != nil {
				log.Info("skipping undecodable content-type attribute", "error", err.Error())
				continue
			}
			add(KeyAttrContentType, oid.String())

		case attr.Type.Equal(cms.OIDMessageDigest):
			add(KeyAttrMessageDigest, "")

		case attr.Type.Equal(cms.OIDSigningTime):
			if len(attr.Values) == 0 {
				log.Info("signing-time attribute without value")
				continue
			}
			t, err := cms.SigningTimeValue(attr.Values[0])
			if err != nil {
				log.Info("cannot convert signing time", "attribute", attr.Type.String(), "error", err.Error())
				continue
			}
			add(KeyAttrSigningTime, t.UTC().Format(SigningTimeLayout))

		case attr.Type.Equal(cms.OIDCounterSignature) && flavor == FlavorUnsigned:
			add(KeyAttrCounterSignature, "")

		case attr.Type.Equal(cms.OIDSigningCertificateV2) && flavor == FlavorSigned && mode == ModeCAdES:
			add(KeyAttrSigningCertificateV2, "")

		case attr.Type.Equal(cms.OIDSignaturePolicyID) && flavor == FlavorSigned && mode == ModeCAdES:
			add(KeyAttrSignaturePolicy, "")
		}
	}
	return lines
}
