package describe

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/remiblancher/cmsinfo/pkg/cms"
)

// Options configures an interpretation.
type Options struct {
	// Mode gates the CAdES-only signed attributes. Defaults to ModeCMS.
	Mode Mode

	// Logger receives diagnostics for irregularities that do not abort the
	// interpretation. Defaults to logr.Discard().
	Logger logr.Logger
}

func (o *Options) normalize() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Logger.GetSink() == nil {
		out.Logger = logr.Discard()
	}
	return out
}

// Interpret decodes a ContentInfo and builds its Descriptor.
//
// It fails only for malformed input (cms.ErrMalformed) or an unsupported
// content type (cms.ErrUnsupportedContentType). Unknown algorithms, unknown
// attributes and undecodable signing times degrade to a best-effort report.
func Interpret(data []byte, opts *Options) (*Descriptor, error) {
	o := opts.normalize()
	content, err := cms.ParseWithLogger(data, o.Logger)
	if err != nil {
		return nil, err
	}
	return Describe(content, &o), nil
}

// Describe builds the Descriptor of an already decoded Content.
func Describe(content cms.Content, opts *Options) *Descriptor {
	o := opts.normalize()
	d := &describer{mode: o.Mode, log: o.Logger}

	ct := content.ContentType()
	d.add(SectionHeader, 0, KeyType, ct.String())

	switch c := content.(type) {
	case *cms.Data:
		// header only
	case *cms.DigestedData:
		d.version(c.Version)
		d.algorithm(SectionContent, 0, KeyDigestAlgorithm, KeyDigestAlgorithmOID, c.DigestAlgorithm)
		d.add(SectionContent, 0, KeyContentType, c.EncapContentType.String())
	case *cms.CompressedData:
		d.version(c.Version)
		d.compression(c.CompressionAlgorithm)
		d.add(SectionContent, 0, KeyContentType, c.EncapContentType.String())
	case *cms.EncryptedData:
		d.version(c.Version)
		d.encryptedContent(c.EncryptedContentInfo)
		d.unprotected(c.UnprotectedAttrs)
	case *cms.EnvelopedData:
		d.version(c.Version)
		d.recipients(c.RecipientInfos)
		d.encryptedContent(c.EncryptedContentInfo)
		d.unprotected(c.UnprotectedAttrs)
	case *cms.AuthEnvelopedData:
		d.version(c.Version)
		d.recipients(c.RecipientInfos)
		d.encryptedContent(c.AuthEncryptedContentInfo)
		d.authenticated(c.AuthAttrs)
		d.unprotected(c.UnauthAttrs)
	case *cms.AuthenticatedData:
		d.version(c.Version)
		d.recipients(c.RecipientInfos)
		d.algorithm(SectionContent, 0, KeyMACAlgorithm, KeyMACAlgorithmOID, c.MACAlgorithm)
		if c.DigestAlgorithm != nil {
			d.algorithm(SectionContent, 0, KeyDigestAlgorithm, KeyDigestAlgorithmOID, *c.DigestAlgorithm)
		}
		d.add(SectionContent, 0, KeyContentType, c.EncapContentType.String())
		d.authenticated(c.AuthAttrs)
		d.unprotected(c.UnauthAttrs)
	case *cms.SignedAndEnvelopedData:
		d.version(c.Version)
		d.recipients(c.RecipientInfos)
		d.signatureAlgorithm(c.DigestAlgorithms)
		d.encryptedContent(c.EncryptedContentInfo)
		d.signers(c.SignerInfos)
	case *cms.SignedData:
		d.version(c.Version)
		d.signatureAlgorithm(c.DigestAlgorithms)
		d.add(SectionContent, 0, KeyContentType, c.EncapContentType.String())
		d.signers(c.SignerInfos)
	}

	return &Descriptor{
		ContentType: ct.String(),
		Mode:        o.Mode,
		Lines:       d.lines(),
	}
}

type describer struct {
	builder
	mode Mode
	log  logr.Logger
}

func (d *describer) version(v int) {
	d.add(SectionVersion, 0, KeyVersion, strconv.Itoa(v))
}

// algorithm adds a resolved-name line, or the OID line when the registry has no entry.
func (d *describer) algorithm(s Section, depth int, named, raw Key, alg pkix.AlgorithmIdentifier) {
	if name, ok := cms.AlgorithmName(alg.Algorithm); ok {
		d.add(s, depth, named, name)
		return
	}
	d.add(s, depth, raw, alg.Algorithm.String())
}

// signatureAlgorithm renders the first entry of the digestAlgorithms set.
func (d *describer) signatureAlgorithm(algs []pkix.AlgorithmIdentifier) {
	if len(algs) == 0 {
		return
	}
	d.algorithm(SectionContent, 0, KeySignatureAlgorithm, KeySignatureAlgorithmOID, algs[0])
}

func (d *describer) compression(alg pkix.AlgorithmIdentifier) {
	if alg.Algorithm.Equal(cms.OIDCompressionZLIB) {
		d.add(SectionContent, 0, KeyCompressionAlgorithm, "ZLIB")
		return
	}
	d.add(SectionContent, 0, KeyCompressionAlgorithmOID, alg.Algorithm.String())
}

func (d *describer) recipients(ris []cms.RecipientInfo) {
	if len(ris) == 0 {
		return
	}
	d.add(SectionRecipients, 0, KeyRecipients, "")
	for i, ri := range ris {
		d.add(SectionRecipients, 0, KeyRecipient, strconv.Itoa(i+1))
		if ri.Kind != cms.RecipientKeyTrans {
			d.add(SectionRecipients, 1, KeyRecipientKind, ri.Kind.String())
		}
		for _, id := range ri.IDs {
			d.identifier(SectionRecipients, id)
		}
		if ri.KEKID != nil {
			d.add(SectionRecipients, 1, KeyKeyIdentifier, hex.EncodeToString(ri.KEKID))
		}
		if ri.Kind == cms.RecipientOther && ri.KEMAlgorithm == nil {
			d.add(SectionRecipients, 1, KeyOtherRecipientType, ri.OtherType.String())
			continue
		}
		if ri.KEMAlgorithm != nil {
			d.algorithm(SectionRecipients, 1, KeyKEMAlgorithm, KeyKEMAlgorithmOID, *ri.KEMAlgorithm)
		}
		d.algorithm(SectionRecipients, 1, KeyKeyEncryptionAlgorithm, KeyKeyEncryptionAlgorithmOID, ri.KeyEncryptionAlgorithm)
	}
}

func (d *describer) identifier(s Section, id cms.Identifier) {
	if ias := id.IssuerAndSerial; ias != nil {
		d.add(s, 1, KeyIssuer, ias.IssuerString())
		d.add(s, 1, KeySerialNumber, ias.SerialNumber.String())
		return
	}
	d.add(s, 1, KeyKeyIdentifier, hex.EncodeToString(id.SubjectKeyID))
}

func (d *describer) encryptedContent(eci cms.EncryptedContentInfo) {
	d.add(SectionEncrypted, 0, KeyEncryptedContent, "")
	d.add(SectionEncrypted, 1, KeyEncryptedContentType, encryptedContentType(eci.ContentType))
	d.algorithm(SectionEncrypted, 1, KeyContentEncryptionAlgorithm, KeyContentEncryptionAlgorithmOID, eci.ContentEncryptionAlgorithm)
}

func encryptedContentType(oid asn1.ObjectIdentifier) string {
	if oid.Equal(cms.OIDEncryptedData) {
		return "EncryptedData"
	}
	return oid.String()
}

func (d *describer) signers(sis []cms.SignerInfo) {
	if len(sis) == 0 {
		return
	}
	d.add(SectionSigners, 0, KeySigners, "")
	for i, si := range sis {
		d.add(SectionSigners, 0, KeySigner, strconv.Itoa(i+1))
		d.add(SectionSigners, 1, KeySignerVersion, strconv.Itoa(si.Version))
		d.identifier(SectionSigners, si.SID)
		d.algorithm(SectionSigners, 1, KeySignerDigestAlgorithm, KeySignerDigestAlgorithmOID, si.DigestAlgorithm)
		if si.SignedAttrs.Present {
			d.add(SectionSigners, 1, KeySignedAttributes, "")
			d.addLines(SectionSigners, 0, ClassifyAttributes(si.SignedAttrs, FlavorSigned, d.mode, d.log))
		} else {
			d.add(SectionSigners, 1, KeyNoSignedAttributes, "")
		}
		if si.UnsignedAttrs.Present {
			d.add(SectionSigners, 1, KeyUnsignedAttributes, "")
			d.addLines(SectionSigners, 1, ClassifyAttributes(si.UnsignedAttrs, FlavorUnsigned, d.mode, d.log))
		}
	}
}

// authenticated renders a signed/authenticated attribute set at top level.
func (d *describer) authenticated(set cms.AttributeSet) {
	if !set.Present {
		d.add(SectionAttributes, 0, KeyNoAuthAttributes, "")
		return
	}
	d.add(SectionAttributes, 0, KeyAuthAttributes, "")
	d.addLines(SectionAttributes, 0, ClassifyAttributes(set, FlavorSigned, d.mode, d.log))
}

// unprotected renders an unprotected/unauthenticated attribute set.
func (d *describer) unprotected(set cms.AttributeSet) {
	if !set.Present {
		d.add(SectionAttributes, 0, KeyNoAttributes, "")
		return
	}
	d.add(SectionAttributes, 0, KeyAttributes, "")
	d.addLines(SectionAttributes, 0, ClassifyAttributes(set, FlavorUnsigned, d.mode, d.log))
}
