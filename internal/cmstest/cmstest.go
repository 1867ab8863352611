// Package cmstest builds CMS ContentInfo encodings for tests.
//
// Structures are assembled field by field with cryptobyte so tests can produce
// layouts that a signing library would refuse to emit: empty signer sets,
// unknown algorithms, broken attribute values and so on. Nothing is signed or
// encrypted; signature, key and MAC fields carry placeholder bytes.
package cmstest

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Object identifiers used by the builders.
var (
	OIDData                   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 1}
	OIDSignedData             = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}
	OIDEnvelopedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 3}
	OIDSignedAndEnvelopedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 4}
	OIDDigestedData           = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 5}
	OIDEncryptedData          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 6}
	OIDAuthenticatedData      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 2}
	OIDCompressedData         = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 9}
	OIDAuthEnvelopedData      = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 23}

	OIDContentType          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	OIDMessageDigest        = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
	OIDSigningTime          = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 5}
	OIDCounterSignature     = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 6}
	OIDSigningCertificateV2 = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 47}
	OIDSignaturePolicyID    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 15}

	OIDSHA256          = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}
	OIDSHA384          = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}
	OIDAES256CBC       = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 42}
	OIDAES256GCM       = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 46}
	OIDAESWrap256      = asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 1, 45}
	OIDRSAES           = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	OIDSHA256WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
	OIDHMACSHA256      = asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 9}
	OIDCompressionZLIB = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 3, 8}
)

// Placeholder is used for signature, key, digest and MAC bytes.
var Placeholder = []byte{0xde, 0xad, 0xbe, 0xef}

// ContentInfo wraps an encoded variant SEQUENCE. A nil content omits [0].
func ContentInfo(contentType asn1.ObjectIdentifier, content []byte) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(contentType)
		if content != nil {
			b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddBytes(content)
			})
		}
	})
	return b.BytesOrPanic()
}

// Data returns an id-data ContentInfo carrying payload.
func Data(payload []byte) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1OctetString(payload)
	return ContentInfo(OIDData, b.BytesOrPanic())
}

// Name encodes an X.509 Name with a single common name.
func Name(commonName string) []byte {
	der, err := asn1.Marshal(pkix.Name{CommonName: commonName}.ToRDNSequence())
	if err != nil {
		panic(err)
	}
	return der
}

// ID is an encoded SignerIdentifier or RecipientIdentifier.
type ID []byte

// IssuerSerial returns an IssuerAndSerialNumber identifier for a raw DER issuer.
func IssuerSerial(rawIssuer []byte, serial *big.Int) ID {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddBytes(rawIssuer)
		b.AddASN1BigInt(serial)
	})
	return b.BytesOrPanic()
}

// IssuerCN is IssuerSerial with a Name built from commonName.
func IssuerCN(commonName string, serial int64) ID {
	return IssuerSerial(Name(commonName), big.NewInt(serial))
}

// SKI returns a [0] SubjectKeyIdentifier identifier.
func SKI(keyID []byte) ID {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.Tag(0).ContextSpecific(), func(b *cryptobyte.Builder) {
		b.AddBytes(keyID)
	})
	return b.BytesOrPanic()
}

// Attribute is one Attribute with pre-encoded values.
type Attribute struct {
	Type   asn1.ObjectIdentifier
	Values [][]byte
}

// Attributes is an optional attribute set. Nil omits the field; an empty
// non-nil slice encodes an empty SET.
type Attributes []Attribute

// ContentTypeAttr returns a content-type attribute.
func ContentTypeAttr(oid asn1.ObjectIdentifier) Attribute {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1ObjectIdentifier(oid)
	return Attribute{Type: OIDContentType, Values: [][]byte{b.BytesOrPanic()}}
}

// MessageDigestAttr returns a message-digest attribute.
func MessageDigestAttr(digest []byte) Attribute {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1OctetString(digest)
	return Attribute{Type: OIDMessageDigest, Values: [][]byte{b.BytesOrPanic()}}
}

// SigningTimeAttr returns a signing-time attribute encoded as UTCTime.
func SigningTimeAttr(t time.Time) Attribute {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1UTCTime(t.UTC())
	return Attribute{Type: OIDSigningTime, Values: [][]byte{b.BytesOrPanic()}}
}

// GeneralizedSigningTimeAttr returns a signing-time attribute encoded as GeneralizedTime.
func GeneralizedSigningTimeAttr(t time.Time) Attribute {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1GeneralizedTime(t.UTC())
	return Attribute{Type: OIDSigningTime, Values: [][]byte{b.BytesOrPanic()}}
}

// RawAttr returns an attribute with a single raw value, used for malformed values.
func RawAttr(oid asn1.ObjectIdentifier, value []byte) Attribute {
	return Attribute{Type: oid, Values: [][]byte{value}}
}

// MarkerAttr returns an attribute whose single value is an empty SEQUENCE.
// It is enough for presence checks such as counter-signature or signing-certificate-v2.
func MarkerAttr(oid asn1.ObjectIdentifier) Attribute {
	return RawAttr(oid, []byte{0x30, 0x00})
}

// Algorithm is an AlgorithmIdentifier without parameters.
func Algorithm(oid asn1.ObjectIdentifier) []byte {
	b := cryptobyte.NewBuilder(nil)
	addAlgorithm(b, oid)
	return b.BytesOrPanic()
}

// KeyTrans returns a KeyTransRecipientInfo.
func KeyTrans(rid ID, keyEncryption asn1.ObjectIdentifier) []byte {
	version := int64(0)
	if len(rid) > 0 && rid[0] != 0x30 {
		version = 2
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(version)
		b.AddBytes(rid)
		addAlgorithm(b, keyEncryption)
		b.AddASN1OctetString(Placeholder)
	})
	return b.BytesOrPanic()
}

// KeyAgree returns a [1] KeyAgreeRecipientInfo with one RecipientEncryptedKey per rid.
func KeyAgree(keyEncryption asn1.ObjectIdentifier, rids ...ID) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
		b.AddASN1Int64(3)
		b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			// originatorKey [1] OriginatorPublicKey
			b.AddASN1(cbasn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				addAlgorithm(b, asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1})
				b.AddASN1BitString(Placeholder)
			})
		})
		addAlgorithm(b, keyEncryption)
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			for _, rid := range rids {
				b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddBytes(rid)
					b.AddASN1OctetString(Placeholder)
				})
			}
		})
	})
	return b.BytesOrPanic()
}

// KEK returns a [2] KEKRecipientInfo.
func KEK(keyID []byte, keyEncryption asn1.ObjectIdentifier) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.Tag(2).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
		b.AddASN1Int64(4)
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1OctetString(keyID)
		})
		addAlgorithm(b, keyEncryption)
		b.AddASN1OctetString(Placeholder)
	})
	return b.BytesOrPanic()
}

// Password returns a [3] PasswordRecipientInfo with a PBKDF2 key derivation algorithm.
func Password(keyEncryption asn1.ObjectIdentifier) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.Tag(3).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
			b.AddASN1ObjectIdentifier(asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 5, 12})
		})
		addAlgorithm(b, keyEncryption)
		b.AddASN1OctetString(Placeholder)
	})
	return b.BytesOrPanic()
}

// KEM returns a [4] OtherRecipientInfo carrying an id-ori-kem KEMRecipientInfo.
func KEM(rid ID, kem, wrap asn1.ObjectIdentifier) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.Tag(4).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 13, 3})
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(0)
			b.AddBytes(rid)
			addAlgorithm(b, kem)
			b.AddASN1OctetString(Placeholder)
			addAlgorithm(b, asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 3, 28})
			b.AddASN1Int64(32)
			addAlgorithm(b, wrap)
			b.AddASN1OctetString(Placeholder)
		})
	})
	return b.BytesOrPanic()
}

// EncryptedContent describes an EncryptedContentInfo.
type EncryptedContent struct {
	ContentType asn1.ObjectIdentifier // defaults to id-data
	Algorithm   asn1.ObjectIdentifier // defaults to AES-256-CBC
	Ciphertext  []byte                // nil omits encryptedContent
}

func (e EncryptedContent) add(b *cryptobyte.Builder) {
	ct := e.ContentType
	if ct == nil {
		ct = OIDData
	}
	alg := e.Algorithm
	if alg == nil {
		alg = OIDAES256CBC
	}
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(ct)
		addAlgorithm(b, alg)
		if e.Ciphertext != nil {
			b.AddASN1(cbasn1.Tag(0).ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddBytes(e.Ciphertext)
			})
		}
	})
}

// SignerInfo describes one SignerInfo.
type SignerInfo struct {
	Version            int64 // defaults to 1
	SID                ID
	DigestAlgorithm    asn1.ObjectIdentifier // defaults to SHA-256
	SignedAttrs        Attributes
	SignatureAlgorithm asn1.ObjectIdentifier // defaults to sha256WithRSAEncryption
	UnsignedAttrs      Attributes
}

func (si SignerInfo) add(b *cryptobyte.Builder) {
	version := si.Version
	if version == 0 {
		version = 1
	}
	digest := si.DigestAlgorithm
	if digest == nil {
		digest = OIDSHA256
	}
	sig := si.SignatureAlgorithm
	if sig == nil {
		sig = OIDSHA256WithRSA
	}
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(version)
		b.AddBytes(si.SID)
		addAlgorithm(b, digest)
		addAttributes(b, 0, si.SignedAttrs)
		addAlgorithm(b, sig)
		b.AddASN1OctetString(Placeholder)
		addAttributes(b, 1, si.UnsignedAttrs)
	})
}

// SignedData describes a SignedData ContentInfo.
type SignedData struct {
	Version          int64 // defaults to 1
	DigestAlgorithms []asn1.ObjectIdentifier
	EContentType     asn1.ObjectIdentifier // defaults to id-data
	EContent         []byte                // nil for a detached signature
	Certificates     [][]byte
	Signers          []SignerInfo
}

// Encode returns the DER ContentInfo.
func (sd SignedData) Encode() []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(defaultVersion(sd.Version, 1))
		addAlgorithmSet(b, sd.DigestAlgorithms)
		addEncap(b, sd.EContentType, sd.EContent)
		if sd.Certificates != nil {
			b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				for _, c := range sd.Certificates {
					b.AddBytes(c)
				}
			})
		}
		b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
			for _, si := range sd.Signers {
				si.add(b)
			}
		})
	})
	return ContentInfo(OIDSignedData, b.BytesOrPanic())
}

// EnvelopedData describes an EnvelopedData ContentInfo.
type EnvelopedData struct {
	Version          int64 // defaults to 0
	Recipients       [][]byte
	Content          EncryptedContent
	UnprotectedAttrs Attributes
}

// Encode returns the DER ContentInfo.
func (env EnvelopedData) Encode() []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(env.Version)
		addSet(b, env.Recipients)
		env.Content.add(b)
		addAttributes(b, 1, env.UnprotectedAttrs)
	})
	return ContentInfo(OIDEnvelopedData, b.BytesOrPanic())
}

// AuthEnvelopedData describes an AuthEnvelopedData ContentInfo.
type AuthEnvelopedData struct {
	Recipients  [][]byte
	Content     EncryptedContent
	AuthAttrs   Attributes
	UnauthAttrs Attributes
}

// Encode returns the DER ContentInfo.
func (aed AuthEnvelopedData) Encode() []byte {
	content := aed.Content
	if content.Algorithm == nil {
		content.Algorithm = OIDAES256GCM
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addSet(b, aed.Recipients)
		content.add(b)
		addAttributes(b, 1, aed.AuthAttrs)
		b.AddASN1OctetString(Placeholder)
		addAttributes(b, 2, aed.UnauthAttrs)
	})
	return ContentInfo(OIDAuthEnvelopedData, b.BytesOrPanic())
}

// SignedAndEnvelopedData describes a PKCS#7 SignedAndEnvelopedData ContentInfo.
type SignedAndEnvelopedData struct {
	Recipients       [][]byte
	DigestAlgorithms []asn1.ObjectIdentifier
	Content          EncryptedContent
	Signers          []SignerInfo
}

// Encode returns the DER ContentInfo.
func (sed SignedAndEnvelopedData) Encode() []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(1)
		addSet(b, sed.Recipients)
		addAlgorithmSet(b, sed.DigestAlgorithms)
		sed.Content.add(b)
		b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
			for _, si := range sed.Signers {
				si.add(b)
			}
		})
	})
	return ContentInfo(OIDSignedAndEnvelopedData, b.BytesOrPanic())
}

// AuthenticatedData describes an AuthenticatedData ContentInfo.
type AuthenticatedData struct {
	Recipients      [][]byte
	MACAlgorithm    asn1.ObjectIdentifier // defaults to HMAC-SHA256
	DigestAlgorithm asn1.ObjectIdentifier // nil omits [1]
	EContentType    asn1.ObjectIdentifier // defaults to id-data
	AuthAttrs       Attributes
	UnauthAttrs     Attributes
}

// Encode returns the DER ContentInfo.
func (ad AuthenticatedData) Encode() []byte {
	mac := ad.MACAlgorithm
	if mac == nil {
		mac = OIDHMACSHA256
	}
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addSet(b, ad.Recipients)
		addAlgorithm(b, mac)
		if ad.DigestAlgorithm != nil {
			b.AddASN1(cbasn1.Tag(1).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(ad.DigestAlgorithm)
			})
		}
		addEncap(b, ad.EContentType, []byte("authenticated"))
		addAttributes(b, 2, ad.AuthAttrs)
		b.AddASN1OctetString(Placeholder)
		addAttributes(b, 3, ad.UnauthAttrs)
	})
	return ContentInfo(OIDAuthenticatedData, b.BytesOrPanic())
}

// EncryptedData describes an EncryptedData ContentInfo.
type EncryptedData struct {
	Content          EncryptedContent
	UnprotectedAttrs Attributes
	// UniversalSet encodes the unprotected attributes as a plain SET instead of [1].
	UniversalSet bool
}

// Encode returns the DER ContentInfo.
func (ed EncryptedData) Encode() []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		if ed.UnprotectedAttrs != nil {
			b.AddASN1Int64(2)
		} else {
			b.AddASN1Int64(0)
		}
		ed.Content.add(b)
		if ed.UniversalSet && ed.UnprotectedAttrs != nil {
			b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
				for _, a := range ed.UnprotectedAttrs {
					addAttribute(b, a)
				}
			})
		} else {
			addAttributes(b, 1, ed.UnprotectedAttrs)
		}
	})
	return ContentInfo(OIDEncryptedData, b.BytesOrPanic())
}

// DigestedData returns a DigestedData ContentInfo.
func DigestedData(digestAlgorithm, eContentType asn1.ObjectIdentifier) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addAlgorithm(b, digestAlgorithm)
		addEncap(b, eContentType, []byte("digested"))
		b.AddASN1OctetString(Placeholder)
	})
	return ContentInfo(OIDDigestedData, b.BytesOrPanic())
}

// CompressedData returns a CompressedData ContentInfo.
func CompressedData(compressionAlgorithm, eContentType asn1.ObjectIdentifier) []byte {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1Int64(0)
		addAlgorithm(b, compressionAlgorithm)
		addEncap(b, eContentType, []byte{0x78, 0x9c})
	})
	return ContentInfo(OIDCompressedData, b.BytesOrPanic())
}

func defaultVersion(v, def int64) int64 {
	if v == 0 {
		return def
	}
	return v
}

func addAlgorithm(b *cryptobyte.Builder, oid asn1.ObjectIdentifier) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(oid)
	})
}

func addAlgorithmSet(b *cryptobyte.Builder, oids []asn1.ObjectIdentifier) {
	b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
		for _, oid := range oids {
			addAlgorithm(b, oid)
		}
	})
}

func addEncap(b *cryptobyte.Builder, contentType asn1.ObjectIdentifier, content []byte) {
	if contentType == nil {
		contentType = OIDData
	}
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(contentType)
		if content != nil {
			b.AddASN1(cbasn1.Tag(0).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(content)
			})
		}
	})
}

func addSet(b *cryptobyte.Builder, elements [][]byte) {
	b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
		for _, el := range elements {
			b.AddBytes(el)
		}
	})
}

func addAttributes(b *cryptobyte.Builder, tag uint8, attrs Attributes) {
	if attrs == nil {
		return
	}
	b.AddASN1(cbasn1.Tag(tag).ContextSpecific().Constructed(), func(b *cryptobyte.Builder) {
		for _, a := range attrs {
			addAttribute(b, a)
		}
	})
}

func addAttribute(b *cryptobyte.Builder, a Attribute) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(a.Type)
		b.AddASN1(cbasn1.SET, func(b *cryptobyte.Builder) {
			for _, v := range a.Values {
				b.AddBytes(v)
			}
		})
	})
}
