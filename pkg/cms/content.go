package cms

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
)

// ContentType identifies one of the supported CMS content types.
type ContentType int

const (
	ContentTypeUnknown ContentType = iota
	ContentTypeData
	ContentTypeDigestedData
	ContentTypeEncryptedData
	ContentTypeSignedData
	ContentTypeEnvelopedData
	ContentTypeSignedAndEnvelopedData
	ContentTypeAuthenticatedData
	ContentTypeAuthEnvelopedData
	ContentTypeCompressedData
)

var contentTypes = []struct {
	typ  ContentType
	oid  asn1.ObjectIdentifier
	name string
}{
	{ContentTypeData, OIDData, "Data"},
	{ContentTypeDigestedData, OIDDigestedData, "DigestedData"},
	{ContentTypeEncryptedData, OIDEncryptedData, "EncryptedData"},
	{ContentTypeSignedData, OIDSignedData, "SignedData"},
	{ContentTypeEnvelopedData, OIDEnvelopedData, "EnvelopedData"},
	{ContentTypeSignedAndEnvelopedData, OIDSignedAndEnvelopedData, "SignedAndEnvelopedData"},
	{ContentTypeAuthenticatedData, OIDAuthenticatedData, "AuthenticatedData"},
	{ContentTypeAuthEnvelopedData, OIDAuthEnvelopedData, "AuthEnvelopedData"},
	{ContentTypeCompressedData, OIDCompressedData, "CompressedData"},
}

// ContentTypeOf classifies a content-type OID.
// It returns ContentTypeUnknown for OIDs outside the supported set.
func ContentTypeOf(oid asn1.ObjectIdentifier) ContentType {
	for _, ct := range contentTypes {
		if ct.oid.Equal(oid) {
			return ct.typ
		}
	}
	return ContentTypeUnknown
}

// String returns the ASN.1 type name of the content type.
func (t ContentType) String() string {
	for _, ct := range contentTypes {
		if ct.typ == t {
			return ct.name
		}
	}
	return "Unknown"
}

// OID returns the content-type object identifier, or nil for ContentTypeUnknown.
func (t ContentType) OID() asn1.ObjectIdentifier {
	for _, ct := range contentTypes {
		if ct.typ == t {
			return ct.oid
		}
	}
	return nil
}

// Content is a decoded ContentInfo payload. The concrete type is one of
// *Data, *DigestedData, *EncryptedData, *SignedData, *EnvelopedData,
// *SignedAndEnvelopedData, *AuthenticatedData, *AuthEnvelopedData or *CompressedData.
type Content interface {
	ContentType() ContentType
}

// Data is the id-data content type. It carries no structure worth describing.
type Data struct {
	Length int // length of the [0] content, 0 when absent
}

// DigestedData (RFC 5652 Section 7).
//
//	DigestedData ::= SEQUENCE {
//	  version CMSVersion,
//	  digestAlgorithm DigestAlgorithmIdentifier,
//	  encapContentInfo EncapsulatedContentInfo,
//	  digest Digest }
type DigestedData struct {
	Version          int
	DigestAlgorithm  pkix.AlgorithmIdentifier
	EncapContentType asn1.ObjectIdentifier
	Digest           []byte
}

// EncryptedData (RFC 5652 Section 8).
//
//	EncryptedData ::= SEQUENCE {
//	  version CMSVersion,
//	  encryptedContentInfo EncryptedContentInfo,
//	  unprotectedAttrs [1] IMPLICIT UnprotectedAttributes OPTIONAL }
type EncryptedData struct {
	Version              int
	EncryptedContentInfo EncryptedContentInfo
	UnprotectedAttrs     AttributeSet
}

// SignedData (RFC 5652 Section 5).
//
//	SignedData ::= SEQUENCE {
//	  version CMSVersion,
//	  digestAlgorithms DigestAlgorithmIdentifiers,
//	  encapContentInfo EncapsulatedContentInfo,
//	  certificates [0] IMPLICIT CertificateSet OPTIONAL,
//	  crls [1] IMPLICIT RevocationInfoChoices OPTIONAL,
//	  signerInfos SignerInfos }
type SignedData struct {
	Version          int
	DigestAlgorithms []pkix.AlgorithmIdentifier
	EncapContentType asn1.ObjectIdentifier
	Detached         bool // eContent absent
	Certificates     int  // number of entries in the certificate set
	CRLs             int
	SignerInfos      []SignerInfo
}

// EnvelopedData (RFC 5652 Section 6).
//
//	EnvelopedData ::= SEQUENCE {
//	  version CMSVersion,
//	  originatorInfo [0] IMPLICIT OriginatorInfo OPTIONAL,
//	  recipientInfos RecipientInfos,
//	  encryptedContentInfo EncryptedContentInfo,
//	  unprotectedAttrs [1] IMPLICIT UnprotectedAttributes OPTIONAL }
type EnvelopedData struct {
	Version              int
	HasOriginatorInfo    bool
	RecipientInfos       []RecipientInfo
	EncryptedContentInfo EncryptedContentInfo
	UnprotectedAttrs     AttributeSet
}

// SignedAndEnvelopedData (RFC 2315 Section 11).
//
//	SignedAndEnvelopedData ::= SEQUENCE {
//	  version Version,
//	  recipientInfos RecipientInfos,
//	  digestAlgorithms DigestAlgorithmIdentifiers,
//	  encryptedContentInfo EncryptedContentInfo,
//	  certificates [0] IMPLICIT ExtendedCertificatesAndCertificates OPTIONAL,
//	  crls [1] IMPLICIT CertificateRevocationLists OPTIONAL,
//	  signerInfos SignerInfos }
type SignedAndEnvelopedData struct {
	Version              int
	RecipientInfos       []RecipientInfo
	DigestAlgorithms     []pkix.AlgorithmIdentifier
	EncryptedContentInfo EncryptedContentInfo
	Certificates         int
	CRLs                 int
	SignerInfos          []SignerInfo
}

// AuthenticatedData (RFC 5652 Section 9).
//
//	AuthenticatedData ::= SEQUENCE {
//	  version CMSVersion,
//	  originatorInfo [0] IMPLICIT OriginatorInfo OPTIONAL,
//	  recipientInfos RecipientInfos,
//	  macAlgorithm MessageAuthenticationCodeAlgorithm,
//	  digestAlgorithm [1] DigestAlgorithmIdentifier OPTIONAL,
//	  encapContentInfo EncapsulatedContentInfo,
//	  authAttrs [2] IMPLICIT AuthAttributes OPTIONAL,
//	  mac MessageAuthenticationCode,
//	  unauthAttrs [3] IMPLICIT UnauthAttributes OPTIONAL }
type AuthenticatedData struct {
	Version           int
	HasOriginatorInfo bool
	RecipientInfos    []RecipientInfo
	MACAlgorithm      pkix.AlgorithmIdentifier
	DigestAlgorithm   *pkix.AlgorithmIdentifier
	EncapContentType  asn1.ObjectIdentifier
	AuthAttrs         AttributeSet
	MAC               []byte
	UnauthAttrs       AttributeSet
}

// AuthEnvelopedData (RFC 5083).
//
//	AuthEnvelopedData ::= SEQUENCE {
//	  version CMSVersion,
//	  originatorInfo [0] IMPLICIT OriginatorInfo OPTIONAL,
//	  recipientInfos RecipientInfos,
//	  authEncryptedContentInfo EncryptedContentInfo,
//	  authAttrs [1] IMPLICIT AuthAttributes OPTIONAL,
//	  mac MessageAuthenticationCode,
//	  unauthAttrs [2] IMPLICIT UnauthAttributes OPTIONAL }
type AuthEnvelopedData struct {
	Version                  int
	HasOriginatorInfo        bool
	RecipientInfos           []RecipientInfo
	AuthEncryptedContentInfo EncryptedContentInfo
	AuthAttrs                AttributeSet
	MAC                      []byte
	UnauthAttrs              AttributeSet
}

// CompressedData (RFC 3274).
//
//	CompressedData ::= SEQUENCE {
//	  version CMSVersion,
//	  compressionAlgorithm CompressionAlgorithmIdentifier,
//	  encapContentInfo EncapsulatedContentInfo }
type CompressedData struct {
	Version              int
	CompressionAlgorithm pkix.AlgorithmIdentifier
	EncapContentType     asn1.ObjectIdentifier
}

func (*Data) ContentType() ContentType                   { return ContentTypeData }
func (*DigestedData) ContentType() ContentType           { return ContentTypeDigestedData }
func (*EncryptedData) ContentType() ContentType          { return ContentTypeEncryptedData }
func (*SignedData) ContentType() ContentType             { return ContentTypeSignedData }
func (*EnvelopedData) ContentType() ContentType          { return ContentTypeEnvelopedData }
func (*SignedAndEnvelopedData) ContentType() ContentType { return ContentTypeSignedAndEnvelopedData }
func (*AuthenticatedData) ContentType() ContentType      { return ContentTypeAuthenticatedData }
func (*AuthEnvelopedData) ContentType() ContentType      { return ContentTypeAuthEnvelopedData }
func (*CompressedData) ContentType() ContentType         { return ContentTypeCompressedData }

// EncryptedContentInfo contains the encrypted content (RFC 5652 Section 6.1).
//
//	EncryptedContentInfo ::= SEQUENCE {
//	  contentType ContentType,
//	  contentEncryptionAlgorithm ContentEncryptionAlgorithmIdentifier,
//	  encryptedContent [0] IMPLICIT EncryptedContent OPTIONAL }
type EncryptedContentInfo struct {
	ContentType                asn1.ObjectIdentifier
	ContentEncryptionAlgorithm pkix.AlgorithmIdentifier
	EncryptedContentLength     int
}

// IssuerAndSerialNumber identifies a certificate by issuer and serial.
type IssuerAndSerialNumber struct {
	Issuer       pkix.RDNSequence
	RawIssuer    []byte // DER of the issuer Name
	SerialNumber *big.Int
}

// IssuerString renders the issuer as an RFC 4514 string. Names that cannot be
// decoded are rendered as '#' followed by the hex DER encoding.
func (ias *IssuerAndSerialNumber) IssuerString() string {
	if ias.Issuer == nil {
		return "#" + hexString(ias.RawIssuer)
	}
	return ias.Issuer.String()
}

// Identifier is a RecipientIdentifier / SignerIdentifier CHOICE.
// Exactly one of IssuerAndSerial and SubjectKeyID is set.
//
//	SignerIdentifier ::= CHOICE {
//	  issuerAndSerialNumber IssuerAndSerialNumber,
//	  subjectKeyIdentifier [0] SubjectKeyIdentifier }
type Identifier struct {
	IssuerAndSerial *IssuerAndSerialNumber
	SubjectKeyID    []byte
}

// RecipientKind is the RecipientInfo CHOICE alternative.
type RecipientKind int

const (
	RecipientKeyTrans  RecipientKind = iota // ktri
	RecipientKeyAgree                       // [1] kari
	RecipientKEK                            // [2] kekri
	RecipientPassword                       // [3] pwri
	RecipientOther                          // [4] ori
)

func (k RecipientKind) String() string {
	switch k {
	case RecipientKeyTrans:
		return "KeyTransRecipientInfo"
	case RecipientKeyAgree:
		return "KeyAgreeRecipientInfo"
	case RecipientKEK:
		return "KEKRecipientInfo"
	case RecipientPassword:
		return "PasswordRecipientInfo"
	case RecipientOther:
		return "OtherRecipientInfo"
	default:
		return "Unknown"
	}
}

// RecipientInfo is one entry of a RecipientInfos set.
type RecipientInfo struct {
	Kind    RecipientKind
	Version int

	// IDs holds the recipient identifiers. KeyTransRecipientInfo and KEMRecipientInfo
	// carry one, KeyAgreeRecipientInfo one per RecipientEncryptedKey.
	IDs []Identifier

	// KEKID is the key identifier of a KEKRecipientInfo.
	KEKID []byte

	KeyEncryptionAlgorithm pkix.AlgorithmIdentifier

	// OtherType is the oriType of an OtherRecipientInfo.
	OtherType asn1.ObjectIdentifier
	// KEMAlgorithm is set when OtherType is id-ori-kem (RFC 9629).
	KEMAlgorithm *pkix.AlgorithmIdentifier
}

// SignerInfo (RFC 5652 Section 5.3).
//
//	SignerInfo ::= SEQUENCE {
//	  version CMSVersion,
//	  sid SignerIdentifier,
//	  digestAlgorithm DigestAlgorithmIdentifier,
//	  signedAttrs [0] IMPLICIT SignedAttributes OPTIONAL,
//	  signatureAlgorithm SignatureAlgorithmIdentifier,
//	  signature SignatureValue,
//	  unsignedAttrs [1] IMPLICIT UnsignedAttributes OPTIONAL }
type SignerInfo struct {
	Version            int
	SID                Identifier
	DigestAlgorithm    pkix.AlgorithmIdentifier
	SignedAttrs        AttributeSet
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          []byte
	UnsignedAttrs      AttributeSet
}

// Attribute represents a CMS attribute (RFC 5652 Section 5.3).
// Values holds the DER encoding of each AttributeValue in encoding order.
type Attribute struct {
	Type   asn1.ObjectIdentifier
	Values [][]byte
}

// AttributeSet is an optional SET OF Attribute. Present distinguishes an absent
// field from a present but empty set.
type AttributeSet struct {
	Present    bool
	Attributes []Attribute
}
