package describe

import (
	"fmt"
	"strings"
)

// Key identifies the label of a report line.
type Key string

// Line keys. Keys ending in OID carry a dotted OID that the algorithm registry
// could not resolve.
const (
	KeyType    Key = "type"
	KeyVersion Key = "version"

	KeyRecipients                Key = "recipients"
	KeyRecipient                 Key = "recipient"
	KeyRecipientKind             Key = "recipient_kind"
	KeyOtherRecipientType        Key = "other_recipient_type"
	KeyIssuer                    Key = "issuer"
	KeySerialNumber              Key = "serial_number"
	KeyKeyIdentifier             Key = "key_identifier"
	KeyKEMAlgorithm              Key = "kem_algorithm"
	KeyKEMAlgorithmOID           Key = "kem_algorithm_oid"
	KeyKeyEncryptionAlgorithm    Key = "key_encryption_algorithm"
	KeyKeyEncryptionAlgorithmOID Key = "key_encryption_algorithm_oid"

	KeyMACAlgorithm            Key = "mac_algorithm"
	KeyMACAlgorithmOID         Key = "mac_algorithm_oid"
	KeyDigestAlgorithm         Key = "digest_algorithm"
	KeyDigestAlgorithmOID      Key = "digest_algorithm_oid"
	KeySignatureAlgorithm      Key = "signature_algorithm"
	KeySignatureAlgorithmOID   Key = "signature_algorithm_oid"
	KeyCompressionAlgorithm    Key = "compression_algorithm"
	KeyCompressionAlgorithmOID Key = "compression_algorithm_oid"
	KeyContentType             Key = "content_type"

	KeyEncryptedContent              Key = "encrypted_content"
	KeyEncryptedContentType          Key = "encrypted_content_type"
	KeyContentEncryptionAlgorithm    Key = "content_encryption_algorithm"
	KeyContentEncryptionAlgorithmOID Key = "content_encryption_algorithm_oid"
	KeySigners                       Key = "signers"
	KeySigner                        Key = "signer"
	KeySignerVersion                 Key = "signer_version"
	KeySignerDigestAlgorithm         Key = "signer_digest_algorithm"
	KeySignerDigestAlgorithmOID      Key = "signer_digest_algorithm_oid"
	KeySignedAttributes              Key = "signed_attributes"
	KeyNoSignedAttributes            Key = "no_signed_attributes"
	KeyUnsignedAttributes            Key = "unsigned_attributes"
	KeyAttributes                    Key = "attributes"
	KeyNoAttributes                  Key = "no_attributes"
	KeyAuthAttributes                Key = "auth_attributes"
	KeyNoAuthAttributes              Key = "no_auth_attributes"
	KeyAttrContentType               Key = "attr_content_type"
	KeyAttrMessageDigest             Key = "attr_message_digest"
	KeyAttrSigningTime               Key = "attr_signing_time"
	KeyAttrCounterSignature          Key = "attr_counter_signature"
	KeyAttrSigningCertificateV2      Key = "attr_signing_certificate_v2"
	KeyAttrSignaturePolicy           Key = "attr_signature_policy"
)

// Language selects the label set used for text output.
type Language int

const (
	// LangES is the historical Spanish label set.
	LangES Language = iota
	LangEN
)

func (l Language) String() string {
	if l == LangEN {
		return "en"
	}
	return "es"
}

// ParseLanguage parses "es" or "en". An empty string is LangES.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "es":
		return LangES, nil
	case "en":
		return LangEN, nil
	default:
		return LangES, fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

// Labels are format strings; %s receives the line value.
var labels = map[Language]map[Key]string{
	LangES: {
		KeyType:    "Tipo: %s",
		KeyVersion: "Version: %s",

		KeyRecipients:                "Destinatarios:",
		KeyRecipient:                 " - Informacion de destino de firma %s:",
		KeyRecipientKind:             "Tipo de destinatario: %s",
		KeyOtherRecipientType:        "OID del tipo de destinatario: %s",
		KeyIssuer:                    "Issuer: %s",
		KeySerialNumber:              "Numero de serie: %s",
		KeyKeyIdentifier:             "Identificador de clave: %s",
		KeyKEMAlgorithm:              "Algoritmo KEM: %s",
		KeyKEMAlgorithmOID:           "OID del algoritmo KEM: %s",
		KeyKeyEncryptionAlgorithm:    "Algoritmo de cifrado: %s",
		KeyKeyEncryptionAlgorithmOID: "OID del algoritmo de cifrado: %s",

		KeyMACAlgorithm:            "Algoritmo de MAC: %s",
		KeyMACAlgorithmOID:         "OID del Algoritmo de MAC: %s",
		KeyDigestAlgorithm:         "Algoritmo de resumen: %s",
		KeyDigestAlgorithmOID:      "OID del Algoritmo de resumen: %s",
		KeySignatureAlgorithm:      "Algoritmo de firma: %s",
		KeySignatureAlgorithmOID:   "OID del Algoritmo de firma: %s",
		KeyCompressionAlgorithm:    "Algoritmo de compresion: %s",
		KeyCompressionAlgorithmOID: "OID del Algoritmo de compresion: %s",
		KeyContentType:             "OID del tipo de contenido: %s",

		KeyEncryptedContent:              "Informacion de los datos cifrados:",
		KeyEncryptedContentType:          "Tipo: %s",
		KeyContentEncryptionAlgorithm:    "Algoritmo de cifrado: %s",
		KeyContentEncryptionAlgorithmOID: "OID del Algoritmo de cifrado: %s",

		KeySigners:                  "Firmantes:",
		KeySigner:                   "- firmante %s :",
		KeySignerVersion:            "version: %s",
		KeySignerDigestAlgorithm:    "Algoritmo de firma de este firmante: %s",
		KeySignerDigestAlgorithmOID: "OID del algoritmo de firma de este firmante: %s",
		KeySignedAttributes:         "Atributos obligatorios:",
		KeyNoSignedAttributes:       "Atributos obligatorios: No tiene atributos obligatorios",
		KeyUnsignedAttributes:       "Atributos no firmados:",

		KeyAttributes:       "Atributos : ",
		KeyNoAttributes:     "Atributos : No tiene atributos opcionales",
		KeyAuthAttributes:   "Atributos Autenticados:",
		KeyNoAuthAttributes: "Atributos Autenticados: No tiene atributos autenticados",

		KeyAttrContentType:          "OID del tipo de contenido: %s",
		KeyAttrMessageDigest:        `Contiene el atributo "MessageDigest"`,
		KeyAttrSigningTime:          "Contiene fecha de firma: %s",
		KeyAttrCounterSignature:     "Contiene la contrafirma de la firma",
		KeyAttrSigningCertificateV2: `Contiene el atributo "Signing Certificate V2"`,
		KeyAttrSignaturePolicy:      "Contiene la politica de la firma",
	},
	LangEN: {
		KeyType:    "Type: %s",
		KeyVersion: "Version: %s",

		KeyRecipients:                "Recipients:",
		KeyRecipient:                 " - Recipient %s:",
		KeyRecipientKind:             "Recipient type: %s",
		KeyOtherRecipientType:        "Recipient type OID: %s",
		KeyIssuer:                    "Issuer: %s",
		KeySerialNumber:              "Serial number: %s",
		KeyKeyIdentifier:             "Key identifier: %s",
		KeyKEMAlgorithm:              "KEM algorithm: %s",
		KeyKEMAlgorithmOID:           "KEM algorithm OID: %s",
		KeyKeyEncryptionAlgorithm:    "Key encryption algorithm: %s",
		KeyKeyEncryptionAlgorithmOID: "Key encryption algorithm OID: %s",

		KeyMACAlgorithm:            "MAC algorithm: %s",
		KeyMACAlgorithmOID:         "MAC algorithm OID: %s",
		KeyDigestAlgorithm:         "Digest algorithm: %s",
		KeyDigestAlgorithmOID:      "Digest algorithm OID: %s",
		KeySignatureAlgorithm:      "Signature algorithm: %s",
		KeySignatureAlgorithmOID:   "Signature algorithm OID: %s",
		KeyCompressionAlgorithm:    "Compression algorithm: %s",
		KeyCompressionAlgorithmOID: "Compression algorithm OID: %s",
		KeyContentType:             "Content type OID: %s",

		KeyEncryptedContent:              "Encrypted content:",
		KeyEncryptedContentType:          "Type: %s",
		KeyContentEncryptionAlgorithm:    "Content encryption algorithm: %s",
		KeyContentEncryptionAlgorithmOID: "Content encryption algorithm OID: %s",

		KeySigners:                  "Signers:",
		KeySigner:                   "- signer %s:",
		KeySignerVersion:            "version: %s",
		KeySignerDigestAlgorithm:    "Digest algorithm: %s",
		KeySignerDigestAlgorithmOID: "Digest algorithm OID: %s",
		KeySignedAttributes:         "Signed attributes:",
		KeyNoSignedAttributes:       "Signed attributes: none",
		KeyUnsignedAttributes:       "Unsigned attributes:",

		KeyAttributes:       "Attributes:",
		KeyNoAttributes:     "Attributes: none",
		KeyAuthAttributes:   "Authenticated attributes:",
		KeyNoAuthAttributes: "Authenticated attributes: none",

		KeyAttrContentType:          "Content type OID: %s",
		KeyAttrMessageDigest:        `Contains the "MessageDigest" attribute`,
		KeyAttrSigningTime:          "Signing time: %s",
		KeyAttrCounterSignature:     "Contains a counter-signature",
		KeyAttrSigningCertificateV2: `Contains the "Signing Certificate V2" attribute`,
		KeyAttrSignaturePolicy:      "Contains the signature policy",
	},
}

// Label returns the text of one line without indentation.
func Label(lang Language, l Line) string {
	tpl, ok := labels[lang][l.Key]
	if !ok {
		tpl = string(l.Key) + ": %s"
	}
	if strings.Contains(tpl, "%s") {
		return fmt.Sprintf(tpl, l.Value)
	}
	return tpl
}
