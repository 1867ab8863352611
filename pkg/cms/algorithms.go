package cms

import (
	"encoding/asn1"
	"encoding/hex"
)

// algorithmNames maps dotted OIDs to display names for cipher, digest, MAC,
// key management and signature algorithms that appear in CMS structures.
var algorithmNames = map[string]string{
	// Content encryption
	OIDAES128CBC.String():    "AES-128-CBC",
	OIDAES192CBC.String():    "AES-192-CBC",
	OIDAES256CBC.String():    "AES-256-CBC",
	OIDAES128GCM.String():    "AES-128-GCM",
	OIDAES192GCM.String():    "AES-192-GCM",
	OIDAES256GCM.String():    "AES-256-GCM",
	OIDAES128CCM.String():    "AES-128-CCM",
	OIDAES192CCM.String():    "AES-192-CCM",
	OIDAES256CCM.String():    "AES-256-CCM",
	OIDDESCBC.String():       "DES-CBC",
	OIDDESEDE3CBC.String():   "DES-EDE3-CBC",
	OIDRC2CBC.String():       "RC2-CBC",
	OIDRC4.String():          "RC4",
	OIDBlowfish.String():     "Blowfish-CBC",
	OIDAESWrap128.String():   "AES-128-WRAP",
	OIDAESWrap192.String():   "AES-192-WRAP",
	OIDAESWrap256.String():   "AES-256-WRAP",
	OIDDES3Wrap.String():     "DES-EDE3-WRAP",
	OIDPWRIKEK.String():      "PWRI-KEK",
	OIDPBKDF2.String():       "PBKDF2",
	OIDHKDFSHA256.String():   "HKDF-SHA256",
	OIDHKDFSHA384.String():   "HKDF-SHA384",
	OIDHKDFSHA512.String():   "HKDF-SHA512",

	// Key transport and agreement
	OIDRSAES.String():            "RSA",
	OIDRSAOAEP.String():          "RSAES-OAEP",
	OIDECDHStdSHA1KDF.String():   "ECDH-SHA1KDF",
	OIDECDHStdSHA256KDF.String(): "ECDH-SHA256KDF",
	OIDECDHStdSHA384KDF.String(): "ECDH-SHA384KDF",
	OIDECDHStdSHA512KDF.String(): "ECDH-SHA512KDF",
	OIDMLKEM512.String():         "ML-KEM-512",
	OIDMLKEM768.String():         "ML-KEM-768",
	OIDMLKEM1024.String():        "ML-KEM-1024",

	// Digests
	OIDMD5.String():      "MD5",
	OIDSHA1.String():     "SHA-1",
	OIDSHA224.String():   "SHA-224",
	OIDSHA256.String():   "SHA-256",
	OIDSHA384.String():   "SHA-384",
	OIDSHA512.String():   "SHA-512",
	OIDSHA3_256.String(): "SHA3-256",
	OIDSHA3_384.String(): "SHA3-384",
	OIDSHA3_512.String(): "SHA3-512",
	OIDSHAKE256.String(): "SHAKE256",

	// MACs
	OIDHMACSHA1.String():   "HMAC-SHA1",
	OIDHMACSHA224.String(): "HMAC-SHA224",
	OIDHMACSHA256.String(): "HMAC-SHA256",
	OIDHMACSHA384.String(): "HMAC-SHA384",
	OIDHMACSHA512.String(): "HMAC-SHA512",

	// Signatures
	OIDECDSAWithSHA256.String(): "ECDSA-SHA256",
	OIDECDSAWithSHA384.String(): "ECDSA-SHA384",
	OIDECDSAWithSHA512.String(): "ECDSA-SHA512",
	OIDEd25519.String():         "Ed25519",
	OIDEd448.String():           "Ed448",
	OIDSHA1WithRSA.String():     "SHA1withRSA",
	OIDSHA256WithRSA.String():   "SHA256withRSA",
	OIDSHA384WithRSA.String():   "SHA384withRSA",
	OIDSHA512WithRSA.String():   "SHA512withRSA",
	OIDRSAPSS.String():          "RSASSA-PSS",
	OIDMLDSA44.String():         "ML-DSA-44",
	OIDMLDSA65.String():         "ML-DSA-65",
	OIDMLDSA87.String():         "ML-DSA-87",

	OIDSLHDSASHA2128s.String():  "SLH-DSA-SHA2-128s",
	OIDSLHDSASHA2128f.String():  "SLH-DSA-SHA2-128f",
	OIDSLHDSASHA2192s.String():  "SLH-DSA-SHA2-192s",
	OIDSLHDSASHA2192f.String():  "SLH-DSA-SHA2-192f",
	OIDSLHDSASHA2256s.String():  "SLH-DSA-SHA2-256s",
	OIDSLHDSASHA2256f.String():  "SLH-DSA-SHA2-256f",
	OIDSLHDSASHAKE128s.String(): "SLH-DSA-SHAKE-128s",
	OIDSLHDSASHAKE128f.String(): "SLH-DSA-SHAKE-128f",
	OIDSLHDSASHAKE192s.String(): "SLH-DSA-SHAKE-192s",
	OIDSLHDSASHAKE192f.String(): "SLH-DSA-SHAKE-192f",
	OIDSLHDSASHAKE256s.String(): "SLH-DSA-SHAKE-256s",
	OIDSLHDSASHAKE256f.String(): "SLH-DSA-SHAKE-256f",
}

// AlgorithmName returns the display name of an algorithm OID.
// A miss is not an error: callers fall back to the dotted OID.
func AlgorithmName(oid asn1.ObjectIdentifier) (string, bool) {
	if len(oid) == 0 {
		return "", false
	}
	name, ok := algorithmNames[oid.String()]
	return name, ok
}

// FormatAlgorithm returns the display name of oid, or its dotted form when the
// OID is not in the registry.
func FormatAlgorithm(oid asn1.ObjectIdentifier) string {
	if name, ok := AlgorithmName(oid); ok {
		return name
	}
	return oid.String()
}

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}
