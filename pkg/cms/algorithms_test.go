package cms

import (
	"encoding/asn1"
	"testing"
)

func TestU_AlgorithmName(t *testing.T) {
	tests := []struct {
		oid  asn1.ObjectIdentifier
		want string
	}{
		{OIDAES256CBC, "AES-256-CBC"},
		{OIDAES128GCM, "AES-128-GCM"},
		{OIDDESEDE3CBC, "DES-EDE3-CBC"},
		{OIDRSAES, "RSA"},
		{OIDSHA256, "SHA-256"},
		{OIDHMACSHA256, "HMAC-SHA256"},
		{OIDMLKEM768, "ML-KEM-768"},
		{OIDMLDSA65, "ML-DSA-65"},
		{OIDSLHDSASHAKE256f, "SLH-DSA-SHAKE-256f"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, ok := AlgorithmName(tt.oid)
			if !ok {
				t.Fatalf("AlgorithmName(%v) not found", tt.oid)
			}
			if got != tt.want {
				t.Errorf("AlgorithmName(%v) = %q, want %q", tt.oid, got, tt.want)
			}
		})
	}
}

func TestU_AlgorithmName_Miss(t *testing.T) {
	if _, ok := AlgorithmName(asn1.ObjectIdentifier{1, 2, 3, 4, 5}); ok {
		t.Error("unexpected registry hit")
	}
	if _, ok := AlgorithmName(nil); ok {
		t.Error("nil OID should not resolve")
	}
	// Compression is rendered by the CompressedData report, not the registry.
	if _, ok := AlgorithmName(OIDCompressionZLIB); ok {
		t.Error("ZLIB should not be in the algorithm registry")
	}
}

func TestU_FormatAlgorithm_FallsBackToOID(t *testing.T) {
	if got := FormatAlgorithm(asn1.ObjectIdentifier{1, 2, 3, 4, 5}); got != "1.2.3.4.5" {
		t.Errorf("FormatAlgorithm() = %q, want 1.2.3.4.5", got)
	}
	if got := FormatAlgorithm(OIDSHA384); got != "SHA-384" {
		t.Errorf("FormatAlgorithm() = %q, want SHA-384", got)
	}
}

func TestU_ContentType_OIDRoundTrip(t *testing.T) {
	for ct := ContentTypeData; ct <= ContentTypeCompressedData; ct++ {
		if got := ContentTypeOf(ct.OID()); got != ct {
			t.Errorf("ContentTypeOf(%v.OID()) = %v", ct, got)
		}
	}
	if ContentTypeUnknown.OID() != nil {
		t.Error("ContentTypeUnknown.OID() should be nil")
	}
	if ContentTypeUnknown.String() != "Unknown" {
		t.Errorf("ContentTypeUnknown.String() = %q", ContentTypeUnknown.String())
	}
}
