package cms

import (
	"bytes"
	"encoding/asn1"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/remiblancher/cmsinfo/internal/cmstest"
)

// =============================================================================
// Unit Tests: Dispatcher
// =============================================================================

func TestU_Parse_AllContentTypes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want ContentType
	}{
		{"Data", cmstest.Data([]byte("hello")), ContentTypeData},
		{"DigestedData", cmstest.DigestedData(cmstest.OIDSHA256, cmstest.OIDData), ContentTypeDigestedData},
		{"EncryptedData", cmstest.EncryptedData{}.Encode(), ContentTypeEncryptedData},
		{"SignedData", cmstest.SignedData{DigestAlgorithms: []asn1.ObjectIdentifier{cmstest.OIDSHA256}}.Encode(), ContentTypeSignedData},
		{"EnvelopedData", cmstest.EnvelopedData{}.Encode(), ContentTypeEnvelopedData},
		{"SignedAndEnvelopedData", cmstest.SignedAndEnvelopedData{}.Encode(), ContentTypeSignedAndEnvelopedData},
		{"AuthenticatedData", cmstest.AuthenticatedData{}.Encode(), ContentTypeAuthenticatedData},
		{"AuthEnvelopedData", cmstest.AuthEnvelopedData{}.Encode(), ContentTypeAuthEnvelopedData},
		{"CompressedData", cmstest.CompressedData(cmstest.OIDCompressionZLIB, cmstest.OIDData), ContentTypeCompressedData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := Parse(tt.data)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if content.ContentType() != tt.want {
				t.Errorf("ContentType() = %v, want %v", content.ContentType(), tt.want)
			}
			if content.ContentType().String() != tt.name {
				t.Errorf("String() = %q, want %q", content.ContentType().String(), tt.name)
			}
		})
	}
}

func TestU_Parse_DataWithoutContent(t *testing.T) {
	content, err := Parse(cmstest.ContentInfo(cmstest.OIDData, nil))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	data, ok := content.(*Data)
	if !ok {
		t.Fatalf("expected *Data, got %T", content)
	}
	if data.Length != 0 {
		t.Errorf("Length = %d, want 0", data.Length)
	}
}

func TestU_Parse_UnsupportedContentType(t *testing.T) {
	tstInfo := asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 4}
	tests := []struct {
		name string
		data []byte
	}{
		{"with content", cmstest.ContentInfo(tstInfo, []byte{0x30, 0x00})},
		{"without content", cmstest.ContentInfo(tstInfo, nil)},
		{"unreadable content", cmstest.ContentInfo(asn1.ObjectIdentifier{1, 2, 3, 4}, []byte{0x04, 0x01, 0xff})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrUnsupportedContentType) {
				t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
			}
			if errors.Is(err, ErrMalformed) {
				t.Error("unsupported content type must not match ErrMalformed")
			}
			var ue *UnsupportedContentTypeError
			if !errors.As(err, &ue) {
				t.Fatalf("expected *UnsupportedContentTypeError, got %T", err)
			}
		})
	}
}

func TestU_Parse_Malformed(t *testing.T) {
	valid := cmstest.EnvelopedData{}.Encode()
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a sequence", []byte{0x04, 0x01, 0x00}},
		{"empty sequence", []byte{0x30, 0x00}},
		{"integer instead of OID", []byte{0x30, 0x03, 0x02, 0x01, 0x01}},
		{"truncated", valid[:len(valid)-3]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x00)},
		{"missing content", cmstest.ContentInfo(cmstest.OIDSignedData, nil)},
		{"content not a sequence", cmstest.ContentInfo(cmstest.OIDSignedData, []byte{0x04, 0x00})},
		{"empty variant", cmstest.ContentInfo(cmstest.OIDEnvelopedData, []byte{0x30, 0x00})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			if errors.Is(err, ErrUnsupportedContentType) {
				t.Error("malformed input must not match ErrUnsupportedContentType")
			}
			var ce *CMSError
			if !errors.As(err, &ce) || ce.Op != "parse" {
				t.Errorf("expected CMSError with Op parse, got %v", err)
			}
		})
	}
}

func TestU_Parse_FieldErrorPosition(t *testing.T) {
	// SignedData whose digestAlgorithms field is an INTEGER.
	body := []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x05}
	_, err := Parse(cmstest.ContentInfo(cmstest.OIDSignedData, body))

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldError, got %v", err)
	}
	if fe.Structure != "SignedData" || fe.Field != "digestAlgorithms" || fe.Index != 1 {
		t.Errorf("FieldError = %+v, want SignedData/digestAlgorithms/1", fe)
	}
}

// =============================================================================
// Unit Tests: Variant Extractors
// =============================================================================

func TestU_Parse_SignedData_Signers(t *testing.T) {
	signing := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	sd := cmstest.SignedData{
		DigestAlgorithms: []asn1.ObjectIdentifier{cmstest.OIDSHA256, cmstest.OIDSHA384},
		EContent:         []byte("payload"),
		Certificates:     [][]byte{{0x30, 0x00}, {0x30, 0x00}},
		Signers: []cmstest.SignerInfo{
			{
				SID: cmstest.IssuerCN("Signer One", 1),
				SignedAttrs: cmstest.Attributes{
					cmstest.ContentTypeAttr(cmstest.OIDData),
					cmstest.MessageDigestAttr(cmstest.Placeholder),
					cmstest.SigningTimeAttr(signing),
				},
			},
			{
				Version:         3,
				SID:             cmstest.SKI([]byte{1, 2, 3, 4}),
				DigestAlgorithm: cmstest.OIDSHA384,
				UnsignedAttrs:   cmstest.Attributes{cmstest.MarkerAttr(cmstest.OIDCounterSignature)},
			},
		},
	}

	content, err := Parse(sd.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, ok := content.(*SignedData)
	if !ok {
		t.Fatalf("expected *SignedData, got %T", content)
	}

	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if len(got.DigestAlgorithms) != 2 || !got.DigestAlgorithms[0].Algorithm.Equal(OIDSHA256) {
		t.Errorf("DigestAlgorithms = %v", got.DigestAlgorithms)
	}
	if got.Detached {
		t.Error("Detached = true, want false")
	}
	if got.Certificates != 2 {
		t.Errorf("Certificates = %d, want 2", got.Certificates)
	}
	if len(got.SignerInfos) != 2 {
		t.Fatalf("len(SignerInfos) = %d, want 2", len(got.SignerInfos))
	}

	first := got.SignerInfos[0]
	if first.SID.IssuerAndSerial == nil {
		t.Fatal("first signer should use IssuerAndSerialNumber")
	}
	if first.SID.IssuerAndSerial.IssuerString() != "CN=Signer One" {
		t.Errorf("Issuer = %q", first.SID.IssuerAndSerial.IssuerString())
	}
	if first.SID.IssuerAndSerial.SerialNumber.Int64() != 1 {
		t.Errorf("Serial = %v", first.SID.IssuerAndSerial.SerialNumber)
	}
	if !first.SignedAttrs.Present || len(first.SignedAttrs.Attributes) != 3 {
		t.Fatalf("SignedAttrs = %+v", first.SignedAttrs)
	}
	if first.UnsignedAttrs.Present {
		t.Error("first signer should not have unsigned attributes")
	}
	attr, ok := first.SignedAttrs.Find(OIDSigningTime)
	if !ok {
		t.Fatal("signing-time attribute not found")
	}
	st, err := SigningTimeValue(attr.Values[0])
	if err != nil {
		t.Fatalf("SigningTimeValue() error = %v", err)
	}
	if !st.Equal(signing) {
		t.Errorf("signing time = %v, want %v", st, signing)
	}

	second := got.SignerInfos[1]
	if second.Version != 3 {
		t.Errorf("Version = %d, want 3", second.Version)
	}
	if !bytes.Equal(second.SID.SubjectKeyID, []byte{1, 2, 3, 4}) {
		t.Errorf("SubjectKeyID = %x", second.SID.SubjectKeyID)
	}
	if second.SignedAttrs.Present {
		t.Error("second signer should not have signed attributes")
	}
	if !second.UnsignedAttrs.Present {
		t.Error("second signer should have unsigned attributes")
	}
}

func TestU_Parse_SignedData_DetachedNoSigners(t *testing.T) {
	content, err := Parse(cmstest.SignedData{}.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	sd := content.(*SignedData)
	if !sd.Detached {
		t.Error("Detached = false, want true")
	}
	if len(sd.DigestAlgorithms) != 0 || len(sd.SignerInfos) != 0 {
		t.Errorf("expected empty sets, got %d algorithms and %d signers", len(sd.DigestAlgorithms), len(sd.SignerInfos))
	}
}

func TestU_Parse_EnvelopedData(t *testing.T) {
	env := cmstest.EnvelopedData{
		Version: 2,
		Recipients: [][]byte{
			cmstest.KeyTrans(cmstest.IssuerCN("Recipient CA", 42), cmstest.OIDRSAES),
			cmstest.KeyTrans(cmstest.SKI([]byte{9, 9}), asn1.ObjectIdentifier{1, 2, 3, 4, 5}),
		},
		Content: cmstest.EncryptedContent{
			Algorithm:  cmstest.OIDAES256CBC,
			Ciphertext: []byte("ciphertext"),
		},
		UnprotectedAttrs: cmstest.Attributes{cmstest.ContentTypeAttr(cmstest.OIDData)},
	}

	content, err := Parse(env.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := content.(*EnvelopedData)
	if got.Version != 2 {
		t.Errorf("Version = %d, want 2", got.Version)
	}
	if len(got.RecipientInfos) != 2 {
		t.Fatalf("len(RecipientInfos) = %d, want 2", len(got.RecipientInfos))
	}
	ri := got.RecipientInfos[0]
	if ri.Kind != RecipientKeyTrans || len(ri.IDs) != 1 || ri.IDs[0].IssuerAndSerial == nil {
		t.Fatalf("unexpected first recipient: %+v", ri)
	}
	if ri.IDs[0].IssuerAndSerial.SerialNumber.Int64() != 42 {
		t.Errorf("Serial = %v, want 42", ri.IDs[0].IssuerAndSerial.SerialNumber)
	}
	if !ri.KeyEncryptionAlgorithm.Algorithm.Equal(OIDRSAES) {
		t.Errorf("KeyEncryptionAlgorithm = %v", ri.KeyEncryptionAlgorithm.Algorithm)
	}
	if got.RecipientInfos[1].Version != 2 {
		t.Errorf("SKI recipient version = %d, want 2", got.RecipientInfos[1].Version)
	}
	eci := got.EncryptedContentInfo
	if !eci.ContentType.Equal(OIDData) || !eci.ContentEncryptionAlgorithm.Algorithm.Equal(OIDAES256CBC) {
		t.Errorf("EncryptedContentInfo = %+v", eci)
	}
	if eci.EncryptedContentLength != len("ciphertext") {
		t.Errorf("EncryptedContentLength = %d", eci.EncryptedContentLength)
	}
	if !got.UnprotectedAttrs.Present || len(got.UnprotectedAttrs.Attributes) != 1 {
		t.Errorf("UnprotectedAttrs = %+v", got.UnprotectedAttrs)
	}
}

func TestU_Parse_EnvelopedData_NoRecipients(t *testing.T) {
	content, err := Parse(cmstest.EnvelopedData{}.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := content.(*EnvelopedData)
	if len(got.RecipientInfos) != 0 {
		t.Errorf("len(RecipientInfos) = %d, want 0", len(got.RecipientInfos))
	}
	if got.UnprotectedAttrs.Present {
		t.Error("UnprotectedAttrs.Present = true, want false")
	}
}

func TestU_Parse_AuthenticatedData(t *testing.T) {
	ad := cmstest.AuthenticatedData{
		Recipients:      [][]byte{cmstest.KEK([]byte("kek-1"), cmstest.OIDAESWrap256)},
		DigestAlgorithm: cmstest.OIDSHA256,
		EContentType:    cmstest.OIDSignedData,
		AuthAttrs:       cmstest.Attributes{cmstest.ContentTypeAttr(cmstest.OIDSignedData)},
		UnauthAttrs:     cmstest.Attributes{},
	}

	content, err := Parse(ad.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := content.(*AuthenticatedData)
	if !got.MACAlgorithm.Algorithm.Equal(OIDHMACSHA256) {
		t.Errorf("MACAlgorithm = %v", got.MACAlgorithm.Algorithm)
	}
	if got.DigestAlgorithm == nil || !got.DigestAlgorithm.Algorithm.Equal(OIDSHA256) {
		t.Errorf("DigestAlgorithm = %v", got.DigestAlgorithm)
	}
	if !got.EncapContentType.Equal(OIDSignedData) {
		t.Errorf("EncapContentType = %v", got.EncapContentType)
	}
	if !got.AuthAttrs.Present || len(got.AuthAttrs.Attributes) != 1 {
		t.Errorf("AuthAttrs = %+v", got.AuthAttrs)
	}
	if !got.UnauthAttrs.Present || len(got.UnauthAttrs.Attributes) != 0 {
		t.Errorf("UnauthAttrs = %+v, want present and empty", got.UnauthAttrs)
	}
	if len(got.RecipientInfos) != 1 || got.RecipientInfos[0].Kind != RecipientKEK {
		t.Fatalf("RecipientInfos = %+v", got.RecipientInfos)
	}
	if string(got.RecipientInfos[0].KEKID) != "kek-1" {
		t.Errorf("KEKID = %q", got.RecipientInfos[0].KEKID)
	}
}

func TestU_Parse_AuthenticatedData_NoDigestAlgorithm(t *testing.T) {
	content, err := Parse(cmstest.AuthenticatedData{}.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := content.(*AuthenticatedData)
	if got.DigestAlgorithm != nil {
		t.Errorf("DigestAlgorithm = %v, want nil", got.DigestAlgorithm)
	}
	if !got.EncapContentType.Equal(OIDData) {
		t.Errorf("EncapContentType = %v", got.EncapContentType)
	}
	if got.AuthAttrs.Present || got.UnauthAttrs.Present {
		t.Error("attribute sets should be absent")
	}
}

func TestU_Parse_AuthEnvelopedData(t *testing.T) {
	aed := cmstest.AuthEnvelopedData{
		Recipients: [][]byte{cmstest.Password(cmstest.OIDAESWrap256)},
		AuthAttrs:  cmstest.Attributes{cmstest.ContentTypeAttr(cmstest.OIDData)},
	}
	content, err := Parse(aed.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := content.(*AuthEnvelopedData)
	if !got.AuthEncryptedContentInfo.ContentEncryptionAlgorithm.Algorithm.Equal(OIDAES256GCM) {
		t.Errorf("content encryption = %v", got.AuthEncryptedContentInfo.ContentEncryptionAlgorithm.Algorithm)
	}
	if !got.AuthAttrs.Present || got.UnauthAttrs.Present {
		t.Errorf("AuthAttrs.Present = %v, UnauthAttrs.Present = %v", got.AuthAttrs.Present, got.UnauthAttrs.Present)
	}
	if len(got.MAC) == 0 {
		t.Error("MAC should be set")
	}
	if got.RecipientInfos[0].Kind != RecipientPassword {
		t.Errorf("Kind = %v, want PasswordRecipientInfo", got.RecipientInfos[0].Kind)
	}
}

func TestU_Parse_SignedAndEnvelopedData(t *testing.T) {
	sed := cmstest.SignedAndEnvelopedData{
		Recipients:       [][]byte{cmstest.KeyTrans(cmstest.IssuerCN("R", 7), cmstest.OIDRSAES)},
		DigestAlgorithms: []asn1.ObjectIdentifier{cmstest.OIDSHA384},
		Signers:          []cmstest.SignerInfo{{SID: cmstest.IssuerCN("S", 8)}},
	}
	content, err := Parse(sed.Encode())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got := content.(*SignedAndEnvelopedData)
	if len(got.RecipientInfos) != 1 || len(got.SignerInfos) != 1 {
		t.Fatalf("recipients = %d, signers = %d", len(got.RecipientInfos), len(got.SignerInfos))
	}
	if !got.DigestAlgorithms[0].Algorithm.Equal(OIDSHA384) {
		t.Errorf("DigestAlgorithms[0] = %v", got.DigestAlgorithms[0].Algorithm)
	}
}

func TestU_Parse_EncryptedData_UnprotectedAttrForms(t *testing.T) {
	attrs := cmstest.Attributes{cmstest.ContentTypeAttr(cmstest.OIDData)}
	for _, universal := range []bool{false, true} {
		ed := cmstest.EncryptedData{UnprotectedAttrs: attrs, UniversalSet: universal}
		content, err := Parse(ed.Encode())
		if err != nil {
			t.Fatalf("universal=%v: Parse() error = %v", universal, err)
		}
		got := content.(*EncryptedData)
		if !got.UnprotectedAttrs.Present || len(got.UnprotectedAttrs.Attributes) != 1 {
			t.Errorf("universal=%v: UnprotectedAttrs = %+v", universal, got.UnprotectedAttrs)
		}
		if got.Version != 2 {
			t.Errorf("universal=%v: Version = %d, want 2", universal, got.Version)
		}
	}
}

func TestU_Parse_DigestedAndCompressed(t *testing.T) {
	content, err := Parse(cmstest.DigestedData(OIDSHA512, OIDData))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	dd := content.(*DigestedData)
	if !dd.DigestAlgorithm.Algorithm.Equal(OIDSHA512) || !dd.EncapContentType.Equal(OIDData) {
		t.Errorf("DigestedData = %+v", dd)
	}

	content, err = Parse(cmstest.CompressedData(OIDCompressionZLIB, OIDSignedData))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cd := content.(*CompressedData)
	if !cd.CompressionAlgorithm.Algorithm.Equal(OIDCompressionZLIB) || !cd.EncapContentType.Equal(OIDSignedData) {
		t.Errorf("CompressedData = %+v", cd)
	}
}

func TestU_Parse_Idempotent(t *testing.T) {
	data := cmstest.SignedData{
		DigestAlgorithms: []asn1.ObjectIdentifier{cmstest.OIDSHA256},
		Signers:          []cmstest.SignerInfo{{SID: cmstest.IssuerCN("Idem", 5)}},
	}.Encode()
	snapshot := append([]byte{}, data...)

	if _, err := Parse(data); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !bytes.Equal(data, snapshot) {
		t.Error("Parse modified its input")
	}
}

// =============================================================================
// Unit Tests: BER
// =============================================================================

// toIndefinite rewrites the outer ContentInfo SEQUENCE with an indefinite length.
func toIndefinite(t *testing.T, der []byte) []byte {
	t.Helper()
	if der[0] != 0x30 {
		t.Fatalf("expected SEQUENCE, got %#x", der[0])
	}
	var header int
	switch {
	case der[1] < 0x80:
		header = 2
	default:
		header = 2 + int(der[1]&0x7f)
	}
	out := []byte{0x30, 0x80}
	out = append(out, der[header:]...)
	return append(out, 0x00, 0x00)
}

func TestU_Parse_IndefiniteLength(t *testing.T) {
	der := cmstest.EnvelopedData{
		Recipients: [][]byte{cmstest.KeyTrans(cmstest.IssuerCN("BER", 3), cmstest.OIDRSAES)},
	}.Encode()

	content, err := Parse(toIndefinite(t, der))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if content.ContentType() != ContentTypeEnvelopedData {
		t.Errorf("ContentType() = %v", content.ContentType())
	}
}

func TestU_Parse_IndefiniteLength_Unsupported(t *testing.T) {
	der := cmstest.ContentInfo(asn1.ObjectIdentifier{1, 2, 3}, []byte{0x30, 0x00})
	_, err := Parse(toIndefinite(t, der))
	if !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
	}
}

func TestU_NormalizeBER_ConstructedOctetString(t *testing.T) {
	// OCTET STRING, constructed, indefinite: "ab" + "c"
	in := []byte{0x24, 0x80, 0x04, 0x02, 'a', 'b', 0x04, 0x01, 'c', 0x00, 0x00}
	got, err := NormalizeBER(in)
	if err != nil {
		t.Fatalf("NormalizeBER() error = %v", err)
	}
	want := []byte{0x04, 0x03, 'a', 'b', 'c'}
	if !bytes.Equal(got, want) {
		t.Errorf("NormalizeBER() = %x, want %x", got, want)
	}
}

func TestU_NormalizeBER_TrailingData(t *testing.T) {
	_, err := NormalizeBER([]byte{0x05, 0x00, 0x01})
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

// rawName encodes a Name with one organizationName RDN as a PrintableString,
// without checking the character set.
func rawName(org string) []byte {
	atv := append([]byte{0x06, 0x03, 0x55, 0x04, 0x0a, 0x13, byte(len(org))}, org...)
	seq := append([]byte{0x30, byte(len(atv))}, atv...)
	set := append([]byte{0x31, byte(len(seq))}, seq...)
	return append([]byte{0x30, byte(len(set))}, set...)
}

func TestU_Parse_IndefiniteLength_LaxPrintableString(t *testing.T) {
	tests := []struct {
		name string
		org  string
	}{
		{"strict", "ATT"},
		{"ampersand", "AT&T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := rawName(tt.org)
			der := cmstest.SignedData{
				Signers: []cmstest.SignerInfo{{SID: cmstest.IssuerSerial(issuer, big.NewInt(7))}},
			}.Encode()

			for name, data := range map[string][]byte{"DER": der, "BER": toIndefinite(t, der)} {
				content, err := Parse(data)
				if err != nil {
					t.Fatalf("%s: Parse() error = %v", name, err)
				}
				sd := content.(*SignedData)
				if len(sd.SignerInfos) != 1 || sd.SignerInfos[0].SID.IssuerAndSerial == nil {
					t.Fatalf("%s: expected one issuer+serial signer, got %+v", name, sd.SignerInfos)
				}
				if got := sd.SignerInfos[0].SID.IssuerAndSerial.RawIssuer; !bytes.Equal(got, issuer) {
					t.Errorf("%s: RawIssuer = %x, want %x", name, got, issuer)
				}
			}
		})
	}
}

func TestU_Parse_BERErrorReported(t *testing.T) {
	// Indefinite SEQUENCE without its end-of-contents octets.
	_, err := Parse([]byte{0x30, 0x80, 0x02, 0x01, 0x01})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing end-of-contents") {
		t.Errorf("error = %q, want the BER decode error", err)
	}
}

func TestU_NormalizeBER_NestedIndefinite(t *testing.T) {
	// SEQUENCE(indef) { [0](indef) { OCTET STRING(indef) { "a", "b" } }, [31] "x" }
	in := []byte{
		0x30, 0x80,
		0xa0, 0x80,
		0x24, 0x80, 0x04, 0x01, 'a', 0x04, 0x01, 'b', 0x00, 0x00,
		0x00, 0x00,
		0x9f, 0x1f, 0x01, 'x',
		0x00, 0x00,
	}
	got, err := NormalizeBER(in)
	if err != nil {
		t.Fatalf("NormalizeBER() error = %v", err)
	}
	want := []byte{0x30, 0x0a, 0xa0, 0x04, 0x04, 0x02, 'a', 'b', 0x9f, 0x1f, 0x01, 'x'}
	if !bytes.Equal(got, want) {
		t.Errorf("NormalizeBER() = %x, want %x", got, want)
	}
}

func TestU_NormalizeBER_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"indefinite primitive", []byte{0x04, 0x80, 0x00, 0x00}},
		{"truncated content", []byte{0x04, 0x05, 0x01}},
		{"child overruns parent", []byte{0x30, 0x02, 0x04, 0x02, 0x00, 0x00}},
		{"end-of-contents in definite", []byte{0x30, 0x02, 0x00, 0x00}},
		{"bare end-of-contents", []byte{0x00, 0x00}},
		{"too deep", bytes.Repeat([]byte{0x30, 0x80}, maxBERDepth+2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NormalizeBER(tt.data); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

// =============================================================================
// Unit Tests: Errors
// =============================================================================

func TestU_CMSError_Error(t *testing.T) {
	e := &CMSError{Op: "parse", Err: ErrMalformed}
	if e.Error() != "cms parse: malformed CMS input" {
		t.Errorf("Error() = %q", e.Error())
	}
	if !errors.Is(e, ErrMalformed) {
		t.Error("CMSError should unwrap to ErrMalformed")
	}
}

func TestU_FieldError_Error(t *testing.T) {
	fe := &FieldError{Structure: "SignerInfo", Field: "sid", Index: 1, Reason: "missing element"}
	if fe.Error() != "SignerInfo field 1 (sid): missing element" {
		t.Errorf("Error() = %q", fe.Error())
	}
	if !errors.Is(fe, ErrMalformed) {
		t.Error("FieldError should match ErrMalformed")
	}
}
