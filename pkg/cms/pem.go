package cms

import (
	"bytes"
	"encoding/pem"
)

// PEM block types accepted by Unarmor.
var pemTypes = map[string]bool{
	"PKCS7":               true,
	"CMS":                 true,
	"PKCS #7 SIGNED DATA": true,
}

// Unarmor returns the DER/BER payload of a PEM-armored ContentInfo. Input
// without a PEM header is returned unchanged.
func Unarmor(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("-----BEGIN ")) {
		return data, nil
	}

	block, _ := pem.Decode(trimmed)
	if block == nil {
		return nil, NewCMSError("unarmor", malformed("invalid PEM encoding"))
	}
	if !pemTypes[block.Type] {
		return nil, NewCMSError("unarmor", malformed("unexpected PEM block type %q", block.Type))
	}
	return block.Bytes, nil
}
