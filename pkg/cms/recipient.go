package cms

import (
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// recipientInfos reads a RecipientInfos SET.
//
//	RecipientInfo ::= CHOICE {
//	  ktri KeyTransRecipientInfo,
//	  kari [1] KeyAgreeRecipientInfo,
//	  kekri [2] KEKRecipientInfo,
//	  pwri [3] PasswordRecipientInfo,
//	  ori [4] OtherRecipientInfo }
func (r *fieldReader) recipientInfos(field string) ([]RecipientInfo, error) {
	body, err := r.element(field, cbasn1.SET)
	if err != nil {
		return nil, r.fail(field, "expected SET OF RecipientInfo")
	}
	var out []RecipientInfo
	for !body.Empty() {
		var el cryptobyte.String
		var tag cbasn1.Tag
		if !body.ReadAnyASN1(&el, &tag) {
			r.index--
			return nil, r.fail(field, "truncated RecipientInfo")
		}
		ri, err := parseRecipientInfo(el, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, ri)
	}
	return out, nil
}

func parseRecipientInfo(body cryptobyte.String, tag cbasn1.Tag) (RecipientInfo, error) {
	switch tag {
	case cbasn1.SEQUENCE:
		return parseKeyTrans(body)
	case tagCtx1:
		return parseKeyAgree(body)
	case tagCtx2:
		return parseKEK(body)
	case tagCtx3:
		return parsePassword(body)
	case tagCtx4:
		return parseOther(body)
	default:
		return RecipientInfo{}, malformed("unknown RecipientInfo choice tag %#x", uint8(tag))
	}
}

// parseKeyTrans reads the contents of a KeyTransRecipientInfo.
//
//	KeyTransRecipientInfo ::= SEQUENCE {
//	  version CMSVersion,
//	  rid RecipientIdentifier,
//	  keyEncryptionAlgorithm KeyEncryptionAlgorithmIdentifier,
//	  encryptedKey EncryptedKey }
func parseKeyTrans(body cryptobyte.String) (RecipientInfo, error) {
	ri := RecipientInfo{Kind: RecipientKeyTrans}
	r := newFieldReader("KeyTransRecipientInfo", body)
	var err error
	if ri.Version, err = r.version(); err != nil {
		return ri, err
	}
	id, err := r.identifier("rid")
	if err != nil {
		return ri, err
	}
	ri.IDs = []Identifier{id}
	if ri.KeyEncryptionAlgorithm, err = r.algorithm("keyEncryptionAlgorithm"); err != nil {
		return ri, err
	}
	if _, err = r.octetString("encryptedKey"); err != nil {
		return ri, err
	}
	return ri, r.done()
}

// parseKeyAgree reads the contents of a KeyAgreeRecipientInfo.
//
//	KeyAgreeRecipientInfo ::= SEQUENCE {
//	  version CMSVersion,
//	  originator [0] EXPLICIT OriginatorIdentifierOrKey,
//	  ukm [1] EXPLICIT UserKeyingMaterial OPTIONAL,
//	  keyEncryptionAlgorithm KeyEncryptionAlgorithmIdentifier,
//	  recipientEncryptedKeys RecipientEncryptedKeys }
func parseKeyAgree(body cryptobyte.String) (RecipientInfo, error) {
	ri := RecipientInfo{Kind: RecipientKeyAgree}
	r := newFieldReader("KeyAgreeRecipientInfo", body)
	var err error
	if ri.Version, err = r.version(); err != nil {
		return ri, err
	}
	if _, err = r.element("originator", tagCtx0); err != nil {
		return ri, err
	}
	if _, _, err = r.optional("ukm", tagCtx1); err != nil {
		return ri, err
	}
	if ri.KeyEncryptionAlgorithm, err = r.algorithm("keyEncryptionAlgorithm"); err != nil {
		return ri, err
	}
	keys, err := r.element("recipientEncryptedKeys", cbasn1.SEQUENCE)
	if err != nil {
		return ri, err
	}
	for !keys.Empty() {
		var rek cryptobyte.String
		if !keys.ReadASN1(&rek, cbasn1.SEQUENCE) {
			return ri, malformed("invalid RecipientEncryptedKey")
		}
		id, err := parseRecipientEncryptedKey(rek)
		if err != nil {
			return ri, err
		}
		ri.IDs = append(ri.IDs, id)
	}
	return ri, r.done()
}

// parseRecipientEncryptedKey reads the contents of a RecipientEncryptedKey.
//
//	RecipientEncryptedKey ::= SEQUENCE {
//	  rid KeyAgreeRecipientIdentifier,
//	  encryptedKey EncryptedKey }
//	KeyAgreeRecipientIdentifier ::= CHOICE {
//	  issuerAndSerialNumber IssuerAndSerialNumber,
//	  rKeyId [0] IMPLICIT RecipientKeyIdentifier }
func parseRecipientEncryptedKey(body cryptobyte.String) (Identifier, error) {
	var id Identifier
	r := newFieldReader("RecipientEncryptedKey", body)
	switch {
	case r.peek(cbasn1.SEQUENCE):
		ias, _ := r.element("rid", cbasn1.SEQUENCE)
		v, err := parseIssuerAndSerial(ias)
		if err != nil {
			return id, r.wrap("rid", err)
		}
		id.IssuerAndSerial = v
	case r.peek(tagCtx0):
		rkid, _ := r.element("rid", tagCtx0)
		var ski cryptobyte.String
		if !rkid.ReadASN1(&ski, cbasn1.OCTET_STRING) {
			return id, r.fail("rid", "RecipientKeyIdentifier without subjectKeyIdentifier")
		}
		id.SubjectKeyID = ski
	default:
		return id, r.fail("rid", "expected KeyAgreeRecipientIdentifier")
	}
	if _, err := r.octetString("encryptedKey"); err != nil {
		return id, err
	}
	return id, r.done()
}

// parseKEK reads the contents of a KEKRecipientInfo.
//
//	KEKRecipientInfo ::= SEQUENCE {
//	  version CMSVersion,
//	  kekid KEKIdentifier,
//	  keyEncryptionAlgorithm KeyEncryptionAlgorithmIdentifier,
//	  encryptedKey EncryptedKey }
func parseKEK(body cryptobyte.String) (RecipientInfo, error) {
	ri := RecipientInfo{Kind: RecipientKEK}
	r := newFieldReader("KEKRecipientInfo", body)
	var err error
	if ri.Version, err = r.version(); err != nil {
		return ri, err
	}
	kekid, err := r.element("kekid", cbasn1.SEQUENCE)
	if err != nil {
		return ri, err
	}
	var keyID cryptobyte.String
	if !kekid.ReadASN1(&keyID, cbasn1.OCTET_STRING) {
		return ri, r.fail("kekid", "KEKIdentifier without keyIdentifier")
	}
	ri.KEKID = keyID
	if ri.KeyEncryptionAlgorithm, err = r.algorithm("keyEncryptionAlgorithm"); err != nil {
		return ri, err
	}
	if _, err = r.octetString("encryptedKey"); err != nil {
		return ri, err
	}
	return ri, r.done()
}

// parsePassword reads the contents of a PasswordRecipientInfo.
//
//	PasswordRecipientInfo ::= SEQUENCE {
//	  version CMSVersion,
//	  keyDerivationAlgorithm [0] KeyDerivationAlgorithmIdentifier OPTIONAL,
//	  keyEncryptionAlgorithm KeyEncryptionAlgorithmIdentifier,
//	  encryptedKey EncryptedKey }
func parsePassword(body cryptobyte.String) (RecipientInfo, error) {
	ri := RecipientInfo{Kind: RecipientPassword}
	r := newFieldReader("PasswordRecipientInfo", body)
	var err error
	if ri.Version, err = r.version(); err != nil {
		return ri, err
	}
	if _, _, err = r.optional("keyDerivationAlgorithm", tagCtx0); err != nil {
		return ri, err
	}
	if ri.KeyEncryptionAlgorithm, err = r.algorithm("keyEncryptionAlgorithm"); err != nil {
		return ri, err
	}
	if _, err = r.octetString("encryptedKey"); err != nil {
		return ri, err
	}
	return ri, r.done()
}

// parseOther reads the contents of an OtherRecipientInfo.
//
//	OtherRecipientInfo ::= SEQUENCE {
//	  oriType OBJECT IDENTIFIER,
//	  oriValue ANY DEFINED BY oriType }
//
// KEMRecipientInfo (RFC 9629) values are decoded further.
func parseOther(body cryptobyte.String) (RecipientInfo, error) {
	ri := RecipientInfo{Kind: RecipientOther}
	r := newFieldReader("OtherRecipientInfo", body)
	var err error
	if ri.OtherType, err = r.oid("oriType"); err != nil {
		return ri, err
	}
	if !ri.OtherType.Equal(OIDOriKEM) {
		if _, _, err = r.raw("oriValue"); err != nil {
			return ri, err
		}
		return ri, r.done()
	}
	kemri, err := r.element("oriValue", cbasn1.SEQUENCE)
	if err != nil {
		return ri, err
	}
	if err := parseKEMRecipientInfo(kemri, &ri); err != nil {
		return ri, err
	}
	return ri, r.done()
}

// parseKEMRecipientInfo reads the contents of a KEMRecipientInfo.
//
//	KEMRecipientInfo ::= SEQUENCE {
//	  version CMSVersion,
//	  rid RecipientIdentifier,
//	  kem KEMAlgorithmIdentifier,
//	  kemct OCTET STRING,
//	  kdf KeyDerivationAlgorithmIdentifier,
//	  kekLength INTEGER (1..65535),
//	  ukm [0] EXPLICIT UserKeyingMaterial OPTIONAL,
//	  wrap KeyEncryptionAlgorithmIdentifier,
//	  encryptedKey EncryptedKey }
func parseKEMRecipientInfo(body cryptobyte.String, ri *RecipientInfo) error {
	r := newFieldReader("KEMRecipientInfo", body)
	var err error
	if ri.Version, err = r.version(); err != nil {
		return err
	}
	id, err := r.identifier("rid")
	if err != nil {
		return err
	}
	ri.IDs = []Identifier{id}
	kem, err := r.algorithm("kem")
	if err != nil {
		return err
	}
	ri.KEMAlgorithm = &kem
	if _, err = r.octetString("kemct"); err != nil {
		return err
	}
	if _, err = r.algorithm("kdf"); err != nil {
		return err
	}
	if _, err = r.integer("kekLength"); err != nil {
		return err
	}
	if _, _, err = r.optional("ukm", tagCtx0); err != nil {
		return err
	}
	if ri.KeyEncryptionAlgorithm, err = r.algorithm("wrap"); err != nil {
		return err
	}
	if _, err = r.octetString("encryptedKey"); err != nil {
		return err
	}
	return r.done()
}
