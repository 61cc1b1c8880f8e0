package sigs

import (
	"crypto/sha512"
	"encoding/binary"

	"github.com/okatau/tsm"
	"github.com/okatau/tsm/crypto"
	"github.com/okatau/tsm/errors"
)

// signPrefix versions the layout built by BuildSignBytes.
var signPrefix = []byte("tsm\x01")

// VerifyTxSignatures verifies every signature of tx and bumps the nonce of
// each signer. It returns the signer conditions in signature order.
func VerifyTxSignatures(db tsm.KVStore, tx SignedTx, chainID string) ([]tsm.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]tsm.Condition, 0, len(sigs))
	for i, sig := range sigs {
		cond, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, cond)
	}
	return signers, nil
}

// VerifySignature checks a single signature over payload. The signature
// sequence must equal the signer nonce stored in db, which is incremented
// on success.
func VerifySignature(db tsm.KVStore, sig *StdSignature, payload []byte, chainID string) (tsm.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	signed, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	b := NewBucket()
	user, err := b.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	if !user.Pubkey.Verify(signed, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := b.Save(db, user); err != nil {
		return nil, err
	}
	return user.Pubkey.Condition(), nil
}

// BuildSignBytes returns the sha512 digest of
//
//	prefix (4 bytes) | len(chainID) (1 byte) | chainID | seq (8 bytes, big endian) | payload
//
// Binding the chain id and the sequence makes a signature valid for one
// chain and one nonce only.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrapf(ErrInvalidSequence, "negative sequence %d", seq)
	}
	if !tsm.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id %q", chainID)
	}

	raw := make([]byte, 0, len(signPrefix)+1+len(chainID)+8+len(payload))
	raw = append(raw, signPrefix...)
	raw = append(raw, byte(len(chainID)))
	raw = append(raw, chainID...)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(seq))
	raw = append(raw, n[:]...)
	raw = append(raw, payload...)

	digest := sha512.Sum512(raw)
	return digest[:], nil
}

// BuildSignBytesTx is BuildSignBytes over the sign bytes of tx.
func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(payload, chainID, seq)
}

// SignTx signs tx for the given chain with seq as the signer nonce. Use
// NextNonce to find the sequence expected by the store.
func SignTx(key *crypto.PrivateKey, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	digest, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{Pubkey: key.PublicKey(), Signature: sig, Sequence: seq}, nil
}
