// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import (
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	signingKeySize         = 32
	extendedSigningKeySize = 64
)

// SigningKey is a payment or stake signing key. Normal keys hold a 32 byte
// seed; extended (BIP32-Ed25519) keys hold the 64 byte scalar and nonce
// prefix
type SigningKey struct {
	seed     []byte
	extended []byte
	pub      []byte
}

// ParseSigningKey accepts a key as hex, as CBOR hex in the text envelope
// format, or as bech32 (ed25519_sk, ed25519e_sk, xprv).
//
// 32 byte keys are normal keys. 64, 96 (with chain code) and 128 (with
// public key and chain code) byte keys are extended keys
func ParseSigningKey(key string) (*SigningKey, error) {
	keyBytes, err := signingKeyBytes(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSigningKey, err)
	}
	switch len(keyBytes) {
	case signingKeySize:
		privKey := ed25519.NewKeyFromSeed(keyBytes)
		return &SigningKey{
			seed: keyBytes,
			pub:  []byte(privKey.Public().(ed25519.PublicKey)),
		}, nil
	case extendedSigningKeySize, 96, 128:
		ret := &SigningKey{
			extended: keyBytes[:extendedSigningKeySize],
		}
		scalar, err := ret.scalar()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSigningKey, err)
		}
		ret.pub = new(edwards25519.Point).ScalarBaseMult(scalar).Bytes()
		return ret, nil
	}
	return nil, fmt.Errorf("%w: unexpected key length %d", ErrInvalidSigningKey, len(keyBytes))
}

func signingKeyBytes(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "ed25519") || strings.HasPrefix(key, "xprv") {
		_, tmpData, err := bech32.DecodeNoLimit(key)
		if err != nil {
			return nil, err
		}
		return bech32.ConvertBits(tmpData, 5, 8, false)
	}
	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		return nil, err
	}
	// Text envelope keys wrap the key in a CBOR byte string
	if len(keyBytes) > 2 && keyBytes[0] == 0x58 && int(keyBytes[1]) == len(keyBytes)-2 {
		var tmpBytes []byte
		if _, err := cbor.Decode(keyBytes, &tmpBytes); err != nil {
			return nil, err
		}
		return tmpBytes, nil
	}
	return keyBytes, nil
}

func (k *SigningKey) scalar() (*edwards25519.Scalar, error) {
	// The clamped scalar is not reduced, so it is widened and reduced mod l
	wide := make([]byte, 64)
	copy(wide, k.extended[:32])
	return edwards25519.NewScalar().SetUniformBytes(wide)
}

// VerificationKey returns the 32 byte public key
func (k *SigningKey) VerificationKey() []byte {
	return k.pub
}

// KeyHash returns the blake2b-224 hash of the public key
func (k *SigningKey) KeyHash() common.Blake2b224 {
	return common.Blake2b224Hash(k.pub)
}

// Sign returns the ed25519 signature of msg
func (k *SigningKey) Sign(msg []byte) ([]byte, error) {
	if k.seed != nil {
		return ed25519.Sign(ed25519.NewKeyFromSeed(k.seed), msg), nil
	}
	s, err := k.scalar()
	if err != nil {
		return nil, err
	}
	h := sha512.New()
	h.Write(k.extended[32:])
	h.Write(msg)
	r, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		return nil, err
	}
	rPoint := new(edwards25519.Point).ScalarBaseMult(r).Bytes()
	h.Reset()
	h.Write(rPoint)
	h.Write(k.pub)
	h.Write(msg)
	challenge, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		return nil, err
	}
	sig := edwards25519.NewScalar().MultiplyAdd(challenge, s, r)
	return append(rPoint, sig.Bytes()...), nil
}

// KeySigner adds a vkey witness for each of its keys. The transaction body
// bytes are never modified
type KeySigner struct {
	keys []*SigningKey
}

func NewKeySigner(keys ...string) (*KeySigner, error) {
	ret := &KeySigner{}
	for idx, key := range keys {
		tmpKey, err := ParseSigningKey(key)
		if err != nil {
			return nil, fmt.Errorf("signing key %d: %w", idx, err)
		}
		ret.keys = append(ret.keys, tmpKey)
	}
	return ret, nil
}

// KeyHashes returns the key hash of every signing key
func (s *KeySigner) KeyHashes() []common.Blake2b224 {
	ret := make([]common.Blake2b224, 0, len(s.keys))
	for _, key := range s.keys {
		ret = append(ret, key.KeyHash())
	}
	return ret
}

func (s *KeySigner) SignTx(ctx context.Context, txCbor string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tx, err := decodeRawTransaction(txCbor)
	if err != nil {
		return "", err
	}
	witnesses, tagged, err := decodeVkeyWitnesses(tx.witnesses[txWitnessKeyVkeys])
	if err != nil {
		return "", err
	}
	txHash := tx.hash()
	for _, key := range s.keys {
		sig, err := key.Sign(txHash.Bytes())
		if err != nil {
			return "", err
		}
		witnesses = addVkeyWitness(witnesses, key.VerificationKey(), sig)
	}
	var tmpWitnesses any = witnesses
	if tagged {
		tmpWitnesses = cbor.Tag{Number: cbor.CborTagSet, Content: witnesses}
	}
	witnessBytes, err := cbor.EncodeCanonical(tmpWitnesses, cbor.CanonicalOptions{})
	if err != nil {
		return "", err
	}
	tx.witnesses[txWitnessKeyVkeys] = witnessBytes
	return tx.encode()
}

// decodeVkeyWitnesses returns the existing witnesses and whether they use the
// tagged set form. An absent entry uses the tagged form
func decodeVkeyWitnesses(raw cbor.RawMessage) ([]any, bool, error) {
	if len(raw) == 0 {
		return []any{}, true, nil
	}
	tmp, err := cbor.DecodeCanonical(raw)
	if err != nil {
		return nil, false, InvalidTransactionError{Reason: "vkey witnesses", Err: err}
	}
	tagged := false
	if tag, ok := tmp.(cbor.Tag); ok && tag.Number == cbor.CborTagSet {
		tagged = true
		tmp = tag.Content
	}
	items, ok := tmp.([]any)
	if !ok {
		return nil, false, InvalidTransactionError{Reason: "vkey witnesses", Err: errUnsupportedVkeyFormat}
	}
	return items, tagged, nil
}

func addVkeyWitness(witnesses []any, vkey []byte, sig []byte) []any {
	for idx, item := range witnesses {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			continue
		}
		if existing, ok := pair[0].([]byte); ok && string(existing) == string(vkey) {
			witnesses[idx] = []any{vkey, sig}
			return witnesses
		}
	}
	return append(witnesses, []any{vkey, sig})
}
