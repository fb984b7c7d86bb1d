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

package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	Blake2b256Size = 32
	Blake2b224Size = 28
	Blake2b160Size = 20
)

type Blake2b256 [Blake2b256Size]byte

func NewBlake2b256(data []byte) Blake2b256 {
	b := Blake2b256{}
	copy(b[:], data)
	return b
}

// NewBlake2b256FromHex parses a hex-encoded 32-byte hash
func NewBlake2b256FromHex(hexStr string) (Blake2b256, error) {
	tmpBytes, err := decodeFixedHex(hexStr, Blake2b256Size)
	if err != nil {
		return Blake2b256{}, err
	}
	return NewBlake2b256(tmpBytes), nil
}

func (b Blake2b256) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b256) Bytes() []byte {
	return b[:]
}

func (b Blake2b256) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b Blake2b256) MarshalCBOR() ([]byte, error) {
	// Ensure we always encode a full-sized bytestring, even if the hash is zero-valued
	hashBytes := make([]byte, Blake2b256Size)
	copy(hashBytes, b[:])
	return cbor.Encode(hashBytes)
}

// Blake2b256Hash generates a Blake2b-256 hash from the provided data
func Blake2b256Hash(data []byte) Blake2b256 {
	tmpHash, err := blake2b.New(Blake2b256Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b256(tmpHash.Sum(nil))
}

type Blake2b224 [Blake2b224Size]byte

func NewBlake2b224(data []byte) Blake2b224 {
	b := Blake2b224{}
	copy(b[:], data)
	return b
}

// NewBlake2b224FromHex parses a hex-encoded 28-byte hash, such as a policy ID or key hash
func NewBlake2b224FromHex(hexStr string) (Blake2b224, error) {
	tmpBytes, err := decodeFixedHex(hexStr, Blake2b224Size)
	if err != nil {
		return Blake2b224{}, err
	}
	return NewBlake2b224(tmpBytes), nil
}

func (b Blake2b224) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b224) Bytes() []byte {
	return b[:]
}

func (b Blake2b224) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b Blake2b224) MarshalCBOR() ([]byte, error) {
	// Ensure we always encode a full-sized bytestring, even if the hash is zero-valued
	hashBytes := make([]byte, Blake2b224Size)
	copy(hashBytes, b[:])
	return cbor.Encode(hashBytes)
}

func (b Blake2b224) Bech32(prefix string) string {
	return encodeBech32(prefix, b[:])
}

// Blake2b224Hash generates a Blake2b-224 hash from the provided data
func Blake2b224Hash(data []byte) Blake2b224 {
	tmpHash, err := blake2b.New(Blake2b224Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b224(tmpHash.Sum(nil))
}

type Blake2b160 [Blake2b160Size]byte

func NewBlake2b160(data []byte) Blake2b160 {
	b := Blake2b160{}
	copy(b[:], data)
	return b
}

func (b Blake2b160) String() string {
	return hex.EncodeToString(b[:])
}

func (b Blake2b160) Bytes() []byte {
	return b[:]
}

// Blake2b160Hash generates a Blake2b-160 hash from the provided data
func Blake2b160Hash(data []byte) Blake2b160 {
	tmpHash, err := blake2b.New(Blake2b160Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error generating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(data)
	return Blake2b160(tmpHash.Sum(nil))
}

// ExUnits is the execution budget of a single script invocation
type ExUnits struct {
	cbor.StructAsArray
	Memory uint64 `json:"mem"`
	Steps  uint64 `json:"steps"`
}

// AssetFingerprint is the CIP-14 user-facing identifier of a native asset
type AssetFingerprint struct {
	policyId  []byte
	assetName []byte
}

func NewAssetFingerprint(policyId []byte, assetName []byte) AssetFingerprint {
	return AssetFingerprint{
		policyId:  policyId,
		assetName: assetName,
	}
}

// NewAssetFingerprintFromUnit builds the fingerprint for a policy ID + asset name hex unit
func NewAssetFingerprintFromUnit(unit string) (AssetFingerprint, error) {
	policyId, assetName, err := SplitUnit(unit)
	if err != nil {
		return AssetFingerprint{}, err
	}
	return NewAssetFingerprint(policyId.Bytes(), assetName), nil
}

func (a AssetFingerprint) Hash() Blake2b160 {
	tmpHash, err := blake2b.New(Blake2b160Size, nil)
	if err != nil {
		panic(
			fmt.Sprintf(
				"unexpected error creating empty blake2b hash: %s",
				err,
			),
		)
	}
	tmpHash.Write(a.policyId)
	tmpHash.Write(a.assetName)
	return NewBlake2b160(tmpHash.Sum(nil))
}

func (a AssetFingerprint) String() string {
	return encodeBech32("asset", a.Hash().Bytes())
}

// ParseAssetFingerprint decodes a bech32 asset fingerprint back to the hash it carries
func ParseAssetFingerprint(fingerprint string) (Blake2b160, error) {
	hrp, tmpData, err := decodeBech32(fingerprint)
	if err != nil {
		return Blake2b160{}, err
	}
	if hrp != "asset" {
		return Blake2b160{}, fmt.Errorf(
			"unexpected asset fingerprint prefix: %s",
			hrp,
		)
	}
	if len(tmpData) != Blake2b160Size {
		return Blake2b160{}, fmt.Errorf(
			"invalid asset fingerprint length: %d",
			len(tmpData),
		)
	}
	return NewBlake2b160(tmpData), nil
}

type PoolId [Blake2b224Size]byte

// NewPoolId accepts either a bech32 pool ID or a hex-encoded pool key hash
func NewPoolId(poolId string) (PoolId, error) {
	var p PoolId
	if tmpHash, err := NewBlake2b224FromHex(poolId); err == nil {
		return PoolId(tmpHash), nil
	}
	_, decoded, err := decodeBech32(poolId)
	if err != nil {
		return p, err
	}
	if len(decoded) != len(p) {
		return p, fmt.Errorf("invalid pool ID length: %d", len(decoded))
	}
	p = PoolId(decoded)
	return p, nil
}

func (p PoolId) String() string {
	return Blake2b224(p).Bech32("pool")
}

func (p PoolId) MarshalCBOR() ([]byte, error) {
	return Blake2b224(p).MarshalCBOR()
}

func encodeBech32(prefix string, data []byte) string {
	// Convert data to base32 and encode as bech32
	convData, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		panic(
			fmt.Sprintf("unexpected error converting data to base32: %s", err),
		)
	}
	encoded, err := bech32.Encode(prefix, convData)
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding data as bech32: %s", err))
	}
	return encoded
}

func decodeBech32(value string) (string, []byte, error) {
	hrp, tmpData, err := bech32.DecodeNoLimit(value)
	if err != nil {
		return "", nil, err
	}
	decoded, err := bech32.ConvertBits(tmpData, 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, decoded, nil
}

func decodeFixedHex(hexStr string, size int) ([]byte, error) {
	tmpBytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, err
	}
	if len(tmpBytes) != size {
		return nil, fmt.Errorf(
			"invalid hash length: expected %d bytes, got %d",
			size,
			len(tmpBytes),
		)
	}
	return tmpBytes, nil
}
