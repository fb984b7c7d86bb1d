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

package provider_test

import (
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/provider"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeed = strings.Repeat("0f", 32)

// expandSeed returns the clamped scalar and nonce prefix ed25519 derives from a seed
func expandSeed(seed []byte) []byte {
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	return h[:]
}

func TestParseSigningKeyFormats(t *testing.T) {
	seed, err := hex.DecodeString(testSeed)
	require.NoError(t, err)
	expectedPub := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	convData, err := bech32.ConvertBits(seed, 8, 5, true)
	require.NoError(t, err)
	bech32Key, err := bech32.Encode("ed25519_sk", convData)
	require.NoError(t, err)
	extended := hex.EncodeToString(expandSeed(seed))
	testDefs := []struct {
		name string
		key  string
	}{
		{name: "Hex", key: testSeed},
		{name: "TextEnvelope", key: "5820" + testSeed},
		{name: "Bech32", key: bech32Key},
		{name: "Extended", key: extended},
		{name: "ExtendedTextEnvelope", key: "5840" + extended},
		{name: "ExtendedWithChainCode", key: extended + strings.Repeat("00", 32)},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			key, err := provider.ParseSigningKey(testDef.key)
			require.NoError(t, err)
			assert.Equal(t, []byte(expectedPub), key.VerificationKey())
			assert.Equal(t, common.Blake2b224Hash(expectedPub), key.KeyHash())
		})
	}
}

func TestParseSigningKeyInvalid(t *testing.T) {
	for _, key := range []string{"", "zz", "0011", strings.Repeat("00", 48)} {
		_, err := provider.ParseSigningKey(key)
		require.Error(t, err)
		assert.True(t, errors.Is(err, provider.ErrInvalidSigningKey))
	}
}

func TestExtendedKeySignatureMatchesEd25519(t *testing.T) {
	seed, err := hex.DecodeString(testSeed)
	require.NoError(t, err)
	normal, err := provider.ParseSigningKey(testSeed)
	require.NoError(t, err)
	extended, err := provider.ParseSigningKey(hex.EncodeToString(expandSeed(seed)))
	require.NoError(t, err)
	msg := []byte("transaction body hash")
	normalSig, err := normal.Sign(msg)
	require.NoError(t, err)
	extendedSig, err := extended.Sign(msg)
	require.NoError(t, err)
	assert.Equal(t, normalSig, extendedSig)
	assert.True(t, ed25519.Verify(extended.VerificationKey(), msg, extendedSig))
}

func TestKeySignerSignTx(t *testing.T) {
	// [{0: [], 1: [], 2: 0}, {}, true, null]
	txHex := "84a3008001800200a0f5f6"
	body, err := hex.DecodeString("a3008001800200")
	require.NoError(t, err)
	txHash := common.Blake2b256Hash(body)

	seed, err := hex.DecodeString(testSeed)
	require.NoError(t, err)
	signer, err := provider.NewKeySigner(testSeed, hex.EncodeToString(expandSeed(seed)))
	require.NoError(t, err)
	require.Len(t, signer.KeyHashes(), 2)

	signedHex, err := signer.SignTx(context.Background(), txHex)
	require.NoError(t, err)
	signed, err := hex.DecodeString(signedHex)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(signedHex, "84a3008001800200"), "body bytes must be unchanged")

	var parts []cbor.RawMessage
	_, err = cbor.Decode(signed, &parts)
	require.NoError(t, err)
	require.Len(t, parts, 4)
	witnessSet, err := cbor.DecodeCanonical(parts[1])
	require.NoError(t, err)
	witnessMap, ok := witnessSet.(cbor.OrderedMap)
	require.True(t, ok)
	require.Len(t, witnessMap, 1)
	assert.Equal(t, int64(0), witnessMap[0].Key)
	tag, ok := witnessMap[0].Value.(cbor.Tag)
	require.True(t, ok)
	assert.Equal(t, uint64(cbor.CborTagSet), tag.Number)
	vkeys, ok := tag.Content.([]any)
	require.True(t, ok)
	// Both keys share a public key, so a single witness remains
	require.Len(t, vkeys, 1)
	witness := vkeys[0].([]any)
	assert.True(t, ed25519.Verify(witness[0].([]byte), txHash.Bytes(), witness[1].([]byte)))

	// Signing again keeps one witness per key
	resignedHex, err := signer.SignTx(context.Background(), signedHex)
	require.NoError(t, err)
	assert.Equal(t, signedHex, resignedHex)
}

func TestKeySignerKeepsOtherWitnesses(t *testing.T) {
	// [{}, {0: [[h'01', h'02']], 5: {}}, true, null]
	txHex := "84a0a20081824101410205a0f5f6"
	signer, err := provider.NewKeySigner(testSeed)
	require.NoError(t, err)
	signedHex, err := signer.SignTx(context.Background(), txHex)
	require.NoError(t, err)
	signed, err := hex.DecodeString(signedHex)
	require.NoError(t, err)
	var parts []cbor.RawMessage
	_, err = cbor.Decode(signed, &parts)
	require.NoError(t, err)
	witnessSet, err := cbor.DecodeCanonical(parts[1])
	require.NoError(t, err)
	witnessMap := witnessSet.(cbor.OrderedMap)
	require.Len(t, witnessMap, 2)
	// The untagged list form is kept
	vkeys, ok := witnessMap[0].Value.([]any)
	require.True(t, ok)
	assert.Len(t, vkeys, 2)
	assert.Equal(t, int64(5), witnessMap[1].Key)
}
