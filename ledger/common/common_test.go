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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetFingerprint(t *testing.T) {
	testDefs := []struct {
		policyIdHex         string
		assetNameHex        string
		expectedFingerprint string
	}{
		{
			policyIdHex:         "7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373",
			assetNameHex:        "",
			expectedFingerprint: "asset1rjklcrnsdzqp65wjgrg55sy9723kw09mlgvlc3",
		},
		{
			policyIdHex:         "29a8fb8318718bd756124f0c144f56d4b4579dc5edf2dd42d669ac61",
			assetNameHex:        "6675726e697368613239686e",
			expectedFingerprint: "asset1jdu2xcrwlqsjqqjger6kj2szddz8dcpvcg4ksz",
		},
		{
			policyIdHex:         "eaf8042c1d8203b1c585822f54ec32c4c1bb4d3914603e2cca20bbd5",
			assetNameHex:        "426f7764757261436f6e63657074733638",
			expectedFingerprint: "asset1kp7hdhqc7chmyqvtqrsljfdrdt6jz8mg5culpe",
		},
		{
			policyIdHex:         "cf78aeb9736e8aa94ce8fab44da86b522fa9b1c56336b92a28420525",
			assetNameHex:        "363438346330393264363164373033656236333233346461",
			expectedFingerprint: "asset1rx3cnlsvh3udka56wyqyed3u695zd5q2jck2yd",
		},
	}
	for _, tt := range testDefs {
		policyIdBytes, err := hex.DecodeString(tt.policyIdHex)
		require.NoError(t, err)
		assetNameBytes, err := hex.DecodeString(tt.assetNameHex)
		require.NoError(t, err)
		fp := NewAssetFingerprint(policyIdBytes, assetNameBytes)
		assert.Equal(t, tt.expectedFingerprint, fp.String())
		// The bech32 form decodes back to the hash it was built from
		parsed, err := ParseAssetFingerprint(fp.String())
		require.NoError(t, err)
		assert.Equal(t, fp.Hash(), parsed)
		// Same result when built from a unit string
		fromUnit, err := NewAssetFingerprintFromUnit(tt.policyIdHex + tt.assetNameHex)
		require.NoError(t, err)
		assert.Equal(t, tt.expectedFingerprint, fromUnit.String())
	}
}

func TestParseAssetFingerprintErrors(t *testing.T) {
	_, err := ParseAssetFingerprint("pool1pu5jlj4q9w9jlxeu370a3c9myx47md5j5m2str0naunn2q3lkdy")
	assert.Error(t, err)
	_, err = ParseAssetFingerprint("asset1notvalid")
	assert.Error(t, err)
}

func TestBlake2bHashes(t *testing.T) {
	// Hashes of the empty input
	assert.Equal(
		t,
		"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8",
		Blake2b256Hash(nil).String(),
	)
	assert.Equal(
		t,
		"836cc68931c2e4e3e838602eca1902591d216837bafddfe6f0c8cb07",
		Blake2b224Hash(nil).String(),
	)
	assert.Len(t, Blake2b160Hash([]byte("abc")).Bytes(), Blake2b160Size)
}

func TestBlake2bCborAlwaysFullSize(t *testing.T) {
	cborData, err := Blake2b224{}.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, "581c"+hex.EncodeToString(make([]byte, 28)), hex.EncodeToString(cborData))
}

func TestNewBlake2bFromHex(t *testing.T) {
	_, err := NewBlake2b224FromHex("abcd")
	assert.Error(t, err)
	_, err = NewBlake2b256FromHex("zz")
	assert.Error(t, err)
	h, err := NewBlake2b224FromHex("7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373")
	require.NoError(t, err)
	assert.Equal(t, "7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373", h.String())
}

func TestPoolId(t *testing.T) {
	hashHex := "0f292fcaa02b8b2f9b3c8f9fd8e0bb21abedb692a6d5058df3ef2735"
	fromHex, err := NewPoolId(hashHex)
	require.NoError(t, err)
	fromBech32, err := NewPoolId(fromHex.String())
	require.NoError(t, err)
	assert.Equal(t, fromHex, fromBech32)
	assert.Equal(t, "pool1", fromHex.String()[:5])
}
