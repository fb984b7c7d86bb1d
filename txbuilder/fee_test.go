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

package txbuilder

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/plutusdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "addr_test1vpmwd5tk8quxnzxq46h8vztf00xtphrd7zd0al5ur5jsylg3r9v4l"

func TestReferenceScriptFee(t *testing.T) {
	testDefs := []struct {
		size     int
		expected uint64
	}{
		{size: 0, expected: 0},
		{size: 1000, expected: 15_000},
		{size: 25_600, expected: 384_000},
		{size: 30_000, expected: 463_200},
		// The third tier costs 21.6 per byte and the total is rounded down
		{size: 51_201, expected: 844_821},
		{size: 60_000, expected: 1_034_880},
	}
	for _, testDef := range testDefs {
		assert.Equal(
			t,
			testDef.expected,
			referenceScriptFee(testDef.size, 15).Uint64(),
			"size %d",
			testDef.size,
		)
	}
}

func TestCalculateFee(t *testing.T) {
	pparams := common.DefaultProtocolParameters()
	// 57.7 + 0.1442 rounds up
	assert.Equal(t, uint64(58), scriptFee(common.ExUnits{Memory: 1000, Steps: 2000}, pparams).Uint64())

	redeemers := []redeemerEntry{
		{redeemer: &Redeemer{ExUnits: common.ExUnits{Memory: 1000, Steps: 2000}}},
		{redeemer: &Redeemer{ExUnits: common.ExUnits{Memory: 1000, Steps: 2000}}},
	}
	assert.Equal(t, uint64(44*300+155381), calculateFee(300, nil, 0, pparams))
	assert.Equal(t, uint64(44*300+155381+2*58), calculateFee(300, redeemers, 0, pparams))
	assert.Equal(t, uint64(44*300+155381+15_000), calculateFee(300, nil, 1000, pparams))
}

func TestMinUtxoLovelace(t *testing.T) {
	pparams := common.DefaultProtocolParameters()
	testDefs := []Output{
		{Address: testAddress, Amount: []common.Asset{common.NewLovelace(0)}},
		{
			Address: testAddress,
			Amount: []common.Asset{
				common.NewLovelace(0),
				{Unit: strings.Repeat("ab", 28) + "41", Quantity: "1000"},
			},
		},
		{
			Address: testAddress,
			Amount:  []common.Asset{common.NewLovelace(5_000_000)},
			Datum: &OutputDatum{
				Type: OutputDatumInline,
				Data: plutusdata.JSONData{Content: `{"bytes": "` + strings.Repeat("00", 64) + `"}`},
			},
		},
	}
	var previous uint64
	for _, out := range testDefs {
		minLovelace, err := minUtxoLovelace(out, pparams)
		require.NoError(t, err)
		// The result is a fixed point of the size calculation
		out.Amount = setLovelace(out.Amount, minLovelace)
		outCbor, err := encodeOutput(out)
		require.NoError(t, err)
		assert.Equal(t, (minUtxoOverheadBytes+uint64(len(outCbor)))*pparams.CoinsPerUtxoSize, minLovelace)
		assert.Greater(t, minLovelace, previous)
		previous = minLovelace
	}
}

func TestLanguageViews(t *testing.T) {
	pparams := common.DefaultProtocolParameters()
	pparams.CostModels[common.PlutusLanguageV1] = []int64{1, 2}
	pparams.CostModels[common.PlutusLanguageV2] = []int64{1, 2}
	testDefs := []struct {
		name      string
		languages []common.PlutusLanguage
		expected  string
	}{
		{name: "V2", languages: []common.PlutusLanguage{common.PlutusLanguageV2}, expected: "a101820102"},
		{name: "V1", languages: []common.PlutusLanguage{common.PlutusLanguageV1}, expected: "a14100449f0102ff"},
		{
			name:      "V1AndV2",
			languages: []common.PlutusLanguage{common.PlutusLanguageV1, common.PlutusLanguageV2},
			expected:  "a2018201024100449f0102ff",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			languages := map[common.PlutusLanguage]bool{}
			for _, language := range testDef.languages {
				languages[language] = true
			}
			views, err := languageViews(languages, pparams)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, hex.EncodeToString(views))
		})
	}
	_, err := languageViews(map[common.PlutusLanguage]bool{common.PlutusLanguageV3: true}, pparams)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestScriptDataHash(t *testing.T) {
	pparams := common.DefaultProtocolParameters()
	hash, err := scriptDataHash(nil, nil, nil, pparams)
	require.NoError(t, err)
	assert.Nil(t, hash)

	datums := []byte{0x81, 0x00}
	hash, err = scriptDataHash(nil, datums, nil, pparams)
	require.NoError(t, err)
	require.NotNil(t, hash)
	assert.Equal(t, common.Blake2b256Hash([]byte{0xa0, 0x81, 0x00, 0xa0}), *hash)
}
