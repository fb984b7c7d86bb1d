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
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkLookup(t *testing.T) {
	assert.Equal(t, NetworkPreprod, NetworkByName("preprod"))
	assert.Equal(t, NetworkMainnet, NetworkByNetworkMagic(764824073))
	assert.Equal(t, NetworkInvalid, NetworkByName("nope"))
}

func TestSlotConversion(t *testing.T) {
	testDefs := []struct {
		network Network
		unixMs  int64
		slot    uint64
		epoch   uint64
	}{
		{network: NetworkMainnet, unixMs: 1596059091000, slot: 4492800, epoch: 208},
		{network: NetworkMainnet, unixMs: 1596059092500, slot: 4492801, epoch: 208},
		{network: NetworkPreprod, unixMs: 1655769600000 + 432000*1000, slot: 86400 + 432000, epoch: 5},
		{network: NetworkPreview, unixMs: 1666656000000 + 86400*1000*3, slot: 86400 * 3, epoch: 3},
	}
	for _, tt := range testDefs {
		slot, err := tt.network.UnixTimeToSlot(time.UnixMilli(tt.unixMs))
		require.NoError(t, err)
		assert.Equal(t, tt.slot, slot)
		epoch, err := tt.network.SlotToEpoch(slot)
		require.NoError(t, err)
		assert.Equal(t, tt.epoch, epoch)
		start, err := tt.network.SlotToUnixTime(slot)
		require.NoError(t, err)
		assert.LessOrEqual(t, start.UnixMilli(), tt.unixMs)
		assert.Less(t, tt.unixMs-start.UnixMilli(), int64(1000))
	}
	_, err := NetworkPreprod.UnixTimeToSlot(time.UnixMilli(0))
	assert.True(t, errors.Is(err, ErrSlotBeforeZero))
	_, err = NetworkMainnet.SlotToUnixTime(1)
	assert.True(t, errors.Is(err, ErrSlotBeforeZero))
}

func TestProtocolParametersJson(t *testing.T) {
	pparams := DefaultProtocolParameters()
	pparams.CostModels[PlutusLanguageV2] = []int64{1, 2, 3}
	jsonData, err := json.Marshal(pparams)
	require.NoError(t, err)
	var decoded ProtocolParameters
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	assert.Equal(t, 0, pparams.PriceMem.Cmp(decoded.PriceMem.Rat))
	assert.Equal(t, 0, pparams.PriceStep.Cmp(decoded.PriceStep.Rat))
	assert.Equal(t, []int64{1, 2, 3}, decoded.CostModels[PlutusLanguageV2])
	assert.Equal(t, pparams.MinFeeA, decoded.MinFeeA)
	assert.Equal(t, uint64(44*16384+155381), pparams.MaxTxFee())
}

func TestRationalUnmarshal(t *testing.T) {
	testDefs := []struct {
		input    string
		expected *big.Rat
	}{
		{input: `0.0577`, expected: big.NewRat(577, 10000)},
		{input: `"0.0000721"`, expected: big.NewRat(721, 10000000)},
		{input: `"577/10000"`, expected: big.NewRat(577, 10000)},
		{input: `{"numerator":3,"denominator":4}`, expected: big.NewRat(3, 4)},
	}
	for _, tt := range testDefs {
		var r Rational
		require.NoError(t, json.Unmarshal([]byte(tt.input), &r), tt.input)
		assert.Equal(t, 0, tt.expected.Cmp(r.Rat), tt.input)
	}
	var r Rational
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &r))
}

func TestProtocolParametersClone(t *testing.T) {
	pparams := DefaultProtocolParameters()
	pparams.CostModels[PlutusLanguageV1] = []int64{1}
	clone := pparams.Clone()
	clone.CostModels[PlutusLanguageV1][0] = 9
	clone.PriceMem.SetInt64(1)
	assert.Equal(t, int64(1), pparams.CostModels[PlutusLanguageV1][0])
	assert.Equal(t, 0, pparams.PriceMem.Cmp(big.NewRat(577, 10000)))
}

func TestTransactionInput(t *testing.T) {
	ref := "ABCD000000000000000000000000000000000000000000000000000000000000#3"
	input, err := ParseTransactionInput(ref)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), input.OutputIndex)
	assert.Equal(t, "abcd000000000000000000000000000000000000000000000000000000000000#3", input.String())
	cborData, err := input.MarshalCBOR()
	require.NoError(t, err)
	assert.Len(t, cborData, 1+2+32+1)
	for _, bad := range []string{"abcd#1", "nohash", input.TxHash + "#x"} {
		_, err := ParseTransactionInput(bad)
		assert.Error(t, err, bad)
	}
	a := NewTransactionInput(input.TxHash, 1)
	b := NewTransactionInput(input.TxHash, 0)
	assert.Equal(t, 1, CompareTransactionInputs(a, b))
}

func TestUTxOValue(t *testing.T) {
	utxo := UTxO{
		Input: NewTransactionInput("00", 0),
		Output: TransactionOutput{
			Amount: []Asset{NewLovelace(5000000), {Unit: testUnitA, Quantity: "1"}},
		},
	}
	assert.Equal(t, uint64(5000000), utxo.Lovelace())
	assert.Equal(t, "00#0", utxo.Key())
	_, err := utxo.ScriptRefBytes()
	assert.Error(t, err)
}
