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

package common_test

import (
	"encoding/json"
	"testing"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRationalUnmarshalJSON(t *testing.T) {
	testDefs := []struct {
		input    string
		expected string
	}{
		{input: `0.0577`, expected: "577/10000"},
		{input: `"0.0000721"`, expected: "721/10000000"},
		{input: `"577/10000"`, expected: "577/10000"},
		{input: `{"numerator": 3, "denominator": 2}`, expected: "3/2"},
		{input: `15`, expected: "15"},
	}
	for _, testDef := range testDefs {
		var r common.Rational
		require.NoError(t, json.Unmarshal([]byte(testDef.input), &r), "input %s", testDef.input)
		assert.Equal(t, testDef.expected, r.RatString())
	}
	for _, input := range []string{`"abc"`, `{"numerator": 1, "denominator": 0}`, `true`} {
		var r common.Rational
		assert.Error(t, json.Unmarshal([]byte(input), &r), "input %s", input)
	}
}

func TestProtocolParametersJSON(t *testing.T) {
	pparams := common.DefaultProtocolParameters()
	pparams.CostModels[common.PlutusLanguageV2] = []int64{1, 2, 3}
	jsonData, err := json.Marshal(pparams)
	require.NoError(t, err)
	var decoded common.ProtocolParameters
	require.NoError(t, json.Unmarshal(jsonData, &decoded))
	assert.Equal(t, pparams.MinFeeA, decoded.MinFeeA)
	assert.Equal(t, 0, pparams.PriceMem.Cmp(decoded.PriceMem.Rat))
	assert.Equal(t, []int64{1, 2, 3}, decoded.CostModels[common.PlutusLanguageV2])
}

func TestProtocolParametersClone(t *testing.T) {
	pparams := common.DefaultProtocolParameters()
	pparams.CostModels[common.PlutusLanguageV1] = []int64{1}
	clone := pparams.Clone()
	clone.CostModels[common.PlutusLanguageV1][0] = 2
	clone.PriceMem.SetInt64(1)
	assert.Equal(t, int64(1), pparams.CostModels[common.PlutusLanguageV1][0])
	assert.Equal(t, "577/10000", pparams.PriceMem.RatString())
	assert.Equal(t, uint64(44*16384+155381), pparams.MaxTxFee())
}
