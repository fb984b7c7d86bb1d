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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHash = "5cf2f9bc3e5c48a1a4e7b14a1cd8a7d2d4f7e1f6c4d1e1a1e4c5d3b2"

func TestNativeScriptJsonCbor(t *testing.T) {
	scriptJson := `{"type":"all","scripts":[{"type":"sig","keyHash":"` + testKeyHash + `"},{"type":"before","slot":"99"},{"type":"atLeast","required":1,"scripts":[{"type":"after","slot":"10"}]}]}`
	var script NativeScript
	require.NoError(t, json.Unmarshal([]byte(scriptJson), &script))
	cborData, err := script.MarshalCBOR()
	require.NoError(t, err)
	expected := "8201" + "83" +
		"8200581c" + testKeyHash +
		"820518" + "63" +
		"830301" + "81" + "82040a"
	assert.Equal(t, expected, hex.EncodeToString(cborData))
	// Decoding keeps the original bytes for hashing
	var decoded NativeScript
	require.NoError(t, decoded.UnmarshalCBOR(cborData))
	assert.Equal(t, script.Hash(), decoded.Hash())
	assert.Equal(
		t,
		Blake2b224Hash(slices.Concat([]byte{0}, cborData)),
		decoded.Hash(),
	)
	// JSON round trip
	reJson, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, scriptJson, string(reJson))
}

func TestNativeScriptJsonErrors(t *testing.T) {
	testDefs := []string{
		`{"type":"sig","keyHash":"abcd"}`,
		`{"type":"before","slot":"soon"}`,
		`{"type":"atLeast","scripts":[]}`,
		`{"type":"unknown"}`,
	}
	for _, tt := range testDefs {
		var script NativeScript
		assert.Error(t, json.Unmarshal([]byte(tt), &script), tt)
	}
}

func TestPlutusScriptHash(t *testing.T) {
	code := []byte{0x4e, 0x4d, 0x01, 0x00, 0x00}
	for _, lang := range []PlutusLanguage{PlutusLanguageV1, PlutusLanguageV2, PlutusLanguageV3} {
		script, err := NewPlutusScript(lang, code)
		require.NoError(t, err)
		assert.Equal(
			t,
			Blake2b224Hash(slices.Concat([]byte{byte(lang)}, code)),
			script.Hash(),
		)
	}
	_, err := NewPlutusScript(PlutusLanguage(9), code)
	assert.Error(t, err)
}

func TestNormalizePlutusScript(t *testing.T) {
	// flat program wrapped once
	single := []byte{0x43, 0x01, 0x00, 0x00}
	assert.Equal(t, single, NormalizePlutusScript(single))
	// and twice
	double := append([]byte{0x44}, single...)
	assert.Equal(t, single, NormalizePlutusScript(double))
}

func TestScriptRefRoundTrip(t *testing.T) {
	script := PlutusV2Script{0x43, 0x01, 0x00, 0x00}
	ref, err := NewScriptRef(script)
	require.NoError(t, err)
	cborData, err := ref.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, "d818478202"+"4443010000", hex.EncodeToString(cborData))
	parsed, err := ParseScriptRef(cborData)
	require.NoError(t, err)
	assert.Equal(t, uint(ScriptRefTypePlutusV2), parsed.Type)
	assert.Equal(t, script.Hash(), parsed.Script.Hash())
	// Unwrapped form is accepted too
	bare, err := hex.DecodeString("82024443010000")
	require.NoError(t, err)
	parsed, err = ParseScriptRef(bare)
	require.NoError(t, err)
	assert.Equal(t, script.Hash(), parsed.Script.Hash())
}

func TestParsePlutusLanguage(t *testing.T) {
	lang, err := ParsePlutusLanguage("V3")
	require.NoError(t, err)
	assert.Equal(t, PlutusLanguageV3, lang)
	assert.Equal(t, uint(2), lang.CostModelKey())
	_, err = ParsePlutusLanguage("V4")
	assert.Error(t, err)
}
