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

package plutusdata_test

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/internal/test"
	"github.com/blinklabs-io/txbuilder/plutusdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bigFromString(s string) *big.Int {
	ret, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad big integer: " + s)
	}
	return ret
}

func assertSameData(t *testing.T, expected plutusdata.Data, actual plutusdata.Data) {
	t.Helper()
	expectedCbor, err := plutusdata.Encode(expected)
	require.NoError(t, err)
	actualCbor, err := plutusdata.Encode(actual)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(expectedCbor), hex.EncodeToString(actualCbor))
}

var dataCborTestDefs = []struct {
	name    string
	data    plutusdata.Data
	cborHex string
}{
	{
		name:    "UnitConstructor",
		data:    plutusdata.ConStr0(),
		cborHex: "d87980",
	},
	{
		name: "ConstructorWithFields",
		data: plutusdata.ConStr0(
			plutusdata.NewIntegerFromInt64(1),
			plutusdata.NewByteString([]byte{0xca, 0xfe}),
		),
		cborHex: "d8799f0142cafeff",
	},
	{
		name:    "Alternative6",
		data:    plutusdata.NewConstr(6),
		cborHex: "d87f80",
	},
	{
		name:    "Alternative7",
		data:    plutusdata.NewConstr(7),
		cborHex: "d9050080",
	},
	{
		name:    "Alternative127",
		data:    plutusdata.NewConstr(127),
		cborHex: "d9057880",
	},
	{
		name:    "Alternative128",
		data:    plutusdata.NewConstr(128, plutusdata.NewIntegerFromInt64(1)),
		cborHex: "d8668218809f01ff",
	},
	{
		name:    "BoolTrue",
		data:    plutusdata.NewBool(true),
		cborHex: "d87a80",
	},
	{
		name:    "EmptyList",
		data:    plutusdata.NewList(),
		cborHex: "80",
	},
	{
		name: "List",
		data: plutusdata.NewList(
			plutusdata.NewIntegerFromInt64(1),
			plutusdata.NewIntegerFromInt64(2),
		),
		cborHex: "9f0102ff",
	},
	{
		name: "Map",
		data: plutusdata.NewMap(
			plutusdata.NewPair(
				plutusdata.NewIntegerFromInt64(1),
				plutusdata.NewByteString([]byte{0xab}),
			),
		),
		cborHex: "a10141ab",
	},
	{
		name:    "NegativeInteger",
		data:    plutusdata.NewIntegerFromInt64(-500),
		cborHex: "3901f3",
	},
	{
		name:    "MaxUint64",
		data:    plutusdata.NewInteger(bigFromString("18446744073709551615")),
		cborHex: "1bffffffffffffffff",
	},
	{
		name:    "MinNegative64",
		data:    plutusdata.NewInteger(bigFromString("-18446744073709551616")),
		cborHex: "3bffffffffffffffff",
	},
	{
		name:    "PositiveBignum",
		data:    plutusdata.NewInteger(bigFromString("18446744073709551616")),
		cborHex: "c249010000000000000000",
	},
	{
		name:    "NegativeBignum",
		data:    plutusdata.NewInteger(bigFromString("-18446744073709551617")),
		cborHex: "c349010000000000000000",
	},
	{
		name:    "ChunkedByteString",
		data:    plutusdata.NewByteString([]byte(strings.Repeat("a", 65))),
		cborHex: "5f5840" + strings.Repeat("61", 64) + "4161ff",
	},
	{
		name:    "ByteStringAtChunkSize",
		data:    plutusdata.NewByteString([]byte(strings.Repeat("a", 64))),
		cborHex: "5840" + strings.Repeat("61", 64),
	},
}

func TestDataEncode(t *testing.T) {
	for _, testDef := range dataCborTestDefs {
		t.Run(testDef.name, func(t *testing.T) {
			cborData, err := plutusdata.Encode(testDef.data)
			require.NoError(t, err)
			assert.Equal(t, testDef.cborHex, hex.EncodeToString(cborData))
		})
	}
}

func TestDataDecode(t *testing.T) {
	for _, testDef := range dataCborTestDefs {
		t.Run(testDef.name, func(t *testing.T) {
			decoded, err := plutusdata.Decode(test.DecodeHexString(testDef.cborHex))
			require.NoError(t, err)
			assertSameData(t, testDef.data, decoded)
		})
	}
}

func TestDataDecodeDefiniteFields(t *testing.T) {
	// Definite-length fields are accepted and re-encoded in canonical form
	decoded, err := plutusdata.Decode(test.DecodeHexString("d879820102"))
	require.NoError(t, err)
	constr, ok := decoded.(plutusdata.Constr)
	require.True(t, ok)
	assert.Equal(t, uint64(0), constr.Alternative)
	assert.Len(t, constr.Fields, 2)
	cborData, err := plutusdata.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, "d8799f0102ff", hex.EncodeToString(cborData))
}

func TestDataDecodeErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		cborHex string
	}{
		{name: "TextString", cborHex: "6161"},
		{name: "UnknownTag", cborHex: "d81e80"},
		{name: "BadExtendedConstructor", cborHex: "d8668101"},
		{name: "Truncated", cborHex: "9f01"},
		{name: "Float", cborHex: "fb3ff8000000000000"},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := plutusdata.Decode(test.DecodeHexString(testDef.cborHex))
			require.Error(t, err)
			assert.True(t, errors.Is(err, cbor.ErrEncoding))
		})
	}
}

func TestNewByteStringFromHexInvalid(t *testing.T) {
	_, err := plutusdata.NewByteStringFromHex("zz")
	require.Error(t, err)
	var encErr *cbor.EncodingError
	assert.True(t, errors.As(err, &encErr))
}

func TestResolveDataHash(t *testing.T) {
	testDefs := []struct {
		data plutusdata.Data
		hash string
	}{
		{
			data: plutusdata.ConStr0(),
			hash: "923918e403bf43c34b4ef6b48eb2ee04babed17320d8d1b9ff9ad086e86f44ec",
		},
		{
			data: plutusdata.ConStr0(
				plutusdata.NewIntegerFromInt64(1),
				plutusdata.NewByteString([]byte{0xca, 0xfe}),
			),
			hash: "a4017657d598af031bd261f53cb4f1d312b988f2ae24d8380a85d26dd5f6425f",
		},
	}
	for _, testDef := range testDefs {
		hash, err := plutusdata.ResolveDataHash(testDef.data)
		require.NoError(t, err)
		assert.Equal(t, testDef.hash, hash)
	}
}

func TestDataMarshalCBOREmbedded(t *testing.T) {
	cborData, err := cbor.EncodeCanonical(
		[]any{plutusdata.ConStr0(), uint64(1)},
		cbor.CanonicalOptions{},
	)
	require.NoError(t, err)
	assert.Equal(t, "82d8798001", hex.EncodeToString(cborData))
}
