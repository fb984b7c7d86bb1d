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
	"errors"
	"testing"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/plutusdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataJSON(t *testing.T) {
	testDefs := []struct {
		name     string
		data     plutusdata.Data
		jsonData string
	}{
		{
			name:     "Integer",
			data:     plutusdata.NewIntegerFromInt64(-42),
			jsonData: `{"int":-42}`,
		},
		{
			name:     "BigInteger",
			data:     plutusdata.NewInteger(bigFromString("123456789012345678901234567890")),
			jsonData: `{"int":123456789012345678901234567890}`,
		},
		{
			name:     "Bytes",
			data:     plutusdata.NewByteString([]byte{0xca, 0xfe}),
			jsonData: `{"bytes":"cafe"}`,
		},
		{
			name:     "EmptyList",
			data:     plutusdata.NewList(),
			jsonData: `{"list":[]}`,
		},
		{
			name: "Map",
			data: plutusdata.NewMap(
				plutusdata.NewPair(
					plutusdata.NewByteString([]byte("a")),
					plutusdata.NewIntegerFromInt64(1),
				),
				plutusdata.NewPair(
					plutusdata.NewByteString([]byte("a")),
					plutusdata.NewIntegerFromInt64(2),
				),
			),
			jsonData: `{"map":[{"k":{"bytes":"61"},"v":{"int":1}},{"k":{"bytes":"61"},"v":{"int":2}}]}`,
		},
		{
			name: "Constructor",
			data: plutusdata.NewConstr(
				200,
				plutusdata.NewList(plutusdata.NewIntegerFromInt64(7)),
			),
			jsonData: `{"constructor":200,"fields":[{"list":[{"int":7}]}]}`,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			jsonData, err := plutusdata.MarshalJSON(testDef.data)
			require.NoError(t, err)
			assert.Equal(t, testDef.jsonData, string(jsonData))
			parsed, err := plutusdata.ParseJSON([]byte(testDef.jsonData))
			require.NoError(t, err)
			assertSameData(t, testDef.data, parsed)
		})
	}
}

func TestParseJSONWhitespace(t *testing.T) {
	parsed, err := plutusdata.ParseJSON([]byte(`{
		"constructor": 1,
		"fields": [ { "int": 5 }, { "bytes": "" } ]
	}`))
	require.NoError(t, err)
	assertSameData(
		t,
		plutusdata.ConStr1(
			plutusdata.NewIntegerFromInt64(5),
			plutusdata.NewByteString(nil),
		),
		parsed,
	)
}

func TestParseJSONErrors(t *testing.T) {
	testDefs := []struct {
		name     string
		jsonData string
	}{
		{name: "NotObject", jsonData: `[1]`},
		{name: "UnknownKey", jsonData: `{"string":"abc"}`},
		{name: "TwoKeys", jsonData: `{"int":1,"bytes":"00"}`},
		{name: "BadHex", jsonData: `{"bytes":"xyz"}`},
		{name: "BadInt", jsonData: `{"int":1.5}`},
		{name: "MissingFields", jsonData: `{"constructor":0,"list":[]}`},
		{name: "BadMapEntry", jsonData: `{"map":[{"k":{"int":1}}]}`},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := plutusdata.ParseJSON([]byte(testDef.jsonData))
			require.Error(t, err)
			assert.True(t, errors.Is(err, cbor.ErrEncoding))
		})
	}
}
