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

package cbor_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var constructorTestDefs = []struct {
	name    string
	cborHex string
	tag     uint64
	fields  []any
}{
	{
		name:    "alternative 1 (tag 122)",
		cborHex: "D87A83010203",
		tag:     1,
		fields:  []any{uint64(1), uint64(2), uint64(3)},
	},
	{
		name:    "alternative 6 (tag 127)",
		cborHex: "D87F80",
		tag:     6,
		fields:  []any{},
	},
	{
		name:    "alternative 7 (tag 1280)",
		cborHex: "D9050080",
		tag:     7,
		fields:  []any{},
	},
	{
		name:    "alternative 15 (tag 1288)",
		cborHex: "D9050883030405",
		tag:     15,
		fields:  []any{uint64(3), uint64(4), uint64(5)},
	},
	{
		name:    "alternative 127 (tag 1400)",
		cborHex: "D9057880",
		tag:     127,
		fields:  []any{},
	},
	{
		name:    "alternative 128 (tag 102)",
		cborHex: "D86682188080",
		tag:     128,
		fields:  []any{},
	},
	{
		name:    "alternative 999 (tag 102)",
		cborHex: "D866821903E7820607",
		tag:     999,
		fields:  []any{uint64(6), uint64(7)},
	},
}

func TestConstructorEncoderEncode(t *testing.T) {
	for _, tt := range constructorTestDefs {
		t.Run(tt.name, func(t *testing.T) {
			ce := cbor.NewConstructorEncoder(tt.tag, tt.fields)
			assert.Equal(t, tt.tag, ce.Tag())

			encoded, err := cbor.Encode(&ce)
			require.NoError(t, err)

			assert.Equal(t,
				strings.ToLower(tt.cborHex),
				hex.EncodeToString(encoded),
			)
		})
	}
}

func TestAlternativeTagBoundaries(t *testing.T) {
	testDefs := []struct {
		alt      uint64
		tagNum   uint64
		wrapped  bool
		compacts bool
	}{
		{alt: 0, tagNum: 121, compacts: true},
		{alt: 6, tagNum: 127, compacts: true},
		{alt: 7, tagNum: 1280, compacts: true},
		{alt: 127, tagNum: 1400, compacts: true},
		{alt: 128, tagNum: 102, wrapped: true},
		{alt: 1 << 40, tagNum: 102, wrapped: true},
	}
	for _, test := range testDefs {
		tagNum, wrapped := cbor.AlternativeToTag(test.alt)
		assert.Equal(t, test.tagNum, tagNum)
		assert.Equal(t, test.wrapped, wrapped)
		assert.True(t, cbor.IsAlternativeTag(tagNum))
		alt, ok := cbor.TagToAlternative(tagNum)
		assert.Equal(t, test.compacts, ok)
		if ok {
			assert.Equal(t, test.alt, alt)
		}
	}
	assert.False(t, cbor.IsAlternativeTag(101))
	assert.False(t, cbor.IsAlternativeTag(1401))
}
