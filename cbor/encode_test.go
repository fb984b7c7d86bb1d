// Copyright 2023 Blink Labs Software
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
	"testing"

	"github.com/blinklabs-io/txbuilder/cbor"
)

type encodeTestDefinition struct {
	CborHex string
	Object  any
}

var encodeTests = []encodeTestDefinition{
	// Simple list of numbers
	{
		CborHex: "83010203",
		Object:  []any{1, 2, 3},
	},
	// Map keys are sorted
	{
		CborHex: "a201020304",
		Object:  map[uint]uint{3: 4, 1: 2},
	},
	// Tagged set
	{
		CborHex: "d90102820102",
		Object:  cbor.Set{1, 2},
	},
	// Wrapped CBOR
	{
		CborHex: "d81843820102",
		Object:  cbor.WrappedCbor{0x82, 0x01, 0x02},
	},
	// Indefinite-length list
	{
		CborHex: "9f0102ff",
		Object:  cbor.IndefLengthList{1, 2},
	},
	// Map keyed by bytestrings
	{
		CborHex: "a141ab01",
		Object:  map[cbor.ByteString]uint64{cbor.NewByteString([]byte{0xab}): 1},
	},
}

func TestEncode(t *testing.T) {
	for _, test := range encodeTests {
		cborData, err := cbor.Encode(test.Object)
		if err != nil {
			t.Fatalf("failed to encode object to CBOR: %s", err)
		}
		cborHex := hex.EncodeToString(cborData)
		if cborHex != test.CborHex {
			t.Fatalf(
				"object did not encode to expected CBOR\n  got: %s\n  wanted: %s",
				cborHex,
				test.CborHex,
			)
		}
	}
}

func TestDecodeIdFromList(t *testing.T) {
	testDefs := []struct {
		cborHex    string
		expectedId int
	}{
		{cborHex: "820105", expectedId: 1},
		{cborHex: "82186405", expectedId: 100},
		{cborHex: "9f0203ff", expectedId: 2},
	}
	for _, test := range testDefs {
		cborData, _ := hex.DecodeString(test.cborHex)
		id, err := cbor.DecodeIdFromList(cborData)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if id != test.expectedId {
			t.Fatalf("got ID %d, wanted %d", id, test.expectedId)
		}
	}
}
