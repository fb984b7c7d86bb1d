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

package plutusdata

import (
	"encoding/hex"
	"math/big"

	"github.com/blinklabs-io/txbuilder/cbor"
)

// Data is a Plutus Data value. The set of implementations is closed
type Data interface {
	isData()
}

type Integer struct {
	Value *big.Int
}

type ByteString struct {
	Value []byte
}

type List struct {
	Items []Data
}

// Pair is a single map entry
type Pair struct {
	Key   Data
	Value Data
}

// Map is an ordered list of pairs. Keys are not required to be unique
type Map struct {
	Pairs []Pair
}

// Constr is a constructor application
type Constr struct {
	Alternative uint64
	Fields      []Data
}

func (Integer) isData()    {}
func (ByteString) isData() {}
func (List) isData()       {}
func (Map) isData()        {}
func (Constr) isData()     {}

func NewInteger(value *big.Int) Integer {
	if value == nil {
		return Integer{Value: new(big.Int)}
	}
	return Integer{Value: new(big.Int).Set(value)}
}

func NewIntegerFromInt64(value int64) Integer {
	return Integer{Value: big.NewInt(value)}
}

func NewByteString(value []byte) ByteString {
	ret := make([]byte, len(value))
	copy(ret, value)
	return ByteString{Value: ret}
}

// NewByteStringFromHex returns an EncodingError when the input is not valid hex
func NewByteStringFromHex(hexStr string) (ByteString, error) {
	tmpBytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return ByteString{}, &cbor.EncodingError{
			Reason: "invalid byte string hex " + quoteShort(hexStr),
			Err:    err,
		}
	}
	return ByteString{Value: tmpBytes}, nil
}

func NewList(items ...Data) List {
	if items == nil {
		items = []Data{}
	}
	return List{Items: items}
}

func NewPair(key Data, value Data) Pair {
	return Pair{Key: key, Value: value}
}

func NewMap(pairs ...Pair) Map {
	if pairs == nil {
		pairs = []Pair{}
	}
	return Map{Pairs: pairs}
}

func NewConstr(alternative uint64, fields ...Data) Constr {
	if fields == nil {
		fields = []Data{}
	}
	return Constr{Alternative: alternative, Fields: fields}
}

func ConStr0(fields ...Data) Constr { return NewConstr(0, fields...) }

func ConStr1(fields ...Data) Constr { return NewConstr(1, fields...) }

func ConStr2(fields ...Data) Constr { return NewConstr(2, fields...) }

// NewBool maps false to alternative 0 and true to alternative 1, both without fields
func NewBool(value bool) Constr {
	if value {
		return ConStr1()
	}
	return ConStr0()
}

// Some wraps a value as the first alternative of an optional
func Some(value Data) Constr {
	return ConStr0(value)
}

// None is the empty optional
func None() Constr {
	return ConStr1()
}

// Tuple is a two element list
func Tuple(a Data, b Data) List {
	return NewList(a, b)
}

func quoteShort(s string) string {
	if len(s) > 32 {
		s = s[:32] + "..."
	}
	return `"` + s + `"`
}
