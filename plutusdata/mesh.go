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
	"fmt"
	"math/big"

	"github.com/blinklabs-io/txbuilder/cbor"
)

// MeshConstr is a constructor whose fields use the native value syntax
type MeshConstr struct {
	Alternative uint64
	Fields      []any
}

type MeshPair struct {
	Key   any
	Value any
}

// MeshMap is an ordered map in the native value syntax
type MeshMap []MeshPair

// FromMesh converts native Go values to Data.
//
// Integers of any width and *big.Int become Integer. A string becomes
// ByteString from its hex decoding when it is valid hex, otherwise from its
// UTF-8 bytes. []byte becomes ByteString, bool becomes the corresponding
// constructor, and []any becomes List. Data values are passed through
func FromMesh(v any) (Data, error) {
	switch val := v.(type) {
	case Data:
		return val, nil
	case int:
		return NewIntegerFromInt64(int64(val)), nil
	case int8:
		return NewIntegerFromInt64(int64(val)), nil
	case int16:
		return NewIntegerFromInt64(int64(val)), nil
	case int32:
		return NewIntegerFromInt64(int64(val)), nil
	case int64:
		return NewIntegerFromInt64(val), nil
	case uint:
		return Integer{Value: new(big.Int).SetUint64(uint64(val))}, nil
	case uint8:
		return NewIntegerFromInt64(int64(val)), nil
	case uint16:
		return NewIntegerFromInt64(int64(val)), nil
	case uint32:
		return NewIntegerFromInt64(int64(val)), nil
	case uint64:
		return Integer{Value: new(big.Int).SetUint64(val)}, nil
	case *big.Int:
		if val == nil {
			break
		}
		return NewInteger(val), nil
	case big.Int:
		return NewInteger(&val), nil
	case string:
		if tmp, err := hex.DecodeString(val); err == nil {
			return ByteString{Value: tmp}, nil
		}
		return NewByteString([]byte(val)), nil
	case []byte:
		return NewByteString(val), nil
	case bool:
		return NewBool(val), nil
	case []any:
		items, err := meshItems(val)
		if err != nil {
			return nil, err
		}
		return NewList(items...), nil
	case []Data:
		return NewList(val...), nil
	case MeshMap:
		pairs := make([]Pair, 0, len(val))
		for _, pair := range val {
			key, err := FromMesh(pair.Key)
			if err != nil {
				return nil, err
			}
			value, err := FromMesh(pair.Value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, NewPair(key, value))
		}
		return NewMap(pairs...), nil
	case MeshConstr:
		fields, err := meshItems(val.Fields)
		if err != nil {
			return nil, fmt.Errorf("constructor %d: %w", val.Alternative, err)
		}
		return NewConstr(val.Alternative, fields...), nil
	case *MeshConstr:
		if val == nil {
			break
		}
		return FromMesh(*val)
	}
	return nil, &cbor.EncodingError{Reason: fmt.Sprintf("unsupported value type %T for plutus data", v)}
}

func meshItems(items []any) ([]Data, error) {
	ret := make([]Data, 0, len(items))
	for _, item := range items {
		tmp, err := FromMesh(item)
		if err != nil {
			return nil, err
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}
