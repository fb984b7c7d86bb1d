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
	"fmt"
	"math/big"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// Byte strings longer than this are written as indefinite-length chunks
const ByteStringChunkSize = 64

var canonicalOpts = cbor.CanonicalOptions{CollapseBigNumber: true}

// Encode returns the canonical CBOR encoding of a Data value
func Encode(d Data) ([]byte, error) {
	tmp, err := toCanonical(d)
	if err != nil {
		return nil, err
	}
	return cbor.EncodeCanonical(tmp, canonicalOpts)
}

// Decode parses CBOR into a Data value. Both compact and extended
// constructor tags are accepted
func Decode(data []byte) (Data, error) {
	tmp, err := cbor.DecodeCanonical(data)
	if err != nil {
		return nil, err
	}
	return fromCanonical(tmp)
}

// MarshalCBOR allows Data values to be embedded in larger CBOR structures

func (i Integer) MarshalCBOR() ([]byte, error)    { return Encode(i) }
func (b ByteString) MarshalCBOR() ([]byte, error) { return Encode(b) }
func (l List) MarshalCBOR() ([]byte, error)       { return Encode(l) }
func (m Map) MarshalCBOR() ([]byte, error)        { return Encode(m) }
func (c Constr) MarshalCBOR() ([]byte, error)     { return Encode(c) }

// Hash returns the blake2b-256 hash of the canonical encoding
func Hash(d Data) (common.Blake2b256, error) {
	tmp, err := Encode(d)
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.Blake2b256Hash(tmp), nil
}

// ResolveDataHash returns the hex datum hash of a Data value
func ResolveDataHash(d Data) (string, error) {
	tmp, err := Hash(d)
	if err != nil {
		return "", err
	}
	return tmp.String(), nil
}

func toCanonical(d Data) (any, error) {
	switch v := d.(type) {
	case Integer:
		if v.Value == nil {
			return nil, &cbor.EncodingError{Reason: "integer without value"}
		}
		return v.Value, nil
	case *Integer:
		return toCanonical(*v)
	case ByteString:
		return byteStringToCanonical(v.Value), nil
	case *ByteString:
		return byteStringToCanonical(v.Value), nil
	case List:
		return listToCanonical(v.Items)
	case *List:
		return listToCanonical(v.Items)
	case Map:
		return mapToCanonical(v.Pairs)
	case *Map:
		return mapToCanonical(v.Pairs)
	case Constr:
		return constrToCanonical(v)
	case *Constr:
		return constrToCanonical(*v)
	case nil:
		return nil, &cbor.EncodingError{Reason: "nil plutus data"}
	}
	return nil, &cbor.EncodingError{Reason: fmt.Sprintf("unsupported plutus data type %T", d)}
}

func byteStringToCanonical(value []byte) any {
	if len(value) <= ByteStringChunkSize {
		return value
	}
	ret := cbor.IndefLengthByteString{}
	for start := 0; start < len(value); start += ByteStringChunkSize {
		end := min(start+ByteStringChunkSize, len(value))
		ret = append(ret, value[start:end])
	}
	return ret
}

func listToCanonical(items []Data) (any, error) {
	// Empty lists use the definite form
	if len(items) == 0 {
		return []any{}, nil
	}
	ret := make(cbor.IndefLengthList, 0, len(items))
	for idx, item := range items {
		tmp, err := toCanonical(item)
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", idx, err)
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}

func mapToCanonical(pairs []Pair) (any, error) {
	ret := make(cbor.OrderedMap, 0, len(pairs))
	for idx, pair := range pairs {
		key, err := toCanonical(pair.Key)
		if err != nil {
			return nil, fmt.Errorf("map key %d: %w", idx, err)
		}
		value, err := toCanonical(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("map value %d: %w", idx, err)
		}
		ret = append(ret, cbor.MapPair{Key: key, Value: value})
	}
	return ret, nil
}

func constrToCanonical(c Constr) (any, error) {
	fields, err := listToCanonical(c.Fields)
	if err != nil {
		return nil, fmt.Errorf("constructor %d: %w", c.Alternative, err)
	}
	return cbor.NewConstructorEncoder(c.Alternative, fields).Value(), nil
}

func fromCanonical(v any) (Data, error) {
	switch val := v.(type) {
	case int64:
		return NewIntegerFromInt64(val), nil
	case *big.Int:
		return Integer{Value: val}, nil
	case []byte:
		return ByteString{Value: val}, nil
	case cbor.IndefLengthByteString:
		return ByteString{Value: val.Bytes()}, nil
	case []any:
		return listFromCanonical(val)
	case cbor.IndefLengthList:
		return listFromCanonical(val)
	case cbor.OrderedMap:
		return mapFromCanonical(val)
	case cbor.IndefLengthMap:
		return mapFromCanonical(val)
	case cbor.Tag:
		return constrFromCanonical(val)
	}
	return nil, &cbor.EncodingError{Reason: fmt.Sprintf("unexpected CBOR item %T in plutus data", v)}
}

func listFromCanonical(items []any) (List, error) {
	ret := List{Items: make([]Data, 0, len(items))}
	for _, item := range items {
		tmp, err := fromCanonical(item)
		if err != nil {
			return List{}, err
		}
		ret.Items = append(ret.Items, tmp)
	}
	return ret, nil
}

func mapFromCanonical(pairs []cbor.MapPair) (Map, error) {
	ret := Map{Pairs: make([]Pair, 0, len(pairs))}
	for _, pair := range pairs {
		key, err := fromCanonical(pair.Key)
		if err != nil {
			return Map{}, err
		}
		value, err := fromCanonical(pair.Value)
		if err != nil {
			return Map{}, err
		}
		ret.Pairs = append(ret.Pairs, Pair{Key: key, Value: value})
	}
	return ret, nil
}

func constrFromCanonical(tag cbor.Tag) (Data, error) {
	if alt, ok := cbor.TagToAlternative(tag.Number); ok {
		fields, err := fieldsFromCanonical(tag.Content)
		if err != nil {
			return nil, err
		}
		return Constr{Alternative: alt, Fields: fields}, nil
	}
	if tag.Number != cbor.CborTagAlternative3 {
		return nil, &cbor.EncodingError{Reason: fmt.Sprintf("unexpected CBOR tag %d in plutus data", tag.Number)}
	}
	content, ok := tag.Content.([]any)
	if !ok || len(content) != 2 {
		return nil, &cbor.EncodingError{Reason: "extended constructor must be a two element array"}
	}
	var alt uint64
	switch tmp := content[0].(type) {
	case int64:
		if tmp < 0 {
			return nil, &cbor.EncodingError{Reason: "negative constructor alternative"}
		}
		alt = uint64(tmp)
	case *big.Int:
		if !tmp.IsUint64() {
			return nil, &cbor.EncodingError{Reason: "constructor alternative out of range"}
		}
		alt = tmp.Uint64()
	default:
		return nil, &cbor.EncodingError{Reason: fmt.Sprintf("constructor alternative must be an integer, got %T", content[0])}
	}
	fields, err := fieldsFromCanonical(content[1])
	if err != nil {
		return nil, err
	}
	return Constr{Alternative: alt, Fields: fields}, nil
}

func fieldsFromCanonical(v any) ([]Data, error) {
	var items []any
	switch tmp := v.(type) {
	case []any:
		items = tmp
	case cbor.IndefLengthList:
		items = tmp
	default:
		return nil, &cbor.EncodingError{Reason: fmt.Sprintf("constructor fields must be an array, got %T", v)}
	}
	ret, err := listFromCanonical(items)
	if err != nil {
		return nil, err
	}
	return ret.Items, nil
}
