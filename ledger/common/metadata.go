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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"slices"

	"github.com/blinklabs-io/txbuilder/cbor"
)

// MetadataChunkSize is the largest text or byte string allowed in a metadatum
const MetadataChunkSize = 64

// TransactionMetadatum is a single metadata value
type TransactionMetadatum interface {
	isTransactionMetadatum()
	TypeName() string
	canonical() any
}

type MetaInt struct{ Value *big.Int }

type MetaBytes struct{ Value []byte }

type MetaText struct{ Value string }

type MetaList struct {
	Items []TransactionMetadatum
}

type MetaPair struct {
	Key   TransactionMetadatum
	Value TransactionMetadatum
}

type MetaMap struct {
	Pairs []MetaPair
}

func (MetaInt) isTransactionMetadatum()   {}
func (MetaBytes) isTransactionMetadatum() {}
func (MetaText) isTransactionMetadatum()  {}
func (MetaList) isTransactionMetadatum()  {}
func (MetaMap) isTransactionMetadatum()   {}

func (m MetaInt) TypeName() string   { return "int" }
func (m MetaBytes) TypeName() string { return "bytes" }
func (m MetaText) TypeName() string  { return "text" }
func (m MetaList) TypeName() string  { return "list" }
func (m MetaMap) TypeName() string   { return "map" }

func (m MetaInt) canonical() any { return m.Value }

func (m MetaBytes) canonical() any {
	if len(m.Value) <= MetadataChunkSize {
		return m.Value
	}
	ret := []any{}
	for chunk := range slices.Chunk(m.Value, MetadataChunkSize) {
		ret = append(ret, chunk)
	}
	return ret
}

func (m MetaText) canonical() any { return m.Value }

func (m MetaList) canonical() any {
	ret := make([]any, 0, len(m.Items))
	for _, item := range m.Items {
		ret = append(ret, item.canonical())
	}
	return ret
}

func (m MetaMap) canonical() any {
	ret := make(cbor.OrderedMap, 0, len(m.Pairs))
	for _, pair := range m.Pairs {
		ret = append(
			ret,
			cbor.MapPair{Key: pair.Key.canonical(), Value: pair.Value.canonical()},
		)
	}
	return ret
}

// NewMetaText returns a text metadatum, split into a list of chunks when the
// UTF-8 encoding exceeds MetadataChunkSize bytes
func NewMetaText(value string) TransactionMetadatum {
	if len(value) <= MetadataChunkSize {
		return MetaText{Value: value}
	}
	ret := MetaList{}
	for len(value) > 0 {
		size := min(len(value), MetadataChunkSize)
		// Do not split a multi-byte rune
		for size > 0 && size < len(value) && !isRuneStart(value[size]) {
			size--
		}
		ret.Items = append(ret.Items, MetaText{Value: value[:size]})
		value = value[size:]
	}
	return ret
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// MetadatumFromJSON converts a JSON document into a metadatum. Integral
// numbers become ints, strings become text, arrays lists and objects maps
// with text keys in document order
func MetadatumFromJSON(data []byte) (TransactionMetadatum, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	ret, err := decodeJsonMetadatum(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected trailing data in metadata JSON")
	}
	return ret, nil
}

func decodeJsonMetadatum(dec *json.Decoder) (TransactionMetadatum, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid metadata JSON: %w", err)
	}
	switch v := tok.(type) {
	case json.Number:
		tmpInt, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, fmt.Errorf("metadata number is not an integer: %s", v)
		}
		return MetaInt{Value: tmpInt}, nil
	case string:
		return NewMetaText(v), nil
	case json.Delim:
		switch v {
		case '[':
			ret := MetaList{Items: []TransactionMetadatum{}}
			for dec.More() {
				item, err := decodeJsonMetadatum(dec)
				if err != nil {
					return nil, err
				}
				ret.Items = append(ret.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return ret, nil
		case '{':
			ret := MetaMap{Pairs: []MetaPair{}}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected metadata map key: %v", keyTok)
				}
				value, err := decodeJsonMetadatum(dec)
				if err != nil {
					return nil, err
				}
				ret.Pairs = append(
					ret.Pairs,
					MetaPair{Key: NewMetaText(key), Value: value},
				)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return ret, nil
		}
	}
	return nil, fmt.Errorf("unsupported metadata JSON value: %v", tok)
}

// DecodeMetadatum decodes a metadatum from CBOR
func DecodeMetadatum(data []byte) (TransactionMetadatum, error) {
	tmpValue, err := cbor.DecodeCanonical(data)
	if err != nil {
		return nil, err
	}
	return metadatumFromValue(tmpValue)
}

func metadatumFromValue(v any) (TransactionMetadatum, error) {
	switch val := v.(type) {
	case int64:
		return MetaInt{Value: big.NewInt(val)}, nil
	case *big.Int:
		return MetaInt{Value: val}, nil
	case []byte:
		return MetaBytes{Value: val}, nil
	case cbor.IndefLengthByteString:
		return MetaBytes{Value: val.Bytes()}, nil
	case string:
		return MetaText{Value: val}, nil
	case []any:
		return metadatumListFromValues(val)
	case cbor.IndefLengthList:
		return metadatumListFromValues(val)
	case cbor.OrderedMap:
		return metadatumMapFromPairs(val)
	case cbor.IndefLengthMap:
		return metadatumMapFromPairs(val)
	}
	return nil, fmt.Errorf("unsupported metadatum type %T", v)
}

func metadatumListFromValues(values []any) (TransactionMetadatum, error) {
	ret := MetaList{Items: make([]TransactionMetadatum, 0, len(values))}
	for _, item := range values {
		tmpItem, err := metadatumFromValue(item)
		if err != nil {
			return nil, err
		}
		ret.Items = append(ret.Items, tmpItem)
	}
	return ret, nil
}

func metadatumMapFromPairs(pairs []cbor.MapPair) (TransactionMetadatum, error) {
	ret := MetaMap{Pairs: make([]MetaPair, 0, len(pairs))}
	for _, pair := range pairs {
		key, err := metadatumFromValue(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := metadatumFromValue(pair.Value)
		if err != nil {
			return nil, err
		}
		ret.Pairs = append(ret.Pairs, MetaPair{Key: key, Value: value})
	}
	return ret, nil
}

// TransactionMetadataSet maps metadata labels to values
type TransactionMetadataSet map[uint64]TransactionMetadatum

// MarshalCBOR encodes the set as a map with labels in ascending order
func (s TransactionMetadataSet) MarshalCBOR() ([]byte, error) {
	labels := make([]uint64, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	tmpMap := make(cbor.OrderedMap, 0, len(labels))
	for _, label := range labels {
		tmpMap = append(
			tmpMap,
			cbor.MapPair{Key: label, Value: s[label].canonical()},
		)
	}
	return cbor.EncodeCanonical(
		tmpMap,
		cbor.CanonicalOptions{CollapseBigNumber: true},
	)
}

// Hash returns the auxiliary data hash of the set when used as Shelley-form auxiliary data
func (s TransactionMetadataSet) Hash() (Blake2b256, error) {
	cborData, err := s.MarshalCBOR()
	if err != nil {
		return Blake2b256{}, err
	}
	return Blake2b256Hash(cborData), nil
}
