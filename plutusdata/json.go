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
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/blinklabs-io/txbuilder/cbor"
)

// JSON uses the detailed schema understood by cardano-cli:
//
//	{"int": 42}
//	{"bytes": "cafe"}
//	{"list": [...]}
//	{"map": [{"k": ..., "v": ...}]}
//	{"constructor": 0, "fields": [...]}

func (i Integer) MarshalJSON() ([]byte, error) {
	if i.Value == nil {
		return nil, &cbor.EncodingError{Reason: "integer without value"}
	}
	return []byte(`{"int":` + i.Value.String() + `}`), nil
}

func (b ByteString) MarshalJSON() ([]byte, error) {
	return []byte(`{"bytes":"` + hex.EncodeToString(b.Value) + `"}`), nil
}

func (l List) MarshalJSON() ([]byte, error) {
	items, err := marshalJSONItems(l.Items)
	if err != nil {
		return nil, err
	}
	return []byte(`{"list":` + items + `}`), nil
}

func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"map":[`)
	for idx, pair := range m.Pairs {
		if idx > 0 {
			buf.WriteByte(',')
		}
		key, err := MarshalJSON(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := MarshalJSON(pair.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`{"k":`)
		buf.Write(key)
		buf.WriteString(`,"v":`)
		buf.Write(value)
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

func (c Constr) MarshalJSON() ([]byte, error) {
	fields, err := marshalJSONItems(c.Fields)
	if err != nil {
		return nil, err
	}
	return []byte(
		`{"constructor":` + strconv.FormatUint(c.Alternative, 10) + `,"fields":` + fields + `}`,
	), nil
}

// MarshalJSON renders any Data value in the detailed JSON schema
func MarshalJSON(d Data) ([]byte, error) {
	tmp, ok := d.(json.Marshaler)
	if !ok {
		return nil, &cbor.EncodingError{Reason: fmt.Sprintf("unsupported plutus data type %T", d)}
	}
	return tmp.MarshalJSON()
}

func marshalJSONItems(items []Data) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for idx, item := range items {
		if idx > 0 {
			buf.WriteByte(',')
		}
		tmp, err := MarshalJSON(item)
		if err != nil {
			return "", err
		}
		buf.Write(tmp)
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

// ParseJSON parses the detailed JSON schema. Integers keep full precision
func ParseJSON(data []byte) (Data, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &cbor.EncodingError{Reason: "plutus data JSON must be an object", Err: err}
	}
	if raw, ok := obj["constructor"]; ok {
		if len(obj) != 2 {
			return nil, &cbor.EncodingError{Reason: `constructor object must have exactly "constructor" and "fields"`}
		}
		var alt uint64
		if err := json.Unmarshal(raw, &alt); err != nil {
			return nil, &cbor.EncodingError{Reason: "invalid constructor alternative", Err: err}
		}
		rawFields, ok := obj["fields"]
		if !ok {
			return nil, &cbor.EncodingError{Reason: `constructor object missing "fields"`}
		}
		fields, err := parseJSONItems(rawFields)
		if err != nil {
			return nil, err
		}
		return NewConstr(alt, fields...), nil
	}
	if len(obj) != 1 {
		return nil, &cbor.EncodingError{Reason: "plutus data JSON object must have exactly one key"}
	}
	for key, raw := range obj {
		switch key {
		case "int":
			tmp := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
			value, ok := new(big.Int).SetString(tmp, 10)
			if !ok {
				return nil, &cbor.EncodingError{Reason: "invalid integer " + quoteShort(tmp)}
			}
			return Integer{Value: value}, nil
		case "bytes":
			var tmp string
			if err := json.Unmarshal(raw, &tmp); err != nil {
				return nil, &cbor.EncodingError{Reason: "bytes must be a hex string", Err: err}
			}
			return NewByteStringFromHex(tmp)
		case "list":
			items, err := parseJSONItems(raw)
			if err != nil {
				return nil, err
			}
			return NewList(items...), nil
		case "map":
			var rawPairs []map[string]json.RawMessage
			if err := json.Unmarshal(raw, &rawPairs); err != nil {
				return nil, &cbor.EncodingError{Reason: "map must be a list of k/v objects", Err: err}
			}
			pairs := make([]Pair, 0, len(rawPairs))
			for _, rawPair := range rawPairs {
				rawKey, okKey := rawPair["k"]
				rawValue, okValue := rawPair["v"]
				if !okKey || !okValue || len(rawPair) != 2 {
					return nil, &cbor.EncodingError{Reason: `map entries must have exactly "k" and "v"`}
				}
				key, err := ParseJSON(rawKey)
				if err != nil {
					return nil, err
				}
				value, err := ParseJSON(rawValue)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, NewPair(key, value))
			}
			return NewMap(pairs...), nil
		default:
			return nil, &cbor.EncodingError{Reason: "unknown plutus data JSON key " + quoteShort(key)}
		}
	}
	// Unreachable, the object has exactly one key
	return nil, &cbor.EncodingError{Reason: "empty plutus data JSON object"}
}

func parseJSONItems(raw json.RawMessage) ([]Data, error) {
	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, &cbor.EncodingError{Reason: "expected a JSON list", Err: err}
	}
	ret := make([]Data, 0, len(rawItems))
	for _, rawItem := range rawItems {
		tmp, err := ParseJSON(rawItem)
		if err != nil {
			return nil, err
		}
		ret = append(ret, tmp)
	}
	return ret, nil
}
