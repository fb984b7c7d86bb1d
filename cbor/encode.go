// Copyright 2024 Blink Labs Software
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

package cbor

import (
	"bytes"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
			// Floats are always written as 64-bit values
			ShortestFloat: _cbor.ShortestFloatNone,
		}
		cachedEncMode, cachedEncModeErr = opts.EncModeWithTags(customTagSet)
	})
	return cachedEncMode, cachedEncModeErr
}

func Encode(data any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	enc := em.NewEncoder(buf)
	err = enc.Encode(data)
	return buf.Bytes(), err
}

// IndefLengthList is a list that is encoded using the indefinite-length form
type IndefLengthList []any

func (i IndefLengthList) MarshalCBOR() ([]byte, error) {
	ret := []byte{
		// Start indefinite-length list
		0x9f,
	}
	for _, item := range []any(i) {
		data, err := Encode(&item)
		if err != nil {
			return nil, err
		}
		ret = append(ret, data...)
	}
	ret = append(
		ret,
		// End indefinite length array
		CborBreak,
	)
	return ret, nil
}

// IndefLengthByteString is a bytestring that is encoded as a series of
// definite-length chunks wrapped in an indefinite-length bytestring
type IndefLengthByteString [][]byte

func (i IndefLengthByteString) MarshalCBOR() ([]byte, error) {
	ret := []byte{
		// Start indefinite-length bytestring
		0x5f,
	}
	for _, chunk := range [][]byte(i) {
		data, err := Encode(chunk)
		if err != nil {
			return nil, err
		}
		ret = append(ret, data...)
	}
	ret = append(
		ret,
		// End indefinite length bytestring
		CborBreak,
	)
	return ret, nil
}

// Bytes returns the concatenated chunks
func (i IndefLengthByteString) Bytes() []byte {
	return bytes.Join([][]byte(i), nil)
}

// MapPair is a single key/value entry of an ordered map
type MapPair struct {
	Key   any
	Value any
}

// OrderedMap is a definite-length map that is encoded in the order given,
// with duplicate keys allowed
type OrderedMap []MapPair

func (m OrderedMap) MarshalCBOR() ([]byte, error) {
	return EncodeCanonical(m, CanonicalOptions{})
}

// IndefLengthMap is an ordered map that is encoded using the indefinite-length form
type IndefLengthMap []MapPair

func (m IndefLengthMap) MarshalCBOR() ([]byte, error) {
	return EncodeCanonical(m, CanonicalOptions{})
}
