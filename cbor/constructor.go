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

package cbor

// AlternativeToTag converts a constructor/alternative number to its CBOR tag number.
// Returns the tag number and whether the fields must be wrapped as [alt_number, fields]
// (true for alternatives 128+).
func AlternativeToTag(alt uint64) (uint64, bool) {
	switch {
	case alt <= 6:
		return alt + CborTagAlternative1Min, false
	case alt <= 127:
		return alt - 7 + CborTagAlternative2Min, false
	default:
		return CborTagAlternative3, true
	}
}

// TagToAlternative converts a compact constructor tag number back to its alternative.
// The second return value is false for tag 102, whose alternative lives in the
// tag content, and for tags that are not constructors at all.
func TagToAlternative(tagNum uint64) (uint64, bool) {
	switch {
	case tagNum >= CborTagAlternative1Min && tagNum <= CborTagAlternative1Max:
		return tagNum - CborTagAlternative1Min, true
	case tagNum >= CborTagAlternative2Min && tagNum <= CborTagAlternative2Max:
		return tagNum - CborTagAlternative2Min + 7, true
	default:
		return 0, false
	}
}

// IsAlternativeTag returns true if the given CBOR tag number represents
// a constructor/alternative (tags 121-127, 1280-1400, or 102).
func IsAlternativeTag(tagNum uint64) bool {
	return (tagNum >= CborTagAlternative1Min && tagNum <= CborTagAlternative1Max) ||
		(tagNum >= CborTagAlternative2Min && tagNum <= CborTagAlternative2Max) ||
		tagNum == CborTagAlternative3
}

// ConstructorEncoder builds a CBOR constructor/alternative for encoding.
// Use this when constructing a new constructor value from typed fields.
type ConstructorEncoder struct {
	tag    uint64
	fields any
}

// NewConstructorEncoder creates a ConstructorEncoder with the given alternative
// number and fields value. The fields value is typically a []any.
func NewConstructorEncoder(tag uint64, fields any) ConstructorEncoder {
	return ConstructorEncoder{tag: tag, fields: fields}
}

// Tag returns the alternative/constructor number.
func (ce ConstructorEncoder) Tag() uint64 {
	return ce.tag
}

// Value returns the constructor as a generic tag value for EncodeCanonical
func (ce ConstructorEncoder) Value() Tag {
	tagNum, wrap := AlternativeToTag(ce.tag)
	var content any
	if wrap {
		content = []any{ce.tag, ce.fields}
	} else {
		content = ce.fields
	}
	return Tag{Number: tagNum, Content: content}
}

// MarshalCBOR encodes the constructor as a CBOR tagged value.
func (ce ConstructorEncoder) MarshalCBOR() ([]byte, error) {
	return EncodeCanonical(ce.Value(), CanonicalOptions{CollapseBigNumber: true})
}
