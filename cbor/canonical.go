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

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	_cbor "github.com/fxamacker/cbor/v2"
)

const (
	// Largest integer magnitude that survives a round trip through a float64
	MaxSafeInteger = 1<<53 - 1

	maxCanonicalDepth = 256
)

// CanonicalOptions controls the behavior of EncodeCanonical
type CanonicalOptions struct {
	// CollapseBigNumber writes integers outside the 53-bit safe range as plain
	// 8-byte integers when their magnitude fits in 64 bits, instead of as
	// bignum tags
	CollapseBigNumber bool
}

// EncodeCanonical encodes a generic value to CBOR using minimal-length headers.
//
// Supported types are integers (including *big.Int), float32/float64, bool, nil,
// string, []byte, ByteString, []any, OrderedMap, IndefLengthList, IndefLengthMap,
// IndefLengthByteString, Tag, RawTag, RawMessage and anything implementing
// MarshalCBOR. Other types are handed to Encode.
func EncodeCanonical(v any, opts CanonicalOptions) ([]byte, error) {
	e := canonicalEncoder{opts: opts}
	if err := e.encode(v, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type canonicalEncoder struct {
	opts CanonicalOptions
	buf  []byte
}

func appendHead(dst []byte, major uint8, arg uint64) []byte {
	switch {
	case arg < 24:
		return append(dst, major|uint8(arg))
	case arg < 0x100:
		return append(dst, major|24, uint8(arg))
	case arg < 0x10000:
		return binary.BigEndian.AppendUint16(append(dst, major|25), uint16(arg))
	case arg < 0x100000000:
		return binary.BigEndian.AppendUint32(append(dst, major|26), uint32(arg))
	default:
		return binary.BigEndian.AppendUint64(append(dst, major|27), arg)
	}
}

func (e *canonicalEncoder) encode(v any, depth int) error {
	if depth > maxCanonicalDepth {
		return &EncodingError{Reason: "maximum nesting depth exceeded"}
	}
	switch val := v.(type) {
	case nil:
		e.buf = append(e.buf, 0xf6)
	case bool:
		if val {
			e.buf = append(e.buf, 0xf5)
		} else {
			e.buf = append(e.buf, 0xf4)
		}
	case int:
		e.encodeInt64(int64(val))
	case int8:
		e.encodeInt64(int64(val))
	case int16:
		e.encodeInt64(int64(val))
	case int32:
		e.encodeInt64(int64(val))
	case int64:
		e.encodeInt64(val)
	case uint:
		e.encodeUint64(uint64(val))
	case uint8:
		e.encodeUint64(uint64(val))
	case uint16:
		e.encodeUint64(uint64(val))
	case uint32:
		e.encodeUint64(uint64(val))
	case uint64:
		e.encodeUint64(val)
	case *big.Int:
		if val == nil {
			return &EncodingError{Reason: "nil big integer"}
		}
		e.encodeBigInt(val)
	case big.Int:
		e.encodeBigInt(&val)
	case float32:
		return e.encodeFloat(float64(val))
	case float64:
		return e.encodeFloat(val)
	case string:
		e.buf = appendHead(e.buf, CborTypeTextString, uint64(len(val)))
		e.buf = append(e.buf, val...)
	case []byte:
		e.buf = appendHead(e.buf, CborTypeByteString, uint64(len(val)))
		e.buf = append(e.buf, val...)
	case ByteString:
		tmp := val.Bytes()
		e.buf = appendHead(e.buf, CborTypeByteString, uint64(len(tmp)))
		e.buf = append(e.buf, tmp...)
	case IndefLengthByteString:
		e.buf = append(e.buf, CborTypeByteString|CborIndefiniteLength)
		for _, chunk := range val {
			e.buf = appendHead(e.buf, CborTypeByteString, uint64(len(chunk)))
			e.buf = append(e.buf, chunk...)
		}
		e.buf = append(e.buf, CborBreak)
	case []any:
		e.buf = appendHead(e.buf, CborTypeArray, uint64(len(val)))
		for _, item := range val {
			if err := e.encode(item, depth+1); err != nil {
				return err
			}
		}
	case IndefLengthList:
		e.buf = append(e.buf, CborTypeArray|CborIndefiniteLength)
		for _, item := range val {
			if err := e.encode(item, depth+1); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, CborBreak)
	case OrderedMap:
		e.buf = appendHead(e.buf, CborTypeMap, uint64(len(val)))
		if err := e.encodePairs(val, depth); err != nil {
			return err
		}
	case IndefLengthMap:
		e.buf = append(e.buf, CborTypeMap|CborIndefiniteLength)
		if err := e.encodePairs(val, depth); err != nil {
			return err
		}
		e.buf = append(e.buf, CborBreak)
	case Tag:
		e.buf = appendHead(e.buf, CborTypeTag, val.Number)
		return e.encode(val.Content, depth+1)
	case *Tag:
		e.buf = appendHead(e.buf, CborTypeTag, val.Number)
		return e.encode(val.Content, depth+1)
	case RawTag:
		e.buf = appendHead(e.buf, CborTypeTag, val.Number)
		e.buf = append(e.buf, val.Content...)
	case RawMessage:
		if len(val) == 0 {
			return &EncodingError{Reason: "empty raw message"}
		}
		e.buf = append(e.buf, val...)
	case _cbor.Marshaler:
		tmp, err := val.MarshalCBOR()
		if err != nil {
			return &EncodingError{Reason: fmt.Sprintf("marshal %T", v), Err: err}
		}
		e.buf = append(e.buf, tmp...)
	default:
		tmp, err := Encode(v)
		if err != nil {
			return &EncodingError{Reason: fmt.Sprintf("unsupported type %T", v), Err: err}
		}
		e.buf = append(e.buf, tmp...)
	}
	return nil
}

func (e *canonicalEncoder) encodePairs(pairs []MapPair, depth int) error {
	for _, pair := range pairs {
		if err := e.encode(pair.Key, depth+1); err != nil {
			return err
		}
		if err := e.encode(pair.Value, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (e *canonicalEncoder) encodeUint64(v uint64) {
	if v <= MaxSafeInteger || e.opts.CollapseBigNumber {
		e.buf = appendHead(e.buf, CborTypeUnsigned, v)
		return
	}
	e.encodeBignum(CborTagPositiveBignum, new(big.Int).SetUint64(v))
}

func (e *canonicalEncoder) encodeInt64(v int64) {
	if v >= 0 {
		e.encodeUint64(uint64(v))
		return
	}
	// -(v+1) can't overflow for any negative int64
	payload := uint64(-(v + 1))
	if v >= -MaxSafeInteger || e.opts.CollapseBigNumber {
		e.buf = appendHead(e.buf, CborTypeNegative, payload)
		return
	}
	e.encodeBignum(CborTagNegativeBignum, new(big.Int).SetUint64(payload))
}

func (e *canonicalEncoder) encodeBigInt(v *big.Int) {
	if v.IsInt64() {
		e.encodeInt64(v.Int64())
		return
	}
	if v.Sign() > 0 {
		if v.IsUint64() {
			e.encodeUint64(v.Uint64())
			return
		}
		e.encodeBignum(CborTagPositiveBignum, v)
		return
	}
	payload := new(big.Int).Neg(v)
	payload.Sub(payload, big.NewInt(1))
	if e.opts.CollapseBigNumber && payload.IsUint64() {
		e.buf = appendHead(e.buf, CborTypeNegative, payload.Uint64())
		return
	}
	e.encodeBignum(CborTagNegativeBignum, payload)
}

func (e *canonicalEncoder) encodeBignum(tagNum uint64, magnitude *big.Int) {
	tmp := magnitude.Bytes()
	e.buf = appendHead(e.buf, CborTypeTag, tagNum)
	e.buf = appendHead(e.buf, CborTypeByteString, uint64(len(tmp)))
	e.buf = append(e.buf, tmp...)
}

func (e *canonicalEncoder) encodeFloat(v float64) error {
	if !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v) &&
		math.Abs(v) < math.MaxInt64 {
		e.encodeInt64(int64(v))
		return nil
	}
	em, err := getEncMode()
	if err != nil {
		return err
	}
	tmp, err := em.Marshal(v)
	if err != nil {
		return &EncodingError{Reason: "float", Err: err}
	}
	e.buf = append(e.buf, tmp...)
	return nil
}

// DecodeCanonical is the mirror of EncodeCanonical. Integers decode to int64
// when they fit and *big.Int otherwise (bignum tags always produce *big.Int),
// definite arrays to []any, definite maps to OrderedMap, and indefinite-length
// items to their IndefLength* counterparts. Other tags decode to Tag.
func DecodeCanonical(data []byte) (any, error) {
	d := canonicalDecoder{data: data}
	ret, err := d.decode(0)
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, &EncodingError{
			Reason: fmt.Sprintf("%d bytes of trailing data", len(d.data)-d.pos),
		}
	}
	return ret, nil
}

type canonicalDecoder struct {
	data []byte
	pos  int
}

var errUnexpectedEnd = &EncodingError{Reason: "unexpected end of data"}

func (d *canonicalDecoder) readByte() (uint8, error) {
	if d.pos >= len(d.data) {
		return 0, errUnexpectedEnd
	}
	ret := d.data[d.pos]
	d.pos++
	return ret, nil
}

func (d *canonicalDecoder) readBytes(n uint64) ([]byte, error) {
	if n > uint64(len(d.data)-d.pos) {
		return nil, errUnexpectedEnd
	}
	ret := make([]byte, n)
	copy(ret, d.data[d.pos:d.pos+int(n)])
	d.pos += int(n)
	return ret, nil
}

// readArg returns the argument for the given additional info and whether the
// item uses the indefinite-length form
func (d *canonicalDecoder) readArg(info uint8) (uint64, bool, error) {
	var size int
	switch {
	case info < 24:
		return uint64(info), false, nil
	case info == 24:
		size = 1
	case info == 25:
		size = 2
	case info == 26:
		size = 4
	case info == 27:
		size = 8
	case info == CborIndefiniteLength:
		return 0, true, nil
	default:
		return 0, false, &EncodingError{
			Reason: fmt.Sprintf("reserved additional info %d", info),
		}
	}
	if d.pos+size > len(d.data) {
		return 0, false, errUnexpectedEnd
	}
	var ret uint64
	for _, b := range d.data[d.pos : d.pos+size] {
		ret = ret<<8 | uint64(b)
	}
	d.pos += size
	return ret, false, nil
}

func (d *canonicalDecoder) atBreak() bool {
	if d.pos < len(d.data) && d.data[d.pos] == CborBreak {
		d.pos++
		return true
	}
	return false
}

func (d *canonicalDecoder) decode(depth int) (any, error) {
	if depth > maxCanonicalDepth {
		return nil, &EncodingError{Reason: "maximum nesting depth exceeded"}
	}
	start := d.pos
	initial, err := d.readByte()
	if err != nil {
		return nil, err
	}
	major := initial & CborTypeMask
	info := initial & CborInfoMask
	if major == CborTypeSimple {
		return d.decodeSimple(start, info)
	}
	arg, indefinite, err := d.readArg(info)
	if err != nil {
		return nil, err
	}
	if indefinite &&
		(major == CborTypeUnsigned || major == CborTypeNegative || major == CborTypeTag) {
		return nil, &EncodingError{
			Reason: fmt.Sprintf("indefinite length not allowed for major type 0x%x", major),
		}
	}
	switch major {
	case CborTypeUnsigned:
		if arg <= math.MaxInt64 {
			return int64(arg), nil
		}
		return new(big.Int).SetUint64(arg), nil
	case CborTypeNegative:
		if arg <= math.MaxInt64 {
			return -1 - int64(arg), nil
		}
		ret := new(big.Int).SetUint64(arg)
		ret.Add(ret, big.NewInt(1))
		return ret.Neg(ret), nil
	case CborTypeByteString:
		if !indefinite {
			return d.readBytes(arg)
		}
		chunks, err := d.decodeChunks(CborTypeByteString)
		if err != nil {
			return nil, err
		}
		return IndefLengthByteString(chunks), nil
	case CborTypeTextString:
		if !indefinite {
			tmp, err := d.readBytes(arg)
			if err != nil {
				return nil, err
			}
			return string(tmp), nil
		}
		chunks, err := d.decodeChunks(CborTypeTextString)
		if err != nil {
			return nil, err
		}
		var ret []byte
		for _, chunk := range chunks {
			ret = append(ret, chunk...)
		}
		return string(ret), nil
	case CborTypeArray:
		if indefinite {
			ret := IndefLengthList{}
			for !d.atBreak() {
				item, err := d.decode(depth + 1)
				if err != nil {
					return nil, err
				}
				ret = append(ret, item)
			}
			return ret, nil
		}
		// Every item takes at least one byte
		if arg > uint64(len(d.data)-d.pos) {
			return nil, errUnexpectedEnd
		}
		ret := make([]any, 0, arg)
		for range arg {
			item, err := d.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			ret = append(ret, item)
		}
		return ret, nil
	case CborTypeMap:
		if indefinite {
			ret := IndefLengthMap{}
			for !d.atBreak() {
				pair, err := d.decodePair(depth)
				if err != nil {
					return nil, err
				}
				ret = append(ret, pair)
			}
			return ret, nil
		}
		if arg > uint64(len(d.data)-d.pos)/2 {
			return nil, errUnexpectedEnd
		}
		ret := make(OrderedMap, 0, arg)
		for range arg {
			pair, err := d.decodePair(depth)
			if err != nil {
				return nil, err
			}
			ret = append(ret, pair)
		}
		return ret, nil
	case CborTypeTag:
		content, err := d.decode(depth + 1)
		if err != nil {
			return nil, err
		}
		if arg == CborTagPositiveBignum || arg == CborTagNegativeBignum {
			return bignumFromContent(arg, content)
		}
		return Tag{Number: arg, Content: content}, nil
	}
	return nil, &EncodingError{Reason: fmt.Sprintf("unknown major type 0x%x", major)}
}

func (d *canonicalDecoder) decodePair(depth int) (MapPair, error) {
	key, err := d.decode(depth + 1)
	if err != nil {
		return MapPair{}, err
	}
	value, err := d.decode(depth + 1)
	if err != nil {
		return MapPair{}, err
	}
	return MapPair{Key: key, Value: value}, nil
}

func (d *canonicalDecoder) decodeChunks(major uint8) ([][]byte, error) {
	ret := [][]byte{}
	for !d.atBreak() {
		initial, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if initial&CborTypeMask != major {
			return nil, &EncodingError{Reason: "mismatched chunk type in indefinite-length string"}
		}
		size, indefinite, err := d.readArg(initial & CborInfoMask)
		if err != nil {
			return nil, err
		}
		if indefinite {
			return nil, &EncodingError{Reason: "nested indefinite-length string chunk"}
		}
		chunk, err := d.readBytes(size)
		if err != nil {
			return nil, err
		}
		ret = append(ret, chunk)
	}
	return ret, nil
}

func (d *canonicalDecoder) decodeSimple(start int, info uint8) (any, error) {
	var size int
	switch info {
	case 20:
		return false, nil
	case 21:
		return true, nil
	case 22, 23:
		return nil, nil
	case 25:
		size = 2
	case 26:
		size = 4
	case 27:
		size = 8
	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("unsupported simple value %d", info)}
	}
	if d.pos+size > len(d.data) {
		return nil, errUnexpectedEnd
	}
	d.pos += size
	var ret float64
	if _, err := Decode(d.data[start:d.pos], &ret); err != nil {
		return nil, &EncodingError{Reason: "float", Err: err}
	}
	return ret, nil
}

func bignumFromContent(tagNum uint64, content any) (*big.Int, error) {
	var magnitude []byte
	switch v := content.(type) {
	case []byte:
		magnitude = v
	case IndefLengthByteString:
		magnitude = v.Bytes()
	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("bignum content must be a bytestring, got %T", content)}
	}
	ret := new(big.Int).SetBytes(magnitude)
	if tagNum == CborTagNegativeBignum {
		ret.Add(ret, big.NewInt(1))
		ret.Neg(ret)
	}
	return ret, nil
}
