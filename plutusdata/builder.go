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

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// BuilderData is plutus data as supplied by a caller, in one of three forms
type BuilderData interface {
	isBuilderData()
	// Data returns the parsed value
	Data() (Data, error)
	// Cbor returns the bytes used on chain and for hashing
	Cbor() ([]byte, error)
}

// MeshData holds a value in the native syntax accepted by FromMesh
type MeshData struct {
	Content any
}

// JSONData holds text in the detailed JSON schema
type JSONData struct {
	Content string
}

// CBORData holds hex encoded CBOR. The original bytes are kept as-is
type CBORData struct {
	Content string
}

func (MeshData) isBuilderData() {}
func (JSONData) isBuilderData() {}
func (CBORData) isBuilderData() {}

func (m MeshData) Data() (Data, error) {
	return FromMesh(m.Content)
}

func (m MeshData) Cbor() ([]byte, error) {
	tmp, err := m.Data()
	if err != nil {
		return nil, err
	}
	return Encode(tmp)
}

func (j JSONData) Data() (Data, error) {
	return ParseJSON([]byte(j.Content))
}

func (j JSONData) Cbor() ([]byte, error) {
	tmp, err := j.Data()
	if err != nil {
		return nil, err
	}
	return Encode(tmp)
}

func (c CBORData) Data() (Data, error) {
	tmp, err := c.rawBytes()
	if err != nil {
		return nil, err
	}
	return Decode(tmp)
}

// Cbor returns the original bytes after checking that they parse
func (c CBORData) Cbor() ([]byte, error) {
	tmp, err := c.rawBytes()
	if err != nil {
		return nil, err
	}
	if _, err := Decode(tmp); err != nil {
		return nil, err
	}
	return tmp, nil
}

func (c CBORData) rawBytes() ([]byte, error) {
	tmp, err := hex.DecodeString(c.Content)
	if err != nil {
		return nil, &cbor.EncodingError{Reason: "invalid plutus data CBOR hex", Err: err}
	}
	return tmp, nil
}

// BuilderDataHash returns the datum hash of builder data
func BuilderDataHash(bd BuilderData) (common.Blake2b256, error) {
	tmp, err := bd.Cbor()
	if err != nil {
		return common.Blake2b256{}, err
	}
	return common.Blake2b256Hash(tmp), nil
}
