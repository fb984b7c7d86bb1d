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
	"errors"
	"fmt"
	"slices"

	"github.com/blinklabs-io/txbuilder/cbor"
)

const (
	ScriptRefTypeNativeScript = 0
	ScriptRefTypePlutusV1     = 1
	ScriptRefTypePlutusV2     = 2
	ScriptRefTypePlutusV3     = 3
)

type ScriptHash = Blake2b224

// PlutusLanguage identifies a Plutus ledger language version
type PlutusLanguage uint

const (
	PlutusLanguageV1 PlutusLanguage = 1
	PlutusLanguageV2 PlutusLanguage = 2
	PlutusLanguageV3 PlutusLanguage = 3
)

// ParsePlutusLanguage accepts "V1", "V2", "V3" in either case
func ParsePlutusLanguage(version string) (PlutusLanguage, error) {
	switch version {
	case "V1", "v1":
		return PlutusLanguageV1, nil
	case "V2", "v2":
		return PlutusLanguageV2, nil
	case "V3", "v3":
		return PlutusLanguageV3, nil
	}
	return 0, fmt.Errorf("unknown Plutus language version: %q", version)
}

func (l PlutusLanguage) String() string {
	return fmt.Sprintf("V%d", uint(l))
}

// CostModelKey returns the language ID used in cost model maps
func (l PlutusLanguage) CostModelKey() uint {
	return uint(l) - 1
}

type Script interface {
	isScript()
	Hash() ScriptHash
	RawScriptBytes() []byte
}

// NewPlutusScript returns the Script for a language version. Code wrapped in
// an extra CBOR byte string layer is unwrapped first
func NewPlutusScript(language PlutusLanguage, code []byte) (Script, error) {
	code = NormalizePlutusScript(code)
	switch language {
	case PlutusLanguageV1:
		return PlutusV1Script(code), nil
	case PlutusLanguageV2:
		return PlutusV2Script(code), nil
	case PlutusLanguageV3:
		return PlutusV3Script(code), nil
	}
	return nil, fmt.Errorf("unknown Plutus language version: %d", language)
}

// NormalizePlutusScript strips one CBOR byte string layer from double wrapped script code
func NormalizePlutusScript(code []byte) []byte {
	var outer []byte
	if n, err := cbor.Decode(code, &outer); err != nil || n != len(code) {
		return code
	}
	var inner []byte
	if n, err := cbor.Decode(outer, &inner); err != nil || n != len(outer) {
		return code
	}
	return outer
}

type ScriptRef struct {
	Type   uint
	Script Script
}

// NewScriptRef wraps a script with the matching reference type
func NewScriptRef(script Script) (*ScriptRef, error) {
	var refType uint
	switch script.(type) {
	case NativeScript, *NativeScript:
		refType = ScriptRefTypeNativeScript
	case PlutusV1Script:
		refType = ScriptRefTypePlutusV1
	case PlutusV2Script:
		refType = ScriptRefTypePlutusV2
	case PlutusV3Script:
		refType = ScriptRefTypePlutusV3
	default:
		return nil, fmt.Errorf("unsupported script type %T", script)
	}
	return &ScriptRef{Type: refType, Script: script}, nil
}

// ParseScriptRef decodes a reference script. Both the tag 24 wrapped form
// used in outputs and the bare [type, script] form are accepted
func ParseScriptRef(data []byte) (*ScriptRef, error) {
	ret := &ScriptRef{}
	var tmpTag cbor.RawTag
	if _, err := cbor.Decode(data, &tmpTag); err == nil {
		if err := ret.UnmarshalCBOR(data); err != nil {
			return nil, err
		}
		return ret, nil
	}
	if err := ret.decodeInner(data); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *ScriptRef) UnmarshalCBOR(data []byte) error {
	// Unwrap outer CBOR tag
	var tmpTag cbor.RawTag
	if _, err := cbor.Decode(data, &tmpTag); err != nil {
		return err
	}
	if tmpTag.Number != cbor.CborTagCbor {
		return fmt.Errorf("unexpected script ref tag %d", tmpTag.Number)
	}
	var innerCbor []byte
	if _, err := cbor.Decode(tmpTag.Content, &innerCbor); err != nil {
		return errors.New("unexpected script ref tag content")
	}
	return s.decodeInner(innerCbor)
}

func (s *ScriptRef) decodeInner(innerCbor []byte) error {
	var rawScript struct {
		cbor.StructAsArray
		Type uint
		Raw  cbor.RawMessage
	}
	if _, err := cbor.Decode(innerCbor, &rawScript); err != nil {
		return err
	}
	var tmpScript Script
	switch rawScript.Type {
	case ScriptRefTypeNativeScript:
		tmpNative := NativeScript{}
		if err := tmpNative.UnmarshalCBOR(rawScript.Raw); err != nil {
			return err
		}
		tmpScript = tmpNative
	case ScriptRefTypePlutusV1, ScriptRefTypePlutusV2, ScriptRefTypePlutusV3:
		var code []byte
		if _, err := cbor.Decode(rawScript.Raw, &code); err != nil {
			return err
		}
		switch rawScript.Type {
		case ScriptRefTypePlutusV1:
			tmpScript = PlutusV1Script(code)
		case ScriptRefTypePlutusV2:
			tmpScript = PlutusV2Script(code)
		default:
			tmpScript = PlutusV3Script(code)
		}
	default:
		return fmt.Errorf("unknown script type %d", rawScript.Type)
	}
	s.Type = rawScript.Type
	s.Script = tmpScript
	return nil
}

func (s *ScriptRef) MarshalCBOR() ([]byte, error) {
	tmpData := []any{
		s.Type,
		s.Script,
	}
	tmpDataCbor, err := cbor.Encode(tmpData)
	if err != nil {
		return nil, err
	}
	return cbor.Encode(cbor.WrappedCbor(tmpDataCbor))
}

type PlutusV1Script []byte

func (PlutusV1Script) isScript() {}

func (s PlutusV1Script) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypePlutusV1},
			[]byte(s),
		),
	)
}

func (s PlutusV1Script) RawScriptBytes() []byte {
	return []byte(s)
}

type PlutusV2Script []byte

func (PlutusV2Script) isScript() {}

func (s PlutusV2Script) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypePlutusV2},
			[]byte(s),
		),
	)
}

func (s PlutusV2Script) RawScriptBytes() []byte {
	return []byte(s)
}

type PlutusV3Script []byte

func (PlutusV3Script) isScript() {}

func (s PlutusV3Script) Hash() ScriptHash {
	return Blake2b224Hash(
		slices.Concat(
			[]byte{ScriptRefTypePlutusV3},
			[]byte(s),
		),
	)
}

func (s PlutusV3Script) RawScriptBytes() []byte {
	return []byte(s)
}
