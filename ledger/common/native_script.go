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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/txbuilder/cbor"
)

const (
	NativeScriptTypePubkey           = 0
	NativeScriptTypeAll              = 1
	NativeScriptTypeAny              = 2
	NativeScriptTypeNofK             = 3
	NativeScriptTypeInvalidBefore    = 4
	NativeScriptTypeInvalidHereafter = 5
)

// NativeScript is a timelock/multisig script. The CBOR it was decoded from is
// kept so the hash always matches the on-chain bytes
type NativeScript struct {
	cbor.DecodeStoreCbor
	item any
}

func NewNativeScript(item any) (NativeScript, error) {
	switch item.(type) {
	case *NativeScriptPubkey, *NativeScriptAll, *NativeScriptAny,
		*NativeScriptNofK, *NativeScriptInvalidBefore, *NativeScriptInvalidHereafter:
	default:
		return NativeScript{}, fmt.Errorf("unknown native script item %T", item)
	}
	return NativeScript{item: item}, nil
}

func (NativeScript) isScript() {}

func (n *NativeScript) Item() any {
	return n.item
}

func (n *NativeScript) UnmarshalCBOR(data []byte) error {
	id, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	var tmpData any
	switch id {
	case NativeScriptTypePubkey:
		tmpData = &NativeScriptPubkey{}
	case NativeScriptTypeAll:
		tmpData = &NativeScriptAll{}
	case NativeScriptTypeAny:
		tmpData = &NativeScriptAny{}
	case NativeScriptTypeNofK:
		tmpData = &NativeScriptNofK{}
	case NativeScriptTypeInvalidBefore:
		tmpData = &NativeScriptInvalidBefore{}
	case NativeScriptTypeInvalidHereafter:
		tmpData = &NativeScriptInvalidHereafter{}
	default:
		return fmt.Errorf("unknown native script type %d", id)
	}
	if _, err := cbor.Decode(data, tmpData); err != nil {
		return err
	}
	n.item = tmpData
	n.SetCbor(data)
	return nil
}

func (n NativeScript) MarshalCBOR() ([]byte, error) {
	if cborData := n.Cbor(); cborData != nil {
		return cborData, nil
	}
	if n.item == nil {
		return nil, errors.New("empty native script")
	}
	return cbor.Encode(n.item)
}

func (n NativeScript) Hash() ScriptHash {
	cborData, err := n.MarshalCBOR()
	if err != nil {
		panic(fmt.Sprintf("unexpected error encoding native script: %s", err))
	}
	return Blake2b224Hash(append([]byte{ScriptRefTypeNativeScript}, cborData...))
}

func (n NativeScript) RawScriptBytes() []byte {
	cborData, err := n.MarshalCBOR()
	if err != nil {
		return nil
	}
	return cborData
}

type NativeScriptPubkey struct {
	cbor.StructAsArray
	Type uint
	Hash []byte
}

type NativeScriptAll struct {
	cbor.StructAsArray
	Type    uint
	Scripts []NativeScript
}

type NativeScriptAny struct {
	cbor.StructAsArray
	Type    uint
	Scripts []NativeScript
}

type NativeScriptNofK struct {
	cbor.StructAsArray
	Type    uint
	N       uint
	Scripts []NativeScript
}

type NativeScriptInvalidBefore struct {
	cbor.StructAsArray
	Type uint
	Slot uint64
}

type NativeScriptInvalidHereafter struct {
	cbor.StructAsArray
	Type uint
	Slot uint64
}

// nativeScriptJson is the {"type": ...} JSON form of a native script
type nativeScriptJson struct {
	Type     string            `json:"type"`
	KeyHash  string            `json:"keyHash,omitempty"`
	Required *uint             `json:"required,omitempty"`
	Slot     string            `json:"slot,omitempty"`
	Scripts  []json.RawMessage `json:"scripts,omitempty"`
}

func (n *NativeScript) UnmarshalJSON(data []byte) error {
	var tmp nativeScriptJson
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	children := make([]NativeScript, 0, len(tmp.Scripts))
	for _, rawChild := range tmp.Scripts {
		var child NativeScript
		if err := json.Unmarshal(rawChild, &child); err != nil {
			return err
		}
		children = append(children, child)
	}
	parseSlot := func() (uint64, error) {
		slot, err := strconv.ParseUint(tmp.Slot, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid native script slot %q: %w", tmp.Slot, err)
		}
		return slot, nil
	}
	switch tmp.Type {
	case "sig":
		keyHash, err := decodeFixedHex(tmp.KeyHash, Blake2b224Size)
		if err != nil {
			return fmt.Errorf("invalid native script key hash: %w", err)
		}
		n.item = &NativeScriptPubkey{Type: NativeScriptTypePubkey, Hash: keyHash}
	case "all":
		n.item = &NativeScriptAll{Type: NativeScriptTypeAll, Scripts: children}
	case "any":
		n.item = &NativeScriptAny{Type: NativeScriptTypeAny, Scripts: children}
	case "atLeast":
		if tmp.Required == nil {
			return errors.New("native script atLeast is missing required count")
		}
		n.item = &NativeScriptNofK{
			Type:    NativeScriptTypeNofK,
			N:       *tmp.Required,
			Scripts: children,
		}
	case "after":
		slot, err := parseSlot()
		if err != nil {
			return err
		}
		n.item = &NativeScriptInvalidBefore{
			Type: NativeScriptTypeInvalidBefore,
			Slot: slot,
		}
	case "before":
		slot, err := parseSlot()
		if err != nil {
			return err
		}
		n.item = &NativeScriptInvalidHereafter{
			Type: NativeScriptTypeInvalidHereafter,
			Slot: slot,
		}
	default:
		return fmt.Errorf("unknown native script type %q", tmp.Type)
	}
	n.SetCbor(nil)
	return nil
}

func (n NativeScript) MarshalJSON() ([]byte, error) {
	marshalChildren := func(scripts []NativeScript) ([]json.RawMessage, error) {
		ret := make([]json.RawMessage, 0, len(scripts))
		for _, child := range scripts {
			tmpJson, err := json.Marshal(child)
			if err != nil {
				return nil, err
			}
			ret = append(ret, tmpJson)
		}
		return ret, nil
	}
	var tmp nativeScriptJson
	var err error
	switch item := n.item.(type) {
	case *NativeScriptPubkey:
		tmp = nativeScriptJson{Type: "sig", KeyHash: hex.EncodeToString(item.Hash)}
	case *NativeScriptAll:
		tmp = nativeScriptJson{Type: "all"}
		tmp.Scripts, err = marshalChildren(item.Scripts)
	case *NativeScriptAny:
		tmp = nativeScriptJson{Type: "any"}
		tmp.Scripts, err = marshalChildren(item.Scripts)
	case *NativeScriptNofK:
		required := item.N
		tmp = nativeScriptJson{Type: "atLeast", Required: &required}
		tmp.Scripts, err = marshalChildren(item.Scripts)
	case *NativeScriptInvalidBefore:
		tmp = nativeScriptJson{Type: "after", Slot: strconv.FormatUint(item.Slot, 10)}
	case *NativeScriptInvalidHereafter:
		tmp = nativeScriptJson{Type: "before", Slot: strconv.FormatUint(item.Slot, 10)}
	default:
		return nil, errors.New("empty native script")
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(tmp)
}
