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

package provider

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"slices"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
)

const (
	txWitnessKeyVkeys     = 0
	txWitnessKeyRedeemers = 5
)

// rawTransaction keeps every part of a transaction as the original bytes so
// that the body hash never changes when witnesses are added
type rawTransaction struct {
	body      cbor.RawMessage
	witnesses map[uint64]cbor.RawMessage
	rest      []cbor.RawMessage
}

func decodeRawTransaction(txCbor string) (*rawTransaction, error) {
	txBytes, err := hex.DecodeString(txCbor)
	if err != nil {
		return nil, InvalidTransactionError{Reason: "hex", Err: err}
	}
	var parts []cbor.RawMessage
	if _, err := cbor.Decode(txBytes, &parts); err != nil {
		return nil, InvalidTransactionError{Reason: "CBOR", Err: err}
	}
	if len(parts) < 2 {
		return nil, InvalidTransactionError{
			Reason: fmt.Sprintf("expected at least 2 items, got %d", len(parts)),
		}
	}
	ret := &rawTransaction{
		body:      parts[0],
		witnesses: map[uint64]cbor.RawMessage{},
		rest:      parts[2:],
	}
	if _, err := cbor.Decode(parts[1], &ret.witnesses); err != nil {
		return nil, InvalidTransactionError{Reason: "witness set", Err: err}
	}
	return ret, nil
}

func (t *rawTransaction) hash() common.Blake2b256 {
	return common.Blake2b256Hash(t.body)
}

func (t *rawTransaction) encode() (string, error) {
	keys := make([]uint64, 0, len(t.witnesses))
	for key := range t.witnesses {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	witnesses := make(cbor.OrderedMap, 0, len(keys))
	for _, key := range keys {
		witnesses = append(
			witnesses,
			cbor.MapPair{Key: key, Value: t.witnesses[key]},
		)
	}
	items := []any{t.body, witnesses}
	for _, item := range t.rest {
		items = append(items, item)
	}
	tmp, err := cbor.EncodeCanonical(items, cbor.CanonicalOptions{})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(tmp), nil
}

// redeemerKeys lists the redeemers in either the map or the legacy list form
func (t *rawTransaction) redeemerKeys() ([]common.RedeemerKey, error) {
	raw, ok := t.witnesses[txWitnessKeyRedeemers]
	if !ok {
		return nil, nil
	}
	tmp, err := cbor.DecodeCanonical(raw)
	if err != nil {
		return nil, InvalidTransactionError{Reason: "redeemers", Err: err}
	}
	var ret []common.RedeemerKey
	switch val := tmp.(type) {
	case cbor.OrderedMap:
		for _, pair := range val {
			key, err := redeemerKeyFromItems(pair.Key)
			if err != nil {
				return nil, err
			}
			ret = append(ret, key)
		}
	case cbor.IndefLengthMap:
		for _, pair := range val {
			key, err := redeemerKeyFromItems(pair.Key)
			if err != nil {
				return nil, err
			}
			ret = append(ret, key)
		}
	case []any:
		for _, item := range val {
			key, err := redeemerKeyFromItems(item)
			if err != nil {
				return nil, err
			}
			ret = append(ret, key)
		}
	default:
		return nil, InvalidTransactionError{Reason: "redeemers", Err: errUnsupportedRedeemers}
	}
	return ret, nil
}

func redeemerKeyFromItems(v any) (common.RedeemerKey, error) {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case cbor.IndefLengthList:
		items = val
	}
	if len(items) < 2 {
		return common.RedeemerKey{}, InvalidTransactionError{Reason: "redeemer", Err: errUnsupportedRedeemers}
	}
	tag, ok1 := smallUint(items[0])
	index, ok2 := smallUint(items[1])
	if !ok1 || !ok2 || tag > uint64(common.RedeemerTagProposal) || index > 0xffffffff {
		return common.RedeemerKey{}, InvalidTransactionError{Reason: "redeemer", Err: errUnsupportedRedeemers}
	}
	return common.RedeemerKey{
		Tag:   common.RedeemerTag(tag),
		Index: uint32(index),
	}, nil
}

func smallUint(v any) (uint64, bool) {
	switch val := v.(type) {
	case int64:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case *big.Int:
		if !val.IsUint64() {
			return 0, false
		}
		return val.Uint64(), true
	}
	return 0, false
}
