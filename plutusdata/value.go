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
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// Value converts assets to the on-chain value representation, a map of
// policy ID to a map of asset name to quantity. Lovelace is stored under the
// empty policy ID and asset name. Policies and asset names are sorted
func Value(assets []common.Asset) (Data, error) {
	value, err := common.NewValueFromAssets(assets)
	if err != nil {
		return nil, err
	}
	type policyEntry struct {
		policyId []byte
		pairs    []Pair
	}
	var policies []*policyEntry
	policyIdx := map[string]*policyEntry{}
	for _, asset := range value.ToAssets() {
		amount, _ := asset.Amount()
		var policyId, assetName []byte
		if !common.IsLovelace(asset.Unit) {
			tmpPolicyId, tmpAssetName, err := common.SplitUnit(asset.Unit)
			if err != nil {
				return nil, err
			}
			policyId = tmpPolicyId.Bytes()
			assetName = tmpAssetName
		}
		entry, ok := policyIdx[string(policyId)]
		if !ok {
			entry = &policyEntry{policyId: policyId}
			policyIdx[string(policyId)] = entry
			policies = append(policies, entry)
		}
		entry.pairs = append(
			entry.pairs,
			NewPair(NewByteString(assetName), NewInteger(amount)),
		)
	}
	slices.SortFunc(policies, func(a, b *policyEntry) int {
		return bytes.Compare(a.policyId, b.policyId)
	})
	ret := make([]Pair, 0, len(policies))
	for _, entry := range policies {
		slices.SortFunc(entry.pairs, func(a, b Pair) int {
			return bytes.Compare(a.Key.(ByteString).Value, b.Key.(ByteString).Value)
		})
		ret = append(
			ret,
			NewPair(NewByteString(entry.policyId), NewMap(entry.pairs...)),
		)
	}
	return NewMap(ret...), nil
}

// ParsePlutusValueToAssets is the inverse of Value. Repeated units are summed
func ParsePlutusValueToAssets(d Data) ([]common.Asset, error) {
	outer, ok := d.(Map)
	if !ok {
		return nil, &cbor.EncodingError{Reason: fmt.Sprintf("value must be a map, got %T", d)}
	}
	ret := common.NewValue()
	for _, policyPair := range outer.Pairs {
		policyId, ok := policyPair.Key.(ByteString)
		if !ok {
			return nil, &cbor.EncodingError{Reason: "value policy ID must be a byte string"}
		}
		inner, ok := policyPair.Value.(Map)
		if !ok {
			return nil, &cbor.EncodingError{Reason: "value policy entry must be a map"}
		}
		for _, assetPair := range inner.Pairs {
			assetName, ok := assetPair.Key.(ByteString)
			if !ok {
				return nil, &cbor.EncodingError{Reason: "value asset name must be a byte string"}
			}
			quantity, ok := assetPair.Value.(Integer)
			if !ok || quantity.Value == nil {
				return nil, &cbor.EncodingError{Reason: "value quantity must be an integer"}
			}
			unit := common.LovelaceUnit
			if len(policyId.Value) > 0 {
				unit = hex.EncodeToString(policyId.Value) + hex.EncodeToString(assetName.Value)
			} else if len(assetName.Value) > 0 {
				return nil, &cbor.EncodingError{Reason: "lovelace entry must have an empty asset name"}
			}
			ret.AddUnit(unit, quantity.Value)
		}
	}
	return ret.ToAssets(), nil
}

// CredentialData converts a credential to its on-chain form
func CredentialData(cred common.Credential) Data {
	if cred.IsScript() {
		return ConStr1(NewByteString(cred.Hash.Bytes()))
	}
	return ConStr0(NewByteString(cred.Hash.Bytes()))
}

var ErrUnsupportedAddress = errors.New("address has no plutus data representation")

// AddressData converts a Shelley address to its on-chain form. Byron and
// pointer addresses are not supported
func AddressData(addr common.Address) (Data, error) {
	payment := addr.PaymentCredential()
	if addr.IsByron() || payment == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, addr.String())
	}
	switch addr.Type() {
	case common.AddressTypeKeyPointer, common.AddressTypeScriptPointer:
		return nil, fmt.Errorf("%w: pointer address %s", ErrUnsupportedAddress, addr.String())
	}
	staking := None()
	if stake := addr.StakingCredential(); stake != nil {
		staking = Some(ConStr0(CredentialData(*stake)))
	}
	return ConStr0(CredentialData(*payment), staking), nil
}

// OutputReference returns the on-chain form of a transaction input
func OutputReference(input common.TransactionInput) (Data, error) {
	txHash, err := NewByteStringFromHex(input.TxHash)
	if err != nil {
		return nil, err
	}
	return ConStr0(
		txHash,
		Integer{Value: new(big.Int).SetUint64(uint64(input.OutputIndex))},
	), nil
}

// PosixTime returns a POSIX time in milliseconds
func PosixTime(ms int64) Integer {
	return NewIntegerFromInt64(ms)
}
