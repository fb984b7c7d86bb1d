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
	"encoding/hex"
	"fmt"
	"maps"
	"math/big"
	"slices"
	"strings"

	"github.com/blinklabs-io/txbuilder/cbor"
)

// LovelaceUnit is the unit name used for the native coin
const LovelaceUnit = "lovelace"

// Asset is a unit and a decimal string quantity
type Asset struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

func NewAsset(unit string, quantity *big.Int) Asset {
	return Asset{
		Unit:     NormalizeUnit(unit),
		Quantity: quantity.String(),
	}
}

// NewLovelace returns a lovelace Asset for the given amount
func NewLovelace(amount uint64) Asset {
	return Asset{
		Unit:     LovelaceUnit,
		Quantity: new(big.Int).SetUint64(amount).String(),
	}
}

// Amount parses the quantity of the asset
func (a Asset) Amount() (*big.Int, error) {
	ret, ok := new(big.Int).SetString(a.Quantity, 10)
	if !ok {
		return nil, InvalidQuantityError{Unit: a.Unit, Quantity: a.Quantity}
	}
	return ret, nil
}

// IsLovelace returns true for the empty unit and "lovelace"
func IsLovelace(unit string) bool {
	return unit == "" || unit == LovelaceUnit
}

// NormalizeUnit maps both spellings of the native coin to LovelaceUnit
func NormalizeUnit(unit string) string {
	if IsLovelace(unit) {
		return LovelaceUnit
	}
	return strings.ToLower(unit)
}

// NewUnit joins a policy ID and an asset name into a unit string
func NewUnit(policyId Blake2b224, assetName []byte) string {
	return policyId.String() + hex.EncodeToString(assetName)
}

// SplitUnit separates a native asset unit into its policy ID and asset name
func SplitUnit(unit string) (Blake2b224, []byte, error) {
	if IsLovelace(unit) {
		return Blake2b224{}, nil, InvalidUnitError{Unit: unit}
	}
	if len(unit) < Blake2b224Size*2 || len(unit)%2 != 0 {
		return Blake2b224{}, nil, InvalidUnitError{Unit: unit}
	}
	policyId, err := NewBlake2b224FromHex(unit[:Blake2b224Size*2])
	if err != nil {
		return Blake2b224{}, nil, InvalidUnitError{Unit: unit, Err: err}
	}
	assetName, err := hex.DecodeString(unit[Blake2b224Size*2:])
	if err != nil {
		return Blake2b224{}, nil, InvalidUnitError{Unit: unit, Err: err}
	}
	if len(assetName) > 32 {
		return Blake2b224{}, nil, InvalidUnitError{
			Unit: unit,
			Err:  fmt.Errorf("asset name too long: %d bytes", len(assetName)),
		}
	}
	return policyId, assetName, nil
}

// Value is a multi-asset amount keyed by unit. Units keep the order in which
// they were first added, so that conversions back to []Asset are stable
type Value struct {
	units   []string
	amounts map[string]*big.Int
}

func NewValue() *Value {
	return &Value{
		amounts: make(map[string]*big.Int),
	}
}

// NewValueFromLovelace returns a Value holding only the native coin
func NewValueFromLovelace(amount uint64) *Value {
	return NewValue().AddUnit(LovelaceUnit, new(big.Int).SetUint64(amount))
}

// NewValueFromAssets sums the provided assets, combining repeated units
func NewValueFromAssets(assets []Asset) (*Value, error) {
	ret := NewValue()
	if err := ret.AddAssets(assets); err != nil {
		return nil, err
	}
	return ret, nil
}

// AddAssets adds each asset to the value
func (v *Value) AddAssets(assets []Asset) error {
	for _, asset := range assets {
		amount, err := asset.Amount()
		if err != nil {
			return err
		}
		v.AddUnit(asset.Unit, amount)
	}
	return nil
}

// AddUnit adds an amount of a single unit. Negative amounts subtract
func (v *Value) AddUnit(unit string, amount *big.Int) *Value {
	if amount == nil {
		return v
	}
	if v.amounts == nil {
		v.amounts = make(map[string]*big.Int)
	}
	unit = NormalizeUnit(unit)
	existing, ok := v.amounts[unit]
	if !ok {
		v.units = append(v.units, unit)
		v.amounts[unit] = new(big.Int).Set(amount)
		return v
	}
	existing.Add(existing, amount)
	return v
}

// Add adds every unit of other to the value
func (v *Value) Add(other *Value) *Value {
	if other == nil {
		return v
	}
	for _, unit := range other.units {
		v.AddUnit(unit, other.amounts[unit])
	}
	return v
}

// Sub subtracts every unit of other from the value
func (v *Value) Sub(other *Value) *Value {
	if other == nil {
		return v
	}
	for _, unit := range other.units {
		v.AddUnit(unit, new(big.Int).Neg(other.amounts[unit]))
	}
	return v
}

// Get returns a copy of the amount held for unit, or zero
func (v *Value) Get(unit string) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	amount, ok := v.amounts[NormalizeUnit(unit)]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}

// Lovelace returns the native coin amount
func (v *Value) Lovelace() *big.Int {
	return v.Get(LovelaceUnit)
}

// SetLovelace replaces the native coin amount
func (v *Value) SetLovelace(amount *big.Int) *Value {
	return v.AddUnit(LovelaceUnit, new(big.Int).Sub(amount, v.Lovelace()))
}

// Units returns the units present, in insertion order
func (v *Value) Units() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.units)
}

// Geq reports whether the value holds at least every positive amount in other
func (v *Value) Geq(other *Value) bool {
	if other == nil {
		return true
	}
	for _, unit := range other.units {
		required := other.amounts[unit]
		if required.Sign() <= 0 {
			continue
		}
		if v.Get(unit).Cmp(required) < 0 {
			return false
		}
	}
	return true
}

// IsZero returns true when every amount is zero
func (v *Value) IsZero() bool {
	if v == nil {
		return true
	}
	for _, amount := range v.amounts {
		if amount.Sign() != 0 {
			return false
		}
	}
	return true
}

// HasNegative returns true when any unit has a negative amount
func (v *Value) HasNegative() bool {
	if v == nil {
		return false
	}
	for _, amount := range v.amounts {
		if amount.Sign() < 0 {
			return true
		}
	}
	return false
}

// Positive returns a new Value containing only the positive amounts
func (v *Value) Positive() *Value {
	ret := NewValue()
	if v == nil {
		return ret
	}
	for _, unit := range v.units {
		if v.amounts[unit].Sign() > 0 {
			ret.AddUnit(unit, v.amounts[unit])
		}
	}
	return ret
}

// Negative returns a new Value with the negated negative amounts
func (v *Value) Negative() *Value {
	ret := NewValue()
	if v == nil {
		return ret
	}
	for _, unit := range v.units {
		if v.amounts[unit].Sign() < 0 {
			ret.AddUnit(unit, new(big.Int).Neg(v.amounts[unit]))
		}
	}
	return ret
}

// AssetCount returns the number of non-zero native asset units
func (v *Value) AssetCount() int {
	if v == nil {
		return 0
	}
	ret := 0
	for _, unit := range v.units {
		if unit != LovelaceUnit && v.amounts[unit].Sign() != 0 {
			ret++
		}
	}
	return ret
}

// HasAssets returns true when any native asset unit is non-zero
func (v *Value) HasAssets() bool {
	return v.AssetCount() > 0
}

func (v *Value) Clone() *Value {
	return NewValue().Add(v)
}

// ToAssets returns the non-zero amounts as assets, in insertion order
func (v *Value) ToAssets() []Asset {
	ret := []Asset{}
	if v == nil {
		return ret
	}
	for _, unit := range v.units {
		amount := v.amounts[unit]
		if amount.Sign() == 0 {
			continue
		}
		ret = append(ret, Asset{Unit: unit, Quantity: amount.String()})
	}
	return ret
}

// MultiAsset returns the native asset portion of the value
func (v *Value) MultiAsset() (MultiAsset, error) {
	ret := NewMultiAsset()
	if v == nil {
		return ret, nil
	}
	for _, unit := range v.units {
		amount := v.amounts[unit]
		if unit == LovelaceUnit || amount.Sign() == 0 {
			continue
		}
		policyId, assetName, err := SplitUnit(unit)
		if err != nil {
			return MultiAsset{}, err
		}
		ret.Add(policyId, assetName, amount)
	}
	return ret, nil
}

func (v *Value) String() string {
	tmpParts := make([]string, 0, len(v.units))
	for _, unit := range v.units {
		tmpParts = append(
			tmpParts,
			fmt.Sprintf("%s=%s", unit, v.amounts[unit].String()),
		)
	}
	return "[" + strings.Join(tmpParts, ", ") + "]"
}

// MultiAsset represents a collection of policies, assets, and quantities. It's
// used for output values and for the mint field, where negative amounts burn
type MultiAsset struct {
	data map[Blake2b224]map[cbor.ByteString]*big.Int
}

func NewMultiAsset() MultiAsset {
	return MultiAsset{
		data: make(map[Blake2b224]map[cbor.ByteString]*big.Int),
	}
}

func (m *MultiAsset) UnmarshalCBOR(data []byte) error {
	_, err := cbor.Decode(data, &(m.data))
	return err
}

func (m MultiAsset) MarshalCBOR() ([]byte, error) {
	// The CBOR library is configured with SortCoreDeterministic, so direct encoding
	// of the map produces deterministic output without manual sorting
	return cbor.Encode(m.normalize())
}

// Add adds an amount for the given policy and asset name
func (m *MultiAsset) Add(policyId Blake2b224, assetName []byte, amount *big.Int) {
	if m.data == nil {
		m.data = make(map[Blake2b224]map[cbor.ByteString]*big.Int)
	}
	if _, ok := m.data[policyId]; !ok {
		m.data[policyId] = make(map[cbor.ByteString]*big.Int)
	}
	key := cbor.NewByteString(assetName)
	existing, ok := m.data[policyId][key]
	if !ok {
		m.data[policyId][key] = new(big.Int).Set(amount)
		return
	}
	existing.Add(existing, amount)
}

func (m *MultiAsset) Asset(policyId Blake2b224, assetName []byte) *big.Int {
	policy, ok := m.data[policyId]
	if !ok {
		return new(big.Int)
	}
	amount, ok := policy[cbor.NewByteString(assetName)]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}

// Policies returns the policy IDs in ascending byte order
func (m *MultiAsset) Policies() []Blake2b224 {
	ret := slices.Collect(maps.Keys(m.data))
	slices.SortFunc(
		ret,
		func(a, b Blake2b224) int { return bytes.Compare(a.Bytes(), b.Bytes()) },
	)
	return ret
}

// Assets returns the asset names under a policy in ascending byte order
func (m *MultiAsset) Assets(policyId Blake2b224) [][]byte {
	assets, ok := m.data[policyId]
	if !ok {
		return nil
	}
	ret := make([][]byte, 0, len(assets))
	for assetName := range assets {
		ret = append(ret, assetName.Bytes())
	}
	slices.SortFunc(ret, bytes.Compare)
	return ret
}

// IsEmpty returns true when no policy holds a non-zero amount
func (m *MultiAsset) IsEmpty() bool {
	return len(m.normalize()) == 0
}

// ToValue converts the multi-asset into a unit keyed Value
func (m *MultiAsset) ToValue() *Value {
	ret := NewValue()
	for _, policyId := range m.Policies() {
		for _, assetName := range m.Assets(policyId) {
			ret.AddUnit(
				NewUnit(policyId, assetName),
				m.Asset(policyId, assetName),
			)
		}
	}
	return ret
}

func (m *MultiAsset) normalize() map[Blake2b224]map[cbor.ByteString]*big.Int {
	ret := map[Blake2b224]map[cbor.ByteString]*big.Int{}
	for policy, assets := range m.data {
		for asset, amount := range assets {
			if amount == nil || amount.Sign() == 0 {
				continue
			}
			if _, ok := ret[policy]; !ok {
				ret[policy] = make(map[cbor.ByteString]*big.Int)
			}
			ret[policy][asset] = new(big.Int).Set(amount)
		}
	}
	return ret
}
