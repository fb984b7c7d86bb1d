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
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Rational is a wrapper to big.Rat that unmarshals from a bare JSON number,
// a quoted decimal or fraction, or a {numerator, denominator} object
type Rational struct {
	*big.Rat
}

func NewRational(num int64, denom int64) Rational {
	return Rational{Rat: big.NewRat(num, denom)}
}

// ParseRational parses a decimal ("0.0577") or fraction ("577/10000") string
func ParseRational(value string) (Rational, error) {
	tmpRat, ok := new(big.Rat).SetString(value)
	if !ok {
		return Rational{}, fmt.Errorf("invalid rational value: %q", value)
	}
	return Rational{Rat: tmpRat}, nil
}

func (r *Rational) UnmarshalJSON(data []byte) error {
	// Try as ratio
	var tmpData struct {
		Numerator   *int64 `json:"numerator"`
		Denominator *int64 `json:"denominator"`
	}
	if err := json.Unmarshal(data, &tmpData); err == nil &&
		tmpData.Numerator != nil && tmpData.Denominator != nil {
		if *tmpData.Denominator == 0 {
			return fmt.Errorf("invalid rational value: zero denominator")
		}
		r.Rat = big.NewRat(*tmpData.Numerator, *tmpData.Denominator)
		return nil
	}
	// Try as decimal value, quoted or not
	tmpStr := strings.Trim(string(data), `"`)
	tmp, err := ParseRational(tmpStr)
	if err != nil {
		return fmt.Errorf("math/big: cannot unmarshal %q into a *big.Rat", data)
	}
	r.Rat = tmp.Rat
	return nil
}

func (r Rational) MarshalJSON() ([]byte, error) {
	if r.Rat == nil {
		return []byte("null"), nil
	}
	if r.IsInt() {
		return []byte(r.Num().String()), nil
	}
	return []byte(strconv.Quote(r.RatString())), nil
}

// ProtocolParameters holds the subset of the current protocol parameters that
// transaction construction depends on
type ProtocolParameters struct {
	Epoch                      uint64                     `json:"epoch"`
	MinFeeA                    uint64                     `json:"minFeeA"`
	MinFeeB                    uint64                     `json:"minFeeB"`
	MaxBlockSize               uint64                     `json:"maxBlockSize"`
	MaxTxSize                  uint64                     `json:"maxTxSize"`
	MaxBlockHeaderSize         uint64                     `json:"maxBlockHeaderSize"`
	KeyDeposit                 uint64                     `json:"keyDeposit"`
	PoolDeposit                uint64                     `json:"poolDeposit"`
	DrepDeposit                uint64                     `json:"drepDeposit"`
	GovActionDeposit           uint64                     `json:"govActionDeposit"`
	MinPoolCost                uint64                     `json:"minPoolCost"`
	PriceMem                   Rational                   `json:"priceMem"`
	PriceStep                  Rational                   `json:"priceStep"`
	MaxTxExMem                 uint64                     `json:"maxTxExMem"`
	MaxTxExSteps               uint64                     `json:"maxTxExSteps"`
	MaxBlockExMem              uint64                     `json:"maxBlockExMem"`
	MaxBlockExSteps            uint64                     `json:"maxBlockExSteps"`
	MaxValSize                 uint64                     `json:"maxValSize"`
	CollateralPercent          uint64                     `json:"collateralPercent"`
	MaxCollateralInputs        uint64                     `json:"maxCollateralInputs"`
	CoinsPerUtxoSize           uint64                     `json:"coinsPerUtxoSize"`
	MinFeeRefScriptCostPerByte uint64                     `json:"minFeeRefScriptCostPerByte"`
	CostModels                 map[PlutusLanguage][]int64 `json:"costModels,omitempty"`
}

// DefaultProtocolParameters returns the mainnet Conway-era values used when no
// fetcher or explicit parameters are configured. Cost models are left empty and
// must be supplied before building transactions with Plutus scripts
func DefaultProtocolParameters() *ProtocolParameters {
	return &ProtocolParameters{
		Epoch:                      0,
		MinFeeA:                    44,
		MinFeeB:                    155381,
		MaxBlockSize:               90112,
		MaxTxSize:                  16384,
		MaxBlockHeaderSize:         1100,
		KeyDeposit:                 2000000,
		PoolDeposit:                500000000,
		DrepDeposit:                500000000,
		GovActionDeposit:           100000000000,
		MinPoolCost:                170000000,
		PriceMem:                   NewRational(577, 10000),
		PriceStep:                  NewRational(721, 10000000),
		MaxTxExMem:                 16000000,
		MaxTxExSteps:               10000000000,
		MaxBlockExMem:              72000000,
		MaxBlockExSteps:            20000000000,
		MaxValSize:                 5000,
		CollateralPercent:          150,
		MaxCollateralInputs:        3,
		CoinsPerUtxoSize:           4310,
		MinFeeRefScriptCostPerByte: 15,
		CostModels:                 map[PlutusLanguage][]int64{},
	}
}

// Clone returns a deep copy of the parameters
func (p *ProtocolParameters) Clone() *ProtocolParameters {
	ret := *p
	if p.PriceMem.Rat != nil {
		ret.PriceMem = Rational{Rat: new(big.Rat).Set(p.PriceMem.Rat)}
	}
	if p.PriceStep.Rat != nil {
		ret.PriceStep = Rational{Rat: new(big.Rat).Set(p.PriceStep.Rat)}
	}
	ret.CostModels = make(map[PlutusLanguage][]int64, len(p.CostModels))
	for lang, model := range p.CostModels {
		ret.CostModels[lang] = append([]int64(nil), model...)
	}
	return &ret
}

// MaxTxFee returns the fee of a transaction of the maximum allowed size
func (p *ProtocolParameters) MaxTxFee() uint64 {
	return p.MinFeeA*p.MaxTxSize + p.MinFeeB
}
