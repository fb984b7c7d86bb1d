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

package txbuilder

import (
	"math/big"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
)

const (
	// Bytes added to the serialized size of an output for the minimum UTxO calculation
	minUtxoOverheadBytes = 160
	// Reference script fees rise by refScriptTierMultiplier every refScriptTierSize bytes
	refScriptTierSize = 25600
)

var refScriptTierMultiplier = big.NewRat(12, 10)

// languageViews encodes the cost models of the used Plutus languages. V2 and
// V3 use their integer IDs as keys and a definite list of costs. V1 keeps the
// legacy encoding, with the serialized key and the serialized indefinite
// list both wrapped in byte strings
func languageViews(
	languages map[common.PlutusLanguage]bool,
	pparams *common.ProtocolParameters,
) ([]byte, error) {
	costModel := func(language common.PlutusLanguage) ([]int64, error) {
		costs := pparams.CostModels[language]
		if len(costs) == 0 {
			return nil, ValidationError{
				Item:   "protocol parameters",
				Field:  "cost models",
				Reason: "missing cost model for Plutus " + language.String(),
			}
		}
		return costs, nil
	}
	tmpMap := cbor.OrderedMap{}
	// Single byte integer keys sort before the two byte V1 key
	for _, language := range []common.PlutusLanguage{common.PlutusLanguageV2, common.PlutusLanguageV3} {
		if !languages[language] {
			continue
		}
		costs, err := costModel(language)
		if err != nil {
			return nil, err
		}
		tmpList := make([]any, 0, len(costs))
		for _, cost := range costs {
			tmpList = append(tmpList, cost)
		}
		tmpMap = append(tmpMap, cbor.MapPair{
			Key:   uint64(language.CostModelKey()),
			Value: tmpList,
		})
	}
	if languages[common.PlutusLanguageV1] {
		costs, err := costModel(common.PlutusLanguageV1)
		if err != nil {
			return nil, err
		}
		tmpList := make(cbor.IndefLengthList, 0, len(costs))
		for _, cost := range costs {
			tmpList = append(tmpList, cost)
		}
		costsCbor, err := cbor.EncodeCanonical(tmpList, cbor.CanonicalOptions{})
		if err != nil {
			return nil, err
		}
		keyCbor, err := cbor.EncodeCanonical(
			uint64(common.PlutusLanguageV1.CostModelKey()),
			cbor.CanonicalOptions{},
		)
		if err != nil {
			return nil, err
		}
		tmpMap = append(tmpMap, cbor.MapPair{Key: keyCbor, Value: costsCbor})
	}
	return cbor.EncodeCanonical(tmpMap, cbor.CanonicalOptions{})
}

// scriptDataHash hashes the redeemers, datums and language views. It returns
// nil when the transaction has neither redeemers nor datums
func scriptDataHash(
	redeemersCbor []byte,
	datumsCbor []byte,
	languages map[common.PlutusLanguage]bool,
	pparams *common.ProtocolParameters,
) (*common.Blake2b256, error) {
	if len(redeemersCbor) == 0 && len(datumsCbor) == 0 {
		return nil, nil
	}
	var buf []byte
	if len(redeemersCbor) == 0 {
		// Datums without redeemers use an empty redeemer map and empty language views
		buf = append(buf, 0xa0)
		buf = append(buf, datumsCbor...)
		buf = append(buf, 0xa0)
	} else {
		views, err := languageViews(languages, pparams)
		if err != nil {
			return nil, err
		}
		buf = append(buf, redeemersCbor...)
		buf = append(buf, datumsCbor...)
		buf = append(buf, views...)
	}
	ret := common.Blake2b256Hash(buf)
	return &ret, nil
}

func ceilRat(r *big.Rat) *big.Int {
	num, denom := r.Num(), r.Denom()
	ret, rem := new(big.Int).QuoRem(num, denom, new(big.Int))
	if rem.Sign() > 0 {
		ret.Add(ret, big.NewInt(1))
	}
	return ret
}

func floorRat(r *big.Rat) *big.Int {
	num, denom := r.Num(), r.Denom()
	ret, rem := new(big.Int).QuoRem(num, denom, new(big.Int))
	if rem.Sign() < 0 {
		ret.Sub(ret, big.NewInt(1))
	}
	return ret
}

func ratOrZero(r common.Rational) *big.Rat {
	if r.Rat == nil {
		return new(big.Rat)
	}
	return r.Rat
}

// scriptFee returns the execution cost of a redeemer budget, rounded up
func scriptFee(exUnits common.ExUnits, pparams *common.ProtocolParameters) *big.Int {
	mem := new(big.Rat).Mul(new(big.Rat).SetUint64(exUnits.Memory), ratOrZero(pparams.PriceMem))
	steps := new(big.Rat).Mul(new(big.Rat).SetUint64(exUnits.Steps), ratOrZero(pparams.PriceStep))
	return ceilRat(mem.Add(mem, steps))
}

// referenceScriptFee prices reference script bytes in tiers, each tier
// costing refScriptTierMultiplier times the previous one per byte
func referenceScriptFee(size int, costPerByte uint64) *big.Int {
	total := new(big.Rat)
	price := new(big.Rat).SetUint64(costPerByte)
	for remaining := size; remaining > 0; remaining -= refScriptTierSize {
		chunk := min(remaining, refScriptTierSize)
		total.Add(total, new(big.Rat).Mul(big.NewRat(int64(chunk), 1), price))
		price = new(big.Rat).Mul(price, refScriptTierMultiplier)
	}
	return floorRat(total)
}

// calculateFee returns the minimum fee of a transaction of txSize bytes
func calculateFee(
	txSize int,
	redeemers []redeemerEntry,
	refScriptSize int,
	pparams *common.ProtocolParameters,
) uint64 {
	fee := new(big.Int).SetUint64(pparams.MinFeeA)
	fee.Mul(fee, big.NewInt(int64(txSize)))
	fee.Add(fee, new(big.Int).SetUint64(pparams.MinFeeB))
	for _, entry := range redeemers {
		if entry.redeemer != nil {
			fee.Add(fee, scriptFee(entry.redeemer.ExUnits, pparams))
		}
	}
	fee.Add(fee, referenceScriptFee(refScriptSize, pparams.MinFeeRefScriptCostPerByte))
	return fee.Uint64()
}

// minUtxoLovelace returns the smallest lovelace amount the output may hold.
// The lovelace field is part of the size, so the calculation repeats until
// the amount no longer changes
func minUtxoLovelace(out Output, pparams *common.ProtocolParameters) (uint64, error) {
	var lovelace uint64
	for range 8 {
		out.Amount = setLovelace(out.Amount, lovelace)
		outCbor, err := encodeOutput(out)
		if err != nil {
			return 0, err
		}
		required := (minUtxoOverheadBytes + uint64(len(outCbor))) * pparams.CoinsPerUtxoSize
		if required <= lovelace {
			return lovelace, nil
		}
		lovelace = required
	}
	return lovelace, nil
}
