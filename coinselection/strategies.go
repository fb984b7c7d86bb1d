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

package coinselection

import (
	"math/big"
	"slices"

	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// KeepRelevant selects every UTxO carrying at least one requested native
// asset. If their lovelace falls short of the requirement plus threshold, the
// largest pure-lovelace UTxOs are added until it is covered
func KeepRelevant(
	required *common.Value,
	utxos []common.UTxO,
	threshold *big.Int,
) ([]common.UTxO, error) {
	candidates, err := newCandidates(utxos)
	if err != nil {
		return nil, err
	}
	target := withLovelaceBuffer(required, threshold)
	assetUnits := requestedAssets(required)
	var selected []candidate
	var lovelaceOnly []candidate
	lovelace := new(big.Int)
	for _, c := range candidates {
		if !c.value.HasAssets() {
			lovelaceOnly = append(lovelaceOnly, c)
			continue
		}
		for _, unit := range assetUnits {
			if c.value.Get(unit).Sign() > 0 {
				selected = append(selected, c)
				lovelace.Add(lovelace, c.value.Lovelace())
				break
			}
		}
	}
	requiredLovelace := target.Lovelace()
	if lovelace.Cmp(requiredLovelace) < 0 {
		sortByLovelaceDesc(lovelaceOnly)
		for _, c := range lovelaceOnly {
			if lovelace.Cmp(requiredLovelace) >= 0 {
				break
			}
			selected = append(selected, c)
			lovelace.Add(lovelace, c.value.Lovelace())
		}
	}
	return finish(selected, target), nil
}

// LargestFirst covers a lovelace amount from pure-lovelace UTxOs, largest
// first. With includeTxFees the maximum transaction fee is added to the target
func LargestFirst(
	lovelace *big.Int,
	utxos []common.UTxO,
	includeTxFees bool,
	maxTxFee uint64,
) ([]common.UTxO, error) {
	candidates, err := newCandidates(utxos)
	if err != nil {
		return nil, err
	}
	target := new(big.Int)
	if lovelace != nil && lovelace.Sign() > 0 {
		target.Set(lovelace)
	}
	if includeTxFees {
		target.Add(target, new(big.Int).SetUint64(maxTxFee))
	}
	var lovelaceOnly []candidate
	for _, c := range candidates {
		if !c.value.HasAssets() {
			lovelaceOnly = append(lovelaceOnly, c)
		}
	}
	sortByLovelaceDesc(lovelaceOnly)
	var selected []candidate
	total := new(big.Int)
	for _, c := range lovelaceOnly {
		if total.Cmp(target) >= 0 {
			break
		}
		selected = append(selected, c)
		total.Add(total, c.value.Lovelace())
	}
	return finish(selected, common.NewValue().AddUnit(common.LovelaceUnit, target)), nil
}

// LargestFirstMultiAsset walks the UTxOs holding native assets in descending
// lovelace order and takes each one that holds something still outstanding,
// until every requested unit and the lovelace target are covered. Pure
// lovelace UTxOs are never selected
func LargestFirstMultiAsset(
	required *common.Value,
	utxos []common.UTxO,
	includeTxFees bool,
	maxTxFee uint64,
) ([]common.UTxO, error) {
	candidates, err := newCandidates(utxos)
	if err != nil {
		return nil, err
	}
	var extra *big.Int
	if includeTxFees {
		extra = new(big.Int).SetUint64(maxTxFee)
	}
	target := withLovelaceBuffer(required, extra)
	candidates = slices.DeleteFunc(candidates, func(c candidate) bool {
		return !c.value.HasAssets()
	})
	sortByLovelaceDesc(candidates)
	var selected []candidate
	outstanding := target.Clone()
	for _, c := range candidates {
		if !outstanding.Positive().HasAssets() && outstanding.Lovelace().Sign() <= 0 {
			break
		}
		useful := false
		for _, unit := range outstanding.Units() {
			if outstanding.Get(unit).Sign() > 0 && c.value.Get(unit).Sign() > 0 {
				useful = true
				break
			}
		}
		if !useful {
			continue
		}
		selected = append(selected, c)
		outstanding.Sub(c.value)
	}
	return finish(selected, target), nil
}

// Experimental sorts UTxOs into buckets by how many native assets they hold:
// none, one, two, and more. For each requested native asset the buckets are
// scanned in that order, consuming UTxOs that hold the asset, and every
// requirement is reduced by the full value of each consumed UTxO. Lovelace
// plus threshold is then covered the same way
func Experimental(
	required *common.Value,
	utxos []common.UTxO,
	threshold *big.Int,
) ([]common.UTxO, error) {
	candidates, err := newCandidates(utxos)
	if err != nil {
		return nil, err
	}
	var buckets [4][]int
	for idx, c := range candidates {
		bucket := min(c.value.AssetCount(), 3)
		buckets[bucket] = append(buckets[bucket], idx)
	}
	ordered := make([]int, 0, len(candidates))
	for _, bucket := range buckets {
		ordered = append(ordered, bucket...)
	}
	target := withLovelaceBuffer(required, threshold)
	remaining := target.Clone()
	used := make([]bool, len(candidates))
	var selected []candidate
	consume := func(unit string) bool {
		for remaining.Get(unit).Sign() > 0 {
			found := false
			for _, idx := range ordered {
				if used[idx] || candidates[idx].value.Get(unit).Sign() <= 0 {
					continue
				}
				used[idx] = true
				selected = append(selected, candidates[idx])
				remaining.Sub(candidates[idx].value)
				found = true
				break
			}
			if !found {
				return false
			}
		}
		return true
	}
	for _, unit := range requestedAssets(required) {
		if !consume(unit) {
			return []common.UTxO{}, nil
		}
	}
	if !consume(common.LovelaceUnit) {
		return []common.UTxO{}, nil
	}
	if remaining.Positive().HasAssets() {
		return []common.UTxO{}, nil
	}
	return finish(selected, target), nil
}
