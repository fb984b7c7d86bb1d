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
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// Strategy names a coin selection algorithm
type Strategy string

const (
	StrategyKeepRelevant           Strategy = "keepRelevant"
	StrategyLargestFirst           Strategy = "largestFirst"
	StrategyLargestFirstMultiAsset Strategy = "largestFirstMultiAsset"
	StrategyExperimental           Strategy = "experimental"
)

// DefaultThreshold is the lovelace buffer kept on top of the requirement
const DefaultThreshold = "5000000"

const DefaultStrategy = StrategyExperimental

var ErrUnknownStrategy = errors.New("unknown coin selection strategy")

// ParseStrategy accepts the strategy names above. An empty name selects
// DefaultStrategy
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "":
		return DefaultStrategy, nil
	case StrategyKeepRelevant,
		StrategyLargestFirst,
		StrategyLargestFirstMultiAsset,
		StrategyExperimental:
		return Strategy(name), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
}

// ParseThreshold parses a decimal lovelace threshold. An empty string selects
// DefaultThreshold
func ParseThreshold(threshold string) (*big.Int, error) {
	if threshold == "" {
		threshold = DefaultThreshold
	}
	ret, ok := new(big.Int).SetString(threshold, 10)
	if !ok || ret.Sign() < 0 {
		return nil, common.InvalidQuantityError{
			Unit:     common.LovelaceUnit,
			Quantity: threshold,
		}
	}
	return ret, nil
}

// Config is the selection configuration carried by a transaction body
type Config struct {
	Threshold     string
	Strategy      Strategy
	IncludeTxFees bool
}

// Select runs the configured strategy. The maximum transaction fee is taken
// from pparams when IncludeTxFees is set. The result is either a subset that
// covers the requirement or empty
func Select(
	cfg Config,
	required *common.Value,
	utxos []common.UTxO,
	pparams *common.ProtocolParameters,
) ([]common.UTxO, error) {
	strategy, err := ParseStrategy(string(cfg.Strategy))
	if err != nil {
		return nil, err
	}
	threshold, err := ParseThreshold(cfg.Threshold)
	if err != nil {
		return nil, err
	}
	if required == nil {
		required = common.NewValue()
	}
	var maxTxFee uint64
	if cfg.IncludeTxFees && pparams != nil {
		maxTxFee = pparams.MaxTxFee()
	}
	switch strategy {
	case StrategyKeepRelevant:
		return KeepRelevant(required, utxos, threshold)
	case StrategyLargestFirst:
		return LargestFirst(required.Lovelace(), utxos, cfg.IncludeTxFees, maxTxFee)
	case StrategyLargestFirstMultiAsset:
		return LargestFirstMultiAsset(required, utxos, cfg.IncludeTxFees, maxTxFee)
	default:
		return Experimental(required, utxos, threshold)
	}
}

type candidate struct {
	utxo  common.UTxO
	value *common.Value
}

func newCandidates(utxos []common.UTxO) ([]candidate, error) {
	ret := make([]candidate, 0, len(utxos))
	for _, utxo := range utxos {
		tmpValue, err := utxo.Value()
		if err != nil {
			return nil, fmt.Errorf("UTxO %s: %w", utxo.Key(), err)
		}
		ret = append(ret, candidate{utxo: utxo, value: tmpValue})
	}
	return ret, nil
}

// sortByLovelaceDesc orders candidates by lovelace, largest first, keeping
// the relative order of equal amounts
func sortByLovelaceDesc(candidates []candidate) {
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return b.value.Lovelace().Cmp(a.value.Lovelace())
	})
}

// finish returns the selected UTxOs if they cover target, otherwise an empty
// selection
func finish(selected []candidate, target *common.Value) []common.UTxO {
	total := common.NewValue()
	for _, c := range selected {
		total.Add(c.value)
	}
	if !total.Geq(target) {
		return []common.UTxO{}
	}
	ret := make([]common.UTxO, 0, len(selected))
	for _, c := range selected {
		ret = append(ret, c.utxo)
	}
	return ret
}

// withLovelaceBuffer returns the positive part of required with extra
// lovelace added
func withLovelaceBuffer(required *common.Value, extra *big.Int) *common.Value {
	ret := required.Positive()
	if extra != nil && extra.Sign() > 0 {
		ret.AddUnit(common.LovelaceUnit, extra)
	}
	return ret
}

// requestedAssets returns the native asset units with a positive requirement
func requestedAssets(required *common.Value) []string {
	var ret []string
	for _, unit := range required.Positive().Units() {
		if unit != common.LovelaceUnit {
			ret = append(ret, unit)
		}
	}
	return ret
}
