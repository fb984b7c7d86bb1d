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
	"context"
	"strings"
	"sync"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/jinzhu/copier"
)

// OfflineFetcher serves UTxOs and protocol parameters from memory
type OfflineFetcher struct {
	sync.RWMutex
	utxos   []common.UTxO
	pparams *common.ProtocolParameters
}

func NewOfflineFetcher() *OfflineFetcher {
	return &OfflineFetcher{}
}

// AddUTxOs stores copies of the provided UTxOs. A UTxO with an input that is
// already known replaces the stored one
func (f *OfflineFetcher) AddUTxOs(utxos ...common.UTxO) error {
	f.Lock()
	defer f.Unlock()
	for _, utxo := range utxos {
		var tmpUtxo common.UTxO
		if err := copyUtxo(&tmpUtxo, &utxo); err != nil {
			return err
		}
		replaced := false
		for idx := range f.utxos {
			if f.utxos[idx].Key() == tmpUtxo.Key() {
				f.utxos[idx] = tmpUtxo
				replaced = true
				break
			}
		}
		if !replaced {
			f.utxos = append(f.utxos, tmpUtxo)
		}
	}
	return nil
}

// SetProtocolParameters stores a copy of the provided parameters
func (f *OfflineFetcher) SetProtocolParameters(pparams *common.ProtocolParameters) {
	f.Lock()
	defer f.Unlock()
	f.pparams = pparams.Clone()
}

func (f *OfflineFetcher) FetchUTxOs(ctx context.Context, txHash string) ([]common.UTxO, error) {
	return f.filter(ctx, func(u common.UTxO) bool {
		return strings.EqualFold(u.Input.TxHash, txHash)
	})
}

func (f *OfflineFetcher) FetchAddressUTxOs(ctx context.Context, address string) ([]common.UTxO, error) {
	return f.filter(ctx, func(u common.UTxO) bool {
		return u.Output.Address == address
	})
}

func (f *OfflineFetcher) FetchProtocolParameters(ctx context.Context) (*common.ProtocolParameters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.RLock()
	defer f.RUnlock()
	if f.pparams == nil {
		return nil, ErrNoProtocolParameters
	}
	return f.pparams.Clone(), nil
}

func (f *OfflineFetcher) filter(ctx context.Context, match func(common.UTxO) bool) ([]common.UTxO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.RLock()
	defer f.RUnlock()
	ret := []common.UTxO{}
	for _, utxo := range f.utxos {
		if !match(utxo) {
			continue
		}
		var tmpUtxo common.UTxO
		if err := copyUtxo(&tmpUtxo, &utxo); err != nil {
			return nil, err
		}
		ret = append(ret, tmpUtxo)
	}
	return ret, nil
}

func copyUtxo(dest *common.UTxO, src *common.UTxO) error {
	return copier.CopyWithOption(dest, src, copier.Option{DeepCopy: true})
}

func copyUtxos(src []common.UTxO) ([]common.UTxO, error) {
	ret := make([]common.UTxO, len(src))
	if err := copier.CopyWithOption(&ret, &src, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return ret, nil
}

type OfflineEvaluatorOptionFunc func(*OfflineEvaluator)

// OfflineEvaluator reports fixed budgets for every redeemer in a transaction
// without running any scripts
type OfflineEvaluator struct {
	defaultBudget common.ExUnits
	budgets       map[common.RedeemerKey]common.ExUnits
}

func NewOfflineEvaluator(opts ...OfflineEvaluatorOptionFunc) *OfflineEvaluator {
	e := &OfflineEvaluator{
		defaultBudget: common.DefaultRedeemerBudget,
		budgets:       make(map[common.RedeemerKey]common.ExUnits),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithDefaultBudget sets the budget reported for redeemers without an override
func WithDefaultBudget(budget common.ExUnits) OfflineEvaluatorOptionFunc {
	return func(e *OfflineEvaluator) {
		e.defaultBudget = budget
	}
}

// WithBudget sets the budget reported for a single redeemer
func WithBudget(tag common.RedeemerTag, index uint32, budget common.ExUnits) OfflineEvaluatorOptionFunc {
	return func(e *OfflineEvaluator) {
		e.budgets[common.RedeemerKey{Tag: tag, Index: index}] = budget
	}
}

func (e *OfflineEvaluator) EvaluateTx(
	ctx context.Context,
	txCbor string,
	_ []common.UTxO,
) ([]Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := decodeRawTransaction(txCbor)
	if err != nil {
		return nil, err
	}
	keys, err := tx.redeemerKeys()
	if err != nil {
		return nil, err
	}
	ret := make([]Action, 0, len(keys))
	for _, key := range keys {
		budget, ok := e.budgets[key]
		if !ok {
			budget = e.defaultBudget
		}
		ret = append(ret, Action{Tag: key.Tag, Index: key.Index, Budget: budget})
	}
	return ret, nil
}
