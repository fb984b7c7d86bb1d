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
	"errors"
	"fmt"

	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// Fetcher queries chain state
type Fetcher interface {
	// FetchUTxOs returns the unspent outputs created by a transaction
	FetchUTxOs(ctx context.Context, txHash string) ([]common.UTxO, error)
	// FetchAddressUTxOs returns the unspent outputs held at an address
	FetchAddressUTxOs(ctx context.Context, address string) ([]common.UTxO, error)
	FetchProtocolParameters(ctx context.Context) (*common.ProtocolParameters, error)
}

// Evaluator computes the execution budget of each redeemer in a transaction.
// The resolved UTxOs cover inputs and reference inputs that the evaluator may
// not be able to look up itself
type Evaluator interface {
	EvaluateTx(ctx context.Context, txCbor string, resolvedUtxos []common.UTxO) ([]Action, error)
}

// Submitter sends a signed transaction to the network and returns its hash
type Submitter interface {
	SubmitTx(ctx context.Context, txCbor string) (string, error)
}

// Signer adds witnesses to a transaction
type Signer interface {
	SignTx(ctx context.Context, txCbor string) (string, error)
}

// Action is the evaluated budget of a single redeemer
type Action struct {
	Tag    common.RedeemerTag `json:"tag"`
	Index  uint32             `json:"index"`
	Budget common.ExUnits     `json:"budget"`
}

func (a Action) Key() common.RedeemerKey {
	return common.RedeemerKey{Tag: a.Tag, Index: a.Index}
}

var (
	ErrNotFound              = errors.New("not found")
	ErrNoProtocolParameters  = errors.New("no protocol parameters available")
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrInvalidSigningKey     = errors.New("invalid signing key")
	ErrFetcherCacheClosed    = errors.New("fetcher cache is closed")
	errUnsupportedRedeemers  = errors.New("unsupported redeemers encoding")
	errUnsupportedVkeyFormat = errors.New("unsupported vkey witness encoding")
)

// InvalidTransactionError wraps a failure to parse transaction CBOR
type InvalidTransactionError struct {
	Reason string
	Err    error
}

func (e InvalidTransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid transaction: %s: %v", e.Reason, e.Err)
	}
	return "invalid transaction: " + e.Reason
}

func (e InvalidTransactionError) Unwrap() error { return e.Err }

func (InvalidTransactionError) Is(target error) bool {
	return target == ErrInvalidTransaction
}
