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
	"cmp"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/txbuilder/cbor"
)

// TransactionInput references an output of a previous transaction
type TransactionInput struct {
	TxHash      string `json:"txHash"`
	OutputIndex uint32 `json:"outputIndex"`
}

func NewTransactionInput(txHash string, outputIndex uint32) TransactionInput {
	return TransactionInput{
		TxHash:      strings.ToLower(txHash),
		OutputIndex: outputIndex,
	}
}

// ParseTransactionInput parses the txHash#index form returned by String
func ParseTransactionInput(ref string) (TransactionInput, error) {
	txHash, idxStr, ok := strings.Cut(ref, "#")
	if !ok {
		return TransactionInput{}, fmt.Errorf(
			"invalid transaction input reference: %s",
			ref,
		)
	}
	if _, err := NewBlake2b256FromHex(txHash); err != nil {
		return TransactionInput{}, fmt.Errorf(
			"invalid transaction input reference %s: %w",
			ref,
			err,
		)
	}
	idx, err := strconv.ParseUint(idxStr, 10, 32)
	if err != nil {
		return TransactionInput{}, fmt.Errorf(
			"invalid transaction input reference %s: %w",
			ref,
			err,
		)
	}
	return NewTransactionInput(txHash, uint32(idx)), nil
}

// String returns the txHash#index key that identifies the input
func (i TransactionInput) String() string {
	return fmt.Sprintf("%s#%d", i.TxHash, i.OutputIndex)
}

func (i TransactionInput) Id() (Blake2b256, error) {
	return NewBlake2b256FromHex(i.TxHash)
}

func (i TransactionInput) MarshalCBOR() ([]byte, error) {
	txId, err := i.Id()
	if err != nil {
		return nil, fmt.Errorf("invalid input %s: %w", i.String(), err)
	}
	return cbor.Encode([]any{txId, i.OutputIndex})
}

// CompareTransactionInputs orders inputs the way the ledger sorts its input sets
func CompareTransactionInputs(a, b TransactionInput) int {
	if c := strings.Compare(
		strings.ToLower(a.TxHash),
		strings.ToLower(b.TxHash),
	); c != 0 {
		return c
	}
	return cmp.Compare(a.OutputIndex, b.OutputIndex)
}

// TransactionOutput is an observed output. Inline datums and reference
// scripts are carried as hex-encoded CBOR
type TransactionOutput struct {
	Address    string  `json:"address"`
	Amount     []Asset `json:"amount"`
	DataHash   string  `json:"dataHash,omitempty"`
	PlutusData string  `json:"plutusData,omitempty"`
	ScriptRef  string  `json:"scriptRef,omitempty"`
	ScriptHash string  `json:"scriptHash,omitempty"`
}

// Value sums the output amount
func (o TransactionOutput) Value() (*Value, error) {
	return NewValueFromAssets(o.Amount)
}

// UTxO is an unspent output along with the input that references it
type UTxO struct {
	Input  TransactionInput  `json:"input"`
	Output TransactionOutput `json:"output"`
}

// Key returns the txHash#index identifier of the UTxO
func (u UTxO) Key() string {
	return u.Input.String()
}

// Value sums the UTxO amount
func (u UTxO) Value() (*Value, error) {
	return u.Output.Value()
}

// Lovelace returns the native coin held by the UTxO, or zero if the amount is malformed
func (u UTxO) Lovelace() uint64 {
	tmpValue, err := u.Value()
	if err != nil {
		return 0
	}
	lovelace := tmpValue.Lovelace()
	if !lovelace.IsUint64() {
		return 0
	}
	return lovelace.Uint64()
}

// ScriptRefBytes decodes the reference script CBOR, if any
func (u UTxO) ScriptRefBytes() ([]byte, error) {
	if u.Output.ScriptRef == "" {
		return nil, errors.New("UTxO has no reference script")
	}
	return hex.DecodeString(u.Output.ScriptRef)
}
