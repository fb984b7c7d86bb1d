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

	"github.com/blinklabs-io/txbuilder/coinselection"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/plutusdata"
)

// ScriptSource locates the Plutus script that validates a body item
type ScriptSource interface {
	isScriptSource()
	Language() common.PlutusLanguage
}

// ProvidedScriptSource carries the script code, which is added to the witness set
type ProvidedScriptSource struct {
	Code    string
	Version common.PlutusLanguage
}

func (ProvidedScriptSource) isScriptSource() {}

func (s ProvidedScriptSource) Language() common.PlutusLanguage { return s.Version }

// InlineScriptSource points at a UTxO holding the script as a reference script.
// ScriptHash and ScriptSize are filled in from the UTxO when left empty
type InlineScriptSource struct {
	TxHash     string
	Index      uint32
	ScriptHash string
	ScriptSize int
	Version    common.PlutusLanguage
}

func (InlineScriptSource) isScriptSource() {}

func (s InlineScriptSource) Language() common.PlutusLanguage { return s.Version }

// SimpleScriptSource locates a native script
type SimpleScriptSource interface {
	isSimpleScriptSource()
}

type ProvidedSimpleScriptSource struct {
	Code string
}

func (ProvidedSimpleScriptSource) isSimpleScriptSource() {}

type InlineSimpleScriptSource struct {
	TxHash     string
	Index      uint32
	ScriptHash string
	ScriptSize int
}

func (InlineSimpleScriptSource) isSimpleScriptSource() {}

// DatumSource supplies the datum of a spent script output
type DatumSource interface {
	isDatumSource()
}

// ProvidedDatumSource carries the datum, which is added to the witness set
type ProvidedDatumSource struct {
	Data plutusdata.BuilderData
}

func (ProvidedDatumSource) isDatumSource() {}

// InlineDatumSource marks a datum that is stored inline in the spent output
type InlineDatumSource struct {
	TxHash string
	Index  uint32
}

func (InlineDatumSource) isDatumSource() {}

type Redeemer struct {
	Data    plutusdata.BuilderData
	ExUnits common.ExUnits
}

type OutputDatumType int

const (
	OutputDatumHash OutputDatumType = iota
	OutputDatumInline
	// OutputDatumEmbedded stores the datum hash in the output and the datum in the witness set
	OutputDatumEmbedded
)

type OutputDatum struct {
	Type OutputDatumType
	Data plutusdata.BuilderData
}

// ReferenceScript is a script attached to an output. A zero Version marks a
// native script
type ReferenceScript struct {
	Code    string
	Version common.PlutusLanguage
}

type Output struct {
	Address         string
	Amount          []common.Asset
	Datum           *OutputDatum
	ReferenceScript *ReferenceScript
}

// TxInParameter identifies a spent output. Amount and Address are resolved
// from known UTxOs when not given
type TxInParameter struct {
	TxHash  string
	TxIndex uint32
	Amount  []common.Asset
	Address string
	// ScriptSize is the size of a reference script held by the spent output
	ScriptSize int
}

func (p TxInParameter) Input() common.TransactionInput {
	return common.NewTransactionInput(p.TxHash, p.TxIndex)
}

func (p TxInParameter) resolved() bool {
	return p.Amount != nil && p.Address != ""
}

// TxIn is one of PubKeyTxIn, SimpleScriptTxIn or ScriptTxIn
type TxIn interface {
	isTxIn()
	Parameter() *TxInParameter
}

type PubKeyTxIn struct {
	TxIn TxInParameter
}

func (*PubKeyTxIn) isTxIn() {}

func (t *PubKeyTxIn) Parameter() *TxInParameter { return &t.TxIn }

type SimpleScriptTxIn struct {
	TxIn         TxInParameter
	ScriptSource SimpleScriptSource
}

func (*SimpleScriptTxIn) isTxIn() {}

func (t *SimpleScriptTxIn) Parameter() *TxInParameter { return &t.TxIn }

type ScriptTxIn struct {
	TxIn         TxInParameter
	ScriptSource ScriptSource
	DatumSource  DatumSource
	Redeemer     *Redeemer
}

func (*ScriptTxIn) isTxIn() {}

func (t *ScriptTxIn) Parameter() *TxInParameter { return &t.TxIn }

// RefTxIn is a read-only reference input
type RefTxIn struct {
	TxHash     string
	TxIndex    uint32
	ScriptSize int
}

func (r RefTxIn) Input() common.TransactionInput {
	return common.NewTransactionInput(r.TxHash, r.TxIndex)
}

// WitnessType selects how a mint, withdrawal, vote or certificate is authorized
type WitnessType int

const (
	WitnessKey WitnessType = iota
	WitnessPlutus
	WitnessNative
)

type MintItem struct {
	Type               WitnessType
	PolicyId           string
	AssetName          string
	Amount             *big.Int
	ScriptSource       ScriptSource
	SimpleScriptSource SimpleScriptSource
	Redeemer           *Redeemer
}

// Unit returns the asset unit minted or burned by the item
func (m MintItem) Unit() string {
	return m.PolicyId + m.AssetName
}

type CertificateItem struct {
	Type               WitnessType
	Certificate        common.Certificate
	ScriptSource       ScriptSource
	SimpleScriptSource SimpleScriptSource
	Redeemer           *Redeemer
}

type Withdrawal struct {
	Type               WitnessType
	Address            string
	Amount             uint64
	ScriptSource       ScriptSource
	SimpleScriptSource SimpleScriptSource
	Redeemer           *Redeemer
}

type VoteItem struct {
	Type               WitnessType
	Voter              common.Voter
	GovActionId        common.GovActionId
	Procedure          common.VotingProcedure
	ScriptSource       ScriptSource
	SimpleScriptSource SimpleScriptSource
	Redeemer           *Redeemer
}

// MetadataItem is a metadata label with its value in JSON form
type MetadataItem struct {
	Label uint64
	Value string
}

// ValidityRange holds the slot bounds of the transaction
type ValidityRange struct {
	InvalidBefore    *uint64
	InvalidHereafter *uint64
}

// TxBuilderBody is the mutable description of the transaction being built
type TxBuilderBody struct {
	Inputs                  []TxIn
	Outputs                 []Output
	Collaterals             []*PubKeyTxIn
	ReferenceInputs         []RefTxIn
	Mints                   []MintItem
	Certificates            []CertificateItem
	Withdrawals             []Withdrawal
	Votes                   []VoteItem
	RequiredSignatures      []string
	Metadata                []MetadataItem
	ValidityRange           ValidityRange
	ChangeAddress           string
	ChangeDatum             *OutputDatum
	SigningKeys             []string
	Network                 common.Network
	Fee                     *uint64
	ExtraInputs             []common.UTxO
	SelectionConfig         coinselection.Config
	TotalCollateral         *uint64
	CollateralReturnAddress string
}

// NewTxBuilderBody returns an empty body with the default selection configuration
func NewTxBuilderBody(network common.Network) *TxBuilderBody {
	return &TxBuilderBody{
		Network: network,
		SelectionConfig: coinselection.Config{
			Threshold: coinselection.DefaultThreshold,
			Strategy:  coinselection.DefaultStrategy,
		},
	}
}

// hasPlutusScripts reports whether any item carries a Plutus redeemer
func (b *TxBuilderBody) hasPlutusScripts() bool {
	for _, input := range b.Inputs {
		if _, ok := input.(*ScriptTxIn); ok {
			return true
		}
	}
	for _, mint := range b.Mints {
		if mint.Type == WitnessPlutus {
			return true
		}
	}
	for _, cert := range b.Certificates {
		if cert.Type == WitnessPlutus {
			return true
		}
	}
	for _, withdrawal := range b.Withdrawals {
		if withdrawal.Type == WitnessPlutus {
			return true
		}
	}
	for _, vote := range b.Votes {
		if vote.Type == WitnessPlutus {
			return true
		}
	}
	return false
}
