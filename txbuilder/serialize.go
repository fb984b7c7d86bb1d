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
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/plutusdata"
)

// transactionBody is the Conway transaction body map
type transactionBody struct {
	Inputs                cbor.Set                `cbor:"0,keyasint"`
	Outputs               []cbor.RawMessage       `cbor:"1,keyasint"`
	Fee                   uint64                  `cbor:"2,keyasint"`
	Ttl                   *uint64                 `cbor:"3,keyasint,omitempty"`
	Certificates          []common.Certificate    `cbor:"4,keyasint,omitempty"`
	Withdrawals           cbor.OrderedMap         `cbor:"5,keyasint,omitempty"`
	AuxDataHash           *common.Blake2b256      `cbor:"7,keyasint,omitempty"`
	ValidityIntervalStart *uint64                 `cbor:"8,keyasint,omitempty"`
	Mint                  *common.MultiAsset      `cbor:"9,keyasint,omitempty"`
	ScriptDataHash        *common.Blake2b256      `cbor:"11,keyasint,omitempty"`
	Collateral            cbor.Set                `cbor:"13,keyasint,omitempty"`
	RequiredSigners       cbor.Set                `cbor:"14,keyasint,omitempty"`
	CollateralReturn      cbor.RawMessage         `cbor:"16,keyasint,omitempty"`
	TotalCollateral       *uint64                 `cbor:"17,keyasint,omitempty"`
	ReferenceInputs       cbor.Set                `cbor:"18,keyasint,omitempty"`
	VotingProcedures      common.VotingProcedures `cbor:"19,keyasint,omitempty"`
}

type transactionWitnessSet struct {
	VkeyWitnesses   cbor.Set        `cbor:"0,keyasint,omitempty"`
	NativeScripts   cbor.Set        `cbor:"1,keyasint,omitempty"`
	PlutusV1Scripts cbor.Set        `cbor:"3,keyasint,omitempty"`
	PlutusData      cbor.RawMessage `cbor:"4,keyasint,omitempty"`
	Redeemers       cbor.RawMessage `cbor:"5,keyasint,omitempty"`
	PlutusV2Scripts cbor.Set        `cbor:"6,keyasint,omitempty"`
	PlutusV3Scripts cbor.Set        `cbor:"7,keyasint,omitempty"`
}

type vkeyWitness struct {
	cbor.StructAsArray
	Vkey      []byte
	Signature []byte
}

// assembly is one candidate transaction produced during completion
type assembly struct {
	pparams          *common.ProtocolParameters
	outputs          []Output
	fee              uint64
	totalCollateral  *uint64
	collateralReturn *Output
	// signers get placeholder vkey witnesses so the size matches the signed transaction
	signers []common.Blake2b224
}

// encodedTx is a serialized transaction along with the parts the fee depends on
type encodedTx struct {
	cbor      []byte
	redeemers []redeemerEntry
}

func (t *encodedTx) hex() string {
	return hex.EncodeToString(t.cbor)
}

func encodeValue(amount []common.Asset) (any, error) {
	tmpValue, err := common.NewValueFromAssets(amount)
	if err != nil {
		return nil, err
	}
	lovelace := tmpValue.Lovelace()
	if tmpValue.HasNegative() || !lovelace.IsUint64() {
		return nil, ValidationError{
			Item:   "output",
			Field:  "amount",
			Reason: "negative or out of range amount " + tmpValue.String(),
		}
	}
	if !tmpValue.HasAssets() {
		return lovelace.Uint64(), nil
	}
	multiAsset, err := tmpValue.MultiAsset()
	if err != nil {
		return nil, err
	}
	return []any{lovelace.Uint64(), multiAsset}, nil
}

func encodeScriptRef(ref ReferenceScript) ([]byte, error) {
	var script common.Script
	if ref.Version == 0 {
		native, err := parseNativeScript(ref.Code)
		if err != nil {
			return nil, err
		}
		script = native
	} else {
		tmpScript, err := parsePlutusScript(ref.Code, ref.Version)
		if err != nil {
			return nil, err
		}
		script = tmpScript
	}
	scriptRef, err := common.NewScriptRef(script)
	if err != nil {
		return nil, err
	}
	return scriptRef.MarshalCBOR()
}

// encodeOutput encodes an output in the post-Alonzo map form
func encodeOutput(out Output) ([]byte, error) {
	addr, err := common.NewAddress(out.Address)
	if err != nil {
		return nil, ValidationError{Item: "output", Field: "address", Reason: err.Error()}
	}
	amount, err := encodeValue(out.Amount)
	if err != nil {
		return nil, err
	}
	tmpMap := cbor.OrderedMap{
		{Key: uint64(0), Value: addr.Bytes()},
		{Key: uint64(1), Value: amount},
	}
	if out.Datum != nil {
		if out.Datum.Data == nil {
			return nil, missingField("output datum", "data")
		}
		switch out.Datum.Type {
		case OutputDatumInline:
			datumCbor, err := out.Datum.Data.Cbor()
			if err != nil {
				return nil, err
			}
			tmpMap = append(tmpMap, cbor.MapPair{
				Key:   uint64(2),
				Value: []any{uint64(1), cbor.WrappedCbor(datumCbor)},
			})
		default:
			datumHash, err := plutusdata.BuilderDataHash(out.Datum.Data)
			if err != nil {
				return nil, err
			}
			tmpMap = append(tmpMap, cbor.MapPair{
				Key:   uint64(2),
				Value: []any{uint64(0), datumHash.Bytes()},
			})
		}
	}
	if out.ReferenceScript != nil {
		refCbor, err := encodeScriptRef(*out.ReferenceScript)
		if err != nil {
			return nil, err
		}
		tmpMap = append(tmpMap, cbor.MapPair{Key: uint64(3), Value: cbor.RawMessage(refCbor)})
	}
	return cbor.EncodeCanonical(tmpMap, cbor.CanonicalOptions{})
}

func encodeRedeemers(entries []redeemerEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	tmpMap := make(cbor.OrderedMap, 0, len(entries))
	for _, entry := range entries {
		if entry.redeemer == nil || entry.redeemer.Data == nil {
			return nil, missingField("redeemer "+entry.key.String(), "data")
		}
		dataCbor, err := entry.redeemer.Data.Cbor()
		if err != nil {
			return nil, err
		}
		tmpMap = append(tmpMap, cbor.MapPair{
			Key: []any{uint64(entry.key.Tag), uint64(entry.key.Index)},
			Value: []any{
				cbor.RawMessage(dataCbor),
				[]any{entry.redeemer.ExUnits.Memory, entry.redeemer.ExUnits.Steps},
			},
		})
	}
	return cbor.EncodeCanonical(tmpMap, cbor.CanonicalOptions{})
}

// witnessDatums collects the datums of spent script outputs and embedded
// output datums, without duplicates
func (b *TxBuilderBody) witnessDatums(outputs []Output) ([]byte, error) {
	var datums cbor.Set
	seen := make(map[common.Blake2b256]bool)
	add := func(data plutusdata.BuilderData) error {
		if data == nil {
			return missingField("datum", "data")
		}
		dataCbor, err := data.Cbor()
		if err != nil {
			return err
		}
		hash := common.Blake2b256Hash(dataCbor)
		if seen[hash] {
			return nil
		}
		seen[hash] = true
		datums = append(datums, cbor.RawMessage(dataCbor))
		return nil
	}
	for _, input := range sortedInputs(b.Inputs) {
		scriptInput, ok := input.(*ScriptTxIn)
		if !ok {
			continue
		}
		if provided, ok := scriptInput.DatumSource.(ProvidedDatumSource); ok {
			if err := add(provided.Data); err != nil {
				return nil, err
			}
		}
	}
	for _, out := range outputs {
		if out.Datum != nil && out.Datum.Type == OutputDatumEmbedded {
			if err := add(out.Datum.Data); err != nil {
				return nil, err
			}
		}
	}
	if len(datums) == 0 {
		return nil, nil
	}
	return cbor.Encode(datums)
}

// auxiliaryData returns the Shelley-form metadata map, or nil without metadata
func (b *TxBuilderBody) auxiliaryData() ([]byte, error) {
	if len(b.Metadata) == 0 {
		return nil, nil
	}
	metadata := make(common.TransactionMetadataSet, len(b.Metadata))
	for _, item := range b.Metadata {
		value, err := common.MetadatumFromJSON([]byte(item.Value))
		if err != nil {
			return nil, ValidationError{
				Item:   fmt.Sprintf("metadata label %d", item.Label),
				Reason: err.Error(),
			}
		}
		metadata[item.Label] = value
	}
	return metadata.MarshalCBOR()
}

func (b *TxBuilderBody) mintValue() (*common.MultiAsset, error) {
	if len(b.Mints) == 0 {
		return nil, nil
	}
	ret := common.NewMultiAsset()
	for _, mint := range b.Mints {
		policyId, assetName, err := common.SplitUnit(mint.Unit())
		if err != nil {
			return nil, ValidationError{Item: "mint " + mint.Unit(), Reason: err.Error()}
		}
		ret.Add(policyId, assetName, mint.Amount)
	}
	return &ret, nil
}

// checkMintPolicies verifies that provided minting scripts hash to their policy ID
func (b *TxBuilderBody) checkMintPolicies() error {
	for _, mint := range b.mintPolicies() {
		var hash common.ScriptHash
		switch {
		case mint.Type == WitnessPlutus && mint.ScriptSource != nil:
			switch src := mint.ScriptSource.(type) {
			case ProvidedScriptSource:
				script, err := parsePlutusScript(src.Code, src.Version)
				if err != nil {
					return err
				}
				hash = script.Hash()
			case InlineScriptSource:
				if src.ScriptHash == "" {
					continue
				}
				tmpHash, err := common.NewBlake2b224FromHex(src.ScriptHash)
				if err != nil {
					return ValidationError{Item: "mint " + mint.PolicyId, Field: "script hash", Reason: err.Error()}
				}
				hash = tmpHash
			}
		case mint.Type == WitnessNative && mint.SimpleScriptSource != nil:
			provided, ok := mint.SimpleScriptSource.(ProvidedSimpleScriptSource)
			if !ok {
				continue
			}
			script, err := parseNativeScript(provided.Code)
			if err != nil {
				return err
			}
			hash = script.Hash()
		default:
			continue
		}
		if hash.String() != mint.PolicyId {
			return ValidationError{
				Item:   "mint " + mint.PolicyId,
				Field:  "script source",
				Reason: "script hash " + hash.String() + " does not match the policy ID",
			}
		}
	}
	return nil
}

func (b *TxBuilderBody) votingProcedures() common.VotingProcedures {
	if len(b.Votes) == 0 {
		return nil
	}
	ret := make(common.VotingProcedures)
	for _, vote := range b.Votes {
		ret.Add(vote.Voter, vote.GovActionId, vote.Procedure)
	}
	return ret
}

func (b *TxBuilderBody) withdrawalMap() (cbor.OrderedMap, error) {
	withdrawals, err := b.sortedWithdrawals()
	if err != nil || len(withdrawals) == 0 {
		return nil, err
	}
	ret := make(cbor.OrderedMap, 0, len(withdrawals))
	for _, account := range withdrawals {
		ret = append(ret, cbor.MapPair{
			Key:   account.address.Bytes(),
			Value: account.withdrawal.Amount,
		})
	}
	return ret, nil
}

// placeholderWitnesses returns vkey witnesses of the right size for each signer
func placeholderWitnesses(signers []common.Blake2b224) cbor.Set {
	if len(signers) == 0 {
		return nil
	}
	ret := make(cbor.Set, 0, len(signers))
	for _, signer := range signers {
		vkey := make([]byte, 32)
		copy(vkey, signer.Bytes())
		ret = append(ret, vkeyWitness{Vkey: vkey, Signature: make([]byte, 64)})
	}
	return ret
}

// serialize encodes the body with the outputs, fee and collateral of a
func (b *TxBuilder) serialize(a *assembly) (*encodedTx, error) {
	body := b.body
	tmpBody := transactionBody{
		Inputs:  cbor.Set{},
		Outputs: make([]cbor.RawMessage, 0, len(a.outputs)),
		Fee:     a.fee,
		Ttl:     body.ValidityRange.InvalidHereafter,
	}
	tmpBody.ValidityIntervalStart = body.ValidityRange.InvalidBefore
	for _, input := range sortedInputs(body.Inputs) {
		tmpBody.Inputs = append(tmpBody.Inputs, input.Parameter().Input())
	}
	for _, out := range a.outputs {
		outCbor, err := encodeOutput(out)
		if err != nil {
			return nil, err
		}
		tmpBody.Outputs = append(tmpBody.Outputs, outCbor)
	}
	for _, cert := range body.Certificates {
		tmpBody.Certificates = append(tmpBody.Certificates, cert.Certificate)
	}
	withdrawals, err := body.withdrawalMap()
	if err != nil {
		return nil, err
	}
	tmpBody.Withdrawals = withdrawals
	if err := body.checkMintPolicies(); err != nil {
		return nil, err
	}
	if tmpBody.Mint, err = body.mintValue(); err != nil {
		return nil, err
	}
	collaterals := slices.Clone(body.Collaterals)
	slices.SortFunc(collaterals, func(x, y *PubKeyTxIn) int {
		return common.CompareTransactionInputs(x.TxIn.Input(), y.TxIn.Input())
	})
	for _, collateral := range collaterals {
		tmpBody.Collateral = append(tmpBody.Collateral, collateral.TxIn.Input())
	}
	for _, signer := range body.RequiredSignatures {
		keyHash, err := common.NewBlake2b224FromHex(signer)
		if err != nil {
			return nil, ValidationError{Item: "required signer", Reason: err.Error()}
		}
		tmpBody.RequiredSigners = append(tmpBody.RequiredSigners, keyHash)
	}
	if a.collateralReturn != nil {
		if tmpBody.CollateralReturn, err = encodeOutput(*a.collateralReturn); err != nil {
			return nil, err
		}
	}
	tmpBody.TotalCollateral = a.totalCollateral
	for _, ref := range body.referenceInputs() {
		tmpBody.ReferenceInputs = append(tmpBody.ReferenceInputs, ref.Input())
	}
	tmpBody.VotingProcedures = body.votingProcedures()

	auxData, err := body.auxiliaryData()
	if err != nil {
		return nil, err
	}
	if auxData != nil {
		auxHash := common.Blake2b256Hash(auxData)
		tmpBody.AuxDataHash = &auxHash
	}

	scripts, err := body.collectScripts()
	if err != nil {
		return nil, err
	}
	redeemers, err := body.redeemerEntries()
	if err != nil {
		return nil, err
	}
	redeemersCbor, err := encodeRedeemers(redeemers)
	if err != nil {
		return nil, err
	}
	datumsCbor, err := body.witnessDatums(a.outputs)
	if err != nil {
		return nil, err
	}
	if tmpBody.ScriptDataHash, err = scriptDataHash(
		redeemersCbor,
		datumsCbor,
		scripts.languages,
		a.pparams,
	); err != nil {
		return nil, err
	}

	witnesses := transactionWitnessSet{
		VkeyWitnesses: placeholderWitnesses(a.signers),
		PlutusData:    datumsCbor,
		Redeemers:     redeemersCbor,
	}
	for _, script := range scripts.native {
		witnesses.NativeScripts = append(witnesses.NativeScripts, script)
	}
	for _, script := range scripts.plutus[common.PlutusLanguageV1] {
		witnesses.PlutusV1Scripts = append(witnesses.PlutusV1Scripts, script)
	}
	for _, script := range scripts.plutus[common.PlutusLanguageV2] {
		witnesses.PlutusV2Scripts = append(witnesses.PlutusV2Scripts, script)
	}
	for _, script := range scripts.plutus[common.PlutusLanguageV3] {
		witnesses.PlutusV3Scripts = append(witnesses.PlutusV3Scripts, script)
	}

	bodyCbor, err := cbor.Encode(&tmpBody)
	if err != nil {
		return nil, err
	}
	witnessCbor, err := cbor.Encode(&witnesses)
	if err != nil {
		return nil, err
	}
	var auxField any
	if auxData != nil {
		auxField = cbor.RawMessage(auxData)
	}
	txCbor, err := cbor.Encode([]any{
		cbor.RawMessage(bodyCbor),
		cbor.RawMessage(witnessCbor),
		true,
		auxField,
	})
	if err != nil {
		return nil, err
	}
	return &encodedTx{cbor: txCbor, redeemers: redeemers}, nil
}

// setLovelace replaces the lovelace of an amount, keeping the other assets
func setLovelace(amount []common.Asset, lovelace uint64) []common.Asset {
	ret := make([]common.Asset, 0, len(amount)+1)
	ret = append(ret, common.NewLovelace(lovelace))
	for _, asset := range amount {
		if !common.IsLovelace(asset.Unit) {
			ret = append(ret, asset)
		}
	}
	return ret
}
