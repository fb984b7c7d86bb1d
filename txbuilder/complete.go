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
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/blinklabs-io/txbuilder/coinselection"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/provider"
)

const (
	// maxSelectionRetries bounds the extra coin selection rounds run when
	// balancing is short of lovelace
	maxSelectionRetries = 3

	collateralReason = "collateral"
)

// Complete resolves, selects, evaluates and balances the transaction and
// returns it hex encoded. The fetcher and evaluator are used when configured
func (b *TxBuilder) Complete(ctx context.Context) (string, error) {
	return b.complete(ctx, true)
}

// CompleteSync is Complete without calls to the fetcher or evaluator. Inputs
// must be resolvable from known UTxOs, and redeemer budgets are used as given
func (b *TxBuilder) CompleteSync() (string, error) {
	return b.complete(context.Background(), false)
}

// CompleteUnbalanced serializes the body as is, without resolution, change or
// fee calculation
func (b *TxBuilder) CompleteUnbalanced() (string, error) {
	b.flush()
	if b.err != nil {
		return "", b.err
	}
	pparams, err := b.protocolParameters(context.Background(), false)
	if err != nil {
		return "", err
	}
	a := &assembly{
		pparams:         pparams,
		outputs:         b.body.Outputs,
		totalCollateral: b.body.TotalCollateral,
	}
	if b.body.Fee != nil {
		a.fee = *b.body.Fee
	}
	tx, err := b.serialize(a)
	if err != nil {
		return "", err
	}
	return tx.hex(), nil
}

// CompleteSigning signs a completed transaction with the configured signer,
// or with the body's signing keys
func (b *TxBuilder) CompleteSigning(ctx context.Context, txHex string) (string, error) {
	signer := b.signer
	if signer == nil {
		if len(b.body.SigningKeys) == 0 {
			return "", ValidationError{Item: "transaction", Field: "signing keys", Reason: "missing"}
		}
		keySigner, err := provider.NewKeySigner(b.body.SigningKeys...)
		if err != nil {
			return "", err
		}
		signer = keySigner
	}
	return signer.SignTx(ctx, txHex)
}

// SubmitTx submits a signed transaction and returns its hash
func (b *TxBuilder) SubmitTx(ctx context.Context, txHex string) (string, error) {
	if b.submitter == nil {
		return "", ErrNoSubmitter
	}
	return b.submitter.SubmitTx(ctx, txHex)
}

func (b *TxBuilder) complete(ctx context.Context, external bool) (string, error) {
	b.flush()
	if b.err != nil {
		return "", b.err
	}
	if err := b.checkNetwork(); err != nil {
		return "", err
	}
	pparams, err := b.protocolParameters(ctx, external)
	if err != nil {
		return "", err
	}
	if err := b.resolveInputs(ctx, external); err != nil {
		return "", err
	}
	if err := b.resolveScriptReferences(ctx, external); err != nil {
		return "", err
	}
	if err := b.applyMinUtxo(pparams); err != nil {
		return "", err
	}
	if err := b.selectUtxos(pparams); err != nil {
		return "", err
	}
	if b.body.hasPlutusScripts() && len(b.body.Collaterals) == 0 {
		return "", ValidationError{
			Item:   "transaction",
			Field:  "collateral",
			Reason: "missing for Plutus scripts",
		}
	}
	for attempt := 0; ; attempt++ {
		signers, err := b.requiredSigners()
		if err != nil {
			return "", err
		}
		if external && b.evaluator != nil {
			if err := b.evaluate(ctx, pparams); err != nil {
				return "", err
			}
		}
		tx, err := b.balance(pparams, signers)
		if err == nil {
			return tx.hex(), nil
		}
		if attempt >= maxSelectionRetries {
			return "", err
		}
		added, topUpErr := b.topUpSelection(pparams, err)
		if topUpErr != nil {
			return "", topUpErr
		}
		if !added {
			return "", err
		}
	}
}

// checkNetwork rejects output, change, collateral return and reward
// addresses that belong to another network than the body
func (b *TxBuilder) checkNetwork() error {
	check := func(item string, field string, address string) error {
		if address == "" {
			return nil
		}
		addr, err := common.NewAddress(address)
		if err != nil {
			return ValidationError{Item: item, Field: field, Reason: err.Error()}
		}
		if addr.Type() == common.AddressTypeByron {
			return nil
		}
		if addr.NetworkId() != b.body.Network.Id {
			return ValidationError{
				Item:  item,
				Field: field,
				Reason: fmt.Sprintf(
					"network ID %d does not match %s (%d)",
					addr.NetworkId(),
					b.body.Network.Name,
					b.body.Network.Id,
				),
			}
		}
		return nil
	}
	for i, out := range b.body.Outputs {
		if err := check(fmt.Sprintf("output %d", i), "address", out.Address); err != nil {
			return err
		}
	}
	for _, withdrawal := range b.body.Withdrawals {
		if err := check("withdrawal", "address", withdrawal.Address); err != nil {
			return err
		}
	}
	if err := check("transaction", "change address", b.body.ChangeAddress); err != nil {
		return err
	}
	return check("transaction", "collateral return address", b.body.CollateralReturnAddress)
}

func (b *TxBuilder) protocolParameters(
	ctx context.Context,
	external bool,
) (*common.ProtocolParameters, error) {
	if b.protocolParams != nil {
		return b.protocolParams, nil
	}
	if external && b.fetcher != nil {
		pparams, err := b.fetcher.FetchProtocolParameters(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch protocol parameters: %w", err)
		}
		return pparams, nil
	}
	return common.DefaultProtocolParameters(), nil
}

// findUtxo looks up a UTxO in the known UTxOs and extra inputs, asking the
// fetcher for the whole transaction on a miss when external is set
func (b *TxBuilder) findUtxo(
	ctx context.Context,
	input common.TransactionInput,
	external bool,
) (common.UTxO, bool, error) {
	key := input.String()
	if utxo, ok := b.knownUtxos[key]; ok {
		return utxo, true, nil
	}
	for _, utxo := range b.body.ExtraInputs {
		if utxo.Key() == key {
			return utxo, true, nil
		}
	}
	if !external || b.fetcher == nil {
		return common.UTxO{}, false, nil
	}
	utxos, err := b.fetcher.FetchUTxOs(ctx, input.TxHash)
	if err != nil {
		return common.UTxO{}, false, err
	}
	for _, utxo := range utxos {
		b.knownUtxos[utxo.Key()] = utxo
	}
	utxo, ok := b.knownUtxos[key]
	return utxo, ok, nil
}

// referenceScript decodes the reference script held by a UTxO, if any
func referenceScript(utxo common.UTxO) (*common.ScriptRef, error) {
	if utxo.Output.ScriptRef == "" {
		return nil, nil
	}
	refBytes, err := utxo.ScriptRefBytes()
	if err != nil {
		return nil, err
	}
	return common.ParseScriptRef(refBytes)
}

func referenceScriptSize(utxo common.UTxO) (int, error) {
	scriptRef, err := referenceScript(utxo)
	if err != nil || scriptRef == nil {
		return 0, err
	}
	return len(scriptRef.Script.RawScriptBytes()), nil
}

func (b *TxBuilder) resolveInput(ctx context.Context, param *TxInParameter, external bool) error {
	input := param.Input()
	var utxo common.UTxO
	var ok bool
	var err error
	if param.resolved() {
		// Resolved inputs are only looked up locally for their reference script
		utxo, ok, err = b.findUtxo(ctx, input, false)
	} else {
		utxo, ok, err = b.findUtxo(ctx, input, external)
	}
	if err != nil {
		return ResolutionError{Input: input.String(), Err: err}
	}
	if !ok {
		if param.resolved() {
			return nil
		}
		return ResolutionError{Input: input.String()}
	}
	if param.Amount == nil {
		param.Amount = slices.Clone(utxo.Output.Amount)
	}
	if param.Address == "" {
		param.Address = utxo.Output.Address
	}
	if param.ScriptSize == 0 {
		size, err := referenceScriptSize(utxo)
		if err != nil {
			return ResolutionError{Input: input.String(), Err: err}
		}
		param.ScriptSize = size
	}
	return nil
}

func (b *TxBuilder) resolveInputs(ctx context.Context, external bool) error {
	for _, input := range b.body.Inputs {
		if err := b.resolveInput(ctx, input.Parameter(), external); err != nil {
			return err
		}
	}
	for _, collateral := range b.body.Collaterals {
		if err := b.resolveInput(ctx, &collateral.TxIn, external); err != nil {
			return err
		}
	}
	return nil
}

// resolveScriptReferences fills in the hash, size and version of inline
// scripts from the UTxOs that hold them
func (b *TxBuilder) resolveScriptReferences(ctx context.Context, external bool) error {
	lookup := func(txHash string, index uint32) (*common.ScriptRef, error) {
		input := common.NewTransactionInput(txHash, index)
		utxo, ok, err := b.findUtxo(ctx, input, external)
		if err != nil {
			return nil, ResolutionError{Input: input.String(), Err: err}
		}
		if !ok {
			return nil, ResolutionError{Input: input.String()}
		}
		scriptRef, err := referenceScript(utxo)
		if err != nil {
			return nil, ResolutionError{Input: input.String(), Err: err}
		}
		if scriptRef == nil {
			return nil, ResolutionError{
				Input: input.String(),
				Err:   errors.New("UTxO has no reference script"),
			}
		}
		return scriptRef, nil
	}
	plutusSources, nativeSources := b.body.scriptSources()
	for _, src := range plutusSources {
		inline, ok := (*src).(InlineScriptSource)
		if !ok || (inline.ScriptHash != "" && inline.ScriptSize != 0 && inline.Version != 0) {
			continue
		}
		scriptRef, err := lookup(inline.TxHash, inline.Index)
		if err != nil {
			return err
		}
		if scriptRef.Type == common.ScriptRefTypeNativeScript {
			return ValidationError{
				Item:   "script reference " + inline.TxHash,
				Reason: "UTxO holds a native script where a Plutus script is expected",
			}
		}
		if inline.ScriptHash == "" {
			inline.ScriptHash = scriptRef.Script.Hash().String()
		}
		if inline.ScriptSize == 0 {
			inline.ScriptSize = len(scriptRef.Script.RawScriptBytes())
		}
		if inline.Version == 0 {
			inline.Version = common.PlutusLanguage(scriptRef.Type)
		}
		*src = inline
	}
	for _, src := range nativeSources {
		inline, ok := (*src).(InlineSimpleScriptSource)
		if !ok || (inline.ScriptHash != "" && inline.ScriptSize != 0) {
			continue
		}
		scriptRef, err := lookup(inline.TxHash, inline.Index)
		if err != nil {
			return err
		}
		if inline.ScriptHash == "" {
			inline.ScriptHash = scriptRef.Script.Hash().String()
		}
		if inline.ScriptSize == 0 {
			inline.ScriptSize = len(scriptRef.Script.RawScriptBytes())
		}
		*src = inline
	}
	// Read-only references only matter to the fee when they hold a script
	for i := range b.body.ReferenceInputs {
		ref := &b.body.ReferenceInputs[i]
		if ref.ScriptSize != 0 {
			continue
		}
		utxo, ok, err := b.findUtxo(ctx, ref.Input(), external)
		if err != nil {
			return ResolutionError{Input: ref.Input().String(), Err: err}
		}
		if !ok {
			b.logger.Debug(
				"reference input not found, assuming no reference script",
				"component",
				"txbuilder",
				"input",
				ref.Input().String(),
			)
			continue
		}
		size, err := referenceScriptSize(utxo)
		if err != nil {
			return ResolutionError{Input: ref.Input().String(), Err: err}
		}
		ref.ScriptSize = size
	}
	return nil
}

// applyMinUtxo gives outputs without lovelace the minimum UTxO amount
func (b *TxBuilder) applyMinUtxo(pparams *common.ProtocolParameters) error {
	for i := range b.body.Outputs {
		out := &b.body.Outputs[i]
		tmpValue, err := common.NewValueFromAssets(out.Amount)
		if err != nil {
			return ValidationError{Item: fmt.Sprintf("output %d", i), Field: "amount", Reason: err.Error()}
		}
		minLovelace, err := minUtxoLovelace(*out, pparams)
		if err != nil {
			return err
		}
		lovelace := tmpValue.Lovelace()
		if lovelace.Sign() == 0 {
			out.Amount = setLovelace(out.Amount, minLovelace)
			continue
		}
		if lovelace.Cmp(new(big.Int).SetUint64(minLovelace)) < 0 {
			return ValidationError{
				Item:   fmt.Sprintf("output %d", i),
				Field:  "amount",
				Reason: fmt.Sprintf("%s lovelace is below the minimum UTxO value of %d", lovelace, minLovelace),
			}
		}
	}
	return nil
}

// netValue returns inputs + withdrawals + mint + refunds - outputs - deposits
func (b *TxBuilder) netValue(pparams *common.ProtocolParameters) (*common.Value, error) {
	ret := common.NewValue()
	for _, input := range b.body.Inputs {
		param := input.Parameter()
		if err := ret.AddAssets(param.Amount); err != nil {
			return nil, ValidationError{Item: "input " + param.Input().String(), Field: "amount", Reason: err.Error()}
		}
	}
	for _, withdrawal := range b.body.Withdrawals {
		ret.AddUnit(common.LovelaceUnit, new(big.Int).SetUint64(withdrawal.Amount))
	}
	for _, mint := range b.body.Mints {
		ret.AddUnit(mint.Unit(), mint.Amount)
	}
	for _, cert := range b.body.Certificates {
		deposit, refund := cert.Certificate.Deposits(pparams)
		ret.AddUnit(common.LovelaceUnit, new(big.Int).SetUint64(refund))
		ret.AddUnit(common.LovelaceUnit, new(big.Int).Neg(new(big.Int).SetUint64(deposit)))
	}
	for i, out := range b.body.Outputs {
		outValue, err := common.NewValueFromAssets(out.Amount)
		if err != nil {
			return nil, ValidationError{Item: fmt.Sprintf("output %d", i), Field: "amount", Reason: err.Error()}
		}
		ret.Sub(outValue)
	}
	return ret, nil
}

// estimateFee returns the fee of the body as it stands, without change
func (b *TxBuilder) estimateFee(pparams *common.ProtocolParameters) (uint64, error) {
	if b.body.Fee != nil {
		return *b.body.Fee, nil
	}
	signers, err := b.requiredSigners()
	if err != nil {
		return 0, err
	}
	tx, err := b.serialize(&assembly{
		pparams: pparams,
		outputs: b.body.Outputs,
		fee:     pparams.MaxTxFee(),
		signers: signers,
	})
	if err != nil {
		return 0, err
	}
	return calculateFee(len(tx.cbor), tx.redeemers, b.body.referenceScriptSize(), pparams), nil
}

// selectUtxos adds extra inputs covering whatever the body is short of
func (b *TxBuilder) selectUtxos(pparams *common.ProtocolParameters) error {
	if len(b.body.ExtraInputs) == 0 {
		return nil
	}
	net, err := b.netValue(pparams)
	if err != nil {
		return err
	}
	fee, err := b.estimateFee(pparams)
	if err != nil {
		return err
	}
	net.AddUnit(common.LovelaceUnit, new(big.Int).Neg(new(big.Int).SetUint64(fee)))
	required := net.Negative()
	if required.IsZero() {
		return nil
	}
	added, err := b.selectFrom(pparams, required)
	if err != nil {
		return err
	}
	if added == 0 {
		return InsufficientFundsError{
			Missing: required,
			Reason:  "coin selection found no covering set of UTxOs",
		}
	}
	return nil
}

// topUpSelection selects more extra inputs when balancing came up short of
// lovelace. The fee estimate used for the first selection does not include
// the selected inputs, their witnesses or the change output, so the real fee
// can exceed it. It reports whether any input was added
func (b *TxBuilder) topUpSelection(
	pparams *common.ProtocolParameters,
	balanceErr error,
) (bool, error) {
	var fundsErr InsufficientFundsError
	if len(b.body.ExtraInputs) == 0 || !errors.As(balanceErr, &fundsErr) {
		return false, nil
	}
	if strings.HasPrefix(fundsErr.Reason, collateralReason) || fundsErr.Missing == nil ||
		fundsErr.Missing.HasAssets() || fundsErr.Missing.Lovelace().Sign() <= 0 {
		return false, nil
	}
	b.logger.Debug(
		"selecting more UTxOs for balance shortfall",
		"component",
		"txbuilder",
		"missing",
		fundsErr.Missing.String(),
	)
	added, err := b.selectFrom(pparams, fundsErr.Missing)
	if err != nil {
		return false, err
	}
	return added > 0, nil
}

// selectFrom runs coin selection for required over the extra inputs not yet
// spent and adds the result as inputs
func (b *TxBuilder) selectFrom(pparams *common.ProtocolParameters, required *common.Value) (int, error) {
	spent := make(map[string]bool, len(b.body.Inputs))
	for _, input := range b.body.Inputs {
		spent[input.Parameter().Input().String()] = true
	}
	var candidates []common.UTxO
	for _, utxo := range b.body.ExtraInputs {
		if !spent[utxo.Key()] {
			candidates = append(candidates, utxo)
		}
	}
	if len(candidates) == 0 {
		return 0, nil
	}
	selected, err := coinselection.Select(b.body.SelectionConfig, required, candidates, pparams)
	if err != nil {
		return 0, err
	}
	b.logger.Debug(
		"coin selection finished",
		"component",
		"txbuilder",
		"strategy",
		string(b.body.SelectionConfig.Strategy),
		"required",
		required.String(),
		"candidates",
		len(candidates),
		"selected",
		len(selected),
	)
	for _, utxo := range selected {
		size, err := referenceScriptSize(utxo)
		if err != nil {
			return 0, ResolutionError{Input: utxo.Key(), Err: err}
		}
		b.body.Inputs = append(b.body.Inputs, &PubKeyTxIn{
			TxIn: TxInParameter{
				TxHash:     utxo.Input.TxHash,
				TxIndex:    utxo.Input.OutputIndex,
				Amount:     slices.Clone(utxo.Output.Amount),
				Address:    utxo.Output.Address,
				ScriptSize: size,
			},
		})
	}
	return len(selected), nil
}

// requiredSigners returns the key hashes expected to sign the transaction, in
// byte order
func (b *TxBuilder) requiredSigners() ([]common.Blake2b224, error) {
	seen := make(map[common.Blake2b224]bool)
	var ret []common.Blake2b224
	add := func(hash common.Blake2b224) {
		if !seen[hash] {
			seen[hash] = true
			ret = append(ret, hash)
		}
	}
	addAddress := func(item string, address string) error {
		addr, err := common.NewAddress(address)
		if err != nil {
			return ValidationError{Item: item, Field: "address", Reason: err.Error()}
		}
		if keyHash, ok := addr.PaymentKeyHash(); ok {
			add(keyHash)
		}
		return nil
	}
	for _, input := range b.body.Inputs {
		if pubKeyInput, ok := input.(*PubKeyTxIn); ok {
			if err := addAddress("input "+pubKeyInput.TxIn.Input().String(), pubKeyInput.TxIn.Address); err != nil {
				return nil, err
			}
		}
	}
	for _, collateral := range b.body.Collaterals {
		if err := addAddress("collateral "+collateral.TxIn.Input().String(), collateral.TxIn.Address); err != nil {
			return nil, err
		}
	}
	_, nativeSources := b.body.scriptSources()
	for _, src := range nativeSources {
		provided, ok := (*src).(ProvidedSimpleScriptSource)
		if !ok {
			continue
		}
		script, err := parseNativeScript(provided.Code)
		if err != nil {
			return nil, err
		}
		for _, keyHash := range nativeScriptKeyHashes(script) {
			add(keyHash)
		}
	}
	for _, signer := range b.body.RequiredSignatures {
		keyHash, err := common.NewBlake2b224FromHex(signer)
		if err != nil {
			return nil, ValidationError{Item: "required signer", Reason: err.Error()}
		}
		add(keyHash)
	}
	for _, key := range b.body.SigningKeys {
		signingKey, err := provider.ParseSigningKey(key)
		if err != nil {
			return nil, ValidationError{Item: "signing key", Reason: err.Error()}
		}
		add(signingKey.KeyHash())
	}
	for _, withdrawal := range b.body.Withdrawals {
		if withdrawal.Type != WitnessKey {
			continue
		}
		cred, err := common.NewStakeCredentialFromAddress(withdrawal.Address)
		if err != nil {
			return nil, ValidationError{Item: "withdrawal", Field: "address", Reason: err.Error()}
		}
		add(cred.Hash)
	}
	for _, cert := range b.body.Certificates {
		if cred := cert.Certificate.RequiredCredential(); cert.Type == WitnessKey && cred != nil {
			add(cred.Hash)
		}
	}
	for _, vote := range b.body.Votes {
		if vote.Type == WitnessKey {
			add(vote.Voter.Hash)
		}
	}
	slices.SortFunc(ret, func(x, y common.Blake2b224) int {
		return bytes.Compare(x.Bytes(), y.Bytes())
	})
	return ret, nil
}

// resolvedUtxos returns the spent, collateral and referenced outputs for the evaluator
func (b *TxBuilder) resolvedUtxos() []common.UTxO {
	var ret []common.UTxO
	seen := make(map[string]bool)
	addParam := func(param *TxInParameter) {
		key := param.Input().String()
		if seen[key] {
			return
		}
		seen[key] = true
		if utxo, ok := b.knownUtxos[key]; ok {
			ret = append(ret, utxo)
			return
		}
		ret = append(ret, common.UTxO{
			Input:  param.Input(),
			Output: common.TransactionOutput{Address: param.Address, Amount: param.Amount},
		})
	}
	for _, input := range b.body.Inputs {
		addParam(input.Parameter())
	}
	for _, collateral := range b.body.Collaterals {
		addParam(&collateral.TxIn)
	}
	for _, ref := range b.body.referenceInputs() {
		key := ref.Input().String()
		if seen[key] {
			continue
		}
		seen[key] = true
		if utxo, ok := b.knownUtxos[key]; ok {
			ret = append(ret, utxo)
		}
	}
	return ret
}

func (b *TxBuilder) scaleBudget(budget common.ExUnits) common.ExUnits {
	scale := func(value uint64) uint64 {
		tmp := new(big.Rat).Mul(new(big.Rat).SetUint64(value), b.evaluationMultiplier.Rat)
		return ceilRat(tmp).Uint64()
	}
	return common.ExUnits{Memory: scale(budget.Memory), Steps: scale(budget.Steps)}
}

// evaluate replaces the redeemer budgets with the evaluator's results, scaled
// by the evaluation multiplier
func (b *TxBuilder) evaluate(ctx context.Context, pparams *common.ProtocolParameters) error {
	redeemers, err := b.body.redeemerEntries()
	if err != nil || len(redeemers) == 0 {
		return err
	}
	draft, err := b.assemble(pparams, 0, nil)
	if err != nil {
		return err
	}
	tx, err := b.serialize(draft)
	if err != nil {
		return err
	}
	actions, err := b.evaluator.EvaluateTx(ctx, tx.hex(), b.resolvedUtxos())
	if err != nil {
		return EvaluationError{Err: err}
	}
	byKey := make(map[common.RedeemerKey]*Redeemer, len(redeemers))
	for _, entry := range redeemers {
		byKey[entry.key] = entry.redeemer
	}
	for _, action := range actions {
		redeemer, ok := byKey[action.Key()]
		if !ok {
			b.logger.Debug(
				"evaluator returned a budget for an unknown redeemer",
				"component",
				"txbuilder",
				"redeemer",
				action.Key().String(),
			)
			continue
		}
		redeemer.ExUnits = b.scaleBudget(action.Budget)
		b.logger.Debug(
			"redeemer evaluated",
			"component",
			"txbuilder",
			"redeemer",
			action.Key().String(),
			"mem",
			redeemer.ExUnits.Memory,
			"steps",
			redeemer.ExUnits.Steps,
		)
	}
	return nil
}

// assemble builds the outputs and collateral of a candidate transaction
// paying fee. Change below the minimum UTxO value without native assets is
// added to the fee
func (b *TxBuilder) assemble(
	pparams *common.ProtocolParameters,
	fee uint64,
	signers []common.Blake2b224,
) (*assembly, error) {
	a := &assembly{
		pparams: pparams,
		outputs: slices.Clone(b.body.Outputs),
		fee:     fee,
		signers: signers,
	}
	change, err := b.netValue(pparams)
	if err != nil {
		return nil, err
	}
	change.AddUnit(common.LovelaceUnit, new(big.Int).Neg(new(big.Int).SetUint64(fee)))
	if change.HasNegative() {
		return nil, InsufficientFundsError{Missing: change.Negative()}
	}
	if !change.IsZero() {
		if b.body.ChangeAddress == "" {
			return nil, ValidationError{Item: "transaction", Field: "change address", Reason: "missing"}
		}
		changeOutput := Output{
			Address: b.body.ChangeAddress,
			Amount:  change.ToAssets(),
			Datum:   b.body.ChangeDatum,
		}
		minLovelace, err := minUtxoLovelace(changeOutput, pparams)
		if err != nil {
			return nil, err
		}
		lovelace := change.Lovelace()
		switch {
		case lovelace.Cmp(new(big.Int).SetUint64(minLovelace)) >= 0:
			a.outputs = append(a.outputs, changeOutput)
		case change.HasAssets():
			return nil, InsufficientFundsError{
				Missing: common.NewValueFromLovelace(minLovelace - lovelace.Uint64()),
				Reason:  "change with native assets is below the minimum UTxO value",
			}
		default:
			a.fee += lovelace.Uint64()
		}
	}
	if b.body.hasPlutusScripts() && len(b.body.Collaterals) > 0 {
		if err := b.assembleCollateral(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// assembleCollateral sets the total collateral and collateral return
func (b *TxBuilder) assembleCollateral(a *assembly) error {
	required := ceilRat(new(big.Rat).SetFrac(
		new(big.Int).Mul(
			new(big.Int).SetUint64(a.fee),
			new(big.Int).SetUint64(a.pparams.CollateralPercent),
		),
		big.NewInt(100),
	)).Uint64()
	if b.body.TotalCollateral != nil {
		required = *b.body.TotalCollateral
	}
	available := common.NewValue()
	for _, collateral := range b.body.Collaterals {
		if err := available.AddAssets(collateral.TxIn.Amount); err != nil {
			return ValidationError{Item: "collateral " + collateral.TxIn.Input().String(), Field: "amount", Reason: err.Error()}
		}
	}
	if !available.Lovelace().IsUint64() || available.Lovelace().Uint64() < required {
		return InsufficientFundsError{
			Missing: common.NewValueFromLovelace(required).Sub(available).Positive(),
			Reason:  collateralReason,
		}
	}
	remainder := available.Clone()
	remainder.AddUnit(common.LovelaceUnit, new(big.Int).Neg(new(big.Int).SetUint64(required)))
	if remainder.IsZero() {
		a.totalCollateral = &required
		return nil
	}
	returnAddress := b.body.CollateralReturnAddress
	if returnAddress == "" {
		returnAddress = b.body.ChangeAddress
	}
	if returnAddress == "" {
		returnAddress = b.body.Collaterals[0].TxIn.Address
	}
	returnOutput := Output{Address: returnAddress, Amount: remainder.ToAssets()}
	minLovelace, err := minUtxoLovelace(returnOutput, a.pparams)
	if err != nil {
		return err
	}
	switch {
	case remainder.Lovelace().Cmp(new(big.Int).SetUint64(minLovelace)) >= 0:
		a.collateralReturn = &returnOutput
		a.totalCollateral = &required
	case remainder.HasAssets():
		return InsufficientFundsError{
			Missing: common.NewValueFromLovelace(minLovelace - remainder.Lovelace().Uint64()),
			Reason:  "collateral return with native assets is below the minimum UTxO value",
		}
	default:
		// Too little is left over for a return output, so all of it is put up
		total := available.Lovelace().Uint64()
		a.totalCollateral = &total
	}
	return nil
}

// balance iterates fee and change calculation until the fee covers the
// serialized size
func (b *TxBuilder) balance(
	pparams *common.ProtocolParameters,
	signers []common.Blake2b224,
) (*encodedTx, error) {
	var fee uint64
	fixedFee := b.body.Fee != nil
	if fixedFee {
		fee = *b.body.Fee
	}
	refScriptSize := b.body.referenceScriptSize()
	for i := range b.maxFeeIterations {
		a, err := b.assemble(pparams, fee, signers)
		if err != nil {
			return nil, err
		}
		estimate, err := b.serialize(a)
		if err != nil {
			return nil, err
		}
		required := calculateFee(len(estimate.cbor), estimate.redeemers, refScriptSize, pparams)
		b.logger.Debug(
			"fee iteration",
			"component",
			"txbuilder",
			"iteration",
			i+1,
			"size",
			len(estimate.cbor),
			"fee",
			a.fee,
			"required_fee",
			required,
		)
		if fixedFee || required <= a.fee {
			a.signers = nil
			return b.serialize(a)
		}
		fee = required
	}
	return nil, ConvergenceError{Iterations: b.maxFeeIterations, LastFee: fee}
}
