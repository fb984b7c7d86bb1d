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
	"log/slog"
	"strings"
	"time"

	"github.com/blinklabs-io/txbuilder/coinselection"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/plutusdata"
	"github.com/blinklabs-io/txbuilder/provider"
	"github.com/jinzhu/copier"
)

const DefaultMaxFeeIterations = 10

// DefaultEvaluationMultiplier scales the budgets reported by the evaluator
var DefaultEvaluationMultiplier = common.NewRational(11, 10)

type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingTxIn
	pendingMint
	pendingCollateral
	pendingWithdrawal
	pendingVote
	pendingCertificate
	pendingRefInput
)

func (k pendingKind) String() string {
	switch k {
	case pendingTxIn:
		return "input"
	case pendingMint:
		return "mint"
	case pendingCollateral:
		return "collateral"
	case pendingWithdrawal:
		return "withdrawal"
	case pendingVote:
		return "vote"
	case pendingCertificate:
		return "certificate"
	case pendingRefInput:
		return "reference input"
	}
	return "none"
}

// pendingItem is the body item still accepting sub-fields
type pendingItem struct {
	kind        pendingKind
	version     common.PlutusLanguage
	input       TxIn
	collateral  *PubKeyTxIn
	mint        *MintItem
	withdrawal  *Withdrawal
	vote        *VoteItem
	certificate *CertificateItem
	refInput    *RefTxIn
}

// nextScripts holds the Plutus versions announced for the next item of each family
type nextScripts struct {
	input       common.PlutusLanguage
	mint        common.PlutusLanguage
	withdrawal  common.PlutusLanguage
	vote        common.PlutusLanguage
	certificate common.PlutusLanguage
}

// TxBuilder builds a single transaction at a time. It is not safe for
// concurrent use
type TxBuilder struct {
	body                 *TxBuilderBody
	pending              pendingItem
	next                 nextScripts
	err                  error
	evaluationMultiplier common.Rational
	knownUtxos           map[string]common.UTxO
	fetcher              provider.Fetcher
	evaluator            provider.Evaluator
	submitter            provider.Submitter
	signer               provider.Signer
	logger               *slog.Logger
	protocolParams       *common.ProtocolParameters
	network              common.Network
	maxFeeIterations     int
}

// NewTxBuilder returns a TxBuilder with an empty body
func NewTxBuilder(opts ...TxBuilderOptionFunc) *TxBuilder {
	b := &TxBuilder{
		network:          common.NetworkMainnet,
		maxFeeIterations: DefaultMaxFeeIterations,
		knownUtxos:       make(map[string]common.UTxO),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.maxFeeIterations <= 0 {
		b.maxFeeIterations = DefaultMaxFeeIterations
	}
	b.Reset()
	return b
}

// Reset discards the body, any pending item and any recorded error. Known
// UTxOs are kept
func (b *TxBuilder) Reset() {
	b.body = NewTxBuilderBody(b.network)
	b.pending = pendingItem{}
	b.next = nextScripts{}
	b.err = nil
	b.evaluationMultiplier = DefaultEvaluationMultiplier
}

// Body returns the body being built
func (b *TxBuilder) Body() *TxBuilderBody {
	return b.body
}

// Err returns the first error recorded by a chained call
func (b *TxBuilder) Err() error {
	return b.err
}

func (b *TxBuilder) setErr(err error) *TxBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// flush validates the pending item and moves it into the body
func (b *TxBuilder) flush() {
	item := b.pending
	b.pending = pendingItem{}
	if b.err != nil || item.kind == pendingNone {
		return
	}
	if err := b.validatePending(item); err != nil {
		b.setErr(err)
		return
	}
	switch item.kind {
	case pendingTxIn:
		b.body.Inputs = append(b.body.Inputs, item.input)
	case pendingCollateral:
		b.body.Collaterals = append(b.body.Collaterals, item.collateral)
	case pendingRefInput:
		b.body.ReferenceInputs = append(b.body.ReferenceInputs, *item.refInput)
	case pendingMint:
		b.body.Mints = append(b.body.Mints, *item.mint)
	case pendingWithdrawal:
		b.body.Withdrawals = append(b.body.Withdrawals, *item.withdrawal)
	case pendingVote:
		b.body.Votes = append(b.body.Votes, *item.vote)
	case pendingCertificate:
		b.body.Certificates = append(b.body.Certificates, *item.certificate)
	}
}

func missingField(item string, field string) ValidationError {
	return ValidationError{Item: item, Field: field, Reason: "missing"}
}

func (b *TxBuilder) validatePending(item pendingItem) error {
	switch item.kind {
	case pendingTxIn:
		name := "input " + item.input.Parameter().Input().String()
		switch input := item.input.(type) {
		case *ScriptTxIn:
			if input.ScriptSource == nil {
				return missingField(name, "script source")
			}
			if input.DatumSource == nil {
				return missingField(name, "datum")
			}
			if input.Redeemer == nil {
				return missingField(name, "redeemer")
			}
		case *SimpleScriptTxIn:
			if input.ScriptSource == nil {
				return missingField(name, "script source")
			}
		}
	case pendingMint:
		mint := item.mint
		name := "mint " + mint.Unit()
		// Further assets of a policy reuse the script and redeemer of the first one
		var prior *MintItem
		for i := range b.body.Mints {
			if b.body.Mints[i].PolicyId == mint.PolicyId {
				prior = &b.body.Mints[i]
				break
			}
		}
		if prior != nil && prior.Type != mint.Type {
			return ValidationError{
				Item:   name,
				Reason: "policy already minted with a different script type",
			}
		}
		return validateScriptWitness(
			name,
			mint.Type,
			mint.ScriptSource,
			mint.SimpleScriptSource,
			mint.Redeemer,
			prior != nil,
		)
	case pendingWithdrawal:
		withdrawal := item.withdrawal
		return validateScriptWitness(
			"withdrawal "+withdrawal.Address,
			withdrawal.Type,
			withdrawal.ScriptSource,
			withdrawal.SimpleScriptSource,
			withdrawal.Redeemer,
			false,
		)
	case pendingVote:
		vote := item.vote
		return validateScriptWitness(
			"vote by "+vote.Voter.Hash.String(),
			vote.Type,
			vote.ScriptSource,
			vote.SimpleScriptSource,
			vote.Redeemer,
			false,
		)
	case pendingCertificate:
		cert := item.certificate
		return validateScriptWitness(
			fmt.Sprintf("certificate %d", cert.Certificate.Type()),
			cert.Type,
			cert.ScriptSource,
			cert.SimpleScriptSource,
			cert.Redeemer,
			false,
		)
	}
	return nil
}

func validateScriptWitness(
	name string,
	witnessType WitnessType,
	scriptSource ScriptSource,
	simpleScriptSource SimpleScriptSource,
	redeemer *Redeemer,
	inherited bool,
) error {
	if inherited {
		return nil
	}
	switch witnessType {
	case WitnessPlutus:
		if scriptSource == nil {
			return missingField(name, "script source")
		}
		if redeemer == nil {
			return missingField(name, "redeemer")
		}
	case WitnessNative:
		if simpleScriptSource == nil {
			return missingField(name, "script source")
		}
	}
	return nil
}

// requirePending records an error when call does not apply to the pending item
func (b *TxBuilder) requirePending(call string, kinds ...pendingKind) bool {
	if b.err != nil {
		return false
	}
	for _, kind := range kinds {
		if b.pending.kind == kind {
			return true
		}
	}
	b.setErr(ValidationError{
		Item:   call,
		Reason: fmt.Sprintf("called while the pending item is %s", b.pending.kind),
	})
	return false
}

func validateHash(item string, value string, size int) error {
	tmpBytes, err := hex.DecodeString(value)
	if err != nil || len(tmpBytes) != size {
		return ValidationError{
			Item:   item,
			Reason: fmt.Sprintf("expected %d byte hex hash, got %q", size, value),
		}
	}
	return nil
}

func validateHex(item string, value string) error {
	if _, err := hex.DecodeString(value); err != nil {
		return ValidationError{Item: item, Reason: fmt.Sprintf("invalid hex: %s", err)}
	}
	return nil
}

func budgetOrDefault(exUnits common.ExUnits) common.ExUnits {
	if exUnits == (common.ExUnits{}) {
		return common.DefaultRedeemerBudget
	}
	return exUnits
}

// SpendingPlutusScript marks the next input as locked by a Plutus script of
// the given version
func (b *TxBuilder) SpendingPlutusScript(version common.PlutusLanguage) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.next.input = version
	return b
}

// TxIn starts a new input. Amount and address may be left empty to be
// resolved from known UTxOs
func (b *TxBuilder) TxIn(
	txHash string,
	txIndex uint32,
	amount []common.Asset,
	address string,
) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	if err := validateHash("input", txHash, common.Blake2b256Size); err != nil {
		return b.setErr(err)
	}
	param := TxInParameter{
		TxHash:  strings.ToLower(txHash),
		TxIndex: txIndex,
		Amount:  amount,
		Address: address,
	}
	b.pending = pendingItem{kind: pendingTxIn, version: b.next.input}
	if b.next.input != 0 {
		b.pending.input = &ScriptTxIn{TxIn: param}
	} else {
		b.pending.input = &PubKeyTxIn{TxIn: param}
	}
	b.next.input = 0
	return b
}

// TxInScript attaches script code to the pending input. Inputs not marked
// with SpendingPlutusScript take a native script
func (b *TxBuilder) TxInScript(code string) *TxBuilder {
	if !b.requirePending("TxInScript", pendingTxIn) {
		return b
	}
	if err := validateHex("input script", code); err != nil {
		return b.setErr(err)
	}
	switch input := b.pending.input.(type) {
	case *ScriptTxIn:
		input.ScriptSource = ProvidedScriptSource{Code: code, Version: b.pending.version}
	case *PubKeyTxIn:
		b.pending.input = &SimpleScriptTxIn{
			TxIn:         input.TxIn,
			ScriptSource: ProvidedSimpleScriptSource{Code: code},
		}
	case *SimpleScriptTxIn:
		input.ScriptSource = ProvidedSimpleScriptSource{Code: code}
	}
	return b
}

// SpendingTxInReference takes the script of the pending Plutus input from the
// reference script of another UTxO
func (b *TxBuilder) SpendingTxInReference(
	txHash string,
	txIndex uint32,
	scriptHash string,
	scriptSize int,
) *TxBuilder {
	if !b.requirePending("SpendingTxInReference", pendingTxIn) {
		return b
	}
	input, ok := b.pending.input.(*ScriptTxIn)
	if !ok {
		return b.setErr(ValidationError{
			Item:   "SpendingTxInReference",
			Reason: "pending input is not a Plutus script input",
		})
	}
	if err := validateHash("script reference", txHash, common.Blake2b256Size); err != nil {
		return b.setErr(err)
	}
	input.ScriptSource = InlineScriptSource{
		TxHash:     strings.ToLower(txHash),
		Index:      txIndex,
		ScriptHash: strings.ToLower(scriptHash),
		ScriptSize: scriptSize,
		Version:    b.pending.version,
	}
	return b
}

// SimpleScriptTxInReference takes the native script of the pending input from
// the reference script of another UTxO
func (b *TxBuilder) SimpleScriptTxInReference(
	txHash string,
	txIndex uint32,
	scriptHash string,
	scriptSize int,
) *TxBuilder {
	if !b.requirePending("SimpleScriptTxInReference", pendingTxIn) {
		return b
	}
	if err := validateHash("script reference", txHash, common.Blake2b256Size); err != nil {
		return b.setErr(err)
	}
	source := InlineSimpleScriptSource{
		TxHash:     strings.ToLower(txHash),
		Index:      txIndex,
		ScriptHash: strings.ToLower(scriptHash),
		ScriptSize: scriptSize,
	}
	switch input := b.pending.input.(type) {
	case *PubKeyTxIn:
		b.pending.input = &SimpleScriptTxIn{TxIn: input.TxIn, ScriptSource: source}
	case *SimpleScriptTxIn:
		input.ScriptSource = source
	default:
		return b.setErr(ValidationError{
			Item:   "SimpleScriptTxInReference",
			Reason: "pending input is a Plutus script input",
		})
	}
	return b
}

func (b *TxBuilder) pendingScriptInput(call string) *ScriptTxIn {
	if !b.requirePending(call, pendingTxIn) {
		return nil
	}
	input, ok := b.pending.input.(*ScriptTxIn)
	if !ok {
		b.setErr(ValidationError{
			Item:   call,
			Reason: "pending input is not a Plutus script input",
		})
		return nil
	}
	return input
}

// TxInDatumValue supplies the datum of the pending script input
func (b *TxBuilder) TxInDatumValue(datum plutusdata.BuilderData) *TxBuilder {
	if input := b.pendingScriptInput("TxInDatumValue"); input != nil {
		input.DatumSource = ProvidedDatumSource{Data: datum}
	}
	return b
}

// TxInInlineDatumPresent marks the datum of the pending script input as
// stored inline in the spent output
func (b *TxBuilder) TxInInlineDatumPresent() *TxBuilder {
	if input := b.pendingScriptInput("TxInInlineDatumPresent"); input != nil {
		input.DatumSource = InlineDatumSource{
			TxHash: input.TxIn.TxHash,
			Index:  input.TxIn.TxIndex,
		}
	}
	return b
}

// TxInRedeemerValue sets the redeemer of the pending script input. A zero
// budget is replaced with common.DefaultRedeemerBudget
func (b *TxBuilder) TxInRedeemerValue(
	redeemer plutusdata.BuilderData,
	exUnits common.ExUnits,
) *TxBuilder {
	if input := b.pendingScriptInput("TxInRedeemerValue"); input != nil {
		input.Redeemer = &Redeemer{Data: redeemer, ExUnits: budgetOrDefault(exUnits)}
	}
	return b
}

// TxInCollateral starts a collateral input
func (b *TxBuilder) TxInCollateral(
	txHash string,
	txIndex uint32,
	amount []common.Asset,
	address string,
) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	if err := validateHash("collateral", txHash, common.Blake2b256Size); err != nil {
		return b.setErr(err)
	}
	b.pending = pendingItem{
		kind: pendingCollateral,
		collateral: &PubKeyTxIn{
			TxIn: TxInParameter{
				TxHash:  strings.ToLower(txHash),
				TxIndex: txIndex,
				Amount:  amount,
				Address: address,
			},
		},
	}
	return b
}

// SetTotalCollateral overrides the computed total collateral
func (b *TxBuilder) SetTotalCollateral(lovelace uint64) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.TotalCollateral = &lovelace
	return b
}

// SetCollateralReturnAddress overrides the address receiving the collateral return
func (b *TxBuilder) SetCollateralReturnAddress(address string) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.CollateralReturnAddress = address
	return b
}

// ReadOnlyTxInReference starts a reference input. A zero scriptSize is
// filled in from the referenced UTxO when it is known
func (b *TxBuilder) ReadOnlyTxInReference(txHash string, txIndex uint32, scriptSize int) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	if err := validateHash("reference input", txHash, common.Blake2b256Size); err != nil {
		return b.setErr(err)
	}
	b.pending = pendingItem{
		kind: pendingRefInput,
		refInput: &RefTxIn{
			TxHash:     strings.ToLower(txHash),
			TxIndex:    txIndex,
			ScriptSize: scriptSize,
		},
	}
	return b
}

// TxOut adds an output. Outputs without lovelace receive the minimum UTxO
// amount. The address must belong to the body's network, which is checked on
// completion since the network can still change
func (b *TxBuilder) TxOut(address string, amount []common.Asset) *TxBuilder {
	if b.err != nil {
		return b
	}
	if _, err := common.NewAddress(address); err != nil {
		return b.setErr(ValidationError{Item: "output", Field: "address", Reason: err.Error()})
	}
	b.body.Outputs = append(b.body.Outputs, Output{Address: address, Amount: amount})
	return b
}

func (b *TxBuilder) lastOutput(call string) *Output {
	if b.err != nil {
		return nil
	}
	if len(b.body.Outputs) == 0 {
		b.setErr(ValidationError{Item: call, Reason: "no output to modify"})
		return nil
	}
	return &b.body.Outputs[len(b.body.Outputs)-1]
}

// TxOutDatumHashValue stores the hash of datum in the last output
func (b *TxBuilder) TxOutDatumHashValue(datum plutusdata.BuilderData) *TxBuilder {
	if output := b.lastOutput("TxOutDatumHashValue"); output != nil {
		output.Datum = &OutputDatum{Type: OutputDatumHash, Data: datum}
	}
	return b
}

// TxOutInlineDatumValue stores datum inline in the last output
func (b *TxBuilder) TxOutInlineDatumValue(datum plutusdata.BuilderData) *TxBuilder {
	if output := b.lastOutput("TxOutInlineDatumValue"); output != nil {
		output.Datum = &OutputDatum{Type: OutputDatumInline, Data: datum}
	}
	return b
}

// TxOutDatumEmbedValue stores the hash of datum in the last output and the
// datum itself in the witness set
func (b *TxBuilder) TxOutDatumEmbedValue(datum plutusdata.BuilderData) *TxBuilder {
	if output := b.lastOutput("TxOutDatumEmbedValue"); output != nil {
		output.Datum = &OutputDatum{Type: OutputDatumEmbedded, Data: datum}
	}
	return b
}

// TxOutReferenceScript attaches a reference script to the last output. A zero
// version marks a native script
func (b *TxBuilder) TxOutReferenceScript(code string, version common.PlutusLanguage) *TxBuilder {
	output := b.lastOutput("TxOutReferenceScript")
	if output == nil {
		return b
	}
	if err := validateHex("reference script", code); err != nil {
		return b.setErr(err)
	}
	output.ReferenceScript = &ReferenceScript{Code: code, Version: version}
	return b
}

// ChangeAddress sets the address receiving the change output. Like output
// addresses it must belong to the body's network
func (b *TxBuilder) ChangeAddress(address string) *TxBuilder {
	if b.err != nil {
		return b
	}
	if _, err := common.NewAddress(address); err != nil {
		return b.setErr(ValidationError{Item: "change address", Reason: err.Error()})
	}
	b.body.ChangeAddress = address
	return b
}

// ChangeOutputDatum attaches a datum to the change output
func (b *TxBuilder) ChangeOutputDatum(datumType OutputDatumType, datum plutusdata.BuilderData) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.ChangeDatum = &OutputDatum{Type: datumType, Data: datum}
	return b
}

// RequiredSignerHash adds a payment key hash that must sign the transaction
func (b *TxBuilder) RequiredSignerHash(keyHash string) *TxBuilder {
	if b.err != nil {
		return b
	}
	if err := validateHash("required signer", keyHash, common.Blake2b224Size); err != nil {
		return b.setErr(err)
	}
	b.body.RequiredSignatures = append(b.body.RequiredSignatures, strings.ToLower(keyHash))
	return b
}

func (b *TxBuilder) InvalidBefore(slot uint64) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.ValidityRange.InvalidBefore = &slot
	return b
}

func (b *TxBuilder) InvalidHereafter(slot uint64) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.ValidityRange.InvalidHereafter = &slot
	return b
}

// InvalidBeforeTime sets the lower validity bound to the slot enclosing t on
// the body's network
func (b *TxBuilder) InvalidBeforeTime(t time.Time) *TxBuilder {
	if b.err != nil {
		return b
	}
	slot, err := b.body.Network.UnixTimeToSlot(t)
	if err != nil {
		return b.setErr(ValidationError{Item: "validity range", Reason: err.Error()})
	}
	return b.InvalidBefore(slot)
}

// InvalidHereafterTime sets the upper validity bound to the slot enclosing t
// on the body's network
func (b *TxBuilder) InvalidHereafterTime(t time.Time) *TxBuilder {
	if b.err != nil {
		return b
	}
	slot, err := b.body.Network.UnixTimeToSlot(t)
	if err != nil {
		return b.setErr(ValidationError{Item: "validity range", Reason: err.Error()})
	}
	return b.InvalidHereafter(slot)
}

// MetadataValue adds transaction metadata under label. The value is JSON
// using the no-schema mapping
func (b *TxBuilder) MetadataValue(label uint64, value string) *TxBuilder {
	if b.err != nil {
		return b
	}
	if _, err := common.MetadatumFromJSON([]byte(value)); err != nil {
		return b.setErr(ValidationError{
			Item:   fmt.Sprintf("metadata label %d", label),
			Reason: err.Error(),
		})
	}
	b.body.Metadata = append(b.body.Metadata, MetadataItem{Label: label, Value: value})
	return b
}

// SigningKey adds keys used by CompleteSigning
func (b *TxBuilder) SigningKey(keys ...string) *TxBuilder {
	if b.err != nil {
		return b
	}
	for _, key := range keys {
		if _, err := provider.ParseSigningKey(key); err != nil {
			return b.setErr(ValidationError{Item: "signing key", Reason: err.Error()})
		}
	}
	b.body.SigningKeys = append(b.body.SigningKeys, keys...)
	return b
}

func (b *TxBuilder) SetNetwork(network common.Network) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.Network = network
	return b
}

// SetFee fixes the fee instead of calculating it
func (b *TxBuilder) SetFee(fee uint64) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.body.Fee = &fee
	return b
}

// SetEvaluationMultiplier changes the factor applied to evaluated budgets
func (b *TxBuilder) SetEvaluationMultiplier(multiplier common.Rational) *TxBuilder {
	if b.err != nil {
		return b
	}
	if multiplier.Rat == nil || multiplier.Sign() <= 0 {
		return b.setErr(ValidationError{
			Item:   "evaluation multiplier",
			Reason: "must be positive",
		})
	}
	b.evaluationMultiplier = multiplier
	return b
}

// SelectUtxosFrom enables coin selection over utxos. An empty strategy or
// threshold selects the defaults
func (b *TxBuilder) SelectUtxosFrom(
	utxos []common.UTxO,
	strategy coinselection.Strategy,
	threshold string,
	includeTxFees bool,
) *TxBuilder {
	if b.err != nil {
		return b
	}
	strategy, err := coinselection.ParseStrategy(string(strategy))
	if err != nil {
		return b.setErr(ValidationError{Item: "coin selection", Field: "strategy", Reason: err.Error()})
	}
	if _, err := coinselection.ParseThreshold(threshold); err != nil {
		return b.setErr(ValidationError{Item: "coin selection", Field: "threshold", Reason: err.Error()})
	}
	if threshold == "" {
		threshold = coinselection.DefaultThreshold
	}
	tmpUtxos, err := copyUtxos(utxos)
	if err != nil {
		return b.setErr(err)
	}
	b.body.ExtraInputs = append(b.body.ExtraInputs, tmpUtxos...)
	b.body.SelectionConfig = coinselection.Config{
		Threshold:     threshold,
		Strategy:      strategy,
		IncludeTxFees: includeTxFees,
	}
	return b
}

// AddKnownUtxos makes utxos available for resolving inputs and script references
func (b *TxBuilder) AddKnownUtxos(utxos ...common.UTxO) *TxBuilder {
	if b.err != nil {
		return b
	}
	tmpUtxos, err := copyUtxos(utxos)
	if err != nil {
		return b.setErr(err)
	}
	for _, utxo := range tmpUtxos {
		b.knownUtxos[utxo.Key()] = utxo
	}
	return b
}

func copyUtxos(src []common.UTxO) ([]common.UTxO, error) {
	ret := make([]common.UTxO, len(src))
	if err := copier.CopyWithOption(&ret, &src, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return ret, nil
}
