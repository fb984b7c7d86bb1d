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

package txbuilder_test

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/blinklabs-io/txbuilder/coinselection"
	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/txbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPolicyId = "7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373"

// testNativeScript returns a single signature native script and its policy ID
func testNativeScript(t *testing.T) (string, string) {
	t.Helper()
	keyHash := make([]byte, 28)
	keyHash[0] = 0x01
	scriptCbor, err := cbor.Encode([]any{uint64(0), keyHash})
	require.NoError(t, err)
	var script common.NativeScript
	require.NoError(t, script.UnmarshalCBOR(scriptCbor))
	return hex.EncodeToString(scriptCbor), script.Hash().String()
}

func TestBuilderValidationErrors(t *testing.T) {
	testDefs := []struct {
		name    string
		builder func() *txbuilder.TxBuilder
		field   string
	}{
		{
			name: "ScriptInputWithoutRedeemer",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().
					SpendingPlutusScript(common.PlutusLanguageV2).
					TxIn(testTxHashA, 0, lovelace(5*ada), testAddress).
					TxInScript(testPlutusScript).
					TxInDatumValue(testRedeemer()).
					TxOut(testOtherAddress, lovelace(2*ada))
			},
			field: "redeemer",
		},
		{
			name: "ScriptInputWithoutDatum",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().
					SpendingPlutusScript(common.PlutusLanguageV2).
					TxIn(testTxHashA, 0, lovelace(5*ada), testAddress).
					TxInScript(testPlutusScript).
					TxInRedeemerValue(testRedeemer(), common.ExUnits{}).
					TxIn(testTxHashB, 0, lovelace(5*ada), testAddress)
			},
			field: "datum",
		},
		{
			name: "ScriptInputWithoutScript",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().
					SpendingPlutusScript(common.PlutusLanguageV3).
					TxIn(testTxHashA, 0, lovelace(5*ada), testAddress).
					TxInInlineDatumPresent().
					TxInRedeemerValue(testRedeemer(), common.ExUnits{}).
					Mint("1", testPolicyId, "41")
			},
			field: "script source",
		},
		{
			name: "PlutusMintWithoutRedeemer",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().
					MintPlutusScript(common.PlutusLanguageV2).
					Mint("1", testPolicyId, "41").
					MintingScript(testPlutusScript).
					ReadOnlyTxInReference(testTxHashC, 0, 0)
			},
			field: "redeemer",
		},
		{
			name: "NativeMintWithoutScript",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().
					Mint("1", testPolicyId, "41").
					TxIn(testTxHashA, 0, lovelace(5*ada), testAddress)
			},
			field: "script source",
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			builder := testDef.builder()
			_, err := builder.CompleteSync()
			require.Error(t, err)
			assert.True(t, errors.Is(err, txbuilder.ErrValidation))
			var validationErr txbuilder.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, testDef.field, validationErr.Field)
		})
	}
}

func TestBuilderInvalidCalls(t *testing.T) {
	testDefs := []struct {
		name    string
		builder func() *txbuilder.TxBuilder
	}{
		{
			name: "RedeemerWithoutPendingInput",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().TxInRedeemerValue(testRedeemer(), common.ExUnits{})
			},
		},
		{
			name: "RedeemerForPubKeyInput",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().
					TxIn(testTxHashA, 0, nil, "").
					TxInRedeemerValue(testRedeemer(), common.ExUnits{})
			},
		},
		{
			name: "ShortTxHash",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().TxIn("abcd", 0, nil, "")
			},
		},
		{
			name: "ZeroMint",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().Mint("0", testPolicyId, "41")
			},
		},
		{
			name: "LongAssetName",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().Mint("1", testPolicyId, hex.EncodeToString(make([]byte, 33)))
			},
		},
		{
			name: "MixedPolicyWitnesses",
			builder: func() *txbuilder.TxBuilder {
				code, policyId := testNativeScript(t)
				return newTestBuilder().
					Mint("1", policyId, "41").
					MintingScript(code).
					MintPlutusScript(common.PlutusLanguageV2).
					Mint("1", policyId, "42").
					MintingScript(testPlutusScript).
					MintRedeemerValue(testRedeemer(), common.ExUnits{}).
					TxOut(testOtherAddress, lovelace(2*ada))
			},
		},
		{
			name: "WithdrawalFromPaymentAddress",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().Withdrawal(testAddress, 1)
			},
		},
		{
			name: "InvalidOutputAddress",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().TxOut("addr_bogus", lovelace(1))
			},
		},
		{
			name: "DatumWithoutOutput",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().TxOutInlineDatumValue(testRedeemer())
			},
		},
		{
			name: "InvalidMetadata",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().MetadataValue(674, "{")
			},
		},
		{
			name: "ZeroEvaluationMultiplier",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().SetEvaluationMultiplier(common.NewRational(0, 1))
			},
		},
		{
			name: "UnknownStrategy",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().SelectUtxosFrom(nil, "random", "", false)
			},
		},
		{
			name: "InvalidSigningKey",
			builder: func() *txbuilder.TxBuilder {
				return newTestBuilder().SigningKey("0011")
			},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			builder := testDef.builder()
			if builder.Err() == nil {
				_, err := builder.CompleteSync()
				require.Error(t, err)
				assert.True(t, errors.Is(err, txbuilder.ErrValidation), "unexpected error: %s", err)
				return
			}
			assert.True(t, errors.Is(builder.Err(), txbuilder.ErrValidation))
		})
	}
}

func TestBuilderStickyError(t *testing.T) {
	builder := newTestBuilder().
		TxInRedeemerValue(testRedeemer(), common.ExUnits{})
	firstErr := builder.Err()
	require.Error(t, firstErr)
	// Later calls are ignored once an error is recorded
	builder.
		TxIn(testTxHashA, 0, lovelace(5*ada), testAddress).
		TxOut(testOtherAddress, lovelace(2*ada)).
		ChangeAddress(testAddress)
	assert.Equal(t, firstErr, builder.Err())
	assert.Empty(t, builder.Body().Inputs)
	_, err := builder.CompleteSync()
	assert.Equal(t, firstErr, err)

	builder.Reset()
	require.NoError(t, builder.Err())
	_, err = builder.
		TxIn(testTxHashA, 0, lovelace(5*ada), testAddress).
		TxOut(testOtherAddress, lovelace(2*ada)).
		ChangeAddress(testAddress).
		CompleteSync()
	require.NoError(t, err)
}

func TestBuilderPendingItems(t *testing.T) {
	code, policyId := testNativeScript(t)
	builder := newTestBuilder().
		TxIn(testTxHashA, 1, lovelace(5*ada), testAddress).
		TxInScript(code).
		SpendingPlutusScript(common.PlutusLanguageV2).
		TxIn(testTxHashA, 0, lovelace(5*ada), testAddress).
		TxInScript(testPlutusScript).
		TxInInlineDatumPresent().
		TxInRedeemerValue(testRedeemer(), common.ExUnits{}).
		Mint("5", policyId, "41").
		MintingScript(code).
		Mint("-2", policyId, "42").
		TxInCollateral(testTxHashB, 0, lovelace(5*ada), testAddress).
		ReadOnlyTxInReference(testTxHashC, 3, 100)
	_, _ = builder.CompleteUnbalanced()
	require.NoError(t, builder.Err())
	body := builder.Body()

	require.Len(t, body.Inputs, 2)
	nativeInput, ok := body.Inputs[0].(*txbuilder.SimpleScriptTxIn)
	require.True(t, ok)
	assert.Equal(t, txbuilder.ProvidedSimpleScriptSource{Code: code}, nativeInput.ScriptSource)
	scriptInput, ok := body.Inputs[1].(*txbuilder.ScriptTxIn)
	require.True(t, ok)
	assert.Equal(t, txbuilder.InlineDatumSource{TxHash: testTxHashA, Index: 0}, scriptInput.DatumSource)
	assert.Equal(t, common.DefaultRedeemerBudget, scriptInput.Redeemer.ExUnits)

	require.Len(t, body.Mints, 2)
	assert.Equal(t, txbuilder.WitnessNative, body.Mints[1].Type)
	assert.Equal(t, "-2", body.Mints[1].Amount.String())
	// The plutus flag applies to the next input only
	require.Len(t, body.Collaterals, 1)
	require.Len(t, body.ReferenceInputs, 1)
	assert.Equal(t, 100, body.ReferenceInputs[0].ScriptSize)
}

func TestBuilderSelectUtxosFromCopies(t *testing.T) {
	utxos := []common.UTxO{testUtxo(testTxHashA, 0, testAddress, 5*ada)}
	builder := newTestBuilder().
		SelectUtxosFrom(utxos, "", "", true)
	require.NoError(t, builder.Err())
	utxos[0].Output.Amount[0].Quantity = "1"
	body := builder.Body()
	require.Len(t, body.ExtraInputs, 1)
	assert.Equal(t, uint64(5*ada), body.ExtraInputs[0].Lovelace())
	assert.Equal(t, coinselection.StrategyExperimental, body.SelectionConfig.Strategy)
	assert.Equal(t, coinselection.DefaultThreshold, body.SelectionConfig.Threshold)
	assert.True(t, body.SelectionConfig.IncludeTxFees)
}
