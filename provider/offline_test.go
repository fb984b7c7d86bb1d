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

package provider_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAddress      = "addr_test1vpmwd5tk8quxnzxq46h8vztf00xtphrd7zd0al5ur5jsylg3r9v4l"
	testOtherAddress = "addr1v887yfpftg5z660dmf063hj0zv0zh8xjrfkfyd2e07j076cecha5k"
)

var (
	testTxHashA = strings.Repeat("aa", 32)
	testTxHashB = strings.Repeat("bb", 32)
)

func testUtxo(txHash string, idx uint32, address string, lovelace uint64) common.UTxO {
	return common.UTxO{
		Input: common.NewTransactionInput(txHash, idx),
		Output: common.TransactionOutput{
			Address: address,
			Amount:  []common.Asset{common.NewLovelace(lovelace)},
		},
	}
}

func TestOfflineFetcher(t *testing.T) {
	fetcher := provider.NewOfflineFetcher()
	require.NoError(t, fetcher.AddUTxOs(
		testUtxo(testTxHashA, 0, testAddress, 1000000),
		testUtxo(testTxHashA, 1, testOtherAddress, 2000000),
		testUtxo(testTxHashB, 0, testAddress, 3000000),
	))
	ctx := context.Background()

	utxos, err := fetcher.FetchUTxOs(ctx, testTxHashA)
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	assert.Equal(t, uint32(0), utxos[0].Input.OutputIndex)
	assert.Equal(t, uint32(1), utxos[1].Input.OutputIndex)

	utxos, err = fetcher.FetchUTxOs(ctx, strings.ToUpper(testTxHashB))
	require.NoError(t, err)
	require.Len(t, utxos, 1)

	utxos, err = fetcher.FetchAddressUTxOs(ctx, testAddress)
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	assert.Equal(t, uint64(3000000), utxos[1].Lovelace())

	utxos, err = fetcher.FetchUTxOs(ctx, strings.Repeat("cc", 32))
	require.NoError(t, err)
	assert.Empty(t, utxos)
}

func TestOfflineFetcherReturnsCopies(t *testing.T) {
	fetcher := provider.NewOfflineFetcher()
	orig := testUtxo(testTxHashA, 0, testAddress, 1000000)
	require.NoError(t, fetcher.AddUTxOs(orig))
	orig.Output.Amount[0].Quantity = "1"

	utxos, err := fetcher.FetchUTxOs(context.Background(), testTxHashA)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "1000000", utxos[0].Output.Amount[0].Quantity)
	utxos[0].Output.Amount[0].Quantity = "2"

	utxos, err = fetcher.FetchUTxOs(context.Background(), testTxHashA)
	require.NoError(t, err)
	assert.Equal(t, "1000000", utxos[0].Output.Amount[0].Quantity)
}

func TestOfflineFetcherReplacesUtxo(t *testing.T) {
	fetcher := provider.NewOfflineFetcher()
	require.NoError(t, fetcher.AddUTxOs(testUtxo(testTxHashA, 0, testAddress, 1000000)))
	require.NoError(t, fetcher.AddUTxOs(testUtxo(testTxHashA, 0, testAddress, 5000000)))
	utxos, err := fetcher.FetchUTxOs(context.Background(), testTxHashA)
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, uint64(5000000), utxos[0].Lovelace())
}

func TestOfflineFetcherProtocolParameters(t *testing.T) {
	fetcher := provider.NewOfflineFetcher()
	_, err := fetcher.FetchProtocolParameters(context.Background())
	assert.True(t, errors.Is(err, provider.ErrNoProtocolParameters))

	pparams := common.DefaultProtocolParameters()
	fetcher.SetProtocolParameters(pparams)
	pparams.MinFeeA = 1
	fetched, err := fetcher.FetchProtocolParameters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(44), fetched.MinFeeA)
}

func TestOfflineFetcherCanceledContext(t *testing.T) {
	fetcher := provider.NewOfflineFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := fetcher.FetchAddressUTxOs(ctx, testAddress)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOfflineEvaluator(t *testing.T) {
	testDefs := []struct {
		name     string
		txHex    string
		opts     []provider.OfflineEvaluatorOptionFunc
		expected []provider.Action
	}{
		{
			name: "MapRedeemers",
			// [{}, {5: {[0, 0]: [121([]), [1, 2]]}}, true, null]
			txHex: "84a0a105a182000082d87980820102f5f6",
			expected: []provider.Action{
				{
					Tag:    common.RedeemerTagSpend,
					Index:  0,
					Budget: common.DefaultRedeemerBudget,
				},
			},
		},
		{
			name: "ListRedeemers",
			// [{}, {5: [[1, 1, 121([]), [1, 2]], [0, 2, 121([]), [1, 2]]]}, true, null]
			txHex: "84a0a10582840101d87980820102840002d87980820102f5f6",
			opts: []provider.OfflineEvaluatorOptionFunc{
				provider.WithBudget(
					common.RedeemerTagMint,
					1,
					common.ExUnits{Memory: 10, Steps: 20},
				),
				provider.WithDefaultBudget(common.ExUnits{Memory: 1, Steps: 2}),
			},
			expected: []provider.Action{
				{
					Tag:    common.RedeemerTagMint,
					Index:  1,
					Budget: common.ExUnits{Memory: 10, Steps: 20},
				},
				{
					Tag:    common.RedeemerTagSpend,
					Index:  2,
					Budget: common.ExUnits{Memory: 1, Steps: 2},
				},
			},
		},
		{
			name:     "NoRedeemers",
			txHex:    "84a0a0f5f6",
			expected: []provider.Action{},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			evaluator := provider.NewOfflineEvaluator(testDef.opts...)
			actions, err := evaluator.EvaluateTx(context.Background(), testDef.txHex, nil)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, actions)
		})
	}
}

func TestOfflineEvaluatorInvalidTx(t *testing.T) {
	evaluator := provider.NewOfflineEvaluator()
	testDefs := []string{"zz", "a0", "81a0"}
	for _, txHex := range testDefs {
		_, err := evaluator.EvaluateTx(context.Background(), txHex, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, provider.ErrInvalidTransaction), "tx %s", txHex)
	}
}

func TestRedeemerTag(t *testing.T) {
	assert.Equal(t, "MINT", common.RedeemerTagMint.String())
	tag, err := common.ParseRedeemerTag("reward")
	require.NoError(t, err)
	assert.Equal(t, common.RedeemerTagReward, tag)
	_, err = common.ParseRedeemerTag("withdraw")
	assert.Error(t, err)
}
