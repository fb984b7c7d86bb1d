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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingFetcher struct {
	provider.Fetcher
	calls atomic.Int32
}

func (f *countingFetcher) FetchUTxOs(ctx context.Context, txHash string) ([]common.UTxO, error) {
	f.calls.Add(1)
	return f.Fetcher.FetchUTxOs(ctx, txHash)
}

func (f *countingFetcher) FetchAddressUTxOs(ctx context.Context, address string) ([]common.UTxO, error) {
	f.calls.Add(1)
	return f.Fetcher.FetchAddressUTxOs(ctx, address)
}

func (f *countingFetcher) FetchProtocolParameters(ctx context.Context) (*common.ProtocolParameters, error) {
	f.calls.Add(1)
	return f.Fetcher.FetchProtocolParameters(ctx)
}

func newCountingFetcher(t *testing.T) *countingFetcher {
	t.Helper()
	offline := provider.NewOfflineFetcher()
	require.NoError(t, offline.AddUTxOs(
		testUtxo(testTxHashA, 0, testAddress, 1000000),
		testUtxo(testTxHashB, 0, testAddress, 3000000),
	))
	offline.SetProtocolParameters(common.DefaultProtocolParameters())
	return &countingFetcher{Fetcher: offline}
}

func TestCachingFetcher(t *testing.T) {
	defer goleak.VerifyNone(t)
	inner := newCountingFetcher(t)
	fetcher, err := provider.NewCachingFetcher(inner, provider.WithCacheTTL(time.Minute))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, fetcher.Close())
	}()
	ctx := context.Background()

	for range 3 {
		utxos, err := fetcher.FetchUTxOs(ctx, testTxHashA)
		require.NoError(t, err)
		require.Len(t, utxos, 1)
		// Changes to results do not leak into the cache
		utxos[0].Output.Amount[0].Quantity = "0"
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	utxos, err := fetcher.FetchUTxOs(ctx, testTxHashA)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000000), utxos[0].Lovelace())

	utxos, err = fetcher.FetchAddressUTxOs(ctx, testAddress)
	require.NoError(t, err)
	assert.Len(t, utxos, 2)
	_, err = fetcher.FetchAddressUTxOs(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())

	pparams, err := fetcher.FetchProtocolParameters(ctx)
	require.NoError(t, err)
	pparams.MinFeeB = 0
	pparams, err = fetcher.FetchProtocolParameters(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(155381), pparams.MinFeeB)
	assert.Equal(t, int32(3), inner.calls.Load())

	require.NoError(t, fetcher.Invalidate())
	_, err = fetcher.FetchUTxOs(ctx, testTxHashA)
	require.NoError(t, err)
	assert.Equal(t, int32(4), inner.calls.Load())
}

func TestCachingFetcherExpiry(t *testing.T) {
	defer goleak.VerifyNone(t)
	inner := newCountingFetcher(t)
	fetcher, err := provider.NewCachingFetcher(inner, provider.WithCacheTTL(50*time.Millisecond))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, fetcher.Close())
	}()
	ctx := context.Background()
	_, err = fetcher.FetchUTxOs(ctx, testTxHashB)
	require.NoError(t, err)
	require.Eventually(
		t,
		func() bool {
			_, err := fetcher.FetchUTxOs(ctx, testTxHashB)
			return err == nil && inner.calls.Load() > 1
		},
		2*time.Second,
		20*time.Millisecond,
	)
}

func TestCachingFetcherErrors(t *testing.T) {
	defer goleak.VerifyNone(t)
	fetcher, err := provider.NewCachingFetcher(provider.NewOfflineFetcher())
	require.NoError(t, err)
	_, err = fetcher.FetchProtocolParameters(context.Background())
	assert.True(t, errors.Is(err, provider.ErrNoProtocolParameters))
	require.NoError(t, fetcher.Close())
	_, err = fetcher.FetchUTxOs(context.Background(), testTxHashA)
	assert.True(t, errors.Is(err, provider.ErrFetcherCacheClosed))
}

func TestCachingFetcherLogging(t *testing.T) {
	defer goleak.VerifyNone(t)
	var logBuf bytes.Buffer
	logger := slog.New(
		slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	fetcher, err := provider.NewCachingFetcher(
		newCountingFetcher(t),
		provider.WithCacheLogger(logger),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, fetcher.Close())
	}()
	for range 2 {
		_, err := fetcher.FetchUTxOs(context.Background(), testTxHashA)
		require.NoError(t, err)
	}
	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logBuf.Bytes()), &record))
	assert.Equal(t, "fetcher cache hit", record["msg"])
	assert.Equal(t, "provider", record["component"])
}
