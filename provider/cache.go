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
	"log/slog"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/blinklabs-io/txbuilder/ledger/common"
)

const (
	DefaultCacheTTL = 30 * time.Second

	cacheKeyPrefixTx      = "tx:"
	cacheKeyPrefixAddress = "addr:"
	cacheKeyPParams       = "pparams"
)

type CachingFetcherOptionFunc func(*CachingFetcher)

// CachingFetcher keeps the results of another Fetcher for a limited time.
// Close must be called to stop the expiry goroutine
type CachingFetcher struct {
	fetcher Fetcher
	cache   *ttlcache.Cache
	ttl     time.Duration
	logger  *slog.Logger
}

func WithCacheTTL(ttl time.Duration) CachingFetcherOptionFunc {
	return func(c *CachingFetcher) {
		c.ttl = ttl
	}
}

func WithCacheLogger(logger *slog.Logger) CachingFetcherOptionFunc {
	return func(c *CachingFetcher) {
		c.logger = logger
	}
}

func NewCachingFetcher(fetcher Fetcher, opts ...CachingFetcherOptionFunc) (*CachingFetcher, error) {
	c := &CachingFetcher{
		fetcher: fetcher,
		ttl:     DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.cache = ttlcache.NewCache()
	// Repeated hits do not extend the lifetime of an entry
	c.cache.SkipTTLExtensionOnHit(true)
	if err := c.cache.SetTTL(c.ttl); err != nil {
		_ = c.cache.Close()
		return nil, err
	}
	return c, nil
}

func (c *CachingFetcher) FetchUTxOs(ctx context.Context, txHash string) ([]common.UTxO, error) {
	return c.fetchUtxos(ctx, cacheKeyPrefixTx+txHash, func() ([]common.UTxO, error) {
		return c.fetcher.FetchUTxOs(ctx, txHash)
	})
}

func (c *CachingFetcher) FetchAddressUTxOs(ctx context.Context, address string) ([]common.UTxO, error) {
	return c.fetchUtxos(ctx, cacheKeyPrefixAddress+address, func() ([]common.UTxO, error) {
		return c.fetcher.FetchAddressUTxOs(ctx, address)
	})
}

func (c *CachingFetcher) FetchProtocolParameters(ctx context.Context) (*common.ProtocolParameters, error) {
	cached, err := c.cache.Get(cacheKeyPParams)
	if err == nil {
		return cached.(*common.ProtocolParameters).Clone(), nil
	}
	if !errors.Is(err, ttlcache.ErrNotFound) {
		return nil, c.cacheError(err)
	}
	pparams, err := c.fetcher.FetchProtocolParameters(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(cacheKeyPParams, pparams.Clone()); err != nil {
		return nil, c.cacheError(err)
	}
	return pparams, nil
}

// Invalidate drops every cached entry
func (c *CachingFetcher) Invalidate() error {
	return c.cache.Purge()
}

func (c *CachingFetcher) Close() error {
	return c.cache.Close()
}

func (c *CachingFetcher) fetchUtxos(
	ctx context.Context,
	key string,
	fetch func() ([]common.UTxO, error),
) ([]common.UTxO, error) {
	cached, err := c.cache.Get(key)
	if err == nil {
		c.logger.Debug(
			"fetcher cache hit",
			"component",
			"provider",
			"key",
			key,
		)
		return copyUtxos(cached.([]common.UTxO))
	}
	if !errors.Is(err, ttlcache.ErrNotFound) {
		return nil, c.cacheError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	utxos, err := fetch()
	if err != nil {
		return nil, err
	}
	tmpUtxos, err := copyUtxos(utxos)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(key, tmpUtxos); err != nil {
		return nil, c.cacheError(err)
	}
	return utxos, nil
}

func (c *CachingFetcher) cacheError(err error) error {
	if errors.Is(err, ttlcache.ErrClosed) {
		return ErrFetcherCacheClosed
	}
	return err
}
