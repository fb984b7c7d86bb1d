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
	"log/slog"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/provider"
)

// TxBuilderOptionFunc is a type that represents functions that modify the TxBuilder config
type TxBuilderOptionFunc func(*TxBuilder)

// WithFetcher specifies the source of UTxOs and protocol parameters used by Complete
func WithFetcher(fetcher provider.Fetcher) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.fetcher = fetcher
	}
}

// WithEvaluator specifies the evaluator that computes script budgets in Complete
func WithEvaluator(evaluator provider.Evaluator) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.evaluator = evaluator
	}
}

func WithSubmitter(submitter provider.Submitter) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.submitter = submitter
	}
}

// WithSigner specifies the signer used by CompleteSigning instead of the
// body's signing keys
func WithSigner(signer provider.Signer) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.signer = signer
	}
}

func WithLogger(logger *slog.Logger) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.logger = logger
	}
}

// WithProtocolParameters specifies the protocol parameters. They take
// precedence over parameters from the fetcher
func WithProtocolParameters(pparams *common.ProtocolParameters) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.protocolParams = pparams
	}
}

func WithNetwork(network common.Network) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.network = network
	}
}

// WithMaxFeeIterations bounds the number of fee/change recalculations
func WithMaxFeeIterations(iterations int) TxBuilderOptionFunc {
	return func(b *TxBuilder) {
		b.maxFeeIterations = iterations
	}
}
