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

// Package txbuilder assembles Conway-era transactions.
//
// A TxBuilder collects inputs, outputs, scripts and other body items through
// chained calls. Items that take sub-fields (script inputs, mints,
// withdrawals, votes, certificates, collateral and reference inputs) stay
// pending until the next item of any family starts, at which point they are
// validated and added to the body. The first error is kept and returned by
// the Complete methods.
//
// Complete resolves inputs through a provider.Fetcher, runs coin selection,
// asks a provider.Evaluator for script budgets and iterates fee and change
// calculation until the transaction balances. CompleteSync does the same
// without external calls, and CompleteUnbalanced serializes the body as is.
package txbuilder
