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

// Package common provides the ledger types shared by the transaction builder.
//
// # Key Files by Purpose
//
// Values and outputs:
//   - value.go: Asset, unit helpers, the ordered Value accumulator and MultiAsset
//   - utxo.go: TransactionInput, TransactionOutput and UTxO
//   - common.go: Blake2b hash types, ExUnits, asset fingerprints, pool IDs
//
// Addresses and credentials:
//   - address.go: Shelley and Byron address parsing
//   - credentials.go: key hash / script hash credentials
//
// Scripts and metadata:
//   - script.go: Plutus scripts, reference scripts, language versions
//   - native_script.go: native scripts in CBOR and JSON form
//   - metadata.go: transaction metadata built from JSON
//
// Conway features:
//   - certs.go: stake, pool retirement, DRep and committee certificates
//   - gov.go: voters, governance action IDs and voting procedures
//
// Chain configuration:
//   - pparams.go: ProtocolParameters and mainnet defaults
//   - network.go: known networks and slot/time conversion
package common
