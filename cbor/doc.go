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

// Package cbor provides CBOR encoding/decoding utilities for Cardano data structures.
//
// This package wraps github.com/fxamacker/cbor/v2 with Cardano-specific patterns.
//
// # Key Types
//
// Embeddable types for struct encoding:
//   - StructAsArray: Embed to encode struct fields as CBOR array instead of map
//   - DecodeStoreCbor: Embed to preserve original CBOR bytes for hashing
//
// Generic value model (EncodeCanonical / DecodeCanonical):
//   - []any, OrderedMap: definite-length arrays and maps, encoded in order
//   - IndefLengthList, IndefLengthMap, IndefLengthByteString: indefinite-length forms
//   - Tag, RawTag: CBOR semantic tags
//   - RawMessage: pre-encoded CBOR, copied verbatim
//
// # Integers
//
// EncodeCanonical writes integers inside the 53-bit safe range with the
// shortest header. Larger magnitudes become bignums (tags 2 and 3) unless
// CanonicalOptions.CollapseBigNumber is set and the value fits in 64 bits.
// Plutus data always uses the collapsed form.
//
// # Encoding Gotchas
//
//  1. Hash computation: Always hash the original bytes (DecodeStoreCbor), not re-encoded data
//  2. Map key ordering: Encode sorts map keys; OrderedMap keeps caller order
//  3. Indefinite vs definite length: Plutus lists use the indefinite form, which changes hashes
package cbor
