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

// Package plutusdata implements the Plutus Data value algebra used for
// datums and redeemers, with its canonical CBOR form and the detailed JSON
// schema.
//
// Callers usually supply data as BuilderData, in native Go syntax
// (MeshData), as JSON (JSONData) or as hex CBOR (CBORData).
package plutusdata
