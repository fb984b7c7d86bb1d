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

// Package provider defines how transaction building talks to the outside
// world: chain queries, script evaluation, submission and signing.
//
// OfflineFetcher and OfflineEvaluator work entirely from memory.
// CachingFetcher puts a TTL cache in front of any Fetcher and KeySigner
// signs with ed25519 or BIP32-Ed25519 extended keys.
package provider
