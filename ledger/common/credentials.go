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

package common

import (
	"errors"

	"github.com/blinklabs-io/txbuilder/cbor"
)

const (
	CredentialTypeKeyHash    = 0
	CredentialTypeScriptHash = 1
)

// Credential is a key hash or script hash, as used by addresses, certificates
// and withdrawals
type Credential struct {
	cbor.StructAsArray
	Type uint
	Hash Blake2b224
}

func NewKeyHashCredential(hash Blake2b224) Credential {
	return Credential{Type: CredentialTypeKeyHash, Hash: hash}
}

func NewScriptHashCredential(hash Blake2b224) Credential {
	return Credential{Type: CredentialTypeScriptHash, Hash: hash}
}

// IsScript returns true for script hash credentials
func (c Credential) IsScript() bool {
	return c.Type == CredentialTypeScriptHash
}

func (c Credential) String() string {
	switch c.Type {
	case CredentialTypeKeyHash:
		return "key:" + c.Hash.String()
	case CredentialTypeScriptHash:
		return "script:" + c.Hash.String()
	default:
		return "unknown:" + c.Hash.String()
	}
}

// NewStakeCredentialFromAddress returns the credential of a reward address
// string, or the staking part of a base address
func NewStakeCredentialFromAddress(addr string) (Credential, error) {
	tmpAddr, err := NewAddress(addr)
	if err != nil {
		return Credential{}, err
	}
	stake := tmpAddr.StakingCredential()
	if stake == nil {
		return Credential{}, InvalidAddressError{
			Address: addr,
			Err:     errors.New("address has no staking credential"),
		}
	}
	return *stake, nil
}
