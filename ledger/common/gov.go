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
	"github.com/blinklabs-io/txbuilder/cbor"
)

const (
	VoterTypeConstitutionalCommitteeHotKeyHash    uint8 = 0
	VoterTypeConstitutionalCommitteeHotScriptHash uint8 = 1
	VoterTypeDRepKeyHash                          uint8 = 2
	VoterTypeDRepScriptHash                       uint8 = 3
	VoterTypeStakingPoolKeyHash                   uint8 = 4
)

type Voter struct {
	cbor.StructAsArray
	Type uint8
	Hash Blake2b224
}

// NewCommitteeVoter returns the voter for a committee hot credential
func NewCommitteeVoter(hot Credential) Voter {
	if hot.IsScript() {
		return Voter{Type: VoterTypeConstitutionalCommitteeHotScriptHash, Hash: hot.Hash}
	}
	return Voter{Type: VoterTypeConstitutionalCommitteeHotKeyHash, Hash: hot.Hash}
}

// NewDrepVoter returns the voter for a key or script DRep
func NewDrepVoter(drep Credential) Voter {
	if drep.IsScript() {
		return Voter{Type: VoterTypeDRepScriptHash, Hash: drep.Hash}
	}
	return Voter{Type: VoterTypeDRepKeyHash, Hash: drep.Hash}
}

// NewPoolVoter returns the voter for a stake pool operator
func NewPoolVoter(poolId PoolId) Voter {
	return Voter{Type: VoterTypeStakingPoolKeyHash, Hash: Blake2b224(poolId)}
}

// Credential returns the credential that must witness votes cast by the voter
func (v Voter) Credential() Credential {
	switch v.Type {
	case VoterTypeConstitutionalCommitteeHotScriptHash, VoterTypeDRepScriptHash:
		return NewScriptHashCredential(v.Hash)
	default:
		return NewKeyHashCredential(v.Hash)
	}
}

const (
	GovVoteNo      uint8 = 0
	GovVoteYes     uint8 = 1
	GovVoteAbstain uint8 = 2
)

type VotingProcedure struct {
	cbor.StructAsArray
	Vote   uint8
	Anchor *GovAnchor
}

type GovAnchor struct {
	cbor.StructAsArray
	Url      string
	DataHash Blake2b256
}

type GovActionId struct {
	cbor.StructAsArray
	TransactionId Blake2b256
	GovActionIdx  uint32
}

// VotingProcedures maps each voter to its votes per governance action
type VotingProcedures map[Voter]map[GovActionId]VotingProcedure

// Add records a vote, replacing any earlier vote by the same voter on the same action
func (v VotingProcedures) Add(voter Voter, actionId GovActionId, procedure VotingProcedure) {
	if _, ok := v[voter]; !ok {
		v[voter] = make(map[GovActionId]VotingProcedure)
	}
	v[voter][actionId] = procedure
}
