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
	"fmt"
	"strings"

	"github.com/blinklabs-io/txbuilder/cbor"
)

const (
	CertificateTypeStakeRegistration               = 0
	CertificateTypeStakeDeregistration             = 1
	CertificateTypeStakeDelegation                 = 2
	CertificateTypePoolRetirement                  = 4
	CertificateTypeRegistration                    = 7
	CertificateTypeDeregistration                  = 8
	CertificateTypeVoteDelegation                  = 9
	CertificateTypeStakeVoteDelegation             = 10
	CertificateTypeStakeRegistrationDelegation     = 11
	CertificateTypeVoteRegistrationDelegation      = 12
	CertificateTypeStakeVoteRegistrationDelegation = 13
	CertificateTypeAuthCommitteeHot                = 14
	CertificateTypeResignCommitteeCold             = 15
	CertificateTypeRegistrationDrep                = 16
	CertificateTypeDeregistrationDrep              = 17
	CertificateTypeUpdateDrep                      = 18
)

type Certificate interface {
	isCertificate()
	Type() uint
	// RequiredCredential returns the credential that must authorize the certificate, if any
	RequiredCredential() *Credential
	// Deposits returns the deposit paid and the refund released by the certificate
	Deposits(pparams *ProtocolParameters) (uint64, uint64)
}

const (
	DrepTypeAddrKeyHash  = 0
	DrepTypeScriptHash   = 1
	DrepTypeAbstain      = 2
	DrepTypeNoConfidence = 3
)

// CIP-129 header bytes for DRep identifiers
const (
	drepHeaderKeyHash    = 0x22
	drepHeaderScriptHash = 0x23
)

type Drep struct {
	Type       int
	Credential []byte
}

// NewDrepAbstain returns the always-abstain DRep
func NewDrepAbstain() Drep {
	return Drep{Type: DrepTypeAbstain}
}

// NewDrepNoConfidence returns the always-no-confidence DRep
func NewDrepNoConfidence() Drep {
	return Drep{Type: DrepTypeNoConfidence}
}

// ParseDrep accepts a bech32 DRep ID (CIP-105 or CIP-129), or the literals
// "abstain" and "no_confidence"
func ParseDrep(drepId string) (Drep, error) {
	switch strings.ToLower(drepId) {
	case "abstain", "always_abstain", "alwaysabstain":
		return NewDrepAbstain(), nil
	case "no_confidence", "always_no_confidence", "alwaysnoconfidence":
		return NewDrepNoConfidence(), nil
	}
	hrp, decoded, err := decodeBech32(drepId)
	if err != nil {
		return Drep{}, fmt.Errorf("invalid DRep ID %q: %w", drepId, err)
	}
	ret := Drep{Type: DrepTypeAddrKeyHash}
	if hrp == "drep_script" {
		ret.Type = DrepTypeScriptHash
	} else if hrp != "drep" {
		return Drep{}, fmt.Errorf("unexpected DRep ID prefix: %s", hrp)
	}
	switch len(decoded) {
	case Blake2b224Size:
		ret.Credential = decoded
	case Blake2b224Size + 1:
		switch decoded[0] {
		case drepHeaderKeyHash:
			ret.Type = DrepTypeAddrKeyHash
		case drepHeaderScriptHash:
			ret.Type = DrepTypeScriptHash
		default:
			return Drep{}, fmt.Errorf("unknown DRep ID header: %#x", decoded[0])
		}
		ret.Credential = decoded[1:]
	default:
		return Drep{}, fmt.Errorf("invalid DRep ID length: %d", len(decoded))
	}
	return ret, nil
}

func (d *Drep) UnmarshalCBOR(data []byte) error {
	drepType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return err
	}
	switch drepType {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		d.Type = drepType
		tmpData := struct {
			cbor.StructAsArray
			Type       int
			Credential []byte
		}{}
		if _, err := cbor.Decode(data, &tmpData); err != nil {
			return err
		}
		d.Credential = tmpData.Credential[:]
	case DrepTypeAbstain, DrepTypeNoConfidence:
		d.Type = drepType
	default:
		return fmt.Errorf("unknown drep type: %d", drepType)
	}
	return nil
}

func (d Drep) MarshalCBOR() ([]byte, error) {
	switch d.Type {
	case DrepTypeAddrKeyHash, DrepTypeScriptHash:
		return cbor.Encode([]any{d.Type, d.Credential})
	case DrepTypeAbstain, DrepTypeNoConfidence:
		return cbor.Encode([]any{d.Type})
	}
	return nil, fmt.Errorf("unknown drep type: %d", d.Type)
}

// RequiredCredential returns the DRep credential for key and script DReps
func (d Drep) RequiredCredential() *Credential {
	switch d.Type {
	case DrepTypeAddrKeyHash:
		ret := NewKeyHashCredential(NewBlake2b224(d.Credential))
		return &ret
	case DrepTypeScriptHash:
		ret := NewScriptHashCredential(NewBlake2b224(d.Credential))
		return &ret
	}
	return nil
}

type StakeRegistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
}

func (StakeRegistrationCertificate) isCertificate() {}

func (c *StakeRegistrationCertificate) Type() uint { return c.CertType }

// Legacy registration is not witnessed
func (c *StakeRegistrationCertificate) RequiredCredential() *Credential {
	return nil
}

func (c *StakeRegistrationCertificate) Deposits(pparams *ProtocolParameters) (uint64, uint64) {
	return pparams.KeyDeposit, 0
}

type StakeDeregistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
}

func (StakeDeregistrationCertificate) isCertificate() {}

func (c *StakeDeregistrationCertificate) Type() uint { return c.CertType }

func (c *StakeDeregistrationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *StakeDeregistrationCertificate) Deposits(pparams *ProtocolParameters) (uint64, uint64) {
	return 0, pparams.KeyDeposit
}

type StakeDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolId
}

func (StakeDelegationCertificate) isCertificate() {}

func (c *StakeDelegationCertificate) Type() uint { return c.CertType }

func (c *StakeDelegationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *StakeDelegationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}

type PoolRetirementCertificate struct {
	cbor.StructAsArray
	CertType    uint
	PoolKeyHash PoolId
	Epoch       uint64
}

func (PoolRetirementCertificate) isCertificate() {}

func (c *PoolRetirementCertificate) Type() uint { return c.CertType }

func (c *PoolRetirementCertificate) RequiredCredential() *Credential {
	ret := NewKeyHashCredential(Blake2b224(c.PoolKeyHash))
	return &ret
}

// The pool deposit is returned at the epoch boundary, not by this transaction
func (c *PoolRetirementCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}

type RegistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Amount          uint64
}

func (RegistrationCertificate) isCertificate() {}

func (c *RegistrationCertificate) Type() uint { return c.CertType }

func (c *RegistrationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *RegistrationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return c.Amount, 0
}

type DeregistrationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Amount          uint64
}

func (DeregistrationCertificate) isCertificate() {}

func (c *DeregistrationCertificate) Type() uint { return c.CertType }

func (c *DeregistrationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *DeregistrationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, c.Amount
}

type VoteDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Drep            Drep
}

func (VoteDelegationCertificate) isCertificate() {}

func (c *VoteDelegationCertificate) Type() uint { return c.CertType }

func (c *VoteDelegationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *VoteDelegationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}

type StakeVoteDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolId
	Drep            Drep
}

func (StakeVoteDelegationCertificate) isCertificate() {}

func (c *StakeVoteDelegationCertificate) Type() uint { return c.CertType }

func (c *StakeVoteDelegationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *StakeVoteDelegationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}

type StakeRegistrationDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolId
	Amount          uint64
}

func (StakeRegistrationDelegationCertificate) isCertificate() {}

func (c *StakeRegistrationDelegationCertificate) Type() uint { return c.CertType }

func (c *StakeRegistrationDelegationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *StakeRegistrationDelegationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return c.Amount, 0
}

type VoteRegistrationDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	Drep            Drep
	Amount          uint64
}

func (VoteRegistrationDelegationCertificate) isCertificate() {}

func (c *VoteRegistrationDelegationCertificate) Type() uint { return c.CertType }

func (c *VoteRegistrationDelegationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *VoteRegistrationDelegationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return c.Amount, 0
}

type StakeVoteRegistrationDelegationCertificate struct {
	cbor.StructAsArray
	CertType        uint
	StakeCredential Credential
	PoolKeyHash     PoolId
	Drep            Drep
	Amount          uint64
}

func (StakeVoteRegistrationDelegationCertificate) isCertificate() {}

func (c *StakeVoteRegistrationDelegationCertificate) Type() uint { return c.CertType }

func (c *StakeVoteRegistrationDelegationCertificate) RequiredCredential() *Credential {
	return &c.StakeCredential
}

func (c *StakeVoteRegistrationDelegationCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return c.Amount, 0
}

type AuthCommitteeHotCertificate struct {
	cbor.StructAsArray
	CertType       uint
	ColdCredential Credential
	HotCredential  Credential
}

func (AuthCommitteeHotCertificate) isCertificate() {}

func (c *AuthCommitteeHotCertificate) Type() uint { return c.CertType }

func (c *AuthCommitteeHotCertificate) RequiredCredential() *Credential {
	return &c.ColdCredential
}

func (c *AuthCommitteeHotCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}

type ResignCommitteeColdCertificate struct {
	cbor.StructAsArray
	CertType       uint
	ColdCredential Credential
	Anchor         *GovAnchor
}

func (ResignCommitteeColdCertificate) isCertificate() {}

func (c *ResignCommitteeColdCertificate) Type() uint { return c.CertType }

func (c *ResignCommitteeColdCertificate) RequiredCredential() *Credential {
	return &c.ColdCredential
}

func (c *ResignCommitteeColdCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}

type RegistrationDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Amount         uint64
	Anchor         *GovAnchor
}

func (RegistrationDrepCertificate) isCertificate() {}

func (c *RegistrationDrepCertificate) Type() uint { return c.CertType }

func (c *RegistrationDrepCertificate) RequiredCredential() *Credential {
	return &c.DrepCredential
}

func (c *RegistrationDrepCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return c.Amount, 0
}

type DeregistrationDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Amount         uint64
}

func (DeregistrationDrepCertificate) isCertificate() {}

func (c *DeregistrationDrepCertificate) Type() uint { return c.CertType }

func (c *DeregistrationDrepCertificate) RequiredCredential() *Credential {
	return &c.DrepCredential
}

func (c *DeregistrationDrepCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, c.Amount
}

type UpdateDrepCertificate struct {
	cbor.StructAsArray
	CertType       uint
	DrepCredential Credential
	Anchor         *GovAnchor
}

func (UpdateDrepCertificate) isCertificate() {}

func (c *UpdateDrepCertificate) Type() uint { return c.CertType }

func (c *UpdateDrepCertificate) RequiredCredential() *Credential {
	return &c.DrepCredential
}

func (c *UpdateDrepCertificate) Deposits(*ProtocolParameters) (uint64, uint64) {
	return 0, 0
}
