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
	"fmt"
	"math/big"
	"strings"

	"github.com/blinklabs-io/txbuilder/ledger/common"
	"github.com/blinklabs-io/txbuilder/plutusdata"
)

// scriptWitness is the part of mints, withdrawals, votes and certificates
// that names their script
type scriptWitness struct {
	witnessType        *WitnessType
	scriptSource       *ScriptSource
	simpleScriptSource *SimpleScriptSource
	redeemer           **Redeemer
}

func (b *TxBuilder) pendingWitness(call string, kind pendingKind) (scriptWitness, bool) {
	if !b.requirePending(call, kind) {
		return scriptWitness{}, false
	}
	switch kind {
	case pendingMint:
		m := b.pending.mint
		return scriptWitness{&m.Type, &m.ScriptSource, &m.SimpleScriptSource, &m.Redeemer}, true
	case pendingWithdrawal:
		w := b.pending.withdrawal
		return scriptWitness{&w.Type, &w.ScriptSource, &w.SimpleScriptSource, &w.Redeemer}, true
	case pendingVote:
		v := b.pending.vote
		return scriptWitness{&v.Type, &v.ScriptSource, &v.SimpleScriptSource, &v.Redeemer}, true
	case pendingCertificate:
		c := b.pending.certificate
		return scriptWitness{&c.Type, &c.ScriptSource, &c.SimpleScriptSource, &c.Redeemer}, true
	}
	return scriptWitness{}, false
}

func (b *TxBuilder) setProvidedScript(call string, kind pendingKind, code string) *TxBuilder {
	witness, ok := b.pendingWitness(call, kind)
	if !ok {
		return b
	}
	if err := validateHex(kind.String()+" script", code); err != nil {
		return b.setErr(err)
	}
	switch *witness.witnessType {
	case WitnessPlutus:
		*witness.scriptSource = ProvidedScriptSource{Code: code, Version: b.pending.version}
	case WitnessNative:
		*witness.simpleScriptSource = ProvidedSimpleScriptSource{Code: code}
	default:
		return b.setErr(ValidationError{
			Item:   call,
			Reason: fmt.Sprintf("pending %s is not authorized by a script", kind),
		})
	}
	return b
}

func (b *TxBuilder) setInlineScript(
	call string,
	kind pendingKind,
	txHash string,
	txIndex uint32,
	scriptHash string,
	scriptSize int,
) *TxBuilder {
	witness, ok := b.pendingWitness(call, kind)
	if !ok {
		return b
	}
	if err := validateHash("script reference", txHash, common.Blake2b256Size); err != nil {
		return b.setErr(err)
	}
	txHash = strings.ToLower(txHash)
	scriptHash = strings.ToLower(scriptHash)
	switch *witness.witnessType {
	case WitnessPlutus:
		*witness.scriptSource = InlineScriptSource{
			TxHash:     txHash,
			Index:      txIndex,
			ScriptHash: scriptHash,
			ScriptSize: scriptSize,
			Version:    b.pending.version,
		}
	case WitnessNative:
		*witness.simpleScriptSource = InlineSimpleScriptSource{
			TxHash:     txHash,
			Index:      txIndex,
			ScriptHash: scriptHash,
			ScriptSize: scriptSize,
		}
	default:
		return b.setErr(ValidationError{
			Item:   call,
			Reason: fmt.Sprintf("pending %s is not authorized by a script", kind),
		})
	}
	return b
}

func (b *TxBuilder) setRedeemer(
	call string,
	kind pendingKind,
	redeemer plutusdata.BuilderData,
	exUnits common.ExUnits,
) *TxBuilder {
	witness, ok := b.pendingWitness(call, kind)
	if !ok {
		return b
	}
	if *witness.witnessType != WitnessPlutus {
		return b.setErr(ValidationError{
			Item:   call,
			Reason: fmt.Sprintf("pending %s is not authorized by a Plutus script", kind),
		})
	}
	*witness.redeemer = &Redeemer{Data: redeemer, ExUnits: budgetOrDefault(exUnits)}
	return b
}

// witnessTypeFor picks the witness type of a new item from the announced
// Plutus version and the credential that authorizes it
func witnessTypeFor(version common.PlutusLanguage, cred *common.Credential) WitnessType {
	if version != 0 {
		return WitnessPlutus
	}
	if cred != nil && cred.IsScript() {
		return WitnessNative
	}
	return WitnessKey
}

// MintPlutusScript marks the next mint as governed by a Plutus minting policy
func (b *TxBuilder) MintPlutusScript(version common.PlutusLanguage) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.next.mint = version
	return b
}

// Mint starts minting quantity of the asset. A negative quantity burns.
// Mints not marked with MintPlutusScript use a native script policy
func (b *TxBuilder) Mint(quantity string, policyId string, assetName string) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	amount, ok := new(big.Int).SetString(quantity, 10)
	if !ok || amount.Sign() == 0 {
		return b.setErr(ValidationError{
			Item:   "mint",
			Field:  "quantity",
			Reason: fmt.Sprintf("invalid quantity %q", quantity),
		})
	}
	if err := validateHash("mint policy", policyId, common.Blake2b224Size); err != nil {
		return b.setErr(err)
	}
	if err := validateHex("mint asset name", assetName); err != nil {
		return b.setErr(err)
	}
	if len(assetName) > 64 {
		return b.setErr(ValidationError{
			Item:   "mint",
			Field:  "asset name",
			Reason: "longer than 32 bytes",
		})
	}
	item := &MintItem{
		Type:      WitnessNative,
		PolicyId:  strings.ToLower(policyId),
		AssetName: strings.ToLower(assetName),
		Amount:    amount,
	}
	if b.next.mint != 0 {
		item.Type = WitnessPlutus
	}
	b.pending = pendingItem{kind: pendingMint, version: b.next.mint, mint: item}
	b.next.mint = 0
	return b
}

func (b *TxBuilder) MintingScript(code string) *TxBuilder {
	return b.setProvidedScript("MintingScript", pendingMint, code)
}

func (b *TxBuilder) MintTxInReference(txHash string, txIndex uint32, scriptHash string, scriptSize int) *TxBuilder {
	return b.setInlineScript("MintTxInReference", pendingMint, txHash, txIndex, scriptHash, scriptSize)
}

func (b *TxBuilder) MintRedeemerValue(redeemer plutusdata.BuilderData, exUnits common.ExUnits) *TxBuilder {
	return b.setRedeemer("MintRedeemerValue", pendingMint, redeemer, exUnits)
}

// WithdrawalPlutusScript marks the next withdrawal as authorized by a Plutus script
func (b *TxBuilder) WithdrawalPlutusScript(version common.PlutusLanguage) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.next.withdrawal = version
	return b
}

// Withdrawal starts withdrawing coin lovelace from a reward address
func (b *TxBuilder) Withdrawal(rewardAddress string, coin uint64) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	addr, err := common.NewAddress(rewardAddress)
	if err != nil {
		return b.setErr(ValidationError{Item: "withdrawal", Field: "address", Reason: err.Error()})
	}
	if !addr.IsReward() {
		return b.setErr(ValidationError{
			Item:   "withdrawal",
			Field:  "address",
			Reason: "not a reward address: " + rewardAddress,
		})
	}
	b.pending = pendingItem{
		kind:    pendingWithdrawal,
		version: b.next.withdrawal,
		withdrawal: &Withdrawal{
			Type:    witnessTypeFor(b.next.withdrawal, addr.StakingCredential()),
			Address: rewardAddress,
			Amount:  coin,
		},
	}
	b.next.withdrawal = 0
	return b
}

func (b *TxBuilder) WithdrawalScript(code string) *TxBuilder {
	return b.setProvidedScript("WithdrawalScript", pendingWithdrawal, code)
}

func (b *TxBuilder) WithdrawalTxInReference(txHash string, txIndex uint32, scriptHash string, scriptSize int) *TxBuilder {
	return b.setInlineScript("WithdrawalTxInReference", pendingWithdrawal, txHash, txIndex, scriptHash, scriptSize)
}

func (b *TxBuilder) WithdrawalRedeemerValue(redeemer plutusdata.BuilderData, exUnits common.ExUnits) *TxBuilder {
	return b.setRedeemer("WithdrawalRedeemerValue", pendingWithdrawal, redeemer, exUnits)
}

// VotePlutusScript marks the next vote as cast by a Plutus script voter
func (b *TxBuilder) VotePlutusScript(version common.PlutusLanguage) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.next.vote = version
	return b
}

// Vote starts a vote by voter on a governance action
func (b *TxBuilder) Vote(
	voter common.Voter,
	govActionId common.GovActionId,
	procedure common.VotingProcedure,
) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	cred := voter.Credential()
	b.pending = pendingItem{
		kind:    pendingVote,
		version: b.next.vote,
		vote: &VoteItem{
			Type:        witnessTypeFor(b.next.vote, &cred),
			Voter:       voter,
			GovActionId: govActionId,
			Procedure:   procedure,
		},
	}
	b.next.vote = 0
	return b
}

func (b *TxBuilder) VoteScript(code string) *TxBuilder {
	return b.setProvidedScript("VoteScript", pendingVote, code)
}

func (b *TxBuilder) VoteTxInReference(txHash string, txIndex uint32, scriptHash string, scriptSize int) *TxBuilder {
	return b.setInlineScript("VoteTxInReference", pendingVote, txHash, txIndex, scriptHash, scriptSize)
}

func (b *TxBuilder) VoteRedeemerValue(redeemer plutusdata.BuilderData, exUnits common.ExUnits) *TxBuilder {
	return b.setRedeemer("VoteRedeemerValue", pendingVote, redeemer, exUnits)
}

// CertificatePlutusScript marks the next certificate as authorized by a Plutus script
func (b *TxBuilder) CertificatePlutusScript(version common.PlutusLanguage) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.next.certificate = version
	return b
}

// Certificate starts an arbitrary certificate
func (b *TxBuilder) Certificate(cert common.Certificate) *TxBuilder {
	if b.err != nil {
		return b
	}
	b.flush()
	cred := cert.RequiredCredential()
	if cred == nil && b.next.certificate != 0 {
		b.next.certificate = 0
		return b.setErr(ValidationError{
			Item:   fmt.Sprintf("certificate %d", cert.Type()),
			Reason: "certificate does not take a script witness",
		})
	}
	b.pending = pendingItem{
		kind:    pendingCertificate,
		version: b.next.certificate,
		certificate: &CertificateItem{
			Type:        witnessTypeFor(b.next.certificate, cred),
			Certificate: cert,
		},
	}
	b.next.certificate = 0
	return b
}

func (b *TxBuilder) CertificateScript(code string) *TxBuilder {
	return b.setProvidedScript("CertificateScript", pendingCertificate, code)
}

func (b *TxBuilder) CertificateTxInReference(txHash string, txIndex uint32, scriptHash string, scriptSize int) *TxBuilder {
	return b.setInlineScript("CertificateTxInReference", pendingCertificate, txHash, txIndex, scriptHash, scriptSize)
}

func (b *TxBuilder) CertificateRedeemerValue(redeemer plutusdata.BuilderData, exUnits common.ExUnits) *TxBuilder {
	return b.setRedeemer("CertificateRedeemerValue", pendingCertificate, redeemer, exUnits)
}

func (b *TxBuilder) stakeCredential(call string, rewardAddress string) (common.Credential, bool) {
	if b.err != nil {
		return common.Credential{}, false
	}
	cred, err := common.NewStakeCredentialFromAddress(rewardAddress)
	if err != nil {
		b.setErr(ValidationError{Item: call, Field: "address", Reason: err.Error()})
		return common.Credential{}, false
	}
	return cred, true
}

func (b *TxBuilder) drepCredential(call string, drepId string) (common.Credential, bool) {
	if b.err != nil {
		return common.Credential{}, false
	}
	drep, err := common.ParseDrep(drepId)
	if err != nil {
		b.setErr(ValidationError{Item: call, Field: "DRep", Reason: err.Error()})
		return common.Credential{}, false
	}
	cred := drep.RequiredCredential()
	if cred == nil {
		b.setErr(ValidationError{Item: call, Field: "DRep", Reason: "not a registrable DRep: " + drepId})
		return common.Credential{}, false
	}
	return *cred, true
}

func (b *TxBuilder) poolId(call string, poolId string) (common.PoolId, bool) {
	if b.err != nil {
		return common.PoolId{}, false
	}
	ret, err := common.NewPoolId(poolId)
	if err != nil {
		b.setErr(ValidationError{Item: call, Field: "pool", Reason: err.Error()})
		return common.PoolId{}, false
	}
	return ret, true
}

// RegisterStakeCertificate registers the stake credential of a reward address
// paying the key deposit
func (b *TxBuilder) RegisterStakeCertificate(rewardAddress string) *TxBuilder {
	cred, ok := b.stakeCredential("RegisterStakeCertificate", rewardAddress)
	if !ok {
		return b
	}
	return b.Certificate(&common.StakeRegistrationCertificate{
		CertType:        common.CertificateTypeStakeRegistration,
		StakeCredential: cred,
	})
}

// DeregisterStakeCertificate deregisters a stake credential, releasing the key deposit
func (b *TxBuilder) DeregisterStakeCertificate(rewardAddress string) *TxBuilder {
	cred, ok := b.stakeCredential("DeregisterStakeCertificate", rewardAddress)
	if !ok {
		return b
	}
	return b.Certificate(&common.StakeDeregistrationCertificate{
		CertType:        common.CertificateTypeStakeDeregistration,
		StakeCredential: cred,
	})
}

func (b *TxBuilder) DelegateStakeCertificate(rewardAddress string, poolId string) *TxBuilder {
	cred, ok := b.stakeCredential("DelegateStakeCertificate", rewardAddress)
	if !ok {
		return b
	}
	pool, ok := b.poolId("DelegateStakeCertificate", poolId)
	if !ok {
		return b
	}
	return b.Certificate(&common.StakeDelegationCertificate{
		CertType:        common.CertificateTypeStakeDelegation,
		StakeCredential: cred,
		PoolKeyHash:     pool,
	})
}

// VoteDelegationCertificate delegates the voting power of a stake credential
// to a DRep, or to "abstain" / "no_confidence"
func (b *TxBuilder) VoteDelegationCertificate(rewardAddress string, drepId string) *TxBuilder {
	cred, ok := b.stakeCredential("VoteDelegationCertificate", rewardAddress)
	if !ok {
		return b
	}
	drep, err := common.ParseDrep(drepId)
	if err != nil {
		return b.setErr(ValidationError{Item: "VoteDelegationCertificate", Field: "DRep", Reason: err.Error()})
	}
	return b.Certificate(&common.VoteDelegationCertificate{
		CertType:        common.CertificateTypeVoteDelegation,
		StakeCredential: cred,
		Drep:            drep,
	})
}

func (b *TxBuilder) RetirePoolCertificate(poolId string, epoch uint64) *TxBuilder {
	pool, ok := b.poolId("RetirePoolCertificate", poolId)
	if !ok {
		return b
	}
	return b.Certificate(&common.PoolRetirementCertificate{
		CertType:    common.CertificateTypePoolRetirement,
		PoolKeyHash: pool,
		Epoch:       epoch,
	})
}

func (b *TxBuilder) DrepRegistrationCertificate(drepId string, deposit uint64, anchor *common.GovAnchor) *TxBuilder {
	cred, ok := b.drepCredential("DrepRegistrationCertificate", drepId)
	if !ok {
		return b
	}
	return b.Certificate(&common.RegistrationDrepCertificate{
		CertType:       common.CertificateTypeRegistrationDrep,
		DrepCredential: cred,
		Amount:         deposit,
		Anchor:         anchor,
	})
}

func (b *TxBuilder) DrepDeregistrationCertificate(drepId string, deposit uint64) *TxBuilder {
	cred, ok := b.drepCredential("DrepDeregistrationCertificate", drepId)
	if !ok {
		return b
	}
	return b.Certificate(&common.DeregistrationDrepCertificate{
		CertType:       common.CertificateTypeDeregistrationDrep,
		DrepCredential: cred,
		Amount:         deposit,
	})
}

func (b *TxBuilder) DrepUpdateCertificate(drepId string, anchor *common.GovAnchor) *TxBuilder {
	cred, ok := b.drepCredential("DrepUpdateCertificate", drepId)
	if !ok {
		return b
	}
	return b.Certificate(&common.UpdateDrepCertificate{
		CertType:       common.CertificateTypeUpdateDrep,
		DrepCredential: cred,
		Anchor:         anchor,
	})
}
