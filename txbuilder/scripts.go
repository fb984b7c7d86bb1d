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
	"bytes"
	"cmp"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/blinklabs-io/txbuilder/ledger/common"
)

// scriptSources returns pointers to every script source in the body so they
// can be completed in place
func (b *TxBuilderBody) scriptSources() ([]*ScriptSource, []*SimpleScriptSource) {
	var plutus []*ScriptSource
	var native []*SimpleScriptSource
	addSources := func(scriptSource *ScriptSource, simpleScriptSource *SimpleScriptSource) {
		if *scriptSource != nil {
			plutus = append(plutus, scriptSource)
		}
		if *simpleScriptSource != nil {
			native = append(native, simpleScriptSource)
		}
	}
	for _, input := range b.Inputs {
		switch in := input.(type) {
		case *ScriptTxIn:
			if in.ScriptSource != nil {
				plutus = append(plutus, &in.ScriptSource)
			}
		case *SimpleScriptTxIn:
			if in.ScriptSource != nil {
				native = append(native, &in.ScriptSource)
			}
		}
	}
	for i := range b.Mints {
		addSources(&b.Mints[i].ScriptSource, &b.Mints[i].SimpleScriptSource)
	}
	for i := range b.Certificates {
		addSources(&b.Certificates[i].ScriptSource, &b.Certificates[i].SimpleScriptSource)
	}
	for i := range b.Withdrawals {
		addSources(&b.Withdrawals[i].ScriptSource, &b.Withdrawals[i].SimpleScriptSource)
	}
	for i := range b.Votes {
		addSources(&b.Votes[i].ScriptSource, &b.Votes[i].SimpleScriptSource)
	}
	return plutus, native
}

func decodeHex(item string, value string) ([]byte, error) {
	ret, err := hex.DecodeString(value)
	if err != nil {
		return nil, ValidationError{Item: item, Reason: fmt.Sprintf("invalid hex: %s", err)}
	}
	return ret, nil
}

func parsePlutusScript(code string, version common.PlutusLanguage) (common.Script, error) {
	raw, err := decodeHex("Plutus script", code)
	if err != nil {
		return nil, err
	}
	script, err := common.NewPlutusScript(version, raw)
	if err != nil {
		return nil, ValidationError{Item: "Plutus script", Reason: err.Error()}
	}
	return script, nil
}

func parseNativeScript(code string) (common.NativeScript, error) {
	raw, err := decodeHex("native script", code)
	if err != nil {
		return common.NativeScript{}, err
	}
	var ret common.NativeScript
	if err := ret.UnmarshalCBOR(raw); err != nil {
		return common.NativeScript{}, ValidationError{Item: "native script", Reason: err.Error()}
	}
	return ret, nil
}

// nativeScriptKeyHashes returns the key hashes named anywhere in a native script
func nativeScriptKeyHashes(script common.NativeScript) []common.Blake2b224 {
	var ret []common.Blake2b224
	var walk func(common.NativeScript)
	walk = func(s common.NativeScript) {
		switch item := s.Item().(type) {
		case *common.NativeScriptPubkey:
			ret = append(ret, common.NewBlake2b224(item.Hash))
		case *common.NativeScriptAll:
			for _, child := range item.Scripts {
				walk(child)
			}
		case *common.NativeScriptAny:
			for _, child := range item.Scripts {
				walk(child)
			}
		case *common.NativeScriptNofK:
			for _, child := range item.Scripts {
				walk(child)
			}
		}
	}
	walk(script)
	return ret
}

// witnessScripts holds the scripts that go into the witness set and the
// Plutus languages used by the transaction
type witnessScripts struct {
	native    []common.NativeScript
	plutus    map[common.PlutusLanguage][][]byte
	languages map[common.PlutusLanguage]bool
	seen      map[common.ScriptHash]bool
}

func (b *TxBuilderBody) collectScripts() (*witnessScripts, error) {
	ret := &witnessScripts{
		plutus:    make(map[common.PlutusLanguage][][]byte),
		languages: make(map[common.PlutusLanguage]bool),
		seen:      make(map[common.ScriptHash]bool),
	}
	plutusSources, nativeSources := b.scriptSources()
	for _, src := range plutusSources {
		version := (*src).Language()
		if version < common.PlutusLanguageV1 || version > common.PlutusLanguageV3 {
			return nil, ValidationError{
				Item:   "script source",
				Reason: fmt.Sprintf("unknown Plutus version %d", version),
			}
		}
		ret.languages[version] = true
		provided, ok := (*src).(ProvidedScriptSource)
		if !ok {
			continue
		}
		script, err := parsePlutusScript(provided.Code, provided.Version)
		if err != nil {
			return nil, err
		}
		if ret.seen[script.Hash()] {
			continue
		}
		ret.seen[script.Hash()] = true
		ret.plutus[version] = append(ret.plutus[version], script.RawScriptBytes())
	}
	for _, src := range nativeSources {
		provided, ok := (*src).(ProvidedSimpleScriptSource)
		if !ok {
			continue
		}
		script, err := parseNativeScript(provided.Code)
		if err != nil {
			return nil, err
		}
		if ret.seen[script.Hash()] {
			continue
		}
		ret.seen[script.Hash()] = true
		ret.native = append(ret.native, script)
	}
	return ret, nil
}

// mintPolicies groups mints by policy in ledger order. The first item of each
// policy carries its script and redeemer
func (b *TxBuilderBody) mintPolicies() []*MintItem {
	var ret []*MintItem
	for i := range b.Mints {
		if !slices.ContainsFunc(ret, func(m *MintItem) bool {
			return m.PolicyId == b.Mints[i].PolicyId
		}) {
			ret = append(ret, &b.Mints[i])
		}
	}
	slices.SortFunc(ret, func(x, y *MintItem) int {
		return cmp.Compare(x.PolicyId, y.PolicyId)
	})
	return ret
}

// sortedInputs returns the inputs in the order of the ledger's input set
func sortedInputs(inputs []TxIn) []TxIn {
	ret := slices.Clone(inputs)
	slices.SortStableFunc(ret, func(a, b TxIn) int {
		return common.CompareTransactionInputs(a.Parameter().Input(), b.Parameter().Input())
	})
	return ret
}

// credentialRank orders script credentials before key credentials, as the
// ledger does
func credentialRank(cred common.Credential) int {
	if cred.IsScript() {
		return 0
	}
	return 1
}

type rewardAccount struct {
	address    common.Address
	withdrawal *Withdrawal
}

// sortedWithdrawals orders withdrawals by network, then credential
func (b *TxBuilderBody) sortedWithdrawals() ([]rewardAccount, error) {
	ret := make([]rewardAccount, 0, len(b.Withdrawals))
	for i := range b.Withdrawals {
		addr, err := common.NewAddress(b.Withdrawals[i].Address)
		if err != nil {
			return nil, ValidationError{Item: "withdrawal", Field: "address", Reason: err.Error()}
		}
		if addr.StakingCredential() == nil {
			return nil, ValidationError{
				Item:   "withdrawal",
				Field:  "address",
				Reason: "not a reward address: " + b.Withdrawals[i].Address,
			}
		}
		ret = append(ret, rewardAccount{address: addr, withdrawal: &b.Withdrawals[i]})
	}
	slices.SortStableFunc(ret, func(x, y rewardAccount) int {
		if c := cmp.Compare(x.address.NetworkId(), y.address.NetworkId()); c != 0 {
			return c
		}
		xCred, yCred := x.address.StakingCredential(), y.address.StakingCredential()
		if c := cmp.Compare(credentialRank(*xCred), credentialRank(*yCred)); c != 0 {
			return c
		}
		return bytes.Compare(xCred.Hash.Bytes(), yCred.Hash.Bytes())
	})
	return ret, nil
}

// voterRank follows the ledger's voter order: committee, DRep, then pool,
// with script credentials first
func voterRank(voter common.Voter) int {
	switch voter.Type {
	case common.VoterTypeConstitutionalCommitteeHotScriptHash:
		return 0
	case common.VoterTypeConstitutionalCommitteeHotKeyHash:
		return 1
	case common.VoterTypeDRepScriptHash:
		return 2
	case common.VoterTypeDRepKeyHash:
		return 3
	}
	return 4
}

func compareVoters(a, b common.Voter) int {
	if c := cmp.Compare(voterRank(a), voterRank(b)); c != 0 {
		return c
	}
	return bytes.Compare(a.Hash.Bytes(), b.Hash.Bytes())
}

// sortedVoters returns the first vote item of each distinct voter in ledger order
func (b *TxBuilderBody) sortedVoters() []*VoteItem {
	var ret []*VoteItem
	for i := range b.Votes {
		if !slices.ContainsFunc(ret, func(v *VoteItem) bool {
			return v.Voter == b.Votes[i].Voter
		}) {
			ret = append(ret, &b.Votes[i])
		}
	}
	slices.SortStableFunc(ret, func(x, y *VoteItem) int {
		return compareVoters(x.Voter, y.Voter)
	})
	return ret
}

type redeemerEntry struct {
	key      common.RedeemerKey
	redeemer *Redeemer
}

// redeemerEntries pairs every Plutus redeemer with the index of the item it
// validates, sorted by tag and index
func (b *TxBuilderBody) redeemerEntries() ([]redeemerEntry, error) {
	var ret []redeemerEntry
	add := func(tag common.RedeemerTag, idx int, redeemer *Redeemer) {
		ret = append(ret, redeemerEntry{
			key:      common.RedeemerKey{Tag: tag, Index: uint32(idx)}, // #nosec G115
			redeemer: redeemer,
		})
	}
	for i, input := range sortedInputs(b.Inputs) {
		if scriptInput, ok := input.(*ScriptTxIn); ok {
			add(common.RedeemerTagSpend, i, scriptInput.Redeemer)
		}
	}
	for i, mint := range b.mintPolicies() {
		if mint.Type == WitnessPlutus {
			add(common.RedeemerTagMint, i, mint.Redeemer)
		}
	}
	for i := range b.Certificates {
		if b.Certificates[i].Type == WitnessPlutus {
			add(common.RedeemerTagCert, i, b.Certificates[i].Redeemer)
		}
	}
	withdrawals, err := b.sortedWithdrawals()
	if err != nil {
		return nil, err
	}
	for i, account := range withdrawals {
		if account.withdrawal.Type == WitnessPlutus {
			add(common.RedeemerTagReward, i, account.withdrawal.Redeemer)
		}
	}
	for i, vote := range b.sortedVoters() {
		if vote.Type == WitnessPlutus {
			add(common.RedeemerTagVoting, i, vote.Redeemer)
		}
	}
	slices.SortFunc(ret, func(x, y redeemerEntry) int {
		if c := cmp.Compare(x.key.Tag, y.key.Tag); c != 0 {
			return c
		}
		return cmp.Compare(x.key.Index, y.key.Index)
	})
	return ret, nil
}

// referenceInputs merges the explicit reference inputs with the UTxOs holding
// inline scripts, leaving out anything that is also spent
func (b *TxBuilderBody) referenceInputs() []RefTxIn {
	spent := make(map[string]bool, len(b.Inputs))
	for _, input := range b.Inputs {
		spent[input.Parameter().Input().String()] = true
	}
	var ret []RefTxIn
	add := func(ref RefTxIn) {
		key := ref.Input().String()
		if spent[key] {
			return
		}
		for i := range ret {
			if ret[i].Input().String() == key {
				ret[i].ScriptSize = max(ret[i].ScriptSize, ref.ScriptSize)
				return
			}
		}
		ret = append(ret, ref)
	}
	for _, ref := range b.ReferenceInputs {
		add(ref)
	}
	plutusSources, nativeSources := b.scriptSources()
	for _, src := range plutusSources {
		if inline, ok := (*src).(InlineScriptSource); ok {
			add(RefTxIn{TxHash: inline.TxHash, TxIndex: inline.Index, ScriptSize: inline.ScriptSize})
		}
	}
	for _, src := range nativeSources {
		if inline, ok := (*src).(InlineSimpleScriptSource); ok {
			add(RefTxIn{TxHash: inline.TxHash, TxIndex: inline.Index, ScriptSize: inline.ScriptSize})
		}
	}
	slices.SortFunc(ret, func(x, y RefTxIn) int {
		return common.CompareTransactionInputs(x.Input(), y.Input())
	})
	return ret
}

// referenceScriptSize sums the reference scripts of spent and referenced
// outputs, which the ledger charges for by size
func (b *TxBuilderBody) referenceScriptSize() int {
	ret := 0
	for _, input := range b.Inputs {
		ret += input.Parameter().ScriptSize
	}
	for _, ref := range b.referenceInputs() {
		ret += ref.ScriptSize
	}
	return ret
}
