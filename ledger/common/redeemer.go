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
)

// RedeemerTag identifies what a redeemer is attached to
type RedeemerTag uint8

const (
	RedeemerTagSpend    RedeemerTag = 0
	RedeemerTagMint     RedeemerTag = 1
	RedeemerTagCert     RedeemerTag = 2
	RedeemerTagReward   RedeemerTag = 3
	RedeemerTagVoting   RedeemerTag = 4
	RedeemerTagProposal RedeemerTag = 5
)

var redeemerTagNames = map[RedeemerTag]string{
	RedeemerTagSpend:    "SPEND",
	RedeemerTagMint:     "MINT",
	RedeemerTagCert:     "CERT",
	RedeemerTagReward:   "REWARD",
	RedeemerTagVoting:   "VOTE",
	RedeemerTagProposal: "PROPOSE",
}

func (t RedeemerTag) String() string {
	if name, ok := redeemerTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("RedeemerTag(%d)", t)
}

// ParseRedeemerTag accepts the upper or lower case tag names
func ParseRedeemerTag(name string) (RedeemerTag, error) {
	for tag, tagName := range redeemerTagNames {
		if strings.EqualFold(tagName, name) {
			return tag, nil
		}
	}
	return 0, fmt.Errorf("unknown redeemer tag: %s", name)
}

// RedeemerKey identifies a redeemer within a transaction
type RedeemerKey struct {
	Tag   RedeemerTag
	Index uint32
}

func (k RedeemerKey) String() string {
	return fmt.Sprintf("%s:%d", k.Tag, k.Index)
}

// DefaultRedeemerBudget is used for redeemers that have not been evaluated
var DefaultRedeemerBudget = ExUnits{
	Memory: 7_000_000,
	Steps:  3_000_000_000,
}
