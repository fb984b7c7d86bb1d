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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	testDefs := []struct {
		address   string
		addrType  uint8
		networkId uint8
		isScript  bool
		isReward  bool
		isByron   bool
	}{
		{
			address:   "addr1qyln2c2cx5jc4hw768pwz60n5245462dvp4auqcw09rl2xz07huw84puu6cea3qe0ce3apks7hjckqkh5ad4uax0l9ws0q9xty",
			addrType:  AddressTypeKeyKey,
			networkId: AddressNetworkMainnet,
		},
		{
			address:   "addr1z8snz7c4974vzdpxu65ruphl3zjdvtxw8strf2c2tmqnxz2j2c79gy9l76sdg0xwhd7r0c0kna0tycz4y5s6mlenh8pq0xmsha",
			addrType:  AddressTypeScriptKey,
			networkId: AddressNetworkMainnet,
			isScript:  true,
		},
		{
			address:   "addr1wysmmrpwphe0h6fpxlmcmw46frmzxz89yvpsf8cdv29kcnqsw3vw6",
			addrType:  AddressTypeScriptNone,
			networkId: AddressNetworkMainnet,
			isScript:  true,
		},
		{
			address:   "addr1v887yfpftg5z660dmf063hj0zv0zh8xjrfkfyd2e07j076cecha5k",
			addrType:  AddressTypeKeyNone,
			networkId: AddressNetworkMainnet,
		},
		{
			address:   "addr_test1vpmwd5tk8quxnzxq46h8vztf00xtphrd7zd0al5ur5jsylg3r9v4l",
			addrType:  AddressTypeKeyNone,
			networkId: AddressNetworkTestnet,
		},
		{
			address:   "stake1u9usfr6nz6d5qaz63kr5yszdwd0dcgnlngh4und7n6cjx6qh02h9m",
			addrType:  AddressTypeNoneKey,
			networkId: AddressNetworkMainnet,
			isReward:  true,
		},
		{
			address:   "DdzFFzCqrht2ii4Vc7KRchSkVvQtCqdGkQt4nF4Yxg1NpsubFBity2Tpt2eSEGrxBH1eva8qCFKM2Y5QkwM1SFBizRwZgz1N452WYvgG",
			addrType:  AddressTypeByron,
			networkId: AddressNetworkMainnet,
			isByron:   true,
		},
		{
			address:   "Ae2tdPwUPEYwFx4dmJheyNPPYXtvHbJLeCaA96o6Y2iiUL18cAt7AizN2zG",
			addrType:  AddressTypeByron,
			networkId: AddressNetworkMainnet,
			isByron:   true,
		},
	}
	for _, tt := range testDefs {
		t.Run(tt.address[:12], func(t *testing.T) {
			addr, err := NewAddress(tt.address)
			require.NoError(t, err)
			assert.Equal(t, tt.address, addr.String())
			assert.Equal(t, tt.addrType, addr.Type())
			assert.Equal(t, tt.networkId, addr.NetworkId())
			assert.Equal(t, tt.isScript, addr.IsScript())
			assert.Equal(t, tt.isReward, addr.IsReward())
			assert.Equal(t, tt.isByron, addr.IsByron())
			fromBytes, err := NewAddressFromBytes(addr.Bytes())
			require.NoError(t, err)
			assert.Equal(t, addr.String(), fromBytes.String())
		})
	}
}

func TestAddressPaymentKeyHash(t *testing.T) {
	addr, err := NewAddress("addr1v887yfpftg5z660dmf063hj0zv0zh8xjrfkfyd2e07j076cecha5k")
	require.NoError(t, err)
	keyHash, ok := addr.PaymentKeyHash()
	require.True(t, ok)
	// Rebuilding the address from its parts gives the same string
	rebuilt, err := NewAddressFromParts(AddressTypeKeyNone, AddressNetworkMainnet, keyHash.Bytes(), nil)
	require.NoError(t, err)
	assert.Equal(t, addr.String(), rebuilt.String())
	scriptAddr, err := NewAddress("addr1wysmmrpwphe0h6fpxlmcmw46frmzxz89yvpsf8cdv29kcnqsw3vw6")
	require.NoError(t, err)
	_, ok = scriptAddr.PaymentKeyHash()
	assert.False(t, ok)
}

func TestStakeCredentialFromAddress(t *testing.T) {
	fromBase, err := NewStakeCredentialFromAddress(
		"addr1q8fv95d4g2599v3gzq7wnva34ykt4d2zerl0wyke36zml0neqj84x95mgp694rv8gfqy6u67ms38lx30texma843yd5qmvkqcz",
	)
	require.NoError(t, err)
	fromReward, err := NewStakeCredentialFromAddress(
		"stake1u9usfr6nz6d5qaz63kr5yszdwd0dcgnlngh4und7n6cjx6qh02h9m",
	)
	require.NoError(t, err)
	assert.Equal(t, fromBase, fromReward)
	assert.False(t, fromReward.IsScript())
	_, err = NewStakeCredentialFromAddress("addr1v887yfpftg5z660dmf063hj0zv0zh8xjrfkfyd2e07j076cecha5k")
	assert.True(t, errors.Is(err, ErrInvalidAddress))
}

func TestAddressInvalid(t *testing.T) {
	for _, bad := range []string{"", "addr1notanaddress", "0OIl"} {
		_, err := NewAddress(bad)
		assert.True(t, errors.Is(err, ErrInvalidAddress), "address %q", bad)
	}
}
