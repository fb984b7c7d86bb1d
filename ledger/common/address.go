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
	"fmt"
	"hash/crc32"
	"slices"
	"strings"

	"github.com/blinklabs-io/txbuilder/cbor"
	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	AddressHeaderTypeMask    = 0xF0
	AddressHeaderNetworkMask = 0x0F
	AddressHashSize          = 28

	AddressNetworkTestnet = 0
	AddressNetworkMainnet = 1

	AddressTypeKeyKey        = 0b0000
	AddressTypeScriptKey     = 0b0001
	AddressTypeKeyScript     = 0b0010
	AddressTypeScriptScript  = 0b0011
	AddressTypeKeyPointer    = 0b0100
	AddressTypeScriptPointer = 0b0101
	AddressTypeKeyNone       = 0b0110
	AddressTypeScriptNone    = 0b0111
	AddressTypeByron         = 0b1000
	AddressTypeNoneKey       = 0b1110
	AddressTypeNoneScript    = 0b1111
)

type AddrKeyHash = Blake2b224

// Address is a decoded ledger address. The raw bytes are kept as provided so
// that re-encoding never changes them
type Address struct {
	addressType uint8
	networkId   uint8
	payment     *Credential
	staking     *Credential
	raw         []byte
}

// NewAddress returns an Address based on the provided bech32/base58 address string.
// Mixed case strings are assumed to be base58 encoded (Byron), anything else bech32
func NewAddress(addr string) (Address, error) {
	var decoded []byte
	if strings.ToLower(addr) != addr {
		decoded = base58.Decode(addr)
		if len(decoded) == 0 {
			return Address{}, InvalidAddressError{
				Address: addr,
				Err:     errors.New("invalid base58 encoding"),
			}
		}
	} else {
		_, tmpData, err := decodeBech32(addr)
		if err != nil {
			return Address{}, InvalidAddressError{Address: addr, Err: err}
		}
		decoded = tmpData
	}
	a, err := NewAddressFromBytes(decoded)
	if err != nil {
		return Address{}, InvalidAddressError{Address: addr, Err: err}
	}
	return a, nil
}

// NewAddressFromBytes returns an Address based on the raw bytes provided
func NewAddressFromBytes(addrBytes []byte) (Address, error) {
	var ret Address
	if err := ret.populateFromBytes(addrBytes); err != nil {
		return Address{}, err
	}
	return ret, nil
}

// NewAddressFromParts returns an Address built from a header type, network ID and hash parts
func NewAddressFromParts(
	addrType uint8,
	networkId uint8,
	paymentAddr []byte,
	stakingAddr []byte,
) (Address, error) {
	if networkId != AddressNetworkTestnet &&
		networkId != AddressNetworkMainnet {
		return Address{}, errors.New("invalid network ID")
	}
	header := (addrType << 4) | (networkId & AddressHeaderNetworkMask)
	tmpBytes := make([]byte, 0, 1+len(paymentAddr)+len(stakingAddr))
	tmpBytes = append(tmpBytes, header)
	tmpBytes = append(tmpBytes, paymentAddr...)
	tmpBytes = append(tmpBytes, stakingAddr...)
	return NewAddressFromBytes(tmpBytes)
}

type byronAddress struct {
	cbor.StructAsArray
	Payload  cbor.Tag
	Checksum uint32
}

func (a *Address) populateFromBytes(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty address")
	}
	header := data[0]
	a.addressType = (header & AddressHeaderTypeMask) >> 4
	a.networkId = header & AddressHeaderNetworkMask
	a.raw = slices.Clone(data)
	// Byron addresses are a CBOR array wrapping the payload with a checksum
	if a.addressType == AddressTypeByron {
		var rawAddr byronAddress
		if _, err := cbor.Decode(data, &rawAddr); err != nil {
			return err
		}
		var payloadBytes []byte
		switch content := rawAddr.Payload.Content.(type) {
		case []byte:
			payloadBytes = content
		case cbor.WrappedCbor:
			payloadBytes = content.Bytes()
		}
		if payloadBytes == nil || rawAddr.Payload.Number != cbor.CborTagCbor {
			return errors.New(
				"invalid Byron address data: unexpected payload content",
			)
		}
		if crc32.ChecksumIEEE(payloadBytes) != rawAddr.Checksum {
			return errors.New(
				"invalid Byron address data: checksum does not match",
			)
		}
		a.networkId = AddressNetworkMainnet
		return nil
	}
	payload := data[1:]
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeKeyScript, AddressTypeKeyPointer, AddressTypeKeyNone:
		if len(payload) < AddressHashSize {
			return errors.New("invalid payment payload: key hash too small")
		}
		a.payment = &Credential{
			Type: CredentialTypeKeyHash,
			Hash: NewBlake2b224(payload[:AddressHashSize]),
		}
		payload = payload[AddressHashSize:]
	case AddressTypeScriptKey, AddressTypeScriptScript, AddressTypeScriptPointer, AddressTypeScriptNone:
		if len(payload) < AddressHashSize {
			return errors.New("invalid payment payload: script hash too small")
		}
		a.payment = &Credential{
			Type: CredentialTypeScriptHash,
			Hash: NewBlake2b224(payload[:AddressHashSize]),
		}
		payload = payload[AddressHashSize:]
	case AddressTypeNoneKey, AddressTypeNoneScript:
	default:
		return fmt.Errorf("unknown address type: %d", a.addressType)
	}
	switch a.addressType {
	case AddressTypeKeyKey, AddressTypeScriptKey, AddressTypeNoneKey:
		if len(payload) < AddressHashSize {
			return errors.New("invalid staking payload: key hash too small")
		}
		a.staking = &Credential{
			Type: CredentialTypeKeyHash,
			Hash: NewBlake2b224(payload[:AddressHashSize]),
		}
	case AddressTypeKeyScript, AddressTypeScriptScript, AddressTypeNoneScript:
		if len(payload) < AddressHashSize {
			return errors.New("invalid staking payload: script hash too small")
		}
		a.staking = &Credential{
			Type: CredentialTypeScriptHash,
			Hash: NewBlake2b224(payload[:AddressHashSize]),
		}
	}
	return nil
}

func (a *Address) UnmarshalCBOR(data []byte) error {
	tmpData := []byte{}
	if _, err := cbor.Decode(data, &tmpData); err != nil {
		return err
	}
	return a.populateFromBytes(tmpData)
}

func (a Address) MarshalCBOR() ([]byte, error) {
	return cbor.Encode(a.raw)
}

func (a Address) Type() uint8 {
	return a.addressType
}

func (a Address) NetworkId() uint8 {
	return a.networkId
}

// Bytes returns the raw address bytes
func (a Address) Bytes() []byte {
	return slices.Clone(a.raw)
}

// PaymentCredential returns the payment part of the address, if any
func (a Address) PaymentCredential() *Credential {
	return a.payment
}

// StakingCredential returns the staking part of the address, if any
func (a Address) StakingCredential() *Credential {
	return a.staking
}

// PaymentKeyHash returns the payment key hash for key-locked addresses
func (a Address) PaymentKeyHash() (Blake2b224, bool) {
	if a.payment == nil || a.payment.Type != CredentialTypeKeyHash {
		return Blake2b224{}, false
	}
	return a.payment.Hash, true
}

// IsScript returns true when the payment part of the address is a script hash
func (a Address) IsScript() bool {
	return a.payment != nil && a.payment.Type == CredentialTypeScriptHash
}

// IsReward returns true for stake (reward account) addresses
func (a Address) IsReward() bool {
	return a.addressType == AddressTypeNoneKey ||
		a.addressType == AddressTypeNoneScript
}

// IsByron returns true for legacy base58 addresses
func (a Address) IsByron() bool {
	return a.addressType == AddressTypeByron
}

func (a Address) generateHRP() string {
	ret := "addr"
	if a.IsReward() {
		ret = "stake"
	}
	if a.networkId == AddressNetworkTestnet {
		ret += "_test"
	}
	return ret
}

func (a Address) String() string {
	if a.IsByron() {
		return base58.Encode(a.raw)
	}
	return encodeBech32(a.generateHRP(), a.raw)
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}
