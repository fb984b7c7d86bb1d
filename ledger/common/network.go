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
	"time"
)

// SlotConfig describes how slots map to wall-clock time on a network, from
// the start of the Shelley era onward
type SlotConfig struct {
	ZeroTime    int64 // unix milliseconds of ZeroSlot
	ZeroSlot    uint64
	SlotLength  uint64 // milliseconds
	StartEpoch  uint64
	EpochLength uint64 // slots
}

// Network definitions
var (
	NetworkMainnet = Network{
		Id:           AddressNetworkMainnet,
		Name:         "mainnet",
		NetworkMagic: 764824073,
		SlotConfig: SlotConfig{
			ZeroTime:    1596059091000,
			ZeroSlot:    4492800,
			SlotLength:  1000,
			StartEpoch:  208,
			EpochLength: 432000,
		},
	}
	NetworkPreprod = Network{
		Id:           AddressNetworkTestnet,
		Name:         "preprod",
		NetworkMagic: 1,
		SlotConfig: SlotConfig{
			ZeroTime:    1655769600000,
			ZeroSlot:    86400,
			SlotLength:  1000,
			StartEpoch:  4,
			EpochLength: 432000,
		},
	}
	NetworkPreview = Network{
		Id:           AddressNetworkTestnet,
		Name:         "preview",
		NetworkMagic: 2,
		SlotConfig: SlotConfig{
			ZeroTime:    1666656000000,
			ZeroSlot:    0,
			SlotLength:  1000,
			StartEpoch:  0,
			EpochLength: 86400,
		},
	}
	NetworkSancho = Network{
		Id:           AddressNetworkTestnet,
		Name:         "sanchonet",
		NetworkMagic: 4,
		SlotConfig: SlotConfig{
			ZeroTime:    1686789000000,
			ZeroSlot:    0,
			SlotLength:  1000,
			StartEpoch:  0,
			EpochLength: 86400,
		},
	}

	NetworkInvalid = Network{
		Id:           0,
		Name:         "invalid",
		NetworkMagic: 0,
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkPreprod,
	NetworkPreview,
	NetworkSancho,
}

var ErrSlotBeforeZero = errors.New("time is before the network's first Shelley slot")

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// NetworkByNetworkMagic returns a predefined network by network magic
func NetworkByNetworkMagic(networkMagic uint32) Network {
	for _, network := range networks {
		if network.NetworkMagic == networkMagic {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a Cardano network
type Network struct {
	Id           uint8 // network ID used for addresses
	Name         string
	NetworkMagic uint32
	SlotConfig   SlotConfig
}

func (n Network) String() string {
	return n.Name
}

// UnixTimeToSlot returns the slot enclosing the given time
func (n Network) UnixTimeToSlot(t time.Time) (uint64, error) {
	ms := t.UnixMilli()
	if ms < n.SlotConfig.ZeroTime || n.SlotConfig.SlotLength == 0 {
		return 0, ErrSlotBeforeZero
	}
	elapsed := uint64(ms - n.SlotConfig.ZeroTime) // #nosec G115
	return n.SlotConfig.ZeroSlot + elapsed/n.SlotConfig.SlotLength, nil
}

// SlotToUnixTime returns the start time of a slot
func (n Network) SlotToUnixTime(slot uint64) (time.Time, error) {
	if slot < n.SlotConfig.ZeroSlot {
		return time.Time{}, ErrSlotBeforeZero
	}
	elapsed := (slot - n.SlotConfig.ZeroSlot) * n.SlotConfig.SlotLength
	return time.UnixMilli(n.SlotConfig.ZeroTime + int64(elapsed)), nil // #nosec G115
}

// SlotToEpoch returns the epoch containing a post-Shelley slot
func (n Network) SlotToEpoch(slot uint64) (uint64, error) {
	if slot < n.SlotConfig.ZeroSlot || n.SlotConfig.EpochLength == 0 {
		return 0, ErrSlotBeforeZero
	}
	return n.SlotConfig.StartEpoch +
		(slot-n.SlotConfig.ZeroSlot)/n.SlotConfig.EpochLength, nil
}
