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
)

var (
	ErrInvalidQuantity = errors.New("invalid asset quantity")
	ErrInvalidUnit     = errors.New("invalid asset unit")
	ErrInvalidAddress  = errors.New("invalid address")
)

// InvalidQuantityError indicates an asset quantity that is not a decimal integer
type InvalidQuantityError struct {
	Unit     string
	Quantity string
}

func (e InvalidQuantityError) Error() string {
	return fmt.Sprintf(
		"invalid quantity %q for unit %q",
		e.Quantity,
		e.Unit,
	)
}

func (InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}

// InvalidUnitError indicates a unit that is not lovelace or policy ID + asset name hex
type InvalidUnitError struct {
	Unit string
	Err  error
}

func (e InvalidUnitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid asset unit %q: %v", e.Unit, e.Err)
	}
	return fmt.Sprintf("invalid asset unit %q", e.Unit)
}

func (e InvalidUnitError) Unwrap() error { return e.Err }

func (InvalidUnitError) Is(target error) bool {
	return target == ErrInvalidUnit
}

// InvalidAddressError indicates an address string or byte payload that could not be parsed
type InvalidAddressError struct {
	Address string
	Err     error
}

func (e InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %v", e.Address, e.Err)
}

func (e InvalidAddressError) Unwrap() error { return e.Err }

func (InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}
