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

package plutusdata

import (
	"fmt"

	"github.com/blinklabs-io/plutigo/data"
)

// ToPlutigo converts a value for use with the plutigo evaluator packages
func ToPlutigo(d Data) (data.PlutusData, error) {
	tmpCbor, err := Encode(d)
	if err != nil {
		return nil, err
	}
	ret, err := data.Decode(tmpCbor)
	if err != nil {
		return nil, fmt.Errorf("convert to plutigo: %w", err)
	}
	return ret, nil
}

// FromPlutigo converts a plutigo value
func FromPlutigo(pd data.PlutusData) (Data, error) {
	tmpCbor, err := data.Encode(pd)
	if err != nil {
		return nil, fmt.Errorf("convert from plutigo: %w", err)
	}
	return Decode(tmpCbor)
}
