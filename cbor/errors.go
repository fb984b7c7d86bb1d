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

package cbor

import (
	"errors"
	"fmt"
)

// ErrEncoding is the sentinel for all EncodingError values so callers can use errors.Is
var ErrEncoding = errors.New("encoding error")

// EncodingError indicates a value that cannot be represented in canonical CBOR,
// or CBOR data that cannot be decoded into the generic value model
type EncodingError struct {
	Reason string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("encoding error: %s: %v", e.Reason, e.Err)
	}
	return "encoding error: " + e.Reason
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (*EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
