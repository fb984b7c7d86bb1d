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
	"errors"
	"fmt"

	"github.com/blinklabs-io/txbuilder/ledger/common"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrResolution        = errors.New("resolution error")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrEvaluation        = errors.New("evaluation error")
	ErrConvergence       = errors.New("fee calculation did not converge")
	ErrNoSubmitter       = errors.New("no submitter configured")
)

// ValidationError reports a body item that is missing a required sub-field
// or carries an invalid value
type ValidationError struct {
	Item   string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Item, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Item, e.Field, e.Reason)
}

func (ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ResolutionError reports an input or script reference that could not be
// found in any known UTxO
type ResolutionError struct {
	Input string
	Err   error
}

func (e ResolutionError) Error() string {
	if e.Err == nil {
		return "could not resolve UTxO " + e.Input
	}
	return fmt.Sprintf("could not resolve UTxO %s: %s", e.Input, e.Err)
}

func (e ResolutionError) Unwrap() error { return e.Err }

func (ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// InsufficientFundsError reports the value that the transaction could not cover
type InsufficientFundsError struct {
	Missing *common.Value
	Reason  string
}

func (e InsufficientFundsError) Error() string {
	ret := "insufficient funds"
	if e.Reason != "" {
		ret += ": " + e.Reason
	}
	if e.Missing != nil && !e.Missing.IsZero() {
		ret += fmt.Sprintf(" (missing %s)", e.Missing.String())
	}
	return ret
}

func (InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// EvaluationError wraps a failure returned by the script evaluator
type EvaluationError struct {
	Err error
}

func (e EvaluationError) Error() string {
	return fmt.Sprintf("script evaluation failed: %s", e.Err)
}

func (e EvaluationError) Unwrap() error { return e.Err }

func (EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

// ConvergenceError is returned when the fee does not settle within the
// configured number of iterations
type ConvergenceError struct {
	Iterations int
	LastFee    uint64
}

func (e ConvergenceError) Error() string {
	return fmt.Sprintf(
		"fee calculation did not converge after %d iterations (last fee %d)",
		e.Iterations,
		e.LastFee,
	)
}

func (ConvergenceError) Is(target error) bool {
	return target == ErrConvergence
}
