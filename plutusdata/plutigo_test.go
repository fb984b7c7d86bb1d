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

package plutusdata_test

import (
	"math/big"
	"testing"

	"github.com/blinklabs-io/plutigo/data"
	"github.com/blinklabs-io/txbuilder/plutusdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlutigoRoundTrip(t *testing.T) {
	orig := plutusdata.ConStr1(
		plutusdata.NewIntegerFromInt64(99),
		plutusdata.NewList(plutusdata.NewByteString([]byte{0x01, 0x02})),
		plutusdata.NewMap(
			plutusdata.NewPair(
				plutusdata.NewByteString(nil),
				plutusdata.NewIntegerFromInt64(-1),
			),
		),
	)
	pd, err := plutusdata.ToPlutigo(orig)
	require.NoError(t, err)
	constr, ok := pd.(*data.Constr)
	require.True(t, ok)
	assert.Equal(t, uint(1), constr.Tag)
	back, err := plutusdata.FromPlutigo(pd)
	require.NoError(t, err)
	assertSameData(t, orig, back)
}

func TestFromPlutigo(t *testing.T) {
	pd := data.NewConstr(
		0,
		data.NewInteger(big.NewInt(5)),
		data.NewByteString([]byte{0xca, 0xfe}),
	)
	tmpData, err := plutusdata.FromPlutigo(pd)
	require.NoError(t, err)
	assertSameData(
		t,
		plutusdata.ConStr0(
			plutusdata.NewIntegerFromInt64(5),
			plutusdata.NewByteString([]byte{0xca, 0xfe}),
		),
		tmpData,
	)
}
