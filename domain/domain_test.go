// Copyright 2020 ConsenSys Software Inc.
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

package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/zkeyprep/curve"
)

func bn254Desc(t *testing.T) *curve.Descriptor {
	t.Helper()
	q, _ := new(big.Int).SetString("21888242871839275222246405745257275088696311157297823662689037894645226208583", 10)
	d, err := curve.Of(q)
	require.NoError(t, err)
	return d
}

// TestComputeS7 covers scenario S7: pow=3 forces domain size 8 from a
// constraint count of 9 (n-1=8).
func TestComputeS7(t *testing.T) {
	desc := bn254Desc(t)

	setup, err := Compute(desc, 9, 20)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), setup.Power)
	assert.Equal(t, uint64(8), setup.Size)

	omega8 := setup.Omega.Exp(big.NewInt(8))
	assert.True(t, omega8.Equal(desc.ScalarFromUint64(1)))

	omega4 := setup.Omega.Exp(big.NewInt(4))
	assert.False(t, omega4.Equal(desc.ScalarFromUint64(1)))

	assert.NoError(t, setup.Verify())
}

func TestComputeClampsToMinimumPowerThree(t *testing.T) {
	desc := bn254Desc(t)

	setup, err := Compute(desc, 2, 20)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), setup.Power)
	assert.Equal(t, uint64(8), setup.Size)
}

func TestComputeRejectsOversizedCircuit(t *testing.T) {
	desc := bn254Desc(t)

	_, err := Compute(desc, 1<<10+1, 5)
	assert.ErrorIs(t, err, ErrCircuitTooBig)
}

func TestCircuitPowerCeiling(t *testing.T) {
	assert.Equal(t, uint32(3), circuitPower(2))
	assert.Equal(t, uint32(3), circuitPower(5))
	assert.Equal(t, uint32(3), circuitPower(9))
	assert.Equal(t, uint32(4), circuitPower(10))
	assert.Equal(t, uint32(4), circuitPower(17))
	assert.Equal(t, uint32(5), circuitPower(18))
}

func TestVerifyDetectsTamperedK2(t *testing.T) {
	desc := bn254Desc(t)
	setup, err := Compute(desc, 9, 20)
	require.NoError(t, err)

	tampered := *setup
	tampered.K2 = tampered.K1 // force an overlap
	assert.Error(t, tampered.Verify())
}
