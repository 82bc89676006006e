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

package curve

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func genUint64() gopter.Gen {
	return gen.UInt64()
}

// TestScalarWireRoundTrip exercises spec §3's wire-boundary invariant: a
// scalar serialized with Bytes() and reparsed with ScalarFromBytes() must
// compare equal to the original, for both supported curves.
func TestScalarWireRoundTrip(t *testing.T) {
	for _, d := range descriptors {
		d := d
		parameters := gopter.DefaultTestParameters()
		properties := gopter.NewProperties(parameters)

		properties.Property("scalar -> bytes -> scalar is identity", prop.ForAll(
			func(v uint64) bool {
				s := d.ScalarFromUint64(v)
				b := s.Bytes()
				if len(b) != d.N8R {
					return false
				}
				back, err := d.ScalarFromBytes(b)
				if err != nil {
					return false
				}
				return s.Equal(back)
			},
			genUint64(),
		))

		properties.TestingRun(t)
	}
}

func TestScalarInverseOfZeroIsZero(t *testing.T) {
	for _, d := range descriptors {
		z := d.NewScalar()
		assert.True(t, z.IsZero())
		assert.True(t, z.Inverse().IsZero())
	}
}

func TestScalarInverseRoundTrip(t *testing.T) {
	for _, d := range descriptors {
		s := d.ScalarFromUint64(12345)
		inv := s.Inverse()
		one := s.Mul(inv)
		assert.True(t, one.Equal(d.ScalarFromUint64(1)))
	}
}

func TestScalarReducesOversizedBytes(t *testing.T) {
	// spec §9 Open Question 1: coefficient bytes >= r are reduced, not rejected.
	d, err := Of(bn254Q)
	assert.NoError(t, err)

	over := new(big.Int).Add(d.R, big.NewInt(5))
	be := over.Bytes()
	le := make([]byte, d.N8R)
	// left-pad be to n8r bytes (big-endian) then reverse to little-endian
	padded := make([]byte, d.N8R)
	copy(padded[d.N8R-len(be):], be)
	for i, b := range padded {
		le[d.N8R-1-i] = b
	}

	s, err := d.ScalarFromBytes(le)
	assert.NoError(t, err)
	assert.True(t, s.Equal(d.ScalarFromUint64(5)))
}
