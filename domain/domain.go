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

// Package domain computes the PLONK evaluation domain size and the two
// coset generators k1, k2 used for the wire-column permutation argument
// (spec §4.F).
package domain

import (
	"errors"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/consensys/zkeyprep/curve"
)

var (
	// ErrCircuitTooBig is returned when the circuit's required domain power
	// exceeds what the PTau ceremony was prepared for.
	ErrCircuitTooBig = errors.New("domain: circuit requires a larger domain than the ptau ceremony supports")
	// ErrDomainNotAPowerOfTwo is returned by Verify if Size is inconsistent
	// with Power; it should be unreachable for a Setup built by Compute.
	ErrDomainNotAPowerOfTwo = errors.New("domain: size is not 2^power")
)

// Setup is the evaluation domain and coset structure a zkey preamble
// records for PLONK's permutation argument.
type Setup struct {
	Power uint32
	Size  uint64
	Omega curve.Scalar
	K1    curve.Scalar
	K2    curve.Scalar
}

// Compute derives the domain power from the number of PLONK constraints
// (minimum 3, matching the source's "t polynomial requires at least power
// 3"), fails if that exceeds the PTau ceremony's prepared power, then
// derives omega and the two coset generators.
func Compute(desc *curve.Descriptor, nPlonkConstraints int, ptauPower uint32) (*Setup, error) {
	power := circuitPower(nPlonkConstraints)
	if power > ptauPower {
		return nil, fmt.Errorf("%w: need 2^%d, ptau provides 2^%d", ErrCircuitTooBig, power, ptauPower)
	}

	size := uint64(1) << power
	omega := primitiveRoot(desc, power)
	k1, k2 := cosetGenerators(desc, omega, size)

	return &Setup{Power: power, Size: size, Omega: omega, K1: k1, K2: k2}, nil
}

// circuitPower mirrors ceil(log2(n-1)) clamped to a minimum of 3, computed
// with integer bit-length arithmetic instead of floating point.
func circuitPower(n int) uint32 {
	v := n - 1
	if v < 1 {
		v = 1
	}
	// bits.Len(v-1) gives floor(log2(v-1))+1 for v a power of two boundary;
	// ceil(log2(v)) is bits.Len(v-1) for v > 1, and 0 for v == 1.
	power := uint32(bits.Len(uint(v - 1)))
	if power < 3 {
		power = 3
	}
	return power
}

// primitiveRoot computes ω = g^((r-1)>>pow) mod r, a primitive 2^pow-th
// root of unity, where g is the smallest quadratic non-residue >= 2
// (Euler's criterion: g^((r-1)/2) != 1). The search starts at 2; for both
// supported scalar fields 2 is a residue, and it settles on g = 5.
func primitiveRoot(desc *curve.Descriptor, pow uint32) curve.Scalar {
	rMinus1 := new(big.Int).Sub(desc.R, big.NewInt(1))
	half := new(big.Int).Rsh(rMinus1, 1)
	one := desc.ScalarFromUint64(1)
	g := uint64(2)
	for desc.ScalarFromUint64(g).Exp(half).Equal(one) {
		g++
	}
	exp := new(big.Int).Rsh(rMinus1, uint(pow))
	return desc.ScalarFromUint64(g).Exp(exp)
}

// cosetGenerators finds the smallest k1 >= 2 outside <omega>, then the
// smallest k2 > k1 outside <omega> union k1*<omega>, per spec §4.F.
func cosetGenerators(desc *curve.Descriptor, omega curve.Scalar, size uint64) (k1, k2 curve.Scalar) {
	subgroup := make([]curve.Scalar, size)
	cur := desc.ScalarFromUint64(1)
	for i := uint64(0); i < size; i++ {
		subgroup[i] = cur
		cur = cur.Mul(omega)
	}

	inSubgroup := func(v curve.Scalar) bool {
		for _, s := range subgroup {
			if v.Equal(s) {
				return true
			}
		}
		return false
	}

	candidate := uint64(2)
	for {
		v := desc.ScalarFromUint64(candidate)
		if !inSubgroup(v) {
			k1 = v
			break
		}
		candidate++
	}

	candidate++
	for {
		v := desc.ScalarFromUint64(candidate)
		if !inSubgroup(v) && !inCoset(v, k1, subgroup) {
			k2 = v
			break
		}
		candidate++
	}

	return k1, k2
}

func inCoset(v, k curve.Scalar, subgroup []curve.Scalar) bool {
	for _, s := range subgroup {
		if v.Equal(k.Mul(s)) {
			return true
		}
	}
	return false
}

// Verify checks that Omega is a primitive Size-th root of unity
// (Omega^Size == 1 and Omega^(Size/2) != 1) and property 8: the subgroup
// generated by Omega and its two cosets are pairwise disjoint. It re-derives
// the subgroup from scratch, so it is O(Size) and intended for tests and
// defensive checks, not the hot path.
func (s *Setup) Verify() error {
	if s.Size != uint64(1)<<s.Power {
		return ErrDomainNotAPowerOfTwo
	}

	one := s.Omega.Exp(big.NewInt(0))
	if !s.Omega.Exp(new(big.Int).SetUint64(s.Size)).Equal(one) ||
		s.Omega.Exp(new(big.Int).SetUint64(s.Size/2)).Equal(one) {
		return fmt.Errorf("domain: omega is not a primitive 2^%d-th root of unity", s.Power)
	}

	subgroup := make([]curve.Scalar, s.Size)
	cur := s.Omega.Exp(big.NewInt(0)) // identity, as a Scalar of the same concrete type
	seen := make(map[string]int, s.Size*3)
	for i := uint64(0); i < s.Size; i++ {
		subgroup[i] = cur
		seen[string(cur.Bytes())]++
		cur = cur.Mul(s.Omega)
	}

	addCoset := func(k curve.Scalar) {
		for _, s := range subgroup {
			seen[string(k.Mul(s).Bytes())]++
		}
	}
	addCoset(s.K1)
	addCoset(s.K2)

	for _, count := range seen {
		if count > 1 {
			return fmt.Errorf("domain: cosets overlap (a value appears %d times)", count)
		}
	}
	return nil
}
