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
	"fmt"
	"math/big"
)

// Scalar is an element of a curve's scalar field, represented internally in
// whatever form the backing gnark-crypto field type prefers (Montgomery),
// but always converted to/from canonical little-endian bytes at the wire
// boundary (Bytes / FromBytes), per spec §3.
type Scalar interface {
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Neg() Scalar
	Inverse() Scalar // zero maps to zero
	Exp(e *big.Int) Scalar
	Equal(Scalar) bool
	IsZero() bool
	Bytes() []byte // little-endian, fixed width n8r
	BigInt() *big.Int
}

// NewScalar returns the additive identity of d's scalar field.
func (d *Descriptor) NewScalar() Scalar {
	switch d.Field {
	case BN254:
		return newBN254Scalar()
	case BLS12381:
		return newBLS12381Scalar()
	default:
		panic("curve: descriptor has no field backing (unreachable for a value returned by Of)")
	}
}

// ScalarFromUint64 builds a scalar from a small non-negative integer.
func (d *Descriptor) ScalarFromUint64(v uint64) Scalar {
	switch d.Field {
	case BN254:
		return bn254ScalarFromUint64(v)
	case BLS12381:
		return bls12381ScalarFromUint64(v)
	default:
		panic("curve: descriptor has no field backing (unreachable for a value returned by Of)")
	}
}

// ScalarFromBytes parses n8r little-endian bytes into a scalar, reducing mod r
// if the value is >= r (spec §9, Open Question 1: implementations MAY reduce).
func (d *Descriptor) ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != d.N8R {
		return nil, fmt.Errorf("curve: expected %d scalar bytes, got %d", d.N8R, len(b))
	}
	be := reverseBytes(b)
	v := new(big.Int).SetBytes(be)
	switch d.Field {
	case BN254:
		return bn254ScalarFromBigInt(v), nil
	case BLS12381:
		return bls12381ScalarFromBigInt(v), nil
	default:
		panic("curve: descriptor has no field backing (unreachable for a value returned by Of)")
	}
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
