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

// Package curve identifies the curve underlying an artifact from its
// base-field modulus and exposes a capability interface over the
// scalar field, so the rest of the pipeline never branches on curve
// identity past this point.
package curve

import (
	"errors"
	"fmt"
	"math/big"
)

// FieldID tags which gnark-crypto scalar field package backs a Descriptor.
type FieldID uint8

const (
	// UnknownField is the zero value; never returned by Of.
	UnknownField FieldID = iota
	BN254
	BLS12381
)

func (f FieldID) String() string {
	switch f {
	case BN254:
		return "bn254"
	case BLS12381:
		return "bls12-381"
	default:
		return "unknown"
	}
}

// ErrUnsupportedCurve is returned by Of when q does not match a recognized curve.
var ErrUnsupportedCurve = errors.New("curve: unsupported base field modulus")

// Descriptor is an immutable curve identification record, per spec §3.
type Descriptor struct {
	Q, R *big.Int
	N8Q  int
	N8R  int
	N64  int
	Field FieldID
}

var (
	bn254Q, _    = new(big.Int).SetString("21888242871839275222246405745257275088696311157297823662689037894645226208583", 10)
	bn254R, _    = new(big.Int).SetString("21888242871839275222246405745257275088548364400416034343698204186575808495617", 10)
	bls12381Q, _ = new(big.Int).SetString("1a0111ea397fe69a4b1ba7b6434bacd764774b84f38512bf6730d2a0f6b0f6241eabfffeb153ffffb9feffffffffaaab", 16)
	bls12381R, _ = new(big.Int).SetString("73eda753299d7d483339d80809a1d80553bda402fffe5bfeffffffff00000001", 16)
)

var descriptors = []*Descriptor{
	{Q: bn254Q, R: bn254R, N8Q: 32, N8R: 32, N64: 4, Field: BN254},
	{Q: bls12381Q, R: bls12381R, N8Q: 48, N8R: 32, N64: 6, Field: BLS12381},
}

// Of identifies a curve from its base-field modulus q. The set of recognized
// curves is closed: BN254 (aka BN128) and BLS12-381.
func Of(q *big.Int) (*Descriptor, error) {
	for _, d := range descriptors {
		if d.Q.Cmp(q) == 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: q=%s", ErrUnsupportedCurve, q.String())
}
