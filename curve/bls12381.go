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

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

type bls12381Scalar struct {
	v fr.Element
}

func newBLS12381Scalar() Scalar {
	return &bls12381Scalar{}
}

func bls12381ScalarFromUint64(x uint64) Scalar {
	s := &bls12381Scalar{}
	s.v.SetUint64(x)
	return s
}

func bls12381ScalarFromBigInt(x *big.Int) Scalar {
	s := &bls12381Scalar{}
	s.v.SetBigInt(x)
	return s
}

func (s *bls12381Scalar) Add(o Scalar) Scalar {
	r := &bls12381Scalar{}
	r.v.Add(&s.v, &o.(*bls12381Scalar).v)
	return r
}

func (s *bls12381Scalar) Sub(o Scalar) Scalar {
	r := &bls12381Scalar{}
	r.v.Sub(&s.v, &o.(*bls12381Scalar).v)
	return r
}

func (s *bls12381Scalar) Mul(o Scalar) Scalar {
	r := &bls12381Scalar{}
	r.v.Mul(&s.v, &o.(*bls12381Scalar).v)
	return r
}

func (s *bls12381Scalar) Neg() Scalar {
	r := &bls12381Scalar{}
	r.v.Neg(&s.v)
	return r
}

func (s *bls12381Scalar) Inverse() Scalar {
	r := &bls12381Scalar{}
	if s.v.IsZero() {
		return r
	}
	r.v.Inverse(&s.v)
	return r
}

func (s *bls12381Scalar) Exp(e *big.Int) Scalar {
	r := &bls12381Scalar{}
	r.v.Exp(s.v, e)
	return r
}

func (s *bls12381Scalar) Equal(o Scalar) bool {
	return s.v.Equal(&o.(*bls12381Scalar).v)
}

func (s *bls12381Scalar) IsZero() bool {
	return s.v.IsZero()
}

func (s *bls12381Scalar) Bytes() []byte {
	be := s.v.Bytes()
	return reverseBytes(be[:])
}

func (s *bls12381Scalar) BigInt() *big.Int {
	var out big.Int
	s.v.BigInt(&out)
	return &out
}
