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

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

type bn254Scalar struct {
	v fr.Element
}

func newBN254Scalar() Scalar {
	return &bn254Scalar{}
}

func bn254ScalarFromUint64(x uint64) Scalar {
	s := &bn254Scalar{}
	s.v.SetUint64(x)
	return s
}

func bn254ScalarFromBigInt(x *big.Int) Scalar {
	s := &bn254Scalar{}
	s.v.SetBigInt(x)
	return s
}

func (s *bn254Scalar) Add(o Scalar) Scalar {
	r := &bn254Scalar{}
	r.v.Add(&s.v, &o.(*bn254Scalar).v)
	return r
}

func (s *bn254Scalar) Sub(o Scalar) Scalar {
	r := &bn254Scalar{}
	r.v.Sub(&s.v, &o.(*bn254Scalar).v)
	return r
}

func (s *bn254Scalar) Mul(o Scalar) Scalar {
	r := &bn254Scalar{}
	r.v.Mul(&s.v, &o.(*bn254Scalar).v)
	return r
}

func (s *bn254Scalar) Neg() Scalar {
	r := &bn254Scalar{}
	r.v.Neg(&s.v)
	return r
}

func (s *bn254Scalar) Inverse() Scalar {
	r := &bn254Scalar{}
	if s.v.IsZero() {
		return r
	}
	r.v.Inverse(&s.v)
	return r
}

func (s *bn254Scalar) Exp(e *big.Int) Scalar {
	r := &bn254Scalar{}
	r.v.Exp(s.v, e)
	return r
}

func (s *bn254Scalar) Equal(o Scalar) bool {
	return s.v.Equal(&o.(*bn254Scalar).v)
}

func (s *bn254Scalar) IsZero() bool {
	return s.v.IsZero()
}

func (s *bn254Scalar) Bytes() []byte {
	be := s.v.Bytes()
	return reverseBytes(be[:])
}

func (s *bn254Scalar) BigInt() *big.Int {
	var out big.Int
	s.v.BigInt(&out)
	return &out
}
