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

// Package r1cs reads the constraint system section of an .r1cs container
// (spec §4.C): a header followed by a flat list of (A, B, C) triples of
// linear combinations over the witness vector.
package r1cs

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/zkeyprep/curve"
	"github.com/consensys/zkeyprep/ioformat"
)

var (
	ErrMissingHeaderSection      = errors.New("r1cs: missing header section (1)")
	ErrMissingConstraintsSection = errors.New("r1cs: missing constraints section (2)")
	ErrDuplicateHeaderSection    = errors.New("r1cs: duplicate header section (1)")
	ErrCurveMismatch             = errors.New("r1cs: curve mismatch")
)

// Header mirrors spec §3's R1CS header record. Prime is the raw field
// modulus as declared in the file; callers are expected to have already
// identified the curve (typically from the PTau header) and pass it into
// Read for cross-checking rather than have this package re-derive it.
type Header struct {
	N8             uint32
	Prime          *big.Int
	NVars          uint32
	NOutputs       uint32
	NPubInputs     uint32
	NPrvInputs     uint32
	NLabels        uint64
	NConstraints   uint32
	UseCustomGates bool
}

// NPublic is the number of public wires: outputs plus public inputs
// (spec §4.E).
func (h *Header) NPublic() uint32 {
	return h.NOutputs + h.NPubInputs
}

// Term is one non-constant entry of a linear combination, in the canonical
// ascending-wire-index order this module pins (spec §9, Open Question 4).
type Term struct {
	Wire uint32
	Coef curve.Scalar
}

// LinearCombination is a finite mapping from wire index to coefficient.
// Wire 0 is the constant-one wire (spec §3).
type LinearCombination map[uint32]curve.Scalar

// Terms returns the non-constant (wire != 0) entries sorted by ascending
// wire index. This is the canonical iteration order every lowering
// operation in package lower relies on for determinism (spec §9).
func (lc LinearCombination) Terms() []Term {
	terms := make([]Term, 0, len(lc))
	for w, c := range lc {
		if w == 0 {
			continue
		}
		terms = append(terms, Term{Wire: w, Coef: c})
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Wire < terms[j].Wire })
	return terms
}

// Constant returns the coefficient on wire 0, or nil if absent.
func (lc LinearCombination) Constant() curve.Scalar {
	return lc[0]
}

// Constraint is an R1CS triple asserting <A,w>*<B,w> = <C,w>.
type Constraint struct {
	A, B, C LinearCombination
}

// Read parses sections 1 and 2 of an .r1cs container, per spec §4.C.
// desc is the curve already identified elsewhere in the pipeline (from the
// PTau header); Read cross-checks the R1CS file's own declared prime
// against it rather than re-deriving curve identity from scratch.
func Read(r *ioformat.Reader, sections ioformat.Table, desc *curve.Descriptor) (*Header, []Constraint, error) {
	if desc == nil {
		return nil, nil, fmt.Errorf("r1cs: %w: curve descriptor required", ErrCurveMismatch)
	}

	header, err := readHeader(r, sections, desc)
	if err != nil {
		return nil, nil, err
	}

	constraints, err := readConstraints(r, sections, header, desc)
	if err != nil {
		return nil, nil, err
	}

	header.UseCustomGates = len(sections[4]) > 0 && len(sections[5]) > 0

	return header, constraints, nil
}

func readHeader(r *ioformat.Reader, sections ioformat.Table, desc *curve.Descriptor) (*Header, error) {
	secs, ok := sections[1]
	if !ok || len(secs) == 0 {
		return nil, ErrMissingHeaderSection
	}
	if len(secs) > 1 {
		return nil, ErrDuplicateHeaderSection
	}
	sec := secs[0]

	if err := r.Seek(sec.Offset); err != nil {
		return nil, err
	}

	n8, err := r.U32()
	if err != nil {
		return nil, err
	}
	primeBytes, err := r.Bytes(int(n8))
	if err != nil {
		return nil, err
	}
	prime := new(big.Int).SetBytes(reverse(primeBytes))

	if desc != nil && prime.Cmp(desc.R) != 0 {
		return nil, fmt.Errorf("%w: r1cs header prime does not match ptau curve", ErrCurveMismatch)
	}

	nVars, err := r.U32()
	if err != nil {
		return nil, err
	}
	nOutputs, err := r.U32()
	if err != nil {
		return nil, err
	}
	nPubInputs, err := r.U32()
	if err != nil {
		return nil, err
	}
	nPrvInputs, err := r.U32()
	if err != nil {
		return nil, err
	}
	nLabels, err := r.U64()
	if err != nil {
		return nil, err
	}
	nConstraints, err := r.U32()
	if err != nil {
		return nil, err
	}

	if consumed := r.Pos() - sec.Offset; consumed != sec.Size {
		return nil, fmt.Errorf("%w: header consumed %d, declared %d", ioformat.ErrSectionSizeMismatch, consumed, sec.Size)
	}

	return &Header{
		N8:           n8,
		Prime:        prime,
		NVars:        nVars,
		NOutputs:     nOutputs,
		NPubInputs:   nPubInputs,
		NPrvInputs:   nPrvInputs,
		NLabels:      nLabels,
		NConstraints: nConstraints,
	}, nil
}

func readConstraints(r *ioformat.Reader, sections ioformat.Table, header *Header, desc *curve.Descriptor) ([]Constraint, error) {
	secs, ok := sections[2]
	if !ok || len(secs) == 0 {
		return nil, ErrMissingConstraintsSection
	}
	sec := secs[0]

	if err := r.Seek(sec.Offset); err != nil {
		return nil, err
	}

	constraints := make([]Constraint, header.NConstraints)
	for i := range constraints {
		a, err := readLC(r, header, desc)
		if err != nil {
			return nil, err
		}
		b, err := readLC(r, header, desc)
		if err != nil {
			return nil, err
		}
		c, err := readLC(r, header, desc)
		if err != nil {
			return nil, err
		}
		constraints[i] = Constraint{A: a, B: b, C: c}
	}

	if consumed := r.Pos() - sec.Offset; consumed != sec.Size {
		return nil, fmt.Errorf("%w: constraints consumed %d, declared %d", ioformat.ErrSectionSizeMismatch, consumed, sec.Size)
	}

	return constraints, nil
}

func readLC(r *ioformat.Reader, header *Header, desc *curve.Descriptor) (LinearCombination, error) {
	nIdx, err := r.U32()
	if err != nil {
		return nil, err
	}

	lc := make(LinearCombination, nIdx)
	for i := uint32(0); i < nIdx; i++ {
		wireIdx, err := r.U32()
		if err != nil {
			return nil, err
		}
		coefBytes, err := r.Bytes(int(header.N8))
		if err != nil {
			return nil, err
		}
		coef, err := desc.ScalarFromBytes(coefBytes)
		if err != nil {
			return nil, err
		}
		lc[wireIdx] = coef
	}
	return lc, nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
