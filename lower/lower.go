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

// Package lower translates R1CS constraints into PLONK gates and addition
// records, introducing auxiliary wires where a linear combination's fan-in
// exceeds what a single gate accepts (spec §4.E). It is pure CPU-bound
// state: no I/O, no logging, nothing suspends inside this package.
package lower

import (
	"strconv"

	"github.com/consensys/zkeyprep/curve"
	"github.com/consensys/zkeyprep/r1cs"
)

// Gate is one PLONK custom-gate row: qm·w[sl]·w[sr] + ql·w[sl] + qr·w[sr] +
// qo·w[so] + qc = 0.
type Gate struct {
	SL, SR, SO         uint32
	QM, QL, QR, QO, QC curve.Scalar
}

// Addition records that a freshly allocated auxiliary wire holds
// V1·w[A]+V2·w[B], so the witness-extension pass downstream of this package
// knows how to fill it in. The allocated wire itself is not stored here; it
// is the SO of the gate emitted alongside the record.
type Addition struct {
	A, B   uint32
	V1, V2 curve.Scalar
}

// Lowerer owns the mutable state threaded through constraint-by-constraint
// processing: the next free wire index, and the append-only gate and
// addition lists. This replaces the loose mutable references the algorithm
// is naturally expressed with, instead of passing four slices around.
type Lowerer struct {
	desc  *curve.Descriptor
	nVars uint32

	gates     []Gate
	additions []Addition
}

// New starts a Lowerer with nVars as the first free auxiliary wire index.
func New(desc *curve.Descriptor, nVars uint32) *Lowerer {
	return &Lowerer{desc: desc, nVars: nVars}
}

// EmitPublicInputGates emits, for each public wire s in 1..=nPublic, a gate
// asserting w[s] = 0 at lowering time; the verifier rebinds qc per instance
// to the actual public value. These precede all constraint-derived gates.
func (l *Lowerer) EmitPublicInputGates(nPublic uint32) {
	one := l.desc.ScalarFromUint64(1)
	zero := l.desc.NewScalar()
	for s := uint32(1); s <= nPublic; s++ {
		l.gates = append(l.gates, Gate{
			SL: s, SR: 0, SO: 0,
			QM: zero, QL: one, QR: zero, QO: zero, QC: zero,
		})
	}
}

// Process lowers one R1CS triple, dispatching on the classification of a
// and b per spec §4.E's fixed-priority table: "0" on either side first,
// then "k" on a, then "k" on b, else a true multiplication gate.
func (l *Lowerer) Process(a, b, c r1cs.LinearCombination) error {
	ta, ka := classify(a)
	tb, kb := classify(b)

	switch {
	case ta == tagZero:
		normalize(c)
		l.addConstraintSum(c)
	case tb == tagZero:
		normalize(c)
		l.addConstraintSum(c)
	case ta == tagConst:
		l.addConstraintSum(join(b, ka, c))
	case tb == tagConst:
		l.addConstraintSum(join(a, kb, c))
	default:
		l.addConstraintMul(a, b, c)
	}
	return nil
}

// Finish returns the accumulated gates, additions, and the final wire
// count, releasing the Lowerer's state to the caller.
func (l *Lowerer) Finish() ([]Gate, []Addition, uint32) {
	return l.gates, l.additions, l.nVars
}

const (
	tagZero  = "0"
	tagConst = "k"
)

// classify drops zero-coefficient entries from lc in place, then reports
// "0" if nothing remains, "k" (with the constant value) if only the
// constant entry survives, or the count of non-constant entries otherwise.
// The count tag is used only to select a process() case, never parsed back
// into a number.
func classify(lc r1cs.LinearCombination) (tag string, k curve.Scalar) {
	normalize(lc)
	terms := lc.Terms()
	k = lc.Constant()

	switch {
	case len(terms) == 0 && (k == nil || k.IsZero()):
		return tagZero, nil
	case len(terms) == 0:
		return tagConst, k
	default:
		return strconv.Itoa(len(terms)), nil
	}
}

// normalize drops zero-coefficient entries, including an explicit zero
// constant, from lc in place.
func normalize(lc r1cs.LinearCombination) {
	for w, v := range lc {
		if v == nil || v.IsZero() {
			delete(lc, w)
		}
	}
}

// join computes k·lc1 + lc2 as linear combinations, normalized.
func join(lc1 r1cs.LinearCombination, k curve.Scalar, lc2 r1cs.LinearCombination) r1cs.LinearCombination {
	out := make(r1cs.LinearCombination, len(lc1)+len(lc2))
	for w, v := range lc1 {
		out[w] = k.Mul(v)
	}
	for w, v := range lc2 {
		if cur, ok := out[w]; ok {
			out[w] = cur.Add(v)
		} else {
			out[w] = v
		}
	}
	normalize(out)
	return out
}

