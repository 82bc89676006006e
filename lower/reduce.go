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

package lower

import (
	"github.com/consensys/zkeyprep/curve"
	"github.com/consensys/zkeyprep/r1cs"
)

// reduceCoefs is the wire-allocation primitive (spec §4.E). It repeatedly
// merges the first two pairs of lc's non-constant terms into a freshly
// allocated wire until at most maxC pairs remain, then right-pads with
// (wire 0, coefficient 0) to exactly maxC entries. The FIFO order in which
// pairs are consumed is observable in the resulting addition records and
// must not change.
func (l *Lowerer) reduceCoefs(lc r1cs.LinearCombination, maxC int) (k curve.Scalar, wires []uint32, coeffs []curve.Scalar) {
	zero := l.desc.NewScalar()
	one := l.desc.ScalarFromUint64(1)

	k = lc.Constant()
	if k == nil {
		k = zero
	}

	type pair struct {
		wire uint32
		coef curve.Scalar
	}
	terms := lc.Terms()
	queue := make([]pair, len(terms))
	for i, t := range terms {
		queue[i] = pair{wire: t.Wire, coef: t.Coef}
	}

	for len(queue) > maxC {
		p1, p2 := queue[0], queue[1]
		queue = queue[2:]

		so := l.nVars
		l.nVars++

		l.gates = append(l.gates, Gate{
			SL: p1.wire, SR: p2.wire, SO: so,
			QM: zero, QL: p1.coef.Neg(), QR: p2.coef.Neg(), QO: one, QC: zero,
		})
		l.additions = append(l.additions, Addition{A: p1.wire, B: p2.wire, V1: p1.coef, V2: p2.coef})

		queue = append(queue, pair{wire: so, coef: one})
	}

	wires = make([]uint32, maxC)
	coeffs = make([]curve.Scalar, maxC)
	for i := 0; i < maxC; i++ {
		if i < len(queue) {
			wires[i] = queue[i].wire
			coeffs[i] = queue[i].coef
		} else {
			wires[i] = 0
			coeffs[i] = zero
		}
	}
	return k, wires, coeffs
}

// addConstraintSum lowers a linear combination of arbitrary fan-in into one
// fan-in-3 sum gate, preceded by the allocation gates reduceCoefs emits when
// the fan-in exceeds 3.
func (l *Lowerer) addConstraintSum(lc r1cs.LinearCombination) {
	zero := l.desc.NewScalar()
	k, wires, coeffs := l.reduceCoefs(lc, 3)
	l.gates = append(l.gates, Gate{
		SL: wires[0], SR: wires[1], SO: wires[2],
		QM: zero, QL: coeffs[0], QR: coeffs[1], QO: coeffs[2], QC: k,
	})
}

// addConstraintMul lowers a genuine multiplication constraint <A,w>*<B,w> =
// <C,w> into one PLONK multiplication gate, reducing each side to a single
// (wire, coefficient, constant) triple first; that reduction emits an
// allocation gate for every merge it performs.
func (l *Lowerer) addConstraintMul(a, b, c r1cs.LinearCombination) {
	ka, wa, ca := l.reduceCoefs(a, 1)
	kb, wb, cb := l.reduceCoefs(b, 1)
	kc, wc, cc := l.reduceCoefs(c, 1)

	qm := ca[0].Mul(cb[0])
	ql := ca[0].Mul(kb)
	qr := ka.Mul(cb[0])
	qo := cc[0].Neg()
	qc := ka.Mul(kb).Sub(kc)

	l.gates = append(l.gates, Gate{
		SL: wa[0], SR: wb[0], SO: wc[0],
		QM: qm, QL: ql, QR: qr, QO: qo, QC: qc,
	})
}
