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

// Package ptau reads the header of a Powers-of-Tau ceremony artifact and
// checks its preparedness for PLONK consumption (spec §4.D).
package ptau

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/zkeyprep/curve"
	"github.com/consensys/zkeyprep/ioformat"
)

var (
	ErrMissingHeaderSection = errors.New("ptau: missing header section (1)")
	ErrDuplicateSection     = errors.New("ptau: more than one header section")
	ErrN8QMismatch          = errors.New("ptau: declared n8 does not match curve's base field width")
	ErrPTauNotPrepared      = errors.New("ptau: file lacks the prepared lagrange section (12)")
)

// sectionPrepared is the section id snarkjs's "preparePhase2" step adds;
// its presence is how a plain Powers-of-Tau file is distinguished from
// one ready for PLONK setup (spec §4.D, §6).
const sectionPrepared = 12

// Header is the curve and ceremony size declared in a PTau file's header
// section (spec §4.D).
type Header struct {
	Curve         *curve.Descriptor
	Power         uint32
	CeremonyPower uint32
}

// ReadHeader parses section 1 of a PTau container. It identifies the curve
// from the header's declared base-field modulus and cross-checks the
// declared byte width against the curve's own n8q, matching the source's
// "f1.n64*8 != n8" guard.
func ReadHeader(r *ioformat.Reader, sections ioformat.Table) (*Header, error) {
	secs, ok := sections[1]
	if !ok || len(secs) == 0 {
		return nil, ErrMissingHeaderSection
	}
	if len(secs) > 1 {
		return nil, ErrDuplicateSection
	}
	sec := secs[0]

	if err := r.Seek(sec.Offset); err != nil {
		return nil, err
	}

	n8, err := r.U32()
	if err != nil {
		return nil, err
	}
	qBytes, err := r.Bytes(int(n8))
	if err != nil {
		return nil, err
	}
	q := new(big.Int).SetBytes(reverse(qBytes))

	desc, err := curve.Of(q)
	if err != nil {
		return nil, fmt.Errorf("ptau: header base field: %w", err)
	}
	if int(n8) != desc.N8Q {
		return nil, fmt.Errorf("%w: declared %d, curve wants %d", ErrN8QMismatch, n8, desc.N8Q)
	}

	power, err := r.U32()
	if err != nil {
		return nil, err
	}
	ceremonyPower, err := r.U32()
	if err != nil {
		return nil, err
	}

	if consumed := r.Pos() - sec.Offset; consumed != sec.Size {
		return nil, fmt.Errorf("%w: ptau header consumed %d, declared %d", ioformat.ErrSectionSizeMismatch, consumed, sec.Size)
	}

	return &Header{Curve: desc, Power: power, CeremonyPower: ceremonyPower}, nil
}

// CheckPrepared reports whether the ceremony has been through the
// second-phase Lagrange preparation PLONK setup requires. It is kept
// separate from ReadHeader because an un-prepared PTau file is otherwise a
// perfectly valid header to read (spec §4.D).
func CheckPrepared(sections ioformat.Table) error {
	if len(sections[sectionPrepared]) == 0 {
		return ErrPTauNotPrepared
	}
	return nil
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
