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

// Package zkey writes the PLONK-compatible zkey preamble this pipeline is
// responsible for: the container shell and the Additions section (spec
// §4.G). Every other zkey section (curve arithmetic commitments, full
// witness generator metadata, SRS-derived polynomials) belongs to a
// downstream collaborator tool; this package only reserves their slots so
// that tool doesn't have to renumber anything.
package zkey

import (
	"fmt"

	"github.com/consensys/zkeyprep/ioformat"
	"github.com/consensys/zkeyprep/lower"
)

// nSections is the total section count the ecosystem's zkey layout
// expects, even though this package only populates one of them.
const nSections = 14

// sectionAdditions is the id of the one section this package writes.
const sectionAdditions = 3

var magic = [4]byte{'z', 'k', 'e', 'y'}

// Create opens a new zkey container declaring all 14 ecosystem sections,
// so a downstream tool completing the rest of the file never has to shift
// section ids around.
func Create(path string) (*ioformat.Writer, error) {
	return ioformat.Create(path, magic, 1, nSections)
}

// WriteAdditions writes section 3 exactly per spec §4.G: for each addition
// record (a, b, v1, v2), a 4-byte LE a, 4-byte LE b, then v1 and v2 each as
// n8r little-endian canonical scalar bytes, contiguous with no padding.
func WriteAdditions(w *ioformat.Writer, n8r int, additions []lower.Addition) error {
	if err := w.StartSection(sectionAdditions); err != nil {
		return err
	}
	for _, add := range additions {
		if err := w.WriteU32(add.A); err != nil {
			return err
		}
		if err := w.WriteU32(add.B); err != nil {
			return err
		}
		v1 := add.V1.Bytes()
		if len(v1) != n8r {
			return fmt.Errorf("zkey: addition v1 has %d bytes, want %d", len(v1), n8r)
		}
		if err := w.WriteBytes(v1); err != nil {
			return err
		}
		v2 := add.V2.Bytes()
		if len(v2) != n8r {
			return fmt.Errorf("zkey: addition v2 has %d bytes, want %d", len(v2), n8r)
		}
		if err := w.WriteBytes(v2); err != nil {
			return err
		}
	}
	return w.EndSection()
}

// WritePlaceholders writes a zero-length section for every declared id
// this package doesn't populate (1, 2, and 4 through 14). ioformat.Writer
// enforces that every declared section gets a start/end pair before Close,
// and this package is only ever responsible for section 3 — the rest is a
// downstream collaborator's job, but the container still needs a
// placeholder entry reserved for each of them.
func WritePlaceholders(w *ioformat.Writer) error {
	for id := uint32(1); id <= nSections; id++ {
		if id == sectionAdditions {
			continue
		}
		if err := w.StartSection(id); err != nil {
			return err
		}
		if err := w.EndSection(); err != nil {
			return err
		}
	}
	return nil
}
