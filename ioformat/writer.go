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

package ioformat

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Writer writes a sectioned container. A Writer owns the underlying file
// handle exclusively; it is not safe to share across concurrent callers
// (spec §5).
type Writer struct {
	f   *os.File
	pos uint64

	declared  int
	completed int

	sectionOpen     bool
	sectionSizeAt   uint64
	sectionStart    uint64
}

// Create writes the container header (magic, version, declared section
// count) and returns a Writer ready for StartSection/EndSection pairs.
func Create(path string, magic [4]byte, version uint32, nSectionsDeclared int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("ioformat: create %s: %w", path, err)
	}

	w := &Writer{f: f, declared: nSectionsDeclared}

	if err := w.WriteBytes(magic[:]); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.WriteU32(version); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.WriteU32(uint32(nSectionsDeclared)); err != nil {
		f.Close()
		return nil, err
	}

	return w, nil
}

// StartSection writes a section id and reserves 8 bytes for its size,
// to be patched in by EndSection.
func (w *Writer) StartSection(id uint32) error {
	if w.sectionOpen {
		return ErrSectionAlreadyOpen
	}
	if err := w.WriteU32(id); err != nil {
		return err
	}
	w.sectionSizeAt = w.pos
	if err := w.WriteU64(0); err != nil {
		return err
	}
	w.sectionStart = w.pos
	w.sectionOpen = true
	return nil
}

// EndSection patches the reserved size field with the number of bytes
// written since the matching StartSection.
func (w *Writer) EndSection() error {
	if !w.sectionOpen {
		return ErrNoSectionOpen
	}
	size := w.pos - w.sectionStart
	end := w.pos

	if _, err := w.f.Seek(int64(w.sectionSizeAt), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], size)
	if _, err := w.f.Write(buf[:]); err != nil {
		return err
	}
	if _, err := w.f.Seek(int64(end), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	w.sectionOpen = false
	w.completed++
	return nil
}

// WriteBytes appends raw bytes at the current position.
func (w *Writer) WriteBytes(b []byte) error {
	n, err := w.f.Write(b)
	w.pos += uint64(n)
	return err
}

// WriteU32 appends a little-endian uint32.
func (w *Writer) WriteU32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

// WriteU64 appends a little-endian uint64.
func (w *Writer) WriteU64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

// Close verifies the start/end section pair count matches what was declared
// at Create time, then releases the file handle.
func (w *Writer) Close() error {
	defer w.f.Close()
	if w.sectionOpen {
		return ErrSectionAlreadyOpen
	}
	if w.completed != w.declared {
		return fmt.Errorf("%w: declared %d, wrote %d", ErrSectionCountMismatch, w.declared, w.completed)
	}
	return nil
}
