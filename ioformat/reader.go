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

// Reader reads a sectioned container. It owns the underlying file handle
// exclusively and tracks a logical position so typed primitive reads can be
// interleaved with raw section reads (spec §4.B, §5).
type Reader struct {
	f   *os.File
	pos uint64
}

// Open validates magic and version, scans the section table without reading
// any payload, and returns a Reader positioned just past the last section.
func Open(path string, magic [4]byte, maxVersion uint32) (*Reader, Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("ioformat: open %s: %w", path, err)
	}

	r := &Reader{f: f}

	gotMagic, err := r.Bytes(4)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if string(gotMagic) != string(magic[:]) {
		f.Close()
		return nil, nil, fmt.Errorf("%w: got %q, want %q", ErrBadMagic, gotMagic, magic[:])
	}

	version, err := r.U32()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if version > maxVersion {
		f.Close()
		return nil, nil, fmt.Errorf("%w: got %d, max %d", ErrUnsupportedVersion, version, maxVersion)
	}

	nSections, err := r.U32()
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	table := make(Table, nSections)
	for i := uint32(0); i < nSections; i++ {
		id, err := r.U32()
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		size, err := r.U64()
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		table[id] = append(table[id], Section{Offset: r.pos, Size: size})
		if err := r.seek(r.pos + size); err != nil {
			f.Close()
			return nil, nil, err
		}
	}

	return r, table, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Pos returns the reader's current logical offset into the file.
func (r *Reader) Pos() uint64 {
	return r.pos
}

// Seek moves the reader to an absolute offset, for positioning at the start
// of a fixed-layout section before a sequence of typed reads.
func (r *Reader) Seek(offset uint64) error {
	return r.seek(offset)
}

func (r *Reader) seek(offset uint64) error {
	if _, err := r.f.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	r.pos = offset
	return nil
}

// Bytes reads exactly n bytes, advancing the tracked position.
func (r *Reader) Bytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r.f, buf)
	r.pos += uint64(read)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return buf, nil
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadSection reads from the first section registered under id. off and
// length default to 0 and "remaining" respectively when nil.
func (r *Reader) ReadSection(sections Table, id uint32, off, length *uint64) ([]byte, error) {
	secs, ok := sections[id]
	if !ok || len(secs) == 0 {
		return nil, fmt.Errorf("%w: id=%d", ErrNoSuchSection, id)
	}
	sec := secs[0]

	start := uint64(0)
	if off != nil {
		start = *off
	}
	n := sec.Size - start
	if length != nil {
		n = *length
	}
	if start > sec.Size || start+n > sec.Size {
		return nil, fmt.Errorf("%w: id=%d off=%d len=%d size=%d", ErrOutOfBounds, id, start, n, sec.Size)
	}

	if err := r.seek(sec.Offset + start); err != nil {
		return nil, err
	}
	return r.Bytes(int(n))
}
