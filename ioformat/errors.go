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

// Package ioformat implements the sectioned binary container shared by the
// .r1cs, .ptau and .zkey artifacts: magic | version | section* , all
// integers little-endian (spec §4.B / §6).
package ioformat

import "errors"

var (
	ErrBadMagic              = errors.New("ioformat: bad magic")
	ErrUnsupportedVersion    = errors.New("ioformat: unsupported version")
	ErrTruncated             = errors.New("ioformat: truncated file")
	ErrNoSuchSection         = errors.New("ioformat: no such section")
	ErrDuplicateSection      = errors.New("ioformat: duplicate section")
	ErrSectionSizeMismatch   = errors.New("ioformat: section size mismatch")
	ErrOutOfBounds           = errors.New("ioformat: out of bounds")
	ErrSectionCountMismatch  = errors.New("ioformat: declared section count mismatch")
	ErrSectionAlreadyOpen    = errors.New("ioformat: a section is already open")
	ErrNoSectionOpen         = errors.New("ioformat: no section is open")
)
