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

// Section describes one on-disk section's location, per spec §3.
type Section struct {
	Offset uint64
	Size   uint64
}

// Table maps a section id to its ordered list of on-disk occurrences.
// Multiple sections sharing an id are allowed and preserved in order
// (spec §3).
type Table map[uint32][]Section
