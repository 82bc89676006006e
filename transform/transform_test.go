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

package transform

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/zkeyprep/curve"
	"github.com/consensys/zkeyprep/ioformat"
)

var (
	ptauMagic = [4]byte{'p', 't', 'a', 'u'}
	r1csMagic = [4]byte{'r', '1', 'c', 's'}
	zkeyMagic = [4]byte{'z', 'k', 'e', 'y'}
)

func bn254QForTest() *big.Int {
	q, _ := new(big.Int).SetString("21888242871839275222246405745257275088696311157297823662689037894645226208583", 10)
	return q
}

func reverseForTest(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func padBigEndian(v *big.Int, n8 int) []byte {
	b := v.Bytes()
	out := make([]byte, n8)
	copy(out[n8-len(b):], b)
	return out
}

func buildPTauFixture(t *testing.T, dir string, power uint32, prepared bool) string {
	t.Helper()
	q := bn254QForTest()

	nSections := 1
	if prepared {
		nSections = 2
	}

	path := filepath.Join(dir, "pot.ptau")
	w, err := ioformat.Create(path, ptauMagic, 1, nSections)
	require.NoError(t, err)

	require.NoError(t, w.StartSection(1))
	require.NoError(t, w.WriteU32(32))
	require.NoError(t, w.WriteBytes(reverseForTest(padBigEndian(q, 32))))
	require.NoError(t, w.WriteU32(power))
	require.NoError(t, w.WriteU32(power+4))
	require.NoError(t, w.EndSection())

	if prepared {
		require.NoError(t, w.StartSection(12))
		require.NoError(t, w.WriteU32(0))
		require.NoError(t, w.EndSection())
	}

	require.NoError(t, w.Close())
	return path
}

func writeLC(t *testing.T, w *ioformat.Writer, desc *curve.Descriptor, terms map[uint32]uint64) {
	t.Helper()
	require.NoError(t, w.WriteU32(uint32(len(terms))))
	for wire, v := range terms {
		require.NoError(t, w.WriteU32(wire))
		require.NoError(t, w.WriteBytes(desc.ScalarFromUint64(v).Bytes()))
	}
}

// buildR1CSFixture writes a four-constraint circuit: a multiplication gate,
// a linearization via a constant, a trivial sum gate, and a wide fan-in sum
// gate that forces the lowerer's allocation path.
func buildR1CSFixture(t *testing.T, dir string, desc *curve.Descriptor) string {
	t.Helper()
	path := filepath.Join(dir, "circuit.r1cs")
	w, err := ioformat.Create(path, r1csMagic, 1, 2)
	require.NoError(t, err)

	require.NoError(t, w.StartSection(1))
	require.NoError(t, w.WriteU32(uint32(desc.N8R)))
	require.NoError(t, w.WriteBytes(reverseForTest(padBigEndian(desc.R, desc.N8R))))
	require.NoError(t, w.WriteU32(10)) // nVars
	require.NoError(t, w.WriteU32(1))  // nOutputs
	require.NoError(t, w.WriteU32(1))  // nPubInputs
	require.NoError(t, w.WriteU32(1))  // nPrvInputs
	require.NoError(t, w.WriteU64(4))  // nLabels
	require.NoError(t, w.WriteU32(4))  // nConstraints
	require.NoError(t, w.EndSection())

	require.NoError(t, w.StartSection(2))
	// wire1 * wire2 = wire3
	writeLC(t, w, desc, map[uint32]uint64{1: 1})
	writeLC(t, w, desc, map[uint32]uint64{2: 1})
	writeLC(t, w, desc, map[uint32]uint64{3: 1})
	// 5*(wire4+wire5) = wire6
	writeLC(t, w, desc, map[uint32]uint64{0: 5})
	writeLC(t, w, desc, map[uint32]uint64{4: 1, 5: 1})
	writeLC(t, w, desc, map[uint32]uint64{6: 1})
	// trivial: 0 = wire7
	writeLC(t, w, desc, map[uint32]uint64{})
	writeLC(t, w, desc, map[uint32]uint64{})
	writeLC(t, w, desc, map[uint32]uint64{7: 1})
	// wide fan-in sum: 0 = wire1+wire2+wire3+wire4+wire5
	writeLC(t, w, desc, map[uint32]uint64{})
	writeLC(t, w, desc, map[uint32]uint64{})
	writeLC(t, w, desc, map[uint32]uint64{1: 1, 2: 1, 3: 1, 4: 1, 5: 1})
	require.NoError(t, w.EndSection())

	require.NoError(t, w.Close())
	return path
}

func TestRunEndToEnd(t *testing.T) {
	desc, err := curve.Of(bn254QForTest())
	require.NoError(t, err)

	dir := t.TempDir()
	ptauPath := buildPTauFixture(t, dir, 20, true)
	r1csPath := buildR1CSFixture(t, dir, desc)
	zkeyPath := filepath.Join(dir, "out.zkey")
	dumpPath := filepath.Join(dir, "dump.cbor")

	err = Run(context.Background(), r1csPath, ptauPath, zkeyPath, Options{DebugDumpPath: dumpPath})
	require.NoError(t, err)

	r, sections, err := ioformat.Open(zkeyPath, zkeyMagic, 1)
	require.NoError(t, err)
	defer r.Close()
	require.Len(t, sections[3], 1) // Additions

	dumpBytes, err := os.ReadFile(dumpPath)
	require.NoError(t, err)
	var dump debugDump
	require.NoError(t, cbor.Unmarshal(dumpBytes, &dump))
	assert.NotEmpty(t, dump.Gates)
	assert.Equal(t, uint32(3), dump.Power) // 8 plonk gates -> ceil(log2(7)) clamped to 3
}

func TestRunRejectsUnpreparedPTau(t *testing.T) {
	desc, err := curve.Of(bn254QForTest())
	require.NoError(t, err)

	dir := t.TempDir()
	ptauPath := buildPTauFixture(t, dir, 20, false)
	r1csPath := buildR1CSFixture(t, dir, desc)
	zkeyPath := filepath.Join(dir, "out.zkey")

	err = Run(context.Background(), r1csPath, ptauPath, zkeyPath, Options{})
	assert.Error(t, err)
	_, statErr := os.Stat(zkeyPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRejectsCircuitTooBigForPTau(t *testing.T) {
	desc, err := curve.Of(bn254QForTest())
	require.NoError(t, err)

	dir := t.TempDir()
	ptauPath := buildPTauFixture(t, dir, 2, true) // ptau only supports 2^2 = 4
	r1csPath := buildR1CSFixture(t, dir, desc)
	zkeyPath := filepath.Join(dir, "out.zkey")

	err = Run(context.Background(), r1csPath, ptauPath, zkeyPath, Options{})
	assert.Error(t, err)
	_, statErr := os.Stat(zkeyPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRespectsCancelledContext(t *testing.T) {
	desc, err := curve.Of(bn254QForTest())
	require.NoError(t, err)

	dir := t.TempDir()
	ptauPath := buildPTauFixture(t, dir, 20, true)
	r1csPath := buildR1CSFixture(t, dir, desc)
	zkeyPath := filepath.Join(dir, "out.zkey")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Run(ctx, r1csPath, ptauPath, zkeyPath, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
