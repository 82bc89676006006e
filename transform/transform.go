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

// Package transform orchestrates the R1CS-to-PLONK lowering pipeline end to
// end: read the PTau ceremony header, read the R1CS circuit, lower its
// constraints to PLONK gate form, derive the evaluation domain, and write
// the zkey preamble.
package transform

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/consensys/zkeyprep/domain"
	"github.com/consensys/zkeyprep/ioformat"
	"github.com/consensys/zkeyprep/lower"
	"github.com/consensys/zkeyprep/ptau"
	"github.com/consensys/zkeyprep/r1cs"
	"github.com/consensys/zkeyprep/zkey"
)

var ErrCurveMismatch = errors.New("transform: r1cs curve does not match ptau curve")

// Options controls the ambient behavior of Run: where to log, and whether
// to emit a debug dump of the lowered gates and additions.
type Options struct {
	Logger *zap.Logger

	// DebugDumpPath, if non-empty, receives a CBOR-encoded dump of the
	// lowered gates and additions (supplemented feature, not in the
	// original program: it only printed progress to stdout).
	DebugDumpPath string
}

// debugGate and debugAddition mirror lower.Gate and lower.Addition with
// every curve.Scalar reduced to its canonical little-endian bytes, since
// the scalar implementations carry no exported fields for CBOR to walk.
type debugGate struct {
	SL, SR, SO         uint32
	QM, QL, QR, QO, QC []byte
}

type debugAddition struct {
	A, B   uint32
	V1, V2 []byte
}

// debugDump is the structure written to Options.DebugDumpPath.
type debugDump struct {
	Gates     []debugGate     `cbor:"gates"`
	Additions []debugAddition `cbor:"additions"`
	Power     uint32          `cbor:"domain_power"`
	K1        []byte          `cbor:"k1"`
	K2        []byte          `cbor:"k2"`
}

// Run reads r1csPath and ptauPath, lowers the circuit to PLONK gate form,
// and writes the zkey preamble to zkeyPath. On any failure after zkeyPath
// has been created it removes the partial file, since a half-written zkey
// is worse than none (spec §7).
func Run(ctx context.Context, r1csPath, ptauPath, zkeyPath string, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.New().String()
	log = log.With(zap.String("run_id", runID))

	log.Info("processing ptau", zap.String("path", ptauPath))
	ptauReader, ptauSections, err := ioformat.Open(ptauPath, [4]byte{'p', 't', 'a', 'u'}, 1)
	if err != nil {
		return fmt.Errorf("transform: open ptau: %w", err)
	}
	defer ptauReader.Close()

	ptauHeader, err := ptau.ReadHeader(ptauReader, ptauSections)
	if err != nil {
		return fmt.Errorf("transform: read ptau header: %w", err)
	}
	log.Info("ptau header",
		zap.String("curve", ptauHeader.Curve.Field.String()),
		zap.Uint32("power", ptauHeader.Power),
		zap.Uint32("ceremony_power", ptauHeader.CeremonyPower))

	if err := ptau.CheckPrepared(ptauSections); err != nil {
		return fmt.Errorf("transform: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	log.Info("processing r1cs", zap.String("path", r1csPath))
	r1csReader, r1csSections, err := ioformat.Open(r1csPath, [4]byte{'r', '1', 'c', 's'}, 1)
	if err != nil {
		return fmt.Errorf("transform: open r1cs: %w", err)
	}
	defer r1csReader.Close()

	r1csHeader, constraints, err := r1cs.Read(r1csReader, r1csSections, ptauHeader.Curve)
	if err != nil {
		if errors.Is(err, r1cs.ErrCurveMismatch) {
			return fmt.Errorf("%w: %v", ErrCurveMismatch, err)
		}
		return fmt.Errorf("transform: read r1cs: %w", err)
	}
	log.Info("r1cs header",
		zap.Uint32("n_vars", r1csHeader.NVars),
		zap.Uint32("n_constraints", r1csHeader.NConstraints))

	nPublic := r1csHeader.NPublic()
	lowerer := lower.New(ptauHeader.Curve, r1csHeader.NVars)
	lowerer.EmitPublicInputGates(nPublic)

	log.Info("processing constraints", zap.Int("count", len(constraints)))
	for i, c := range constraints {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := lowerer.Process(c.A, c.B, c.C); err != nil {
			return fmt.Errorf("transform: lower constraint %d: %w", i, err)
		}
	}

	gates, additions, nVars := lowerer.Finish()
	log.Info("lowered to plonk gates",
		zap.Int("n_gates", len(gates)),
		zap.Int("n_additions", len(additions)),
		zap.Uint32("n_vars", nVars))

	if err := ctx.Err(); err != nil {
		return err
	}

	setup, err := domain.Compute(ptauHeader.Curve, len(gates), ptauHeader.Power)
	if err != nil {
		return fmt.Errorf("transform: domain setup: %w", err)
	}
	if err := setup.Verify(); err != nil {
		return fmt.Errorf("transform: domain setup failed self-check: %w", err)
	}
	log.Info("domain setup",
		zap.Uint32("power", setup.Power),
		zap.Uint64("size", setup.Size),
		zap.String("k1", hex.EncodeToString(setup.K1.Bytes())),
		zap.String("k2", hex.EncodeToString(setup.K2.Bytes())))

	if opts.DebugDumpPath != "" {
		if err := writeDebugDump(opts.DebugDumpPath, gates, additions, setup); err != nil {
			return fmt.Errorf("transform: debug dump: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeZKey(zkeyPath, ptauHeader.Curve.N8R, additions); err != nil {
		return err
	}

	log.Info("wrote zkey preamble", zap.String("path", zkeyPath))
	return nil
}

// writeZKey creates the zkey container and cleans it up on any failure so
// callers never see a half-written file on disk.
func writeZKey(zkeyPath string, n8r int, additions []lower.Addition) (err error) {
	w, err := zkey.Create(zkeyPath)
	if err != nil {
		return fmt.Errorf("transform: create zkey: %w", err)
	}
	defer func() {
		if err != nil {
			os.Remove(zkeyPath)
		}
	}()

	if err = zkey.WriteAdditions(w, n8r, additions); err != nil {
		return fmt.Errorf("transform: write additions: %w", err)
	}
	if err = zkey.WritePlaceholders(w); err != nil {
		return fmt.Errorf("transform: write placeholders: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("transform: close zkey: %w", err)
	}
	return nil
}

func writeDebugDump(path string, gates []lower.Gate, additions []lower.Addition, setup *domain.Setup) error {
	dump := debugDump{
		Gates:     make([]debugGate, len(gates)),
		Additions: make([]debugAddition, len(additions)),
		Power:     setup.Power,
		K1:        setup.K1.Bytes(),
		K2:        setup.K2.Bytes(),
	}
	for i, g := range gates {
		dump.Gates[i] = debugGate{
			SL: g.SL, SR: g.SR, SO: g.SO,
			QM: g.QM.Bytes(), QL: g.QL.Bytes(), QR: g.QR.Bytes(),
			QO: g.QO.Bytes(), QC: g.QC.Bytes(),
		}
	}
	for i, a := range additions {
		dump.Additions[i] = debugAddition{A: a.A, B: a.B, V1: a.V1.Bytes(), V2: a.V2.Bytes()}
	}

	b, err := cbor.Marshal(dump)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
