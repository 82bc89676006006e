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

// Package main is the zkeyprep CLI: turn an R1CS circuit and a prepared
// Powers-of-Tau ceremony artifact into a PLONK zkey preamble.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/consensys/zkeyprep/transform"
)

func main() {
	rootCmd := zkeyprepCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// zkeyprepCmd builds the single root command: zkeyprep <r1cs> <ptau> <zkey>.
// The CLI stays a thin wiring layer over package transform; it adds no
// domain logic of its own.
func zkeyprepCmd() *cobra.Command {
	var (
		logLevel      string
		enableProfile bool
		debugDumpPath string
	)

	cmd := &cobra.Command{
		Use:   "zkeyprep <r1cs-path> <ptau-path> <zkey-path>",
		Short: "Lower an R1CS circuit against a Powers-of-Tau ceremony into a PLONK zkey preamble",
		Long: `zkeyprep reads an R1CS constraint system and a prepared Powers-of-Tau
ceremony artifact, lowers the R1CS constraints into PLONK gate form, derives
the evaluation domain and coset structure, and writes the resulting
Additions section and reserved section table to a zkey file.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return fmt.Errorf("zkeyprep: configure logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			if enableProfile {
				defer profile.Start(profile.CPUProfile).Stop()
			}

			opts := transform.Options{
				Logger:        logger,
				DebugDumpPath: debugDumpPath,
			}

			return transform.Run(context.Background(), args[0], args[1], args[2], opts)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&enableProfile, "profile", false, "write a CPU profile for this run")
	cmd.Flags().StringVar(&debugDumpPath, "debug-dump", "", "write a CBOR dump of the lowered gates and additions to this path")

	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return cfg.Build()
}
