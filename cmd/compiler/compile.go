package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/QEStudios/BuzzerCompiler/melody"
	"github.com/QEStudios/BuzzerCompiler/parser/midi"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

func init() {
	compileOpts.register(compileCmd.Flags())
	compileCmd.Flags().BoolVarP(&compileOpts.flags.MonophonicOnly, "monophonic", "m", false, "skip quantization and reduction, write <out>_mono.h")
	compileCmd.Flags().StringVarP(&compileOutput, "out", "o", "", "output header path (default: next to the input, with a .h extension)")
	compileCmd.Flags().BoolVar(&compileBin, "bin", false, "also write the binary table to a .bin file next to the header")
	compileCmd.Flags().BoolVar(&compileShow, "show", false, "print the resulting table")
	compileCmd.Flags().BoolVar(&compileDump, "dump", false, "dump decoded events and the result for debugging")
	rootCmd.AddCommand(compileCmd)
}

var (
	compileOpts   pipelineOptions
	compileOutput string
	compileBin    bool
	compileShow   bool
	compileDump   bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [midi-file]",
	Short: "Compiles a MIDI file into a melody header",
	Long: `Extracts a single voice from a MIDI file (the loudest note wins, the most
recent one on ties), quantizes it to a grid and reduces it to fit the table
budget. Without a file argument a file dialog is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := compileOpts.resolve(cmd.Flags())
		if err != nil {
			return err
		}
		return runCompile(cfg, args)
	},
}

func runCompile(cfg melody.Config, args []string) error {
	// Get the current working directory.
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	path, err := choosePath(cwd, args, midiFile)
	if err != nil {
		return err
	}
	logger.Printf("Opening MIDI: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	p := midi.NewParser(file, logger)
	p.Debug = compileDump
	parsed, err := p.Parse()
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	m, err := melody.Run(parsed.Events, parsed.Tempo, cfg)
	if err != nil {
		return fmt.Errorf("compile error: %w", err)
	}

	out := compileOutput
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".h"
	}
	if cfg.MonophonicOnly {
		out = withSuffix(out, "_mono")
	}
	m.Name = melodyName(out)

	logWarnings(m.Warnings)
	if compileDump {
		spew.Fdump(logger.Writer(), m)
	}
	if compileShow {
		fmt.Println(m)
	}

	if err := writeHeader(m, out); err != nil {
		return err
	}

	if compileBin {
		table, err := m.Compile()
		if err != nil {
			return fmt.Errorf("compile error: %w", err)
		}
		binPath := strings.TrimSuffix(out, filepath.Ext(out)) + ".bin"
		if err := os.WriteFile(binPath, table, 0o644); err != nil {
			return fmt.Errorf("error writing output file: %w", err)
		}
		logger.Printf("Wrote %s (%d bytes)", binPath, len(table))
	}

	logger.Printf("Events: %d -> entries: %d (unit %d ms)", len(parsed.Events), len(m.Segments), m.Unit)
	return nil
}
