package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/QEStudios/BuzzerCompiler/melody"
	"github.com/spf13/cobra"
	"github.com/sqweek/dialog"
)

var logger *log.Logger

var rootCmd = &cobra.Command{
	Use:   "compiler",
	Short: "Compiles MIDI files into buzzer melody tables",
	Long: `Compiles MIDI files into monophonic (frequency, duration) tables
that a single-tone buzzer can play, and simplifies existing tables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	logger = log.New(os.Stdout, "", log.Ldate|log.Ltime)

	err := rootCmd.Execute()
	if errors.Is(err, dialog.ErrCancelled) {
		logger.Printf("User cancelled the file dialog")
		os.Exit(1)
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}
}

// fileKind describes what kind of input file a command accepts.
type fileKind struct {
	title       string   // Title of the file dialog.
	description string   // Filter description shown in the file dialog.
	extensions  []string // Accepted extensions without the leading dot.
}

var (
	midiFile   = fileKind{"Open MIDI file", "MIDI files (*.mid, *.midi)", []string{"mid", "midi"}}
	headerFile = fileKind{"Open melody header", "C headers (*.h)", []string{"h"}}
)

// choosePath returns the file path either from the command-line args
// or from an interactive file dialog.
func choosePath(cwd string, args []string, kind fileKind) (string, error) {
	// If an argument was passed to the program, use it.
	if len(args) > 0 {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("cannot get absolute path: %w", err)
		}
		if err := validatePath(absPath, kind); err != nil {
			return "", fmt.Errorf("passed argument is not a valid path: %w", err)
		}
		return absPath, nil
	}

	// Otherwise open the file dialog.
	path, err := dialog.
		File().
		Title(kind.title).
		Filter(kind.description, kind.extensions...).
		SetStartDir(cwd).
		Load()
	if err != nil {
		// Propagate the error. main checks for dialog.ErrCancelled.
		return "", err
	}

	// Check for empty path just in case.
	if path == "" {
		return "", dialog.ErrCancelled
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot get absolute path: %w", err)
	}
	if err := validatePath(absPath, kind); err != nil {
		return "", fmt.Errorf("dialog selection invalid: %w", err)
	}
	return absPath, nil
}

// validatePath performs simple checks to verify if a file exists or not.
func validatePath(p string, kind fileKind) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(p)), ".")
	if !slices.Contains(kind.extensions, ext) {
		return fmt.Errorf("file must have one of the extensions: .%s", strings.Join(kind.extensions, ", ."))
	}
	if _, err := os.Stat(p); err != nil {
		return fmt.Errorf("cannot stat file: %w", err)
	}
	return nil
}

// melodyName derives the table name from an output path, e.g.
// "out/badapple_melody.h" becomes "badapple_melody".
func melodyName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// withSuffix inserts suffix before the extension of path.
func withSuffix(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// logWarnings prints the non-fatal conditions met while building a melody.
func logWarnings(ws []melody.Warning) {
	if len(ws) == 0 {
		return
	}
	logger.Printf("%d warnings produced:", len(ws))
	for _, w := range ws {
		logger.Printf("  %v", w)
	}
}

// writeHeader writes m as a C header to path.
func writeHeader(m *melody.Melody, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer file.Close()

	if err := m.WriteHeader(file); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	logger.Printf("Wrote %s with %d entries", path, len(m.Segments))
	return file.Close()
}
