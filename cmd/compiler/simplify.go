package main

import (
	"fmt"
	"os"

	"github.com/QEStudios/BuzzerCompiler/melody"
	"github.com/QEStudios/BuzzerCompiler/parser/header"
	"github.com/spf13/cobra"
)

func init() {
	simplifyOpts.register(simplifyCmd.Flags())
	simplifyCmd.Flags().StringVarP(&simplifyOutput, "out", "o", "", "output header path (default: <input>_simple.h)")
	simplifyCmd.Flags().BoolVar(&simplifyShow, "show", false, "print the resulting table")
	rootCmd.AddCommand(simplifyCmd)
}

var (
	simplifyOpts   pipelineOptions
	simplifyOutput string
	simplifyShow   bool
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [header-file]",
	Short: "Simplifies an existing melody header",
	Long: `Reads the table of a previously generated melody header, quantizes it to a
grid derived from the median duration and reduces it to fit the budget.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := simplifyOpts.resolve(cmd.Flags())
		if err != nil {
			return err
		}
		return runSimplify(cfg, args)
	},
}

func runSimplify(cfg melody.Config, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w", err)
	}

	path, err := choosePath(cwd, args, headerFile)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	parsed, err := header.NewParser(file, logger).Parse()
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	m, err := melody.Simplify(parsed.Segments, cfg)
	if err != nil {
		return fmt.Errorf("simplify error: %w", err)
	}

	out := simplifyOutput
	if out == "" {
		out = withSuffix(path, "_simple")
	}
	m.Name = melodyName(out)

	logger.Printf("Using quantization unit %d ms", m.Unit)
	logWarnings(m.Warnings)
	if simplifyShow {
		fmt.Println(m)
	}

	if err := writeHeader(m, out); err != nil {
		return err
	}
	logger.Printf("Simplified %d -> %d entries", len(parsed.Segments), len(m.Segments))
	return nil
}
