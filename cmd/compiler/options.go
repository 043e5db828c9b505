package main

import (
	"github.com/QEStudios/BuzzerCompiler/config"
	"github.com/QEStudios/BuzzerCompiler/melody"
	"github.com/spf13/pflag"
)

// pipelineOptions binds the pipeline configuration to command-line flags.
type pipelineOptions struct {
	configPath string
	flags      melody.Config
}

func (o *pipelineOptions) register(fs *pflag.FlagSet) {
	def := melody.DefaultConfig()
	fs.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file (flags override its values)")
	fs.IntVar(&o.flags.Denom, "denom", def.Denom, "quantization denominator, the grid unit is 1/N of a beat")
	fs.IntVar(&o.flags.MinMs, "min-ms", def.MinMs, "shortest duration kept, shorter notes are absorbed")
	fs.IntVar(&o.flags.MaxNotes, "max-notes", def.MaxNotes, "maximum number of table entries")
	fs.IntVar(&o.flags.MaxCoarsening, "max-coarsening", def.MaxCoarsening, "how many times the grid may be doubled to fit max-notes")
}

// resolve builds the configuration: defaults, then the config file, then any
// flag that was set explicitly.
func (o *pipelineOptions) resolve(fs *pflag.FlagSet) (melody.Config, error) {
	cfg := melody.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return melody.Config{}, err
		}
	}

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "denom":
			cfg.Denom = o.flags.Denom
		case "min-ms":
			cfg.MinMs = o.flags.MinMs
		case "max-notes":
			cfg.MaxNotes = o.flags.MaxNotes
		case "max-coarsening":
			cfg.MaxCoarsening = o.flags.MaxCoarsening
		case "monophonic":
			cfg.MonophonicOnly = o.flags.MonophonicOnly
		}
	})

	return cfg, cfg.Validate()
}
