package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/QEStudios/BuzzerCompiler/melody"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	mid := filepath.Join(dir, "Tune.MID")
	require.NoError(t, os.WriteFile(mid, []byte("MThd"), 0o644))

	assert := assert.New(t)
	assert.NoError(validatePath(mid, midiFile))
	assert.Error(validatePath(mid, headerFile))
	assert.Error(validatePath(filepath.Join(dir, "missing.mid"), midiFile))
}

func TestChoosePathFromArgs(t *testing.T) {
	dir := t.TempDir()
	h := filepath.Join(dir, "tune.h")
	require.NoError(t, os.WriteFile(h, nil, 0o644))

	path, err := choosePath(dir, []string{h}, headerFile)
	require.NoError(t, err)
	assert.Equal(t, h, path)

	_, err = choosePath(dir, []string{filepath.Join(dir, "tune.txt")}, headerFile)
	assert.Error(t, err)
}

func TestOutputNames(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("out/badapple_melody_mono.h", withSuffix("out/badapple_melody.h", "_mono"))
	assert.Equal("tune_simple.h", withSuffix("tune.h", "_simple"))
	assert.Equal("badapple_melody", melodyName("/tmp/out/badapple_melody.h"))
}

func TestResolveOptions(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "melody.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("denom: 4\nmin_ms: 40\n"), 0o644))

	var opts pipelineOptions
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.register(fs)
	fs.BoolVar(&opts.flags.MonophonicOnly, "monophonic", false, "")
	require.NoError(t, fs.Parse([]string{"--config", cfgPath, "--min-ms", "100", "--monophonic"}))

	cfg, err := opts.resolve(fs)
	require.NoError(t, err)

	want := melody.DefaultConfig()
	want.Denom = 4
	want.MinMs = 100
	want.MonophonicOnly = true
	assert.Equal(t, want, cfg)
}

func TestResolveOptionsDefaults(t *testing.T) {
	var opts pipelineOptions
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.register(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := opts.resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, melody.DefaultConfig(), cfg)
}

func TestResolveOptionsInvalid(t *testing.T) {
	var opts pipelineOptions
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.register(fs)
	require.NoError(t, fs.Parse([]string{"--max-notes", "0"}))

	_, err := opts.resolve(fs)
	assert.Error(t, err)
}
