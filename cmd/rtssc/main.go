// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Command rtssc generates shader programs from an rtshader_system block.
//
// Usage:
//
//	rtssc [options] <input>
//
// Settings are read from rtss.json or .rtssrc in the input's directory or
// one of its parents; flags override them.
//
// Examples:
//
//	rtssc lit.rtss                        # HLSL to stdout
//	rtssc -lang wgsl -o lit lit.rtss      # lit.vert.wgsl and lit.frag.wgsl
//	rtssc -lang wgsl -spirv -o lit lit.rtss
//	rtssc -normalize lit.rtss             # print the block as understood
//	rtssc -atlas terrain.tai lit.rtss     # sample atlased texture units
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/rtss"
	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/config"
	"github.com/gogpu/rtss/material"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/sgx"
	"github.com/gogpu/rtss/spirv"
	"github.com/gogpu/rtss/wgsl"
)

const rtssVersion = "0.1.0-dev"

// errUsage reports bad command line arguments.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	output     string
	lang       string
	configPath string
	passPath   string
	atlases    []string
	noPack     bool
	spirv      bool
	normalize  bool
	debug      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	var o options
	fs := flag.NewFlagSet("rtssc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.output, "o", "", "output file prefix (default: stdout)")
	fs.StringVar(&o.lang, "lang", "", "target language: "+strings.Join(rtss.DefaultWriters().Languages(), ", "))
	fs.StringVar(&o.configPath, "config", "", "config file (default: search from the input directory)")
	fs.StringVar(&o.passPath, "pass", "", "JSON pass description, overriding the config's pass")
	fs.Func("atlas", "texture atlas definition (.tai) file; may be repeated", func(path string) error {
		o.atlases = append(o.atlases, path)
		return nil
	})
	fs.BoolVar(&o.noPack, "nopack", false, "give every varying its own register")
	fs.BoolVar(&o.spirv, "spirv", false, "compile WGSL output to SPIR-V")
	fs.BoolVar(&o.normalize, "normalize", false, "print the block as understood instead of generating")
	fs.BoolVar(&o.debug, "debug", false, "log pipeline phases to stderr")
	fs.BoolVar(&o.version, "version", false, "print version")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, errUsage
	}
	return &o, fs.Args(), nil
}

func run(args []string, stdout, stderr io.Writer) int {
	o, rest, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if o.version {
		fmt.Fprintf(stdout, "rtssc version %s\n", rtssVersion)
		return 0
	}
	if len(rest) < 1 {
		fmt.Fprintln(stderr, "Error: no input file specified")
		return 2
	}
	if o.debug {
		rtss.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer rtss.SetLogger(nil)
	}
	if err := compile(o, rest[0], stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(o *options, inputPath string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, _, err = config.Load(filepath.Dir(inputPath))
	}
	if err != nil {
		return nil, err
	}
	cli := config.MergeOptions{Language: o.lang}
	if o.noPack {
		pack := false
		cli.PackVaryings = &pack
	}
	cfg = cfg.Merge(cli)

	if o.passPath != "" {
		data, err := os.ReadFile(o.passPath)
		if err != nil {
			return nil, err
		}
		var d material.Desc
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("%s: %w", o.passPath, err)
		}
		cfg.Pass = &d
	}
	return cfg, nil
}

func compile(o *options, inputPath string, stdout, stderr io.Writer) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	props, err := script.Parse(string(source))
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}
	cfg, err := loadConfig(o, inputPath)
	if err != nil {
		return err
	}

	desc := material.Desc{Name: strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))}
	if cfg.Pass != nil {
		desc = *cfg.Pass
	}
	pass, err := material.New(desc)
	if err != nil {
		return err
	}

	opts := rtss.DefaultOptions()
	opts.Capabilities = cfg.Capabilities()
	opts.PackVaryings = cfg.Packing()
	g, err := newGenerator(opts, o.atlases)
	if err != nil {
		return err
	}

	if o.normalize {
		text, err := g.WriteScript(pass, props)
		if err != nil {
			return err
		}
		_, err = io.WriteString(stdout, text)
		return err
	}

	res, err := g.Generate(pass, props)
	if res != nil {
		for _, d := range res.Diagnostics {
			fmt.Fprintf(stderr, "warning: %s: %v\n", inputPath, d)
		}
		for _, d := range res.Dropped {
			fmt.Fprintf(stderr, "warning: %s dropped during %s: %v\n", d.Type, d.Phase, d.Err)
		}
	}
	if err != nil {
		var verr *wgsl.ValidationError
		if errors.As(err, &verr) {
			return errors.New(verr.FormatWithContext())
		}
		return err
	}

	if o.spirv {
		return writeSPIRV(o, res.Result, stderr)
	}
	return writeSources(o, res.Result, stdout, stderr)
}

// newGenerator returns a generator whose texture atlas sampler knows the
// atlases defined in the given files.
func newGenerator(opts rtss.Options, atlasPaths []string) (*rtss.Generator, error) {
	if len(atlasPaths) == 0 {
		return rtss.NewGenerator(opts), nil
	}
	atlas := sgx.NewTextureAtlasSamplerFactory()
	for _, path := range atlasPaths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		err = atlas.AddAtlasDefinition(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	factories, err := rtss.NewFactories(atlas)
	if err != nil {
		return nil, err
	}
	return rtss.NewGeneratorWithRegistries(opts, factories, rtss.DefaultWriters()), nil
}

func extension(lang string) string {
	switch lang {
	case "glsles":
		return "glsl"
	case "msl":
		return "metal"
	}
	return lang
}

func writeSources(o *options, res backend.Result, stdout, stderr io.Writer) error {
	if o.output == "" {
		for _, src := range []backend.Source{res.Vertex, res.Fragment} {
			fmt.Fprintf(stdout, "// %s %s entry point %s\n", src.Language, src.Stage, src.EntryPoint)
			if _, err := io.WriteString(stdout, src.Code); err != nil {
				return err
			}
		}
		return nil
	}
	for _, f := range []struct {
		suffix string
		src    backend.Source
	}{{"vert", res.Vertex}, {"frag", res.Fragment}} {
		path := o.output + "." + f.suffix + "." + extension(f.src.Language)
		if err := os.WriteFile(path, []byte(f.src.Code), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %s (%d bytes)\n", path, len(f.src.Code))
	}
	return nil
}

func writeSPIRV(o *options, res backend.Result, stderr io.Writer) error {
	vertex, fragment, err := spirv.CompileResult(res, spirv.DefaultOptions())
	if err != nil {
		return err
	}
	for _, f := range []struct {
		suffix string
		words  []byte
	}{{"vert", vertex}, {"frag", fragment}} {
		if o.output == "" {
			fmt.Fprintf(stderr, "%s program: %d bytes of SPIR-V\n", f.suffix, len(f.words))
			continue
		}
		path := o.output + "." + f.suffix + ".spv"
		if err := os.WriteFile(path, f.words, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote %s (%d bytes)\n", path, len(f.words))
	}
	return nil
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: rtssc [options] <input>\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  rtssc lit.rtss                     HLSL to stdout\n")
	fmt.Fprintf(w, "  rtssc -lang glsl -o lit lit.rtss   Write lit.vert.glsl and lit.frag.glsl\n")
	fmt.Fprintf(w, "  rtssc -lang wgsl -spirv lit.rtss   Compile the WGSL output with naga\n")
}
