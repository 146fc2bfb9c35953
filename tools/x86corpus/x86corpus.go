// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// x86corpus decodes every combination of 3 leading bytes of a fixed 20-byte pattern
// and writes one line per structurally new instruction into a corpus file.
// Combinations that do not decode produce a 10-byte "db" line.
//
// Usage:
//
//	x86corpus [flags] <output_file> [x86|x64]
//
// With -check the file is not generated but validated against the decode engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/x86corpus/pkg/config"
	"github.com/google/x86corpus/pkg/corpus"
	"github.com/google/x86corpus/pkg/disasm"
	"github.com/google/x86corpus/pkg/disasm/xarch"
	"github.com/google/x86corpus/pkg/log"
	"github.com/google/x86corpus/pkg/stat"
	"github.com/google/x86corpus/pkg/tool"
)

var (
	flagProcs  = flag.Int("procs", 1, "number of parallel decode workers")
	flagHTTP   = flag.String("http", "", "serve metrics on this address while running (e.g. localhost:8080)")
	flagConfig = flag.String("config", "", "JSON config file with output, mode, procs, http and engine fields")
	flagCheck  = flag.Bool("check", false, "validate an existing corpus instead of generating one")
	flagEngine = flag.String("engine", xarch.Name, "decode engine")
)

const banner = "x86 Disassembly Generator"

// Config is the -config file format.
// Explicitly set flags and positional arguments take precedence over it.
type Config struct {
	Output string `json:"output"`
	Mode   string `json:"mode"`
	Procs  int    `json:"procs"`
	HTTP   string `json:"http"`
	Engine string `json:"engine"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: x86corpus [flags] <output_file> [x86|x64]\n")
		flag.PrintDefaults()
	}
	log.EnableLogCaching(1000)
	log.Logf(0, "%v", banner)
	args, done := tool.Init(0, 2)
	cfg, err := loadConfig(*flagConfig, flag.CommandLine, args)
	if err != nil {
		if tool.ExitCode(err) == tool.ExitUsage {
			flag.Usage()
		}
		tool.Exitf(tool.ExitCode(err), "ERROR %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, cfg, *flagCheck)
	stop()
	done()
	if err != nil {
		tool.Exitf(tool.ExitCode(err), "ERROR %v", err)
	}
}

func loadConfig(configFile string, set *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{
		Mode:   disasm.Mode32.String(),
		Procs:  1,
		Engine: xarch.Name,
	}
	if configFile != "" {
		if err := config.LoadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}
	set.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch f.Name {
		case "procs":
			cfg.Procs = getter.Get().(int)
		case "http":
			cfg.HTTP = getter.Get().(string)
		case "engine":
			cfg.Engine = getter.Get().(string)
		}
	})
	if len(args) > 0 {
		cfg.Output = args[0]
	}
	if len(args) > 1 {
		cfg.Mode = args[1]
	}
	if cfg.Output == "" {
		return nil, tool.WithExitCode(tool.ExitUsage,
			fmt.Errorf("%w: no output file specified", tool.ErrUsage))
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *Config, check bool) error {
	engine, err := disasm.Lookup(cfg.Engine)
	if err != nil {
		return tool.WithExitCode(tool.ExitUsage, err)
	}
	mode := disasm.ParseMode(cfg.Mode)
	if cfg.HTTP != "" {
		go func() {
			if err := serveHTTP(ctx, cfg.HTTP); err != nil {
				log.Logf(0, "http server failed: %v", err)
			}
		}()
	}
	if check {
		return checkCorpus(cfg.Output, engine, mode)
	}
	log.Logf(0, "generating %v corpus into %v with %v", mode, cfg.Output, cfg.Engine)
	genCfg := corpus.DefaultConfig()
	genCfg.Mode = mode
	genCfg.Procs = cfg.Procs
	genCfg.Progress = func(attempts int) {
		log.Logf(0, "%v opcodes processed", attempts)
	}
	sum, err := corpus.GenerateFile(ctx, cfg.Output, engine, genCfg)
	var openErr *corpus.OpenError
	if errors.As(err, &openErr) {
		return tool.WithExitCode(tool.ExitIOError, err)
	}
	if err != nil {
		return fmt.Errorf("corpus generation failed: %w", err)
	}
	log.Logf(0, "Finished: %v records, %v unique instructions, %v fallbacks, %v duplicates skipped",
		sum.Records, sum.Unique, sum.Fallbacks, sum.Duplicates)
	printStats()
	return nil
}

func checkCorpus(filename string, engine disasm.Engine, mode disasm.Mode) error {
	f, err := os.Open(filename)
	if err != nil {
		return tool.WithExitCode(tool.ExitIOError, &corpus.OpenError{Path: filename, Err: err})
	}
	defer f.Close()
	opts := disasm.Options{
		Mode:   mode,
		Syntax: disasm.SyntaxIntel,
		Vendor: disasm.VendorIntel,
		PC:     corpus.DefaultPC,
	}
	rep, err := corpus.Check(f, engine, opts)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", filename, err)
	}
	log.Logf(0, "checked %v records: %v instructions, %v fallbacks",
		rep.Records, rep.Instructions, rep.Fallbacks)
	for _, problem := range rep.Problems {
		log.Logf(0, "%v", problem)
	}
	if !rep.OK() {
		return fmt.Errorf("corpus check failed: %v bad records", rep.Failures)
	}
	log.Logf(0, "Finished")
	return nil
}

func printStats() {
	for _, s := range stat.Collect(stat.Console) {
		log.Logf(0, "%-16v %v", s.Name+":", s.Value)
	}
}
