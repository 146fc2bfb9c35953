// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package corpus generates x86 disassembler test corpora by decoding every
// combination of the 3 leading bytes of a fixed pattern.
package corpus

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/google/x86corpus/pkg/disasm"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPC = 0x401000

	// Each prefix byte runs over 256 consecutive values starting at 0x10,
	// so byte values wrap around from 0xff to 0x0f.
	prefixFirst = 0x10
	prefixCount = 256
	prefixEnd   = prefixFirst + prefixCount

	TotalAttempts  = prefixCount * prefixCount * prefixCount
	ProgressPeriod = 10000
)

type Config struct {
	Mode disasm.Mode
	PC   uint64
	// Procs is the number of decode workers. The output does not depend on it.
	Procs int
	// Progress is called every ProgressPeriod attempts with the number of attempts so far.
	Progress func(attempts int)
}

func DefaultConfig() Config {
	return Config{
		Mode:  disasm.Mode32,
		PC:    DefaultPC,
		Procs: 1,
	}
}

type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Summary struct {
	Attempts   int
	Records    int
	Unique     int
	Duplicates int
	Fallbacks  int
}

// OpenError is returned when the corpus file cannot be created.
type OpenError struct {
	Path string
	Err  error
}

func (err *OpenError) Error() string {
	return fmt.Sprintf("cannot open file %v: %v", err.Path, err.Err)
}

func (err *OpenError) Unwrap() error {
	return err.Err
}

// Generator performs a single enumeration pass.
type Generator struct {
	engine disasm.Engine
	cfg    Config
	opts   disasm.Options
	state  atomic.Int32
	keys   *KeySet
}

func NewGenerator(engine disasm.Engine, cfg Config) *Generator {
	if cfg.Procs < 1 {
		cfg.Procs = 1
	}
	return &Generator{
		engine: engine,
		cfg:    cfg,
		opts: disasm.Options{
			Mode:   cfg.Mode,
			Syntax: disasm.SyntaxIntel,
			Vendor: disasm.VendorIntel,
			PC:     cfg.PC,
		},
		keys: NewKeySet(),
	}
}

func (g *Generator) State() State {
	return State(g.state.Load())
}

func (g *Generator) validate() error {
	if g.cfg.Mode != disasm.Mode32 && g.cfg.Mode != disasm.Mode64 {
		return fmt.Errorf("unsupported decode mode %v", g.cfg.Mode)
	}
	if g.State() != StateIdle {
		return fmt.Errorf("generator is %v", g.State())
	}
	return nil
}

// GenerateFile creates (or truncates) filename and writes the corpus into it.
// If the file cannot be created, the error is *OpenError and no enumeration happens.
func GenerateFile(ctx context.Context, filename string, engine disasm.Engine, cfg Config) (*Summary, error) {
	g := NewGenerator(engine, cfg)
	if err := g.validate(); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		g.state.Store(int32(StateFailed))
		return nil, &OpenError{Path: filename, Err: err}
	}
	sum, err := g.Run(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close %v: %w", filename, closeErr)
	}
	return sum, err
}

// Run enumerates all 256^3 prefix combinations and writes corpus records to w.
// The returned summary is valid even if Run fails midway.
func (g *Generator) Run(ctx context.Context, w io.Writer) (*Summary, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}
	g.state.Store(int32(StateRunning))
	sum := new(Summary)
	cw := NewWriter(w)
	var err error
	if g.cfg.Procs == 1 {
		err = g.runSequential(ctx, cw, sum)
	} else {
		err = g.runParallel(ctx, cw, sum)
	}
	if err != nil {
		g.state.Store(int32(StateFailed))
		return sum, err
	}
	g.state.Store(int32(StateFinished))
	return sum, nil
}

func (g *Generator) runSequential(ctx context.Context, cw *Writer, sum *Summary) error {
	pattern := NewPattern()
	for p0 := prefixFirst; p0 < prefixEnd; p0++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for p1 := prefixFirst; p1 < prefixEnd; p1++ {
			for p2 := prefixFirst; p2 < prefixEnd; p2++ {
				pattern.SetPrefix(p0, p1, p2)
				if err := g.step(cw, &pattern, g.decode(pattern[:]), sum); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// decodedSlice holds decode results for all combinations with the same first byte,
// in enumeration order.
type decodedSlice struct {
	p0    int
	insts []*disasm.Inst
	done  chan struct{}
}

// runParallel decodes p0 slices on a bounded worker pool, but dedups and emits
// them strictly in enumeration order, so the output matches runSequential.
func (g *Generator) runParallel(ctx context.Context, cw *Writer, sum *Summary) error {
	slices := make(chan *decodedSlice, g.cfg.Procs)
	stop := make(chan struct{})
	var eg errgroup.Group
	eg.SetLimit(g.cfg.Procs)
	go func() {
		defer close(slices)
		for p0 := prefixFirst; p0 < prefixEnd; p0++ {
			sl := &decodedSlice{p0: p0, done: make(chan struct{})}
			select {
			case slices <- sl:
			case <-stop:
				return
			}
			eg.Go(func() error {
				g.decodeSlice(sl)
				close(sl.done)
				return nil
			})
		}
	}()
	var err error
	for sl := range slices {
		if err = ctx.Err(); err != nil {
			break
		}
		<-sl.done
		if err = g.emitSlice(cw, sl, sum); err != nil {
			break
		}
	}
	if err != nil {
		close(stop)
		for range slices {
		}
	}
	eg.Wait()
	return err
}

func (g *Generator) decodeSlice(sl *decodedSlice) {
	pattern := NewPattern()
	sl.insts = make([]*disasm.Inst, 0, prefixCount*prefixCount)
	for p1 := prefixFirst; p1 < prefixEnd; p1++ {
		for p2 := prefixFirst; p2 < prefixEnd; p2++ {
			pattern.SetPrefix(sl.p0, p1, p2)
			sl.insts = append(sl.insts, g.decode(pattern[:]))
		}
	}
}

func (g *Generator) emitSlice(cw *Writer, sl *decodedSlice, sum *Summary) error {
	pattern := NewPattern()
	i := 0
	for p1 := prefixFirst; p1 < prefixEnd; p1++ {
		for p2 := prefixFirst; p2 < prefixEnd; p2++ {
			pattern.SetPrefix(sl.p0, p1, p2)
			if err := g.step(cw, &pattern, sl.insts[i], sum); err != nil {
				return err
			}
			i++
		}
	}
	return nil
}

// decode returns nil if buf does not start with a valid instruction.
func (g *Generator) decode(buf []byte) *disasm.Inst {
	inst, err := g.engine.Decode(buf, g.opts)
	if err != nil || inst == nil || inst.Len <= 0 || inst.Len > len(buf) ||
		strings.HasPrefix(inst.Text, invalidText) {
		return nil
	}
	return inst
}

func (g *Generator) step(cw *Writer, pattern *Pattern, inst *disasm.Inst, sum *Summary) error {
	if inst == nil {
		if err := cw.Emit(pattern[:FallbackSize], FallbackText); err != nil {
			return err
		}
		sum.Records++
		sum.Fallbacks++
		statRecords.Add(1)
		statFallbacks.Add(1)
	} else if g.keys.IsNew(MakeKey(inst)) {
		if err := cw.Emit(pattern[:inst.Len], Canonicalize(inst.Text)); err != nil {
			return err
		}
		sum.Records++
		sum.Unique++
		statRecords.Add(1)
		statUnique.Add(1)
		statInsnLen.Add(inst.Len)
	} else {
		sum.Duplicates++
		statDuplicates.Add(1)
	}
	sum.Attempts++
	statAttempts.Add(1)
	if sum.Attempts%ProgressPeriod == 0 && g.cfg.Progress != nil {
		g.cfg.Progress(sum.Attempts)
	}
	return nil
}
