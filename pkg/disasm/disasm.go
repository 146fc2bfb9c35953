// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package disasm defines the boundary between corpus generation and a concrete x86 decoder.
// Decoders register themselves in Engines, similar to how instruction sets register in ifuzz.
package disasm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Mode int

const (
	Mode32 Mode = 32
	Mode64 Mode = 64
)

func (mode Mode) String() string {
	switch mode {
	case Mode32:
		return "x86"
	case Mode64:
		return "x64"
	}
	return fmt.Sprintf("Mode(%d)", int(mode))
}

// ParseMode selects Mode64 if the first 3 characters of s are "x64" in any case.
// Anything else, including an empty string, selects Mode32.
func ParseMode(s string) Mode {
	if len(s) >= 3 && strings.EqualFold(s[:3], "x64") {
		return Mode64
	}
	return Mode32
}

type Syntax int

const (
	SyntaxIntel Syntax = iota
)

type Vendor int

const (
	VendorIntel Vendor = iota
)

type Options struct {
	Mode   Mode
	Syntax Syntax
	Vendor Vendor
	PC     uint64 // virtual address of the first buffer byte
}

type (
	Mnemonic uint32
	Reg      uint16
)

const RegNone Reg = 0

type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandReg
	OperandMem
	OperandPtr   // far pointer segment:offset
	OperandImm   // immediate
	OperandRel   // pc-relative target
	OperandConst // implicit constant, e.g. shift by 1
)

// Operand describes the shape of an instruction argument.
// Immediate, displacement and target values are deliberately absent.
type Operand struct {
	Kind  OperandKind
	Base  Reg
	Index Reg
	Scale uint8
}

// Prefixes mirrors the decoder prefix state. Each field holds the raw prefix byte or 0.
type Prefixes struct {
	Rex   uint8
	Seg   uint8
	Opr   uint8
	Adr   uint8
	Lock  uint8
	Rep   uint8
	Repe  uint8
	Repne uint8
	Insn  uint8 // mandatory prefix that selects the opcode
}

type Inst struct {
	Len      int
	Prefixes Prefixes
	Mnemonic Mnemonic
	Operands [3]Operand
	Text     string // native engine syntax, not canonicalized
}

// ErrInvalid is returned by engines when the bytes do not form a valid instruction.
var ErrInvalid = errors.New("invalid instruction")

// Engine decodes a single instruction at the start of buf.
// Decode must be deterministic and, if the engine is used from several
// goroutines, safe for concurrent use.
type Engine interface {
	Decode(buf []byte, opts Options) (*Inst, error)
}

var Engines = make(map[string]Engine)

func Register(name string, engine Engine) {
	if Engines[name] != nil {
		panic(fmt.Sprintf("engine %q is already registered", name))
	}
	Engines[name] = engine
}

func Lookup(name string) (Engine, error) {
	engine := Engines[name]
	if engine == nil {
		var names []string
		for name := range Engines {
			names = append(names, name)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown decode engine %q, supported: %v", name, names)
	}
	return engine, nil
}
