// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package xarch implements disasm.Engine on top of golang.org/x/arch/x86/x86asm.
package xarch

import (
	"fmt"
	"strings"

	"github.com/google/x86corpus/pkg/disasm"
	"golang.org/x/arch/x86/x86asm"
)

const Name = "x86asm"

func init() {
	disasm.Register(Name, Engine{})
}

// Engine is stateless and safe for concurrent use.
type Engine struct{}

// x86asm spells size overrides differently from the tokens the corpus canonicalizer strips.
var sizeTokens = strings.NewReplacer(
	"data16 ", "o16 ",
	"data32 ", "o32 ",
	"addr16 ", "a16 ",
	"addr32 ", "a32 ",
)

func (Engine) Decode(buf []byte, opts disasm.Options) (*disasm.Inst, error) {
	if opts.Mode != disasm.Mode32 && opts.Mode != disasm.Mode64 {
		return nil, fmt.Errorf("unsupported mode %v", opts.Mode)
	}
	if opts.Syntax != disasm.SyntaxIntel || opts.Vendor != disasm.VendorIntel {
		return nil, fmt.Errorf("only intel syntax and vendor are supported")
	}
	xi, err := x86asm.Decode(buf, int(opts.Mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", disasm.ErrInvalid, err)
	}
	if xi.Op == 0 || xi.Len == 0 || xi.Len > len(buf) {
		return nil, disasm.ErrInvalid
	}
	inst := &disasm.Inst{
		Len:      xi.Len,
		Prefixes: prefixes(&xi),
		Mnemonic: disasm.Mnemonic(xi.Op),
		Text:     sizeTokens.Replace(x86asm.IntelSyntax(xi, opts.PC, nil)),
	}
	n := 0
	for _, arg := range xi.Args {
		if arg == nil || n == len(inst.Operands) {
			break
		}
		inst.Operands[n] = operand(arg)
		n++
	}
	return inst, nil
}

func prefixes(xi *x86asm.Inst) disasm.Prefixes {
	var pfx disasm.Prefixes
	for i := 0; i < len(xi.Prefix); i++ {
		p := xi.Prefix[i]
		if p == 0 {
			break
		}
		if p.IsVEX() {
			// The VEX payload bytes follow the escape byte in the prefix list.
			if p&0xFF == x86asm.PrefixVEX3Bytes {
				i++
			}
			i++
			continue
		}
		b := uint8(p & 0xFF)
		if p.IsREX() {
			pfx.Rex = b
			continue
		}
		switch b {
		case 0x26, 0x2e, 0x36, 0x3e, 0x64, 0x65:
			pfx.Seg = b
		case 0x66:
			pfx.Opr = b
		case 0x67:
			pfx.Adr = b
		case 0xf0:
			pfx.Lock = b
		case 0xf2:
			pfx.Repne = b
		case 0xf3:
			if isCompareString(xi.Op) {
				pfx.Repe = b
			} else {
				pfx.Rep = b
			}
		}
		if p&x86asm.PrefixImplicit != 0 && (b == 0x66 || b == 0xf2 || b == 0xf3) {
			pfx.Insn = b
		}
	}
	return pfx
}

func isCompareString(op x86asm.Op) bool {
	switch op {
	case x86asm.CMPSB, x86asm.CMPSW, x86asm.CMPSD, x86asm.CMPSQ,
		x86asm.SCASB, x86asm.SCASW, x86asm.SCASD, x86asm.SCASQ:
		return true
	}
	return false
}

func operand(arg x86asm.Arg) disasm.Operand {
	switch a := arg.(type) {
	case x86asm.Reg:
		return disasm.Operand{Kind: disasm.OperandReg, Base: disasm.Reg(a)}
	case x86asm.Mem:
		return disasm.Operand{
			Kind:  disasm.OperandMem,
			Base:  disasm.Reg(a.Base),
			Index: disasm.Reg(a.Index),
			Scale: a.Scale,
		}
	case x86asm.Rel:
		return disasm.Operand{Kind: disasm.OperandRel}
	case x86asm.Imm:
		return disasm.Operand{Kind: disasm.OperandImm}
	}
	panic(fmt.Sprintf("unknown x86asm argument %T", arg))
}
