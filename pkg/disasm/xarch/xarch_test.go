// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package xarch

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/x86corpus/pkg/disasm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"
)

func decode(t *testing.T, mode disasm.Mode, text string) (*disasm.Inst, error) {
	data, err := hex.DecodeString(text)
	require.NoError(t, err)
	return Engine{}.Decode(data, disasm.Options{Mode: mode, PC: 0x401000})
}

func TestDecodeSimple(t *testing.T) {
	tests := []struct {
		mode disasm.Mode
		text string
		len  int
		asm  string
	}{
		{disasm.Mode32, "90111213", 1, "nop"},
		{disasm.Mode64, "90111213", 1, "nop"},
		{disasm.Mode32, "c3111213", 1, "ret"},
		{disasm.Mode32, "b801000000", 5, "mov eax, 0x1"},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			inst, err := decode(t, test.mode, test.text)
			require.NoError(t, err)
			assert.Equal(t, test.len, inst.Len)
			assert.Equal(t, test.asm, inst.Text)
		})
	}
}

func TestDecodeIgnoresValues(t *testing.T) {
	inst1, err := decode(t, disasm.Mode32, "b801000000")
	require.NoError(t, err)
	inst2, err := decode(t, disasm.Mode32, "b8ffffff7f")
	require.NoError(t, err)
	assert.NotEqual(t, inst1.Text, inst2.Text)
	inst1.Text, inst2.Text = "", ""
	if diff := cmp.Diff(inst1, inst2); diff != "" {
		t.Fatalf("instructions differ only in immediate, but shapes differ:\n%s", diff)
	}
	assert.Equal(t, disasm.Operand{Kind: disasm.OperandReg, Base: disasm.Reg(x86asm.EAX)}, inst1.Operands[0])
	assert.Equal(t, disasm.Operand{Kind: disasm.OperandImm}, inst1.Operands[1])
	assert.Equal(t, disasm.Operand{}, inst1.Operands[2])
}

func TestDecodeMemory(t *testing.T) {
	// mov eax, dword ptr [eax+ecx*4+0x10]
	inst, err := decode(t, disasm.Mode32, "8b448810")
	require.NoError(t, err)
	assert.Equal(t, 4, inst.Len)
	assert.Equal(t, disasm.Operand{
		Kind:  disasm.OperandMem,
		Base:  disasm.Reg(x86asm.EAX),
		Index: disasm.Reg(x86asm.ECX),
		Scale: 4,
	}, inst.Operands[1])
}

func TestDecodePrefixes(t *testing.T) {
	tests := []struct {
		text  string
		field func(p disasm.Prefixes) uint8
		want  uint8
	}{
		{"f00100", func(p disasm.Prefixes) uint8 { return p.Lock }, 0xf0},
		{"f3a4", func(p disasm.Prefixes) uint8 { return p.Rep }, 0xf3},
		{"f3a6", func(p disasm.Prefixes) uint8 { return p.Repe }, 0xf3},
		{"f2ae", func(p disasm.Prefixes) uint8 { return p.Repne }, 0xf2},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			inst, err := decode(t, disasm.Mode32, test.text)
			require.NoError(t, err)
			assert.Equal(t, test.want, test.field(inst.Prefixes))
		})
	}
}

func TestDecodeRex(t *testing.T) {
	// mov rax, rcx
	inst, err := decode(t, disasm.Mode64, "4889c8")
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Len)
	assert.Equal(t, uint8(0x48), inst.Prefixes.Rex)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := decode(t, disasm.Mode32, "b801")
	assert.True(t, errors.Is(err, disasm.ErrInvalid), "got %v", err)
	_, err = decode(t, disasm.Mode32, "")
	assert.True(t, errors.Is(err, disasm.ErrInvalid), "got %v", err)
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Engine{}.Decode([]byte{0x90}, disasm.Options{Mode: 16})
	require.Error(t, err)
	assert.False(t, errors.Is(err, disasm.ErrInvalid))
}

func TestRegistered(t *testing.T) {
	engine, err := disasm.Lookup(Name)
	require.NoError(t, err)
	assert.Equal(t, Engine{}, engine)
}
