// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/google/x86corpus/pkg/disasm"
)

const (
	opEncReg = 0x80000000
	opEncMem = 0x40000000

	prefixFields = 9
	keySize      = prefixFields + 4 + 3*4
)

// InsnDef is a structural fingerprint of a decoded instruction:
// prefix bytes, mnemonic and operand shapes, but never operand values.
// Keys are ordered by plain byte comparison; multi-byte fields are big-endian.
type InsnDef [keySize]byte

func MakeKey(inst *disasm.Inst) InsnDef {
	var key InsnDef
	pfx := inst.Prefixes
	copy(key[:prefixFields], []byte{
		pfx.Rex, pfx.Seg, pfx.Opr, pfx.Adr, pfx.Lock,
		pfx.Rep, pfx.Repe, pfx.Repne, pfx.Insn,
	})
	binary.BigEndian.PutUint32(key[prefixFields:], uint32(inst.Mnemonic))
	for i, op := range inst.Operands {
		binary.BigEndian.PutUint32(key[prefixFields+4+i*4:], encodeOperand(op))
	}
	return key
}

func encodeOperand(op disasm.Operand) uint32 {
	switch op.Kind {
	case disasm.OperandReg:
		return opEncReg | uint32(op.Base)
	case disasm.OperandMem:
		return opEncMem | uint32(op.Base) | uint32(op.Index)<<8 | uint32(op.Scale)<<16
	default:
		return uint32(op.Kind)
	}
}

func (key InsnDef) Compare(other InsnDef) int {
	return bytes.Compare(key[:], other[:])
}

func (key InsnDef) String() string {
	return hex.EncodeToString(key[:])
}

// KeySet is an ordered set of keys that only grows.
type KeySet struct {
	tree *redblacktree.Tree
}

func NewKeySet() *KeySet {
	return &KeySet{tree: redblacktree.NewWith(compareKeys)}
}

func compareKeys(a, b interface{}) int {
	return a.(InsnDef).Compare(b.(InsnDef))
}

// IsNew inserts key and returns true if the set did not contain it yet.
// Put of an existing key only replaces its empty value and leaves the size unchanged.
func (ks *KeySet) IsNew(key InsnDef) bool {
	size := ks.tree.Size()
	ks.tree.Put(key, nil)
	return ks.tree.Size() != size
}

func (ks *KeySet) Len() int {
	return ks.tree.Size()
}
