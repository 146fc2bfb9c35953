// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

const (
	PatternSize  = 20
	PrefixSize   = 3
	FallbackSize = 10 // bytes written for combinations that do not decode
)

// Pattern is the decoder input: 3 varying leading bytes followed by a fixed filler tail.
type Pattern [PatternSize]byte

// BuildTail returns the filler that follows the varying prefix: 0x10, 0x11, ..., 0x20.
func BuildTail() [PatternSize - PrefixSize]byte {
	var tail [PatternSize - PrefixSize]byte
	for i := range tail {
		tail[i] = byte(0x10 + i)
	}
	return tail
}

func NewPattern() Pattern {
	var p Pattern
	tail := BuildTail()
	copy(p[PrefixSize:], tail[:])
	return p
}

// SetPrefix stores the low byte of each argument into the first 3 bytes.
func (p *Pattern) SetPrefix(p0, p1, p2 int) {
	p[0] = byte(p0 & 0xff)
	p[1] = byte(p1 & 0xff)
	p[2] = byte(p2 & 0xff)
}

func (p *Pattern) Prefix() [PrefixSize]byte {
	return [PrefixSize]byte{p[0], p[1], p[2]}
}
