// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

import (
	"strings"
)

const (
	// FallbackText is written for combinations that the engine cannot decode.
	FallbackText = "db"
	invalidText  = "invalid"
)

var strippedTokens = []string{"o16 ", "a16 ", "a32 "}

// Mnemonic spellings that engines disagree on.
// Only the first entry that changes the text is applied.
var renames = []struct {
	from, to string
}{
	{"retn", "ret"},
	{"retnw", "ret"},
	{"iretw", "iret"},
	{"pushfw", "pushf"},
	{"popfw", "popf"},
	{"enterw", "enter"},
	{"cmovae", "cmovnb"},
	{"cmova", "cmovnbe"},
	{"cmovge", "cmovnl"},
	{"cmovg", "cmovnle"},
	{"setae", "setnb"},
	{"seta", "setnbe"},
	{"setge", "setnl"},
	{"setg", "setnle"},
	{"leavew", "leave"},
	{"int1", "int 01"},
	{"int3", "int 03"},
}

var segments = []string{"cs", "es", "fs", "gs", "ss", "ds"}

// Canonicalize normalizes engine text so that renderings of the same
// instruction shape compare equal across engines and modes.
func Canonicalize(text string) string {
	s := replaceAll(text, "0x", "")
	for _, tok := range strippedTokens {
		s = replaceAll(s, tok, "")
	}
	for _, r := range renames {
		if s1 := replaceAll(s, r.from, r.to); s1 != s {
			s = s1
			break
		}
	}
	s = strings.TrimSpace(s)
	return stripSegment(s)
}

// replaceAll keeps replacing the first occurrence until there is none,
// so removals that join into a new occurrence are removed as well.
// to must not contain from.
func replaceAll(s, from, to string) string {
	for {
		pos := strings.Index(s, from)
		if pos == -1 {
			return s
		}
		s = s[:pos] + to + s[pos+len(from):]
	}
}

// stripSegment removes at most one segment override token, either leading
// ("cs mov ...") or embedded ("rep cs movsb").
func stripSegment(s string) string {
	for _, seg := range segments {
		if strings.HasPrefix(s, seg+" ") {
			return s[len(seg)+1:]
		}
		if pos := strings.Index(s, " "+seg+" "); pos != -1 {
			return s[:pos] + s[pos+len(seg)+1:]
		}
	}
	return s
}
