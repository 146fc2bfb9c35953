// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/x86corpus/pkg/disasm"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const maxProblems = 100

type CheckReport struct {
	Records      int
	Fallbacks    int
	Instructions int
	// Failures counts all bad records, Problems describes at most the first 100 of them.
	Failures int
	Problems []string
}

func (rep *CheckReport) OK() bool {
	return rep.Failures == 0
}

func (rep *CheckReport) addf(line int, msg string, args ...any) {
	rep.Failures++
	if len(rep.Problems) < maxProblems {
		rep.Problems = append(rep.Problems, fmt.Sprintf("line %v: ", line)+fmt.Sprintf(msg, args...))
	}
}

// Check validates a corpus against the engine that supposedly produced it:
// fallback records have the fixed width, every instruction record decodes to exactly
// its bytes with the recorded canonical text, and no two instruction records share a key.
// The returned error is only about reading r; bad records are reported in CheckReport.
func Check(r io.Reader, engine disasm.Engine, opts disasm.Options) (*CheckReport, error) {
	rep := new(CheckReport)
	seen := make(map[InsnDef]int)
	dmp := diffmatchpatch.New()
	cr := NewReader(r)
	for {
		rec, err := cr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, err
		}
		rep.Records++
		line := cr.Line()
		if rec.IsFallback() {
			rep.Fallbacks++
			if len(rec.Bytes) != FallbackSize {
				rep.addf(line, "fallback record has %v bytes, want %v", len(rec.Bytes), FallbackSize)
			}
			continue
		}
		rep.Instructions++
		inst, err := engine.Decode(rec.Bytes, opts)
		if err != nil {
			rep.addf(line, "%v does not decode: %v", rec, err)
			continue
		}
		if inst.Len != len(rec.Bytes) {
			rep.addf(line, "%v decodes to %v bytes", rec, inst.Len)
			continue
		}
		if text := Canonicalize(inst.Text); text != rec.Text {
			rep.addf(line, "text mismatch: %v", renderDiff(dmp.DiffMain(rec.Text, text, false)))
		}
		key := MakeKey(inst)
		if prev, ok := seen[key]; ok {
			rep.addf(line, "%v duplicates instruction on line %v", rec, prev)
			continue
		}
		seen[key] = line
	}
	return rep, nil
}

// renderDiff shows deletions from the recorded text as [-x-] and insertions as {+x+}.
func renderDiff(diffs []diffmatchpatch.Diff) string {
	buf := new(strings.Builder)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			buf.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(buf, "[-%v-]", d.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(buf, "{+%v+}", d.Text)
		}
	}
	return buf.String()
}
