// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

import (
	"github.com/google/x86corpus/pkg/stat"
)

var (
	statAttempts = stat.New("attempts", "Enumerated prefix combinations",
		stat.Console, stat.Rate{}, stat.Prometheus("x86corpus_attempts"))
	statRecords = stat.New("records", "Corpus lines written",
		stat.Console, stat.Prometheus("x86corpus_records"))
	statUnique = stat.New("unique", "Instructions with a new structural key",
		stat.Console, stat.Prometheus("x86corpus_unique"))
	statDuplicates = stat.New("duplicates", "Decoded instructions skipped as already seen",
		stat.Prometheus("x86corpus_duplicates"))
	statFallbacks = stat.New("fallbacks", "Combinations that did not decode",
		stat.Console, stat.Prometheus("x86corpus_fallbacks"))
	statInsnLen = stat.New("insn length", "Length of unique instructions in bytes",
		stat.Console, stat.Distribution{})
)
