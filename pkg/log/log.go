// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package log provides functionality similar to standard log package with some extensions:
//   - verbosity levels
//   - global verbosity setting that can be used by multiple packages
//   - ability to keep the most recent lines in memory
package log

import (
	"flag"
	"fmt"
	golog "log"
	"strings"
	"sync"
	"time"
)

var (
	flagV       = flag.Int("vv", 0, "verbosity")
	mu          sync.Mutex
	cache       []string
	cachePos    int
	prependTime = true // for testing
)

// EnableLogCaching keeps the last maxLines lines of level 0 and 1 output in memory.
func EnableLogCaching(maxLines int) {
	mu.Lock()
	defer mu.Unlock()
	if cache != nil {
		Fatalf("log caching is already enabled")
	}
	if maxLines < 1 {
		panic("invalid maxLines")
	}
	cache = make([]string, maxLines)
}

// CachedLogOutput returns the cached lines, oldest first.
func CachedLogOutput() string {
	mu.Lock()
	defer mu.Unlock()
	buf := new(strings.Builder)
	for i := range cache {
		line := cache[(cachePos+i)%len(cache)]
		if line == "" {
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.String()
}

// V reports whether messages of level v are printed.
func V(v int) bool {
	return v <= *flagV
}

func Logf(v int, msg string, args ...any) {
	if v <= 1 {
		mu.Lock()
		if cache != nil {
			timeStr := ""
			if prependTime {
				timeStr = time.Now().Format("2006/01/02 15:04:05 ")
			}
			cache[cachePos] = timeStr + fmt.Sprintf(msg, args...)
			cachePos = (cachePos + 1) % len(cache)
		}
		mu.Unlock()
	}
	if V(v) {
		golog.Printf(msg, args...)
	}
}

func Fatalf(msg string, args ...any) {
	golog.Fatalf(msg, args...)
}
