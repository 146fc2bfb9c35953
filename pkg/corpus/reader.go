// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Reader reads records back from a corpus file.
type Reader struct {
	s    *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{s: bufio.NewScanner(r)}
}

// Next returns the next record or io.EOF.
func (r *Reader) Next() (*Record, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	r.line++
	rec, err := ParseRecord(r.s.Text())
	if err != nil {
		return nil, fmt.Errorf("line %v: %w", r.line, err)
	}
	return rec, nil
}

// Line returns the number of the last line returned by Next.
func (r *Reader) Line() int {
	return r.line
}

func ParseRecord(line string) (*Record, error) {
	data, text, ok := strings.Cut(line, " ")
	if !ok || data == "" || text == "" {
		return nil, fmt.Errorf("malformed record %q", line)
	}
	if strings.ToLower(data) != data {
		return nil, fmt.Errorf("bytes are not lowercase hex: %q", data)
	}
	b, err := hex.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("bad record bytes %q: %w", data, err)
	}
	return &Record{Bytes: b, Text: text}, nil
}
