// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package corpus

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
)

type Record struct {
	Bytes []byte
	Text  string
}

func (rec *Record) IsFallback() bool {
	return rec.Text == FallbackText
}

// Writer appends corpus lines of the form "<lowercase hex> <text>\n".
// Every record is flushed to the underlying writer before Emit returns.
type Writer struct {
	w       *bufio.Writer
	records int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Emit(data []byte, text string) error {
	var buf [2 * PatternSize]byte
	n := hex.EncodedLen(len(data))
	if n <= len(buf) {
		hex.Encode(buf[:n], data)
		w.w.Write(buf[:n])
	} else {
		w.w.WriteString(hex.EncodeToString(data))
	}
	w.w.WriteByte(' ')
	w.w.WriteString(text)
	w.w.WriteByte('\n')
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to write corpus record: %w", err)
	}
	w.records++
	return nil
}

func (w *Writer) Records() int {
	return w.records
}

func (rec *Record) String() string {
	return hex.EncodeToString(rec.Bytes) + " " + rec.Text
}
