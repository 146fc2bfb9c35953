// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseArgs(t *testing.T) {
	type Values struct {
		Foo  bool
		Bar  int
		Args []string
	}
	type Test struct {
		args string
		vals *Values
	}
	tests := []Test{
		{"out", &Values{false, 1, []string{"out"}}},
		{"-foo -bar=2 out x64", &Values{true, 2, []string{"out", "x64"}}},
		{"-foo", nil},
		{"-qux out", nil},
		{"out x64 extra", nil},
	}
	for i, test := range tests {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			vals := new(Values)
			flags := flag.NewFlagSet("", flag.ContinueOnError)
			flags.SetOutput(io.Discard)
			flags.BoolVar(&vals.Foo, "foo", false, "")
			flags.IntVar(&vals.Bar, "bar", 1, "")
			args, err := ParseArgs(flags, strings.Split(test.args, " "), 1, 2)
			if test.vals == nil {
				if !errors.Is(err, ErrUsage) {
					t.Fatalf("want usage error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			vals.Args = args
			if diff := cmp.Diff(test.vals, vals); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		err  error
		code int
	}{
		{nil, ExitOK},
		{base, ExitFailure},
		{WithExitCode(ExitIOError, base), ExitIOError},
		{fmt.Errorf("wrapped: %w", WithExitCode(ExitUsage, base)), ExitUsage},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.code {
			t.Errorf("ExitCode(%v) = %v, want %v", test.err, got, test.code)
		}
	}
	if WithExitCode(ExitIOError, nil) != nil {
		t.Errorf("WithExitCode(nil) is not nil")
	}
}
