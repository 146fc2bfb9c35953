// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package tool contains various helper utilitites useful for implementation of command line tools.
package tool

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// Process exit codes shared by the tools.
const (
	ExitOK      = 0
	ExitIOError = 1  // an input or output file cannot be opened
	ExitFailure = 2  // the tool started but failed
	ExitUsage   = 64 // bad command line
)

var (
	flagCPUProfile = flag.String("cpuprofile", "", "write CPU profile to this file")
	flagMemProfile = flag.String("memprofile", "", "write memory profile to this file")
)

// Init parses command line flags and starts profiling if requested.
// The returned function must be called before the tool exits to flush the profiles.
func Init(minArgs, maxArgs int) (args []string, done func()) {
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	args, err := ParseArgs(flag.CommandLine, os.Args[1:], minArgs, maxArgs)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(ExitOK)
	}
	if err != nil {
		flag.Usage()
		Exitf(ExitUsage, "%v", err)
	}
	return args, installProfiling(*flagCPUProfile, *flagMemProfile)
}

func Failf(msg string, args ...any) {
	Exitf(ExitFailure, msg, args...)
}

func Fail(err error) {
	Exitf(ExitCode(err), "%v", err)
}

func Exitf(code int, msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(code)
}

// ExitError attaches a process exit code to an error.
type ExitError struct {
	Code int
	Err  error
}

func (err *ExitError) Error() string {
	return err.Err.Error()
}

func (err *ExitError) Unwrap() error {
	return err.Err
}

func WithExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err}
}

// ExitCode returns the code attached with WithExitCode, ExitOK for nil and ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
