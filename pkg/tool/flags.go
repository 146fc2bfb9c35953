// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package tool

import (
	"errors"
	"flag"
	"fmt"
)

// ErrUsage is wrapped by all errors returned for malformed command lines.
var ErrUsage = errors.New("usage error")

// ParseArgs parses flags from args and checks that the number of remaining
// positional arguments is within [minArgs, maxArgs]. Negative maxArgs means no upper limit.
func ParseArgs(set *flag.FlagSet, args []string, minArgs, maxArgs int) ([]string, error) {
	if err := set.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	rest := set.Args()
	if len(rest) < minArgs {
		return nil, fmt.Errorf("%w: want at least %v arguments, got %v", ErrUsage, minArgs, len(rest))
	}
	if maxArgs >= 0 && len(rest) > maxArgs {
		return nil, fmt.Errorf("%w: want at most %v arguments, got %v", ErrUsage, maxArgs, len(rest))
	}
	return rest, nil
}
