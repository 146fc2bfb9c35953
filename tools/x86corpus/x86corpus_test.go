// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/x86corpus/pkg/disasm/xarch"
	"github.com/google/x86corpus/pkg/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Lets tests run the tool itself by re-executing the test binary.
	if os.Getenv("X86CORPUS_RUN_MAIN") != "" {
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestUsageError(t *testing.T) {
	dir := t.TempDir()
	cmd := exec.Command(os.Args[0])
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "X86CORPUS_RUN_MAIN=1")
	out, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr, "output:\n%s", out)
	assert.Equal(t, tool.ExitUsage, exitErr.ExitCode())
	output := string(out)
	bannerPos := strings.Index(output, banner)
	usagePos := strings.Index(output, "usage: x86corpus")
	require.NotEqual(t, -1, bannerPos, output)
	require.NotEqual(t, -1, usagePos, output)
	assert.Less(t, bannerPos, usagePos, "banner must precede usage")
	assert.Contains(t, output, "no output file specified")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "usage errors must not create files")
}

func testFlags(t *testing.T, args ...string) (*flag.FlagSet, []string) {
	set := flag.NewFlagSet("x86corpus", flag.ContinueOnError)
	set.Int("procs", 1, "")
	set.String("http", "", "")
	set.String("engine", xarch.Name, "")
	require.NoError(t, set.Parse(args))
	return set, set.Args()
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "x86corpus.cfg")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
# generate the 64-bit corpus
{
	"output": "from-config.txt",
	"mode": "x64",
	"procs": 4,
	"http": "localhost:1234"
}
`), 0644))
	tests := []struct {
		name   string
		config string
		args   []string
		want   *Config
	}{
		{
			name: "positional",
			args: []string{"out.txt"},
			want: &Config{Output: "out.txt", Mode: "x86", Procs: 1, Engine: xarch.Name},
		},
		{
			name: "mode",
			args: []string{"out.txt", "x64"},
			want: &Config{Output: "out.txt", Mode: "x64", Procs: 1, Engine: xarch.Name},
		},
		{
			name:   "config",
			config: cfgFile,
			want: &Config{Output: "from-config.txt", Mode: "x64", Procs: 4,
				HTTP: "localhost:1234", Engine: xarch.Name},
		},
		{
			name:   "override",
			config: cfgFile,
			args:   []string{"-procs", "2", "out.txt", "x86"},
			want: &Config{Output: "out.txt", Mode: "x86", Procs: 2,
				HTTP: "localhost:1234", Engine: xarch.Name},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set, args := testFlags(t, test.args...)
			cfg, err := loadConfig(test.config, set, args)
			require.NoError(t, err)
			if diff := cmp.Diff(test.want, cfg); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	set, args := testFlags(t)
	_, err := loadConfig("", set, args)
	assert.ErrorIs(t, err, tool.ErrUsage)
	assert.Equal(t, tool.ExitUsage, tool.ExitCode(err))

	bad := filepath.Join(t.TempDir(), "bad.cfg")
	require.NoError(t, os.WriteFile(bad, []byte(`{"outptu": "x"}`), 0644))
	_, err = loadConfig(bad, set, []string{"out.txt"})
	assert.ErrorContains(t, err, "unknown field")
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "no-such-dir", "corpus.txt")
	err := run(context.Background(), &Config{Output: missing, Engine: xarch.Name}, false)
	assert.Equal(t, tool.ExitIOError, tool.ExitCode(err))
	assert.ErrorContains(t, err, "cannot open file "+missing)

	err = run(context.Background(), &Config{Output: missing, Engine: xarch.Name}, true)
	assert.Equal(t, tool.ExitIOError, tool.ExitCode(err))

	out := filepath.Join(dir, "corpus.txt")
	err = run(context.Background(), &Config{Output: out, Engine: "no-such-engine"}, false)
	assert.Equal(t, tool.ExitUsage, tool.ExitCode(err))
	assert.NoFileExists(t, out)
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("90 nop\nc3 ret\n00000010111213141516 db\n"), 0644))
	err := run(context.Background(), &Config{Output: good, Mode: "x86", Engine: xarch.Name}, true)
	assert.NoError(t, err)

	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("90 nop\n90 nop\n"), 0644))
	err = run(context.Background(), &Config{Output: bad, Mode: "x86", Engine: xarch.Name}, true)
	assert.Equal(t, tool.ExitFailure, tool.ExitCode(err))
	assert.ErrorContains(t, err, "1 bad records")
}

func TestHTTP(t *testing.T) {
	server := httptest.NewServer(newHTTPHandler())
	defer server.Close()
	get := func(path string) string {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(body)
	}
	assert.Contains(t, get("/metrics"), "x86corpus_attempts")
	page := get("/")
	assert.Contains(t, page, "<caption>Stats</caption>")
	assert.Contains(t, page, "attempts")
}
