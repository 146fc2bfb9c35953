// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package stat provides counters for instrumenting long-running generation passes.
// Counters can be printed in console heartbeats and exported to Prometheus.
//
//	statFoo := stat.New("metric name", "metric description", stat.Console)
//	statFoo.Add(1)
package stat

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/VividCortex/gohistogram"
	"github.com/prometheus/client_golang/prometheus"
)

type UI struct {
	Name  string
	Desc  string
	Level Level
	Value string
	V     int
}

func New(name, desc string, opts ...any) *Val {
	return global.New(name, desc, opts...)
}

func Collect(level Level) []UI {
	return global.Collect(level)
}

var global = newSet()

type set struct {
	mu    sync.Mutex
	vals  map[string]*Val
	start time.Time
}

func newSet() *set {
	return &set{
		vals:  make(map[string]*Val),
		start: time.Now(),
	}
}

// Level controls where the metric is shown.
type Level int

const (
	All Level = iota
	Console
)

// Prometheus exports the metric to Prometheus under the given name.
type Prometheus string

// Rate says to show metric rate per unit of time rather than total value.
type Rate struct{}

// Distribution says to collect a histogram of individual samples.
// Val returns the sample mean.
type Distribution struct{}

const histogramBuckets = 64

// Additionally a custom 'func() int' can be passed to read the metric value from the function,
// and 'func(int, time.Duration) string' for custom formatting of the value.

func (s *set) New(name, desc string, opts ...any) *Val {
	v := &Val{
		name: name,
		desc: desc,
		fmt:  func(v int, period time.Duration) string { return strconv.Itoa(v) },
	}
	for _, o := range opts {
		switch opt := o.(type) {
		case Level:
			v.level = opt
		case Rate:
			v.fmt = formatRate
		case Distribution:
			v.hist = gohistogram.NewHistogram(histogramBuckets)
			v.fmt = v.formatDistribution
		case func() int:
			v.ext = opt
		case func(int, time.Duration) string:
			v.fmt = opt
		case Prometheus:
			err := prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Name: string(opt),
				Help: desc,
			},
				func() float64 { return float64(v.Val()) },
			))
			// The same metric may be created again in tests, keep the first registration.
			var dup prometheus.AlreadyRegisteredError
			if err != nil && !errors.As(err, &dup) {
				panic(fmt.Sprintf("failed to register metric %v: %v", opt, err))
			}
		default:
			panic(fmt.Sprintf("unknown stats option %#v", o))
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[name] = v
	return v
}

func (s *set) Collect(level Level) []UI {
	s.mu.Lock()
	defer s.mu.Unlock()
	period := time.Since(s.start)
	if period < time.Second {
		period = time.Second
	}
	var res []UI
	for _, v := range s.vals {
		if v.level < level {
			continue
		}
		val := v.Val()
		res = append(res, UI{
			Name:  v.name,
			Desc:  v.desc,
			Level: v.level,
			Value: v.fmt(val, period),
			V:     val,
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Level != res[j].Level {
			return res[i].Level > res[j].Level
		}
		return res[i].Name < res[j].Name
	})
	return res
}

type Val struct {
	name  string
	desc  string
	level Level
	ext   func() int
	fmt   func(int, time.Duration) string

	mu   sync.Mutex
	val  int
	hist *gohistogram.NumericHistogram
}

func (v *Val) Add(val int) {
	if v.ext != nil {
		panic(fmt.Sprintf("stat %v is in external mode", v.name))
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hist != nil {
		v.hist.Add(float64(val))
		return
	}
	v.val += val
}

func (v *Val) Val() int {
	if v.ext != nil {
		return v.ext()
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hist != nil {
		if v.hist.Count() == 0 {
			return 0
		}
		return int(v.hist.Mean() + 0.5)
	}
	return v.val
}

func (v *Val) formatDistribution(val int, period time.Duration) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.hist.Count() == 0 {
		return "-"
	}
	return fmt.Sprintf("avg %.1f, p90 %.0f, max %.0f (%.0f samples)",
		v.hist.Mean(), v.hist.Quantile(0.9), v.hist.Quantile(1), v.hist.Count())
}

func formatRate(v int, period time.Duration) string {
	secs := int(period.Seconds())
	if x := v / secs; x >= 10 {
		return fmt.Sprintf("%v (%v/sec)", v, x)
	}
	if x := v * 60 / secs; x >= 10 {
		return fmt.Sprintf("%v (%v/min)", v, x)
	}
	x := v * 60 * 60 / secs
	return fmt.Sprintf("%v (%v/hour)", v, x)
}
