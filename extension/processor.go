// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package extension

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/webglsl"
	"github.com/gogpu/webglsl/rewrite"
	"github.com/gogpu/webglsl/shader"
)

// Policy decides what happens to a collection when a shader fails.
type Policy uint8

const (
	// PolicyFailFast stops at the first failure and leaves the collection untouched.
	PolicyFailFast Policy = iota
	// PolicySkip keeps failed shaders as they were and commits the rest.
	PolicySkip
)

// String returns the configuration name of p.
func (p Policy) String() string {
	switch p {
	case PolicyFailFast:
		return "fail"
	case PolicySkip:
		return "skip"
	default:
		return fmt.Sprintf("Policy(%d)", p)
	}
}

// ParsePolicy parses "fail" or "skip".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "failfast", "fail-fast", "":
		return PolicyFailFast, nil
	case "skip":
		return PolicySkip, nil
	default:
		return 0, fmt.Errorf("extension: unknown error policy %q (want fail or skip)", s)
	}
}

// Options configures a Processor.
type Options struct {
	// Workers bounds the number of shaders transcoded at once
	// (default: GOMAXPROCS).
	Workers int

	// Policy selects the batch failure behavior (default: PolicyFailFast).
	Policy Policy

	// Transcoder rewrites each shader (default: webglsl.DefaultOptions).
	Transcoder *webglsl.Transcoder

	// Logger receives per-shader progress. Nil discards.
	Logger *log.Logger
}

// Failure describes one shader that could not be transcoded.
type Failure struct {
	Index int
	Name  string
	Err   error
}

// Report summarizes a Process call.
type Report struct {
	// Transcoded is the number of shaders committed.
	Transcoded int

	// Failures lists failed shaders in collection order.
	Failures []Failure

	// Stats sums the rewrite statistics of committed shaders.
	Stats rewrite.Stats
}

// Processor transcodes shader collections. It is safe for concurrent use.
type Processor struct {
	workers    int
	policy     Policy
	transcoder *webglsl.Transcoder
	logger     *log.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(opts Options) *Processor {
	p := &Processor{
		workers:    opts.Workers,
		policy:     opts.Policy,
		transcoder: opts.Transcoder,
		logger:     opts.Logger,
	}
	if p.workers <= 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	if p.transcoder == nil {
		p.transcoder = webglsl.New(webglsl.DefaultOptions())
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p
}

// result is the outcome of one shader task.
type result struct {
	program *shader.Program
	stats   rewrite.Stats
	err     error
}

// Process transcodes every shader of c. Each shader is rewritten on a private
// copy, and copies are committed to c only after all tasks finish.
//
// With PolicyFailFast the first failure cancels outstanding work, c is left
// untouched and that failure is returned. With PolicySkip successful shaders
// are committed and the returned error joins all failures.
//
// A nil collection or nil entry fails with a missing input error before any
// work starts. Cancellation of ctx is checked before each shader; a canceled
// run commits nothing.
func (p *Processor) Process(ctx context.Context, c *shader.Collection) (Report, error) {
	if c == nil {
		return Report{}, shader.MissingInputError("shader collection")
	}
	for i, prog := range c.Shaders {
		if prog == nil {
			return Report{}, shader.MissingInputError(fmt.Sprintf("shader entry %d", i))
		}
	}

	results := make([]result, len(c.Shaders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, prog := range c.Shaders {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cp := prog.Clone()
			stats, err := p.transcoder.TranscodeWithStats(cp)
			if err != nil {
				results[i].err = err
				p.logger.Warn("shader failed", "index", i, "name", prog.Name, "error", err)
				if p.policy == PolicyFailFast {
					return err
				}
				return nil
			}
			results[i] = result{program: cp, stats: stats}
			p.logger.Debug("shader transcoded", "index", i, "name", prog.Name,
				"stage", prog.Stage, "lines", stats.Lines, "commented", stats.CommentedLines)
			return nil
		})
	}

	waitErr := g.Wait()

	var report Report

	for i, r := range results {
		if r.err != nil {
			report.Failures = append(report.Failures, Failure{Index: i, Name: c.Shaders[i].Name, Err: r.err})
		}
	}
	if waitErr != nil {
		return report, waitErr
	}

	errs := make([]error, 0, len(report.Failures))
	for _, f := range report.Failures {
		errs = append(errs, f.Err)
	}
	for i, r := range results {
		if r.program == nil {
			continue
		}
		*c.Shaders[i] = *r.program
		report.Transcoded++
		report.Stats = report.Stats.Add(r.stats)
	}
	p.logger.Info("collection transcoded", "shaders", len(c.Shaders),
		"transcoded", report.Transcoded, "failed", len(report.Failures))
	return report, errors.Join(errs...)
}
