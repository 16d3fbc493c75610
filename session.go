package main

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/phuslu/log"

	"sdkgen/internal/config"
	"sdkgen/internal/emit"
	"sdkgen/internal/logging"
	"sdkgen/internal/pipeline"
	"sdkgen/internal/sdkerr"
)

// globals are the flags every command accepts.
type globals struct {
	Config    string
	LogFormat string
	Verbose   bool
	Strict    bool
}

func globalsOf(ctx *orpheus.Context) globals {
	return globals{
		Config:    ctx.GetGlobalFlagString("config"),
		LogFormat: ctx.GetGlobalFlagString("log-format"),
		Verbose:   ctx.GetGlobalFlagBool("verbose"),
		Strict:    ctx.GetGlobalFlagBool("failwarnings"),
	}
}

// session is the state of one command run.
type session struct {
	cfg    *config.Config
	log    *log.Logger
	warn   *logging.Warnings
	tool   string
	now    func() time.Time
	runner pipeline.Runner
}

func (c *cli) session(g globals) (*session, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.Verbose {
		cfg.Logging.Level = "debug"
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	c.log = logging.New(cfg.Logging, c.tool)
	c.log.Debug().Str("config", g.Config).Bool("strict", g.Strict).Msg("configuration loaded")

	return &session{
		cfg:    cfg,
		log:    c.log,
		warn:   &logging.Warnings{Logger: c.log, Strict: g.Strict},
		tool:   c.tool,
		now:    c.now,
		runner: c.runner,
	}, nil
}

func (s *session) header() emit.Header {
	return emit.Header{
		Tool:   s.tool,
		Holder: s.cfg.Generate.Holder,
		Time:   emit.BuildTime(os.Getenv, s.now),
	}
}

// checkOutput verifies that path can be written before any input is read.
// folder is the kind reported when path is an existing folder. Overwriting
// an existing file is a warning.
func (s *session) checkOutput(path string, folder sdkerr.Kind) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return sdkerr.Wrap(sdkerr.KindNotFound, err, "output folder '%s'", dir)
	}
	if !info.IsDir() {
		return sdkerr.New(sdkerr.KindWrongKind, "output folder '%s' is not a folder", dir)
	}

	info, err = os.Stat(path)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return sdkerr.New(folder, "output file path '%s' is a folder", path)
	}
	return s.warn.Warn(sdkerr.CodeOutputExists, "output file '%s' exists and will be overwritten", path)
}

// output is a rendered file waiting to be written.
type output struct {
	path string
	data bytes.Buffer
}

// write stores every output that has a path. Nothing is written until all
// of them have been rendered.
func (s *session) write(outs ...*output) error {
	for _, o := range outs {
		if o.path == "" {
			continue
		}
		if err := os.WriteFile(o.path, o.data.Bytes(), 0o644); err != nil {
			return sdkerr.Wrap(sdkerr.KindNotFound, err, "cannot write '%s'", o.path)
		}
		s.log.Info().Str("file", o.path).Int("bytes", o.data.Len()).Msg("written")
	}
	return nil
}
