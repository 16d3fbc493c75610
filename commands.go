package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/agilira/orpheus/pkg/orpheus"

	"sdkgen/internal/canconnect"
	"sdkgen/internal/csvtable"
	"sdkgen/internal/devices"
	"sdkgen/internal/docbuild"
	"sdkgen/internal/emit"
	"sdkgen/internal/pipeline"
	"sdkgen/internal/qtdeploy"
	"sdkgen/internal/registry"
	"sdkgen/internal/sdkerr"
	"sdkgen/internal/xref"
)

// ===== generate =====

type generateOptions struct {
	AjaNTV2 string
	OHH     string
	OHPP    string
	Unused  bool
}

func (c *cli) generateCommand(ctx *orpheus.Context) error {
	s, err := c.session(globalsOf(ctx))
	if err != nil {
		return err
	}
	return s.generate(generateOptions{
		AjaNTV2: ctx.GetFlagString("ajantv2"),
		OHH:     ctx.GetFlagString("ohh"),
		OHPP:    ctx.GetFlagString("ohpp"),
		Unused:  ctx.GetFlagBool("unused"),
	})
}

func (s *session) generate(o generateOptions) error {
	root := o.AjaNTV2
	if root == "" {
		root = "."
	}
	// Each file is written only when its folder is given. With neither,
	// generate just checks the device files.
	var hh, hpp *output
	if o.OHH != "" {
		hh = &output{path: filepath.Join(o.OHH, emit.DeclarationsFile)}
	}
	if o.OHPP != "" {
		hpp = &output{path: filepath.Join(o.OHPP, emit.DefinitionsFile)}
	}
	for _, out := range []*output{hh, hpp} {
		if out == nil {
			continue
		}
		if err := s.checkOutput(out.path, sdkerr.KindNotFound); err != nil {
			return err
		}
	}

	gc := s.cfg.Generate
	reg, err := registry.Load(registry.Paths{
		Enums:  filepath.Join(root, gc.Enums),
		CanDo:  filepath.Join(root, gc.CanDo),
		GetNum: filepath.Join(root, gc.GetNum),
	})
	if err != nil {
		return err
	}
	defs, err := devices.ParseDir(filepath.Join(root, gc.DevicesDir))
	if err != nil {
		return err
	}
	ix, err := xref.Build(reg, defs, s.warn)
	if err != nil {
		return err
	}
	s.log.Info().Int("devices", len(defs)).Int("symbols", countSymbols(reg)).Msg("device features cross-referenced")

	if o.Unused {
		if err := xref.ReportUnused(ix, s.warn); err != nil {
			return err
		}
	}
	return s.emitFeatures(ix, hh, hpp)
}

func countSymbols(reg *registry.Registry) int {
	n := 0
	for _, c := range registry.All {
		if set := reg.Set(c); set != nil {
			n += set.Len()
		}
	}
	return n
}

// emitFeatures renders both files, then writes those that were asked for.
// A nil output is rendered and discarded.
func (s *session) emitFeatures(ix *xref.Index, hh, hpp *output) error {
	if hh == nil {
		hh = &output{}
	}
	if hpp == nil {
		hpp = &output{}
	}
	e := emit.New(ix, s.header())
	if err := e.WriteDeclarations(&hh.data); err != nil {
		return err
	}
	if err := e.WriteDefinitions(&hpp.data); err != nil {
		return err
	}
	return s.write(hh, hpp)
}

// ===== features =====

type featuresOptions struct {
	CSV  string
	OHH  string
	OHPP string
}

func (c *cli) featuresCommand(ctx *orpheus.Context) error {
	s, err := c.session(globalsOf(ctx))
	if err != nil {
		return err
	}
	return s.features(featuresOptions{
		CSV:  ctx.GetFlagString("csv"),
		OHH:  ctx.GetFlagString("ohh"),
		OHPP: ctx.GetFlagString("ohpp"),
	})
}

func (s *session) features(o featuresOptions) error {
	hh := &output{path: filepath.Join(o.OHH, emit.DeclarationsFile)}
	hpp := &output{path: filepath.Join(o.OHPP, emit.DefinitionsFile)}
	for _, out := range []*output{hh, hpp} {
		if err := s.checkOutput(out.path, sdkerr.KindOutputIsFolder); err != nil {
			return err
		}
	}

	ix, err := csvtable.Load(o.CSV, s.cfg.Features.Tables)
	if err != nil {
		return err
	}
	s.log.Info().Str("csv", o.CSV).Int("devices", len(ix.Registry().Devices())).Msg("feature tables loaded")
	return s.emitFeatures(ix, hh, hpp)
}

// ===== canconnect =====

type canConnectOptions struct {
	Input  string
	Output string
	Device string
}

func (c *cli) canConnectCommand(ctx *orpheus.Context) error {
	s, err := c.session(globalsOf(ctx))
	if err != nil {
		return err
	}
	return s.canConnect(canConnectOptions{
		Input:  ctx.GetFlagString("input"),
		Output: ctx.GetFlagString("output"),
		Device: ctx.GetFlagString("device"),
	})
}

func (s *session) canConnect(o canConnectOptions) error {
	out := &output{path: filepath.Join(o.Output, canconnect.OutputFile)}
	if err := s.checkOutput(out.path, sdkerr.KindOutputIsFolder); err != nil {
		return err
	}

	g := &canconnect.Generator{
		InputDir: o.Input,
		Devices:  s.cfg.CanConnect.Devices,
		Xpts:     s.cfg.CanConnect.InputXpts,
		Warn:     s.warn,
		Logger:   s.log,
	}
	listings, err := g.Run(o.Device)
	if err != nil {
		return err
	}
	if err := canconnect.WriteListings(&out.data, s.tool, s.header().Timestamp(), listings); err != nil {
		return err
	}
	return s.write(out)
}

// ===== docs =====

type docsOptions struct {
	Version   string
	Pipeline  string
	Dir       string
	Dest      string
	NoCompile bool
	DryRun    bool
}

func (c *cli) docsCommand(ctx *orpheus.Context) error {
	s, err := c.session(globalsOf(ctx))
	if err != nil {
		return err
	}
	sig, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	_, err = s.docs(sig, docsOptions{
		Version:   ctx.GetFlagString("version"),
		Pipeline:  ctx.GetFlagString("pipeline"),
		Dir:       ctx.GetFlagString("dir"),
		Dest:      ctx.GetFlagString("dest"),
		NoCompile: ctx.GetFlagBool("nocompile"),
		DryRun:    ctx.GetFlagBool("dry-run"),
	})
	return err
}

func (s *session) docs(ctx context.Context, o docsOptions) (*docbuild.Result, error) {
	if o.Version == "" {
		return nil, usage("docs", "--version is required")
	}
	dc := s.cfg.Docs
	b := &docbuild.Builder{
		Dir:       o.Dir,
		Expected:  o.Version,
		NoCompile: o.NoCompile,
		DryRun:    o.DryRun,
		Dest:      firstOf(o.Dest, dc.Dest),
		BaseURL:   dc.URL,
		Doxygen:   dc.Doxygen,
		Rsync:     dc.Rsync,
		Runner:    s.runner,
		Logger:    s.log,
		Warn:      s.warn,
	}
	if path := firstOf(o.Pipeline, dc.Pipeline); path != "" {
		plan, err := pipeline.Load(path)
		if err != nil {
			return nil, err
		}
		b.Plan = plan
		s.log.Info().Str("pipeline", path).Msg("using pipeline file")
	}
	if dc.Timeout != "" {
		d, err := time.ParseDuration(dc.Timeout)
		if err != nil {
			return nil, usage("docs", "bad docs.timeout '%s': %v", dc.Timeout, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return b.Run(ctx)
}

// ===== qtdeploy =====

type qtDeployOptions struct {
	Tool    string
	Binary  string
	Install string
	DryRun  bool
}

func (c *cli) qtDeployCommand(ctx *orpheus.Context) error {
	s, err := c.session(globalsOf(ctx))
	if err != nil {
		return err
	}
	_, err = s.qtDeploy(context.Background(), qtDeployOptions{
		Tool:    ctx.GetFlagString("tool"),
		Binary:  ctx.GetFlagString("binary"),
		Install: ctx.GetFlagString("install"),
		DryRun:  ctx.GetFlagBool("dry-run"),
	})
	return err
}

func (s *session) qtDeploy(ctx context.Context, o qtDeployOptions) (*qtdeploy.Result, error) {
	if o.Binary == "" {
		return nil, usage("qtdeploy", "--binary is required")
	}
	d := &qtdeploy.Deployer{
		Tool:    firstOf(o.Tool, s.cfg.QtDeploy.Tool),
		Binary:  o.Binary,
		Install: firstOf(o.Install, s.cfg.QtDeploy.Install),
		DryRun:  o.DryRun,
		Runner:  s.runner,
		Logger:  s.log,
		Warn:    s.warn,
	}
	return d.Run(ctx)
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
