// Package docbuild assembles and publishes the NTV2 SDK documentation.
//
// The three platform SDK archives are unpacked and merged into one source
// tree, the version recorded in ntv2enums.h is checked, doxygen builds the
// HTML and the result is zipped and synced to the documentation server.
// The steps live in a pipeline plan (plan.toml, embedded); the checks that
// need Go run as pipeline hooks.
package docbuild

import (
	"context"
	_ "embed"
	"strings"

	"github.com/phuslu/log"

	"sdkgen/internal/logging"
	"sdkgen/internal/pipeline"
	"sdkgen/internal/sdkerr"
)

//go:embed plan.toml
var defaultPlan []byte

// DefaultPlan returns the built-in documentation pipeline.
func DefaultPlan() (*pipeline.Pipeline, error) {
	return pipeline.Parse(defaultPlan, pipeline.FormatTOML)
}

// Hook names the plan refers to.
const (
	HookVersions  = "versions"
	HookRedirects = "redirects"
	HookAnnounce  = "announce"
)

// Builder runs a documentation pipeline in Dir.
type Builder struct {
	Dir       string
	Expected  string // --version
	NoCompile bool
	DryRun    bool
	Dest      string // rsync destination
	BaseURL   string // public URL of Dest
	Doxygen   string
	Rsync     string

	Plan   *pipeline.Pipeline
	Runner pipeline.Runner
	Logger *log.Logger
	Warn   *logging.Warnings

	expected Version
	result   Result
}

// Result describes what was built.
type Result struct {
	Version   Version
	Windows   Version
	Linux     Version
	Folder    string
	URL       string
	Redirects []string
}

// Run executes the plan and returns what it built.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	expected, err := ParseExpected(b.Expected)
	if err != nil {
		return nil, err
	}
	b.expected = expected
	b.result = Result{}

	if b.Plan == nil {
		if b.Plan, err = DefaultPlan(); err != nil {
			return nil, err
		}
	}
	if b.Logger == nil {
		b.Logger = logging.Discard()
	}

	ex := pipeline.New(b.Plan, b.Dir)
	if b.Runner != nil {
		ex.Runner = b.Runner
	}
	ex.Logger = b.Logger
	ex.DryRun = b.DryRun
	ex.Set("DEST", b.Dest)
	ex.Set("DOCS_BASE_URL", b.BaseURL)
	ex.Set("DOXYGEN", b.Doxygen)
	ex.Set("RSYNC", b.Rsync)
	if b.NoCompile {
		ex.Set("NOCOMPILE", "1")
	}
	ex.Hooks[HookVersions] = b.versions
	ex.Hooks[HookRedirects] = b.redirects
	ex.Hooks[HookAnnounce] = b.announce

	if err := ex.Run(ctx); err != nil {
		return nil, err
	}
	return &b.result, nil
}

func (b *Builder) versions(_ context.Context, ex *pipeline.Executor) error {
	path := func(name string) string {
		v, _ := ex.Lookup(name, HookVersions)
		return ex.Path(v)
	}

	v, err := ReadVersion(path("ENUMS_H"))
	if err != nil {
		return err
	}
	if !v.SameRelease(b.expected) {
		return sdkerr.New(sdkerr.KindVersionMismatch, "SDK version %s doesn't match expected version %s", v.Triple(), b.expected.Triple())
	}
	l := b.Logger.Info().Str("version", v.Triple()).Str("build", v.Build).Str("built", v.When)
	if v.Beta() {
		l = l.Str("type", v.Type).Str("underscore_version", v.Underscore())
	}
	l.Msg("documenting SDK")

	win, err := ReadVersion(path("WIN_ENUMS_H"))
	if err != nil {
		return err
	}
	if !v.SameRelease(win) {
		return sdkerr.New(sdkerr.KindVersionMismatch, "SDK version %s doesn't match Windows version %s", v.Triple(), win.Triple())
	}

	lin, err := ReadVersion(path("LIN_ENUMS_H"))
	if err != nil {
		return err
	}
	if !v.SameRelease(lin) {
		if err := b.Warn.Warn(sdkerr.CodeWarning, "SDK version %s doesn't match Linux version %s", v.Triple(), lin.Triple()); err != nil {
			return err
		}
	}

	folder := v.Folder()
	url := strings.TrimSuffix(b.BaseURL, "/") + "/" + folder + "/"
	b.result.Version, b.result.Windows, b.result.Linux = v, win, lin
	b.result.Folder, b.result.URL = folder, url

	ex.Set("DISPLAY_VERSION", v.Display())
	ex.Set("UNDERSCORE_VERSION", v.Underscore())
	ex.Set("HTML_FOLDER", folder)
	ex.Set("DOCS_URL", url)
	release := "1"
	if v.Beta() {
		release = ""
	}
	ex.Set("RELEASE", release)
	return nil
}

// redirects writes the per-platform pages for beta builds.
func (b *Builder) redirects(_ context.Context, ex *pipeline.Executor) error {
	if !b.result.Version.Beta() {
		return nil
	}
	for _, p := range []struct {
		platform, variable string
		v                  Version
	}{
		{"Windows", "WIN_REDIRECT", b.result.Windows},
		{"Linux", "LIN_REDIRECT", b.result.Linux},
	} {
		name, err := WriteRedirect(b.Dir, p.platform, p.v, b.result.URL)
		if err != nil {
			return sdkerr.Wrap(sdkerr.KindStaging, err, "writing %s redirect page", p.platform)
		}
		b.Logger.Info().Str("platform", p.platform).
			Str("from", strings.TrimSuffix(b.BaseURL, "/")+"/"+name).
			Str("to", b.result.URL).Msg("redirect page written")
		b.result.Redirects = append(b.result.Redirects, name)
		ex.Set(p.variable, name)
	}
	return nil
}

func (b *Builder) announce(context.Context, *pipeline.Executor) error {
	b.Logger.Info().Str("url", b.result.URL).Msg("documentation set should be accessible")
	return nil
}
