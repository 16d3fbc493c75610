package qtdeploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkgen/internal/logging"
	"sdkgen/internal/pipeline"
	"sdkgen/internal/sdkerr"
)

type toolRunner struct {
	output string
	err    error
	calls  []pipeline.Command
}

func (r *toolRunner) Run(_ context.Context, c pipeline.Command, out io.Writer) error {
	r.calls = append(r.calls, c)
	_, _ = io.WriteString(out, r.output)
	return r.err
}

func setup(t *testing.T) (qt, stage, binary string) {
	t.Helper()
	root := t.TempDir()
	qt = filepath.Join(root, "qt")
	stage = filepath.Join(root, "stage")
	require.NoError(t, os.MkdirAll(filepath.Join(qt, "plugins", "platforms"), 0o755))
	require.NoError(t, os.MkdirAll(stage, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(qt, "Qt6Core.dll"), []byte("core"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(qt, "plugins", "platforms", "qwindows.dll"), []byte("qpa"), 0o644))
	binary = filepath.Join(stage, "ntv2qtplayer.exe")
	require.NoError(t, os.WriteFile(binary, []byte("MZ"), 0o755))
	return qt, stage, binary
}

func report(files ...File) string {
	s := "Adding in plugin type platforms\n{\"files\": ["
	for i, f := range files {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("{%q: %q, %q: %q}", "source", filepath.ToSlash(f.Source), "target", filepath.ToSlash(f.Target))
	}
	return s + "]}\n"
}

func TestDeploy(t *testing.T) {
	qt, stage, binary := setup(t)
	install := filepath.Join(t.TempDir(), "install")
	r := &toolRunner{output: report(
		File{Source: filepath.Join(qt, "Qt6Core.dll"), Target: stage},
		File{Source: filepath.Join(qt, "plugins", "platforms", "qwindows.dll"), Target: filepath.Join(stage, "platforms")},
		File{Source: filepath.Join(qt, "Qt6Gone.dll"), Target: stage},
	)}
	warn := &logging.Warnings{Logger: logging.Discard()}

	d := &Deployer{Tool: "windeployqt", Binary: binary, Install: install, Runner: r, Warn: warn}
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Copied)
	assert.Equal(t, 1, res.Missing)
	assert.Equal(t, 1, warn.Count)
	assert.Equal(t, []string{"Qt6Core.dll", "platforms/qwindows.dll"}, res.Files)

	got, err := os.ReadFile(filepath.Join(install, "platforms", "qwindows.dll"))
	require.NoError(t, err)
	assert.Equal(t, "qpa", string(got))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{"--dry-run", "--json", "--dir", stage, binary}, r.calls[0].Args)
}

func TestDeployDryRun(t *testing.T) {
	qt, stage, binary := setup(t)
	install := filepath.Join(t.TempDir(), "install")
	r := &toolRunner{output: report(File{Source: filepath.Join(qt, "Qt6Core.dll"), Target: stage})}

	d := &Deployer{Binary: binary, Install: install, Runner: r, DryRun: true}
	res, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Copied)
	assert.Equal(t, []string{"Qt6Core.dll"}, res.Files)
	assert.NoDirExists(t, install)
	assert.Equal(t, DefaultTool(), r.calls[0].Name)
}

func TestDeployErrors(t *testing.T) {
	qt, stage, binary := setup(t)
	missing := report(File{Source: filepath.Join(qt, "Qt6Gone.dll"), Target: stage})

	tests := []struct {
		name   string
		binary string
		runner *toolRunner
		strict bool
		code   int
	}{
		{"tool fails", binary, &toolRunner{err: errors.New("exit status 1")}, false, sdkerr.CodeFailure},
		{"bad json", binary, &toolRunner{output: "{\"files\": ["}, false, sdkerr.CodeSyntax},
		{"no binary", filepath.Join(stage, "nope.exe"), &toolRunner{}, false, sdkerr.CodeNotFound},
		{"binary is folder", stage, &toolRunner{}, false, sdkerr.CodeWrongKind},
		{"missing source strict", binary, &toolRunner{output: missing}, true, sdkerr.CodeWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Deployer{
				Binary:  tt.binary,
				Install: t.TempDir(),
				Runner:  tt.runner,
				Warn:    &logging.Warnings{Logger: logging.Discard(), Strict: tt.strict},
			}
			_, err := d.Run(context.Background())
			assert.Equal(t, tt.code, sdkerr.ExitCode(err), "%v", err)
		})
	}
}

func TestParseReport(t *testing.T) {
	r, err := ParseReport([]byte(`{"files":[{"source":"/qt/a.dll","target":"/s"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []File{{Source: "/qt/a.dll", Target: "/s"}}, r.Files)

	_, err = ParseReport([]byte(`{"files":[{"source":"/qt/a.dll"}]}`))
	assert.Equal(t, sdkerr.CodeSyntax, sdkerr.ExitCode(err))
}
