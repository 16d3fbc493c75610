package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sdkgen/internal/sdkerr"
)

// fakeRunner records commands instead of running them.
type fakeRunner struct {
	calls  []Command
	output string
	fail   map[string]bool
}

func (f *fakeRunner) Run(_ context.Context, c Command, out io.Writer) error {
	f.calls = append(f.calls, c)
	_, _ = io.WriteString(out, f.output)
	if f.fail[c.Name] {
		return errors.New("exit status 1")
	}
	return nil
}

func newTestExecutor(t *testing.T, p *Pipeline) (*Executor, *fakeRunner) {
	t.Helper()
	e := New(p, t.TempDir())
	r := &fakeRunner{fail: map[string]bool{}}
	e.Runner = r
	e.Clock = func() time.Time { return time.Date(2026, 3, 4, 9, 5, 0, 0, time.UTC) }
	return e, r
}

func mustWrite(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// ===== VARIABLE EXPANSION TESTS =====

func TestExpand(t *testing.T) {
	p := &Pipeline{Vars: map[string]Var{"CC": "gcc", "CFLAGS": "-Wall"}}
	e, _ := newTestExecutor(t, p)
	e.Set("VERSION", "16.2.0")
	t.Setenv("SDKGEN_TEST_ENV", "from-env")

	tests := []struct {
		name     string
		input    string
		phase    string
		expected string
	}{
		{"pipeline vars", "$CC $CFLAGS", "build", "gcc -Wall"},
		{"braced", "${CC}-${VERSION}", "build", "gcc-16.2.0"},
		{"phase name", "Building $@", "deliver", "Building deliver"},
		{"timestamp", "at $TIMESTAMP", "x", "at 2026-03-04 09:05:00"},
		{"cwd", "$cwd", "x", e.Dir},
		{"environment fallback", "$SDKGEN_TEST_ENV", "x", "from-env"},
		{"undefined kept", "keep $NOPE_NOT_SET here", "x", "keep $NOPE_NOT_SET here"},
		{"no variables", "plain text", "x", "plain text"},
		{"lone dollar", "cost $", "x", "cost $"},
		{"empty braces", "${}", "x", "${}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Expand(tt.input, tt.phase); got != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetShadowsPipelineVars(t *testing.T) {
	e, _ := newTestExecutor(t, &Pipeline{Vars: map[string]Var{"DEST": "a"}})
	e.Set("DEST", "b")
	if v, _ := e.Lookup("DEST", ""); v != "b" {
		t.Errorf("Lookup(DEST) = %q, want b", v)
	}
}

// ===== LOADING TESTS =====

const sampleTOML = `
name = "sample"

[vars]
OUT = "out"

[[phase]]
name = "stage"

  [[phase.step]]
  op = "check"
  paths = ["*.zip"]

  [[phase.step]]
  name = "Mac"
  op = "rename"
  src = "sdk_*.zip"
  to = "sdk.zip"

[[phase]]
name = "build"
unless = "NOCOMPILE"

  [[phase.step]]
  op = "run"
  command = ["doxygen", "config.doxy"]
  log = "doxygen.log"
`

const sampleYAML = `
name: sample
vars:
  OUT: out
phases:
  - name: stage
    steps:
      - op: check
        paths: ["*.zip"]
  - name: build
    unless: NOCOMPILE
    steps:
      - op: run
        shell: echo $OUT
`

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		phases []string
	}{
		{"toml", sampleTOML, FormatTOML, []string{"stage", "build"}},
		{"yaml", sampleYAML, FormatYAML, []string{"stage", "build"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(p.Phases) != len(tt.phases) {
				t.Fatalf("got %d phases, want %d", len(p.Phases), len(tt.phases))
			}
			for i, name := range tt.phases {
				if p.Phases[i].Name != name {
					t.Errorf("phase %d = %q, want %q", i, p.Phases[i].Name, name)
				}
			}
			if p.Vars["OUT"] != "out" {
				t.Errorf("vars not decoded: %v", p.Vars)
			}
			if p.Phases[1].Unless != "NOCOMPILE" {
				t.Errorf("unless not decoded")
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no phases", `name = "x"`},
		{"unknown op", "[[phase]]\nname = \"a\"\n[[phase.step]]\nop = \"explode\"\n"},
		{"rename without target", "[[phase]]\nname = \"a\"\n[[phase.step]]\nop = \"rename\"\nsrc = \"x\"\n"},
		{"run without command", "[[phase]]\nname = \"a\"\n[[phase.step]]\nop = \"run\"\n"},
		{"phase without name", "[[phase]]\n[[phase.step]]\nop = \"delete\"\nsrc = \"x\"\n"},
		{"duplicate phase", "[[phase]]\nname = \"a\"\n[[phase]]\nname = \"a\"\n"},
		{"bad prologue step", "[prologue]\nname = \"p\"\n[[prologue.step]]\nop = \"hook\"\n[[phase]]\nname = \"a\"\n"},
		{"malformed", "[[phase]\n"},
		{"step before any phase", "[[phase.step]]\nop = \"run\"\n"},
		{"nested step before any phase", "[[phase.step]]\nop = \"run\"\n[[phase]]\nname = \"a\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatTOML)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if code := sdkerr.ExitCode(err); code != sdkerr.CodeSyntax {
				t.Errorf("exit code = %d, want %d", code, sdkerr.CodeSyntax)
			}
		})
	}
}

func TestLoadPickFormat(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "plan.yml")
	mustWrite(t, yml, sampleYAML)
	if _, err := Load(yml); err != nil {
		t.Errorf("Load(yaml) error: %v", err)
	}

	toml := filepath.Join(dir, "plan.toml")
	mustWrite(t, toml, sampleTOML)
	if _, err := Load(toml); err != nil {
		t.Errorf("Load(toml) error: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); sdkerr.ExitCode(err) != sdkerr.CodeNotFound {
		t.Errorf("missing file: got %v", err)
	}
	if _, err := Load(dir); sdkerr.ExitCode(err) != sdkerr.CodeWrongKind {
		t.Errorf("folder: got %v", err)
	}
}

// ===== STAGING OPERATION TESTS =====

func TestStagingOps(t *testing.T) {
	p := &Pipeline{Phases: []Phase{{
		Name: "stage",
		Steps: []Step{
			{Op: OpCheck, Paths: []string{"sdk_*.zip", "config.doxy"}},
			{Op: OpRename, Src: "sdk_*.zip", To: "sdk.zip"},
			{Op: OpUnzip, Src: "sdk.zip"},
			{Op: OpDelete, Src: "sdk.zip"},
			{Op: OpRename, Src: "sdk_1*", To: "AJASDK"},
			{Op: OpMove, Src: "win", From: "AJASDK/src"},
			{Op: OpMove, Src: "win", To: "lib/src"},
			{Op: OpReplace, Src: "config.doxy", Old: "0.0.0", New: "$VERSION"},
			{Op: OpDelLines, Src: "AJASDK/types.h", Token: "NUB_CLIENT"},
			{Op: OpZip, Src: "AJASDK"},
		},
	}}}
	e, _ := newTestExecutor(t, p)
	e.Set("VERSION", "16.2.0")

	mustWrite(t, filepath.Join(e.Dir, "config.doxy"), "PROJECT_NUMBER = 0.0.0\n")
	writeZip(t, filepath.Join(e.Dir, "sdk_16.2.0.zip"), map[string]string{
		"sdk_16.2.0/src/win/driver.cpp": "int x;\n",
		"sdk_16.2.0/types.h":            "#define A 1\n#define NUB_CLIENT 1\n#define B 2\n",
	})

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if !exists(filepath.Join(e.Dir, "lib/src/win/driver.cpp")) {
		t.Error("win folder not moved into lib/src")
	}
	if exists(filepath.Join(e.Dir, "sdk.zip")) {
		t.Error("sdk.zip not deleted")
	}
	got, _ := os.ReadFile(filepath.Join(e.Dir, "config.doxy"))
	if string(got) != "PROJECT_NUMBER = 16.2.0\n" {
		t.Errorf("config.doxy = %q", got)
	}
	got, _ = os.ReadFile(filepath.Join(e.Dir, "AJASDK/types.h"))
	if string(got) != "#define A 1\n#define B 2\n" {
		t.Errorf("types.h = %q", got)
	}

	zr, err := zip.OpenReader(filepath.Join(e.Dir, "AJASDK.zip"))
	if err != nil {
		t.Fatalf("open AJASDK.zip: %v", err)
	}
	defer zr.Close()
	found := false
	for _, f := range zr.File {
		if f.Name == "AJASDK/types.h" {
			found = true
		}
	}
	if !found {
		t.Error("AJASDK.zip lacks AJASDK/types.h")
	}
}

func TestStagingErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(dir string)
		step  Step
		code  int
	}{
		{"check missing", func(string) {}, Step{Op: OpCheck, Paths: []string{"*.zip"}}, sdkerr.CodeNotFound},
		{"rename no match", func(string) {}, Step{Op: OpRename, Src: "a*", To: "b"}, sdkerr.CodeVersionMismatch},
		{"rename two matches", func(d string) {
			mustWrite(t, filepath.Join(d, "a1"), "")
			mustWrite(t, filepath.Join(d, "a2"), "")
		}, Step{Op: OpRename, Src: "a*", To: "b"}, sdkerr.CodeVersionMismatch},
		{"rename onto existing", func(d string) {
			mustWrite(t, filepath.Join(d, "a"), "")
			mustWrite(t, filepath.Join(d, "b"), "")
		}, Step{Op: OpRename, Src: "a", To: "b"}, sdkerr.CodeVersionMismatch},
		{"delete missing", func(string) {}, Step{Op: OpDelete, Src: "gone"}, sdkerr.CodeNotFound},
		{"move missing", func(string) {}, Step{Op: OpMove, Src: "x", From: "y"}, sdkerr.CodeNotFound},
		{"unzip missing", func(string) {}, Step{Op: OpUnzip, Src: "x.zip"}, sdkerr.CodeNotFound},
		{"zip a file", func(d string) { mustWrite(t, filepath.Join(d, "f"), "") }, Step{Op: OpZip, Src: "f"}, sdkerr.CodeWrongKind},
		{"patch missing", func(string) {}, Step{Op: OpReplace, Src: "x", Old: "a"}, sdkerr.CodeNotFound},
		{"unknown hook", func(string) {}, Step{Op: OpHook, Hook: "nope"}, sdkerr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExecutor(t, &Pipeline{})
			tt.setup(e.Dir)
			err := e.RunPhase(context.Background(), Phase{Name: "p", Steps: []Step{tt.step}})
			if err == nil {
				t.Fatal("expected error")
			}
			if code := sdkerr.ExitCode(err); code != tt.code {
				t.Errorf("exit code = %d, want %d (%v)", code, tt.code, err)
			}
		})
	}
}

func TestUnzipRejectsEscapingEntries(t *testing.T) {
	e, _ := newTestExecutor(t, &Pipeline{})
	writeZip(t, filepath.Join(e.Dir, "evil.zip"), map[string]string{"../escape.txt": "x"})
	err := e.RunPhase(context.Background(), Phase{Name: "p", Steps: []Step{{Op: OpUnzip, Src: "evil.zip"}}})
	if err == nil {
		t.Fatal("expected error for escaping entry")
	}
	if exists(filepath.Join(filepath.Dir(e.Dir), "escape.txt")) {
		t.Error("entry written outside the destination")
	}
}

// ===== EXECUTION FLOW TESTS =====

func TestRunCommands(t *testing.T) {
	p := &Pipeline{
		Vars: map[string]Var{"DOXYGEN": "doxygen"},
		Phases: []Phase{
			{Name: "build", Unless: "NOCOMPILE", Steps: []Step{
				{Op: OpRun, Command: []string{"$DOXYGEN", "config.doxy"}, Log: "doxygen.log"},
			}},
			{Name: "deliver", Steps: []Step{
				{Op: OpRun, Shell: "echo $@"},
			}},
		},
	}
	e, r := newTestExecutor(t, p)
	r.output = "generated\n"
	var out bytes.Buffer
	e.Output = &out

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(r.calls) != 2 {
		t.Fatalf("got %d commands, want 2", len(r.calls))
	}
	if got := r.calls[0].String(); got != "doxygen config.doxy" {
		t.Errorf("first command = %q", got)
	}
	if last := r.calls[1].Args[len(r.calls[1].Args)-1]; last != "echo deliver" {
		t.Errorf("shell line = %q", last)
	}
	log, _ := os.ReadFile(filepath.Join(e.Dir, "doxygen.log"))
	if string(log) != "generated\n" {
		t.Errorf("doxygen.log = %q", log)
	}
	if out.String() != "generated\n" {
		t.Errorf("output = %q", out.String())
	}

	r.calls = nil
	e.Set("NOCOMPILE", "1")
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(r.calls) != 1 {
		t.Errorf("build phase should be skipped, got %d commands", len(r.calls))
	}
}

func TestRunStopsAtFailure(t *testing.T) {
	p := &Pipeline{Phases: []Phase{
		{Name: "build", Onerror: "doxygen broke", Steps: []Step{{Op: OpRun, Command: []string{"doxygen"}}}},
		{Name: "deliver", Steps: []Step{{Op: OpRun, Command: []string{"rsync"}}}},
	}}
	e, r := newTestExecutor(t, p)
	r.fail["doxygen"] = true

	err := e.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "doxygen broke") {
		t.Errorf("onerror text missing: %v", err)
	}
	if code := sdkerr.ExitCode(err); code != sdkerr.CodeFailure {
		t.Errorf("exit code = %d, want 1", code)
	}
	if len(r.calls) != 1 {
		t.Errorf("deliver phase ran after failure")
	}

	r.calls = nil
	p.Phases[0].ContinueOnError = true
	if err := e.Run(context.Background()); err != nil {
		t.Errorf("continue_on_error: %v", err)
	}
	if len(r.calls) != 2 {
		t.Errorf("got %d commands, want 2", len(r.calls))
	}
}

func TestHooksRunAroundPhases(t *testing.T) {
	p := &Pipeline{
		Prologue: Phase{Name: "prologue", Steps: []Step{{Op: OpHook, Hook: "first"}}},
		Phases:   []Phase{{Name: "main", Steps: []Step{{Op: OpRun, Command: []string{"echo", "$WHO"}}}}},
		Epilogue: Phase{Name: "epilogue", Steps: []Step{{Op: OpHook, Hook: "last"}}},
	}
	e, r := newTestExecutor(t, p)
	var order []string
	e.Hooks["first"] = func(_ context.Context, e *Executor) error {
		order = append(order, "first")
		e.Set("WHO", "hooked")
		return nil
	}
	e.Hooks["last"] = func(context.Context, *Executor) error {
		order = append(order, "last")
		return nil
	}

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if strings.Join(order, ",") != "first,last" {
		t.Errorf("hook order = %v", order)
	}
	if r.calls[0].String() != "echo hooked" {
		t.Errorf("command = %q", r.calls[0].String())
	}
}

func TestUnlessIgnoresEnvironment(t *testing.T) {
	t.Setenv("NOCOMPILE", "1")
	p := &Pipeline{Phases: []Phase{
		{Name: "build", Unless: "NOCOMPILE", Steps: []Step{{Op: OpRun, Command: []string{"doxygen"}}}},
	}}
	e, r := newTestExecutor(t, p)

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(r.calls) != 1 {
		t.Fatalf("inherited NOCOMPILE skipped the phase: %d commands", len(r.calls))
	}

	e.Set("NOCOMPILE", "1")
	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(r.calls) != 1 {
		t.Errorf("NOCOMPILE set on the executor did not skip the phase: %d commands", len(r.calls))
	}
}

func TestDryRunTouchesNothing(t *testing.T) {
	p := &Pipeline{Phases: []Phase{{Name: "p", Steps: []Step{
		{Op: OpDelete, Src: "keep"},
		{Op: OpRun, Command: []string{"rsync"}},
	}}}}
	e, r := newTestExecutor(t, p)
	mustWrite(t, filepath.Join(e.Dir, "keep"), "x")
	e.DryRun = true

	if err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !exists(filepath.Join(e.Dir, "keep")) || len(r.calls) != 0 {
		t.Error("dry run changed something")
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	p := &Pipeline{Phases: []Phase{{Name: "p", Steps: []Step{{Op: OpRun, Command: []string{"x"}}}}}}
	e, r := newTestExecutor(t, p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if len(r.calls) != 0 {
		t.Error("command ran after cancellation")
	}
}

// ===== HELPER FUNCTIONS =====

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry: %v", err)
		}
		_, _ = io.WriteString(w, body)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	_ = f.Close()
}
